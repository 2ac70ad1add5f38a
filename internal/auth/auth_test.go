package auth

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"testing"
	"time"

	"portfolio/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers map[string]*types.User

func (f fakeUsers) UserByEmail(ctx context.Context, email string) (*types.User, error) {
	if user, ok := f[email]; ok {
		return user, nil
	}
	return nil, types.ErrUserNotFound
}

func newLocal(t *testing.T) *LocalAuthenticator {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	users := fakeUsers{
		"admin@example.com": {ID: "u1", Email: "admin@example.com", Password: string(hash), Role: types.UserRoleAdmin},
	}

	a, err := NewLocalAuthenticator(users, "test-secret", time.Hour)
	require.NoError(t, err)
	return a
}

func TestLocalAuthenticatorLoginAndVerify(t *testing.T) {
	a := newLocal(t)
	ctx := context.Background()

	session, err := a.Login(ctx, "admin@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, session.ExpiresIn)
	assert.NotEmpty(t, session.Token)

	claims, err := a.Verify(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, &Claims{Subject: "u1", Email: "admin@example.com", Role: "admin"}, claims)
}

func TestLocalAuthenticatorRejectsBadCredentials(t *testing.T) {
	a := newLocal(t)
	ctx := context.Background()

	_, err := a.Login(ctx, "admin@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = a.Login(ctx, "nobody@example.com", "hunter22")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLocalAuthenticatorRejectsExpiredAndForeignTokens(t *testing.T) {
	a := newLocal(t)
	ctx := context.Background()

	session, err := a.Login(ctx, "admin@example.com", "hunter22")
	require.NoError(t, err)

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = a.Verify(ctx, session.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	a.now = time.Now
	other, err := NewLocalAuthenticator(fakeUsers{}, "other-secret", time.Hour)
	require.NoError(t, err)
	_, err = other.Verify(ctx, session.Token)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = a.Verify(ctx, "not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLocalAuthenticatorTokenWithoutRoleIsNotAdmin(t *testing.T) {
	a := newLocal(t)

	token, err := jwt.NewBuilder().
		Subject("u2").
		Expiration(time.Now().Add(time.Hour)).
		Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256(), []byte("test-secret")))
	require.NoError(t, err)

	claims, err := a.Verify(context.Background(), string(signed))
	require.NoError(t, err)
	assert.Empty(t, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestNewLocalAuthenticatorRequiresSecret(t *testing.T) {
	_, err := NewLocalAuthenticator(fakeUsers{}, "", time.Hour)
	require.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

type fakeCognito struct {
	input *cognitoidentityprovider.InitiateAuthInput
	err   error
	token string
}

func (f *fakeCognito) InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &cognitoidentityprovider.InitiateAuthOutput{
		AuthenticationResult: &cognitotypes.AuthenticationResultType{
			AccessToken: aws.String(f.token),
			ExpiresIn:   3600,
		},
	}, nil
}

type staticKeys struct {
	set jwk.Set
	url string
}

func (s *staticKeys) Lookup(ctx context.Context, u string) (jwk.Set, error) {
	s.url = u
	return s.set, nil
}

func TestCognitoAuthenticatorLogin(t *testing.T) {
	client := &fakeCognito{token: "access-token"}
	a := NewCognitoAuthenticator(client, "client-id", &staticKeys{}, "https://issuer.test")

	session, err := a.Login(context.Background(), "admin@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "access-token", session.Token)
	assert.Equal(t, time.Hour, session.ExpiresIn)
	assert.Equal(t, cognitotypes.AuthFlowTypeUserPasswordAuth, client.input.AuthFlow)
	assert.Equal(t, "admin@example.com", client.input.AuthParameters["USERNAME"])

	client.err = &cognitotypes.NotAuthorizedException{Message: aws.String("Incorrect username or password.")}
	_, err = a.Login(context.Background(), "admin@example.com", "bad")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	client.err = errors.New("network down")
	_, err = a.Login(context.Background(), "admin@example.com", "pw")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestCognitoAuthenticatorVerify(t *testing.T) {
	raw, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	private, err := jwk.Import(raw)
	require.NoError(t, err)
	require.NoError(t, private.Set(jwk.KeyIDKey, "k1"))
	require.NoError(t, private.Set(jwk.AlgorithmKey, jwa.RS256()))

	public, err := jwk.Import(&raw.PublicKey)
	require.NoError(t, err)
	require.NoError(t, public.Set(jwk.KeyIDKey, "k1"))
	require.NoError(t, public.Set(jwk.AlgorithmKey, jwa.RS256()))

	set := jwk.NewSet()
	require.NoError(t, set.AddKey(public))

	issuer := "https://cognito-idp.test/pool"
	sign := func(groups ...string) string {
		builder := jwt.NewBuilder().
			Issuer(issuer).
			Subject("cognito-user").
			Expiration(time.Now().Add(time.Hour))
		if len(groups) > 0 {
			builder = builder.Claim("cognito:groups", groups)
		}
		token, err := builder.Build()
		require.NoError(t, err)
		signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256(), private))
		require.NoError(t, err)
		return string(signed)
	}
	signed := sign("admin")

	keys := &staticKeys{set: set}
	a := NewCognitoAuthenticator(&fakeCognito{}, "client-id", keys, issuer)

	claims, err := a.Verify(context.Background(), signed)
	require.NoError(t, err)
	assert.Equal(t, "cognito-user", claims.Subject)
	assert.True(t, claims.IsAdmin())
	assert.Equal(t, issuer+"/.well-known/jwks.json", keys.url)

	claims, err = a.Verify(context.Background(), sign())
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())

	claims, err = a.Verify(context.Background(), sign("editors"))
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin())

	claims, err = a.WithAdminGroup("editors").Verify(context.Background(), sign("editors"))
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())

	wrongIssuer := NewCognitoAuthenticator(&fakeCognito{}, "client-id", keys, "https://elsewhere.test")
	_, err = wrongIssuer.Verify(context.Background(), signed)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestClaimsIsAdmin(t *testing.T) {
	assert.True(t, (&Claims{Subject: "u1", Role: "admin"}).IsAdmin())
	assert.False(t, (&Claims{Subject: "u1", Role: "editor"}).IsAdmin())

	var claims *Claims
	assert.False(t, claims.IsAdmin())
}
