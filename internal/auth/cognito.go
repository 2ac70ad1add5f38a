package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"portfolio/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	cognitotypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
)

type CognitoAPI interface {
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
}

// KeySetSource is satisfied by *jwk.Cache.
type KeySetSource interface {
	Lookup(ctx context.Context, u string) (jwk.Set, error)
}

// CognitoAuthenticator signs admins in against a Cognito user pool and
// verifies its access tokens with the pool's JWKS.
type CognitoAuthenticator struct {
	client   CognitoAPI
	clientID string
	keys     KeySetSource
	jwksURL  string
	issuer   string

	adminGroup string
}

func JWKSURL(issuerURL string) string {
	return fmt.Sprintf("%s/.well-known/jwks.json", issuerURL)
}

func NewCognitoAuthenticator(client CognitoAPI, clientID string, keys KeySetSource, issuerURL string) *CognitoAuthenticator {
	return &CognitoAuthenticator{
		client:   client,
		clientID: clientID,
		keys:     keys,
		jwksURL:  JWKSURL(issuerURL),
		issuer:   issuerURL,

		adminGroup: string(types.UserRoleAdmin),
	}
}

// WithAdminGroup sets the user pool group whose members are admins.
func (a *CognitoAuthenticator) WithAdminGroup(group string) *CognitoAuthenticator {
	if group != "" {
		a.adminGroup = group
	}
	return a
}

func (a *CognitoAuthenticator) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := a.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: cognitotypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(a.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		var notAuthorized *cognitotypes.NotAuthorizedException
		var userNotFound *cognitotypes.UserNotFoundException
		if errors.As(err, &notAuthorized) || errors.As(err, &userNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to initiate auth: %w", err)
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		return nil, ErrInvalidCredentials
	}

	return &Session{
		Token:     aws.ToString(resp.AuthenticationResult.AccessToken),
		ExpiresIn: time.Duration(resp.AuthenticationResult.ExpiresIn) * time.Second,
	}, nil
}

func (a *CognitoAuthenticator) Verify(ctx context.Context, token string) (*Claims, error) {
	set, err := a.keys.Lookup(ctx, a.jwksURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch JWKS: %w", err)
	}

	options := []jwt.ParseOption{
		jwt.WithKeySet(set),
		jwt.WithValidate(true),
	}
	if a.issuer != "" {
		options = append(options, jwt.WithIssuer(a.issuer))
	}

	parsed, err := jwt.Parse([]byte(token), options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, err := claimsOf(parsed)
	if err != nil {
		return nil, err
	}

	// Pool tokens carry no role claim; membership in the admin group grants it.
	claims.Role = ""
	var groups []any
	if err := parsed.Get("cognito:groups", &groups); err == nil {
		for _, group := range groups {
			if name, ok := group.(string); ok && name == a.adminGroup {
				claims.Role = string(types.UserRoleAdmin)
				break
			}
		}
	}

	return claims, nil
}
