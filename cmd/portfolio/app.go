package main

import (
	"context"
	"fmt"
	"time"

	"portfolio/internal/auth"
	"portfolio/internal/content"
	"portfolio/internal/db"
	"portfolio/internal/media"
	"portfolio/internal/store"
	"portfolio/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lestrrat-go/httprc/v3"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

// app holds the wiring shared by the commands that touch content.
type app struct {
	config *types.Config
	logger *logrus.Logger

	pool       *pgxpool.Pool
	gateway    *store.Gateway
	users      *store.UserRepository
	messages   *store.MessageRepository
	resolver   *content.Resolver
	reconciler *content.Reconciler
	janitor    *media.Janitor
}

func newApp(ctx context.Context, config *types.Config, logger *logrus.Logger, awsConfig aws.Config) (*app, error) {
	pool, err := db.Connect(ctx, config)
	if err != nil {
		return nil, err
	}

	host := media.NewBreakerHost(
		media.NewS3Host(newS3Client(awsConfig, config), config.MediaBucket, config.MediaFolder, config.MediaPublicBaseURL),
		logger,
		5,
		30*time.Second,
	)

	janitor := media.NewJanitor(host, logger, media.JanitorOptions{
		Retries: config.CleanupRetries,
	})
	janitor.Start()

	languages := content.NewLanguages(config.Languages...)
	gateway := store.NewGateway(pool)

	reconciler := content.NewReconciler(gateway, host, janitor, languages, logger)
	reconciler.SetUploadConcurrency(config.UploadConcurrency)

	return &app{
		config:     config,
		logger:     logger,
		pool:       pool,
		gateway:    gateway,
		users:      store.NewUserRepository(pool),
		messages:   store.NewMessageRepository(pool),
		resolver:   content.NewResolver(gateway, languages),
		reconciler: reconciler,
		janitor:    janitor,
	}, nil
}

// close drains pending media deletions before releasing the pool.
func (a *app) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := a.janitor.Stop(ctx); err != nil {
		a.logger.WithError(err).Warn("media cleanup did not finish")
	}
	a.pool.Close()
}

func (a *app) authenticator(ctx context.Context, awsConfig aws.Config) (auth.Authenticator, error) {
	switch a.config.AuthProvider {
	case "cognito":
		jwkCache, err := jwk.NewCache(ctx, httprc.NewClient())
		if err != nil {
			return nil, fmt.Errorf("failed to initialize jwk cache: %w", err)
		}

		if err := jwkCache.Register(ctx, auth.JWKSURL(a.config.CognitoIssuerURL)); err != nil {
			return nil, fmt.Errorf("failed to register cognito jwks with cache: %w", err)
		}

		client := cognitoidentityprovider.NewFromConfig(awsConfig)
		return auth.NewCognitoAuthenticator(client, a.config.CognitoClientID, jwkCache, a.config.CognitoIssuerURL).
			WithAdminGroup(a.config.CognitoAdminGroup), nil
	default:
		ttl := time.Duration(a.config.TokenTTLHours) * time.Hour
		return auth.NewLocalAuthenticator(a.users, a.config.JWTSecret, ttl)
	}
}
