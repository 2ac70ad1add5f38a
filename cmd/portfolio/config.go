package main

import (
	"context"
	"fmt"

	"portfolio/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

func loadConfig() (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process("", c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if err := checkConfig(c); err != nil {
		return nil, err
	}

	return c, nil
}

func checkConfig(c *types.Config) error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("set DATABASE_URL")
	}

	if len(c.Languages) == 0 {
		return fmt.Errorf("set LANGUAGES")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 4000
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 60
	}

	switch c.AuthProvider {
	case "local":
		if c.JWTSecret == "" {
			return fmt.Errorf("set JWT_SECRET for the local auth provider")
		}
	case "cognito":
		if c.CognitoClientID == "" || c.CognitoIssuerURL == "" {
			return fmt.Errorf("set COGNITO_CLIENT_ID and COGNITO_ISSUER_URL for the cognito auth provider")
		}
	default:
		return fmt.Errorf("unknown AUTH_PROVIDER %q", c.AuthProvider)
	}

	return nil
}

func newLogger(c *types.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		logger.WithError(err).Warn("invalid LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}

// newS3Client points at MEDIA_ENDPOINT when set, for S3 compatible hosts.
func newS3Client(awsConfig aws.Config, c *types.Config) *s3.Client {
	return s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if c.MediaEndpoint != "" {
			o.BaseEndpoint = aws.String(c.MediaEndpoint)
			o.UsePathStyle = true
		}
	})
}
