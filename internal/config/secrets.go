package config

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsAPI is the part of the Secrets Manager client used here
type SecretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type secretPayload struct {
	DatabaseURL string `json:"DATABASE_URL"`
}

// DatabaseURLFromSecret reads DATABASE_URL out of a JSON secret
func DatabaseURLFromSecret(ctx context.Context, sm SecretsAPI, secretARN string) (string, error) {
	out, err := sm.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{SecretId: &secretARN})
	if err != nil {
		return "", fmt.Errorf("get secret: %w", err)
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret %s has no string value", secretARN)
	}
	var payload secretPayload
	if err := json.Unmarshal([]byte(*out.SecretString), &payload); err != nil {
		return "", fmt.Errorf("parse secret json: %w", err)
	}
	if payload.DatabaseURL == "" {
		return "", fmt.Errorf("DATABASE_URL missing in secret")
	}
	return payload.DatabaseURL, nil
}

// ResolveDatabaseURL prefers DATABASE_URL and falls back to the secret
func (c *Config) ResolveDatabaseURL(ctx context.Context, sm SecretsAPI) (string, error) {
	if c.Database.URL != "" {
		return c.Database.URL, nil
	}
	if c.Database.SecretARN == "" {
		return "", fmt.Errorf("DATABASE_URL is not set")
	}
	if sm == nil {
		return "", fmt.Errorf("no secrets client for %s", c.Database.SecretARN)
	}
	return DatabaseURLFromSecret(ctx, sm, c.Database.SecretARN)
}
