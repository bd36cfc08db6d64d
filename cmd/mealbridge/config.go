package main

import (
	"context"
	"fmt"
	"strings"

	"mealbridge/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/kelseyhightower/envconfig"
)

func loadConfig(prefix string) (*types.Config, error) {
	c := new(types.Config)
	if err := envconfig.Process(prefix, c); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}

	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("set DATABASE_URL")
	}

	if c.CognitoIssuerURL == "" && c.CognitoUserPoolID != "" {
		issuer, err := cognitoIssuerURL(c.CognitoUserPoolID)
		if err != nil {
			return nil, err
		}
		c.CognitoIssuerURL = issuer
	}

	if c.CognitoIssuerURL == "" {
		return nil, fmt.Errorf("set COGNITO_ISSUER_URL or COGNITO_USER_POOL_ID")
	}

	if c.ServerPort == 0 {
		c.ServerPort = 8080
	}

	if c.ReadTimeoutSec == 0 {
		c.ReadTimeoutSec = 10
	}

	if c.WriteTimeoutSec == 0 {
		c.WriteTimeoutSec = 15
	}

	return c, nil
}

// cognitoIssuerURL derives the token issuer from a user pool id, which
// carries its region as the prefix before the underscore.
func cognitoIssuerURL(userPoolID string) (string, error) {
	region, _, found := strings.Cut(userPoolID, "_")
	if !found || region == "" {
		return "", fmt.Errorf("COGNITO_USER_POOL_ID %q is not of the form <region>_<id>", userPoolID)
	}

	return fmt.Sprintf("https://cognito-idp.%s.amazonaws.com/%s", region, userPoolID), nil
}

func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	config, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	return config, nil
}
