package types

type Config struct {
	Environment     string `envconfig:"ENVIRONMENT" default:"development"`
	ServerPort      uint   `envconfig:"SERVER_PORT" default:"8080"`
	DatabaseURL     string `envconfig:"DATABASE_URL"`
	ReadTimeoutSec  uint   `envconfig:"READ_TIMEOUT_SEC" default:"10"`
	WriteTimeoutSec uint   `envconfig:"WRITE_TIMEOUT_SEC" default:"15"`

	// Cognito Auth
	CognitoUserPoolID string `envconfig:"COGNITO_USER_POOL_ID"`
	CognitoClientID   string `envconfig:"COGNITO_CLIENT_ID"`
	CognitoIssuerURL  string `envconfig:"COGNITO_ISSUER_URL"`

	// Listing images
	S3BucketName string `envconfig:"S3_BUCKET_NAME" default:"mealbridge-listing-images"`
	S3Region     string `envconfig:"S3_REGION" default:"us-east-1"`

	// Generative text provider
	GenAIAPIKey  string `envconfig:"GENAI_API_KEY"`
	GenAIModel   string `envconfig:"GENAI_MODEL" default:"gemini-1.5-pro-latest"`
	GenAIBaseURL string `envconfig:"GENAI_BASE_URL" default:"https://generativelanguage.googleapis.com"`

	// Cookie encryption keys (base64 encoded)
	// openssl rand -base64 32
	// to generate values
	CookieHashKey  string `envconfig:"COOKIE_HASH_KEY"`  // 32 or 64 bytes
	CookieBlockKey string `envconfig:"COOKIE_BLOCK_KEY"` // 16, 24, or 32 bytes
}
