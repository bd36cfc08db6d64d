package internal

const (
	COOKIE_ACCESS_TOKEN_NAME = "mealbridge_access_token"
)
