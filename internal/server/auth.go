package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"mealbridge/internal"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

type registerPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload registerPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	payload.Name = strings.TrimSpace(payload.Name)
	payload.Email = strings.TrimSpace(payload.Email)

	if payload.Name == "" || payload.Email == "" || payload.Password == "" {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "all fields are required"})
		return
	}

	if _, err := mail.ParseAddress(payload.Email); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "enter a valid email address"})
		return
	}

	input := &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(s.config.CognitoClientID),
		Username: aws.String(payload.Email), // use email as username
		Password: aws.String(payload.Password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(payload.Email)},
			{Name: aws.String("name"), Value: aws.String(payload.Name)},
		},
	}

	_, err := s.cognito.SignUp(ctx, input)
	if err != nil {
		s.logger.WithError(err).Error("failed to signup user")
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: s.mapCognitoSignUpError(err)})
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully"})
}

type confirmPayload struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (s *Service) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload confirmPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	input := &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(s.config.CognitoClientID),
		Username:         aws.String(strings.TrimSpace(payload.Email)),
		ConfirmationCode: aws.String(strings.TrimSpace(payload.Code)),
	}

	if _, err := s.cognito.ConfirmSignUp(ctx, input); err != nil {
		s.logger.WithError(err).Error("failed to confirm user signup")
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "unable to confirm account"})
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Account confirmed"})
}

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Service) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload loginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if payload.Email == "" || payload.Password == "" {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	input := &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(s.config.CognitoClientID),
		AuthParameters: map[string]string{
			"USERNAME": payload.Email,
			"PASSWORD": payload.Password,
		},
	}

	resp, err := s.cognito.InitiateAuth(ctx, input)
	if err != nil {
		// NotAuthorizedException, UserNotConfirmedException, etc.
		s.unauthorized(w, "invalid email or password")
		return
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		s.unauthorized(w, "login failed")
		return
	}

	accessToken := aws.ToString(resp.AuthenticationResult.AccessToken)
	expiresIn := int(resp.AuthenticationResult.ExpiresIn)

	encryptedToken, err := s.cookie.Encode(internal.COOKIE_ACCESS_TOKEN_NAME, accessToken)
	if err != nil {
		s.logger.WithError(err).Error("failed to encrypt access token")
		s.unauthorized(w, "login failed")
		return
	}

	// Set httpOnly, secure cookie with access token
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    encryptedToken,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   expiresIn,
		Path:     "/",
	})

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message":   "Login successful",
		"token":     accessToken,
		"expiresIn": expiresIn,
	})
}

func (s *Service) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     internal.COOKIE_ACCESS_TOKEN_NAME,
		Value:    "",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Path:     "/",
	})

	s.respondJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

func (s *Service) handleSession(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.identityFromContext(r.Context())
	if !ok {
		s.unauthorized(w, "unauthorized")
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{
			"id":    caller.UserID,
			"email": caller.Email,
			"name":  caller.Name,
		},
	})
}

func (s *Service) mapCognitoSignUpError(err error) string {
	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		return "password does not meet the account password policy"
	}

	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		return "an account with this email already exists"
	}

	var invalidParam *ctypes.InvalidParameterException
	if errors.As(err, &invalidParam) {
		return "some details are invalid"
	}

	return "unable to create account right now"
}
