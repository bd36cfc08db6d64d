package server

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"mealbridge/internal/claim"
	"mealbridge/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

var decoder = form.NewDecoder()

// ListingStore is the slice of the listing repository the handlers need.
type ListingStore interface {
	CreateListing(ctx context.Context, listing *types.Listing) error
	Listing(ctx context.Context, listingID string) (*types.Listing, error)
	AvailableListings(ctx context.Context, excludeDonorMail string) ([]*types.Listing, error)
	ListingsByDonor(ctx context.Context, donorMail string) ([]*types.Listing, error)
}

type NotificationStore interface {
	NotificationsByRecipient(ctx context.Context, recipient string) ([]*types.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, recipient string) error
	DeleteNotification(ctx context.Context, notificationID, recipient string) error
}

// Uploader stores a listing image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
}

type RecipeGenerator interface {
	GenerateRecipe(ctx context.Context, ingredients string) (*types.Recipe, error)
}

// CognitoClient covers the identity-provider calls the auth handlers make.
type CognitoClient interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
}

type Service struct {
	logger *logrus.Logger
	config *types.Config

	cognito       CognitoClient
	coordinator   *claim.Coordinator
	listings      ListingStore
	notifications NotificationStore
	uploader      Uploader
	recipes       RecipeGenerator

	cookie *securecookie.SecureCookie

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognito CognitoClient,
	coordinator *claim.Coordinator,
	listings ListingStore,
	notifications NotificationStore,
	uploader Uploader,
	recipes RecipeGenerator,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger: logger,
		config: config,

		cognito:       cognito,
		coordinator:   coordinator,
		listings:      listings,
		notifications: notifications,
		uploader:      uploader,
		recipes:       recipes,

		cookie: securecookie.New(hashKey, blockKey),

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/auth/register", s.handleRegister, http.MethodPost)
	r.HandleFunc("/auth/confirm", s.handleConfirm, http.MethodPost)
	r.HandleFunc("/auth/login", s.handleLogin, http.MethodPost)
	r.HandleFunc("/auth/logout", s.handleLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/auth/session", s.handleSession, http.MethodGet)

		r.HandleFunc("/food", s.handleListListings, http.MethodGet)
		r.HandleFunc("/food", s.handleCreateListing, http.MethodPost)
		// Registered before /food/:id so "mine" is never read as an id.
		r.HandleFunc("/food/mine", s.handleMyListings, http.MethodGet)
		r.HandleFunc("/food/:id", s.handleGetListing, http.MethodGet)
		r.HandleFunc("/food/:id/requests", s.handleSubmitRequest, http.MethodPost)

		r.HandleFunc("/requests", s.handleDonorRequests, http.MethodGet)
		r.HandleFunc("/requests/accept", s.handleAcceptRequest, http.MethodPost)
		r.HandleFunc("/requests/reject", s.handleRejectRequest, http.MethodPost)

		r.HandleFunc("/notifications", s.handleListNotifications, http.MethodGet)
		r.HandleFunc("/notifications/:id/read", s.handleMarkNotificationRead, http.MethodPut)
		r.HandleFunc("/notifications/:id", s.handleDeleteNotification, http.MethodDelete)

		r.HandleFunc("/recipes/generate", s.handleGenerateRecipe, http.MethodPost)
	})
}

func (s *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
