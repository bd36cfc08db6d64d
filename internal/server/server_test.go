package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"mealbridge/internal/claim"
	"mealbridge/internal/utils"
	"mealbridge/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/sirupsen/logrus"
)

// In-memory collaborators for handler tests. memListings and memRequests
// also satisfy the coordinator's store interfaces so the handlers run
// against a real Coordinator.

type memListings struct {
	mu       sync.Mutex
	listings map[string]*types.Listing

	createErr error
}

func newMemListings() *memListings {
	return &memListings{listings: make(map[string]*types.Listing)}
}

func (m *memListings) CreateListing(ctx context.Context, listing *types.Listing) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return m.createErr
	}

	if listing.ID == "" {
		listing.ID = utils.NanoID()
	}
	if listing.Status == "" {
		listing.Status = types.ListingStatusAvailable
	}

	cp := *listing
	m.listings[listing.ID] = &cp
	return nil
}

func (m *memListings) Listing(ctx context.Context, listingID string) (*types.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, ok := m.listings[listingID]
	if !ok {
		return nil, types.ErrListingNotFound
	}

	cp := *listing
	return &cp, nil
}

func (m *memListings) AvailableListings(ctx context.Context, excludeDonorMail string) ([]*types.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.Listing, 0)
	for _, listing := range m.listings {
		if listing.Status == types.ListingStatusAvailable && listing.DonorMail != excludeDonorMail {
			cp := *listing
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memListings) ListingsByDonor(ctx context.Context, donorMail string) ([]*types.Listing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.Listing, 0)
	for _, listing := range m.listings {
		if listing.DonorMail == donorMail {
			cp := *listing
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memListings) ClaimListing(ctx context.Context, listingID, claimedBy string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	listing, ok := m.listings[listingID]
	if !ok || listing.Status != types.ListingStatusAvailable {
		return false, nil
	}

	listing.Status = types.ListingStatusClaimed
	listing.ClaimedBy = utils.StringPtr(claimedBy)
	return true, nil
}

type memRequests struct {
	mu       sync.Mutex
	requests []*types.Request
}

func (m *memRequests) Request(ctx context.Context, requestID string) (*types.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.requests {
		if r.ID == requestID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, types.ErrRequestNotFound
}

func (m *memRequests) RequestsByDonor(ctx context.Context, donorMail string) ([]*types.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.Request, 0)
	for _, r := range m.requests {
		if r.DonorMail == donorMail {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRequests) PendingRequestsByListing(ctx context.Context, listingID string) ([]*types.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.Request, 0)
	for _, r := range m.requests {
		if r.ListingID == listingID && r.Status == types.RequestStatusPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memRequests) CreateRequest(ctx context.Context, request *types.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	request.ID = utils.NanoID()
	cp := *request
	m.requests = append(m.requests, &cp)
	return nil
}

func (m *memRequests) SetRequestStatus(ctx context.Context, requestID string, status types.RequestStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range m.requests {
		if r.ID == requestID && r.Status == types.RequestStatusPending {
			r.Status = status
			return true, nil
		}
	}
	return false, nil
}

type memNotifications struct {
	mu            sync.Mutex
	notifications []*types.Notification
}

func (m *memNotifications) CreateNotification(ctx context.Context, notification *types.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	notification.ID = utils.NanoID()
	cp := *notification
	m.notifications = append(m.notifications, &cp)
	return nil
}

func (m *memNotifications) NotificationsByRecipient(ctx context.Context, recipient string) ([]*types.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*types.Notification, 0)
	for _, n := range m.notifications {
		if n.Recipient == recipient {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *memNotifications) MarkNotificationRead(ctx context.Context, notificationID, recipient string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.notifications {
		if n.ID == notificationID && n.Recipient == recipient {
			n.IsRead = true
			return nil
		}
	}
	return types.ErrNotificationNotFound
}

func (m *memNotifications) DeleteNotification(ctx context.Context, notificationID, recipient string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, n := range m.notifications {
		if n.ID == notificationID && n.Recipient == recipient {
			m.notifications = append(m.notifications[:i], m.notifications[i+1:]...)
			return nil
		}
	}
	return types.ErrNotificationNotFound
}

type memUploader struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
	failWith error
}

func (m *memUploader) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failWith != nil {
		return "", m.failWith
	}

	m.uploaded = append(m.uploaded, key)
	return "https://cdn.test/" + key, nil
}

func (m *memUploader) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deleted = append(m.deleted, key)
	return nil
}

type stubRecipes struct {
	recipe *types.Recipe
	err    error
}

func (s *stubRecipes) GenerateRecipe(ctx context.Context, ingredients string) (*types.Recipe, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.recipe, nil
}

type passthroughTx struct{}

func (passthroughTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type testEnv struct {
	listings      *memListings
	requests      *memRequests
	notifications *memNotifications
	uploader      *memUploader
	recipes       *stubRecipes
	service       *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		listings:      newMemListings(),
		requests:      &memRequests{},
		notifications: &memNotifications{},
		uploader:      &memUploader{},
		recipes:       &stubRecipes{},
	}

	env.service = &Service{
		logger:        logger,
		config:        &types.Config{},
		coordinator:   claim.New(logger, env.listings, env.requests, env.notifications, passthroughTx{}),
		listings:      env.listings,
		notifications: env.notifications,
		uploader:      env.uploader,
		recipes:       env.recipes,
	}

	return env
}

// router mounts the authenticated routes behind a middleware that injects
// the given caller, standing in for RequireAuth.
func (e *testEnv) router(caller identity) http.Handler {
	mux := flow.New()

	mux.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = context.WithValue(ctx, contextKeyUserID, caller.UserID)
			ctx = context.WithValue(ctx, contextKeyEmail, caller.Email)
			ctx = context.WithValue(ctx, contextKeyName, caller.Name)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})

	mux.HandleFunc("/food", e.service.handleListListings, http.MethodGet)
	mux.HandleFunc("/food", e.service.handleCreateListing, http.MethodPost)
	mux.HandleFunc("/food/mine", e.service.handleMyListings, http.MethodGet)
	mux.HandleFunc("/food/:id", e.service.handleGetListing, http.MethodGet)
	mux.HandleFunc("/food/:id/requests", e.service.handleSubmitRequest, http.MethodPost)
	mux.HandleFunc("/requests", e.service.handleDonorRequests, http.MethodGet)
	mux.HandleFunc("/requests/accept", e.service.handleAcceptRequest, http.MethodPost)
	mux.HandleFunc("/requests/reject", e.service.handleRejectRequest, http.MethodPost)
	mux.HandleFunc("/notifications", e.service.handleListNotifications, http.MethodGet)
	mux.HandleFunc("/notifications/:id/read", e.service.handleMarkNotificationRead, http.MethodPut)
	mux.HandleFunc("/notifications/:id", e.service.handleDeleteNotification, http.MethodDelete)
	mux.HandleFunc("/recipes/generate", e.service.handleGenerateRecipe, http.MethodPost)

	return mux
}

func (e *testEnv) addListing(t *testing.T, listing *types.Listing) *types.Listing {
	t.Helper()

	if err := e.listings.CreateListing(context.Background(), listing); err != nil {
		t.Fatalf("seed listing: %v", err)
	}
	return listing
}

func (e *testEnv) addRequest(t *testing.T, request *types.Request) *types.Request {
	t.Helper()

	if err := e.requests.CreateRequest(context.Background(), request); err != nil {
		t.Fatalf("seed request: %v", err)
	}
	return request
}

// doJSON sends a request with an optional JSON body through the handler and
// decodes the JSON response into a generic map.
func doJSON(t *testing.T, h http.Handler, method, path string, payload any) (int, map[string]any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		switch v := payload.(type) {
		case string:
			body = strings.NewReader(v)
		default:
			raw, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("marshal request body: %v", err)
			}
			body = bytes.NewReader(raw)
		}
	}

	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := make(map[string]any)
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}

	return rec.Code, out
}

// doJSONList is doJSON for endpoints that respond with a JSON array.
func doJSONList(t *testing.T, h http.Handler, method, path string) (int, []map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out []map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}

	return rec.Code, out
}
