package claim

import (
	"context"
	"sync"

	"mealbridge/internal/utils"
	"mealbridge/pkg/types"
)

// In-memory stores implementing the coordinator interfaces. ClaimListing and
// SetRequestStatus mirror the conditional-update semantics of the SQL layer.

type fakeListingStore struct {
	mu       sync.Mutex
	listings map[string]*types.Listing

	// claimErrs are consumed one per ClaimListing call before the update
	// runs, to simulate transient storage failures.
	claimErrs  []error
	claimCalls int
}

func newFakeListingStore(listings ...*types.Listing) *fakeListingStore {
	f := &fakeListingStore{listings: make(map[string]*types.Listing)}
	for _, l := range listings {
		cp := *l
		f.listings[l.ID] = &cp
	}
	return f
}

func (f *fakeListingStore) Listing(ctx context.Context, listingID string) (*types.Listing, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	listing, ok := f.listings[listingID]
	if !ok {
		return nil, types.ErrListingNotFound
	}

	cp := *listing
	return &cp, nil
}

func (f *fakeListingStore) ClaimListing(ctx context.Context, listingID, claimedBy string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.claimCalls++

	if len(f.claimErrs) > 0 {
		err := f.claimErrs[0]
		f.claimErrs = f.claimErrs[1:]
		if err != nil {
			return false, err
		}
	}

	listing, ok := f.listings[listingID]
	if !ok || listing.Status != types.ListingStatusAvailable {
		return false, nil
	}

	listing.Status = types.ListingStatusClaimed
	listing.ClaimedBy = utils.StringPtr(claimedBy)
	return true, nil
}

func (f *fakeListingStore) get(listingID string) *types.Listing {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *f.listings[listingID]
	return &cp
}

type fakeRequestStore struct {
	mu       sync.Mutex
	requests []*types.Request
}

func newFakeRequestStore(requests ...*types.Request) *fakeRequestStore {
	f := &fakeRequestStore{}
	for _, r := range requests {
		cp := *r
		f.requests = append(f.requests, &cp)
	}
	return f
}

func (f *fakeRequestStore) Request(ctx context.Context, requestID string) (*types.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.requests {
		if r.ID == requestID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, types.ErrRequestNotFound
}

func (f *fakeRequestStore) RequestsByDonor(ctx context.Context, donorMail string) ([]*types.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*types.Request, 0)
	for _, r := range f.requests {
		if r.DonorMail == donorMail {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) PendingRequestsByListing(ctx context.Context, listingID string) ([]*types.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*types.Request, 0)
	for _, r := range f.requests {
		if r.ListingID == listingID && r.Status == types.RequestStatusPending {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeRequestStore) CreateRequest(ctx context.Context, request *types.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	request.ID = utils.NanoID()

	cp := *request
	f.requests = append(f.requests, &cp)
	return nil
}

func (f *fakeRequestStore) SetRequestStatus(ctx context.Context, requestID string, status types.RequestStatus) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.requests {
		if r.ID == requestID && r.Status == types.RequestStatusPending {
			r.Status = status
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRequestStore) get(requestID string) *types.Request {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.requests {
		if r.ID == requestID {
			cp := *r
			return &cp
		}
	}
	return nil
}

type fakeNotificationStore struct {
	mu            sync.Mutex
	notifications []*types.Notification
}

func (f *fakeNotificationStore) CreateNotification(ctx context.Context, notification *types.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	notification.ID = utils.NanoID()
	cp := *notification
	f.notifications = append(f.notifications, &cp)
	return nil
}

func (f *fakeNotificationStore) all() []*types.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]*types.Notification, len(f.notifications))
	copy(out, f.notifications)
	return out
}

// fakeTxRunner runs the function directly; the fake stores apply writes
// immediately, which is enough to observe ordering and counts.
type fakeTxRunner struct {
	mu    sync.Mutex
	calls int
}

func (f *fakeTxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	return fn(ctx)
}
