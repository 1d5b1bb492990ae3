// Package holdtest provides an in-memory hold repository for tests.
//
// Transactions are fully serialized: Begin blocks until the previous
// transaction commits or rolls back, and its writes only become visible on
// Commit. The held-line-item uniqueness rule of the Postgres schema is
// enforced in CreateOrder.
package holdtest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/consignd/internal/history"
	"github.com/MrJamesThe3rd/consignd/internal/hold"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	"github.com/MrJamesThe3rd/consignd/internal/order"
)

type state struct {
	listings map[uuid.UUID]*listing.Listing
	orders   map[uuid.UUID]*order.Order
	history  []history.Event
}

func (s *state) clone() *state {
	c := &state{
		listings: make(map[uuid.UUID]*listing.Listing, len(s.listings)),
		orders:   make(map[uuid.UUID]*order.Order, len(s.orders)),
		history:  slices.Clone(s.history),
	}

	for id, l := range s.listings {
		c.listings[id] = cloneListing(l)
	}

	for id, o := range s.orders {
		c.orders[id] = cloneOrder(o)
	}

	return c
}

type Store struct {
	txMu sync.Mutex

	mu          sync.RWMutex
	data        *state
	failCommits int
	processed   map[string]string
}

func New() *Store {
	return &Store{
		data: &state{
			listings: map[uuid.UUID]*listing.Listing{},
			orders:   map[uuid.UUID]*order.Order{},
		},
		processed: map[string]string{},
	}
}

// FailCommits makes the next n commits fail with hold.ErrTransient.
func (s *Store) FailCommits(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failCommits = n
}

// Seed stores a listing as-is, bypassing validation, and returns its ID.
// Like every write outside a transaction it waits for the running one.
func (s *Store) Seed(l listing.Listing) uuid.UUID {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}

	if l.Status == "" {
		l.Status = listing.StatusActive
	}

	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now().UTC()
	}

	s.data.listings[l.ID] = cloneListing(&l)

	return l.ID
}

// SeedOrder stores an order as-is.
func (s *Store) SeedOrder(o order.Order) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.orders[o.ID] = cloneOrder(&o)
}

func (s *Store) Listing(id uuid.UUID) listing.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.data.listings[id]
	if !ok {
		return listing.Listing{}
	}

	return *cloneListing(l)
}

func (s *Store) Order(id uuid.UUID) order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	o, ok := s.data.orders[id]
	if !ok {
		return order.Order{}
	}

	return *cloneOrder(o)
}

func (s *Store) AllListings() []listing.Listing {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]listing.Listing, 0, len(s.data.listings))
	for _, l := range s.data.listings {
		out = append(out, *cloneListing(l))
	}

	return out
}

func (s *Store) AllOrders() []order.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]order.Order, 0, len(s.data.orders))
	for _, o := range s.data.orders {
		out = append(out, *cloneOrder(o))
	}

	return out
}

// History returns the committed events of a listing in append order.
func (s *Store) History(listingID uuid.UUID) []history.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []history.Event

	for _, ev := range s.data.history {
		if ev.ListingID == listingID {
			out = append(out, ev)
		}
	}

	return out
}

// HistoryTypes returns the event types of a listing in append order.
func (s *Store) HistoryTypes(listingID uuid.UUID) []history.Type {
	var types []history.Type
	for _, ev := range s.History(listingID) {
		types = append(types, ev.Type)
	}

	return types
}

func (s *Store) Begin(ctx context.Context) (hold.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.txMu.Lock()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	return &tx{store: s, work: work}, nil
}

func (s *Store) PendingOrderForListing(_ context.Context, listingID uuid.UUID) (uuid.UUID, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := pendingOrderFor(s.data, listingID)

	return id, ok, nil
}

func (s *Store) ExpiredOrders(_ context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expired []*order.Order

	for _, o := range s.data.orders {
		if o.Status == order.StatusPending && o.CheckoutExpiresAt.Before(before) {
			expired = append(expired, o)
		}
	}

	slices.SortFunc(expired, func(a, b *order.Order) int {
		return a.CheckoutExpiresAt.Compare(b.CheckoutExpiresAt)
	})

	ids := make([]uuid.UUID, 0, len(expired))
	for _, o := range expired {
		ids = append(ids, o.ID)
	}

	return truncate(ids, limit), nil
}

func (s *Store) ExpiredHolds(_ context.Context, before time.Time, limit int) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uuid.UUID

	for _, l := range s.data.listings {
		if l.IsHeld && l.Status != listing.StatusSold && l.HeldUntil != nil && l.HeldUntil.Before(before) {
			ids = append(ids, l.ID)
		}
	}

	hold.SortIDs(ids)

	return truncate(ids, limit), nil
}

func (s *Store) InconsistentListings(_ context.Context, limit int) ([]uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []uuid.UUID

	for _, l := range s.data.listings {
		if inconsistent(s.data, l) {
			ids = append(ids, l.ID)
		}
	}

	hold.SortIDs(ids)

	return truncate(ids, limit), nil
}

// inconsistent mirrors the Postgres store's InconsistentListings query.
func inconsistent(st *state, l *listing.Listing) bool {
	if l.CheckInvariant() != nil {
		return true
	}

	pendingID, pending := pendingOrderFor(st, l.ID)
	_, paid := paidOrderFor(st, l.ID)

	switch l.Status {
	case listing.StatusActive:
		return pending || paid
	case listing.StatusProcessing:
		if paid || !pending {
			return true
		}

		return !l.HeldUntil.Equal(st.orders[pendingID].CheckoutExpiresAt)
	case listing.StatusSold:
		return pending
	}

	return false
}

func pendingOrderFor(st *state, listingID uuid.UUID) (uuid.UUID, bool) {
	for _, o := range st.orders {
		if o.Status == order.StatusPending && o.Contains(listingID) {
			return o.ID, true
		}
	}

	return uuid.Nil, false
}

func paidOrderFor(st *state, listingID uuid.UUID) (uuid.UUID, bool) {
	for _, o := range st.orders {
		if o.Status.IsPaid() && o.Contains(listingID) {
			return o.ID, true
		}
	}

	return uuid.Nil, false
}

func truncate(ids []uuid.UUID, limit int) []uuid.UUID {
	if limit > 0 && len(ids) > limit {
		return ids[:limit]
	}

	return ids
}

type tx struct {
	store *Store
	work  *state
	done  bool
}

func (t *tx) LockOrder(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := t.work.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id, hold.ErrNotFound)
	}

	return cloneOrder(o), nil
}

func (t *tx) LockListings(_ context.Context, ids []uuid.UUID) ([]*listing.Listing, error) {
	sorted := slices.Clone(ids)
	hold.SortIDs(sorted)

	var out []*listing.Listing

	for _, id := range slices.Compact(sorted) {
		if l, ok := t.work.listings[id]; ok {
			out = append(out, cloneListing(l))
		}
	}

	return out, nil
}

func (t *tx) PendingOrderForListing(_ context.Context, listingID uuid.UUID) (uuid.UUID, bool, error) {
	id, ok := pendingOrderFor(t.work, listingID)

	return id, ok, nil
}

func (t *tx) PaidOrderForListing(_ context.Context, listingID uuid.UUID) (uuid.UUID, bool, error) {
	id, ok := paidOrderFor(t.work, listingID)

	return id, ok, nil
}

func (t *tx) CreateOrder(_ context.Context, o *order.Order) error {
	if _, ok := t.work.orders[o.ID]; ok {
		return fmt.Errorf("order %s already exists", o.ID)
	}

	for _, item := range o.Items {
		if _, ok := t.work.listings[item.ListingID]; !ok {
			return fmt.Errorf("listing %s: %w", item.ListingID, hold.ErrNotFound)
		}

		if _, held := pendingOrderFor(t.work, item.ListingID); held {
			return fmt.Errorf("%w: listing %s has a held line item", hold.ErrConflict, item.ListingID)
		}
	}

	t.work.orders[o.ID] = cloneOrder(o)

	return nil
}

func (t *tx) UpdateOrder(_ context.Context, o *order.Order) error {
	existing, ok := t.work.orders[o.ID]
	if !ok {
		return fmt.Errorf("order %s: %w", o.ID, hold.ErrNotFound)
	}

	c := cloneOrder(o)
	c.Items = existing.Items

	t.work.orders[o.ID] = c

	return nil
}

func (t *tx) UpdateListing(_ context.Context, l *listing.Listing) error {
	if _, ok := t.work.listings[l.ID]; !ok {
		return fmt.Errorf("listing %s: %w", l.ID, hold.ErrNotFound)
	}

	t.work.listings[l.ID] = cloneListing(l)

	return nil
}

func (t *tx) AppendHistory(_ context.Context, ev history.Event) error {
	if ev.Actor == "" || strings.TrimSpace(ev.Title) == "" {
		return fmt.Errorf("history event %s missing actor or title", ev.Type)
	}

	t.work.history = append(t.work.history, ev)

	return nil
}

func (t *tx) Commit() error {
	if t.done {
		return fmt.Errorf("transaction already finished")
	}

	t.done = true
	defer t.store.txMu.Unlock()

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.store.failCommits > 0 {
		t.store.failCommits--
		return fmt.Errorf("commit: %w", hold.ErrTransient)
	}

	t.store.data = t.work

	return nil
}

func (t *tx) Rollback() error {
	if t.done {
		return nil
	}

	t.done = true
	t.store.txMu.Unlock()

	return nil
}

func cloneListing(l *listing.Listing) *listing.Listing {
	c := *l

	if l.HeldUntil != nil {
		u := *l.HeldUntil
		c.HeldUntil = &u
	}

	if l.UpdatedAt != nil {
		u := *l.UpdatedAt
		c.UpdatedAt = &u
	}

	return &c
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = slices.Clone(o.Items)

	if o.UpdatedAt != nil {
		u := *o.UpdatedAt
		c.UpdatedAt = &u
	}

	return &c
}
