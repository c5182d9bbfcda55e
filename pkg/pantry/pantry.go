// Package pantry implements the pantry item domain: CRUD on top of storage,
// the derived expiry fields the UI shows, and change events for connected
// clients.
package pantry

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"pantrypal/pkg/events"
	"pantrypal/pkg/storage"
)

// Expiry status buckets
const (
	StatusExpired      = "expired"
	StatusExpiringSoon = "expiring_soon"
	StatusFresh        = "fresh"
)

// DaysUntilExpiry returns the number of calendar days from now until the
// expiry date. Negative when the item is already past its date.
func DaysUntilExpiry(expiry, now time.Time) int {
	y1, m1, d1 := now.Date()
	y2, m2, d2 := expiry.Date()
	start := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return int(end.Sub(start).Hours() / 24)
}

// StatusOf buckets an expiry date into expired, expiring soon, or fresh
func StatusOf(expiry, now time.Time, soonDays int) string {
	days := DaysUntilExpiry(expiry, now)
	switch {
	case days < 0:
		return StatusExpired
	case days <= soonDays:
		return StatusExpiringSoon
	default:
		return StatusFresh
	}
}

// FormatQuantity renders a quantity with its unit, trimming trailing
// zeros: 2 -> "2 kg", 0.5 -> "0.5 l", 3 with no unit -> "3"
func FormatQuantity(quantity float64, unit string) string {
	s := strconv.FormatFloat(quantity, 'f', -1, 64)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// ItemInput carries the writable fields of a pantry item
type ItemInput struct {
	Name         string
	Category     string
	Quantity     float64
	Unit         string
	PurchaseDate time.Time
	ExpiryDate   time.Time
}

// Service provides pantry item operations for the API layer
type Service struct {
	store    storage.Store
	hub      *events.Hub
	soonDays int
}

// NewService creates a pantry service. soonDays is the expiring-soon
// threshold in days.
func NewService(store storage.Store, hub *events.Hub, soonDays int) *Service {
	if soonDays <= 0 {
		soonDays = 3
	}
	return &Service{store: store, hub: hub, soonDays: soonDays}
}

// SoonDays exposes the expiring-soon threshold
func (s *Service) SoonDays() int {
	return s.soonDays
}

// Add creates a pantry item for the user
func (s *Service) Add(ctx context.Context, userID string, input ItemInput) (*storage.PantryItem, error) {
	now := time.Now()
	item := &storage.PantryItem{
		ID:           uuid.NewString(),
		UserID:       userID,
		Name:         strings.TrimSpace(input.Name),
		Category:     strings.TrimSpace(input.Category),
		Quantity:     input.Quantity,
		Unit:         strings.TrimSpace(input.Unit),
		PurchaseDate: input.PurchaseDate,
		ExpiryDate:   input.ExpiryDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.SaveItem(item); err != nil {
		return nil, err
	}

	s.publish(events.TypeItemAdded, userID, item)
	return item, nil
}

// Get returns one of the user's items
func (s *Service) Get(ctx context.Context, id, userID string) (*storage.PantryItem, error) {
	return s.store.GetItem(id, userID)
}

// List returns the user's items, optionally filtered by category
func (s *Service) List(ctx context.Context, userID, category string) ([]*storage.PantryItem, error) {
	return s.store.GetItems(userID, category)
}

// ListExpiring returns the user's items expiring within the given number
// of days, already-expired items included
func (s *Service) ListExpiring(ctx context.Context, userID string, days int) ([]*storage.PantryItem, error) {
	if days <= 0 {
		days = s.soonDays
	}
	return s.store.GetItemsExpiringWithin(userID, days)
}

// Update replaces the writable fields of an item
func (s *Service) Update(ctx context.Context, id, userID string, input ItemInput) (*storage.PantryItem, error) {
	item, err := s.store.GetItem(id, userID)
	if err != nil {
		return nil, err
	}

	item.Name = strings.TrimSpace(input.Name)
	item.Category = strings.TrimSpace(input.Category)
	item.Quantity = input.Quantity
	item.Unit = strings.TrimSpace(input.Unit)
	item.PurchaseDate = input.PurchaseDate
	item.ExpiryDate = input.ExpiryDate
	item.UpdatedAt = time.Now()

	if err := s.store.UpdateItem(item); err != nil {
		return nil, err
	}

	s.publish(events.TypeItemUpdated, userID, item)
	return item, nil
}

// Delete removes one of the user's items
func (s *Service) Delete(ctx context.Context, id, userID string) error {
	if err := s.store.DeleteItem(id, userID); err != nil {
		return err
	}
	s.publish(events.TypeItemDeleted, userID, map[string]string{"id": id})
	return nil
}

func (s *Service) publish(eventType, userID string, payload any) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(&events.Event{
		Type:    eventType,
		UserID:  userID,
		Payload: payload,
	})
}
