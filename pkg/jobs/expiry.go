// Package jobs runs the background work of the server. The only job today
// is the expiry scan, which warns users about pantry items going bad.
package jobs

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"pantrypal/pkg/events"
	"pantrypal/pkg/logger"
	"pantrypal/pkg/pantry"
	"pantrypal/pkg/storage"
)

// Swappable for tests
var nowFunc = time.Now

// ExpiryWarning is the payload of an expiry_warning event
type ExpiryWarning struct {
	ItemID     string `json:"item_id"`
	Name       string `json:"name"`
	DaysLeft   int    `json:"days_left"`
	Status     string `json:"status"`
	QuantityFm string `json:"quantity"`
}

// ExpiryScanner periodically finds items expiring within the warning
// window and publishes warnings to their owners
type ExpiryScanner struct {
	cron     *cron.Cron
	store    storage.Store
	hub      *events.Hub
	warnDays int
	log      *logger.Logger
}

// NewExpiryScanner creates the scanner. warnDays is the warning window
// in days.
func NewExpiryScanner(store storage.Store, hub *events.Hub, warnDays int) *ExpiryScanner {
	if warnDays <= 0 {
		warnDays = 3
	}
	return &ExpiryScanner{
		cron:     cron.New(),
		store:    store,
		hub:      hub,
		warnDays: warnDays,
		log:      logger.Get().With("component", "expiry-scan"),
	}
}

// Start schedules the scan with a standard 5-field cron expression
func (s *ExpiryScanner) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		if _, err := s.ScanOnce(); err != nil {
			s.log.Error("expiry scan failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	s.cron.Start()
	s.log.Info("expiry scan scheduled", "cron", spec, "warn_days", s.warnDays)
	return nil
}

// Stop halts the schedule; a running scan finishes first
func (s *ExpiryScanner) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ScanOnce runs a single scan and returns the number of warnings published
func (s *ExpiryScanner) ScanOnce() (int, error) {
	items, err := s.store.GetAllItemsExpiringWithin(s.warnDays)
	if err != nil {
		return 0, err
	}

	for _, item := range items {
		days := pantry.DaysUntilExpiry(item.ExpiryDate, nowFunc())
		s.hub.Publish(&events.Event{
			Type:   events.TypeExpiryWarning,
			UserID: item.UserID,
			Payload: ExpiryWarning{
				ItemID:     item.ID,
				Name:       item.Name,
				DaysLeft:   days,
				Status:     pantry.StatusOf(item.ExpiryDate, nowFunc(), s.warnDays),
				QuantityFm: pantry.FormatQuantity(item.Quantity, item.Unit),
			},
		})
	}

	if len(items) > 0 {
		s.log.Info("expiry scan complete", "warnings", len(items))
	}
	return len(items), nil
}
