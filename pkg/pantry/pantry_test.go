package pantry

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	apperrors "pantrypal/pkg/errors"
	"pantrypal/pkg/storage"
)

func testService(t *testing.T) (*Service, storage.Store) {
	t.Helper()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "pantry_test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	user := &storage.User{ID: "user-1", Email: "ada@example.com", PasswordHash: "x", CreatedAt: time.Now()}
	if err := store.CreateUser(user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	return NewService(store, nil, 3), store
}

func TestDaysUntilExpiry(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

	cases := []struct {
		expiry time.Time
		want   int
	}{
		{time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC), 3},
		{time.Date(2026, 8, 30, 23, 0, 0, 0, time.UTC), 0},
		// Early tomorrow is still one calendar day away
		{time.Date(2026, 8, 31, 1, 0, 0, 0, time.UTC), 1},
		{time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC), -2},
	}
	for _, tc := range cases {
		if got := DaysUntilExpiry(tc.expiry, now); got != tc.want {
			t.Errorf("DaysUntilExpiry(%v) = %d, want %d", tc.expiry, got, tc.want)
		}
	}
}

func TestStatusOf(t *testing.T) {
	now := time.Date(2026, 8, 30, 15, 0, 0, 0, time.UTC)

	cases := []struct {
		days int
		want string
	}{
		{-1, StatusExpired},
		{0, StatusExpiringSoon},
		{3, StatusExpiringSoon},
		{4, StatusFresh},
		{30, StatusFresh},
	}
	for _, tc := range cases {
		expiry := now.AddDate(0, 0, tc.days)
		if got := StatusOf(expiry, now, 3); got != tc.want {
			t.Errorf("StatusOf(+%dd) = %s, want %s", tc.days, got, tc.want)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	cases := []struct {
		quantity float64
		unit     string
		want     string
	}{
		{2, "kg", "2 kg"},
		{0.5, "l", "0.5 l"},
		{1.50, "kg", "1.5 kg"},
		{3, "", "3"},
		{12, "pcs", "12 pcs"},
	}
	for _, tc := range cases {
		if got := FormatQuantity(tc.quantity, tc.unit); got != tc.want {
			t.Errorf("FormatQuantity(%v, %q) = %q, want %q", tc.quantity, tc.unit, got, tc.want)
		}
	}
}

func TestAddAndList(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	now := time.Now()
	item, err := svc.Add(ctx, "user-1", ItemInput{
		Name:         "  Milk ",
		Category:     "dairy",
		Quantity:     2,
		Unit:         "l",
		PurchaseDate: now,
		ExpiryDate:   now.AddDate(0, 0, 5),
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if item.ID == "" {
		t.Error("Item should get an ID")
	}
	if item.Name != "Milk" {
		t.Errorf("Name should be trimmed, got %q", item.Name)
	}

	items, err := svc.List(ctx, "user-1", "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(items))
	}
}

func TestListExpiringDefaultsToThreshold(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	now := time.Now()
	for _, spec := range []struct {
		name string
		days int
	}{
		{"soon", 2},
		{"later", 10},
	} {
		if _, err := svc.Add(ctx, "user-1", ItemInput{
			Name: spec.name, ExpiryDate: now.AddDate(0, 0, spec.days), PurchaseDate: now,
		}); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	expiring, err := svc.ListExpiring(ctx, "user-1", 0)
	if err != nil {
		t.Fatalf("ListExpiring failed: %v", err)
	}
	if len(expiring) != 1 || expiring[0].Name != "soon" {
		t.Errorf("Expected only the soon item, got %d items", len(expiring))
	}
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	now := time.Now()
	item, err := svc.Add(ctx, "user-1", ItemInput{
		Name: "Milk", Quantity: 2, Unit: "l",
		PurchaseDate: now, ExpiryDate: now.AddDate(0, 0, 5),
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	updated, err := svc.Update(ctx, item.ID, "user-1", ItemInput{
		Name: "Oat Milk", Quantity: 1, Unit: "l",
		PurchaseDate: now, ExpiryDate: now.AddDate(0, 0, 8),
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != "Oat Milk" || updated.Quantity != 1 {
		t.Errorf("Update did not apply: %+v", updated)
	}

	if err := svc.Delete(ctx, item.ID, "user-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := svc.Get(ctx, item.ID, "user-1"); !errors.Is(err, apperrors.ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound, got %v", err)
	}
}

func TestUpdateMissingItem(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", "user-1", ItemInput{Name: "x"})
	if !errors.Is(err, apperrors.ErrItemNotFound) {
		t.Errorf("Expected ErrItemNotFound, got %v", err)
	}
}
