package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/store"
)

func seedBookings(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	ctx := context.Background()

	omar, err := st.GetOrCreateCustomer(ctx, "Omar Haddad", "omar@example.com", "5550001111")
	if err != nil {
		t.Fatalf("customer: %v", err)
	}
	lena, err := st.GetOrCreateCustomer(ctx, "Lena Fischer", "lena@example.com", "5552223333")
	if err != nil {
		t.Fatalf("customer: %v", err)
	}
	if _, err := st.CreateBooking(ctx, omar.ID, "REF-OMAR", "Cardiology", "2026-09-15", "10:30"); err != nil {
		t.Fatalf("booking: %v", err)
	}
	if _, err := st.CreateBooking(ctx, lena.ID, "REF-LENA", "Dermatology", "2026-09-20", "14:00"); err != nil {
		t.Fatalf("booking: %v", err)
	}
	return st
}

func getBookings(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, []bookingItem) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var items []bookingItem
	if rec.Code == http.StatusOK {
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return rec, items
}

func Test_Bookings_FilterByEmail(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &fakeChat{}, &fakeIngestor{}, seedBookings(t), nil)

	rec, items := getBookings(t, s.Handler(), "/api/bookings?email=omar@example.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(items) != 1 || items[0].Reference != "REF-OMAR" || items[0].Name != "Omar Haddad" {
		t.Errorf("items = %+v", items)
	}
}

func Test_Bookings_ListAll(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &fakeChat{}, &fakeIngestor{}, seedBookings(t), nil)

	rec, items := getBookings(t, s.Handler(), "/api/bookings")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(items) != 2 {
		t.Errorf("want 2 bookings, got %d", len(items))
	}
}

func Test_Bookings_UnknownEmailIsEmptyList(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &fakeChat{}, &fakeIngestor{}, seedBookings(t), nil)

	rec, items := getBookings(t, s.Handler(), "/api/bookings?email=nobody@example.com")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(items) != 0 {
		t.Errorf("want empty list, got %+v", items)
	}
}

func Test_Bookings_PersistenceDisabled(t *testing.T) {
	t.Parallel()
	s := newTestServer(t, &fakeChat{}, &fakeIngestor{}, nil, nil)

	rec, _ := getBookings(t, s.Handler(), "/api/bookings")
	if rec.Code != http.StatusNotImplemented {
		t.Errorf("status = %d, want 501", rec.Code)
	}
}
