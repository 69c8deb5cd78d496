package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/logging"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/store"
)

// handleBookings handles GET /api/bookings. With an email query parameter it
// returns that customer's bookings; without one it returns all bookings.
func (s *Server) handleBookings(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context())

	if s.bookings == nil {
		http.Error(w, "booking persistence is disabled", http.StatusNotImplemented)
		return
	}

	var (
		rows []store.Booking
		err  error
	)
	if email := r.URL.Query().Get("email"); email != "" {
		rows, err = s.bookings.BookingsByEmail(r.Context(), email)
	} else {
		rows, err = s.bookings.AllBookings(r.Context())
	}
	if err != nil {
		log.Error("bookings: lookup failed", slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	items := make([]bookingItem, len(rows))
	for i, b := range rows {
		items[i] = bookingItem{
			Reference: b.Reference,
			Name:      b.CustomerName,
			Email:     b.CustomerEmail,
			Service:   b.Service,
			Date:      b.Date,
			Time:      b.Time,
			Status:    b.Status,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(items); err != nil {
		log.Error("bookings: encode response", slog.Any("error", err))
	}
}
