// Package store provides the SQLite-backed persistence layer for the booking
// assistant: customers, their bookings, and per-session conversation history.
// Everything lives in a single local database file that survives restarts.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/history"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("store: not found")

// Booking statuses.
const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

// Customer is a person who has made at least one booking. Customers are
// deduplicated by email address.
type Customer struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	CreatedAt time.Time
}

// Booking is a confirmed appointment. Reference is the short unique code
// quoted back to the customer and used in confirmation emails.
type Booking struct {
	ID         int64
	CustomerID int64
	Reference  string
	Service    string
	Date       string // YYYY-MM-DD
	Time       string // HH:MM
	Status     string
	CreatedAt  time.Time

	// CustomerName and CustomerEmail are populated by queries that join
	// the customers table; zero otherwise.
	CustomerName  string
	CustomerEmail string
}

// SQLiteStore persists customers, bookings, and conversation history in a
// local SQLite database. Safe for concurrent use.
type SQLiteStore struct {
	db *sql.DB
}

// DefaultDBPath returns the default path for the bookings database.
// It resolves to ~/.bookassist/bookings.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("store: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".bookassist")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("store: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "bookings.db"), nil
}

// Open opens (or creates) a SQLiteStore at the given path and runs the schema
// migration. Use ":memory:" for an in-memory database in tests.
func Open(path string) (*SQLiteStore, error) {
	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS customers (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT    NOT NULL,
    email       TEXT    NOT NULL UNIQUE,
    phone       TEXT    NOT NULL,
    created_at  INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE TABLE IF NOT EXISTS bookings (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id  INTEGER NOT NULL REFERENCES customers(id),
    reference    TEXT    NOT NULL UNIQUE,
    service      TEXT    NOT NULL,
    date         TEXT    NOT NULL,  -- YYYY-MM-DD
    time         TEXT    NOT NULL,  -- HH:MM
    status       TEXT    NOT NULL CHECK(status IN ('confirmed','cancelled')),
    created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_bookings_customer ON bookings (customer_id);
CREATE TABLE IF NOT EXISTS conversations (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    session      TEXT    NOT NULL,
    role         TEXT    NOT NULL CHECK(role IN ('user','assistant')),
    content      TEXT    NOT NULL,
    created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_conversations_session_created
    ON conversations (session, created_at);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

// GetOrCreateCustomer returns the customer with the given email, creating the
// row if it does not exist. Name and phone are refreshed on every call so the
// latest details provided during booking win.
func (s *SQLiteStore) GetOrCreateCustomer(ctx context.Context, name, email, phone string) (Customer, error) {
	c := Customer{Name: name, Email: email, Phone: phone}

	var ts int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at FROM customers WHERE email = ?`, email,
	).Scan(&c.ID, &ts)
	switch {
	case err == nil:
		c.CreatedAt = time.Unix(ts, 0)
		if _, err := s.db.ExecContext(ctx,
			`UPDATE customers SET name = ?, phone = ? WHERE id = ?`, name, phone, c.ID,
		); err != nil {
			return Customer{}, fmt.Errorf("store: update customer: %w", err)
		}
		return c, nil

	case errors.Is(err, sql.ErrNoRows):
		now := time.Now()
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO customers (name, email, phone, created_at) VALUES (?, ?, ?, ?)`,
			name, email, phone, now.Unix(),
		)
		if err != nil {
			return Customer{}, fmt.Errorf("store: create customer: %w", err)
		}
		c.ID, err = res.LastInsertId()
		if err != nil {
			return Customer{}, fmt.Errorf("store: create customer id: %w", err)
		}
		c.CreatedAt = now
		return c, nil

	default:
		return Customer{}, fmt.Errorf("store: lookup customer: %w", err)
	}
}

// CreateBooking records a confirmed booking for the given customer.
func (s *SQLiteStore) CreateBooking(ctx context.Context, customerID int64, reference, service, date, timeOfDay string) (Booking, error) {
	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO bookings (customer_id, reference, service, date, time, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		customerID, reference, service, date, timeOfDay, StatusConfirmed, now.Unix(),
	)
	if err != nil {
		return Booking{}, fmt.Errorf("store: create booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Booking{}, fmt.Errorf("store: create booking id: %w", err)
	}
	return Booking{
		ID:         id,
		CustomerID: customerID,
		Reference:  reference,
		Service:    service,
		Date:       date,
		Time:       timeOfDay,
		Status:     StatusConfirmed,
		CreatedAt:  now,
	}, nil
}

const bookingColumns = `
b.id, b.customer_id, b.reference, b.service, b.date, b.time, b.status, b.created_at,
c.name, c.email`

// BookingsByEmail returns all bookings for the customer with the given email,
// newest first. An unknown email yields an empty slice, not an error.
func (s *SQLiteStore) BookingsByEmail(ctx context.Context, email string) ([]Booking, error) {
	q := `SELECT ` + bookingColumns + `
FROM   bookings b
JOIN   customers c ON c.id = b.customer_id
WHERE  c.email = ?
ORDER  BY b.created_at DESC, b.id DESC`

	rows, err := s.db.QueryContext(ctx, q, email)
	if err != nil {
		return nil, fmt.Errorf("store: bookings by email: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

// AllBookings returns every booking, newest first.
func (s *SQLiteStore) AllBookings(ctx context.Context) ([]Booking, error) {
	q := `SELECT ` + bookingColumns + `
FROM   bookings b
JOIN   customers c ON c.id = b.customer_id
ORDER  BY b.created_at DESC, b.id DESC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("store: all bookings: %w", err)
	}
	defer rows.Close()
	return scanBookings(rows)
}

func scanBookings(rows *sql.Rows) ([]Booking, error) {
	var bookings []Booking
	for rows.Next() {
		var b Booking
		var ts int64
		if err := rows.Scan(&b.ID, &b.CustomerID, &b.Reference, &b.Service, &b.Date, &b.Time,
			&b.Status, &ts, &b.CustomerName, &b.CustomerEmail); err != nil {
			return nil, fmt.Errorf("store: booking scan: %w", err)
		}
		b.CreatedAt = time.Unix(ts, 0)
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: booking rows: %w", err)
	}
	return bookings, nil
}

// UpdateBookingStatus sets the status of the booking with the given reference.
// Returns [ErrNotFound] when no booking has that reference.
func (s *SQLiteStore) UpdateBookingStatus(ctx context.Context, reference, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE bookings SET status = ? WHERE reference = ?`, status, reference,
	)
	if err != nil {
		return fmt.Errorf("store: update booking status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update booking status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("store: booking %q: %w", reference, ErrNotFound)
	}
	return nil
}

// AppendMessage persists a single conversation turn for the given session.
func (s *SQLiteStore) AppendMessage(ctx context.Context, session string, role history.Role, content string) error {
	const q = `INSERT INTO conversations (session, role, content, created_at) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, session, string(role), content, time.Now().Unix()); err != nil {
		return fmt.Errorf("store: append message: %w", err)
	}
	return nil
}

// RecentMessages returns the most recent n messages for the session, ordered
// oldest-first. Uses a subquery to select the tail then re-order for injection.
func (s *SQLiteStore) RecentMessages(ctx context.Context, session string, n int) ([]history.Message, error) {
	const q = `
SELECT role, content FROM (
    SELECT id, role, content, created_at
    FROM   conversations
    WHERE  session = ?
    ORDER  BY created_at DESC, id DESC
    LIMIT  ?
) ORDER BY created_at ASC, id ASC`

	rows, err := s.db.QueryContext(ctx, q, session, n)
	if err != nil {
		return nil, fmt.Errorf("store: recent messages: %w", err)
	}
	defer rows.Close()

	var msgs []history.Message
	for rows.Next() {
		var role, content string
		if err := rows.Scan(&role, &content); err != nil {
			return nil, fmt.Errorf("store: recent messages scan: %w", err)
		}
		msgs = append(msgs, history.Message{Role: history.Role(role), Content: content})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: recent messages rows: %w", err)
	}
	return msgs, nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("store: close: %w", err)
	}
	return nil
}
