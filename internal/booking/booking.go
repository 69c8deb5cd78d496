// Package booking implements the slot-filling state machine for appointment
// booking. The assistant collects six fields in a fixed order, validating
// each answer before moving on, then asks for a final confirmation before
// the booking is committed.
package booking

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Field names, in the order they are collected.
const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldPhone   = "phone"
	FieldService = "service"
	FieldDate    = "date"
	FieldTime    = "time"
)

// Order is the fixed collection order of booking fields.
var Order = []string{FieldName, FieldEmail, FieldPhone, FieldService, FieldDate, FieldTime}

// State tracks one in-progress booking. A session has at most one State;
// it is discarded once the booking is committed or abandoned.
type State struct {
	// Values holds the collected field values keyed by field name.
	Values map[string]string

	// AwaitingConfirmation is set once all fields are collected and the
	// summary has been shown; the next user message is treated as a
	// yes/no answer.
	AwaitingConfirmation bool
}

// NewState returns an empty booking state.
func NewState() *State {
	return &State{Values: make(map[string]string)}
}

// NextField returns the first field in collection order that has no value
// yet, or "" when all fields are filled.
func (s *State) NextField() string {
	for _, f := range Order {
		if s.Values[f] == "" {
			return f
		}
	}
	return ""
}

// Complete reports whether every field has a value.
func (s *State) Complete() bool { return s.NextField() == "" }

// Set validates value for the given field and stores it. The returned error
// is user-facing: it explains what a valid answer looks like.
func (s *State) Set(field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("that looks empty — %s", Prompt(field))
	}

	switch field {
	case FieldName:
		if len(value) < 2 {
			return fmt.Errorf("that name looks too short, could you give your full name?")
		}
	case FieldEmail:
		if !emailPattern.MatchString(value) {
			return fmt.Errorf("%q doesn't look like a valid email address, could you re-enter it?", value)
		}
	case FieldPhone:
		if digitCount(value) < 10 {
			return fmt.Errorf("that phone number looks too short — please include at least 10 digits")
		}
	case FieldService:
		// Any non-empty service is accepted; the catalog annotates fees separately.
	case FieldDate:
		d, err := time.Parse("2006-01-02", value)
		if err != nil {
			return fmt.Errorf("please give the date as YYYY-MM-DD, e.g. 2026-09-15")
		}
		// Compare calendar days in the caller's timezone; Truncate would
		// round to UTC midnight and misclassify near the day boundary.
		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if d.Before(today) {
			return fmt.Errorf("that date is in the past — please pick a future date")
		}
	case FieldTime:
		if _, err := time.Parse("15:04", value); err != nil {
			return fmt.Errorf("please give the time as HH:MM in 24-hour format, e.g. 14:30")
		}
	default:
		return fmt.Errorf("unknown booking field %q", field)
	}

	s.Values[field] = value
	return nil
}

// Prompt returns the question the assistant asks to collect the given field.
func Prompt(field string) string {
	switch field {
	case FieldName:
		return "May I have your full name?"
	case FieldEmail:
		return "What email address should the confirmation go to?"
	case FieldPhone:
		return "What's the best phone number to reach you?"
	case FieldService:
		return "Which service or doctor would you like to book?"
	case FieldDate:
		return "What date works for you? (YYYY-MM-DD)"
	case FieldTime:
		return "And what time? (HH:MM, 24-hour)"
	default:
		return "Could you tell me more?"
	}
}

// Summary renders the collected fields for the confirmation step.
func (s *State) Summary() string {
	var b strings.Builder
	b.WriteString("Here's what I have:\n")
	fmt.Fprintf(&b, "  Name:    %s\n", s.Values[FieldName])
	fmt.Fprintf(&b, "  Email:   %s\n", s.Values[FieldEmail])
	fmt.Fprintf(&b, "  Phone:   %s\n", s.Values[FieldPhone])
	fmt.Fprintf(&b, "  Service: %s\n", s.Values[FieldService])
	fmt.Fprintf(&b, "  Date:    %s\n", s.Values[FieldDate])
	fmt.Fprintf(&b, "  Time:    %s\n", s.Values[FieldTime])
	b.WriteString("Shall I confirm this booking? (yes/no)")
	return b.String()
}

// Reset clears all collected values so the flow starts over.
func (s *State) Reset() {
	s.Values = make(map[string]string)
	s.AwaitingConfirmation = false
}

// IsAffirmative reports whether a confirmation answer means yes.
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y", "yeah", "yep", "sure", "confirm", "ok", "okay":
		return true
	}
	return false
}

// IsNegative reports whether a confirmation answer means no.
func IsNegative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "no", "n", "nope", "cancel", "stop", "abort":
		return true
	}
	return false
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func digitCount(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
