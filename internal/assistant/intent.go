package assistant

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/history"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/logging"
)

// Intent classifies what the user wants from a message.
type Intent string

const (
	// IntentBooking means the user wants to make an appointment.
	IntentBooking Intent = "BOOKING"
	// IntentCancel means the user wants to cancel an existing booking.
	IntentCancel Intent = "CANCEL"
	// IntentQuery means the user is asking a question about the documents.
	IntentQuery Intent = "QUERY"
)

const intentSystemPrompt = `You classify messages sent to a clinic's appointment assistant.
Reply with exactly one word:
BOOKING - the user wants to make or reschedule an appointment
CANCEL - the user wants to cancel an appointment they already booked
QUERY - anything else (questions about services, doctors, fees, hours, documents)`

// intentContextTurns is how many recent turns the classifier sees.
const intentContextTurns = 6

// DetectIntent classifies the user message, asking the chat model first and
// falling back to keyword matching when the model is unreachable or answers
// with something unexpected. The fallback errs toward QUERY: a misrouted
// question is cheaper than a misrouted booking.
func DetectIntent(ctx context.Context, model ChatModel, message string, msgs []history.Message) Intent {
	log := logging.FromContext(ctx)

	// Recent turns go inline as a transcript rather than as chat turns, so
	// prior assistant replies cannot leak into the one-word answer.
	input := message
	if len(msgs) > 0 {
		input = "Conversation so far:\n" + history.Transcript(history.Recent(msgs, intentContextTurns)) +
			"\n\nLatest message: " + message
	}

	reply, err := model.Complete(ctx, intentSystemPrompt, nil, input)
	if err != nil {
		log.Warn("intent: model classification failed, using keyword fallback",
			slog.Any("error", err),
		)
		return keywordIntent(message)
	}

	switch strings.ToUpper(strings.TrimSpace(reply)) {
	case string(IntentBooking):
		return IntentBooking
	case string(IntentCancel):
		return IntentCancel
	case string(IntentQuery):
		return IntentQuery
	default:
		log.Debug("intent: unexpected model reply, using keyword fallback",
			slog.String("reply", reply),
		)
		return keywordIntent(message)
	}
}

// cancelKeywords are checked before bookingKeywords: "cancel my appointment"
// must not start a new booking.
var cancelKeywords = []string{"cancel"}

// bookingKeywords are message fragments that signal booking intent.
var bookingKeywords = []string{"book", "appointment", "schedule", "reserve"}

// keywordIntent is the deterministic fallback classifier.
func keywordIntent(message string) Intent {
	lower := strings.ToLower(message)
	for _, kw := range cancelKeywords {
		if strings.Contains(lower, kw) {
			return IntentCancel
		}
	}
	for _, kw := range bookingKeywords {
		if strings.Contains(lower, kw) {
			return IntentBooking
		}
	}
	return IntentQuery
}
