package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/booking"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/catalog"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/embedder"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/history"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/logging"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/mailer"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/rag"
	"github.com/Rahwulkumar/AI-BOOKING-ASSISTANT/internal/store"
)

// User-facing replies for conditions that are not errors.
const (
	noDocsReply = "I don't have any documents loaded yet. Please upload a document and ask your question again."

	unavailableReply = "The document search service is unavailable right now. Please try again in a moment."
)

const answerSystemPrompt = `You are a helpful appointment booking assistant for a clinic.
Answer the user's question using ONLY the provided context. If the context
does not contain the answer, say you don't have that information. Keep
answers short and friendly.`

// Store is the persistence surface the assistant needs. *store.SQLiteStore
// satisfies it; a nil Store disables persistence without disabling the
// conversation.
type Store interface {
	GetOrCreateCustomer(ctx context.Context, name, email, phone string) (store.Customer, error)
	CreateBooking(ctx context.Context, customerID int64, reference, service, date, timeOfDay string) (store.Booking, error)
	UpdateBookingStatus(ctx context.Context, reference, status string) error
	AppendMessage(ctx context.Context, session string, role history.Role, content string) error
	RecentMessages(ctx context.Context, session string, n int) ([]history.Message, error)
}

// Config holds the assistant's tunables.
type Config struct {
	// TopK is the number of chunks retrieved per question. 0 means the
	// retriever's default.
	TopK int
	// MaxHistory is the number of recent messages kept per session.
	// 0 means history.DefaultMaxMessages.
	MaxHistory int
}

// session is the in-memory state of one conversation. mu serialises
// concurrent requests that share a session id.
type session struct {
	mu      sync.Mutex
	loaded  bool // persisted history restored
	msgs    []history.Message
	booking *booking.State

	// awaitingCancelRef is set after the assistant has asked for the
	// reference of the booking to cancel.
	awaitingCancelRef bool
}

// Assistant routes user messages between document question answering and the
// booking flow. Safe for concurrent use; each session is independent.
type Assistant struct {
	model      ChatModel
	retriever  rag.Retriever
	store      Store          // nil disables persistence
	mailer     *mailer.Mailer // nil or disabled skips confirmation emails
	topK       int
	maxHistory int

	mu       sync.Mutex
	sessions map[string]*session
}

// New constructs an Assistant. store and m may be nil.
func New(model ChatModel, retriever rag.Retriever, st Store, m *mailer.Mailer, cfg Config) *Assistant {
	maxHistory := cfg.MaxHistory
	if maxHistory <= 0 {
		maxHistory = history.DefaultMaxMessages
	}
	return &Assistant{
		model:      model,
		retriever:  retriever,
		store:      st,
		mailer:     m,
		topK:       cfg.TopK,
		maxHistory: maxHistory,
		sessions:   make(map[string]*session),
	}
}

// Handle processes one user message for the given session and returns the
// assistant's reply.
func (a *Assistant) Handle(ctx context.Context, sessionID, message string) (string, error) {
	log := logging.FromContext(ctx)
	sess := a.session(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	a.restore(ctx, sessionID, sess)

	// Turns before this message; the message itself is passed explicitly so
	// the model never sees the question twice.
	prior := sess.msgs
	a.remember(ctx, sessionID, sess, history.RoleUser, message)

	var (
		reply string
		err   error
	)
	switch {
	case sess.booking != nil:
		reply, err = a.continueBooking(ctx, sessionID, sess, message)
	case sess.awaitingCancelRef:
		reply, err = a.finishCancel(ctx, sess, message)
	default:
		switch DetectIntent(ctx, a.model, message, prior) {
		case IntentBooking:
			sess.booking = booking.NewState()
			reply = "I can help you book an appointment. " + booking.Prompt(booking.FieldName)
		case IntentCancel:
			reply, err = a.startCancel(ctx, sess, message)
		default:
			reply, err = a.answer(ctx, prior, message)
		}
	}
	if err != nil {
		log.Error("assistant: handling message failed",
			slog.String("session", sessionID),
			slog.Any("error", err),
		)
		return "", err
	}

	a.remember(ctx, sessionID, sess, history.RoleAssistant, reply)
	return reply, nil
}

// session returns the state for sessionID, creating it on first use.
func (a *Assistant) session(id string) *session {
	a.mu.Lock()
	defer a.mu.Unlock()
	s, ok := a.sessions[id]
	if !ok {
		s = &session{}
		a.sessions[id] = s
	}
	return s
}

// restore seeds a fresh session's history from the store, so a session id
// carried across restarts resumes its conversation. Best-effort: a failed
// load starts the session empty.
func (a *Assistant) restore(ctx context.Context, sessionID string, sess *session) {
	if sess.loaded {
		return
	}
	sess.loaded = true
	if a.store == nil {
		return
	}
	msgs, err := a.store.RecentMessages(ctx, sessionID, a.maxHistory)
	if err != nil {
		logging.FromContext(ctx).Warn("assistant: loading session history failed",
			slog.String("session", sessionID),
			slog.Any("error", err),
		)
		return
	}
	sess.msgs = msgs
}

// remember appends a turn to the in-memory history, bounds it, and persists
// it best-effort.
func (a *Assistant) remember(ctx context.Context, sessionID string, sess *session, role history.Role, content string) {
	sess.msgs = history.Recent(append(sess.msgs, history.Message{Role: role, Content: content}), a.maxHistory)

	if a.store != nil {
		if err := a.store.AppendMessage(ctx, sessionID, role, content); err != nil {
			logging.FromContext(ctx).Warn("assistant: persisting message failed",
				slog.String("session", sessionID),
				slog.Any("error", err),
			)
		}
	}
}

// answer runs the retrieval-augmented answering path. prior holds the turns
// before the current message.
func (a *Assistant) answer(ctx context.Context, prior []history.Message, message string) (string, error) {
	chunks, err := a.retriever.Retrieve(ctx, message, a.topK)
	if err != nil {
		if errors.Is(err, embedder.ErrUnavailable) {
			return unavailableReply, nil
		}
		return "", fmt.Errorf("assistant: retrieval: %w", err)
	}

	contextText := rag.AssembleContext(chunks)
	if rag.IsNoContext(contextText) {
		return noDocsReply, nil
	}

	system := answerSystemPrompt + "\n\nContext:\n" + contextText
	fixed := []history.Message{
		{Role: history.RoleUser, Content: system},
		{Role: history.RoleUser, Content: message},
	}
	msgs := history.Trim(fixed, prior, history.DefaultMaxContextTokens)

	return a.model.Complete(ctx, system, msgs, message)
}

// referencePattern matches booking references like BK-3F2A9C1D.
var referencePattern = regexp.MustCompile(`(?i)\bBK-[0-9A-F]{8}\b`)

// startCancel begins cancelling an existing booking, asking for the
// reference when the message doesn't carry one.
func (a *Assistant) startCancel(ctx context.Context, sess *session, message string) (string, error) {
	if ref := referencePattern.FindString(message); ref != "" {
		return a.cancelByReference(ctx, ref)
	}
	if a.store == nil {
		return "I can't manage existing bookings right now. Please contact the clinic directly.", nil
	}
	sess.awaitingCancelRef = true
	return "I can cancel a booking for you. What is the booking reference? It looks like BK-3F2A9C1D.", nil
}

// finishCancel handles the turn after the assistant asked for a reference.
func (a *Assistant) finishCancel(ctx context.Context, sess *session, message string) (string, error) {
	if booking.IsNegative(message) {
		sess.awaitingCancelRef = false
		return "No problem, I've left your booking as it is. How else can I help?", nil
	}
	ref := referencePattern.FindString(message)
	if ref == "" {
		return "That doesn't look like a booking reference. It has the form BK-3F2A9C1D.", nil
	}
	sess.awaitingCancelRef = false
	return a.cancelByReference(ctx, ref)
}

// cancelByReference marks the booking cancelled in the store.
func (a *Assistant) cancelByReference(ctx context.Context, reference string) (string, error) {
	if a.store == nil {
		return "I can't manage existing bookings right now. Please contact the clinic directly.", nil
	}
	reference = strings.ToUpper(reference)
	err := a.store.UpdateBookingStatus(ctx, reference, store.StatusCancelled)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Sprintf("I couldn't find a booking with reference %s. Could you double-check it?", reference), nil
	case err != nil:
		return "", fmt.Errorf("assistant: cancelling booking: %w", err)
	}
	return fmt.Sprintf("Done, booking %s is cancelled. We hope to see you another time.", reference), nil
}

// continueBooking advances the slot-filling flow by one user message.
func (a *Assistant) continueBooking(ctx context.Context, sessionID string, sess *session, message string) (string, error) {
	st := sess.booking

	switch strings.ToLower(strings.TrimSpace(message)) {
	case "cancel", "stop", "abort", "never mind":
		sess.booking = nil
		return "No problem, I've cancelled the booking. How else can I help?", nil
	}

	if st.AwaitingConfirmation {
		switch {
		case booking.IsAffirmative(message):
			reply, err := a.commitBooking(ctx, st)
			if err != nil {
				return "", err
			}
			sess.booking = nil
			return reply, nil
		case booking.IsNegative(message):
			sess.booking = nil
			return "No problem, I've discarded those details. How else can I help?", nil
		default:
			return "Please answer yes to confirm the booking, or no to discard it.", nil
		}
	}

	field := st.NextField()
	value := a.extractField(ctx, field, message)
	if err := st.Set(field, value); err != nil {
		return err.Error(), nil
	}

	next := st.NextField()
	if next == "" {
		st.AwaitingConfirmation = true
		return st.Summary(), nil
	}

	prompt := booking.Prompt(next)
	if next == booking.FieldService {
		if options := a.serviceOptions(ctx); options != "" {
			prompt += "\n" + options
		}
	}
	if field == booking.FieldService {
		// Quote the matching doctor's fee so the user knows the cost
		// before committing.
		if matches := catalog.FindBySpecialty(a.doctors(ctx), st.Values[booking.FieldService]); len(matches) > 0 {
			d := matches[0]
			prompt = fmt.Sprintf("Dr. %s (%s) charges a consultation fee of $%d.\n%s", d.Name, d.Specialty, d.Fee, prompt)
		}
	}
	return prompt, nil
}

// extractField asks the model to pull the field value out of a free-form
// message, falling back to the raw message when the model is unavailable or
// finds nothing. Validation happens in booking.Set either way.
func (a *Assistant) extractField(ctx context.Context, field, message string) string {
	system := fmt.Sprintf(
		"Extract the user's %s from their message. Reply with the value only, nothing else. If the message does not contain it, reply exactly NOT_FOUND.",
		fieldDescription(field),
	)
	reply, err := a.model.Complete(ctx, system, nil, message)
	if err != nil || reply == "" || strings.Contains(strings.ToUpper(reply), "NOT_FOUND") {
		return strings.TrimSpace(message)
	}
	return strings.TrimSpace(reply)
}

// fieldDescription phrases a field for the extraction prompt.
func fieldDescription(field string) string {
	switch field {
	case booking.FieldName:
		return "full name"
	case booking.FieldEmail:
		return "email address"
	case booking.FieldPhone:
		return "phone number"
	case booking.FieldService:
		return "requested service or doctor"
	case booking.FieldDate:
		return "appointment date in YYYY-MM-DD format"
	case booking.FieldTime:
		return "appointment time in HH:MM 24-hour format"
	default:
		return field
	}
}

// doctors returns the catalog parsed from the uploaded documents, falling
// back to the built-in default when retrieval fails or parses nothing.
func (a *Assistant) doctors(ctx context.Context) []catalog.Doctor {
	if chunks, err := a.retriever.Retrieve(ctx, "doctors specialties consultation fees", a.topK); err == nil && len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, c := range chunks {
			texts[i] = c.Text
		}
		if parsed := catalog.FromContext(strings.Join(texts, "\n")); len(parsed) > 0 {
			return parsed
		}
	}
	return catalog.Default()
}

// serviceOptions lists the doctors found in the uploaded documents (or the
// built-in catalog) so the user can pick a service with its fee.
func (a *Assistant) serviceOptions(ctx context.Context) string {
	var b strings.Builder
	b.WriteString("Available doctors:")
	for _, d := range a.doctors(ctx) {
		fmt.Fprintf(&b, "\n  - Dr. %s (%s), Fee: $%d", d.Name, d.Specialty, d.Fee)
	}
	return b.String()
}

// commitBooking persists the booking, sends the confirmation email, and
// renders the final reply.
func (a *Assistant) commitBooking(ctx context.Context, st *booking.State) (string, error) {
	log := logging.FromContext(ctx)
	v := st.Values
	reference := newReference()

	if a.store != nil {
		customer, err := a.store.GetOrCreateCustomer(ctx, v[booking.FieldName], v[booking.FieldEmail], v[booking.FieldPhone])
		if err != nil {
			return "", fmt.Errorf("assistant: saving customer: %w", err)
		}
		if _, err := a.store.CreateBooking(ctx, customer.ID, reference, v[booking.FieldService], v[booking.FieldDate], v[booking.FieldTime]); err != nil {
			return "", fmt.Errorf("assistant: saving booking: %w", err)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your booking is confirmed!\n")
	fmt.Fprintf(&b, "  Reference: %s\n", reference)
	fmt.Fprintf(&b, "  Service:   %s\n", v[booking.FieldService])
	fmt.Fprintf(&b, "  Date:      %s at %s", v[booking.FieldDate], v[booking.FieldTime])

	if a.mailer.Enabled() {
		err := a.mailer.Send(v[booking.FieldEmail], mailer.Details{
			Name:      v[booking.FieldName],
			Service:   v[booking.FieldService],
			Date:      v[booking.FieldDate],
			Time:      v[booking.FieldTime],
			Reference: reference,
		})
		if err != nil {
			// Email failure must not unwind a committed booking.
			log.Warn("assistant: confirmation email failed",
				slog.String("reference", reference),
				slog.Any("error", err),
			)
		} else {
			fmt.Fprintf(&b, "\nA confirmation email is on its way to %s.", v[booking.FieldEmail])
		}
	}
	return b.String(), nil
}

// newReference generates a short booking reference like BK-3F2A9C1D.
func newReference() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "BK-" + id[:8]
}
