// Package roster keeps the rendered activity roster in step with the
// activities API across loads, signups and unregisters.
package roster

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Shivanand-hulikatti/activity-signup/internal/client"
	"github.com/Shivanand-hulikatti/activity-signup/internal/model"
)

// User-facing messages.
const (
	LoadFailedMessage          = "Failed to load activities. Please try again later."
	SignupFallbackMessage      = "An error occurred"
	SignupTransportMessage     = "Failed to sign up. Please try again."
	UnregisterFallbackMessage  = "Failed to unregister participant."
	UnregisterTransportMessage = "Failed to unregister. Please try again."
)

// StatusTTL is how long a status message stays visible.
const StatusTTL = 5 * time.Second

// API is the subset of the activities API the view needs. *client.Client
// implements it; API-level failures are reported as *client.APIError.
type API interface {
	ListActivities(ctx context.Context) (model.Activities, error)
	Signup(ctx context.Context, activity, email string) (string, error)
	Unregister(ctx context.Context, activity, participant string) error
}

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(prompt string) bool
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(prompt string) bool

// Confirm calls f(prompt).
func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Scheduler runs f once after d and returns a function that cancels it.
// It must not call f synchronously.
type Scheduler func(d time.Duration, f func()) (cancel func())

func afterFunc(d time.Duration, f func()) func() {
	t := time.AfterFunc(d, f)
	return func() { t.Stop() }
}

// StatusKind styles the status area.
type StatusKind string

const (
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// Status is the signup message area.
type Status struct {
	Message string
	Kind    StatusKind
	Visible bool
}

// OutcomeKind classifies the result of a user action.
type OutcomeKind int

const (
	Succeeded OutcomeKind = iota
	Failed
	Declined
)

// Outcome is the result of a signup or unregister action.
type Outcome struct {
	Kind    OutcomeKind
	Message string
}

// Page is a consistent copy of everything the view displays.
type Page struct {
	Cards   []Card
	Options []SelectOption
	// Failure replaces the card list when the last load failed.
	Failure string
	Status  Status
	// Alert is a blocking message raised by a failed unregister.
	Alert string
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithScheduler replaces the timer used to hide the status area.
func WithScheduler(s Scheduler) ViewOption {
	return func(v *View) { v.schedule = s }
}

// View is the roster view context: the rendered cards, the activity
// selector, the status area and the pending alert. One View is created at
// startup and shared by every request; its methods are safe for
// concurrent use. Overlapping actions are not coordinated, so the last
// response to arrive decides what the view shows.
type View struct {
	api      API
	logger   *zap.Logger
	schedule Scheduler

	mu         sync.Mutex
	cards      []Card
	options    []SelectOption
	failure    string
	status     Status
	statusSeq  uint64
	cancelHide func()
	alert      string
}

// New creates an empty view backed by api. Errors are logged to logger.
func New(api API, logger *zap.Logger, opts ...ViewOption) *View {
	if logger == nil {
		logger = zap.NewNop()
	}
	v := &View{
		api:      api,
		logger:   logger,
		schedule: afterFunc,
		options:  placeholderOptions(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Load fetches the activity collection and re-renders the cards and the
// selector from scratch. A failure is logged and shown in place of the
// cards; it is never returned.
func (v *View) Load(ctx context.Context) {
	activities, err := v.api.ListActivities(ctx)
	if err != nil {
		v.logger.Error("fetch activities", zap.Error(err))
		v.mu.Lock()
		v.cards = nil
		v.failure = LoadFailedMessage
		v.mu.Unlock()
		return
	}

	cards, options := Render(activities)
	v.mu.Lock()
	v.cards = cards
	v.options = options
	v.failure = ""
	v.mu.Unlock()
	v.logger.Debug("activities loaded", zap.Int("count", len(cards)))
}

// SubmitSignup signs email up for activity and reports the result in the
// status area. On success the new row is added to the activity's card.
// The email is trimmed first, matching what the API stores.
func (v *View) SubmitSignup(ctx context.Context, activity, email string) Outcome {
	email = strings.TrimSpace(email)
	message, err := v.api.Signup(ctx, activity, email)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			msg := apiErr.Detail
			if msg == "" {
				msg = SignupFallbackMessage
			}
			v.showStatus(msg, StatusError)
			return Outcome{Kind: Failed, Message: msg}
		}
		v.logger.Error("sign up", zap.Error(err), zap.String("activity", activity))
		v.showStatus(SignupTransportMessage, StatusError)
		return Outcome{Kind: Failed, Message: SignupTransportMessage}
	}

	v.mu.Lock()
	v.insertRowLocked(RowKey{Activity: activity, Participant: email})
	v.mu.Unlock()
	v.showStatus(message, StatusSuccess)
	return Outcome{Kind: Succeeded, Message: message}
}

// UnregisterPrompt is the confirmation question for removing a row.
func UnregisterPrompt(activity, participant string) string {
	return fmt.Sprintf("Unregister %s from %s?", participant, activity)
}

// Unregister removes participant from activity once confirm agrees. On
// success only the matching row is removed; failures raise an alert.
func (v *View) Unregister(ctx context.Context, activity, participant string, confirm Confirmer) Outcome {
	if confirm == nil || !confirm.Confirm(UnregisterPrompt(activity, participant)) {
		return Outcome{Kind: Declined}
	}

	if err := v.api.Unregister(ctx, activity, participant); err != nil {
		msg := UnregisterTransportMessage
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			msg = apiErr.Detail
			if msg == "" {
				msg = UnregisterFallbackMessage
			}
		} else {
			v.logger.Error("unregister", zap.Error(err),
				zap.String("activity", activity),
				zap.String("participant", participant),
			)
		}
		v.mu.Lock()
		v.alert = msg
		v.mu.Unlock()
		return Outcome{Kind: Failed, Message: msg}
	}

	v.mu.Lock()
	v.removeRowLocked(RowKey{Activity: activity, Participant: participant})
	v.mu.Unlock()
	return Outcome{Kind: Succeeded}
}

// Snapshot returns a copy of the current page and consumes the pending
// alert, so each alert is shown once.
func (v *View) Snapshot() Page {
	v.mu.Lock()
	defer v.mu.Unlock()

	cards := make([]Card, len(v.cards))
	for i, c := range v.cards {
		c.Rows = slices.Clone(c.Rows)
		cards[i] = c
	}
	page := Page{
		Cards:   cards,
		Options: slices.Clone(v.options),
		Failure: v.failure,
		Status:  v.status,
		Alert:   v.alert,
	}
	v.alert = ""
	return page
}

// showStatus displays message and restarts the hide timer, so an older
// timer cannot hide a newer message.
func (v *View) showStatus(message string, kind StatusKind) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancelHide != nil {
		v.cancelHide()
	}
	v.statusSeq++
	seq := v.statusSeq
	v.status = Status{Message: message, Kind: kind, Visible: true}
	v.cancelHide = v.schedule(StatusTTL, func() { v.hideStatus(seq) })
}

func (v *View) hideStatus(seq uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if seq != v.statusSeq {
		return
	}
	v.status.Visible = false
	v.cancelHide = nil
}

func (v *View) cardLocked(activity string) *Card {
	for i := range v.cards {
		if v.cards[i].Title == activity {
			return &v.cards[i]
		}
	}
	return nil
}

// insertRowLocked appends a row for key to its card, if rendered.
func (v *View) insertRowLocked(key RowKey) {
	card := v.cardLocked(key.Activity)
	if card == nil {
		return
	}
	card.Rows = append(card.Rows, newRow(key.Activity, key.Participant))
	card.SpotsLeft--
}

// removeRowLocked drops the first row matching key and leaves the rest.
func (v *View) removeRowLocked(key RowKey) {
	card := v.cardLocked(key.Activity)
	if card == nil {
		return
	}
	i := slices.IndexFunc(card.Rows, func(r Row) bool { return r.Key == key })
	if i < 0 {
		return
	}
	card.Rows = slices.Delete(card.Rows, i, i+1)
	card.SpotsLeft++
}
