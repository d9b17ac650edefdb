package roster

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Shivanand-hulikatti/activity-signup/internal/client"
	"github.com/Shivanand-hulikatti/activity-signup/internal/model"
)

type fakeAPI struct {
	activities model.Activities
	listErr    error

	signupMsg    string
	signupErr    error
	signupEmails []string

	unregisterErr   error
	unregisterCalls []RowKey
}

func (f *fakeAPI) ListActivities(context.Context) (model.Activities, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.activities, nil
}

func (f *fakeAPI) Signup(_ context.Context, activity, email string) (string, error) {
	f.signupEmails = append(f.signupEmails, email)
	if f.signupErr != nil {
		return "", f.signupErr
	}
	return f.signupMsg, nil
}

func (f *fakeAPI) Unregister(_ context.Context, activity, participant string) error {
	f.unregisterCalls = append(f.unregisterCalls, RowKey{Activity: activity, Participant: participant})
	return f.unregisterErr
}

// manualScheduler records scheduled callbacks so tests decide when time passes.
type manualScheduler struct {
	mu    sync.Mutex
	tasks []*manualTask
}

type manualTask struct {
	d        time.Duration
	f        func()
	canceled bool
}

func (s *manualScheduler) schedule(d time.Duration, f func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	task := &manualTask{d: d, f: f}
	s.tasks = append(s.tasks, task)
	return func() {
		s.mu.Lock()
		task.canceled = true
		s.mu.Unlock()
	}
}

// fireAll runs every callback that was not canceled, oldest first.
func (s *manualScheduler) fireAll() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, task := range tasks {
		if !task.canceled {
			task.f()
		}
	}
}

// fireStale runs every callback, including canceled ones, as a timer that
// lost the race with Stop would.
func (s *manualScheduler) fireStale() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, task := range tasks {
		task.f()
	}
}

func sampleActivities() model.Activities {
	return model.Activities{
		{Name: "Chess Club", Description: "Strategy", Schedule: "Fridays", MaxParticipants: 10,
			Participants: []string{"michael@mergington.edu", "daniel@mergington.edu", "emma@mergington.edu"}},
		{Name: "Art Club", Description: "Paint", Schedule: "Wednesdays", MaxParticipants: 4,
			Participants: []string{}},
	}
}

func newTestView(api API) (*View, *manualScheduler) {
	sched := &manualScheduler{}
	return New(api, nil, WithScheduler(sched.schedule)), sched
}

func yes(string) bool { return true }

func TestLoadEmptyCollection(t *testing.T) {
	v, _ := newTestView(&fakeAPI{activities: model.Activities{}})
	v.Load(context.Background())

	page := v.Snapshot()
	if len(page.Cards) != 0 {
		t.Fatalf("cards = %d, want 0", len(page.Cards))
	}
	if len(page.Options) != 1 || page.Options[0].Label != SelectPlaceholder || page.Options[0].Value != "" {
		t.Fatalf("options = %+v", page.Options)
	}
	if page.Failure != "" {
		t.Fatalf("failure = %q", page.Failure)
	}
}

func TestLoadRendersRowsAndPlaceholders(t *testing.T) {
	v, _ := newTestView(&fakeAPI{activities: sampleActivities()})
	v.Load(context.Background())

	page := v.Snapshot()
	if len(page.Cards) != 2 {
		t.Fatalf("cards = %d", len(page.Cards))
	}
	if got := page.Cards[0].Availability(); got != "7 spots left" {
		t.Fatalf("availability = %q", got)
	}
	if len(page.Cards[0].Rows) != 3 || page.Cards[0].Placeholder() != "" {
		t.Fatalf("chess card = %+v", page.Cards[0])
	}
	if len(page.Cards[1].Rows) != 0 || page.Cards[1].Placeholder() != EmptyRosterMessage {
		t.Fatalf("art card = %+v", page.Cards[1])
	}
}

func TestRepeatedLoadDoesNotDuplicateOptions(t *testing.T) {
	v, _ := newTestView(&fakeAPI{activities: sampleActivities()})
	for i := 0; i < 3; i++ {
		v.Load(context.Background())
	}
	page := v.Snapshot()
	if len(page.Options) != 3 {
		t.Fatalf("options = %+v, want placeholder + 2", page.Options)
	}
	if len(page.Cards) != 2 {
		t.Fatalf("cards = %d, want 2", len(page.Cards))
	}
}

func TestLoadFailureShowsMessageAndLogs(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	api := &fakeAPI{activities: sampleActivities()}
	v := New(api, zap.New(core))
	v.Load(context.Background())

	api.listErr = errors.New("connection refused")
	v.Load(context.Background())

	page := v.Snapshot()
	if page.Failure != LoadFailedMessage {
		t.Fatalf("failure = %q", page.Failure)
	}
	if len(page.Cards) != 0 {
		t.Fatalf("cards = %d, want 0", len(page.Cards))
	}
	if len(page.Options) != 3 {
		t.Fatalf("options changed on failure: %+v", page.Options)
	}
	if logs.FilterMessage("fetch activities").Len() != 1 {
		t.Fatalf("logged %d entries", logs.Len())
	}

	api.listErr = nil
	v.Load(context.Background())
	if page := v.Snapshot(); page.Failure != "" || len(page.Cards) != 2 {
		t.Fatalf("recovered page = %+v", page)
	}
}

func TestSignupSuccessInsertsRow(t *testing.T) {
	api := &fakeAPI{activities: sampleActivities(), signupMsg: "Signed up jane.doe@x.edu for Art Club"}
	v, _ := newTestView(api)
	v.Load(context.Background())

	out := v.SubmitSignup(context.Background(), "Art Club", "jane.doe@x.edu")
	if out.Kind != Succeeded || out.Message != api.signupMsg {
		t.Fatalf("outcome = %+v", out)
	}

	page := v.Snapshot()
	if page.Status != (Status{Message: api.signupMsg, Kind: StatusSuccess, Visible: true}) {
		t.Fatalf("status = %+v", page.Status)
	}
	art := page.Cards[1]
	if len(art.Rows) != 1 || art.Rows[0].Participant() != "jane.doe@x.edu" || art.Rows[0].Initials != "JD" {
		t.Fatalf("art rows = %+v", art.Rows)
	}
	if art.Placeholder() != "" {
		t.Fatalf("placeholder still shown")
	}
	if art.Availability() != "3 spots left" {
		t.Fatalf("availability = %q", art.Availability())
	}
}

func TestSignupTrimsEmailBeforeInsertingRow(t *testing.T) {
	api := &fakeAPI{activities: sampleActivities(), signupMsg: "Signed up ann@x.org for Art Club"}
	v, _ := newTestView(api)
	v.Load(context.Background())

	if out := v.SubmitSignup(context.Background(), "Art Club", "  ann@x.org "); out.Kind != Succeeded {
		t.Fatalf("outcome = %+v", out)
	}
	if len(api.signupEmails) != 1 || api.signupEmails[0] != "ann@x.org" {
		t.Fatalf("sent emails = %q", api.signupEmails)
	}
	rows := v.Snapshot().Cards[1].Rows
	if len(rows) != 1 || rows[0].Participant() != "ann@x.org" {
		t.Fatalf("art rows = %+v", rows)
	}
	if rows[0].Key != (RowKey{Activity: "Art Club", Participant: "ann@x.org"}) {
		t.Fatalf("row key = %+v", rows[0].Key)
	}
}

func TestSignupFailureShowsDetailThenHides(t *testing.T) {
	api := &fakeAPI{
		activities: sampleActivities(),
		signupErr:  &client.APIError{StatusCode: 400, Detail: "Already signed up"},
	}
	v, sched := newTestView(api)
	v.Load(context.Background())

	out := v.SubmitSignup(context.Background(), "Chess Club", "michael@mergington.edu")
	if out.Kind != Failed || out.Message != "Already signed up" {
		t.Fatalf("outcome = %+v", out)
	}
	page := v.Snapshot()
	if page.Status != (Status{Message: "Already signed up", Kind: StatusError, Visible: true}) {
		t.Fatalf("status = %+v", page.Status)
	}
	if len(page.Cards[0].Rows) != 3 {
		t.Fatalf("rows changed on failure")
	}
	if len(sched.tasks) != 1 || sched.tasks[0].d != 5*time.Second {
		t.Fatalf("scheduled = %+v", sched.tasks)
	}

	sched.fireAll()
	if v.Snapshot().Status.Visible {
		t.Fatal("status still visible after 5s")
	}
}

func TestSignupFailureWithoutDetailUsesFallback(t *testing.T) {
	v, _ := newTestView(&fakeAPI{signupErr: &client.APIError{StatusCode: 500}})
	out := v.SubmitSignup(context.Background(), "", "a@b.c")
	if out.Message != SignupFallbackMessage {
		t.Fatalf("message = %q", out.Message)
	}
	if v.Snapshot().Status.Kind != StatusError {
		t.Fatal("status not error styled")
	}
}

func TestSignupTransportFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sched := &manualScheduler{}
	v := New(&fakeAPI{signupErr: errors.New("dial tcp: refused")}, zap.New(core), WithScheduler(sched.schedule))

	out := v.SubmitSignup(context.Background(), "Chess Club", "a@b.c")
	if out.Kind != Failed || out.Message != SignupTransportMessage {
		t.Fatalf("outcome = %+v", out)
	}
	if logs.FilterMessage("sign up").Len() != 1 {
		t.Fatal("transport error not logged")
	}
	if len(sched.tasks) != 1 {
		t.Fatal("hide timer not scheduled")
	}
}

func TestNewStatusCancelsOlderHideTimer(t *testing.T) {
	api := &fakeAPI{signupErr: &client.APIError{StatusCode: 400, Detail: "first"}}
	v, sched := newTestView(api)

	v.SubmitSignup(context.Background(), "Chess Club", "a@b.c")
	older := sched.tasks[0]
	api.signupErr = &client.APIError{StatusCode: 400, Detail: "second"}
	v.SubmitSignup(context.Background(), "Chess Club", "a@b.c")

	if !older.canceled {
		t.Fatal("older hide timer not canceled")
	}
	// Even if the old timer already fired, it must not hide the new message.
	older.f()
	if st := v.Snapshot().Status; !st.Visible || st.Message != "second" {
		t.Fatalf("status = %+v", st)
	}

	sched.fireStale()
	if v.Snapshot().Status.Visible {
		t.Fatal("latest timer did not hide the status")
	}
}

func TestUnregisterDeclinedSendsNothing(t *testing.T) {
	api := &fakeAPI{activities: sampleActivities()}
	v, _ := newTestView(api)
	v.Load(context.Background())

	var prompt string
	out := v.Unregister(context.Background(), "Chess Club", "daniel@mergington.edu", ConfirmFunc(func(p string) bool {
		prompt = p
		return false
	}))
	if out.Kind != Declined {
		t.Fatalf("outcome = %+v", out)
	}
	if prompt != "Unregister daniel@mergington.edu from Chess Club?" {
		t.Fatalf("prompt = %q", prompt)
	}
	if len(api.unregisterCalls) != 0 {
		t.Fatalf("calls = %+v", api.unregisterCalls)
	}
	if len(v.Snapshot().Cards[0].Rows) != 3 {
		t.Fatal("rows changed after decline")
	}
}

func TestUnregisterSuccessRemovesOnlyThatRow(t *testing.T) {
	api := &fakeAPI{activities: sampleActivities()}
	v, _ := newTestView(api)
	v.Load(context.Background())

	out := v.Unregister(context.Background(), "Chess Club", "daniel@mergington.edu", ConfirmFunc(yes))
	if out.Kind != Succeeded {
		t.Fatalf("outcome = %+v", out)
	}
	if len(api.unregisterCalls) != 1 || api.unregisterCalls[0] != (RowKey{"Chess Club", "daniel@mergington.edu"}) {
		t.Fatalf("calls = %+v", api.unregisterCalls)
	}

	chess := v.Snapshot().Cards[0]
	if len(chess.Rows) != 2 {
		t.Fatalf("rows = %+v", chess.Rows)
	}
	if chess.Rows[0].Participant() != "michael@mergington.edu" || chess.Rows[1].Participant() != "emma@mergington.edu" {
		t.Fatalf("siblings disturbed: %+v", chess.Rows)
	}
	if chess.Availability() != "8 spots left" {
		t.Fatalf("availability = %q", chess.Availability())
	}
}

func TestUnregisterLastRowShowsPlaceholder(t *testing.T) {
	api := &fakeAPI{activities: model.Activities{
		{Name: "Solo", MaxParticipants: 1, Participants: []string{"only@x.edu"}},
	}}
	v, _ := newTestView(api)
	v.Load(context.Background())

	v.Unregister(context.Background(), "Solo", "only@x.edu", ConfirmFunc(yes))
	card := v.Snapshot().Cards[0]
	if card.Placeholder() != EmptyRosterMessage {
		t.Fatalf("placeholder = %q", card.Placeholder())
	}
}

func TestUnregisterFailureRaisesAlertOnce(t *testing.T) {
	api := &fakeAPI{
		activities:    sampleActivities(),
		unregisterErr: &client.APIError{StatusCode: 404, Detail: "Participant not found in activity"},
	}
	v, _ := newTestView(api)
	v.Load(context.Background())

	out := v.Unregister(context.Background(), "Chess Club", "daniel@mergington.edu", ConfirmFunc(yes))
	if out.Kind != Failed || out.Message != "Participant not found in activity" {
		t.Fatalf("outcome = %+v", out)
	}
	page := v.Snapshot()
	if page.Alert != "Participant not found in activity" {
		t.Fatalf("alert = %q", page.Alert)
	}
	if len(page.Cards[0].Rows) != 3 {
		t.Fatal("row removed on failure")
	}
	if v.Snapshot().Alert != "" {
		t.Fatal("alert shown twice")
	}
}

func TestUnregisterFailureFallbacks(t *testing.T) {
	v, _ := newTestView(&fakeAPI{unregisterErr: &client.APIError{StatusCode: 500}})
	if out := v.Unregister(context.Background(), "A", "b", ConfirmFunc(yes)); out.Message != UnregisterFallbackMessage {
		t.Fatalf("message = %q", out.Message)
	}

	core, logs := observer.New(zap.ErrorLevel)
	v = New(&fakeAPI{unregisterErr: errors.New("timeout")}, zap.New(core))
	if out := v.Unregister(context.Background(), "A", "b", ConfirmFunc(yes)); out.Message != UnregisterTransportMessage {
		t.Fatalf("message = %q", out.Message)
	}
	if logs.FilterMessage("unregister").Len() != 1 {
		t.Fatal("transport error not logged")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	v, _ := newTestView(&fakeAPI{activities: sampleActivities()})
	v.Load(context.Background())

	page := v.Snapshot()
	page.Cards[0].Rows[0].Initials = "ZZ"
	page.Options[1].Label = "changed"

	again := v.Snapshot()
	if again.Cards[0].Rows[0].Initials != "MI" || again.Options[1].Label != "Chess Club" {
		t.Fatalf("snapshot aliases view state: %+v", again)
	}
}
