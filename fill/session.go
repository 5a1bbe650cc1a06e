package fill

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/escform/escform/model"
)

// State is the authoritative phase of a fill session.
type State string

const (
	NotStarted   State = "NOT_STARTED"
	AwaitingAuth State = "AWAITING_AUTH"
	InProgress   State = "IN_PROGRESS"
	Completed    State = "COMPLETED"
)

// ErrNotLastStep is returned when SUBMIT is attempted before the terminal
// step; the terminal step's action is SUBMIT, every other step's is NEXT.
var ErrNotLastStep = errors.New("submit only allowed on the last step")

// Theme is the presentation context produced alongside navigation state. It
// is applied by the rendering surface, never ambient mutable state.
type Theme struct {
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	ActionBtnSize  string `json:"actionBtnSize"`
	BackBtnLabel   string `json:"backBtnLabel"`
	NextBtnLabel   string `json:"nextBtnLabel"`
	SubmitBtnLabel string `json:"submitBtnLabel"`
}

func themeFor(form *model.Form) Theme {
	theme := Theme{
		PrimaryColor:   "#6336F7",
		SecondaryColor: "#2563eb",
		ActionBtnSize:  "default",
		BackBtnLabel:   "Back",
		NextBtnLabel:   "Next",
		SubmitBtnLabel: "Submit",
	}
	m := form.Metadata
	if m.PrimaryColor != "" {
		theme.PrimaryColor = m.PrimaryColor
	}
	if m.SecondaryColor != "" {
		theme.SecondaryColor = m.SecondaryColor
	}
	if m.ActionBtnSize != "" {
		theme.ActionBtnSize = m.ActionBtnSize
	}
	if m.BackBtnLabel != "" {
		theme.BackBtnLabel = m.BackBtnLabel
	}
	if m.NextBtnLabel != "" {
		theme.NextBtnLabel = m.NextBtnLabel
	}
	if m.SubmitBtnLabel != "" {
		theme.SubmitBtnLabel = m.SubmitBtnLabel
	}
	return theme
}

// StepPrompt is what the rendering surface receives for the current step.
type StepPrompt struct {
	Prompt     Prompt `json:"prompt"`
	IsFirst    bool   `json:"isFirst"`
	IsLast     bool   `json:"isLast"`
	Step       int    `json:"step"`
	TotalSteps int    `json:"totalSteps"`
	Theme      Theme  `json:"theme"`
}

// Session drives one user through one form: it owns current position,
// direction, the completion set and the answer map, and orchestrates
// validate-before-advance, auth gating and persistence. One session per
// fill-through; not safe for concurrent use.
type Session struct {
	form      *model.Form
	questions []model.Question
	welcome   *model.Question
	end       *model.Question

	registry *Registry
	gate     Gate
	persist  *persister
	theme    Theme
	now      func() time.Time

	answers    model.AnswerMap
	errs       map[string][]string
	state      State
	current    int
	direction  int
	completed  map[int]struct{}
	pendStart  bool
	submitting bool
	response   *model.Response
}

type SessionOption func(*sessionConfig)

type sessionConfig struct {
	registry *Registry
	store    ResponseStore
	identity IdentityProvider
	now      func() time.Time
	strict   bool
}

func WithRegistry(r *Registry) SessionOption {
	return func(c *sessionConfig) { c.registry = r }
}

func WithStore(store ResponseStore) SessionOption {
	return func(c *sessionConfig) { c.store = store }
}

func WithIdentity(provider IdentityProvider) SessionOption {
	return func(c *sessionConfig) { c.identity = provider }
}

func WithClock(now func() time.Time) SessionOption {
	return func(c *sessionConfig) { c.now = now }
}

// StrictTypes makes session construction fail on the first unknown question
// type instead of degrading it to a placeholder.
func StrictTypes() SessionOption {
	return func(c *sessionConfig) { c.strict = true }
}

func NewSession(form *model.Form, opts ...SessionOption) (*Session, error) {
	cfg := sessionConfig{
		registry: defaultRegistry,
		identity: Anonymous,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.strict {
		for _, q := range form.Questions {
			if _, err := cfg.registry.Resolve(q.Type); err != nil {
				return nil, fmt.Errorf("question %s: %w", q.ID, err)
			}
		}
	}

	return &Session{
		form:      form,
		questions: form.Steps(),
		welcome:   form.WelcomeScreen(),
		end:       form.EndScreen(),
		registry:  cfg.registry,
		gate:      NewGate(cfg.identity),
		persist:   newPersister(cfg.store, form.ID, cfg.now),
		theme:     themeFor(form),
		now:       cfg.now,
		answers:   model.AnswerMap{},
		errs:      map[string][]string{},
		state:     NotStarted,
		completed: map[int]struct{}{},
	}, nil
}

// Start enters the question sequence. When the welcome screen exists its
// continue action emits this transition; otherwise the surface fires it on
// mount. If the form's policy requires authentication and no identity is
// present, the session suspends in AWAITING_AUTH and remembers the intent.
func (s *Session) Start() error {
	switch s.state {
	case Completed:
		return ErrAlreadyCompleted
	case InProgress, AwaitingAuth:
		return nil
	}

	if !s.gate.MayStart(s.form) {
		s.state = AwaitingAuth
		s.pendStart = true
		return nil
	}
	s.enter()
	return nil
}

// AuthResolved re-fires the pending START once the external auth
// collaborator reports a new identity.
func (s *Session) AuthResolved() error {
	if s.state != AwaitingAuth {
		return nil
	}
	if s.gate.CurrentIdentity() == nil {
		return nil
	}
	if s.pendStart {
		s.pendStart = false
		s.enter()
	}
	return nil
}

// CancelAuth returns a suspended session to its pre-start state.
func (s *Session) CancelAuth() error {
	if s.state != AwaitingAuth {
		return nil
	}
	s.state = NotStarted
	s.pendStart = false
	return nil
}

func (s *Session) enter() {
	s.state = InProgress
	s.current = 0
	s.direction = 0
}

// SetAnswer records the current question's value. The upper selection bound
// of checkbox/multi-choice questions is enforced here, at the input layer:
// a change that would exceed it is rejected and the stored value stays
// unchanged. Lower bound and required are enforced at navigation time.
func (s *Session) SetAnswer(questionID string, value any) error {
	if err := s.requireInProgress(); err != nil {
		return err
	}
	q := s.currentQuestion()
	if q == nil || q.ID != questionID {
		return ErrNotCurrentQuestion
	}

	if q.Type == model.TypeChoiceCheckbox || q.Type == model.TypeChoiceMultiple {
		if max, present := q.Metadata.MaxNumber(); present {
			if len(stringSlice(value)) > int(max) {
				return ErrSelectionLimit
			}
		}
	}

	s.answers[questionID] = value
	delete(s.errs, questionID)
	return nil
}

// Next validates the current question and advances on success. On failure
// the position is unchanged and the errors are surfaced inline. A validated
// advance also synchronizes the draft, once the answer map holds anything
// meaningful.
func (s *Session) Next(ctx context.Context) error {
	if err := s.requireInProgress(); err != nil {
		return err
	}

	q := s.currentQuestion()
	if q == nil {
		return nil
	}
	if err := s.validateStep(*q); err != nil {
		return err
	}

	s.completed[s.current] = struct{}{}
	if s.hasMeaningfulAnswer() {
		s.persist.saveDraft(ctx, s.userID(), s.answers)
	}

	if s.current < len(s.questions)-1 {
		s.current++
		s.direction = 1
	}
	return nil
}

// Previous moves one step back without validating.
func (s *Session) Previous() error {
	if err := s.requireInProgress(); err != nil {
		return err
	}
	if s.current > 0 {
		s.current--
		s.direction = -1
	}
	return nil
}

// Submit validates the terminal step and finalizes the response. The busy
// guard closes the double-finalize window; a transport failure leaves the
// session IN_PROGRESS with the answer map intact so SUBMIT can be retried.
func (s *Session) Submit(ctx context.Context) error {
	if err := s.requireInProgress(); err != nil {
		return err
	}
	if s.current != len(s.questions)-1 {
		return ErrNotLastStep
	}
	if s.submitting {
		return ErrSubmitInFlight
	}

	q := s.currentQuestion()
	if q != nil {
		if err := s.validateStep(*q); err != nil {
			return err
		}
	}

	s.submitting = true
	defer func() { s.submitting = false }()

	s.completed[s.current] = struct{}{}

	if s.persist.store != nil {
		completed, err := s.persist.finalize(ctx, s.userID(), s.answers)
		if err != nil {
			return err
		}
		s.response = &completed
	}

	s.state = Completed
	return nil
}

// Advance is the keyboard binding on top of the named transitions: Enter is
// next (or submit on the terminal step), Ctrl+Arrow is prev/next. It never
// bypasses validation.
func (s *Session) Advance(ctx context.Context, direction int) error {
	if direction < 0 {
		return s.Previous()
	}
	if s.current == len(s.questions)-1 {
		return s.Submit(ctx)
	}
	return s.Next(ctx)
}

// Reset starts a new fill-through. Only reachable from COMPLETED and only
// when the form allows multiple submissions; this is the sole destructive
// operation on the answer map.
func (s *Session) Reset() error {
	if s.state != Completed || !s.form.MultipleSubmissions {
		return ErrResetNotAllowed
	}

	s.answers = model.AnswerMap{}
	s.errs = map[string][]string{}
	s.completed = map[int]struct{}{}
	s.current = 0
	s.direction = 0
	s.submitting = false
	s.response = nil
	s.persist.reset()

	if s.welcome != nil {
		s.state = NotStarted
	} else {
		s.state = InProgress
	}
	return nil
}

func (s *Session) validateStep(q model.Question) error {
	result := s.registry.ResolveOrPlaceholder(q.Type).Validate(q, s.answers[q.ID])
	if result.OK {
		delete(s.errs, q.ID)
		return nil
	}
	s.errs[q.ID] = result.Errors
	return &ValidationError{QuestionID: q.ID, Errors: result.Errors}
}

func (s *Session) requireInProgress() error {
	switch s.state {
	case NotStarted:
		return ErrNotStarted
	case AwaitingAuth:
		return ErrAwaitingAuth
	case Completed:
		return ErrAlreadyCompleted
	}
	return nil
}

func (s *Session) currentQuestion() *model.Question {
	if s.current < 0 || s.current >= len(s.questions) {
		return nil
	}
	return &s.questions[s.current]
}

func (s *Session) hasMeaningfulAnswer() bool {
	for _, v := range s.answers {
		if !isEmpty(v) {
			return true
		}
	}
	return false
}

func (s *Session) userID() *string {
	identity := s.gate.CurrentIdentity()
	if identity == nil {
		return nil
	}
	return &identity.ID
}

// State returns the session's phase.
func (s *Session) State() State {
	return s.state
}

// CurrentIndex returns the zero-based position in the question sequence.
func (s *Session) CurrentIndex() int {
	return s.current
}

// Direction is +1 after a forward move, -1 after a backward move, 0 before
// any move.
func (s *Session) Direction() int {
	return s.direction
}

// TotalSteps counts the answerable questions (screens excluded).
func (s *Session) TotalSteps() int {
	return len(s.questions)
}

// CurrentQuestion returns a copy of the question at the current position.
func (s *Session) CurrentQuestion() (model.Question, bool) {
	q := s.currentQuestion()
	if q == nil {
		return model.Question{}, false
	}
	return *q, true
}

// Answers returns a copy of the answer map.
func (s *Session) Answers() model.AnswerMap {
	return s.answers.Clone()
}

// Errors returns the inline validation errors of a question, nil when clear.
func (s *Session) Errors(questionID string) []string {
	return s.errs[questionID]
}

// Progress is answered-over-total: a step counts once it validated on the
// way forward, not merely because it was visited.
func (s *Session) Progress() float64 {
	if len(s.questions) == 0 {
		return 0
	}
	return float64(len(s.completed)) / float64(len(s.questions))
}

// CompletedSteps returns how many steps validated forward so far.
func (s *Session) CompletedSteps() int {
	return len(s.completed)
}

// ResponseID returns the store-assigned id of this fill-through's draft, or
// empty before the first successful draft creation.
func (s *Session) ResponseID() string {
	return s.persist.responseID
}

// Response returns the finalized response after a successful submit.
func (s *Session) Response() *model.Response {
	return s.response
}

// Theme returns the presentation context derived from the form metadata.
func (s *Session) Theme() Theme {
	return s.theme
}

// CurrentPrompt renders the step (or screen) the surface should display.
func (s *Session) CurrentPrompt() (StepPrompt, bool) {
	var q *model.Question
	switch s.state {
	case NotStarted, AwaitingAuth:
		q = s.welcome
	case Completed:
		q = s.end
	case InProgress:
		q = s.currentQuestion()
	}
	if q == nil {
		return StepPrompt{}, false
	}

	spec := s.registry.ResolveOrPlaceholder(q.Type)
	return StepPrompt{
		Prompt:     spec.Render(*q, s.answers[q.ID]),
		IsFirst:    s.current == 0,
		IsLast:     s.current == len(s.questions)-1,
		Step:       s.current + 1,
		TotalSteps: len(s.questions),
		Theme:      s.theme,
	}, true
}
