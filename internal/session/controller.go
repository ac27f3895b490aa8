// Package session holds the client-side session and analysis workflow as an
// explicit state machine, decoupled from any rendering surface. Commands
// mutate the machine; View derives what a UI should show from the current
// state alone.
package session

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/clauseease/clauseease/internal/domain"
)

// State is the authentication state of the session.
type State int

const (
	StateAnonymous State = iota
	StateAuthPending
	StateAuthenticated
)

// AuthMode is the active sub-mode of the auth form.
type AuthMode int

const (
	ModeLogin AuthMode = iota
	ModeRegister
)

// Tab selects the active input source; text and file are mutually exclusive.
type Tab int

const (
	TabPaste Tab = iota
	TabUpload
)

// AnalysisStatus tracks the analysis sub-workflow.
type AnalysisStatus int

const (
	AnalysisIdle AnalysisStatus = iota
	AnalysisRunning
	AnalysisComplete
	AnalysisError
)

const (
	// debounceQuiet is how long typing must pause before an auto-analysis
	// fires.
	debounceQuiet = time.Second

	// minAutoAnalyzeLen is the trimmed length pasted text must exceed for
	// the auto-trigger to fire. Explicit triggers have no minimum.
	minAutoAnalyzeLen = 10

	// loginConfirmDelay keeps the overlay visible briefly after a
	// successful login so the confirmation is readable.
	loginConfirmDelay = 800 * time.Millisecond

	// registerSwitchDelay is the pause before a successful registration
	// re-opens the form in login mode.
	registerSwitchDelay = 700 * time.Millisecond

	// MsgMissingFields is the client-side fast-feedback message; the
	// server remains authoritative.
	MsgMissingFields = "Please fill all required fields."

	// MsgConnectionError replaces any error for a request that could not
	// be sent at all.
	MsgConnectionError = "Backend connection error"

	// MsgNothingToAnalyze rejects an analysis with no input before any
	// network call.
	MsgNothingToAnalyze = "Please paste text or upload a file first."
)

// Backend is everything the controller needs from the server.
type Backend interface {
	Register(ctx context.Context, name, email, password string) (string, error)
	Login(ctx context.Context, email, password string) (*domain.PublicUser, string, error)
	AnalyzeText(ctx context.Context, text, attributedEmail string) (*domain.AnalysisResult, error)
	AnalyzeFile(ctx context.Context, filename string, content io.Reader, attributedEmail string) (*domain.AnalysisResult, error)
	History(ctx context.Context, email string) ([]domain.HistoryEntry, error)
	Export(ctx context.Context, req domain.ExportRequest) (*domain.ExportResult, error)
}

// Persisted is the session snapshot a Store keeps between runs.
type Persisted struct {
	User  domain.PublicUser `json:"user"`
	Token string            `json:"token"`
}

// Store optionally persists the session across restarts. Correctness never
// depends on it.
type Store interface {
	Save(p Persisted) error
	Load() (*Persisted, error)
	Clear() error
}

// Timer is a cancelable deferred call.
type Timer interface {
	Stop() bool
}

// TimerFactory schedules fn after d. Injectable so tests control time.
type TimerFactory func(d time.Duration, fn func()) Timer

func defaultTimerFactory(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

// FileSelection is an upload chosen by the user.
type FileSelection struct {
	Name    string
	Content []byte
}

// Controller is the session/UI state machine.
type Controller struct {
	backend  Backend
	store    Store
	newTimer TimerFactory

	mu sync.Mutex

	state          State
	mode           AuthMode
	user           *domain.PublicUser
	token          string
	statusMessage  string
	confirmPending bool

	tab  Tab
	text string
	file *FileSelection

	analysisStatus AnalysisStatus
	analysisError  string
	result         *domain.AnalysisResult

	history       []domain.HistoryEntry
	historyLoaded bool

	// seq tags analysis requests; responses carrying an older tag are
	// discarded rather than applied to the display.
	seq      uint64
	inFlight bool

	debounce Timer
	confirm  Timer
}

// Option configures a Controller.
type Option func(*Controller)

// WithStore enables session persistence.
func WithStore(store Store) Option {
	return func(c *Controller) { c.store = store }
}

// WithTimerFactory replaces the timer source, for tests.
func WithTimerFactory(f TimerFactory) Option {
	return func(c *Controller) { c.newTimer = f }
}

// New creates a controller in the Anonymous state.
func New(backend Backend, opts ...Option) *Controller {
	c := &Controller{
		backend:  backend,
		newTimer: defaultTimerFactory,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Restore moves Anonymous to Authenticated from a persisted session, if one
// exists. It never fails the caller; a broken store just stays anonymous.
func (c *Controller) Restore() bool {
	if c.store == nil {
		return false
	}
	p, err := c.store.Load()
	if err != nil || p == nil || p.Token == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	user := p.User
	c.user = &user
	c.token = p.Token
	c.state = StateAuthenticated
	return true
}

// OpenLogin opens the auth overlay in login mode.
func (c *Controller) OpenLogin() {
	c.openAuth(ModeLogin)
}

// OpenRegister opens the auth overlay in register mode.
func (c *Controller) OpenRegister() {
	c.openAuth(ModeRegister)
}

func (c *Controller) openAuth(mode AuthMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = StateAuthPending
	c.mode = mode
	c.statusMessage = ""
}

// SwitchMode toggles between login and register and clears any prior status.
func (c *Controller) SwitchMode() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateAuthPending {
		return
	}
	if c.mode == ModeLogin {
		c.mode = ModeRegister
	} else {
		c.mode = ModeLogin
	}
	c.statusMessage = ""
}

// CloseOverlay dismisses the auth form without submitting.
func (c *Controller) CloseOverlay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateAuthPending {
		c.state = StateAnonymous
		c.statusMessage = ""
	}
}

// SubmitAuth submits the open form. Empty required fields are rejected
// locally; everything else is the server's verdict, surfaced verbatim.
func (c *Controller) SubmitAuth(ctx context.Context, name, email, password string) {
	c.mu.Lock()
	if c.state != StateAuthPending || c.confirmPending {
		c.mu.Unlock()
		return
	}
	mode := c.mode
	c.mu.Unlock()

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if email == "" || password == "" || (mode == ModeRegister && name == "") {
		c.setStatus(MsgMissingFields)
		return
	}

	if mode == ModeRegister {
		c.submitRegister(ctx, name, email, password)
		return
	}
	c.submitLogin(ctx, email, password)
}

func (c *Controller) submitRegister(ctx context.Context, name, email, password string) {
	message, err := c.backend.Register(ctx, name, email, password)
	if err != nil {
		c.setStatus(authErrorMessage(err))
		return
	}
	if message == "" {
		message = "Registered successfully"
	}

	// Confirmation shows briefly, then the form re-opens in login mode.
	// Registration never auto-authenticates.
	c.mu.Lock()
	c.statusMessage = message
	c.confirmPending = true
	c.confirm = c.newTimer(registerSwitchDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.confirmPending = false
		if c.state == StateAuthPending {
			c.mode = ModeLogin
			c.statusMessage = ""
		}
	})
	c.mu.Unlock()
}

func (c *Controller) submitLogin(ctx context.Context, email, password string) {
	user, token, err := c.backend.Login(ctx, email, password)
	if err != nil {
		c.setStatus(authErrorMessage(err))
		return
	}

	c.mu.Lock()
	c.user = user
	c.token = token
	c.statusMessage = "Login successful"
	c.confirmPending = true
	store := c.store
	c.confirm = c.newTimer(loginConfirmDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.confirmPending = false
		if c.state == StateAuthPending && c.user != nil {
			c.state = StateAuthenticated
			c.statusMessage = ""
		}
	})
	c.mu.Unlock()

	if store != nil {
		// Best effort; a failing store must not break the login.
		_ = store.Save(Persisted{User: *user, Token: token})
	}
}

func authErrorMessage(err error) string {
	if errors.Is(err, domain.ErrUnreachable) {
		return MsgConnectionError
	}
	return err.Error()
}

func (c *Controller) setStatus(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusMessage = msg
}

// Logout returns to Anonymous: session fields cleared, navigation public,
// analysis display reset. A response still in flight is invalidated.
func (c *Controller) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = StateAnonymous
	c.user = nil
	c.token = ""
	c.statusMessage = ""
	c.confirmPending = false
	c.history = nil
	c.historyLoaded = false

	if c.debounce != nil {
		c.debounce.Stop()
	}
	if c.confirm != nil {
		c.confirm.Stop()
	}

	c.result = nil
	c.analysisStatus = AnalysisIdle
	c.analysisError = ""
	c.seq++ // discard any in-flight analysis response

	if c.store != nil {
		_ = c.store.Clear()
	}
}

// SetTab selects the input source.
func (c *Controller) SetTab(tab Tab) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tab = tab
}

// SelectFile records the chosen upload.
func (c *Controller) SelectFile(name string, content []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.file = &FileSelection{Name: name, Content: content}
}

// SetText records a keystroke and (re)schedules the debounced auto-trigger.
// Each keystroke cancels the previous pending trigger, so at most one is
// outstanding; it fires only if the text is still long enough by then.
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	c.text = text
	if c.debounce != nil {
		c.debounce.Stop()
	}
	c.debounce = c.newTimer(debounceQuiet, func() {
		c.mu.Lock()
		long := len(strings.TrimSpace(c.text)) > minAutoAnalyzeLen
		paste := c.tab == TabPaste
		c.mu.Unlock()
		if long && paste {
			c.Analyze(context.Background())
		}
	})
	c.mu.Unlock()
}

// Analyze runs the analysis workflow against the active input. The trigger
// is disabled while a request is in flight and re-enabled on every exit
// path. Runs attributed to the logged-in user carry their email.
func (c *Controller) Analyze(ctx context.Context) {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		return
	}

	text := strings.TrimSpace(c.text)
	var file *FileSelection
	if c.tab == TabUpload {
		file = c.file
	}
	if text == "" && file == nil {
		c.analysisStatus = AnalysisError
		c.analysisError = MsgNothingToAnalyze
		c.mu.Unlock()
		return
	}

	c.seq++
	mySeq := c.seq
	c.inFlight = true
	c.analysisStatus = AnalysisRunning
	c.analysisError = ""
	email := ""
	if c.state == StateAuthenticated && c.user != nil {
		email = c.user.Email
	}
	c.mu.Unlock()

	var result *domain.AnalysisResult
	var err error
	if file != nil {
		result, err = c.backend.AnalyzeFile(ctx, file.Name, bytes.NewReader(file.Content), email)
	} else {
		result, err = c.backend.AnalyzeText(ctx, text, email)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.inFlight = false

	// A logout or reset issued while we were waiting bumped the sequence;
	// this response is stale and must not touch the display.
	if mySeq != c.seq {
		return
	}

	if err != nil {
		c.analysisStatus = AnalysisError
		if errors.Is(err, domain.ErrUnreachable) {
			c.analysisError = MsgConnectionError
		} else {
			c.analysisError = err.Error()
		}
		return
	}

	result.Normalize()
	c.result = result
	c.analysisStatus = AnalysisComplete
}

// LoadHistory fetches the authenticated user's past runs.
func (c *Controller) LoadHistory(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateAuthenticated || c.user == nil {
		c.mu.Unlock()
		return errors.New("not logged in")
	}
	email := c.user.Email
	c.mu.Unlock()

	entries, err := c.backend.History(ctx, email)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	c.history = entries
	c.historyLoaded = true
	return nil
}

// Export requests a PDF report of the current result and returns the
// artifact name for the caller to open.
func (c *Controller) Export(ctx context.Context) (string, error) {
	c.mu.Lock()
	result := c.result
	c.mu.Unlock()

	if result == nil {
		return "", errors.New("nothing to export")
	}

	exported, err := c.backend.Export(ctx, domain.ExportRequest{
		Text:   result.OriginalText,
		Flesch: result.Readability.FleschReadingEase,
		Fog:    result.Readability.GunningFog,
	})
	if err != nil {
		return "", err
	}
	return exported.Filename, nil
}
