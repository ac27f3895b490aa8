package session

import "github.com/clauseease/clauseease/internal/domain"

// View is what a rendering surface should currently show. It is derived
// entirely from the controller's state; handlers never reach around it.
type View struct {
	// Navigation: private nav replaces public nav only when authenticated.
	NavPrivate bool
	UserName   string

	// Auth overlay.
	OverlayOpen   bool
	Mode          AuthMode
	RequiresName  bool
	StatusMessage string

	// Analysis panel.
	ActiveTab      Tab
	AnalysisStatus AnalysisStatus
	AnalysisError  string
	AnalyzeEnabled bool
	Result         *domain.AnalysisResult

	// History panel. NoHistory asks for an explicit empty message rather
	// than a blank list.
	History   []domain.HistoryEntry
	NoHistory bool
}

// View derives the current view.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		NavPrivate:     c.state == StateAuthenticated,
		OverlayOpen:    c.state == StateAuthPending || c.confirmPending,
		Mode:           c.mode,
		RequiresName:   c.mode == ModeRegister,
		StatusMessage:  c.statusMessage,
		ActiveTab:      c.tab,
		AnalysisStatus: c.analysisStatus,
		AnalysisError:  c.analysisError,
		AnalyzeEnabled: !c.inFlight,
		Result:         c.result,
		History:        c.history,
		NoHistory:      c.historyLoaded && len(c.history) == 0,
	}
	if c.user != nil {
		v.UserName = c.user.Name
	}
	return v
}

// State reports the current machine state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// User returns the authenticated user's public fields, if any.
func (c *Controller) User() *domain.PublicUser {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// Token returns the session token, if any.
func (c *Controller) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}
