// Package view holds the screen-selection state machine: which of the three
// screens is presented and the transient error slot shown on it. It carries
// no session or ledger data of its own.
package view

import (
	"errors"
	"sync"
)

// State identifies the presented screen.
type State int

const (
	StateLoginForm State = iota
	StateRegisterForm
	StateDashboard
)

func (s State) String() string {
	switch s {
	case StateLoginForm:
		return "login"
	case StateRegisterForm:
		return "register"
	case StateDashboard:
		return "dashboard"
	default:
		return "unknown"
	}
}

// ErrToggleWhileActive is returned when ToggleForm is called with an active
// session; the forms only exist while logged out.
var ErrToggleWhileActive = errors.New("cannot toggle forms while logged in")

type Controller struct {
	mu     sync.Mutex
	state  State
	errMsg string
}

// NewController starts at the login form; callers move to the dashboard
// after a successful session restore.
func NewController() *Controller {
	return &Controller{state: StateLoginForm}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// ToggleForm flips between the login and register forms and clears any
// displayed error. Invalid while the dashboard is shown.
func (c *Controller) ToggleForm() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateLoginForm:
		c.state = StateRegisterForm
	case StateRegisterForm:
		c.state = StateLoginForm
	default:
		return ErrToggleWhileActive
	}
	c.errMsg = ""
	return nil
}

// ShowLoginForm presents the login form, e.g. right after a login attempt
// from the register form failed validation.
func (c *Controller) ShowLoginForm() {
	c.set(StateLoginForm)
}

// Apply moves the controller in step with the session: an identity became
// active (dashboard) or the session emptied (login form). Successful
// transitions clear the error slot.
func (c *Controller) Apply(active bool) {
	if active {
		c.set(StateDashboard)
	} else {
		c.set(StateLoginForm)
	}
}

func (c *Controller) set(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
	c.errMsg = ""
}

// SetError records a transient, user-visible message. It is cleared by the
// next successful transition or form toggle.
func (c *Controller) SetError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = msg
}

func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}
