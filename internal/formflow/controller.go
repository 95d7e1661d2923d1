// Package formflow owns the client-side state of the multi-section profile
// form: which section is shown, which sections are complete, and whether the
// user may move to another section.
package formflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"matrimony-backend/internal/models"
	"matrimony-backend/internal/profile"
)

// Mode selects the navigation policy
type Mode string

const (
	// ModeNew walks the user forward one section at a time
	ModeNew Mode = "new"
	// ModeUpdate lets the user jump to any section
	ModeUpdate Mode = "update"
)

// ErrSubmissionInFlight is returned when a section is submitted again before
// its previous submission has finished
var ErrSubmissionInFlight = errors.New("section submission already in progress")

// Result is the server's answer to a successful section submission
type Result struct {
	Profile              *models.Profile
	CompletionPercentage int
	NextSection          *profile.Section
}

// Submitter sends one section payload to the server
type Submitter interface {
	SubmitSection(ctx context.Context, payload profile.Payload) (*Result, error)
}

// ProfileState is the profile as loaded when the form mounts
type ProfileState struct {
	Profile              *models.Profile
	CompletionPercentage int
	NextSection          *profile.Section
}

// ConfirmFunc asks the user whether unsaved changes in from may be discarded
type ConfirmFunc func(from, to profile.Section) bool

// Option configures a Controller
type Option func(*Controller)

// WithMode sets the navigation mode
func WithMode(m Mode) Option {
	return func(c *Controller) { c.mode = m }
}

// WithConfirm sets the unsaved-changes prompt used in ModeNew
func WithConfirm(fn ConfirmFunc) Option {
	return func(c *Controller) { c.confirm = fn }
}

// WithPaymentPolicy sets whether the payment section counts toward completion
func WithPaymentPolicy(p profile.PaymentPolicy) Option {
	return func(c *Controller) { c.tracker = profile.NewTracker(p) }
}

// WithLimits sets the gallery limits the server enforces
func WithLimits(l profile.Limits) Option {
	return func(c *Controller) { c.validator = profile.NewValidator(l) }
}

// Controller is the single owner of the form state. Section views receive
// it and go through its methods; it is safe for concurrent use.
type Controller struct {
	mu         sync.Mutex
	submitter  Submitter
	tracker    profile.Tracker
	validator  *profile.Validator
	confirm    ConfirmFunc
	mode       Mode
	current    profile.Section
	completed  map[profile.Section]bool
	submitting map[profile.Section]bool
	dirty      bool
	percentage int
}

// New creates a controller for the loaded profile. The initial section is the
// server's next section, else the first locally incomplete one, else the first.
func New(submitter Submitter, state ProfileState, opts ...Option) *Controller {
	c := &Controller{
		submitter:  submitter,
		tracker:    profile.NewTracker(profile.PaymentExcluded),
		validator:  profile.NewValidator(profile.DefaultLimits),
		mode:       ModeNew,
		completed:  make(map[profile.Section]bool),
		submitting: make(map[profile.Section]bool),
		percentage: state.CompletionPercentage,
	}
	for _, opt := range opts {
		opt(c)
	}

	if state.Profile != nil {
		for s, done := range c.tracker.SectionStates(state.Profile) {
			c.completed[s] = done
		}
	}

	switch {
	case state.NextSection != nil && state.NextSection.Index() >= 0:
		c.current = *state.NextSection
	default:
		if next, ok := c.firstIncomplete(); ok {
			c.current = next
		} else {
			c.current = profile.Order[0]
		}
	}
	return c
}

// Mode returns the navigation mode
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Current returns the section being shown
func (c *Controller) Current() profile.Section {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// IsCompleted reports whether a section has been confirmed complete
func (c *Controller) IsCompleted(s profile.Section) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed[s]
}

// Completed returns a copy of the per-section completion flags
func (c *Controller) Completed() map[profile.Section]bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[profile.Section]bool, len(c.completed))
	for s, done := range c.completed {
		out[s] = done
	}
	return out
}

// Percentage returns the last completion percentage reported by the server
func (c *Controller) Percentage() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.percentage
}

// IsProfileComplete is the derived "all done" display fact
func (c *Controller) IsProfileComplete() bool {
	return c.Percentage() == 100
}

// IsSubmitting reports whether a submission of s is outstanding
func (c *Controller) IsSubmitting(s profile.Section) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting[s]
}

// SetDirty records whether the current section has unsaved edits
func (c *Controller) SetDirty(dirty bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dirty = dirty
}

// IsDirty reports whether the current section has unsaved edits
func (c *Controller) IsDirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}

// CanNavigate reports whether the gate would allow moving to target,
// without asking about unsaved changes.
func (c *Controller) CanNavigate(target profile.Section) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.allowed(target)
}

// RequestNavigate moves to target when the gate allows it. A refused request
// leaves the state unchanged.
func (c *Controller) RequestNavigate(target profile.Section) bool {
	c.mu.Lock()
	if !c.allowed(target) {
		from := c.current
		c.mu.Unlock()
		log.Debug().Str("from", string(from)).Str("to", string(target)).Msg("Navigation refused")
		return false
	}
	if target == c.current {
		c.mu.Unlock()
		return true
	}
	from, ask := c.current, c.mode == ModeNew && c.dirty && c.confirm != nil
	c.mu.Unlock()

	// the prompt may block on the user, so it runs unlocked
	if ask && !c.confirm(from, target) {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current != from || !c.allowed(target) {
		return false
	}
	c.current = target
	c.dirty = false
	return true
}

// Submit validates the payload locally, sends it, and on success marks its
// section complete. In ModeNew the form then advances to the section right
// after the submitted one. A failed submission changes nothing.
func (c *Controller) Submit(ctx context.Context, payload profile.Payload) (*Result, error) {
	section := payload.Section()
	if section.Index() < 0 {
		return nil, &profile.UnknownSectionError{Section: string(section)}
	}

	c.mu.Lock()
	if c.submitting[section] {
		c.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	c.submitting[section] = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.submitting, section)
		c.mu.Unlock()
	}()

	if err := c.validator.Validate(payload); err != nil {
		return nil, err
	}

	res, err := c.submitter.SubmitSection(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to submit %s section: %w", section, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.completed[section] = true
	c.percentage = res.CompletionPercentage
	if section == c.current {
		c.dirty = false
	}
	if c.mode == ModeNew {
		if next, ok := section.Next(); ok {
			c.current = next
			c.dirty = false
		}
	}
	return res, nil
}

// allowed must be called with mu held
func (c *Controller) allowed(target profile.Section) bool {
	if target.Index() < 0 {
		return false
	}
	if c.mode == ModeUpdate || target == c.current || c.completed[target] {
		return true
	}
	next, ok := c.firstIncomplete()
	return ok && target == next
}

// firstIncomplete is the resolver's answer over the local completion flags
func (c *Controller) firstIncomplete() (profile.Section, bool) {
	for _, s := range profile.Order {
		if s == profile.SectionPayment && c.tracker.Payment != profile.PaymentRequired {
			continue
		}
		if !c.completed[s] {
			return s, true
		}
	}
	return "", false
}
