// Package session holds per-user conversation state for the lifetime of
// the process. Nothing here is persisted: clock status is reseeded from
// the record store when a session is first created.
package session

import (
	"time"

	"github.com/launchtrack/timeclock/internal/model"
)

// Mode is the single active conversational sub-flow. Modeling it as one
// tagged value rules out the invalid "wizard plus location wait" state.
type Mode int

const (
	// Idle accepts commands and button presses.
	Idle Mode = iota
	// AwaitingLocation expects a location share for the pending action.
	AwaitingLocation
	// Configuring is inside the project setup wizard.
	Configuring
)

// Step is a position in the configuration wizard.
type Step int

const (
	StepProjectName Step = iota
	StepProjectLocation
	StepContractorName
	StepLunchDuration
)

// Prompt returns the user-facing request for the step's value.
func (s Step) Prompt() string {
	switch s {
	case StepProjectName:
		return "Please send the Project Name first:"
	case StepProjectLocation:
		return "Now please send the Project Location (factory name/location):"
	case StepContractorName:
		return "Now please send the Contractor Name:"
	default:
		return "Finally, please send the Lunch Break Duration (e.g. 30 minutes, or 0 for none):"
	}
}

// Session is one user's conversation state.
type Session struct {
	UserID   int64
	ChatID   int64
	Username string

	// ClockedIn mirrors the last persisted action; seeded on creation.
	ClockedIn bool
	// LastClockIn is the wall-clock time of the current shift's clock-in;
	// zero when not clocked in or unknown after a restart.
	LastClockIn time.Time

	mode    Mode
	pending model.Action
	step    Step
	draft   model.UserConfig
}

// Mode reports the active conversational sub-flow.
func (s *Session) Mode() Mode {
	return s.mode
}

// PendingAction reports which clock action the awaited location belongs
// to. Only meaningful while Mode() == AwaitingLocation.
func (s *Session) PendingAction() (model.Action, bool) {
	if s.mode != AwaitingLocation {
		return 0, false
	}
	return s.pending, true
}

// AwaitLocation arms the location capture for the given action. Any
// in-progress wizard is superseded and its draft discarded.
func (s *Session) AwaitLocation(action model.Action) {
	s.mode = AwaitingLocation
	s.pending = action
	s.draft = model.UserConfig{}
}

// FinishLocation returns the session to Idle after a location share was
// consumed.
func (s *Session) FinishLocation() {
	s.mode = Idle
}

// BeginConfig enters the setup wizard at its first step with a clean
// draft, superseding any pending location wait.
func (s *Session) BeginConfig() {
	s.mode = Configuring
	s.step = StepProjectName
	s.draft = model.UserConfig{}
}

// ConfigStep reports the wizard position while configuring.
func (s *Session) ConfigStep() (Step, bool) {
	if s.mode != Configuring {
		return 0, false
	}
	return s.step, true
}

// ApplyConfigText consumes one wizard answer and advances. On the final
// step it returns the completed config (stamped with the session's
// identity) with done = true, and the session is Idle again with an
// empty draft.
func (s *Session) ApplyConfigText(text string) (model.UserConfig, bool) {
	switch s.step {
	case StepProjectName:
		s.draft.ProjectName = text
		s.step = StepProjectLocation
	case StepProjectLocation:
		s.draft.ProjectLocation = text
		s.step = StepContractorName
	case StepContractorName:
		s.draft.ContractorName = text
		s.step = StepLunchDuration
	case StepLunchDuration:
		s.draft.LunchDuration = text
		done := s.draft
		done.UserID = s.UserID
		done.Username = s.Username
		s.mode = Idle
		s.draft = model.UserConfig{}
		return done, true
	}
	return model.UserConfig{}, false
}

// Draft exposes the partially entered config; tests assert it is empty
// outside the wizard.
func (s *Session) Draft() model.UserConfig {
	return s.draft
}
