package engine

import (
	"github.com/DoyleJ11/gamesync/internal/ui"
)

type AttemptKind int

const (
	AttemptPlay   AttemptKind = iota // repeat a colour, fire a shot, mark a card
	AttemptChoose                    // pick a colour from the picker
	AttemptClaim                     // claim a win
)

type AttemptOutcome int

const (
	AttemptSucceeded AttemptOutcome = iota
	AttemptMismatched
	AttemptRejected
)

// AttemptResult is what a game makes of the backend's answer to an action.
type AttemptResult struct {
	Outcome AttemptOutcome
	// Advance moves the progress cursor (a correct colour).
	Advance bool
	// AwaitPoll keeps interaction off until a poll shows the next phase.
	AwaitPoll bool
	Message   string
}

// CheckAttempt reports why an attempt of kind would be refused right now.
func (m *Machine) CheckAttempt(kind AttemptKind) error {
	if m.ia.InFlight {
		return ErrInFlight
	}
	if m.terminal() {
		return ErrGameOver
	}
	if _, ok := m.phase.(InProgress); !ok {
		return ErrNotInGame
	}
	if !m.myTurn {
		return ErrNotYourTurn
	}
	switch kind {
	case AttemptChoose:
		if m.ia.ActiveModal != ModalColorPicker {
			return ErrInteractionLocked
		}
	default:
		if m.ia.ActiveModal == ModalSequenceAnimation {
			return ErrAnimating
		}
		if !m.ia.CanInteract {
			return ErrInteractionLocked
		}
	}
	return nil
}

// BeginAttempt checks an interaction locally before anything is sent. A nil
// error means the caller owns the single in-flight slot until CompleteAttempt.
func (m *Machine) BeginAttempt(kind AttemptKind) error {
	if err := m.CheckAttempt(kind); err != nil {
		return err
	}

	before := m.View()
	m.ia.InFlight = true
	m.attemptKind = kind
	m.attemptKey = m.key
	m.bump(before)
	return nil
}

// CompleteAttempt applies the outcome of the attempt begun last.
func (m *Machine) CompleteAttempt(r AttemptResult) []Effect {
	if !m.ia.InFlight {
		return nil
	}
	before := m.View()
	m.ia.InFlight = false
	if m.terminal() {
		// a poll finished the game while we waited
		m.bump(before)
		return nil
	}

	var effects []Effect
	switch r.Outcome {
	case AttemptSucceeded:
		effects = append(effects, Feedback{Positive: true})
		if r.Message != "" {
			effects = append(effects, Notify{Notice: ui.Notice{Level: ui.LevelSuccess, Message: r.Message}})
		}
		if r.Advance {
			m.ia.Progress++
		}
		if m.attemptKind == AttemptChoose && m.ia.ActiveModal == ModalColorPicker {
			m.ia.ActiveModal = ModalNone
		}
		if r.AwaitPoll {
			m.consumedKey = m.attemptKey
		} else {
			m.settling = true
			m.settleGen++
			effects = append(effects, ScheduleSettle{Gen: m.settleGen})
		}

	default:
		// no local retry: the next phase transition is the only way out
		effects = append(effects, Feedback{Positive: false})
		msg := r.Message
		if msg == "" {
			msg = "That was not right."
		}
		level := ui.LevelWarning
		if r.Outcome == AttemptRejected {
			level = ui.LevelError
		}
		effects = append(effects, Notify{Notice: ui.Notice{Level: level, Message: msg}})
		if m.attemptKind == AttemptChoose && m.ia.ActiveModal == ModalColorPicker {
			m.ia.ActiveModal = ModalNone
		}
		m.consumedKey = m.attemptKey
	}

	m.bump(before)
	return effects
}
