package engine

import (
	"github.com/DoyleJ11/gamesync/internal/ui"
)

// Machine derives the interaction state of one session from the snapshots
// it is shown. It is not safe for concurrent use; its session owns it.
type Machine struct {
	me      int
	phase   Phase
	myTurn  bool
	version int
	ia      Interaction

	key     string // last observed phase key
	seqVer  int    // last observed sequence version
	players int
	ready   int

	// animation playback of the repeat phase
	animatedVersion int
	animationDone   bool

	// consumedKey is the phase key whose interaction has been used up (a
	// choice sent, a sequence completed, a failed attempt). Interaction stays
	// off until a poll shows a different key.
	consumedKey string

	attemptKind AttemptKind
	attemptKey  string

	settling  bool
	settleGen int

	startRequested bool
	entered        bool
	cheaterShown   bool
}

func NewMachine(localUserID int) *Machine {
	m := &Machine{
		me:              localUserID,
		phase:           Idle{},
		animatedVersion: -1,
	}
	m.ia.ActiveModal = ModalNone
	return m
}

func (m *Machine) Phase() Phase { return m.phase }

func (m *Machine) View() View {
	v := View{
		Version:     m.version,
		Phase:       m.phase.Name(),
		MyTurn:      m.myTurn,
		Players:     m.players,
		Ready:       m.ready,
		Interaction: m.ia,
	}
	switch p := m.phase.(type) {
	case InProgress:
		v.Subphase = p.Sub
		if p.Sub == SubRepeatSequence {
			v.AnimationVersion = m.animatedVersion
		}
	case Terminal:
		v.Outcome = p.Outcome
		v.WinnerID = p.WinnerID
	}
	return v
}

func (m *Machine) terminal() bool {
	_, ok := m.phase.(Terminal)
	return ok
}

// ObserveLobby applies one lobby-status snapshot.
func (m *Machine) ObserveLobby(o LobbyObservation) []Effect {
	if m.terminal() || m.entered {
		// a late lobby answer after the game began changes nothing
		return nil
	}
	var effects []Effect
	before := m.View()

	m.players = o.Players
	m.ready = o.Ready

	switch {
	case o.Started:
		m.entered = true
		m.phase = InProgress{Sub: SubPending}
		m.myTurn = false
		m.ia = Interaction{ActiveModal: ModalNone}
		effects = append(effects, EnterGame{}, Navigate{Route: RouteGame})

	case o.Players < o.MinPlayers:
		m.phase = LobbyWaiting{Players: o.Players}

	default:
		m.phase = LobbyReadyCheck{Players: o.Players, Ready: o.Ready}
		// only the host causes the start; everyone else waits to observe it
		if o.IsHost && o.AllReady() && !m.startRequested {
			m.startRequested = true
			effects = append(effects, RequestStart{})
		}
	}

	m.bump(before)
	return effects
}

// StartFailed lets the host ask again on a later lobby poll.
func (m *Machine) StartFailed() {
	m.startRequested = false
}

// ObserveGame applies one game-status snapshot.
func (m *Machine) ObserveGame(o GameObservation) []Effect {
	if m.terminal() {
		// terminal is handled once; racing polls must not reopen it
		return nil
	}
	var effects []Effect
	before := m.View()
	m.entered = true

	switch {
	case o.Status == StatusFinished:
		return m.finish(o.WinnerID, before)

	case o.Banned:
		m.enter(o, SubSpectate, false)
		if !m.cheaterShown {
			m.cheaterShown = true
			m.ia.ActiveModal = ModalCheaterNotice
			effects = append(effects, Notify{Notice: ui.Notice{
				Level:   ui.LevelWarning,
				Title:   "Disqualified",
				Message: "Your claim was invalid; you are now spectating.",
			}})
		}

	case o.Status == StatusVerification:
		changed := m.enter(o, SubVerification, false)
		m.ia.ActiveModal = ModalVerification
		if changed {
			effects = append(effects, Notify{Notice: ui.Notice{
				Level:   ui.LevelInfo,
				Message: "A win claim is being verified.",
			}})
		}

	case o.Status == StatusWaiting:
		m.enter(o, SubPending, false)
		m.closeModal()

	default:
		sub := o.Sub
		if !o.MyTurn || sub == "" {
			sub = SubOpponentTurn
		}
		myTurn := o.MyTurn && sub != SubOpponentTurn
		m.enter(o, sub, myTurn)

		switch {
		case sub.choosing():
			if (m.consumedKey != "" && m.consumedKey == m.key) || m.ia.InFlight {
				m.closeModal()
			} else {
				m.ia.ActiveModal = ModalColorPicker
			}

		case sub == SubRepeatSequence:
			if o.Version != m.animatedVersion {
				// one playback per distinct sequence version
				m.animatedVersion = o.Version
				m.animationDone = false
				m.ia.ActiveModal = ModalSequenceAnimation
				m.ia.Progress = 0
				effects = append(effects, PlayAnimation{Version: o.Version})
			} else if m.animationDone {
				m.closeModal()
			}

		default:
			m.closeModal()
		}
	}

	m.bump(before)
	return effects
}

// Abort ends the session locally, e.g. when the backend no longer knows
// the game. It reports the notice once.
func (m *Machine) Abort(message string) []Effect {
	if m.terminal() {
		return nil
	}
	before := m.View()
	m.phase = Terminal{Outcome: OutcomeAborted}
	m.myTurn = false
	m.settling = false
	m.ia = Interaction{ActiveModal: ModalNone}
	m.bump(before)
	return []Effect{
		StopPolling{},
		Notify{Notice: ui.Notice{Level: ui.LevelError, Message: message}},
		Navigate{Route: RouteHome},
	}
}

// AnimationDone ends the playback of the given version; stale versions are ignored.
func (m *Machine) AnimationDone(version int) bool {
	if m.ia.ActiveModal != ModalSequenceAnimation || version != m.animatedVersion {
		return false
	}
	before := m.View()
	m.animationDone = true
	m.ia.ActiveModal = ModalNone
	m.ia.Progress = 0
	m.bump(before)
	return true
}

// Settle re-enables interaction after the post-success delay.
func (m *Machine) Settle(gen int) bool {
	if !m.settling || gen != m.settleGen {
		return false
	}
	before := m.View()
	m.settling = false
	m.bump(before)
	return true
}

// Dismiss closes a modal the player may close themselves.
func (m *Machine) Dismiss() bool {
	if m.ia.ActiveModal != ModalCheaterNotice {
		return false
	}
	before := m.View()
	m.ia.ActiveModal = ModalNone
	m.bump(before)
	return true
}

func (m *Machine) finish(winnerID int, before View) []Effect {
	outcome := OutcomeFinished
	notice := ui.Notice{Level: ui.LevelInfo, Title: "Game over", Message: "The game has finished."}
	switch {
	case winnerID != 0 && winnerID == m.me:
		outcome = OutcomeWon
		notice = ui.Notice{Level: ui.LevelSuccess, Title: "Game over", Message: "You won!"}
	case winnerID != 0:
		outcome = OutcomeLost
		notice = ui.Notice{Level: ui.LevelWarning, Title: "Game over", Message: "You lost."}
	}

	m.phase = Terminal{Outcome: outcome, WinnerID: winnerID}
	m.myTurn = false
	m.settling = false
	m.ia = Interaction{ActiveModal: ModalGameEnd, Progress: m.ia.Progress}
	m.bump(before)
	return []Effect{StopPolling{}, Notify{Notice: notice}, Navigate{Route: RouteResult}}
}

// enter records the observed phase and reports whether its key changed.
func (m *Machine) enter(o GameObservation, sub Subphase, myTurn bool) bool {
	key := phaseKey(o.Status, sub, myTurn, o.Version)
	changed := key != m.key
	m.key = key
	m.seqVer = o.Version
	m.phase = InProgress{Sub: sub}
	m.myTurn = myTurn
	if changed && m.ia.ActiveModal == ModalColorPicker && !sub.choosing() {
		m.ia.ActiveModal = ModalNone
	}
	return changed
}

func (m *Machine) closeModal() {
	if m.ia.ActiveModal == ModalCheaterNotice {
		return // stays until dismissed
	}
	m.ia.ActiveModal = ModalNone
}

// interactive is the single place CanInteract is decided.
func (m *Machine) interactive() bool {
	ip, ok := m.phase.(InProgress)
	if !ok || !m.myTurn {
		return false
	}
	if m.ia.ActiveModal != ModalNone || m.ia.InFlight || m.settling {
		return false
	}
	if m.consumedKey != "" && m.consumedKey == m.key {
		return false
	}
	switch ip.Sub {
	case SubRepeatSequence:
		return m.animatedVersion == m.seqVer && m.animationDone
	case SubAttack, SubMarking:
		return true
	}
	return false
}

// bump recomputes derived flags and increments the view version if anything moved.
func (m *Machine) bump(before View) {
	m.ia.CanInteract = m.interactive()
	m.ia.Frozen = m.consumedKey != "" && m.consumedKey == m.key && !m.terminal()
	after := m.View()
	after.Version = before.Version
	if after != before {
		m.version++
	}
}
