package game

import (
	"math/rand"
	"time"
)

// Color is one token from the fixed four-color palette.
type Color string

const (
	Red   Color = "red"
	Blue  Color = "blue"
	Green Color = "green"
	Pink  Color = "pink"
)

// Palette is the fixed token set used for sequence generation and input.
var Palette = []Color{Red, Blue, Green, Pink}

// Session is the full state of one game session. The zero value is an idle
// session ready to be started. Transition methods on Engine take a Session by
// value and return the successor, so the hosting shell owns the single
// mutable instance.
type Session struct {
	Sequence []Color // colors the engine has played back, one appended per level
	Input    []Color // colors the user has pressed this level
	Level    int
	Score    int // highest level reached across rounds in this session
	Started  bool
	Epoch    int // bumped on every reset; stale deferred advances carry an old value
}

// Event is a state-change notification for the presentation layer.
type Event interface{ event() }

// FlashEvent asks the shell to pulse a color pad.
type FlashEvent struct {
	Color  Color
	ByUser bool // true for a pressed pad, false for engine playback
}

// LevelEvent reports the level counter after a level-up.
type LevelEvent struct {
	Level int
}

// GameOverEvent reports a failed round. Level is the level at the time of
// failure; Score is the updated session high score.
type GameOverEvent struct {
	Level int
	Score int
}

// AdvanceScheduledEvent asks the shell to call Advance with the given epoch
// after Delay. The engine never owns a timer; the shell does the scheduling.
type AdvanceScheduledEvent struct {
	Epoch int
	Delay time.Duration
}

func (FlashEvent) event()            {}
func (LevelEvent) event()            {}
func (GameOverEvent) event()         {}
func (AdvanceScheduledEvent) event() {}

// DefaultAdvanceDelay is the pause between a completed level and the next
// playback.
const DefaultAdvanceDelay = 1000 * time.Millisecond

// Engine holds the random source and timing configuration shared by all
// transitions. It carries no session state.
type Engine struct {
	rng   *rand.Rand
	delay time.Duration
}

// NewEngine creates an Engine drawing colors from rng. Tests inject a seeded
// source; production shells pass a time-seeded one.
func NewEngine(rng *rand.Rand) *Engine {
	return &Engine{
		rng:   rng,
		delay: DefaultAdvanceDelay,
	}
}

// Start begins a new round. Valid only from the idle state; on a started
// session it is a no-op.
func (e *Engine) Start(s Session) (Session, []Event) {
	if s.Started {
		return s, nil
	}
	s.Started = true
	s.Level = 0
	s.Sequence = nil
	return e.levelUp(s)
}

// Press submits one color of user input. Valid only while a round is running;
// otherwise a no-op. The position just appended is evaluated immediately: a
// mismatch ends the round, a full match schedules the next level, a partial
// match leaves the session awaiting more input.
func (e *Engine) Press(s Session, c Color) (Session, []Event) {
	if !s.Started {
		return s, nil
	}

	s.Input = append(append([]Color(nil), s.Input...), c)
	events := []Event{FlashEvent{Color: c, ByUser: true}}

	// An input longer than the sequence can only happen when the user keeps
	// pressing during the advance delay; it is a mismatch like any other.
	i := len(s.Input) - 1
	if i >= len(s.Sequence) || s.Input[i] != s.Sequence[i] {
		if s.Level > s.Score {
			s.Score = s.Level
		}
		events = append(events, GameOverEvent{Level: s.Level, Score: s.Score})
		return reset(s), events
	}

	if len(s.Input) == len(s.Sequence) {
		events = append(events, AdvanceScheduledEvent{Epoch: s.Epoch, Delay: e.delay})
	}
	return s, events
}

// Advance is the deferred continuation scheduled by Press. It carries the
// epoch that was current when it was scheduled; if the session has been reset
// since (the round it targets no longer exists), it discards itself.
func (e *Engine) Advance(s Session, epoch int) (Session, []Event) {
	if !s.Started || epoch != s.Epoch {
		return s, nil
	}
	return e.levelUp(s)
}

// levelUp clears the input, bumps the level and appends one uniformly random
// palette color to the sequence.
func (e *Engine) levelUp(s Session) (Session, []Event) {
	s.Input = nil
	s.Level++

	c := Palette[e.rng.Intn(len(Palette))]
	s.Sequence = append(append([]Color(nil), s.Sequence...), c)

	return s, []Event{
		FlashEvent{Color: c},
		LevelEvent{Level: s.Level},
	}
}

// reset returns the session to idle, preserving the score. Bumping Epoch
// invalidates any advance still in flight.
func reset(s Session) Session {
	s.Started = false
	s.Sequence = nil
	s.Input = nil
	s.Level = 0
	s.Epoch++
	return s
}
