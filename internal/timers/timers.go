package timers

import "time"

// TimerState is the lifecycle tag of one timer slot.
type TimerState int

const (
	Stopped TimerState = iota
	Running
	Paused
)

func (s TimerState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Well-known timer slots.
const (
	Round    = 0
	Press    = 1
	Decision = 2

	Count = 3
)

// Timer mirrors one server-driven timer. Value and Maximum are in the
// server's tenth-of-a-second units. Commands carry authoritative
// values; local ticking only interpolates between them.
type Timer struct {
	State            TimerState
	Value            float64
	Maximum          float64
	IsPausedByUser   bool
	IsPausedBySystem bool
}

// Set holds the session's three timers.
type Set struct {
	timers [Count]Timer
}

// NewSet returns all timers Stopped.
func NewSet() *Set {
	return &Set{}
}

// Get returns a snapshot of one slot. Out-of-range indexes read as a
// zero Timer; servers only ever address slots 0..2.
func (s *Set) Get(index int) Timer {
	if index < 0 || index >= Count {
		return Timer{}
	}
	return s.timers[index]
}

func (s *Set) at(index int) *Timer {
	if index < 0 || index >= Count {
		return nil
	}
	return &s.timers[index]
}

// Run starts a timer from zero with the given maximum.
func (s *Set) Run(index int, maximum float64) {
	t := s.at(index)
	if t == nil {
		return
	}
	t.State = Running
	t.Value = 0
	t.Maximum = maximum
	t.IsPausedByUser = false
	t.IsPausedBySystem = false
}

// Stop halts a timer and resets its value.
func (s *Set) Stop(index int) {
	t := s.at(index)
	if t == nil {
		return
	}
	t.State = Stopped
	t.Value = 0
	t.IsPausedByUser = false
	t.IsPausedBySystem = false
}

// Pause freezes a timer at the server-reported value. byUser records
// who requested the pause; while Paused exactly one of the two flags
// is set.
func (s *Set) Pause(index int, value float64, byUser bool) {
	t := s.at(index)
	if t == nil || t.State != Running {
		return
	}
	t.State = Paused
	t.IsPausedByUser = byUser
	t.IsPausedBySystem = !byUser
	t.Value = min(value, t.Maximum)
}

// Resume continues a paused timer. A user pause can only be lifted by a
// user resume, and likewise for system pauses.
func (s *Set) Resume(index int, byUser bool) {
	t := s.at(index)
	if t == nil || t.State != Paused {
		return
	}
	if byUser != t.IsPausedByUser {
		return
	}
	t.State = Running
	t.IsPausedByUser = false
	t.IsPausedBySystem = false
}

// SetMaximum updates a timer's span without touching its state.
func (s *Set) SetMaximum(index int, maximum float64) {
	t := s.at(index)
	if t == nil {
		return
	}
	t.Maximum = maximum
	if t.Value > maximum {
		t.Value = maximum
	}
}

// TickInterval is the cosmetic interpolation step.
const TickInterval = 100 * time.Millisecond

// Tick advances every running timer by dt. This is display
// interpolation only: the next server command always supersedes the
// local value, and Value never passes Maximum.
func (s *Set) Tick(dt time.Duration) {
	units := dt.Seconds() * 10 // tenth-of-a-second protocol units

	for i := range s.timers {
		t := &s.timers[i]
		if t.State != Running {
			continue
		}
		t.Value = min(t.Value+units, t.Maximum)
	}
}
