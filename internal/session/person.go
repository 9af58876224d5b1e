package session

// Sex of a participant, as reported by the server.
type Sex int

const (
	SexMale Sex = iota
	SexFemale
)

// Person is an online participant, keyed by name in the session registry.
type Person struct {
	Name    string
	Sex     Sex
	IsHuman bool
	Avatar  string
}

// PlayerState is the transient outcome tag shown on a player seat.
type PlayerState int

const (
	StateNone PlayerState = iota
	StatePress
	StateLost
	StateRight
	StateWrong
	StateHasAnswered
	StatePass
)

func (s PlayerState) String() string {
	switch s {
	case StatePress:
		return "Answering"
	case StateLost:
		return "Lost"
	case StateRight:
		return "Right"
	case StateWrong:
		return "Wrong"
	case StateHasAnswered:
		return "HasAnswered"
	case StatePass:
		return "Pass"
	default:
		return "None"
	}
}

// ParsePlayerState decodes the server's textual player state. Unknown
// values map to StateNone.
func ParsePlayerState(value string) PlayerState {
	switch value {
	case "Answering":
		return StatePress
	case "Lost":
		return StateLost
	case "Right":
		return StateRight
	case "Wrong":
		return StateWrong
	case "HasAnswered":
		return StateHasAnswered
	case "Pass":
		return StatePass
	default:
		return StateNone
	}
}

// Showman is the host seat.
type Showman struct {
	Name       string
	IsHuman    bool
	IsReady    bool
	IsDeciding bool
	Replic     string
}

// Player is a seat in the ordered player sequence. The sequence order is
// authoritative table seating and is never re-sorted.
type Player struct {
	Name           string
	IsHuman        bool
	IsReady        bool
	Sum            int
	Stake          int
	State          PlayerState
	CanBeSelected  bool
	IsChooser      bool
	InGame         bool
	IsDeciding     bool
	IsAppellating  bool
	MediaLoaded    bool
	Answer         string
	Replic         string
}

// NewPlayer returns an empty seat ready to be occupied.
func NewPlayer() *Player {
	return &Player{IsHuman: true, InGame: true}
}

// ClearTransient resets the per-question seat state. Applied on stage
// transitions and before every new question.
func (p *Player) ClearTransient() {
	p.State = StateNone
	p.Stake = 0
	p.Answer = ""
	p.MediaLoaded = false
	p.CanBeSelected = false
	p.IsAppellating = false
}
