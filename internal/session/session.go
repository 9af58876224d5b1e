package session

// Role of the local participant within the session.
type Role int

const (
	RoleViewer Role = iota
	RolePlayer
	RoleShowman
)

func (r Role) String() string {
	switch r {
	case RolePlayer:
		return "player"
	case RoleShowman:
		return "showman"
	default:
		return "viewer"
	}
}

// AnyName is the placeholder occupying a freed seat.
const AnyName = " "

// HiddenStake marks a stake whose value is not yet revealed.
const HiddenStake = -4

// Stage tracks where the game currently is.
type Stage struct {
	Name            string
	RoundName       string
	RoundIndex      int
	IsGameStarted   bool
	IsPaused        bool
	IsQuestion      bool
	IsAfterQuestion bool
}

// Stage names used by the server.
const (
	StageBefore = "Before"
	StageBegin  = "Begin"
	StageRound  = "Round"
	StageFinal  = "Final"
	StageAfter  = "After"
)

// GameMetadata describes the running game: its name, the question
// package and an organizer contact.
type GameMetadata struct {
	GameName    string
	PackageName string
	ContactURI  string
	VoiceChat   string
}

// Session is the authoritative client-side view of one game. It is an
// explicitly-owned aggregate passed into every handler call; all
// mutation happens on the controller loop, one event at a time.
type Session struct {
	// Name is the local user's login; events echoing it are suppressed.
	Name string
	Role Role

	Persons map[string]*Person
	Showman Showman
	Players []*Player

	HostName string
	Stage    Stage

	Themes      []*ThemeInfo
	TableFilled bool
	RoundsNames []string
	ThemeName   string

	CurrentPrice int
	CanPress     bool
	IsSelectable bool

	// Hint is the question hint visible to the showman only.
	Hint string

	ShowMainTimer bool

	JoinMode           string
	ReadingSpeed       int
	ButtonBlockingTime int

	Banned   map[string]string
	Metadata GameMetadata

	Chat []ChatMessage
}

// New returns an empty session for the given local user.
func New(name string) *Session {
	return &Session{
		Name:    name,
		Role:    RoleViewer,
		Persons: make(map[string]*Person),
		Banned:  make(map[string]string),
	}
}

// PlayerAt bounds-checks a seat index; late events racing a seat
// deletion land here and are dropped by the caller.
func (s *Session) PlayerAt(index int) (*Player, bool) {
	if index < 0 || index >= len(s.Players) {
		return nil, false
	}
	return s.Players[index], true
}

// PlayerIndex finds a seat by occupant name, -1 when absent.
func (s *Session) PlayerIndex(name string) int {
	for i, p := range s.Players {
		if p.Name == name {
			return i
		}
	}
	return -1
}

// ClearPlayerStates resets every seat's transient question state.
func (s *Session) ClearPlayerStates() {
	for _, p := range s.Players {
		p.ClearTransient()
	}
}

// ClearDeciding drops every "is deciding" indicator.
func (s *Session) ClearDeciding() {
	s.Showman.IsDeciding = false
	for _, p := range s.Players {
		p.IsDeciding = false
	}
}

// DeselectPlayers drops every seat's selectable flag.
func (s *Session) DeselectPlayers() {
	for _, p := range s.Players {
		p.CanBeSelected = false
	}
}

// SetChooser marks the single seat holding the right to choose.
func (s *Session) SetChooser(index int) {
	for i, p := range s.Players {
		p.IsChooser = i == index
	}
}

// ShowmanReplic sets the showman status line, clearing player replics.
func (s *Session) ShowmanReplic(text string) {
	s.Showman.Replic = text
	for _, p := range s.Players {
		p.Replic = ""
	}
}

// PlayerReplic sets one player's status line, clearing the others.
func (s *Session) PlayerReplic(index int, text string) {
	s.Showman.Replic = ""
	for i, p := range s.Players {
		if i == index {
			p.Replic = text
		} else {
			p.Replic = ""
		}
	}
}
