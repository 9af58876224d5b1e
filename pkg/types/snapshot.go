// Package types holds the wire-level documents served by the debug
// endpoint; embedders can decode them without importing internals.
package types

// PersonSnapshot is one online participant.
type PersonSnapshot struct {
	Name    string `json:"name"`
	IsHuman bool   `json:"is_human"`
	Avatar  string `json:"avatar,omitempty"`
}

// PlayerSnapshot is one seat of the player sequence, in table order.
type PlayerSnapshot struct {
	Name          string `json:"name"`
	IsHuman       bool   `json:"is_human"`
	IsReady       bool   `json:"is_ready"`
	Sum           int    `json:"sum"`
	Stake         int    `json:"stake"`
	State         string `json:"state"`
	InGame        bool   `json:"in_game"`
	IsChooser     bool   `json:"is_chooser"`
	CanBeSelected bool   `json:"can_be_selected"`
	IsDeciding    bool   `json:"is_deciding"`
	Answer        string `json:"answer,omitempty"`
	Replic        string `json:"replic,omitempty"`
}

// ShowmanSnapshot is the host seat.
type ShowmanSnapshot struct {
	Name       string `json:"name"`
	IsHuman    bool   `json:"is_human"`
	IsReady    bool   `json:"is_ready"`
	IsDeciding bool   `json:"is_deciding"`
	Replic     string `json:"replic,omitempty"`
}

// ThemeSnapshot is one column of the question table; -1 marks a used
// cell.
type ThemeSnapshot struct {
	Name      string `json:"name"`
	Questions []int  `json:"questions"`
}

// TimerSnapshot is one timer slot in protocol units (tenths of a
// second).
type TimerSnapshot struct {
	State   string  `json:"state"`
	Value   float64 `json:"value"`
	Maximum float64 `json:"maximum"`
}

// StateSnapshot is the full observable session state.
type StateSnapshot struct {
	Name     string `json:"name"`
	Role     string `json:"role"`
	HostName string `json:"host_name,omitempty"`

	Stage         string `json:"stage"`
	RoundIndex    int    `json:"round_index"`
	IsGameStarted bool   `json:"is_game_started"`
	IsPaused      bool   `json:"is_paused"`

	Persons []PersonSnapshot `json:"persons"`
	Showman ShowmanSnapshot  `json:"showman"`
	Players []PlayerSnapshot `json:"players"`

	Themes       []ThemeSnapshot `json:"themes"`
	ThemeName    string          `json:"theme_name,omitempty"`
	CurrentPrice int             `json:"current_price"`

	Timers   [3]TimerSnapshot `json:"timers"`
	Decision string           `json:"decision"`

	// ReportText pre-fills the game-review form when the server
	// solicits one.
	ReportText string `json:"report_text,omitempty"`

	CanPress     bool `json:"can_press"`
	IsSelectable bool `json:"is_selectable"`
	Closed       bool `json:"closed"`
}
