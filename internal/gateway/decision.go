package gateway

import "github.com/kvolkov/quizroom/internal/protocol"

// DecisionType tags the single input currently being solicited from
// the local participant. At most one decision is active; it is set by
// the specific inbound opcode that opens it and cleared by the
// matching outbound command or a cancellation.
type DecisionType int

const (
	DecisionNone DecisionType = iota
	DecisionAnswer
	DecisionSelectChooser
	DecisionSelectPlayer
	DecisionStake
	DecisionOralAnswer
	DecisionChoose
	DecisionValidation
	DecisionReview
)

func (d DecisionType) String() string {
	switch d {
	case DecisionAnswer:
		return "answer"
	case DecisionSelectChooser:
		return "selectChooser"
	case DecisionSelectPlayer:
		return "selectPlayer"
	case DecisionStake:
		return "stake"
	case DecisionOralAnswer:
		return "oralAnswer"
	case DecisionChoose:
		return "choose"
	case DecisionValidation:
		return "validation"
	case DecisionReview:
		return "review"
	default:
		return "none"
	}
}

// StakeState is an open stake negotiation: which reply kinds are
// allowed, the numeric bounds, and the opcode the reply must use.
// Two stake sub-protocols share it; ReplyOpcode tells them apart.
type StakeState struct {
	Modes       protocol.StakeModes
	Minimum     int
	Maximum     int
	Step        int
	ReplyOpcode string
	PlayerName  string
}

// ValidationEntry is one answer awaiting the showman's verdict.
type ValidationEntry struct {
	PlayerName string
	Answer     string
}

// ValidationState carries both validation sub-protocols. The legacy
// form replaces the queue with a single entry and replies with
// ISRIGHT; the queued form appends and replies with VALIDATE. The
// trigger for choosing one over the other is the server's, so both
// are preserved behind the same decision tag.
type ValidationState struct {
	Queue        []ValidationEntry
	Queued       bool
	RightAnswers []string
	WrongAnswers []string
	ShowExtra    bool
}

// Head returns the entry currently presented for a verdict.
func (v *ValidationState) Head() (ValidationEntry, bool) {
	if len(v.Queue) == 0 {
		return ValidationEntry{}, false
	}
	return v.Queue[0], true
}

// SelectionState is an open player-selection request and the opcode
// its reply must use.
type SelectionState struct {
	ReplyOpcode string
	Reason      string
}
