package gateway

import (
	"errors"

	"go.uber.org/zap"

	"github.com/kvolkov/quizroom/internal/protocol"
	"github.com/kvolkov/quizroom/internal/session"
)

var ErrDisconnected = errors.New("not connected to a game")
var ErrNoDecision = errors.New("no matching decision is open")
var ErrNotSelectable = errors.New("target cannot be selected")
var ErrStakeOutOfRange = errors.New("stake out of allowed range")

// Sender delivers an outbound protocol command. Fire-and-forget: the
// gateway never waits for a server acknowledgement.
type Sender interface {
	Send(opcode string, args ...string) error
}

// Gateway translates local user intent into protocol sends and owns
// the single-slot decision state plus the validation queue. Commands
// with no matching open decision are rejected locally, guarding
// against duplicate or stale user actions.
type Gateway struct {
	log  *zap.Logger
	send Sender
	sess *session.Session

	connected bool

	Decision   DecisionType
	Stake      StakeState
	Validation ValidationState
	Selection  SelectionState
}

func New(log *zap.Logger, send Sender, sess *session.Session) *Gateway {
	return &Gateway{log: log, send: send, sess: sess}
}

// SetConnected flips the local connectivity gate.
func (g *Gateway) SetConnected(connected bool) {
	g.connected = connected
}

func (g *Gateway) msg(opcode string, args ...string) error {
	if !g.connected {
		return ErrDisconnected
	}

	if err := g.send.Send(opcode, args...); err != nil {
		g.log.Warn("send failed", zap.String("opcode", opcode), zap.Error(err))
		return err
	}

	return nil
}

// open replaces the active decision. Opening a new decision implicitly
// abandons the previous one: the server has moved on.
func (g *Gateway) open(d DecisionType) {
	if g.Decision != DecisionNone && g.Decision != d {
		g.log.Debug("decision superseded",
			zap.Stringer("old", g.Decision), zap.Stringer("new", d))
	}
	g.Decision = d
}

// OpenAnswer solicits a written answer from the local player.
func (g *Gateway) OpenAnswer() { g.open(DecisionAnswer) }

// OpenOralAnswer solicits a spoken answer; no text is sent back.
func (g *Gateway) OpenOralAnswer() { g.open(DecisionOralAnswer) }

// OpenChoose lets the local participant pick a question from the table.
func (g *Gateway) OpenChoose() { g.open(DecisionChoose) }

// OpenReview solicits a game review.
func (g *Gateway) OpenReview() { g.open(DecisionReview) }

// OpenSelection lets the local participant pick a player; the reply
// uses replyOpcode. Chooser-flavored requests (who takes the next
// turn) get their own decision tag.
func (g *Gateway) OpenSelection(replyOpcode, reason string) {
	g.Selection = SelectionState{ReplyOpcode: replyOpcode, Reason: reason}
	switch replyOpcode {
	case protocol.OutSetChooser, protocol.OutFirst:
		g.open(DecisionSelectChooser)
	default:
		g.open(DecisionSelectPlayer)
	}
}

// OpenStake starts a stake negotiation.
func (g *Gateway) OpenStake(st StakeState) {
	g.Stake = st
	g.open(DecisionStake)
}

// OpenValidation (legacy protocol) replaces any pending validation
// with a single entry.
func (g *Gateway) OpenValidation(entry ValidationEntry, right, wrong []string, showExtra bool) {
	g.Validation = ValidationState{
		Queue:        []ValidationEntry{entry},
		Queued:       false,
		RightAnswers: right,
		WrongAnswers: wrong,
		ShowExtra:    showExtra,
	}
	g.open(DecisionValidation)
}

// PushValidation (queued protocol) appends an entry to the FIFO.
func (g *Gateway) PushValidation(entry ValidationEntry) {
	g.Validation.Queue = append(g.Validation.Queue, entry)
	g.Validation.Queued = true
	g.open(DecisionValidation)
}

// Cancel clears all decision and validation state unconditionally. It
// is safe to apply when no decision is open.
func (g *Gateway) Cancel() {
	g.Decision = DecisionNone
	g.Stake = StakeState{}
	g.Validation = ValidationState{}
	g.Selection = SelectionState{}
}

// popValidation drops the queue head after a verdict; an emptied queue
// closes the decision.
func (g *Gateway) popValidation() {
	if len(g.Validation.Queue) > 0 {
		g.Validation.Queue = g.Validation.Queue[1:]
	}
	if len(g.Validation.Queue) == 0 {
		g.Decision = DecisionNone
		g.Validation = ValidationState{}
	}
}
