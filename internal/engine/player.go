package engine

import (
	"strings"
	"time"

	"github.com/kvolkov/quizroom/internal/gateway"
	"github.com/kvolkov/quizroom/internal/protocol"
	"github.com/kvolkov/quizroom/internal/session"
)

// answerDraftInterval is how often an in-progress answer draft is
// resynced to the server while the player keeps typing.
const answerDraftInterval = 3 * time.Second

// UpdateAnswerDraft records the answer being composed and arms the
// periodic draft resync; the sync keeps renewing itself while typing
// continues and dies with the decision.
func (c *Controller) UpdateAnswerDraft(text string) error {
	return c.Do(func(_ *session.Session, gw *gateway.Gateway) error {
		if gw.Decision != gateway.DecisionAnswer {
			return gateway.ErrNoDecision
		}

		c.answerDraft = text

		if !c.scheduled("answer-version") {
			c.schedule("answer-version", answerDraftInterval, func(c *Controller) {
				if c.gw.Decision == gateway.DecisionAnswer {
					_ = c.gw.SendAnswerVersion(c.answerDraft)
				}
			})
		}

		return nil
	})
}

// player handles events addressed to the seated local player.
func (c *Controller) player(ev protocol.Event) {
	switch ev.Opcode {
	case protocol.InAnswer:
		c.answerDraft = ""
		c.gw.OpenAnswer()

	case protocol.InOralAnswer:
		c.gw.OpenOralAnswer()

	case protocol.InChoose:
		c.gw.OpenChoose()
		c.sess.IsSelectable = true

	case protocol.InAskSelectPlayer:
		c.onAskSelectPlayer(ev)

	case protocol.InCat:
		c.openSelection(oldSelectionIndices(ev), protocol.OutCat, "")

	case protocol.InAskStake:
		c.onAskStake(ev)

	case protocol.InStake:
		c.onOldStake(ev, c.ownSum())

	case protocol.InCatCost:
		c.onCatCost(ev)

	case protocol.InFinalStake:
		c.gw.OpenStake(gateway.StakeState{
			Modes:       protocol.StakeModeStake,
			Minimum:     1,
			Maximum:     c.ownSum(),
			Step:        1,
			ReplyOpcode: protocol.OutFinalStake,
		})

	case protocol.InValidation:
		c.onLegacyValidation(ev, 3)

	case protocol.InValidation2:
		c.onLegacyValidation(ev, 4)

	case protocol.InReport:
		if len(ev.Args) > 0 {
			c.reportText = strings.ReplaceAll(ev.Arg(0), "\r", "\n")
		}
		c.gw.OpenReview()

	case protocol.InCancel:
		c.onCancel()
	}
}

func (c *Controller) onCancel() {
	c.gw.Cancel()
	c.sess.IsSelectable = false
	c.sess.DeselectPlayers()
	c.sess.ClearDeciding()
}

// ownSum is the local player's score, the cap for most stake replies.
func (c *Controller) ownSum() int {
	if i := c.sess.PlayerIndex(c.sess.Name); i >= 0 {
		return c.sess.Players[i].Sum
	}
	return 0
}

// onAskSelectPlayer opens a selection: the reason comes first, then
// one '+'/'-' flag per seat.
func (c *Controller) onAskSelectPlayer(ev protocol.Event) {
	if len(ev.Args) < 2 {
		return
	}

	var indices []int
	for i := 0; i+1 < len(ev.Args); i++ {
		if ev.Plus(i + 1) {
			indices = append(indices, i)
		}
	}

	c.openSelection(indices, protocol.OutSelectPlayer, ev.Arg(0))
}

// oldSelectionIndices decodes the older layout with no reason
// argument: one flag per seat, starting immediately.
func oldSelectionIndices(ev protocol.Event) []int {
	var indices []int
	for i := 0; i < len(ev.Args); i++ {
		if ev.Plus(i) {
			indices = append(indices, i)
		}
	}
	return indices
}

func (c *Controller) openSelection(indices []int, replyOpcode, reason string) {
	c.sess.DeselectPlayers()
	for _, i := range indices {
		if p, ok := c.sess.PlayerAt(i); ok {
			p.CanBeSelected = true
		}
	}

	c.gw.OpenSelection(replyOpcode, reason)
}

// onAskStake opens a stake negotiation in the current protocol: the
// reply names the chosen mode. Bounds are repaired locally so a broken
// range never blocks the reply.
func (c *Controller) onAskStake(ev protocol.Event) {
	if len(ev.Args) < 5 {
		return
	}

	modes := protocol.ParseStakeModes(ev.Arg(0))
	minimum := ev.IntOr(1, 1)
	maximum := ev.IntOr(2, 0)
	step := ev.IntOr(3, 1)

	if minimum < 1 {
		minimum = 1
	}
	if maximum < minimum {
		maximum = minimum
	}

	st := gateway.StakeState{
		Modes:       modes,
		Minimum:     minimum,
		Maximum:     maximum,
		Step:        step,
		ReplyOpcode: protocol.OutSetStake,
	}
	if len(ev.Args) > 5 {
		st.PlayerName = ev.Arg(5)
	}

	c.gw.OpenStake(st)
}

// onOldStake opens a stake negotiation in the older protocol: the
// reply is a numeric mode code, and the maximum is not on the wire.
func (c *Controller) onOldStake(ev protocol.Event, maximum int) {
	if len(ev.Args) < 3 {
		return
	}

	c.gw.OpenStake(gateway.StakeState{
		Modes:       protocol.ParseStakeModes(ev.Arg(0)),
		Minimum:     ev.IntOr(1, 1),
		Maximum:     maximum,
		Step:        ev.IntOr(2, 1),
		ReplyOpcode: protocol.OutStake,
	})
}

// onCatCost asks for a secret-question price: a plain value pick with
// no pass or all-in.
func (c *Controller) onCatCost(ev protocol.Event) {
	if len(ev.Args) < 3 {
		return
	}

	c.gw.OpenStake(gateway.StakeState{
		Modes:       protocol.StakeModeStake,
		Minimum:     ev.IntOr(0, 1),
		Maximum:     ev.IntOr(1, 1),
		Step:        ev.IntOr(2, 1),
		ReplyOpcode: protocol.OutCatCost,
	})
}

// onLegacyValidation opens the single-slot validation: a new request
// replaces whatever was pending, and the verdict replies with ISRIGHT.
// rightCountArg differs between the two wire layouts that share this
// shape.
func (c *Controller) onLegacyValidation(ev protocol.Event, rightCountArg int) {
	if len(ev.Args) <= rightCountArg {
		return
	}

	name := ev.Arg(0)
	answer := protocol.UnescapeNewLines(ev.Arg(1))

	rightCount := ev.IntOr(rightCountArg, 0)
	if rest := len(ev.Args) - rightCountArg - 1; rightCount > rest {
		rightCount = rest
	}

	right := make([]string, 0, rightCount)
	for i := 0; i < rightCount; i++ {
		right = append(right, ev.Arg(rightCountArg+1+i))
	}

	var wrong []string
	for i := rightCountArg + 1 + rightCount; i < len(ev.Args); i++ {
		wrong = append(wrong, ev.Arg(i))
	}

	showExtra := rightCountArg == 4 && ev.Plus(3)

	c.gw.OpenValidation(
		gateway.ValidationEntry{PlayerName: name, Answer: answer},
		right, wrong, showExtra,
	)

	if i := c.sess.PlayerIndex(name); i >= 0 {
		c.sess.Players[i].Answer = answer
	}
}
