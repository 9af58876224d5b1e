package engine

import (
	"github.com/kvolkov/quizroom/internal/gateway"
	"github.com/kvolkov/quizroom/internal/protocol"
)

// showman handles events addressed to the local showman. The tail of
// the switch repeats the player decision openers: in an oral game the
// showman acts on a player's behalf.
func (c *Controller) showman(ev protocol.Event) {
	switch ev.Opcode {
	case protocol.InAskSelectPlayer:
		c.onAskSelectPlayer(ev)

	case protocol.InAskValidate:
		c.onAskValidate(ev)

	case protocol.InValidation:
		c.onLegacyValidation(ev, 3)

	case protocol.InValidation2:
		c.onLegacyValidation(ev, 4)

	case protocol.InHint:
		if len(ev.Args) > 0 {
			c.sess.Hint = ev.Arg(0)
		}

	case protocol.InRightAnswer:
		c.sess.Hint = ""

	case protocol.InFirst:
		c.openSelection(oldSelectionIndices(ev), protocol.OutFirst, "")
		c.sess.ShowmanReplic("select the first player")

	case protocol.InFirstDelete:
		c.openSelection(oldSelectionIndices(ev), protocol.OutNextDelete, "")
		c.sess.ShowmanReplic("select who deletes the next theme")

	case protocol.InFirstStake:
		c.openSelection(oldSelectionIndices(ev), protocol.OutNext, "")
		c.sess.ShowmanReplic("select who stakes next")

	case protocol.InAnswer:
		c.answerDraft = ""
		c.gw.OpenAnswer()

	case protocol.InChoose:
		c.gw.OpenChoose()
		c.sess.IsSelectable = true

	case protocol.InCat:
		c.openSelection(oldSelectionIndices(ev), protocol.OutCat, "")

	case protocol.InAskStake:
		c.onAskStake(ev)

	case protocol.InStake:
		c.onOldStake(ev, ev.IntOr(3, 0))

	case protocol.InCatCost:
		c.onCatCost(ev)

	case protocol.InCancel:
		c.onCancel()
	}
}

// onAskValidate queues one answer for a verdict. Requests accumulate
// in arrival order and the head is judged first; the verdict replies
// with VALIDATE.
func (c *Controller) onAskValidate(ev protocol.Event) {
	if len(ev.Args) < 2 {
		return
	}

	index, ok := ev.Int(0)
	if !ok {
		return
	}

	p, ok := c.sess.PlayerAt(index)
	if !ok {
		return
	}

	answer := protocol.UnescapeNewLines(ev.Arg(1))
	p.Answer = answer

	c.gw.PushValidation(gateway.ValidationEntry{PlayerName: p.Name, Answer: answer})
}
