package gateway

import (
	"github.com/kvolkov/quizroom/internal/protocol"
	"github.com/kvolkov/quizroom/internal/session"
)

// PressButton races for the right to answer. delta is the client-side
// press latency in milliseconds.
func (g *Gateway) PressButton(delta int) error {
	if !g.sess.CanPress {
		return ErrNoDecision
	}
	return g.msg(protocol.OutPressButton, protocol.Itoa(delta))
}

// SelectQuestion picks a table cell. A no-op against a cell that is
// not currently selectable: a race with another chooser, not an error
// worth surfacing.
func (g *Gateway) SelectQuestion(themeIndex, questionIndex int) error {
	if g.Decision != DecisionChoose || !g.sess.IsSelectable {
		return ErrNoDecision
	}

	theme, ok := g.sess.ThemeAt(themeIndex)
	if !ok {
		return nil
	}
	price, ok := theme.Question(questionIndex)
	if !ok || price == session.QuestionUsed {
		return nil
	}

	if err := g.msg(protocol.OutChoice, protocol.Itoa(themeIndex), protocol.Itoa(questionIndex)); err != nil {
		return err
	}

	g.Decision = DecisionNone
	g.sess.IsSelectable = false
	return nil
}

// DeleteTheme eliminates a final-round theme.
func (g *Gateway) DeleteTheme(themeIndex int) error {
	if g.Decision != DecisionChoose || !g.sess.IsSelectable {
		return ErrNoDecision
	}

	if _, ok := g.sess.ThemeAt(themeIndex); !ok {
		return nil
	}

	if err := g.msg(protocol.OutDelete, protocol.Itoa(themeIndex)); err != nil {
		return err
	}

	g.Decision = DecisionNone
	g.sess.IsSelectable = false
	return nil
}

// SendAnswer submits the local player's answer.
func (g *Gateway) SendAnswer(answer string) error {
	if g.Decision != DecisionAnswer && g.Decision != DecisionOralAnswer {
		return ErrNoDecision
	}

	if err := g.msg(protocol.OutAnswer, answer); err != nil {
		return err
	}

	g.Decision = DecisionNone
	return nil
}

// SendAnswerVersion resyncs the in-progress answer draft. Sent on a
// fixed interval while composing; does not close the decision.
func (g *Gateway) SendAnswerVersion(draft string) error {
	if g.Decision != DecisionAnswer {
		return ErrNoDecision
	}
	return g.msg(protocol.OutAnswerVersion, draft)
}

// StakeValue submits a literal stake using whichever reply protocol
// opened the negotiation.
func (g *Gateway) StakeValue(value int) error {
	if g.Decision != DecisionStake {
		return ErrNoDecision
	}
	if value < g.Stake.Minimum || value > g.Stake.Maximum {
		return ErrStakeOutOfRange
	}

	var err error
	if g.Stake.ReplyOpcode == protocol.OutSetStake {
		err = g.msg(protocol.OutSetStake, "Stake", protocol.Itoa(value))
	} else {
		err = g.msg(g.Stake.ReplyOpcode, "1", protocol.Itoa(value))
	}
	if err != nil {
		return err
	}

	g.Decision = DecisionNone
	g.Stake = StakeState{}
	return nil
}

// StakeNominal answers a stake request with the question's nominal price.
func (g *Gateway) StakeNominal() error {
	return g.stakeSimple(protocol.StakeModeNominal, "Nominal", "0")
}

// StakePass passes on staking.
func (g *Gateway) StakePass() error {
	return g.stakeSimple(protocol.StakeModePass, "Pass", "2")
}

// StakeAllIn wagers everything.
func (g *Gateway) StakeAllIn() error {
	return g.stakeSimple(protocol.StakeModeAllIn, "AllIn", "3")
}

func (g *Gateway) stakeSimple(mode protocol.StakeModes, name, legacyCode string) error {
	if g.Decision != DecisionStake {
		return ErrNoDecision
	}
	if !g.Stake.Modes.Has(mode) {
		return ErrStakeOutOfRange
	}

	var err error
	if g.Stake.ReplyOpcode == protocol.OutSetStake {
		err = g.msg(protocol.OutSetStake, name)
	} else {
		err = g.msg(g.Stake.ReplyOpcode, legacyCode)
	}
	if err != nil {
		return err
	}

	g.Decision = DecisionNone
	g.Stake = StakeState{}
	return nil
}

// Approve accepts the validation queue head. factor scales the award
// in the legacy protocol.
func (g *Gateway) Approve(factor int) error {
	return g.validate(true, factor)
}

// Reject declines the validation queue head.
func (g *Gateway) Reject(factor int) error {
	return g.validate(false, factor)
}

func (g *Gateway) validate(isRight bool, factor int) error {
	if g.Decision != DecisionValidation {
		return ErrNoDecision
	}
	head, ok := g.Validation.Head()
	if !ok {
		return ErrNoDecision
	}

	var err error
	if g.Validation.Queued {
		err = g.msg(protocol.OutValidate, head.Answer, protocol.Flag(isRight))
	} else {
		err = g.msg(protocol.OutIsRight, protocol.Flag(isRight), protocol.Itoa(factor))
	}
	if err != nil {
		return err
	}

	g.popValidation()
	return nil
}

// SelectPlayer answers an open selection request. A no-op against a
// seat that is not currently selectable.
func (g *Gateway) SelectPlayer(index int) error {
	if g.Decision != DecisionSelectPlayer && g.Decision != DecisionSelectChooser {
		return ErrNoDecision
	}

	player, ok := g.sess.PlayerAt(index)
	if !ok {
		return nil
	}
	if !player.CanBeSelected {
		return nil
	}

	if err := g.msg(g.Selection.ReplyOpcode, protocol.Itoa(index)); err != nil {
		return err
	}

	g.Decision = DecisionNone
	g.Selection = SelectionState{}
	g.sess.DeselectPlayers()
	return nil
}

// GiveTurn lets the showman hand the move to any player. Purely local
// until a seat is picked: it enables every seat and opens a chooser
// selection replied with SETCHOOSER.
func (g *Gateway) GiveTurn() {
	for _, p := range g.sess.Players {
		p.CanBeSelected = true
	}
	g.OpenSelection(protocol.OutSetChooser, "GiveTurn")
}

// SendReady toggles the local participant's ready flag.
func (g *Gateway) SendReady(isReady bool) error {
	return g.msg(protocol.OutReady, protocol.Flag(isReady))
}

// SendAvatar announces the local avatar after a roster resync.
func (g *Gateway) SendAvatar(uri string) error {
	if uri == "" {
		return nil
	}
	return g.msg(protocol.OutPicture, uri)
}

// Apellate requests an appeal for (+) or against (-) an answer.
func (g *Gateway) Apellate(forRightAnswer bool) error {
	return g.msg(protocol.OutApellate, protocol.Flag(forRightAnswer))
}

// Pass skips the current question.
func (g *Gateway) Pass() error {
	return g.msg(protocol.OutPass)
}

// Mark reports a question to the package author.
func (g *Gateway) Mark(comment string) error {
	return g.msg(protocol.OutMark, comment)
}

// SendReport submits a game review and closes the review decision.
func (g *Gateway) SendReport(text string) error {
	if g.Decision != DecisionReview {
		return ErrNoDecision
	}
	if err := g.msg(protocol.OutReport, "ACCEPT", text); err != nil {
		return err
	}
	g.Decision = DecisionNone
	return nil
}

// MoveNext asks the server to advance the game (host-side control).
func (g *Gateway) MoveNext() error {
	return g.msg(protocol.OutMove, "1")
}

// MoveToRound jumps to a specific round.
func (g *Gateway) MoveToRound(roundIndex int) error {
	return g.msg(protocol.OutMove, "3", protocol.Itoa(roundIndex))
}

// ToggleQuestion removes or restores a table cell (showman edit mode).
func (g *Gateway) ToggleQuestion(themeIndex, questionIndex int) error {
	return g.msg(protocol.OutToggle, protocol.Itoa(themeIndex), protocol.Itoa(questionIndex))
}

// ChangeScore sets a player's score directly. The protocol counts
// players from 1 here.
func (g *Gateway) ChangeScore(playerIndex, score int) error {
	return g.msg(protocol.OutChange, protocol.Itoa(playerIndex+1), protocol.Itoa(score))
}

// MediaLoaded notifies that the local client finished loading media.
func (g *Gateway) MediaLoaded() error {
	return g.msg(protocol.OutMediaLoaded)
}

// OnMediaCompleted notifies that playback of a content item ended.
func (g *Gateway) OnMediaCompleted() error {
	return g.msg(protocol.OutAtom)
}

// RequestInfo asks for a fresh full-roster resync; the only recovery
// path after a reconnect.
func (g *Gateway) RequestInfo() error {
	return g.msg(protocol.OutInfo)
}

// AddTable appends a player seat (host-side).
func (g *Gateway) AddTable() error {
	return g.msg(protocol.OutConfig, protocol.ConfigAddTable)
}

// DeleteTable removes a player seat (host-side).
func (g *Gateway) DeleteTable(index int) error {
	return g.msg(protocol.OutConfig, protocol.ConfigDeleteTable, protocol.Itoa(index))
}

// FreeTable vacates a seat (host-side).
func (g *Gateway) FreeTable(isShowman bool, index int) error {
	if isShowman {
		return g.msg(protocol.OutConfig, protocol.ConfigFree, "showman", "")
	}
	return g.msg(protocol.OutConfig, protocol.ConfigFree, "player", protocol.Itoa(index))
}

// SetTable places a person on a seat (host-side).
func (g *Gateway) SetTable(isShowman bool, index int, name string) error {
	if isShowman {
		return g.msg(protocol.OutConfig, protocol.ConfigSet, "showman", "", name)
	}
	return g.msg(protocol.OutConfig, protocol.ConfigSet, "player", protocol.Itoa(index), name)
}

// ChangeTableType flips a seat between human and bot (host-side).
func (g *Gateway) ChangeTableType(isShowman bool, index int) error {
	if isShowman {
		return g.msg(protocol.OutConfig, protocol.ConfigChangeType, "showman", "")
	}
	return g.msg(protocol.OutConfig, protocol.ConfigChangeType, "player", protocol.Itoa(index))
}
