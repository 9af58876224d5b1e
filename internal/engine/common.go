package engine

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kvolkov/quizroom/internal/protocol"
	"github.com/kvolkov/quizroom/internal/session"
	"github.com/kvolkov/quizroom/internal/timers"
)

// Delays for scheduled table effects. Each effect re-validates its
// target when it fires.
const (
	questionBlinkDelay = 500 * time.Millisecond
	themeRemoveDelay   = 600 * time.Millisecond
	lostRevertDelay    = 800 * time.Millisecond
)

// common handles events every role processes the same way. Unknown
// opcodes and short argument lists fall through silently: the protocol
// is open-ended and newer servers send more than we know.
func (c *Controller) common(ev protocol.Event) {
	switch ev.Opcode {
	case protocol.InInfo:
		c.onInfo(ev)

	case protocol.InConnected:
		c.onConnected(ev)

	case protocol.InDisconnected:
		c.onDisconnected(ev)

	case protocol.InConfig:
		c.onConfig(ev)

	case protocol.InReady:
		c.onReady(ev)

	case protocol.InStage:
		c.onStage(ev)

	case protocol.InStageInfo:
		c.sess.Stage.Name = ev.Arg(0)
		c.sess.Stage.RoundName = ev.Arg(1)
		c.sess.Stage.RoundIndex = ev.IntOr(2, -1)

	case protocol.InTimer:
		c.onTimer(ev)

	case protocol.InPause:
		c.onPause(ev)

	case protocol.InChoice:
		c.onChoice(ev)

	case protocol.InToggle:
		c.onToggle(ev)

	case protocol.InTable:
		c.onTable(ev)

	case protocol.InRoundThemes:
		c.onRoundThemes(ev)

	case protocol.InRoundsNames:
		c.sess.RoundsNames = append([]string(nil), ev.Args...)

	case protocol.InTheme:
		c.sess.ClearPlayerStates()
		c.sess.ThemeName = ev.Arg(0)
		c.sess.Stage.IsAfterQuestion = false
		c.sess.CanPress = false
		c.tm.Stop(timers.Press)

	case protocol.InQuestion:
		c.sess.ClearPlayerStates()
		c.sess.Stage.IsAfterQuestion = false

	case protocol.InQType:
		c.sess.Stage.IsQuestion = true

	case protocol.InQuestionEnd:
		c.sess.Stage.IsAfterQuestion = true
		c.sess.Stage.IsQuestion = false

	case protocol.InOut:
		c.onThemeOut(ev)

	case protocol.InSums:
		c.onSums(ev)

	case protocol.InPerson:
		c.onPerson(ev)

	case protocol.InPass:
		if p, ok := c.playerArg(ev, 0); ok {
			p.State = session.StatePass
		}

	case protocol.InPersonApellated, protocol.InPersonFinalAnswer:
		if p, ok := c.playerArg(ev, 0); ok {
			p.State = session.StateHasAnswered
		}

	case protocol.InPersonFinalStake:
		if p, ok := c.playerArg(ev, 0); ok {
			p.Stake = session.HiddenStake
		}

	case protocol.InPersonStake:
		c.onPersonStake(ev)

	case protocol.InPlayerAnswer:
		if p, ok := c.playerArg(ev, 0); ok && len(ev.Args) > 1 {
			p.Answer = protocol.UnescapeNewLines(ev.Arg(1))
		}

	case protocol.InPlayerAppellating:
		if i := c.sess.PlayerIndex(ev.Arg(0)); i >= 0 {
			c.sess.Players[i].IsAppellating = true
		}

	case protocol.InPlayerScoreChanged:
		if p, ok := c.playerArg(ev, 0); ok {
			if score, ok := ev.Int(1); ok {
				p.Sum = score
			}
		}

	case protocol.InPlayerState:
		st := session.ParsePlayerState(ev.Arg(0))
		for i := 1; i < len(ev.Args); i++ {
			if p, ok := c.playerArg(ev, i); ok {
				p.State = st
			}
		}

	case protocol.InSetChooser:
		c.onSetChooser(ev)

	case protocol.InTry:
		c.sess.CanPress = true

	case protocol.InEndTry:
		c.onEndTry(ev)

	case protocol.InWrongTry:
		c.onWrongTry(ev)

	case protocol.InStop:
		c.tm.Stop(timers.Round)
		c.tm.Stop(timers.Press)
		c.tm.Stop(timers.Decision)

	case protocol.InShowTable:
		c.sess.CanPress = false
		c.tm.Stop(timers.Press)

	case protocol.InTimeout:
		c.log.Debug("round timeout")

	case protocol.InFinalRound:
		c.onFinalRound(ev)

	case protocol.InFinalThink:
		c.log.Debug("final think started")

	case protocol.InRightAnswer:
		c.sess.Stage.IsAfterQuestion = true

	case protocol.InWinner:
		c.log.Debug("game won")

	case protocol.InReplic:
		c.onReplic(ev)

	case protocol.InHostName:
		c.onHostName(ev)

	case protocol.InReadingSpeed:
		if v, ok := ev.Int(0); ok {
			c.sess.ReadingSpeed = v
		}

	case protocol.InButtonBlockingTime:
		if v, ok := ev.Int(0); ok {
			c.sess.ButtonBlockingTime = v
		}

	case protocol.InSetJoinMode:
		if ev.Arg(0) != "" {
			c.sess.JoinMode = ev.Arg(0)
		}

	case protocol.InBanned:
		c.onBanned(ev)

	case protocol.InBannedList:
		list := make(map[string]string)
		for i := 0; i+1 < len(ev.Args); i += 2 {
			list[ev.Arg(i)] = ev.Arg(i + 1)
		}
		c.sess.Banned = list

	case protocol.InUnbanned:
		delete(c.sess.Banned, ev.Arg(0))
		c.sess.AddChat("", fmt.Sprintf("%s was unbanned", ev.Arg(0)), session.LevelSystem)

	case protocol.InAvatar:
		if person, ok := c.sess.Persons[ev.Arg(0)]; ok && ev.Arg(1) == "image" {
			person.Avatar = ev.Arg(2)
		}

	case protocol.InGameMetadata:
		if len(ev.Args) >= 3 {
			c.sess.Metadata = session.GameMetadata{
				GameName:    ev.Arg(0),
				PackageName: ev.Arg(1),
				ContactURI:  ev.Arg(2),
				VoiceChat:   ev.Arg(3),
			}
		}

	case protocol.InMediaLoaded:
		if i := c.sess.PlayerIndex(ev.Arg(0)); i >= 0 {
			c.sess.Players[i].MediaLoaded = true
		}

	case protocol.InGameClosed:
		c.onGameClosed()

	default:
		c.log.Debug("unhandled event", zap.String("opcode", ev.Opcode))
	}
}

// playerArg resolves the i-th argument as a player index. Late events
// racing a seat deletion miss the bounds check and are dropped.
func (c *Controller) playerArg(ev protocol.Event, i int) (*session.Player, bool) {
	index, ok := ev.Int(i)
	if !ok {
		return nil, false
	}
	return c.sess.PlayerAt(index)
}

// onInfo rebuilds the whole roster from a resync. Persons are
// serialized in groups of five fields; the showman comes first, then
// the seated players, then viewers.
func (c *Controller) onInfo(ev protocol.Event) {
	playersCount, ok := ev.Int(0)
	if !ok || playersCount < 0 {
		return
	}

	const fields = 5
	if len(ev.Args) < 1+fields*(1+playersCount) {
		return
	}

	persons := make(map[string]*session.Person)
	var showman session.Showman
	var players []*session.Player

	groups := (len(ev.Args) - 1) / fields
	base := 1

	for g := 0; g < groups; g++ {
		name := ev.Arg(base)
		isMale := ev.Plus(base + 1)
		isConnected := ev.Plus(base + 2)
		isHuman := ev.Plus(base + 3)
		isReady := ev.Plus(base + 4)
		base += fields

		if isConnected {
			sex := session.SexFemale
			if isMale {
				sex = session.SexMale
			}
			persons[name] = &session.Person{Name: name, Sex: sex, IsHuman: isHuman}
		}

		switch {
		case g == 0:
			showman = session.Showman{Name: name, IsHuman: isHuman, IsReady: isReady}
		case g <= playersCount:
			p := session.NewPlayer()
			p.Name = name
			p.IsHuman = isHuman
			p.IsReady = isReady
			players = append(players, p)
		}
	}

	c.sess.Persons = persons
	c.sess.Showman = showman
	c.sess.Players = players

	c.recomputeRole()

	if c.avatarWanted {
		c.avatarWanted = false
		if err := c.gw.SendAvatar(c.avatar); err != nil {
			c.log.Debug("avatar announce skipped", zap.Error(err))
		}
	}
}

func (c *Controller) onConnected(ev protocol.Event) {
	if len(ev.Args) < 4 {
		return
	}

	role := ev.Arg(0)
	index := ev.IntOr(1, -1)
	name := ev.Arg(2)

	if name == c.sess.Name {
		return
	}

	sex := session.SexFemale
	if ev.Arg(3) == "m" || ev.Arg(3) == "+" {
		sex = session.SexMale
	}

	c.sess.Persons[name] = &session.Person{Name: name, Sex: sex, IsHuman: true}

	switch role {
	case "showman":
		c.sess.Showman = session.Showman{Name: name, IsHuman: true}
	case "player":
		if p, ok := c.sess.PlayerAt(index); ok {
			p.Name = name
			p.IsHuman = true
			p.IsReady = false
		}
	}

	c.sess.AddChat("", fmt.Sprintf("%s joined the game", name), session.LevelSystem)
}

func (c *Controller) onDisconnected(ev protocol.Event) {
	name := ev.Arg(0)
	if name == "" || name == c.sess.Name {
		return
	}

	delete(c.sess.Persons, name)

	if c.sess.Showman.Name == name {
		c.sess.Showman = session.Showman{Name: session.AnyName}
	} else if i := c.sess.PlayerIndex(name); i >= 0 {
		c.sess.Players[i].Name = session.AnyName
		c.sess.Players[i].IsReady = false
	}

	c.sess.AddChat("", fmt.Sprintf("%s left the game", name), session.LevelSystem)
}

func (c *Controller) onReady(ev protocol.Event) {
	name := ev.Arg(0)
	if name == "" {
		return
	}

	ready := len(ev.Args) < 2 || ev.Plus(1)

	if c.sess.Showman.Name == name {
		c.sess.Showman.IsReady = ready
	} else if i := c.sess.PlayerIndex(name); i >= 0 {
		c.sess.Players[i].IsReady = ready
	}
}

// onStage moves the game to a new phase. The game-started flip is
// permanent; transient question and decision state never survives a
// stage change.
func (c *Controller) onStage(ev protocol.Event) {
	stage := ev.Arg(0)

	c.sess.Stage.Name = stage
	c.sess.Stage.RoundName = ev.Arg(1)
	c.sess.Stage.RoundIndex = ev.IntOr(2, -1)

	if stage != session.StageBefore {
		c.sess.Stage.IsGameStarted = true
		c.stopCountdown()
	}

	if stage == session.StageRound || stage == session.StageFinal {
		c.sess.ClearPlayerStates()
		c.sess.TableFilled = false
	}

	if stage == session.StageRound {
		for _, p := range c.sess.Players {
			p.InGame = true
		}
	}

	c.gw.Cancel()
	c.sess.IsSelectable = false
	c.sess.CanPress = false
	c.sess.Hint = ""
	c.sess.Stage.IsQuestion = false
	c.sess.Stage.IsAfterQuestion = false
	c.sess.ClearDeciding()
}

// onTimer routes one timer command. Before an automatic game starts,
// a decision-timer GO aimed at the main timer is the pre-start
// countdown, not a real timer.
func (c *Controller) onTimer(ev protocol.Event) {
	if !c.sess.Stage.IsGameStarted && c.automatic &&
		len(ev.Args) == 4 && ev.Arg(0) == "2" &&
		ev.Arg(1) == protocol.TimerGo && ev.Arg(3) == "-2" {
		c.startCountdown(ev.IntOr(2, 0) / 10)
		return
	}

	if len(ev.Args) < 2 {
		return
	}

	index, ok := ev.Int(0)
	if !ok {
		return
	}

	arg := float64(ev.IntOr(2, 0))

	switch ev.Arg(1) {
	case protocol.TimerGo:
		c.tm.Run(index, arg)
		if index == timers.Decision {
			c.onDecisionTimerTarget(ev)
		}

	case protocol.TimerStop:
		c.tm.Stop(index)
		if index == timers.Decision {
			c.sess.ClearDeciding()
			c.sess.ShowMainTimer = false
		}

	case protocol.TimerPause:
		c.tm.Pause(index, arg, false)

	case protocol.TimerUserPause:
		c.tm.Pause(index, arg, true)

	case protocol.TimerResume:
		c.tm.Resume(index, false)

	case protocol.TimerUserResume:
		c.tm.Resume(index, true)

	case protocol.TimerMaxTime:
		c.tm.SetMaximum(index, arg)
	}
}

// onDecisionTimerTarget marks who the decision timer is running for:
// -1 is the showman, -2 shows the main timer instead, a non-negative
// value is a player seat.
func (c *Controller) onDecisionTimerTarget(ev protocol.Event) {
	target, ok := ev.Int(3)
	if !ok {
		return
	}

	switch {
	case target == -1:
		c.sess.Showman.IsDeciding = true
	case target == -2:
		c.sess.ShowMainTimer = true
	default:
		if p, ok := c.sess.PlayerAt(target); ok {
			p.IsDeciding = true
		}
	}
}

func (c *Controller) onPause(ev protocol.Event) {
	paused := ev.Plus(0)
	c.sess.Stage.IsPaused = paused

	if len(ev.Args) < 4 {
		return
	}

	if paused {
		c.tm.Pause(timers.Round, float64(ev.IntOr(1, 0)), true)
		c.tm.Pause(timers.Press, float64(ev.IntOr(2, 0)), true)
		c.tm.Pause(timers.Decision, float64(ev.IntOr(3, 0)), true)
	} else {
		c.tm.Resume(timers.Round, true)
		c.tm.Resume(timers.Press, true)
		c.tm.Resume(timers.Decision, true)
	}
}

// onChoice is the server announcing the picked question. The cell
// blinks briefly, then is marked used; the delayed mark re-checks the
// cell because a table rebuild may land in between.
func (c *Controller) onChoice(ev protocol.Event) {
	themeIndex, ok1 := ev.Int(0)
	questionIndex, ok2 := ev.Int(1)
	if !ok1 || !ok2 {
		return
	}

	c.sess.ClearPlayerStates()
	c.sess.Stage.IsAfterQuestion = false

	theme, ok := c.sess.ThemeAt(themeIndex)
	if !ok {
		return
	}

	price, ok := theme.Question(questionIndex)
	if !ok || price == session.QuestionUsed {
		return
	}

	c.sess.CurrentPrice = price

	c.schedule(fmt.Sprintf("blink:%d:%d", themeIndex, questionIndex), questionBlinkDelay, func(c *Controller) {
		c.sess.SetQuestionPrice(themeIndex, questionIndex, session.QuestionUsed)
	})
}

func (c *Controller) onToggle(ev protocol.Event) {
	themeIndex, ok1 := ev.Int(0)
	questionIndex, ok2 := ev.Int(1)
	price, ok3 := ev.Int(2)
	if !ok1 || !ok2 || !ok3 {
		return
	}

	theme, ok := c.sess.ThemeAt(themeIndex)
	if !ok {
		return
	}

	if existing, ok := theme.Question(questionIndex); ok && existing != 0 {
		c.sess.SetQuestionPrice(themeIndex, questionIndex, price)
	}
}

// onTable fills question prices into the announced themes. A filled
// table ignores further fills until the next round resets it; an empty
// argument separates themes, and shorter themes are padded with used
// cells so every column has equal height.
func (c *Controller) onTable(ev protocol.Event) {
	if c.sess.TableFilled || len(c.sess.Themes) == 0 {
		return
	}

	index := 0
	maxQuestions := 0

	for _, theme := range c.sess.Themes {
		if index >= len(ev.Args) {
			break
		}

		var questions []int
		for index < len(ev.Args) && ev.Arg(index) != "" {
			questions = append(questions, ev.IntOr(index, session.QuestionUsed))
			index++
		}
		index++

		theme.Questions = questions
		if len(questions) > maxQuestions {
			maxQuestions = len(questions)
		}
	}

	for _, theme := range c.sess.Themes {
		for len(theme.Questions) < maxQuestions {
			theme.Questions = append(theme.Questions, session.QuestionUsed)
		}
	}

	c.sess.TableFilled = true
}

func (c *Controller) onRoundThemes(ev protocol.Event) {
	if len(ev.Args) < 2 {
		return
	}

	themes := make([]*session.ThemeInfo, 0, len(ev.Args)-1)
	for i := 1; i < len(ev.Args); i++ {
		themes = append(themes, &session.ThemeInfo{Name: ev.Arg(i)})
	}

	c.sess.Themes = themes
	c.sess.TableFilled = false
}

// onThemeOut removes an eliminated final-round theme after a short
// blink. The removal re-resolves the index: a concurrent rebuild may
// have shifted or dropped the theme already.
func (c *Controller) onThemeOut(ev protocol.Event) {
	themeIndex, ok := ev.Int(0)
	if !ok {
		return
	}

	if _, ok := c.sess.ThemeAt(themeIndex); !ok {
		return
	}

	c.schedule(fmt.Sprintf("out:%d", themeIndex), themeRemoveDelay, func(c *Controller) {
		c.sess.RemoveTheme(themeIndex)
	})
}

func (c *Controller) onSums(ev protocol.Event) {
	for i := 0; i < len(ev.Args) && i < len(c.sess.Players); i++ {
		if sum, ok := ev.Int(i); ok {
			c.sess.Players[i].Sum = sum
		}
	}
}

func (c *Controller) onPerson(ev protocol.Event) {
	isRight := ev.Plus(0)

	p, ok := c.playerArg(ev, 1)
	if !ok {
		return
	}

	if isRight {
		p.State = session.StateRight
	} else {
		p.State = session.StateWrong
	}
}

// onPersonStake projects the announced stake kind onto a concrete
// value: the nominal price, a literal sum, zero for a pass, or the
// player's whole score for all-in.
func (c *Controller) onPersonStake(ev protocol.Event) {
	p, ok := c.playerArg(ev, 0)
	if !ok {
		return
	}

	kind, ok := ev.Int(1)
	if !ok {
		return
	}

	switch kind {
	case 0:
		p.Stake = c.sess.CurrentPrice
	case 1:
		p.Stake = ev.IntOr(2, 0)
	case 2:
		p.Stake = 0
	case 3:
		p.Stake = p.Sum
	}
}

func (c *Controller) onSetChooser(ev protocol.Event) {
	index, ok := ev.Int(0)
	if !ok {
		return
	}

	c.sess.SetChooser(index)

	if ev.Plus(1) {
		if p, ok := c.sess.PlayerAt(index); ok {
			p.State = session.StatePress
		}
	}
}

// onEndTry closes the answer race: a seat index names the winner, the
// 'A' literal means nobody pressed in time.
func (c *Controller) onEndTry(ev protocol.Event) {
	if len(ev.Args) < 1 {
		return
	}

	if p, ok := c.playerArg(ev, 0); ok {
		c.sess.CanPress = false
		p.State = session.StatePress
		return
	}

	if ev.Arg(0) == "A" {
		c.sess.CanPress = false
		c.tm.Stop(timers.Press)
	}
}

// onWrongTry flashes a losing press. The revert only fires if the seat
// still shows Lost: a real outcome arriving within the delay wins.
func (c *Controller) onWrongTry(ev protocol.Event) {
	index, ok := ev.Int(0)
	if !ok {
		return
	}

	p, ok := c.sess.PlayerAt(index)
	if !ok || p.State != session.StateNone {
		return
	}

	p.State = session.StateLost

	c.schedule(fmt.Sprintf("lost:%d", index), lostRevertDelay, func(c *Controller) {
		if p, ok := c.sess.PlayerAt(index); ok && p.State == session.StateLost {
			p.State = session.StateNone
		}
	})
}

func (c *Controller) onFinalRound(ev protocol.Event) {
	for i := 0; i < len(ev.Args) && i < len(c.sess.Players); i++ {
		c.sess.Players[i].InGame = ev.Plus(i)
	}
	c.sess.Stage.IsAfterQuestion = false
}

// onReplic routes a status line: 's' to the showman, 'p<i>' to a
// player seat, 'l' to the chat log.
func (c *Controller) onReplic(ev protocol.Event) {
	if len(ev.Args) < 2 {
		return
	}

	code := ev.Arg(0)
	text := strings.Join(ev.Args[1:], " ")

	switch {
	case code == "s":
		c.sess.ShowmanReplic(text)

	case len(code) > 1 && code[0] == 'p':
		if index, err := strconv.Atoi(code[1:]); err == nil {
			c.sess.PlayerReplic(index, text)
		}

	case code == "l":
		c.sess.AddChat("", text, session.LevelSystem)
	}
}

func (c *Controller) onHostName(ev protocol.Event) {
	if len(ev.Args) < 1 {
		return
	}

	c.sess.HostName = ev.Arg(0)

	if len(ev.Args) > 1 {
		source := ev.Arg(1)
		if source == "" {
			source = "the game"
		}
		c.sess.AddChat("", fmt.Sprintf("%s made %s the host", source, ev.Arg(0)), session.LevelSystem)
	}
}

func (c *Controller) onBanned(ev protocol.Event) {
	if len(ev.Args) < 2 {
		return
	}

	c.sess.Banned[ev.Arg(0)] = ev.Arg(1)
	c.sess.AddChat("", fmt.Sprintf("%s was banned", ev.Arg(1)), session.LevelSystem)
}

// onGameClosed is terminal: timers stop, decisions close, scheduled
// effects die, and every later event is ignored.
func (c *Controller) onGameClosed() {
	c.closed = true

	c.tm.Stop(timers.Round)
	c.tm.Stop(timers.Press)
	c.tm.Stop(timers.Decision)

	c.gw.Cancel()
	c.gw.SetConnected(false)
	c.shutdown()

	c.sess.AddChat("", "the game was closed", session.LevelSystem)
}

// startCountdown narrates the automatic-game pre-start countdown with
// a self-renewing one-second effect: the remaining time is re-announced
// on the showman status line every second.
func (c *Controller) startCountdown(seconds int) {
	if seconds <= 0 {
		return
	}

	c.countdown = seconds
	c.sess.AddChat("", countdownReplic(seconds), session.LevelSystem)
	c.sess.ShowmanReplic(countdownReplic(seconds))
	c.scheduleCountdownTick()
}

func countdownReplic(seconds int) string {
	return fmt.Sprintf("the game starts in %d seconds", seconds)
}

func (c *Controller) scheduleCountdownTick() {
	c.schedule("countdown", time.Second, func(c *Controller) {
		c.countdown--
		if c.countdown > 0 {
			c.sess.ShowmanReplic(countdownReplic(c.countdown))
			c.scheduleCountdownTick()
		} else {
			c.countdown = -1
			c.sess.ShowmanReplic("")
		}
	})
}

func (c *Controller) stopCountdown() {
	if c.countdown < 0 {
		return
	}
	c.cancelEffect("countdown")
	c.countdown = -1
	c.sess.ShowmanReplic("")
}
