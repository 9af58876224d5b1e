package engine

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kvolkov/quizroom/internal/gateway"
	"github.com/kvolkov/quizroom/internal/protocol"
	"github.com/kvolkov/quizroom/internal/session"
	"github.com/kvolkov/quizroom/internal/timers"
	"github.com/kvolkov/quizroom/internal/transport"
)

// fakeSender records sends under a lock: the loop tests read it from
// the test goroutine while the controller loop keeps writing.
type fakeSender struct {
	mu   sync.Mutex
	sent [][]string
}

func (f *fakeSender) Send(opcode string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, append([]string{opcode}, args...))
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeSender) get(i int) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[i]
}

func (f *fakeSender) last() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return nil
	}
	return f.sent[len(f.sent)-1]
}

// newTestController builds a controller whose session seats bob,
// alice (the local user) and carol, with host as showman.
func newTestController(t *testing.T, role session.Role, opts ...Option) (*Controller, *fakeSender) {
	t.Helper()

	sess := session.New("alice")
	sess.Role = role
	sess.Showman = session.Showman{Name: "host", IsHuman: true}
	sess.Persons["host"] = &session.Person{Name: "host", IsHuman: true}

	for _, name := range []string{"bob", "alice", "carol"} {
		p := session.NewPlayer()
		p.Name = name
		sess.Players = append(sess.Players, p)
		sess.Persons[name] = &session.Person{Name: name, IsHuman: true}
	}

	sender := &fakeSender{}
	gw := gateway.New(zap.NewNop(), sender, sess)
	gw.SetConnected(true)

	c := New(context.Background(), zap.NewNop(), sess, timers.NewSet(), gw, opts...)
	t.Cleanup(c.Close)
	return c, sender
}

// sys feeds one system event straight through the handlers.
func sys(c *Controller, parts ...string) {
	c.handle(transport.Message{Sender: "@", Text: strings.Join(parts, "\n"), IsSystem: true})
}

func TestChatMessages(t *testing.T) {
	c, _ := newTestController(t, session.RoleViewer)

	c.handle(transport.Message{Sender: "bob", Text: "hi there"})
	c.handle(transport.Message{Sender: "alice", Text: "own echo"})

	require.Len(t, c.sess.Chat, 1, "own messages are not echoed back")
	require.Equal(t, "bob", c.sess.Chat[0].Sender)
	require.Equal(t, "hi there", c.sess.Chat[0].Text)
}

func TestUnknownAndMalformedEventsAreIgnored(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, "SOME_FUTURE_OPCODE", "x", "y")
	sys(c, protocol.InPerson)            // no args
	sys(c, protocol.InSums, "abc")       // malformed int
	sys(c, protocol.InTimer, "0")        // short timer command
	sys(c, protocol.InChoice, "9", "9")  // out-of-range table
	sys(c, protocol.InPass, "17")        // out-of-range seat

	require.Equal(t, 0, c.sess.Players[0].Sum)
	require.Equal(t, session.StateNone, c.sess.Players[0].State)
}

func TestRosterResync(t *testing.T) {
	c, _ := newTestController(t, session.RoleViewer)

	sys(c, protocol.InInfo, "2",
		"host", "+", "+", "+", "-", // showman
		"bob", "+", "+", "+", "+", // player 0
		"alice", "-", "+", "+", "-", // player 1
		"dave", "+", "+", "+", "-", // viewer
	)

	require.Equal(t, "host", c.sess.Showman.Name)
	require.Len(t, c.sess.Players, 2)
	require.Equal(t, "bob", c.sess.Players[0].Name)
	require.True(t, c.sess.Players[0].IsReady)
	require.Equal(t, "alice", c.sess.Players[1].Name)
	require.Len(t, c.sess.Persons, 4)
	require.Equal(t, session.RolePlayer, c.sess.Role, "local user sits on seat 1")
}

func TestRosterResyncSkipsDisconnectedPersons(t *testing.T) {
	c, _ := newTestController(t, session.RoleViewer)

	sys(c, protocol.InInfo, "1",
		"host", "+", "+", "+", "-",
		" ", "+", "-", "+", "-", // vacant seat, not connected
	)

	require.NotContains(t, c.sess.Persons, " ")
	require.Len(t, c.sess.Players, 1)
	require.Equal(t, session.RoleViewer, c.sess.Role)
}

func TestRosterResyncAnnouncesAvatar(t *testing.T) {
	c, sender := newTestController(t, session.RoleViewer, WithAvatar("http://img/me.png"))

	sys(c, protocol.InInfo, "0", "host", "+", "+", "+", "-")
	sys(c, protocol.InInfo, "0", "host", "+", "+", "+", "-")

	require.Equal(t, 1, sender.count(), "avatar announce is one-shot")
	require.Equal(t, []string{protocol.OutPicture, "http://img/me.png"}, sender.get(0))
}

// rosterState flattens the registry and seats into comparable values.
func rosterState(s *session.Session) (map[string]session.Person, []session.Player, session.Showman) {
	persons := make(map[string]session.Person, len(s.Persons))
	for name, p := range s.Persons {
		persons[name] = *p
	}
	players := make([]session.Player, len(s.Players))
	for i, p := range s.Players {
		players[i] = *p
	}
	return persons, players, s.Showman
}

func TestRosterResyncIsIdempotent(t *testing.T) {
	c, _ := newTestController(t, session.RoleViewer)

	roster := []string{protocol.InInfo, "2",
		"host", "+", "+", "+", "-",
		"bob", "+", "+", "+", "+",
		"alice", "-", "+", "+", "-",
		"dave", "+", "+", "+", "-",
	}

	sys(c, roster...)
	persons, players, showman := rosterState(c.sess)
	role := c.sess.Role

	sys(c, roster...)
	persons2, players2, showman2 := rosterState(c.sess)

	require.Equal(t, persons, persons2)
	require.Equal(t, players, players2)
	require.Equal(t, showman, showman2)
	require.Equal(t, role, c.sess.Role)
}

func TestConnectedAndDisconnected(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InConfig, protocol.ConfigFree, "player", "0")
	sys(c, protocol.InConnected, "player", "0", "erin", "m")

	require.Equal(t, "erin", c.sess.Players[0].Name)
	require.Contains(t, c.sess.Persons, "erin")

	sys(c, protocol.InDisconnected, "erin")
	require.Equal(t, session.AnyName, c.sess.Players[0].Name)
	require.NotContains(t, c.sess.Persons, "erin")

	// self-echo never rewrites local state
	sys(c, protocol.InConnected, "player", "2", "alice", "m")
	require.Equal(t, "carol", c.sess.Players[2].Name)
}

func TestConfigSeatManagement(t *testing.T) {
	t.Run("ADDTABLE appends vacant seat", func(t *testing.T) {
		c, _ := newTestController(t, session.RolePlayer)

		sys(c, protocol.InConfig, protocol.ConfigAddTable)
		require.Len(t, c.sess.Players, 4)
		require.Equal(t, session.AnyName, c.sess.Players[3].Name)
	})

	t.Run("FREE vacates and demotes local", func(t *testing.T) {
		c, _ := newTestController(t, session.RolePlayer)

		sys(c, protocol.InConfig, protocol.ConfigFree, "player", "1")
		require.Equal(t, session.AnyName, c.sess.Players[1].Name)
		require.Equal(t, session.RoleViewer, c.sess.Role)
	})

	t.Run("FREE showman", func(t *testing.T) {
		c, _ := newTestController(t, session.RoleShowman)
		c.sess.Showman.Name = "alice"

		sys(c, protocol.InConfig, protocol.ConfigFree, "showman", "")
		require.Equal(t, session.AnyName, c.sess.Showman.Name)
		require.Equal(t, session.RoleViewer, c.sess.Role)
	})

	t.Run("DELETETABLE removes seat and demotes local", func(t *testing.T) {
		c, _ := newTestController(t, session.RolePlayer)

		sys(c, protocol.InConfig, protocol.ConfigDeleteTable, "1")
		require.Len(t, c.sess.Players, 2)
		require.Equal(t, session.RoleViewer, c.sess.Role)
		require.Equal(t, "carol", c.sess.Players[1].Name)
	})

	t.Run("DELETETABLE drops bot person", func(t *testing.T) {
		c, _ := newTestController(t, session.RolePlayer)
		c.sess.Players[0].Name = "bot1"
		c.sess.Persons["bot1"] = &session.Person{Name: "bot1", IsHuman: false}

		sys(c, protocol.InConfig, protocol.ConfigDeleteTable, "0")
		require.NotContains(t, c.sess.Persons, "bot1")
	})

	t.Run("CHANGETYPE human to bot", func(t *testing.T) {
		c, _ := newTestController(t, session.RolePlayer)

		sys(c, protocol.InConfig, protocol.ConfigChangeType, "player", "0", "-", "bot7", "+")
		require.Equal(t, "bot7", c.sess.Players[0].Name)
		require.False(t, c.sess.Players[0].IsHuman)
		require.Contains(t, c.sess.Persons, "bot7")
		require.False(t, c.sess.Persons["bot7"].IsHuman)
	})

	t.Run("CHANGETYPE bot to human waits for join", func(t *testing.T) {
		c, _ := newTestController(t, session.RolePlayer)
		c.sess.Players[0].Name = "bot1"
		c.sess.Players[0].IsHuman = false
		c.sess.Persons["bot1"] = &session.Person{Name: "bot1", IsHuman: false}

		sys(c, protocol.InConfig, protocol.ConfigChangeType, "player", "0", "+", session.AnyName, "+")
		require.True(t, c.sess.Players[0].IsHuman)
		require.NotContains(t, c.sess.Persons, "bot1")
		require.NotContains(t, c.sess.Persons, session.AnyName,
			"the human occupant arrives with a later CONNECTED")
	})

	t.Run("CHANGETYPE matching humanity is a no-op", func(t *testing.T) {
		c, _ := newTestController(t, session.RolePlayer)

		sys(c, protocol.InConfig, protocol.ConfigChangeType, "player", "0", "+", "ghost", "+")
		require.Equal(t, "bob", c.sess.Players[0].Name)
	})
}

func TestConfigSetOutcomes(t *testing.T) {
	t.Run("bot target is replaced in place", func(t *testing.T) {
		c, _ := newTestController(t, session.RolePlayer)
		c.sess.Players[0].Name = "bot1"
		c.sess.Players[0].IsHuman = false
		c.sess.Persons["bot1"] = &session.Person{Name: "bot1", IsHuman: false}

		sys(c, protocol.InConfig, protocol.ConfigSet, "player", "0", "bot2", "+")

		require.Equal(t, "bot2", c.sess.Players[0].Name)
		require.NotContains(t, c.sess.Persons, "bot1")
		require.Contains(t, c.sess.Persons, "bot2")
	})

	t.Run("replacer is showman swaps seats", func(t *testing.T) {
		c, _ := newTestController(t, session.RolePlayer)

		sys(c, protocol.InConfig, protocol.ConfigSet, "player", "1", "host", "+")

		require.Equal(t, "host", c.sess.Players[1].Name)
		require.Equal(t, "alice", c.sess.Showman.Name)
		require.Equal(t, session.RoleShowman, c.sess.Role, "displaced occupant becomes showman")
	})

	t.Run("replacer on another seat swaps players", func(t *testing.T) {
		c, _ := newTestController(t, session.RolePlayer)
		c.sess.Players[0].Sum = 100
		c.sess.Players[2].Sum = 300

		sys(c, protocol.InConfig, protocol.ConfigSet, "player", "0", "carol", "-")

		require.Equal(t, "carol", c.sess.Players[0].Name)
		require.Equal(t, "bob", c.sess.Players[2].Name)
		require.Equal(t, 300, c.sess.Players[0].Sum, "scores travel with the player")
	})

	t.Run("seated player takes showman seat", func(t *testing.T) {
		c, _ := newTestController(t, session.RolePlayer)

		sys(c, protocol.InConfig, protocol.ConfigSet, "showman", "", "alice", "-")

		require.Equal(t, "alice", c.sess.Showman.Name)
		require.Equal(t, "host", c.sess.Players[1].Name)
		require.Equal(t, session.RoleShowman, c.sess.Role)
	})

	t.Run("plain set demotes displaced local", func(t *testing.T) {
		c, _ := newTestController(t, session.RolePlayer)

		sys(c, protocol.InConfig, protocol.ConfigSet, "player", "1", "frank", "+")

		require.Equal(t, "frank", c.sess.Players[1].Name)
		require.Equal(t, session.RoleViewer, c.sess.Role)
	})

	t.Run("plain set promotes named local", func(t *testing.T) {
		c, _ := newTestController(t, session.RoleViewer)
		c.sess.Players[1].Name = "someone"

		sys(c, protocol.InConfig, protocol.ConfigSet, "player", "1", "alice", "-")

		require.Equal(t, "alice", c.sess.Players[1].Name)
		require.Equal(t, session.RolePlayer, c.sess.Role)
	})
}

func TestStageTransition(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)
	c.sess.Players[0].State = session.StateRight
	c.sess.CanPress = true
	c.sess.IsSelectable = true
	c.sess.TableFilled = true
	c.gw.OpenChoose()

	sys(c, protocol.InStage, session.StageRound, "Round 1", "0")

	require.Equal(t, session.StageRound, c.sess.Stage.Name)
	require.Equal(t, "Round 1", c.sess.Stage.RoundName)
	require.True(t, c.sess.Stage.IsGameStarted)
	require.Equal(t, session.StateNone, c.sess.Players[0].State)
	require.False(t, c.sess.CanPress)
	require.False(t, c.sess.IsSelectable)
	require.False(t, c.sess.TableFilled, "fill guard resets on a new round")
	require.Equal(t, gateway.DecisionNone, c.gw.Decision)
	require.True(t, c.sess.Players[0].InGame)

	// the started flip is permanent
	sys(c, protocol.InStage, session.StageAfter, "", "-1")
	require.True(t, c.sess.Stage.IsGameStarted)
}

func TestTimerCommands(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InTimer, "0", protocol.TimerGo, "300")
	require.Equal(t, timers.Running, c.tm.Get(timers.Round).State)
	require.Equal(t, float64(300), c.tm.Get(timers.Round).Maximum)

	sys(c, protocol.InTimer, "0", protocol.TimerPause, "120")
	got := c.tm.Get(timers.Round)
	require.Equal(t, timers.Paused, got.State)
	require.Equal(t, float64(120), got.Value)
	require.True(t, got.IsPausedBySystem)

	// a user resume cannot lift a system pause
	sys(c, protocol.InTimer, "0", protocol.TimerUserResume)
	require.Equal(t, timers.Paused, c.tm.Get(timers.Round).State)

	sys(c, protocol.InTimer, "0", protocol.TimerResume)
	require.Equal(t, timers.Running, c.tm.Get(timers.Round).State)

	sys(c, protocol.InTimer, "0", protocol.TimerMaxTime, "60")
	got = c.tm.Get(timers.Round)
	require.Equal(t, float64(60), got.Maximum)
	require.LessOrEqual(t, got.Value, got.Maximum)

	sys(c, protocol.InTimer, "0", protocol.TimerStop)
	require.Equal(t, timers.Stopped, c.tm.Get(timers.Round).State)
}

func TestDecisionTimerTargets(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)
	c.sess.Stage.IsGameStarted = true

	sys(c, protocol.InTimer, "2", protocol.TimerGo, "100", "-1")
	require.True(t, c.sess.Showman.IsDeciding)

	sys(c, protocol.InTimer, "2", protocol.TimerStop)
	require.False(t, c.sess.Showman.IsDeciding)

	sys(c, protocol.InTimer, "2", protocol.TimerGo, "100", "-2")
	require.True(t, c.sess.ShowMainTimer)

	sys(c, protocol.InTimer, "2", protocol.TimerGo, "100", "1")
	require.True(t, c.sess.Players[1].IsDeciding)

	sys(c, protocol.InTimer, "2", protocol.TimerGo, "100", "9")
	// out-of-range target: no panic, no flag

	sys(c, protocol.InTimer, "2", protocol.TimerStop)
	require.False(t, c.sess.Players[1].IsDeciding)
	require.False(t, c.sess.ShowMainTimer)
}

func TestAutomaticGameCountdown(t *testing.T) {
	c, _ := newTestController(t, session.RoleViewer, WithAutomaticGame())

	sys(c, protocol.InTimer, "2", protocol.TimerGo, "300", "-2")

	require.Equal(t, 30, c.countdown)
	require.Equal(t, timers.Stopped, c.tm.Get(timers.Decision).State,
		"the countdown is not a real timer")
	require.NotEmpty(t, c.sess.Chat)
	require.Equal(t, "the game starts in 30 seconds", c.sess.Showman.Replic)

	// once the game starts the same event is a plain decision timer
	sys(c, protocol.InStage, session.StageRound, "Round 1", "0")
	require.Equal(t, -1, c.countdown)
	require.Empty(t, c.sess.Showman.Replic)

	sys(c, protocol.InTimer, "2", protocol.TimerGo, "300", "-2")
	require.Equal(t, timers.Running, c.tm.Get(timers.Decision).State)
}

func TestGamePauseAffectsAllTimers(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)
	sys(c, protocol.InTimer, "0", protocol.TimerGo, "300")
	sys(c, protocol.InTimer, "1", protocol.TimerGo, "100")

	sys(c, protocol.InPause, "+", "50", "20", "0")

	require.True(t, c.sess.Stage.IsPaused)
	require.Equal(t, timers.Paused, c.tm.Get(timers.Round).State)
	require.Equal(t, float64(50), c.tm.Get(timers.Round).Value)
	require.True(t, c.tm.Get(timers.Round).IsPausedByUser)

	sys(c, protocol.InPause, "-", "0", "0", "0")
	require.False(t, c.sess.Stage.IsPaused)
	require.Equal(t, timers.Running, c.tm.Get(timers.Round).State)
}

func fillTable(c *Controller) {
	sys(c, protocol.InRoundThemes, "None", "History", "Science")
	sys(c, protocol.InTable, "100", "200", "300", "", "100", "200")
}

func TestTableFillAndGuard(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	fillTable(c)

	require.Len(t, c.sess.Themes, 2)
	require.Equal(t, []int{100, 200, 300}, c.sess.Themes[0].Questions)
	require.Equal(t, []int{100, 200, session.QuestionUsed}, c.sess.Themes[1].Questions,
		"short themes are padded")
	require.True(t, c.sess.TableFilled)

	// a second fill is ignored until the themes change
	sys(c, protocol.InTable, "1", "2", "", "3", "4")
	require.Equal(t, []int{100, 200, 300}, c.sess.Themes[0].Questions)

	sys(c, protocol.InRoundThemes, "None", "Art")
	require.False(t, c.sess.TableFilled)
	sys(c, protocol.InTable, "500", "1000")
	require.Equal(t, []int{500, 1000}, c.sess.Themes[0].Questions)
}

func TestChoiceSetsCurrentPrice(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)
	fillTable(c)
	c.sess.Players[0].State = session.StateWrong

	sys(c, protocol.InChoice, "0", "1")

	require.Equal(t, 200, c.sess.CurrentPrice)
	require.Equal(t, session.StateNone, c.sess.Players[0].State)
}

func TestToggleRestoresCell(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)
	fillTable(c)

	sys(c, protocol.InToggle, "0", "1", "-1")
	require.Equal(t, session.QuestionUsed, mustCell(t, c, 0, 1))

	sys(c, protocol.InToggle, "0", "1", "200")
	require.Equal(t, 200, mustCell(t, c, 0, 1))
}

func mustCell(t *testing.T, c *Controller, theme, question int) int {
	t.Helper()
	th, ok := c.sess.ThemeAt(theme)
	require.True(t, ok)
	price, ok := th.Question(question)
	require.True(t, ok)
	return price
}

func TestPressRace(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InTry)
	require.True(t, c.sess.CanPress)

	sys(c, protocol.InEndTry, "0")
	require.False(t, c.sess.CanPress)
	require.Equal(t, session.StatePress, c.sess.Players[0].State)

	sys(c, protocol.InTry)
	sys(c, protocol.InTimer, "1", protocol.TimerGo, "50")
	sys(c, protocol.InEndTry, "A")
	require.False(t, c.sess.CanPress)
	require.Equal(t, timers.Stopped, c.tm.Get(timers.Press).State)
}

func TestWrongTryOnlyMarksIdleSeat(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InWrongTry, "0")
	require.Equal(t, session.StateLost, c.sess.Players[0].State)

	c.sess.Players[1].State = session.StatePress
	sys(c, protocol.InWrongTry, "1")
	require.Equal(t, session.StatePress, c.sess.Players[1].State,
		"a seat with a real outcome is left alone")
}

func TestAnswerOutcomes(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InPerson, "+", "0")
	require.Equal(t, session.StateRight, c.sess.Players[0].State)

	sys(c, protocol.InPerson, "-", "1")
	require.Equal(t, session.StateWrong, c.sess.Players[1].State)

	sys(c, protocol.InPass, "2")
	require.Equal(t, session.StatePass, c.sess.Players[2].State)

	sys(c, protocol.InPersonApellated, "0")
	require.Equal(t, session.StateHasAnswered, c.sess.Players[0].State)
}

func TestScores(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InSums, "100", "-50", "300")
	require.Equal(t, 100, c.sess.Players[0].Sum)
	require.Equal(t, -50, c.sess.Players[1].Sum)
	require.Equal(t, 300, c.sess.Players[2].Sum)

	sys(c, protocol.InSums, "1", "2", "3", "4", "5")
	require.Equal(t, 3, c.sess.Players[2].Sum, "extra values ignored")

	sys(c, protocol.InPlayerScoreChanged, "1", "700")
	require.Equal(t, 700, c.sess.Players[1].Sum)
}

func TestPersonStakeProjection(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want int
	}{
		{"nominal maps to current price", []string{"0", "0"}, 250},
		{"sum is a literal", []string{"0", "1", "420"}, 420},
		{"pass is zero", []string{"0", "2"}, 0},
		{"all-in is the whole score", []string{"0", "3"}, 900},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestController(t, session.RolePlayer)
			c.sess.CurrentPrice = 250
			c.sess.Players[0].Sum = 900

			sys(c, append([]string{protocol.InPersonStake}, tc.args...)...)
			require.Equal(t, tc.want, c.sess.Players[0].Stake)
		})
	}
}

func TestHiddenFinalStake(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InPersonFinalStake, "1")
	require.Equal(t, session.HiddenStake, c.sess.Players[1].Stake)
}

func TestSetChooser(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InSetChooser, "2", "+")
	require.True(t, c.sess.Players[2].IsChooser)
	require.False(t, c.sess.Players[0].IsChooser)
	require.Equal(t, session.StatePress, c.sess.Players[2].State)
}

func TestReplicRouting(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InReplic, "s", "think", "carefully")
	require.Equal(t, "think carefully", c.sess.Showman.Replic)

	sys(c, protocol.InReplic, "p1", "my", "answer")
	require.Equal(t, "my answer", c.sess.Players[1].Replic)
	require.Empty(t, c.sess.Showman.Replic)

	sys(c, protocol.InReplic, "l", "system", "notice")
	require.NotEmpty(t, c.sess.Chat)
	require.Equal(t, session.LevelSystem, c.sess.Chat[len(c.sess.Chat)-1].Level)
}

func TestPlayerDecisionOpeners(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InAnswer)
	require.Equal(t, gateway.DecisionAnswer, c.gw.Decision)

	sys(c, protocol.InOralAnswer)
	require.Equal(t, gateway.DecisionOralAnswer, c.gw.Decision)

	sys(c, protocol.InChoose)
	require.Equal(t, gateway.DecisionChoose, c.gw.Decision)
	require.True(t, c.sess.IsSelectable)

	sys(c, protocol.InCancel)
	require.Equal(t, gateway.DecisionNone, c.gw.Decision)
	require.False(t, c.sess.IsSelectable)
}

func TestViewerGetsNoDecisions(t *testing.T) {
	c, _ := newTestController(t, session.RoleViewer)

	sys(c, protocol.InAnswer)
	sys(c, protocol.InChoose)
	sys(c, protocol.InAskValidate, "0", "earth")

	require.Equal(t, gateway.DecisionNone, c.gw.Decision)
}

func TestAskStakeClampsBounds(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InAskStake, "Stake,Pass,AllIn", "0", "-5", "100", "Stake")

	require.Equal(t, gateway.DecisionStake, c.gw.Decision)
	require.Equal(t, 1, c.gw.Stake.Minimum)
	require.Equal(t, 1, c.gw.Stake.Maximum)
	require.Equal(t, protocol.OutSetStake, c.gw.Stake.ReplyOpcode)
	require.True(t, c.gw.Stake.Modes.Has(protocol.StakeModePass))
}

func TestOldStakeUsesOwnScoreAsMaximum(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)
	c.sess.Players[1].Sum = 800 // alice

	sys(c, protocol.InStake, "Stake,AllIn", "100", "100")

	require.Equal(t, gateway.DecisionStake, c.gw.Decision)
	require.Equal(t, 800, c.gw.Stake.Maximum)
	require.Equal(t, protocol.OutStake, c.gw.Stake.ReplyOpcode)
}

func TestFinalStake(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)
	c.sess.Players[1].Sum = 600

	sys(c, protocol.InFinalStake)

	require.Equal(t, gateway.DecisionStake, c.gw.Decision)
	require.Equal(t, 1, c.gw.Stake.Minimum)
	require.Equal(t, 600, c.gw.Stake.Maximum)
	require.Equal(t, protocol.StakeModeStake, c.gw.Stake.Modes)
	require.Equal(t, protocol.OutFinalStake, c.gw.Stake.ReplyOpcode)
}

func TestSelectionRequest(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InAskSelectPlayer, "Chooser", "+", "-", "+")

	require.Equal(t, gateway.DecisionSelectPlayer, c.gw.Decision)
	require.True(t, c.sess.Players[0].CanBeSelected)
	require.False(t, c.sess.Players[1].CanBeSelected)
	require.True(t, c.sess.Players[2].CanBeSelected)
}

func TestShowmanSelectsFirstPlayer(t *testing.T) {
	c, _ := newTestController(t, session.RoleShowman)

	sys(c, protocol.InFirst, "+", "+", "-")

	require.Equal(t, gateway.DecisionSelectChooser, c.gw.Decision)
	require.True(t, c.sess.Players[0].CanBeSelected)
	require.False(t, c.sess.Players[2].CanBeSelected)
	require.NotEmpty(t, c.sess.Showman.Replic)
}

func TestShowmanValidationQueue(t *testing.T) {
	c, sender := newTestController(t, session.RoleShowman)

	sys(c, protocol.InAskValidate, "0", "earth")
	sys(c, protocol.InAskValidate, "2", "mars")

	require.Equal(t, gateway.DecisionValidation, c.gw.Decision)
	require.Len(t, c.gw.Validation.Queue, 2)
	require.Equal(t, "bob", c.gw.Validation.Queue[0].PlayerName)
	require.Equal(t, "earth", c.sess.Players[0].Answer)

	require.NoError(t, c.gw.Approve(1))
	require.Equal(t, []string{protocol.OutValidate, "earth", "+"}, sender.last())
	require.Equal(t, gateway.DecisionValidation, c.gw.Decision)

	require.NoError(t, c.gw.Reject(1))
	require.Equal(t, gateway.DecisionNone, c.gw.Decision)
}

func TestLegacyValidationParsesAnswerLists(t *testing.T) {
	c, _ := newTestController(t, session.RoleShowman)

	// VALIDATION2: name, answer, _, showExtra, rightCount, right..., wrong...
	sys(c, protocol.InValidation2, "bob", "earth", "-", "+", "2", "earth", "the earth", "mars")

	require.Equal(t, gateway.DecisionValidation, c.gw.Decision)
	require.False(t, c.gw.Validation.Queued)
	require.Equal(t, []string{"earth", "the earth"}, c.gw.Validation.RightAnswers)
	require.Equal(t, []string{"mars"}, c.gw.Validation.WrongAnswers)
	require.True(t, c.gw.Validation.ShowExtra)

	// a later legacy request replaces the pending one
	sys(c, protocol.InValidation, "carol", "venus", "-", "1", "venus")
	head, ok := c.gw.Validation.Head()
	require.True(t, ok)
	require.Equal(t, "carol", head.PlayerName)
	require.Len(t, c.gw.Validation.Queue, 1)
}

func TestAnswerPayloadsUnescapeNewLines(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InPlayerAnswer, "0", `line one\nline two`)
	require.Equal(t, "line one\nline two", c.sess.Players[0].Answer)

	s, _ := newTestController(t, session.RoleShowman)

	sys(s, protocol.InAskValidate, "1", `first\\second`)
	require.Equal(t, `first\second`, s.sess.Players[1].Answer)
	head, ok := s.gw.Validation.Head()
	require.True(t, ok)
	require.Equal(t, `first\second`, head.Answer)

	sys(s, protocol.InValidation2, "bob", `a\nb`, "-", "-", "1", "a b")
	head, ok = s.gw.Validation.Head()
	require.True(t, ok)
	require.Equal(t, "a\nb", head.Answer)
}

func TestReportTemplateReachesView(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InReport, "good game\rthanks")

	require.Equal(t, gateway.DecisionReview, c.gw.Decision)
	require.Equal(t, "good game\nthanks", c.view().ReportText)
}

func TestShowmanHint(t *testing.T) {
	c, _ := newTestController(t, session.RoleShowman)

	sys(c, protocol.InHint, "the answer is earth")
	require.Equal(t, "the answer is earth", c.sess.Hint)

	sys(c, protocol.InRightAnswer, "earth")
	require.Empty(t, c.sess.Hint)
}

func TestMiscSessionFacts(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InHostName, "bob", "carol")
	require.Equal(t, "bob", c.sess.HostName)

	sys(c, protocol.InReadingSpeed, "20")
	require.Equal(t, 20, c.sess.ReadingSpeed)

	sys(c, protocol.InButtonBlockingTime, "3")
	require.Equal(t, 3, c.sess.ButtonBlockingTime)

	sys(c, protocol.InSetJoinMode, "AnyRole")
	require.Equal(t, "AnyRole", c.sess.JoinMode)

	sys(c, protocol.InBanned, "10.0.0.1", "mallory")
	require.Equal(t, "mallory", c.sess.Banned["10.0.0.1"])

	sys(c, protocol.InUnbanned, "10.0.0.1")
	require.NotContains(t, c.sess.Banned, "10.0.0.1")

	sys(c, protocol.InGameMetadata, "Friday game", "History pack", "host@example.org")
	require.Equal(t, "History pack", c.sess.Metadata.PackageName)

	sys(c, protocol.InAvatar, "bob", "image", "http://img/bob.png")
	require.Equal(t, "http://img/bob.png", c.sess.Persons["bob"].Avatar)

	sys(c, protocol.InMediaLoaded, "carol")
	require.True(t, c.sess.Players[2].MediaLoaded)
}

func TestGameClosedIsTerminal(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)
	sys(c, protocol.InTimer, "0", protocol.TimerGo, "300")
	sys(c, protocol.InAnswer)

	sys(c, protocol.InGameClosed)

	require.True(t, c.closed)
	require.Equal(t, timers.Stopped, c.tm.Get(timers.Round).State)
	require.Equal(t, gateway.DecisionNone, c.gw.Decision)

	// idempotent; later events change nothing
	sys(c, protocol.InGameClosed)
	sys(c, protocol.InSums, "999", "999", "999")
	require.Equal(t, 0, c.sess.Players[0].Sum)
}

func TestFinalRoundMarksEliminatedPlayers(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)

	sys(c, protocol.InFinalRound, "+", "-", "+")

	require.True(t, c.sess.Players[0].InGame)
	require.False(t, c.sess.Players[1].InGame)
	require.True(t, c.sess.Players[2].InGame)
}

// Scheduled effects need the loop running; these tests drive the
// controller the way the binary does and wait out the real delays.

func startLoop(t *testing.T, c *Controller) {
	t.Helper()
	go func() { _ = c.Run() }()
}

func post(c *Controller, parts ...string) {
	c.Post(FromServer{Message: transport.Message{Sender: "@", Text: strings.Join(parts, "\n"), IsSystem: true}})
}

func snapshotEventually(t *testing.T, c *Controller, within time.Duration, cond func(View) bool) {
	t.Helper()
	deadline := time.Now().Add(within)
	for {
		v, err := c.Snapshot()
		require.NoError(t, err)
		if cond(v) {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("condition not reached within %v", within)
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestQuestionMarkedUsedAfterBlink(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)
	startLoop(t, c)

	post(c, protocol.InRoundThemes, "None", "History")
	post(c, protocol.InTable, "100", "200")
	post(c, protocol.InChoice, "0", "0")

	snapshotEventually(t, c, 2*time.Second, func(v View) bool {
		if len(v.Session.Themes) == 0 {
			return false
		}
		price, ok := v.Session.Themes[0].Question(0)
		return ok && price == session.QuestionUsed
	})
}

func TestThemeRemovedAfterDelay(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)
	startLoop(t, c)

	post(c, protocol.InRoundThemes, "AllTogether", "History", "Science", "Art")
	post(c, protocol.InOut, "1")

	snapshotEventually(t, c, 2*time.Second, func(v View) bool {
		return len(v.Session.Themes) == 2 &&
			v.Session.Themes[0].Name == "History" &&
			v.Session.Themes[1].Name == "Art"
	})
}

func TestLostStateRevertsUnlessOutcomeArrives(t *testing.T) {
	c, _ := newTestController(t, session.RolePlayer)
	startLoop(t, c)

	post(c, protocol.InWrongTry, "0")
	post(c, protocol.InWrongTry, "2")
	post(c, protocol.InPerson, "-", "2") // real outcome beats the revert

	snapshotEventually(t, c, 2*time.Second, func(v View) bool {
		return v.Session.Players[0].State == session.StateNone
	})

	v, err := c.Snapshot()
	require.NoError(t, err)
	require.Equal(t, session.StateWrong, v.Session.Players[2].State,
		"the revert only undoes a still-Lost flash")
}

func TestCountdownNarratesRemainingSeconds(t *testing.T) {
	c, _ := newTestController(t, session.RoleViewer, WithAutomaticGame())
	startLoop(t, c)

	post(c, protocol.InTimer, "2", protocol.TimerGo, "30", "-2")

	snapshotEventually(t, c, 2*time.Second, func(v View) bool {
		return v.Session.Showman.Replic == "the game starts in 2 seconds"
	})
	snapshotEventually(t, c, 2*time.Second, func(v View) bool {
		return v.Session.Showman.Replic == "the game starts in 1 seconds"
	})
}

func TestAnswerDraftResync(t *testing.T) {
	c, sender := newTestController(t, session.RolePlayer)
	startLoop(t, c)

	post(c, protocol.InAnswer)
	require.NoError(t, c.UpdateAnswerDraft("ea"))
	require.NoError(t, c.UpdateAnswerDraft("eart"))

	snapshotEventually(t, c, 5*time.Second, func(View) bool {
		return sender.count() > 0
	})

	require.Equal(t, []string{protocol.OutAnswerVersion, "eart"}, sender.get(0))
}
