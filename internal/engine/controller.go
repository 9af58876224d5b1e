package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kvolkov/quizroom/internal/gateway"
	"github.com/kvolkov/quizroom/internal/protocol"
	"github.com/kvolkov/quizroom/internal/session"
	"github.com/kvolkov/quizroom/internal/timers"
	"github.com/kvolkov/quizroom/internal/transport"
)

// Msg is a unit of work for the controller loop.
type Msg interface{ isCtrlMsg() }

// FromServer carries one inbound message.
type FromServer struct {
	Message transport.Message
}

func (FromServer) isCtrlMsg() {}

// Intent runs a local user action on the loop and reports its result.
type Intent struct {
	Fn    func(sess *session.Session, gw *gateway.Gateway) error
	Reply chan error
}

func (Intent) isCtrlMsg() {}

// GetView replies with a deep snapshot of the loop state; used by the
// debug endpoint and tests.
type GetView struct {
	Reply chan View
}

func (GetView) isCtrlMsg() {}

type taskFired struct {
	key string
	gen uint64
	fn  func(*Controller)
}

func (taskFired) isCtrlMsg() {}

// View is a race-free copy of the observable state.
type View struct {
	Session  session.Session
	Timers   [timers.Count]timers.Timer
	Decision gateway.DecisionType

	// ReportText is the server-suggested review template; an embedder
	// pre-fills the review form with it.
	ReportText string

	Closed bool
}

type task struct {
	gen   uint64
	timer *time.Timer
}

// Controller owns the session: every inbound event, local intent and
// scheduled effect mutates state on its single loop, one at a time.
type Controller struct {
	log  *zap.Logger
	sess *session.Session
	tm   *timers.Set
	gw   *gateway.Gateway

	inbox  chan Msg
	ctx    context.Context
	cancel context.CancelFunc

	// automatic games show a pre-start countdown driven by a timer event.
	automatic bool
	countdown int

	avatar       string
	avatarWanted bool
	closed       bool

	// answerDraft is the answer being composed; it is resynced to the
	// server on a fixed interval while typing continues.
	answerDraft string

	// reportText is the review template suggested by the server.
	reportText string

	tasks   map[string]*task
	taskGen uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithAutomaticGame enables the pre-start countdown handling.
func WithAutomaticGame() Option {
	return func(c *Controller) { c.automatic = true }
}

// WithAvatar announces the given avatar after every roster resync.
func WithAvatar(uri string) Option {
	return func(c *Controller) {
		c.avatar = uri
		c.avatarWanted = uri != ""
	}
}

func New(parent context.Context, log *zap.Logger, sess *session.Session, tm *timers.Set, gw *gateway.Gateway, opts ...Option) *Controller {
	ctx, cancel := context.WithCancel(parent)

	c := &Controller{
		log:       log,
		sess:      sess,
		tm:        tm,
		gw:        gw,
		inbox:     make(chan Msg, 64),
		ctx:       ctx,
		cancel:    cancel,
		countdown: -1,
		tasks:     make(map[string]*task),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run drives the loop until the context ends. The internal ticker only
// interpolates timer display values; authoritative values arrive as
// events.
func (c *Controller) Run() error {
	ticker := time.NewTicker(timers.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			c.shutdown()
			return c.ctx.Err()

		case <-ticker.C:
			c.tm.Tick(timers.TickInterval)

		case m := <-c.inbox:
			switch msg := m.(type) {
			case FromServer:
				c.handle(msg.Message)

			case Intent:
				msg.Reply <- msg.Fn(c.sess, c.gw)

			case GetView:
				msg.Reply <- c.view()

			case taskFired:
				if t, ok := c.tasks[msg.key]; ok && t.gen == msg.gen {
					delete(c.tasks, msg.key)
					msg.fn(c)
				}
			}
		}
	}
}

// Close stops the loop and cancels every scheduled effect.
func (c *Controller) Close() {
	c.cancel()
}

func (c *Controller) shutdown() {
	for key, t := range c.tasks {
		t.timer.Stop()
		delete(c.tasks, key)
	}
}

// Post queues a message for the loop; it drops the message when the
// controller is shut down.
func (c *Controller) Post(m Msg) {
	select {
	case c.inbox <- m:
	case <-c.ctx.Done():
	}
}

// Do runs a local intent on the loop and waits for its result.
func (c *Controller) Do(fn func(sess *session.Session, gw *gateway.Gateway) error) error {
	reply := make(chan error, 1)

	select {
	case c.inbox <- Intent{Fn: fn, Reply: reply}:
	case <-c.ctx.Done():
		return c.ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// Snapshot returns a copy of the observable state.
func (c *Controller) Snapshot() (View, error) {
	reply := make(chan View, 1)

	select {
	case c.inbox <- GetView{Reply: reply}:
	case <-c.ctx.Done():
		return View{}, c.ctx.Err()
	}

	select {
	case v := <-reply:
		return v, nil
	case <-c.ctx.Done():
		return View{}, c.ctx.Err()
	}
}

// view deep-copies the observable state: the caller reads the copy
// outside the loop while the loop keeps mutating the original.
func (c *Controller) view() View {
	sess := *c.sess

	sess.Persons = make(map[string]*session.Person, len(c.sess.Persons))
	for name, p := range c.sess.Persons {
		cp := *p
		sess.Persons[name] = &cp
	}

	sess.Players = make([]*session.Player, len(c.sess.Players))
	for i, p := range c.sess.Players {
		cp := *p
		sess.Players[i] = &cp
	}

	sess.Themes = make([]*session.ThemeInfo, len(c.sess.Themes))
	for i, t := range c.sess.Themes {
		cp := *t
		cp.Questions = append([]int(nil), t.Questions...)
		sess.Themes[i] = &cp
	}

	sess.Banned = make(map[string]string, len(c.sess.Banned))
	for k, val := range c.sess.Banned {
		sess.Banned[k] = val
	}

	sess.Chat = append([]session.ChatMessage(nil), c.sess.Chat...)
	sess.RoundsNames = append([]string(nil), c.sess.RoundsNames...)

	v := View{
		Session:    sess,
		Decision:   c.gw.Decision,
		ReportText: c.reportText,
		Closed:     c.closed,
	}

	for i := 0; i < timers.Count; i++ {
		v.Timers[i] = c.tm.Get(i)
	}

	return v
}

// schedule arms a named one-shot effect, replacing any pending effect
// under the same key. The callback runs on the loop and must re-check
// its preconditions: the world may have moved on while it waited.
func (c *Controller) schedule(key string, d time.Duration, fn func(*Controller)) {
	c.cancelEffect(key)

	c.taskGen++
	gen := c.taskGen

	t := time.AfterFunc(d, func() {
		c.Post(taskFired{key: key, gen: gen, fn: fn})
	})
	c.tasks[key] = &task{gen: gen, timer: t}
}

func (c *Controller) scheduled(key string) bool {
	_, ok := c.tasks[key]
	return ok
}

func (c *Controller) cancelEffect(key string) {
	if t, ok := c.tasks[key]; ok {
		t.timer.Stop()
		delete(c.tasks, key)
	}
}

// handle routes one message: chat entries straight to the log, system
// events through the opcode handlers. The role-agnostic handler always
// runs; the role handler runs after it.
func (c *Controller) handle(msg transport.Message) {
	if c.closed {
		return
	}

	if !msg.IsSystem {
		if msg.Sender != c.sess.Name {
			c.sess.AddChat(msg.Sender, msg.Text, session.LevelInformation)
		}
		return
	}

	ev, ok := protocol.Decode(msg.Text)
	if !ok {
		return
	}

	c.common(ev)

	switch c.sess.Role {
	case session.RolePlayer:
		c.player(ev)
	case session.RoleShowman:
		c.showman(ev)
	}
}
