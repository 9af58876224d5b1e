package transport

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const writeTimeout = 3 * time.Second

// Client is the websocket implementation of Transport. Inbound frames
// are JSON-encoded Messages; outbound commands are system messages
// whose text joins the opcode and arguments with newlines.
type Client struct {
	log  *zap.Logger
	conn *websocket.Conn
	name string

	ctx    context.Context
	cancel context.CancelFunc

	messages chan Message
}

// Dial connects to the game server. The generated client id ties the
// connection to a single session on the server side.
func Dial(ctx context.Context, log *zap.Logger, serverURL, userName string) (*Client, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("clientId", uuid.NewString())
	q.Set("name", userName)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.Background())

	c := &Client{
		log:      log,
		conn:     conn,
		name:     userName,
		ctx:      runCtx,
		cancel:   cancel,
		messages: make(chan Message, 64),
	}

	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer close(c.messages)

	for {
		var msg Message
		if err := wsjson.Read(c.ctx, c.conn, &msg); err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				if c.ctx.Err() == nil {
					c.log.Warn("read failed", zap.Error(err))
				}
			}
			return
		}

		select {
		case c.messages <- msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// Messages returns the inbound stream. The channel closes when the
// connection is gone.
func (c *Client) Messages() <-chan Message {
	return c.messages
}

// Send delivers one system command to the server.
func (c *Client) Send(opcode string, args ...string) error {
	text := opcode
	if len(args) > 0 {
		text += "\n" + strings.Join(args, "\n")
	}

	ctx, cancel := context.WithTimeout(c.ctx, writeTimeout)
	defer cancel()

	return wsjson.Write(ctx, c.conn, Message{Sender: c.name, Text: text, IsSystem: true})
}

// Close tears the connection down.
func (c *Client) Close() error {
	c.cancel()
	return c.conn.Close(websocket.StatusNormalClosure, "bye")
}
