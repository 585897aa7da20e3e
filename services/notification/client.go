package notification

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"taskhive/config"
	"taskhive/models"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongDelay  = 60 * time.Second
	pingPeriod = (pongDelay * 9) / 10
	sendBuffer = 32
)

// Upgrader is shared by every socket endpoint.
var Upgrader = websocket.Upgrader{
	CheckOrigin: checkOrigin,
}

// checkOrigin applies the CORS allow-list to browser handshakes. Clients
// that send no Origin are not browsers and are let through.
func checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	allowed := config.AllowedOrigins()
	if len(allowed) == 0 || (len(allowed) == 1 && allowed[0] == "*") {
		return true
	}
	for _, o := range allowed {
		if strings.EqualFold(o, origin) {
			return true
		}
	}
	return false
}

// clientMessage is what a socket may send us.
type clientMessage struct {
	Action string `json:"action"`
	Room   string `json:"room"`
}

// Client is one authenticated websocket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	actor  models.Actor
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	logger *zap.Logger
}

// NewClient wraps conn for actor. Call Serve to run it.
func NewClient(hub *Hub, conn *websocket.Conn, actor models.Actor, logger *zap.Logger) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		actor:  actor,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Serve joins the caller's own room and pumps frames until the socket closes.
func (c *Client) Serve() {
	defer func() {
		c.hub.Leave(c)
		c.close()
	}()

	own := models.RoomFor(c.actor)
	c.hub.Join(own, c)
	c.reply("joined", map[string]string{"room": own})

	// Ping/pong lets us notice when the other end goes away.
	c.conn.SetReadDeadline(time.Now().Add(pongDelay))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongDelay))
		return nil
	})
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	messageCh := c.receiveMessages()
	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			deadline := time.Now().Add(writeWait)
			if err := c.conn.WriteControl(websocket.PingMessage, []byte{}, deadline); err != nil {
				c.logger.Debug("failed to write ping", zap.Error(err))
				return
			}
		case frame := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("failed to write frame", zap.Error(err))
				return
			}
		case m, ok := <-messageCh:
			if !ok {
				return
			}
			c.handle(m, own)
		}
	}
}

// handle answers join requests. Membership follows identity, so the only room
// a socket can be in is its own.
func (c *Client) handle(m clientMessage, own string) {
	switch m.Action {
	case "join":
		if m.Room != own {
			c.reply("error", map[string]string{"message": "cannot join another user's room", "room": m.Room})
			return
		}
		c.reply("joined", map[string]string{"room": own})
	default:
		c.reply("error", map[string]string{"message": "unknown action", "action": m.Action})
	}
}

func (c *Client) receiveMessages() <-chan clientMessage {
	messageCh := make(chan clientMessage)

	go func() {
		defer close(messageCh)
		for {
			var m clientMessage
			if err := c.conn.ReadJSON(&m); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					c.logger.Debug("socket receive error", zap.Error(err))
				}
				return
			}
			select {
			case <-c.done:
				return
			case messageCh <- m:
			}
		}
	}()

	return messageCh
}

// reply queues a frame addressed to this socket only.
func (c *Client) reply(event string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		return
	}
	frame, err := json.Marshal(models.Envelope{Event: event, Room: models.RoomFor(c.actor), Data: raw})
	if err != nil {
		return
	}
	c.enqueue(frame)
}

// enqueue never blocks; it reports false when the send buffer is full.
func (c *Client) enqueue(frame []byte) bool {
	select {
	case <-c.done:
		return true
	default:
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}
