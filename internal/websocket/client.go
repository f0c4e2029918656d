// internal/websocket/client.go
package websocket

import (
	"context"
	"sync"
	"time"

	"bookly-service/internal/domain/user"
	wstypes "bookly-service/internal/domain/websocket"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// ClientAuth holds authentication information
type ClientAuth struct {
	UserUID   string
	SessionID string
	Role      string
	Email     string
}

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	userUID   string
	sessionID string
	role      string
	email     string

	// Subscriptions - what channels this client is listening to.
	// subMutex also guards role.
	subscriptions map[wstypes.ChannelType]bool
	subMutex      sync.RWMutex

	// mu guards closed; send is only closed while holding it
	mu     sync.Mutex
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
}

func NewClient(hub *Hub, conn *websocket.Conn, auth *ClientAuth) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Client{
		hub:           hub,
		conn:          conn,
		send:          make(chan []byte, sendBuffer),
		userUID:       auth.UserUID,
		sessionID:     auth.SessionID,
		role:          auth.Role,
		email:         auth.Email,
		subscriptions: make(map[wstypes.ChannelType]bool),
		ctx:           ctx,
		cancel:        cancel,
	}
	c.subscriptions[wstypes.ChannelSystem] = true
	c.subscriptions[wstypes.ChannelReviews] = true
	return c
}

// Subscribe to a channel. The admin channel is reserved for admins.
func (c *Client) Subscribe(channel wstypes.ChannelType) bool {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()

	switch channel {
	case wstypes.ChannelSystem, wstypes.ChannelReviews:
	case wstypes.ChannelAdmin:
		if c.role != user.RoleAdmin {
			return false
		}
	default:
		return false
	}

	c.subscriptions[channel] = true
	return true
}

// Unsubscribe from a channel. System messages cannot be muted.
func (c *Client) Unsubscribe(channel wstypes.ChannelType) {
	if channel == wstypes.ChannelSystem {
		return
	}
	c.subMutex.Lock()
	defer c.subMutex.Unlock()
	delete(c.subscriptions, channel)
}

// IsSubscribed checks if client is subscribed to a channel
func (c *Client) IsSubscribed(channel wstypes.ChannelType) bool {
	c.subMutex.RLock()
	defer c.subMutex.RUnlock()
	return c.subscriptions[channel]
}

func (c *Client) UserUID() string   { return c.userUID }
func (c *Client) SessionID() string { return c.sessionID }

func (c *Client) Role() string {
	c.subMutex.RLock()
	defer c.subMutex.RUnlock()
	return c.role
}

func (c *Client) setRole(role string) {
	c.subMutex.Lock()
	defer c.subMutex.Unlock()
	c.role = role
	if role != user.RoleAdmin {
		delete(c.subscriptions, wstypes.ChannelAdmin)
	}
}

// ReadPump handles incoming messages from client
func (c *Client) ReadPump() {
	defer func() {
		c.hub.unregisterClientAsync(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("websocket read failed",
					zap.String("user_uid", c.userUID),
					zap.Error(err),
				)
			}
			return
		}
		if c.ctx.Err() != nil {
			return
		}

		c.handleMessage(message)
	}
}

// WritePump handles outgoing messages to client. It drains the send buffer
// before writing the close frame, so a final message is delivered.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.ctx.Done():
			return
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage processes incoming messages from client
func (c *Client) handleMessage(data []byte) {
	msg, err := wstypes.ParseMessage(data)
	if err != nil {
		c.SendError("invalid_message", "Failed to parse message", err.Error())
		return
	}

	handled, err := c.hub.HandleClientMessage(c.ctx, c, msg)
	if err != nil {
		c.SendError("handler_error", "Failed to process message", err.Error())
		return
	}
	if handled {
		return
	}

	switch msg.Type {
	case wstypes.EventTypePing:
		c.SendMessage(wstypes.NewMessage(wstypes.EventTypePong, nil))

	case wstypes.EventTypeSubscribe:
		var req wstypes.SubscribeRequest
		if err := mapToStruct(msg.Data, &req); err != nil {
			c.SendError("invalid_subscribe", "Invalid subscribe request", err.Error())
			return
		}
		var accepted, rejected []wstypes.ChannelType
		for _, channel := range req.Channels {
			if c.Subscribe(channel) {
				accepted = append(accepted, channel)
			} else {
				rejected = append(rejected, channel)
			}
		}
		c.SendMessage(wstypes.NewMessage(wstypes.EventTypeSubscribe, map[string]interface{}{
			"channels": accepted,
			"rejected": rejected,
			"status":   "subscribed",
		}))

	case wstypes.EventTypeUnsubscribe:
		var req wstypes.UnsubscribeRequest
		if err := mapToStruct(msg.Data, &req); err != nil {
			c.SendError("invalid_unsubscribe", "Invalid unsubscribe request", err.Error())
			return
		}
		for _, channel := range req.Channels {
			c.Unsubscribe(channel)
		}
		c.SendMessage(wstypes.NewMessage(wstypes.EventTypeUnsubscribe, map[string]interface{}{
			"channels": req.Channels,
			"status":   "unsubscribed",
		}))

	default:
		c.SendError("unknown_event", "Unsupported event type", string(msg.Type))
	}
}

// SendMessage queues a message for the client. A client whose buffer is
// full is dropped rather than allowed to stall the hub.
func (c *Client) SendMessage(msg *wstypes.WSMessage) {
	data, err := msg.ToJSON()
	if err != nil {
		c.hub.logger.Error("failed to marshal websocket message", zap.Error(err))
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("websocket client too slow, dropping",
			zap.String("user_uid", c.userUID),
			zap.String("session_id", c.sessionID),
		)
		c.closed = true
		close(c.send)
		c.hub.unregisterClientAsync(c)
	}
}

// SendError sends an error message to the client
func (c *Client) SendError(code, message, details string) {
	c.SendMessage(wstypes.NewMessage(wstypes.EventTypeError, wstypes.ErrorData{
		Code:    code,
		Message: message,
		Details: details,
	}))
}

// closeAfterFlush stops accepting messages; WritePump delivers what is
// queued and then sends the close frame.
func (c *Client) closeAfterFlush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Close tears the client down immediately. Safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
	c.mu.Unlock()
	c.cancel()
}
