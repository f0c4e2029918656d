// internal/websocket/hub.go
package websocket

import (
	"context"
	"sync"

	"bookly-service/internal/domain/review"
	"bookly-service/internal/domain/user"
	wstypes "bookly-service/internal/domain/websocket"
	"bookly-service/internal/pkg/jwt"
	"bookly-service/internal/pkg/metrics"

	"go.uber.org/zap"
)

// Authenticator admits a websocket connection the same way an HTTP request
// is admitted on an access-token route.
type Authenticator interface {
	Access(ctx context.Context, raw string) (*jwt.Claims, error)
}

// UserResolver loads the account behind accepted claims. The role a
// connection holds comes from the account, never from the token.
type UserResolver interface {
	Resolve(ctx context.Context, claims *jwt.Claims) (*user.User, error)
}

type Hub struct {
	// Registered clients by user uid
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	// Registration/unregistration
	register   chan *Client
	unregister chan *Client

	// Broadcasting
	broadcast chan *BroadcastMessage

	// Handler registry for modular message handling
	handlerRegistry *HandlerRegistry

	auth   Authenticator
	users  UserResolver
	logger *zap.Logger

	done     chan struct{}
	doneOnce sync.Once
}

type BroadcastMessage struct {
	UserUIDs []string
	Channel  wstypes.ChannelType
	Message  *wstypes.WSMessage

	// SessionID limits delivery to connections opened with that token.
	SessionID string
	// Disconnect closes the matched connections once the message is written.
	Disconnect bool
}

func NewHub(auth Authenticator, users UserResolver, logger *zap.Logger) *Hub {
	return &Hub{
		clients:         make(map[string]map[*Client]bool),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		broadcast:       make(chan *BroadcastMessage, 256),
		handlerRegistry: NewHandlerRegistry(),
		auth:            auth,
		users:           users,
		logger:          logger,
		done:            make(chan struct{}),
	}
}

// AuthenticateClient validates the access token and returns the client
// identity with the role currently stored for the account.
func (h *Hub) AuthenticateClient(ctx context.Context, token string) (*ClientAuth, error) {
	claims, err := h.auth.Access(ctx, token)
	if err != nil {
		return nil, err
	}

	u, err := h.users.Resolve(ctx, claims)
	if err != nil {
		return nil, err
	}

	return &ClientAuth{
		UserUID:   claims.User.UserUID,
		SessionID: claims.ID,
		Role:      u.Role,
		Email:     u.Email,
	}, nil
}

// RegisterHandler registers a message handler
func (h *Hub) RegisterHandler(handler MessageHandler) {
	h.handlerRegistry.Register(handler)
}

// HandleClientMessage processes a message from a client using registered handlers
func (h *Hub) HandleClientMessage(ctx context.Context, client *Client, msg *wstypes.WSMessage) (bool, error) {
	handler, exists := h.handlerRegistry.GetHandler(msg.Type)
	if !exists {
		return false, nil
	}
	return true, handler.HandleMessage(ctx, client, msg)
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.BroadcastMessage(msg)
		}
	}
}

// RegisterClient hands a connected client to the hub. It returns false once
// the hub has stopped.
func (h *Hub) RegisterClient(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) unregisterClientAsync(client *Client) {
	go func() {
		select {
		case h.unregister <- client:
		case <-h.done:
		}
	}()
}

func (h *Hub) enqueue(msg *BroadcastMessage) {
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userUID] == nil {
		h.clients[client.userUID] = make(map[*Client]bool)
	}
	h.clients[client.userUID][client] = true
	metrics.WebsocketConnections.Inc()

	h.logger.Info("websocket client connected",
		zap.String("user_uid", client.userUID),
		zap.String("session_id", client.sessionID),
		zap.Int("total", h.totalClients()),
	)

	client.SendMessage(wstypes.NewMessage(wstypes.EventTypeConnected, map[string]interface{}{
		"user_uid":   client.userUID,
		"session_id": client.sessionID,
		"role":       client.Role(),
	}))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.clients[client.userUID]; ok {
		if _, exists := clients[client]; exists {
			delete(clients, client)
			client.Close()
			metrics.WebsocketConnections.Dec()

			if len(clients) == 0 {
				delete(h.clients, client.userUID)
			}

			h.logger.Info("websocket client disconnected",
				zap.String("user_uid", client.userUID),
				zap.String("session_id", client.sessionID),
				zap.Int("total", h.totalClients()),
			)
		}
	}
}

func (h *Hub) BroadcastMessage(msg *BroadcastMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	deliver := func(client *Client) {
		if msg.SessionID != "" && client.sessionID != msg.SessionID {
			return
		}
		if !client.IsSubscribed(msg.Channel) {
			return
		}
		client.SendMessage(msg.Message)
		if msg.Disconnect {
			client.closeAfterFlush()
		}
	}

	if msg.UserUIDs == nil {
		for _, clients := range h.clients {
			for client := range clients {
				deliver(client)
			}
		}
		return
	}

	for _, uid := range msg.UserUIDs {
		for client := range h.clients[uid] {
			deliver(client)
		}
	}
}

func (h *Hub) GetConnectedClients(userUID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userUID])
}

func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalClients()
}

// ForceLogout tells the connections opened with sessionID that the session
// ended and closes them. An empty sessionID targets every connection of the user.
func (h *Hub) ForceLogout(userUID, sessionID, reason string) {
	msg := wstypes.NewMessage(wstypes.EventTypeForceLogout, wstypes.SessionEventData{
		SessionID: sessionID,
		Reason:    reason,
		Message:   "You have been logged out",
	})
	h.enqueue(&BroadcastMessage{
		UserUIDs:   []string{userUID},
		Channel:    wstypes.ChannelSystem,
		Message:    msg,
		SessionID:  sessionID,
		Disconnect: true,
	})
}

// ReviewCreated notifies a book's submitter about a new review
func (h *Hub) ReviewCreated(submitterUID string, rv *review.Review, bookTitle string) {
	data := wstypes.ReviewEventData{
		ReviewUID: rv.UID.String(),
		BookTitle: bookTitle,
		Rating:    rv.Rating,
	}
	if rv.BookUID != nil {
		data.BookUID = rv.BookUID.String()
	}
	if rv.UserUID != nil {
		data.ReviewBy = rv.UserUID.String()
	}

	h.enqueue(&BroadcastMessage{
		UserUIDs: []string{submitterUID},
		Channel:  wstypes.ChannelReviews,
		Message:  wstypes.NewMessage(wstypes.EventTypeReviewCreated, data),
	})
}

// AccountChanged applies a role change to the user's open connections and
// tells subscribed admins about it. A demoted connection loses the admin channel.
func (h *Hub) AccountChanged(userUID, role string, verified bool) {
	h.mu.RLock()
	for client := range h.clients[userUID] {
		client.setRole(role)
	}
	h.mu.RUnlock()

	h.enqueue(&BroadcastMessage{
		Channel: wstypes.ChannelAdmin,
		Message: wstypes.NewMessage(wstypes.EventTypeAccountUpdated, wstypes.AccountEventData{
			UserUID:    userUID,
			Role:       role,
			IsVerified: verified,
		}),
	})
}

func (h *Hub) totalClients() int {
	total := 0
	for _, clients := range h.clients {
		total += len(clients)
	}
	return total
}

func (h *Hub) shutdown() {
	h.doneOnce.Do(func() { close(h.done) })

	h.mu.Lock()
	defer h.mu.Unlock()

	for uid, clients := range h.clients {
		for client := range clients {
			client.Close()
			metrics.WebsocketConnections.Dec()
		}
		delete(h.clients, uid)
	}
}
