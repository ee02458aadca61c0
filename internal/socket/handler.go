package socket

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Vetinfrajer/VetinChatApp/internal/auth"
	"github.com/Vetinfrajer/VetinChatApp/internal/presence"
	"github.com/Vetinfrajer/VetinChatApp/internal/service"
)

// Handler authenticates socket handshakes and hands accepted connections to
// the presence registry.
type Handler struct {
	tokens   *auth.Manager
	registry *presence.Registry
	delivery service.DeliveryService
	logger   *logrus.Logger
	upgrader websocket.Upgrader
}

func NewHandler(
	tokens *auth.Manager,
	registry *presence.Registry,
	delivery service.DeliveryService,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		tokens:   tokens,
		registry: registry,
		delivery: delivery,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// ServeHTTP verifies the bearer token carried by the handshake and upgrades
// the connection. Verification failure refuses the handshake before any
// presence registration or event exchange happens.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	token := handshakeToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	identity, err := h.tokens.Verify(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("socket upgrade failed")
		return
	}

	c := newClient(identity.UserID, conn, h.delivery, h.logger)
	h.registry.Register(identity.UserID, c)
	h.logger.WithField("user", identity.UserID).Info("user connected")

	go c.writePump()
	go c.readPump(func(cl *client) {
		// disconnect immediately drops presence; a stale handle never evicts
		// a newer registration
		h.registry.Unregister(cl.userID, cl)
		h.logger.WithField("user", cl.userID).Info("user disconnected")
	})
}

func handshakeToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
