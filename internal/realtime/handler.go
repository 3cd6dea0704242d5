package realtime

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"family-tracker/backend/internal/security"
	"family-tracker/backend/internal/telemetry"
	telemetrydomain "family-tracker/backend/internal/telemetry/domain"
)

// ErrNoIdentity is returned when a credential resolves to a user outside any family.
var ErrNoIdentity = errors.New("realtime: user is not in a family")

// Close reasons sent with code 1008 when admission fails.
const (
	ReasonAuthRequired = "Authentication required"
	ReasonInvalidToken = "Invalid token"
	ReasonUnknownUser  = "User not found"
	ReasonNoFamily     = "User is not in a family"
)

const resolveTimeout = 5 * time.Second

// IdentityResolver maps a connection credential to the caller's identity.
type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (*security.Identity, error)
}

// Handler admits WebSocket connections at GET /ws?token=... and registers them with the hub.
type Handler struct {
	hub      *Hub
	resolver IdentityResolver
	emitter  telemetry.EventEmitter
	upgrader websocket.Upgrader
}

// NewHandler returns an admission handler. emitter may be nil.
func NewHandler(hub *Hub, resolver IdentityResolver, emitter telemetry.EventEmitter) *Handler {
	return &Handler{
		hub:      hub,
		resolver: resolver,
		emitter:  emitter,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Clients are mobile apps and the dashboard; the token gates access.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		log.Printf("realtime: upgrade failed: %v", err)
		return
	}

	id, reason := h.admit(r)
	if reason != "" {
		h.reject(conn, reason)
		return
	}

	c := NewClient(h.hub, conn, id.FamilyID, id.UserID)
	welcome, err := Encode(KindConnected, Welcome{Message: welcomeMessage, FamilyID: id.FamilyID})
	if err == nil {
		c.enqueue(welcome)
	}
	h.hub.Register(c)
	telemetry.EmitAsync(h.emitter, r.Context(),
		telemetrydomain.NewEvent(telemetrydomain.EventClientConnected, "realtime", id.FamilyID, id.UserID, nil))

	go c.WritePump()
	go c.ReadPump()
}

// admit resolves the request credential. A non-empty reason means the connection must be rejected.
func (h *Handler) admit(r *http.Request) (*security.Identity, string) {
	token := r.URL.Query().Get("token")
	if token == "" {
		return nil, ReasonAuthRequired
	}
	ctx, cancel := context.WithTimeout(r.Context(), resolveTimeout)
	defer cancel()
	id, err := h.resolver.Resolve(ctx, token)
	if err == nil && !id.InFamily() {
		err = ErrNoIdentity
	}
	switch {
	case err == nil:
		return id, ""
	case errors.Is(err, security.ErrUnknownUser):
		return nil, ReasonUnknownUser
	case errors.Is(err, ErrNoIdentity):
		return nil, ReasonNoFamily
	case errors.Is(err, security.ErrInvalidToken):
		return nil, ReasonInvalidToken
	default:
		log.Printf("realtime: resolve identity: %v", err)
		return nil, ReasonInvalidToken
	}
}

func (h *Handler) reject(conn *websocket.Conn, reason string) {
	msg := websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason)
	if err := conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait)); err != nil {
		log.Printf("realtime: write close frame: %v", err)
	}
	conn.Close()
	telemetry.EmitAsync(h.emitter, context.Background(),
		telemetrydomain.NewEvent(telemetrydomain.EventClientRejected, "realtime", "", "", map[string]string{"reason": reason}))
}
