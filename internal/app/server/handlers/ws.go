package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/app/server/ws"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/services"
	"github.com/ArmandoKoffi/ChatApp-backend/pkg/middleware"
)

// WSHandler is the connection gateway. It owns the per-connection state
// machine: Connected(anonymous) → Authenticated → Bound → Unbound or
// Dropped. The authenticated identity comes from the JWT middleware and
// is the only identity ever used for authorization; client-supplied
// sender fields are display only.
type WSHandler struct {
	router *services.RouterService
}

func NewWSHandler(router *services.RouterService) *WSHandler {
	return &WSHandler{router: router}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // CORS policy is enforced by the fronting proxy
	},
}

func (h *WSHandler) Handler(w http.ResponseWriter, r *http.Request) {
	log := middleware.LoggerFrom(r.Context())
	span := trace.SpanFromContext(r.Context())
	userID, ok := r.Context().Value(middleware.UserIDKey).(string)
	if !ok || userID == "" {
		log.ErrorContext(r.Context(), "ws handler - unauthorised missing user_id")
		http.Error(w, "Unauthorized: User ID missing", http.StatusUnauthorized)
		return
	}
	span.SetAttributes(attribute.String("user.id", userID))

	// The session outlives the upgrade request.
	sessionCtx := context.WithoutCancel(r.Context())
	ctx, cancel := context.WithCancel(sessionCtx)
	defer cancel()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.ErrorContext(r.Context(), "ws handler - upgrade failed", "err", err)
		return
	}
	socket := ws.NewWebSocket(ctx, conn)
	client := ws.NewClient(ctx, socket)
	defer client.Close()

	// Exactly-once disconnect handling: the registry's conn index makes
	// this a no-op when logout already unbound the user or when the
	// transport delivers duplicate close notifications.
	defer h.router.HandleDisconnect(sessionCtx, client.ConnID())

	log.InfoContext(r.Context(), "ws handler - connection established", "user_id", userID, "conn_id", client.ConnID())

	sess := &session{
		userID: userID,
		client: client,
		router: h.router,
		log:    log,
	}
	// Events are dispatched sequentially from the read loop: per-sender
	// order is preserved on this connection while other connections run
	// concurrently.
	socket.ReadLoop(
		func(data []byte) { sess.dispatch(ctx, data) },
		func() { h.router.HandleHeartbeat(userID) },
	)
}

// session tracks one connection's binding state. No locking: dispatch is
// only called from the connection's read loop.
type session struct {
	userID string
	client *ws.RuntimeClient
	router *services.RouterService
	bound  bool
	log    *slog.Logger
}

func (s *session) dispatch(ctx context.Context, raw []byte) {
	var env domain.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		s.log.Warn("ws session - invalid frame", "user_id", s.userID, "err", err)
		s.sendError("invalid_frame", "malformed event envelope")
		return
	}

	if env.Event == domain.EventJoin {
		s.handleJoin(ctx, env.Data)
		return
	}
	if !s.bound {
		// Everything except join is rejected until the user is bound.
		// Not fatal: the connection stays open, anonymous.
		s.sendError("unauthenticated", "join before sending events")
		return
	}

	switch env.Event {
	case domain.EventLogout:
		s.router.HandleLogout(ctx, s.userID)
		s.bound = false
	case domain.EventPrivateMessage:
		var p domain.PrivateMessagePayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.router.HandlePrivateMessage(ctx, s.userID, s.client, p)
	case domain.EventRoomMessage:
		var p domain.RoomMessagePayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.router.HandleRoomMessage(ctx, s.userID, s.client, p)
	case domain.EventTyping:
		var p domain.TypingPayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.router.HandleTyping(ctx, s.userID, p)
	case domain.EventCallInitiate:
		var p domain.CallPayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.router.HandleCallInitiate(ctx, s.userID, s.client, p)
	case domain.EventCallAccept, domain.EventCallReject:
		var p domain.CallPayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.router.HandleCallAnswer(ctx, env.Event, s.userID, p)
	case domain.EventCallEnd, domain.EventCallToggle:
		var p domain.CallPayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.router.HandleCallPeer(ctx, env.Event, s.userID, p)
	case domain.EventWebRTCOffer, domain.EventWebRTCAnswer, domain.EventWebRTCCandidate:
		var p domain.SignalingPayload
		if !s.decode(env.Data, &p) {
			return
		}
		s.router.HandleSignaling(ctx, env.Event, s.userID, p)
	default:
		s.log.Warn("ws session - unknown event", "event", env.Event, "user_id", s.userID)
		s.sendError("unknown_event", env.Event)
	}
}

func (s *session) handleJoin(ctx context.Context, data json.RawMessage) {
	var p domain.JoinPayload
	if len(data) > 0 {
		if err := json.Unmarshal(data, &p); err != nil {
			s.sendError("invalid_payload", "malformed join payload")
			return
		}
	}
	// The claimed identity must match the token identity; the token wins.
	if p.UserID != "" && p.UserID != s.userID {
		s.log.Warn("ws session - join identity mismatch", "claimed", p.UserID, "authenticated", s.userID)
	}
	if err := s.router.HandleJoin(ctx, s.userID, s.client); err != nil {
		// Lookup failure leaves the connection anonymous.
		return
	}
	s.bound = true
}

func (s *session) decode(data json.RawMessage, v any) bool {
	if err := json.Unmarshal(data, v); err != nil {
		s.log.Warn("ws session - invalid payload", "user_id", s.userID, "err", err)
		s.sendError("invalid_payload", "malformed event payload")
		return false
	}
	return true
}

func (s *session) sendError(code, message string) {
	_ = s.client.Send(domain.NewEnvelope(domain.EventError, domain.ErrorOut{Code: code, Message: message}))
}
