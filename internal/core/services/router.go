package services

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/contracts"
	"github.com/ArmandoKoffi/ChatApp-backend/internal/core/domain"
)

var tracer = otel.Tracer("event-router")

// RouterService validates and dispatches every relay event. It holds no
// state of its own: targets are resolved through the presence registry,
// access control goes through the block gate, and durable storage goes
// through the message service. A resolve miss is "unreachable", never an
// error.
type RouterService struct {
	registry contracts.Registry
	gate     contracts.BlockGate
	users    domain.UserRepository
	rooms    domain.ChatRoomRepository
	messages *MessageService
	log      *slog.Logger
}

func NewRouterService(
	log *slog.Logger,
	registry contracts.Registry,
	gate contracts.BlockGate,
	users domain.UserRepository,
	rooms domain.ChatRoomRepository,
	messages *MessageService,
) *RouterService {
	return &RouterService{
		registry: registry,
		gate:     gate,
		users:    users,
		rooms:    rooms,
		messages: messages,
		log:      log,
	}
}

// HandleJoin binds the authenticated user to their connection and
// broadcasts the new presence snapshot. A profile lookup failure leaves
// the connection anonymous; it is never fatal to the gateway.
func (s *RouterService) HandleJoin(ctx context.Context, userID string, client contracts.Client) error {
	ctx, span := tracer.Start(ctx, "RouterService.HandleJoin", trace.WithAttributes(
		attribute.String("user_id", userID),
	))
	defer span.End()
	profile, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "profile lookup failed")
		s.log.ErrorContext(ctx, "router - join - profile lookup failed", "user_id", userID, "err", err)
		return err
	}
	if err := s.users.SetOnlineStatus(ctx, userID, true); err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "router - join - online status sync failed", "user_id", userID, "err", err)
	}
	s.registry.Bind(userID, client, domain.DisplayInfo{
		Username:       profile.Username,
		ProfilePicture: profile.ProfilePicture,
		IsOnline:       true,
	})
	s.broadcastPresence()
	s.log.InfoContext(ctx, "router - join - user bound", "user_id", userID, "conn_id", client.ConnID())
	return nil
}

// HandleLogout unbinds the user on an explicit logout event. The
// connection may stay open but inert.
func (s *RouterService) HandleLogout(ctx context.Context, userID string) {
	ctx, span := tracer.Start(ctx, "RouterService.HandleLogout", trace.WithAttributes(
		attribute.String("user_id", userID),
	))
	defer span.End()
	if err := s.users.SetOnlineStatus(ctx, userID, false); err != nil {
		span.RecordError(err)
		s.log.ErrorContext(ctx, "router - logout - offline status sync failed", "user_id", userID, "err", err)
	}
	s.registry.Unbind(userID)
	s.broadcastPresence()
	s.log.InfoContext(ctx, "router - logout - user unbound", "user_id", userID)
}

// HandleDisconnect runs when the transport drops without a prior logout.
// The registry's conn index makes duplicate close notifications a no-op,
// so the offline sync and broadcast fire exactly once per disconnect.
func (s *RouterService) HandleDisconnect(ctx context.Context, connID string) {
	userID, ok := s.registry.UnbindConn(connID)
	if !ok {
		return
	}
	if err := s.users.SetOnlineStatus(ctx, userID, false); err != nil {
		s.log.ErrorContext(ctx, "router - disconnect - offline status sync failed", "user_id", userID, "err", err)
	}
	s.broadcastPresence()
	s.log.InfoContext(ctx, "router - disconnect - user unbound", "user_id", userID, "conn_id", connID)
}

// HandleHeartbeat refreshes the binding's lastSeen on a transport pong.
func (s *RouterService) HandleHeartbeat(userID string) {
	s.registry.Touch(userID)
}

// HandlePrivateMessage dispatches a 1:1 message. Block list is checked in
// both directions before anything else; a blocked sender learns which
// direction refused them, the receiver learns nothing. Persistence runs
// before live delivery and its success gates the sender echo.
func (s *RouterService) HandlePrivateMessage(ctx context.Context, senderID string, sender contracts.Client, p domain.PrivateMessagePayload) {
	ctx, span := tracer.Start(ctx, "RouterService.HandlePrivateMessage", trace.WithAttributes(
		attribute.String("sender_id", senderID),
		attribute.String("receiver_id", p.ReceiverID),
	))
	defer span.End()

	blocked, err := s.gate.IsBlockedBy(ctx, senderID, p.ReceiverID)
	if err != nil {
		// Fail closed: an unanswerable block check must not leak a message
		// across a broken trust boundary. The event is dropped and the
		// sender gets no echo.
		span.RecordError(err)
		span.SetStatus(codes.Error, "block check failed")
		s.log.ErrorContext(ctx, "router - private message - block check failed", "sender_id", senderID, "receiver_id", p.ReceiverID, "err", err)
		return
	}
	if blocked {
		span.SetAttributes(attribute.String("blocked.reason", domain.BlockReasonBlocked))
		_ = sender.Send(domain.NewEnvelope(domain.EventMessageBlocked, domain.MessageBlockedOut{
			ReceiverID: p.ReceiverID,
			Reason:     domain.BlockReasonBlocked,
		}))
		s.log.InfoContext(ctx, "router - private message - sender blocked by receiver", "sender_id", senderID, "receiver_id", p.ReceiverID)
		return
	}
	blockedOwn, err := s.gate.IsBlockedBy(ctx, p.ReceiverID, senderID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "block check failed")
		s.log.ErrorContext(ctx, "router - private message - block check failed", "sender_id", senderID, "receiver_id", p.ReceiverID, "err", err)
		return
	}
	if blockedOwn {
		span.SetAttributes(attribute.String("blocked.reason", domain.BlockReasonYouBlockedUser))
		_ = sender.Send(domain.NewEnvelope(domain.EventMessageBlocked, domain.MessageBlockedOut{
			ReceiverID: p.ReceiverID,
			Reason:     domain.BlockReasonYouBlockedUser,
		}))
		s.log.InfoContext(ctx, "router - private message - sender has blocked receiver", "sender_id", senderID, "receiver_id", p.ReceiverID)
		return
	}

	msg, err := s.messages.AcceptDirect(ctx, senderID, p)
	if err != nil {
		// Store path failed: drop without echo so the sender UI does not
		// show "sent" for a message that was never durably recorded.
		span.SetStatus(codes.Error, "persist failed")
		return
	}

	ts := domain.Timestamp(p.Timestamp)
	if receiver := s.registry.Resolve(p.ReceiverID); receiver != nil {
		_ = receiver.Send(domain.NewEnvelope(domain.EventPrivateMessage, domain.PrivateMessageOut{
			SenderID:  senderID,
			Content:   p.Content,
			MessageID: msg.ID,
			Media:     p.Media,
			Timestamp: ts,
		}))
	} else {
		// Fire-and-forget: the receiver picks the message up from the
		// store on their next fetch.
		span.SetAttributes(attribute.Bool("receiver.offline", true))
		s.log.DebugContext(ctx, "router - private message - receiver offline", "receiver_id", p.ReceiverID)
	}

	_ = sender.Send(domain.NewEnvelope(domain.EventPrivateMessageSent, domain.PrivateMessageSentOut{
		ReceiverID: p.ReceiverID,
		Content:    p.Content,
		MessageID:  msg.ID,
		Media:      p.Media,
		Timestamp:  ts,
	}))
}

// HandleRoomMessage persists a group message and fans it out to every
// resolved member except the sender. Offline members are skipped.
func (s *RouterService) HandleRoomMessage(ctx context.Context, senderID string, sender contracts.Client, p domain.RoomMessagePayload) {
	ctx, span := tracer.Start(ctx, "RouterService.HandleRoomMessage", trace.WithAttributes(
		attribute.String("sender_id", senderID),
		attribute.String("room_id", p.RoomID),
	))
	defer span.End()

	members, err := s.rooms.ListMembers(ctx, p.RoomID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "member lookup failed")
		s.log.ErrorContext(ctx, "router - room message - member lookup failed", "room_id", p.RoomID, "err", err)
		return
	}

	msg, err := s.messages.AcceptRoom(ctx, senderID, p)
	if err != nil {
		span.SetStatus(codes.Error, "persist failed")
		return
	}

	ts := domain.Timestamp(p.Timestamp)
	out := domain.NewEnvelope(domain.EventRoomMessage, domain.RoomMessageOut{
		SenderID:  senderID,
		RoomID:    p.RoomID,
		Content:   p.Content,
		MessageID: msg.ID,
		Media:     p.Media,
		Timestamp: ts,
	})
	delivered := 0
	for _, member := range members {
		if member == senderID {
			continue
		}
		if c := s.registry.Resolve(member); c != nil {
			_ = c.Send(out)
			delivered++
		}
	}
	span.SetAttributes(attribute.Int("room.delivered", delivered))

	_ = sender.Send(domain.NewEnvelope(domain.EventPrivateMessageSent, domain.PrivateMessageSentOut{
		ReceiverID: p.RoomID,
		Content:    p.Content,
		MessageID:  msg.ID,
		Media:      p.Media,
		Timestamp:  ts,
	}))
}

// HandleTyping forwards a typing indicator; silent when the receiver is
// offline.
func (s *RouterService) HandleTyping(ctx context.Context, senderID string, p domain.TypingPayload) {
	receiver := s.registry.Resolve(p.ReceiverID)
	if receiver == nil {
		return
	}
	_ = receiver.Send(domain.NewEnvelope(domain.EventTyping, domain.TypingPayload{
		SenderID: senderID,
		IsTyping: p.IsTyping,
	}))
}

// HandleCallInitiate rings the receiver or, when they have no live
// connection, tells the initiator immediately — signaling is latency
// sensitive, so an unreachable callee is never a silent drop.
func (s *RouterService) HandleCallInitiate(ctx context.Context, callerID string, caller contracts.Client, p domain.CallPayload) {
	ctx, span := tracer.Start(ctx, "RouterService.HandleCallInitiate", trace.WithAttributes(
		attribute.String("caller_id", callerID),
		attribute.String("receiver_id", p.ReceiverID),
	))
	defer span.End()
	receiver := s.registry.Resolve(p.ReceiverID)
	if receiver == nil {
		span.SetAttributes(attribute.Bool("receiver.offline", true))
		_ = caller.Send(domain.NewEnvelope(domain.EventCallUnavailable, domain.CallUnavailableOut{
			ReceiverID: p.ReceiverID,
			Message:    "User is not online",
		}))
		s.log.InfoContext(ctx, "router - call initiate - receiver unavailable", "caller_id", callerID, "receiver_id", p.ReceiverID)
		return
	}
	_ = receiver.Send(domain.NewEnvelope(domain.EventCallIncoming, domain.CallPayload{
		CallerID:  callerID,
		CallType:  p.CallType,
		Timestamp: domain.Now(),
	}))
	s.log.InfoContext(ctx, "router - call initiate - ringing", "caller_id", callerID, "receiver_id", p.ReceiverID, "call_type", p.CallType)
}

// HandleCallAnswer forwards call:accept and call:reject back to the
// caller. Silent when the caller has gone offline.
func (s *RouterService) HandleCallAnswer(ctx context.Context, event, answererID string, p domain.CallPayload) {
	caller := s.registry.Resolve(p.CallerID)
	if caller == nil {
		return
	}
	outEvent := domain.EventCallAccepted
	if event == domain.EventCallReject {
		outEvent = domain.EventCallRejected
	}
	_ = caller.Send(domain.NewEnvelope(outEvent, domain.CallPayload{
		ReceiverID: answererID,
		CallType:   p.CallType,
		Timestamp:  domain.Now(),
	}))
	s.log.InfoContext(ctx, "router - call answer - forwarded", "event", outEvent, "answerer_id", answererID, "caller_id", p.CallerID)
}

// HandleCallPeer forwards call:end and call:toggle to the peer.
func (s *RouterService) HandleCallPeer(ctx context.Context, event, userID string, p domain.CallPayload) {
	peer := s.registry.Resolve(p.PeerID)
	if peer == nil {
		return
	}
	outEvent := domain.EventCallEnded
	if event == domain.EventCallToggle {
		outEvent = domain.EventCallToggled
	}
	_ = peer.Send(domain.NewEnvelope(outEvent, domain.CallPayload{
		UserID:    userID,
		CallType:  p.CallType,
		Timestamp: domain.Now(),
	}))
}

// HandleSignaling relays webrtc offer/answer/ice-candidate blobs verbatim
// to the receiver. Silent when offline; the call layer detects dead peers
// through its own unavailability notice.
func (s *RouterService) HandleSignaling(ctx context.Context, event, senderID string, p domain.SignalingPayload) {
	receiver := s.registry.Resolve(p.ReceiverID)
	if receiver == nil {
		return
	}
	_ = receiver.Send(domain.NewEnvelope(event, domain.SignalingPayload{
		SenderID:  senderID,
		Offer:     p.Offer,
		Answer:    p.Answer,
		Candidate: p.Candidate,
		Timestamp: domain.Now(),
	}))
}

// NotifyUserBlocked pushes a userBlocked notice to the blocked user if
// they are online. Invoked by the REST layer when a block is created.
func (s *RouterService) NotifyUserBlocked(blockedBy, blockedUser string) {
	if c := s.registry.Resolve(blockedUser); c != nil {
		_ = c.Send(domain.NewEnvelope(domain.EventUserBlocked, domain.UserBlockedOut{BlockedBy: blockedBy}))
	}
}

// NotifyUserUnblocked mirrors NotifyUserBlocked for block removal.
func (s *RouterService) NotifyUserUnblocked(unblockedBy, unblockedUser string) {
	if c := s.registry.Resolve(unblockedUser); c != nil {
		_ = c.Send(domain.NewEnvelope(domain.EventUserUnblocked, domain.UserUnblockedOut{UnblockedBy: unblockedBy}))
	}
}

// broadcastPresence sends the full onlineUsers snapshot to every bound
// connection. Full snapshot, not a delta: simplicity over bandwidth.
func (s *RouterService) broadcastPresence() {
	snapshot := s.registry.SnapshotProfiles()
	s.registry.Broadcast(domain.NewEnvelope(domain.EventOnlineUsers, snapshot))
}
