package domain

import (
	"encoding/json"
	"time"
)

// Inbound event names. Every client frame is an Envelope whose Event field
// carries one of these.
const (
	EventJoin            = "join"
	EventLogout          = "logout"
	EventPrivateMessage  = "privateMessage"
	EventRoomMessage     = "roomMessage"
	EventTyping          = "typing"
	EventCallInitiate    = "call:initiate"
	EventCallAccept      = "call:accept"
	EventCallReject      = "call:reject"
	EventCallEnd         = "call:end"
	EventCallToggle      = "call:toggle"
	EventWebRTCOffer     = "webrtc:offer"
	EventWebRTCAnswer    = "webrtc:answer"
	EventWebRTCCandidate = "webrtc:ice-candidate"
)

// Outbound event names.
const (
	EventOnlineUsers        = "onlineUsers"
	EventPrivateMessageSent = "privateMessageSent"
	EventMessageBlocked     = "messageBlocked"
	EventCallIncoming       = "call:incoming"
	EventCallAccepted       = "call:accepted"
	EventCallRejected       = "call:rejected"
	EventCallEnded          = "call:ended"
	EventCallToggled        = "call:toggled"
	EventCallUnavailable    = "call:unavailable"
	EventUserBlocked        = "userBlocked"
	EventUserUnblocked      = "userUnblocked"
	EventError              = "error"
)

// Block reasons sent with messageBlocked.
const (
	BlockReasonBlocked        = "blocked"          // sender is on the receiver's block list
	BlockReasonYouBlockedUser = "you_blocked_user" // sender has the receiver on their own list
)

// Envelope is the frame exchanged in both directions over the socket.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals payload into an outbound frame. Marshal errors are
// impossible for the protocol structs below, so they are swallowed.
func NewEnvelope(event string, payload any) []byte {
	data, _ := json.Marshal(payload)
	raw, _ := json.Marshal(Envelope{Event: event, Data: data})
	return raw
}

// Timestamp returns ts unchanged when the client supplied one, otherwise
// the current time in ISO-8601.
func Timestamp(ts string) string {
	if ts != "" {
		return ts
	}
	return Now()
}

// Now is the ISO-8601 wall clock used for every outbound timestamp.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// Media is the optional attachment reference carried by messages.
type Media struct {
	URL  string `json:"url"`
	Type string `json:"type,omitempty"` // image|audio|video|document
}

// JoinPayload carries the userId the client claims on join. The router
// only accepts it when it matches the authenticated identity.
type JoinPayload struct {
	UserID string `json:"userId"`
}

// LogoutPayload mirrors JoinPayload for the explicit logout event.
type LogoutPayload struct {
	UserID string `json:"userId"`
}

// PrivateMessagePayload is the inbound 1:1 message. SenderID is display
// only; authorization always uses the connection identity.
type PrivateMessagePayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	MessageID  string `json:"messageId,omitempty"`
	Media      *Media `json:"media,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// RoomMessagePayload is the inbound group message.
type RoomMessagePayload struct {
	SenderID  string `json:"senderId"`
	RoomID    string `json:"roomId"`
	Content   string `json:"content"`
	MessageID string `json:"messageId,omitempty"`
	Media     *Media `json:"media,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
}

// TypingPayload flows through unchanged in both directions except that the
// receiver never sees ReceiverID.
type TypingPayload struct {
	SenderID   string `json:"senderId"`
	ReceiverID string `json:"receiverId,omitempty"`
	IsTyping   bool   `json:"isTyping"`
}

// CallPayload covers call:initiate/accept/reject/end/toggle. CallType is
// "audio" or "video"; end/toggle address the peer by PeerID.
type CallPayload struct {
	CallerID   string `json:"callerId,omitempty"`
	ReceiverID string `json:"receiverId,omitempty"`
	UserID     string `json:"userId,omitempty"`
	PeerID     string `json:"peerId,omitempty"`
	CallType   string `json:"callType,omitempty"`
	Timestamp  string `json:"timestamp,omitempty"`
}

// SignalingPayload covers webrtc:offer/answer/ice-candidate. Body is the
// opaque SDP or candidate blob relayed verbatim.
type SignalingPayload struct {
	SenderID   string          `json:"senderId"`
	ReceiverID string          `json:"receiverId,omitempty"`
	Offer      json.RawMessage `json:"offer,omitempty"`
	Answer     json.RawMessage `json:"answer,omitempty"`
	Candidate  json.RawMessage `json:"candidate,omitempty"`
	Timestamp  string          `json:"timestamp,omitempty"`
}

// OnlineUser is one entry of the onlineUsers snapshot broadcast on every
// membership change.
type OnlineUser struct {
	UserID         string `json:"userId"`
	Username       string `json:"username"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	IsOnline       bool   `json:"isOnline"`
}

// PrivateMessageOut is delivered to the receiver's connection.
type PrivateMessageOut struct {
	SenderID  string `json:"senderId"`
	Content   string `json:"content"`
	MessageID string `json:"messageId,omitempty"`
	Media     *Media `json:"media,omitempty"`
	Timestamp string `json:"timestamp"`
}

// PrivateMessageSentOut is the echo/ack to the sender's own connection.
type PrivateMessageSentOut struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
	MessageID  string `json:"messageId,omitempty"`
	Media      *Media `json:"media,omitempty"`
	Timestamp  string `json:"timestamp"`
}

// RoomMessageOut is delivered to every room member except the sender.
type RoomMessageOut struct {
	SenderID  string `json:"senderId"`
	RoomID    string `json:"roomId"`
	Content   string `json:"content"`
	MessageID string `json:"messageId,omitempty"`
	Media     *Media `json:"media,omitempty"`
	Timestamp string `json:"timestamp"`
}

// MessageBlockedOut tells the sender — and only the sender — why delivery
// was refused.
type MessageBlockedOut struct {
	ReceiverID string `json:"receiverId"`
	Reason     string `json:"reason"`
}

// CallUnavailableOut is the immediate notice to a call initiator whose
// target has no live connection.
type CallUnavailableOut struct {
	ReceiverID string `json:"receiverId"`
	Message    string `json:"message"`
}

// UserBlockedOut / UserUnblockedOut are pushed to the affected user when a
// block is created or removed through the REST API.
type UserBlockedOut struct {
	BlockedBy string `json:"blockedBy"`
}

type UserUnblockedOut struct {
	UnblockedBy string `json:"unblockedBy"`
}

// ErrorOut is the socket-safe error frame.
type ErrorOut struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
