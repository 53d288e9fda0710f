package domain

// Event is one outbound frame addressed to a connection, a room, or all
// connections. Payload is marshaled as-is.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// Outbound event types.
const (
	EventRegistered       = "registered"
	EventRoomList         = "roomList"
	EventJoinedRoom       = "joinedRoom"
	EventRoomUsers        = "roomUsers"
	EventMessage          = "message"
	EventUserBlocked      = "userBlocked"
	EventUserUnblocked    = "userUnblocked"
	EventBlockedUsers     = "blockedUsers"
	EventUserDisconnected = "userDisconnected"
	EventCallOffer        = "call-offer"
	EventCallAnswer       = "call-answer"
	EventCallICECandidate = "call-ice-candidate"
	EventCallEnd          = "call-end"
	EventError            = "error"
)

// DisconnectNotice is broadcast to every connection when a connection goes
// away, so in-flight call UIs can react.
type DisconnectNotice struct {
	ConnID ConnID `json:"connectionId"`
}
