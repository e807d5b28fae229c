package signaling

import "encoding/json"

// Event names on the signaling wire.
const (
	EventJoin         = "webrtc:join"
	EventPeerJoined   = "webrtc:peer-joined"
	EventOffer        = "webrtc:offer"
	EventAnswer       = "webrtc:answer"
	EventICECandidate = "webrtc:ice-candidate"
	EventLeave        = "webrtc:leave"
	EventPeerLeft     = "webrtc:peer-left"

	// EventAck carries the server's reply to a client event that requested
	// an acknowledgment.
	EventAck = "ack"
)

// Envelope is the framing for every message on a signaling socket. Data is
// kept raw so relayed payloads pass through byte-for-byte. A client that
// wants an acknowledgment sets AckID; the server replies with an EventAck
// envelope carrying the same id.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
	AckID string          `json:"ackId,omitempty"`
}

// JoinRequest is the payload of a webrtc:join event.
type JoinRequest struct {
	RoomID string `json:"roomId"`
}

// JoinAck is the acknowledgment payload for webrtc:join.
type JoinAck struct {
	OK           bool   `json:"ok"`
	Participants int    `json:"participants,omitempty"`
	Role         Role   `json:"role,omitempty"`
	Error        string `json:"error,omitempty"`
}

// SessionDescription is the payload of webrtc:offer and webrtc:answer. SDP
// is relayed opaquely; the coordinator never inspects it. From is filled by
// the server with the sender's socket id before forwarding.
type SessionDescription struct {
	RoomID string          `json:"roomId"`
	SDP    json.RawMessage `json:"sdp,omitempty"`
	From   string          `json:"from,omitempty"`
}

// ICECandidate is the payload of webrtc:ice-candidate, relayed opaquely like
// a session description.
type ICECandidate struct {
	RoomID    string          `json:"roomId"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	From      string          `json:"from,omitempty"`
}

// PeerJoined notifies existing room occupants that a peer was admitted.
type PeerJoined struct {
	SocketID string `json:"socketId"`
	Role     Role   `json:"role"`
}

// PeerLeft notifies the remaining occupant that its peer released the room.
type PeerLeft struct {
	SocketID string `json:"socketId"`
}
