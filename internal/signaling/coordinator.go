// Package signaling implements the in-memory session/room coordinator for
// 1:1 video consultations. Authenticated sockets join capacity-2 rooms (one
// doctor, one patient) and exchange opaque WebRTC session descriptions and
// ICE candidates, which the coordinator relays verbatim between the two
// occupants.
package signaling

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Acon1tum/qhealth-backend-v2-sub002/internal/platform/metrics"
)

// Coordinator owns the room registry and the set of connected sockets. A
// single mutex serializes every handler, making each join/relay/leave an
// atomic unit: the read-occupancy/decide/mutate sequence of a join can never
// interleave with another socket's handler. Contention is low (a handful of
// small-payload events per call setup), so a global lock is preferred over
// per-room locking.
type Coordinator struct {
	mu       sync.Mutex
	registry *Registry
	sockets  map[string]*Socket

	log     zerolog.Logger
	metrics metrics.Collector
}

// NewCoordinator creates a Coordinator with an empty registry.
func NewCoordinator(logger zerolog.Logger, collector metrics.Collector) *Coordinator {
	if collector == nil {
		collector = metrics.Nop{}
	}
	return &Coordinator{
		registry: NewRegistry(),
		sockets:  make(map[string]*Socket),
		log:      logger,
		metrics:  collector,
	}
}

// Register tracks an authenticated socket. The socket holds no room slot
// until a successful join.
func (co *Coordinator) Register(s *Socket) {
	co.mu.Lock()
	defer co.mu.Unlock()

	co.sockets[s.ID] = s
	co.metrics.SocketConnected()
	co.log.Info().
		Str("socket_id", s.ID).
		Int64("user_id", s.UserID).
		Str("user_role", s.UserRole).
		Msg("signaling socket connected")
}

// Dispatch routes one inbound envelope to its handler. Unknown events are
// ignored. Dispatch never panics on malformed client data; every payload
// field is treated as optional until checked.
func (co *Coordinator) Dispatch(s *Socket, env Envelope) {
	switch env.Event {
	case EventJoin:
		co.handleJoin(s, env)
	case EventOffer, EventAnswer:
		co.relayDescription(s, env)
	case EventICECandidate:
		co.relayCandidate(s, env)
	case EventLeave:
		co.handleLeave(s, env)
	}
}

// handleJoin admits a socket into a room under the ordered precondition
// checks. The first failing check acks an error code and mutates nothing.
func (co *Coordinator) handleJoin(s *Socket, env Envelope) {
	var req JoinRequest
	if len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &req)
	}

	co.mu.Lock()
	defer co.mu.Unlock()

	if req.RoomID == "" {
		co.rejectJoin(s, env.AckID, ErrRoomIDRequired.Error())
		return
	}

	role, ok := RoleFromUserRole(s.UserRole)
	if !ok {
		co.rejectJoin(s, env.AckID, ErrRoleNotAllowed.Error())
		return
	}

	before := co.registry.Len()
	participants, err := co.registry.Join(req.RoomID, s.ID, role)
	if err != nil {
		co.rejectJoin(s, env.AckID, err.Error())
		return
	}
	if co.registry.Len() > before {
		co.metrics.RoomOpened()
	}

	// A socket admitted to a new room gives up its previous slot, so a
	// disconnect can never strand a stale reservation.
	if s.roomID != "" && s.roomID != req.RoomID {
		co.release(s, s.roomID)
	}

	s.assignedRole = role
	s.roomID = req.RoomID

	for _, peerID := range co.registry.Occupants(req.RoomID) {
		if peerID == s.ID {
			continue
		}
		if peer, ok := co.sockets[peerID]; ok {
			peer.Emit(EventPeerJoined, PeerJoined{SocketID: s.ID, Role: role})
		}
	}

	s.Ack(env.AckID, JoinAck{OK: true, Participants: participants, Role: role})
	co.metrics.JoinAccepted(string(role))
	co.log.Info().
		Str("socket_id", s.ID).
		Int64("user_id", s.UserID).
		Str("room_id", req.RoomID).
		Str("role", string(role)).
		Int("participants", participants).
		Msg("joined room")
}

func (co *Coordinator) rejectJoin(s *Socket, ackID, code string) {
	s.Ack(ackID, JoinAck{OK: false, Error: code})
	co.metrics.JoinRejected(code)
	co.log.Debug().
		Str("socket_id", s.ID).
		Str("code", code).
		Msg("join rejected")
}

// relayDescription forwards an offer or answer to the other occupants of
// the named room. Malformed payloads are dropped without an error to the
// sender; session descriptions are best-effort, fire-and-forget.
func (co *Coordinator) relayDescription(s *Socket, env Envelope) {
	var desc SessionDescription
	if len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &desc)
	}
	if desc.RoomID == "" || len(desc.SDP) == 0 {
		co.metrics.RelayDropped(env.Event)
		return
	}

	desc.From = s.ID
	co.broadcast(s, env.Event, desc.RoomID, desc)
}

// relayCandidate forwards an ICE candidate, with the same drop semantics as
// relayDescription.
func (co *Coordinator) relayCandidate(s *Socket, env Envelope) {
	var cand ICECandidate
	if len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &cand)
	}
	if cand.RoomID == "" || len(cand.Candidate) == 0 {
		co.metrics.RelayDropped(env.Event)
		return
	}

	cand.From = s.ID
	co.broadcast(s, env.Event, cand.RoomID, cand)
}

// broadcast emits event to every occupant of roomID other than the sender.
// Occupancy of the sender itself is not verified: any authenticated socket
// that knows a room id may signal into it.
func (co *Coordinator) broadcast(s *Socket, event, roomID string, payload any) {
	co.mu.Lock()
	defer co.mu.Unlock()

	for _, peerID := range co.registry.Occupants(roomID) {
		if peerID == s.ID {
			continue
		}
		if peer, ok := co.sockets[peerID]; ok {
			peer.Emit(event, payload)
		}
	}
	co.metrics.RelayForwarded(event)
}

// handleLeave releases the socket's slot in the named room, falling back to
// the socket's recorded room when the payload omits one.
func (co *Coordinator) handleLeave(s *Socket, env Envelope) {
	var req JoinRequest
	if len(env.Data) > 0 {
		_ = json.Unmarshal(env.Data, &req)
	}

	co.mu.Lock()
	defer co.mu.Unlock()

	roomID := req.RoomID
	if roomID == "" {
		roomID = s.roomID
	}
	co.release(s, roomID)
}

// HandleDisconnect runs the leave cleanup for an abruptly closed socket and
// forgets it entirely. Safe to invoke after an explicit leave; the second
// release finds no slot and is a no-op.
func (co *Coordinator) HandleDisconnect(s *Socket) {
	co.mu.Lock()
	defer co.mu.Unlock()

	if _, ok := co.sockets[s.ID]; !ok {
		return
	}

	co.release(s, s.roomID)
	delete(co.sockets, s.ID)
	co.metrics.SocketDisconnected()
	co.log.Info().
		Str("socket_id", s.ID).
		Int64("user_id", s.UserID).
		Msg("signaling socket disconnected")
}

// release is the shared slot-release routine behind both the explicit leave
// and the disconnect triggers. Callers hold co.mu. Never fatal: releasing a
// socket with no room membership degrades to a no-op.
func (co *Coordinator) release(s *Socket, roomID string) {
	if roomID == "" {
		return
	}

	before := co.registry.Len()
	remaining, ok := co.registry.Release(roomID, s.ID)
	if co.registry.Len() < before {
		co.metrics.RoomClosed()
	}

	for _, peerID := range remaining {
		if peer, found := co.sockets[peerID]; found {
			peer.Emit(EventPeerLeft, PeerLeft{SocketID: s.ID})
		}
	}

	if s.roomID == roomID {
		s.assignedRole = ""
		s.roomID = ""
	}

	if ok {
		co.log.Info().
			Str("socket_id", s.ID).
			Str("room_id", roomID).
			Msg("left room")
	}
}

// RoomSnapshot returns a copy of the room state for roomID, if occupied.
func (co *Coordinator) RoomSnapshot(roomID string) (Room, bool) {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.registry.Snapshot(roomID)
}

// RoomSize returns the occupancy of roomID (0 for an unknown room).
func (co *Coordinator) RoomSize(roomID string) int {
	co.mu.Lock()
	defer co.mu.Unlock()

	room, ok := co.registry.Snapshot(roomID)
	if !ok {
		return 0
	}
	return room.Occupancy()
}

// SocketCount returns the number of connected authenticated sockets.
func (co *Coordinator) SocketCount() int {
	co.mu.Lock()
	defer co.mu.Unlock()
	return len(co.sockets)
}

// RoomCount returns the number of occupied rooms.
func (co *Coordinator) RoomCount() int {
	co.mu.Lock()
	defer co.mu.Unlock()
	return co.registry.Len()
}
