package signaling

import "errors"

// Join precondition failures, reported to the client through the join ack.
var (
	ErrRoomIDRequired = errors.New("ROOM_ID_REQUIRED")
	ErrRoleNotAllowed = errors.New("ROLE_NOT_ALLOWED")
	ErrRoomFull       = errors.New("ROOM_FULL")
	ErrRoleTaken      = errors.New("ROLE_TAKEN")
)

// Room holds the two per-role slots of a consultation. A slot holds the
// occupying socket id or "" when empty.
type Room struct {
	DoctorSlot  string
	PatientSlot string
}

// Occupancy returns the number of filled slots (0, 1 or 2).
func (r *Room) Occupancy() int {
	n := 0
	if r.DoctorSlot != "" {
		n++
	}
	if r.PatientSlot != "" {
		n++
	}
	return n
}

func (r *Room) slot(role Role) *string {
	if role == RoleDoctor {
		return &r.DoctorSlot
	}
	return &r.PatientSlot
}

// Registry maps room ids to rooms. It is a plain data structure: the
// Coordinator owns it exclusively and serializes every access under its own
// mutex, so the registry itself carries no lock. A room entry exists if and
// only if at least one of its slots is occupied.
type Registry struct {
	rooms map[string]*Room
}

// NewRegistry returns an empty room registry.
func NewRegistry() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Join reserves the slot for role in roomID on behalf of socketID. The
// capacity and slot checks plus the assignment form one atomic step from the
// caller's point of view; on failure nothing is mutated. The room is created
// on first join. Returns the occupancy after the join.
func (g *Registry) Join(roomID, socketID string, role Role) (int, error) {
	room, ok := g.rooms[roomID]
	if !ok {
		room = &Room{}
	}
	if room.Occupancy() >= 2 {
		return 0, ErrRoomFull
	}
	if *room.slot(role) != "" {
		return 0, ErrRoleTaken
	}
	*room.slot(role) = socketID
	g.rooms[roomID] = room
	return room.Occupancy(), nil
}

// Release clears whichever slot of roomID is held by socketID. If the room
// empties it is removed from the registry entirely. The remaining occupant
// ids are returned so the caller can notify them. Releasing a socket that
// holds no slot is a no-op with ok=false.
func (g *Registry) Release(roomID, socketID string) (remaining []string, ok bool) {
	room, exists := g.rooms[roomID]
	if !exists {
		return nil, false
	}
	if room.DoctorSlot == socketID {
		room.DoctorSlot = ""
		ok = true
	}
	if room.PatientSlot == socketID {
		room.PatientSlot = ""
		ok = true
	}
	if room.Occupancy() == 0 {
		delete(g.rooms, roomID)
		return nil, ok
	}
	return room.occupants(), ok
}

// Occupants returns the socket ids currently in roomID.
func (g *Registry) Occupants(roomID string) []string {
	room, ok := g.rooms[roomID]
	if !ok {
		return nil
	}
	return room.occupants()
}

// Snapshot returns a copy of the room for roomID, if it exists.
func (g *Registry) Snapshot(roomID string) (Room, bool) {
	room, ok := g.rooms[roomID]
	if !ok {
		return Room{}, false
	}
	return *room, true
}

// Len returns the number of occupied rooms.
func (g *Registry) Len() int {
	return len(g.rooms)
}

func (r *Room) occupants() []string {
	ids := make([]string, 0, 2)
	if r.DoctorSlot != "" {
		ids = append(ids, r.DoctorSlot)
	}
	if r.PatientSlot != "" {
		ids = append(ids, r.PatientSlot)
	}
	return ids
}
