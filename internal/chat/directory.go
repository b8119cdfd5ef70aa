package chat

import (
	"cmp"
	"slices"
	"sync"
)

type room struct {
	id      string
	name    string
	members map[string]uint64 // user id -> join sequence
	nextSeq uint64
}

func (r *room) add(userID string) bool {
	if _, ok := r.members[userID]; ok {
		return false
	}
	r.nextSeq++
	r.members[userID] = r.nextSeq
	return true
}

func (r *room) info() RoomInfo {
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	slices.SortFunc(ids, func(a, b string) int {
		return cmp.Compare(r.members[a], r.members[b])
	})
	return RoomInfo{ID: r.id, Name: r.name, Members: ids}
}

// Directory holds every room created during the process lifetime. Rooms are
// never deleted.
type Directory struct {
	mu    sync.RWMutex
	rooms map[string]*room
	order []string
	newID func() string
}

// NewDirectory creates an empty directory that mints 128-bit random room ids.
func NewDirectory() *Directory {
	return &Directory{
		rooms: make(map[string]*room),
		newID: newRoomID,
	}
}

// Create adds a room named name. A non-empty creator becomes its only member.
func (d *Directory) Create(name, creator string) RoomInfo {
	r := &room{id: d.newID(), name: name, members: make(map[string]uint64)}
	if creator != "" {
		r.add(creator)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.rooms[r.id] = r
	d.order = append(d.order, r.id)
	return r.info()
}

// Join adds userID to the room. joined is false when the user was already a
// member, in which case nothing changes.
func (d *Directory) Join(roomID, userID string) (joined bool, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[roomID]
	if !ok {
		return false, ErrRoomNotFound
	}
	return r.add(userID), nil
}

// Leave removes userID from the room and reports whether it was a member.
// Unknown rooms are ignored.
func (d *Directory) Leave(roomID, userID string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	r, ok := d.rooms[roomID]
	if !ok {
		return false
	}
	if _, member := r.members[userID]; !member {
		return false
	}
	delete(r.members, userID)
	return true
}

// LeaveAll removes userID from every room it belongs to and returns those
// rooms' ids in creation order.
func (d *Directory) LeaveAll(userID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	var left []string
	for _, id := range d.order {
		r := d.rooms[id]
		if _, member := r.members[userID]; member {
			delete(r.members, userID)
			left = append(left, id)
		}
	}
	return left
}

// List returns every room in creation order.
func (d *Directory) List() []RoomInfo {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]RoomInfo, 0, len(d.order))
	for _, id := range d.order {
		out = append(out, d.rooms[id].info())
	}
	return out
}

// Get returns a single room.
func (d *Directory) Get(roomID string) (RoomInfo, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[roomID]
	if !ok {
		return RoomInfo{}, false
	}
	return r.info(), true
}

// Members returns the member ids of a room, or nil for an unknown room.
func (d *Directory) Members(roomID string) []string {
	info, ok := d.Get(roomID)
	if !ok {
		return nil
	}
	return info.Members
}

// IsMember reports whether userID belongs to the room.
func (d *Directory) IsMember(roomID, userID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.rooms[roomID]
	if !ok {
		return false
	}
	_, member := r.members[userID]
	return member
}

// Len returns the number of rooms.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.order)
}
