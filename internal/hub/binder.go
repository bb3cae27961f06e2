package hub

import "sync"

// Binder indexes which rooms each connection has joined, so disconnect
// cleanup walks only those rooms instead of scanning the whole registry. It
// also means the cost of a disconnect is independent of total room count.
type Binder struct {
	mu    sync.Mutex
	rooms map[string]map[string]struct{} // connID -> set of room codes
}

func NewBinder() *Binder {
	return &Binder{rooms: make(map[string]map[string]struct{})}
}

func (b *Binder) Bind(connID, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	set, ok := b.rooms[connID]
	if !ok {
		set = make(map[string]struct{})
		b.rooms[connID] = set
	}
	set[code] = struct{}{}
}

func (b *Binder) Unbind(connID, code string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.rooms[connID]; ok {
		delete(set, code)
		if len(set) == 0 {
			delete(b.rooms, connID)
		}
	}
}

// Rooms returns the codes the connection is bound to.
func (b *Binder) Rooms(connID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.rooms[connID]
	out := make([]string, 0, len(set))
	for code := range set {
		out = append(out, code)
	}
	return out
}

// Drop removes the connection's whole index and returns the codes it held,
// for the disconnect sweep.
func (b *Binder) Drop(connID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	set := b.rooms[connID]
	delete(b.rooms, connID)
	out := make([]string, 0, len(set))
	for code := range set {
		out = append(out, code)
	}
	return out
}
