package registry

import (
	"container/list"
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/harkirat155/tictac-realtime/internal/room"
)

type entry struct {
	room        *room.Room
	elem        *list.Element // position in order; front is least recently touched
	lastTouched time.Time
}

// Registry owns the room code -> Room mapping. Two independent reclamation
// mechanisms run over it: LRU eviction bounds the total room count, and the
// TTL sweep bounds how long an unoccupied room survives.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*entry
	order *list.List // of room code

	limit  int
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func New(limit int, ttl time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		rooms:  make(map[string]*entry),
		order:  list.New(),
		limit:  limit,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
	}
}

// Create allocates a room under a fresh collision-free code and seats the
// creator as X. Exceeding the capacity bound evicts the least recently
// touched rooms.
func (r *Registry) Create(creatorConn, creatorClient string) (*room.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var code string
	for {
		c, err := generateCode()
		if err != nil {
			return nil, err
		}
		if _, taken := r.rooms[c]; !taken {
			code = c
			break
		}
		r.logger.Debug("room code collision, regenerating", zap.String("code", c))
	}

	rm := room.New(code, creatorConn, creatorClient)
	r.rooms[code] = &entry{
		room:        rm,
		elem:        r.order.PushBack(code),
		lastTouched: r.now(),
	}
	r.evictOverLimitLocked()
	return rm, nil
}

func (r *Registry) evictOverLimitLocked() {
	for len(r.rooms) > r.limit {
		oldest := r.order.Front()
		if oldest == nil {
			return
		}
		code := oldest.Value.(string)
		r.order.Remove(oldest)
		delete(r.rooms, code)
		r.logger.Info("evicted least recently touched room", zap.String("room", code))
	}
}

// Lookup returns the room for a (case-normalized) code, or nil. It does not
// touch; callers mutating the room follow up with Touch.
func (r *Registry) Lookup(code string) *room.Room {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.rooms[NormalizeCode(code)]; ok {
		return e.room
	}
	return nil
}

// Touch marks the room as recently active: it refreshes the TTL stamp and
// moves the room to the most-recent end of the LRU order.
func (r *Registry) Touch(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.rooms[NormalizeCode(code)]; ok {
		e.lastTouched = r.now()
		r.order.MoveToBack(e.elem)
	}
}

// Remove deletes a room outright.
func (r *Registry) Remove(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.rooms[NormalizeCode(code)]; ok {
		r.order.Remove(e.elem)
		delete(r.rooms, NormalizeCode(code))
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// Sweep removes every room that is unoccupied and idle past the TTL at scan
// time. Occupied rooms are never reclaimed regardless of age.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for code, e := range r.rooms {
		if e.room.Occupied() {
			continue
		}
		if now.Sub(e.lastTouched) > r.ttl {
			r.order.Remove(e.elem)
			delete(r.rooms, code)
			removed++
			r.logger.Debug("reclaimed idle room", zap.String("room", code))
		}
	}
	return removed
}

// Run drives the periodic GC sweep until the context is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Info("room gc sweep", zap.Int("removed", n))
			}
		}
	}
}
