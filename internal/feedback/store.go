// Package feedback collects player feedback out-of-band from the game
// protocol. Entries live in a bounded in-memory store; an optional sink
// mirrors them to external storage, fire-and-forget.
package feedback

import (
	"crypto/rand"
	"encoding/hex"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"
)

const DefaultMaxEntries = 200

type Context struct {
	RoomID        string `json:"roomId,omitempty"`
	IsMultiplayer *bool  `json:"isMultiplayer,omitempty"`
	SocketID      string `json:"socketId,omitempty"`
	URL           string `json:"url,omitempty"`
	UserAgent     string `json:"userAgent,omitempty"`
}

type Meta struct {
	IP        string `json:"ip,omitempty"`
	Origin    string `json:"origin,omitempty"`
	Referer   string `json:"referer,omitempty"`
	UserAgent string `json:"userAgent,omitempty"`
}

type Entry struct {
	ID         string    `json:"id"`
	Rating     float64   `json:"rating"`
	Message    string    `json:"message"`
	Context    *Context  `json:"context,omitempty"`
	Meta       *Meta     `json:"meta,omitempty"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// Submission is the raw client input before sanitization.
type Submission struct {
	Rating  float64  `json:"rating"`
	Message string   `json:"message"`
	Context *Context `json:"context,omitempty"`
	Meta    *Meta    `json:"-"`
}

type Store struct {
	mu      sync.Mutex
	entries []Entry
	max     int
	now     func() time.Time
}

func NewStore(max int) *Store {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &Store{max: max, now: time.Now}
}

// Add sanitizes and records a submission, evicting the oldest entries past
// the cap.
func (s *Store) Add(in Submission) Entry {
	entry := Entry{
		ID:         newID(),
		Rating:     clampRating(in.Rating),
		Message:    truncate(in.Message, 2000),
		Context:    sanitizeContext(in.Context),
		Meta:       sanitizeMeta(in.Meta),
		ReceivedAt: s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	if over := len(s.entries) - s.max; over > 0 {
		s.entries = append([]Entry(nil), s.entries[over:]...)
	}
	return entry
}

// List returns up to limit entries, newest first.
func (s *Store) List(limit int) []Entry {
	if limit <= 0 {
		return []Entry{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	start := len(s.entries) - limit
	if start < 0 {
		start = 0
	}
	out := make([]Entry, 0, len(s.entries)-start)
	for i := len(s.entries) - 1; i >= start; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// clampRating keeps ratings in [0,5] and rounds to one decimal. NaN and
// infinities collapse to zero.
func clampRating(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	v = math.Min(math.Max(v, 0), 5)
	return math.Round(v*10) / 10
}

func truncate(v string, max int) string {
	v = strings.TrimSpace(v)
	if len(v) > max {
		v = v[:max]
	}
	return v
}

func sanitizeContext(c *Context) *Context {
	if c == nil {
		return nil
	}
	safe := Context{
		RoomID:        truncate(c.RoomID, 32),
		IsMultiplayer: c.IsMultiplayer,
		SocketID:      truncate(c.SocketID, 48),
		URL:           truncate(c.URL, 2048),
		UserAgent:     truncate(c.UserAgent, 512),
	}
	if safe == (Context{}) {
		return nil
	}
	return &safe
}

func sanitizeMeta(m *Meta) *Meta {
	if m == nil {
		return nil
	}
	safe := Meta{
		IP:        truncate(m.IP, 64),
		Origin:    truncate(m.Origin, 256),
		Referer:   truncate(m.Referer, 2048),
		UserAgent: truncate(m.UserAgent, 512),
	}
	if safe == (Meta{}) {
		return nil
	}
	return &safe
}

func newID() string {
	random := make([]byte, 4)
	_, _ = rand.Read(random)
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + hex.EncodeToString(random)
}
