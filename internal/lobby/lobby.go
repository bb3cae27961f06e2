// Package lobby holds the matchmaking queue: players waiting for an opponent,
// paired strictly first-come-first-served. The lobby never creates rooms;
// callers materialize a match into a room themselves.
package lobby

import (
	"errors"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

var (
	ErrInvalidConn   = errors.New("Invalid connection ID")
	ErrNameTooShort  = errors.New("Display name must be at least 2 characters")
	ErrNameTooLong   = errors.New("Display name must be 20 characters or less")
	ErrAlreadyQueued = errors.New("Already in lobby")
)

const (
	minNameLen = 2
	maxNameLen = 20
)

// Entry is one waiting player.
type Entry struct {
	ConnID      string
	DisplayName string
	JoinedAt    time.Time
}

type Lobby struct {
	mu      sync.Mutex
	queue   []Entry
	members map[string]Entry // connID -> entry, for duplicate checks

	now func() time.Time
}

func New() *Lobby {
	return &Lobby{
		members: make(map[string]Entry),
		now:     time.Now,
	}
}

// Add validates and appends a player to the queue tail, returning their
// 0-based position. A connection appears at most once.
func (l *Lobby) Add(connID, displayName string) (int, error) {
	if connID == "" {
		return 0, ErrInvalidConn
	}
	name := strings.TrimSpace(displayName)
	if utf8.RuneCountInString(name) < minNameLen {
		return 0, ErrNameTooShort
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return 0, ErrNameTooLong
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.members[connID]; ok {
		return 0, ErrAlreadyQueued
	}
	e := Entry{ConnID: connID, DisplayName: name, JoinedAt: l.now()}
	l.queue = append(l.queue, e)
	l.members[connID] = e
	return len(l.queue) - 1, nil
}

// Remove drops a player, preserving the relative order of everyone else.
func (l *Lobby) Remove(connID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.members[connID]; !ok {
		return false
	}
	for i, e := range l.queue {
		if e.ConnID == connID {
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			break
		}
	}
	delete(l.members, connID)
	return true
}

// Match dequeues the two earliest entries when at least two players wait.
// No skill pairing, strict FIFO.
func (l *Lobby) Match() (Entry, Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) < 2 {
		return Entry{}, Entry{}, false
	}
	first, second := l.queue[0], l.queue[1]
	l.queue = append([]Entry(nil), l.queue[2:]...)
	delete(l.members, first.ConnID)
	delete(l.members, second.ConnID)
	return first, second, true
}

// Queue returns a copy of the current queue, earliest first.
func (l *Lobby) Queue() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, len(l.queue))
	copy(out, l.queue)
	return out
}

// Contains reports whether the connection is waiting.
func (l *Lobby) Contains(connID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.members[connID]
	return ok
}

func (l *Lobby) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}
