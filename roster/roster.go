// Package roster tracks room participants and the privilege level each one
// derived from their affiliation at join time.
package roster

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// ErrUnknownParticipant indicates a participant the tracker never observed
// joining. Callers must treat it as "cannot authorize" rather than assuming
// a default level.
var ErrUnknownParticipant = errors.New("unknown participant")

// Privilege levels derived from room affiliations.
const (
	Owner  = 10
	Admin  = 5
	Member = 1
)

// Room is a chat room and the nickname the bot uses there.
type Room struct {
	// Conference is the room identifier.
	Conference string
	// Nickname is the bot's nickname in the room.
	Nickname string
}

type key struct {
	room, nick string
}

// Tracker records the privilege level of every participant observed joining
// a room while the bot was present. Records are never removed: a participant
// who leaves keeps their last derived level until the process exits, and a
// re-join overwrites the record with a fresh derivation. That staleness is a
// deliberate tradeoff; affiliation is only reported on presence, so there is
// nothing to re-derive from on later messages.
//
// A Tracker is safe for concurrent use, although the event loop drives it
// sequentially.
type Tracker struct {
	mu     sync.Mutex
	rooms  []Room
	levels map[key]int
}

// New returns a tracker for the configured rooms.
func New(rooms []Room) *Tracker {
	t := &Tracker{
		rooms:  slicesClone(rooms),
		levels: make(map[key]int),
	}
	return t
}

func slicesClone(rooms []Room) []Room {
	out := make([]Room, len(rooms))
	copy(out, rooms)
	return out
}

// AddRoom registers a room joined after startup. Configured rooms are never
// modified.
func (t *Tracker) AddRoom(room Room) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rooms {
		if r.Conference == room.Conference {
			return
		}
	}
	t.rooms = append(t.rooms, room)
}

// Rooms returns a copy of the known rooms.
func (t *Tracker) Rooms() []Room {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slicesClone(t.rooms)
}

// IsBotNick reports whether nick is the bot's own nickname in any known room.
func (t *Tracker) IsBotNick(nick string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, r := range t.rooms {
		if r.Nickname == nick {
			return true
		}
	}
	return false
}

// Joined records a participant joining a room with the given affiliation.
// It is a no-op when nick is one of the bot's own nicknames.
func (t *Tracker) Joined(room, nick, affiliation string) {
	if t.IsBotNick(nick) {
		return
	}
	level := Level(affiliation)
	t.mu.Lock()
	t.levels[key{room, nick}] = level
	t.mu.Unlock()
	slog.Debug("participant joined",
		slog.String("room", room),
		slog.String("nick", nick),
		slog.String("affiliation", affiliation),
		slog.Int("level", level),
	)
}

// Privilege returns the privilege level recorded for a participant, or
// ErrUnknownParticipant when the tracker never saw them join.
func (t *Tracker) Privilege(room, nick string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	level, ok := t.levels[key{room, nick}]
	if !ok {
		return 0, ErrUnknownParticipant
	}
	return level, nil
}

// Len returns the number of recorded participants.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.levels)
}

// Level maps a room affiliation to a privilege level. Owners and admins get
// elevated levels; everyone else, including participants with no
// affiliation, is an ordinary member.
func Level(affiliation string) int {
	switch {
	case strings.EqualFold(affiliation, "owner"):
		return Owner
	case strings.EqualFold(affiliation, "admin"):
		return Admin
	default:
		return Member
	}
}
