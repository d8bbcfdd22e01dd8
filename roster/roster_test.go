package roster_test

import (
	"errors"
	"testing"

	"github.com/takovsky/cbot/roster"
)

var rooms = []roster.Room{
	{Conference: "lobby@conference.example.org", Nickname: "cbot"},
	{Conference: "dev@conference.example.org", Nickname: "cbot-dev"},
}

func TestLevel(t *testing.T) {
	cases := []struct {
		affiliation string
		want        int
	}{
		{"owner", roster.Owner},
		{"Owner", roster.Owner},
		{"admin", roster.Admin},
		{"member", roster.Member},
		{"none", roster.Member},
		{"outcast", roster.Member},
		{"", roster.Member},
	}
	for _, c := range cases {
		if got := roster.Level(c.affiliation); got != c.want {
			t.Errorf("level for %q: want %d, got %d", c.affiliation, c.want, got)
		}
	}
}

func TestJoined(t *testing.T) {
	tr := roster.New(rooms)
	tr.Joined("lobby@conference.example.org", "Bob", "owner")
	level, err := tr.Privilege("lobby@conference.example.org", "Bob")
	if err != nil {
		t.Fatalf("privilege failed: %v", err)
	}
	if level != roster.Owner {
		t.Errorf("wrong level: want %d, got %d", roster.Owner, level)
	}
	// A re-join derives fresh from the new affiliation.
	tr.Joined("lobby@conference.example.org", "Bob", "none")
	level, err = tr.Privilege("lobby@conference.example.org", "Bob")
	if err != nil {
		t.Fatalf("privilege failed: %v", err)
	}
	if level != roster.Member {
		t.Errorf("wrong level after re-join: want %d, got %d", roster.Member, level)
	}
	// Records are per room.
	if _, err := tr.Privilege("dev@conference.example.org", "Bob"); !errors.Is(err, roster.ErrUnknownParticipant) {
		t.Errorf("want ErrUnknownParticipant for other room, got %v", err)
	}
}

func TestJoinedIgnoresBot(t *testing.T) {
	tr := roster.New(rooms)
	tr.Joined("lobby@conference.example.org", "cbot", "owner")
	tr.Joined("lobby@conference.example.org", "cbot-dev", "owner")
	if tr.Len() != 0 {
		t.Errorf("bot nicknames recorded: %d records", tr.Len())
	}
	if _, err := tr.Privilege("lobby@conference.example.org", "cbot"); !errors.Is(err, roster.ErrUnknownParticipant) {
		t.Errorf("want ErrUnknownParticipant for bot nick, got %v", err)
	}
}

func TestUnknownParticipant(t *testing.T) {
	tr := roster.New(rooms)
	if _, err := tr.Privilege("lobby@conference.example.org", "Mallory"); !errors.Is(err, roster.ErrUnknownParticipant) {
		t.Errorf("want ErrUnknownParticipant, got %v", err)
	}
}

func TestIsBotNick(t *testing.T) {
	tr := roster.New(rooms)
	cases := []struct {
		nick string
		want bool
	}{
		{"cbot", true},
		{"cbot-dev", true},
		{"Bob", false},
		{"CBOT", false},
	}
	for _, c := range cases {
		if got := tr.IsBotNick(c.nick); got != c.want {
			t.Errorf("IsBotNick(%q): want %t, got %t", c.nick, c.want, got)
		}
	}
}

func TestAddRoom(t *testing.T) {
	tr := roster.New(rooms)
	tr.AddRoom(roster.Room{Conference: "ops@conference.example.org", Nickname: "cbot-ops"})
	if !tr.IsBotNick("cbot-ops") {
		t.Error("added room's nickname not recognized")
	}
	// Adding a room twice keeps the first entry.
	tr.AddRoom(roster.Room{Conference: "ops@conference.example.org", Nickname: "other"})
	if tr.IsBotNick("other") {
		t.Error("duplicate room replaced the original entry")
	}
	if got := len(tr.Rooms()); got != 3 {
		t.Errorf("wrong room count: want 3, got %d", got)
	}
}
