package misc_test

import (
	"context"
	"testing"

	"github.com/takovsky/cbot/message"
	"github.com/takovsky/cbot/plugin"
	"github.com/takovsky/cbot/plugins/misc"
)

type fakeBot struct {
	replies []string
	nicks   []bool
	joined  [][2]string
}

func (f *fakeBot) Reply(ctx context.Context, msg *message.Received, text string, withNickname bool) {
	f.replies = append(f.replies, text)
	f.nicks = append(f.nicks, withNickname)
}

func (f *fakeBot) JoinMUC(ctx context.Context, conference, nickname string) error {
	f.joined = append(f.joined, [2]string{conference, nickname})
	return nil
}

func command(t *testing.T, name string) *plugin.Command {
	t.Helper()
	r, err := plugin.Load(misc.Source())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	cmd := r.Command(name)
	if cmd == nil {
		t.Fatalf("no %s command", name)
	}
	return cmd
}

func TestPing(t *testing.T) {
	cmd := command(t, "ping")
	robo := &fakeBot{}
	msg := &message.Received{Room: "lobby@conference.example.org", Sender: "Bob", Text: "ping", Kind: message.Room}
	cmd.Handler(context.Background(), robo, &plugin.Invocation{Message: msg, Command: "ping"})
	if len(robo.replies) != 1 || robo.replies[0] != "pong!" {
		t.Errorf("wrong replies: %q", robo.replies)
	}
	if !robo.nicks[0] {
		t.Error("ping reply should address the sender")
	}
}

func TestSay(t *testing.T) {
	cmd := command(t, "say")
	robo := &fakeBot{}
	msg := &message.Received{Room: "lobby@conference.example.org", Sender: "Bob", Text: "say hello there", Kind: message.Room}
	call := &plugin.Invocation{Message: msg, Command: "say", Rest: "hello there", Args: []string{"hello", "there"}}
	cmd.Handler(context.Background(), robo, call)
	if len(robo.replies) != 1 || robo.replies[0] != "hello there" {
		t.Errorf("wrong replies: %q", robo.replies)
	}
	if robo.nicks[0] {
		t.Error("say reply should not address the sender")
	}
}

func TestJoin(t *testing.T) {
	cmd := command(t, "join")
	t.Run("two-args", func(t *testing.T) {
		robo := &fakeBot{}
		msg := &message.Received{Sender: "Bob", Kind: message.Direct}
		call := &plugin.Invocation{
			Message: msg,
			Command: "join",
			Rest:    "ops@conference.example.org helper",
			Args:    []string{"ops@conference.example.org", "helper"},
		}
		cmd.Handler(context.Background(), robo, call)
		want := [2]string{"ops@conference.example.org", "helper"}
		if len(robo.joined) != 1 || robo.joined[0] != want {
			t.Errorf("wrong joins: %v", robo.joined)
		}
	})
	t.Run("wrong-arity", func(t *testing.T) {
		robo := &fakeBot{}
		msg := &message.Received{Sender: "Bob", Kind: message.Direct}
		call := &plugin.Invocation{Message: msg, Command: "join", Rest: "ops@conference.example.org", Args: []string{"ops@conference.example.org"}}
		cmd.Handler(context.Background(), robo, call)
		if len(robo.joined) != 0 {
			t.Errorf("join with one arg should do nothing, got %v", robo.joined)
		}
	})
}
