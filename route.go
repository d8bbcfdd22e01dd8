package main

import (
	"context"
	"log/slog"
	"strings"

	"github.com/xmppo/go-xmpp"

	"github.com/takovsky/cbot/message"
	"github.com/takovsky/cbot/plugin"
)

// loop processes inbound events one at a time in delivery order. Presence
// updates and message handling never interleave inside a single event, so
// the tracker needs no coordination beyond its own lock.
func (robo *Bot) loop(ctx context.Context, recv <-chan any) {
	for {
		select {
		case <-ctx.Done():
			return
		case stanza, ok := <-recv:
			if !ok {
				return
			}
			switch v := stanza.(type) {
			case xmpp.Chat:
				robo.metrics.MessagesCount.Observe(1)
				m := received(v)
				if m == nil {
					continue
				}
				robo.dispatch(ctx, m)
			case xmpp.Presence:
				robo.metrics.PresenceCount.Observe(1)
				robo.presence(v)
			}
		}
	}
}

// dispatch is the error boundary for command handlers: a panicking plugin
// is logged and the event loop keeps serving later events. The router
// itself never recovers.
func (robo *Bot) dispatch(ctx context.Context, m *message.Received) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "handler panic",
				slog.Any("panic", r),
				slog.String("room", m.Room),
				slog.String("sender", m.Sender),
			)
		}
	}()
	robo.route(ctx, m)
}

// route parses a message body into a command invocation, resolves it
// against the registry, authorizes the sender, and invokes the handler.
// Messages that resolve to no command are ordinary chat and are dropped
// without a reply.
func (robo *Bot) route(ctx context.Context, m *message.Received) {
	body := m.Text
	prefixed := false
	if p := robo.cfg.Settings.Prefix; p != "" {
		if s, ok := strings.CutPrefix(body, p); ok {
			body, prefixed = s, true
		}
	}
	token, rest, spaced := strings.Cut(body, " ")
	name, ok := robo.plugins.Resolve(token)
	if !ok {
		return
	}
	cmd := robo.plugins.Command(name)
	if cmd.NeedPrefix && !prefixed {
		return
	}
	if robo.roster.IsBotNick(m.Sender) {
		// Never react to our own messages or echoes of them.
		return
	}
	level, err := robo.roster.Privilege(m.Room, m.Sender)
	if err != nil {
		// We never saw this sender join, so we cannot authorize them.
		// Granting a default level here would be unsafe.
		robo.metrics.UnknownSenderCount.Observe(1)
		slog.DebugContext(ctx, "unknown sender",
			slog.String("room", m.Room),
			slog.String("sender", m.Sender),
			slog.String("command", name),
		)
		return
	}
	if level < cmd.Privilege {
		robo.metrics.DeniedCount.Observe(1)
		slog.InfoContext(ctx, "permission denied",
			slog.String("room", m.Room),
			slog.String("sender", m.Sender),
			slog.String("command", name),
			slog.Int("level", level),
			slog.Int("required", cmd.Privilege),
		)
		robo.Reply(ctx, m, "Not enough permissions!", true)
		return
	}
	var args []string
	if spaced {
		args = strings.Split(rest, " ")
	}
	robo.metrics.CommandCount.Observe(1)
	slog.InfoContext(ctx, "command",
		slog.String("name", name),
		slog.String("source", cmd.Category),
		slog.String("room", m.Room),
		slog.String("sender", m.Sender),
		slog.Any("args", args),
	)
	call := plugin.Invocation{
		Message: m,
		Command: token,
		Rest:    rest,
		Args:    args,
	}
	cmd.Handler(ctx, robo, &call)
}

// presence records a room join. Leaves are deliberately ignored; see
// [roster.Tracker].
func (robo *Bot) presence(v xmpp.Presence) {
	switch v.Type {
	case "unavailable", "error":
		return
	}
	room, nick, ok := splitJID(v.From)
	if !ok {
		return
	}
	robo.roster.Joined(room, nick, robo.affiliation(room, nick))
}

// received converts an inbound chat stanza to the message model. It returns
// nil for stanzas the router has no business with: empty bodies, room
// subjects, and error or headline messages.
func received(v xmpp.Chat) *message.Received {
	if v.Text == "" {
		return nil
	}
	switch v.Type {
	case "groupchat":
		room, nick, ok := splitJID(v.Remote)
		if !ok {
			// A bare room address carries the subject, not chat.
			return nil
		}
		return &message.Received{Room: room, Sender: nick, Text: v.Text, Kind: message.Room}
	case "chat", "normal", "":
		return &message.Received{Sender: bareJID(v.Remote), Text: v.Text, Kind: message.Direct}
	default:
		return nil
	}
}

// toXMPP converts an outgoing message to a chat stanza.
func toXMPP(msg message.Sent) xmpp.Chat {
	typ := "chat"
	if msg.Kind == message.Room {
		typ = "groupchat"
	}
	return xmpp.Chat{Remote: msg.To, Type: typ, Text: msg.Text}
}
