package main

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/takovsky/cbot/message"
	"github.com/takovsky/cbot/metrics"
	"github.com/takovsky/cbot/plugin"
	"github.com/takovsky/cbot/roster"
)

// Bot wires the plugin registry, the membership tracker, and the XMPP
// transport together. It implements [plugin.Bot].
type Bot struct {
	cfg     *Config
	plugins *plugin.Registry
	roster  *roster.Tracker
	metrics *metrics.Metrics
	// affiliations is the static affiliation override table, keyed by
	// conference and nick.
	affiliations map[string]map[string]string
	// send carries outgoing messages to the transport's sender.
	send chan message.Sent
	// joins carries rooms requested at runtime to the transport's sender.
	joins chan roster.Room
	// rate is the global rate limit on sends.
	rate *rate.Limiter
}

// New assembles a bot from its loaded parts.
func New(cfg *Config, plugins *plugin.Registry, tracker *roster.Tracker, mx *metrics.Metrics) *Bot {
	affiliations := make(map[string]map[string]string)
	for _, m := range cfg.MUC {
		if len(m.Privileges) == 0 {
			continue
		}
		t := make(map[string]string, len(m.Privileges))
		for _, p := range m.Privileges {
			t[p.Nick] = p.Level
		}
		affiliations[m.Conference] = t
	}
	return &Bot{
		cfg:          cfg,
		plugins:      plugins,
		roster:       tracker,
		metrics:      mx,
		affiliations: affiliations,
		send:         make(chan message.Sent, 8),
		joins:        make(chan roster.Room, 1),
		rate:         rate.NewLimiter(rate.Every(fseconds(cfg.Send.Every)), cfg.Send.Num),
	}
}

// Run runs the bot until the context is canceled or the transport gives up.
func (robo *Bot) Run(ctx context.Context) error {
	group, ctx := errgroup.WithContext(ctx)
	if robo.cfg.API.Listen != "" {
		group.Go(func() error { return robo.api(ctx, robo.cfg.API.Listen) })
	}
	group.Go(func() error { return robo.xmpp(ctx) })
	err := group.Wait()
	if err == context.Canceled {
		// The first error being context canceled means a normal shutdown
		// in response to a signal.
		err = nil
	}
	return err
}

// Reply formats text for the context of msg and queues it for sending.
// Sending is fire-and-forget; the transport owns delivery.
func (robo *Bot) Reply(ctx context.Context, msg *message.Received, text string, withNickname bool) {
	out := message.Reply(msg.Kind, msg.Sender, text, withNickname)
	to := msg.Room
	if msg.Kind == message.Direct {
		to = msg.Sender
	}
	select {
	case <-ctx.Done():
	case robo.send <- message.Sent{To: to, Kind: msg.Kind, Text: out}:
	}
}

// JoinMUC registers a room with the tracker and asks the transport to join
// it. The join itself happens asynchronously.
func (robo *Bot) JoinMUC(ctx context.Context, conference, nickname string) error {
	room := roster.Room{Conference: conference, Nickname: nickname}
	robo.roster.AddRoom(room)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case robo.joins <- room:
		return nil
	}
}

// affiliation resolves a participant's affiliation at join time. The
// transport doesn't carry MUC affiliation items, so grants come from the
// static per-room config table; everyone else is an ordinary member.
func (robo *Bot) affiliation(conference, nick string) string {
	return robo.affiliations[conference][nick]
}

// bareJID strips the resource from an XMPP address.
func bareJID(s string) string {
	bare, _, _ := strings.Cut(s, "/")
	return bare
}

// splitJID splits a room occupant address into its room and nickname.
func splitJID(s string) (room, nick string, ok bool) {
	room, nick, ok = strings.Cut(s, "/")
	if !ok || room == "" || nick == "" {
		return "", "", false
	}
	return room, nick, true
}

var _ plugin.Bot = (*Bot)(nil)
