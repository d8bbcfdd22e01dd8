package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/xmppo/go-xmpp"
)

// retryWaits is the reconnect backoff schedule. Once exhausted, the bot
// gives up.
var retryWaits = []time.Duration{time.Second, 5 * time.Second, 30 * time.Second, time.Minute, 5 * time.Minute}

// xmpp connects to the chat service and processes events until the context
// is canceled. It reconnects on stream errors with backoff; the backoff
// resets after any session that managed to connect.
func (robo *Bot) xmpp(ctx context.Context) error {
	for ctx.Err() == nil {
		client, err := robo.dial()
		if err != nil {
			slog.ErrorContext(ctx, "connection error", slog.Any("err", err))
			for _, wait := range retryWaits {
				time.Sleep(wait)
				client, err = robo.dial()
				if err == nil {
					break
				}
				slog.ErrorContext(ctx, "connection error", slog.Any("err", err))
			}
			if err != nil {
				slog.ErrorContext(ctx, "out of retries, giving up")
				return err
			}
		}
		robo.session(ctx, client)
	}
	return ctx.Err()
}

func (robo *Bot) dial() (*xmpp.Client, error) {
	opts := xmpp.Options{
		Host:          robo.cfg.Auth.Server,
		User:          robo.cfg.Auth.JID,
		Password:      robo.cfg.Auth.Password,
		NoTLS:         robo.cfg.Auth.NoTLS,
		Debug:         robo.cfg.Auth.Debug,
		Session:       true,
		Status:        "chat",
		StatusMessage: robo.cfg.Settings.Name + " " + robo.cfg.Settings.Version,
	}
	return opts.NewClient()
}

// session runs one connected session: join the known rooms, pump inbound
// stanzas into the event loop, and drain outgoing traffic. It returns when
// the connection breaks or the context is canceled.
func (robo *Bot) session(ctx context.Context, client *xmpp.Client) {
	defer client.Close()
	slog.InfoContext(ctx, "connected", slog.String("jid", robo.cfg.Auth.JID))
	for _, room := range robo.roster.Rooms() {
		if _, err := client.JoinMUCNoHistory(room.Conference, room.Nickname); err != nil {
			slog.ErrorContext(ctx, "couldn't join room",
				slog.Any("err", err),
				slog.String("conference", room.Conference),
				slog.String("nickname", room.Nickname),
			)
			continue
		}
		slog.InfoContext(ctx, "joining room",
			slog.String("conference", room.Conference),
			slog.String("nickname", room.Nickname),
		)
	}
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go robo.sender(sctx, client)
	recv := make(chan any, 8)
	go pump(sctx, client, recv)
	robo.loop(sctx, recv)
}

// pump reads stanzas from the connection into recv. It closes recv when the
// connection errors, which ends the session's event loop.
func pump(ctx context.Context, client *xmpp.Client, recv chan<- any) {
	defer close(recv)
	for {
		stanza, err := client.Recv()
		if err != nil {
			if ctx.Err() == nil {
				slog.ErrorContext(ctx, "recv error", slog.Any("err", err))
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		case recv <- stanza:
		}
	}
}

// sender owns all writes to the connection: queued replies, rate limited,
// and runtime room joins requested by plugins.
func (robo *Bot) sender(ctx context.Context, client *xmpp.Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-robo.send:
			if err := robo.rate.Wait(ctx); err != nil {
				return
			}
			if _, err := client.Send(toXMPP(msg)); err != nil {
				slog.ErrorContext(ctx, "send error", slog.Any("err", err), slog.String("to", msg.To))
			}
		case room := <-robo.joins:
			if _, err := client.JoinMUCNoHistory(room.Conference, room.Nickname); err != nil {
				slog.ErrorContext(ctx, "couldn't join room",
					slog.Any("err", err),
					slog.String("conference", room.Conference),
					slog.String("nickname", room.Nickname),
				)
				continue
			}
			slog.InfoContext(ctx, "joining room",
				slog.String("conference", room.Conference),
				slog.String("nickname", room.Nickname),
			)
		}
	}
}
