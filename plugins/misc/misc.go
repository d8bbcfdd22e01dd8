// Package misc provides the basic command set: ping, say, and join.
package misc

import (
	"context"
	"log/slog"

	"github.com/takovsky/cbot/plugin"
)

// Source returns the misc command table.
func Source() plugin.Source {
	return plugin.Source{
		Name: "misc",
		Commands: map[string]plugin.Descriptor{
			"ping": {
				Description: "Reply with pong.",
				Privilege:   1,
				Aliases:     []string{"пинг"},
				Handler:     ping,
			},
			"say": {
				Description: "Repeat the rest of the message as the bot.",
				Privilege:   100,
				Aliases:     []string{"сказать"},
				NeedPrefix:  true,
				Handler:     say,
			},
			"join": {
				Description: "Join a room under a nickname.",
				Privilege:   100,
				Aliases:     []string{"зайти"},
				NeedPrefix:  true,
				Handler:     join,
			},
		},
	}
}

func ping(ctx context.Context, robo plugin.Bot, call *plugin.Invocation) {
	robo.Reply(ctx, call.Message, "pong!", true)
}

func say(ctx context.Context, robo plugin.Bot, call *plugin.Invocation) {
	robo.Reply(ctx, call.Message, call.Rest, false)
}

func join(ctx context.Context, robo plugin.Bot, call *plugin.Invocation) {
	if len(call.Args) != 2 {
		return
	}
	conference, nickname := call.Args[0], call.Args[1]
	if err := robo.JoinMUC(ctx, conference, nickname); err != nil {
		slog.ErrorContext(ctx, "couldn't join room",
			slog.Any("err", err),
			slog.String("conference", conference),
			slog.String("nickname", nickname),
		)
	}
}
