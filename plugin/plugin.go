// Package plugin implements the command plugin system for cbot.
//
// A plugin is a static table of command descriptors exported as a [Source].
// The host assembles every registered source into a [Registry] at startup;
// there is no filesystem discovery, and the registry is read-only once
// loaded.
package plugin

import (
	"context"

	"github.com/takovsky/cbot/message"
)

// Bot is the capability surface exposed to command handlers. Handlers
// depend only on this interface, never on the rest of the bot.
type Bot interface {
	// Reply formats text according to the context of msg and sends it.
	// Sending is fire-and-forget; delivery is the transport's problem.
	Reply(ctx context.Context, msg *message.Received, text string, withNickname bool)
	// JoinMUC asks the transport to join a room under the given nickname
	// and registers the room's presence handling.
	JoinMUC(ctx context.Context, conference, nickname string) error
}

// Invocation is a single command invocation. An Invocation and its fields
// must not be modified or retained by any handler.
type Invocation struct {
	// Message is the message which triggered the invocation.
	Message *message.Received
	// Command is the invocation string that resolved to the command,
	// without the prefix.
	Command string
	// Rest is the message body after the command token, without the
	// separating space.
	Rest string
	// Args is Rest split on spaces. It is empty when the body had no text
	// after the command token.
	Args []string
}

// Func executes a command.
type Func func(ctx context.Context, robo Bot, call *Invocation)

// Descriptor is the metadata a plugin exports for one command.
type Descriptor struct {
	// Description is the human-readable help text for the command.
	Description string
	// Privilege is the minimum privilege level required to invoke the
	// command.
	Privilege int
	// Aliases are alternate invocation strings for the command. They share
	// the single global namespace with every command name.
	Aliases []string
	// NeedPrefix restricts the command to invocations that carried the
	// configured command prefix.
	NeedPrefix bool
	// Handler executes the command.
	Handler Func
}

// Source is a named static descriptor table, typically one per plugin
// package. The map key is the canonical command name.
type Source struct {
	// Name identifies the plugin source in diagnostics.
	Name string
	// Commands is the table of commands the source provides.
	Commands map[string]Descriptor
}
