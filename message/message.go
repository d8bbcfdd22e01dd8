package message

import (
	"fmt"
	"strings"
)

// Kind describes the context in which a message was received.
type Kind int

const (
	// Direct is a one-to-one chat message.
	Direct Kind = iota
	// Room is a message in a multi-user room.
	Room
)

func (k Kind) String() string {
	switch k {
	case Direct:
		return "direct"
	case Room:
		return "room"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Received is a message received from the chat service.
type Received struct {
	// Room is the identifier of the room in which the message was sent.
	// It is empty for direct messages.
	Room string
	// Sender is the display nickname of the message sender.
	Sender string
	// Text is the text of the message.
	Text string
	// Kind is the context kind of the message.
	Kind Kind
}

// Sent is a message to be sent to the chat service.
type Sent struct {
	// To is the room or user to whom the message is sent.
	To string
	// Kind is the context kind the message is sent in.
	Kind Kind
	// Text is the message text.
	Text string
}

// formatString is a type to prevent misuse of format strings passed to [Format].
type formatString string

// Format constructs a message to send from a format string literal and
// formatting arguments.
func Format(to string, kind Kind, f formatString, args ...any) Sent {
	return Sent{
		To:   to,
		Kind: kind,
		Text: strings.TrimSpace(fmt.Sprintf(string(f), args...)),
	}
}
