package plugin

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
)

var (
	// ErrBadDescriptor indicates a descriptor with missing required fields.
	ErrBadDescriptor = errors.New("bad descriptor")
	// ErrConflict indicates an invocation string registered twice.
	ErrConflict = errors.New("invocation conflict")
)

// Command is a loaded command with its provenance.
type Command struct {
	// Name is the canonical command name.
	Name string
	// Category is the name of the source that provided the command.
	Category string

	Descriptor
}

// Registry indexes every loaded command by its invocation strings.
// A Registry is read-only after Load and safe for concurrent use.
type Registry struct {
	// names maps every invocation string to its canonical command name.
	names map[string]string
	// cmds maps canonical command names to their commands.
	cmds map[string]*Command
}

// Load builds a registry from plugin sources. The set of all command names
// and aliases across all sources shares one namespace; Load fails on the
// first collision or malformed descriptor, and the bot must not start with
// the partial result.
func Load(sources ...Source) (*Registry, error) {
	r := &Registry{
		names: make(map[string]string),
		cmds:  make(map[string]*Command),
	}
	for _, src := range sources {
		if src.Name == "" {
			return nil, fmt.Errorf("plugin: source with no name: %w", ErrBadDescriptor)
		}
		for _, name := range slices.Sorted(maps.Keys(src.Commands)) {
			d := src.Commands[name]
			if err := check(src.Name, name, d); err != nil {
				return nil, err
			}
			cmd := &Command{Name: name, Category: src.Name, Descriptor: d}
			for _, s := range append([]string{name}, d.Aliases...) {
				if have, ok := r.names[s]; ok {
					return nil, fmt.Errorf("plugin: %s.%s: invocation %q already belongs to %s: %w", src.Name, name, s, have, ErrConflict)
				}
				r.names[s] = name
			}
			r.cmds[name] = cmd
			slog.Debug("registered command",
				slog.String("source", src.Name),
				slog.String("name", name),
				slog.Any("aliases", d.Aliases),
				slog.Int("privilege", d.Privilege),
				slog.Bool("prefix", d.NeedPrefix),
			)
		}
	}
	slog.Info("plugins loaded",
		slog.Int("sources", len(sources)),
		slog.Int("commands", len(r.cmds)),
		slog.Int("invocations", len(r.names)),
	)
	return r, nil
}

func check(source, name string, d Descriptor) error {
	switch {
	case name == "":
		return fmt.Errorf("plugin: %s: command with no name: %w", source, ErrBadDescriptor)
	case d.Handler == nil:
		return fmt.Errorf("plugin: %s.%s: missing handler: %w", source, name, ErrBadDescriptor)
	case d.Description == "":
		return fmt.Errorf("plugin: %s.%s: missing description: %w", source, name, ErrBadDescriptor)
	case d.Privilege < 0:
		return fmt.Errorf("plugin: %s.%s: negative privilege: %w", source, name, ErrBadDescriptor)
	case slices.Contains(d.Aliases, ""):
		return fmt.Errorf("plugin: %s.%s: empty alias: %w", source, name, ErrBadDescriptor)
	}
	return nil
}

// Resolve maps an invocation string to its canonical command name.
// Matching is exact; there is no case folding and no fuzzy matching.
func (r *Registry) Resolve(invocation string) (string, bool) {
	name, ok := r.names[invocation]
	return name, ok
}

// Command returns the command with the given canonical name, or nil.
func (r *Registry) Command(name string) *Command {
	return r.cmds[name]
}

// Len returns the number of loaded commands.
func (r *Registry) Len() int {
	return len(r.cmds)
}

// Commands iterates over all commands in canonical name order.
func (r *Registry) Commands() iter.Seq[*Command] {
	return func(yield func(*Command) bool) {
		for _, name := range slices.Sorted(maps.Keys(r.cmds)) {
			if !yield(r.cmds[name]) {
				return
			}
		}
	}
}
