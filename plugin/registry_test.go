package plugin_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/takovsky/cbot/plugin"
)

func nop(ctx context.Context, robo plugin.Bot, call *plugin.Invocation) {}

func TestLoad(t *testing.T) {
	misc := plugin.Source{
		Name: "misc",
		Commands: map[string]plugin.Descriptor{
			"ping": {Description: "pong", Privilege: 1, Aliases: []string{"пинг"}, Handler: nop},
			"say":  {Description: "echo", Privilege: 100, NeedPrefix: true, Handler: nop},
		},
	}
	admin := plugin.Source{
		Name: "admin",
		Commands: map[string]plugin.Descriptor{
			"join": {Description: "join a room", Privilege: 100, Aliases: []string{"зайти"}, NeedPrefix: true, Handler: nop},
		},
	}
	r, err := plugin.Load(misc, admin)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if r.Len() != 3 {
		t.Errorf("wrong command count: want 3, got %d", r.Len())
	}
	cases := []struct {
		in   string
		name string
		ok   bool
	}{
		{"ping", "ping", true},
		{"пинг", "ping", true},
		{"say", "say", true},
		{"join", "join", true},
		{"зайти", "join", true},
		{"PING", "", false},
		{"pin", "", false},
		{"pingg", "", false},
		{"", "", false},
	}
	for _, c := range cases {
		name, ok := r.Resolve(c.in)
		if name != c.name || ok != c.ok {
			t.Errorf("resolve %q: want (%q, %t), got (%q, %t)", c.in, c.name, c.ok, name, ok)
		}
	}
	cmd := r.Command("join")
	if cmd == nil {
		t.Fatal("no join command")
	}
	if cmd.Category != "admin" {
		t.Errorf("wrong category: want admin, got %s", cmd.Category)
	}
	if !cmd.NeedPrefix || cmd.Privilege != 100 {
		t.Errorf("wrong descriptor: %+v", cmd.Descriptor)
	}
	var names []string
	for c := range r.Commands() {
		names = append(names, c.Name)
	}
	want := []string{"join", "ping", "say"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("wrong command order (-want +got):\n%s", diff)
	}
}

func TestLoadConflicts(t *testing.T) {
	cases := []struct {
		name    string
		sources []plugin.Source
	}{
		{
			name: "name-name",
			sources: []plugin.Source{
				{Name: "a", Commands: map[string]plugin.Descriptor{"ping": {Description: "x", Handler: nop}}},
				{Name: "b", Commands: map[string]plugin.Descriptor{"ping": {Description: "x", Handler: nop}}},
			},
		},
		{
			name: "alias-name",
			sources: []plugin.Source{
				{Name: "a", Commands: map[string]plugin.Descriptor{"ping": {Description: "x", Aliases: []string{"say"}, Handler: nop}}},
				{Name: "b", Commands: map[string]plugin.Descriptor{"say": {Description: "x", Handler: nop}}},
			},
		},
		{
			name: "alias-alias",
			sources: []plugin.Source{
				{Name: "a", Commands: map[string]plugin.Descriptor{"ping": {Description: "x", Aliases: []string{"p"}, Handler: nop}}},
				{Name: "b", Commands: map[string]plugin.Descriptor{"pong": {Description: "x", Aliases: []string{"p"}, Handler: nop}}},
			},
		},
		{
			name: "self-alias",
			sources: []plugin.Source{
				{Name: "a", Commands: map[string]plugin.Descriptor{"ping": {Description: "x", Aliases: []string{"ping"}, Handler: nop}}},
			},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := plugin.Load(c.sources...)
			if !errors.Is(err, plugin.ErrConflict) {
				t.Errorf("want ErrConflict, got %v", err)
			}
		})
	}
}

func TestLoadMalformed(t *testing.T) {
	cases := []struct {
		name    string
		sources []plugin.Source
	}{
		{
			name:    "no-source-name",
			sources: []plugin.Source{{Commands: map[string]plugin.Descriptor{"ping": {Description: "x", Handler: nop}}}},
		},
		{
			name:    "no-command-name",
			sources: []plugin.Source{{Name: "a", Commands: map[string]plugin.Descriptor{"": {Description: "x", Handler: nop}}}},
		},
		{
			name:    "no-handler",
			sources: []plugin.Source{{Name: "a", Commands: map[string]plugin.Descriptor{"ping": {Description: "x"}}}},
		},
		{
			name:    "no-description",
			sources: []plugin.Source{{Name: "a", Commands: map[string]plugin.Descriptor{"ping": {Handler: nop}}}},
		},
		{
			name:    "negative-privilege",
			sources: []plugin.Source{{Name: "a", Commands: map[string]plugin.Descriptor{"ping": {Description: "x", Privilege: -1, Handler: nop}}}},
		},
		{
			name:    "empty-alias",
			sources: []plugin.Source{{Name: "a", Commands: map[string]plugin.Descriptor{"ping": {Description: "x", Aliases: []string{""}, Handler: nop}}}},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := plugin.Load(c.sources...)
			if !errors.Is(err, plugin.ErrBadDescriptor) {
				t.Errorf("want ErrBadDescriptor, got %v", err)
			}
		})
	}
}
