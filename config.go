package main

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/takovsky/cbot/roster"
)

// Load loads the bot configuration from TOML. Values may reference
// environment variables with $VAR or ${VAR}.
func Load(r io.Reader) (*Config, *toml.MetaData, error) {
	var cfg Config
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("couldn't decode config: %w", err)
	}
	expandcfg(&cfg, os.Getenv)
	if cfg.Send.Num == 0 {
		cfg.Send = Rate{Every: 1, Num: 2}
	}
	if err := cfg.validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, &md, nil
}

func (cfg *Config) validate() error {
	if cfg.Auth.JID == "" {
		return fmt.Errorf("config: auth.jid is required")
	}
	seen := make(map[string]bool)
	for i, m := range cfg.MUC {
		if m.Conference == "" {
			return fmt.Errorf("config: muc[%d] has no conference", i)
		}
		if m.Nickname == "" {
			return fmt.Errorf("config: muc %s has no nickname", m.Conference)
		}
		if seen[m.Conference] {
			return fmt.Errorf("config: muc %s configured twice", m.Conference)
		}
		seen[m.Conference] = true
	}
	return nil
}

// Rooms returns the configured rooms as roster entries.
func (cfg *Config) Rooms() []roster.Room {
	rooms := make([]roster.Room, len(cfg.MUC))
	for i, m := range cfg.MUC {
		rooms[i] = roster.Room{Conference: m.Conference, Nickname: m.Nickname}
	}
	return rooms
}

// Config is the marshaled structure of the bot's configuration.
type Config struct {
	// Auth is the XMPP account configuration.
	Auth AuthCfg `toml:"auth"`
	// Settings is the table of general bot settings.
	Settings Settings `toml:"settings"`
	// API is the HTTP API configuration.
	API APICfg `toml:"api"`
	// Send is the global rate limit for outgoing messages.
	Send Rate `toml:"send"`
	// MUC is the list of rooms to join at startup.
	MUC []MUCCfg `toml:"muc"`
}

// AuthCfg is the XMPP account configuration.
type AuthCfg struct {
	// JID is the bot's account address.
	JID string `toml:"jid"`
	// Password is the account password. When empty, the bot prompts on the
	// terminal at startup.
	Password string `toml:"password"`
	// Server is the host:port to connect to. When empty, the library
	// derives it from the JID domain.
	Server string `toml:"server"`
	// NoTLS disables the initial TLS connection, for servers that upgrade
	// via STARTTLS instead.
	NoTLS bool `toml:"notls"`
	// Debug dumps the XML stream to stderr.
	Debug bool `toml:"debug"`
}

// Settings is the table of general bot settings.
type Settings struct {
	// Prefix is the command prefix. An empty prefix disables prefix
	// enforcement entirely.
	Prefix string `toml:"prefix"`
	// Name and Version identify the software in discovery responses.
	Name    string `toml:"name"`
	Version string `toml:"version"`
	// Platform is the platform description template. {go_version} and
	// {os_name} are substituted at runtime.
	Platform string `toml:"platform"`
}

// PlatformString expands the platform template with runtime information.
func (s Settings) PlatformString() string {
	os := runtime.GOOS
	if os != "" {
		os = strings.ToUpper(os[:1]) + os[1:]
	}
	p := strings.ReplaceAll(s.Platform, "{go_version}", runtime.Version())
	return strings.ReplaceAll(p, "{os_name}", os)
}

// APICfg is the HTTP API configuration.
type APICfg struct {
	// Listen is the address to serve metrics and diagnostics on. Empty
	// disables the server.
	Listen string `toml:"listen"`
}

// MUCCfg is the configuration for one room.
type MUCCfg struct {
	// Conference is the room address.
	Conference string `toml:"conference"`
	// Nickname is the nickname the bot joins with.
	Nickname string `toml:"nickname"`
	// Privileges are static affiliation overrides for deployments where
	// the presence layer does not report affiliations.
	Privileges []Privilege `toml:"privileges"`
}

// Privilege is a static affiliation grant for one participant.
type Privilege struct {
	// Nick is the participant's room nickname.
	Nick string `toml:"nick"`
	// Level is the granted affiliation, "owner" or "admin".
	Level string `toml:"level"`
}

// Rate is a rate limit configuration.
type Rate struct {
	Every float64 `toml:"every"`
	Num   int     `toml:"num"`
}

func fseconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func expandcfg(cfg *Config, expand func(s string) string) {
	fields := []*string{
		&cfg.Auth.JID,
		&cfg.Auth.Password,
		&cfg.Auth.Server,
		&cfg.Settings.Prefix,
		&cfg.Settings.Name,
		&cfg.Settings.Version,
		&cfg.Settings.Platform,
		&cfg.API.Listen,
	}
	for _, f := range fields {
		*f = os.Expand(*f, expand)
	}
	for i := range cfg.MUC {
		m := &cfg.MUC[i]
		m.Conference = os.Expand(m.Conference, expand)
		m.Nickname = os.Expand(m.Nickname, expand)
		for j := range m.Privileges {
			m.Privileges[j].Nick = os.Expand(m.Privileges[j].Nick, expand)
		}
	}
}
