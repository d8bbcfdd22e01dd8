package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/takovsky/cbot/metrics"
	"github.com/takovsky/cbot/plugin"
	"github.com/takovsky/cbot/plugins/misc"
	"github.com/takovsky/cbot/roster"
)

var app = cli.Command{
	Name:  "cbot",
	Usage: "XMPP chat-room command bot",

	Flags: []cli.Flag{
		&flagConfig,
		&flagLog,
		&flagLogFormat,
	},
	Commands: []*cli.Command{
		{
			Name:   "commands",
			Usage:  "List registered commands without connecting",
			Action: cliCommands,
		},
	},
	Action: cliRun,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	go func() {
		<-ctx.Done()
		stop()
	}()
	err := app.Run(ctx, os.Args)
	if err != nil {
		fmt.Println(err)
	}
}

// sources is the compiled-in list of plugin sources the registry is
// assembled from.
func sources() []plugin.Source {
	return []plugin.Source{
		misc.Source(),
	}
}

func cliRun(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	godotenv.Load()
	r, err := os.Open(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("couldn't open config file: %w", err)
	}
	cfg, _, err := Load(r)
	r.Close()
	if err != nil {
		return fmt.Errorf("couldn't load config: %w", err)
	}
	if cfg.Auth.Password == "" {
		pw, err := promptPassword(cfg.Auth.JID)
		if err != nil {
			return err
		}
		cfg.Auth.Password = pw
	}

	registry, err := plugin.Load(sources()...)
	if err != nil {
		return err
	}
	tracker := roster.New(cfg.Rooms())
	robo := New(cfg, registry, tracker, newMetrics())
	slog.InfoContext(ctx, "starting",
		slog.String("jid", cfg.Auth.JID),
		slog.String("software", cfg.Settings.Name+" "+cfg.Settings.Version),
		slog.String("platform", cfg.Settings.PlatformString()),
		slog.Int("rooms", len(cfg.MUC)),
		slog.Int("commands", registry.Len()),
	)
	return robo.Run(ctx)
}

func cliCommands(ctx context.Context, cmd *cli.Command) error {
	slog.SetDefault(loggerFromFlags(cmd))
	registry, err := plugin.Load(sources()...)
	if err != nil {
		return err
	}
	for c := range registry.Commands() {
		need := ""
		if c.NeedPrefix {
			need = " (prefix)"
		}
		fmt.Printf("%s [%s, priv %d]%s: %s\n", c.Name, c.Category, c.Privilege, need, c.Description)
		for _, a := range c.Aliases {
			fmt.Printf("\talias %s\n", a)
		}
	}
	return nil
}

// promptPassword reads the account password from the terminal when the
// configuration omits it.
func promptPassword(jid string) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", errors.New("no password in config and stdin is not a terminal")
	}
	fmt.Fprintf(os.Stderr, "Enter password for %s: ", jid)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("couldn't read password: %w", err)
	}
	return string(pw), nil
}

var (
	flagConfig = cli.StringFlag{
		Name:       "config",
		Required:   true,
		Usage:      "TOML config file",
		Persistent: true,
		Action: func(ctx context.Context, cmd *cli.Command, s string) error {
			i, err := os.Stat(s)
			if err != nil {
				return err
			}
			if !i.Mode().IsRegular() {
				return errors.New("config must be a regular file")
			}
			return nil
		},
	}

	flagLog = cli.StringFlag{
		Name:       "log",
		Usage:      "Logging level, one of debug, info, warn, error",
		Value:      "info",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			var l slog.Level
			return l.UnmarshalText([]byte(s))
		},
	}

	flagLogFormat = cli.StringFlag{
		Name:       "log-format",
		Usage:      "Logging format, either text or json",
		Value:      "text",
		Persistent: true,
		Action: func(ctx context.Context, c *cli.Command, s string) error {
			switch strings.ToLower(s) {
			case "text", "json":
				return nil
			default:
				return errors.New("unknown logging format")
			}
		},
	}
)

func loggerFromFlags(cmd *cli.Command) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(cmd.String("log"))); err != nil {
		panic(err)
	}
	var h slog.Handler
	switch strings.ToLower(cmd.String("log-format")) {
	case "text":
		h = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	case "json":
		h = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l})
	}
	return slog.New(h)
}

// metrics configuration
func newMetrics() *metrics.Metrics {
	return &metrics.Metrics{
		MessagesCount: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "cbot",
					Subsystem: "xmpp",
					Name:      "messages",
					Help:      "Number of chat messages received.",
				},
			),
		),
		PresenceCount: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "cbot",
					Subsystem: "xmpp",
					Name:      "presence",
					Help:      "Number of room presence events received.",
				},
			),
		),
		CommandCount: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "cbot",
					Subsystem: "commands",
					Name:      "invocations",
					Help:      "Number of command invocations that reached a handler.",
				},
			),
		),
		DeniedCount: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "cbot",
					Subsystem: "commands",
					Name:      "denied",
					Help:      "Number of invocations refused for insufficient privilege.",
				},
			),
		),
		UnknownSenderCount: metrics.NewPromCounter(
			prometheus.NewCounter(
				prometheus.CounterOpts{
					Namespace: "cbot",
					Subsystem: "commands",
					Name:      "unknown_sender",
					Help:      "Number of invocations dropped because the sender was never observed joining.",
				},
			),
		),
	}
}
