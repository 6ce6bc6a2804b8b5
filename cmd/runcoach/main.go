package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"runcoach/internal/config"
	"runcoach/internal/service"
	"runcoach/internal/store"
)

func main() {
	app := &cli.App{
		Name:     "runcoach",
		HelpName: "runcoach",
		Usage:    "Training load tracking and program planning for runners",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "config file path",
				EnvVars: []string{"RUNCOACH_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "data directory holding the database",
				EnvVars: []string{"RUNCOACH_DATA_DIR"},
			},
			&cli.Int64Flag{
				Name:    "athlete",
				Usage:   "athlete id to operate on",
				EnvVars: []string{"RUNCOACH_ATHLETE_ID"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			level := zerolog.InfoLevel
			if c.Bool("verbose") {
				level = zerolog.DebugLevel
			}
			zerolog.SetGlobalLevel(level)
			log.Logger = log.Output(
				zerolog.ConsoleWriter{
					Out:        c.App.ErrWriter,
					TimeFormat: time.RFC3339,
				},
			)
			return nil
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			log.Error().Err(err).Msg(c.App.Name)
		},
		Commands: []*cli.Command{
			importCommand(),
			workoutCommand(),
			statusCommand(),
			goalCommand(),
			planCommand(),
			evaluateCommand(),
			thresholdCommand(),
			recordsCommand(),
			predictCommand(),
			recomputeCommand(),
			configCommand(),
		},
	}
	if err := app.RunContext(context.Background(), os.Args); err != nil {
		os.Exit(1)
	}
}

// loadConfig resolves the configuration for a command invocation: the
// config file layered over defaults, then any command-line overrides.
func loadConfig(c *cli.Context) (config.Config, error) {
	path := c.String("config")
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return config.Config{}, err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if c.IsSet("data-dir") {
		cfg.Data.Dir = c.String("data-dir")
	}
	if c.IsSet("athlete") {
		cfg.Athlete.ID = c.Int64("athlete")
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// withCoach opens the database and hands the action a ready coach.
func withCoach(f func(c *cli.Context, coach *service.Coach, cfg config.Config) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		db, err := store.Open(cfg.DBPath())
		if err != nil {
			return err
		}
		defer db.Close()
		return f(c, service.New(db, cfg), cfg)
	}
}

const dayLayout = "2006-01-02"

// parseDay parses a YYYY-MM-DD command-line date as midnight UTC.
func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// formatDuration renders seconds as m:ss or h:mm:ss.
func formatDuration(seconds int) string {
	h := seconds / 3600
	m := seconds % 3600 / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
