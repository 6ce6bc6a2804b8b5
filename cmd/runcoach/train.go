package main

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"runcoach/internal/config"
	"runcoach/internal/ingest"
	"runcoach/internal/service"
	"runcoach/internal/store"
)

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import activities from a JSON export file",
		ArgsUsage: "<export.json>",
		Action: withCoach(func(c *cli.Context, coach *service.Coach, cfg config.Config) error {
			if c.NArg() != 1 {
				return fmt.Errorf("expected one export file, got %d arguments", c.NArg())
			}
			src := ingest.NewFileSource(c.Args().First())
			result, err := coach.ImportActivities(c.Context, cfg.Athlete.ID, src)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d of %d activities (%d skipped, %d invalid)\n",
				result.Imported, result.Fetched, result.Skipped, result.Invalid)
			return nil
		}),
	}
}

func workoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "workout",
		Usage: "Manage workouts",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Record a workout manually",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "workout date (YYYY-MM-DD), defaults to today",
					},
					&cli.StringFlag{
						Name:     "name",
						Usage:    "workout name",
						Required: true,
					},
					&cli.Float64Flag{
						Name:     "distance",
						Usage:    "distance in meters",
						Required: true,
					},
					&cli.DurationFlag{
						Name:     "duration",
						Usage:    "moving time, e.g. 42m30s",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  "elevation",
						Usage: "elevation gain in meters",
					},
					&cli.StringFlag{
						Name:  "type",
						Usage: "workout type (easy, recovery, long, tempo, interval, hill, race); guessed from the name when omitted",
					},
					&cli.IntFlag{
						Name:  "effort",
						Usage: "perceived effort, 1-10",
					},
					&cli.StringFlag{
						Name:  "notes",
						Usage: "free-form notes",
					},
				},
				Action: withCoach(addWorkout),
			},
		},
	}
}

func addWorkout(c *cli.Context, coach *service.Coach, cfg config.Config) error {
	date := time.Now().UTC()
	if s := c.String("date"); s != "" {
		var err error
		date, err = parseDay(s)
		if err != nil {
			return err
		}
	}

	seconds := int(c.Duration("duration").Seconds())
	w := store.Workout{
		AthleteID:     cfg.Athlete.ID,
		Date:          date,
		Type:          store.WorkoutType(c.String("type")),
		Name:          c.String("name"),
		Distance:      c.Float64("distance"),
		MovingTime:    seconds,
		ElapsedTime:   seconds,
		ElevationGain: c.Float64("elevation"),
		Notes:         c.String("notes"),
	}
	if c.IsSet("effort") {
		effort := c.Int("effort")
		w.PerceivedEffort = &effort
	}

	added, err := coach.AddWorkout(c.Context, w)
	if err != nil {
		return err
	}
	fmt.Printf("Recorded %s %q on %s: %.0f m in %s\n",
		added.Type, added.Name, added.Date.Format(dayLayout),
		added.Distance, formatDuration(added.MovingTime))
	return nil
}

func recomputeCommand() *cli.Command {
	return &cli.Command{
		Name:  "recompute",
		Usage: "Rebuild the daily load series from workout history",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "recompute every athlete in the database",
			},
		},
		Action: withCoach(func(c *cli.Context, coach *service.Coach, cfg config.Config) error {
			if c.Bool("all") {
				if err := coach.RecomputeAll(c.Context); err != nil {
					return err
				}
			} else if err := coach.Recompute(c.Context, cfg.Athlete.ID, time.Time{}); err != nil {
				return err
			}
			fmt.Println("Load series rebuilt")
			return nil
		}),
	}
}
