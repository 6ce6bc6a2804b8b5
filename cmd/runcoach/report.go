package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"runcoach/internal/config"
	"runcoach/internal/service"
)

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the current training state",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "days",
				Value: 42,
				Usage: "window for the fitness trend chart",
			},
		},
		Action: withCoach(showStatus),
	}
}

func showStatus(c *cli.Context, coach *service.Coach, cfg config.Config) error {
	report, err := coach.Status(cfg.Athlete.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Athlete %d: %d workouts\n", report.AthleteID, report.Workouts)
	if report.Latest == nil {
		fmt.Println("No training data yet. Import activities or add a workout to get started.")
		return nil
	}

	fmt.Printf("  Fitness    %6.1f\n", report.Latest.Fitness)
	fmt.Printf("  Fatigue    %6.1f\n", report.Latest.Fatigue)
	fmt.Printf("  Readiness  %6.1f  %s\n", report.Latest.Readiness, report.Form)
	if report.Threshold != nil {
		fmt.Printf("  Threshold  %.2f m/s (estimated %s)\n",
			report.Threshold.Speed, humanize.Time(report.Threshold.CreatedAt))
	}
	if report.Efficiency != nil {
		fmt.Printf("  Efficiency %.2f m/min per beat (%+.1f%% vs 4-week baseline)\n",
			report.Efficiency.Current, report.Efficiency.Drift*100)
	}
	if report.Goal != nil {
		fmt.Printf("  Goal       %s on %s (%s)\n",
			raceLabel(report.Goal.Distance), report.Goal.RaceDate.Format(dayLayout),
			humanize.Time(report.Goal.RaceDate))
	}
	if report.Program != nil {
		fmt.Printf("  Program    %d weeks from %s\n",
			report.Program.TotalWeeks, report.Program.StartDate.Format(dayLayout))
	}

	points, err := coach.LoadSeries(cfg.Athlete.ID, c.Int("days"))
	if err != nil {
		return err
	}
	if len(points) > 1 {
		fitness := make([]float64, len(points))
		for i, p := range points {
			fitness[i] = p.Fitness
		}
		fmt.Printf("\nFitness, last %d days\n", len(points))
		fmt.Println(asciigraph.Plot(fitness,
			asciigraph.Height(8),
			asciigraph.Width(60),
			asciigraph.Precision(1),
		))
	}
	return nil
}

func thresholdCommand() *cli.Command {
	return &cli.Command{
		Name:   "threshold",
		Usage:  "Show the threshold estimate history",
		Action: withCoach(showThresholds),
	}
}

func showThresholds(c *cli.Context, coach *service.Coach, cfg config.Config) error {
	estimates, err := coach.ThresholdHistory(cfg.Athlete.ID)
	if err != nil {
		return err
	}
	if len(estimates) == 0 {
		fmt.Println("No threshold estimates yet. Import some hard efforts first.")
		return nil
	}

	fmt.Printf("%-12s  %-9s  %7s  %s\n", "Effective", "Speed", "Basis", "Estimated")
	for _, e := range estimates {
		fmt.Printf("%-12s  %5.2f m/s  %7d  %s\n",
			e.EffectiveFrom.Format(dayLayout), e.Speed, len(e.Basis),
			humanize.Time(e.CreatedAt))
	}
	return nil
}

func configCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write a config file with the default settings",
				Action: func(c *cli.Context) error {
					path := c.String("config")
					if path == "" {
						var err error
						path, err = config.Path()
						if err != nil {
							return err
						}
					}
					if _, err := os.Stat(path); err == nil {
						return fmt.Errorf("config file already exists at %s", path)
					}
					cfg := config.DefaultConfig()
					if err := config.Save(&cfg, path); err != nil {
						return err
					}
					fmt.Printf("Wrote %s\n", path)
					return nil
				},
			},
			{
				Name:  "show",
				Usage: "Print the effective configuration",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					data, err := yaml.Marshal(cfg)
					if err != nil {
						return fmt.Errorf("encoding config: %w", err)
					}
					fmt.Print(string(data))
					return nil
				},
			},
		},
	}
}
