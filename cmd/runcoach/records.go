package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"runcoach/internal/config"
	"runcoach/internal/service"
	"runcoach/internal/store"
)

func recordsCommand() *cli.Command {
	return &cli.Command{
		Name:   "records",
		Usage:  "Show race records from the workout history",
		Action: withCoach(showRecords),
	}
}

func showRecords(c *cli.Context, coach *service.Coach, cfg config.Config) error {
	records, err := coach.RaceRecords(cfg.Athlete.ID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No race records yet. Records come from workouts whose distance lands on a standard race distance.")
		return nil
	}

	fmt.Printf("%-14s  %9s  %9s  %4s  %s\n", "Distance", "Time", "Speed", "HR", "Date")
	for _, r := range records {
		hr := "-"
		if r.AverageHR != nil {
			hr = fmt.Sprintf("%.0f", *r.AverageHR)
		}
		fmt.Printf("%-14s  %9s  %5.2f m/s  %4s  %s\n",
			raceLabel(r.Distance), formatDuration(r.Seconds), r.Speed, hr,
			r.AchievedAt.Format(dayLayout))
	}
	return nil
}

func predictCommand() *cli.Command {
	return &cli.Command{
		Name:   "predict",
		Usage:  "Project race times from the best recent race",
		Action: withCoach(showPredictions),
	}
}

func showPredictions(c *cli.Context, coach *service.Coach, cfg config.Config) error {
	report, err := coach.RacePredictions(cfg.Athlete.ID)
	if err != nil {
		return err
	}
	if report.Source == nil {
		fmt.Println("No race in the last year to predict from. Race (or run a race distance hard) and re-import.")
		return nil
	}

	s := report.Source
	fmt.Printf("Based on the %s record: %s on %s (%s)\n",
		raceLabel(s.Distance), formatDuration(s.Seconds),
		s.AchievedAt.Format(dayLayout), humanize.Time(s.AchievedAt))
	fmt.Printf("VDOT %.1f, %s\n", report.VDOT, report.Level)
	if report.EFDrift != nil {
		fmt.Printf("Aerobic efficiency %+.1f%% against the 4-week baseline\n", *report.EFDrift*100)
	}

	fmt.Printf("\n%-14s  %9s  %9s  %s\n", "Distance", "Predicted", "Speed", "Confidence")
	for _, p := range report.Predictions {
		fmt.Printf("%-14s  %9s  %5.2f m/s  %s\n",
			raceLabel(p.Distance), formatDuration(p.Seconds), p.Speed, p.Confidence)
	}
	return nil
}

// raceLabel renders a race distance for display.
func raceLabel(d store.RaceDistance) string {
	switch d {
	case store.Race5K:
		return "5K"
	case store.Race10K:
		return "10K"
	case store.RaceHalf:
		return "Half Marathon"
	case store.RaceMarathon:
		return "Marathon"
	case store.Race50K:
		return "50K"
	case store.Race50Mile:
		return "50 Mile"
	case store.Race100K:
		return "100K"
	case store.Race100Mile:
		return "100 Mile"
	}
	return strings.ReplaceAll(string(d), "_", " ")
}
