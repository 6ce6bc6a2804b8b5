package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"

	"runcoach/internal/config"
	"runcoach/internal/service"
	"runcoach/internal/store"
)

func goalCommand() *cli.Command {
	return &cli.Command{
		Name:  "goal",
		Usage: "Manage the race goal",
		Subcommands: []*cli.Command{
			{
				Name:  "set",
				Usage: "Set the active race goal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "race",
						Usage:    "race distance: 5k, 10k, half, marathon, 50k, 50mi, 100k, 100mi",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "date",
						Usage:    "race date (YYYY-MM-DD)",
						Required: true,
					},
					&cli.DurationFlag{
						Name:  "target",
						Usage: "target finish time, e.g. 1h45m",
					},
				},
				Action: withCoach(setGoal),
			},
			{
				Name:   "show",
				Usage:  "Show the active race goal",
				Action: withCoach(showGoal),
			},
		},
	}
}

func setGoal(c *cli.Context, coach *service.Coach, cfg config.Config) error {
	race, err := parseRace(c.String("race"))
	if err != nil {
		return err
	}
	date, err := parseDay(c.String("date"))
	if err != nil {
		return err
	}
	var target *int
	if c.IsSet("target") {
		seconds := int(c.Duration("target").Seconds())
		target = &seconds
	}

	goal, err := coach.SetGoal(cfg.Athlete.ID, race, date, target)
	if err != nil {
		return err
	}
	fmt.Printf("Goal set: %s on %s (%s)\n",
		goal.Distance, goal.RaceDate.Format(dayLayout), humanize.Time(goal.RaceDate))
	if speed := goal.TargetSpeed(); speed > 0 {
		fmt.Printf("Target %s implies %.2f m/s\n", formatDuration(*goal.TargetTime), speed)
	}
	return nil
}

func showGoal(c *cli.Context, coach *service.Coach, cfg config.Config) error {
	goal, err := coach.ActiveGoal(cfg.Athlete.ID)
	if errors.Is(err, store.ErrNoActiveGoal) {
		fmt.Println("No active goal. Set one with: runcoach goal set")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s on %s (%s)\n",
		raceLabel(goal.Distance), goal.RaceDate.Format(dayLayout), humanize.Time(goal.RaceDate))
	if goal.TargetTime != nil {
		fmt.Printf("Target %s (%.2f m/s)\n", formatDuration(*goal.TargetTime), goal.TargetSpeed())
	}

	record, err := coach.RecordAt(cfg.Athlete.ID, goal.Distance)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("Current record %s, set %s\n",
		formatDuration(record.Seconds), humanize.Time(record.AchievedAt))
	return nil
}

func parseRace(s string) (store.RaceDistance, error) {
	switch strings.ToLower(s) {
	case "5k":
		return store.Race5K, nil
	case "10k":
		return store.Race10K, nil
	case "half", "half-marathon", "half_marathon":
		return store.RaceHalf, nil
	case "marathon":
		return store.RaceMarathon, nil
	case "50k":
		return store.Race50K, nil
	case "50mi", "50-mile", "50_mile":
		return store.Race50Mile, nil
	case "100k":
		return store.Race100K, nil
	case "100mi", "100-mile", "100_mile":
		return store.Race100Mile, nil
	}
	return "", fmt.Errorf("unknown race distance %q (5k, 10k, half, marathon, 50k, 50mi, 100k, 100mi)", s)
}

func planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Manage the training program",
		Subcommands: []*cli.Command{
			{
				Name:   "generate",
				Usage:  "Generate a program for the active goal",
				Action: withCoach(generatePlan),
			},
			{
				Name:  "show",
				Usage: "Show the active program",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "week",
						Usage: "week to detail; defaults to the current week",
					},
				},
				Action: withCoach(showPlan),
			},
		},
	}
}

func generatePlan(c *cli.Context, coach *service.Coach, cfg config.Config) error {
	program, err := coach.GenerateProgram(c.Context, cfg.Athlete.ID)
	if err != nil {
		return err
	}

	phases := program.PhaseWeeks()
	fmt.Printf("Generated a %d-week program starting %s\n",
		program.TotalWeeks, program.StartDate.Format(dayLayout))
	fmt.Printf("Phases: base %d, build %d, peak %d, taper %d\n",
		phases[store.PhaseBase], phases[store.PhaseBuild],
		phases[store.PhasePeak], phases[store.PhaseTaper])
	fmt.Println("Review it with: runcoach plan show")
	return nil
}

func showPlan(c *cli.Context, coach *service.Coach, cfg config.Config) error {
	program, err := coach.ActiveProgram(cfg.Athlete.ID)
	if errors.Is(err, store.ErrNoActiveProgram) {
		fmt.Println("No active program. Generate one with: runcoach plan generate")
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("Program: %d weeks starting %s (generation %d)\n\n",
		program.TotalWeeks, program.StartDate.Format(dayLayout), program.Generation)

	fmt.Printf("%4s  %-6s  %10s  %s\n", "Week", "Phase", "Volume", "Starts")
	for _, w := range program.Weeks {
		note := ""
		if w.Recovery {
			note = "  recovery"
		}
		fmt.Printf("%4d  %-6s  %8s m  %s%s\n",
			w.Number, w.Phase, humanize.Comma(int64(w.TargetVolume)),
			w.StartDate.Format(dayLayout), note)
	}

	number := c.Int("week")
	if number == 0 {
		number = currentWeek(program, time.Now().UTC())
	}
	if number < 1 || number > len(program.Weeks) {
		return fmt.Errorf("week %d out of range 1-%d", number, len(program.Weeks))
	}
	week := program.Weeks[number-1]

	fmt.Printf("\nWeek %d (%s):\n", week.Number, week.Phase)
	for _, pw := range week.Workouts {
		done := " "
		if pw.Completed {
			done = "x"
		}
		fmt.Printf("  [%s] %s  %-8s  %7s m  zone %d @ %.2f m/s  %7s  %s\n",
			done, pw.Date.Format("Mon Jan 02"), pw.Type,
			humanize.Comma(int64(pw.TargetDistance)), pw.Zone, pw.TargetSpeed,
			formatDuration(pw.TargetDuration), pw.Description)
	}
	return nil
}

// currentWeek maps now to a 1-based week number, clamped to the program.
func currentWeek(p *store.TrainingProgram, now time.Time) int {
	days := int(now.Sub(p.StartDate).Hours() / 24)
	week := days/7 + 1
	if week < 1 {
		week = 1
	}
	if week > p.TotalWeeks {
		week = p.TotalWeeks
	}
	return week
}

func evaluateCommand() *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "Evaluate planned workouts whose match window has closed",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "as-of",
				Usage: "evaluate as of this date (YYYY-MM-DD), defaults to today",
			},
		},
		Action: withCoach(evaluateDue),
	}
}

func evaluateDue(c *cli.Context, coach *service.Coach, cfg config.Config) error {
	asOf := time.Now().UTC()
	if s := c.String("as-of"); s != "" {
		var err error
		asOf, err = parseDay(s)
		if err != nil {
			return err
		}
	}

	program, err := coach.ActiveProgram(cfg.Athlete.ID)
	if errors.Is(err, store.ErrNoActiveProgram) {
		fmt.Println("No active program. Generate one with: runcoach plan generate")
		return nil
	}
	if err != nil {
		return err
	}

	results, err := coach.EvaluateDue(c.Context, cfg.Athlete.ID, asOf)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("No planned workouts due for evaluation")
	} else {
		planned := plannedByID(program)
		for _, r := range results {
			pw, ok := planned[r.PlannedID]
			if !ok {
				continue
			}
			if r.Score != nil {
				fmt.Printf("  %s  %-8s  %-9s  score %3.0f\n",
					pw.Date.Format(dayLayout), pw.Type, r.Verdict, *r.Score)
			} else {
				fmt.Printf("  %s  %-8s  %-9s\n", pw.Date.Format(dayLayout), pw.Type, r.Verdict)
			}
		}
	}

	summary, err := coach.ProgramAdherence(program.ID)
	if err != nil {
		return err
	}
	if summary.Evaluated > 0 {
		fmt.Printf("Adherence: %d evaluated, %d matched, %d missed",
			summary.Evaluated, summary.Matched, summary.Missed)
		if summary.Matched > 0 {
			fmt.Printf(", average score %.0f", summary.AvgScore)
		}
		fmt.Println()
	}
	return nil
}

func plannedByID(p *store.TrainingProgram) map[string]store.PlannedWorkout {
	out := make(map[string]store.PlannedWorkout)
	for _, w := range p.Weeks {
		for _, pw := range w.Workouts {
			out[pw.ID] = pw
		}
	}
	return out
}
