// Command fixtures prints a round-robin schedule or a standings table from local files,
// without a database or message bus.
package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	rosterFlag := &cli.StringFlag{
		Name:     "roster",
		Aliases:  []string{"r"},
		Usage:    "file with one team name per line",
		Required: true,
	}

	return &cli.App{
		Name:  "fixtures",
		Usage: "offline schedule and standings tool",
		Commands: []*cli.Command{
			{
				Name:  "schedule",
				Usage: "print the double round-robin schedule for a roster",
				Flags: []cli.Flag{
					rosterFlag,
					&cli.IntFlag{Name: "legs", Value: 2, Usage: "times each pair meets"},
					&cli.StringFlag{Name: "xlsx", Usage: "also write the schedule to this workbook"},
				},
				Action: func(c *cli.Context) error {
					teams, err := readRoster(c.String("roster"))
					if err != nil {
						return err
					}
					return printSchedule(c.App.Writer, teams, c.Int("legs"), c.String("xlsx"))
				},
			},
			{
				Name:  "table",
				Usage: "build the standings table from a results workbook",
				Flags: []cli.Flag{
					rosterFlag,
					&cli.StringFlag{Name: "results", Usage: "results workbook (.xlsx)", Required: true},
					&cli.StringFlag{Name: "xlsx", Usage: "also write the table to this workbook"},
					&cli.StringFlag{Name: "chart", Usage: "also render the table to this PNG"},
				},
				Action: func(c *cli.Context) error {
					teams, err := readRoster(c.String("roster"))
					if err != nil {
						return err
					}
					data, err := os.ReadFile(c.String("results"))
					if err != nil {
						return err
					}
					return printTable(c.App.Writer, teams, data, tableOutputs{
						workbook: c.String("xlsx"),
						chart:    c.String("chart"),
					})
				},
			},
		},
	}
}
