package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "emrflow",
		Usage: "launch, watch and terminate EMR clusters",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the config file. Defaults to the nearest emrflow.yml up from the working directory.",
			},
			&cli.StringFlag{
				Name:    "profile",
				Usage:   "AWS shared config profile.",
				EnvVars: []string{"AWS_PROFILE"},
			},
			&cli.StringFlag{
				Name:  "region",
				Usage: "AWS region.",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "One of [debug,info,warn,error].",
			},
			&cli.BoolFlag{
				Name:  "local",
				Usage: "Launch against an in-memory cluster service instead of EMR. Only valid for launch.",
			},
			&cli.BoolFlag{
				Name:  "preflight",
				Usage: "Check that referenced S3 locations and the EC2 key pair exist before launching.",
			},
		},
		Commands: []*cli.Command{
			launchCommand(),
			stateCommand(),
			waitCommand(),
			addStepCommand(),
			terminateCommand(),
		},
	}
}
