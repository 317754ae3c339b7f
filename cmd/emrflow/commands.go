package main

import (
	"errors"
	"fmt"

	"github.com/guseggert/emrflow/cluster"
	"github.com/urfave/cli/v2"
)

var waitFlags = []cli.Flag{
	&cli.DurationFlag{
		Name:  "timeout",
		Usage: "How long to wait for the cluster to be ready.",
		Value: cluster.DefaultWaitTimeout,
	},
	&cli.DurationFlag{
		Name:  "poll-interval",
		Usage: "How often to check the cluster state.",
		Value: cluster.DefaultPollInterval,
	},
}

var scriptFlags = []cli.Flag{
	&cli.StringSliceFlag{
		Name:  "script",
		Usage: "Hive script to run as a step. Repeatable; steps run in the given order.",
	},
	&cli.StringFlag{
		Name:  "staging-bucket",
		Usage: "S3 bucket to upload local script files to.",
	},
	&cli.StringFlag{
		Name:  "on-failure",
		Usage: "Action when a script step fails. One of [continue,terminate_job_flow,terminate_cluster,cancel_and_wait].",
		Value: "continue",
	},
}

func launchCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "Cluster name.", Value: "default-emr-cluster"},
		&cli.BoolFlag{Name: "keep-alive", Usage: "Keep the cluster running once it has no steps left."},
		&cli.UintFlag{Name: "instance-count", Usage: "Number of instances."},
		&cli.StringFlag{Name: "master-type", Usage: "Master instance type."},
		&cli.StringFlag{Name: "slave-type", Usage: "Slave instance type."},
		&cli.StringFlag{Name: "log-uri", Usage: "Where the cluster writes its logs."},
		&cli.StringFlag{Name: "key-pair", Usage: "EC2 key pair name."},
		&cli.StringFlag{Name: "release-label", Usage: "EMR release label, e.g. emr-6.15.0."},
		&cli.StringFlag{Name: "hive-site", Usage: "Location of the hive-site.xml installed by --hive."},
		&cli.BoolFlag{Name: "hive", Usage: "Install Hive and its site configuration before the scripts run."},
		&cli.BoolFlag{Name: "async", Usage: "Return once the cluster is created, without waiting for it to be ready."},
	}
	flags = append(flags, scriptFlags...)
	flags = append(flags, waitFlags...)

	return &cli.Command{
		Name:  "launch",
		Usage: "create a cluster and wait for it to be ready",
		Flags: flags,
		Action: func(c *cli.Context) error {
			e, err := setup(c, true)
			if err != nil {
				return err
			}
			defer e.sync()

			override := e.cfg.Cluster.Merge(cluster.Config{
				InstanceCount:      c.Uint("instance-count"),
				MasterInstanceType: c.String("master-type"),
				SlaveInstanceType:  c.String("slave-type"),
				LogURI:             c.String("log-uri"),
				KeyPairName:        c.String("key-pair"),
				ReleaseLabel:       c.String("release-label"),
			})
			if c.IsSet("hive-site") {
				override.Aux[cluster.AuxHiveSite] = c.String("hive-site")
			}
			spec := cluster.NewSpec(c.String("name"), c.Bool("keep-alive"), override)
			if c.Bool("hive") {
				spec.WithEngineBootstrap()
			}
			action, err := cluster.ParseActionOnFailure(c.String("on-failure"))
			if err != nil {
				return err
			}
			for i, script := range c.StringSlice("script") {
				loc, err := e.scriptLocation(c.Context, script, c.String("staging-bucket"))
				if err != nil {
					return err
				}
				spec.WithScriptedJob(fmt.Sprintf("%s-script-%d", spec.Name(), i+1), loc, action)
			}

			e.manager.WithWaitConfig(e.waitConfig(c))
			h, err := e.manager.Launch(c.Context, spec, c.Bool("async"))
			if h != nil {
				fmt.Fprintln(c.App.Writer, h.ID())
			}
			return err
		},
	}
}

func requireIDs(c *cli.Context, n int) error {
	if c.NArg() < n {
		return errors.New("cluster ID required")
	}
	return nil
}

func stateCommand() *cli.Command {
	return &cli.Command{
		Name:      "state",
		Usage:     "print the state of a cluster",
		ArgsUsage: "ID",
		Action: func(c *cli.Context) error {
			if err := requireIDs(c, 1); err != nil {
				return err
			}
			e, err := setup(c, false)
			if err != nil {
				return err
			}
			defer e.sync()
			st, err := e.manager.Attach(c.Args().First()).State(c.Context)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, st)
			return nil
		},
	}
}

func waitCommand() *cli.Command {
	return &cli.Command{
		Name:      "wait",
		Usage:     "wait for a cluster to be ready",
		ArgsUsage: "ID",
		Flags:     waitFlags,
		Action: func(c *cli.Context) error {
			if err := requireIDs(c, 1); err != nil {
				return err
			}
			e, err := setup(c, false)
			if err != nil {
				return err
			}
			defer e.sync()
			return e.manager.Attach(c.Args().First()).WaitUntilReady(c.Context, e.waitConfig(c))
		},
	}
}

func addStepCommand() *cli.Command {
	return &cli.Command{
		Name:      "add-step",
		Usage:     "run scripts on a running cluster",
		ArgsUsage: "ID",
		Flags:     scriptFlags,
		Action: func(c *cli.Context) error {
			if err := requireIDs(c, 1); err != nil {
				return err
			}
			e, err := setup(c, false)
			if err != nil {
				return err
			}
			defer e.sync()

			h := e.manager.Attach(c.Args().First())
			action, err := cluster.ParseActionOnFailure(c.String("on-failure"))
			if err != nil {
				return err
			}
			var steps []cluster.Step
			for i, script := range c.StringSlice("script") {
				loc, err := e.scriptLocation(c.Context, script, c.String("staging-bucket"))
				if err != nil {
					return err
				}
				step, err := cluster.ScriptedJobStep(e.cfg.Cluster, fmt.Sprintf("%s-script-%d", h.ID(), i+1), loc, action)
				if err != nil {
					return err
				}
				steps = append(steps, step)
			}
			if len(steps) == 0 {
				return errors.New("at least one --script is required")
			}
			return h.AddSteps(c.Context, steps...)
		},
	}
}

func terminateCommand() *cli.Command {
	return &cli.Command{
		Name:      "terminate",
		Usage:     "terminate clusters",
		ArgsUsage: "ID...",
		Action: func(c *cli.Context) error {
			if err := requireIDs(c, 1); err != nil {
				return err
			}
			e, err := setup(c, false)
			if err != nil {
				return err
			}
			defer e.sync()
			for _, id := range c.Args().Slice() {
				e.manager.Attach(id)
			}
			return e.manager.TerminateAll(c.Context)
		},
	}
}
