package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/guseggert/emrflow/cluster"
	"github.com/guseggert/emrflow/cluster/aws"
	"github.com/guseggert/emrflow/cluster/local"
	"github.com/guseggert/emrflow/internal/config"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// env is what every command needs, built from the global flags and the config file.
type env struct {
	cfg     *config.Config
	log     *zap.SugaredLogger
	svc     cluster.Service
	emr     *aws.Service
	manager *cluster.Manager
}

func newLogger(level string) (*zap.SugaredLogger, error) {
	lvl := zapcore.InfoLevel
	if level != "" {
		l, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parsing log level: %w", err)
		}
		lvl = l
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l.Sugar(), nil
}

// errLocalLaunchOnly is returned by commands that address an existing cluster when --local is set.
// In-memory clusters do not outlive the process that launched them.
var errLocalLaunchOnly = errors.New("--local only supports launch: in-memory clusters do not outlive the process")

// setup builds the command environment. allowLocal is set only by commands that
// create their own cluster, since --local clusters cannot be addressed by ID later.
func setup(c *cli.Context, allowLocal bool) (*env, error) {
	if c.Bool("local") && !allowLocal {
		return nil, errLocalLaunchOnly
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting wd: %w", err)
	}
	cfg, err := config.Load(c.String("config"), wd)
	if err != nil {
		return nil, err
	}
	if c.IsSet("profile") {
		cfg.Profile = c.String("profile")
	}
	if c.IsSet("region") {
		cfg.Region = c.String("region")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, log: log}
	if c.Bool("local") {
		e.svc = local.NewService().WithLogger(log)
	} else {
		e.emr = aws.NewService().
			WithLogger(log).
			WithProfile(cfg.Profile).
			WithRegion(cfg.Region).
			WithStaticCredentials(cfg.AccessKeyID, cfg.SecretAccessKey)
		if c.Bool("preflight") {
			e.emr.WithPreflight()
		}
		e.svc = e.emr
	}
	e.manager = cluster.NewManager(e.svc).
		WithLogger(log).
		WithWaitConfig(cfg.Wait.ClusterWaitConfig())
	return e, nil
}

// scriptLocation returns a location a step can read the script from,
// staging local files to S3 when a staging bucket is given.
func (e *env) scriptLocation(ctx context.Context, script, bucket string) (string, error) {
	if bucket == "" || strings.Contains(script, "://") {
		return script, nil
	}
	if e.emr == nil {
		return "", fmt.Errorf("cannot stage %q without EMR", script)
	}
	return e.emr.StageFile(ctx, bucket, "emrflow/scripts", script)
}

func (e *env) waitConfig(c *cli.Context) cluster.WaitConfig {
	w := e.cfg.Wait.ClusterWaitConfig()
	if c.IsSet("timeout") {
		w.Timeout = c.Duration("timeout")
	}
	if c.IsSet("poll-interval") {
		w.PollInterval = c.Duration("poll-interval")
	}
	return w
}

func (e *env) sync() {
	_ = e.log.Sync()
}
