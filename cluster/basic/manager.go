package basic

import (
	"context"

	"github.com/guseggert/emrflow/cluster"
	"go.uber.org/zap"
)

// Manager wraps a cluster.Manager with a bound context and Must* variants.
// Script and test authors can use this to avoid threading contexts and errors through every call.
type Manager struct {
	Manager *cluster.Manager
	Log     *zap.SugaredLogger
	Ctx     context.Context
}

func New(svc cluster.Service) *Manager {
	return &Manager{
		Manager: cluster.NewManager(svc).WithLogger(defaultLogger),
		Log:     defaultLogger,
		Ctx:     context.Background(),
	}
}

func (m *Manager) WithLogger(l *zap.SugaredLogger) *Manager {
	m.Log = l.Named(loggerName)
	m.Manager.WithLogger(l)
	return m
}

func (m *Manager) Context(ctx context.Context) *Manager {
	newM := *m
	newM.Ctx = ctx
	return &newM
}

// Launch launches the spec and waits for the cluster to be ready.
func (m *Manager) Launch(spec *cluster.Spec) (*Cluster, error) {
	h, err := m.Manager.Launch(m.Ctx, spec, false)
	if h == nil {
		return nil, err
	}
	return &Cluster{Handle: h, Ctx: m.Ctx}, err
}

func (m *Manager) MustLaunch(spec *cluster.Spec) *Cluster {
	return Must2(m.Launch(spec))
}

// LaunchAsync launches the spec without waiting.
func (m *Manager) LaunchAsync(spec *cluster.Spec) (*Cluster, error) {
	h, err := m.Manager.Launch(m.Ctx, spec, true)
	if err != nil {
		return nil, err
	}
	return &Cluster{Handle: h, Ctx: m.Ctx}, nil
}

func (m *Manager) MustLaunchAsync(spec *cluster.Spec) *Cluster {
	return Must2(m.LaunchAsync(spec))
}

func (m *Manager) Cleanup() error {
	return m.Manager.TerminateAll(m.Ctx)
}

func (m *Manager) MustCleanup() {
	Must(m.Cleanup())
}

// Cluster wraps a cluster.Handle.
type Cluster struct {
	Handle *cluster.Handle
	Ctx    context.Context
}

func (c *Cluster) Context(ctx context.Context) *Cluster {
	newC := *c
	newC.Ctx = ctx
	return &newC
}

func (c *Cluster) State() (cluster.State, error) {
	return c.Handle.State(c.Ctx)
}

func (c *Cluster) MustState() cluster.State {
	return Must2(c.State())
}

func (c *Cluster) WaitUntilReady(cfg cluster.WaitConfig) error {
	return c.Handle.WaitUntilReady(c.Ctx, cfg)
}

func (c *Cluster) MustWaitUntilReady(cfg cluster.WaitConfig) {
	Must(c.WaitUntilReady(cfg))
}

func (c *Cluster) AddSteps(steps ...cluster.Step) error {
	return c.Handle.AddSteps(c.Ctx, steps...)
}

func (c *Cluster) MustAddSteps(steps ...cluster.Step) {
	Must(c.AddSteps(steps...))
}

func (c *Cluster) Terminate() error {
	return c.Handle.Terminate(c.Ctx)
}

func (c *Cluster) MustTerminate() {
	Must(c.Terminate())
}
