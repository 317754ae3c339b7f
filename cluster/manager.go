package cluster

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Manager launches clusters on a Service and keeps track of every cluster it launched,
// so that they can be torn down together.
type Manager struct {
	svc   Service
	log   *zap.SugaredLogger
	wait  WaitConfig
	sleep SleepFunc

	handlesMut sync.Mutex
	handles    []*Handle
}

func NewManager(svc Service) *Manager {
	return &Manager{
		svc:   svc,
		log:   defaultLogger.Named("cluster_manager"),
		sleep: sleepCtx,
	}
}

func (m *Manager) WithLogger(l *zap.SugaredLogger) *Manager {
	m.log = l.Named("cluster_manager")
	return m
}

// WithWaitConfig sets the bounds used when Launch blocks until the cluster is ready.
func (m *Manager) WithWaitConfig(w WaitConfig) *Manager {
	m.wait = w
	return m
}

// WithSleep replaces the function used to pause between state polls.
func (m *Manager) WithSleep(f SleepFunc) *Manager {
	m.sleep = f
	return m
}

// Launch submits the spec and registers a handle for the new cluster.
// The spec is frozen by this call, even if creation fails.
//
// Unless async is set, Launch then blocks until the cluster is ready. If that wait fails,
// the handle is returned along with the error; it stays registered so TerminateAll still covers it.
//
// Creation is never retried, since resubmitting can create duplicate clusters.
func (m *Manager) Launch(ctx context.Context, spec *Spec, async bool) (*Handle, error) {
	req, err := spec.freeze()
	if err != nil {
		return nil, err
	}

	log := m.log.With("cluster_name", req.Name, "launch_id", uuid.NewString())

	if v, ok := m.svc.(Validator); ok {
		if err := v.Validate(ctx, req); err != nil {
			if isConfigurationError(err) {
				return nil, err
			}
			return nil, fmt.Errorf("validating cluster %q: %w", req.Name, err)
		}
	}

	log.Infow("launching cluster", "instance_count", req.Instances.Count, "steps", len(req.Steps))
	id, err := m.svc.CreateCluster(ctx, req)
	if err != nil {
		return nil, &LaunchFailedError{Name: req.Name, Err: err}
	}

	h := newHandle(m.svc, id, req.Name, m.log, m.sleep)
	m.register(h)
	log.Infow("launched cluster", "cluster_id", id)

	if async {
		return h, nil
	}
	return h, h.WaitUntilReady(ctx, m.wait)
}

// isConfigurationError reports whether err, and every error combined into it, is a *ConfigurationError.
func isConfigurationError(err error) bool {
	for _, e := range multierr.Errors(err) {
		var cfgErr *ConfigurationError
		if !errors.As(e, &cfgErr) {
			return false
		}
	}
	return true
}

// Attach registers a handle for a cluster that was created elsewhere.
func (m *Manager) Attach(id string) *Handle {
	h := newHandle(m.svc, id, "", m.log, m.sleep)
	m.register(h)
	return h
}

func (m *Manager) register(h *Handle) {
	m.handlesMut.Lock()
	defer m.handlesMut.Unlock()
	m.handles = append(m.handles, h)
}

// Handles returns the registered handles in launch order.
func (m *Manager) Handles() []*Handle {
	m.handlesMut.Lock()
	defer m.handlesMut.Unlock()
	return append([]*Handle(nil), m.handles...)
}

// TerminateAll terminates every registered cluster in launch order.
// A failure does not stop the others from being attempted; the failures are
// returned combined as the *TerminationFailedError values of Handle.Terminate (see multierr.Errors).
func (m *Manager) TerminateAll(ctx context.Context) error {
	var errs error
	for _, h := range m.Handles() {
		if err := h.Terminate(ctx); err != nil {
			m.log.Warnw("failed to terminate cluster", "cluster_id", h.ID(), "error", err)
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}
