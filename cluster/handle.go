package cluster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	DefaultWaitTimeout  = 600 * time.Second
	DefaultPollInterval = 60 * time.Second
)

// WaitConfig bounds WaitUntilReady. Zero fields take the defaults.
type WaitConfig struct {
	Timeout      time.Duration
	PollInterval time.Duration
}

func (w WaitConfig) withDefaults() WaitConfig {
	if w.Timeout <= 0 {
		w.Timeout = DefaultWaitTimeout
	}
	if w.PollInterval <= 0 {
		w.PollInterval = DefaultPollInterval
	}
	return w
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Handle refers to one remote cluster.
// State is never cached: every query goes to the service.
type Handle struct {
	id    string
	name  string
	svc   Service
	log   *zap.SugaredLogger
	sleep SleepFunc

	mut        sync.Mutex
	terminated bool
}

func newHandle(svc Service, id, name string, log *zap.SugaredLogger, sleep SleepFunc) *Handle {
	return &Handle{
		id:    id,
		name:  name,
		svc:   svc,
		log:   log.Named("cluster_handle").With("cluster_id", id),
		sleep: sleep,
	}
}

func (h *Handle) ID() string { return h.id }

func (h *Handle) Name() string { return h.name }

func (h *Handle) String() string {
	return fmt.Sprintf("cluster name=%s id=%s", h.name, h.id)
}

// State fetches the current state of the cluster from the service.
func (h *Handle) State(ctx context.Context) (State, error) {
	st, err := h.svc.DescribeClusterState(ctx, h.id)
	if err != nil {
		return "", fmt.Errorf("describing cluster %s: %w", h.id, err)
	}
	return st, nil
}

// WaitUntilReady polls the cluster state until it is WAITING.
// The state is always checked once before the first sleep, and no further sleep starts
// once the accumulated wait has reached the timeout, so a cluster that never becomes ready
// is polled at most timeout/interval+1 times.
// It returns a *TimeoutError carrying the last observed state when the bound is exhausted,
// and a *UnexpectedStateError if the cluster terminates in the meantime.
func (h *Handle) WaitUntilReady(ctx context.Context, cfg WaitConfig) error {
	cfg = cfg.withDefaults()
	var elapsed time.Duration
	for {
		st, err := h.State(ctx)
		if err != nil {
			return err
		}
		if st.Ready() {
			h.log.Infow("cluster ready", "elapsed", elapsed)
			return nil
		}
		if st.Terminal() {
			return &UnexpectedStateError{ID: h.id, State: st}
		}
		if elapsed >= cfg.Timeout {
			return &TimeoutError{ID: h.id, LastState: st, Elapsed: elapsed}
		}
		h.log.Infow("waiting for cluster to be ready", "state", st, "elapsed", elapsed, "sleep", cfg.PollInterval)
		if err := h.sleep(ctx, cfg.PollInterval); err != nil {
			return fmt.Errorf("waiting for cluster %s: %w", h.id, err)
		}
		elapsed += cfg.PollInterval
	}
}

// AddSteps enqueues steps on the running cluster.
func (h *Handle) AddSteps(ctx context.Context, steps ...Step) error {
	if h.Terminated() {
		return fmt.Errorf("adding steps to cluster %s: %w", h.id, ErrTerminated)
	}
	if len(steps) == 0 {
		return nil
	}
	for _, s := range steps {
		if err := s.Validate(); err != nil {
			return err
		}
	}
	err := h.svc.AddSteps(ctx, h.id, cloneSteps(steps))
	if err != nil {
		return fmt.Errorf("adding steps to cluster %s: %w", h.id, err)
	}
	h.log.Infow("added steps", "count", len(steps))
	return nil
}

// Terminate shuts the cluster down. Terminating an already terminated handle is a no-op.
// A failed call returns a *TerminationFailedError and leaves the handle live so it can be retried.
func (h *Handle) Terminate(ctx context.Context) error {
	h.mut.Lock()
	defer h.mut.Unlock()
	if h.terminated {
		h.log.Debug("cluster already terminated")
		return nil
	}
	if err := h.svc.TerminateCluster(ctx, h.id); err != nil {
		return &TerminationFailedError{ID: h.id, Err: err}
	}
	h.terminated = true
	h.log.Info("terminated cluster")
	return nil
}

// Terminated reports whether Terminate has succeeded on this handle.
func (h *Handle) Terminated() bool {
	h.mut.Lock()
	defer h.mut.Unlock()
	return h.terminated
}
