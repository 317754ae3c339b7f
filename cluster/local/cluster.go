package local

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/guseggert/emrflow/cluster"
	"go.uber.org/zap"
)

// DefaultLifecycle is the sequence of states a new cluster goes through, one per state query.
var DefaultLifecycle = []cluster.State{
	cluster.StateStarting,
	cluster.StateBootstrapping,
	cluster.StateRunning,
	cluster.StateWaiting,
}

// Cluster is the bookkeeping of one simulated cluster.
type Cluster struct {
	ID      string
	Request cluster.CreateRequest
	Steps   []cluster.StepDescriptor

	lifecycle []cluster.State
	state     cluster.State
}

// Service is an in-memory cluster.Service.
// Clusters advance one state along their lifecycle every time their state is queried,
// and stay in the last state of the lifecycle.
// Nothing is actually provisioned, which makes it suitable for fast-feedback tests and dry runs.
type Service struct {
	Log       *zap.SugaredLogger
	Lifecycle []cluster.State

	// CreateErr and TerminateErr, when set, inject failures. TerminateErr is keyed by cluster ID.
	CreateErr    error
	TerminateErr map[string]error

	mut      sync.Mutex
	clusters map[string]*Cluster
	order    []string
}

func NewService() *Service {
	l, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("error constructing default logger: %s", err))
	}
	return &Service{
		Log:          l.Sugar().Named("local_service"),
		Lifecycle:    DefaultLifecycle,
		TerminateErr: map[string]error{},
		clusters:     map[string]*Cluster{},
	}
}

func (s *Service) WithLogger(l *zap.SugaredLogger) *Service {
	s.Log = l.Named("local_service")
	return s
}

// WithLifecycle sets the state sequence of clusters created from now on.
func (s *Service) WithLifecycle(states ...cluster.State) *Service {
	s.Lifecycle = states
	return s
}

func newID() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "j-" + id[:13]
}

func (s *Service) CreateCluster(ctx context.Context, req cluster.CreateRequest) (string, error) {
	s.mut.Lock()
	defer s.mut.Unlock()
	if s.CreateErr != nil {
		return "", s.CreateErr
	}
	lifecycle := append([]cluster.State(nil), s.Lifecycle...)
	if len(lifecycle) == 0 {
		lifecycle = append(lifecycle, DefaultLifecycle...)
	}
	// a cluster that isn't kept alive shuts down after its steps
	if !req.Instances.KeepAliveWhenIdle && lifecycle[len(lifecycle)-1] == cluster.StateWaiting {
		lifecycle = append(lifecycle[:len(lifecycle)-1], cluster.StateTerminating, cluster.StateTerminated)
	}
	c := &Cluster{
		ID:        newID(),
		Request:   req,
		Steps:     append([]cluster.StepDescriptor(nil), req.Steps...),
		lifecycle: lifecycle,
	}
	s.clusters[c.ID] = c
	s.order = append(s.order, c.ID)
	s.Log.Infow("created cluster", "cluster_id", c.ID, "cluster_name", req.Name, "steps", len(req.Steps))
	return c.ID, nil
}

func (s *Service) get(id string) (*Cluster, error) {
	c, ok := s.clusters[id]
	if !ok {
		return nil, fmt.Errorf("cluster %q not found", id)
	}
	return c, nil
}

func (s *Service) DescribeClusterState(ctx context.Context, id string) (cluster.State, error) {
	s.mut.Lock()
	defer s.mut.Unlock()
	c, err := s.get(id)
	if err != nil {
		return "", err
	}
	if len(c.lifecycle) > 0 {
		c.state = c.lifecycle[0]
		if len(c.lifecycle) > 1 {
			c.lifecycle = c.lifecycle[1:]
		}
	}
	return c.state, nil
}

func (s *Service) TerminateCluster(ctx context.Context, id string) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	c, err := s.get(id)
	if err != nil {
		return err
	}
	if err := s.TerminateErr[id]; err != nil {
		return err
	}
	c.state = cluster.StateTerminated
	c.lifecycle = []cluster.State{cluster.StateTerminated}
	s.Log.Infow("terminated cluster", "cluster_id", id)
	return nil
}

func (s *Service) AddSteps(ctx context.Context, id string, steps []cluster.StepDescriptor) error {
	s.mut.Lock()
	defer s.mut.Unlock()
	c, err := s.get(id)
	if err != nil {
		return err
	}
	if c.state.Terminal() {
		return fmt.Errorf("cluster %q is %s", id, c.state)
	}
	c.Steps = append(c.Steps, steps...)
	return nil
}

// Clusters returns a snapshot of the simulated clusters in creation order.
func (s *Service) Clusters() []Cluster {
	s.mut.Lock()
	defer s.mut.Unlock()
	var out []Cluster
	for _, id := range s.order {
		c := *s.clusters[id]
		c.Steps = append([]cluster.StepDescriptor(nil), c.Steps...)
		c.lifecycle = nil
		out = append(out, c)
	}
	return out
}
