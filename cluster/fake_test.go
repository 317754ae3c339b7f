package cluster

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// fakeService replays scripted state sequences; the last state of a sequence repeats.
type fakeService struct {
	mut sync.Mutex

	createErr    error
	validateErr  error
	states       map[string][]State
	describeErr  error
	terminateErr map[string]error

	nextID     int
	created    []CreateRequest
	describes  map[string]int
	terminates []string
	addedSteps map[string][]StepDescriptor
	initialSeq []State
}

func newFakeService(seq ...State) *fakeService {
	return &fakeService{
		states:       map[string][]State{},
		terminateErr: map[string]error{},
		describes:    map[string]int{},
		addedSteps:   map[string][]StepDescriptor{},
		initialSeq:   seq,
	}
}

func (f *fakeService) CreateCluster(ctx context.Context, req CreateRequest) (string, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	f.created = append(f.created, req)
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	id := fmt.Sprintf("j-%d", f.nextID)
	f.states[id] = append([]State(nil), f.initialSeq...)
	return id, nil
}

func (f *fakeService) DescribeClusterState(ctx context.Context, id string) (State, error) {
	f.mut.Lock()
	defer f.mut.Unlock()
	f.describes[id]++
	if f.describeErr != nil {
		return "", f.describeErr
	}
	seq := f.states[id]
	if len(seq) == 0 {
		return "", errors.New("no such cluster")
	}
	st := seq[0]
	if len(seq) > 1 {
		f.states[id] = seq[1:]
	}
	return st, nil
}

func (f *fakeService) TerminateCluster(ctx context.Context, id string) error {
	f.mut.Lock()
	defer f.mut.Unlock()
	f.terminates = append(f.terminates, id)
	if err := f.terminateErr[id]; err != nil {
		return err
	}
	f.states[id] = []State{StateTerminated}
	return nil
}

func (f *fakeService) AddSteps(ctx context.Context, id string, steps []StepDescriptor) error {
	f.mut.Lock()
	defer f.mut.Unlock()
	f.addedSteps[id] = append(f.addedSteps[id], steps...)
	return nil
}

type validatingService struct {
	*fakeService
}

func (v validatingService) Validate(ctx context.Context, req CreateRequest) error {
	return v.validateErr
}

// countingSleep records sleeps without blocking.
type countingSleep struct {
	mut    sync.Mutex
	sleeps []time.Duration
}

func (c *countingSleep) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mut.Lock()
	defer c.mut.Unlock()
	c.sleeps = append(c.sleeps, d)
	return nil
}

func (c *countingSleep) count() int {
	c.mut.Lock()
	defer c.mut.Unlock()
	return len(c.sleeps)
}
