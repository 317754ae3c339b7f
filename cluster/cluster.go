package cluster

import "context"

// Service is the remote cluster-management service.
// Implementations translate these calls to a concrete provider (see the aws and local packages).
// The interface is designed for minimal implementation footprint; Manager and Handle add the lifecycle logic on top.
type Service interface {
	// CreateCluster submits a cluster creation request and returns the identifier assigned by the service.
	// Creation is not idempotent, so callers should not blindly retry it.
	CreateCluster(ctx context.Context, req CreateRequest) (string, error)

	// DescribeClusterState returns the current state of the cluster as reported by the service.
	DescribeClusterState(ctx context.Context, id string) (State, error)

	// TerminateCluster asks the service to shut down the cluster.
	TerminateCluster(ctx context.Context, id string) error

	// AddSteps enqueues steps on an existing cluster.
	AddSteps(ctx context.Context, id string, steps []StepDescriptor) error
}

// Validator is implemented by services that can check a request before it is submitted,
// e.g. that referenced storage locations exist.
type Validator interface {
	Validate(ctx context.Context, req CreateRequest) error
}

// Instances describes the machines of a cluster.
type Instances struct {
	Count             uint
	MasterType        string
	SlaveType         string
	KeepAliveWhenIdle bool
	KeyPairName       string
}

// StepDescriptor is the wire form of a Step.
type StepDescriptor = Step

// CreateRequest is a finalized cluster creation request.
type CreateRequest struct {
	Name         string
	LogURI       string
	ReleaseLabel string
	ServiceRole  string
	JobFlowRole  string
	Instances    Instances
	Steps        []StepDescriptor
}
