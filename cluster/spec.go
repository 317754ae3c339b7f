package cluster

import (
	"fmt"
	"strings"
)

const defaultSpecName = "default-emr-cluster"

// Spec accumulates the configuration and ordered steps of a cluster to launch.
//
// The With* methods mutate the spec and return the same instance for chaining.
// They never touch the network. The first invalid call is recorded and reported by Err,
// and by Manager.Launch before anything is submitted; an invalid call leaves the steps unchanged.
// Once launched, a spec is frozen and further mutation is rejected the same way.
// A Spec is not goroutine-safe.
type Spec struct {
	name      string
	keepAlive bool
	config    Config
	steps     []Step

	err    error
	frozen bool
}

// NewSpec creates a spec whose config is override merged over DefaultConfig.
func NewSpec(name string, keepAlive bool, override Config) *Spec {
	if name == "" {
		name = defaultSpecName
	}
	return &Spec{
		name:      name,
		keepAlive: keepAlive,
		config:    DefaultConfig().Merge(override),
	}
}

func (s *Spec) Name() string { return s.name }

func (s *Spec) KeepAlive() bool { return s.keepAlive }

// Config returns a copy of the merged config.
func (s *Spec) Config() Config { return s.config.Merge(Config{}) }

// Steps returns a copy of the accumulated steps, in the order they were added.
func (s *Spec) Steps() []Step { return cloneSteps(s.steps) }

// Err returns the first configuration error recorded by a With* call.
func (s *Spec) Err() error { return s.err }

// Frozen reports whether the spec has been launched.
func (s *Spec) Frozen() bool { return s.frozen }

func (s *Spec) fail(err error) *Spec {
	if s.err == nil {
		s.err = err
	}
	return s
}

func (s *Spec) mutable() bool {
	if s.frozen {
		s.fail(&ConfigurationError{Field: "spec", Msg: fmt.Sprintf("spec %q was already launched", s.name)})
		return false
	}
	return true
}

// WithKeepAlive sets whether the cluster stays up once it has no more steps to run.
func (s *Spec) WithKeepAlive(keepAlive bool) *Spec {
	if !s.mutable() {
		return s
	}
	s.keepAlive = keepAlive
	return s
}

// WithConfig merges override into the spec's config.
func (s *Spec) WithConfig(override Config) *Spec {
	if !s.mutable() {
		return s
	}
	s.config = s.config.Merge(override)
	return s
}

// WithStep appends a step.
func (s *Spec) WithStep(step Step) *Spec {
	if !s.mutable() {
		return s
	}
	if err := step.Validate(); err != nil {
		return s.fail(err)
	}
	s.steps = append(s.steps, step.clone())
	return s
}

// WithEngineBootstrap appends the steps that install Hive and its site configuration.
// Both steps terminate the cluster on failure. Calling it twice appends the steps twice.
func (s *Spec) WithEngineBootstrap() *Spec {
	if !s.mutable() {
		return s
	}
	siteFile := strings.TrimSpace(s.config.Aux[AuxHiveSite])
	if siteFile == "" {
		return s.fail(&ConfigurationError{Field: "aux." + AuxHiveSite, Msg: "hive site file location is required"})
	}
	lib := s.libs()
	s.steps = append(s.steps,
		Step{
			Name:            "emr-hive-setup",
			ActionOnFailure: TerminateJobFlow,
			Jar:             lib.scriptRunner(),
			Args:            lib.hiveArgs("--install-hive", "--hive-versions", "latest"),
		},
		Step{
			Name:            "emr-hive-site-setup",
			ActionOnFailure: TerminateJobFlow,
			Jar:             lib.scriptRunner(),
			Args:            lib.hiveArgs("--install-hive-site", "--hive-site", siteFile, "--hive-versions", "latest"),
		},
	)
	return s
}

// WithScriptedJob appends a step that runs the Hive script at scriptLocation.
// The step's failure action defaults to Continue.
func (s *Spec) WithScriptedJob(name, scriptLocation string, action ...ActionOnFailure) *Spec {
	if !s.mutable() {
		return s
	}
	scriptLocation = strings.TrimSpace(scriptLocation)
	if scriptLocation == "" {
		return s.fail(&ConfigurationError{Field: "script_location", Msg: fmt.Sprintf("scripted job %q has no script location", name)})
	}
	a := Continue
	if len(action) > 0 {
		a = action[0]
	}
	step := Step{
		Name:            name,
		ActionOnFailure: a,
		Jar:             s.libs().scriptRunner(),
		Args:            s.libs().hiveArgs("--hive-versions", "latest", "--run-hive-script", "--args", "-f", scriptLocation),
	}
	return s.WithStep(step)
}

// ScriptedJobStep builds the step WithScriptedJob would append, for submission to an already running cluster.
func ScriptedJobStep(config Config, name, scriptLocation string, action ActionOnFailure) (Step, error) {
	sp := NewSpec(name, false, config).WithScriptedJob(name, scriptLocation, action)
	if err := sp.Err(); err != nil {
		return Step{}, err
	}
	return sp.steps[0], nil
}

// Request returns the creation request for the spec. The result shares no memory with the spec.
func (s *Spec) Request() CreateRequest {
	return CreateRequest{
		Name:         s.name,
		LogURI:       s.config.LogURI,
		ReleaseLabel: s.config.ReleaseLabel,
		ServiceRole:  s.config.ServiceRole,
		JobFlowRole:  s.config.JobFlowRole,
		Instances: Instances{
			Count:             s.config.InstanceCount,
			MasterType:        s.config.MasterInstanceType,
			SlaveType:         s.config.SlaveInstanceType,
			KeepAliveWhenIdle: s.keepAlive,
			KeyPairName:       s.config.KeyPairName,
		},
		Steps: cloneSteps(s.steps),
	}
}

// freeze validates and locks the spec, returning its request.
func (s *Spec) freeze() (CreateRequest, error) {
	if s.err != nil {
		return CreateRequest{}, s.err
	}
	if s.frozen {
		return CreateRequest{}, &ConfigurationError{Field: "spec", Msg: fmt.Sprintf("spec %q was already launched", s.name)}
	}
	if s.config.InstanceCount == 0 {
		return CreateRequest{}, &ConfigurationError{Field: "instance_count", Msg: "must be at least 1"}
	}
	s.frozen = true
	return s.Request(), nil
}

type libs string

func (s *Spec) libs() libs {
	base := strings.TrimSuffix(s.config.Aux[AuxLibsBase], "/")
	if base == "" {
		base = strings.TrimSuffix(DefaultConfig().Aux[AuxLibsBase], "/")
	}
	return libs(base)
}

func (l libs) scriptRunner() string {
	return string(l) + "/script-runner/script-runner.jar"
}

func (l libs) hiveArgs(args ...string) []string {
	out := []string{string(l) + "/hive/hive-script", "--base-path", string(l) + "/hive/"}
	return append(out, args...)
}
