package cluster

import (
	"fmt"
	"strings"
)

// ActionOnFailure is the policy applied to the cluster when a step fails.
type ActionOnFailure string

const (
	Continue         ActionOnFailure = "CONTINUE"
	TerminateJobFlow ActionOnFailure = "TERMINATE_JOB_FLOW"
	TerminateCluster ActionOnFailure = "TERMINATE_CLUSTER"
	CancelAndWait    ActionOnFailure = "CANCEL_AND_WAIT"
)

func (a ActionOnFailure) valid() bool {
	switch a {
	case Continue, TerminateJobFlow, TerminateCluster, CancelAndWait:
		return true
	}
	return false
}

// ParseActionOnFailure parses a policy name, case-insensitively.
func ParseActionOnFailure(s string) (ActionOnFailure, error) {
	a := ActionOnFailure(strings.ToUpper(strings.TrimSpace(s)))
	if !a.valid() {
		return "", &ConfigurationError{Field: "action_on_failure", Msg: fmt.Sprintf("unsupported action %q", s)}
	}
	return a, nil
}

// Step is one unit of work submitted to a cluster: a jar to run with its arguments.
type Step struct {
	Name            string
	ActionOnFailure ActionOnFailure
	Jar             string
	Args            []string
}

// NewStep builds a validated Step.
func NewStep(name string, action ActionOnFailure, jar string, args ...string) (Step, error) {
	s := Step{
		Name:            name,
		ActionOnFailure: action,
		Jar:             jar,
		Args:            append([]string(nil), args...),
	}
	return s, s.Validate()
}

// Validate checks that the required fields are set.
func (s Step) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ConfigurationError{Field: "step.name", Msg: "must not be empty"}
	}
	if strings.TrimSpace(s.Jar) == "" {
		return &ConfigurationError{Field: "step.jar", Msg: fmt.Sprintf("step %q has no jar location", s.Name)}
	}
	if !s.ActionOnFailure.valid() {
		return &ConfigurationError{Field: "step.action_on_failure", Msg: fmt.Sprintf("step %q has unsupported action %q", s.Name, s.ActionOnFailure)}
	}
	return nil
}

func (s Step) clone() Step {
	s.Args = append([]string(nil), s.Args...)
	return s
}

func cloneSteps(steps []Step) []Step {
	if steps == nil {
		return nil
	}
	out := make([]Step, len(steps))
	for i, s := range steps {
		out[i] = s.clone()
	}
	return out
}
