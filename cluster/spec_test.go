package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepNames(steps []Step) []string {
	var names []string
	for _, s := range steps {
		names = append(names, s.Name)
	}
	return names
}

func TestConfigMergeKeepsDefaults(t *testing.T) {
	def := DefaultConfig()
	merged := def.Merge(Config{InstanceCount: 5})

	assert.Equal(t, uint(5), merged.InstanceCount)
	assert.Equal(t, def.LogURI, merged.LogURI)
	assert.Equal(t, def.MasterInstanceType, merged.MasterInstanceType)
	assert.Equal(t, def.SlaveInstanceType, merged.SlaveInstanceType)
	assert.Equal(t, def.KeyPairName, merged.KeyPairName)
	assert.Equal(t, def.Aux, merged.Aux)
}

func TestConfigMergeAuxByKey(t *testing.T) {
	def := DefaultConfig()
	merged := def.Merge(Config{Aux: map[string]string{AuxHiveSite: "s3://b/site.xml", "extra": "x"}})

	assert.Equal(t, "s3://b/site.xml", merged.Aux[AuxHiveSite])
	assert.Equal(t, def.Aux[AuxLibsBase], merged.Aux[AuxLibsBase])
	assert.Equal(t, "x", merged.Aux["extra"])

	// inputs are untouched
	assert.Equal(t, "s3://sprinklr/conf/hive/hive-site.xml", def.Aux[AuxHiveSite])
	_, ok := def.Aux["extra"]
	assert.False(t, ok)
}

func TestNewSpecDefaults(t *testing.T) {
	s := NewSpec("", true, Config{})
	assert.Equal(t, "default-emr-cluster", s.Name())
	assert.True(t, s.KeepAlive())
	assert.Equal(t, DefaultConfig(), s.Config())
	assert.Empty(t, s.Steps())
	assert.NoError(t, s.Err())
}

func TestStepsKeepCallOrder(t *testing.T) {
	s := NewSpec("ordered", false, Config{}).
		WithScriptedJob("first", "s3://b/1.q").
		WithEngineBootstrap().
		WithScriptedJob("second", "s3://b/2.q", TerminateJobFlow).
		WithScriptedJob("third", "s3://b/3.q")
	require.NoError(t, s.Err())

	assert.Equal(t,
		[]string{"first", "emr-hive-setup", "emr-hive-site-setup", "second", "third"},
		stepNames(s.Steps()),
	)
}

func TestEngineBootstrapSteps(t *testing.T) {
	s := NewSpec("hive", true, Config{Aux: map[string]string{AuxHiveSite: "s3://conf/site.xml"}}).WithEngineBootstrap()
	require.NoError(t, s.Err())

	steps := s.Steps()
	require.Len(t, steps, 2)
	for _, st := range steps {
		assert.Equal(t, TerminateJobFlow, st.ActionOnFailure)
		assert.Equal(t, "s3://us-east-1.elasticmapreduce/libs/script-runner/script-runner.jar", st.Jar)
	}
	assert.Equal(t, []string{
		"s3://us-east-1.elasticmapreduce/libs/hive/hive-script",
		"--base-path", "s3://us-east-1.elasticmapreduce/libs/hive/",
		"--install-hive",
		"--hive-versions", "latest",
	}, steps[0].Args)
	assert.Equal(t, []string{
		"s3://us-east-1.elasticmapreduce/libs/hive/hive-script",
		"--base-path", "s3://us-east-1.elasticmapreduce/libs/hive/",
		"--install-hive-site", "--hive-site", "s3://conf/site.xml",
		"--hive-versions", "latest",
	}, steps[1].Args)

	s.WithEngineBootstrap()
	assert.Len(t, s.Steps(), 4)
}

func TestEngineBootstrapRequiresSiteFile(t *testing.T) {
	s := NewSpec("hive", true, Config{})
	s.config.Aux[AuxHiveSite] = ""
	s.WithEngineBootstrap()

	var cfgErr *ConfigurationError
	require.ErrorAs(t, s.Err(), &cfgErr)
	assert.Empty(t, s.Steps())
}

func TestScriptedJob(t *testing.T) {
	s := NewSpec("jobs", false, Config{}).WithScriptedJob("show-tables", "s3://b/show.q")
	require.NoError(t, s.Err())

	steps := s.Steps()
	require.Len(t, steps, 1)
	assert.Equal(t, Continue, steps[0].ActionOnFailure)
	assert.Equal(t, []string{
		"s3://us-east-1.elasticmapreduce/libs/hive/hive-script",
		"--base-path", "s3://us-east-1.elasticmapreduce/libs/hive/",
		"--hive-versions", "latest",
		"--run-hive-script", "--args", "-f", "s3://b/show.q",
	}, steps[0].Args)
}

func TestScriptedJobEmptyLocation(t *testing.T) {
	for _, loc := range []string{"", "   "} {
		s := NewSpec("jobs", false, Config{}).WithScriptedJob("ok", "s3://b/ok.q")
		s.WithScriptedJob("bad", loc)

		var cfgErr *ConfigurationError
		require.ErrorAs(t, s.Err(), &cfgErr)
		assert.Equal(t, []string{"ok"}, stepNames(s.Steps()))
	}
}

func TestFirstErrorWins(t *testing.T) {
	s := NewSpec("jobs", false, Config{}).
		WithScriptedJob("bad", "").
		WithStep(Step{Name: "", Jar: "x", ActionOnFailure: Continue})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, s.Err(), &cfgErr)
	assert.Equal(t, "script_location", cfgErr.Field)
}

func TestWithStepValidates(t *testing.T) {
	_, err := NewStep("", Continue, "s3://b/x.jar")
	assert.Error(t, err)
	_, err = NewStep("x", Continue, "")
	assert.Error(t, err)
	_, err = NewStep("x", ActionOnFailure("EXPLODE"), "s3://b/x.jar")
	assert.Error(t, err)

	step, err := NewStep("custom", TerminateCluster, "command-runner.jar", "spark-submit", "s3://b/app.py")
	require.NoError(t, err)

	s := NewSpec("custom", false, Config{}).WithStep(step)
	require.NoError(t, s.Err())
	assert.Equal(t, []Step{step}, s.Steps())
}

func TestStepsAreCopied(t *testing.T) {
	s := NewSpec("copy", false, Config{}).WithScriptedJob("job", "s3://b/job.q")
	steps := s.Steps()
	steps[0].Args[0] = "mutated"
	steps[0].Name = "mutated"

	assert.Equal(t, "job", s.Steps()[0].Name)
	assert.NotEqual(t, "mutated", s.Steps()[0].Args[0])

	req := s.Request()
	req.Steps[0].Args[0] = "mutated"
	assert.NotEqual(t, "mutated", s.Steps()[0].Args[0])
}

func TestRequest(t *testing.T) {
	s := NewSpec("req", true, Config{InstanceCount: 3, ReleaseLabel: "emr-6.15.0"}).WithScriptedJob("job", "s3://b/job.q")
	req := s.Request()

	assert.Equal(t, "req", req.Name)
	assert.Equal(t, "s3://sprinklr/ruby-sdk/logs/", req.LogURI)
	assert.Equal(t, "emr-6.15.0", req.ReleaseLabel)
	assert.Equal(t, Instances{
		Count:             3,
		MasterType:        "m1.small",
		SlaveType:         "m1.small",
		KeepAliveWhenIdle: true,
		KeyPairName:       "emr",
	}, req.Instances)
	assert.Equal(t, []string{"job"}, stepNames(req.Steps))
}

func TestFrozenSpecRejectsMutation(t *testing.T) {
	s := NewSpec("frozen", false, Config{}).WithScriptedJob("job", "s3://b/job.q")
	_, err := s.freeze()
	require.NoError(t, err)
	assert.True(t, s.Frozen())

	s.WithScriptedJob("late", "s3://b/late.q").WithKeepAlive(true).WithConfig(Config{InstanceCount: 9})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, s.Err(), &cfgErr)
	assert.Equal(t, []string{"job"}, stepNames(s.Steps()))
	assert.False(t, s.KeepAlive())
	assert.Equal(t, uint(2), s.Config().InstanceCount)
}

func TestScriptedJobStep(t *testing.T) {
	step, err := ScriptedJobStep(Config{}, "adhoc", "s3://b/adhoc.q", TerminateCluster)
	require.NoError(t, err)
	assert.Equal(t, "adhoc", step.Name)
	assert.Equal(t, TerminateCluster, step.ActionOnFailure)

	_, err = ScriptedJobStep(Config{}, "adhoc", "", Continue)
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestParseState(t *testing.T) {
	assert.Equal(t, StateWaiting, ParseState("WAITING"))
	assert.Equal(t, StateUnknown, ParseState("EXPLODING"))
	assert.True(t, StateTerminatedWithErrors.Terminal())
	assert.False(t, StateTerminating.Terminal())
	assert.True(t, StateWaiting.Ready())
}

func TestParseActionOnFailure(t *testing.T) {
	a, err := ParseActionOnFailure("terminate_job_flow")
	require.NoError(t, err)
	assert.Equal(t, TerminateJobFlow, a)

	_, err = ParseActionOnFailure("nope")
	var cfgErr *ConfigurationError
	assert.ErrorAs(t, err, &cfgErr)
}
