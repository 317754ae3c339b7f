package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/guseggert/emrflow/cluster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullConfig = `
access_key_id: AKIAEXAMPLE
secret_access_key: secret
region: us-west-2
log_level: debug
wait:
  timeout: 15m
  poll_interval: 30s
cluster:
  instance_count: 4
  master_instance_type: m5.xlarge
  release_label: emr-6.15.0
  aux:
    hive_site: s3://conf/hive-site.xml
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(fullConfig))
	require.NoError(t, err)

	assert.Equal(t, "AKIAEXAMPLE", cfg.AccessKeyID)
	assert.Equal(t, "secret", cfg.SecretAccessKey)
	assert.Equal(t, "us-west-2", cfg.Region)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, cluster.WaitConfig{Timeout: 15 * time.Minute, PollInterval: 30 * time.Second}, cfg.Wait.ClusterWaitConfig())

	merged := cluster.DefaultConfig().Merge(cfg.Cluster)
	assert.Equal(t, uint(4), merged.InstanceCount)
	assert.Equal(t, "m5.xlarge", merged.MasterInstanceType)
	assert.Equal(t, "m1.small", merged.SlaveInstanceType)
	assert.Equal(t, "emr-6.15.0", merged.ReleaseLabel)
	assert.Equal(t, "s3://conf/hive-site.xml", merged.Aux[cluster.AuxHiveSite])
	assert.Equal(t, "s3://us-east-1.elasticmapreduce/libs", merged.Aux[cluster.AuxLibsBase])
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse([]byte("  \n"))
	require.NoError(t, err)
	assert.Equal(t, &Config{}, cfg)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"not a mapping":     "- a\n- b\n",
		"scalar":            "just a string",
		"invalid yaml":      "a: [",
		"missing secret":    "access_key_id: AKIA\n",
		"missing key id":    "secret_access_key: s\n",
		"negative duration": "wait:\n  timeout: -1m\n",
		"bad duration":      "wait:\n  timeout: soon\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoadSearchesUp(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "project", "jobs")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "project", FileName), []byte("region: eu-west-1\n"), 0644))

	cfg, err := Load("", dir)
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", cfg.Region)
}

func TestLoadExplicitPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "custom.yml")
	require.NoError(t, os.WriteFile(p, []byte("profile: batch\n"), 0644))

	cfg, err := Load(p, "")
	require.NoError(t, err)
	assert.Equal(t, "batch", cfg.Profile)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"), "")
	assert.Error(t, err)
}

func TestLoadBadFileNamesPath(t *testing.T) {
	p := filepath.Join(t.TempDir(), "bad.yml")
	require.NoError(t, os.WriteFile(p, []byte("- nope\n"), 0644))

	_, err := Load(p, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), p)
	assert.Contains(t, err.Error(), "formatted incorrectly")
}
