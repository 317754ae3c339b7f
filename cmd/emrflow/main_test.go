package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "emrflow.yml")
	require.NoError(t, os.WriteFile(cfg, []byte("log_level: error\n"), 0644))

	app := newApp()
	buf := &bytes.Buffer{}
	app.Writer = buf
	err := app.RunContext(context.Background(), append([]string{"emrflow", "--config", cfg, "--local"}, args...))
	return strings.TrimSpace(buf.String()), err
}

func TestLaunchAsync(t *testing.T) {
	out, err := run(t, "launch", "--async", "--keep-alive", "--hive", "--script", "s3://b/one.q", "--script", "s3://b/two.q")
	require.NoError(t, err)
	assert.Regexp(t, `^j-[0-9A-F]{13}$`, out)
}

func TestLaunchWaits(t *testing.T) {
	out, err := run(t, "launch", "--keep-alive", "--poll-interval", "1ms", "--timeout", "1s")
	require.NoError(t, err)
	assert.Regexp(t, `^j-[0-9A-F]{13}$`, out)
}

func TestLaunchBadAction(t *testing.T) {
	_, err := run(t, "launch", "--async", "--on-failure", "explode")
	assert.Error(t, err)
}

func TestStateRequiresID(t *testing.T) {
	_, err := run(t, "state")
	assert.EqualError(t, err, "cluster ID required")
}

func TestLocalOnlyLaunches(t *testing.T) {
	for _, args := range [][]string{
		{"state", "j-1"},
		{"wait", "j-1"},
		{"add-step", "--script", "s3://b/x.q", "j-1"},
		{"terminate", "j-1"},
	} {
		_, err := run(t, args...)
		assert.ErrorIs(t, err, errLocalLaunchOnly, args[0])
	}
}

func TestStageRequiresEMR(t *testing.T) {
	_, err := run(t, "launch", "--async", "--staging-bucket", "b", "--script", "local.q")
	assert.Error(t, err)
}
