package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/guseggert/emrflow/cluster"
	"github.com/guseggert/emrflow/internal/files"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up from the working directory when no path is given.
const FileName = "emrflow.yml"

const example = `access_key_id: YOUR_ACCESS_KEY_ID
secret_access_key: YOUR_SECRET_ACCESS_KEY`

// Config is the contents of the config file.
type Config struct {
	AccessKeyID     string         `yaml:"access_key_id"`
	SecretAccessKey string         `yaml:"secret_access_key"`
	Region          string         `yaml:"region"`
	Profile         string         `yaml:"profile"`
	LogLevel        string         `yaml:"log_level"`
	Wait            WaitConfig     `yaml:"wait"`
	Cluster         cluster.Config `yaml:"cluster"`
}

type WaitConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

func (w WaitConfig) ClusterWaitConfig() cluster.WaitConfig {
	return cluster.WaitConfig{Timeout: w.Timeout, PollInterval: w.PollInterval}
}

// Parse parses and validates a config document.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if len(node.Content) != 1 || node.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("config is formatted incorrectly, use the following format:\n\n%s", example)
	}
	if err := node.Decode(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if (cfg.AccessKeyID == "") != (cfg.SecretAccessKey == "") {
		return nil, errors.New("config must set both access_key_id and secret_access_key, or neither")
	}
	if cfg.Wait.Timeout < 0 || cfg.Wait.PollInterval < 0 {
		return nil, errors.New("wait durations must not be negative")
	}
	return cfg, nil
}

// Load reads the config file at path.
// With an empty path, it searches up from dir for FileName, and a missing file yields an empty config.
func Load(path, dir string) (*Config, error) {
	if path == "" {
		found, err := files.FindUp(FileName, dir)
		if err != nil {
			return nil, fmt.Errorf("finding config: %w", err)
		}
		if found == "" {
			return &Config{}, nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
