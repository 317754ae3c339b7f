package cluster

const (
	// AuxHiveSite is the Aux key holding the location of the Hive site configuration file.
	AuxHiveSite = "hive_site"
	// AuxLibsBase is the Aux key holding the base location of the service's step libraries.
	AuxLibsBase = "libs_base"
)

// Config holds the sizing and placement settings of a cluster.
// The zero value of a field means "not set" when merging.
type Config struct {
	LogURI             string            `yaml:"log_uri"`
	InstanceCount      uint              `yaml:"instance_count"`
	MasterInstanceType string            `yaml:"master_instance_type"`
	SlaveInstanceType  string            `yaml:"slave_instance_type"`
	KeyPairName        string            `yaml:"key_pair_name"`
	ReleaseLabel       string            `yaml:"release_label"`
	ServiceRole        string            `yaml:"service_role"`
	JobFlowRole        string            `yaml:"job_flow_role"`
	Aux                map[string]string `yaml:"aux"`
}

// DefaultConfig returns the default cluster configuration.
func DefaultConfig() Config {
	return Config{
		LogURI:             "s3://sprinklr/ruby-sdk/logs/",
		InstanceCount:      2,
		MasterInstanceType: "m1.small",
		SlaveInstanceType:  "m1.small",
		KeyPairName:        "emr",
		Aux: map[string]string{
			AuxHiveSite: "s3://sprinklr/conf/hive/hive-site.xml",
			AuxLibsBase: "s3://us-east-1.elasticmapreduce/libs",
		},
	}
}

// Merge returns a copy of c with every set field of override applied.
// Aux entries are merged by key. Neither c nor override is modified.
func (c Config) Merge(override Config) Config {
	out := c
	if override.LogURI != "" {
		out.LogURI = override.LogURI
	}
	if override.InstanceCount != 0 {
		out.InstanceCount = override.InstanceCount
	}
	if override.MasterInstanceType != "" {
		out.MasterInstanceType = override.MasterInstanceType
	}
	if override.SlaveInstanceType != "" {
		out.SlaveInstanceType = override.SlaveInstanceType
	}
	if override.KeyPairName != "" {
		out.KeyPairName = override.KeyPairName
	}
	if override.ReleaseLabel != "" {
		out.ReleaseLabel = override.ReleaseLabel
	}
	if override.ServiceRole != "" {
		out.ServiceRole = override.ServiceRole
	}
	if override.JobFlowRole != "" {
		out.JobFlowRole = override.JobFlowRole
	}
	out.Aux = make(map[string]string, len(c.Aux)+len(override.Aux))
	for k, v := range c.Aux {
		out.Aux[k] = v
	}
	for k, v := range override.Aux {
		out.Aux[k] = v
	}
	return out
}
