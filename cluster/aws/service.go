package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/aws/aws-sdk-go/service/emr"
	"github.com/aws/aws-sdk-go/service/emr/emriface"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/guseggert/emrflow/cluster"
	"go.uber.org/zap"
)

const loggerName = "emr_service"

// Service is a cluster.Service backed by Amazon EMR.
type Service struct {
	// Preflight enables validation of S3 locations and the EC2 key pair before a cluster is created.
	Preflight bool

	config *config
}

// NewService creates a new EMR service.
// This uses standard AWS profile env vars.
// With no configuration, this uses the default profile and the region from the shared config.
// Clients are created lazily on first use.
func NewService() *Service {
	return &Service{config: &config{}}
}

func (s *Service) WithLogger(l *zap.SugaredLogger) *Service {
	s.config.log = l.Named(loggerName)
	return s
}

func (s *Service) WithSession(sess *session.Session) *Service {
	s.config.session = sess
	return s
}

func (s *Service) WithProfile(profile string) *Service {
	s.config.profile = profile
	return s
}

func (s *Service) WithRegion(region string) *Service {
	s.config.region = region
	return s
}

// WithStaticCredentials uses the given key pair instead of the default credential chain.
func (s *Service) WithStaticCredentials(accessKeyID, secretAccessKey string) *Service {
	s.config.accessKeyID = accessKeyID
	s.config.secretAccessKey = secretAccessKey
	return s
}

// WithClients overrides the AWS clients. Nil clients are built from the session.
func (s *Service) WithClients(emrClient emriface.EMRAPI, s3Client s3iface.S3API, ec2Client ec2iface.EC2API) *Service {
	s.config.emrClient = emrClient
	s.config.s3Client = s3Client
	s.config.ec2Client = ec2Client
	return s
}

// WithPreflight enables Validate checks before cluster creation.
func (s *Service) WithPreflight() *Service {
	s.Preflight = true
	return s
}

func stepConfigs(steps []cluster.StepDescriptor) []*emr.StepConfig {
	var out []*emr.StepConfig
	for _, st := range steps {
		out = append(out, &emr.StepConfig{
			Name:            aws.String(st.Name),
			ActionOnFailure: aws.String(string(st.ActionOnFailure)),
			HadoopJarStep: &emr.HadoopJarStepConfig{
				Jar:  aws.String(st.Jar),
				Args: aws.StringSlice(st.Args),
			},
		})
	}
	return out
}

func optString(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

func runJobFlowInput(req cluster.CreateRequest) *emr.RunJobFlowInput {
	return &emr.RunJobFlowInput{
		Name:         aws.String(req.Name),
		LogUri:       optString(req.LogURI),
		ReleaseLabel: optString(req.ReleaseLabel),
		ServiceRole:  optString(req.ServiceRole),
		JobFlowRole:  optString(req.JobFlowRole),
		Instances: &emr.JobFlowInstancesConfig{
			InstanceCount:               aws.Int64(int64(req.Instances.Count)),
			MasterInstanceType:          aws.String(req.Instances.MasterType),
			SlaveInstanceType:           aws.String(req.Instances.SlaveType),
			KeepJobFlowAliveWhenNoSteps: aws.Bool(req.Instances.KeepAliveWhenIdle),
			Ec2KeyName:                  optString(req.Instances.KeyPairName),
		},
		Steps: stepConfigs(req.Steps),
	}
}

func (s *Service) CreateCluster(ctx context.Context, req cluster.CreateRequest) (string, error) {
	if err := s.config.ensureLoaded(); err != nil {
		return "", err
	}
	out, err := s.config.emrClient.RunJobFlowWithContext(ctx, runJobFlowInput(req))
	if err != nil {
		return "", fmt.Errorf("running job flow: %w", err)
	}
	id := aws.StringValue(out.JobFlowId)
	if id == "" {
		return "", fmt.Errorf("no job flow ID returned for cluster %q", req.Name)
	}
	s.config.log.Infow("created cluster", "cluster_id", id, "cluster_name", req.Name)
	return id, nil
}

func (s *Service) DescribeClusterState(ctx context.Context, id string) (cluster.State, error) {
	if err := s.config.ensureLoaded(); err != nil {
		return "", err
	}
	out, err := s.config.emrClient.DescribeClusterWithContext(ctx, &emr.DescribeClusterInput{ClusterId: aws.String(id)})
	if err != nil {
		return "", fmt.Errorf("describing EMR cluster: %w", err)
	}
	if out.Cluster == nil || out.Cluster.Status == nil {
		return cluster.StateUnknown, nil
	}
	st := cluster.ParseState(aws.StringValue(out.Cluster.Status.State))
	if st == cluster.StateUnknown {
		s.config.log.Warnw("unrecognized cluster state", "cluster_id", id, "state", aws.StringValue(out.Cluster.Status.State))
	}
	return st, nil
}

func (s *Service) TerminateCluster(ctx context.Context, id string) error {
	if err := s.config.ensureLoaded(); err != nil {
		return err
	}
	_, err := s.config.emrClient.TerminateJobFlowsWithContext(ctx, &emr.TerminateJobFlowsInput{
		JobFlowIds: []*string{aws.String(id)},
	})
	if err != nil {
		return fmt.Errorf("terminating job flow %q: %w", id, err)
	}
	return nil
}

func (s *Service) AddSteps(ctx context.Context, id string, steps []cluster.StepDescriptor) error {
	if err := s.config.ensureLoaded(); err != nil {
		return err
	}
	out, err := s.config.emrClient.AddJobFlowStepsWithContext(ctx, &emr.AddJobFlowStepsInput{
		JobFlowId: aws.String(id),
		Steps:     stepConfigs(steps),
	})
	if err != nil {
		return fmt.Errorf("adding job flow steps: %w", err)
	}
	s.config.log.Infow("added steps", "cluster_id", id, "step_ids", aws.StringValueSlice(out.StepIds))
	return nil
}

// Validate runs the preflight checks if they are enabled.
func (s *Service) Validate(ctx context.Context, req cluster.CreateRequest) error {
	if !s.Preflight {
		return nil
	}
	if err := s.config.ensureLoaded(); err != nil {
		return err
	}
	return s.preflight(ctx, req)
}

func (s *Service) String() string {
	region := s.config.region
	if s.config.session != nil && s.config.session.Config.Region != nil {
		region = *s.config.session.Config.Region
	}
	return fmt.Sprintf("EMR service region=%s", region)
}
