package aws

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/guseggert/emrflow/cluster"
	"go.uber.org/multierr"
)

// public step libraries are hosted in buckets named like "us-east-1.elasticmapreduce"
func isServiceLibrary(loc s3Location) bool {
	return strings.HasSuffix(loc.Bucket, ".elasticmapreduce") || loc.Bucket == "elasticmapreduce"
}

// flags whose value is a file the step reads
var fileFlags = map[string]bool{"-f": true, "--hive-site": true}

// stepLocations returns the S3 objects a step depends on: its jar and any file passed with a file flag.
func stepLocations(st cluster.StepDescriptor) []string {
	var locs []string
	if isS3URI(st.Jar) {
		locs = append(locs, st.Jar)
	}
	for i, a := range st.Args {
		if fileFlags[a] && i+1 < len(st.Args) && isS3URI(st.Args[i+1]) {
			locs = append(locs, st.Args[i+1])
		}
	}
	return locs
}

func isNotFound(err error) bool {
	var awsErr awserr.Error
	if errors.As(err, &awsErr) {
		switch awsErr.Code() {
		case "NotFound", s3.ErrCodeNoSuchKey, s3.ErrCodeNoSuchBucket, "InvalidKeyPair.NotFound":
			return true
		}
	}
	return false
}

func (s *Service) checkBucket(ctx context.Context, uri string) error {
	loc, err := parseS3URI(uri)
	if err != nil {
		return &cluster.ConfigurationError{Field: "log_uri", Msg: err.Error(), Err: err}
	}
	_, err = s.config.s3Client.HeadBucketWithContext(ctx, &s3.HeadBucketInput{Bucket: aws.String(loc.Bucket)})
	if isNotFound(err) {
		return &cluster.ConfigurationError{Field: "log_uri", Msg: fmt.Sprintf("bucket %q does not exist", loc.Bucket)}
	}
	if err != nil {
		return fmt.Errorf("checking log bucket %q: %w", loc.Bucket, err)
	}
	return nil
}

func (s *Service) checkObject(ctx context.Context, stepName, uri string) error {
	loc, err := parseS3URI(uri)
	if err != nil {
		return &cluster.ConfigurationError{Field: "step." + stepName, Msg: err.Error(), Err: err}
	}
	if isServiceLibrary(loc) {
		return nil
	}
	_, err = s.config.s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if isNotFound(err) {
		return &cluster.ConfigurationError{Field: "step." + stepName, Msg: fmt.Sprintf("%s does not exist", loc)}
	}
	if err != nil {
		return fmt.Errorf("checking %s for step %q: %w", loc, stepName, err)
	}
	return nil
}

func (s *Service) checkKeyPair(ctx context.Context, name string) error {
	_, err := s.config.ec2Client.DescribeKeyPairsWithContext(ctx, &ec2.DescribeKeyPairsInput{
		KeyNames: []*string{aws.String(name)},
	})
	if isNotFound(err) {
		return &cluster.ConfigurationError{Field: "key_pair_name", Msg: fmt.Sprintf("EC2 key pair %q does not exist", name)}
	}
	if err != nil {
		return fmt.Errorf("checking EC2 key pair %q: %w", name, err)
	}
	return nil
}

// preflight checks everything the request references and reports all problems at once.
func (s *Service) preflight(ctx context.Context, req cluster.CreateRequest) error {
	var errs error
	if req.LogURI != "" {
		errs = multierr.Append(errs, s.checkBucket(ctx, req.LogURI))
	}
	if req.Instances.KeyPairName != "" {
		errs = multierr.Append(errs, s.checkKeyPair(ctx, req.Instances.KeyPairName))
	}
	checked := map[string]bool{}
	for _, st := range req.Steps {
		for _, loc := range stepLocations(st) {
			if checked[loc] {
				continue
			}
			checked[loc] = true
			errs = multierr.Append(errs, s.checkObject(ctx, st.Name, loc))
		}
	}
	if errs != nil {
		s.config.log.Warnw("preflight failed", "cluster_name", req.Name, "error", errs)
	}
	return errs
}
