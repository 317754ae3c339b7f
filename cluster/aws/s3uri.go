package aws

import (
	"fmt"
	"strings"
)

// s3Location is a parsed s3://bucket/key URI.
type s3Location struct {
	Bucket string
	Key    string
}

func (l s3Location) String() string {
	if l.Key == "" {
		return "s3://" + l.Bucket + "/"
	}
	return "s3://" + l.Bucket + "/" + l.Key
}

func isS3URI(s string) bool {
	return strings.HasPrefix(s, "s3://") || strings.HasPrefix(s, "s3n://")
}

func parseS3URI(s string) (s3Location, error) {
	rest := strings.TrimPrefix(strings.TrimPrefix(s, "s3n://"), "s3://")
	if rest == s {
		return s3Location{}, fmt.Errorf("%q is not an S3 URI", s)
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return s3Location{}, fmt.Errorf("S3 URI %q has no bucket", s)
	}
	return s3Location{Bucket: bucket, Key: key}, nil
}
