package aws

import (
	"context"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
)

// StageFile uploads the local file at filePath under prefix in the bucket and returns its S3 URI,
// so it can be referenced by a step. The key is derived from the file's hash, which dedupes repeat uploads.
func (s *Service) StageFile(ctx context.Context, bucket, prefix, filePath string) (string, error) {
	if err := s.config.ensureLoaded(); err != nil {
		return "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening to compute S3 key: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", fmt.Errorf("hashing file to write to S3: %w", err)
	}
	sum := strings.TrimRight(base32.StdEncoding.EncodeToString(hasher.Sum(nil)), "=")
	key := path.Join(strings.Trim(prefix, "/"), sum, filepath.Base(filePath))

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewinding file to send to S3: %w", err)
	}
	_, err = s.config.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("putting to S3: %w", err)
	}
	uri := s3Location{Bucket: bucket, Key: key}.String()
	s.config.log.Infow("staged file", "path", filePath, "uri", uri)
	return uri, nil
}
