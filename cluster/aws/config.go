package aws

import (
	"errors"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/aws/aws-sdk-go/service/emr"
	"github.com/aws/aws-sdk-go/service/emr/emriface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"go.uber.org/zap"
)

// config loads and stores the dynamically-loaded clients of the service.
type config struct {
	loadedMut sync.Mutex
	loaded    bool

	profile         string
	region          string
	accessKeyID     string
	secretAccessKey string

	log       *zap.SugaredLogger
	session   *session.Session
	emrClient emriface.EMRAPI
	s3Client  s3iface.S3API
	ec2Client ec2iface.EC2API
}

func (c *config) withLogger(l *zap.SugaredLogger) *config {
	c.log = l
	return c
}

func (c *config) newSession() (*session.Session, error) {
	opts := session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Profile:           c.profile,
	}
	if c.region != "" {
		opts.Config.Region = aws.String(c.region)
	}
	if c.accessKeyID != "" || c.secretAccessKey != "" {
		if c.accessKeyID == "" || c.secretAccessKey == "" {
			return nil, errors.New("both an access key ID and a secret access key are required")
		}
		opts.Config.Credentials = credentials.NewStaticCredentials(c.accessKeyID, c.secretAccessKey, "")
	}
	return session.NewSessionWithOptions(opts)
}

func (c *config) ensureLoaded() error {
	c.loadedMut.Lock()
	defer c.loadedMut.Unlock()
	if c.loaded {
		return nil
	}

	if c.log == nil {
		l, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		c.withLogger(l.Sugar().Named(loggerName))
	}

	needSession := c.emrClient == nil || c.s3Client == nil || c.ec2Client == nil
	if c.session == nil && needSession {
		sess, err := c.newSession()
		if err != nil {
			return fmt.Errorf("creating AWS Go SDK session: %w", err)
		}
		c.session = sess
	}

	if c.emrClient == nil {
		c.emrClient = emr.New(c.session)
	}
	if c.s3Client == nil {
		c.s3Client = s3.New(c.session)
	}
	if c.ec2Client == nil {
		c.ec2Client = ec2.New(c.session)
	}

	c.loaded = true
	return nil
}
