package awsml

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
)

// Client bundles the service clients behind one handle. All methods are safe
// for concurrent use.
type Client struct {
	cfg        aws.Config
	sagemaker  sagemakerAPI
	comprehend comprehendAPI
	lambda     lambdaAPI
	s3         s3API
}

type clientConfig struct {
	region    string
	awsConfig *aws.Config
}

type Option func(*clientConfig)

func WithRegion(region string) Option {
	return func(c *clientConfig) {
		c.region = region
	}
}

// WithConfig skips the default credential chain and uses the given config.
func WithConfig(cfg aws.Config) Option {
	return func(c *clientConfig) {
		c.awsConfig = &cfg
	}
}

func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, opt := range opts {
		opt(cc)
	}

	var cfg aws.Config
	if cc.awsConfig != nil {
		cfg = *cc.awsConfig
	} else {
		var err error
		cfg, err = config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, opError("init", "", err)
		}
	}
	if cc.region != "" {
		cfg.Region = cc.region
	}

	return &Client{
		cfg:        cfg,
		sagemaker:  sagemaker.NewFromConfig(cfg),
		comprehend: comprehend.NewFromConfig(cfg),
		lambda:     lambda.NewFromConfig(cfg),
		s3:         s3.NewFromConfig(cfg),
	}, nil
}

func (c *Client) Region() string {
	return c.cfg.Region
}

// waitFor polls at a fixed delay until poll reports done, the attempts run
// out, or the context is canceled.
func waitFor(
	ctx context.Context,
	delay time.Duration,
	maxAttempts int64,
	poll func(ctx context.Context) (bool, error),
) error {
	for attempt := int64(0); attempt < maxAttempts; attempt++ {
		done, err := poll(ctx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return ErrWaitTimeout
}
