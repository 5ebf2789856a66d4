// Package preflight checks that the bucket names of a topology can be used
// before anything is provisioned.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithy "github.com/aws/smithy-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lex00/wetwire-site-go/internal/topology"
)

// HeadBucketAPI is the part of the S3 client preflight uses.
type HeadBucketAPI interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Status is the availability of a bucket name.
type Status string

const (
	// StatusOwned means the bucket exists and the caller can reach it.
	StatusOwned Status = "owned"
	// StatusAvailable means no bucket has the name.
	StatusAvailable Status = "available"
	// StatusTaken means another account owns the name.
	StatusTaken Status = "taken"
)

// BucketCheck is the result for a single bucket name.
type BucketCheck struct {
	Name   string `json:"name"`
	Status Status `json:"status"`
}

// Options configures CheckBuckets.
type Options struct {
	// Concurrency caps parallel HeadBucket calls. Zero means no cap.
	Concurrency int
	Logger      *zap.Logger
}

// NewS3API returns an S3 client for region. A non-empty endpoint points the
// client at an S3-compatible service using path-style addressing.
func NewS3API(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("aws: load config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			if !strings.Contains(endpoint, "://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// BucketNames returns the bucket names planned in t, in creation order.
func BucketNames(t *topology.Topology) []string {
	var names []string
	for _, n := range t.Nodes() {
		if spec, ok := n.Spec.(topology.BucketSpec); ok {
			names = append(names, spec.Name)
		}
	}
	return names
}

// CheckBuckets probes every name with HeadBucket. Results keep the order of
// names. Any failure other than not-found or forbidden aborts the check.
func CheckBuckets(ctx context.Context, api HeadBucketAPI, names []string, opts Options) ([]BucketCheck, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	results := make([]BucketCheck, len(names))
	g, gctx := errgroup.WithContext(ctx)
	if opts.Concurrency > 0 {
		g.SetLimit(opts.Concurrency)
	}
	for i, name := range names {
		g.Go(func() error {
			_, err := api.HeadBucket(gctx, &s3.HeadBucketInput{Bucket: aws.String(name)})
			status, err := statusOf(err)
			if err != nil {
				return fmt.Errorf("checking bucket %q: %w", name, err)
			}
			results[i] = BucketCheck{Name: name, Status: status}
			log.Debug("bucket checked", zap.String("bucket", name), zap.String("status", string(status)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Taken returns the names owned by another account.
func Taken(checks []BucketCheck) []string {
	var out []string
	for _, c := range checks {
		if c.Status == StatusTaken {
			out = append(out, c.Name)
		}
	}
	return out
}

func statusOf(err error) (Status, error) {
	if err == nil {
		return StatusOwned, nil
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NotFound", "NoSuchBucket":
			return StatusAvailable, nil
		case "Forbidden", "AccessDenied":
			return StatusTaken, nil
		}
	}

	var statusErr interface{ HTTPStatusCode() int }
	if errors.As(err, &statusErr) {
		switch statusErr.HTTPStatusCode() {
		case http.StatusNotFound:
			return StatusAvailable, nil
		case http.StatusForbidden:
			return StatusTaken, nil
		}
	}
	return "", err
}
