package main

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	smithy "github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	wetwire "github.com/lex00/wetwire-site-go"
	"github.com/lex00/wetwire-site-go/internal/preflight"
)

type stubBuckets map[string]error

func (s stubBuckets) HeadBucket(_ context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if err, ok := s[*in.Bucket]; ok {
		return nil, err
	}
	return &s3.HeadBucketOutput{}, nil
}

func stubBucketAPI(t *testing.T, api preflight.HeadBucketAPI) {
	t.Helper()
	orig := newBucketAPI
	newBucketAPI = func(context.Context, string, string) (preflight.HeadBucketAPI, error) {
		return api, nil
	}
	t.Cleanup(func() { newBucketAPI = orig })
}

func TestNewValidateCmd(t *testing.T) {
	cmd := newValidateCmd(&rootOptions{})

	for _, name := range []string{"format", "cfn-lint", "ignore-rule", "check-buckets", "advise", "category", "region", "endpoint"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("missing --%s flag", name)
		}
	}
	if got := cmd.Flags().Lookup("region").DefValue; got != "us-east-1" {
		t.Errorf("region default = %q, want 'us-east-1'", got)
	}
}

func TestValidateCmd_Passes(t *testing.T) {
	path := writeSite(t, baseConfig)

	out, err := run(t, "validate", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Validation passed: 7 nodes OK")
}

func TestValidateCmd_ConfigError(t *testing.T) {
	path := writeSite(t, "domainName: example.com\npublicDataPath: ./site\ngithubBranch: main\n")

	out, err := run(t, "validate", "--config", path, "--format", "json")
	assert.EqualError(t, err, "validation failed")

	var result wetwire.ValidateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.False(t, result.Success)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "githubRepo")
}

func TestValidateCmd_MissingDataPath(t *testing.T) {
	path := writeSite(t, baseConfig)

	out, err := run(t, "validate", "--config", path, "-c", "publicDataPath=./nowhere")
	assert.Error(t, err)
	assert.Contains(t, out, "Validation FAILED")
	assert.Contains(t, out, "publicDataPath")
}

func TestValidateCmd_CheckBuckets(t *testing.T) {
	path := writeSite(t, baseConfig)
	stubBucketAPI(t, stubBuckets{
		"example.com":         &smithy.GenericAPIError{Code: "NotFound"},
		"example.com-logging": &smithy.GenericAPIError{Code: "Forbidden"},
	})

	out, err := run(t, "validate", "--config", path, "--check-buckets", "--format", "json")
	assert.Error(t, err)

	var result wetwire.ValidateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, []string{`bucket "example.com-logging" is owned by another account`}, result.Errors)
	assert.Equal(t, 7, result.Nodes)
}

func TestValidateCmd_CheckBucketsAvailable(t *testing.T) {
	path := writeSite(t, baseConfig)
	stubBucketAPI(t, stubBuckets{
		"example.com":         &smithy.GenericAPIError{Code: "NotFound"},
		"example.com-logging": &smithy.GenericAPIError{Code: "NotFound"},
	})

	_, err := run(t, "validate", "--config", path, "--check-buckets")
	assert.NoError(t, err)
}

func TestValidateCmd_CfnLintNeedsZone(t *testing.T) {
	path := writeSite(t, baseConfig)

	out, err := run(t, "validate", "--config", path, "--cfn-lint")
	assert.Error(t, err)
	assert.Contains(t, out, "hosted zone not found")
}

func TestOutputValidateResult_UnknownFormat(t *testing.T) {
	err := outputValidateResult(nil, wetwire.ValidateResult{Success: true}, "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestValidateCmd_Advise(t *testing.T) {
	path := writeSite(t, baseConfig+"hostedZoneId: Z0123456789ABC\n")

	out, err := run(t, "validate", "--config", path, "--advise", "--category", "cost", "--format", "json")
	require.NoError(t, err)

	var result wetwire.ValidateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.True(t, result.Success)
	require.Len(t, result.Suggestions, 1)
	assert.Equal(t, "OPT-S3-004", result.Suggestions[0].Rule)
	assert.Equal(t, "WebsiteLoggingBucket", result.Suggestions[0].Resource)
}
