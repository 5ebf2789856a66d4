package policy

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecure_PassesVerify(t *testing.T) {
	s := Secure()
	require.NoError(t, s.Verify())

	assert.Equal(t, EncryptionS3Managed, s.Encryption)
	assert.True(t, s.BucketKeyEnabled)
	assert.Equal(t, BlockAll, s.BlockPublicAccess)
	assert.True(t, s.EnforceSSL)
	assert.Equal(t, AccessPrivate, s.AccessControl)
	assert.False(t, s.PublicReadAccess)
}

func TestSecure_ReturnsIndependentCopies(t *testing.T) {
	a := Secure()
	a.EnforceSSL = false

	assert.True(t, Secure().EnforceSSL)
}

func TestVerify_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SecureBucket)
		want   string
	}{
		{"unencrypted", func(s *SecureBucket) { s.Encryption = EncryptionNone }, "encryption"},
		{"acls allowed", func(s *SecureBucket) { s.BlockPublicAccess.BlockPublicAcls = false }, "public access"},
		{"policy allowed", func(s *SecureBucket) { s.BlockPublicAccess.BlockPublicPolicy = false }, "public access"},
		{"acls honoured", func(s *SecureBucket) { s.BlockPublicAccess.IgnorePublicAcls = false }, "public access"},
		{"cross account", func(s *SecureBucket) { s.BlockPublicAccess.RestrictPublicBuckets = false }, "public access"},
		{"plain http", func(s *SecureBucket) { s.EnforceSSL = false }, "HTTP"},
		{"public acl", func(s *SecureBucket) { s.AccessControl = AccessPublicRead }, "access control"},
		{"public read", func(s *SecureBucket) { s.PublicReadAccess = true }, "public read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Secure()
			tt.mutate(&s)

			err := s.Verify()
			var violation *ViolationError
			require.True(t, errors.As(err, &violation))
			assert.Len(t, violation.Violations, 1)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestVerify_KMSAccepted(t *testing.T) {
	s := Secure()
	s.Encryption = EncryptionKMSManaged
	assert.NoError(t, s.Verify())
}

func TestViolationError_Message(t *testing.T) {
	err := &ViolationError{Bucket: "logs", Violations: []string{"a", "b"}}
	assert.Equal(t, `policy violation: bucket "logs": a; b`, err.Error())
}

func TestLifecycleFor(t *testing.T) {
	assert.Equal(t, Lifecycle{Removal: RemovalRetain}, LifecycleFor(true))
	assert.Equal(t, Lifecycle{Removal: RemovalDestroy, AutoDeleteObjects: true}, LifecycleFor(false))
}

func TestTLSOnlyStatement_JSON(t *testing.T) {
	stmt := TLSOnlyStatement("arn:aws:s3:::site", "arn:aws:s3:::site/*")
	data, err := json.Marshal(stmt)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"Sid": "DenyInsecureTransport",
		"Effect": "Deny",
		"Principal": "*",
		"Action": "s3:*",
		"Resource": ["arn:aws:s3:::site", "arn:aws:s3:::site/*"],
		"Condition": {"Bool": {"aws:SecureTransport": "false"}}
	}`, string(data))
}

func TestReadOnlyGrant_JSON(t *testing.T) {
	doc := NewPolicyDocument(ReadOnlyGrant(
		CanonicalUserPrincipal{ID: "abc123"},
		ObjectsArn("arn:aws:s3:::site"),
	))
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"Version": "2012-10-17",
		"Statement": [{
			"Sid": "AllowOriginAccessIdentityRead",
			"Effect": "Allow",
			"Principal": {"CanonicalUser": "abc123"},
			"Action": "s3:GetObject",
			"Resource": ["arn:aws:s3:::site/*"]
		}]
	}`, string(data))
}
