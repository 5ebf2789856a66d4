// Package policy defines the security posture shared by every storage bucket.
//
// Secure returns the only posture a bucket may be created with. There is no
// way to weaken it per bucket: callers receive a copy of the template and
// Verify rejects anything that differs from it.
package policy

import (
	"fmt"
	"strings"
)

// Encryption is the server-side encryption mode of a bucket.
type Encryption string

const (
	// EncryptionS3Managed uses provider-managed keys (SSE-S3, AES256).
	EncryptionS3Managed Encryption = "S3_MANAGED"
	// EncryptionKMSManaged uses the provider's managed KMS key.
	EncryptionKMSManaged Encryption = "KMS_MANAGED"
	// EncryptionNone disables encryption. Never valid for a bucket.
	EncryptionNone Encryption = "UNENCRYPTED"
)

// AccessControl is the canned ACL of a bucket.
type AccessControl string

const (
	// AccessPrivate grants the owner full control and nobody else access.
	AccessPrivate AccessControl = "Private"
	// AccessPublicRead grants anonymous read. Never valid for a bucket.
	AccessPublicRead AccessControl = "PublicRead"
)

// BlockPublicAccess mirrors the four public-access-block switches.
type BlockPublicAccess struct {
	BlockPublicAcls       bool
	BlockPublicPolicy     bool
	IgnorePublicAcls      bool
	RestrictPublicBuckets bool
}

// BlockAll turns every switch on.
var BlockAll = BlockPublicAccess{
	BlockPublicAcls:       true,
	BlockPublicPolicy:     true,
	IgnorePublicAcls:      true,
	RestrictPublicBuckets: true,
}

// SecureBucket is the security posture of a bucket.
type SecureBucket struct {
	Encryption        Encryption
	BucketKeyEnabled  bool
	BlockPublicAccess BlockPublicAccess
	EnforceSSL        bool
	AccessControl     AccessControl
	PublicReadAccess  bool
}

// Secure returns the posture every bucket is created with.
func Secure() SecureBucket {
	return SecureBucket{
		Encryption:        EncryptionS3Managed,
		BucketKeyEnabled:  true,
		BlockPublicAccess: BlockAll,
		EnforceSSL:        true,
		AccessControl:     AccessPrivate,
		PublicReadAccess:  false,
	}
}

// Verify reports every way s deviates from Secure.
func (s SecureBucket) Verify() error {
	var violations []string
	if s.Encryption != EncryptionS3Managed && s.Encryption != EncryptionKMSManaged {
		violations = append(violations, fmt.Sprintf("encryption is %q", s.Encryption))
	}
	if s.BlockPublicAccess != BlockAll {
		violations = append(violations, "public access is not fully blocked")
	}
	if !s.EnforceSSL {
		violations = append(violations, "plain HTTP transport is allowed")
	}
	if s.AccessControl != AccessPrivate {
		violations = append(violations, fmt.Sprintf("access control is %q", s.AccessControl))
	}
	if s.PublicReadAccess {
		violations = append(violations, "public read access is granted")
	}
	if len(violations) == 0 {
		return nil
	}
	return &ViolationError{Violations: violations}
}

// ViolationError reports a bucket that would bypass the secure posture.
type ViolationError struct {
	Bucket     string
	Violations []string
}

func (e *ViolationError) Error() string {
	subject := "bucket"
	if e.Bucket != "" {
		subject = fmt.Sprintf("bucket %q", e.Bucket)
	}
	return fmt.Sprintf("policy violation: %s: %s", subject, strings.Join(e.Violations, "; "))
}

// RemovalPolicy decides what happens to a resource on teardown.
type RemovalPolicy string

const (
	RemovalRetain  RemovalPolicy = "Retain"
	RemovalDestroy RemovalPolicy = "Delete"
)

// Lifecycle is the teardown behaviour of a bucket.
type Lifecycle struct {
	Removal           RemovalPolicy
	AutoDeleteObjects bool
}

// LifecycleFor retains buckets in production and destroys (emptying them
// first) everywhere else.
func LifecycleFor(prod bool) Lifecycle {
	if prod {
		return Lifecycle{Removal: RemovalRetain}
	}
	return Lifecycle{Removal: RemovalDestroy, AutoDeleteObjects: true}
}
