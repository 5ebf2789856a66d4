package policy

import "encoding/json"

// Json is a shorthand for map[string]any, used for Condition blocks.
type Json = map[string]any

// Bool is the IAM boolean condition operator.
const Bool = "Bool"

// ActionGetObject is the only action granted to the origin access identity.
const ActionGetObject = "s3:GetObject"

// PolicyDocument represents an IAM policy document.
type PolicyDocument struct {
	Version   string            `json:"Version,omitempty"`
	Statement []PolicyStatement `json:"Statement"`
}

// NewPolicyDocument creates a PolicyDocument with the default version.
func NewPolicyDocument(statements ...PolicyStatement) PolicyDocument {
	return PolicyDocument{Version: "2012-10-17", Statement: statements}
}

// PolicyStatement represents an IAM policy statement. Principal and Resource
// accept plain strings or template intrinsics.
type PolicyStatement struct {
	Sid       string `json:"Sid,omitempty"`
	Effect    string `json:"Effect"`
	Principal any    `json:"Principal,omitempty"`
	Action    any    `json:"Action,omitempty"`
	Resource  any    `json:"Resource,omitempty"`
	Condition Json   `json:"Condition,omitempty"`
}

// AllPrincipal represents the wildcard principal "*".
const AllPrincipal = "*"

// CanonicalUserPrincipal is the principal form used by origin access identities.
// Serializes to {"CanonicalUser": ...}.
type CanonicalUserPrincipal struct {
	ID any
}

// MarshalJSON serializes to {"CanonicalUser": ...} format.
func (p CanonicalUserPrincipal) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{"CanonicalUser": p.ID})
}

// TLSOnlyStatement denies every request to the bucket that does not use TLS.
func TLSOnlyStatement(bucketArn, objectsArn any) PolicyStatement {
	return PolicyStatement{
		Sid:       "DenyInsecureTransport",
		Effect:    "Deny",
		Principal: AllPrincipal,
		Action:    "s3:*",
		Resource:  []any{bucketArn, objectsArn},
		Condition: Json{
			Bool: Json{"aws:SecureTransport": "false"},
		},
	}
}

// ReadOnlyGrant lets principal read objects and nothing else.
func ReadOnlyGrant(principal any, objectArns ...any) PolicyStatement {
	return PolicyStatement{
		Sid:       "AllowOriginAccessIdentityRead",
		Effect:    "Allow",
		Principal: principal,
		Action:    ActionGetObject,
		Resource:  objectArns,
	}
}

// ObjectsArn returns the ARN pattern that covers every object of a bucket.
func ObjectsArn(bucketArn string) string {
	return bucketArn + "/*"
}
