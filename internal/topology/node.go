package topology

import (
	"github.com/lex00/wetwire-site-go/internal/policy"
)

// Kind identifies the resource type of a node.
type Kind string

const (
	KindZone         Kind = "Zone"
	KindCertificate  Kind = "Certificate"
	KindBucket       Kind = "Bucket"
	KindAccessPolicy Kind = "AccessPolicy"
	KindDistribution Kind = "Distribution"
	KindDnsRecord    Kind = "DnsRecord"
)

// Stable node IDs. The same configuration always yields the same IDs.
const (
	IDZone                = "Zone"
	IDCertificate         = "WebsiteCertificate"
	IDWildcardCertificate = "WildcardWebsiteCertificate"
	IDPublicBucket        = "PublicWebsiteData"
	IDPrivateBucket       = "PrivateWebsiteData"
	IDLoggingBucket       = "WebsiteLoggingBucket"
	IDAccess              = "CloudFrontAccess"
	IDDistribution        = "WebsiteCDN"
	IDRecord              = "CloudFrontDistributionARecord"
)

// State is the provisioning state of a node.
type State string

const (
	StatePending  State = "pending"
	StateCreated  State = "created"
	StateExisting State = "existing"
	StateFailed   State = "failed"
	StateSkipped  State = "skipped"
)

// Done reports whether the node's attributes are available downstream.
func (s State) Done() bool {
	return s == StateCreated || s == StateExisting
}

// Attribute names reported by provisioners.
const (
	AttrHostedZoneID       = "HostedZoneId"
	AttrName               = "Name"
	AttrArn                = "Arn"
	AttrRegionalDomainName = "RegionalDomainName"
	AttrID                 = "Id"
	AttrCanonicalUserID    = "S3CanonicalUserId"
	AttrDomainName         = "DomainName"
)

// Attributes are the values a node exports once provisioned.
type Attributes map[string]string

// Deps holds the attributes of upstream nodes, keyed by node ID.
type Deps map[string]Attributes

// Spec is the kind-specific description of a node.
type Spec interface {
	Kind() Kind
}

// Node is one resource in the topology.
type Node struct {
	ID         string
	Kind       Kind
	DependsOn  []string
	Spec       Spec
	Tags       map[string]string
	Attributes Attributes
	State      State
}

// ZoneSpec describes the existing hosted zone of the domain.
type ZoneSpec struct {
	DomainName   string
	HostedZoneID string
}

func (ZoneSpec) Kind() Kind { return KindZone }

// CertificateSpec describes a DNS-validated TLS certificate.
type CertificateSpec struct {
	DomainName string
	Region     string
	Validation string
	ZoneRef    string
}

func (CertificateSpec) Kind() Kind { return KindCertificate }

// BucketRole distinguishes the storage buckets.
type BucketRole string

const (
	RolePublic  BucketRole = "public"
	RolePrivate BucketRole = "private"
	RoleLogging BucketRole = "logging"
)

// BucketSpec describes a storage bucket.
type BucketSpec struct {
	Name      string
	Role      BucketRole
	Policy    policy.SecureBucket
	Lifecycle policy.Lifecycle
}

func (BucketSpec) Kind() Kind { return KindBucket }

// Grant lets the access identity perform Actions on the objects of a bucket.
type Grant struct {
	BucketRef string
	Actions   []string
}

// AccessPolicySpec describes the origin access identity and its grants.
type AccessPolicySpec struct {
	Comment string
	Grants  []Grant
}

func (AccessPolicySpec) Kind() Kind { return KindAccessPolicy }

// Behavior routes a path pattern to a bucket origin.
type Behavior struct {
	PathPattern          string
	OriginRef            string
	Compress             bool
	ViewerProtocolPolicy string
	AllowedMethods       []string
}

// LoggingSpec configures distribution access logs.
type LoggingSpec struct {
	BucketRef      string
	Prefix         string
	IncludeCookies bool
}

// ErrorResponse caches an error status for TTLSeconds.
type ErrorResponse struct {
	Code       int
	TTLSeconds int
}

// DistributionSpec describes the content-delivery distribution.
type DistributionSpec struct {
	Aliases                []string
	CertificateRef         string
	AccessRef              string
	DefaultRootObject      string
	HTTPVersion            string
	MinimumProtocolVersion string
	PriceClass             string
	DefaultBehavior        Behavior
	Behaviors              []Behavior
	Logging                LoggingSpec
	ErrorResponses         []ErrorResponse
}

func (DistributionSpec) Kind() Kind { return KindDistribution }

// DnsRecordSpec describes an alias record pointing at the distribution.
type DnsRecordSpec struct {
	RecordName string
	Type       string
	ZoneRef    string
	TargetRef  string
}

func (DnsRecordSpec) Kind() Kind { return KindDnsRecord }
