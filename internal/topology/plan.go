package topology

import (
	"errors"
	"fmt"

	"github.com/lex00/wetwire-site-go/internal/config"
	"github.com/lex00/wetwire-site-go/internal/policy"
)

// Fixed distribution and certificate settings.
const (
	CertificateRegion      = "us-east-1"
	ValidationDNS          = "DNS"
	DefaultRootObject      = "index.html"
	HTTPVersion            = "http2and3"
	MinimumProtocolVersion = "TLSv1.2_2021"
	PriceClass             = "PriceClass_100"
	ViewerRedirectToHTTPS  = "redirect-to-https"
	AccessLogPrefix        = "cf-access-logs/"
	PrivatePathPattern     = "private/*"
	ErrorCacheTTLSeconds   = 60
	RecordTypeA            = "A"
)

// AllowedMethods are the HTTP methods every behavior accepts.
var AllowedMethods = []string{"GET", "HEAD", "OPTIONS"}

// Plan derives the topology for cfg. It performs no I/O.
//
// The graph is rooted at the hosted zone:
//
//	Zone -> certificates -> buckets -> access identity -> distribution -> record
//
// Every bucket carries the secure posture and is verified before Plan returns.
func Plan(cfg *config.Resolved) (*Topology, error) {
	if cfg == nil {
		return nil, errors.New("topology: nil config")
	}
	tags := map[string]string{"project": cfg.ProjectTag()}
	lifecycle := policy.LifecycleFor(cfg.IsProd())

	node := func(id string, spec Spec, deps ...string) *Node {
		t := make(map[string]string, len(tags))
		for k, v := range tags {
			t[k] = v
		}
		return &Node{
			ID:        id,
			Kind:      spec.Kind(),
			DependsOn: deps,
			Spec:      spec,
			Tags:      t,
			State:     StatePending,
		}
	}

	nodes := []*Node{
		node(IDZone, ZoneSpec{DomainName: cfg.DomainName, HostedZoneID: cfg.HostedZoneID}),
		node(IDCertificate, certificate(cfg.DomainName), IDZone),
	}
	if cfg.GenerateWildcardCertificate {
		nodes = append(nodes, node(IDWildcardCertificate, certificate("*."+cfg.DomainName), IDZone))
	}

	bucket := func(name string, role BucketRole) BucketSpec {
		return BucketSpec{Name: name, Role: role, Policy: policy.Secure(), Lifecycle: lifecycle}
	}
	nodes = append(nodes,
		node(IDPublicBucket, bucket(cfg.PublicBucketName, RolePublic), IDCertificate),
		node(IDLoggingBucket, bucket(cfg.LoggingBucketName, RoleLogging), IDCertificate),
	)
	private := cfg.HasPrivateBucket()
	if private {
		nodes = append(nodes, node(IDPrivateBucket, bucket(cfg.PrivateBucketName, RolePrivate), IDCertificate))
	}

	access := AccessPolicySpec{
		Comment: fmt.Sprintf("Access identity for %s", cfg.DomainName),
		Grants:  []Grant{{BucketRef: IDPublicBucket, Actions: []string{policy.ActionGetObject}}},
	}
	accessDeps := []string{IDPublicBucket}
	if private {
		access.Grants = append(access.Grants, Grant{BucketRef: IDPrivateBucket, Actions: []string{policy.ActionGetObject}})
		accessDeps = append(accessDeps, IDPrivateBucket)
	}
	nodes = append(nodes, node(IDAccess, access, accessDeps...))

	dist := DistributionSpec{
		Aliases:                []string{cfg.DomainName},
		CertificateRef:         IDCertificate,
		AccessRef:              IDAccess,
		DefaultRootObject:      DefaultRootObject,
		HTTPVersion:            HTTPVersion,
		MinimumProtocolVersion: MinimumProtocolVersion,
		PriceClass:             PriceClass,
		DefaultBehavior:        behavior("", IDPublicBucket),
		Logging: LoggingSpec{
			BucketRef:      IDLoggingBucket,
			Prefix:         AccessLogPrefix,
			IncludeCookies: false,
		},
		ErrorResponses: []ErrorResponse{
			{Code: 403, TTLSeconds: ErrorCacheTTLSeconds},
			{Code: 404, TTLSeconds: ErrorCacheTTLSeconds},
		},
	}
	distDeps := []string{IDCertificate, IDAccess, IDPublicBucket, IDLoggingBucket}
	if private {
		dist.Behaviors = append(dist.Behaviors, behavior(PrivatePathPattern, IDPrivateBucket))
		distDeps = append(distDeps, IDPrivateBucket)
	}
	nodes = append(nodes,
		node(IDDistribution, dist, distDeps...),
		node(IDRecord, DnsRecordSpec{
			RecordName: cfg.DomainName,
			Type:       RecordTypeA,
			ZoneRef:    IDZone,
			TargetRef:  IDDistribution,
		}, IDZone, IDDistribution),
	)

	for _, n := range nodes {
		spec, ok := n.Spec.(BucketSpec)
		if !ok {
			continue
		}
		if err := spec.Policy.Verify(); err != nil {
			var violation *policy.ViolationError
			if errors.As(err, &violation) {
				violation.Bucket = spec.Name
			}
			return nil, err
		}
	}

	return New(nodes...)
}

func certificate(domain string) CertificateSpec {
	return CertificateSpec{
		DomainName: domain,
		Region:     CertificateRegion,
		Validation: ValidationDNS,
		ZoneRef:    IDZone,
	}
}

func behavior(pattern, origin string) Behavior {
	methods := make([]string, len(AllowedMethods))
	copy(methods, AllowedMethods)
	return Behavior{
		PathPattern:          pattern,
		OriginRef:            origin,
		Compress:             true,
		ViewerProtocolPolicy: ViewerRedirectToHTTPS,
		AllowedMethods:       methods,
	}
}
