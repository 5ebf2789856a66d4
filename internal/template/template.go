// Package template renders a planned website topology as a CloudFormation
// template.
package template

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/lex00/cloudformation-schema-go/intrinsics"
	"gopkg.in/yaml.v3"

	wetwire "github.com/lex00/wetwire-site-go"
	"github.com/lex00/wetwire-site-go/internal/export"
	"github.com/lex00/wetwire-site-go/internal/policy"
	"github.com/lex00/wetwire-site-go/internal/provider/synth"
	"github.com/lex00/wetwire-site-go/internal/serialize"
	"github.com/lex00/wetwire-site-go/internal/topology"
)

// PolicySuffix is appended to a bucket's logical ID to name its policy.
const PolicySuffix = "Policy"

// Render builds the template for t. The hosted zone is not a template
// resource; its ID is written as a literal wherever a resource needs it.
// outputs, usually the result of export.Export, become the Outputs section.
func Render(t *topology.Topology, outputs map[string]string) (*wetwire.Template, error) {
	zoneNode, ok := t.Node(topology.IDZone)
	if !ok {
		return nil, fmt.Errorf("topology has no %s node", topology.IDZone)
	}
	zone := zoneNode.Spec.(topology.ZoneSpec)
	zoneID := zoneNode.Attributes[topology.AttrHostedZoneID]
	if zoneID == "" {
		zoneID = zone.HostedZoneID
	}
	if zoneID == "" {
		return nil, &topology.ZoneNotFoundError{Domain: zone.DomainName}
	}

	r := &renderer{zoneID: zoneID, grants: make(map[string][]string)}
	if n, ok := t.Node(topology.IDAccess); ok {
		for _, g := range n.Spec.(topology.AccessPolicySpec).Grants {
			r.grants[g.BucketRef] = append(r.grants[g.BucketRef], g.Actions...)
		}
	}

	tmpl := &wetwire.Template{
		AWSTemplateFormatVersion: "2010-09-09",
		Description:              fmt.Sprintf("Static website for %s", zone.DomainName),
		Resources:                make(map[string]wetwire.ResourceDef),
	}

	for _, n := range t.Nodes() {
		if n.Kind == topology.KindZone {
			continue
		}
		defs, err := r.resources(n)
		if err != nil {
			return nil, fmt.Errorf("rendering %s: %w", n.ID, err)
		}
		for id, def := range defs {
			tmpl.Resources[id] = def
		}
	}

	if n, ok := t.Node(topology.IDCertificate); ok {
		rule, err := regionRule(n.Spec.(topology.CertificateSpec).Region)
		if err != nil {
			return nil, err
		}
		tmpl.Rules = map[string]wetwire.Rule{RegionRule: rule}
	}

	if len(outputs) > 0 {
		tmpl.Outputs = make(map[string]wetwire.Output)
		prefix := strings.ReplaceAll(zone.DomainName, ".", "-")
		for _, key := range export.Keys(t) {
			v, ok := outputs[key]
			if !ok {
				continue
			}
			var value any = v
			if synth.IsToken(v) {
				sub, err := serialize.Value(intrinsics.Sub{String: v})
				if err != nil {
					return nil, err
				}
				value = sub
			}
			tmpl.Outputs[key] = wetwire.Output{
				Description: export.Descriptions[key],
				Value:       value,
				Export:      &wetwire.Export{Name: prefix + "-" + key},
			}
		}
	}

	return tmpl, nil
}

// RegionRule names the rule that pins the stack to the certificate region.
// ACM certificates used by CloudFront must live in us-east-1, and the
// certificate is created in the stack's own region.
const RegionRule = "CertificateRegion"

func regionRule(region string) (wetwire.Rule, error) {
	ref, err := serialize.Value(intrinsics.Ref{LogicalName: "AWS::Region"})
	if err != nil {
		return wetwire.Rule{}, err
	}
	return wetwire.Rule{Assertions: []wetwire.Assertion{{
		Assert:            map[string]any{"Fn::Equals": []any{ref, region}},
		AssertDescription: fmt.Sprintf("Deploy this stack in %s so CloudFront can use its certificate.", region),
	}}}, nil
}

type renderer struct {
	zoneID string
	grants map[string][]string
}

func (r *renderer) resources(n *topology.Node) (map[string]wetwire.ResourceDef, error) {
	var (
		typ   string
		props any
	)
	def := wetwire.ResourceDef{DependsOn: r.dependsOn(n)}
	extra := make(map[string]wetwire.ResourceDef)

	switch spec := n.Spec.(type) {
	case topology.CertificateSpec:
		typ = TypeCertificate
		props = certificateProps{
			DomainName:       spec.DomainName,
			ValidationMethod: spec.Validation,
			DomainValidationOptions: []domainValidationOption{
				{DomainName: spec.DomainName, HostedZoneId: r.zoneID},
			},
			Tags: tags(n),
		}
		def.Metadata = map[string]any{"Region": spec.Region}

	case topology.BucketSpec:
		typ = TypeBucket
		props = newBucketProps(spec, n)
		def.DeletionPolicy = string(spec.Lifecycle.Removal)
		def.UpdateReplacePolicy = string(spec.Lifecycle.Removal)
		if spec.Lifecycle.AutoDeleteObjects {
			def.Metadata = map[string]any{"AutoDeleteObjects": true}
		}
		pol, err := r.bucketPolicy(n)
		if err != nil {
			return nil, err
		}
		extra[n.ID+PolicySuffix] = pol

	case topology.AccessPolicySpec:
		typ = TypeOriginAccess
		props = originAccessProps{
			CloudFrontOriginAccessIdentityConfig: originAccessConfig{Comment: spec.Comment},
		}

	case topology.DistributionSpec:
		typ = TypeDistribution
		props = newDistributionProps(spec, n)

	case topology.DnsRecordSpec:
		typ = TypeRecordSet
		props = recordSetProps{
			HostedZoneId: r.zoneID,
			Name:         spec.RecordName,
			Type:         spec.Type,
			AliasTarget: aliasTarget{
				DNSName:      intrinsics.GetAtt{LogicalName: spec.TargetRef, Attribute: topology.AttrDomainName},
				HostedZoneId: CloudFrontHostedZone,
			},
		}

	default:
		return nil, fmt.Errorf("unsupported node kind %q", n.Kind)
	}

	serialized, err := serialize.Properties(props)
	if err != nil {
		return nil, err
	}
	def.Type = typ
	def.Properties = serialized
	extra[n.ID] = def
	return extra, nil
}

// dependsOn lists the upstream resources of n that are template resources.
func (r *renderer) dependsOn(n *topology.Node) []string {
	var deps []string
	for _, dep := range n.DependsOn {
		if dep == topology.IDZone {
			continue
		}
		deps = append(deps, dep)
	}
	sort.Strings(deps)
	return deps
}

func (r *renderer) bucketPolicy(n *topology.Node) (wetwire.ResourceDef, error) {
	bucketArn := intrinsics.GetAtt{LogicalName: n.ID, Attribute: topology.AttrArn}
	objects := intrinsics.Sub{String: "${" + n.ID + ".Arn}/*"}

	statements := []policy.PolicyStatement{policy.TLSOnlyStatement(bucketArn, objects)}
	var deps []string
	if actions := r.grants[n.ID]; len(actions) > 0 {
		for _, a := range actions {
			if a != policy.ActionGetObject {
				return wetwire.ResourceDef{}, fmt.Errorf("unsupported grant %q on %s", a, n.ID)
			}
		}
		principal := policy.CanonicalUserPrincipal{
			ID: intrinsics.GetAtt{LogicalName: topology.IDAccess, Attribute: topology.AttrCanonicalUserID},
		}
		statements = append(statements, policy.ReadOnlyGrant(principal, objects))
		deps = []string{topology.IDAccess}
	}

	props, err := serialize.Properties(bucketPolicyProps{
		Bucket:         intrinsics.Ref{LogicalName: n.ID},
		PolicyDocument: policy.NewPolicyDocument(statements...),
	})
	if err != nil {
		return wetwire.ResourceDef{}, err
	}
	return wetwire.ResourceDef{
		Type:       TypeBucketPolicy,
		Properties: props,
		DependsOn:  deps,
	}, nil
}

func newBucketProps(spec topology.BucketSpec, n *topology.Node) bucketProps {
	algorithm := "AES256"
	if spec.Policy.Encryption == policy.EncryptionKMSManaged {
		algorithm = "aws:kms"
	}
	// CloudFront writes access logs through ACLs.
	ownership := "BucketOwnerEnforced"
	if spec.Role == topology.RoleLogging {
		ownership = "BucketOwnerPreferred"
	}
	block := spec.Policy.BlockPublicAccess
	return bucketProps{
		BucketName: spec.Name,
		BucketEncryption: bucketEncryption{
			ServerSideEncryptionConfiguration: []encryptionRule{{
				ServerSideEncryptionByDefault: encryptionDefault{SSEAlgorithm: algorithm},
				BucketKeyEnabled:              spec.Policy.BucketKeyEnabled,
			}},
		},
		PublicAccessBlockConfiguration: publicAccessBlock{
			BlockPublicAcls:       block.BlockPublicAcls,
			BlockPublicPolicy:     block.BlockPublicPolicy,
			IgnorePublicAcls:      block.IgnorePublicAcls,
			RestrictPublicBuckets: block.RestrictPublicBuckets,
		},
		OwnershipControls: ownershipControls{Rules: []ownershipRule{{ObjectOwnership: ownership}}},
		Tags:              tags(n),
	}
}

func newDistributionProps(spec topology.DistributionSpec, n *topology.Node) distributionProps {
	oai := intrinsics.Sub{String: "origin-access-identity/cloudfront/${" + spec.AccessRef + "}"}

	behaviors := append([]topology.Behavior{spec.DefaultBehavior}, spec.Behaviors...)
	var origins []origin
	seen := make(map[string]bool)
	for _, b := range behaviors {
		if seen[b.OriginRef] {
			continue
		}
		seen[b.OriginRef] = true
		origins = append(origins, origin{
			Id:             b.OriginRef,
			DomainName:     intrinsics.GetAtt{LogicalName: b.OriginRef, Attribute: topology.AttrRegionalDomainName},
			S3OriginConfig: s3OriginConfig{OriginAccessIdentity: oai},
		})
	}

	var extra []cacheBehavior
	for _, b := range spec.Behaviors {
		extra = append(extra, cacheBehaviorFor(b))
	}
	var errorResponses []customErrorResponse
	for _, e := range spec.ErrorResponses {
		errorResponses = append(errorResponses, customErrorResponse{ErrorCode: e.Code, ErrorCachingMinTTL: e.TTLSeconds})
	}

	return distributionProps{
		DistributionConfig: distributionConfig{
			Aliases:           spec.Aliases,
			Enabled:           true,
			DefaultRootObject: spec.DefaultRootObject,
			HttpVersion:       spec.HTTPVersion,
			PriceClass:        spec.PriceClass,
			ViewerCertificate: viewerCertificate{
				AcmCertificateArn:      intrinsics.Ref{LogicalName: spec.CertificateRef},
				SslSupportMethod:       "sni-only",
				MinimumProtocolVersion: spec.MinimumProtocolVersion,
			},
			Origins:              origins,
			DefaultCacheBehavior: cacheBehaviorFor(spec.DefaultBehavior),
			CacheBehaviors:       extra,
			Logging: distributionLogging{
				Bucket:         intrinsics.GetAtt{LogicalName: spec.Logging.BucketRef, Attribute: topology.AttrDomainName},
				Prefix:         spec.Logging.Prefix,
				IncludeCookies: spec.Logging.IncludeCookies,
			},
			CustomErrorResponses: errorResponses,
		},
		Tags: tags(n),
	}
}

func cacheBehaviorFor(b topology.Behavior) cacheBehavior {
	return cacheBehavior{
		PathPattern:          b.PathPattern,
		TargetOriginId:       b.OriginRef,
		Compress:             b.Compress,
		ViewerProtocolPolicy: b.ViewerProtocolPolicy,
		AllowedMethods:       b.AllowedMethods,
		CachedMethods:        b.AllowedMethods,
		CachePolicyId:        CachingOptimizedPolicy,
	}
}

func tags(n *topology.Node) []intrinsics.Tag {
	keys := make([]string, 0, len(n.Tags))
	for k := range n.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]intrinsics.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, intrinsics.Tag{Key: k, Value: n.Tags[k]})
	}
	return out
}

// ToJSON serializes the template to JSON.
func ToJSON(t *wetwire.Template) ([]byte, error) {
	return json.MarshalIndent(t, "", "  ")
}

// ToYAML serializes the template to YAML.
func ToYAML(t *wetwire.Template) ([]byte, error) {
	return yaml.Marshal(t)
}
