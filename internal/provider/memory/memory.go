// Package memory is an in-process Provisioner for dry runs and tests.
//
// Identifiers are derived from the node and its spec with name-based UUIDs,
// so the same configuration always produces the same fake ARNs. A second
// Provision call for a node that is already stored reports Existed.
package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lex00/wetwire-site-go/internal/topology"
)

// DefaultAccount is the account ID used in fake ARNs.
const DefaultAccount = "123456789012"

// DefaultRegion is the region of the storage buckets.
const DefaultRegion = "us-east-1"

// Provider stores provisioned nodes in memory. It is safe for concurrent use.
type Provider struct {
	mu       sync.Mutex
	account  string
	region   string
	zones    map[string]string
	store    map[string]topology.Attributes
	failures map[string]error
	calls    map[string]int
}

// Option configures a Provider.
type Option func(*Provider)

// WithZone registers an existing hosted zone for domain.
func WithZone(domain, hostedZoneID string) Option {
	return func(p *Provider) {
		p.zones[strings.ToLower(domain)] = hostedZoneID
	}
}

// WithFailure makes every Provision call for nodeID return err.
func WithFailure(nodeID string, err error) Option {
	return func(p *Provider) {
		p.failures[nodeID] = err
	}
}

// WithAccount sets the account ID used in ARNs.
func WithAccount(account string) Option {
	return func(p *Provider) {
		p.account = account
	}
}

// WithRegion sets the bucket region.
func WithRegion(region string) Option {
	return func(p *Provider) {
		p.region = region
	}
}

// New returns an empty Provider.
func New(opts ...Option) *Provider {
	p := &Provider{
		account:  DefaultAccount,
		region:   DefaultRegion,
		zones:    make(map[string]string),
		store:    make(map[string]topology.Attributes),
		failures: make(map[string]error),
		calls:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Provision implements topology.Provisioner.
func (p *Provider) Provision(ctx context.Context, n *topology.Node, deps topology.Deps) (topology.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return topology.Outcome{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls[n.ID]++
	if err, ok := p.failures[n.ID]; ok {
		return topology.Outcome{}, err
	}
	if attrs, ok := p.store[n.ID]; ok {
		return topology.Outcome{Attributes: copyAttrs(attrs), Existed: true}, nil
	}

	attrs, err := p.create(n, deps)
	if err != nil {
		return topology.Outcome{}, err
	}
	p.store[n.ID] = attrs
	return topology.Outcome{Attributes: copyAttrs(attrs)}, nil
}

// Calls returns how many times nodeID was provisioned.
func (p *Provider) Calls(nodeID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[nodeID]
}

// Stored returns the attributes stored for nodeID.
func (p *Provider) Stored(nodeID string) (topology.Attributes, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	attrs, ok := p.store[nodeID]
	return copyAttrs(attrs), ok
}

// Len returns the number of stored resources.
func (p *Provider) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.store)
}

func (p *Provider) create(n *topology.Node, deps topology.Deps) (topology.Attributes, error) {
	switch spec := n.Spec.(type) {
	case topology.ZoneSpec:
		id, ok := p.zones[strings.ToLower(spec.DomainName)]
		if !ok {
			return nil, &topology.ZoneNotFoundError{Domain: spec.DomainName}
		}
		if spec.HostedZoneID != "" && spec.HostedZoneID != id {
			return nil, fmt.Errorf("hosted zone %s does not serve %s", spec.HostedZoneID, spec.DomainName)
		}
		return topology.Attributes{
			topology.AttrHostedZoneID: id,
			topology.AttrName:         spec.DomainName,
		}, nil

	case topology.CertificateSpec:
		if err := needAttr(deps, spec.ZoneRef, topology.AttrHostedZoneID); err != nil {
			return nil, err
		}
		id := p.nameID("certificate", spec.DomainName)
		return topology.Attributes{
			topology.AttrArn: fmt.Sprintf("arn:aws:acm:%s:%s:certificate/%s", spec.Region, p.account, id),
		}, nil

	case topology.BucketSpec:
		return topology.Attributes{
			topology.AttrArn:                "arn:aws:s3:::" + spec.Name,
			topology.AttrName:               spec.Name,
			topology.AttrRegionalDomainName: fmt.Sprintf("%s.s3.%s.amazonaws.com", spec.Name, p.region),
		}, nil

	case topology.AccessPolicySpec:
		for _, g := range spec.Grants {
			if err := needAttr(deps, g.BucketRef, topology.AttrArn); err != nil {
				return nil, err
			}
		}
		id := p.nameID("access", spec.Comment)
		return topology.Attributes{
			topology.AttrID:              "E" + strings.ToUpper(compact(id)[:13]),
			topology.AttrCanonicalUserID: compact(id) + compact(p.nameID("canonical", spec.Comment)),
		}, nil

	case topology.DistributionSpec:
		if err := needAttr(deps, spec.CertificateRef, topology.AttrArn); err != nil {
			return nil, err
		}
		if err := needAttr(deps, spec.AccessRef, topology.AttrID); err != nil {
			return nil, err
		}
		if err := needAttr(deps, spec.Logging.BucketRef, topology.AttrName); err != nil {
			return nil, err
		}
		for _, b := range append([]topology.Behavior{spec.DefaultBehavior}, spec.Behaviors...) {
			if err := needAttr(deps, b.OriginRef, topology.AttrRegionalDomainName); err != nil {
				return nil, err
			}
		}
		key := strings.Join(spec.Aliases, ",")
		id := "E" + strings.ToUpper(compact(p.nameID("distribution", key))[:13])
		return topology.Attributes{
			topology.AttrID:         id,
			topology.AttrArn:        fmt.Sprintf("arn:aws:cloudfront::%s:distribution/%s", p.account, id),
			topology.AttrDomainName: fmt.Sprintf("d%s.cloudfront.net", compact(p.nameID("cdn-domain", key))[:13]),
		}, nil

	case topology.DnsRecordSpec:
		if err := needAttr(deps, spec.ZoneRef, topology.AttrHostedZoneID); err != nil {
			return nil, err
		}
		if err := needAttr(deps, spec.TargetRef, topology.AttrDomainName); err != nil {
			return nil, err
		}
		return topology.Attributes{topology.AttrName: spec.RecordName}, nil

	default:
		return nil, fmt.Errorf("unsupported node kind %q", n.Kind)
	}
}

func (p *Provider) nameID(kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(p.account+"/"+kind+"/"+key)).String()
}

func needAttr(deps topology.Deps, ref, attr string) error {
	if deps[ref][attr] == "" {
		return fmt.Errorf("missing attribute %s of %s", attr, ref)
	}
	return nil
}

func compact(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

func copyAttrs(a topology.Attributes) topology.Attributes {
	if a == nil {
		return nil
	}
	out := make(topology.Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}
