// Package synth is a Provisioner that creates nothing. It answers every node
// with CloudFormation substitution tokens such as ${WebsiteCDN.DomainName},
// so values derived from the attributes can be emitted as Fn::Sub
// expressions in a rendered template.
package synth

import (
	"context"
	"fmt"
	"strings"

	"github.com/lex00/wetwire-site-go/internal/topology"
)

// Provider synthesizes attribute tokens for every node.
type Provider struct{}

// New returns a Provider.
func New() *Provider {
	return &Provider{}
}

// Ref returns the token for the primary identifier of a logical resource.
func Ref(logicalID string) string {
	return "${" + logicalID + "}"
}

// Att returns the token for an attribute of a logical resource.
func Att(logicalID, attr string) string {
	return "${" + logicalID + "." + attr + "}"
}

// IsToken reports whether s contains a substitution token.
func IsToken(s string) bool {
	i := strings.Index(s, "${")
	return i >= 0 && strings.Contains(s[i:], "}")
}

// Provision implements topology.Provisioner. The zone is the only node that
// cannot be synthesized: it must be named by a known hosted zone ID.
func (p *Provider) Provision(ctx context.Context, n *topology.Node, _ topology.Deps) (topology.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return topology.Outcome{}, err
	}

	var attrs topology.Attributes
	switch spec := n.Spec.(type) {
	case topology.ZoneSpec:
		if spec.HostedZoneID == "" {
			return topology.Outcome{}, &topology.ZoneNotFoundError{Domain: spec.DomainName}
		}
		attrs = topology.Attributes{
			topology.AttrHostedZoneID: spec.HostedZoneID,
			topology.AttrName:         spec.DomainName,
		}
	case topology.CertificateSpec:
		attrs = topology.Attributes{topology.AttrArn: Ref(n.ID)}
	case topology.BucketSpec:
		attrs = topology.Attributes{
			topology.AttrArn:                Att(n.ID, topology.AttrArn),
			topology.AttrName:               Ref(n.ID),
			topology.AttrRegionalDomainName: Att(n.ID, topology.AttrRegionalDomainName),
		}
	case topology.AccessPolicySpec:
		attrs = topology.Attributes{
			topology.AttrID:              Ref(n.ID),
			topology.AttrCanonicalUserID: Att(n.ID, topology.AttrCanonicalUserID),
		}
	case topology.DistributionSpec:
		attrs = topology.Attributes{
			topology.AttrID:         Ref(n.ID),
			topology.AttrDomainName: Att(n.ID, topology.AttrDomainName),
		}
	case topology.DnsRecordSpec:
		attrs = topology.Attributes{topology.AttrName: Ref(n.ID)}
	default:
		return topology.Outcome{}, fmt.Errorf("unsupported node kind %q", n.Kind)
	}
	return topology.Outcome{Attributes: attrs}, nil
}
