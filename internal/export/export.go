// Package export projects the identifiers a provisioned topology publishes.
package export

import (
	"fmt"

	"github.com/lex00/wetwire-site-go/internal/topology"
)

// Output keys.
const (
	KeyCertificateArn         = "CertificateArn"
	KeyWildcardCertificateArn = "WildcardCertificateArn"
	KeyARecord                = "CloudFrontARecord"
	KeyURL                    = "CloudFrontURL"
	KeyDistributionID         = "CloudFrontID"
)

// Descriptions are the human-readable descriptions of each key.
var Descriptions = map[string]string{
	KeyCertificateArn:         "ARN of the website certificate",
	KeyWildcardCertificateArn: "ARN of the wildcard website certificate",
	KeyARecord:                "DNS name of the CloudFront alias record",
	KeyURL:                    "URL of the website",
	KeyDistributionID:         "ID of the CloudFront distribution",
}

// NotProvisionedError reports an export from a node that has no attributes.
type NotProvisionedError struct {
	NodeID string
	State  topology.State
}

func (e *NotProvisionedError) Error() string {
	return fmt.Sprintf("node %s is not provisioned (state %s)", e.NodeID, e.State)
}

type source struct {
	key    string
	nodeID string
	attr   string
	format func(string) string
}

func sources(t *topology.Topology) []source {
	out := []source{{key: KeyCertificateArn, nodeID: topology.IDCertificate, attr: topology.AttrArn}}
	if t.Has(topology.IDWildcardCertificate) {
		out = append(out, source{key: KeyWildcardCertificateArn, nodeID: topology.IDWildcardCertificate, attr: topology.AttrArn})
	}
	return append(out,
		source{key: KeyARecord, nodeID: topology.IDRecord, attr: topology.AttrName},
		source{key: KeyURL, nodeID: topology.IDDistribution, attr: topology.AttrDomainName, format: func(v string) string {
			return "https://" + v
		}},
		source{key: KeyDistributionID, nodeID: topology.IDDistribution, attr: topology.AttrID},
	)
}

// Keys lists the output keys t will export, in a fixed order.
func Keys(t *topology.Topology) []string {
	var keys []string
	for _, s := range sources(t) {
		keys = append(keys, s.key)
	}
	return keys
}

// Export returns the outputs of a provisioned topology. The wildcard
// certificate key is present only when that certificate was planned.
func Export(t *topology.Topology) (map[string]string, error) {
	out := make(map[string]string)
	for _, s := range sources(t) {
		n, ok := t.Node(s.nodeID)
		if !ok {
			return nil, &NotProvisionedError{NodeID: s.nodeID}
		}
		if !n.State.Done() {
			return nil, &NotProvisionedError{NodeID: s.nodeID, State: n.State}
		}
		v, ok := n.Attributes[s.attr]
		if !ok || v == "" {
			return nil, fmt.Errorf("node %s has no %s attribute", s.nodeID, s.attr)
		}
		if s.format != nil {
			v = s.format(v)
		}
		out[s.key] = v
	}
	return out, nil
}
