package optimizer

import (
	"github.com/lex00/wetwire-site-go/internal/template"
)

// legacyProtocols are viewer TLS policies older than TLSv1.2_2021.
var legacyProtocols = map[string]bool{
	"SSLv3":        true,
	"TLSv1":        true,
	"TLSv1_2016":   true,
	"TLSv1.1_2016": true,
	"TLSv1.2_2018": true,
	"TLSv1.2_2019": true,
}

var bucketRules = []Rule{
	{
		ID:         "OPT-S3-001",
		Category:   CategorySecurity,
		Severity:   "high",
		Title:      "Bucket has no default encryption",
		Suggestion: "Add BucketEncryption with SSE-S3 or SSE-KMS.",
		Check: func(props map[string]any) bool {
			rules, _ := dig(props, "BucketEncryption", "ServerSideEncryptionConfiguration").([]any)
			return len(rules) == 0
		},
	},
	{
		ID:         "OPT-S3-002",
		Category:   CategorySecurity,
		Severity:   "high",
		Title:      "Bucket does not block all public access",
		Suggestion: "Set every PublicAccessBlockConfiguration flag to true.",
		Check: func(props map[string]any) bool {
			for _, flag := range []string{"BlockPublicAcls", "BlockPublicPolicy", "IgnorePublicAcls", "RestrictPublicBuckets"} {
				if on, _ := dig(props, "PublicAccessBlockConfiguration", flag).(bool); !on {
					return true
				}
			}
			return false
		},
	},
	{
		ID:         "OPT-S3-003",
		Category:   CategoryReliability,
		Severity:   "medium",
		Title:      "Content bucket has no versioning",
		Suggestion: "Add VersioningConfiguration with Status Enabled so overwritten pages can be restored.",
		Check: func(props map[string]any) bool {
			if isLogBucket(props) {
				return false
			}
			status, _ := dig(props, "VersioningConfiguration", "Status").(string)
			return status != "Enabled"
		},
	},
	{
		ID:         "OPT-S3-004",
		Category:   CategoryCost,
		Severity:   "low",
		Title:      "Access logs never expire",
		Suggestion: "Add a LifecycleConfiguration rule that expires old access logs.",
		Check: func(props map[string]any) bool {
			return isLogBucket(props) && dig(props, "LifecycleConfiguration") == nil
		},
	},
}

var distributionRules = []Rule{
	{
		ID:         "OPT-CF-001",
		Category:   CategorySecurity,
		Severity:   "high",
		Title:      "Viewer TLS policy allows legacy protocols",
		Suggestion: "Set ViewerCertificate.MinimumProtocolVersion to TLSv1.2_2021.",
		Check: func(props map[string]any) bool {
			v, _ := dig(props, "DistributionConfig", "ViewerCertificate", "MinimumProtocolVersion").(string)
			return v == "" || legacyProtocols[v]
		},
	},
	{
		ID:         "OPT-CF-002",
		Category:   CategorySecurity,
		Severity:   "low",
		Title:      "Distribution has no web ACL",
		Suggestion: "Attach an AWS WAF web ACL with WebACLId.",
		Check: func(props map[string]any) bool {
			return dig(props, "DistributionConfig", "WebACLId") == nil
		},
	},
	{
		ID:         "OPT-CF-003",
		Category:   CategoryPerformance,
		Severity:   "low",
		Title:      "Cache behavior does not compress",
		Suggestion: "Set Compress to true on every cache behavior.",
		Check: func(props map[string]any) bool {
			behaviors := []any{dig(props, "DistributionConfig", "DefaultCacheBehavior")}
			if extra, ok := dig(props, "DistributionConfig", "CacheBehaviors").([]any); ok {
				behaviors = append(behaviors, extra...)
			}
			for _, b := range behaviors {
				m, _ := b.(map[string]any)
				if on, _ := m["Compress"].(bool); !on {
					return true
				}
			}
			return false
		},
	},
	{
		ID:         "OPT-CF-004",
		Category:   CategoryCost,
		Severity:   "low",
		Title:      "Distribution serves from every edge location",
		Suggestion: "Use PriceClass_100 or PriceClass_200 unless the audience is global.",
		Check: func(props map[string]any) bool {
			v, _ := dig(props, "DistributionConfig", "PriceClass").(string)
			return v == "" || v == "PriceClass_All"
		},
	},
}

var genericRules = []Rule{
	{
		ID:         "OPT-GEN-001",
		Category:   CategoryCost,
		Severity:   "low",
		Title:      "Resource is not tagged",
		Suggestion: "Add Tags so cost allocation can attribute the resource.",
		Check: func(props map[string]any) bool {
			tags, _ := props["Tags"].([]any)
			return len(tags) == 0
		},
	},
}

// taggable lists types whose Tags property the generic rules inspect.
var taggable = map[string]bool{
	template.TypeBucket:       true,
	template.TypeCertificate:  true,
	template.TypeDistribution: true,
}

func getRulesForType(resourceType string) []Rule {
	var rules []Rule
	switch resourceType {
	case template.TypeBucket:
		rules = append(rules, bucketRules...)
	case template.TypeDistribution:
		rules = append(rules, distributionRules...)
	}
	if taggable[resourceType] {
		rules = append(rules, genericRules...)
	}
	return rules
}

// isLogBucket reports whether the bucket accepts CloudFront log ACLs.
func isLogBucket(props map[string]any) bool {
	rules, _ := dig(props, "OwnershipControls", "Rules").([]any)
	for _, r := range rules {
		m, _ := r.(map[string]any)
		if m["ObjectOwnership"] == "BucketOwnerPreferred" {
			return true
		}
	}
	return false
}

// dig follows keys through nested maps and returns nil when any is missing.
func dig(v any, keys ...string) any {
	for _, k := range keys {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[k]
	}
	return v
}
