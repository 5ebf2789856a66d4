package topology

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/lex00/wetwire-site-go/internal/config"
	"github.com/lex00/wetwire-site-go/internal/policy"
)

func baseConfig() *config.Resolved {
	return &config.Resolved{
		AppName:           "example.com",
		DomainName:        "example.com",
		Environment:       config.EnvProd,
		PublicBucketName:  "example.com",
		LoggingBucketName: "example.com-logging",
		PublicDataPath:    "./site",
		Repo:              config.RepoIdentity{Owner: "acme", Repo: "website", Branch: "main"},
	}
}

func withPrivate(cfg *config.Resolved) *config.Resolved {
	cfg.HasPrivateData = true
	cfg.PrivateBucketName = "example.com-private"
	cfg.PrivateDataPath = "./private"
	return cfg
}

func mustPlan(t *testing.T, cfg *config.Resolved) *Topology {
	t.Helper()
	topo, err := Plan(cfg)
	require.NoError(t, err)
	return topo
}

func distribution(t *testing.T, topo *Topology) DistributionSpec {
	t.Helper()
	n, ok := topo.Node(IDDistribution)
	require.True(t, ok)
	return n.Spec.(DistributionSpec)
}

func TestPlan_Minimal(t *testing.T) {
	topo := mustPlan(t, baseConfig())

	assert.Equal(t, []string{
		IDZone,
		IDCertificate,
		IDPublicBucket,
		IDAccess,
		IDLoggingBucket,
		IDDistribution,
		IDRecord,
	}, topo.Order())
	assert.False(t, topo.Has(IDPrivateBucket))
	assert.False(t, topo.Has(IDWildcardCertificate))
	assert.Equal(t, []string{IDZone}, topo.Roots())
}

func TestPlan_Levels(t *testing.T) {
	cfg := withPrivate(baseConfig())
	cfg.GenerateWildcardCertificate = true

	assert.Equal(t, [][]string{
		{IDZone},
		{IDCertificate, IDWildcardCertificate},
		{IDPrivateBucket, IDPublicBucket, IDLoggingBucket},
		{IDAccess},
		{IDDistribution},
		{IDRecord},
	}, mustPlan(t, cfg).Levels())
}

func TestPlan_ExampleCanonicalPublicName(t *testing.T) {
	raw := config.RawConfig{
		DomainName:       "example.com",
		PublicBucketName: "Example.com/Site",
		HasPrivateData:   new(bool),
		PublicDataPath:   "./site",
		GithubRepo:       "website",
		GithubBranch:     "main",
	}
	cfg, err := config.Resolve(raw, config.WithDirChecker(config.DirCheckerFunc(func(string) (bool, error) {
		return true, nil
	})))
	require.NoError(t, err)

	topo := mustPlan(t, cfg)
	public, _ := topo.Node(IDPublicBucket)
	logging, _ := topo.Node(IDLoggingBucket)

	assert.Equal(t, "example.com-site", public.Spec.(BucketSpec).Name)
	assert.Equal(t, "example.com-site-logging", logging.Spec.(BucketSpec).Name)
	assert.False(t, topo.Has(IDPrivateBucket))
	assert.Empty(t, distribution(t, topo).Behaviors)
}

func TestPlan_PrivateBucket(t *testing.T) {
	topo := mustPlan(t, withPrivate(baseConfig()))

	n, ok := topo.Node(IDPrivateBucket)
	require.True(t, ok)
	spec := n.Spec.(BucketSpec)
	assert.Equal(t, "example.com-private", spec.Name)
	assert.Equal(t, RolePrivate, spec.Role)

	dist := distribution(t, topo)
	require.Len(t, dist.Behaviors, 1)
	assert.Equal(t, PrivatePathPattern, dist.Behaviors[0].PathPattern)
	assert.Equal(t, IDPrivateBucket, dist.Behaviors[0].OriginRef)
	assert.Contains(t, n.DependsOn, IDCertificate)
}

func TestPlan_Distribution(t *testing.T) {
	dist := distribution(t, mustPlan(t, baseConfig()))

	assert.Equal(t, []string{"example.com"}, dist.Aliases)
	assert.Equal(t, IDCertificate, dist.CertificateRef)
	assert.Equal(t, "index.html", dist.DefaultRootObject)
	assert.Equal(t, "http2and3", dist.HTTPVersion)
	assert.Equal(t, "TLSv1.2_2021", dist.MinimumProtocolVersion)
	assert.Equal(t, "PriceClass_100", dist.PriceClass)
	assert.Equal(t, LoggingSpec{BucketRef: IDLoggingBucket, Prefix: "cf-access-logs/"}, dist.Logging)
	assert.Equal(t, []ErrorResponse{{403, 60}, {404, 60}}, dist.ErrorResponses)

	def := dist.DefaultBehavior
	assert.Empty(t, def.PathPattern)
	assert.Equal(t, IDPublicBucket, def.OriginRef)
	assert.True(t, def.Compress)
	assert.Equal(t, "redirect-to-https", def.ViewerProtocolPolicy)
	assert.Equal(t, []string{"GET", "HEAD", "OPTIONS"}, def.AllowedMethods)
}

func TestPlan_Certificates(t *testing.T) {
	cfg := baseConfig()
	cfg.GenerateWildcardCertificate = true
	topo := mustPlan(t, cfg)

	base, _ := topo.Node(IDCertificate)
	wild, ok := topo.Node(IDWildcardCertificate)
	require.True(t, ok)

	assert.Equal(t, CertificateSpec{DomainName: "example.com", Region: "us-east-1", Validation: "DNS", ZoneRef: IDZone}, base.Spec)
	assert.Equal(t, "*.example.com", wild.Spec.(CertificateSpec).DomainName)
	assert.Equal(t, []string{IDZone}, wild.DependsOn)
}

func TestPlan_Record(t *testing.T) {
	n, ok := mustPlan(t, baseConfig()).Node(IDRecord)
	require.True(t, ok)

	assert.Equal(t, DnsRecordSpec{RecordName: "example.com", Type: "A", ZoneRef: IDZone, TargetRef: IDDistribution}, n.Spec)
	assert.ElementsMatch(t, []string{IDZone, IDDistribution}, n.DependsOn)
}

func TestPlan_Lifecycle(t *testing.T) {
	tests := []struct {
		env  config.Environment
		want policy.Lifecycle
	}{
		{config.EnvDev, policy.Lifecycle{Removal: policy.RemovalDestroy, AutoDeleteObjects: true}},
		{config.EnvProd, policy.Lifecycle{Removal: policy.RemovalRetain}},
	}
	for _, tt := range tests {
		t.Run(string(tt.env), func(t *testing.T) {
			cfg := withPrivate(baseConfig())
			cfg.Environment = tt.env

			for _, n := range mustPlan(t, cfg).Nodes() {
				if spec, ok := n.Spec.(BucketSpec); ok {
					assert.Equal(t, tt.want, spec.Lifecycle, n.ID)
				}
			}
		})
	}
}

func TestPlan_TagsEveryNode(t *testing.T) {
	for _, n := range mustPlan(t, withPrivate(baseConfig())).Nodes() {
		assert.Equal(t, map[string]string{"project": "website:main"}, n.Tags, n.ID)
		assert.Equal(t, StatePending, n.State)
	}
}

func TestPlan_AccessGrantsOnlyDataBuckets(t *testing.T) {
	n, _ := mustPlan(t, withPrivate(baseConfig())).Node(IDAccess)
	spec := n.Spec.(AccessPolicySpec)

	var refs []string
	for _, g := range spec.Grants {
		refs = append(refs, g.BucketRef)
		assert.Equal(t, []string{"s3:GetObject"}, g.Actions)
	}
	assert.Equal(t, []string{IDPublicBucket, IDPrivateBucket}, refs)
}

func TestPlan_NilConfig(t *testing.T) {
	_, err := Plan(nil)
	require.Error(t, err)
}

func TestNew_RejectsBadGraphs(t *testing.T) {
	_, err := New(&Node{ID: "a", DependsOn: []string{"missing"}})
	require.Error(t, err)

	_, err = New(&Node{ID: "a"}, &Node{ID: "a"})
	require.Error(t, err)

	_, err = New(
		&Node{ID: "a", DependsOn: []string{"c"}},
		&Node{ID: "b", DependsOn: []string{"a"}},
		&Node{ID: "c", DependsOn: []string{"b"}},
	)
	var cycle *CycleError
	require.True(t, errors.As(err, &cycle))
	assert.NotEmpty(t, cycle.Cycle)
	assert.Contains(t, err.Error(), "circular dependency")
}

func TestDependents(t *testing.T) {
	topo := mustPlan(t, withPrivate(baseConfig()))

	assert.Equal(t, []string{IDAccess, IDRecord, IDDistribution}, topo.Dependents(IDPrivateBucket))
	assert.Empty(t, topo.Dependents(IDRecord))
	assert.Len(t, topo.Dependents(IDZone), topo.Len()-1)
}

func genConfig(t *rapid.T) *config.Resolved {
	cfg := baseConfig()
	cfg.Environment = rapid.SampledFrom([]config.Environment{config.EnvDev, config.EnvProd}).Draw(t, "env")
	cfg.GenerateWildcardCertificate = rapid.Bool().Draw(t, "wildcard")
	cfg.HasPrivateData = rapid.Bool().Draw(t, "private")
	if cfg.HasPrivateData {
		cfg.PrivateBucketName = rapid.StringMatching(`[a-z0-9.-]{0,12}`).Draw(t, "privateName")
	}
	return cfg
}

func TestPlan_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		cfg := genConfig(t)
		topo, err := Plan(cfg)
		if err != nil {
			t.Fatalf("plan: %v", err)
		}

		wantPrivate := cfg.HasPrivateData && cfg.PrivateBucketName != ""
		if topo.Has(IDPrivateBucket) != wantPrivate {
			t.Fatalf("private node present=%v, want %v", topo.Has(IDPrivateBucket), wantPrivate)
		}
		if topo.Has(IDWildcardCertificate) != cfg.GenerateWildcardCertificate {
			t.Fatalf("wildcard node mismatch")
		}

		n, _ := topo.Node(IDDistribution)
		behaviors := len(n.Spec.(DistributionSpec).Behaviors)
		if (behaviors == 1) != wantPrivate || behaviors > 1 {
			t.Fatalf("got %d extra behaviors", behaviors)
		}

		if roots := topo.Roots(); len(roots) != 1 || roots[0] != IDZone {
			t.Fatalf("roots = %v", roots)
		}

		for _, n := range topo.Nodes() {
			spec, ok := n.Spec.(BucketSpec)
			if !ok {
				continue
			}
			if spec.Policy != policy.Secure() {
				t.Fatalf("bucket %s has a non-secure posture", n.ID)
			}
			if spec.Lifecycle != policy.LifecycleFor(cfg.IsProd()) {
				t.Fatalf("bucket %s lifecycle mismatch", n.ID)
			}
		}

		again, err := Plan(cfg)
		if err != nil {
			t.Fatalf("replan: %v", err)
		}
		if len(again.Order()) != len(topo.Order()) {
			t.Fatalf("order length changed")
		}
		for i, id := range topo.Order() {
			if again.Order()[i] != id {
				t.Fatalf("order differs at %d", i)
			}
			a, _ := topo.Node(id)
			b, _ := again.Node(id)
			if a.Kind != b.Kind || len(a.DependsOn) != len(b.DependsOn) {
				t.Fatalf("node %s differs between plans", id)
			}
		}
	})
}
