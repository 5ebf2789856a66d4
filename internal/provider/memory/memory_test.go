package memory

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lex00/wetwire-site-go/internal/config"
	"github.com/lex00/wetwire-site-go/internal/export"
	"github.com/lex00/wetwire-site-go/internal/topology"
)

func resolved() *config.Resolved {
	return &config.Resolved{
		AppName:           "example.com",
		DomainName:        "example.com",
		Environment:       config.EnvDev,
		HasPrivateData:    true,
		PublicBucketName:  "example.com",
		PrivateBucketName: "example.com-private",
		LoggingBucketName: "example.com-logging",
		PublicDataPath:    "./site",
		PrivateDataPath:   "./private",
		Repo:              config.RepoIdentity{Repo: "website", Branch: "main"},
	}
}

func TestProvision_CreatesEveryNode(t *testing.T) {
	p := New(WithZone("example.com", "Z123"))

	topo, res, err := topology.Build(context.Background(), resolved(), p)
	require.NoError(t, err)

	assert.Equal(t, topo.Order(), res.IDs(topology.StateCreated))
	assert.Equal(t, topo.Len(), p.Len())

	cert, _ := p.Stored(topology.IDCertificate)
	assert.True(t, strings.HasPrefix(cert[topology.AttrArn], "arn:aws:acm:us-east-1:123456789012:certificate/"))

	bucket, _ := p.Stored(topology.IDPrivateBucket)
	assert.Equal(t, "arn:aws:s3:::example.com-private", bucket[topology.AttrArn])
	assert.Equal(t, "example.com-private.s3.us-east-1.amazonaws.com", bucket[topology.AttrRegionalDomainName])

	cdn, _ := p.Stored(topology.IDDistribution)
	assert.True(t, strings.HasSuffix(cdn[topology.AttrDomainName], ".cloudfront.net"))
	assert.True(t, strings.HasPrefix(cdn[topology.AttrID], "E"))
}

func TestProvision_Deterministic(t *testing.T) {
	a := New(WithZone("example.com", "Z123"))
	b := New(WithZone("example.com", "Z123"))

	_, _, err := topology.Build(context.Background(), resolved(), a)
	require.NoError(t, err)
	_, _, err = topology.Build(context.Background(), resolved(), b)
	require.NoError(t, err)

	for _, id := range []string{topology.IDCertificate, topology.IDAccess, topology.IDDistribution} {
		got, _ := a.Stored(id)
		want, _ := b.Stored(id)
		assert.Equal(t, want, got, id)
	}
}

func TestProvision_ReentryReportsExisting(t *testing.T) {
	p := New(WithZone("example.com", "Z123"))

	first, _, err := topology.Build(context.Background(), resolved(), p)
	require.NoError(t, err)

	second, res, err := topology.Build(context.Background(), resolved(), p)
	require.NoError(t, err)

	assert.Empty(t, res.IDs(topology.StateCreated))
	assert.Equal(t, second.Order(), res.IDs(topology.StateExisting))
	assert.Equal(t, first.Len(), p.Len())
	assert.Equal(t, 2, p.Calls(topology.IDDistribution))

	a, _ := first.Node(topology.IDDistribution)
	b, _ := second.Node(topology.IDDistribution)
	assert.Equal(t, a.Attributes, b.Attributes)
}

func TestProvision_ReentryExportsSameOutputs(t *testing.T) {
	p := New(WithZone("example.com", "Z123"))

	first, _, err := topology.Build(context.Background(), resolved(), p)
	require.NoError(t, err)
	second, _, err := topology.Build(context.Background(), resolved(), p)
	require.NoError(t, err)

	want, err := export.Export(first)
	require.NoError(t, err)
	got, err := export.Export(second)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestProvision_MissingZone(t *testing.T) {
	p := New()

	_, res, err := topology.Build(context.Background(), resolved(), p)

	var zoneErr *topology.ZoneNotFoundError
	require.True(t, errors.As(err, &zoneErr))
	assert.Equal(t, topology.StateFailed, res.States[topology.IDZone])
	assert.Equal(t, 0, p.Calls(topology.IDCertificate))
}

func TestProvision_ZoneIDMismatch(t *testing.T) {
	cfg := resolved()
	cfg.HostedZoneID = "ZOTHER"

	_, _, err := topology.Build(context.Background(), cfg, New(WithZone("example.com", "Z123")))
	var provErr *topology.ProvisioningError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, topology.IDZone, provErr.NodeID)
}

func TestProvision_MissingDependencyAttributes(t *testing.T) {
	p := New()
	n := &topology.Node{
		ID:   topology.IDRecord,
		Kind: topology.KindDnsRecord,
		Spec: topology.DnsRecordSpec{RecordName: "example.com", ZoneRef: topology.IDZone, TargetRef: topology.IDDistribution},
	}

	_, err := p.Provision(context.Background(), n, topology.Deps{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HostedZoneId")
}

func TestProvision_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Provision(ctx, &topology.Node{ID: "x"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
