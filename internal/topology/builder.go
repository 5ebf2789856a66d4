package topology

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lex00/wetwire-site-go/internal/config"
)

// Provisioner creates or finds the real resource behind a node.
type Provisioner interface {
	Provision(ctx context.Context, n *Node, deps Deps) (Outcome, error)
}

// Outcome is the result of provisioning one node. Existed is set when the
// resource was already present.
type Outcome struct {
	Attributes Attributes
	Existed    bool
}

// Result reports the state of every node after Apply.
type Result struct {
	Order  []string
	States map[string]State
}

// IDs returns the node IDs in the given state, in creation order.
func (r *Result) IDs(state State) []string {
	var out []string
	for _, id := range r.Order {
		if r.States[id] == state {
			out = append(out, id)
		}
	}
	return out
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithLogger sets the logger used to report node transitions.
func WithLogger(l *zap.Logger) BuilderOption {
	return func(b *Builder) {
		b.log = l
	}
}

// WithConcurrency caps the number of nodes provisioned at once within a
// level. Zero or less means no cap.
func WithConcurrency(n int) BuilderOption {
	return func(b *Builder) {
		b.limit = n
	}
}

// Builder walks a topology level by level.
type Builder struct {
	p     Provisioner
	log   *zap.Logger
	limit int
}

// NewBuilder returns a Builder that provisions through p.
func NewBuilder(p Provisioner, opts ...BuilderOption) *Builder {
	b := &Builder{p: p, log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build plans the topology for cfg and applies it with p.
func Build(ctx context.Context, cfg *config.Resolved, p Provisioner, opts ...BuilderOption) (*Topology, *Result, error) {
	t, err := Plan(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := NewBuilder(p, opts...).Apply(ctx, t)
	return t, res, err
}

type outcome struct {
	out Outcome
	err error
}

// Apply provisions every pending node of t. Nodes of one level run
// concurrently; results are recorded in sorted order.
//
// A zone or certificate failure stops the build. Any other failure marks
// the node failed and skips everything that depends on it. Nodes already
// created or existing are left as they are.
func (b *Builder) Apply(ctx context.Context, t *Topology) (*Result, error) {
	var errs []error
	fatal := false

	for _, level := range t.Levels() {
		if fatal {
			break
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		var run []*Node
		for _, id := range level {
			n := t.nodes[id]
			if n.State != StatePending {
				continue
			}
			if !b.ready(t, n) {
				n.State = StateSkipped
				b.log.Info("node skipped", zap.String("node", n.ID), zap.String("kind", string(n.Kind)))
				continue
			}
			run = append(run, n)
		}

		results := make([]outcome, len(run))
		var g errgroup.Group
		if b.limit > 0 {
			g.SetLimit(b.limit)
		}
		for i, n := range run {
			deps := make(Deps, len(n.DependsOn))
			for _, dep := range n.DependsOn {
				deps[dep] = t.nodes[dep].Attributes
			}
			g.Go(func() error {
				out, err := b.p.Provision(ctx, n, deps)
				results[i] = outcome{out: out, err: err}
				return nil
			})
		}
		_ = g.Wait()

		for i, n := range run {
			r := results[i]
			if r.err != nil {
				n.State = StateFailed
				errs = append(errs, wrapFailure(n, r.err))
				b.log.Error("node failed",
					zap.String("node", n.ID),
					zap.String("kind", string(n.Kind)),
					zap.Strings("dependents", t.Dependents(n.ID)),
					zap.Error(r.err),
				)
				if n.Kind == KindZone || n.Kind == KindCertificate {
					fatal = true
				}
				continue
			}

			n.Attributes = r.out.Attributes
			if r.out.Existed {
				n.State = StateExisting
			} else {
				n.State = StateCreated
			}
			b.log.Info("node provisioned",
				zap.String("node", n.ID),
				zap.String("kind", string(n.Kind)),
				zap.String("state", string(n.State)),
			)
		}
	}

	res := &Result{Order: t.Order(), States: make(map[string]State, t.Len())}
	for _, n := range t.Nodes() {
		if n.State == StatePending && (fatal || len(errs) > 0) {
			n.State = StateSkipped
		}
		res.States[n.ID] = n.State
	}
	return res, errors.Join(errs...)
}

func (b *Builder) ready(t *Topology, n *Node) bool {
	for _, dep := range n.DependsOn {
		if !t.nodes[dep].State.Done() {
			return false
		}
	}
	return true
}

func wrapFailure(n *Node, err error) error {
	var zoneErr *ZoneNotFoundError
	if errors.As(err, &zoneErr) {
		return err
	}
	var provErr *ProvisioningError
	if errors.As(err, &provErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("provisioning %s: %w", n.ID, err)
	}
	return &ProvisioningError{NodeID: n.ID, Kind: n.Kind, Err: err}
}
