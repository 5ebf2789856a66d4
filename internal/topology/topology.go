// Package topology derives the resource graph of a static website and drives
// a Provisioner through it in dependency order.
package topology

import (
	"fmt"
	"sort"
)

// Topology is an acyclic set of nodes with their dependency edges.
type Topology struct {
	nodes map[string]*Node
	order []string
}

// New validates the nodes and returns a topology over them. Every dependency
// must name another node and the graph must be acyclic.
func New(nodes ...*Node) (*Topology, error) {
	t := &Topology{nodes: make(map[string]*Node, len(nodes))}
	for _, n := range nodes {
		if _, dup := t.nodes[n.ID]; dup {
			return nil, fmt.Errorf("duplicate node %q", n.ID)
		}
		if n.State == "" {
			n.State = StatePending
		}
		t.nodes[n.ID] = n
	}
	for _, n := range nodes {
		for _, dep := range n.DependsOn {
			if _, ok := t.nodes[dep]; !ok {
				return nil, fmt.Errorf("node %q depends on unknown node %q", n.ID, dep)
			}
		}
	}

	order, err := t.topologicalSort()
	if err != nil {
		return nil, err
	}
	t.order = order
	return t, nil
}

// Node returns the node with the given ID.
func (t *Topology) Node(id string) (*Node, bool) {
	n, ok := t.nodes[id]
	return n, ok
}

// Has reports whether a node with the given ID exists.
func (t *Topology) Has(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Len returns the number of nodes.
func (t *Topology) Len() int {
	return len(t.nodes)
}

// Order returns node IDs in creation order. Ties are broken lexically so the
// order is stable across runs.
func (t *Topology) Order() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Nodes returns the nodes in creation order.
func (t *Topology) Nodes() []*Node {
	out := make([]*Node, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.nodes[id])
	}
	return out
}

// Roots returns the IDs of nodes without dependencies.
func (t *Topology) Roots() []string {
	var roots []string
	for _, id := range t.order {
		if len(t.nodes[id].DependsOn) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// Levels groups nodes so every dependency of a node sits in an earlier
// level. IDs within a level are sorted.
func (t *Topology) Levels() [][]string {
	depth := make(map[string]int, len(t.order))
	var levels [][]string
	for _, id := range t.order {
		d := 0
		for _, dep := range t.nodes[id].DependsOn {
			if depth[dep]+1 > d {
				d = depth[dep] + 1
			}
		}
		depth[id] = d
		for len(levels) <= d {
			levels = append(levels, nil)
		}
		levels[d] = append(levels[d], id)
	}
	for _, level := range levels {
		sort.Strings(level)
	}
	return levels
}

// Dependents returns every node that transitively depends on id, sorted.
func (t *Topology) Dependents(id string) []string {
	reverse := make(map[string][]string)
	for _, n := range t.nodes {
		for _, dep := range n.DependsOn {
			reverse[dep] = append(reverse[dep], n.ID)
		}
	}

	seen := make(map[string]bool)
	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range reverse[cur] {
			if !seen[next] {
				seen[next] = true
				queue = append(queue, next)
			}
		}
	}

	out := make([]string, 0, len(seen))
	for dep := range seen {
		out = append(out, dep)
	}
	sort.Strings(out)
	return out
}

// topologicalSort returns node IDs in dependency order.
func (t *Topology) topologicalSort() ([]string, error) {
	graph := make(map[string][]string)
	inDegree := make(map[string]int)

	for id := range t.nodes {
		graph[id] = nil
		inDegree[id] = 0
	}

	for id, n := range t.nodes {
		for _, dep := range n.DependsOn {
			graph[dep] = append(graph[dep], id)
			inDegree[id]++
		}
	}

	// Kahn's algorithm
	var queue []string
	for id, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, id)
		}
	}
	sort.Strings(queue)

	var result []string
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)

		for _, neighbor := range graph[id] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(t.nodes) {
		return nil, t.detectCycle()
	}
	return result, nil
}

// detectCycle finds and reports a cycle in the dependency graph.
func (t *Topology) detectCycle() error {
	visited := make(map[string]bool)
	path := make(map[string]bool)

	var cycle []string
	var findCycle func(id string) bool
	findCycle = func(id string) bool {
		visited[id] = true
		path[id] = true

		for _, dep := range t.nodes[id].DependsOn {
			if !visited[dep] {
				if findCycle(dep) {
					cycle = append([]string{id}, cycle...)
					return true
				}
			} else if path[dep] {
				cycle = append([]string{dep, id}, cycle...)
				return true
			}
		}

		path[id] = false
		return false
	}

	ids := make([]string, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if !visited[id] && findCycle(id) {
			break
		}
	}

	return &CycleError{Cycle: cycle}
}
