// Package resolve computes a global load order over a wired component
// graph: a depth-first post-order walk that places every reachable
// dependency before its dependents.
//
// The walk is iterative (an explicit frame stack over an arena of node
// indices), so arbitrarily deep dependency chains cannot exhaust the
// call stack. Cycles are tolerated rather than rejected: a dependency
// that is already on the current descent path is skipped without
// re-descending, which yields a deterministic best-effort order for the
// cyclic subset instead of failing it.
package resolve

// Graph is an arena of node indices with directed dependency edges.
// Nodes are identified by index in [0, n); the caller owns the mapping
// from indices to whatever the nodes represent.
type Graph struct {
	out [][]int
}

// New creates a graph with n nodes and no edges.
func New(n int) *Graph {
	return &Graph{out: make([][]int, n)}
}

// AddEdge records that node from depends on node to. Edge insertion
// order is preserved and determines traversal order among one node's
// dependencies.
func (g *Graph) AddEdge(from, to int) {
	g.out[from] = append(g.out[from], to)
}

type marker uint8

const (
	unseen marker = iota
	inProgress
	resolved
)

// Order returns the dependency-first order of all nodes reachable from
// the seeds. Each seed starts one descent; a node placed by an earlier
// descent is never visited again, so seed order is the tie-break among
// nodes with no relative dependency constraint. Every reachable node
// appears exactly once. The result is a pure function of the graph and
// the seed sequence.
func (g *Graph) Order(seeds []int) []int {
	marks := make([]marker, len(g.out))
	order := make([]int, 0, len(g.out))

	type frame struct {
		node int
		next int
	}
	var stack []frame

	for _, seed := range seeds {
		if marks[seed] != unseen {
			continue
		}
		marks[seed] = inProgress
		stack = append(stack[:0], frame{node: seed})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			if top.next < len(g.out[top.node]) {
				dep := g.out[top.node][top.next]
				top.next++
				// A resolved dependency is already placed; an in-progress
				// one is on the current path, and descending into it again
				// would recurse forever. Both are skipped.
				if marks[dep] == unseen {
					marks[dep] = inProgress
					stack = append(stack, frame{node: dep})
				}
				continue
			}
			marks[top.node] = resolved
			order = append(order, top.node)
			stack = stack[:len(stack)-1]
		}
	}

	return order
}
