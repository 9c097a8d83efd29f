// Package pathenum performs bounded-depth breadth-first search over the
// live topology to produce K candidate simple paths per (src,dst) pair.
package pathenum

import (
	"sort"

	"github.com/netarch/teflow/internal/model"
)

// MaxHops bounds path length, per spec.md §4.7.
const MaxHops = 10

// firstPathID is where globally unique path ids start counting from.
const firstPathID = 100

// Pair is a (src,dst) demand endpoint, always required with src < dst.
type Pair struct {
	Src, Dst int
}

// Result is the enumerator's output: every generated path, plus the index
// grouping path ids by (src,dst).
type Result struct {
	Paths  map[int]model.Path
	ByPair map[Pair][]int
	nextID int
}

// Enumerate runs bounded BFS from each pair's src, emitting up to k simple
// paths in BFS order (shorter first), per spec.md §4.7.
func Enumerate(adjacency map[int][]int, pairs []Pair, k int) Result {
	res := Result{
		Paths:  make(map[int]model.Path),
		ByPair: make(map[Pair][]int),
		nextID: firstPathID,
	}
	if k <= 0 {
		return res
	}

	neighbors := make(map[int][]int, len(adjacency))
	for n, ns := range adjacency {
		sorted := append([]int(nil), ns...)
		sort.Ints(sorted)
		neighbors[n] = sorted
	}

	for _, pair := range pairs {
		res.enumeratePair(pair, neighbors, k)
	}
	return res
}

type bfsState struct {
	node int
	path []int // node sequence so far, including node
}

func (res *Result) enumeratePair(pair Pair, neighbors map[int][]int, k int) {
	found := 0
	queue := []bfsState{{node: pair.Src, path: []int{pair.Src}}}

	for len(queue) > 0 && found < k {
		cur := queue[0]
		queue = queue[1:]

		if cur.node == pair.Dst && len(cur.path) > 1 {
			id := res.nextID
			res.nextID++
			p := model.Path{ID: id, Edges: edgesOf(cur.path)}
			res.Paths[id] = p
			res.ByPair[pair] = append(res.ByPair[pair], id)
			found++
			continue
		}

		if len(cur.path)-1 >= MaxHops {
			continue
		}

		visited := make(map[int]bool, len(cur.path))
		for _, n := range cur.path {
			visited[n] = true
		}

		for _, next := range neighbors[cur.node] {
			if visited[next] {
				continue
			}
			nextPath := append(append([]int(nil), cur.path...), next)
			queue = append(queue, bfsState{node: next, path: nextPath})
		}
	}
}

// edgesOf converts a node sequence into its canonical LinkId sequence.
func edgesOf(nodes []int) []model.LinkId {
	edges := make([]model.LinkId, 0, len(nodes)-1)
	for i := 0; i+1 < len(nodes); i++ {
		edges = append(edges, model.NewLinkId(nodes[i], nodes[i+1]))
	}
	return edges
}

// Endpoints recovers a path's (src,dst) pair from its edge sequence: the
// two nodes of odd degree in the edge multiset, falling back to the first
// and last edge's endpoints when there are not exactly two of them (e.g. an
// edge sequence that closes a cycle).
func Endpoints(p model.Path) (src, dst int, ok bool) {
	if len(p.Edges) == 0 {
		return 0, 0, false
	}

	degree := make(map[int]int)
	for _, e := range p.Edges {
		degree[e.U]++
		degree[e.V]++
	}

	var odd []int
	for n, d := range degree {
		if d%2 == 1 {
			odd = append(odd, n)
		}
	}

	if len(odd) == 2 {
		sort.Ints(odd)
		return odd[0], odd[1], true
	}

	first := p.Edges[0]
	last := p.Edges[len(p.Edges)-1]
	// Pick whichever endpoint of the first edge isn't shared with the
	// second edge (or itself, for a single-edge path) as src, and
	// similarly for dst off the last edge.
	var second model.LinkId
	if len(p.Edges) > 1 {
		second = p.Edges[1]
	} else {
		second = first
	}
	src = first.U
	if first.U == second.U || first.U == second.V {
		src = first.V
	}
	var secondToLast model.LinkId
	if len(p.Edges) > 1 {
		secondToLast = p.Edges[len(p.Edges)-2]
	} else {
		secondToLast = last
	}
	dst = last.V
	if last.V == secondToLast.U || last.V == secondToLast.V {
		dst = last.U
	}
	return src, dst, true
}
