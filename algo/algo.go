// pangraph: a pangenome variation graph core library.
// Copyright (c) 2026 the pangraph authors.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/exascience/pangraph/blob/master/LICENSE.txt>.

// Package algo implements whole-graph algorithms over a graph.Store:
// topological sort, strongly connected components, dagification,
// inversion unfolding, bluntification, normalization, and simple-
// component discovery.
package algo

import (
	"sort"

	"github.com/willf/bitset"

	"github.com/exascience/pangraph/graph"
)

// vertex is one oriented traversal, the effective unit Kahn's
// algorithm and Tarjan's algorithm both operate on in a bidirected
// graph: each node contributes two vertices, forward and reverse.
type vertex struct {
	node    graph.NodeID
	reverse bool
}

func (v vertex) traversal() graph.Traversal { return graph.Traversal{Node: v.node, Reverse: v.reverse} }

// TopologicalSort orders every node by Kahn's algorithm generalized to
// bidirected graphs: each node's left/right-degree is the number of
// edges attached to its start/end side, and a node is seeded once its
// chosen orientation's left-degree reaches zero. It returns the order
// and reports cyclicity via ok=false when some node's degree never
// reaches zero (a cycle remains).
func TopologicalSort(s *graph.Store) (order []graph.NodeID, ok bool) {
	ids := collectNodeIDs(s)
	leftDeg := make(map[graph.NodeID]int, len(ids))
	rightDeg := make(map[graph.NodeID]int, len(ids))
	for _, id := range ids {
		leftDeg[id] = countSide(s, graph.Side{Node: id, End: graph.Start})
		rightDeg[id] = countSide(s, graph.Side{Node: id, End: graph.End})

		// An inverting self-loop (both edge endpoints the same side)
		// can never be resolved by Kahn's removal step: crossing it
		// always lands back on the side it left from, and a node
		// already marked visited never decrements its own left-degree
		// when it follows its own outgoing edges. Without this, a
		// same-side self-loop on the End side is invisible to the
		// left-degree readiness gate and the node is wrongly seeded.
		if _, ok := s.GetEdge(graph.Side{Node: id, End: graph.Start}, graph.Side{Node: id, End: graph.Start}); ok {
			leftDeg[id]++
		}
		if _, ok := s.GetEdge(graph.Side{Node: id, End: graph.End}, graph.Side{Node: id, End: graph.End}); ok {
			leftDeg[id]++
		}
	}

	var queue []graph.NodeID
	for _, id := range ids {
		if leftDeg[id] == 0 {
			queue = append(queue, id)
		}
	}
	sort.Slice(queue, func(i, j int) bool { return queue[i] < queue[j] })

	visited := bitset.New(uint(s.MaxNodeID()) + 1)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if visited.Test(uint(id)) {
			continue
		}
		visited.Set(uint(id))
		order = append(order, id)

		s.FollowEdges(graph.Traversal{Node: id}, false, func(next graph.Traversal) bool {
			rightDeg[id]--
			if !visited.Test(uint(next.Node)) {
				leftDeg[next.Node]--
				if leftDeg[next.Node] == 0 {
					queue = append(queue, next.Node)
				}
			}
			return true
		})
	}
	return order, len(order) == len(ids)
}

func collectNodeIDs(s *graph.Store) []graph.NodeID {
	var ids []graph.NodeID
	s.ForEachNode(func(n *graph.Node) bool {
		ids = append(ids, n.ID)
		return true
	})
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func countSide(s *graph.Store, side graph.Side) int {
	count := 0
	s.FollowEdges(graph.Traversal{Node: side.Node, Reverse: side.End == graph.End}, true, func(graph.Traversal) bool {
		count++
		return true
	})
	return count
}

// StronglyConnectedComponents runs Tarjan's algorithm over the 2·|V|
// oriented traversals of the graph, then coalesces a node's forward
// and reverse component into a single set whenever either orientation
// links them, since a bidirected cycle may alternate strand. It
// returns the node-id sets, one per component, each sorted by ascending
// id and ordered by their smallest member id.
func StronglyConnectedComponents(s *graph.Store) [][]graph.NodeID {
	ids := collectNodeIDs(s)
	vertices := make([]vertex, 0, 2*len(ids))
	index := make(map[vertex]int, 2*len(ids))
	for _, id := range ids {
		for _, rev := range [2]bool{false, true} {
			v := vertex{id, rev}
			index[v] = len(vertices)
			vertices = append(vertices, v)
		}
	}

	t := &tarjan{
		s:       s,
		index:   index,
		vlow:    make([]int, len(vertices)),
		vidx:    make([]int, len(vertices)),
		onStack: make([]bool, len(vertices)),
	}
	for i := range t.vidx {
		t.vidx[i] = -1
	}

	var sccs [][]vertex
	for i, v := range vertices {
		if t.vidx[i] == -1 {
			t.run(v, &sccs)
		}
	}

	// coalesce by node id via union-find, grounded on the teacher's
	// adjacency-clustering idiom (filters/graph.go's findRepNode /
	// joinNodes).
	parent := make(map[graph.NodeID]graph.NodeID, len(ids))
	for _, id := range ids {
		parent[id] = id
	}
	var find func(graph.NodeID) graph.NodeID
	find = func(id graph.NodeID) graph.NodeID {
		for parent[id] != id {
			id = parent[id]
		}
		return id
	}
	union := func(a, b graph.NodeID) {
		ra, rb := find(a), find(b)
		if ra != rb {
			parent[ra] = rb
		}
	}
	for _, scc := range sccs {
		if len(scc) == 0 {
			continue
		}
		first := scc[0].node
		for _, v := range scc[1:] {
			union(first, v.node)
		}
	}

	groups := make(map[graph.NodeID][]graph.NodeID)
	for _, id := range ids {
		groups[find(id)] = append(groups[find(id)], id)
	}
	var result [][]graph.NodeID
	seen := make(map[graph.NodeID]bool)
	for _, id := range ids {
		root := find(id)
		if seen[root] {
			continue
		}
		seen[root] = true
		result = append(result, groups[root])
	}
	return result
}

type tarjan struct {
	s       *graph.Store
	index   map[vertex]int
	vidx    []int
	vlow    []int
	onStack []bool
	stack   []vertex
	counter int
}

// tarjanFrame is one stack frame of the iterative Tarjan walk: the
// vertex it was opened for, that vertex's precomputed neighbor list
// (FollowEdges is callback-based, not index-addressable, so the
// neighbors have to be materialized up front), and how far through
// that list this frame has gotten.
type tarjanFrame struct {
	v         vertex
	i         int
	neighbors []vertex
	pos       int
}

// run is an iterative, explicit-stack rendering of Tarjan's algorithm:
// genuine call-stack recursion would make recursion depth track graph
// diameter, which for pangenomes can be large (design §9). Each
// "recursive call" in the textbook version becomes pushing a new
// frame and continuing the outer loop; each "return" becomes popping
// a frame and folding its low-link into whatever frame is now on top.
func (t *tarjan) run(start vertex, sccs *[][]vertex) {
	stack := []*tarjanFrame{t.open(start)}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.pos < len(f.neighbors) {
			w := f.neighbors[f.pos]
			f.pos++
			j := t.index[w]
			switch {
			case t.vidx[j] == -1:
				stack = append(stack, t.open(w))
			case t.onStack[j] && t.vidx[j] < t.vlow[f.i]:
				t.vlow[f.i] = t.vidx[j]
			}
			continue
		}

		stack = stack[:len(stack)-1]
		if t.vlow[f.i] == t.vidx[f.i] {
			var scc []vertex
			for {
				w := t.stack[len(t.stack)-1]
				t.stack = t.stack[:len(t.stack)-1]
				t.onStack[t.index[w]] = false
				scc = append(scc, w)
				if w == f.v {
					break
				}
			}
			*sccs = append(*sccs, scc)
		}
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			if t.vlow[f.i] < t.vlow[parent.i] {
				t.vlow[parent.i] = t.vlow[f.i]
			}
		}
	}
}

func (t *tarjan) open(v vertex) *tarjanFrame {
	i := t.index[v]
	t.vidx[i] = t.counter
	t.vlow[i] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[i] = true
	return &tarjanFrame{v: v, i: i, neighbors: t.neighborsOf(v)}
}

func (t *tarjan) neighborsOf(v vertex) []vertex {
	var neighbors []vertex
	t.s.FollowEdges(v.traversal(), false, func(next graph.Traversal) bool {
		neighbors = append(neighbors, vertex{next.Node, next.Reverse})
		return true
	})
	return neighbors
}
