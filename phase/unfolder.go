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

// Package phase reconstructs haplotype-supported regions that were
// pruned out of a working graph, splicing them back in as haplotype-
// disjoint walks anchored at the pruned region's borders.
package phase

import (
	"sort"
	"sync/atomic"

	gods "github.com/emirpasic/gods/v2/sets/hashset"
	"github.com/exascience/pargo/parallel"

	"github.com/exascience/pangraph/graph"
	"github.com/exascience/pangraph/internal"
)

// OriginalGraph is the read-only accessor over the original,
// unpruned graph that the working graph was derived from.
type OriginalGraph interface {
	GetLength(id graph.NodeID) int
	GetSequence(t graph.Traversal) []byte
	FollowEdges(t graph.Traversal, goLeft bool, visitor func(graph.Traversal) bool)
	ForEachNode(visitor func(*graph.Node) bool, inParallel ...bool)
}

// HaplotypeIndex is a search structure over haplotype paths of the
// original graph: State advances one edge at a time and reports
// whether any indexed haplotype still supports the walk so far.
type HaplotypeIndex interface {
	Start(t graph.Traversal) State
}

// State is a haplotype-index search position. Extend attempts to
// extend the walk across the given edge and reports the new state and
// whether the extension is supported by at least one haplotype.
type State interface {
	Extend(next graph.Traversal) (State, bool)
}

// Walk is one border-to-border (or maximal, unbordered) walk produced
// by enumeration, in canonical orientation.
type Walk struct {
	Traversals []graph.Traversal
	// Bordered is true if the walk terminated by reaching another
	// border node; false if it terminated because no haplotype-
	// supported extension existed (a maximal walk that dead-ends
	// inside the pruned region without reaching a border).
	Bordered bool
}

// Unfolder reconstructs pruned regions of a working graph.
type Unfolder struct {
	original OriginalGraph
	working  *graph.Store
	index    HaplotypeIndex
	nextNode atomic.Uint64 // allocated via allocNode; components splice concurrently
}

// NewUnfolder creates an Unfolder for splicing haplotype-supported
// regions back into working from original, guided by index. nextNode
// seeds the monotonic counter used to mint fresh ids for interior
// (non-border) nodes on emitted walks; per the original phase-
// unfolder's constructor contract, it should usually be
// max_node_id()+1 of the original graph, not the working graph, so
// that ids minted here never collide with ids the original graph
// might still introduce elsewhere.
func NewUnfolder(original OriginalGraph, working *graph.Store, index HaplotypeIndex, nextNode graph.NodeID) *Unfolder {
	u := &Unfolder{original: original, working: working, index: index}
	u.nextNode.Store(uint64(nextNode))
	return u
}

// allocNode atomically reserves the next fresh interior-node id, safe
// to call from the concurrently-spliced components Unfold fans out
// over parallel.Range.
func (u *Unfolder) allocNode() graph.NodeID {
	return graph.NodeID(u.nextNode.Add(1) - 1)
}

// Unfold performs the full reconstruction: complement-component
// extraction, border identification, walk enumeration, and
// disjointification, splicing the result into the working graph.
// progress, if non-nil, is called once per completed complement
// component with the running and total component counts.
func (u *Unfolder) Unfold(progress func(done, total int)) error {
	components := u.extractComplementComponents()

	// components are weakly connected by construction (disjoint node
	// sets), so splicing them is independent work; working is a
	// *graph.Store, which already serializes its own mutations, so
	// fanning this out over parallel.Range only needed nextNode's
	// counter made safe for concurrent allocation (see allocNode).
	var firstErr atomic.Value
	var done atomic.Int64
	total := len(components)
	parallel.Range(0, total, 0, func(low, high int) {
		for i := low; i < high; i++ {
			if err := u.unfoldComponent(components[i]); err != nil {
				firstErr.CompareAndSwap(nil, err)
				continue
			}
			if progress != nil {
				progress(int(done.Add(1)), total)
			}
		}
	})
	if err, ok := firstErr.Load().(error); ok {
		return err
	}
	return nil
}

// complementEdge is one edge present in the haplotype index but
// absent from the working graph.
type complementEdge struct {
	a, b graph.Traversal
}

// extractComplementComponents computes every edge of the original
// graph that the haplotype index supports but the working graph
// lacks, then partitions those edges into weakly connected components
// by shared node endpoints.
func (u *Unfolder) extractComplementComponents() [][]complementEdge {
	var missing []complementEdge
	seen := make(map[[2]graph.NodeID]bool)
	u.original.ForEachNode(func(n *graph.Node) bool {
		u.original.FollowEdges(graph.Traversal{Node: n.ID}, false, func(next graph.Traversal) bool {
			key := edgeKey(n.ID, next.Node)
			if seen[key] {
				return true
			}
			seen[key] = true
			if !u.working.HasNode(n.ID) || !u.working.HasNode(next.Node) || !u.workingHasEdge(n.ID, next.Node) {
				missing = append(missing, complementEdge{graph.Traversal{Node: n.ID}, next})
			}
			return true
		})
		return true
	})

	parent := make(map[graph.NodeID]graph.NodeID)
	var find func(graph.NodeID) graph.NodeID
	find = func(id graph.NodeID) graph.NodeID {
		if _, ok := parent[id]; !ok {
			parent[id] = id
		}
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
	for _, e := range missing {
		union(e.a.Node, e.b.Node)
	}

	groups := make(map[graph.NodeID][]complementEdge)
	for _, e := range missing {
		root := find(e.a.Node)
		groups[root] = append(groups[root], e)
	}
	var roots []graph.NodeID
	for r := range groups {
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i] < roots[j] })

	result := make([][]complementEdge, len(roots))
	for i, r := range roots {
		result[i] = groups[r]
	}
	return result
}

func edgeKey(a, b graph.NodeID) [2]graph.NodeID {
	if a <= b {
		return [2]graph.NodeID{a, b}
	}
	return [2]graph.NodeID{b, a}
}

func (u *Unfolder) workingHasEdge(a, b graph.NodeID) bool {
	found := false
	u.working.FollowEdges(graph.Traversal{Node: a}, false, func(next graph.Traversal) bool {
		if next.Node == b {
			found = true
			return false
		}
		return true
	})
	return found
}

// isBorder reports whether id already exists in the pruned working
// graph, making it a splice point between the working graph and the
// reconstructed region.
func (u *Unfolder) isBorder(id graph.NodeID) bool {
	return u.working.HasNode(id)
}

// unfoldComponent enumerates every canonical border-to-border (or
// maximal) walk supported by the haplotype index within one
// complement component, disjointifies interior nodes, and splices the
// result into the working graph.
func (u *Unfolder) unfoldComponent(comp []complementEdge) error {
	adjacency := make(map[graph.NodeID][]complementEdge)
	for _, e := range comp {
		adjacency[e.a.Node] = append(adjacency[e.a.Node], e)
		adjacency[e.b.Node] = append(adjacency[e.b.Node], complementEdge{e.b, e.a})
	}

	inComponent := make(map[[2]graph.NodeID]bool)
	for _, e := range comp {
		inComponent[edgeKey(e.a.Node, e.b.Node)] = true
	}

	walks := gods.New[string]()
	var ordered []Walk
	for _, e := range comp {
		if !u.isBorder(e.a.Node) {
			continue
		}
		start := e.a
		u.enumerateWalks(start, adjacency, inComponent, func(w Walk) {
			key := canonicalWalkKey(w)
			if walks.Contains(key) {
				return
			}
			walks.Add(key)
			ordered = append(ordered, w)
		})
	}

	for _, w := range ordered {
		if err := u.spliceWalk(w); err != nil {
			return err
		}
	}
	return nil
}

// enumerateWalks performs the state-based search described in design
// §4.6 step 3: state is (haplotype-index state, path so far), and an
// extension is taken whenever it both belongs to the component and is
// still supported by the haplotype index. A walk is emitted on
// reaching another border (Bordered=true) or when no supported
// extension remains (Bordered=false).
func (u *Unfolder) enumerateWalks(start graph.Traversal, adjacency map[graph.NodeID][]complementEdge, inComponent map[[2]graph.NodeID]bool, emit func(Walk)) {
	state := u.index.Start(start)
	u.walk(start, []graph.Traversal{start}, state, adjacency, inComponent, map[graph.NodeID]bool{start.Node: true}, emit)
}

func (u *Unfolder) walk(cur graph.Traversal, path []graph.Traversal, state State, adjacency map[graph.NodeID][]complementEdge, inComponent map[[2]graph.NodeID]bool, visited map[graph.NodeID]bool, emit func(Walk)) {
	if len(path) > 1 && u.isBorder(cur.Node) {
		emit(Walk{Traversals: append([]graph.Traversal(nil), path...), Bordered: true})
		return
	}

	extended := false
	for _, e := range adjacency[cur.Node] {
		next := e.b
		if visited[next.Node] {
			continue
		}
		if !inComponent[edgeKey(cur.Node, next.Node)] {
			continue
		}
		nextState, ok := state.Extend(next)
		if !ok {
			continue
		}
		extended = true
		visited[next.Node] = true
		u.walk(next, append(path, next), nextState, adjacency, inComponent, visited, emit)
		visited[next.Node] = false
	}
	if !extended {
		emit(Walk{Traversals: append([]graph.Traversal(nil), path...), Bordered: false})
	}
}

// canonicalWalkKey returns a stable string key for the walk in
// canonical orientation: the lexicographically smaller of the walk
// and its reverse.
func canonicalWalkKey(w Walk) string {
	forward := walkKey(w.Traversals)
	reversed := make([]graph.Traversal, len(w.Traversals))
	for i, t := range w.Traversals {
		reversed[len(w.Traversals)-1-i] = t.Flipped()
	}
	back := walkKey(reversed)
	if back < forward {
		return back
	}
	return forward
}

func walkKey(ts []graph.Traversal) string {
	b := internal.ReserveByteBuffer()
	for _, t := range ts {
		for shift := 56; shift >= 0; shift -= 8 {
			b = append(b, byte(t.Node>>uint(shift)))
		}
		if t.Reverse {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
	}
	key := string(b)
	internal.ReleaseByteBuffer(b)
	return key
}

// spliceWalk disjointifies the walk's interior nodes (giving each a
// fresh id from the monotonic counter, while borders keep their
// original ids) and emits the corresponding nodes and edges into the
// working graph.
func (u *Unfolder) spliceWalk(w Walk) error {
	ids := make([]graph.NodeID, len(w.Traversals))
	for i, t := range w.Traversals {
		if i == 0 || (w.Bordered && i == len(w.Traversals)-1 && u.isBorder(t.Node)) {
			ids[i] = t.Node
			if !u.working.HasNode(t.Node) {
				if _, err := u.working.CreateNode(string(u.original.GetSequence(graph.Traversal{Node: t.Node})), t.Node); err != nil {
					return err
				}
			}
			continue
		}
		seq := string(u.original.GetSequence(graph.Traversal{Node: t.Node}))
		newID := u.allocNode()
		if _, err := u.working.CreateNode(seq, newID); err != nil {
			return err
		}
		ids[i] = newID
	}

	for i := 0; i+1 < len(ids); i++ {
		left := graph.Traversal{Node: ids[i], Reverse: w.Traversals[i].Reverse}
		right := graph.Traversal{Node: ids[i+1], Reverse: w.Traversals[i+1].Reverse}
		if _, err := u.working.CreateEdge(left.Right(), right.Left()); err != nil {
			return err
		}
	}
	return nil
}
