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

package distance

import (
	"sort"

	"github.com/exascience/pangraph/algo"
	"github.com/exascience/pangraph/graph"
)

// NaiveFinder is a Store-driven Finder for directed acyclic bidirected
// graphs: it walks a single source-to-sink backbone chain, treating
// every branch point (out-degree > 1) as the start of a snarl whose
// end is the lowest-id node every branch reaches. It does not
// attempt to decompose nested bubbles within a branch beyond one
// level, nor cyclic regions; Dagify/Unfold from package algo are
// expected to have already run on graphs that need it.
type NaiveFinder struct {
	Store *graph.Store
}

func (f NaiveFinder) Traverse(onChainStart, onChainEnd func(graph.Traversal), onSnarlStart, onSnarlEnd func(graph.Traversal)) {
	s := f.Store
	order, _ := algo.TopologicalSort(s)
	if len(order) == 0 {
		return
	}
	start := graph.Traversal{Node: order[0]}
	onChainStart(start)
	end := f.walkChain(start, onChainStart, onChainEnd, onSnarlStart, onSnarlEnd)
	onChainEnd(end)
}

func (f NaiveFinder) lastInChain(t graph.Traversal) graph.Traversal {
	cur := t
	for {
		next, ok := f.singleSuccessor(cur)
		if !ok {
			return cur
		}
		cur = next
	}
}

// walkChain advances from t along the backbone, opening a snarl at
// every branch point and resuming the chain at the reconvergence
// node, until the chain runs out of single successors. It returns the
// traversal the chain actually stopped at, which the caller closes
// with onChainEnd: computing that stopping point independently via
// lastInChain would stop short at t itself whenever t is a branch
// point, since lastInChain can't cross a branch.
func (f NaiveFinder) walkChain(t graph.Traversal, onChainStart, onChainEnd, onSnarlStart, onSnarlEnd func(graph.Traversal)) graph.Traversal {
	cur := t
	for {
		successors := f.successors(cur)
		if len(successors) <= 1 {
			next, ok := f.singleSuccessor(cur)
			if !ok {
				return cur
			}
			cur = next
			continue
		}

		end := f.reconvergence(successors)
		onSnarlStart(cur)
		for _, branch := range successors {
			if branch == end {
				continue
			}
			onChainStart(branch)
			branchEnd := f.walkChain(branch, onChainStart, onChainEnd, onSnarlStart, onSnarlEnd)
			onChainEnd(branchEnd)
		}
		onSnarlEnd(end)
		cur = end
	}
}

func (f NaiveFinder) successors(t graph.Traversal) []graph.Traversal {
	var result []graph.Traversal
	f.Store.FollowEdges(t, false, func(next graph.Traversal) bool {
		result = append(result, next)
		return true
	})
	sort.Slice(result, func(i, j int) bool { return result[i].Node < result[j].Node })
	return result
}

func (f NaiveFinder) singleSuccessor(t graph.Traversal) (graph.Traversal, bool) {
	s := f.successors(t)
	if len(s) != 1 {
		return graph.Traversal{}, false
	}
	return s[0], true
}

// reconvergence finds the node every branch eventually reaches by BFS
// from each branch and intersecting the reachable sets, picking the
// common node with the smallest id; distance from the branches is not
// considered. Falls back to the last branch's terminal node
// if no common reconvergence exists (an open bubble, e.g. at a sink).
func (f NaiveFinder) reconvergence(branches []graph.Traversal) graph.Traversal {
	reachable := make([]map[graph.NodeID]graph.Traversal, len(branches))
	for i, b := range branches {
		reachable[i] = f.reachableFrom(b)
	}
	common := reachable[0]
	for _, r := range reachable[1:] {
		next := make(map[graph.NodeID]graph.Traversal)
		for id, t := range common {
			if _, ok := r[id]; ok {
				next[id] = t
			}
		}
		common = next
	}
	var best graph.Traversal
	bestSet := false
	for _, t := range common {
		if !bestSet || t.Node < best.Node {
			best, bestSet = t, true
		}
	}
	if bestSet {
		return best
	}
	return f.lastInChain(branches[len(branches)-1])
}

func (f NaiveFinder) reachableFrom(start graph.Traversal) map[graph.NodeID]graph.Traversal {
	visited := map[graph.NodeID]graph.Traversal{start.Node: start}
	queue := []graph.Traversal{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		f.Store.FollowEdges(cur, false, func(next graph.Traversal) bool {
			if _, ok := visited[next.Node]; !ok {
				visited[next.Node] = next
				queue = append(queue, next)
			}
			return true
		})
	}
	return visited
}
