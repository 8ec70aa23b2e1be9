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

package algo

import "github.com/exascience/pangraph/graph"

// FindSimpleComponents returns every maximal run of traversals
// u1...uk where each consecutive pair is a perfect path neighbor and
// each internal node has out-degree 1 to the right and in-degree 1
// from the left, i.e. every run that ConcatNodes could safely merge
// into a single node. Each node appears in at most one run.
func FindSimpleComponents(s *graph.Store) [][]graph.Traversal {
	ids := collectNodeIDs(s)
	used := make(map[graph.NodeID]bool, len(ids))
	var runs [][]graph.Traversal

	for _, id := range ids {
		if used[id] {
			continue
		}
		for _, startRev := range [2]bool{false, true} {
			start := graph.Traversal{Node: id, Reverse: startRev}
			if used[id] || !isRunStart(s, start) {
				continue
			}
			run := extendRun(s, start, used)
			if len(run) > 1 {
				runs = append(runs, run)
				for _, t := range run {
					used[t.Node] = true
				}
			}
			break
		}
	}
	return runs
}

// isRunStart reports whether t either has no left-extension that
// would keep a simple run going, i.e. it is a valid place to begin
// scanning forward (it has in-degree != 1 from the left, or its left
// neighbor isn't out-degree 1 to its right).
func isRunStart(s *graph.Store, t graph.Traversal) bool {
	if degree(s, t.Left()) != 1 {
		return true
	}
	var prev graph.Traversal
	found := false
	s.FollowEdges(t, true, func(p graph.Traversal) bool {
		prev = p
		found = true
		return false
	})
	if !found {
		return true
	}
	return degree(s, prev.Right()) != 1 || !s.IsPerfectPathNeighbor(prev, t)
}

func degree(s *graph.Store, side graph.Side) int {
	count := 0
	s.FollowEdges(graph.Traversal{Node: side.Node, Reverse: side.End == graph.End}, true, func(graph.Traversal) bool {
		count++
		return true
	})
	return count
}

func extendRun(s *graph.Store, start graph.Traversal, used map[graph.NodeID]bool) []graph.Traversal {
	run := []graph.Traversal{start}
	cur := start
	for {
		if degree(s, cur.Right()) != 1 {
			break
		}
		var next graph.Traversal
		found := false
		s.FollowEdges(cur, false, func(n graph.Traversal) bool {
			next = n
			found = true
			return false
		})
		if !found || used[next.Node] || next.Node == start.Node {
			break
		}
		if degree(s, next.Left()) != 1 || !s.IsPerfectPathNeighbor(cur, next) {
			break
		}
		run = append(run, next)
		cur = next
	}
	return run
}
