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

import (
	"container/heap"
	"sort"

	"github.com/willf/bitset"

	"github.com/exascience/pangraph/graph"
)

// Unfold induces a single orientation on every node by DFS from an
// arbitrary root in each weakly connected component, then treats
// every edge that crosses strand relative to that orientation (a
// "reversing edge") as the entry point of a duplicated reverse-strand
// walk: starting from the reversing edge's target, it explores up to
// maxLength bases of reverse-strand neighborhood by priority queue
// (closest-first), duplicating every visited node into a fresh
// reverse-strand copy so that the duplicated region becomes
// consistently forward-oriented. It returns the new-id translation
// map.
func Unfold(s *graph.Store, maxLength int) (map[graph.NodeID]Translation, error) {
	ids := collectNodeIDs(s)
	orientation := make(map[graph.NodeID]bool, len(ids)) // true = visited as reverse
	visited := bitset.New(uint(s.MaxNodeID()) + 1)

	for _, root := range ids {
		if visited.Test(uint(root)) {
			continue
		}
		dfsOrient(s, root, false, visited, orientation)
	}

	translation := make(map[graph.NodeID]Translation, len(ids))
	for _, id := range ids {
		translation[id] = Translation{Original: id, Reversed: orientation[id]}
	}

	var reversingEdges []graph.Traversal
	for _, id := range ids {
		rev := orientation[id]
		s.FollowEdges(graph.Traversal{Node: id, Reverse: rev}, false, func(next graph.Traversal) bool {
			if next.Reverse != orientation[next.Node] {
				reversingEdges = append(reversingEdges, next)
			}
			return true
		})
	}
	sort.Slice(reversingEdges, func(i, j int) bool { return reversingEdges[i].Node < reversingEdges[j].Node })

	for _, entry := range reversingEdges {
		if err := duplicateReverseWalk(s, entry, maxLength, translation); err != nil {
			return nil, err
		}
	}
	return translation, nil
}

func dfsOrient(s *graph.Store, start graph.NodeID, startReverse bool, visited *bitset.BitSet, orientation map[graph.NodeID]bool) {
	type frame struct {
		node    graph.NodeID
		reverse bool
	}
	stack := []frame{{start, startReverse}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited.Test(uint(f.node)) {
			continue
		}
		visited.Set(uint(f.node))
		orientation[f.node] = f.reverse
		s.FollowEdges(graph.Traversal{Node: f.node, Reverse: f.reverse}, false, func(next graph.Traversal) bool {
			if !visited.Test(uint(next.Node)) {
				stack = append(stack, frame{next.Node, next.Reverse})
			}
			return true
		})
	}
}

type pqItem struct {
	t    graph.Traversal
	dist int
}

type pqueue []pqItem

func (q pqueue) Len() int            { return len(q) }
func (q pqueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q pqueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pqueue) Push(x interface{}) { *q = append(*q, x.(pqItem)) }
func (q *pqueue) Pop() interface{} {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// duplicateReverseWalk explores the reverse-strand neighborhood
// reachable from entry up to maxLength cumulative bases, duplicating
// every node it visits (each call keeps its own duplicate map, so a
// node reached from two reversing edges is duplicated once per edge)
// into a fresh node carrying the
// reverse-complemented sequence, wiring duplicated edges in parallel
// to the originals.
func duplicateReverseWalk(s *graph.Store, entry graph.Traversal, maxLength int, translation map[graph.NodeID]Translation) error {
	dup := make(map[graph.NodeID]graph.NodeID)
	q := &pqueue{{entry, s.GetLength(entry.Node)}}
	heap.Init(q)
	visited := bitset.New(uint(s.MaxNodeID()) + 1)

	for q.Len() > 0 {
		item := heap.Pop(q).(pqItem)
		t := item.t
		if visited.Test(uint(t.Node)) {
			continue
		}
		visited.Set(uint(t.Node))

		if _, ok := dup[t.Node]; !ok {
			n := s.GetNode(t.Node)
			newID, err := s.CreateNode(graph.ReverseComplement(n.Seq))
			if err != nil {
				return err
			}
			dup[t.Node] = newID
			translation[newID] = Translation{Original: t.Node, Reversed: true}
		}

		if item.dist >= maxLength {
			continue
		}
		s.FollowEdges(t, false, func(next graph.Traversal) bool {
			if !visited.Test(uint(next.Node)) {
				heap.Push(q, pqItem{next, item.dist + s.GetLength(next.Node)})
			}
			return true
		})
	}

	for orig, newID := range dup {
		s.FollowEdges(graph.Traversal{Node: orig}, false, func(next graph.Traversal) bool {
			if target, ok := dup[next.Node]; ok {
				_, _ = s.CreateEdge(graph.Side{Node: newID, End: graph.End}, graph.Side{Node: target, End: graph.Start})
			}
			return true
		})
	}
	return nil
}
