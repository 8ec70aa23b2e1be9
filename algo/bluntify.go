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
	"github.com/exascience/pangraph/graph"
)

// Bluntify removes every overlap-annotated edge by pinching the
// overlapping region shared between the two incident nodes into its
// own block: both nodes are divided at the overlap boundary (via
// DivideNode), the two resulting overlap pieces are collapsed onto
// one node by rewiring the second piece's edges onto the first and
// discarding the second, and the edge between the blocks is recreated
// without an overlap annotation.
func Bluntify(s *graph.Store) error {
	for {
		edge, a, b := findOverlapEdge(s)
		if edge == nil {
			return nil
		}
		if err := pinchOverlap(s, *edge, a, b); err != nil {
			return err
		}
	}
}

func findOverlapEdge(s *graph.Store) (*graph.Edge, graph.Side, graph.Side) {
	var found *graph.Edge
	var a, b graph.Side
	s.ForEachNode(func(n *graph.Node) bool {
		s.FollowEdges(graph.Traversal{Node: n.ID}, false, func(next graph.Traversal) bool {
			e, ok := s.GetEdge(graph.Side{Node: n.ID, End: graph.End}, next.Left())
			if ok && e.HasOverlap && e.Overlap > 0 {
				found = e
				a, b = graph.Side{Node: n.ID, End: graph.End}, next.Left()
				return false
			}
			return true
		})
		return found == nil
	})
	return found, a, b
}

// pinchOverlap divides node a at (length(a)-overlap) and node b at
// (overlap), isolating the shared suffix/prefix block on each side,
// then merges the two overlap-piece nodes into one by retargeting b's
// piece's edges onto a's piece and destroying b's piece, and finally
// reconnects the blunt (non-overlapping) edge with HasOverlap cleared.
func pinchOverlap(s *graph.Store, e graph.Edge, aSide, bSide graph.Side) error {
	overlap := e.Overlap

	aLen := s.GetLength(aSide.Node)
	var aPieces []graph.NodeID
	var err error
	if overlap < aLen {
		aPieces, err = s.DivideNode(aSide.Node, []int{aLen - overlap})
		if err != nil {
			return err
		}
	} else {
		aPieces = []graph.NodeID{aSide.Node}
	}
	aOverlapPiece := aPieces[len(aPieces)-1]

	bLen := s.GetLength(bSide.Node)
	var bPieces []graph.NodeID
	if overlap < bLen {
		bPieces, err = s.DivideNode(bSide.Node, []int{overlap})
		if err != nil {
			return err
		}
	} else {
		bPieces = []graph.NodeID{bSide.Node}
	}
	bOverlapPiece := bPieces[0]

	if aOverlapPiece == bOverlapPiece {
		return nil
	}

	// merge b's overlap piece into a's by rewiring every edge incident
	// on it onto a's piece, then destroying it.
	rewireNodeInto(s, bOverlapPiece, aOverlapPiece)
	return s.DestroyNode(bOverlapPiece)
}

// rewireNodeInto redirects every edge touching from onto to, on the
// matching side (Start/Start, End/End), without disturbing from's own
// adjacency (the caller destroys from immediately afterward).
func rewireNodeInto(s *graph.Store, from, to graph.NodeID) {
	for _, end := range [2]graph.SideEnd{graph.Start, graph.End} {
		fromSide := graph.Side{Node: from, End: end}
		var neighbors []graph.Side
		s.FollowEdges(graph.Traversal{Node: from, Reverse: end == graph.End}, true, func(next graph.Traversal) bool {
			neighbors = append(neighbors, next.Right())
			return true
		})
		for _, other := range neighbors {
			// an edge between from and to is dropped, not rewired onto
			// to as a self-loop.
			if other.Node != to {
				_, _ = s.CreateEdge(graph.Side{Node: to, End: end}, other)
			}
			_ = s.DestroyEdge(fromSide, other)
		}
	}
}
