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

package graph

import (
	"github.com/exascience/pangraph/internal"
)

// DivideNode replaces node id with len(offsets)+1 new nodes carrying
// the substring pieces in order. Offsets must be strictly increasing
// values in (0, length). Edges attached to the left side of the
// original move to the left side of the first piece, edges on the
// right side move to the right side of the last piece, and
// consecutive pieces are connected by a new forward edge. Every
// mapping on the original node is split at the same offsets and
// reassigned to the corresponding piece.
func (s *Store) DivideNode(id NodeID, offsets []int) ([]NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[id]
	if !ok {
		return nil, internal.New(internal.NotFound, "DivideNode", "node does not exist")
	}
	length := n.Length()
	for i, off := range offsets {
		if off <= 0 || off >= length {
			return nil, internal.New(internal.InvalidInput, "DivideNode", "offset out of range")
		}
		if i > 0 && off <= offsets[i-1] {
			return nil, internal.New(internal.InvalidInput, "DivideNode", "offsets must be strictly increasing")
		}
	}

	bounds := append(append([]int{0}, offsets...), length)
	pieceIDs := make([]NodeID, len(bounds)-1)
	pieceLens := make([]int, len(bounds)-1)
	for i := 0; i < len(bounds)-1; i++ {
		piece := n.Seq[bounds[i]:bounds[i+1]]
		var newID NodeID
		var err error
		if i == 0 {
			// reuse the original id for the first piece so callers
			// that cached it keep referring to something valid.
			delete(s.nodes, id)
			s.nodes[id] = &Node{ID: id, Seq: piece}
			newID = id
		} else {
			newID, err = s.createNodeLocked(piece)
			if err != nil {
				return nil, err
			}
		}
		pieceIDs[i] = newID
		pieceLens[i] = len(piece)
	}

	// move left-side edges of the original onto the first piece, and
	// right-side edges onto the last piece. The original's own
	// adjacency lists are keyed by id, which piece 0 now occupies, so
	// only the End-side list (which belonged to the old whole node)
	// needs to be moved onto the last piece.
	if len(pieceIDs) > 1 {
		lastID := pieceIDs[len(pieceIDs)-1]
		oldEndAdj := s.adj[Side{id, End}]
		delete(s.adj, Side{id, End})
		s.adj[Side{lastID, End}] = oldEndAdj
		for _, other := range oldEndAdj {
			s.retargetAdjEntry(other, Side{id, End}, Side{lastID, End})
			s.retargetEdgeEndpoint(Side{id, End}, Side{lastID, End}, other)
		}
		// wire consecutive pieces together with forward edges.
		for i := 0; i+1 < len(pieceIDs); i++ {
			if _, err := s.createEdgeLocked(Side{pieceIDs[i], End}, Side{pieceIDs[i+1], Start}); err != nil {
				return nil, err
			}
		}
	}

	s.paths.divideMappingsOnNode(id, offsets, pieceIDs, pieceLens)

	return pieceIDs, nil
}

// retargetAdjEntry rewrites other's adjacency entry that pointed at
// oldSide so that it points at newSide instead.
func (s *Store) retargetAdjEntry(other, oldSide, newSide Side) {
	list := s.adj[other]
	for i, v := range list {
		if v == oldSide {
			list[i] = newSide
			return
		}
	}
}

// retargetEdgeEndpoint fixes up the canonical edge record after one
// of its endpoints moved from oldSide to newSide due to a node split.
func (s *Store) retargetEdgeEndpoint(oldSide, newSide, other Side) {
	oldLo, _ := canonicalize(oldSide, other)
	e, ok := s.edges[oldLo]
	if !ok {
		return
	}
	delete(s.edges, oldLo)
	newLo, newHi := canonicalize(newSide, other)
	e.A, e.B = newLo, newHi
	s.edges[newLo] = e
}

// IsPerfectPathNeighbor reports whether traversal u can be merged
// with its successor v by ConcatNodes: both carry exactly the same
// set of path names, the mappings on u and v are consecutive in rank
// and consistently oriented for every such path, and the mappings
// fully cover each node with a single match edit.
func (s *Store) IsPerfectPathNeighbor(u, v Traversal) bool {
	uLen := s.GetLength(u.Node)
	vLen := s.GetLength(v.Node)
	uMappings := s.paths.mappingsCoveringTraversal(u, uLen)
	vMappings := s.paths.mappingsCoveringTraversal(v, vLen)
	if len(uMappings) != len(vMappings) {
		return false
	}
	for name, um := range uMappings {
		vm, ok := vMappings[name]
		if !ok {
			return false
		}
		if vm.Rank != um.Rank+1 {
			return false
		}
	}
	return true
}

// ConcatNodes replaces a perfect-path-neighbor run of traversals with
// a single node whose sequence is their concatenation in traversal
// order. Paths covering the run collapse into a single mapping per
// visit, with a length equal to the total run length.
func (s *Store) ConcatNodes(run []Traversal) (NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(run) == 0 {
		return 0, internal.New(internal.InvalidInput, "ConcatNodes", "empty run")
	}
	seqs := make([]string, len(run))
	for i, t := range run {
		n, ok := s.nodes[t.Node]
		if !ok {
			return 0, internal.New(internal.NotFound, "ConcatNodes", "node does not exist")
		}
		seqs[i] = n.Sequence(t)
	}
	concatenated := ""
	for _, sq := range seqs {
		concatenated += sq
	}

	leftSide := run[0].Left()
	rightSide := run[len(run)-1].Right()
	leftNeighbors := append([]Side(nil), s.adj[leftSide]...)
	rightNeighbors := append([]Side(nil), s.adj[rightSide]...)

	for _, t := range run {
		s.removeAllEdgesOnSideLocked(t.Left())
		s.removeAllEdgesOnSideLocked(t.Right())
		delete(s.nodes, t.Node)
		delete(s.adj, Side{t.Node, Start})
		delete(s.adj, Side{t.Node, End})
	}

	newID, err := s.createNodeLocked(concatenated)
	if err != nil {
		return 0, err
	}
	for _, other := range leftNeighbors {
		if _, err := s.createEdgeLocked(Side{newID, Start}, other); err != nil {
			return 0, err
		}
	}
	for _, other := range rightNeighbors {
		if _, err := s.createEdgeLocked(Side{newID, End}, other); err != nil {
			return 0, err
		}
	}

	s.paths.mergeMappingsForRun(run, newID, len(concatenated))

	return newID, nil
}

// ApplyOrientation rewires traversal t so that it reads forward: if
// it already does, this is a no-op returning t.Node. Otherwise a new
// node is created whose locally-forward sequence is the reverse
// complement of the old sequence, all incident edges are rewired to
// preserve semantics, and the old node is destroyed.
//
// No check is made for an existing sibling node that already carries
// the reverse-complement sequence: a fresh node is always created, it
// is never merged with such a sibling, and no error is returned for
// that case.
func (s *Store) ApplyOrientation(t Traversal) (NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !t.Reverse {
		return t.Node, nil
	}
	n, ok := s.nodes[t.Node]
	if !ok {
		return 0, internal.New(internal.NotFound, "ApplyOrientation", "node does not exist")
	}
	newSeq := ReverseComplement(n.Seq)

	leftNeighbors := append([]Side(nil), s.adj[Side{t.Node, Start}]...)
	rightNeighbors := append([]Side(nil), s.adj[Side{t.Node, End}]...)

	s.removeAllEdgesOnSideLocked(Side{t.Node, Start})
	s.removeAllEdgesOnSideLocked(Side{t.Node, End})
	oldID := t.Node
	delete(s.nodes, oldID)
	delete(s.adj, Side{oldID, Start})
	delete(s.adj, Side{oldID, End})

	newID, err := s.createNodeLocked(newSeq)
	if err != nil {
		return 0, internal.Wrap(internal.InvariantViolation, "ApplyOrientation", err)
	}

	// old Start became new End and vice versa; neighbors that used to
	// attach to oldID's Start now attach to newID's End, and vice
	// versa, with relative orientation unchanged (the adjacency
	// entries already encode the other side, which didn't move).
	for _, other := range leftNeighbors {
		if _, err := s.createEdgeLocked(Side{newID, End}, other); err != nil {
			return 0, err
		}
	}
	for _, other := range rightNeighbors {
		if _, err := s.createEdgeLocked(Side{newID, Start}, other); err != nil {
			return 0, err
		}
	}

	s.paths.flipMappingsForOrientation(oldID, newID, len(newSeq))

	return newID, nil
}
