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

import "testing"

func twoNodeGraph(t *testing.T) (*Store, NodeID, NodeID) {
	t.Helper()
	s := NewStore()
	a, err := s.CreateNode("ACGT")
	if err != nil {
		t.Fatalf("CreateNode(a): %v", err)
	}
	b, err := s.CreateNode("GGCC")
	if err != nil {
		t.Fatalf("CreateNode(b): %v", err)
	}
	if _, err := s.CreateEdge(Side{a, End}, Side{b, Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	return s, a, b
}

func TestFollowEdgesTwoNodes(t *testing.T) {
	s, a, b := twoNodeGraph(t)

	var forward []Traversal
	s.FollowEdges(Traversal{Node: a}, false, func(n Traversal) bool {
		forward = append(forward, n)
		return true
	})
	if len(forward) != 1 || forward[0].Node != b || forward[0].Reverse {
		t.Fatalf("unexpected forward neighbors of a: %+v", forward)
	}

	var backward []Traversal
	s.FollowEdges(Traversal{Node: b}, true, func(n Traversal) bool {
		backward = append(backward, n)
		return true
	})
	if len(backward) != 1 || backward[0].Node != a {
		t.Fatalf("unexpected backward neighbors of b: %+v", backward)
	}
}

func TestSimpleBubble(t *testing.T) {
	s := NewStore()
	left, _ := s.CreateNode("AAAA")
	top, _ := s.CreateNode("CC")
	bottom, _ := s.CreateNode("GG")
	right, _ := s.CreateNode("TTTT")

	for _, e := range [][2]Side{
		{{left, End}, {top, Start}},
		{{left, End}, {bottom, Start}},
		{{top, End}, {right, Start}},
		{{bottom, End}, {right, Start}},
	} {
		if _, err := s.CreateEdge(e[0], e[1]); err != nil {
			t.Fatalf("CreateEdge: %v", err)
		}
	}

	var branches []Traversal
	s.FollowEdges(Traversal{Node: left}, false, func(n Traversal) bool {
		branches = append(branches, n)
		return true
	})
	if len(branches) != 2 {
		t.Fatalf("expected 2 branches out of left, got %d", len(branches))
	}

	var reconverge []Traversal
	s.FollowEdges(Traversal{Node: top}, false, func(n Traversal) bool {
		reconverge = append(reconverge, n)
		return true
	})
	if len(reconverge) != 1 || reconverge[0].Node != right {
		t.Fatalf("expected top to reconverge at right, got %+v", reconverge)
	}
}

func TestConcatNodesUndoesDivideNode(t *testing.T) {
	s := NewStore()
	a, err := s.CreateNode("ACGTACGT")
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	left, err := s.CreateNode("GGGG")
	if err != nil {
		t.Fatalf("CreateNode(left): %v", err)
	}
	right, err := s.CreateNode("TTTT")
	if err != nil {
		t.Fatalf("CreateNode(right): %v", err)
	}
	if _, err := s.CreateEdge(Side{left, End}, Side{a, Start}); err != nil {
		t.Fatalf("CreateEdge(left, a): %v", err)
	}
	if _, err := s.CreateEdge(Side{a, End}, Side{right, Start}); err != nil {
		t.Fatalf("CreateEdge(a, right): %v", err)
	}

	s.Paths().AppendMapping("p", &Mapping{
		Pos:   Position{Node: a, Offset: 0},
		Edits: []Edit{{FromLength: 8, ToLength: 8}},
	})

	pieces, err := s.DivideNode(a, []int{3})
	if err != nil {
		t.Fatalf("DivideNode: %v", err)
	}
	if len(pieces) != 2 {
		t.Fatalf("expected 2 pieces, got %d", len(pieces))
	}
	if s.GetLength(pieces[0]) != 3 || s.GetLength(pieces[1]) != 5 {
		t.Fatalf("unexpected piece lengths: %d, %d", s.GetLength(pieces[0]), s.GetLength(pieces[1]))
	}

	run := []Traversal{{Node: pieces[0]}, {Node: pieces[1]}}
	merged, err := s.ConcatNodes(run)
	if err != nil {
		t.Fatalf("ConcatNodes: %v", err)
	}
	if string(s.GetSequence(Traversal{Node: merged})) != "ACGTACGT" {
		t.Fatalf("unexpected merged sequence: %s", s.GetSequence(Traversal{Node: merged}))
	}

	var leftNeighbors []Traversal
	s.FollowEdges(Traversal{Node: left}, false, func(n Traversal) bool {
		leftNeighbors = append(leftNeighbors, n)
		return true
	})
	if len(leftNeighbors) != 1 || leftNeighbors[0].Node != merged {
		t.Fatalf("left should still connect to the merged node, got %+v", leftNeighbors)
	}

	p := s.Paths().Get("p")
	if p == nil || len(p.Mappings) != 1 {
		t.Fatalf("expected a single mapping after concat, got %+v", p)
	}
	if p.Mappings[0].Pos.Node != merged {
		t.Fatalf("expected mapping to reference the merged node")
	}
}

func TestRankCompactionAfterInsertMapping(t *testing.T) {
	s := NewStore()
	a, _ := s.CreateNode("AAAA")
	b, _ := s.CreateNode("CCCC")
	c, _ := s.CreateNode("GGGG")

	s.Paths().AppendMapping("p", &Mapping{Pos: Position{Node: a}, Edits: []Edit{{FromLength: 4, ToLength: 4}}})
	s.Paths().AppendMapping("p", &Mapping{Pos: Position{Node: c}, Edits: []Edit{{FromLength: 4, ToLength: 4}}})

	mid := &Mapping{Pos: Position{Node: b}, Edits: []Edit{{FromLength: 4, ToLength: 4}}}
	if err := s.Paths().InsertMapping("p", 2, mid); err != nil {
		t.Fatalf("InsertMapping: %v", err)
	}

	p := s.Paths().Get("p")
	if p.Mappings[1].Rank != p.Mappings[2].Rank {
		t.Fatalf("expected duplicated rank before compaction, got %d and %d", p.Mappings[1].Rank, p.Mappings[2].Rank)
	}

	s.Paths().CompactRanks("p")
	for i, m := range p.Mappings {
		if m.Rank != i+1 {
			t.Fatalf("rank %d at position %d not dense after compaction", m.Rank, i)
		}
	}
}

func TestApplyOrientationRewiresEdges(t *testing.T) {
	s, a, b := twoNodeGraph(t)
	c, err := s.CreateNode("TTAA")
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}
	if _, err := s.CreateEdge(Side{b, End}, Side{c, Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}

	newB, err := s.ApplyOrientation(Traversal{Node: b, Reverse: true})
	if err != nil {
		t.Fatalf("ApplyOrientation: %v", err)
	}
	if string(s.GetSequence(Traversal{Node: newB})) != ReverseComplement("GGCC") {
		t.Fatalf("unexpected sequence after orientation flip")
	}

	var fromA []Traversal
	s.FollowEdges(Traversal{Node: a}, false, func(n Traversal) bool {
		fromA = append(fromA, n)
		return true
	})
	if len(fromA) != 1 || fromA[0].Node != newB || !fromA[0].Reverse {
		t.Fatalf("expected a to now enter newB in reverse, got %+v", fromA)
	}

	var fromC []Traversal
	s.FollowEdges(Traversal{Node: c}, true, func(n Traversal) bool {
		fromC = append(fromC, n)
		return true
	})
	if len(fromC) != 1 || fromC[0].Node != newB {
		t.Fatalf("expected c to still connect back to newB, got %+v", fromC)
	}
}

func TestDestroyNodeRemovesMappings(t *testing.T) {
	s, a, b := twoNodeGraph(t)
	s.Paths().AppendMapping("p", &Mapping{Pos: Position{Node: a}, Edits: []Edit{{FromLength: 4, ToLength: 4}}})
	s.Paths().AppendMapping("p", &Mapping{Pos: Position{Node: b}, Edits: []Edit{{FromLength: 4, ToLength: 4}}})

	if err := s.DestroyNode(a); err != nil {
		t.Fatalf("DestroyNode: %v", err)
	}
	p := s.Paths().Get("p")
	if len(p.Mappings) != 1 || p.Mappings[0].Pos.Node != b {
		t.Fatalf("expected only b's mapping to remain, got %+v", p.Mappings)
	}
	if s.HasNode(a) {
		t.Fatalf("node a should no longer exist")
	}
}
