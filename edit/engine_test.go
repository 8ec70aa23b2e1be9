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

package edit

import (
	"testing"

	"github.com/exascience/pangraph/graph"
)

func TestApplySubstitutionGraftsThreePieces(t *testing.T) {
	s := graph.NewStore()
	id, err := s.CreateNode("AAAACCCCGGGG")
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	mapping := &graph.Mapping{
		Pos: graph.Position{Node: id},
		Edits: []graph.Edit{
			{FromLength: 4, ToLength: 4},
			{FromLength: 4, ToLength: 4, Sequence: "TTTT"},
			{FromLength: 4, ToLength: 4},
		},
	}

	engine := &Engine{Store: s}
	translations, err := engine.Apply([]Input{{Name: "p1", Mappings: []*graph.Mapping{mapping}}})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(translations) != 2 {
		t.Fatalf("expected 2 translations (one per match edit), got %d", len(translations))
	}
	if translations[0].OriginalNode != id || translations[0].Offset != 0 || translations[0].NewNode != id || translations[0].NewOffset != 0 {
		t.Fatalf("unexpected first translation: %+v", translations[0])
	}
	if translations[1].OriginalNode != id || translations[1].Offset != 8 || translations[1].NewOffset != 0 {
		t.Fatalf("unexpected second translation: %+v", translations[1])
	}
	thirdPiece := translations[1].NewNode
	if thirdPiece == id {
		t.Fatalf("expected the second translation to land on a distinct piece from the first")
	}

	if got := s.GetLength(id); got != 4 {
		t.Fatalf("expected the first piece to keep the original id with length 4, got %d", got)
	}
	if got := string(s.GetSequence(graph.Traversal{Node: id})); got != "AAAA" {
		t.Fatalf("expected first piece sequence AAAA, got %s", got)
	}
	if got := string(s.GetSequence(graph.Traversal{Node: thirdPiece})); got != "GGGG" {
		t.Fatalf("expected third piece sequence GGGG, got %s", got)
	}

	var insertedNode graph.NodeID
	s.FollowEdges(graph.Traversal{Node: id}, false, func(next graph.Traversal) bool {
		if string(s.GetSequence(next)) == "TTTT" {
			insertedNode = next.Node
		}
		return true
	})
	if insertedNode == 0 {
		t.Fatalf("expected a node carrying the substituted sequence TTTT reachable from the first piece")
	}
	if _, ok := s.GetEdge(graph.Side{Node: insertedNode, End: graph.End}, graph.Side{Node: thirdPiece, End: graph.Start}); !ok {
		t.Fatalf("expected an edge from the inserted node into the third piece")
	}

	path := s.Paths().Get("p1")
	if path == nil {
		t.Fatalf("expected path p1 to exist")
	}
	if len(path.Mappings) != 3 {
		t.Fatalf("expected 3 mappings on the grafted walk, got %d", len(path.Mappings))
	}
	wantNodes := []graph.NodeID{id, insertedNode, thirdPiece}
	for i, m := range path.Mappings {
		if m.Pos.Node != wantNodes[i] {
			t.Fatalf("mapping %d: expected node %d, got %d", i, wantNodes[i], m.Pos.Node)
		}
		if m.Rank != i+1 {
			t.Fatalf("mapping %d: expected rank %d, got %d", i, i+1, m.Rank)
		}
	}
}

func TestApplyInsertionCachesSharedNodes(t *testing.T) {
	s := graph.NewStore()
	id, err := s.CreateNode("AAAA")
	if err != nil {
		t.Fatalf("CreateNode: %v", err)
	}

	insertion := func(name string) Input {
		return Input{
			Name: name,
			Mappings: []*graph.Mapping{{
				Pos:   graph.Position{Node: id},
				Edits: []graph.Edit{{FromLength: 0, ToLength: 6, Sequence: "GGGGGG"}},
			}},
		}
	}

	engine := &Engine{Store: s, ChunkLength: 3}
	if _, err := engine.Apply([]Input{insertion("p1")}); err != nil {
		t.Fatalf("Apply p1: %v", err)
	}
	afterFirst := s.NodeCount()
	if afterFirst != 3 {
		t.Fatalf("expected 2 insertion chunks plus the original node, got %d nodes", afterFirst)
	}

	if _, err := engine.Apply([]Input{insertion("p2")}); err != nil {
		t.Fatalf("Apply p2: %v", err)
	}
	if got := s.NodeCount(); got != afterFirst {
		t.Fatalf("expected the second insertion to reuse cached chunk nodes, node count grew from %d to %d", afterFirst, got)
	}

	p1 := s.Paths().Get("p1")
	p2 := s.Paths().Get("p2")
	if p1 == nil || p2 == nil {
		t.Fatalf("expected both paths to exist")
	}
	if len(p1.Mappings) != 2 || len(p2.Mappings) != 2 {
		t.Fatalf("expected 2 chunk mappings per path, got %d and %d", len(p1.Mappings), len(p2.Mappings))
	}
	for i := range p1.Mappings {
		if p1.Mappings[i].Pos.Node != p2.Mappings[i].Pos.Node {
			t.Fatalf("expected mapping %d of p1 and p2 to share a node, got %d vs %d", i, p1.Mappings[i].Pos.Node, p2.Mappings[i].Pos.Node)
		}
	}
}
