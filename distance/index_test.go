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
	"testing"

	"github.com/exascience/pangraph/graph"
)

func TestBuildTwoNodeGraph(t *testing.T) {
	s := graph.NewStore()
	a, _ := s.CreateNode("AAAA")
	b, _ := s.CreateNode("CCCCCC")
	if _, err := s.CreateEdge(graph.Side{Node: a, End: graph.End}, graph.Side{Node: b, End: graph.Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}

	idx, err := Build(s, NaiveFinder{Store: s}, 64)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	d := idx.MinDistance(graph.Position{Node: a, Offset: 0}, graph.Position{Node: b, Offset: 0})
	if d != 4 {
		t.Fatalf("expected distance 4 from start of a to start of b, got %d", d)
	}

	d2 := idx.MinDistance(graph.Position{Node: a, Offset: 2}, graph.Position{Node: b, Offset: 3})
	if d2 != 5 {
		t.Fatalf("expected distance 5, got %d", d2)
	}
}

func TestBuildSimpleBubble(t *testing.T) {
	s := graph.NewStore()
	left, _ := s.CreateNode("AAAA")
	top, _ := s.CreateNode("CC")
	bottom, _ := s.CreateNode("GGGG")
	right, _ := s.CreateNode("TTTT")
	for _, e := range [][2]graph.Side{
		{{Node: left, End: graph.End}, {Node: top, End: graph.Start}},
		{{Node: left, End: graph.End}, {Node: bottom, End: graph.Start}},
		{{Node: top, End: graph.End}, {Node: right, End: graph.Start}},
		{{Node: bottom, End: graph.End}, {Node: right, End: graph.Start}},
	} {
		if _, err := s.CreateEdge(e[0], e[1]); err != nil {
			t.Fatalf("CreateEdge: %v", err)
		}
	}

	idx, err := Build(s, NaiveFinder{Store: s}, 64)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if len(idx.snarls) != 1 {
		t.Fatalf("expected exactly one snarl in the decomposition, got %d", len(idx.snarls))
	}
	snarl := idx.snarls[0]
	if snarl.minLength != 2 {
		t.Fatalf("expected the snarl's min length to take the shorter (top) branch, got %d", snarl.minLength)
	}
}

func TestMinDistanceOverflowAcrossComponents(t *testing.T) {
	s := graph.NewStore()
	a, _ := s.CreateNode("AAAA")
	b, _ := s.CreateNode("CCCC")

	idx, err := Build(s, NaiveFinder{Store: s}, 64)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	d := idx.MinDistance(graph.Position{Node: a}, graph.Position{Node: b})
	if d != Overflow {
		t.Fatalf("expected Overflow for disconnected components, got %d", d)
	}
}
