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

package phase

import (
	"testing"

	"github.com/exascience/pangraph/graph"
)

// trivialState treats every extension as supported, standing in for a
// real haplotype index in tests that only care about walk splicing.
type trivialState struct{}

func (trivialState) Extend(next graph.Traversal) (State, bool) { return trivialState{}, true }

type trivialIndex struct{}

func (trivialIndex) Start(t graph.Traversal) State { return trivialState{} }

func TestUnfoldSplicesPrunedInterior(t *testing.T) {
	original := graph.NewStore()
	border1, _ := original.CreateNode("AAAA")
	interior, _ := original.CreateNode("CC")
	border2, _ := original.CreateNode("GGGG")
	if _, err := original.CreateEdge(graph.Side{Node: border1, End: graph.End}, graph.Side{Node: interior, End: graph.Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	if _, err := original.CreateEdge(graph.Side{Node: interior, End: graph.End}, graph.Side{Node: border2, End: graph.Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}

	working := graph.NewStore()
	if _, err := working.CreateNode("AAAA", border1); err != nil {
		t.Fatalf("CreateNode border1: %v", err)
	}
	if _, err := working.CreateNode("GGGG", border2); err != nil {
		t.Fatalf("CreateNode border2: %v", err)
	}

	const firstFreeID graph.NodeID = 10
	u := NewUnfolder(original, working, trivialIndex{}, firstFreeID)

	var progressCalls [][2]int
	if err := u.Unfold(func(done, total int) {
		progressCalls = append(progressCalls, [2]int{done, total})
	}); err != nil {
		t.Fatalf("Unfold: %v", err)
	}

	if len(progressCalls) != 1 || progressCalls[0] != [2]int{1, 1} {
		t.Fatalf("expected a single progress callback for one component, got %+v", progressCalls)
	}

	if !working.HasNode(firstFreeID) {
		t.Fatalf("expected the interior node to be spliced in under the fresh id")
	}
	if got := string(working.GetSequence(graph.Traversal{Node: firstFreeID})); got != "CC" {
		t.Fatalf("expected spliced node sequence CC, got %s", got)
	}
	if _, ok := working.GetEdge(graph.Side{Node: border1, End: graph.End}, graph.Side{Node: firstFreeID, End: graph.Start}); !ok {
		t.Fatalf("expected an edge from border1 into the spliced interior node")
	}
	if _, ok := working.GetEdge(graph.Side{Node: firstFreeID, End: graph.End}, graph.Side{Node: border2, End: graph.Start}); !ok {
		t.Fatalf("expected an edge from the spliced interior node into border2")
	}
}

func TestUnfoldNoOpWhenNoComplementEdges(t *testing.T) {
	original := graph.NewStore()
	a, _ := original.CreateNode("AAAA")
	b, _ := original.CreateNode("CCCC")
	if _, err := original.CreateEdge(graph.Side{Node: a, End: graph.End}, graph.Side{Node: b, End: graph.Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}

	working := graph.NewStore()
	if _, err := working.CreateNode("AAAA", a); err != nil {
		t.Fatalf("CreateNode a: %v", err)
	}
	if _, err := working.CreateNode("CCCC", b); err != nil {
		t.Fatalf("CreateNode b: %v", err)
	}
	if _, err := working.CreateEdge(graph.Side{Node: a, End: graph.End}, graph.Side{Node: b, End: graph.Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}

	u := NewUnfolder(original, working, trivialIndex{}, 100)
	var calls int
	if err := u.Unfold(func(done, total int) { calls++ }); err != nil {
		t.Fatalf("Unfold: %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no components when the working graph already has every original edge, got %d calls", calls)
	}
	if working.NodeCount() != 2 {
		t.Fatalf("expected no new nodes to be spliced in, got %d nodes", working.NodeCount())
	}
}
