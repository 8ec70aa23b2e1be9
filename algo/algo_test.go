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
	"testing"

	"github.com/exascience/pangraph/graph"
)

func linearGraph(t *testing.T) (*graph.Store, []graph.NodeID) {
	t.Helper()
	s := graph.NewStore()
	var ids []graph.NodeID
	for _, seq := range []string{"AAAA", "CCCC", "GGGG"} {
		id, err := s.CreateNode(seq)
		if err != nil {
			t.Fatalf("CreateNode: %v", err)
		}
		ids = append(ids, id)
	}
	for i := 0; i+1 < len(ids); i++ {
		if _, err := s.CreateEdge(graph.Side{Node: ids[i], End: graph.End}, graph.Side{Node: ids[i+1], End: graph.Start}); err != nil {
			t.Fatalf("CreateEdge: %v", err)
		}
	}
	return s, ids
}

func TestTopologicalSortLinear(t *testing.T) {
	s, ids := linearGraph(t)
	order, ok := TopologicalSort(s)
	if !ok {
		t.Fatalf("expected acyclic graph to sort")
	}
	if len(order) != len(ids) {
		t.Fatalf("expected %d nodes in order, got %d", len(ids), len(order))
	}
	pos := make(map[graph.NodeID]int)
	for i, id := range order {
		pos[id] = i
	}
	for i := 0; i+1 < len(ids); i++ {
		if pos[ids[i]] >= pos[ids[i+1]] {
			t.Fatalf("expected %d before %d in topological order", ids[i], ids[i+1])
		}
	}
}

func TestTopologicalSortDetectsCycle(t *testing.T) {
	s, ids := linearGraph(t)
	if _, err := s.CreateEdge(graph.Side{Node: ids[2], End: graph.End}, graph.Side{Node: ids[0], End: graph.Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	_, ok := TopologicalSort(s)
	if ok {
		t.Fatalf("expected cyclic graph to fail topological sort")
	}
}

func TestStronglyConnectedComponentsSelfLoop(t *testing.T) {
	s := graph.NewStore()
	a, _ := s.CreateNode("AAAA")
	if _, err := s.CreateEdge(graph.Side{Node: a, End: graph.End}, graph.Side{Node: a, End: graph.Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	b, _ := s.CreateNode("CCCC")
	if _, err := s.CreateEdge(graph.Side{Node: a, End: graph.End}, graph.Side{Node: b, End: graph.Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}

	sccs := StronglyConnectedComponents(s)
	var foundSelfLoop, foundSingleton bool
	for _, comp := range sccs {
		if len(comp) == 1 && comp[0] == a {
			foundSelfLoop = true
		}
		if len(comp) == 1 && comp[0] == b {
			foundSingleton = true
		}
	}
	if !foundSelfLoop {
		t.Fatalf("expected a to form its own component, got %+v", sccs)
	}
	if !foundSingleton {
		t.Fatalf("expected b to form its own component, got %+v", sccs)
	}
}

// TestInvertingSelfLoopIsCyclic exercises the literal boundary
// scenario of a node with a single inverting self-loop on one side
// only ((1 end, 1 end), no edge on the other side): both directions
// must treat it as a cycle, since crossing it always lands back on
// the same side it left from.
func TestInvertingSelfLoopIsCyclic(t *testing.T) {
	s := graph.NewStore()
	a, _ := s.CreateNode("AAAA")
	if _, err := s.CreateEdge(graph.Side{Node: a, End: graph.End}, graph.Side{Node: a, End: graph.End}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}

	if _, ok := TopologicalSort(s); ok {
		t.Fatalf("expected the inverting self-loop to be reported as cyclic")
	}

	sccs := StronglyConnectedComponents(s)
	if len(sccs) != 1 || len(sccs[0]) != 1 || sccs[0][0] != a {
		t.Fatalf("expected node 1 as its own component, got %+v", sccs)
	}
}

func TestStronglyConnectedComponentsCycle(t *testing.T) {
	s, ids := linearGraph(t)
	if _, err := s.CreateEdge(graph.Side{Node: ids[2], End: graph.End}, graph.Side{Node: ids[0], End: graph.Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	sccs := StronglyConnectedComponents(s)
	var big []graph.NodeID
	for _, comp := range sccs {
		if len(comp) > len(big) {
			big = comp
		}
	}
	if len(big) != 3 {
		t.Fatalf("expected the 3-cycle to collapse into one component, got %+v", sccs)
	}
}

func TestFindSimpleComponentsLinearRun(t *testing.T) {
	s, ids := linearGraph(t)
	runs := FindSimpleComponents(s)
	if len(runs) != 1 {
		t.Fatalf("expected a single simple-path run, got %d", len(runs))
	}
	if len(runs[0]) != len(ids) {
		t.Fatalf("expected the run to cover all %d nodes, got %d", len(ids), len(runs[0]))
	}
}

func TestFindSimpleComponentsStopsAtBranch(t *testing.T) {
	s := graph.NewStore()
	a, _ := s.CreateNode("AAAA")
	b, _ := s.CreateNode("CCCC")
	c, _ := s.CreateNode("GGGG")
	if _, err := s.CreateEdge(graph.Side{Node: a, End: graph.End}, graph.Side{Node: b, End: graph.Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	if _, err := s.CreateEdge(graph.Side{Node: a, End: graph.End}, graph.Side{Node: c, End: graph.Start}); err != nil {
		t.Fatalf("CreateEdge: %v", err)
	}
	runs := FindSimpleComponents(s)
	for _, run := range runs {
		if len(run) > 1 {
			t.Fatalf("expected no multi-node run across a branch point, got %+v", run)
		}
	}
}
