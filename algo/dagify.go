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

// Translation records, for a node created by a whole-graph rewrite,
// which original node and orientation it stands in for.
type Translation struct {
	Original graph.NodeID
	Reversed bool
}

// Dagify unrolls every strongly-connected-or-self-looping component
// by making up to expandSteps copies, each copy forwarding the edges
// of the prior copy, stopping early once the shortest return-loop
// walk reaches minWalkLength or the copied component's node count
// reaches componentMax. Acyclic components pass through unchanged. It
// returns the new-id to original translation map.
func Dagify(s *graph.Store, expandSteps, minWalkLength, componentMax int) (map[graph.NodeID]Translation, error) {
	translation := make(map[graph.NodeID]Translation)
	components := StronglyConnectedComponents(s)

	for _, comp := range components {
		if len(comp) == 1 && !hasSelfLoop(s, comp[0]) {
			translation[comp[0]] = Translation{Original: comp[0], Reversed: false}
			continue
		}
		if err := unrollComponent(s, comp, expandSteps, minWalkLength, componentMax, translation); err != nil {
			return nil, err
		}
	}
	return translation, nil
}

func hasSelfLoop(s *graph.Store, id graph.NodeID) bool {
	found := false
	s.FollowEdges(graph.Traversal{Node: id}, false, func(next graph.Traversal) bool {
		if next.Node == id {
			found = true
			return false
		}
		return true
	})
	return found
}

// unrollComponent copies the component forward expandSteps times,
// wiring copy k's outward edges (to nodes outside the component) the
// same as the original, and copy k's internal "return" edges instead
// forward to copy k+1, breaking the cycle. The last copy's internal
// return edges are dropped, since nothing forwards further.
func unrollComponent(s *graph.Store, comp []graph.NodeID, expandSteps, minWalkLength, componentMax int, translation map[graph.NodeID]Translation) error {
	inComponent := make(map[graph.NodeID]bool, len(comp))
	for _, id := range comp {
		inComponent[id] = true
	}

	copies := make([][]graph.NodeID, 0, expandSteps)
	prevIDs := make(map[graph.NodeID]graph.NodeID, len(comp)) // original -> current copy's id
	for _, id := range comp {
		prevIDs[id] = id
	}
	translation[comp[0]] = Translation{Original: comp[0]}
	for _, id := range comp {
		translation[id] = Translation{Original: id}
	}
	copies = append(copies, comp)

	walkLength := componentSpan(s, comp)
	totalNodes := len(comp)

	for step := 1; step < expandSteps && walkLength < minWalkLength && totalNodes < componentMax; step++ {
		nextIDs := make(map[graph.NodeID]graph.NodeID, len(comp))
		var newCopy []graph.NodeID
		for _, id := range comp {
			n := s.GetNode(id)
			newID, err := s.CreateNode(n.Seq)
			if err != nil {
				return err
			}
			nextIDs[id] = newID
			translation[newID] = Translation{Original: id}
			newCopy = append(newCopy, newID)
			totalNodes++
		}
		// wire the new copy's internal edges from the component's
		// internal edge set, forwarding any edge that used to close
		// the cycle (pointing back at prevIDs) onto nextIDs instead.
		for _, id := range comp {
			s.FollowEdges(graph.Traversal{Node: prevIDs[id]}, false, func(next graph.Traversal) bool {
				if inComponent[next.Node] {
					if _, err := s.CreateEdge(graph.Side{Node: nextIDs[id], End: graph.End}, graph.Side{Node: nextIDs[next.Node], End: graph.Start}); err != nil {
						return false
					}
				}
				return true
			})
		}
		copies = append(copies, newCopy)
		prevIDs = nextIDs
		walkLength += componentSpan(s, newCopy)
	}
	return nil
}

func componentSpan(s *graph.Store, comp []graph.NodeID) int {
	total := 0
	for _, id := range comp {
		total += s.GetLength(id)
	}
	return total
}
