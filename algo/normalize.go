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

// Normalize repeatedly merges simple-path components (unchop) and
// splits a common prefix shared by sibling nodes off into its own
// node (mergeSiblingAffixes), until the total sequence length stops
// decreasing or maxIter passes have run. It does not flip
// doubly-reversed edges, does not consider common suffixes, and does
// not merge sibling nodes; since neither step shortens the total
// sequence length, the loop ends after its first pass.
func Normalize(s *graph.Store, maxIter int) error {
	prevLength := totalSequenceLength(s)
	for iter := 0; iter < maxIter; iter++ {
		if err := unchop(s); err != nil {
			return err
		}
		if err := mergeSiblingAffixes(s); err != nil {
			return err
		}
		length := totalSequenceLength(s)
		if length >= prevLength {
			break
		}
		prevLength = length
	}
	return nil
}

func totalSequenceLength(s *graph.Store) int {
	total := 0
	s.ForEachNode(func(n *graph.Node) bool {
		total += n.Length()
		return true
	})
	return total
}

// unchop collapses every maximal simple-path run discovered by
// FindSimpleComponents into a single node via ConcatNodes.
func unchop(s *graph.Store) error {
	for _, run := range FindSimpleComponents(s) {
		if _, err := s.ConcatNodes(run); err != nil {
			return err
		}
	}
	return nil
}

// mergeSiblingAffixes finds groups of sibling nodes (nodes sharing
// the same set of left neighbors) whose sequences share a common
// prefix, and splits that prefix off each longer sibling via
// DivideNode. Common suffixes are not considered, and the split-off
// prefix nodes are left as separate nodes, not merged.
func mergeSiblingAffixes(s *graph.Store) error {
	ids := collectNodeIDs(s)
	bySignature := make(map[string][]graph.NodeID)
	for _, id := range ids {
		var sig []graph.Side
		s.FollowEdges(graph.Traversal{Node: id}, true, func(t graph.Traversal) bool {
			sig = append(sig, t.Right())
			return true
		})
		key := sideSetKey(sig)
		bySignature[key] = append(bySignature[key], id)
	}

	for _, siblings := range bySignature {
		if len(siblings) < 2 {
			continue
		}
		prefixLen := commonPrefixLength(s, siblings)
		if prefixLen == 0 {
			continue
		}
		for _, id := range siblings {
			length := s.GetLength(id)
			if prefixLen >= length {
				continue
			}
			if _, err := s.DivideNode(id, []int{prefixLen}); err != nil {
				return err
			}
		}
	}
	return nil
}

func sideSetKey(sides []graph.Side) string {
	key := make([]byte, 0, len(sides)*16)
	for _, s := range sides {
		key = append(key, byte(s.Node), byte(s.Node>>8), byte(s.End))
	}
	return string(key)
}

func commonPrefixLength(s *graph.Store, ids []graph.NodeID) int {
	seqs := make([]string, len(ids))
	minLen := -1
	for i, id := range ids {
		n := s.GetNode(id)
		seqs[i] = n.Seq
		if minLen == -1 || len(n.Seq) < minLen {
			minLen = len(n.Seq)
		}
	}
	for l := 0; l < minLen; l++ {
		c := seqs[0][l]
		for _, sq := range seqs[1:] {
			if sq[l] != c {
				return l
			}
		}
	}
	return minLen
}
