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
	"sort"
	"sync"
	"sync/atomic"

	"github.com/exascience/pargo/parallel"

	"github.com/exascience/pangraph/internal"
)

// Store owns a set of nodes and edges and the adjacency indices that
// make side-traversal enumeration constant time. Mutation happens
// from a single writer at a time; readers may run concurrently with
// other readers but never with a writer (see design §5).
//
// Store always carries a Paths collection and keeps it consistent
// across every structural edit, per the "editing hook" in design §4.2.
type Store struct {
	mu sync.RWMutex

	nodes  map[NodeID]*Node
	nextID NodeID

	// adjacency indices: for each side, the ordered list of sides it
	// attaches to. Both sides of an edge carry an entry pointing at
	// the other.
	adj map[Side][]Side

	edges map[Side]*Edge // keyed by canonical (lesser) side

	paths *Paths
}

// NewStore creates an empty graph store with its own Paths collection.
func NewStore() *Store {
	return &Store{
		nodes: make(map[NodeID]*Node),
		adj:   make(map[Side][]Side),
		edges: make(map[Side]*Edge),
		paths: newPaths(),
	}
}

// Paths returns the path collection kept consistent with this store.
func (s *Store) Paths() *Paths { return s.paths }

// MinNodeID returns the smallest node id currently in the store, or 0
// if the store is empty.
func (s *Store) MinNodeID() NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var min NodeID
	for id := range s.nodes {
		if min == 0 || id < min {
			min = id
		}
	}
	return min
}

// MaxNodeID returns the largest node id currently in the store, or 0
// if the store is empty.
func (s *Store) MaxNodeID() NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxNodeIDLocked()
}

func (s *Store) maxNodeIDLocked() NodeID {
	var max NodeID
	for id := range s.nodes {
		if id > max {
			max = id
		}
	}
	return max
}

// NodeCount returns the number of nodes currently in the store.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// GetNode returns the node with the given id, or nil if none exists.
func (s *Store) GetNode(id NodeID) *Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nodes[id]
}

// HasNode reports whether a node with the given id exists.
func (s *Store) HasNode(id NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[id]
	return ok
}

// GetLength returns the sequence length of the given node, implementing
// the graph-accessor interface's get_length.
func (s *Store) GetLength(id NodeID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n, ok := s.nodes[id]; ok {
		return n.Length()
	}
	return 0
}

// GetSequence returns the sequence of a node as read by the given
// traversal, implementing the graph-accessor interface's get_sequence.
func (s *Store) GetSequence(t Traversal) []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[t.Node]
	if !ok {
		return nil
	}
	return []byte(n.Sequence(t))
}

// CreateNode creates a new node with the given sequence. If id is
// omitted, the store assigns max_id+1. It fails if the supplied id is
// 0 or already taken.
func (s *Store) CreateNode(seq string, id ...NodeID) (NodeID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createNodeLocked(seq, id...)
}

func (s *Store) createNodeLocked(seq string, id ...NodeID) (NodeID, error) {
	var nodeID NodeID
	if len(id) > 0 {
		nodeID = id[0]
		if nodeID == 0 {
			return 0, internal.New(internal.InvalidInput, "CreateNode", "node id must not be 0")
		}
		if _, exists := s.nodes[nodeID]; exists {
			return 0, internal.New(internal.InvalidInput, "CreateNode", "node id already exists")
		}
	} else {
		nodeID = s.maxNodeIDLocked() + 1
	}
	s.nodes[nodeID] = &Node{ID: nodeID, Seq: seq}
	if nodeID > s.nextID {
		s.nextID = nodeID
	}
	return nodeID, nil
}

// DestroyNode removes a node and every incident edge, and removes
// every mapping on that node from every path (surrounding mappings
// are left in place, subject to later rank compaction).
func (s *Store) DestroyNode(id NodeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[id]; !ok {
		return internal.New(internal.NotFound, "DestroyNode", "node does not exist")
	}
	s.removeAllEdgesOnSideLocked(Side{id, Start})
	s.removeAllEdgesOnSideLocked(Side{id, End})
	delete(s.nodes, id)
	delete(s.adj, Side{id, Start})
	delete(s.adj, Side{id, End})
	s.paths.removeMappingsOnNode(id)
	return nil
}

func (s *Store) removeAllEdgesOnSideLocked(side Side) {
	for _, other := range append([]Side(nil), s.adj[side]...) {
		s.destroyEdgeLocked(side, other)
	}
}

// CreateEdge creates an edge between two sides, or returns the
// existing edge if one with the same two sides already exists
// (idempotent).
func (s *Store) CreateEdge(a, b Side, overlap ...int) (*Edge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createEdgeLocked(a, b, overlap...)
}

func (s *Store) createEdgeLocked(a, b Side, overlap ...int) (*Edge, error) {
	if _, ok := s.nodes[a.Node]; !ok {
		return nil, internal.New(internal.InvalidInput, "CreateEdge", "side a references a missing node")
	}
	if _, ok := s.nodes[b.Node]; !ok {
		return nil, internal.New(internal.InvalidInput, "CreateEdge", "side b references a missing node")
	}
	lo, hi := canonicalize(a, b)
	if existing, ok := s.edges[lo]; ok && existing.Other(lo) == hi {
		return existing, nil
	}
	e := &Edge{A: lo, B: hi}
	if len(overlap) > 0 {
		e.Overlap = overlap[0]
		e.HasOverlap = true
	}
	s.edges[lo] = e
	s.adj[a] = append(s.adj[a], b)
	if a != b {
		s.adj[b] = append(s.adj[b], a)
	} else {
		// a==b: an inverting self-loop on a single side. The entry
		// above recorded a->a once; it is doubled so FollowEdges sees
		// the loop from either direction query.
		s.adj[a] = append(s.adj[a], a)
	}
	return e, nil
}

// GetEdge returns the edge between the two given sides, if one
// exists.
func (s *Store) GetEdge(a, b Side) (*Edge, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	lo, hi := canonicalize(a, b)
	e, ok := s.edges[lo]
	if !ok || e.Other(lo) != hi {
		return nil, false
	}
	return e, true
}

// DestroyEdge removes exactly the edge between the two given sides,
// if present.
func (s *Store) DestroyEdge(a, b Side) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.destroyEdgeLocked(a, b)
	return nil
}

func (s *Store) destroyEdgeLocked(a, b Side) {
	lo, _ := canonicalize(a, b)
	if _, ok := s.edges[lo]; !ok {
		return
	}
	delete(s.edges, lo)
	s.removeAdjEntry(a, b)
	if a != b {
		s.removeAdjEntry(b, a)
	} else {
		s.removeAdjEntry(a, a)
	}
}

func (s *Store) removeAdjEntry(from, to Side) {
	list := s.adj[from]
	for i, v := range list {
		if v == to {
			s.adj[from] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// FollowEdges enumerates every traversal reachable from t by crossing
// one edge, respecting strand. goLeft enumerates edges attached to
// t's left side instead of its right side (useful for walking
// backwards). The visitor may return false to stop early.
func (s *Store) FollowEdges(t Traversal, goLeft bool, visitor func(Traversal) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	side := t.Right()
	if goLeft {
		side = t.Left()
	}
	for _, other := range s.adj[side] {
		var next Traversal
		if other.End == Start {
			next = Traversal{other.Node, false}
		} else {
			next = Traversal{other.Node, true}
		}
		if goLeft {
			next = next.Flipped()
		}
		if !visitor(next) {
			return
		}
	}
}

// ForEachNode visits every node currently in the store. When parallel
// is true, the visitor may be invoked concurrently from multiple
// goroutines over disjoint subsets of the node set, via pargo's
// work-stealing parallel.Range; the visitor must not mutate the store
// in that case (design §5's "parallel iteration writing back" rule).
// The visitor may return false to stop serial iteration promptly;
// parallel iteration finishes in-flight work before stopping.
func (s *Store) ForEachNode(visitor func(*Node) bool, inParallel ...bool) {
	s.mu.RLock()
	ids := make([]NodeID, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	nodes := make([]*Node, len(ids))
	for i, id := range ids {
		nodes[i] = s.nodes[id]
	}
	s.mu.RUnlock()

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	if len(inParallel) > 0 && inParallel[0] {
		var stop atomic.Bool
		parallel.Range(0, len(nodes), 0, func(low, high int) {
			for i := low; i < high; i++ {
				if stop.Load() {
					return
				}
				if !visitor(nodes[i]) {
					stop.Store(true)
					return
				}
			}
		})
		return
	}
	for _, n := range nodes {
		if !visitor(n) {
			return
		}
	}
}
