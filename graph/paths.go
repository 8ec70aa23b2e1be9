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

	"github.com/exascience/pangraph/internal"
	"github.com/exascience/pangraph/utils"
)

// Path is a named, rank-ordered walk over oriented nodes.
type Path struct {
	Name     utils.Symbol
	Mappings []*Mapping // kept in canonical walk order at all times
	Circular bool
}

// Paths is the named-path collection kept consistent with a Store
// across every structural edit (design §4.2). Every mutating Store
// operation that touches nodes covered by a path calls into this
// collection to rewrite or split the affected mappings.
type Paths struct {
	mu     sync.RWMutex
	byName map[string]*Path
	byNode map[NodeID][]*Mapping
}

func newPaths() *Paths {
	return &Paths{
		byName: make(map[string]*Path),
		byNode: make(map[NodeID][]*Mapping),
	}
}

func (p *Paths) ensurePath(name string) *Path {
	path, ok := p.byName[name]
	if !ok {
		path = &Path{Name: utils.Intern(name)}
		p.byName[name] = path
	}
	return path
}

// Get returns the path with the given name, or nil if it doesn't
// exist.
func (p *Paths) Get(name string) *Path {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.byName[name]
}

// Names returns the names of every path currently in the collection,
// in no particular order.
func (p *Paths) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make([]string, 0, len(p.byName))
	for name := range p.byName {
		result = append(result, name)
	}
	return result
}

func (p *Paths) indexMapping(m *Mapping) {
	p.byNode[m.Pos.Node] = append(p.byNode[m.Pos.Node], m)
}

func (p *Paths) unindexMapping(m *Mapping) {
	list := p.byNode[m.Pos.Node]
	for i, v := range list {
		if v == m {
			p.byNode[m.Pos.Node] = append(list[:i], list[i+1:]...)
			break
		}
	}
	if len(p.byNode[m.Pos.Node]) == 0 {
		delete(p.byNode, m.Pos.Node)
	}
}

// AppendMapping appends m to the end of the named path, assigning it
// the next dense rank.
func (p *Paths) AppendMapping(name string, m *Mapping) {
	p.mu.Lock()
	defer p.mu.Unlock()
	path := p.ensurePath(name)
	if n := len(path.Mappings); n > 0 {
		m.Rank = path.Mappings[n-1].Rank + 1
	} else {
		m.Rank = 1
	}
	m.path = name
	path.Mappings = append(path.Mappings, m)
	p.indexMapping(m)
}

// InsertMapping inserts m immediately before the mapping currently
// carrying rank beforeRank, assigning m that same rank (duplicating
// it) and leaving ranks non-contiguous until CompactRanks is called.
func (p *Paths) InsertMapping(name string, beforeRank int, m *Mapping) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	path, ok := p.byName[name]
	if !ok {
		return internal.New(internal.NotFound, "InsertMapping", "path does not exist")
	}
	idx := sort.Search(len(path.Mappings), func(i int) bool {
		return path.Mappings[i].Rank >= beforeRank
	})
	if idx == len(path.Mappings) || path.Mappings[idx].Rank != beforeRank {
		return internal.New(internal.NotFound, "InsertMapping", "no mapping with the given rank")
	}
	m.Rank = beforeRank
	m.path = name
	path.Mappings = append(path.Mappings, nil)
	copy(path.Mappings[idx+1:], path.Mappings[idx:])
	path.Mappings[idx] = m
	p.indexMapping(m)
	return nil
}

// RemoveMapping removes m from its owning path and from the by-node
// index. It is a no-op if m is not currently attached to any path.
func (p *Paths) RemoveMapping(m *Mapping) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.removeMappingLocked(m)
}

func (p *Paths) removeMappingLocked(m *Mapping) {
	if m.path == "" {
		return
	}
	path, ok := p.byName[m.path]
	if ok {
		for i, v := range path.Mappings {
			if v == m {
				path.Mappings = append(path.Mappings[:i], path.Mappings[i+1:]...)
				break
			}
		}
	}
	p.unindexMapping(m)
	m.path = ""
}

// DivideMapping splits m into two mappings whose edits sum to the
// original, at the given offset (measured in reference bases from the
// start of m). Both halves carry m's rank, pending compaction.
func (p *Paths) DivideMapping(m *Mapping, offset int) (*Mapping, *Mapping, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if m.path == "" {
		return nil, nil, internal.New(internal.InvalidInput, "DivideMapping", "mapping is not attached to a path")
	}
	left, right, err := splitMappingEdits(m, offset)
	if err != nil {
		return nil, nil, err
	}
	left.path, right.path = m.path, m.path
	left.Rank, right.Rank = m.Rank, m.Rank

	path := p.byName[m.path]
	for i, v := range path.Mappings {
		if v == m {
			path.Mappings[i] = left
			path.Mappings = append(path.Mappings, nil)
			copy(path.Mappings[i+2:], path.Mappings[i+1:])
			path.Mappings[i+1] = right
			break
		}
	}
	p.unindexMapping(m)
	p.indexMapping(left)
	p.indexMapping(right)
	return left, right, nil
}

// splitMappingEdits splits a mapping's edit list at the given
// from-length offset, splitting the edit that straddles the boundary
// proportionally to its to/from ratio for non-match edits.
func splitMappingEdits(m *Mapping, offset int) (*Mapping, *Mapping, error) {
	if offset <= 0 || offset >= m.FromLength() {
		return nil, nil, internal.New(internal.InvalidInput, "DivideMapping", "offset out of range")
	}
	left := &Mapping{Pos: m.Pos}
	right := &Mapping{Pos: Position{Node: m.Pos.Node, Reverse: m.Pos.Reverse, Offset: m.Pos.Offset + offset}}
	remaining := offset
	i := 0
	for ; i < len(m.Edits); i++ {
		e := m.Edits[i]
		if remaining == 0 {
			break
		}
		if e.FromLength <= remaining {
			left.Edits = append(left.Edits, e)
			remaining -= e.FromLength
			continue
		}
		// e straddles the split point.
		frac := float64(remaining) / float64(e.FromLength)
		toSplit := int(float64(e.ToLength) * frac)
		left.Edits = append(left.Edits, Edit{FromLength: remaining, ToLength: toSplit, Sequence: sliceSeq(e.Sequence, 0, toSplit)})
		right.Edits = append(right.Edits, Edit{FromLength: e.FromLength - remaining, ToLength: e.ToLength - toSplit, Sequence: sliceSeq(e.Sequence, toSplit, len(e.Sequence))})
		i++
		remaining = 0
		break
	}
	right.Edits = append(right.Edits, m.Edits[i:]...)
	return left, right, nil
}

func sliceSeq(s string, from, to int) string {
	if from < 0 || to > len(s) || from > to {
		return ""
	}
	return s[from:to]
}

// SwapNodeIDs rewrites mapping m to refer to a new node id, keeping
// the by-node index consistent.
func (p *Paths) SwapNodeIDs(m *Mapping, newID NodeID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unindexMapping(m)
	m.Pos.Node = newID
	p.indexMapping(m)
}

// CompactRanks renumbers every mapping's rank in the named path to
// the dense sequence 1..k, in canonical walk order.
func (p *Paths) CompactRanks(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	path, ok := p.byName[name]
	if !ok {
		return
	}
	for i, m := range path.Mappings {
		m.Rank = i + 1
	}
}

// MakeCircular marks the named path as circular.
func (p *Paths) MakeCircular(name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	path, ok := p.byName[name]
	if !ok {
		return internal.New(internal.NotFound, "MakeCircular", "path does not exist")
	}
	path.Circular = true
	return nil
}

// ForEachMappingOnNode visits every mapping, on any path, that
// currently references the given node. The visitor may return false
// to stop early.
func (p *Paths) ForEachMappingOnNode(id NodeID, visitor func(*Mapping) bool) {
	p.mu.RLock()
	list := append([]*Mapping(nil), p.byNode[id]...)
	p.mu.RUnlock()
	for _, m := range list {
		if !visitor(m) {
			return
		}
	}
}

// removeMappingsOnNode removes every mapping referencing id from its
// path, called by Store.DestroyNode.
func (p *Paths) removeMappingsOnNode(id NodeID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range append([]*Mapping(nil), p.byNode[id]...) {
		p.removeMappingLocked(m)
	}
}

// mappingsCoveringTraversal returns, per path name, the single
// mapping that covers the whole of traversal t with a perfect match,
// or omits the path if it doesn't touch t that way. Used by
// Store.IsPerfectPathNeighbor.
func (p *Paths) mappingsCoveringTraversal(t Traversal, length int) map[string]*Mapping {
	p.mu.RLock()
	defer p.mu.RUnlock()
	result := make(map[string]*Mapping)
	for _, m := range p.byNode[t.Node] {
		if m.Pos.Reverse != t.Reverse {
			return map[string]*Mapping{} // any mismatch makes it not a neighbor candidate
		}
		if !m.IsPerfectMatch(length) {
			return map[string]*Mapping{}
		}
		result[m.path] = m
	}
	return result
}
