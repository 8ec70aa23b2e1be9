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

// Package edit grafts a set of walks-with-edits into a graph.Store:
// breakpoint collection, node materialization, and dangling-side walk
// construction that splices insertions, substitutions, and matches
// into fresh or pre-existing nodes.
package edit

import (
	"sort"

	psort "github.com/exascience/pargo/sort"

	"github.com/exascience/pangraph/graph"
	"github.com/exascience/pangraph/internal"
	"github.com/exascience/pangraph/utils"
)

// Input is one walk-with-edits to graft: a sequence of mappings, each
// already positioned against an existing node in forward-strand
// offsets, whose edits may include non-match (insertion/substitution)
// edits.
type Input struct {
	Name     string // non-empty to embed the resulting walk as a path
	Mappings []*graph.Mapping
}

// Translation records how one original (node, offset) position maps
// to the node that now contains it after grafting. One is emitted per
// match edit; novel insertion runs produce no Translation.
type Translation struct {
	OriginalNode graph.NodeID
	Offset       int
	NewNode      graph.NodeID
	NewOffset    int
}

// Engine grafts Inputs into a Store, chopping long insertion runs to
// at most ChunkLength bases per node (0 means unbounded).
type Engine struct {
	Store       *graph.Store
	ChunkLength int

	// insertionCache maps a canonical (entry position, inserted
	// sequence) key to the node ids of the run already materialized
	// for it, so that two inputs inserting the same sequence at the
	// same entry point share nodes instead of duplicating them.
	insertionCache utils.SmallMap
}

// Apply grafts every Input into the engine's Store, following design
// §4.7 steps 1-6: simplify, collect breakpoints, materialize them,
// walk each input constructing dangling-side runs, optionally embed
// the resulting walk as a new path, and emit translation records.
func (e *Engine) Apply(inputs []Input) ([]Translation, error) {
	for _, in := range inputs {
		for _, m := range in.Mappings {
			m.Simplify()
		}
	}

	breakpoints := collectBreakpoints(e.Store, inputs)
	pieceOf, err := e.materializeBreakpoints(breakpoints)
	if err != nil {
		return nil, err
	}

	var translations []Translation
	for _, in := range inputs {
		ts, err := e.walkInput(in, pieceOf)
		if err != nil {
			return nil, err
		}
		translations = append(translations, ts...)
	}
	return translations, nil
}

// collectBreakpoints records, for every edit that is not a full-node
// perfect match or that opens/closes a mapping at a non-boundary
// offset, the forward-strand node offset at that boundary. Offsets of
// 0 and the node's full length are dropped, since they're already
// node boundaries.
func collectBreakpoints(s *graph.Store, inputs []Input) map[graph.NodeID][]int {
	result := make(map[graph.NodeID][]int)
	add := func(id graph.NodeID, offset int) {
		length := s.GetLength(id)
		if offset <= 0 || offset >= length {
			return
		}
		result[id] = append(result[id], offset)
	}

	for _, in := range inputs {
		for _, m := range in.Mappings {
			id := m.Pos.Node
			length := s.GetLength(id)
			fwdStart := m.Pos.Offset
			if m.Pos.Reverse {
				fwdStart = length - m.Pos.Offset - m.FromLength()
			}
			pos := fwdStart
			for _, ed := range m.Edits {
				if ed.FromLength == 0 {
					continue // pure insertion: doesn't itself need a split, its neighbors do at pos
				}
				if !ed.IsMatch() || pos != fwdStart || pos+ed.FromLength != fwdStart+m.FromLength() {
					add(id, pos)
					add(id, pos+ed.FromLength)
				}
				pos += ed.FromLength
			}
		}
	}

	for id, offsets := range result {
		psort.StableSort(intSorter(offsets))
		offsets = dedupInts(offsets)
		result[id] = offsets
	}
	return result
}

func dedupInts(s []int) []int {
	if len(s) == 0 {
		return s
	}
	out := s[:1]
	for _, v := range s[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// intSorter and nodeIDSorter adapt plain slices to pargo/sort's
// StableSorter interface, following the teacher's stableIntervalSorter
// (intervals/intervals.go) and AlignmentSorter (sam/sam-types.go)
// pattern: a sequential base case plus a merge-friendly Assign for
// psort.StableSort's parallel merge sort.
type intSorter []int

func (s intSorter) SequentialSort(i, j int) { sort.Ints(s[i:j]) }
func (s intSorter) NewTemp() psort.StableSorter {
	return intSorter(make([]int, len(s)))
}
func (s intSorter) Len() int          { return len(s) }
func (s intSorter) Less(i, j int) bool { return s[i] < s[j] }
func (s intSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(intSorter)
	return func(i, j, len int) { copy(dst[i:i+len], src[j:j+len]) }
}

type nodeIDSorter []graph.NodeID

func (s nodeIDSorter) SequentialSort(i, j int) {
	sub := s[i:j]
	sort.Slice(sub, func(a, b int) bool { return sub[a] < sub[b] })
}
func (s nodeIDSorter) NewTemp() psort.StableSorter {
	return nodeIDSorter(make([]graph.NodeID, len(s)))
}
func (s nodeIDSorter) Len() int          { return len(s) }
func (s nodeIDSorter) Less(i, j int) bool { return s[i] < s[j] }
func (s nodeIDSorter) Assign(source psort.StableSorter) func(i, j, len int) {
	dst, src := s, source.(nodeIDSorter)
	return func(i, j, len int) { copy(dst[i:i+len], src[j:j+len]) }
}

// piece locates which replacement node and local offset a given
// original (node, forward offset) position now maps to after
// materialization.
type piece struct {
	node      graph.NodeID
	offset    int // local offset within node, forward strand
	origStart int // forward offset in the original node where this piece begins
}

// materializeBreakpoints splits every affected node at its recorded
// offsets in one pass via graph.Store.DivideNode, and returns a
// lookup from original node id to its ordered replacement pieces.
func (e *Engine) materializeBreakpoints(breakpoints map[graph.NodeID][]int) (map[graph.NodeID][]piece, error) {
	result := make(map[graph.NodeID][]piece, len(breakpoints))
	ids := make([]graph.NodeID, 0, len(breakpoints))
	for id := range breakpoints {
		ids = append(ids, id)
	}
	psort.StableSort(nodeIDSorter(ids))

	for _, id := range ids {
		offsets := breakpoints[id]
		if len(offsets) == 0 {
			continue
		}
		pieceIDs, err := e.Store.DivideNode(id, offsets)
		if err != nil {
			return nil, err
		}
		bounds := append([]int{0}, offsets...)
		pieces := make([]piece, len(pieceIDs))
		for i, pid := range pieceIDs {
			pieces[i] = piece{node: pid, origStart: bounds[i]}
		}
		result[id] = pieces
	}
	return result, nil
}

// locatePiece resolves an original (id, forward offset) position to
// the (possibly unchanged) node and local offset that now contains
// it.
func locatePiece(s *graph.Store, pieceOf map[graph.NodeID][]piece, id graph.NodeID, offset int) (graph.NodeID, int) {
	pieces, ok := pieceOf[id]
	if !ok {
		return id, offset
	}
	for i := len(pieces) - 1; i >= 0; i-- {
		if offset >= pieces[i].origStart {
			return pieces[i].node, offset - pieces[i].origStart
		}
	}
	return pieces[0].node, offset
}

// walkInput constructs the dangling-side walk for one input,
// splicing insertion/substitution runs and existing-node matches in
// sequence, and optionally embeds it as a new path.
func (e *Engine) walkInput(in Input, pieceOf map[graph.NodeID][]piece) ([]Translation, error) {
	var dangling []graph.Side
	var walk []graph.Traversal
	var translations []Translation

	for _, m := range in.Mappings {
		id := m.Pos.Node
		length := e.Store.GetLength(id)
		fwdStart := m.Pos.Offset
		if m.Pos.Reverse {
			fwdStart = length - m.Pos.Offset - m.FromLength()
		}
		pos := fwdStart

		for _, ed := range m.Edits {
			switch {
			case ed.IsMatch():
				startNode, startOff := locatePiece(e.Store, pieceOf, id, pos)
				t := graph.Traversal{Node: startNode, Reverse: m.Pos.Reverse}
				dangling = e.attach(dangling, t)
				walk = append(walk, t)
				translations = append(translations, Translation{OriginalNode: id, Offset: pos, NewNode: startNode, NewOffset: startOff})
				pos += ed.FromLength
			case ed.IsDeletion():
				pos += ed.FromLength
			default: // insertion or substitution: carries novel sequence
				entry := graph.Position{Node: id, Offset: pos, Reverse: m.Pos.Reverse}
				nodes, err := e.materializeInsertion(entry, ed.Sequence)
				if err != nil {
					return nil, err
				}
				for _, n := range nodes {
					t := graph.Traversal{Node: n}
					dangling = e.attach(dangling, t)
					walk = append(walk, t)
				}
				pos += ed.FromLength
			}
		}
	}

	if in.Name != "" {
		for _, t := range walk {
			length := e.Store.GetLength(t.Node)
			e.Store.Paths().AppendMapping(in.Name, &graph.Mapping{
				Pos:   graph.Position{Node: t.Node, Reverse: t.Reverse},
				Edits: []graph.Edit{{FromLength: length, ToLength: length}},
			})
		}
	}

	return translations, nil
}

// attach connects every currently dangling side to t's entry side,
// then returns the new dangling set containing only t's exit side.
func (e *Engine) attach(dangling []graph.Side, t graph.Traversal) []graph.Side {
	for _, d := range dangling {
		_, _ = e.Store.CreateEdge(d, t.Left())
	}
	return []graph.Side{t.Right()}
}

// materializeInsertion returns the node ids of the run carrying seq
// at the given entry position, creating and caching a fresh run
// chopped to at most ChunkLength bases per node if this exact
// (entry, sequence) pair hasn't been inserted before.
func (e *Engine) materializeInsertion(entry graph.Position, seq string) ([]graph.NodeID, error) {
	key := utils.Intern(insertionCacheKey(entry, seq))
	if cached, ok := e.insertionCache.Get(key); ok {
		return cached.([]graph.NodeID), nil
	}

	chunk := e.ChunkLength
	if chunk <= 0 {
		chunk = len(seq)
		if chunk == 0 {
			chunk = 1
		}
	}
	var nodes []graph.NodeID
	for i := 0; i < len(seq); i += chunk {
		end := i + chunk
		if end > len(seq) {
			end = len(seq)
		}
		id, err := e.Store.CreateNode(seq[i:end])
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, id)
	}
	for i := 0; i+1 < len(nodes); i++ {
		if _, err := e.Store.CreateEdge(graph.Side{Node: nodes[i], End: graph.End}, graph.Side{Node: nodes[i+1], End: graph.Start}); err != nil {
			return nil, err
		}
	}
	e.insertionCache.Set(key, nodes)
	return nodes, nil
}

func insertionCacheKey(entry graph.Position, seq string) string {
	b := internal.ReserveByteBuffer()
	for shift := 56; shift >= 0; shift -= 8 {
		b = append(b, byte(entry.Node>>uint(shift)))
	}
	for shift := 24; shift >= 0; shift -= 8 {
		b = append(b, byte(entry.Offset>>uint(shift)))
	}
	if entry.Reverse {
		b = append(b, 1)
	} else {
		b = append(b, 0)
	}
	b = append(b, seq...)
	key := string(b)
	internal.ReleaseByteBuffer(b)
	return key
}
