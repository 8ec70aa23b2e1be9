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

// This file holds the path-rewriting hooks that Store's structural
// edits (DivideNode, ConcatNodes, ApplyOrientation) call into, kept
// separate from the public Paths API in paths.go.

// divideMappingsOnNode splits every mapping on oldID at the given
// offsets (strictly increasing, in (0, length)) and reassigns each
// resulting piece to the corresponding new node, per design §4.1.
// Reverse mappings get their offsets mirrored from the right, since a
// reverse mapping's Offset is measured in the traversal's local
// (reverse) strand while the split offsets are given on the forward
// strand of the original node.
func (p *Paths) divideMappingsOnNode(oldID NodeID, offsets []int, pieceIDs []NodeID, pieceLens []int) {
	p.mu.Lock()
	mappings := append([]*Mapping(nil), p.byNode[oldID]...)
	p.mu.Unlock()

	bounds := make([]int, 0, len(offsets)+2)
	bounds = append(bounds, 0)
	bounds = append(bounds, offsets...)
	total := 0
	for _, l := range pieceLens {
		total += l
	}
	bounds = append(bounds, total)

	for _, m := range mappings {
		pieces := p.splitMappingAcrossPieces(m, bounds, pieceIDs, pieceLens)
		p.spliceMappingPieces(m, pieces)
	}
}

// splitMappingAcrossPieces computes the new mapping for each piece
// the mapping m overlaps, in traversal order (forward: piece order;
// reverse: reverse piece order, since the mapping's local offset
// increases against the forward node layout).
func (p *Paths) splitMappingAcrossPieces(m *Mapping, bounds []int, pieceIDs []NodeID, pieceLens []int) []*Mapping {
	// translate m's local (possibly reverse) offset/edits to forward
	// coordinates on the original node so pieces can be matched by
	// forward offset ranges.
	fwdStart := m.Pos.Offset
	totalLen := bounds[len(bounds)-1]
	if m.Pos.Reverse {
		fwdStart = totalLen - m.Pos.Offset - m.FromLength()
	}
	fwdEnd := fwdStart + m.FromLength()

	var pieces []*Mapping
	for i := 0; i < len(pieceIDs); i++ {
		lo, hi := bounds[i], bounds[i+1]
		overlapLo := max(lo, fwdStart)
		overlapHi := min(hi, fwdEnd)
		if overlapLo >= overlapHi {
			continue
		}
		localOffset := overlapLo - lo
		if m.Pos.Reverse {
			localOffset = pieceLens[i] - (overlapHi - lo)
		}
		piece := &Mapping{
			Pos:  Position{Node: pieceIDs[i], Offset: localOffset, Reverse: m.Pos.Reverse},
			path: m.path,
			Rank: m.Rank,
		}
		piece.Edits = extractEdits(m, overlapLo-fwdStart, overlapHi-fwdStart)
		pieces = append(pieces, piece)
	}
	if m.Pos.Reverse {
		// reverse mapping visits pieces in reverse forward-order.
		for i, j := 0, len(pieces)-1; i < j; i, j = i+1, j-1 {
			pieces[i], pieces[j] = pieces[j], pieces[i]
		}
	}
	return pieces
}

// extractEdits returns the sub-slice of m's edits covering the
// from-length range [from, to) measured from the start of m.
func extractEdits(m *Mapping, from, to int) []Edit {
	var result []Edit
	pos := 0
	for _, e := range m.Edits {
		eStart, eEnd := pos, pos+e.FromLength
		pos = eEnd
		lo, hi := max(from, eStart), min(to, eEnd)
		if lo >= hi {
			if e.FromLength == 0 && eStart >= from && eStart < to {
				result = append(result, e) // pure insertion at this offset
			}
			continue
		}
		if lo == eStart && hi == eEnd {
			result = append(result, e)
			continue
		}
		frac0 := float64(lo-eStart) / float64(max(e.FromLength, 1))
		frac1 := float64(hi-eStart) / float64(max(e.FromLength, 1))
		toLo := int(float64(e.ToLength) * frac0)
		toHi := int(float64(e.ToLength) * frac1)
		result = append(result, Edit{FromLength: hi - lo, ToLength: toHi - toLo, Sequence: sliceSeq(e.Sequence, toLo, toHi)})
	}
	return result
}

func (p *Paths) spliceMappingPieces(old *Mapping, pieces []*Mapping) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if old.path != "" {
		path := p.byName[old.path]
		for i, v := range path.Mappings {
			if v == old {
				replacement := append([]*Mapping{}, path.Mappings[:i]...)
				replacement = append(replacement, pieces...)
				replacement = append(replacement, path.Mappings[i+1:]...)
				path.Mappings = replacement
				break
			}
		}
	}
	p.unindexMapping(old)
	for _, piece := range pieces {
		p.indexMapping(piece)
	}
}

// mergeMappingsForRun collapses, for every path visiting the run,
// the consecutive mappings covering the run into a single mapping on
// newID with one match edit spanning the whole run, per ConcatNodes.
func (p *Paths) mergeMappingsForRun(run []Traversal, newID NodeID, totalLen int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(run) == 0 {
		return
	}
	byPath := make(map[string][]*Mapping)
	for _, t := range run {
		for _, m := range p.byNode[t.Node] {
			byPath[m.path] = append(byPath[m.path], m)
		}
	}
	for name, mappings := range byPath {
		path := p.byName[name]
		if path == nil || len(mappings) == 0 {
			continue
		}
		minRank := mappings[0].Rank
		for _, m := range mappings[1:] {
			if m.Rank < minRank {
				minRank = m.Rank
			}
		}
		reverse := mappings[0].Pos.Reverse
		merged := &Mapping{
			Pos:   Position{Node: newID, Offset: 0, Reverse: reverse},
			Edits: []Edit{{FromLength: totalLen, ToLength: totalLen}},
			path:  name,
			Rank:  minRank,
		}
		var newMappings []*Mapping
		inserted := false
		for _, m := range path.Mappings {
			if mapSliceContains(mappings, m) {
				if !inserted {
					newMappings = append(newMappings, merged)
					inserted = true
				}
				p.unindexMapping(m)
				continue
			}
			newMappings = append(newMappings, m)
		}
		path.Mappings = newMappings
		p.indexMapping(merged)
	}
}

func mapSliceContains(haystack []*Mapping, needle *Mapping) bool {
	for _, m := range haystack {
		if m == needle {
			return true
		}
	}
	return false
}

// flipMappingsForOrientation rewrites every mapping referencing
// oldID so that it references newID instead, toggling Reverse and
// mirroring the local offset and edit order, since the node's
// forward strand is now the old reverse strand.
func (p *Paths) flipMappingsForOrientation(oldID, newID NodeID, newLength int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	mappings := p.byNode[oldID]
	delete(p.byNode, oldID)
	for _, m := range mappings {
		covered := m.FromLength()
		m.Pos.Node = newID
		m.Pos.Reverse = !m.Pos.Reverse
		m.Pos.Offset = newLength - m.Pos.Offset - covered
		for i, j := 0, len(m.Edits)-1; i < j; i, j = i+1, j-1 {
			m.Edits[i], m.Edits[j] = m.Edits[j], m.Edits[i]
		}
		p.indexMapping(m)
	}
}
