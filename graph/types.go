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

// Package graph implements the bidirected sequence graph that is the
// substrate of the rest of this module: nodes carrying DNA sequence,
// edges attaching to chosen sides of nodes, and named paths of oriented
// mappings that are kept consistent across every structural edit.
package graph

import "strings"

// NodeID uniquely identifies a node. Valid ids start at 1; 0 is never
// a valid node id and is used as a sentinel.
type NodeID uint64

// SideEnd names one of the two sides of a node.
type SideEnd int8

const (
	Start SideEnd = iota
	End
)

func (e SideEnd) String() string {
	if e == Start {
		return "start"
	}
	return "end"
}

// Opposite returns the other side of the same node.
func (e SideEnd) Opposite() SideEnd {
	if e == Start {
		return End
	}
	return Start
}

// Side is one endpoint of a node: (node, start-or-end).
type Side struct {
	Node NodeID
	End  SideEnd
}

// Less reports whether s sorts before o. An edge's canonical
// representative is the lexicographically smaller of its two sides.
func (s Side) Less(o Side) bool {
	if s.Node != o.Node {
		return s.Node < o.Node
	}
	return s.End < o.End
}

// Traversal is a node together with a reading direction: forward reads
// start->end (the stored sequence), reverse reads end->start (its
// reverse complement).
type Traversal struct {
	Node    NodeID
	Reverse bool
}

// Left returns the side a walk enters this traversal through.
func (t Traversal) Left() Side {
	if t.Reverse {
		return Side{t.Node, End}
	}
	return Side{t.Node, Start}
}

// Right returns the side a walk exits this traversal through.
func (t Traversal) Right() Side {
	if t.Reverse {
		return Side{t.Node, Start}
	}
	return Side{t.Node, End}
}

// Flipped returns the traversal of the same node read in the opposite
// direction.
func (t Traversal) Flipped() Traversal {
	return Traversal{t.Node, !t.Reverse}
}

// Position is a point on a traversal's local strand: an offset into
// the sequence as read in that orientation.
type Position struct {
	Node    NodeID
	Offset  int
	Reverse bool
}

// Traversal returns the traversal this position is located on.
func (p Position) Traversal() Traversal {
	return Traversal{p.Node, p.Reverse}
}

// Edit is one quantum of a Mapping: match/substitute/insert/delete,
// expressed as how many reference bases and how many path bases it
// consumes, plus the literal inserted sequence when ToLength doesn't
// come from the reference.
type Edit struct {
	FromLength int
	ToLength   int
	Sequence   string // non-empty only for insertions/substitutions
}

// IsMatch reports whether this is a perfect match edit: equal lengths,
// no inserted sequence.
func (e Edit) IsMatch() bool {
	return e.FromLength == e.ToLength && e.Sequence == ""
}

// IsInsertion reports whether this edit consumes no reference bases.
func (e Edit) IsInsertion() bool {
	return e.FromLength == 0 && e.ToLength > 0
}

// IsDeletion reports whether this edit produces no path bases.
func (e Edit) IsDeletion() bool {
	return e.ToLength == 0 && e.FromLength > 0
}

// Mapping is one path element: a position on a traversal plus the
// ordered edits describing how the path relates to the node sequence
// there.
type Mapping struct {
	Pos   Position
	Edits []Edit

	// Rank orders this mapping within its owning path. AppendMapping
	// extends the ranks by one, but InsertMapping and DivideMapping
	// (which give two mappings the same rank), RemoveMapping, and the
	// node edits that remove or split mappings may leave ranks
	// non-contiguous or repeated until CompactRanks is called, matching
	// the "after compaction" invariant in the design.
	Rank int

	path string // name of the owning path; empty if detached
}

// Path returns the name of the path this mapping currently belongs
// to, or "" if it has been removed from its path.
func (m *Mapping) Path() string { return m.path }

// FromLength returns the number of reference bases this mapping
// covers.
func (m *Mapping) FromLength() int {
	total := 0
	for _, e := range m.Edits {
		total += e.FromLength
	}
	return total
}

// ToLength returns the number of path bases this mapping covers.
func (m *Mapping) ToLength() int {
	total := 0
	for _, e := range m.Edits {
		total += e.ToLength
	}
	return total
}

// IsPerfectMatch reports whether this mapping is a single full-length
// match edit, the shape required to participate in a perfect-path-
// neighbor run (see ConcatNodes).
func (m *Mapping) IsPerfectMatch(nodeLength int) bool {
	return len(m.Edits) == 1 && m.Edits[0].IsMatch() && m.Pos.Offset == 0 && m.Edits[0].FromLength == nodeLength
}

func simplifyEdits(edits []Edit) []Edit {
	if len(edits) == 0 {
		return edits
	}
	result := edits[:0:0]
	cur := edits[0]
	for _, e := range edits[1:] {
		if cur.IsMatch() && e.IsMatch() {
			cur.FromLength += e.FromLength
			cur.ToLength += e.ToLength
			continue
		}
		result = append(result, cur)
		cur = e
	}
	return append(result, cur)
}

// Simplify merges adjacent match edits in place, the first step of
// the edit engine's simplify pass (also useful on its own).
func (m *Mapping) Simplify() {
	m.Edits = simplifyEdits(m.Edits)
}

func (m *Mapping) String() string {
	var b strings.Builder
	for _, e := range m.Edits {
		switch {
		case e.IsMatch():
			b.WriteString("M")
		case e.IsInsertion():
			b.WriteString("I")
		case e.IsDeletion():
			b.WriteString("D")
		default:
			b.WriteString("X")
		}
	}
	return b.String()
}
