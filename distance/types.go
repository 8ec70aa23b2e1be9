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

// Package distance builds and serves the hierarchical snarl/chain
// distance index over a graph.Store: a two-pass builder consumes a
// decomposition traversal into a temporary tree (decomposition.go),
// which a serialization pass copies into Index (index.go). Index
// keeps one typed slice per record kind (chains, snarls, nodes)
// rather than a single packed integer vector, with per-snarl boundary
// distances computed by a bounded Dijkstra relaxation (dijkstra.go).
package distance

import "github.com/exascience/pangraph/internal"

// Kind tags what a record offset refers to.
type Kind uint8

const (
	KindRoot Kind = iota
	KindChain
	KindSnarl
	KindNode
	KindSentinel
)

// End names one of the two ends a handle can be entered or exited
// through, or Tip for a traversal that dead-ends without crossing an
// edge (a degree-0 side).
type End uint8

const (
	AtStart End = iota
	AtEnd
	AtTip
)

// Connectivity records how a handle was entered and how it will be
// exited: one of the 9 {start,end,tip}×{start,end,tip} combinations.
type Connectivity struct {
	In, Out End
}

// Handle identifies a position in the distance index: an index into
// the Index slice selected by Kind, plus the connectivity the handle
// was produced with.
type Handle struct {
	Offset       uint64
	Connectivity Connectivity
	Kind         Kind
}

// Overflow is returned by MinDistance when the two positions have no
// finite distance within the index (different connected components,
// or a path that would have to leave an oversized snarl on a route
// this index doesn't precompute).
const Overflow = -1

// ErrOversized names the condition of a snarl tagged oversized: such
// snarls never populate the pairwise distance matrix, and callers
// must fall back to an on-the-fly FollowNetEdges traversal. No
// function in this package returns it; MinDistance reports a route
// through an oversized snarl as Overflow.
var ErrOversized = internal.New(internal.Unsupported, "distance", "snarl is oversized; use FollowNetEdges")
