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

// Edge is an unordered pair of sides, canonically represented by the
// lexicographically smaller of the two. Overlap is only meaningful
// for assembly-style overlap graphs (see algo.Bluntify); HasOverlap
// is false for ordinary variation-graph edges.
type Edge struct {
	A, B       Side
	Overlap    int
	HasOverlap bool
}

// canonicalize returns the two sides in canonical order (a <= b).
func canonicalize(a, b Side) (Side, Side) {
	if b.Less(a) {
		return b, a
	}
	return a, b
}

// Other returns the side of e that isn't s. It does not panic: if s is
// not e.A it returns e.A, so a caller can compare the result against
// an expected side to test whether a side pair is this edge.
func (e *Edge) Other(s Side) Side {
	if e.A == s {
		return e.B
	}
	return e.A
}
