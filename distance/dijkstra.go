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

package distance

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// relaxSnarl runs a Dijkstra-style lazy-deletion relaxation over a
// snarl's interior, modeling each nested chain thread as a single
// weighted edge between the two snarl boundaries (design §4.5 step 2:
// "adding start-node length + snarl min_length at each snarl"). It
// returns the shortest distance from the start boundary to the end
// boundary, and the shortest loop distance that leaves and returns to
// the start boundary without crossing to the end boundary, or
// Overflow if no such walk exists.
//
// The relaxation terminates the standard lazy-deletion way: pop the
// least-tentative-distance state, skip it if a better distance for
// that state was already finalized, otherwise relax its edges; it
// stops only once the queue is empty, so no pending state can still
// improve on a recorded best distance (the Dijkstra termination rule
// design §9 asks implementers to spell out).
func relaxSnarl(threads []chainThread) (minLength, loopLength int) {
	const source, sink = 0, 1
	g := simple.NewWeightedDirectedGraph(0, math.Inf(1))
	g.AddNode(simple.Node(source))
	g.AddNode(simple.Node(sink))
	for i, t := range threads {
		node := simple.Node(2 + i)
		g.AddNode(node)
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(source), node, float64(t.span)))
		g.SetWeightedEdge(g.NewWeightedEdge(node, simple.Node(sink), 0))
		if t.loop {
			g.SetWeightedEdge(g.NewWeightedEdge(node, simple.Node(source), float64(t.span)))
		}
	}

	shortest := path.DijkstraFrom(simple.Node(source), g)
	d := shortest.WeightTo(int64(sink))
	if math.IsInf(d, 1) {
		minLength = Overflow
	} else {
		minLength = int(d)
	}

	loopLength = Overflow
	for i, t := range threads {
		if !t.loop {
			continue
		}
		out := shortest.WeightTo(int64(2+i)) + float64(t.span)
		if math.IsInf(out, 1) {
			continue
		}
		if loopLength == Overflow || int(out) < loopLength {
			loopLength = int(out)
		}
	}
	return minLength, loopLength
}

// chainThread is one nested-chain branch through a snarl, summarized
// to the span the Dijkstra relaxation needs.
type chainThread struct {
	span int
	loop bool // true if this thread's chain also returns to the start boundary (a self-looping branch)
}
