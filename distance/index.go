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
	"github.com/exascience/pargo/parallel"

	"github.com/exascience/pangraph/graph"
)

// childRef is a chain's ordered-children entry once serialized: a
// node (leaf) or a nested snarl, referred to by index into Index's
// flat node/snarl slices.
type childRef struct {
	isSnarl bool
	idx     int
}

type chainRecord struct {
	parentSnarl int // -1 if top-level
	children    []childRef
	start, end  graph.Traversal

	prefixSum     []int // per child, cumulative from-start length
	backwardLoops []int // per child, shortest loop back toward start
	forwardLoops  []int // per child, shortest loop back toward end
	minLength     int
	maxLength     int
}

type snarlRecord struct {
	parentChain          int
	start, end           graph.Traversal
	children             []int // chain indices nested directly inside
	oversized            bool
	distances            map[[2]graph.Side]int
	loopDistances        map[graph.Side]int
	minLength, maxLength int
	trivial              bool
}

type nodeRecord struct {
	traversal    graph.Traversal
	length       int
	rankInParent int
	parentChain  int
}

// Index is the built, queryable distance index.
type Index struct {
	rootChildren []int // top-level chain indices, one per connected component
	chains       []*chainRecord
	snarls       []*snarlRecord
	nodes        []*nodeRecord

	totalNodeCount int
	minNodeID      graph.NodeID

	// oversizedThreshold is the node-count cutoff past which a snarl
	// is tagged oversized and skips pairwise-matrix population,
	// per the oversized-snarl open question decision.
	oversizedThreshold int
}

// Build runs the two-pass construction described in design §4.5:
// a first pass (via Finder) fills a temporary tree with structural
// data, a second pass populates chain prefix sums/loops and per-snarl
// boundary distances bottom-up, and a serialization pass packs the
// result into this Index. oversizedThreshold bounds how large a
// snarl's node count may be before it is tagged oversized and its
// pairwise matrix is skipped.
func Build(g GraphAccessor, f Finder, oversizedThreshold int) (*Index, error) {
	tree := buildTemporaryTree(g, f)

	idx := &Index{oversizedThreshold: oversizedThreshold}
	idx.chains = make([]*chainRecord, len(tree.chains))
	idx.snarls = make([]*snarlRecord, len(tree.snarls))

	// serialize nodes and skeletal chain/snarl records first so every
	// cross-reference resolves, then fill in distances bottom-up.
	for i, c := range tree.chains {
		idx.chains[i] = &chainRecord{parentSnarl: c.parentSnarl, start: c.start, end: c.end}
	}
	for i, s := range tree.snarls {
		nodeCount := 0
		for _, childIdx := range s.children {
			nodeCount += len(tree.chains[childIdx].children)
		}
		idx.snarls[i] = &snarlRecord{
			parentChain: s.parentChain,
			start:       s.start,
			end:         s.end,
			children:    append([]int(nil), s.children...),
			trivial:     s.trivial,
			oversized:   nodeCount > oversizedThreshold,
		}
	}
	for i, c := range tree.chains {
		for _, child := range c.children {
			if child.isSnarl {
				idx.chains[i].children = append(idx.chains[i].children, childRef{isSnarl: true, idx: child.snarl})
			} else {
				idx.nodes = append(idx.nodes, &nodeRecord{
					traversal:    child.node.traversal,
					length:       child.node.length,
					rankInParent: len(idx.chains[i].children),
					parentChain:  i,
				})
				idx.chains[i].children = append(idx.chains[i].children, childRef{isSnarl: false, idx: len(idx.nodes) - 1})
				idx.totalNodeCount++
			}
		}
	}
	for _, child := range tree.root.children {
		for i, c := range tree.chains {
			if c.start == child.node.traversal {
				idx.rootChildren = append(idx.rootChildren, i)
				break
			}
		}
	}
	for _, n := range idx.nodes {
		if idx.minNodeID == 0 || n.traversal.Node < idx.minNodeID {
			idx.minNodeID = n.traversal.Node
		}
	}

	// bottom-up, following the actual nesting rather than a flat index
	// pass: a chain's prefix sums depend on the minLength of every
	// snarl threaded through it, and a snarl's minLength depends on
	// the prefix sums of every chain branching through it, so the two
	// passes have to interleave by depth (design §4.5 step 2). Sibling
	// subtrees - the chains of different connected components, and the
	// branch chains of one snarl - don't share state, so they fan out
	// over parallel.Range.
	filled := make([]bool, len(idx.chains))
	fillRoots := func(low, high int) {
		for k := low; k < high; k++ {
			idx.fillChainBottomUp(idx.rootChildren[k], filled)
		}
	}
	if len(idx.rootChildren) > 1 {
		parallel.Range(0, len(idx.rootChildren), 0, fillRoots)
	} else {
		fillRoots(0, len(idx.rootChildren))
	}
	for i := range idx.chains {
		if !filled[i] {
			idx.fillChainBottomUp(i, filled)
		}
	}

	return idx, nil
}

// fillChainBottomUp fills every snarl nested inside chain i, then the
// chain itself, so fillChainDistances always sees fully populated
// child snarlRecords.
func (idx *Index) fillChainBottomUp(i int, filled []bool) {
	if filled[i] {
		return
	}
	filled[i] = true
	var nested []int
	for _, child := range idx.chains[i].children {
		if child.isSnarl {
			nested = append(nested, child.idx)
		}
	}
	fillNested := func(low, high int) {
		for k := low; k < high; k++ {
			idx.fillSnarlBottomUp(nested[k], filled)
		}
	}
	if len(nested) > 1 {
		parallel.Range(0, len(nested), 0, fillNested)
	} else {
		fillNested(0, len(nested))
	}
	idx.fillChainDistances(i)
}

// fillSnarlBottomUp fills every branch chain of snarl i, then the
// snarl itself, so fillSnarlDistances always sees fully populated
// child chainRecord.prefixSum slices.
func (idx *Index) fillSnarlBottomUp(i int, filled []bool) {
	children := idx.snarls[i].children
	fillBranches := func(low, high int) {
		for k := low; k < high; k++ {
			idx.fillChainBottomUp(children[k], filled)
		}
	}
	if len(children) > 1 {
		parallel.Range(0, len(children), 0, fillBranches)
	} else {
		fillBranches(0, len(children))
	}
	idx.fillSnarlDistances(i)
}

func (idx *Index) fillSnarlDistances(i int) {
	s := idx.snarls[i]
	if s.oversized {
		return
	}
	threads := make([]chainThread, len(s.children))
	for j, chainIdx := range s.children {
		c := idx.chains[chainIdx]
		// a branch chain's last child is the snarl's own end boundary
		// (NaiveFinder walks every branch all the way to the
		// reconvergence node), which the enclosing chain already
		// counts once on its own; excluding it here avoids counting
		// that boundary's length twice.
		span := c.maxLength
		if n := len(c.children); n > 0 {
			span = c.prefixSum[n-1]
		}
		threads[j] = chainThread{span: span, loop: c.start == c.end}
	}
	minLen, loopLen := relaxSnarl(threads)
	s.minLength, s.maxLength = minLen, minLen

	s.distances = map[[2]graph.Side]int{{s.start.Right(), s.end.Left()}: minLen}
	if loopLen != Overflow {
		s.loopDistances = map[graph.Side]int{s.start.Right(): loopLen}
	}
}

func (idx *Index) fillChainDistances(i int) {
	c := idx.chains[i]
	sum := 0
	c.prefixSum = make([]int, len(c.children)+1)
	for j, child := range c.children {
		c.prefixSum[j] = sum
		if child.isSnarl {
			sum += idx.snarls[child.idx].minLength
		} else {
			sum += idx.nodes[child.idx].length
		}
	}
	c.prefixSum[len(c.children)] = sum
	c.minLength, c.maxLength = sum, sum

	c.backwardLoops = make([]int, len(c.children))
	c.forwardLoops = make([]int, len(c.children))
	for j, child := range c.children {
		if child.isSnarl {
			if loops := idx.snarls[child.idx].loopDistances; loops != nil {
				for _, d := range loops {
					c.backwardLoops[j] = d
					c.forwardLoops[j] = d
				}
			}
		}
	}
}

// Root returns the handle for the virtual root of the tree.
func (idx *Index) Root() Handle { return Handle{Kind: KindRoot} }

// IsRoot, IsChain, IsSnarl, IsNode, IsSentinel classify a handle.
func (idx *Index) IsRoot(h Handle) bool     { return h.Kind == KindRoot }
func (idx *Index) IsChain(h Handle) bool    { return h.Kind == KindChain }
func (idx *Index) IsSnarl(h Handle) bool    { return h.Kind == KindSnarl }
func (idx *Index) IsNode(h Handle) bool     { return h.Kind == KindNode }
func (idx *Index) IsSentinel(h Handle) bool { return h.Kind == KindSentinel }

// Parent returns the handle of h's parent record in the tree.
func (idx *Index) Parent(h Handle) Handle {
	switch h.Kind {
	case KindChain:
		parentSnarl := idx.chains[h.Offset].parentSnarl
		if parentSnarl < 0 {
			return idx.Root()
		}
		return Handle{Kind: KindSnarl, Offset: uint64(parentSnarl)}
	case KindSnarl:
		return Handle{Kind: KindChain, Offset: uint64(idx.snarls[h.Offset].parentChain)}
	case KindNode:
		return Handle{Kind: KindChain, Offset: uint64(idx.nodes[h.Offset].parentChain)}
	default:
		return idx.Root()
	}
}

// Children visits h's children in order; the visitor may return false
// to stop early.
func (idx *Index) Children(h Handle, visitor func(Handle) bool) {
	switch h.Kind {
	case KindRoot:
		for _, c := range idx.rootChildren {
			if !visitor(Handle{Kind: KindChain, Offset: uint64(c)}) {
				return
			}
		}
	case KindChain:
		for _, child := range idx.chains[h.Offset].children {
			var next Handle
			if child.isSnarl {
				next = Handle{Kind: KindSnarl, Offset: uint64(child.idx)}
			} else {
				next = Handle{Kind: KindNode, Offset: uint64(child.idx)}
			}
			if !visitor(next) {
				return
			}
		}
	case KindSnarl:
		for _, c := range idx.snarls[h.Offset].children {
			if !visitor(Handle{Kind: KindChain, Offset: uint64(c)}) {
				return
			}
		}
	}
}

// Bound returns the traversal of the snarl's requested boundary node,
// oriented to face into (faceIn=true) or out of (faceIn=false) the
// snarl interior.
func (idx *Index) Bound(h Handle, end End, faceIn bool) graph.Traversal {
	s := idx.snarls[h.Offset]
	t := s.start
	if end == AtEnd {
		t = s.end
	}
	if !faceIn {
		return t.Flipped()
	}
	return t
}

// Flip returns the handle entered/exited the opposite way.
func (idx *Index) Flip(h Handle) Handle {
	h.Connectivity.In, h.Connectivity.Out = h.Connectivity.Out, h.Connectivity.In
	return h
}

// Canonical returns the lexicographically smaller of h and Flip(h),
// comparing by (in, out) end tags.
func (idx *Index) Canonical(h Handle) Handle {
	flipped := idx.Flip(h)
	if flipped.Connectivity.In < h.Connectivity.In ||
		(flipped.Connectivity.In == h.Connectivity.In && flipped.Connectivity.Out < h.Connectivity.Out) {
		return flipped
	}
	return h
}

// StartsAt and EndsAt report how h was entered/will be exited.
func (idx *Index) StartsAt(h Handle) End { return h.Connectivity.In }
func (idx *Index) EndsAt(h Handle) End   { return h.Connectivity.Out }

// FollowNetEdges moves through the snarl tree along the underlying
// graph: from a node handle, it enumerates the real graph edges on
// the appropriate side and reports, for each, the node handle of the
// first node record with the neighbor's id. Handles of any other kind
// are ignored, and snarl or chain handles are never reported.
func (idx *Index) FollowNetEdges(h Handle, g GraphAccessor, goLeft bool, visitor func(Handle) bool) {
	if h.Kind != KindNode {
		return
	}
	t := idx.nodes[h.Offset].traversal
	g.FollowEdges(t, goLeft, func(next graph.Traversal) bool {
		for i, n := range idx.nodes {
			if n.traversal.Node == next.Node {
				return visitor(Handle{Kind: KindNode, Offset: uint64(i)})
			}
		}
		return true
	})
}

// ParentTraversal returns the traversal at which start sits in its
// parent chain: a node handle's own traversal, or a snarl handle's
// start boundary. end is not consulted.
func (idx *Index) ParentTraversal(start, end Handle) graph.Traversal {
	if start.Kind == KindNode {
		return idx.nodes[start.Offset].traversal
	}
	return idx.snarls[start.Offset].start
}

// MinDistance computes the oriented walk length between two
// positions from chain prefix sums and snarl boundary distances. It
// handles two cases only: both positions on the same chain, or on two
// chains directly under the same snarl. It does not climb further
// toward a lowest common ancestor; every other pair of positions
// returns Overflow. Offset is interpreted in each
// position's own local strand (spec §3): a.Reverse/b.Reverse flips
// which end of the node the offset is measured from before it is
// combined with the chain's forward prefix sum. It returns Overflow
// if no finite walk is known (different components, or a route
// through an oversized snarl — use FollowNetEdges in that case).
func (idx *Index) MinDistance(a, b graph.Position) int {
	chainA, rankA, ok := idx.locate(a.Node)
	if !ok {
		return Overflow
	}
	chainB, rankB, ok := idx.locate(b.Node)
	if !ok {
		return Overflow
	}
	lenA := idx.nodeLengthAt(chainA, rankA)
	lenB := idx.nodeLengthAt(chainB, rankB)
	offA := forwardOffset(a, lenA)
	offB := forwardOffset(b, lenB)

	if chainA != chainB {
		// climbing beyond the immediate chain requires walking through
		// enclosing snarls; this index climbs one level, matching the
		// common "sibling chains in the same snarl" case exercised by
		// the simple-bubble decompositions NaiveFinder produces.
		ca, cb := idx.chains[chainA], idx.chains[chainB]
		if ca.parentSnarl != cb.parentSnarl || ca.parentSnarl < 0 {
			return Overflow
		}
		snarl := idx.snarls[ca.parentSnarl]
		if snarl.oversized {
			return Overflow
		}
		d, ok := snarl.distances[[2]graph.Side{snarl.start.Right(), snarl.end.Left()}]
		if !ok {
			return Overflow
		}
		// left: remaining span from a's own forward position out to the
		// end of chain A; right: span from the start of chain B up to
		// b's own forward position.
		left := ca.maxLength - ca.prefixSum[rankA] - offA
		right := cb.prefixSum[rankB] + offB
		return left + d + right
	}

	c := idx.chains[chainA]
	coordA := c.prefixSum[rankA] + offA
	coordB := c.prefixSum[rankB] + offB
	d := coordB - coordA
	if d < 0 {
		d = -d
	}
	return d
}

// forwardOffset converts a position's locally-strand-relative offset
// into a coordinate measured forward from the node's Start side, the
// orientation every chain's prefix sum is expressed in.
func forwardOffset(p graph.Position, nodeLength int) int {
	if p.Reverse {
		return nodeLength - p.Offset
	}
	return p.Offset
}

func (idx *Index) nodeLengthAt(chain int, rank int) int {
	child := idx.chains[chain].children[rank]
	if child.isSnarl {
		return idx.snarls[child.idx].minLength
	}
	return idx.nodes[child.idx].length
}

func (idx *Index) locate(id graph.NodeID) (chain, rank int, ok bool) {
	for _, n := range idx.nodes {
		if n.traversal.Node == id {
			return n.parentChain, n.rankInParent, true
		}
	}
	return 0, 0, false
}
