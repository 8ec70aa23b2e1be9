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

import "github.com/exascience/pangraph/graph"

// GraphAccessor is the minimal read interface the decomposition
// builder and the Dijkstra relaxation need from the underlying graph,
// matching design §6's graph-accessor external interface.
type GraphAccessor interface {
	GetLength(id graph.NodeID) int
	FollowEdges(t graph.Traversal, goLeft bool, visitor func(graph.Traversal) bool)
}

// Finder is the external snarl-finding capability: it drives a
// traversal of the graph's bubble/chain structure, invoking the four
// callbacks in the nesting order design §4.4 describes. This package
// only consumes that traversal; producing it is a separate concern
// left to a Finder implementation (NaiveFinder provides a Store-
// driven one for simple, already-acyclic working graphs).
type Finder interface {
	Traverse(onChainStart, onChainEnd func(boundary graph.Traversal), onSnarlStart, onSnarlEnd func(boundary graph.Traversal))
}

// tChainChild is one entry of a chain's ordered child list: either a
// node entry (a boundary or a snarl's sealed boundary) or a pointer
// to a nested snarl.
type tChainChild struct {
	isSnarl bool
	node    tNode
	snarl   int // index into temporaryTree.snarls, valid when isSnarl
}

type tNode struct {
	traversal graph.Traversal
	length    int
}

type tChain struct {
	parentSnarl int // index into snarls, or -1 if its parent is the root or none
	children    []tChainChild
	start       graph.Traversal
	end         graph.Traversal
	sealed      bool
}

// tSnarl's children are the nested chains threading through its
// interior, recorded when each nested chain seals.
type tSnarl struct {
	parentChain int // index into chains
	start       graph.Traversal
	end         graph.Traversal
	children    []int // indices into temporaryTree.chains
	trivial     bool
}

// temporaryTree accumulates the decomposition before serialization.
// Chains and snarls are stored in discovery order in flat slices,
// linked by index; the bottom-up distance pass (dijkstra.go, index.go)
// reaches them by recursing along that nesting, children first.
type temporaryTree struct {
	chains []*tChain
	snarls []*tSnarl
	root   tChain // the virtual root is itself a chain of top-level components
}

// stackFrame is one entry of the push-down stack the builder
// maintains while consuming the finder's callbacks.
type stackFrame struct {
	isSnarl bool
	chain   int
	snarl   int
}

// buildTemporaryTree drives a Finder's traversal and accumulates the
// stack-based temporary tree described in design §4.4.
func buildTemporaryTree(g GraphAccessor, f Finder) *temporaryTree {
	tree := &temporaryTree{}
	var stack []stackFrame

	onChainStart := func(boundary graph.Traversal) {
		c := &tChain{start: boundary, parentSnarl: -1}
		tree.chains = append(tree.chains, c)
		idx := len(tree.chains) - 1
		c.children = append(c.children, tChainChild{node: tNode{traversal: boundary, length: g.GetLength(boundary.Node)}})
		stack = append(stack, stackFrame{isSnarl: false, chain: idx})
	}

	onChainEnd := func(boundary graph.Traversal) {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c := tree.chains[top.chain]
		c.end = boundary
		c.sealed = true
		c.children = append(c.children, tChainChild{node: tNode{traversal: boundary, length: g.GetLength(boundary.Node)}})

		if len(stack) > 0 && stack[len(stack)-1].isSnarl {
			sIdx := stack[len(stack)-1].snarl
			c.parentSnarl = sIdx
			tree.snarls[sIdx].children = append(tree.snarls[sIdx].children, top.chain)
		} else {
			tree.root.children = append(tree.root.children, tChainChild{node: tNode{traversal: c.start}})
		}
	}

	onSnarlStart := func(boundary graph.Traversal) {
		s := &tSnarl{start: boundary, parentChain: -1}
		tree.snarls = append(tree.snarls, s)
		idx := len(tree.snarls) - 1
		if len(stack) > 0 && !stack[len(stack)-1].isSnarl {
			parentChain := stack[len(stack)-1].chain
			s.parentChain = parentChain
			tree.chains[parentChain].children = append(tree.chains[parentChain].children, tChainChild{isSnarl: true, snarl: idx})
		}
		stack = append(stack, stackFrame{isSnarl: true, snarl: idx})
	}

	onSnarlEnd := func(boundary graph.Traversal) {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s := tree.snarls[top.snarl]
		s.end = boundary

		adjacent := false
		g.FollowEdges(s.start, false, func(next graph.Traversal) bool {
			if next == s.end {
				adjacent = true
				return false
			}
			return true
		})
		s.trivial = adjacent

		if len(stack) > 0 && !stack[len(stack)-1].isSnarl {
			c := tree.chains[stack[len(stack)-1].chain]
			c.children = append(c.children, tChainChild{node: tNode{traversal: boundary, length: g.GetLength(boundary.Node)}})
		}
	}

	f.Traverse(onChainStart, onChainEnd, onSnarlStart, onSnarlEnd)
	return tree
}
