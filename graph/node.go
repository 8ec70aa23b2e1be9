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

// Node is a unique, sequence-bearing vertex of the graph. Nodes are
// referenced everywhere else by id only; the Node value itself is
// owned by a single Store.
type Node struct {
	ID  NodeID
	Seq string // over {A,C,G,T,N}
}

// Length returns the number of bases in the node's sequence.
func (n *Node) Length() int { return len(n.Seq) }

var complement = [256]byte{}

func init() {
	for i := range complement {
		complement[i] = byte(i)
	}
	complement['A'], complement['T'] = 'T', 'A'
	complement['C'], complement['G'] = 'G', 'C'
	complement['a'], complement['t'] = 't', 'a'
	complement['c'], complement['g'] = 'g', 'c'
	complement['N'] = 'N'
	complement['n'] = 'n'
}

// ReverseComplement returns the reverse complement of a DNA sequence.
func ReverseComplement(seq string) string {
	out := make([]byte, len(seq))
	n := len(seq)
	for i := 0; i < n; i++ {
		out[n-1-i] = complement[seq[i]]
	}
	return string(out)
}

// Sequence returns the sequence of this node as read by the given
// traversal: the stored sequence when forward, its reverse complement
// when reverse.
func (n *Node) Sequence(t Traversal) string {
	if t.Reverse {
		return ReverseComplement(n.Seq)
	}
	return n.Seq
}
