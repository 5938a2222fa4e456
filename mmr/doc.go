// Package mmr provides the index arithmetic for Merkle Mountain Ranges.
//
// Everything here is a pure function of integers. Nothing touches storage or
// hashing, see the accumulator package for that.
package mmr

/*

# Why MMR's

Merkle Mountain Ranges are a method of working with binary merkle trees that
has compelling benefits for append only logs:

1. The structure is strictly append only and it is easy to prove this is the case
2. The position of a value in the tree is easily provable
3. From one tree state to another, we can very simply demonstrate the
   consistency property - that everything that was in the previous tree is in
   fact included in the new tree

All of this is achieved mostly due to one simple property: trees only grow to
the right and nothing is ever inserted. The Mountain Range comes from the fact
that this requires us to maintain multiple 'peaks'. With previous peaks being
combined as new elements are added. It is possible to manage those peaks
knowing only the total number of elements in the tree.

# Positions

All functions take and return *one based* positions. Position 0 is never a
node and is always an error, or a sentinel for "no element".

# Post order traversal

Given a graph of 7 nodes like this,

       g
    c    f
  a   b d  e

The post order is children first, parents 'post', siblings left to right. so
flattening that tree in post order yields the labels above in series:

[a, b, c, d, e, f, g]
[1, 2, 3, 4, 5, 6, 7]

With the MMR's strictly append only nature, and its rule for back filling
earlier peaks, this is the natural order of insertion of an MMR. To jump around
this sequence in post order, we can do some fairly straightforward binary
arithmetic, because it is a binary tree.

Note, for example, that 'jumping right' from c to its sibling f, is just

	3 + (2 << 1) - 1

And that no matter how large the tree grows, that operation from c moving right
to f remains the same.

# Counting

An MMR with n nodes decomposes uniquely into perfect mountains of distinct
heights, largest first. A mountain of height h has 2^(h+1) - 1 nodes and 2^h
leaves. Not every n decomposes: 2, 5 and 6 are examples of counts that no
sequence of appends can produce. FindPeaks, ElementsCountToLeafCount and
GetPeakInfo all reject such counts.

Appending behaves like incrementing a binary counter over the leaf count. The
trailing one bits of the leaf count are the mountains that merge on the next
append, see LeafCountToAppendNoMerges.

Sources:

* https://github.com/mimblewimble/grin/blob/0ff6763ee64e5a14e70ddd4642b99789a1648a32/core/src/core/pmmr.rs#L606
* https://github.com/proofchains/python-proofmarshal/blob/master/proofmarshal/mmr.py
* https://github.com/jjyr/mmr.py/blob/master/mmr/mmr.py#L145

## PosHeight

The implementation lives in indexheight.go

For a python implementation see - https://github.com/proofchains/python-proofmarshal/blob/master/proofmarshal/mmr.py#L18
From https://github.com/mimblewimble/grin/blob/0ff6763ee64e5a14e70ddd4642b99789a1648a32/core/src/core/pmmr.rs#L606

"The height of a node in a full binary tree from its postorder traversal
index. This function is the base on which all others, as well as the MMR,
are built.

We first start by noticing that the insertion order of a node in a MMR [1]
is identical to the height of a node in a binary tree traversed in
postorder. Specifically, we want to be able to generate the following
sequence:

[0, 0, 1, 0, 0, 1, 2, 0, 0, 1, 0, 0, 1, 2, 3, 0, 0, 1, ...]

Which turns out to start as the heights in the (left, right, top)
-postorder- traversal of the following tree:

             3
           /   \
         /       \
       /           \
      2             2
    /  \          /  \
   /    \        /    \
  1      1      1      1
 / \    / \    / \    / \
0   0  0   0  0   0  0   0

If we extend this tree up to a height of 4, we can continue the sequence,
and for an infinitely high tree, we get the infinite sequence of heights
in the MMR.

So to generate the MMR height sequence, we want a function that, given an
index in that sequence, gets us the height in the tree. This allows us to
build the sequence not only to infinite, but also at any index, without the
need to materialize the beginning of the sequence.

To see how to get the height of a node at any position in the postorder
traversal sequence of heights, we start by rewriting the previous tree with
each the position of every node written in binary:

               1111
              /   \
            /       \
          /           \
        /               \
     111                1110
    /   \              /    \
   /     \            /      \
  11      110        1010     1101
 / \      / \       /  \      / \
1   10  100  101  1000 1001 1011 1100

The height of a node is the number of 1 digits on the leftmost branch of
the tree, minus 1. For example, 1111 has 4 ones, so its height is `4-1=3`.

To get the height of any node (say 1101), we need to travel left in the
tree, get the leftmost node and count the ones. To travel left, we just
need to subtract the position by it's most significant bit, mins one. For
example to get from 1101 to 110 we subtract it by (1000-1) (`13-(8-1)=5`).
Then to to get 110 to 11, we subtract it by (100-1) ('6-(4-1)=3`).

By applying this operation recursively, until we get a number that, in
binary, is all ones, and then counting the ones, we can get the height of
any node, from its postorder traversal position. Which is the order in which
nodes are added in a MMR.

[1]  https://github.com/opentimestamps/opentimestamps-server/blob/master/doc/merkle-mountain-range.md
"

*/
