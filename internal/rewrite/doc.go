// Package rewrite turns rule descriptions into executable graph
// operations and applies them to matched species.
//
// A rule's reactant and product patterns are diffed once, at build time,
// under identity correspondence (molecules paired by type in declaration
// order, components paired by name claim order) into explicit operations:
// state changes, bond additions and removals, molecule synthesis and
// degradation. Application then replays those operations on a deep copy
// of every complex touched by the match and re-partitions the result by
// connectivity, because a bond removal can split one complex into two and
// the declared product count proves nothing.
package rewrite
