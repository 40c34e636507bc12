// Package reactor applies an ordered stream of on/off instructions to a set
// of lit unit cells, keeping the lit region as a pairwise-disjoint collection
// of cuboids so that its volume can be read off by summation.
package reactor
