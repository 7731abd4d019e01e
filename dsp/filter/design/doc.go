// Package design provides RBJ-style biquad coefficient designers for the
// rack's filter module. [Design] selects a response by [Type].
package design
