// Package params holds the rack's parameter space.
//
// A [Block] is the set of values one module instance reads, addressed by a
// module kind name and a parameter-block index ("Filter 3"). Values are
// stored as atomic float64 bits so the audio thread can read them without
// locks. Set only flips a per-block change flag; recomputation of derived
// state is left to whoever polls [Block.TakeChanged].
//
// A [Store] owns every block and the per-kind layouts.
package params
