package engine

import "time"

// Progress is a per-iteration snapshot handed to the progress callback.
type Progress struct {
	Iteration    int
	Species      int           // total species so far
	Reactions    int           // total reactions so far
	NewSpecies   int           // species added by this iteration
	NewReactions int           // reactions added by this iteration
	Elapsed      time.Duration // wall time since Generate started
}

// ProgressFunc receives a Progress snapshot after each completed iteration.
// Called synchronously from the generation loop; keep it cheap.
type ProgressFunc func(Progress)
