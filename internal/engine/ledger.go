package engine

// reactionLedger deduplicates reactions by content key across the whole
// run. Distinct embeddings that produce the same species transformation
// under the same rule are one reaction; while that reaction's creating
// iteration is still running, repeats raise its multiplicity (the
// statistical factor of symmetric embeddings). Re-derivations in later
// iterations are dropped outright.
type reactionLedger struct {
	byKey map[string]ledgerEntry
}

type ledgerEntry struct {
	index     int // index into Network.Reactions
	iteration int // iteration that created the reaction
}

func newReactionLedger() *reactionLedger {
	return &reactionLedger{byKey: make(map[string]ledgerEntry)}
}

// Admit records key as created in iteration iter at reaction index idx.
// Returns (existing index, false) when the key is already present; the
// caller decides between a multiplicity bump and a drop by comparing
// iterations.
func (l *reactionLedger) Admit(key string, idx, iter int) (int, bool) {
	if prev, seen := l.byKey[key]; seen {
		return prev.index, false
	}
	l.byKey[key] = ledgerEntry{index: idx, iteration: iter}
	return idx, true
}

// Iteration returns the creating iteration for a known key.
func (l *reactionLedger) Iteration(key string) int {
	return l.byKey[key].iteration
}

// Len returns the number of distinct reactions recorded.
func (l *reactionLedger) Len() int {
	return len(l.byKey)
}
