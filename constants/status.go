package constants

// DocState is the lifecycle state of one document inside a run.
type DocState string

// Stable values (stored as-is in the ledger).
const (
	DocStateDiscovered DocState = "DISCOVERED"
	DocStateClassified DocState = "CLASSIFIED"
	DocStateExtracted  DocState = "EXTRACTED"
	DocStateNormalized DocState = "NORMALIZED"
	DocStateMerged     DocState = "MERGED"  // terminal: records appended to the run
	DocStateSkipped    DocState = "SKIPPED" // terminal: zero records contributed
)

// Terminal reports whether no further transition is allowed from s.
func (s DocState) Terminal() bool {
	return s == DocStateMerged || s == DocStateSkipped
}

var nextState = map[DocState]DocState{
	DocStateDiscovered: DocStateClassified,
	DocStateClassified: DocStateExtracted,
	DocStateExtracted:  DocStateNormalized,
	DocStateNormalized: DocStateMerged,
}

// CanTransition reports whether from -> to is a legal lifecycle step.
// SKIPPED is reachable from every non-terminal state.
func CanTransition(from, to DocState) bool {
	if from.Terminal() {
		return false
	}
	if to == DocStateSkipped {
		return true
	}
	return nextState[from] == to
}
