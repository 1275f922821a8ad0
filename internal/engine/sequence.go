package engine

import "slices"

// SequenceView is what one snapshot tells us about one cached sequence.
// Full is nil unless the snapshot carries the elements themselves.
type SequenceView struct {
	Length    int
	LastAdded string
	Full      []string
}

type MergeOutcome string

const (
	MergeUnchanged      MergeOutcome = "unchanged"
	MergeAppended       MergeOutcome = "appended"
	MergeReplaced       MergeOutcome = "replaced"
	MergeReset          MergeOutcome = "reset"
	MergeResyncRequired MergeOutcome = "resync_required"
)

type Merge struct {
	Tokens  []string
	Outcome MergeOutcome
	Added   []string
}

// Changed reports whether Tokens differs from the cache the merge started from.
func (m Merge) Changed() bool {
	return m.Outcome == MergeAppended || m.Outcome == MergeReplaced || m.Outcome == MergeReset
}

// MergeSequence reconciles a cached sequence with a snapshot's view of it.
// It never returns more tokens than remote.Length, never guesses a missing
// suffix and never aliases either input.
func MergeSequence(cached []string, remote SequenceView) Merge {
	n := len(cached)
	full := remote.Full
	if full != nil && len(full) != remote.Length {
		// inconsistent payload, trust only the length
		full = nil
	}

	switch {
	case remote.Length == n:
		if full != nil && !slices.Equal(full, cached) {
			return Merge{Tokens: slices.Clone(full), Outcome: MergeReplaced}
		}
		return Merge{Tokens: slices.Clone(cached), Outcome: MergeUnchanged}

	case remote.Length < n:
		// shorter history means a new round started; drop ours entirely
		if full != nil {
			return Merge{Tokens: slices.Clone(full), Outcome: MergeReset}
		}
		return Merge{Tokens: []string{}, Outcome: MergeReset}

	default:
		if full != nil {
			if slices.Equal(full[:n], cached) {
				added := slices.Clone(full[n:])
				return Merge{Tokens: slices.Clone(full), Outcome: MergeAppended, Added: added}
			}
			return Merge{Tokens: slices.Clone(full), Outcome: MergeReplaced}
		}
		if remote.Length == n+1 && remote.LastAdded != "" {
			tokens := append(slices.Clone(cached), remote.LastAdded)
			return Merge{Tokens: tokens, Outcome: MergeAppended, Added: []string{remote.LastAdded}}
		}
		return Merge{Tokens: slices.Clone(cached), Outcome: MergeResyncRequired}
	}
}
