// Package validate implements the sequence validator: a pure predicate
// deciding whether a sparse digest sequence is consistent with a
// fully-determined multisection answer.
//
// Grounded on a pure, allocation-light structural check over an immutable
// structure, in the style of an acyclic/topological-order validator — here
// a linear scan over a PerTargetView instead of a graph traversal.
package validate

import (
	"github.com/manwar/multisect/internal/core"
	"github.com/manwar/multisect/internal/probecache"
)

// Run is one maximal contiguous equivalence run in an accepted sequence:
// every defined digest in [Start, End] equals Value, and End is defined.
type Run struct {
	Value core.Digest
	Start int
	End   int
}

// Validate parses seq under the run-tiling grammar:
//
//   - Each run starts with a defined digest value v.
//   - Within a run, every defined position equals v; undefined positions are allowed.
//   - The run's last position is defined.
//   - A run's value must not recur as the value of any later run.
//   - Positions 0 and len(seq)-1 must be defined.
//
// Because runs tile the sequence contiguously, a run's last (defined)
// position must sit immediately before the next run's first (defined)
// position — so whenever two defined positions carry different digests,
// they must be index-adjacent. A differing pair separated by undefined
// gaps does not pin down where the transition actually falls, and is
// rejected: the driver must probe further before the sequence validates.
//
// ok is true iff the sequence parses with at least one run. err is non-nil
// only for structurally malformed input (an empty sequence), distinct from
// a sequence that simply fails to validate.
func Validate(seq probecache.PerTargetView) (ok bool, runs []Run, err error) {
	n := len(seq)
	if n == 0 {
		return false, nil, core.InvariantViolation("validator called on empty sequence")
	}
	if seq[0] == nil || seq[n-1] == nil {
		return false, nil, nil
	}

	seen := make(map[core.Digest]bool)
	runStart := 0
	runValue := seq[0].Digest
	prevIdx := 0

	for i := 1; i < n; i++ {
		if seq[i] == nil {
			continue
		}
		if seq[i].Digest == runValue {
			prevIdx = i
			continue
		}

		// seq[i] carries a different digest than the open run. The
		// boundary is only well-defined if it falls on the very next
		// index after the run's last observed position.
		if i != prevIdx+1 {
			return false, nil, nil
		}
		if seen[runValue] {
			return false, nil, nil
		}
		seen[runValue] = true
		runs = append(runs, Run{Value: runValue, Start: runStart, End: prevIdx})

		runStart = i
		runValue = seq[i].Digest
		prevIdx = i
	}

	if seen[runValue] {
		return false, nil, nil
	}
	runs = append(runs, Run{Value: runValue, Start: runStart, End: n - 1})

	return true, runs, nil
}
