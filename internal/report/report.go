// Package report turns a completed PerTargetView into a structured,
// serializable summary of the oldest, newest, and every detected transition
// boundary.
//
// Grounded on a plain result struct summarizing a completed execution for
// external consumption.
package report

import (
	"github.com/manwar/multisect/internal/core"
	"github.com/manwar/multisect/internal/probecache"
	"github.com/manwar/multisect/internal/validate"
)

// Endpoint names one defined position in a target's view.
type Endpoint struct {
	Idx      int
	Digest   core.Digest
	Artifact string
}

// Transition is one adjacent pair of defined indices whose digests differ.
type Transition struct {
	Older Endpoint
	Newer Endpoint
}

// TargetReport is the record inspecting a target's view returns.
type TargetReport struct {
	Oldest      Endpoint
	Newest      Endpoint
	Transitions []Transition
}

// Inspect builds a TargetReport from view. It returns a KindUsage error if
// view is not consistent with a completed multisection — inspecting before
// completion is a usage error.
func Inspect(view probecache.PerTargetView) (TargetReport, error) {
	ok, _, err := validate.Validate(view)
	if err != nil {
		return TargetReport{}, err
	}
	if !ok {
		return TargetReport{}, core.UsageError("inspect_transitions called before multisection completed")
	}

	n := len(view)
	rep := TargetReport{
		Oldest: endpointAt(view, 0),
		Newest: endpointAt(view, n-1),
	}

	prev := 0
	for i := 1; i < n; i++ {
		if view[i] == nil {
			continue
		}
		if view[prev].Digest != view[i].Digest {
			rep.Transitions = append(rep.Transitions, Transition{
				Older: endpointAt(view, prev),
				Newer: endpointAt(view, i),
			})
		}
		prev = i
	}

	return rep, nil
}

func endpointAt(view probecache.PerTargetView, idx int) Endpoint {
	r := view[idx]
	if r == nil {
		return Endpoint{Idx: idx}
	}
	return Endpoint{Idx: idx, Digest: r.Digest, Artifact: r.OutputPath}
}
