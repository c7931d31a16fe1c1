// Package multisect implements the bisection state machine: the per-target
// inner loop that narrows an active window to a transition boundary, and
// the round-robin scheduler that drives every target to completion while
// sharing one probe cache.
//
// Grounded on a serial task-executor loop with pure transition/terminal
// predicates — the cross-target round-robin here plays the role a
// task-readiness loop plays in that shape, except the unit of work is "the
// next probe a target's window needs" rather than "the next ready task".
package multisect

import (
	"context"
	"fmt"

	"github.com/manwar/multisect/internal/core"
	"github.com/manwar/multisect/internal/probecache"
	"github.com/manwar/multisect/internal/probetrace"
	"github.com/manwar/multisect/internal/report"
	"github.com/manwar/multisect/internal/validate"
)

// window is the per-target active region the inner loop narrows. lo and hi
// are always filled positions; done marks that the driver has stopped
// probing for this target: the validator accepted its view, its search
// reached the end of the range, or SweepAll visited every commit.
type window struct {
	lo, hi int
	done   bool
	probes int
}

// Driver is the multisection state machine. It owns one window per target
// and drives them round-robin against a shared Cache.
type Driver struct {
	commits core.CommitRange
	targets []core.Target
	cache   *probecache.Cache
	runner  core.RunnerPort

	windows  map[string]*window
	prepared bool

	// trace is nil unless EnableTrace was called. Every probe() call and
	// transition discovery appends to it when non-nil; a driver that never
	// opts in pays nothing for tracing.
	trace *probetrace.Trace
}

// EnableTrace turns on probe-order recording for this driver and returns the
// (initially empty) trace that will be populated as probes are issued.
// Callers read it after the drive completes; reading it mid-drive observes a
// partial trace.
func (d *Driver) EnableTrace(sessionID string) *probetrace.Trace {
	d.trace = &probetrace.Trace{SessionID: sessionID}
	return d.trace
}

func (d *Driver) recordProbe(stub string, i int, digest core.Digest) {
	if d.trace == nil {
		return
	}
	d.trace.Events = append(d.trace.Events, probetrace.Event{
		Kind:        probetrace.EventProbeIssued,
		TargetStub:  stub,
		CommitIndex: i,
		Digest:      string(digest),
	})
}

func (d *Driver) recordComplete(stub string) {
	if d.trace == nil {
		return
	}
	d.trace.Events = append(d.trace.Events, probetrace.Event{
		Kind:       probetrace.EventSessionComplete,
		TargetStub: stub,
	})
}

// New constructs a Driver over commits and targets, to be served by runner.
// It performs no probing; call Prepare before driving any target.
func New(commits core.CommitRange, targets []core.Target, runner core.RunnerPort) (*Driver, error) {
	if len(commits) < 2 {
		return nil, core.ConfigurationError("commit range must have at least 2 commits, got %d", len(commits))
	}
	if len(targets) == 0 {
		return nil, core.ConfigurationError("at least one target is required")
	}
	seen := make(map[string]bool, len(targets))
	stubs := make([]string, len(targets))
	for i, tg := range targets {
		if seen[tg.Stub] {
			return nil, core.ConfigurationError("duplicate target stub %q (from path %q)", tg.Stub, tg.Path)
		}
		seen[tg.Stub] = true
		stubs[i] = tg.Stub
	}

	return &Driver{
		commits: commits,
		targets: targets,
		cache:   probecache.New(commits, stubs),
		runner:  runner,
		windows: make(map[string]*window, len(targets)),
	}, nil
}

// Prepare probes positions 0 and N-1 and initializes every target's window
// to the full range.
func (d *Driver) Prepare(ctx context.Context) error {
	n := d.cache.N()
	if _, err := d.cache.Ensure(ctx, 0, d.runner); err != nil {
		return err
	}
	if _, err := d.cache.Ensure(ctx, n-1, d.runner); err != nil {
		return err
	}
	for _, tg := range d.targets {
		d.windows[tg.Stub] = &window{lo: 0, hi: n - 1}
	}
	d.prepared = true
	return nil
}

// MultisectAllTargets drives every target's window in round-robin order
// until each target's sparse view validates. Calling it again on an
// already-complete session performs zero probes.
func (d *Driver) MultisectAllTargets(ctx context.Context) error {
	if !d.prepared {
		return core.UsageError("MultisectAllTargets called before Prepare")
	}

	remaining := 0
	for _, tg := range d.targets {
		if !d.windows[tg.Stub].done {
			remaining++
		}
	}
	for remaining > 0 {
		progressed := false
		for _, tg := range d.targets {
			w := d.windows[tg.Stub]
			if w.done {
				continue
			}
			wasDone := w.done
			probed, err := d.step(ctx, tg.Stub, w)
			if err != nil {
				return err
			}
			if w.done && !wasDone {
				remaining--
			}
			progressed = progressed || probed || w.done
		}
		if !progressed {
			return core.InvariantViolation("no target progressed in a scheduling round while %d remain incomplete", remaining)
		}
	}
	return nil
}

// step advances stub's window, yielding control back to the scheduler as
// soon as it either issues a probe or the window completes. Narrowing the
// window from an already-cached hit costs nothing, so step folds any number
// of those into a single call rather than spending a scheduling round on
// each; only an actual probe (or exhaustion of the window) ends the call,
// which keeps the round-robin interleave at probe granularity.
func (d *Driver) step(ctx context.Context, stub string, w *window) (probed bool, err error) {
	for {
		ok, _, err := validate.Validate(d.cache.View(stub))
		if err != nil {
			return probed, err
		}
		if ok {
			if !w.done {
				d.recordComplete(stub)
			}
			w.done = true
			return probed, nil
		}

		if w.hi-w.lo <= 1 {
			// The window between two adjacent filled positions is already
			// resolved; re-open the search past hi if there is room, else done.
			if w.hi >= d.cache.N()-1 {
				d.recordComplete(stub)
				w.done = true
				return probed, nil
			}
			w.lo, w.hi = w.hi, d.cache.N()-1
			continue
		}

		m := (w.lo + w.hi) / 2

		if !d.cache.Filled(m) {
			if err := d.probe(ctx, stub, w, m); err != nil {
				return probed, err
			}
			return true, nil
		}

		dLo := d.digestAt(stub, w.lo)
		dM := d.digestAt(stub, m)

		if dM == dLo {
			w.lo = m
			continue
		}

		if !d.cache.Filled(m - 1) {
			if err := d.probe(ctx, stub, w, m-1); err != nil {
				return probed, err
			}
			return true, nil
		}

		dPrev := d.digestAt(stub, m-1)
		if dPrev == dLo {
			// Boundary located exactly at m-1 -> m. If the new run's value
			// already matches the range's final digest, this target has no
			// further transitions; otherwise hunt the next one in (m, N-1].
			if d.trace != nil {
				d.trace.Events = append(d.trace.Events, probetrace.Event{
					Kind:        probetrace.EventTransitionFound,
					TargetStub:  stub,
					CommitIndex: m,
					Digest:      string(dM),
				})
			}
			last := d.cache.N() - 1
			if dM == d.digestAt(stub, last) {
				d.recordComplete(stub)
				w.done = true
				return probed, nil
			}
			w.lo, w.hi = m, last
			continue
		}

		w.hi = m
	}
}

func (d *Driver) probe(ctx context.Context, stub string, w *window, i int) error {
	if w.probes >= d.cache.N() {
		return core.InvariantViolation("target %q exceeded probe bound of %d", stub, d.cache.N())
	}
	if _, err := d.cache.Ensure(ctx, i, d.runner); err != nil {
		return err
	}
	w.probes++
	d.recordProbe(stub, i, d.digestAt(stub, i))
	return nil
}

func (d *Driver) digestAt(stub string, i int) core.Digest {
	row := d.cache.Row(i)
	return row.Results[stub].Digest
}

// MultisectedOutputs returns, per target, the sparse PerTargetView
// accumulated by probing so far.
func (d *Driver) MultisectedOutputs() map[string]probecache.PerTargetView {
	out := make(map[string]probecache.PerTargetView, len(d.targets))
	for _, tg := range d.targets {
		out[tg.Stub] = d.cache.View(tg.Stub)
	}
	return out
}

// InspectTransitions runs report.Inspect over every target's current view,
// driven across the whole target set in one call.
func (d *Driver) InspectTransitions() (map[string]report.TargetReport, error) {
	out := make(map[string]report.TargetReport, len(d.targets))
	for _, tg := range d.targets {
		rep, err := report.Inspect(d.cache.View(tg.Stub))
		if err != nil {
			return nil, fmt.Errorf("inspecting target %q: %w", tg.Stub, err)
		}
		out[tg.Stub] = rep
	}
	return out, nil
}

// SweepAll probes every commit position in ascending order without
// consulting the validator — an additive "visit every commit" mode useful
// for exhaustive diagnosis workflows that intentionally forgo the
// minimal-probing guarantee MultisectAllTargets provides.
func (d *Driver) SweepAll(ctx context.Context) error {
	if !d.prepared {
		return core.UsageError("SweepAll called before Prepare")
	}
	for i := 0; i < d.cache.N(); i++ {
		if _, err := d.cache.Ensure(ctx, i, d.runner); err != nil {
			return err
		}
		if d.trace != nil {
			for _, tg := range d.targets {
				d.recordProbe(tg.Stub, i, d.digestAt(tg.Stub, i))
			}
		}
	}
	for _, tg := range d.targets {
		d.windows[tg.Stub].done = true
		d.recordComplete(tg.Stub)
	}
	return nil
}

// Trace returns the trace enabled by EnableTrace, or nil if tracing was
// never turned on for this driver.
func (d *Driver) Trace() *probetrace.Trace { return d.trace }

// ProbeCount returns the number of probes issued for stub so far.
func (d *Driver) ProbeCount(stub string) int {
	w, ok := d.windows[stub]
	if !ok {
		return 0
	}
	return w.probes
}

// TotalVisited returns the number of distinct commit positions probed
// across every target, since the cache is shared.
func (d *Driver) TotalVisited() int { return d.cache.VisitedCount() }
