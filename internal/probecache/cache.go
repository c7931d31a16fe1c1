// Package probecache implements the memoization layer: an indexed cache of
// Runner-port probes, keyed by commit position, that guarantees at most one
// Runner call per commit for the lifetime of a multisection and exposes a
// read-only, sparse per-target projection.
//
// Grounded on a Has/Get/Put style cache — collapsed here into the single
// idempotent Ensure the runner contract calls for, and on a "a filled row
// is never replaced" invariant, kept but enforced purely in memory rather
// than on disk, since the driving state machine has no persistence layer.
package probecache

import (
	"context"
	"fmt"

	"github.com/manwar/multisect/internal/core"
)

// ProbeRow is the memoized result of one probe: a map stub -> Result, or
// unvisited. A row is either entirely present (every target) or entirely
// absent.
type ProbeRow struct {
	Filled  bool
	Results map[string]core.Result
}

// PerTargetView is a sparse projection of length N: position i is non-nil
// iff Cache[i] has been filled. It carries no ownership: each entry points
// at a copy of the Cache's Result, made when the view is built, so a view
// does not alias the cache's storage and later edits to it do not reach
// the cache.
type PerTargetView []*core.Result

// Cache is the array of length N of ProbeRow. Rows at index 0 and N-1 are
// expected to be filled before multisection
// begins (Driver.Prepare enforces this); Cache itself has no opinion about
// which indices get probed, only that each is probed at most once.
type Cache struct {
	commits core.CommitRange
	targets []string // expected target stubs, for row-completeness checks
	rows    []ProbeRow
	visited int
}

// New creates a Cache sized to commits, expecting one Result per stub in
// targets from every probe.
func New(commits core.CommitRange, targets []string) *Cache {
	stubs := make([]string, len(targets))
	copy(stubs, targets)
	return &Cache{
		commits: commits,
		targets: stubs,
		rows:    make([]ProbeRow, len(commits)),
	}
}

// N returns the length of the commit range this cache was built over.
func (c *Cache) N() int { return len(c.commits) }

// Filled reports whether position i has already been probed.
func (c *Cache) Filled(i int) bool {
	if i < 0 || i >= len(c.rows) {
		return false
	}
	return c.rows[i].Filled
}

// VisitedCount returns the number of distinct commit positions probed so
// far, across every target (Driver.TotalVisited reports it).
func (c *Cache) VisitedCount() int { return c.visited }

// Row returns the stored row at i, or the zero ProbeRow if unfilled.
func (c *Cache) Row(i int) ProbeRow { return c.rows[i] }

// Ensure fills Cache[i] via a single Runner call if it is not already
// filled, and returns the (possibly pre-existing) row. It never issues a
// probe with i < 0 or i >= N, and it never replaces a filled row.
func (c *Cache) Ensure(ctx context.Context, i int, runner core.RunnerPort) (ProbeRow, error) {
	if i < 0 || i >= len(c.rows) {
		return ProbeRow{}, core.InvariantViolation("probe index %d out of range [0,%d)", i, len(c.rows))
	}
	if c.rows[i].Filled {
		return c.rows[i], nil
	}
	if runner == nil {
		return ProbeRow{}, core.ConfigurationError("no runner configured")
	}

	commit := c.commits[i]
	results, err := runner.Probe(ctx, commit)
	if err != nil {
		return ProbeRow{}, core.ProbeError(err, "probing commit %s (index %d)", commit, i)
	}

	row, err := c.buildRow(results)
	if err != nil {
		return ProbeRow{}, err
	}

	c.rows[i] = row
	c.visited++
	return row, nil
}

func (c *Cache) buildRow(results []core.Result) (ProbeRow, error) {
	byStub := make(map[string]core.Result, len(results))
	for _, r := range results {
		if _, dup := byStub[r.TargetStub]; dup {
			return ProbeRow{}, core.InvariantViolation("runner returned duplicate result for target stub %q", r.TargetStub)
		}
		byStub[r.TargetStub] = r
	}
	for _, stub := range c.targets {
		if _, ok := byStub[stub]; !ok {
			return ProbeRow{}, core.ProbeError(nil, "runner omitted result for target %q", stub)
		}
	}
	if len(byStub) != len(c.targets) {
		return ProbeRow{}, core.InvariantViolation("runner returned %d results, expected %d targets", len(byStub), len(c.targets))
	}
	return ProbeRow{Filled: true, Results: byStub}, nil
}

// View returns the sparse per-target projection for stub: a slice of length
// N where position i is non-nil iff Cache[i] is filled.
func (c *Cache) View(stub string) PerTargetView {
	view := make(PerTargetView, len(c.rows))
	for i := range c.rows {
		if !c.rows[i].Filled {
			continue
		}
		r, ok := c.rows[i].Results[stub]
		if !ok {
			continue
		}
		result := r
		view[i] = &result
	}
	return view
}

// String renders the view for debugging: defined positions show their
// digest, undefined positions show "?".
func (v PerTargetView) String() string {
	out := ""
	for i, r := range v {
		if i > 0 {
			out += " "
		}
		if r == nil {
			out += "?"
			continue
		}
		out += fmt.Sprintf("%s", r.Digest)
	}
	return out
}
