package report_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manwar/multisect/internal/core"
	"github.com/manwar/multisect/internal/probecache"
	"github.com/manwar/multisect/internal/report"
)

func view(digests map[int]core.Digest, n int) probecache.PerTargetView {
	v := make(probecache.PerTargetView, n)
	for i, d := range digests {
		r := core.Result{Digest: d, OutputPath: "artifact-" + string(d)}
		v[i] = &r
	}
	return v
}

func TestInspect_NoTransitions(t *testing.T) {
	v := view(map[int]core.Digest{0: "A", 9: "A"}, 10)
	rep, err := report.Inspect(v)
	require.NoError(t, err)
	require.Empty(t, rep.Transitions)
	require.Equal(t, 0, rep.Oldest.Idx)
	require.Equal(t, 9, rep.Newest.Idx)
}

func TestInspect_TransitionsStrictlyIncreasing(t *testing.T) {
	v := view(map[int]core.Digest{0: "A", 2: "A", 3: "B", 6: "B", 7: "C", 9: "C"}, 10)
	rep, err := report.Inspect(v)
	require.NoError(t, err)
	require.Len(t, rep.Transitions, 2)
	require.Less(t, rep.Transitions[0].Older.Idx, rep.Transitions[1].Older.Idx)
	require.Equal(t, core.Digest("A"), rep.Transitions[0].Older.Digest)
	require.Equal(t, core.Digest("B"), rep.Transitions[0].Newer.Digest)
}

func TestInspect_RejectsIncompleteSession(t *testing.T) {
	v := view(map[int]core.Digest{4: "A"}, 10)
	_, err := report.Inspect(v)
	require.ErrorContains(t, err, "UsageError")
}
