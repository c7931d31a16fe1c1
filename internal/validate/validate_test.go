package validate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manwar/multisect/internal/core"
	"github.com/manwar/multisect/internal/probecache"
	"github.com/manwar/multisect/internal/validate"
)

func viewFrom(digests map[int]core.Digest, n int) probecache.PerTargetView {
	v := make(probecache.PerTargetView, n)
	for i, d := range digests {
		r := core.Result{Digest: d}
		v[i] = &r
	}
	return v
}

func TestValidate_EmptySequenceIsInvariantViolation(t *testing.T) {
	ok, runs, err := validate.Validate(nil)
	require.False(t, ok)
	require.Nil(t, runs)
	require.ErrorContains(t, err, "InvariantViolation")
}

func TestValidate_UndefinedEndpointsRejected(t *testing.T) {
	v := viewFrom(map[int]core.Digest{4: "A"}, 10)
	ok, runs, err := validate.Validate(v)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, runs)
}

func TestValidate_Scenario1_NoChange(t *testing.T) {
	// A A A A A A A A A A, only 0 and 9 probed.
	v := viewFrom(map[int]core.Digest{0: "A", 9: "A"}, 10)
	ok, runs, err := validate.Validate(v)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []validate.Run{{Value: "A", Start: 0, End: 9}}, runs)
}

func TestValidate_Scenario2_SingleMidpointTransition(t *testing.T) {
	// A A A A A B B B B B, probes at 0, 9, 4, 5.
	v := viewFrom(map[int]core.Digest{0: "A", 4: "A", 5: "B", 9: "B"}, 10)
	ok, runs, err := validate.Validate(v)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []validate.Run{
		{Value: "A", Start: 0, End: 4},
		{Value: "B", Start: 5, End: 9},
	}, runs)
}

func TestValidate_Scenario4_TwoTransitions(t *testing.T) {
	// A A A B B B B C C C, fully defined for clarity.
	digests := map[int]core.Digest{
		0: "A", 1: "A", 2: "A",
		3: "B", 4: "B", 5: "B", 6: "B",
		7: "C", 8: "C", 9: "C",
	}
	v := viewFrom(digests, 10)
	ok, runs, err := validate.Validate(v)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []validate.Run{
		{Value: "A", Start: 0, End: 2},
		{Value: "B", Start: 3, End: 6},
		{Value: "C", Start: 7, End: 9},
	}, runs)
}

func TestValidate_Scenario4_SparseEquivalent(t *testing.T) {
	// Same ground truth as scenario 4 but only the probed positions defined.
	v := viewFrom(map[int]core.Digest{0: "A", 2: "A", 3: "B", 6: "B", 7: "C", 9: "C"}, 10)
	ok, runs, err := validate.Validate(v)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []validate.Run{
		{Value: "A", Start: 0, End: 2},
		{Value: "B", Start: 3, End: 6},
		{Value: "C", Start: 7, End: 9},
	}, runs)
}

func TestValidate_Scenario5_AdjacentTransitions(t *testing.T) {
	// A A A A B C C C C C: single-position runs are legal.
	digests := map[int]core.Digest{
		0: "A", 1: "A", 2: "A", 3: "A",
		4: "B",
		5: "C", 6: "C", 7: "C", 8: "C", 9: "C",
	}
	v := viewFrom(digests, 10)
	ok, runs, err := validate.Validate(v)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []validate.Run{
		{Value: "A", Start: 0, End: 3},
		{Value: "B", Start: 4, End: 4},
		{Value: "C", Start: 5, End: 9},
	}, runs)
}

func TestValidate_RejectsNonAdjacentTransition(t *testing.T) {
	// Only the endpoints are probed and they differ: the transition's exact
	// position is still unknown, so the sequence must not validate yet.
	v := viewFrom(map[int]core.Digest{0: "A", 9: "B"}, 10)
	ok, runs, err := validate.Validate(v)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, runs)
}

func TestValidate_RejectsRecurrence(t *testing.T) {
	// A B A: second A recurs, which the grammar forbids.
	v := viewFrom(map[int]core.Digest{0: "A", 1: "B", 2: "A"}, 3)
	ok, runs, err := validate.Validate(v)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, runs)
}

func TestValidate_Roundtrip(t *testing.T) {
	// Any sequence a completed multisection's view would return validates.
	v := viewFrom(map[int]core.Digest{0: "A", 3: "A", 4: "B", 9: "B"}, 10)
	ok, _, err := validate.Validate(v)
	require.NoError(t, err)
	require.True(t, ok)
}
