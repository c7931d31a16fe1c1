package core_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manwar/multisect/internal/core"
)

func TestStubify(t *testing.T) {
	cases := map[string]string{
		"t/unit.py":        "t_unit_py",
		"tests/foo.bar.rb":  "tests_foo_bar_rb",
		"plain":             "plain",
		"a/b/c":             "a_b_c",
	}
	for in, want := range cases {
		require.Equal(t, want, core.Stubify(in), "input %q", in)
	}
}

func TestNewTarget(t *testing.T) {
	tg := core.NewTarget("t/unit.py")
	require.Equal(t, "t/unit.py", tg.Path)
	require.Equal(t, "t_unit_py", tg.Stub)
}

func TestErrorKindString(t *testing.T) {
	err := core.ConfigurationError("bad range")
	require.ErrorContains(t, err, "ConfigurationError")
	require.ErrorContains(t, err, "bad range")

	wrapped := core.ProbeError(core.UsageError("inner"), "probe failed for %s", "abc123")
	require.ErrorContains(t, wrapped, "ProbeError")
	require.ErrorContains(t, wrapped, "probe failed for abc123")
}
