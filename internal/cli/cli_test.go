package cli_test

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/manwar/multisect/internal/cli"
)

// gitRepo creates a throwaway repository with one commit per content string
// written to output.txt, returning the repo directory and ordered commit ids.
func gitRepo(t *testing.T, contents []string) (dir string, commits []string) {
	t.Helper()
	dir = t.TempDir()
	run := func(args ...string) string {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
		return strings.TrimSpace(string(out))
	}
	run("init", "-q")
	run("config", "user.email", "multisect@example.com")
	run("config", "user.name", "multisect")

	for _, c := range contents {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "output.txt"), []byte(c), 0o644))
		run("add", "output.txt")
		run("commit", "-q", "--allow-empty", "-m", "snapshot")
		commits = append(commits, run("rev-parse", "HEAD"))
	}
	return dir, commits
}

func TestExecute_RunEndToEnd(t *testing.T) {
	contents := []string{"a", "a", "a", "b", "b", "b", "b", "b", "c", "c"}
	dir, commits := gitRepo(t, contents)

	args := []string{
		"run",
		"--workdir", dir,
		"--repository", dir,
		"--first", commits[0],
		"--last", commits[len(commits)-1],
		"--targets", "cat output.txt",
	}

	code := cli.Execute(context.Background(), args)
	require.Equal(t, cli.ExitSuccess, code)
}

func TestExecute_MissingWorkdirIsConfigError(t *testing.T) {
	args := []string{"run", "--first", "abc", "--last", "def", "--targets", "t1"}
	code := cli.Execute(context.Background(), args)
	require.Equal(t, cli.ExitConfigError, code)
}

func TestExecute_RunWithTraceWritesTraceFile(t *testing.T) {
	contents := []string{"a", "a", "b", "b"}
	dir, commits := gitRepo(t, contents)

	args := []string{
		"run",
		"--workdir", dir,
		"--repository", dir,
		"--first", commits[0],
		"--last", commits[len(commits)-1],
		"--targets", "cat output.txt",
		"--trace",
	}

	code := cli.Execute(context.Background(), args)
	require.Equal(t, cli.ExitSuccess, code)

	entries, err := os.ReadDir(filepath.Join(dir, "multisect-out"))
	require.NoError(t, err)
	var sawTrace bool
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "trace-") && strings.HasSuffix(e.Name(), ".json") {
			sawTrace = true
		}
	}
	require.True(t, sawTrace, "expected a trace-*.json file under outputdir")
}

func TestExecute_RejectsParallelTargetsAboveOne(t *testing.T) {
	dir := t.TempDir()
	args := []string{
		"run",
		"--workdir", dir,
		"--first", "abc",
		"--last", "def",
		"--targets", "t1",
		"--parallel-targets", "2",
	}
	code := cli.Execute(context.Background(), args)
	require.Equal(t, cli.ExitConfigError, code)
}

func TestExecute_SweepEndToEnd(t *testing.T) {
	contents := []string{"x", "y"}
	dir, commits := gitRepo(t, contents)

	args := []string{
		"sweep",
		"--workdir", dir,
		"--repository", dir,
		"--first", commits[0],
		"--last", commits[len(commits)-1],
		"--targets", "cat output.txt",
	}

	code := cli.Execute(context.Background(), args)
	require.Equal(t, cli.ExitSuccess, code)
}
