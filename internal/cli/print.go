package cli

import (
	"fmt"
	"io"
	"sort"

	"github.com/manwar/multisect/internal/report"
)

// PrintReports writes a per-target transition report to w, one target per
// block, oldest/newest endpoints first and every transition in order — the
// CLI's rendering of report.Inspect's result. Targets are printed in sorted
// stub order so output is deterministic across runs.
func PrintReports(w io.Writer, reports map[string]report.TargetReport) {
	stubs := make([]string, 0, len(reports))
	for stub := range reports {
		stubs = append(stubs, stub)
	}
	sort.Strings(stubs)

	for _, stub := range stubs {
		rep := reports[stub]
		fmt.Fprintf(w, "target %s\n", stub)
		fmt.Fprintf(w, "  oldest  [%d] %s\n", rep.Oldest.Idx, rep.Oldest.Digest)
		fmt.Fprintf(w, "  newest  [%d] %s\n", rep.Newest.Idx, rep.Newest.Digest)
		if len(rep.Transitions) == 0 {
			fmt.Fprintln(w, "  no transitions")
			continue
		}
		for _, tr := range rep.Transitions {
			fmt.Fprintf(w, "  transition [%d]->%s  [%d]->%s\n",
				tr.Older.Idx, tr.Older.Digest, tr.Newer.Idx, tr.Newer.Digest)
		}
	}
}
