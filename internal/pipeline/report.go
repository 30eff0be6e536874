package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sells-group/newsletter-cli/internal/model"
)

// FormatReport generates a human-readable run report.
func FormatReport(result *model.RunResult, newsletters []model.Newsletter) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Newsletter Collection Report\n")
	fmt.Fprintf(&b, "Run: %s\n\n", result.RunID)

	b.WriteString("## Summary\n")
	fmt.Fprintf(&b, "- Records seen: %d\n", result.RecordsSeen)
	fmt.Fprintf(&b, "- Malformed: %d\n", result.Malformed)
	fmt.Fprintf(&b, "- Merged (distinct newsletters): %d\n", result.Merged)
	fmt.Fprintf(&b, "- Kept: %d\n", result.Kept)
	fmt.Fprintf(&b, "- Dropped (incomplete): %d\n", result.DroppedIncomplete)
	fmt.Fprintf(&b, "- Duration: %dms\n\n", result.Duration)

	b.WriteString("## Sources\n")
	sources := make([]string, 0, len(result.Sources))
	for s := range result.Sources {
		sources = append(sources, string(s))
	}
	sort.Strings(sources)
	for _, s := range sources {
		stats := result.Sources[model.Source(s)]
		if stats.Failed {
			fmt.Fprintf(&b, "- %s: FAILED (%s)\n", s, stats.Error)
			continue
		}
		fmt.Fprintf(&b, "- %s: %d records, %d malformed\n", s, stats.Seen, stats.Malformed)
	}
	b.WriteString("\n")

	complete := 0
	for _, n := range newsletters {
		if n.Complete {
			complete++
		}
	}
	b.WriteString("## Completeness\n")
	if len(newsletters) == 0 {
		b.WriteString("No records kept.\n")
	} else {
		fmt.Fprintf(&b, "- Complete: %d of %d (%.0f%%)\n",
			complete, len(newsletters), 100*float64(complete)/float64(len(newsletters)))
	}

	return b.String()
}
