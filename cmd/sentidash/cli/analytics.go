package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Print the sentiment and intent breakdown",
	Long: `Print how many stored comments carry each sentiment and intent label,
most frequent first.`,
	Args: cobra.NoArgs,
	RunE: runAnalytics,
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	a, err := newClient().Analytics(cmd.Context())
	if err != nil {
		return fmt.Errorf("fetching analytics: %w", err)
	}

	w := cmd.OutOrStdout()
	printBreakdown(w, "SENTIMENT", a.Sentiment)
	fmt.Fprintln(w)
	printBreakdown(w, "INTENT", a.Intent)
	return nil
}

func printBreakdown(w io.Writer, title string, counts map[string]int) {
	labels := make([]string, 0, len(counts))
	total := 0
	for label, n := range counts {
		labels = append(labels, label)
		total += n
	}
	sort.Slice(labels, func(i, j int) bool {
		if counts[labels[i]] != counts[labels[j]] {
			return counts[labels[i]] > counts[labels[j]]
		}
		return labels[i] < labels[j]
	})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tCOUNT\tSHARE\n", title)
	for _, label := range labels {
		share := 0.0
		if total > 0 {
			share = 100 * float64(counts[label]) / float64(total)
		}
		fmt.Fprintf(tw, "%s\t%d\t%.1f%%\n", label, counts[label], share)
	}
	if len(labels) == 0 {
		fmt.Fprintln(tw, "(none)\t0\t-")
	}
	tw.Flush()
}
