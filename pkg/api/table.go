package api

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/buildbarn/bb-pagesim/pkg/reference"
	"github.com/buildbarn/bb-pagesim/pkg/simulator"
)

func formatFrames(frames []reference.PageID) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, page := range frames {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(string(page))
	}
	sb.WriteByte(']')
	return sb.String()
}

// WriteRunTable writes a human readable trace of a simulation run,
// containing one row per reference followed by a summary.
func WriteRunTable(w io.Writer, run *simulator.RunResult) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "STEP\tPAGE\tFRAMES\tRESULT")
	for i, step := range run.Steps {
		result := "hit"
		if step.Fault {
			result = "fault"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", i+1, step.Page, formatFrames(step.Frames), result)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "algorithm=%s frames=%d faults=%d hits=%d fault_rate=%.4f\n", run.Policy, run.Capacity, run.Faults, run.Hits, run.FaultRate())
	return err
}

// WriteComparisonTable writes the traces of all runs of a comparison,
// followed by a fault count summary and the recommendation.
func WriteComparisonTable(w io.Writer, comparison *simulator.ComparisonResult) error {
	for _, run := range comparison.Runs {
		if err := WriteRunTable(w, run); err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ALGORITHM\tFAULTS\tHITS\tFAULT RATE")
	for _, run := range comparison.Runs {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.4f\n", run.Policy, run.Faults, run.Hits, run.FaultRate())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "recommendation=%s\n", comparison.Recommendation)
	return err
}
