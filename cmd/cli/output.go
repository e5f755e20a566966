package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/iho/txingest/internal/adapter/http/dto"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(w io.Writer, r *dto.RunReportResponse) {
	if r == nil {
		return
	}

	fmt.Fprintf(w, "Files scanned: %d\n", r.FilesScanned)
	fmt.Fprintf(w, "Lines read:    %d\n", r.LinesRead)
	fmt.Fprintf(w, "Lines skipped: %d\n", r.LinesSkipped)
	fmt.Fprintf(w, "Deduplicated:  %d\n", r.Deduplicated)
	fmt.Fprintf(w, "Duration:      %s\n", time.Duration(r.DurationMS)*time.Millisecond)

	reasons := make([]string, 0, len(r.SkipReasons))
	for reason := range r.SkipReasons {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "  %s: %d\n", reason, r.SkipReasons[reason])
	}
}

func printTransactions(w io.Writer, txns []*dto.TransactionResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tCUSTOMER\tITEM\tAMOUNT\tCURRENCY\tNORMALIZED\tHIGH VALUE")
	for _, t := range txns {
		flag := ""
		if t.IsHighValue {
			flag = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Timestamp.UTC().Format(time.RFC3339),
			truncate(t.Customer, 20),
			truncate(t.Item, 24),
			t.Amount.String(),
			t.Currency,
			t.AmountNormalized.StringFixed(2),
			flag,
		)
	}
	tw.Flush()
}

func printSummary(w io.Writer, days []dto.DailySummaryResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tCOUNT\tTOTAL")
	for _, d := range days {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", d.Date, d.Count, d.Total)
	}
	tw.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
