package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tanakrit/slipbook/internal/slipdate"
)

func main() {
	assert := flag.String("assert", "", "model-asserted datetime to reconcile against")
	at := flag.String("at", "", "reference 'now' as RFC 3339 (default: current time)")
	flag.Parse()

	text, err := readInput(flag.Args())
	if err != nil {
		log.Fatal(err)
	}

	extractor := slipdate.NewExtractor()

	var result slipdate.Result
	if *at != "" {
		now, err := time.Parse(time.RFC3339, *at)
		if err != nil {
			log.Fatalf("invalid -at value: %v", err)
		}
		result = extractor.ExtractAt(text, *assert, now)
	} else {
		result = extractor.Extract(text, *assert)
	}

	fmt.Printf("datetime_local: %s\n", result.DatetimeLocal)
	fmt.Printf("datetime_utc:   %s\n", result.DatetimeUTC)
	fmt.Printf("strategy:       %s\n", result.Strategy)
	fmt.Printf("era_adjusted:   %v\n", result.EraAdjusted)
	if result.FoundDateText != "" {
		fmt.Printf("date_text:      %s\n", result.FoundDateText)
	}
	if result.FoundTimeText != "" {
		fmt.Printf("time_text:      %s\n", result.FoundTimeText)
	}

	if len(result.Candidates) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Date", "Distance (days)", "Era Adjusted", "Raw Text"})
	for _, cand := range result.Candidates {
		t.AppendRow(table.Row{cand.Date, cand.DistanceDays, cand.EraAdjusted, cand.RawDate})
	}
	t.Render()
}

// readInput takes the slip text from args, or stdin when none are given.
func readInput(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("no input: pass slip text as an argument or on stdin")
	}
	return string(data), nil
}
