// Command sectio-demo is a small smoke-test program for the sectio
// library, in the spirit of the teacher's examples/basic_usage.go: not a
// general-purpose CLI, just a runnable walkthrough of the public API.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/tsawler/sectio"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <resume.pdf|resume.docx>\n", os.Args[0])
		os.Exit(2)
	}

	parseAndPrint(os.Args[1])
}

func parseAndPrint(path string) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	result, err := sectio.Parse(path).
		WithLogger(logger).
		Run(context.Background())
	if err != nil && result == nil {
		log.Fatalf("parse failed: %v", err)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse completed with errors: %v\n", err)
	}

	fmt.Printf("file: %s (%s, %d pages, scanned=%v)\n", result.File.Name, result.File.Type, result.File.Pages, result.File.Scanned)
	fmt.Printf("quality: %.2f (%s)\n", result.Quality.Score, result.Quality.Rung)
	fmt.Printf("strategy: %s, fallbacks tried: %v\n", result.Metadata.StrategyUsed, result.Metadata.FallbacksTried)

	for _, sec := range result.Sections {
		fmt.Printf("\n--- %s (pages %d-%d) ---\n", sec.Name, sec.PageSpan[0], sec.PageSpan[1])
		for _, line := range sec.Lines {
			fmt.Println(line)
		}
	}

	if len(result.UnknownHeaders) > 0 {
		fmt.Fprintln(os.Stderr, "\nunresolved headers:")
		for _, h := range result.UnknownHeaders {
			fmt.Fprintf(os.Stderr, "  %q (page %d, score %.2f)\n", h.Raw, h.Page, h.Score)
			for _, s := range h.Suggestions {
				fmt.Fprintf(os.Stderr, "    maybe %s (%.2f)\n", s.Name, s.Score)
			}
		}
	}
}
