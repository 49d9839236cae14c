// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/promo-radar/internal/pipeline"
	"github.com/jonathan/promo-radar/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if utf8.RuneCountInString(line) > boxWidth-4 {
			runes := []rune(line)
			line = string(runes[:boxWidth-7]) + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintIngestResult outputs a human-readable summary of an ingest run.
func (p *Printer) PrintIngestResult(result pipeline.IngestResult) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run:      %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("New:      %d\n", result.Ingested))
	sb.WriteString(fmt.Sprintf("Skipped:  %d", result.Skipped))

	if len(result.FailedCompanies) > 0 {
		sb.WriteString("\n\nFailed companies:\n")
		for _, name := range result.FailedCompanies {
			sb.WriteString(fmt.Sprintf("  • %s\n", name))
		}
	}

	p.printBox("INGEST RESULT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintEnrichResult outputs a human-readable summary of an enrich run.
func (p *Printer) PrintEnrichResult(result pipeline.EnrichResult) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Run:        %s\n", result.RunID))
	sb.WriteString(fmt.Sprintf("Processed:  %d\n", result.Processed))
	sb.WriteString(fmt.Sprintf("Succeeded:  %d\n", result.Succeeded))
	sb.WriteString(fmt.Sprintf("Failed:     %d\n", result.Failed))
	sb.WriteString(fmt.Sprintf("AI-based:   %d", result.AIEnriched))

	p.printBox("EXTRACT & ENRICH RESULT", sb.String())
}

// PrintEvents outputs a compact listing of events.
func (p *Printer) PrintEvents(events []types.Event) {
	if len(events) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total events: %d\n\n", len(events)))

	count := min(len(events), maxItemsToShow)
	for i := 0; i < count; i++ {
		ev := events[i]
		sb.WriteString(fmt.Sprintf("#%d  [%s] %s\n", ev.ID, ev.Company, ev.Title))
		if ev.Period != "" {
			sb.WriteString(fmt.Sprintf("    Period: %s\n", ev.Period))
		}
		if ev.Status != "" {
			sb.WriteString(fmt.Sprintf("    Status: %s", ev.Status))
			if ev.Locked {
				sb.WriteString("  (locked)")
			}
			sb.WriteString("\n")
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(events) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more events", len(events)-maxItemsToShow))
	}

	p.printBox("EVENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintInsight outputs one insight with its levels and tags.
func (p *Printer) PrintInsight(insight types.Insight) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Source:     %s\n", insight.Source))
	sb.WriteString(fmt.Sprintf("Benefit:    %s\n", insight.BenefitLevel))
	sb.WriteString(fmt.Sprintf("Threat:     %s\n", insight.ThreatLevel))
	sb.WriteString(fmt.Sprintf("Targeting:  %s\n", insight.TargetClarity))
	if insight.Summary != "" {
		sb.WriteString(fmt.Sprintf("Summary:    %s\n", insight.Summary))
	}
	if len(insight.CompetitivePoints) > 0 {
		sb.WriteString("\nCompetitive points:\n")
		count := min(len(insight.CompetitivePoints), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", insight.CompetitivePoints[i]))
		}
	}
	sb.WriteString(fmt.Sprintf("\nConfidence: %.2f", insight.Confidence))

	p.printBox("INSIGHT", sb.String())
}
