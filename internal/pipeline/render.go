package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/masonvector/masonvector/internal/model"
)

// Renderer writes dedupe reports
type Renderer struct {
	includeRecords bool
}

// NewRenderer creates a new renderer. includeRecords lists every duplicate
// and fresh record in Markdown output, not just the counts and reviews.
func NewRenderer(includeRecords bool) *Renderer {
	return &Renderer{includeRecords: includeRecords}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes a human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// Markdown renders the report body
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Claimant Dedupe Report\n\n")
	fmt.Fprintf(&b, "- Run: `%s`\n", report.RunID)
	fmt.Fprintf(&b, "- Generated: %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- Mode: %s\n", report.Mode)
	if report.Source != "" {
		fmt.Fprintf(&b, "- Incoming: `%s`\n", report.Source)
	}
	if report.Corpus != "" {
		fmt.Fprintf(&b, "- Corpus: `%s`\n", report.Corpus)
	}
	b.WriteString("\n## Summary\n\n")
	b.WriteString("| Incoming | Existing | Duplicates | Fresh | Flagged for review |\n")
	b.WriteString("|---:|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %d | %d | %d | %d | %d |\n",
		report.Counts.Incoming, report.Counts.Existing, report.Counts.Duplicates,
		report.Counts.Fresh, report.Counts.Flagged)
	if report.Committed > 0 {
		fmt.Fprintf(&b, "\n%d fresh records were committed to the corpus.\n", report.Committed)
	}

	if len(report.Reviews) > 0 {
		fmt.Fprintf(&b, "\n## Needs Review (threshold %.2f)\n\n", report.Threshold)
		b.WriteString("These records did not match the exact key but resemble existing claimants.\n\n")
		for _, rv := range report.Reviews {
			fmt.Fprintf(&b, "### %s\n\n", describe(rv.Claimant))
			for _, c := range rv.Candidates {
				fmt.Fprintf(&b, "- %s: %s", describe(c.Entity), c.Reason)
				if c.Reason == model.ReasonName {
					fmt.Fprintf(&b, " (%.2f)", c.Score)
				}
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
	}

	if r.includeRecords {
		writeRecords(&b, "Duplicates", report.Duplicates)
		writeRecords(&b, "Fresh", report.Fresh)
	}

	return b.String()
}

// RenderSummary prints a short summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Dedupe Complete (%s)\n", report.Mode)
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Incoming:    %d\n", report.Counts.Incoming)
	fmt.Fprintf(w, "  Existing:    %d\n", report.Counts.Existing)
	fmt.Fprintf(w, "  Duplicates:  %d\n", report.Counts.Duplicates)
	fmt.Fprintf(w, "  Fresh:       %d\n", report.Counts.Fresh)
	fmt.Fprintf(w, "  Flagged:     %d\n", report.Counts.Flagged)
	if report.Committed > 0 {
		fmt.Fprintf(w, "  Committed:   %d\n", report.Committed)
	}
	fmt.Fprintf(w, "\n")
}

func writeRecords(b *strings.Builder, title string, records []model.Claimant) {
	if len(records) == 0 {
		return
	}
	fmt.Fprintf(b, "\n## %s (%d)\n\n", title, len(records))
	b.WriteString("| Name | DOB | State | Amount | Email | Claim ID |\n")
	b.WriteString("|---|---|---|---:|---|---|\n")
	for _, c := range records {
		fmt.Fprintf(b, "| %s | %s | %s | %.2f | %s | %s |\n",
			cell(c.Name), cell(c.DOB), cell(c.State), c.Amount, cell(c.Email), cell(c.ClaimID))
	}
}

func describe(c model.Claimant) string {
	parts := []string{c.Name}
	if c.ID != "" {
		parts = append(parts, "id "+c.ID)
	}
	if c.DOB != "" {
		parts = append(parts, "dob "+c.DOB)
	}
	if c.State != "" {
		parts = append(parts, c.State)
	}
	return strings.Join(parts, ", ")
}

func cell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
