package main

import (
	"fmt"
	"math"
	"strings"
)

// The structured source is a single known table on the backend side.
const structuredSourceName = "template_fields.csv"

type visualWeight int

const (
	weightNeutral visualWeight = iota
	weightLow
	weightMedium
	weightHigh
)

// displayModel is the display-ready shape of a queryResult. normalizeResult is
// pure and total: every optional field of the wire shape has a defined
// rendering, including full absence.
type displayModel struct {
	Answer        string
	ToolIcon      string
	ToolLabel     string
	Confidence    string
	Weight        visualWeight
	SourceSummary string
	HasDetails    bool
	DetailLines   []string
	Reasoning     string
}

func normalizeResult(result queryResult) displayModel {
	icon, label := toolPresentation(result.ToolUsed)
	details := sourceDetailLines(result.Sources)
	reasoning := ""
	if result.Classification != nil {
		reasoning = strings.TrimSpace(result.Classification.Reasoning)
	}
	confidence := strings.ToLower(strings.TrimSpace(result.Confidence))
	return displayModel{
		Answer:        strings.TrimSpace(result.Answer),
		ToolIcon:      icon,
		ToolLabel:     label,
		Confidence:    confidence,
		Weight:        confidenceToWeight(confidence),
		SourceSummary: summarizeSources(result.Sources),
		HasDetails:    len(details) > 0,
		DetailLines:   details,
		Reasoning:     reasoning,
	}
}

// toolPresentation is a closed table; unrecognized tags fall through to a
// generic entry rather than failing.
func toolPresentation(tool string) (icon string, label string) {
	switch strings.ToLower(strings.TrimSpace(tool)) {
	case "csv":
		return "📊", "template lookup"
	case "pdf":
		return "📄", "document retrieval"
	case "clarification":
		return "❓", "clarification needed"
	default:
		return "🔧", "unknown tool"
	}
}

func confidenceToWeight(confidence string) visualWeight {
	switch strings.ToLower(strings.TrimSpace(confidence)) {
	case "high":
		return weightHigh
	case "medium":
		return weightMedium
	case "low":
		return weightLow
	default:
		return weightNeutral
	}
}

func summarizeSources(sources *sourcesBundle) string {
	if sources == nil {
		return "No sources"
	}
	parts := make([]string, 0, 2)
	if n := len(sources.CSVResults); n > 0 {
		parts = append(parts, fmt.Sprintf("%s (%d entries)", structuredSourceName, n))
	}
	if n := len(sources.PDFResults); n > 0 {
		names := distinctSourceNames(sources.PDFResults)
		if len(names) > 0 {
			parts = append(parts, fmt.Sprintf("%s (%d sections)", strings.Join(names, ", "), n))
		} else {
			parts = append(parts, fmt.Sprintf("PDF documents (%d sections)", n))
		}
	}
	if len(parts) == 0 {
		return "No sources"
	}
	return strings.Join(parts, " + ")
}

// distinctSourceNames keeps first-seen order while dropping duplicates and
// entries with no name.
func distinctSourceNames(results []pdfResult) []string {
	seen := make(map[string]struct{}, len(results))
	names := make([]string, 0, len(results))
	for _, result := range results {
		name := strings.TrimSpace(result.Source)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

func relevancePercent(score *float64) string {
	if score == nil {
		return ""
	}
	return fmt.Sprintf("%d%%", int(math.Round(*score*100)))
}

func sourceDetailLines(sources *sourcesBundle) []string {
	if sources == nil {
		return nil
	}
	lines := make([]string, 0, len(sources.CSVResults)+2*len(sources.PDFResults)+2)
	if len(sources.CSVResults) > 0 {
		lines = append(lines, "📊 "+structuredSourceName+":")
		for _, entry := range sources.CSVResults {
			line := fmt.Sprintf("- %s - %s", entry.TemplateName, entry.FieldLabel)
			if pct := relevancePercent(entry.RelevanceScore); pct != "" {
				line += fmt.Sprintf(" (relevance %s)", pct)
			}
			lines = append(lines, line)
		}
	}
	if len(sources.PDFResults) > 0 {
		lines = append(lines, "📄 PDF documents:")
		for _, entry := range sources.PDFResults {
			name := strings.TrimSpace(entry.Source)
			if name == "" {
				name = "PDF document"
			}
			line := fmt.Sprintf("- %s - page %d", name, entry.Page)
			if pct := relevancePercent(entry.RelevanceScore); pct != "" {
				line += fmt.Sprintf(" (relevance %s)", pct)
			}
			lines = append(lines, line)
			if len(entry.TermsMatched) > 0 {
				lines = append(lines, "  terms: "+strings.Join(entry.TermsMatched, ", "))
			}
		}
	}
	return lines
}
