package main

import "time"

// Wire types for the retrieval backend. Optional fields are pointers or
// nilable slices so absence is visible to the normalizer instead of being
// guessed at render time.

type queryRequest struct {
	Question  string `json:"question"`
	SessionID string `json:"session_id"`
}

type csvResult struct {
	TemplateName   string   `json:"template_name"`
	FieldLabel     string   `json:"field_label"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
}

type pdfResult struct {
	Source         string   `json:"source,omitempty"`
	Page           int      `json:"page"`
	RelevanceScore *float64 `json:"relevance_score,omitempty"`
	TermsMatched   []string `json:"military_terms_matched,omitempty"`
}

type sourcesBundle struct {
	CSVResults []csvResult `json:"csv_results,omitempty"`
	PDFResults []pdfResult `json:"pdf_results,omitempty"`
}

type classification struct {
	Reasoning string `json:"reasoning"`
}

type queryResult struct {
	Answer         string          `json:"answer"`
	ToolUsed       string          `json:"tool_used"`
	Confidence     string          `json:"confidence,omitempty"`
	Sources        *sourcesBundle  `json:"sources,omitempty"`
	Classification *classification `json:"classification,omitempty"`
	Timestamp      string          `json:"timestamp,omitempty"`
}

type backendHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type exampleQuery struct {
	Category     string `json:"category"`
	Query        string `json:"query"`
	ExpectedTool string `json:"expected_tool"`
}

type examplesResponse struct {
	Examples []exampleQuery `json:"examples"`
}

type healthState int

const (
	healthUnknown healthState = iota
	healthHealthy
	healthDegraded
)

// systemStatus is owned by the health monitor; everything else reads it.
type systemStatus struct {
	State     healthState
	Message   string
	CheckedAt time.Time
}

type historyEntry struct {
	ID        int64
	Question  string
	Result    queryResult
	Timestamp string
}
