package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCheckHealthHealthy(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/health" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","message":"all processors loaded"}`))
	}))
	defer server.Close()

	status := newGatewayClient(server.URL, 5*time.Second).checkHealth()
	if status.State != healthHealthy {
		t.Fatalf("expected healthy state, got %d", status.State)
	}
	if status.Message != "all processors loaded" {
		t.Fatalf("unexpected message: %q", status.Message)
	}
	if status.CheckedAt.IsZero() {
		t.Fatalf("expected CheckedAt to be stamped")
	}
}

func TestCheckHealthNonHealthyStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"initializing"}`))
	}))
	defer server.Close()

	status := newGatewayClient(server.URL, 5*time.Second).checkHealth()
	if status.State != healthDegraded {
		t.Fatalf("expected degraded state for non-healthy status, got %d", status.State)
	}
}

func TestCheckHealthDegradesOnTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	status := newGatewayClient(server.URL, time.Second).checkHealth()
	if status.State != healthDegraded {
		t.Fatalf("expected degraded state on transport failure, got %d", status.State)
	}
	if status.Message == "" {
		t.Fatalf("expected a generic message on transport failure")
	}
}

func TestCheckHealthDegradesOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	status := newGatewayClient(server.URL, time.Second).checkHealth()
	if status.State != healthDegraded {
		t.Fatalf("expected degraded state on malformed body, got %d", status.State)
	}
}

func TestSubmitQuerySuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/query" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Question != "What is the role of the S6 during MDMP?" {
			t.Fatalf("unexpected question: %q", req.Question)
		}
		if !strings.HasPrefix(req.SessionID, "session-") {
			t.Fatalf("unexpected session id: %q", req.SessionID)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"answer": "The S6 plans the communications architecture.",
			"tool_used": "pdf",
			"confidence": "high",
			"sources": {"pdf_results": [{"source": "FM5-0.pdf", "page": 112, "relevance_score": 0.78}]},
			"classification": {"reasoning": "doctrinal retrieval"}
		}`))
	}))
	defer server.Close()

	client := newGatewayClient(server.URL, 5*time.Second)
	result, err := client.submitQuery(queryRequest{
		Question:  "What is the role of the S6 during MDMP?",
		SessionID: newSessionID(),
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if result.ToolUsed != "pdf" || result.Confidence != "high" {
		t.Fatalf("unexpected result metadata: %+v", result)
	}
	if result.Sources == nil || len(result.Sources.PDFResults) != 1 {
		t.Fatalf("expected one pdf result, got %+v", result.Sources)
	}
	if result.Sources.PDFResults[0].RelevanceScore == nil || *result.Sources.PDFResults[0].RelevanceScore != 0.78 {
		t.Fatalf("expected relevance score 0.78")
	}
	if result.Classification == nil || result.Classification.Reasoning != "doctrinal retrieval" {
		t.Fatalf("expected classification reasoning, got %+v", result.Classification)
	}
}

func TestSubmitQueryBackendDetailSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail":"Failed to initialize RAG agent. Issues: OPENAI_API_KEY not set"}`))
	}))
	defer server.Close()

	_, err := newGatewayClient(server.URL, time.Second).submitQuery(queryRequest{Question: "q", SessionID: "s"})
	if err == nil {
		t.Fatalf("expected error for 500 response")
	}
	var reqErr *requestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected requestError, got %T", err)
	}
	if userMessage(err) != "Failed to initialize RAG agent. Issues: OPENAI_API_KEY not set" {
		t.Fatalf("expected backend detail verbatim, got %q", userMessage(err))
	}
}

func TestSubmitQueryNonSuccessWithoutDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream exploded"))
	}))
	defer server.Close()

	_, err := newGatewayClient(server.URL, time.Second).submitQuery(queryRequest{Question: "q", SessionID: "s"})
	var reqErr *requestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("expected requestError, got %T", err)
	}
	if !strings.Contains(reqErr.Message, "502") {
		t.Fatalf("expected status code in fallback message, got %q", reqErr.Message)
	}
}

func TestSubmitQueryTransportErrorMapsGeneric(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := newGatewayClient(server.URL, time.Second).submitQuery(queryRequest{Question: "q", SessionID: "s"})
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var reqErr *requestError
	if errors.As(err, &reqErr) {
		t.Fatalf("transport failures must not masquerade as backend detail")
	}
	if userMessage(err) != genericRequestFailure {
		t.Fatalf("expected generic user message, got %q", userMessage(err))
	}
}

func TestSubmitQueryMalformedSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	_, err := newGatewayClient(server.URL, time.Second).submitQuery(queryRequest{Question: "q", SessionID: "s"})
	if err == nil {
		t.Fatalf("expected decode error for malformed success body")
	}
	if userMessage(err) != genericRequestFailure {
		t.Fatalf("expected generic user message for decode failure, got %q", userMessage(err))
	}
}

func TestFetchExamples(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/examples" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"examples":[{"category":"Information Retrieval","query":"What is the role of the S6 during MDMP?","expected_tool":"pdf"}]}`))
	}))
	defer server.Close()

	examples, err := newGatewayClient(server.URL, time.Second).fetchExamples()
	if err != nil {
		t.Fatalf("expected examples fetch to succeed, got %v", err)
	}
	if len(examples) != 1 || examples[0].ExpectedTool != "pdf" {
		t.Fatalf("unexpected examples payload: %+v", examples)
	}
}
