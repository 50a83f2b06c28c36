package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// requestError carries a backend-reported failure whose detail is safe to show
// to the user verbatim. Transport failures stay plain errors and are mapped to
// a generic message at the presentation boundary.
type requestError struct {
	Message string
}

func (e *requestError) Error() string {
	return e.Message
}

const genericRequestFailure = "Request failed: backend not reachable"

// userMessage maps a submitQuery error to its user-facing text.
func userMessage(err error) string {
	var reqErr *requestError
	if errors.As(err, &reqErr) && strings.TrimSpace(reqErr.Message) != "" {
		return reqErr.Message
	}
	return genericRequestFailure
}

type gatewayClient struct {
	baseURL string
	client  *http.Client
}

func newGatewayClient(baseURL string, timeout time.Duration) gatewayClient {
	return gatewayClient{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: maxDuration(time.Second, timeout)},
	}
}

// checkHealth never fails to its caller: transport trouble or an unreadable
// body degrades the returned status instead.
func (g gatewayClient) checkHealth() systemStatus {
	degraded := systemStatus{State: healthDegraded, Message: "Backend not available", CheckedAt: time.Now()}
	resp, err := g.client.Get(g.baseURL + "/api/health")
	if err != nil {
		return degraded
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return degraded
	}
	var parsed backendHealth
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return degraded
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return degraded
	}
	state := healthDegraded
	if strings.EqualFold(strings.TrimSpace(parsed.Status), "healthy") {
		state = healthHealthy
	}
	return systemStatus{State: state, Message: parsed.Message, CheckedAt: time.Now()}
}

func (g gatewayClient) submitQuery(req queryRequest) (queryResult, error) {
	buf, err := json.Marshal(req)
	if err != nil {
		return queryResult{}, err
	}
	resp, err := g.client.Post(g.baseURL+"/api/query", "application/json", bytes.NewReader(buf))
	if err != nil {
		return queryResult{}, fmt.Errorf("query request failed on /api/query: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return queryResult{}, fmt.Errorf("query response read failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure struct {
			Detail string `json:"detail"`
		}
		if err := json.Unmarshal(payload, &failure); err == nil && strings.TrimSpace(failure.Detail) != "" {
			return queryResult{}, &requestError{Message: strings.TrimSpace(failure.Detail)}
		}
		return queryResult{}, &requestError{Message: fmt.Sprintf("Query failed with HTTP %d", resp.StatusCode)}
	}
	var result queryResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return queryResult{}, fmt.Errorf("query returned non-json payload: %s", compactSingleLine(string(payload), 120))
	}
	return result, nil
}

// fetchExamples pulls the backend's suggested starter queries. Failures are
// non-fatal; the query pane just shows no hints.
func (g gatewayClient) fetchExamples() ([]exampleQuery, error) {
	resp, err := g.client.Get(g.baseURL + "/api/examples")
	if err != nil {
		return nil, fmt.Errorf("examples request failed: %w", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("examples returned HTTP %d", resp.StatusCode)
	}
	var parsed examplesResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return nil, fmt.Errorf("examples returned non-json payload")
	}
	return parsed.Examples, nil
}
