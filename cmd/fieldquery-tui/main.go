package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	defaultAPIBase               = "http://localhost:8000"
	defaultHealthIntervalSeconds = 30
	defaultRequestTimeoutSeconds = 60
)

type appConfig struct {
	apiBase        string
	healthInterval time.Duration
	requestTimeout time.Duration
	altScreen      bool
}

func parseFlags() appConfig {
	cfg := appConfig{}
	flag.StringVar(&cfg.apiBase, "api-base", envOr("FIELDQUERY_API_BASE", defaultAPIBase), "Backend API base URL")
	healthIntervalSeconds := envOrInt("FIELDQUERY_HEALTH_INTERVAL", defaultHealthIntervalSeconds)
	flag.IntVar(&healthIntervalSeconds, "health-interval", healthIntervalSeconds, "Backend health poll interval seconds")
	requestTimeoutSeconds := envOrInt("FIELDQUERY_REQUEST_TIMEOUT", defaultRequestTimeoutSeconds)
	flag.IntVar(&requestTimeoutSeconds, "request-timeout", requestTimeoutSeconds, "Per-request timeout seconds")
	flag.BoolVar(&cfg.altScreen, "alt-screen", envOrBool("FIELDQUERY_ALT_SCREEN", true), "Use alternate screen buffer")
	flag.Parse()

	cfg.apiBase = strings.TrimRight(strings.TrimSpace(cfg.apiBase), "/")
	if cfg.apiBase == "" {
		cfg.apiBase = defaultAPIBase
	}
	cfg.healthInterval = time.Duration(clampInt(healthIntervalSeconds, 5, 600)) * time.Second
	cfg.requestTimeout = time.Duration(clampInt(requestTimeoutSeconds, 1, 300)) * time.Second
	return cfg
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(key string, fallback bool) bool {
	value := strings.TrimSpace(strings.ToLower(os.Getenv(key)))
	switch value {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func truncate(text string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if len(text) <= limit {
		return text
	}
	if limit <= 3 {
		return text[:limit]
	}
	return text[:limit-3] + "..."
}

func compactSingleLine(text string, limit int) string {
	compact := strings.Join(strings.Fields(text), " ")
	return truncate(compact, limit)
}

func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	wrapped := make([]string, 0, len(lines))
	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			wrapped = append(wrapped, "")
			continue
		}
		current := words[0]
		for _, word := range words[1:] {
			if len(current)+1+len(word) <= width {
				current += " " + word
				continue
			}
			wrapped = append(wrapped, current)
			current = word
		}
		wrapped = append(wrapped, current)
	}
	return strings.Join(wrapped, "\n")
}

func nullCoalesce(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}

func onOff(value bool) string {
	if value {
		return "on"
	}
	return "off"
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

func main() {
	cfg := parseFlags()
	p := tea.NewProgram(newModel(cfg), tea.WithMouseCellMotion())
	if cfg.altScreen {
		p = tea.NewProgram(newModel(cfg), tea.WithAltScreen(), tea.WithMouseCellMotion())
	}
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "fieldquery-tui fatal error: %v\n", err)
		os.Exit(1)
	}
}
