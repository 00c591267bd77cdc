package bootstrap

import (
	"fmt"
	"strings"
	"time"

	"github.com/kbukum/cradle/component"
	"github.com/kbukum/cradle/logger"
)

// Summary describes the started application for the startup log.
type Summary struct {
	Name            string
	Version         string
	Environment     string
	StartupDuration time.Duration
	Components      []ComponentInfo
	Tracing         bool
	Metrics         bool
}

// ComponentInfo is the description and health of one component.
type ComponentInfo struct {
	component.Description
	Health component.Health
}

// Lines renders the summary as log lines.
func (s *Summary) Lines() []string {
	lines := []string{
		fmt.Sprintf("%s %s (%s) started in %s", s.Name, s.Version, s.Environment, s.StartupDuration.Round(time.Millisecond)),
	}
	for _, c := range s.Components {
		line := fmt.Sprintf("  %s [%s] %s: %s", statusIcon(c.Health.Status), c.Type, c.Name, c.Details)
		if c.Health.Message != "" {
			line += " (" + c.Health.Message + ")"
		}
		lines = append(lines, line)
	}
	lines = append(lines, "  telemetry: "+telemetryLabel(s.Tracing, s.Metrics))
	return lines
}

// Log writes the summary at info level.
func (s *Summary) Log(log *logger.Logger) {
	for _, line := range s.Lines() {
		log.Info(line)
	}
}

func statusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✓"
	case component.StatusDegraded:
		return "!"
	default:
		return "✗"
	}
}

func telemetryLabel(tracing, metrics bool) string {
	var enabled []string
	if tracing {
		enabled = append(enabled, "tracing")
	}
	if metrics {
		enabled = append(enabled, "metrics")
	}
	if len(enabled) == 0 {
		return "off"
	}
	return strings.Join(enabled, "+")
}
