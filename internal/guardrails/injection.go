// Package guardrails screens chat messages before they reach the model.
package guardrails

import (
	"log/slog"
	"strings"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
)

const ReasonInjection = "message looks like an attempt to override the assistant's instructions"

type pattern struct {
	text   string
	weight float64
	flag   string
}

var injectionPatterns = []pattern{
	{"ignore previous instructions", 0.9, "override_attempt"},
	{"ignore all previous", 0.9, "override_attempt"},
	{"disregard your instructions", 0.9, "override_attempt"},
	{"forget your instructions", 0.85, "override_attempt"},
	{"you are now", 0.7, "role_hijack"},
	{"pretend you are", 0.7, "role_hijack"},
	{"system prompt:", 0.8, "system_leak"},
	{"reveal your system", 0.8, "system_leak"},
	{"show me your prompt", 0.8, "system_leak"},
	{"jailbreak", 0.9, "jailbreak"},
	{"do anything now", 0.85, "jailbreak"},
	{"</system>", 0.8, "tag_injection"},
	{"<system>", 0.8, "tag_injection"},
	{"```system", 0.7, "format_injection"},
}

// PromptInjectionDetector rejects messages matching known override phrasing.
// It is heuristic only and never calls out.
type PromptInjectionDetector struct {
	threshold float64
}

func NewPromptInjectionDetector(threshold float64) *PromptInjectionDetector {
	if threshold <= 0 {
		threshold = 0.7
	}
	return &PromptInjectionDetector{threshold: threshold}
}

// Score returns the highest matching pattern weight and every flag raised.
func (d *PromptInjectionDetector) Score(text string) (float64, []string) {
	lower := strings.ToLower(text)
	var flags []string
	score := 0.0
	for _, p := range injectionPatterns {
		if strings.Contains(lower, p.text) {
			if p.weight > score {
				score = p.weight
			}
			flags = append(flags, p.flag)
		}
	}
	return score, flags
}

// Screen returns a ValidationError when text scores at or above the threshold.
func (d *PromptInjectionDetector) Screen(text string) error {
	score, flags := d.Score(text)
	if score < d.threshold {
		return nil
	}
	slog.Warn("message rejected by injection screen", "score", score, "flags", flags)
	return apperr.Validation(ReasonInjection)
}
