package assess

import (
	"encoding/json"
	"fmt"
	"strings"
)

// The assessment engine is asked for structured JSON matching one of four
// fixed schemas. A malformed response never aborts an assessment: each
// field falls back to its named default below, so partial success is
// preserved and tests can assert on the exact substitute values.

// Screen is the first, cheap relevance check. If Relevant is false no
// further calls are made for the document.
type Screen struct {
	Relevant    bool `json:"relevant"`
	Significant bool `json:"significant"`
}

// DefaultScreen is substituted when the screening response cannot be
// parsed: an unreadable answer is treated as not relevant.
var DefaultScreen = Screen{}

// Categories is the closed set of paper types the engine may assign.
var Categories = []string{
	"survey",
	"methodology",
	"architecture",
	"application",
	"theoretical",
	"position",
	"book_chapter",
	"workshop",
	"tool",
	"other",
}

// Per-field defaults substituted on parse failure.
const (
	DefaultCategory  = "other"
	DefaultSummary   = "Summary generation failed"
	DefaultTakeaways = "Takeaway extraction failed"
)

// extractJSON pulls the first JSON object out of a model response, which
// may be wrapped in markdown fences or prose.
func extractJSON(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return s[start : end+1], nil
}

// parseScreen parses a screening response.
func parseScreen(raw string) (Screen, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return Screen{}, err
	}
	var s Screen
	if err := json.Unmarshal([]byte(obj), &s); err != nil {
		return Screen{}, fmt.Errorf("parsing screen response: %w", err)
	}
	return s, nil
}

// parseCategory parses a category response and validates it against the
// closed set.
func parseCategory(raw string) (string, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return "", err
	}
	var resp struct {
		Category string `json:"category"`
	}
	if err := json.Unmarshal([]byte(obj), &resp); err != nil {
		return "", fmt.Errorf("parsing category response: %w", err)
	}

	cat := strings.ToLower(strings.TrimSpace(resp.Category))
	for _, c := range Categories {
		if cat == c {
			return c, nil
		}
	}
	return "", fmt.Errorf("category %q not in closed set", resp.Category)
}

// parseText parses a single-text-field response ({"summary": ...} or
// {"takeaways": ...}).
func parseText(raw, field string) (string, error) {
	obj, err := extractJSON(raw)
	if err != nil {
		return "", err
	}
	var resp map[string]string
	if err := json.Unmarshal([]byte(obj), &resp); err != nil {
		return "", fmt.Errorf("parsing %s response: %w", field, err)
	}
	text := strings.TrimSpace(resp[field])
	if text == "" {
		return "", fmt.Errorf("empty %s in response", field)
	}
	return text, nil
}
