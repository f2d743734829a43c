package terminal

import "strings"

// DefaultMaxContentLength caps how much of a payload is rendered before
// truncation kicks in.
const DefaultMaxContentLength = 20000

// base64Marker flags lines carrying inline binary data, which are useless
// on a terminal and can be enormous.
const base64Marker = "base64"

// CleanContent prepares arbitrary text for terminal display: lines
// containing embedded base64 data are dropped whole, the result is
// truncated to maxLength with a trailing ellipsis, and surrounding
// whitespace is trimmed. The result may be empty; it is never an error.
func CleanContent(content string, maxLength int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}

	if strings.Contains(content, base64Marker) {
		lines := strings.Split(content, "\n")
		kept := make([]string, 0, len(lines))
		for _, line := range lines {
			if !strings.Contains(line, base64Marker) {
				kept = append(kept, line)
			}
		}
		content = strings.Join(kept, "\n")
	}

	if len(content) > maxLength {
		content = content[:maxLength] + "..."
	}

	return strings.TrimSpace(content)
}

// StripFences removes a leading code-fence opener (plain or json-tagged)
// and a trailing closer from text a model wrapped in a markdown code
// block. It is idempotent and performs no JSON validation.
func StripFences(text string) string {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "```json"))
	}
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, "```"))
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "```"))
	}

	return cleaned
}
