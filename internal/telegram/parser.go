package telegram

import (
	"regexp"
	"strings"
)

// Outcome statuses a command can request
const (
	StatusSatisfactory   = "satisfactory"
	StatusUnsatisfactory = "unsatisfactory"
)

// Command is a report request extracted from a chat message
type Command struct {
	Party    string
	Customer string
	Status   string
}

// IsSatisfactory reports whether the command asks for a passing report
func (c Command) IsSatisfactory() bool {
	return c.Status == StatusSatisfactory
}

// commandPatterns are tried in order; the first match wins
var commandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)report.*?party[:\s]+([^,]+).*?customer[:\s]+([^,]+).*?(satisfactory|unsatisfactory)`),
	regexp.MustCompile(`(?i)banao.*?party[:\s]+([^,]+).*?customer[:\s]+([^,]+).*?(satisfactory|unsatisfactory)`),
	regexp.MustCompile(`(?i)create.*?party[:\s]+([^,]+).*?customer[:\s]+([^,]+).*?(satisfactory|unsatisfactory)`),
	regexp.MustCompile(`(?i)([^,]+)\s*[-,]\s*([^,]+)\s*[-,]\s*(satisfactory|unsatisfactory)`),
}

// ParseCommand extracts party, customer and status from free text such as
// "ABC Foods - Ali Ahmed - Satisfactory" or
// "Report banao - Party: ABC Foods, Customer: Ali Ahmed, Satisfactory".
func ParseCommand(text string) (Command, bool) {
	for _, pattern := range commandPatterns {
		m := pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		return Command{
			Party:    strings.TrimSpace(m[1]),
			Customer: strings.TrimSpace(m[2]),
			Status:   strings.ToLower(m[3]),
		}, true
	}
	return Command{}, false
}

// IsHelpCommand matches /start and /help, with or without a bot mention
func IsHelpCommand(text string) bool {
	cmd := strings.TrimSpace(text)
	if i := strings.IndexByte(cmd, '@'); i > 0 {
		cmd = cmd[:i]
	}
	return cmd == "/start" || cmd == "/help"
}
