package classifier

import (
	"strings"

	"github.com/upgraded-notifs/notifs/internal/domain"
)

// maxContentRunes bounds how much of the listing body is sent to the model.
const maxContentRunes = 2000

// BuildPrompt renders the classification request for one listing.
func BuildPrompt(listing domain.Listing, roles []string) string {
	var b strings.Builder

	b.WriteString("Classify this consulting assignment against a set of role categories.\n\n")
	b.WriteString("Title: ")
	b.WriteString(listing.Title)
	b.WriteString("\nDescription: ")
	b.WriteString(headRunes(listing.Content, maxContentRunes))
	b.WriteString("\n\nRole categories:\n")
	for i, r := range roles {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- ")
		b.WriteString(r)
	}
	b.WriteString(`

Which categories does this assignment match? A match means the role is primarily about that type of work. Be inclusive but accurate: a full-stack role with heavy ML work should match both.

Respond with ONLY a JSON array of matching category names, exactly as written above.
If none match, respond with [].

Examples of valid responses:
["AI", "Machine learning"]
["Full stack"]
[]`)

	return b.String()
}

func headRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
