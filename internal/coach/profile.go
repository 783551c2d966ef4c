package coach

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/claude/fitcoach/internal/models"
)

var profileBlockRe = regexp.MustCompile("(?s)```profile\\s*(.*?)```")

// ExtractProfile looks for a fenced profile block in a coach reply. It
// returns the reply with the block removed and the decoded profile. A block
// that does not decode is dropped from the reply and reported as not found.
func ExtractProfile(reply string) (string, models.FitnessProfile, bool) {
	m := profileBlockRe.FindStringSubmatchIndex(reply)
	if m == nil {
		return reply, models.FitnessProfile{}, false
	}
	body := reply[m[2]:m[3]]
	text := strings.TrimSpace(reply[:m[0]] + reply[m[1]:])

	p, err := models.ParseFitnessProfile(json.RawMessage(strings.TrimSpace(body)))
	if err != nil || p.IsEmpty() {
		return text, models.FitnessProfile{}, false
	}
	return text, p, true
}
