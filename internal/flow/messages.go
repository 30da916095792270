package flow

import (
	"fmt"
	"strings"

	"github.com/remote-first-institute/aiwo/internal/models"
)

// PlaybookURL points at the public remote work playbook.
const PlaybookURL = "https://remotehow.notion.site/Remote-Work-Playbook-Template-b537fb9b503f4a0a9296774d464777d6"

// PlaybookUpsell is the playbook link text shown with lower-tier scores.
const PlaybookUpsell = "Get access to the world’s best playbook on #remotework, and improve your score."

// TierMessage renders the score announcement for the given text format. The
// tier thresholds are: above 90 remote pro, 51-90 needs guidance, 50 and
// below needs assistance.
func TierMessage(score int, format models.TextFormat) string {
	var bold, paragraph, playbook string
	switch format {
	case models.TextFormatSlack:
		bold = "*"
		paragraph = "\n"
		playbook = fmt.Sprintf("<%s|%s>", PlaybookURL, PlaybookUpsell)
	default:
		bold = "**"
		paragraph = "\n\n"
		playbook = fmt.Sprintf("[%s](%s)", PlaybookUpsell, PlaybookURL)
	}

	playbook += paragraph + "Let’s dive in 🚀"

	message := fmt.Sprintf("%sYour Remote Work Score is %d%%!%s ", bold, score, bold)

	switch {
	case score > 90:
		message += "🧠\nYou are a REMOTE PRO — super well done! ⭐⭐⭐ Keep rocking!"
	case score > 50:
		message += "👏👏👏\nYou are familiar with remote work but need more guidance to feel fully comfortable in it. Let us help you! 🏗️\n" + playbook
	default:
		message += "😅\nYou need more assistance with remote work to feel fully comfortable in it. Let us help you! 🏗️\n" + playbook
	}
	return strings.ReplaceAll(message, "\n", paragraph)
}
