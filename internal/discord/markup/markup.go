package markup

import (
	"fmt"
	"strings"
)

func FormatMention(userID string) string {
	return fmt.Sprintf("<@%s>", userID)
}

// FormatMentions はユーザーIDをメンションに変換して sep で連結する
func FormatMentions[T ~string](userIDs []T, sep string) string {
	mentions := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		mentions = append(mentions, FormatMention(string(id)))
	}
	return strings.Join(mentions, sep)
}

func FormatStrikethrough(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = fmt.Sprintf("~~%s~~", line)
		}
	}
	return strings.Join(lines, "\n")
}

func FormatBold(text string) string {
	return fmt.Sprintf("**%s**", text)
}
