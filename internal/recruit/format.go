package recruit

import (
	"fmt"
	"strings"
	"time"

	"gbf-bot/internal/discord/markup"
)

// 表示用文字列
const (
	participantsTitle     = "参加者一覧"
	noParticipantsYet     = "現在参加者はいません。"
	noParticipantInGroup  = "無し"
	cancelledDescription  = "募集はキャンセルされました。"
	cancelledHeadline     = "この募集はキャンセルされました"
	cancelNoticeText      = "この募集はキャンセルされました。"
	noParticipantsMention = "参加者がいません"
	unknownQuestName      = "不明なクエスト"
	expiryLayout          = "01/02 15:04"
)

const (
	colorOpen      = 0x0099ff
	colorComplete  = 0x2ecc71
	colorCancelled = 0x95a5a6
	colorStarted   = 0xffa500
)

// Formatter は募集の表示内容を組み立てる。I/Oを持たず同じ入力には同じ出力を返す
type Formatter struct {
	location *time.Location
}

func NewFormatter(location *time.Location) *Formatter {
	if location == nil {
		location = time.UTC
	}
	return &Formatter{location: location}
}

func (f *Formatter) FormatExpiry(expiry time.Time) string {
	return expiry.In(f.location).Format(expiryLayout)
}

func (f *Formatter) RecruitmentContent(questName string, battleType BattleType, expiry time.Time) string {
	if questName == "" {
		questName = unknownQuestName
	}

	var b strings.Builder
	if battleType.IsAllElements() {
		fmt.Fprintf(&b, "%sの参加者を募集します。\n参加属性を選んでください", questName)
	} else {
		fmt.Fprintf(&b, "%sの%s参加者を募集します。", questName, battleType.Name())
	}
	fmt.Fprintf(&b, "\n開催日時：%s", f.FormatExpiry(expiry))
	return b.String()
}

func (f *Formatter) ParticipantsEmbed(battleType BattleType, participants *Participants, capacity int) *Embed {
	embed := &Embed{
		Title: participantsTitle,
		Color: colorOpen,
	}

	count := participants.Count()
	if count == 0 {
		embed.Description = noParticipantsYet
	} else {
		embed.Description = fmt.Sprintf("参加者 %d/%d人", count, capacity)
		if capacity > 0 && count >= capacity {
			embed.Color = colorComplete
		}
	}

	embed.Fields = f.emojiFields(battleType, participants)
	return embed
}

func (f *Formatter) emojiFields(battleType BattleType, participants *Participants) []EmbedField {
	emojis := battleType.Emojis()
	fields := make([]EmbedField, 0, len(emojis))
	for _, emoji := range emojis {
		value := markup.FormatMentions(participants.Group(emoji), "  ")
		if value == "" {
			value = noParticipantInGroup
		}
		name := emoji
		if element := ElementName(emoji); element != "" {
			name = fmt.Sprintf("%s %s", emoji, element)
		}
		fields = append(fields, EmbedField{Name: name, Value: value})
	}
	return fields
}

// Recruitment は募集中の募集メッセージ
func (f *Formatter) Recruitment(r *Recruitment, participants *Participants, capacity int) *OutgoingMessage {
	return &OutgoingMessage{
		Content: f.RecruitmentContent(r.QuestName, r.BattleType, r.ExpiryDate),
		Embed:   f.ParticipantsEmbed(r.BattleType, participants, capacity),
	}
}

// Cancelled はキャンセル後に差し替える募集メッセージ
func (f *Formatter) Cancelled(r *Recruitment, participants *Participants) *OutgoingMessage {
	content := markup.FormatStrikethrough(f.RecruitmentContent(r.QuestName, r.BattleType, r.ExpiryDate))
	return &OutgoingMessage{
		Content: fmt.Sprintf("%s\n%s", content, markup.FormatBold(cancelledHeadline)),
		Embed: &Embed{
			Title:       participantsTitle,
			Description: cancelledDescription,
			Color:       colorCancelled,
			Fields:      f.emojiFields(r.BattleType, participants),
		},
	}
}

func (f *Formatter) CancelNotice(r *Recruitment, participants *Participants) *OutgoingMessage {
	content := cancelNoticeText
	if mentions := markup.FormatMentions(participants.Unique(), " "); mentions != "" {
		content = fmt.Sprintf("%s\n%s", mentions, content)
	}
	return &OutgoingMessage{Content: content, ReplyTo: r.MessageID}
}

func (f *Formatter) CompletionNotice(r *Recruitment, participants *Participants, text string) *OutgoingMessage {
	return &OutgoingMessage{
		Content: fmt.Sprintf("%s\n%s", markup.FormatMentions(participants.Unique(), " "), text),
		ReplyTo: r.MessageID,
	}
}

func (f *Formatter) StartNotice(r *Recruitment, participants *Participants) *OutgoingMessage {
	mentions := markup.FormatMentions(participants.Unique(), " ")
	if mentions == "" {
		mentions = noParticipantsMention
	}
	questName := r.QuestName
	if questName == "" {
		questName = unknownQuestName
	}
	return &OutgoingMessage{
		Content: fmt.Sprintf(
			"🚀 **クエスト出発時間です！** 🚀\n\n%s\n\n参加者の皆さん: %s\n\nクエストを開始してください！",
			questName,
			mentions,
		),
		ReplyTo: r.MessageID,
	}
}

// Started は出発後に差し替える募集メッセージ
func (f *Formatter) Started(r *Recruitment, participants *Participants) *OutgoingMessage {
	return &OutgoingMessage{
		Content: f.RecruitmentContent(r.QuestName, r.BattleType, r.ExpiryDate),
		Embed: &Embed{
			Title:       participantsTitle,
			Description: fmt.Sprintf("出発しました（%d人）", participants.Count()),
			Color:       colorStarted,
			Fields:      f.emojiFields(r.BattleType, participants),
		},
	}
}
