package handler

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
)

// Discordへの3秒以内のACK後、1イベントの処理に使える時間
const eventTimeout = 5 * time.Second

// EventObserver はイベントごとの処理時間と失敗を記録する
type EventObserver interface {
	ObserveEvent(event string, started time.Time, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveEvent(string, time.Time, error) {}

func observerOrNop(observer EventObserver) EventObserver {
	if observer == nil {
		return nopObserver{}
	}
	return observer
}

type baseSlashCommand struct{}

func (b *baseSlashCommand) getOptionMap(interaction *discordgo.Interaction) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	options := interaction.ApplicationCommandData().Options
	optionMap := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		optionMap[opt.Name] = opt
	}
	return optionMap
}

// interaction.UserはDMでのインタラクションユーザーが入る
// サーバーでのインタラクションユーザーはinteraction.Member.User
func interactionUserID(interaction *discordgo.Interaction) string {
	if interaction.Member != nil && interaction.Member.User != nil {
		return interaction.Member.User.ID
	}
	if interaction.User != nil {
		return interaction.User.ID
	}
	return ""
}

// interactionLocale はユーザーのクライアント言語を ja / en に丸める。不明なら fallback を使う
func interactionLocale(interaction *discordgo.Interaction, fallback string) string {
	locale := string(interaction.Locale)
	if locale == "" {
		locale = fallback
	}
	if locale == "" || strings.HasPrefix(locale, "ja") {
		return localeJA
	}
	return localeEN
}

func createContextWithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), eventTimeout)
}

// deferEphemeral は本人にだけ見える応答を保留してACKする
func deferEphemeral(session *discordgo.Session, interaction *discordgo.Interaction) error {
	return session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
}

func editResponse(session *discordgo.Session, interaction *discordgo.Interaction, content string) error {
	_, err := session.InteractionResponseEdit(interaction, &discordgo.WebhookEdit{
		Content: ptr(content),
	})
	return err
}

func ptr[T any](v T) *T {
	return &v
}
