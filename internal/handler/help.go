package handler

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const helpCommandName = "help"

type helpSlashCommand struct {
	locale LocaleProvider
	logger *zap.SugaredLogger
}

func NewHelpSlashCommand(locale LocaleProvider, logger *zap.SugaredLogger) *helpSlashCommand {
	return &helpSlashCommand{
		locale: locale,
		logger: logger,
	}
}

func (command *helpSlashCommand) CreateCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        helpCommandName,
		Description: "ヘルプを表示します",
		NameLocalizations: &map[discordgo.Locale]string{
			discordgo.Japanese: "ヘルプ",
		},
	}
}

func (command *helpSlashCommand) InteractionType() discordgo.InteractionType {
	return discordgo.InteractionApplicationCommand
}

func (command *helpSlashCommand) InteractionID() string {
	return helpCommandName
}

func (command *helpSlashCommand) MatchInteractionID(interactionID string) bool {
	return command.InteractionID() == interactionID
}

func (command *helpSlashCommand) Handle(session *discordgo.Session, interaction *discordgo.Interaction) error {
	command.logger.Debugw("Help requested", "user_id", interactionUserID(interaction))

	return session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{helpEmbed(interactionLocale(interaction, command.locale.Locale()))},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func helpEmbed(locale string) *discordgo.MessageEmbed {
	if locale == localeEN {
		return &discordgo.MessageEmbed{
			Title:       "GBF Discord Bot Help",
			Description: "This bot helps manage Granblue Fantasy multi-battle recruitments in Discord servers.",
			Fields: []*discordgo.MessageEmbedField{
				{
					Name:  "/recruit",
					Value: "Create a recruitment with element reactions.\nUsage: `/recruit quest:<quest> [battle_type:<type>] [event_date:<date>]`",
				},
				{
					Name:  cancelCommandName + " / " + startCommandName,
					Value: "Right-click a recruitment message → Apps. Available to the author or members with the control role.",
				},
				{
					Name:  "/environ_load",
					Value: "Reload settings from the database.\nNote: Requires the control role.",
				},
				{
					Name:  "/help",
					Value: "Show this help message.",
				},
			},
			Color: 0x0099ff,
		}
	}

	return &discordgo.MessageEmbed{
		Title:       "GBF Discord Bot ヘルプ",
		Description: "グランブルーファンタジーのマルチバトル募集を管理します。",
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  "/recruit",
				Value: "属性リアクション付きの募集を作成します。\n使い方: `/recruit quest:<クエスト> [battle_type:<攻略方法>] [event_date:<開始日時>]`\n開始日時の例: `12/25 21:00` `明日 22時` `3日後`",
			},
			{
				Name:  cancelCommandName + " / " + startCommandName,
				Value: "募集メッセージを右クリック → アプリ から実行します。募集の作成者か管理ロールを持つメンバーのみ実行できます。",
			},
			{
				Name:  "/environ_load",
				Value: "Botの設定値をデータベースから読み込みます。\n管理ロールが必要です。",
			},
			{
				Name:  "/help",
				Value: "このヘルプを表示します。",
			},
		},
		Color: 0x0099ff,
	}
}
