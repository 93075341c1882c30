package handler

import (
	"fmt"

	"gbf-bot/internal/buildinfo"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const versionCommandName = "version"

type versionSlashCommand struct {
	baseSlashCommand
	logger *zap.SugaredLogger
}

func NewVersionSlashCommand(logger *zap.SugaredLogger) *versionSlashCommand {
	return &versionSlashCommand{
		logger: logger,
	}
}

func (command *versionSlashCommand) CreateCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        versionCommandName,
		Description: "BOTのバージョン情報を表示します。",
	}
}

func (command *versionSlashCommand) InteractionType() discordgo.InteractionType {
	return discordgo.InteractionApplicationCommand
}

func (command *versionSlashCommand) InteractionID() string {
	return versionCommandName
}

func (command *versionSlashCommand) MatchInteractionID(interactionID string) bool {
	return command.InteractionID() == interactionID
}

func (command *versionSlashCommand) Handle(session *discordgo.Session, interaction *discordgo.Interaction) error {
	command.logger.Infow("Version checked",
		"user_id", interactionUserID(interaction),
		"version", buildinfo.Version(),
		"commit", buildinfo.ShortCommitID(),
	)

	return session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{versionEmbed()},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
}

func versionEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("🤖 gbf-bot %s", buildinfo.VersionWithPrefix()),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Commit", Value: buildinfo.CommitID()},
			{Name: "Built", Value: buildinfo.BuildTime()},
			{Name: "Go(build)", Value: buildinfo.GoBuild()},
		},
	}
}
