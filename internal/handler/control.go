package handler

import (
	"context"
	"time"

	"gbf-bot/internal/recruit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// メッセージのコンテキストメニューに出るコマンド名
const (
	cancelCommandName = "募集をキャンセル"
	startCommandName  = "募集を開始"
)

type RecruitmentController interface {
	Get(ctx context.Context, key recruit.MessageKey) (*recruit.Recruitment, error)
	Cancel(ctx context.Context, key recruit.MessageKey) error
	Start(ctx context.Context, key recruit.MessageKey) error
}

// controlMessageCommand は募集メッセージを右クリックして実行する操作
type controlMessageCommand struct {
	name     string
	done     text
	action   func(ctx context.Context, key recruit.MessageKey) error
	service  RecruitmentController
	roles    RoleChecker
	locale   LocaleProvider
	observer EventObserver
	logger   *zap.SugaredLogger
}

func NewCancelMessageCommand(
	service RecruitmentController,
	roles RoleChecker,
	locale LocaleProvider,
	observer EventObserver,
	logger *zap.SugaredLogger,
) *controlMessageCommand {
	return &controlMessageCommand{
		name:     cancelCommandName,
		done:     textCancelled,
		action:   service.Cancel,
		service:  service,
		roles:    roles,
		locale:   locale,
		observer: observerOrNop(observer),
		logger:   logger,
	}
}

func NewStartMessageCommand(
	service RecruitmentController,
	roles RoleChecker,
	locale LocaleProvider,
	observer EventObserver,
	logger *zap.SugaredLogger,
) *controlMessageCommand {
	return &controlMessageCommand{
		name:     startCommandName,
		done:     textStarted,
		action:   service.Start,
		service:  service,
		roles:    roles,
		locale:   locale,
		observer: observerOrNop(observer),
		logger:   logger,
	}
}

func (command *controlMessageCommand) CreateCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Type: discordgo.MessageApplicationCommand,
		Name: command.name,
	}
}

func (command *controlMessageCommand) InteractionType() discordgo.InteractionType {
	return discordgo.InteractionApplicationCommand
}

func (command *controlMessageCommand) InteractionID() string {
	return command.name
}

func (command *controlMessageCommand) MatchInteractionID(interactionID string) bool {
	return command.InteractionID() == interactionID
}

func (command *controlMessageCommand) Handle(session *discordgo.Session, interaction *discordgo.Interaction) (err error) {
	started := time.Now()
	defer func() { command.observer.ObserveEvent(command.name, started, err) }()

	if err := deferEphemeral(session, interaction); err != nil {
		return err
	}

	locale := interactionLocale(interaction, command.locale.Locale())
	key := recruit.MessageKey{
		GuildID:   recruit.GuildID(interaction.GuildID),
		ChannelID: recruit.ChannelID(interaction.ChannelID),
		MessageID: recruit.MessageID(interaction.ApplicationCommandData().TargetID),
	}

	command.logger.Infow("Control command received",
		"command", command.name,
		"guild_id", key.GuildID,
		"channel_id", key.ChannelID,
		"message_id", key.MessageID,
		"user_id", interactionUserID(interaction),
	)

	ctx, cancel := createContextWithTimeout()
	defer cancel()

	err = command.execute(ctx, session, interaction, key)
	if err != nil {
		_ = editResponse(session, interaction, errorText(err).in(locale))
		if isUserError(err) {
			return nil
		}
		return err
	}
	return editResponse(session, interaction, command.done.in(locale))
}

// execute は作成者または管理ロールを持つメンバーの場合だけ操作を実行する
func (command *controlMessageCommand) execute(
	ctx context.Context,
	session *discordgo.Session,
	interaction *discordgo.Interaction,
	key recruit.MessageKey,
) error {
	r, err := command.service.Get(ctx, key)
	if err != nil {
		return err
	}

	actorID := recruit.UserID(interactionUserID(interaction))
	if actorID != r.AuthorID && !command.roles.HasRole(session, interaction.GuildID, interaction.Member) {
		return recruit.ErrForbidden
	}

	return command.action(ctx, key)
}
