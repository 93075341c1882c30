package handler

import (
	"context"
	"fmt"
	"time"

	"gbf-bot/internal/recruit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const environLoadCommandName = "environ_load"

type EnvironmentReloader interface {
	Reload(ctx context.Context) (int, error)
}

// CacheFlusher は再読み込み時に破棄するキャッシュ
type CacheFlusher interface {
	Flush()
}

type environLoadSlashCommand struct {
	reloader EnvironmentReloader
	caches   []CacheFlusher
	roles    RoleChecker
	locale   LocaleProvider
	observer EventObserver
	logger   *zap.SugaredLogger
}

func NewEnvironLoadSlashCommand(
	reloader EnvironmentReloader,
	roles RoleChecker,
	locale LocaleProvider,
	observer EventObserver,
	logger *zap.SugaredLogger,
	caches ...CacheFlusher,
) *environLoadSlashCommand {
	return &environLoadSlashCommand{
		reloader: reloader,
		caches:   caches,
		roles:    roles,
		locale:   locale,
		observer: observerOrNop(observer),
		logger:   logger,
	}
}

func (command *environLoadSlashCommand) CreateCommand() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        environLoadCommandName,
		Description: "環境変数読み込み",
		NameLocalizations: &map[discordgo.Locale]string{
			discordgo.Japanese: "設定値リロード",
		},
		DescriptionLocalizations: &map[discordgo.Locale]string{
			discordgo.Japanese: "Botの設定値をサーバーから読み込みます",
		},
	}
}

func (command *environLoadSlashCommand) InteractionType() discordgo.InteractionType {
	return discordgo.InteractionApplicationCommand
}

func (command *environLoadSlashCommand) InteractionID() string {
	return environLoadCommandName
}

func (command *environLoadSlashCommand) MatchInteractionID(interactionID string) bool {
	return command.InteractionID() == interactionID
}

func (command *environLoadSlashCommand) Handle(session *discordgo.Session, interaction *discordgo.Interaction) (err error) {
	started := time.Now()
	defer func() { command.observer.ObserveEvent(environLoadCommandName, started, err) }()

	if err := deferEphemeral(session, interaction); err != nil {
		return err
	}

	locale := interactionLocale(interaction, command.locale.Locale())

	if !command.roles.HasRole(session, interaction.GuildID, interaction.Member) {
		command.logger.Infow("Environ load rejected",
			"guild_id", interaction.GuildID,
			"user_id", interactionUserID(interaction),
		)
		return editResponse(session, interaction, errorText(recruit.ErrForbidden).in(locale))
	}

	ctx, cancel := createContextWithTimeout()
	defer cancel()

	count, err := command.reload(ctx)
	if err != nil {
		_ = editResponse(session, interaction, errorText(err).in(locale))
		return err
	}
	return editResponse(session, interaction, fmt.Sprintf("%s (%d)", textEnvironLoaded.in(locale), count))
}

// reload は設定値を読み直し、古い値を持つキャッシュを捨てる
func (command *environLoadSlashCommand) reload(ctx context.Context) (int, error) {
	count, err := command.reloader.Reload(ctx)
	if err != nil {
		return 0, err
	}
	for _, cache := range command.caches {
		cache.Flush()
	}
	return count, nil
}
