package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gbf-bot/internal/eventdate"
	"gbf-bot/internal/recruit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// 募集コマンド用の固定値
const (
	recruitCommandName   = "recruit"
	questOptionName      = "quest"
	battleTypeOptionName = "battle_type"
	eventDateOptionName  = "event_date"
)

// Discordのオートコンプリート候補の上限
const maxAutocompleteChoices = 25

type RecruitmentCreator interface {
	Create(ctx context.Context, params recruit.CreateParams) (*recruit.Recruitment, error)
}

type QuestSearcher interface {
	SearchAliases(ctx context.Context, prefix string, limit int) ([]string, error)
}

// LocaleProvider は応答言語の既定値を返す
type LocaleProvider interface {
	Locale() string
}

type recruitSlashCommand struct {
	baseSlashCommand
	service  RecruitmentCreator
	location *time.Location
	locale   LocaleProvider
	observer EventObserver
	logger   *zap.SugaredLogger
	now      func() time.Time
}

func NewRecruitSlashCommand(
	service RecruitmentCreator,
	location *time.Location,
	locale LocaleProvider,
	observer EventObserver,
	logger *zap.SugaredLogger,
) *recruitSlashCommand {
	return &recruitSlashCommand{
		service:  service,
		location: location,
		locale:   locale,
		observer: observerOrNop(observer),
		logger:   logger,
		now:      time.Now,
	}
}

func (command *recruitSlashCommand) CreateCommand() *discordgo.ApplicationCommand {
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(recruit.AllBattleTypes()))
	for _, bt := range recruit.AllBattleTypes() {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  bt.Name(),
			Value: int(bt),
		})
	}

	return &discordgo.ApplicationCommand{
		Name:        recruitCommandName,
		Description: "マルチバトルを募集します",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:         discordgo.ApplicationCommandOptionString,
				Name:         questOptionName,
				Description:  "募集するクエスト",
				Required:     true,
				Autocomplete: true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        battleTypeOptionName,
				Description: "クエストの攻略方法",
				Choices:     choices,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        eventDateOptionName,
				Description: "クエスト開始日時(月/日 時:分)",
			},
		},
	}
}

func (command *recruitSlashCommand) InteractionType() discordgo.InteractionType {
	return discordgo.InteractionApplicationCommand
}

func (command *recruitSlashCommand) InteractionID() string {
	return recruitCommandName
}

func (command *recruitSlashCommand) MatchInteractionID(interactionID string) bool {
	return command.InteractionID() == interactionID
}

func (command *recruitSlashCommand) Handle(session *discordgo.Session, interaction *discordgo.Interaction) (err error) {
	started := time.Now()
	defer func() { command.observer.ObserveEvent(recruitCommandName, started, err) }()

	command.logger.Infow("Recruit command received",
		"guild_id", interaction.GuildID,
		"channel_id", interaction.ChannelID,
		"user_id", interactionUserID(interaction),
	)

	// 反応を待つようにACKを送信
	if err := deferEphemeral(session, interaction); err != nil {
		return err
	}

	locale := interactionLocale(interaction, command.locale.Locale())

	params, err := command.buildParams(interaction)
	if err != nil {
		_ = editResponse(session, interaction, errorText(err).in(locale))
		if isUserError(err) {
			return nil
		}
		return err
	}

	ctx, cancel := createContextWithTimeout()
	defer cancel()

	r, err := command.service.Create(ctx, params)
	var persistenceErr *recruit.PersistenceError
	switch {
	case err == nil:
		return editResponse(session, interaction, textRecruitCreated.in(locale))
	case r != nil && errors.As(err, &persistenceErr):
		// メッセージは投稿済みなので消さずに利用者へ知らせる
		_ = editResponse(session, interaction, textRecruitUntracked.in(locale))
		return err
	default:
		_ = editResponse(session, interaction, errorText(err).in(locale))
		return err
	}
}

// buildParams はコマンド引数から募集の作成内容を組み立てる
func (command *recruitSlashCommand) buildParams(interaction *discordgo.Interaction) (recruit.CreateParams, error) {
	optionMap := command.getOptionMap(interaction)

	params := recruit.CreateParams{
		GuildID:    recruit.GuildID(interaction.GuildID),
		ChannelID:  recruit.ChannelID(interaction.ChannelID),
		AuthorID:   recruit.UserID(interactionUserID(interaction)),
		BattleType: recruit.BattleTypeDefault,
	}

	opt, ok := optionMap[questOptionName]
	if !ok || opt == nil || strings.TrimSpace(opt.StringValue()) == "" {
		return params, errQuestRequired
	}
	params.QuestText = strings.TrimSpace(opt.StringValue())

	if opt, ok := optionMap[battleTypeOptionName]; ok && opt != nil {
		bt, err := recruit.ParseBattleType(int(opt.IntValue()))
		if err != nil {
			return params, err
		}
		params.BattleType = bt
	}

	dateText := ""
	if opt, ok := optionMap[eventDateOptionName]; ok && opt != nil {
		dateText = opt.StringValue()
	}
	expiry, err := eventdate.Parse(command.now(), dateText, command.location)
	if err != nil {
		return params, fmt.Errorf("invalid %s: %w", eventDateOptionName, err)
	}
	params.ExpiryDate = expiry

	return params, nil
}

// questAutocomplete は quest 引数の入力中に別名の候補を返す
type questAutocomplete struct {
	baseSlashCommand
	quests QuestSearcher
	logger *zap.SugaredLogger
}

func NewQuestAutocomplete(quests QuestSearcher, logger *zap.SugaredLogger) *questAutocomplete {
	return &questAutocomplete{
		quests: quests,
		logger: logger,
	}
}

func (command *questAutocomplete) InteractionType() discordgo.InteractionType {
	return discordgo.InteractionApplicationCommandAutocomplete
}

func (command *questAutocomplete) InteractionID() string {
	return recruitCommandName
}

func (command *questAutocomplete) MatchInteractionID(interactionID string) bool {
	return command.InteractionID() == interactionID
}

func (command *questAutocomplete) Handle(session *discordgo.Session, interaction *discordgo.Interaction) error {
	ctx, cancel := createContextWithTimeout()
	defer cancel()

	choices, err := command.choices(ctx, interaction)
	if err != nil {
		// 候補が出せなくても入力自体は続けられるので空で返す
		command.logger.Warnw("Failed to search quest aliases", "error", err)
		choices = []*discordgo.ApplicationCommandOptionChoice{}
	}

	return session.InteractionRespond(interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{
			Choices: choices,
		},
	})
}

func (command *questAutocomplete) choices(ctx context.Context, interaction *discordgo.Interaction) ([]*discordgo.ApplicationCommandOptionChoice, error) {
	prefix := ""
	for _, opt := range interaction.ApplicationCommandData().Options {
		if opt.Name == questOptionName && opt.Focused {
			prefix = strings.TrimSpace(opt.StringValue())
			break
		}
	}

	aliases, err := command.quests.SearchAliases(ctx, prefix, maxAutocompleteChoices)
	if err != nil {
		return nil, err
	}

	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(aliases))
	for _, alias := range aliases {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{
			Name:  alias,
			Value: alias,
		})
	}
	return choices, nil
}
