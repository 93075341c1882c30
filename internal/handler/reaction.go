package handler

import (
	"context"
	"time"

	"gbf-bot/internal/logging"
	"gbf-bot/internal/recruit"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const participantEventName = "participant_change"

type ParticipantChangeHandler interface {
	OnParticipantChange(ctx context.Context, key recruit.MessageKey) error
}

// participantReactionListener は募集メッセージへのリアクションの増減を集計処理へ渡す
type participantReactionListener struct {
	service  ParticipantChangeHandler
	observer EventObserver
	logger   *zap.SugaredLogger
	kind     string
}

func NewReactionAddListener(service ParticipantChangeHandler, observer EventObserver, logger *zap.SugaredLogger) *participantReactionListener {
	return newParticipantReactionListener(service, observer, logger, "reaction_add")
}

func NewReactionRemoveListener(service ParticipantChangeHandler, observer EventObserver, logger *zap.SugaredLogger) *participantReactionListener {
	return newParticipantReactionListener(service, observer, logger, "reaction_remove")
}

func newParticipantReactionListener(
	service ParticipantChangeHandler,
	observer EventObserver,
	logger *zap.SugaredLogger,
	kind string,
) *participantReactionListener {
	return &participantReactionListener{
		service:  service,
		observer: observerOrNop(observer),
		logger:   logger,
		kind:     kind,
	}
}

func (listener *participantReactionListener) Handle(_ *discordgo.Session, reaction *discordgo.MessageReaction) error {
	started := time.Now()
	logger := logging.WithEvent(listener.logger, uuid.NewString(), reaction.GuildID, reaction.UserID, listener.kind)

	ctx, cancel := createContextWithTimeout()
	defer cancel()

	key := recruit.MessageKey{
		GuildID:   recruit.GuildID(reaction.GuildID),
		ChannelID: recruit.ChannelID(reaction.ChannelID),
		MessageID: recruit.MessageID(reaction.MessageID),
	}

	err := listener.service.OnParticipantChange(ctx, key)
	listener.observer.ObserveEvent(participantEventName, started, err)
	if err != nil {
		// event_id付きでここで記録するので呼び出し元には返さない
		logger.Errorw("Failed to update participants",
			"channel_id", reaction.ChannelID,
			"message_id", reaction.MessageID,
			"emoji", reaction.Emoji.APIName(),
			"error", err,
		)
		return nil
	}

	logger.Debugw("Participants updated",
		"message_id", reaction.MessageID,
		"elapsed", time.Since(started),
	)
	return nil
}
