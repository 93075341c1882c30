package discord

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type ReactionListener interface {
	Handle(session *discordgo.Session, reaction *discordgo.MessageReaction) error
}

// ReactionDispatcher はボット自身以外のリアクションの追加・削除をリスナーへ渡す
type ReactionDispatcher struct {
	Listeners []ReactionListener
	Logger    *zap.SugaredLogger
}

func (dispatcher *ReactionDispatcher) dispatch(session *discordgo.Session, reaction *discordgo.MessageReaction) {
	if reaction == nil || isSelf(session, reaction.UserID) {
		return
	}
	// DMのリアクションは扱わない
	if reaction.GuildID == "" {
		return
	}

	for _, listener := range dispatcher.Listeners {
		if err := listener.Handle(session, reaction); err != nil {
			dispatcher.Logger.Errorw("Failed to handle reaction",
				"guild_id", reaction.GuildID,
				"channel_id", reaction.ChannelID,
				"message_id", reaction.MessageID,
				"error", err,
			)
		}
	}
}

func (dispatcher *ReactionDispatcher) OnReactionAdd(session *discordgo.Session, reaction *discordgo.MessageReactionAdd) {
	dispatcher.dispatch(session, reaction.MessageReaction)
}

func (dispatcher *ReactionDispatcher) OnReactionRemove(session *discordgo.Session, reaction *discordgo.MessageReactionRemove) {
	dispatcher.dispatch(session, reaction.MessageReaction)
}

func isSelf(session *discordgo.Session, userID string) bool {
	if session == nil || session.State == nil || session.State.User == nil {
		return false
	}
	return session.State.User.ID == userID
}

type SlashCommand interface {
	CreateCommand() *discordgo.ApplicationCommand
}

type InteractionApplicationListener interface {
	SlashCommand
	InteractionListener
}

type InteractionListener interface {
	InteractionType() discordgo.InteractionType
	InteractionID() string
	MatchInteractionID(InteractionID string) bool
	Handle(session *discordgo.Session, interaction *discordgo.Interaction) error
}

type InteractionDispatcher struct {
	Listeners []InteractionListener
	Logger    *zap.SugaredLogger
}

func (dispatcher *InteractionDispatcher) OnInteractionCreate(session *discordgo.Session, interaction *discordgo.InteractionCreate) {
	for _, listener := range dispatcher.Listeners {
		if listener.InteractionType() != interaction.Type {
			continue
		}

		if want := listener.InteractionID(); want != "" {
			if !listener.MatchInteractionID(interactionID(interaction.Interaction)) {
				continue
			}
		}

		if err := listener.Handle(session, interaction.Interaction); err != nil {
			dispatcher.Logger.Errorw("Failed to handle interaction",
				"guild_id", interaction.GuildID,
				"channel_id", interaction.ChannelID,
				"interaction", listener.InteractionID(),
				"error", err,
			)
		}
	}
}

func interactionID(interaction *discordgo.Interaction) string {
	switch interaction.Type {
	case discordgo.InteractionMessageComponent:
		return interaction.MessageComponentData().CustomID
	case discordgo.InteractionModalSubmit:
		return interaction.ModalSubmitData().CustomID
	case discordgo.InteractionApplicationCommand, discordgo.InteractionApplicationCommandAutocomplete:
		return interaction.ApplicationCommandData().Name
	}
	return ""
}
