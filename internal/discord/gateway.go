package discord

import (
	"context"
	"fmt"

	"gbf-bot/internal/recruit"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// 1秒あたりのREST呼び出し数
const (
	defaultRequestsPerSecond = 10
	defaultBurst             = 5
)

// restClient は Gateway が使う discordgo.Session のメソッド
type restClient interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	ChannelMessage(channelID, messageID string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	MessageReactions(channelID, messageID, emojiID string, limit int, beforeID, afterID string, options ...discordgo.RequestOption) ([]*discordgo.User, error)
}

// Gateway は recruit.Gateway をDiscord REST APIで実装する
type Gateway struct {
	client  restClient
	botID   func() string
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

type GatewayOption func(*Gateway)

func WithRateLimit(limit rate.Limit, burst int) GatewayOption {
	return func(g *Gateway) {
		g.limiter = rate.NewLimiter(limit, burst)
	}
}

func NewGateway(session *discordgo.Session, logger *zap.SugaredLogger, opts ...GatewayOption) *Gateway {
	botID := func() string {
		if session.State == nil || session.State.User == nil {
			return ""
		}
		return session.State.User.ID
	}
	return newGateway(session, botID, logger, opts...)
}

func newGateway(client restClient, botID func() string, logger *zap.SugaredLogger, opts ...GatewayOption) *Gateway {
	g := &Gateway{
		client:  client,
		botID:   botID,
		limiter: rate.NewLimiter(defaultRequestsPerSecond, defaultBurst),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var _ recruit.Gateway = (*Gateway)(nil)

func (g *Gateway) BotUserID() recruit.UserID {
	return recruit.UserID(g.botID())
}

func (g *Gateway) wait(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

func (g *Gateway) SendMessage(ctx context.Context, channelID recruit.ChannelID, message *recruit.OutgoingMessage) (recruit.MessageID, error) {
	if err := g.wait(ctx); err != nil {
		return "", err
	}

	data := &discordgo.MessageSend{
		Content: message.Content,
	}
	if message.Embed != nil {
		data.Embeds = []*discordgo.MessageEmbed{toMessageEmbed(message.Embed)}
	}
	if message.ReplyTo != "" {
		data.Reference = &discordgo.MessageReference{
			MessageID: string(message.ReplyTo),
			ChannelID: string(channelID),
		}
	}

	sent, err := g.client.ChannelMessageSendComplex(string(channelID), data, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("failed to send message. channelId: %s, %w", channelID, err)
	}
	return recruit.MessageID(sent.ID), nil
}

func (g *Gateway) EditMessage(ctx context.Context, channelID recruit.ChannelID, messageID recruit.MessageID, message *recruit.OutgoingMessage) error {
	if err := g.wait(ctx); err != nil {
		return err
	}

	edit := discordgo.NewMessageEdit(string(channelID), string(messageID))
	content := message.Content
	edit.Content = &content
	embeds := []*discordgo.MessageEmbed{}
	if message.Embed != nil {
		embeds = append(embeds, toMessageEmbed(message.Embed))
	}
	edit.Embeds = &embeds

	if _, err := g.client.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to edit message. messageId: %s, %w", messageID, err)
	}
	return nil
}

func (g *Gateway) AddReaction(ctx context.Context, channelID recruit.ChannelID, messageID recruit.MessageID, emoji string) error {
	if err := g.wait(ctx); err != nil {
		return err
	}

	if err := g.client.MessageReactionAdd(string(channelID), string(messageID), emoji, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to add reaction %s: %w", emoji, err)
	}
	return nil
}

func (g *Gateway) Message(ctx context.Context, channelID recruit.ChannelID, messageID recruit.MessageID) (*recruit.MessageSnapshot, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	message, err := g.client.ChannelMessage(string(channelID), string(messageID), discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get message. messageId: %s, %w", messageID, err)
	}

	snapshot := &recruit.MessageSnapshot{
		ID: recruit.MessageID(message.ID),
	}
	if message.Author != nil {
		snapshot.AuthorID = recruit.UserID(message.Author.ID)
	}
	for _, reaction := range message.Reactions {
		if reaction == nil || reaction.Emoji == nil {
			continue
		}
		snapshot.Reactions = append(snapshot.Reactions, reaction.Emoji.APIName())
	}
	return snapshot, nil
}

func (g *Gateway) ReactionUsers(
	ctx context.Context,
	channelID recruit.ChannelID,
	messageID recruit.MessageID,
	emoji string,
	limit int,
	after recruit.UserID,
) ([]recruit.UserID, error) {
	if err := g.wait(ctx); err != nil {
		return nil, err
	}

	users, err := g.client.MessageReactions(
		string(channelID),
		string(messageID),
		emoji,
		limit,
		"",
		string(after),
		discordgo.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get reaction users %s: %w", emoji, err)
	}

	ids := make([]recruit.UserID, 0, len(users))
	for _, u := range users {
		ids = append(ids, recruit.UserID(u.ID))
	}
	g.logger.Debugw("Fetched reaction users",
		"channel_id", channelID,
		"message_id", messageID,
		"emoji", emoji,
		"count", len(ids),
	)
	return ids, nil
}

func toMessageEmbed(embed *recruit.Embed) *discordgo.MessageEmbed {
	fields := make([]*discordgo.MessageEmbedField, 0, len(embed.Fields))
	for _, f := range embed.Fields {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	return &discordgo.MessageEmbed{
		Title:       embed.Title,
		Description: embed.Description,
		Color:       embed.Color,
		Fields:      fields,
	}
}
