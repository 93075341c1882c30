package recruit

import "context"

type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
}

type OutgoingMessage struct {
	Content string
	Embed   *Embed
	// ReplyTo が空でなければ返信として送信する
	ReplyTo MessageID
}

type MessageSnapshot struct {
	ID        MessageID
	AuthorID  UserID
	Reactions []string
}

// Gateway はチャットプラットフォームへの操作
type Gateway interface {
	BotUserID() UserID
	SendMessage(ctx context.Context, channelID ChannelID, message *OutgoingMessage) (MessageID, error)
	EditMessage(ctx context.Context, channelID ChannelID, messageID MessageID, message *OutgoingMessage) error
	AddReaction(ctx context.Context, channelID ChannelID, messageID MessageID, emoji string) error
	Message(ctx context.Context, channelID ChannelID, messageID MessageID) (*MessageSnapshot, error)
	// ReactionUsers は after より後のユーザーを最大 limit 件返す
	ReactionUsers(ctx context.Context, channelID ChannelID, messageID MessageID, emoji string, limit int, after UserID) ([]UserID, error)
}
