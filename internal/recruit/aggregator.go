package recruit

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Discord APIのリアクションユーザー取得上限
const reactionPageSize = 100

const defaultFetchConcurrency = 3

type Aggregator struct {
	gateway     Gateway
	logger      *zap.SugaredLogger
	concurrency int
}

func NewAggregator(gateway Gateway, logger *zap.SugaredLogger) *Aggregator {
	return &Aggregator{
		gateway:     gateway,
		logger:      logger,
		concurrency: defaultFetchConcurrency,
	}
}

// Collect は募集メッセージのリアクションから参加者を集計する。
// 絵文字ごとの取得失敗はログに残して他の絵文字の集計を続ける
func (a *Aggregator) Collect(
	ctx context.Context,
	channelID ChannelID,
	messageID MessageID,
	battleType BattleType,
) (*Participants, error) {
	snapshot, err := a.gateway.Message(ctx, channelID, messageID)
	if err != nil {
		return nil, platformErr("fetch message", err)
	}

	present := make(map[string]struct{}, len(snapshot.Reactions))
	for _, emoji := range snapshot.Reactions {
		present[emoji] = struct{}{}
	}

	emojis := battleType.Emojis()
	groups := make([]EmojiGroup, len(emojis))
	botID := a.gateway.BotUserID()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, emoji := range emojis {
		i, emoji := i, emoji
		groups[i] = EmojiGroup{Emoji: emoji}
		if _, ok := present[emoji]; !ok {
			continue
		}

		g.Go(func() error {
			users, err := a.fetchUsers(gctx, channelID, messageID, emoji, botID)
			if err != nil {
				a.logger.Warnw("failed to fetch reaction users",
					"channel_id", channelID,
					"message_id", messageID,
					"emoji", emoji,
					"error", err,
				)
				return nil
			}
			groups[i].Users = users
			return nil
		})
	}
	_ = g.Wait()

	return &Participants{Groups: groups}, nil
}

// fetchUsers はページングを最後まで辿ってボット以外のユーザーを返す
func (a *Aggregator) fetchUsers(
	ctx context.Context,
	channelID ChannelID,
	messageID MessageID,
	emoji string,
	botID UserID,
) ([]UserID, error) {
	var users []UserID
	var after UserID
	for {
		page, err := a.gateway.ReactionUsers(ctx, channelID, messageID, emoji, reactionPageSize, after)
		if err != nil {
			return nil, err
		}

		for _, u := range page {
			if u == botID {
				continue
			}
			users = append(users, u)
		}

		if len(page) < reactionPageSize {
			return users, nil
		}
		last := page[len(page)-1]
		if last == after {
			return users, nil
		}
		after = last
	}
}
