package recruit

import (
	"context"
	"time"
)

type RecruitmentRepository interface {
	Create(ctx context.Context, recruitment *Recruitment) (RecruitmentID, error)
	Get(ctx context.Context, id RecruitmentID) (*Recruitment, error)
	// GetByMessage は該当がなければ ErrNotFound を返す
	GetByMessage(ctx context.Context, key MessageKey) (*Recruitment, error)
	HasCompletionMessage(ctx context.Context, id RecruitmentID) (bool, error)
	// SetCompletionMessage は未記録の場合のみ記録し、記録できたかを返す
	SetCompletionMessage(ctx context.Context, id RecruitmentID, messageID MessageID) (bool, error)
	// TransitionStatus は現在の状態が from の場合のみ to に更新し、更新できたかを返す
	TransitionStatus(ctx context.Context, id RecruitmentID, from Status, to Status) (bool, error)
	ListDue(ctx context.Context, now time.Time, limit int) ([]Recruitment, error)
}

// QuestRepository は該当がなければ nil, nil を返す
type QuestRepository interface {
	FindByAlias(ctx context.Context, alias string) (*Quest, error)
	FindByTargetID(ctx context.Context, targetID TargetID) (*Quest, error)
	SearchAliases(ctx context.Context, prefix string, limit int) ([]string, error)
}

type MessageTextRepository interface {
	Get(ctx context.Context, guildID GuildID, key string) (*MessageText, error)
}

// Settings は実行時に再読み込みされる設定値
type Settings interface {
	PartyCapacity() int
	Locale() string
}
