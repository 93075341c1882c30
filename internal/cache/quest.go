package cache

import (
	"context"
	"fmt"
	"time"

	"gbf-bot/internal/recruit"

	gocache "github.com/patrickmn/go-cache"
)

// Recorder はキャッシュの当たり外れを記録する
type Recorder interface {
	CacheHit()
	CacheMiss()
}

type nopRecorder struct{}

func (nopRecorder) CacheHit()  {}
func (nopRecorder) CacheMiss() {}

// QuestRepository はクエストマスタの参照結果をメモリにキャッシュする。
// 見つからなかった結果もキャッシュする
type QuestRepository struct {
	next     recruit.QuestRepository
	cache    *gocache.Cache
	ttl      time.Duration
	recorder Recorder
}

var _ recruit.QuestRepository = (*QuestRepository)(nil)

func NewQuestRepository(next recruit.QuestRepository, ttl time.Duration, recorder Recorder) *QuestRepository {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &QuestRepository{
		next:     next,
		cache:    gocache.New(ttl, 2*ttl),
		ttl:      ttl,
		recorder: recorder,
	}
}

func (r *QuestRepository) FindByAlias(ctx context.Context, alias string) (*recruit.Quest, error) {
	return r.getOrLoadQuest(fmt.Sprintf("alias:%s", alias), func() (*recruit.Quest, error) {
		return r.next.FindByAlias(ctx, alias)
	})
}

func (r *QuestRepository) FindByTargetID(ctx context.Context, targetID recruit.TargetID) (*recruit.Quest, error) {
	return r.getOrLoadQuest(fmt.Sprintf("target:%d", targetID), func() (*recruit.Quest, error) {
		return r.next.FindByTargetID(ctx, targetID)
	})
}

func (r *QuestRepository) SearchAliases(ctx context.Context, prefix string, limit int) ([]string, error) {
	key := fmt.Sprintf("search:%d:%s", limit, prefix)
	if v, found := r.cache.Get(key); found {
		r.recorder.CacheHit()
		return v.([]string), nil
	}
	r.recorder.CacheMiss()

	aliases, err := r.next.SearchAliases(ctx, prefix, limit)
	if err != nil {
		return nil, err
	}
	r.cache.Set(key, aliases, r.ttl)
	return aliases, nil
}

// Flush はマスタ更新後にキャッシュを破棄する
func (r *QuestRepository) Flush() {
	r.cache.Flush()
}

func (r *QuestRepository) getOrLoadQuest(key string, loader func() (*recruit.Quest, error)) (*recruit.Quest, error) {
	if v, found := r.cache.Get(key); found {
		r.recorder.CacheHit()
		quest, _ := v.(*recruit.Quest)
		return copyQuest(quest), nil
	}
	r.recorder.CacheMiss()

	quest, err := loader()
	if err != nil {
		// エラーはキャッシュしない
		return nil, err
	}
	r.cache.Set(key, copyQuest(quest), r.ttl)
	return quest, nil
}

func copyQuest(q *recruit.Quest) *recruit.Quest {
	if q == nil {
		return nil
	}
	copied := *q
	return &copied
}
