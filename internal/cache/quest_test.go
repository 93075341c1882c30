package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"gbf-bot/internal/recruit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingQuestRepository struct {
	quests map[string]*recruit.Quest
	calls  int
	err    error
}

func (c *countingQuestRepository) FindByAlias(_ context.Context, alias string) (*recruit.Quest, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return c.quests[alias], nil
}

func (c *countingQuestRepository) FindByTargetID(_ context.Context, targetID recruit.TargetID) (*recruit.Quest, error) {
	c.calls++
	for _, q := range c.quests {
		if q.TargetID == targetID {
			return q, nil
		}
	}
	return nil, nil
}

func (c *countingQuestRepository) SearchAliases(_ context.Context, prefix string, limit int) ([]string, error) {
	c.calls++
	return []string{prefix + "HL"}, nil
}

type countingRecorder struct {
	hits, misses int
}

func (c *countingRecorder) CacheHit()  { c.hits++ }
func (c *countingRecorder) CacheMiss() { c.misses++ }

func TestQuestRepository_FindByAlias(t *testing.T) {
	ctx := context.Background()

	t.Run("2回目以降はキャッシュから返す", func(t *testing.T) {
		next := &countingQuestRepository{quests: map[string]*recruit.Quest{
			"ベルHL": {TargetID: 303, Name: "ベルゼバブHL", DefaultBattleType: recruit.BattleTypeDark},
		}}
		recorder := &countingRecorder{}
		repo := NewQuestRepository(next, time.Minute, recorder)

		for iter := 0; iter < 3; iter++ {
			q, err := repo.FindByAlias(ctx, "ベルHL")
			require.NoError(t, err)
			require.NotNil(t, q)
			assert.Equal(t, "ベルゼバブHL", q.Name)
		}

		assert.Equal(t, 1, next.calls)
		assert.Equal(t, 2, recorder.hits)
		assert.Equal(t, 1, recorder.misses)
	})

	t.Run("見つからなかった結果もキャッシュする", func(t *testing.T) {
		next := &countingQuestRepository{}
		repo := NewQuestRepository(next, time.Minute, nil)

		for iter := 0; iter < 2; iter++ {
			q, err := repo.FindByAlias(ctx, "アルバハHL")
			require.NoError(t, err)
			assert.Nil(t, q)
		}
		assert.Equal(t, 1, next.calls)
	})

	t.Run("エラーはキャッシュしない", func(t *testing.T) {
		next := &countingQuestRepository{err: errors.New("database is locked")}
		repo := NewQuestRepository(next, time.Minute, nil)

		_, err := repo.FindByAlias(ctx, "ベルHL")
		assert.Error(t, err)
		_, err = repo.FindByAlias(ctx, "ベルHL")
		assert.Error(t, err)
		assert.Equal(t, 2, next.calls)
	})

	t.Run("返した値を書き換えてもキャッシュに影響しない", func(t *testing.T) {
		next := &countingQuestRepository{quests: map[string]*recruit.Quest{
			"ベルHL": {TargetID: 303, Name: "ベルゼバブHL"},
		}}
		repo := NewQuestRepository(next, time.Minute, nil)

		q, err := repo.FindByAlias(ctx, "ベルHL")
		require.NoError(t, err)
		q.Name = "changed"

		q, err = repo.FindByAlias(ctx, "ベルHL")
		require.NoError(t, err)
		assert.Equal(t, "ベルゼバブHL", q.Name)
	})
}

func TestQuestRepository_Flush(t *testing.T) {
	ctx := context.Background()
	next := &countingQuestRepository{quests: map[string]*recruit.Quest{}}
	repo := NewQuestRepository(next, time.Minute, nil)

	q, err := repo.FindByTargetID(ctx, 303)
	require.NoError(t, err)
	assert.Nil(t, q)

	next.quests["ベルHL"] = &recruit.Quest{TargetID: 303, Name: "ベルゼバブHL"}
	q, err = repo.FindByTargetID(ctx, 303)
	require.NoError(t, err)
	assert.Nil(t, q)

	repo.Flush()
	q, err = repo.FindByTargetID(ctx, 303)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, "ベルゼバブHL", q.Name)
}

func TestQuestRepository_SearchAliases(t *testing.T) {
	ctx := context.Background()
	next := &countingQuestRepository{}
	repo := NewQuestRepository(next, time.Minute, nil)

	for iter := 0; iter < 2; iter++ {
		aliases, err := repo.SearchAliases(ctx, "ベル", 25)
		require.NoError(t, err)
		assert.Equal(t, []string{"ベルHL"}, aliases)
	}
	_, err := repo.SearchAliases(ctx, "ルシ", 25)
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
}
