package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gbf-bot/internal/recruit"

	sqlitedriver "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// 全サーバー共通の文言に使うギルドID
const globalGuildID recruit.GuildID = "0"

type questModel struct {
	TargetID          int32  `gorm:"column:target_id;primaryKey;autoIncrement:false"`
	QuestName         string `gorm:"column:quest_name"`
	DefaultBattleType int    `gorm:"column:default_battle_type"`
}

func (questModel) TableName() string { return "quests" }

func (m questModel) toDomain() *recruit.Quest {
	return &recruit.Quest{
		TargetID:          recruit.TargetID(m.TargetID),
		Name:              m.QuestName,
		DefaultBattleType: recruit.BattleType(m.DefaultBattleType),
	}
}

type questAliasModel struct {
	Alias    string `gorm:"column:alias;primaryKey"`
	TargetID int32  `gorm:"column:target_id"`
}

func (questAliasModel) TableName() string { return "quests_alias" }

type messageTextModel struct {
	GuildID   string `gorm:"column:guild_id;primaryKey"`
	MessageID string `gorm:"column:message_id;primaryKey"`
	MessageJP string `gorm:"column:message_jp"`
	MessageEN string `gorm:"column:message_en"`
}

func (messageTextModel) TableName() string { return "message_texts" }

type environmentModel struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Value     string    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (environmentModel) TableName() string { return "environments" }

// OpenGorm はInitDBで開いた接続をgormから使えるようにする
func OpenGorm(db *sql.DB) (*gorm.DB, error) {
	gdb, err := gorm.Open(sqlitedriver.New(sqlitedriver.Config{Conn: db}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm: %w", err)
	}
	return gdb, nil
}

type QuestRepository struct {
	db *gorm.DB
}

func NewQuestRepository(db *gorm.DB) *QuestRepository {
	return &QuestRepository{db: db}
}

// FindByAlias は別名、なければ正式名称でクエストを探す
func (r *QuestRepository) FindByAlias(ctx context.Context, alias string) (*recruit.Quest, error) {
	var m questModel
	err := gormConn(ctx, r.db).
		Model(&questModel{}).
		Select("quests.*").
		Joins("JOIN quests_alias ON quests_alias.target_id = quests.target_id").
		Where("quests_alias.alias = ?", alias).
		Take(&m).Error
	if err == nil {
		return m.toDomain(), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find quest by alias: %w", err)
	}

	err = gormConn(ctx, r.db).Where("quest_name = ?", alias).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find quest by name: %w", err)
	}
	return m.toDomain(), nil
}

func (r *QuestRepository) FindByTargetID(ctx context.Context, targetID recruit.TargetID) (*recruit.Quest, error) {
	var m questModel
	err := gormConn(ctx, r.db).Where("target_id = ?", int32(targetID)).Take(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find quest: %w", err)
	}
	return m.toDomain(), nil
}

// SearchAliases は前方一致する別名を辞書順に返す
func (r *QuestRepository) SearchAliases(ctx context.Context, prefix string, limit int) ([]string, error) {
	var aliases []string
	err := gormConn(ctx, r.db).
		Model(&questAliasModel{}).
		Where(`alias LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Order("alias").
		Limit(limit).
		Pluck("alias", &aliases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search aliases: %w", err)
	}
	return aliases, nil
}

// UpsertQuest はクエストと別名を登録する。別名が別のクエストを指していれば付け替える
func (r *QuestRepository) UpsertQuest(ctx context.Context, quest recruit.Quest, aliases []string) error {
	conn := gormConn(ctx, r.db)

	m := questModel{
		TargetID:          int32(quest.TargetID),
		QuestName:         quest.Name,
		DefaultBattleType: int(quest.DefaultBattleType),
	}
	err := conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "target_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"quest_name", "default_battle_type"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert quest %d: %w", quest.TargetID, err)
	}

	for _, alias := range aliases {
		a := questAliasModel{Alias: alias, TargetID: m.TargetID}
		err := conn.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "alias"}},
			DoUpdates: clause.AssignmentColumns([]string{"target_id"}),
		}).Create(&a).Error
		if err != nil {
			return fmt.Errorf("failed to upsert alias %q: %w", alias, err)
		}
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

type MessageTextRepository struct {
	db *gorm.DB
}

func NewMessageTextRepository(db *gorm.DB) *MessageTextRepository {
	return &MessageTextRepository{db: db}
}

// Get はサーバー固有の文言、なければ共通の文言を返す。どちらもなければ nil, nil
func (r *MessageTextRepository) Get(ctx context.Context, guildID recruit.GuildID, key string) (*recruit.MessageText, error) {
	for _, id := range []recruit.GuildID{guildID, globalGuildID} {
		var m messageTextModel
		err := gormConn(ctx, r.db).Where("guild_id = ? AND message_id = ?", string(id), key).Take(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get message text: %w", err)
		}
		return &recruit.MessageText{
			GuildID:   recruit.GuildID(m.GuildID),
			Key:       m.MessageID,
			MessageJP: m.MessageJP,
			MessageEN: m.MessageEN,
		}, nil
	}
	return nil, nil
}

func (r *MessageTextRepository) Upsert(ctx context.Context, text recruit.MessageText) error {
	guildID := text.GuildID
	if guildID == "" {
		guildID = globalGuildID
	}
	m := messageTextModel{
		GuildID:   string(guildID),
		MessageID: text.Key,
		MessageJP: text.MessageJP,
		MessageEN: text.MessageEN,
	}
	err := gormConn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "guild_id"}, {Name: "message_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"message_jp", "message_en"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to upsert message text %s: %w", text.Key, err)
	}
	return nil
}

type EnvironmentRepository struct {
	db *gorm.DB
}

func NewEnvironmentRepository(db *gorm.DB) *EnvironmentRepository {
	return &EnvironmentRepository{db: db}
}

func (r *EnvironmentRepository) All(ctx context.Context) (map[string]string, error) {
	var models []environmentModel
	if err := gormConn(ctx, r.db).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to load environments: %w", err)
	}
	values := make(map[string]string, len(models))
	for _, m := range models {
		values[m.Key] = m.Value
	}
	return values, nil
}

func (r *EnvironmentRepository) Set(ctx context.Context, key string, value string) error {
	m := environmentModel{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
	err := gormConn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return fmt.Errorf("failed to set environment %s: %w", key, err)
	}
	return nil
}
