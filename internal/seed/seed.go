// Package seed はクエスト・別名・文言のマスタデータをYAMLから取り込む
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gbf-bot/internal/recruit"
	"gbf-bot/internal/uow"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// File はシードファイルの形式
//
//	quests:
//	  - target_id: 303
//	    name: ベルゼバブHL
//	    default_battle_type: 7
//	    aliases: [ベルHL, ベルゼバブ]
//	message_texts:
//	  - key: MSG00032
//	    ja: 募集が完了しました！
//	    en: Recruitment complete!
type File struct {
	Quests       []Quest       `yaml:"quests"`
	MessageTexts []MessageText `yaml:"message_texts"`
}

type Quest struct {
	TargetID          int32    `yaml:"target_id"`
	Name              string   `yaml:"name"`
	DefaultBattleType int      `yaml:"default_battle_type"`
	Aliases           []string `yaml:"aliases"`
}

type MessageText struct {
	GuildID string `yaml:"guild_id"`
	Key     string `yaml:"key"`
	JA      string `yaml:"ja"`
	EN      string `yaml:"en"`
}

type QuestWriter interface {
	UpsertQuest(ctx context.Context, quest recruit.Quest, aliases []string) error
}

type MessageTextWriter interface {
	Upsert(ctx context.Context, text recruit.MessageText) error
}

// Result は取り込んだ件数
type Result struct {
	Quests       int
	Aliases      int
	MessageTexts int
}

type Importer struct {
	quests QuestWriter
	texts  MessageTextWriter
	uow    uow.UnitOfWork
	logger *zap.SugaredLogger
}

func NewImporter(quests QuestWriter, texts MessageTextWriter, unitOfWork uow.UnitOfWork, logger *zap.SugaredLogger) *Importer {
	return &Importer{
		quests: quests,
		texts:  texts,
		uow:    unitOfWork,
		logger: logger,
	}
}

// Decode はシードを読み込んで検証する。未知のキーはエラーにする
func Decode(r io.Reader) (*File, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("failed to decode seed: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	seen := make(map[int32]bool, len(f.Quests))
	for i, q := range f.Quests {
		if q.TargetID <= 0 {
			return fmt.Errorf("quests[%d]: target_id must be positive", i)
		}
		if seen[q.TargetID] {
			return fmt.Errorf("quests[%d]: duplicate target_id %d", i, q.TargetID)
		}
		seen[q.TargetID] = true
		if q.Name == "" {
			return fmt.Errorf("quests[%d]: name is required", i)
		}
		if _, err := recruit.ParseBattleType(q.DefaultBattleType); err != nil {
			return fmt.Errorf("quests[%d]: %w", i, err)
		}
	}
	for i, t := range f.MessageTexts {
		if t.Key == "" {
			return fmt.Errorf("message_texts[%d]: key is required", i)
		}
		if t.JA == "" {
			return fmt.Errorf("message_texts[%d]: ja is required", i)
		}
	}
	return nil
}

func (i *Importer) ImportFile(ctx context.Context, path string) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer file.Close()

	return i.Import(ctx, file)
}

// Import はシード全体を1トランザクションで取り込む。途中で失敗したら何も反映しない
func (i *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	f, err := Decode(r)
	if err != nil {
		return Result{}, err
	}

	var result Result
	err = i.uow.Do(ctx, func(ctx context.Context) error {
		for _, q := range f.Quests {
			quest := recruit.Quest{
				TargetID:          recruit.TargetID(q.TargetID),
				Name:              q.Name,
				DefaultBattleType: recruit.BattleType(q.DefaultBattleType),
			}
			// 正式名称でも引けるよう別名が無ければ名前をそのまま登録する
			aliases := q.Aliases
			if len(aliases) == 0 {
				aliases = []string{q.Name}
			}
			if err := i.quests.UpsertQuest(ctx, quest, aliases); err != nil {
				return err
			}
			result.Quests++
			result.Aliases += len(aliases)
		}
		for _, t := range f.MessageTexts {
			text := recruit.MessageText{
				GuildID:   recruit.GuildID(t.GuildID),
				Key:       t.Key,
				MessageJP: t.JA,
				MessageEN: t.EN,
			}
			if err := i.texts.Upsert(ctx, text); err != nil {
				return err
			}
			result.MessageTexts++
		}
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("failed to import seed: %w", err)
	}

	i.logger.Infow("Seed imported",
		"quests", result.Quests,
		"aliases", result.Aliases,
		"message_texts", result.MessageTexts,
	)
	return result, nil
}
