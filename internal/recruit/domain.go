package recruit

import (
	"errors"
	"fmt"
	"time"
)

type RecruitmentID int64
type GuildID string
type ChannelID string
type MessageID string
type UserID string
type TargetID int32

type Status string

const (
	StatusOpen      Status = "open"
	StatusComplete  Status = "complete"
	StatusCancelled Status = "cancelled"
	StatusStarted   Status = "started"
)

// IsTerminal は遷移先を持たない状態かを返す
func (s Status) IsTerminal() bool {
	return s != StatusOpen
}

// MessageKey は募集メッセージを一意に識別する複合キー
type MessageKey struct {
	GuildID   GuildID
	ChannelID ChannelID
	MessageID MessageID
}

func (k MessageKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.GuildID, k.ChannelID, k.MessageID)
}

type Recruitment struct {
	ID                  RecruitmentID
	GuildID             GuildID
	ChannelID           ChannelID
	MessageID           MessageID
	AuthorID            UserID
	TargetID            TargetID
	QuestName           string
	BattleType          BattleType
	ExpiryDate          time.Time
	CompletionMessageID *MessageID
	Status              Status
	CreatedAt           time.Time
	UpdatedAt           *time.Time
}

func (r *Recruitment) Key() MessageKey {
	return MessageKey{GuildID: r.GuildID, ChannelID: r.ChannelID, MessageID: r.MessageID}
}

// HasCompletionMessage は募集完了通知が記録済みかを返す
func (r *Recruitment) HasCompletionMessage() bool {
	return r.CompletionMessageID != nil
}

type Quest struct {
	TargetID          TargetID
	Name              string
	DefaultBattleType BattleType
}

type MessageText struct {
	GuildID   GuildID
	Key       string
	MessageJP string
	MessageEN string
}

// Localized はロケールに応じた文言を返す。英語が未登録なら日本語にフォールバックする
func (t *MessageText) Localized(locale string) string {
	if locale != "" && locale != "ja" && t.MessageEN != "" {
		return t.MessageEN
	}
	return t.MessageJP
}

var (
	ErrNotFound      = errors.New("募集が見つかりません")
	ErrAlreadyClosed = errors.New("募集は既に終了しています")
	ErrForbidden     = errors.New("この募集を操作する権限がありません")
	ErrExpiryPassed  = errors.New("開催日時が既に過ぎています")
)

// PlatformError はチャットプラットフォーム呼び出しの失敗
type PlatformError struct {
	Op  string
	Err error
}

func (e *PlatformError) Error() string {
	return fmt.Sprintf("platform: %s: %v", e.Op, e.Err)
}

func (e *PlatformError) Unwrap() error {
	return e.Err
}

// PersistenceError はストア呼び出しの失敗
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func platformErr(op string, err error) error {
	return &PlatformError{Op: op, Err: err}
}

func persistenceErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}
