package handler

import (
	"errors"

	"gbf-bot/internal/eventdate"
	"gbf-bot/internal/recruit"
)

const (
	localeJA = "ja"
	localeEN = "en"
)

// text はユーザーへの応答文言
type text struct {
	ja string
	en string
}

func (t text) in(locale string) string {
	if locale == localeEN && t.en != "" {
		return t.en
	}
	return t.ja
}

var (
	textRecruitCreated    = text{ja: "募集を作成しました。", en: "Recruitment created."}
	textRecruitUntracked  = text{ja: "募集メッセージは投稿しましたが、登録に失敗したため参加状況は更新されません。", en: "The recruitment was posted but could not be saved, so participants will not be tracked."}
	textCancelled         = text{ja: "募集をキャンセルしました。", en: "Recruitment cancelled."}
	textStarted           = text{ja: "募集を開始しました。", en: "Recruitment started."}
	textEnvironLoaded     = text{ja: "環境変数の読み込みが完了しました。", en: "Environment reloaded."}
	textNotFound          = text{ja: "募集が見つかりません。", en: "Recruitment not found."}
	textAlreadyClosed     = text{ja: "この募集は既に終了しています。", en: "This recruitment has already been closed."}
	textForbidden         = text{ja: "この操作を行う権限がありません。", en: "You are not allowed to do this."}
	textExpiryPassed      = text{ja: "開催日時が既に過ぎています。", en: "The event date has already passed."}
	textInvalidEventDate  = text{ja: "開催日時を読み取れませんでした。例: `12/25 21:00` `明日 22時`", en: "Could not read the event date. e.g. `12/25 21:00` `tomorrow 10pm`"}
	textQuestRequired     = text{ja: "クエストを指定してください。", en: "Please specify a quest."}
	textPlatformError     = text{ja: "Discordとの通信に失敗しました。時間をおいて再度お試しください。", en: "Failed to communicate with Discord. Please try again later."}
	textPersistenceError  = text{ja: "データの保存に失敗しました。", en: "Failed to save data."}
	textUnexpectedFailure = text{ja: "❗処理中に問題が発生しました。", en: "❗Something went wrong."}
)

var errQuestRequired = errors.New("quest is required")

// errorText はエラーの種類に応じた応答文言を返す
func errorText(err error) text {
	var platformErr *recruit.PlatformError
	var persistenceErr *recruit.PersistenceError

	switch {
	case errors.Is(err, recruit.ErrNotFound):
		return textNotFound
	case errors.Is(err, recruit.ErrAlreadyClosed):
		return textAlreadyClosed
	case errors.Is(err, recruit.ErrForbidden):
		return textForbidden
	case errors.Is(err, recruit.ErrExpiryPassed):
		return textExpiryPassed
	case errors.Is(err, eventdate.ErrUnparseable):
		return textInvalidEventDate
	case errors.Is(err, errQuestRequired):
		return textQuestRequired
	case errors.As(err, &platformErr):
		return textPlatformError
	case errors.As(err, &persistenceErr):
		return textPersistenceError
	default:
		return textUnexpectedFailure
	}
}

// isUserError はユーザー操作起因でログにエラーとして残さなくてよいものを判定する
func isUserError(err error) bool {
	return errors.Is(err, recruit.ErrNotFound) ||
		errors.Is(err, recruit.ErrAlreadyClosed) ||
		errors.Is(err, recruit.ErrForbidden) ||
		errors.Is(err, recruit.ErrExpiryPassed) ||
		errors.Is(err, eventdate.ErrUnparseable) ||
		errors.Is(err, errQuestRequired)
}
