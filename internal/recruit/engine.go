package recruit

import (
	"context"
	"errors"
	"time"

	"gbf-bot/internal/uow"

	"go.uber.org/zap"
)

// 募集完了時の文言
const (
	CompletionTextKey      = "MSG00032"
	completionTextFallback = "募集が完了しました！"
)

const dueBatchSize = 50

// Metrics は募集ライフサイクルの計測先
type Metrics interface {
	RecruitmentCreated(battleType BattleType)
	RecruitmentTransitioned(to Status)
	ParticipantChangeHandled(result string)
}

type nopMetrics struct{}

func (nopMetrics) RecruitmentCreated(BattleType)   {}
func (nopMetrics) RecruitmentTransitioned(Status)  {}
func (nopMetrics) ParticipantChangeHandled(string) {}

type Engine struct {
	recruitments RecruitmentRepository
	quests       QuestRepository
	texts        MessageTextRepository
	gateway      Gateway
	uow          uow.UnitOfWork
	aggregator   *Aggregator
	formatter    *Formatter
	settings     Settings
	metrics      Metrics
	logger       *zap.SugaredLogger
	now          func() time.Time
}

type EngineOption func(*Engine)

func WithMetrics(metrics Metrics) EngineOption {
	return func(e *Engine) {
		if metrics != nil {
			e.metrics = metrics
		}
	}
}

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(
	recruitments RecruitmentRepository,
	quests QuestRepository,
	texts MessageTextRepository,
	gateway Gateway,
	unitOfWork uow.UnitOfWork,
	settings Settings,
	formatter *Formatter,
	logger *zap.SugaredLogger,
	opts ...EngineOption,
) *Engine {
	e := &Engine{
		recruitments: recruitments,
		quests:       quests,
		texts:        texts,
		gateway:      gateway,
		uow:          unitOfWork,
		aggregator:   NewAggregator(gateway, logger),
		formatter:    formatter,
		settings:     settings,
		metrics:      nopMetrics{},
		logger:       logger,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type CreateParams struct {
	GuildID    GuildID
	ChannelID  ChannelID
	AuthorID   UserID
	QuestText  string
	BattleType BattleType
	ExpiryDate time.Time
}

// Create は募集メッセージを送信し、リアクションを付与して募集を登録する。
// 開催日時が過ぎていれば何も送らずに ErrExpiryPassed を返す。
// メッセージ送信後の登録失敗時は募集と PersistenceError の両方を返す
func (e *Engine) Create(ctx context.Context, params CreateParams) (*Recruitment, error) {
	if !params.ExpiryDate.After(e.now()) {
		return nil, ErrExpiryPassed
	}

	quest := e.resolveQuest(ctx, params.QuestText)

	r := &Recruitment{
		GuildID:    params.GuildID,
		ChannelID:  params.ChannelID,
		AuthorID:   params.AuthorID,
		QuestName:  params.QuestText,
		BattleType: params.BattleType.Resolve(quest),
		ExpiryDate: params.ExpiryDate.UTC(),
		Status:     StatusOpen,
		CreatedAt:  e.now(),
	}
	if quest != nil {
		r.TargetID = quest.TargetID
		r.QuestName = quest.Name
	}

	message := e.formatter.Recruitment(r, &Participants{}, e.settings.PartyCapacity())
	messageID, err := e.gateway.SendMessage(ctx, r.ChannelID, message)
	if err != nil {
		return nil, platformErr("send recruitment", err)
	}
	r.MessageID = messageID

	e.attachReactions(ctx, r)

	id, err := e.recruitments.Create(ctx, r)
	if err != nil {
		e.logger.Errorw("recruitment message was posted but could not be registered",
			"guild_id", r.GuildID,
			"channel_id", r.ChannelID,
			"message_id", r.MessageID,
			"error", err,
		)
		return r, persistenceErr("create recruitment", err)
	}
	r.ID = id

	e.metrics.RecruitmentCreated(r.BattleType)
	e.logger.Infow("recruitment created",
		"recruitment_id", r.ID,
		"message_id", r.MessageID,
		"quest", r.QuestName,
		"battle_type", r.BattleType.Name(),
	)

	e.catchUpReactions(ctx, r)
	return r, nil
}

// catchUpReactions は登録前に付いたリアクションを反映する。
// その間のリアクションイベントは募集が見つからず無視されている
func (e *Engine) catchUpReactions(ctx context.Context, r *Recruitment) {
	participants, err := e.aggregator.Collect(ctx, r.ChannelID, r.MessageID, r.BattleType)
	if err == nil && participants.Count() == 0 {
		return
	}
	if err == nil {
		err = e.refreshParticipants(ctx, r, participants)
	}
	if err != nil {
		e.logger.Warnw("failed to apply reactions made during creation",
			"recruitment_id", r.ID,
			"message_id", r.MessageID,
			"error", err,
		)
	}
}

// resolveQuest は別名からクエストを引く。見つからない場合は nil を返し、入力文字列をそのまま使う
func (e *Engine) resolveQuest(ctx context.Context, text string) *Quest {
	quest, err := e.quests.FindByAlias(ctx, text)
	if err != nil {
		e.logger.Warnw("quest lookup failed, using literal quest name", "quest", text, "error", err)
		return nil
	}
	if quest == nil {
		e.logger.Debugw("quest alias not found, using literal quest name", "quest", text)
	}
	return quest
}

func (e *Engine) attachReactions(ctx context.Context, r *Recruitment) {
	for _, emoji := range r.BattleType.Emojis() {
		if err := e.gateway.AddReaction(ctx, r.ChannelID, r.MessageID, emoji); err != nil {
			e.logger.Warnw("failed to add reaction",
				"message_id", r.MessageID,
				"emoji", emoji,
				"error", err,
			)
		}
	}
}

// Get は複合キーで募集を取得する
func (e *Engine) Get(ctx context.Context, key MessageKey) (*Recruitment, error) {
	r, err := e.recruitments.GetByMessage(ctx, key)
	if err != nil {
		return nil, persistenceErr("get recruitment", err)
	}
	return r, nil
}

// OnParticipantChange はリアクションの増減ごとに参加者表示を更新し、定員到達時に一度だけ完了通知を送る
func (e *Engine) OnParticipantChange(ctx context.Context, key MessageKey) error {
	r, err := e.recruitments.GetByMessage(ctx, key)
	if errors.Is(err, ErrNotFound) {
		e.metrics.ParticipantChangeHandled("ignored")
		return nil
	}
	if err != nil {
		e.metrics.ParticipantChangeHandled("error")
		return persistenceErr("get recruitment", err)
	}

	if r.Status == StatusCancelled || r.Status == StatusStarted {
		e.metrics.ParticipantChangeHandled("closed")
		return nil
	}

	participants, err := e.aggregator.Collect(ctx, r.ChannelID, r.MessageID, r.BattleType)
	if err != nil {
		e.metrics.ParticipantChangeHandled("error")
		return err
	}

	if err := e.refreshParticipants(ctx, r, participants); err != nil {
		e.metrics.ParticipantChangeHandled("error")
		return err
	}
	e.metrics.ParticipantChangeHandled("updated")
	return nil
}

// refreshParticipants は参加者一覧を書き換え、定員に達していれば完了させる
func (e *Engine) refreshParticipants(ctx context.Context, r *Recruitment, participants *Participants) error {
	capacity := e.settings.PartyCapacity()
	if err := e.gateway.EditMessage(ctx, r.ChannelID, r.MessageID, e.formatter.Recruitment(r, participants, capacity)); err != nil {
		return platformErr("edit recruitment", err)
	}
	return e.completeIfFull(ctx, r, participants, capacity)
}

func (e *Engine) completeIfFull(ctx context.Context, r *Recruitment, participants *Participants, capacity int) error {
	if capacity <= 0 || participants.Count() < capacity {
		return nil
	}
	if r.Status != StatusOpen || r.HasCompletionMessage() {
		return nil
	}

	// 同一募集への同時イベントのうち状態遷移できたものだけが通知する
	claimed, err := e.recruitments.TransitionStatus(ctx, r.ID, StatusOpen, StatusComplete)
	if err != nil {
		return persistenceErr("claim completion", err)
	}
	if !claimed {
		e.logger.Debugw("completion already claimed", "recruitment_id", r.ID)
		return nil
	}

	text := e.localizedText(ctx, r.GuildID, CompletionTextKey, completionTextFallback)
	messageID, err := e.gateway.SendMessage(ctx, r.ChannelID, e.formatter.CompletionNotice(r, participants, text))
	if err != nil {
		// 次のリアクションで再度通知できるよう募集中に戻す
		if _, rerr := e.recruitments.TransitionStatus(ctx, r.ID, StatusComplete, StatusOpen); rerr != nil {
			e.logger.Errorw("failed to release completion claim", "recruitment_id", r.ID, "error", rerr)
		}
		return platformErr("send completion", err)
	}

	recorded, err := e.recruitments.SetCompletionMessage(ctx, r.ID, messageID)
	if err != nil {
		return persistenceErr("set completion message", err)
	}
	if !recorded {
		e.logger.Warnw("completion message was already recorded", "recruitment_id", r.ID, "message_id", messageID)
	}

	e.metrics.RecruitmentTransitioned(StatusComplete)
	e.logger.Infow("recruitment completed",
		"recruitment_id", r.ID,
		"participants", participants.Count(),
		"completion_message_id", messageID,
	)
	return nil
}

func (e *Engine) localizedText(ctx context.Context, guildID GuildID, key string, fallback string) string {
	text, err := e.texts.Get(ctx, guildID, key)
	if err != nil {
		e.logger.Warnw("failed to get message text", "guild_id", guildID, "key", key, "error", err)
		return fallback
	}
	if text == nil {
		return fallback
	}
	if localized := text.Localized(e.settings.Locale()); localized != "" {
		return localized
	}
	return fallback
}

// Cancel は募集をキャンセル済みにし、参加者へ返信で通知する
func (e *Engine) Cancel(ctx context.Context, key MessageKey) error {
	r, err := e.close(ctx, key, StatusCancelled)
	if err != nil {
		return err
	}

	participants, err := e.aggregator.Collect(ctx, r.ChannelID, r.MessageID, r.BattleType)
	if err != nil {
		return err
	}
	if err := e.gateway.EditMessage(ctx, r.ChannelID, r.MessageID, e.formatter.Cancelled(r, participants)); err != nil {
		return platformErr("edit cancelled recruitment", err)
	}
	if _, err := e.gateway.SendMessage(ctx, r.ChannelID, e.formatter.CancelNotice(r, participants)); err != nil {
		return platformErr("send cancel notice", err)
	}

	e.logger.Infow("recruitment cancelled", "recruitment_id", r.ID, "participants", participants.Count())
	return nil
}

// Start は募集を出発済みにし、出発通知を返信で送る
func (e *Engine) Start(ctx context.Context, key MessageKey) error {
	r, err := e.close(ctx, key, StatusStarted)
	if err != nil {
		return err
	}
	return e.announceStart(ctx, r)
}

// StartDue は開催日時を過ぎた募集中の募集を出発させ、出発させた件数を返す。
// 1件の失敗で残りの処理は止めない
func (e *Engine) StartDue(ctx context.Context) (int, error) {
	due, err := e.recruitments.ListDue(ctx, e.now(), dueBatchSize)
	if err != nil {
		return 0, persistenceErr("list due recruitments", err)
	}

	started := 0
	for _, r := range due {
		if err := e.Start(ctx, r.Key()); err != nil {
			e.logger.Warnw("failed to start due recruitment", "recruitment_id", r.ID, "error", err)
			continue
		}
		started++
	}
	return started, nil
}

// close は募集中の募集を to へ遷移させ、遷移後の募集を返す
func (e *Engine) close(ctx context.Context, key MessageKey, to Status) (*Recruitment, error) {
	var r *Recruitment
	err := e.uow.Do(ctx, func(ctx context.Context) error {
		found, err := e.recruitments.GetByMessage(ctx, key)
		if err != nil {
			return persistenceErr("get recruitment", err)
		}
		if found.Status.IsTerminal() {
			return ErrAlreadyClosed
		}

		ok, err := e.recruitments.TransitionStatus(ctx, found.ID, StatusOpen, to)
		if err != nil {
			return persistenceErr("transition recruitment", err)
		}
		if !ok {
			return ErrAlreadyClosed
		}
		found.Status = to
		r = found
		return nil
	})
	if err != nil {
		var perr *PersistenceError
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyClosed) || errors.As(err, &perr) {
			return nil, err
		}
		return nil, persistenceErr("transition recruitment", err)
	}

	e.metrics.RecruitmentTransitioned(to)
	return r, nil
}

func (e *Engine) announceStart(ctx context.Context, r *Recruitment) error {
	participants, err := e.aggregator.Collect(ctx, r.ChannelID, r.MessageID, r.BattleType)
	if err != nil {
		return err
	}

	if _, err := e.gateway.SendMessage(ctx, r.ChannelID, e.formatter.StartNotice(r, participants)); err != nil {
		return platformErr("send start notice", err)
	}
	if err := e.gateway.EditMessage(ctx, r.ChannelID, r.MessageID, e.formatter.Started(r, participants)); err != nil {
		e.logger.Warnw("failed to edit started recruitment", "recruitment_id", r.ID, "error", err)
	}

	e.logger.Infow("recruitment started", "recruitment_id", r.ID, "participants", participants.Count())
	return nil
}
