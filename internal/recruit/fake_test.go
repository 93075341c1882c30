package recruit

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gbf-bot/internal/uow"

	"go.uber.org/zap"
)

type sentMessage struct {
	ChannelID ChannelID
	ID        MessageID
	Message   *OutgoingMessage
}

type editedMessage struct {
	ChannelID ChannelID
	MessageID MessageID
	Message   *OutgoingMessage
}

// fakeGateway はメモリ上でメッセージとリアクションを保持する
type fakeGateway struct {
	mu sync.Mutex

	botID  UserID
	nextID int

	sent      []sentMessage
	edits     []editedMessage
	reactions map[MessageID]map[string][]UserID

	sendErr          func(message *OutgoingMessage) error
	editErr          error
	addReactionErr   error
	messageErr       error
	reactionUsersErr map[string]error
	reactionCalls    int

	// onAddReaction はBotのリアクション付与直後に呼ばれる
	onAddReaction func(messageID MessageID)
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		botID:            "bot",
		reactions:        make(map[MessageID]map[string][]UserID),
		reactionUsersErr: make(map[string]error),
	}
}

func (g *fakeGateway) BotUserID() UserID {
	return g.botID
}

func (g *fakeGateway) SendMessage(_ context.Context, channelID ChannelID, message *OutgoingMessage) (MessageID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.sendErr != nil {
		if err := g.sendErr(message); err != nil {
			return "", err
		}
	}
	g.nextID++
	id := MessageID(fmt.Sprintf("message-%d", g.nextID))
	g.sent = append(g.sent, sentMessage{ChannelID: channelID, ID: id, Message: message})
	return id, nil
}

func (g *fakeGateway) EditMessage(_ context.Context, channelID ChannelID, messageID MessageID, message *OutgoingMessage) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.editErr != nil {
		return g.editErr
	}
	g.edits = append(g.edits, editedMessage{ChannelID: channelID, MessageID: messageID, Message: message})
	return nil
}

func (g *fakeGateway) AddReaction(_ context.Context, _ ChannelID, messageID MessageID, emoji string) error {
	if g.addReactionErr != nil {
		return g.addReactionErr
	}
	g.react(messageID, emoji, g.botID)
	if g.onAddReaction != nil {
		g.onAddReaction(messageID)
	}
	return nil
}

func (g *fakeGateway) Message(_ context.Context, _ ChannelID, messageID MessageID) (*MessageSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.messageErr != nil {
		return nil, g.messageErr
	}
	snapshot := &MessageSnapshot{ID: messageID}
	for emoji, users := range g.reactions[messageID] {
		if len(users) > 0 {
			snapshot.Reactions = append(snapshot.Reactions, emoji)
		}
	}
	sort.Strings(snapshot.Reactions)
	return snapshot, nil
}

func (g *fakeGateway) ReactionUsers(_ context.Context, _ ChannelID, messageID MessageID, emoji string, limit int, after UserID) ([]UserID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.reactionCalls++
	if err := g.reactionUsersErr[emoji]; err != nil {
		return nil, err
	}

	users := g.reactions[messageID][emoji]
	start := 0
	if after != "" {
		for i, u := range users {
			if u == after {
				start = i + 1
				break
			}
		}
	}
	end := start + limit
	if end > len(users) {
		end = len(users)
	}
	return append([]UserID(nil), users[start:end]...), nil
}

func (g *fakeGateway) react(messageID MessageID, emoji string, userID UserID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.reactions[messageID] == nil {
		g.reactions[messageID] = make(map[string][]UserID)
	}
	for _, u := range g.reactions[messageID][emoji] {
		if u == userID {
			return
		}
	}
	g.reactions[messageID][emoji] = append(g.reactions[messageID][emoji], userID)
}

func (g *fakeGateway) unreact(messageID MessageID, emoji string, userID UserID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	users := g.reactions[messageID][emoji]
	for i, u := range users {
		if u == userID {
			g.reactions[messageID][emoji] = append(users[:i:i], users[i+1:]...)
			return
		}
	}
}

func (g *fakeGateway) sentMessages() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentMessage(nil), g.sent...)
}

func (g *fakeGateway) editedMessages() []editedMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]editedMessage(nil), g.edits...)
}

// replies は ReplyTo が指定された送信メッセージ
func (g *fakeGateway) replies() []sentMessage {
	var replies []sentMessage
	for _, s := range g.sentMessages() {
		if s.Message.ReplyTo != "" {
			replies = append(replies, s)
		}
	}
	return replies
}

// memoryRecruitmentRepository は条件付き更新を含めてsqlite実装と同じ振る舞いをする
type memoryRecruitmentRepository struct {
	mu      sync.Mutex
	nextID  RecruitmentID
	rows    map[RecruitmentID]*Recruitment
	failing error
}

func newMemoryRecruitmentRepository() *memoryRecruitmentRepository {
	return &memoryRecruitmentRepository{rows: make(map[RecruitmentID]*Recruitment)}
}

func (m *memoryRecruitmentRepository) Create(_ context.Context, recruitment *Recruitment) (RecruitmentID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.failing != nil {
		return 0, m.failing
	}
	for _, row := range m.rows {
		if row.Key() == recruitment.Key() {
			return 0, errors.New("UNIQUE constraint failed")
		}
	}
	m.nextID++
	row := *recruitment
	row.ID = m.nextID
	m.rows[row.ID] = &row
	return row.ID, nil
}

func (m *memoryRecruitmentRepository) Get(_ context.Context, id RecruitmentID) (*Recruitment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *row
	return &copied, nil
}

func (m *memoryRecruitmentRepository) GetByMessage(_ context.Context, key MessageKey) (*Recruitment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, row := range m.rows {
		if row.Key() == key {
			copied := *row
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryRecruitmentRepository) HasCompletionMessage(_ context.Context, id RecruitmentID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok {
		return false, ErrNotFound
	}
	return row.CompletionMessageID != nil, nil
}

func (m *memoryRecruitmentRepository) SetCompletionMessage(_ context.Context, id RecruitmentID, messageID MessageID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok || row.CompletionMessageID != nil {
		return false, nil
	}
	row.CompletionMessageID = &messageID
	return true, nil
}

func (m *memoryRecruitmentRepository) TransitionStatus(_ context.Context, id RecruitmentID, from Status, to Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[id]
	if !ok || row.Status != from {
		return false, nil
	}
	row.Status = to
	return true, nil
}

func (m *memoryRecruitmentRepository) ListDue(_ context.Context, now time.Time, limit int) ([]Recruitment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var due []Recruitment
	for _, row := range m.rows {
		if row.Status == StatusOpen && !row.ExpiryDate.After(now) {
			due = append(due, *row)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ID < due[j].ID })
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (m *memoryRecruitmentRepository) status(id RecruitmentID) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows[id].Status
}

type fakeQuestRepository struct {
	byAlias map[string]*Quest
	err     error
}

func (f *fakeQuestRepository) FindByAlias(_ context.Context, alias string) (*Quest, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byAlias[alias], nil
}

func (f *fakeQuestRepository) FindByTargetID(_ context.Context, targetID TargetID) (*Quest, error) {
	for _, q := range f.byAlias {
		if q.TargetID == targetID {
			return q, nil
		}
	}
	return nil, nil
}

func (f *fakeQuestRepository) SearchAliases(_ context.Context, prefix string, limit int) ([]string, error) {
	return nil, nil
}

type fakeMessageTextRepository struct {
	texts map[string]*MessageText
}

func (f *fakeMessageTextRepository) Get(_ context.Context, _ GuildID, key string) (*MessageText, error) {
	return f.texts[key], nil
}

type fakeSettings struct {
	capacity int
	locale   string
}

func (s fakeSettings) PartyCapacity() int { return s.capacity }
func (s fakeSettings) Locale() string     { return s.locale }


type engineFixture struct {
	engine  *Engine
	gateway *fakeGateway
	store   *memoryRecruitmentRepository
	quests  *fakeQuestRepository
	texts   *fakeMessageTextRepository
	now     time.Time
}

var tokyo = time.FixedZone("Asia/Tokyo", 9*60*60)

func newEngineFixture(capacity int) *engineFixture {
	f := &engineFixture{
		gateway: newFakeGateway(),
		store:   newMemoryRecruitmentRepository(),
		quests: &fakeQuestRepository{byAlias: map[string]*Quest{
			"ルシHL": {TargetID: 305, Name: "ダーク・ラプチャー(HARD)", DefaultBattleType: BattleTypeAllElement},
			"ベルHL": {TargetID: 303, Name: "ベルゼバブHL", DefaultBattleType: BattleTypeDark},
		}},
		texts: &fakeMessageTextRepository{texts: map[string]*MessageText{}},
		now:   time.Date(2026, 10, 16, 12, 0, 0, 0, tokyo),
	}
	f.engine = NewEngine(
		f.store,
		f.quests,
		f.texts,
		f.gateway,
		uow.Direct,
		fakeSettings{capacity: capacity, locale: "ja"},
		NewFormatter(tokyo),
		zap.NewNop().Sugar(),
		WithClock(func() time.Time { return f.now }),
	)
	return f
}

func (f *engineFixture) create(questText string, bt BattleType) *Recruitment {
	r, err := f.engine.Create(context.Background(), CreateParams{
		GuildID:    "guild-1",
		ChannelID:  "channel-1",
		AuthorID:   "author-1",
		QuestText:  questText,
		BattleType: bt,
		ExpiryDate: time.Date(2026, 10, 16, 21, 0, 0, 0, tokyo),
	})
	if err != nil {
		panic(err)
	}
	return r
}

func makeUsers(n int) []UserID {
	ids := make([]UserID, n)
	for i := range ids {
		ids[i] = UserID(fmt.Sprintf("user-%d", i+1))
	}
	return ids
}
