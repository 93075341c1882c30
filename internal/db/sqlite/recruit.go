package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gbf-bot/internal/recruit"
)

type sqliteRecruitmentRepository struct {
	db *sql.DB
}

func NewRecruitmentRepository(db *sql.DB) recruit.RecruitmentRepository {
	return &sqliteRecruitmentRepository{
		db: db,
	}
}

const recruitmentColumns = `
	id, guild_id, channel_id, message_id, author_id, target_id, quest_name, battle_type,
	expiry_date, recruit_end_message_id, status, created_at, updated_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecruitment(row rowScanner) (*recruit.Recruitment, error) {
	var r recruit.Recruitment
	var completionMessageID sql.NullString
	var updatedAt sql.NullTime
	err := row.Scan(
		&r.ID,
		&r.GuildID,
		&r.ChannelID,
		&r.MessageID,
		&r.AuthorID,
		&r.TargetID,
		&r.QuestName,
		&r.BattleType,
		&r.ExpiryDate,
		&completionMessageID,
		&r.Status,
		&r.CreatedAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if completionMessageID.Valid {
		id := recruit.MessageID(completionMessageID.String)
		r.CompletionMessageID = &id
	}
	if updatedAt.Valid {
		r.UpdatedAt = &updatedAt.Time
	}
	return &r, nil
}

func (r *sqliteRecruitmentRepository) Get(ctx context.Context, id recruit.RecruitmentID) (*recruit.Recruitment, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ` + recruitmentColumns + ` FROM battle_recruitments WHERE id = ?`

	recruitment, err := scanRecruitment(executor.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recruitment %d: %w", id, recruit.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recruitment: %w", err)
	}

	return recruitment, nil
}

func (r *sqliteRecruitmentRepository) GetByMessage(ctx context.Context, key recruit.MessageKey) (*recruit.Recruitment, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ` + recruitmentColumns + `
		FROM battle_recruitments
		WHERE guild_id = ? AND channel_id = ? AND message_id = ?
	`

	recruitment, err := scanRecruitment(executor.QueryRowContext(ctx, query, key.GuildID, key.ChannelID, key.MessageID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("recruitment %s: %w", key, recruit.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recruitment: %w", err)
	}

	return recruitment, nil
}

func (r *sqliteRecruitmentRepository) Create(ctx context.Context, recruitment *recruit.Recruitment) (recruit.RecruitmentID, error) {
	executor := GetExecutor(ctx, r.db)

	query := `
		INSERT INTO battle_recruitments (
			guild_id, channel_id, message_id, author_id, target_id, quest_name,
			battle_type, expiry_date, status, created_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	status := recruitment.Status
	if status == "" {
		status = recruit.StatusOpen
	}
	createdAt := recruitment.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := executor.ExecContext(
		ctx,
		query,
		recruitment.GuildID,
		recruitment.ChannelID,
		recruitment.MessageID,
		recruitment.AuthorID,
		recruitment.TargetID,
		recruitment.QuestName,
		recruitment.BattleType,
		recruitment.ExpiryDate.UTC().Truncate(time.Second),
		status,
		createdAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create recruitment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return recruit.RecruitmentID(id), nil
}

func (r *sqliteRecruitmentRepository) HasCompletionMessage(ctx context.Context, id recruit.RecruitmentID) (bool, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT recruit_end_message_id IS NOT NULL FROM battle_recruitments WHERE id = ?`

	var has bool
	err := executor.QueryRowContext(ctx, query, id).Scan(&has)
	if errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("recruitment %d: %w", id, recruit.ErrNotFound)
	}
	if err != nil {
		return false, fmt.Errorf("failed to get completion message: %w", err)
	}

	return has, nil
}

// SetCompletionMessage は未記録の行だけを更新するため、同時に呼ばれても記録されるのは1件のみ
func (r *sqliteRecruitmentRepository) SetCompletionMessage(
	ctx context.Context,
	id recruit.RecruitmentID,
	messageID recruit.MessageID,
) (bool, error) {
	executor := GetExecutor(ctx, r.db)

	query := `
		UPDATE battle_recruitments
		SET recruit_end_message_id = ?, updated_at = ?
		WHERE id = ? AND recruit_end_message_id IS NULL
	`

	result, err := executor.ExecContext(ctx, query, messageID, time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("failed to set completion message: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

func (r *sqliteRecruitmentRepository) TransitionStatus(
	ctx context.Context,
	id recruit.RecruitmentID,
	from recruit.Status,
	to recruit.Status,
) (bool, error) {
	executor := GetExecutor(ctx, r.db)

	query := `
		UPDATE battle_recruitments
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	result, err := executor.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("failed to update status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

// ListDue は開催日時を過ぎた募集中の募集を開催日時の古い順に返す
func (r *sqliteRecruitmentRepository) ListDue(ctx context.Context, now time.Time, limit int) ([]recruit.Recruitment, error) {
	executor := GetExecutor(ctx, r.db)

	query := `SELECT ` + recruitmentColumns + `
		FROM battle_recruitments
		WHERE status = ? AND expiry_date <= ?
		ORDER BY expiry_date ASC, id ASC
		LIMIT ?
	`

	rows, err := executor.QueryContext(ctx, query, recruit.StatusOpen, now.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list due recruitments: %w", err)
	}
	defer rows.Close()

	var recruitments []recruit.Recruitment
	for rows.Next() {
		recruitment, err := scanRecruitment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recruitment: %w", err)
		}
		recruitments = append(recruitments, *recruitment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recruitments: %w", err)
	}

	return recruitments, nil
}
