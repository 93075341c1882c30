package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

func InitDB(dbPath string) (*sql.DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create db directory: %w", err)
	}
	// データベース接続。外部キー制約は接続ごとに有効化する
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// 書き込みを1接続に直列化して条件付き更新を確実に排他する
	db.SetMaxOpenConns(1)

	// テーブル作成
	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
	-- 募集テーブル
	CREATE TABLE IF NOT EXISTS battle_recruitments (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		channel_id TEXT NOT NULL,
		message_id TEXT NOT NULL,
		author_id TEXT NOT NULL DEFAULT '',
		target_id INTEGER NOT NULL DEFAULT 0,
		quest_name TEXT NOT NULL DEFAULT '',
		battle_type INTEGER NOT NULL,
		expiry_date TIMESTAMP NOT NULL,
		recruit_end_message_id TEXT,
		status TEXT NOT NULL DEFAULT 'open',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP,
		UNIQUE (guild_id, channel_id, message_id)
	);

	-- クエストマスタ
	CREATE TABLE IF NOT EXISTS quests (
		target_id INTEGER PRIMARY KEY,
		quest_name TEXT NOT NULL,
		default_battle_type INTEGER NOT NULL DEFAULT 0
	);

	-- クエスト別名
	CREATE TABLE IF NOT EXISTS quests_alias (
		alias TEXT PRIMARY KEY,
		target_id INTEGER NOT NULL,
		FOREIGN KEY (target_id) REFERENCES quests(target_id) ON DELETE CASCADE
	);

	-- 文言マスタ。guild_id '0' は全サーバー共通
	CREATE TABLE IF NOT EXISTS message_texts (
		guild_id TEXT NOT NULL DEFAULT '0',
		message_id TEXT NOT NULL,
		message_jp TEXT NOT NULL,
		message_en TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (guild_id, message_id)
	);

	-- 実行時設定
	CREATE TABLE IF NOT EXISTS environments (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP
	);

	-- インデックス
	CREATE INDEX IF NOT EXISTS idx_battle_recruitments_status_expiry ON battle_recruitments(status, expiry_date);
	CREATE INDEX IF NOT EXISTS idx_quests_alias_target_id ON quests_alias(target_id);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}
