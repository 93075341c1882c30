package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gbf-bot/internal/uow"

	"gorm.io/gorm"
)

type txKey struct{}

// executor は *sql.DB と *sql.Tx の共通部分
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txManager struct {
	db *sql.DB
}

// NewTxManager は ctx にトランザクションを載せて fn に渡す UnitOfWork を返す。
// raw SQL のリポジトリは GetExecutor、gorm のリポジトリは gormConn で同じトランザクションを使う
func NewTxManager(db *sql.DB) uow.UnitOfWork {
	return &txManager{db: db}
}

func (m *txManager) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	// 入れ子は外側のトランザクションに参加する
	if getTx(ctx) != nil {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		// panic時もここでロールバックされ、panicはそのまま伝わる
		if committed {
			return
		}
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rerr))
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

func getTx(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// GetExecutor はトランザクション内ならその Tx を、外なら DB を返す
func GetExecutor(ctx context.Context, db *sql.DB) executor {
	if tx := getTx(ctx); tx != nil {
		return tx
	}
	return db
}

// gormConn はcontextのトランザクションをgormのコネクションとして使う。
// 接続数1のDBでトランザクション外の接続を待ち続けないようにする
func gormConn(ctx context.Context, db *gorm.DB) *gorm.DB {
	conn := db.WithContext(ctx)
	if tx := getTx(ctx); tx != nil {
		conn.Statement.ConnPool = tx
	}
	return conn
}
