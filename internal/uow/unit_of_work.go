// Package uow は複数リポジトリへの書き込みを1つの単位にまとめる
package uow

import "context"

// UnitOfWork は fn をトランザクション内で実行する。
// fn に渡される ctx を使ったリポジトリ操作だけが同じトランザクションに乗る
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Func は関数を UnitOfWork として扱う
type Func func(ctx context.Context, fn func(ctx context.Context) error) error

func (f Func) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// Direct はトランザクションを張らずに fn をそのまま実行する
var Direct UnitOfWork = Func(func(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
})
