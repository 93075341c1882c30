package shutdown

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// NotifyContext は終了シグナルを受けるとキャンセルされるコンテキストを返す
func NotifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
}
