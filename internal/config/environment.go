package config

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// EnvironmentSource は実行時設定の保存先
type EnvironmentSource interface {
	All(ctx context.Context) (map[string]string, error)
}

// Environment は起動時の設定を environments テーブルの値で上書きする。
// environ_load コマンドで再読み込みされる
type Environment struct {
	mu     sync.RWMutex
	base   *Config
	source EnvironmentSource
	values map[string]string
	logger *zap.SugaredLogger
}

func NewEnvironment(base *Config, source EnvironmentSource, logger *zap.SugaredLogger) *Environment {
	return &Environment{
		base:   base,
		source: source,
		values: map[string]string{},
		logger: logger,
	}
}

// Reload は保存先から全件を読み直す。失敗時は以前の値を保持する
func (e *Environment) Reload(ctx context.Context) (int, error) {
	values, err := e.source.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to reload environments: %w", err)
	}

	e.mu.Lock()
	e.values = values
	e.mu.Unlock()

	e.logger.Infow("environments reloaded", "count", len(values))
	return len(values), nil
}

func (e *Environment) Get(key string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	v, ok := e.values[key]
	return v, ok
}

// PartyCapacity は上書き値が不正なら起動時の値を使う
func (e *Environment) PartyCapacity() int {
	if v, ok := e.Get(KeyPartyCapacity); ok {
		capacity, err := parseCapacity(v)
		if err == nil {
			return capacity
		}
		e.logger.Warnw("ignoring invalid environment value", "key", KeyPartyCapacity, "value", v)
	}
	return e.base.PartyCapacity
}

func (e *Environment) Locale() string {
	if v, ok := e.Get(KeyDefaultLocale); ok && v != "" {
		return v
	}
	return e.base.DefaultLocale
}
