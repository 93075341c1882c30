package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New はJSON出力のロガーを作る。production以外ではDebugも出力する
func New(appEnv string) (*zap.SugaredLogger, error) {
	var config zap.Config
	if appEnv == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Encoding = "json"

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.Sugar(), nil
}

// Nop はテスト用に何も出力しないロガーを返す
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// WithEvent はイベント単位の文脈をロガーに付与する
func WithEvent(logger *zap.SugaredLogger, eventID string, guildID string, userID string, kind string) *zap.SugaredLogger {
	return logger.With(
		"event_id", eventID,
		"guild_id", guildID,
		"user_id", userID,
		"event", kind,
	)
}
