package discord

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

type SessionConfig interface {
	Intent() discordgo.Intent
	Handlers() []any
	Commands() []*discordgo.ApplicationCommand
	// GuildID が空ならグローバルコマンドとして登録する
	GuildID() string
}

type sessionConfig struct {
	intent   discordgo.Intent
	handlers []any
	commands []*discordgo.ApplicationCommand
	guildID  string
}

func (config *sessionConfig) Intent() discordgo.Intent {
	return config.intent
}

func (config *sessionConfig) Handlers() []any {
	return append([]any(nil), config.handlers...)
}

func (config *sessionConfig) Commands() []*discordgo.ApplicationCommand {
	return append([]*discordgo.ApplicationCommand(nil), config.commands...)
}

func (config *sessionConfig) GuildID() string {
	return config.guildID
}

func (config *sessionConfig) validate() error {
	if len(config.handlers) == 0 {
		return errors.New("no handlers registered")
	}
	seen := make(map[string]bool, len(config.commands))
	for _, command := range config.commands {
		key := fmt.Sprintf("%d/%s", command.Type, command.Name)
		if seen[key] {
			return fmt.Errorf("duplicate command: %s", command.Name)
		}
		seen[key] = true
	}
	return nil
}

type sessionConfigOption func(*sessionConfig) error

func NewSessionConfig(opts ...sessionConfigOption) (*sessionConfig, error) {
	config := &sessionConfig{}
	for _, opt := range opts {
		if err := opt(config); err != nil {
			return nil, err
		}
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func WithIntent(intent discordgo.Intent) sessionConfigOption {
	return func(config *sessionConfig) error {
		config.intent |= intent
		return nil
	}
}

func WithGuildID(guildID string) sessionConfigOption {
	return func(config *sessionConfig) error {
		config.guildID = guildID
		return nil
	}
}

func WithMessageReactionAddHandler(
	handler func(*discordgo.Session, *discordgo.MessageReactionAdd),
) sessionConfigOption {
	return withHandler(handler)
}

func WithMessageReactionRemoveHandler(
	handler func(*discordgo.Session, *discordgo.MessageReactionRemove),
) sessionConfigOption {
	return withHandler(handler)
}

func WithInteractionCreateHandler(
	handler func(*discordgo.Session, *discordgo.InteractionCreate),
) sessionConfigOption {
	return withHandler(handler)
}

func WithReadyHandler(
	handler func(*discordgo.Session, *discordgo.Ready),
) sessionConfigOption {
	return withHandler(handler)
}

func WithSlashCommand(command SlashCommand) sessionConfigOption {
	return func(config *sessionConfig) error {
		created := command.CreateCommand()
		if created == nil || created.Name == "" {
			return errors.New("slash command name is required")
		}
		config.commands = append(config.commands, created)
		return nil
	}
}

func withHandler(handler any) sessionConfigOption {
	return func(config *sessionConfig) error {
		if handler == nil {
			return errors.New("handler is nil")
		}
		config.handlers = append(config.handlers, handler)
		return nil
	}
}

// NewSession はBotトークンでセッションを作成する。接続は SessionManager.Open で行う
func NewSession(token string) (*discordgo.Session, error) {
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return session, nil
}

type SessionManager struct {
	session *discordgo.Session
	logger  *zap.SugaredLogger
	opened  bool
}

func NewSessionManager(session *discordgo.Session, logger *zap.SugaredLogger) *SessionManager {
	return &SessionManager{
		session: session,
		logger:  logger,
	}
}

// Open はハンドラを登録して接続し、スラッシュコマンドを登録する
func (manager *SessionManager) Open(config SessionConfig) error {
	if manager.opened {
		return errors.New("session already opened")
	}

	if config.Intent() != 0 {
		manager.session.Identify.Intents = config.Intent()
	}

	for _, handler := range config.Handlers() {
		manager.session.AddHandler(handler)
	}

	if err := manager.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	manager.opened = true

	commands := config.Commands()
	if len(commands) == 0 {
		return nil
	}

	appID := manager.session.State.User.ID
	registered, err := manager.session.ApplicationCommandBulkOverwrite(appID, config.GuildID(), commands)
	if err != nil {
		_ = manager.Close()
		return fmt.Errorf("failed to register commands: %w", err)
	}
	manager.logger.Infow("Registered application commands",
		"count", len(registered),
		"guild_id", config.GuildID(),
	)
	return nil
}

func (manager *SessionManager) Close() error {
	if !manager.opened {
		return nil
	}

	manager.opened = false
	return manager.session.Close()
}
