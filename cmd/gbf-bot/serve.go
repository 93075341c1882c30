package main

import (
	"fmt"
	"time"

	"gbf-bot/internal/cache"
	"gbf-bot/internal/config"
	"gbf-bot/internal/db/sqlite"
	"gbf-bot/internal/discord"
	"gbf-bot/internal/handler"
	"gbf-bot/internal/httpserver"
	"gbf-bot/internal/logging"
	"gbf-bot/internal/metrics"
	"gbf-bot/internal/recruit"
	"gbf-bot/internal/scheduler"
	"gbf-bot/internal/seed"
	"gbf-bot/internal/shutdown"

	"github.com/bwmarrin/discordgo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// serveCmd はBOTを起動してDiscordに接続する
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Connect to Discord and start handling recruitments",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	upSince := time.Now()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("[INIT] failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("[INIT] %w", err)
	}

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := shutdown.NotifyContext(cmd.Context())
	defer stop()

	// infra
	db, err := sqlite.InitDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("[INIT] failed to initialize database: %w", err)
	}
	defer db.Close()

	gormDB, err := sqlite.OpenGorm(db)
	if err != nil {
		return fmt.Errorf("[INIT] %w", err)
	}

	txManager := sqlite.NewTxManager(db)
	recruitRepo := sqlite.NewRecruitmentRepository(db)
	questRepo := sqlite.NewQuestRepository(gormDB)
	textRepo := sqlite.NewMessageTextRepository(gormDB)

	env := config.NewEnvironment(cfg, sqlite.NewEnvironmentRepository(gormDB), logger)
	if _, err := env.Reload(ctx); err != nil {
		return fmt.Errorf("[INIT] %w", err)
	}

	if cfg.QuestSeedPath != "" {
		importer := seed.NewImporter(questRepo, textRepo, txManager, logger)
		if _, err := importer.ImportFile(ctx, cfg.QuestSeedPath); err != nil {
			return fmt.Errorf("[INIT] %w", err)
		}
	}

	registry := metrics.NewRegistry()
	quests := cache.NewQuestRepository(questRepo, cfg.QuestCacheTTL, registry)

	session, err := discord.NewSession(cfg.Token)
	if err != nil {
		return fmt.Errorf("[INIT] %w", err)
	}

	// usecase
	gateway := discord.NewGateway(session, logger)
	engine := recruit.NewEngine(
		recruitRepo,
		quests,
		textRepo,
		gateway,
		txManager,
		env,
		recruit.NewFormatter(cfg.Location),
		logger,
		recruit.WithMetrics(registry),
	)

	// handler
	roles := handler.NewRoleChecker(cfg.ControlRole, logger)
	recruitCmd := handler.NewRecruitSlashCommand(engine, cfg.Location, env, registry, logger)
	questAutocomplete := handler.NewQuestAutocomplete(quests, logger)
	cancelCmd := handler.NewCancelMessageCommand(engine, roles, env, registry, logger)
	startCmd := handler.NewStartMessageCommand(engine, roles, env, registry, logger)
	environLoadCmd := handler.NewEnvironLoadSlashCommand(env, roles, env, registry, logger, quests)
	helpCmd := handler.NewHelpSlashCommand(env, logger)
	versionSlashCmd := handler.NewVersionSlashCommand(logger)

	reactionAddDispatcher := &discord.ReactionDispatcher{
		Listeners: []discord.ReactionListener{handler.NewReactionAddListener(engine, registry, logger)},
		Logger:    logger,
	}
	reactionRemoveDispatcher := &discord.ReactionDispatcher{
		Listeners: []discord.ReactionListener{handler.NewReactionRemoveListener(engine, registry, logger)},
		Logger:    logger,
	}
	interactionDispatcher := &discord.InteractionDispatcher{
		Listeners: []discord.InteractionListener{
			recruitCmd,
			questAutocomplete,
			cancelCmd,
			startCmd,
			environLoadCmd,
			helpCmd,
			versionSlashCmd,
		},
		Logger: logger,
	}

	sessionConfig, err := discord.NewSessionConfig(
		discord.WithIntent(discordgo.IntentGuilds),
		discord.WithIntent(discordgo.IntentGuildMessages),
		discord.WithIntent(discordgo.IntentGuildMessageReactions),
		discord.WithGuildID(cfg.GuildID),
		discord.WithReadyHandler(onReady(logger)),
		discord.WithMessageReactionAddHandler(reactionAddDispatcher.OnReactionAdd),
		discord.WithMessageReactionRemoveHandler(reactionRemoveDispatcher.OnReactionRemove),
		discord.WithInteractionCreateHandler(interactionDispatcher.OnInteractionCreate),
		discord.WithSlashCommand(recruitCmd),
		discord.WithSlashCommand(cancelCmd),
		discord.WithSlashCommand(startCmd),
		discord.WithSlashCommand(environLoadCmd),
		discord.WithSlashCommand(helpCmd),
		discord.WithSlashCommand(versionSlashCmd),
	)
	if err != nil {
		return fmt.Errorf("[INIT] failed to create session config: %w", err)
	}

	sm := discord.NewSessionManager(session, logger)
	if err := sm.Open(sessionConfig); err != nil {
		return fmt.Errorf("[INIT] failed to connect to Discord: %w", err)
	}
	defer sm.Close()

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		scheduler.New(engine, cfg.SchedulerInterval, registry, logger).Run(ctx)
		return nil
	})
	if cfg.MetricsAddr != "" {
		router := httpserver.NewRouter(map[string]httpserver.Pinger{"sqlite": db}, registry.Handler(), upSince, logger)
		server := httpserver.New(cfg.MetricsAddr, router, logger)
		group.Go(func() error { return server.Run(ctx) })
	}

	logger.Infow("Discord bot started", "guild_id", cfg.GuildID, "app_env", cfg.AppEnv)
	<-ctx.Done()
	logger.Info("Shutting down")

	return group.Wait()
}

func onReady(logger *zap.SugaredLogger) func(*discordgo.Session, *discordgo.Ready) {
	return func(_ *discordgo.Session, ready *discordgo.Ready) {
		logger.Infow("Logged in", "user", ready.User.String(), "guilds", len(ready.Guilds))
	}
}
