package main

import (
	"errors"
	"fmt"

	"gbf-bot/internal/config"
	"gbf-bot/internal/db/sqlite"
	"gbf-bot/internal/logging"
	"gbf-bot/internal/seed"
	"gbf-bot/internal/shutdown"

	"github.com/spf13/cobra"
)

var seedFile string

// seedCmd はDiscordに接続せずにマスタデータだけを取り込む
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Import quests, aliases and message texts from a YAML file",
	Long: `クエスト・別名・完了文言をYAMLファイルからデータベースへ取り込みます。

--file を省略した場合は QUEST_SEED_PATH を使います。
同じファイルを何度取り込んでも結果は変わりません。`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Seed YAML file (default: $QUEST_SEED_PATH)")
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := seedFile
	if path == "" {
		path = cfg.QuestSeedPath
	}
	if path == "" {
		return errors.New("seed file is required: use --file or QUEST_SEED_PATH")
	}

	logger, err := logging.New(cfg.AppEnv)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := shutdown.NotifyContext(cmd.Context())
	defer stop()

	db, err := sqlite.InitDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	gormDB, err := sqlite.OpenGorm(db)
	if err != nil {
		return err
	}

	importer := seed.NewImporter(
		sqlite.NewQuestRepository(gormDB),
		sqlite.NewMessageTextRepository(gormDB),
		sqlite.NewTxManager(db),
		logger,
	)
	result, err := importer.ImportFile(ctx, path)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "imported %d quests, %d aliases, %d message texts\n",
		result.Quests, result.Aliases, result.MessageTexts)
	return nil
}
