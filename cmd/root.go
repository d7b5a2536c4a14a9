package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/abhisek/synthgen/internal/config"
	"github.com/abhisek/synthgen/internal/llm"
	"github.com/abhisek/synthgen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "synthgen",
	Short: "Synthetic text-classification dataset generator",
	Long: "synthgen turns a dataset description into a text classification task, " +
		"generates example texts for it with an LLM and optionally labels them. " +
		"It can also emit an equivalent distilabel pipeline script.",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
}

// appConfig is resolved once per invocation by loadConfig.
var appConfig *config.Config

// ExecuteContext runs the root command with ctx.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite event database (overrides SYNTHGEN_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: synthgen.yaml in ., ./config or $HOME/.synthgen)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides SYNTHGEN_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringSlice("env-file", nil, "Load environment variables from these files (default: .env)")
	rootCmd.PersistentFlags().Bool("no-events", false, "Do not record LLM requests in the event database")

	rootCmd.AddCommand(promptCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(codeCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads .env files and the config, applies flag overrides and
// sets up logging.
func loadConfig(cmd *cobra.Command) error {
	envFiles, _ := cmd.Flags().GetStringSlice("env-file")
	if err := config.LoadEnvFiles(envFiles...); err != nil {
		return err
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}
	if noEvents, _ := cmd.Flags().GetBool("no-events"); noEvents {
		cfg.NoEvents = true
	}
	if err := setupLogging(cfg.LogLevel); err != nil {
		return err
	}

	appConfig = cfg
	return nil
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then SYNTHGEN_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if appConfig != nil && appConfig.DBPath != "" {
		return appConfig.DBPath, store.EnsureDir(appConfig.DBPath)
	}
	return store.DefaultDBPath()
}

// openStore opens the event database for the command.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// openPool builds the key-rotating provider pool. Requests are recorded
// in the event database unless events are disabled. The returned func
// releases the database.
func openPool(cmd *cobra.Command) (*llm.Pool, func(), error) {
	var repo store.EventRepo
	closer := func() {}

	if !appConfig.NoEvents {
		s, err := openStore(cmd)
		if err != nil {
			return nil, nil, err
		}
		repo = s.EventRepo()
		closer = func() { s.Close() }
	}

	pool, err := llm.NewPool(appConfig.LLM, repo)
	if err != nil {
		closer()
		return nil, nil, fmt.Errorf("LLM provider not configured: %w", err)
	}
	log.Debug().
		Str("provider", appConfig.LLM.Provider).
		Str("model", appConfig.LLM.Model()).
		Int("keys", len(appConfig.LLM.Keys())).
		Msg("provider pool ready")
	return pool, closer, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
