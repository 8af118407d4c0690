package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/0vg/GoodGit/internal/config"
	"github.com/0vg/GoodGit/internal/core"
	"github.com/0vg/GoodGit/internal/llm"
	"github.com/0vg/GoodGit/internal/llm/anthropic"
	"github.com/0vg/GoodGit/internal/llm/groq"
	"github.com/0vg/GoodGit/internal/llm/openai"
	"github.com/0vg/GoodGit/internal/tui"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "goodgit [subject]",
	Short:   "Generate Conventional Commit messages from staged changes",
	Long:    "goodgit reads the staged diff, asks a text-generation API for a Conventional Commits message, validates it, and optionally creates the commit.",
	Args:    cobra.MaximumNArgs(1),
	Version: version,
	Run:     run,
}

func init() {
	rootCmd.Flags().BoolP("commit", "c", false, "create the commit without the interactive menu")
	rootCmd.Flags().BoolP("push", "p", false, "push after a successful commit")
}

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if config.IsDebug() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// .env is a front-end convenience; the pipeline itself never reads the
	// environment.
	if err := godotenv.Load(); err == nil {
		log.Debug().Msg("Loaded .env file")
	}

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Failed to execute root command")
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		log.Error().Err(err).Msg("Invalid configuration")
		os.Exit(1)
	}

	provider, err := newProvider(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize AI client")
	}

	c := core.NewCore(core.ExecBackend{}, provider, cfg)
	tui.Run(cmd, args, c)
}

func newProvider(cfg config.Config) (llm.Provider, error) {
	switch cfg.Provider {
	case config.ProviderGroq:
		return groq.New(cfg), nil
	case config.ProviderAnthropic:
		return anthropic.New(cfg), nil
	case config.ProviderOpenAI:
		return openai.New(cfg), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}
