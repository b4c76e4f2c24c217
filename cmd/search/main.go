package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/agenthands/sift/internal/config"
	"github.com/agenthands/sift/internal/core"
	"github.com/agenthands/sift/internal/core/fanout"
	"github.com/agenthands/sift/internal/core/model"
	"github.com/agenthands/sift/internal/llm"
	"github.com/agenthands/sift/internal/logger"
	"github.com/agenthands/sift/internal/search"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

var errMissingQuery = errors.New("a search query is required")

func main() {
	_ = godotenv.Load()

	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:      "search",
		Usage:     "Run a multi-query web search and print the results as JSON",
		ArgsUsage: "<query>",
		Writer:    out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the TOML configuration file",
				Value:   "config/config.toml",
				EnvVars: []string{"CONFIG_PATH"},
			},
			&cli.StringFlag{
				Name:    "engine",
				Aliases: []string{"e"},
				Usage:   "LLM engine for expansion, ranking and answers (openai, gemini, claude, ollama)",
			},
			&cli.StringFlag{
				Name:    "mode",
				Aliases: []string{"m"},
				Usage:   "basic or advanced",
				Value:   string(model.ModeAdvanced),
			},
			&cli.IntFlag{
				Name:    "max-results",
				Aliases: []string{"n"},
				Usage:   "Maximum results per query",
				Value:   core.DefaultMaxResults,
			},
			&cli.IntFlag{
				Name:  "num-queries",
				Usage: "Number of expanded queries",
				Value: core.DefaultNumQueries,
			},
			&cli.BoolFlag{
				Name:    "answer",
				Aliases: []string{"a"},
				Usage:   "Synthesize an answer from the top results",
			},
			&cli.StringFlag{
				Name:  "proxy",
				Usage: "Proxy URL for search requests (http, https, socks5, socks5h)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Per-request timeout for the search backend",
				Value: 20 * time.Second,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Action: searchCommand,
	}
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return errMissingQuery
	}
	mode, err := model.ParseMode(c.String("mode"))
	if err != nil {
		return err
	}

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if p := c.String("proxy"); p != "" {
		cfg.Search.Proxy = p
	}
	cfg.Search.Timeout = int(c.Duration("timeout").Seconds())

	log := logger.NewWithWriter(c.App.ErrWriter, c.String("log-level"), "text")

	backend, err := search.NewBackend(cfg.Search, logger.Component(log, "search"))
	if err != nil {
		return err
	}
	pool, err := fanout.NewPool(cfg.Search.PoolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	pipeline := core.NewPipeline(backend, fanout.NewExecutor(pool, logger.Component(log, "fanout")), cfg, logger.Component(log, "pipeline"))

	req := core.Request{
		Query:         query,
		MaxResults:    c.Int("max-results"),
		NumQueries:    c.Int("num-queries"),
		Mode:          mode,
		ProvideAnswer: c.Bool("answer"),
	}
	if provider := c.String("engine"); provider != "" {
		apiKey := ""
		if env := llm.APIKeyEnv(provider); env != "" {
			apiKey = os.Getenv(env)
		}
		engine, err := llm.NewEngineForProvider(provider, apiKey, cfg, logger.Component(log, "llm"))
		if err != nil {
			return err
		}
		defer engine.Close()
		req.Engine = engine
	}

	out, err := pipeline.Run(c.Context, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(c.App.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
