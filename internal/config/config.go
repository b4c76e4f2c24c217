package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

type ServerConfig struct {
	Port      string `toml:"port"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"` // "json" or "text"
}

type SearchConfig struct {
	Backend    string `toml:"backend"`
	BaseURL    string `toml:"base_url"`
	UserAgent  string `toml:"user_agent"`
	Proxy      string `toml:"proxy"`
	Timeout    int    `toml:"timeout"` // seconds, per backend call
	MaxResults int    `toml:"max_results"`
	NumQueries int    `toml:"num_queries"`
	MaxQueries int    `toml:"max_queries"`
	PoolSize   int    `toml:"pool_size"`

	// Minimum spacing between backend requests, in milliseconds. Zero disables the limiter.
	RateInterval int `toml:"rate_interval_ms"`
	RateBurst    int `toml:"rate_burst"`

	BreakerMaxFailures uint32 `toml:"breaker_max_failures"`
	BreakerTimeout     int    `toml:"breaker_timeout"` // seconds the breaker stays open
}

type ProviderConfig struct {
	Model          string `toml:"model"`
	EmbeddingModel string `toml:"embedding_model"`
	BaseURL        string `toml:"base_url"`
}

type LLMConfig struct {
	OpenAI ProviderConfig `toml:"openai"`
	Gemini ProviderConfig `toml:"gemini"`
	Claude ProviderConfig `toml:"claude"`
	Ollama ProviderConfig `toml:"ollama"`
}

type PromptsConfig struct {
	// Expansion is formatted with the user query and the number of queries.
	Expansion string `toml:"expansion"`
	// Answer is formatted with the user query and the rendered web results.
	Answer string `toml:"answer"`
}

type RerankConfig struct {
	EmbeddingConcurrency int `toml:"embedding_concurrency"`
	AnswerTopN           int `toml:"answer_top_n"`
}

type Config struct {
	Server  ServerConfig  `toml:"server"`
	Search  SearchConfig  `toml:"search"`
	LLM     LLMConfig     `toml:"llm"`
	Prompts PromptsConfig `toml:"prompts"`
	Rerank  RerankConfig  `toml:"rerank"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      "8000",
			LogLevel:  "info",
			LogFormat: "json",
		},
		Search: SearchConfig{
			Backend:            "duckduckgo",
			BaseURL:            "https://html.duckduckgo.com/html/",
			UserAgent:          "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0",
			Timeout:            20,
			MaxResults:         10,
			NumQueries:         3,
			MaxQueries:         10,
			PoolSize:           32,
			RateInterval:       0,
			RateBurst:          1,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30,
		},
		LLM: LLMConfig{
			OpenAI: ProviderConfig{Model: "gpt-4o-mini", EmbeddingModel: "text-embedding-3-small"},
			Gemini: ProviderConfig{Model: "gemini-1.5-flash", EmbeddingModel: "text-embedding-004"},
			Claude: ProviderConfig{Model: "claude-3-5-haiku-latest"},
			Ollama: ProviderConfig{Model: "llama3.1", EmbeddingModel: "nomic-embed-text", BaseURL: "http://localhost:11434"},
		},
		Rerank: RerankConfig{
			EmbeddingConcurrency: 1,
			AnswerTopN:           5,
		},
	}
}

// Load reads the TOML file at path on top of the defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides file values with environment variables when present.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Server.LogFormat = v
	}
	if v := os.Getenv("SEARCH_BASE_URL"); v != "" {
		c.Search.BaseURL = v
	}
	if v := os.Getenv("SEARCH_PROXY"); v != "" {
		c.Search.Proxy = v
	}
	if v := os.Getenv("SEARCH_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.PoolSize = n
		}
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.LLM.OpenAI.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_BASE_URL"); v != "" {
		c.LLM.Ollama.BaseURL = v
	}
	if v := os.Getenv("OLLAMA_MODEL"); v != "" {
		c.LLM.Ollama.Model = v
	}
}
