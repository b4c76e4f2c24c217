package server

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/agenthands/sift/internal/config"
	"github.com/agenthands/sift/internal/core"
	"github.com/agenthands/sift/internal/core/fanout"
	"github.com/agenthands/sift/internal/core/model"
	"github.com/agenthands/sift/internal/llm"
	"github.com/agenthands/sift/internal/metrics"
	"github.com/agenthands/sift/internal/search"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const rootMessage = "Sift search API. Use POST /search with your query."

// EngineFactory builds the engine for one request from the provider name and
// the resolved API key.
type EngineFactory func(provider, apiKey string) (core.Engine, error)

type Server struct {
	cfg       *config.Config
	pipeline  *core.Pipeline
	backend   search.Backend
	newEngine EngineFactory
	log       *logrus.Entry
}

type Option func(*Server)

func WithEngineFactory(f EngineFactory) Option {
	return func(s *Server) { s.newEngine = f }
}

func NewServer(cfg *config.Config, pipeline *core.Pipeline, backend search.Backend, log *logrus.Entry, opts ...Option) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		backend:  backend,
		log:      log,
	}
	s.newEngine = func(provider, apiKey string) (core.Engine, error) {
		engine, err := llm.NewEngineForProvider(provider, apiKey, cfg, log)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/", s.Root)
	r.POST("/search", s.Search)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	return r
}

type SearchRequest struct {
	Query         string `json:"query" binding:"required"`
	MaxResults    int    `json:"max_results"`
	LLMEngine     string `json:"llm_engine"`
	NumQueries    int    `json:"num_queries"`
	Mode          string `json:"mode"`
	Proxy         string `json:"proxy"`
	Timeout       *int   `json:"timeout"` // seconds
	ProvideAnswer bool   `json:"provide_answer"`

	OpenAIAPIKey    string `json:"openai_api_key"`
	GeminiAPIKey    string `json:"gemini_api_key"`
	AnthropicAPIKey string `json:"anthropic_api_key"`
}

// apiKey resolves the credential for provider: request value first, then the
// provider's environment variable.
func (r *SearchRequest) apiKey(provider string) string {
	var key string
	switch strings.ToLower(provider) {
	case llm.ProviderOpenAI:
		key = r.OpenAIAPIKey
	case llm.ProviderGemini:
		key = r.GeminiAPIKey
	case llm.ProviderClaude:
		key = r.AnthropicAPIKey
	}
	if key != "" {
		return key
	}
	if env := llm.APIKeyEnv(provider); env != "" {
		return os.Getenv(env)
	}
	return ""
}

func (s *Server) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": rootMessage})
}

func (s *Server) Search(c *gin.Context) {
	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": core.ErrEmptyQuery.Error()})
		return
	}

	mode, err := model.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	backend, err := s.requestBackend(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pipelineReq := core.Request{
		Query:         query,
		MaxResults:    req.MaxResults,
		NumQueries:    req.NumQueries,
		Mode:          mode,
		ProvideAnswer: req.ProvideAnswer,
		Backend:       backend,
	}

	if req.LLMEngine != "" {
		engine, err := s.newEngine(req.LLMEngine, req.apiKey(req.LLMEngine))
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}
		if closer, ok := engine.(io.Closer); ok {
			defer closer.Close()
		}
		pipelineReq.Engine = engine
	}

	out, err := s.pipeline.Run(c.Request.Context(), pipelineReq)
	if err != nil {
		s.log.WithError(err).WithField("query", query).Error("search failed")
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, out)
}

// requestBackend applies the request's proxy and timeout to a copy of the
// default backend.
func (s *Server) requestBackend(req SearchRequest) (search.Backend, error) {
	if req.Proxy == "" && req.Timeout == nil {
		return s.backend, nil
	}
	configurable, ok := s.backend.(search.Configurable)
	if !ok {
		return s.backend, nil
	}

	opts := search.Options{
		Proxy:   s.cfg.Search.Proxy,
		Timeout: time.Duration(s.cfg.Search.Timeout) * time.Second,
	}
	if req.Proxy != "" {
		opts.Proxy = req.Proxy
	}
	if req.Timeout != nil && *req.Timeout > 0 {
		opts.Timeout = time.Duration(*req.Timeout) * time.Second
	}
	return configurable.WithOptions(opts)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrEmptyQuery),
		errors.Is(err, model.ErrInvalidMode),
		errors.Is(err, llm.ErrUnsupportedProvider),
		errors.Is(err, search.ErrInvalidProxy):
		return http.StatusBadRequest
	case errors.Is(err, fanout.ErrAllSearchesFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := s.log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
			"client":   c.ClientIP(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request")
			return
		}
		entry.Info("request")
	}
}
