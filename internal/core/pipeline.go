package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agenthands/sift/internal/config"
	"github.com/agenthands/sift/internal/core/dedupe"
	"github.com/agenthands/sift/internal/core/fanout"
	"github.com/agenthands/sift/internal/core/model"
	"github.com/agenthands/sift/internal/core/rerank"
	"github.com/agenthands/sift/internal/llm"
	"github.com/agenthands/sift/internal/metrics"
	"github.com/agenthands/sift/internal/search"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrEmptyQuery = errors.New("query must not be empty")

const (
	DefaultMaxResults = 10
	DefaultNumQueries = 3
)

// Engine is the language-model surface the pipeline depends on.
type Engine interface {
	GenerateQueries(ctx context.Context, query string, count int) ([]string, error)
	AnswerFromTopResults(ctx context.Context, query string, results []model.Result, topN int) (string, error)
	// Embedder returns nil when the engine cannot embed text.
	Embedder() llm.EmbedderClient
}

type Request struct {
	Query         string
	MaxResults    int
	NumQueries    int
	Mode          model.Mode
	ProvideAnswer bool

	// Engine is optional. Without one the original query is searched as-is,
	// results are keyword-ranked and no answer is produced.
	Engine Engine
	// Backend overrides the pipeline's backend for this request.
	Backend search.Backend
}

// Pipeline runs expand, fan out, dedupe, rerank and answer for one query.
type Pipeline struct {
	backend  search.Backend
	executor *fanout.Executor
	cfg      *config.Config
	log      *logrus.Entry
}

func NewPipeline(backend search.Backend, executor *fanout.Executor, cfg *config.Config, log *logrus.Entry) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Pipeline{
		backend:  backend,
		executor: executor,
		cfg:      cfg,
		log:      log,
	}
}

func (p *Pipeline) Run(ctx context.Context, req Request) (out *model.SearchOutput, err error) {
	start := time.Now()
	if req.Mode == "" {
		req.Mode = model.ModeAdvanced
	}
	modeLabel := string(req.Mode)
	if req.Mode != model.ModeBasic && req.Mode != model.ModeAdvanced {
		modeLabel = "invalid"
	}
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		metrics.PipelineLatency.WithLabelValues(modeLabel, status).Observe(time.Since(start).Seconds())
	}()

	if req.Query == "" {
		return nil, ErrEmptyQuery
	}
	if req.Mode != model.ModeBasic && req.Mode != model.ModeAdvanced {
		return nil, fmt.Errorf("%w: %q", model.ErrInvalidMode, req.Mode)
	}
	if req.MaxResults <= 0 {
		req.MaxResults = p.cfg.Search.MaxResults
	}
	if req.MaxResults <= 0 {
		req.MaxResults = DefaultMaxResults
	}
	if req.NumQueries <= 0 {
		req.NumQueries = p.cfg.Search.NumQueries
	}
	if req.NumQueries <= 0 {
		req.NumQueries = DefaultNumQueries
	}
	if limit := p.cfg.Search.MaxQueries; limit > 0 && req.NumQueries > limit {
		req.NumQueries = limit
	}
	backend := req.Backend
	if backend == nil {
		backend = p.backend
	}

	log := p.log.WithFields(logrus.Fields{
		"request_id": uuid.New().String(),
		"mode":       req.Mode,
	})
	out = &model.SearchOutput{Results: []model.Result{}}

	queries, err := p.expand(ctx, req, out, log)
	if err != nil {
		return nil, err
	}

	batch, err := p.executor.Execute(ctx, backend, queries, req.MaxResults)
	if err != nil {
		return nil, err
	}
	for _, f := range batch.Failures {
		out.Warnings = append(out.Warnings, fmt.Sprintf("search for %q failed: %v", f.Query, f.Err))
	}

	results := dedupe.Deduplicate(batch.Results)
	log.WithFields(logrus.Fields{
		"queries":   len(queries),
		"collected": len(batch.Results),
		"unique":    len(results),
	}).Debug("fan-out complete")

	if len(results) == 0 {
		log.Info("no results")
		return out, nil
	}

	if req.Mode == model.ModeAdvanced {
		r := p.reranker(req.Engine)
		metrics.RerankSelections.WithLabelValues(r.Name()).Inc()

		results, err = r.Rerank(ctx, results, req.Query)
		if err != nil {
			return nil, fmt.Errorf("rerank (%s): %w", r.Name(), err)
		}
	}
	out.Results = results

	if req.Engine != nil && req.ProvideAnswer {
		answer, err := req.Engine.AnswerFromTopResults(ctx, req.Query, results, p.cfg.Rerank.AnswerTopN)
		if err != nil {
			return nil, err
		}
		out.Answer = &answer
	}

	log.WithFields(logrus.Fields{
		"results":  len(out.Results),
		"answered": out.Answer != nil,
		"duration": time.Since(start).String(),
	}).Info("search complete")

	return out, nil
}

// expand returns the queries to search. Without an engine only the original
// query is searched. When expansion fails for a reason other than missing
// credentials or cancellation, or yields no queries, the original query is
// searched and a warning is recorded.
func (p *Pipeline) expand(ctx context.Context, req Request, out *model.SearchOutput, log *logrus.Entry) ([]string, error) {
	if req.Engine == nil {
		return []string{req.Query}, nil
	}

	queries, err := req.Engine.GenerateQueries(ctx, req.Query, req.NumQueries)
	if err != nil {
		if errors.Is(err, llm.ErrMissingCredential) ||
			errors.Is(err, context.Canceled) ||
			errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return p.fallback(req, out, log, err), nil
	}
	if len(queries) > req.NumQueries {
		queries = queries[:req.NumQueries]
	}
	if len(queries) == 0 {
		return p.fallback(req, out, log, llm.ErrNoQueries), nil
	}
	return queries, nil
}

func (p *Pipeline) fallback(req Request, out *model.SearchOutput, log *logrus.Entry, err error) []string {
	metrics.ExpansionFallbacks.Inc()
	log.WithError(err).Warn("query expansion failed, searching original query")
	out.Warnings = append(out.Warnings, fmt.Sprintf("query expansion failed, searched original query only: %v", err))
	return []string{req.Query}
}

func (p *Pipeline) reranker(engine Engine) rerank.Reranker {
	if engine != nil {
		if embedder := engine.Embedder(); embedder != nil {
			return rerank.NewEmbeddingReranker(embedder, p.cfg.Rerank.EmbeddingConcurrency)
		}
	}
	return rerank.NewKeywordReranker()
}
