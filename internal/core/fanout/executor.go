package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/agenthands/sift/internal/core/model"
	"github.com/agenthands/sift/internal/metrics"
	"github.com/agenthands/sift/internal/search"
	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

var ErrAllSearchesFailed = errors.New("all searches failed")

// QueryFailure records a query whose backend call failed. Its results are
// missing from the batch.
type QueryFailure struct {
	Query string
	Err   error
}

type Batch struct {
	Results  []model.Result
	Failures []QueryFailure
}

type slot struct {
	results []model.Result
	err     error
}

// Executor runs one backend search per query on a shared worker pool.
type Executor struct {
	pool *ants.Pool
	log  *logrus.Entry
}

// NewPool creates the worker pool shared by every request.
func NewPool(size int) (*ants.Pool, error) {
	if size < 1 {
		size = 1
	}
	return ants.NewPool(size)
}

func NewExecutor(pool *ants.Pool, log *logrus.Entry) *Executor {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Executor{pool: pool, log: log}
}

// Execute searches every query concurrently and waits for all of them.
// Failed queries are reported in Batch.Failures; only when every query fails
// is an error returned, wrapping ErrAllSearchesFailed.
func (e *Executor) Execute(ctx context.Context, backend search.Backend, queries []string, maxResults int) (*Batch, error) {
	slots := make([]slot, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					slots[i] = slot{err: fmt.Errorf("search panicked: %v", r)}
				}
			}()
			res, err := backend.Search(ctx, q, maxResults)
			slots[i] = slot{results: res, err: err}
		}
		if err := e.pool.Submit(task); err != nil {
			wg.Done()
			slots[i] = slot{err: fmt.Errorf("failed to schedule search: %w", err)}
		}
	}
	wg.Wait()

	batch := &Batch{}
	var errs []error
	for i, s := range slots {
		if s.err != nil {
			metrics.BackendQueries.WithLabelValues(backend.Name(), "error").Inc()
			batch.Failures = append(batch.Failures, QueryFailure{Query: queries[i], Err: s.err})
			errs = append(errs, s.err)
			e.log.WithError(s.err).WithField("query", queries[i]).Warn("search failed")
			continue
		}
		metrics.BackendQueries.WithLabelValues(backend.Name(), "ok").Inc()
		batch.Results = append(batch.Results, s.results...)
	}

	if len(queries) > 0 && len(batch.Failures) == len(queries) {
		return batch, errors.Join(append([]error{ErrAllSearchesFailed}, errs...)...)
	}

	return batch, nil
}
