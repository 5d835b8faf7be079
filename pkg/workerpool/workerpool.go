// Package workerpool provides bounded-parallelism execution for batches of
// independent tasks, used by the scenario comparator to evaluate scenarios
// concurrently.
package workerpool

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Config configures the worker pool.
type Config struct {
	MaxConcurrent int // Maximum tasks in flight (default: 4)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 4,
	}
}

// Pool executes task batches with bounded parallelism. A semaphore limits the
// number of tasks in flight; a failing task never stops the rest of the batch.
type Pool struct {
	config Config
	logger *zap.Logger
}

// New creates a worker pool.
func New(config Config, logger *zap.Logger) *Pool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = 4
	}
	return &Pool{
		config: config,
		logger: logger.Named("worker-pool"),
	}
}

// Task is a unit of work to be executed.
type Task[T any] struct {
	ID  string                               // For logging/tracking
	Run func(ctx context.Context) (T, error) // The work to be executed
}

// Result is the outcome of one task.
type Result[T any] struct {
	ID    string
	Value T
	Err   error
}

// Run executes all tasks with bounded parallelism and returns results in
// submission order, one per task. Tasks still waiting for a slot when the
// context is cancelled report ctx.Err() as their result.
func Run[T any](ctx context.Context, pool *Pool, tasks []Task[T]) []Result[T] {
	if len(tasks) == 0 {
		return nil
	}

	results := make([]Result[T], len(tasks))
	sem := make(chan struct{}, pool.config.MaxConcurrent)

	var wg sync.WaitGroup

	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task[T]) {
			defer wg.Done()

			// Acquire semaphore slot (blocks if at max concurrency)
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[i] = Result[T]{ID: task.ID, Err: ctx.Err()}
				return
			}

			value, err := task.Run(ctx)
			if err != nil {
				pool.logger.Debug("task failed",
					zap.String("task_id", task.ID),
					zap.Error(err))
			}
			results[i] = Result[T]{ID: task.ID, Value: value, Err: err}
		}(i, task)
	}

	wg.Wait()
	return results
}
