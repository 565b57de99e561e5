// Package worker provides a bounded parallel task pool with progress
// reporting, used for baking frame sequences and rendering image rows.
package worker

import (
	"context"
	"sync"
	"time"
)

// Task is one unit of work.
type Task interface {
	Execute(ctx context.Context) error
	Describe() string
}

// Generator produces the task list for a run, e.g. one bake task per
// animation frame.
type Generator interface {
	Generate(ctx context.Context) ([]Task, error)
}

// Result is the outcome of a single task.
type Result struct {
	Task    Task
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config struct {
	Workers    int
	OnProgress ProgressFunc
}

// Pool runs tasks over a fixed number of goroutines.
type Pool struct {
	workers    int
	onProgress ProgressFunc
}

// New creates a worker pool. Worker counts below 1 are clamped to 1.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		onProgress: cfg.OnProgress,
	}
}

// Run executes the tasks in parallel and returns their results. It
// blocks until every queued task finished or the context was cancelled;
// tasks reached after cancellation carry ctx.Err() in their result.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	var (
		completed int
		failed    int
		mu        sync.Mutex
	)

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	go func() {
		for _, task := range tasks {
			select {
			case taskCh <- task:
			case <-ctx.Done():
			}
		}
		close(taskCh)
	}()

	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		for result := range resultCh {
			results = append(results, result)

			mu.Lock()
			completed++
			if result.Err != nil {
				failed++
			}
			c, f := completed, failed
			mu.Unlock()

			if p.onProgress != nil {
				p.onProgress(c, len(tasks), f)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		select {
		case <-ctx.Done():
			results <- Result{Task: task, Err: ctx.Err()}
			continue
		default:
		}

		start := time.Now()
		err := task.Execute(ctx)

		results <- Result{
			Task:    task,
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}
