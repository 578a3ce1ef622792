// File: pkg/loader/worker.go
package loader

import (
	"iter"
	"sync"

	"go.uber.org/zap"

	"repoloader/pkg/walk"
)

type job struct {
	index     int
	candidate walk.Candidate
}

// processOrdered runs process on every candidate with a pool of workers and
// hands the results to emit in candidate order. After emit fails the
// remaining results are drained without being emitted and the first error
// is returned.
func processOrdered(
	candidates iter.Seq[walk.Candidate],
	workers int,
	process func(walk.Candidate, *zap.Logger) fileResult,
	emit func(fileResult) error,
	logger *zap.Logger,
) error {
	jobs := make(chan job, workers*2)
	results := make(chan fileResult, workers*2)
	stop := make(chan struct{})
	var wg sync.WaitGroup

	logger.Debug("Initializing worker pool", zap.Int("workers", workers))
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go worker(w, jobs, results, process, &wg, logger)
	}

	go func() {
		defer close(jobs)
		index := 0
		for c := range candidates {
			select {
			case jobs <- job{index: index, candidate: c}:
				index++
			case <-stop:
				logger.Debug("Stopped distributing files", zap.Int("distributed", index))
				return
			}
		}
		logger.Debug("All files distributed to workers", zap.Int("distributed", index))
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var firstErr error
	pending := make(map[int]fileResult)
	next := 0
	for res := range results {
		pending[res.index] = res
		for {
			ready, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			next++
			if firstErr != nil {
				continue
			}
			if err := emit(ready); err != nil {
				firstErr = err
				close(stop)
			}
		}
	}
	return firstErr
}

// worker processes candidates from jobs until the channel is closed.
func worker(id int, jobs <-chan job, results chan<- fileResult, process func(walk.Candidate, *zap.Logger) fileResult, wg *sync.WaitGroup, logger *zap.Logger) {
	defer wg.Done()
	logger = logger.With(zap.Int("workerID", id))
	logger.Debug("Worker started")

	for j := range jobs {
		res := process(j.candidate, logger)
		res.index = j.index
		results <- res
	}

	logger.Debug("Worker finished processing")
}
