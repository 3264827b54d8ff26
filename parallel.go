package pixlzr

import (
	"runtime"
	"sync"
)

// ParallelConfig configures the fork-join over grid lines.
type ParallelConfig struct {
	// NumWorkers is the number of goroutines. 0 means runtime.GOMAXPROCS(0).
	NumWorkers int

	// GrainSize is the minimum number of lines per worker before going
	// parallel.
	GrainSize int
}

// DefaultParallelConfig returns the default parallel configuration.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{NumWorkers: 0, GrainSize: 1}
}

var (
	parallelConfig   = DefaultParallelConfig()
	parallelConfigMu sync.RWMutex
)

// SetParallelConfig sets the global parallel configuration.
func SetParallelConfig(config ParallelConfig) {
	parallelConfigMu.Lock()
	defer parallelConfigMu.Unlock()
	parallelConfig = config
}

// GetParallelConfig returns the current parallel configuration.
func GetParallelConfig() ParallelConfig {
	parallelConfigMu.RLock()
	defer parallelConfigMu.RUnlock()
	return parallelConfig
}

func effectiveWorkers(config ParallelConfig) int {
	if config.NumWorkers <= 0 {
		return runtime.GOMAXPROCS(0)
	}
	return config.NumWorkers
}

// parallelFor runs fn(i) for i in [0, n). Each index is handled by exactly
// one goroutine, so fn may write to slot i of a preallocated result slice.
// The first error is returned; remaining chunks stop at their next index.
func parallelFor(n int, fn func(i int) error) error {
	config := GetParallelConfig()
	numWorkers := effectiveWorkers(config)
	grain := config.GrainSize
	if grain < 1 {
		grain = 1
	}

	if n <= grain || numWorkers == 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}
	if maxWorkers := (n + grain - 1) / grain; numWorkers > maxWorkers {
		numWorkers = maxWorkers
	}

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
		failed   = make(chan struct{})
	)
	chunkSize := (n + numWorkers - 1) / numWorkers

	for start := 0; start < n; start += chunkSize {
		end := min(start+chunkSize, n)
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				select {
				case <-failed:
					return
				default:
				}
				if err := fn(i); err != nil {
					errOnce.Do(func() {
						firstErr = err
						close(failed)
					})
					return
				}
			}
		}(start, end)
	}

	wg.Wait()
	return firstErr
}
