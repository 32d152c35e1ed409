package finder

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/swdee/go-vehicletrack/features"
	"go.uber.org/multierr"
)

// NewExtractorFunc creates one feature extractor for the pool
type NewExtractorFunc func() (features.Extractor, error)

// Pool is a simple pool of feature extractors so each worker evaluating
// windows has exclusive use of one extractor and its scratch memory
type Pool struct {
	// pool of extractors
	extractors chan features.Extractor
	// size of pool
	size  int
	close sync.Once
	err   error
}

// NewPool creates a new extractor pool
func NewPool(size int, newExtractor NewExtractorFunc) (*Pool, error) {

	if size < 1 {
		return nil, errors.Errorf("pool size must be at least 1, got %d", size)
	}

	p := &Pool{
		extractors: make(chan features.Extractor, size),
		size:       size,
	}

	for i := 0; i < size; i++ {
		ext, err := newExtractor()

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			p.Close()
			return nil, errors.Wrapf(err, "error creating extractor %d", i)
		}

		// attach to pool
		p.Return(ext)
	}

	return p, nil
}

// Size returns the number of extractors in the pool
func (p *Pool) Size() int {
	return p.size
}

// Get an extractor from the pool, blocking until one is free.  Returns nil
// once the pool is closed.
func (p *Pool) Get() features.Extractor {
	return <-p.extractors
}

// Return an extractor to the pool.  Must not be called after Close.
func (p *Pool) Return(ext features.Extractor) {
	select {
	case p.extractors <- ext:
	default:
		// pool is full
	}
}

// Close the pool and all extractors in it
func (p *Pool) Close() error {
	p.close.Do(func() {
		// close channel
		close(p.extractors)

		// close all extractors
		for next := range p.extractors {
			p.err = multierr.Append(p.err, next.Close())
		}
	})

	return p.err
}
