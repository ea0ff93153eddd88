package workflow

import "sync"

// jobLocks serializes workflow operations per job id. Entries are dropped
// once no goroutine holds or waits for them.
type jobLocks struct {
	mu    sync.Mutex
	locks map[int64]*jobLock
}

type jobLock struct {
	sync.Mutex
	refs int
}

func newJobLocks() *jobLocks {
	return &jobLocks{locks: make(map[int64]*jobLock)}
}

// lock blocks until jobID is free and returns the matching unlock
func (l *jobLocks) lock(jobID int64) func() {
	l.mu.Lock()
	jl, ok := l.locks[jobID]
	if !ok {
		jl = &jobLock{}
		l.locks[jobID] = jl
	}
	jl.refs++
	l.mu.Unlock()

	jl.Lock()

	return func() {
		jl.Unlock()

		l.mu.Lock()
		jl.refs--
		if jl.refs == 0 {
			delete(l.locks, jobID)
		}
		l.mu.Unlock()
	}
}

func (l *jobLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
