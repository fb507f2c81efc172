package excelmcp

import (
	"path/filepath"
	"sync"
)

// pathLocks hands out a reader/writer lock per canonical workbook path.
// Entries are reference counted and dropped once no caller holds them.
type pathLocks struct {
	mu    sync.Mutex
	locks map[string]*pathLock
}

type pathLock struct {
	sync.RWMutex
	refs int
}

func newPathLocks() *pathLocks {
	return &pathLocks{locks: make(map[string]*pathLock)}
}

// acquire locks path for writing (exclusive) or reading (shared) and returns
// the matching unlock function.
func (p *pathLocks) acquire(path string, exclusive bool) (unlock func()) {
	key := canonicalPath(path)

	p.mu.Lock()
	l, ok := p.locks[key]
	if !ok {
		l = &pathLock{}
		p.locks[key] = l
	}
	l.refs++
	p.mu.Unlock()

	if exclusive {
		l.Lock()
	} else {
		l.RLock()
	}

	return func() {
		if exclusive {
			l.Unlock()
		} else {
			l.RUnlock()
		}
		p.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(p.locks, key)
		}
		p.mu.Unlock()
	}
}

func canonicalPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	// The file may not exist yet (create_workbook), so resolve the directory.
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		return filepath.Join(dir, filepath.Base(abs))
	}
	return abs
}
