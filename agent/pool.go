package agent

import "sync"

// CandidatePool is a rotating ring of model ids shared by the runtimes of one
// deployment. The front of the ring is the active candidate; on quota
// exhaustion the front is moved to the back so every runtime converges on the
// next healthy model.
//
// Rotations are versioned: a caller that observed version v rotates only if
// the pool is still at v, so concurrent runtimes reacting to the same quota
// burst advance the ring once, not once per caller.
type CandidatePool struct {
	mu      sync.Mutex
	ids     []string
	version int
}

// NewCandidatePool creates a pool with the given model ids in priority order.
func NewCandidatePool(ids ...string) *CandidatePool {
	out := make([]string, len(ids))
	copy(out, ids)
	return &CandidatePool{ids: out}
}

// Size returns the number of candidates in the pool.
func (p *CandidatePool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.ids)
}

// IDs returns a copy of the ring in current order.
func (p *CandidatePool) IDs() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.ids))
	copy(out, p.ids)
	return out
}

// Active returns the current front candidate and the pool version, or false
// when the pool is empty.
func (p *CandidatePool) Active() (string, int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.ids) == 0 {
		return "", p.version, false
	}
	return p.ids[0], p.version, true
}

// Rotate moves the front candidate to the back if the pool is still at the
// observed version, returning the new front. When the version has already
// advanced the ring is left untouched and the current front is returned, so
// late callers simply adopt the rotation someone else performed.
func (p *CandidatePool) Rotate(observedVersion int) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.ids) == 0 {
		return "", false
	}
	if p.version == observedVersion && len(p.ids) > 1 {
		p.ids = append(p.ids[1:], p.ids[0])
		p.version++
	}
	return p.ids[0], true
}
