package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidatePool_Active(t *testing.T) {
	pool := NewCandidatePool("a", "b", "c")

	id, version, ok := pool.Active()
	assert.True(t, ok)
	assert.Equal(t, "a", id)
	assert.Equal(t, 0, version)
	assert.Equal(t, 3, pool.Size())
}

func TestCandidatePool_ActiveEmpty(t *testing.T) {
	pool := NewCandidatePool()

	_, _, ok := pool.Active()
	assert.False(t, ok)
	assert.Equal(t, 0, pool.Size())
}

func TestCandidatePool_Rotate(t *testing.T) {
	pool := NewCandidatePool("a", "b", "c")

	_, version, _ := pool.Active()
	next, ok := pool.Rotate(version)
	assert.True(t, ok)
	assert.Equal(t, "b", next)
	assert.Equal(t, []string{"b", "c", "a"}, pool.IDs())
}

func TestCandidatePool_RotateStaleVersion(t *testing.T) {
	pool := NewCandidatePool("a", "b", "c")

	_, version, _ := pool.Active()
	first, ok := pool.Rotate(version)
	assert.True(t, ok)
	assert.Equal(t, "b", first)

	// A caller holding the pre-rotation version adopts the rotation already
	// performed instead of rotating again.
	second, ok := pool.Rotate(version)
	assert.True(t, ok)
	assert.Equal(t, "b", second)
	assert.Equal(t, []string{"b", "c", "a"}, pool.IDs())
}

func TestCandidatePool_RotateSingleCandidate(t *testing.T) {
	pool := NewCandidatePool("only")

	_, version, _ := pool.Active()
	next, ok := pool.Rotate(version)
	assert.True(t, ok)
	assert.Equal(t, "only", next)
	assert.Equal(t, []string{"only"}, pool.IDs())
}
