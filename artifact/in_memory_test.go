package artifact

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryStore_SaveGetIsolation(t *testing.T) {
	store := NewInMemoryStore()
	data := []byte("hello")
	require.NoError(t, store.Save("run1", "a1", data))

	// Mutating the original slice must not affect the stored copy.
	data[0] = 'H'
	out, err := store.Get("run1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out))

	// Mutating the returned slice must not affect the stored copy either.
	out[0] = 'x'
	out2, err := store.Get("run1", "a1")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(out2))
}

func TestInMemoryStore_ListAndDelete(t *testing.T) {
	store := NewInMemoryStore()
	require.NoError(t, store.Save("run1", "a1", []byte("1")))
	require.NoError(t, store.Save("run1", "a2", []byte("2")))

	names, err := store.List("run1")
	require.NoError(t, err)
	assert.Len(t, names, 2)

	require.NoError(t, store.Delete("run1", "a1"))
	_, err = store.Get("run1", "a1")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err = store.List("run1")
	require.NoError(t, err)
	assert.Len(t, names, 1)
}

func TestInMemoryStore_MissingRun(t *testing.T) {
	store := NewInMemoryStore()

	_, err := store.Get("nope", "a1")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err := store.List("nope")
	require.NoError(t, err)
	assert.Empty(t, names)

	assert.ErrorIs(t, store.Delete("nope", "a1"), ErrNotFound)
}

func TestInMemoryStore_Concurrency(t *testing.T) {
	store := NewInMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fmt.Sprintf("a%d", i%10)
			if err := store.Save("run1", name, []byte("data")); err != nil {
				t.Errorf("save err: %v", err)
			}
			_, _ = store.List("run1")
		}()
	}
	wg.Wait()

	names, err := store.List("run1")
	require.NoError(t, err)
	assert.Len(t, names, 10)
}
