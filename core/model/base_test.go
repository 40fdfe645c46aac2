package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateManagerZeroValue(t *testing.T) {
	var s StateManager
	assert.False(t, s.IsFitted())
	assert.Equal(t, NotFitted, s.State())
}

func TestStateManagerLifecycle(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	s.SetFitted()
	assert.True(t, s.IsFitted())
	assert.Equal(t, Fitted, s.State())

	s.Reset()
	assert.False(t, s.IsFitted())
	assert.Equal(t, NotFitted, s.State())
}

func TestStateManagerConcurrentReaders(t *testing.T) {
	s := NewStateManager()
	s.SetFitted()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				assert.True(t, s.IsFitted())
			}
		}()
	}
	wg.Wait()
}
