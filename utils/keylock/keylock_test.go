package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockUnlock(t *testing.T) {
	l := New(16)
	l.Lock("a")
	l.Unlock("a")
	l.Lock("a")
	l.Unlock("a")
}

func TestDefaultShards(t *testing.T) {
	l := New(0)
	assert.Len(t, l.shards, 128)
}

func TestSameKeySerializes(t *testing.T) {
	l := New(16)
	counter := 0

	var wg sync.WaitGroup
	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Lock("shared")
			counter++
			l.Unlock("shared")
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

func TestStableIndex(t *testing.T) {
	l := New(32)
	assert.Equal(t, l.index("like:1:2:3"), l.index("like:1:2:3"))
}
