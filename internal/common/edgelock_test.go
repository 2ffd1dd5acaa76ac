package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeySymmetric(t *testing.T) {
	assert.Equal(t, Key("follow", "a", "b"), Key("follow", "b", "a"))
	assert.NotEqual(t, Key("follow", "a", "b"), Key("save", "a", "b"))
	assert.NotEqual(t, Key("follow", "a", "b"), Key("follow", "a", "c"))
}

func TestKeyNOrderInsensitive(t *testing.T) {
	assert.Equal(t, KeyN("chat", "x", "y", "z"), KeyN("chat", "z", "x", "y"))
}

func TestLockSerializesSameEdge(t *testing.T) {
	locks := NewEdgeLocks()
	key := Key("follow", "a", "b")

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock(key)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
}

func TestLockRegistryShrinks(t *testing.T) {
	locks := NewEdgeLocks()

	unlock := locks.Lock(Key("follow", "a", "b"))
	locks.mu.Lock()
	assert.Len(t, locks.locks, 1)
	locks.mu.Unlock()

	unlock()
	// 引用计数归零后锁表回收条目
	locks.mu.Lock()
	assert.Empty(t, locks.locks)
	locks.mu.Unlock()
}

func TestDifferentEdgesDoNotBlock(t *testing.T) {
	locks := NewEdgeLocks()

	unlockA := locks.Lock(Key("follow", "a", "b"))
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.Lock(Key("follow", "c", "d"))
		unlockB()
		close(done)
	}()
	<-done
}
