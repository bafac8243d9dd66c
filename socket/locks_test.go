package socket

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLockManagerAcquire(t *testing.T) {
	locks := NewLockManager()

	assert.True(t, locks.Acquire("elem-1", "alice"))

	// Contended acquire never changes the owner.
	assert.False(t, locks.Acquire("elem-1", "bob"))
	owner, held := locks.Owner("elem-1")
	assert.True(t, held)
	assert.Equal(t, "alice", owner)

	// Re-acquisition by the current owner also fails.
	assert.False(t, locks.Acquire("elem-1", "alice"))
}

func TestLockManagerRelease(t *testing.T) {
	locks := NewLockManager()
	locks.Acquire("elem-1", "alice")

	locks.Release("elem-1")
	_, held := locks.Owner("elem-1")
	assert.False(t, held)

	// Releasing an unlocked element is a no-op.
	locks.Release("elem-1")
	assert.Empty(t, locks.Snapshot())

	// The element is acquirable again.
	assert.True(t, locks.Acquire("elem-1", "bob"))
}

func TestLockManagerReleaseAll(t *testing.T) {
	locks := NewLockManager()
	locks.Acquire("elem-1", "alice")
	locks.Acquire("elem-2", "alice")
	locks.Acquire("elem-3", "bob")

	locks.ReleaseAll("alice")

	snapshot := locks.Snapshot()
	assert.Len(t, snapshot, 1)
	assert.Equal(t, "bob", snapshot["elem-3"])
}

func TestLockManagerSnapshotIsCopy(t *testing.T) {
	locks := NewLockManager()
	locks.Acquire("elem-1", "alice")

	snapshot := locks.Snapshot()
	snapshot["elem-2"] = "mallory"

	_, held := locks.Owner("elem-2")
	assert.False(t, held)
}

func TestLockManagerConcurrentAcquire(t *testing.T) {
	locks := NewLockManager()

	const contenders = 32
	var wg sync.WaitGroup
	wins := make(chan string, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(user string) {
			defer wg.Done()
			if locks.Acquire("elem-1", user) {
				wins <- user
			}
		}(fmt.Sprintf("user-%d", i))
	}
	wg.Wait()
	close(wins)

	var winners []string
	for w := range wins {
		winners = append(winners, w)
	}
	assert.Len(t, winners, 1, "exactly one contender should win the lock")

	owner, held := locks.Owner("elem-1")
	assert.True(t, held)
	assert.Equal(t, winners[0], owner)
}
