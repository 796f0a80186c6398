package locker_test

import (
	"sync"
	"testing"

	"ordering/internal/pkg/locker"

	"github.com/stretchr/testify/assert"
)

func TestKeyedMutex_SameKeySerializes(t *testing.T) {
	km := locker.NewKeyedMutex()

	const goroutines = 50
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("order-1")
			defer km.Unlock("order-1")
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines, counter)
}

func TestKeyedMutex_DifferentKeysAreIndependent(t *testing.T) {
	km := locker.NewKeyedMutex()

	km.Lock("order-1")

	done := make(chan struct{})
	go func() {
		km.Lock("order-2")
		km.Unlock("order-2")
		close(done)
	}()

	// Must not block on a different key while order-1 is held.
	<-done
	km.Unlock("order-1")
}

func TestKeyedMutex_UnlockOfUnheldKeyPanics(t *testing.T) {
	km := locker.NewKeyedMutex()

	assert.Panics(t, func() {
		km.Unlock("never-locked")
	})
}
