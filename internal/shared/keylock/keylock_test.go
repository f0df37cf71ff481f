package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_DefaultStripes(t *testing.T) {
	t.Parallel()

	assert.Len(t, New(0).stripes, DefaultStripes)
	assert.Len(t, New(8).stripes, 8)
}

func TestStriped_SameKeySameStripe(t *testing.T) {
	t.Parallel()

	s := New(16)
	assert.Same(t, s.stripe("AAPL|15m|long|false"), s.stripe("AAPL|15m|long|false"))
}

func TestStriped_DoSerializesPerKey(t *testing.T) {
	t.Parallel()

	s := New(4)
	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Do("AAPL", func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}
