package llm

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelFallbackOrder(t *testing.T) {
	c := &GeminiClient{config: &Config{Models: []string{"flash-lite", "flash"}}}

	name, ok := c.currentModel()
	assert.True(t, ok)
	assert.Equal(t, "flash-lite", name)

	c.advanceModel("flash-lite")
	name, ok = c.currentModel()
	assert.True(t, ok)
	assert.Equal(t, "flash", name)

	// advancing a model that is no longer current must not skip ahead
	c.advanceModel("flash-lite")
	name, ok = c.currentModel()
	assert.True(t, ok)
	assert.Equal(t, "flash", name)

	c.advanceModel("flash")
	_, ok = c.currentModel()
	assert.False(t, ok)
}

func TestModelFallbackConcurrentAdvance(t *testing.T) {
	c := &GeminiClient{config: &Config{Models: []string{"flash-lite", "flash"}}}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.advanceModel("flash-lite")
			c.currentModel()
		}()
	}
	wg.Wait()

	// every racer targeted the first model, so exactly one advance lands
	name, ok := c.currentModel()
	assert.True(t, ok)
	assert.Equal(t, "flash", name)
}
