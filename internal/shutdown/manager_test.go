package shutdown_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"satpr/internal/logger"
	"satpr/internal/shutdown"
)

type component struct {
	name  string
	order *[]string
	mu    *sync.Mutex
	block chan struct{}
}

func (c component) Shutdown() {
	if c.block != nil {
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	*c.order = append(*c.order, c.name)
}

func TestManager_ReverseOrder(t *testing.T) {
	var (
		order []string
		mu    sync.Mutex
	)
	m := shutdown.NewManager(logger.Nop{}, time.Second)
	m.Register(component{name: "first", order: &order, mu: &mu})
	m.Register(component{name: "second", order: &order, mu: &mu})

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, []string{"second", "first"}, order)
	assert.Error(t, m.Context().Err())

	select {
	case <-m.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestManager_Timeout(t *testing.T) {
	var (
		order []string
		mu    sync.Mutex
	)
	block := make(chan struct{})
	defer close(block)

	m := shutdown.NewManager(logger.Nop{}, 10*time.Millisecond)
	m.Register(component{name: "fast", order: &order, mu: &mu})
	m.Register(component{name: "stuck", order: &order, mu: &mu, block: block})

	start := time.Now()
	m.Shutdown()

	assert.Less(t, time.Since(start), time.Second)
	mu.Lock()
	assert.Equal(t, []string{"fast"}, order)
	mu.Unlock()
}
