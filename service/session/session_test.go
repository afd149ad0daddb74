package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonic-agent/sonicbot/service/llm"
)

func TestStore_AppendAndHistory(t *testing.T) {
	store := NewStore()
	store.Append("c1", llm.Message{Role: llm.RoleUser, Content: "hello"})
	store.Append("c1", llm.Message{Role: llm.RoleAssistant, Content: "hi"})
	store.Append("c2", llm.Message{Role: llm.RoleUser, Content: "other"})

	h := store.History("c1")
	require.Len(t, h, 2)
	assert.Equal(t, "hello", h[0].Content)
	assert.Equal(t, "hi", h[1].Content)
	assert.Len(t, store.History("c2"), 1)
}

func TestStore_HistoryReturnsCopy(t *testing.T) {
	store := NewStore()
	store.Append("c1", llm.Message{Role: llm.RoleUser, Content: "original"})

	h := store.History("c1")
	h[0].Content = "mutated"

	assert.Equal(t, "original", store.History("c1")[0].Content)
}

func TestStore_Reset(t *testing.T) {
	store := NewStore()
	store.Append("c1", llm.Message{Role: llm.RoleUser, Content: "hello"})
	store.Reset("c1")
	assert.Empty(t, store.History("c1"))
	assert.Zero(t, store.Len("c1"))
}

func TestStore_HistoryBounded(t *testing.T) {
	store := NewStore()
	for i := 0; i < maxHistory+10; i++ {
		store.Append("c1", llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("msg %d", i)})
	}

	h := store.History("c1")
	require.Len(t, h, maxHistory)
	assert.Equal(t, fmt.Sprintf("msg %d", 10), h[0].Content)
}

func TestStore_ConcurrentConversations(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("c%d", i)
			for j := 0; j < 10; j++ {
				store.Append(id, llm.Message{Role: llm.RoleUser, Content: "x"})
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 20; i++ {
		assert.Equal(t, 10, store.Len(fmt.Sprintf("c%d", i)))
	}
}
