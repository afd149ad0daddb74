package llm

import "context"

// MockCompleter is a test double for Completer. Unset functions return a
// fixed canned reply.
type MockCompleter struct {
	CompleteFunc       func(ctx context.Context, messages []Message) (string, error)
	StreamCompleteFunc func(ctx context.Context, messages []Message, onChunk func(string) error) (string, error)

	CompleteCalls int
	StreamCalls   int
	LastMessages  []Message
}

func (m *MockCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	m.CompleteCalls++
	m.LastMessages = messages
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, messages)
	}
	return "mock reply", nil
}

func (m *MockCompleter) StreamComplete(ctx context.Context, messages []Message, onChunk func(string) error) (string, error) {
	m.StreamCalls++
	m.LastMessages = messages
	if m.StreamCompleteFunc != nil {
		return m.StreamCompleteFunc(ctx, messages, onChunk)
	}
	if onChunk != nil {
		if err := onChunk("mock "); err != nil {
			return "", err
		}
		if err := onChunk("reply"); err != nil {
			return "mock ", err
		}
	}
	return "mock reply", nil
}
