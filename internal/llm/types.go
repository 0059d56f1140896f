package llm

import "sync"

// Role represents the role of a message sender in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message represents a single message in a conversation.
type Message struct {
	Role    Role
	Content string
}

// CompletionRequest contains the parameters for a completion request.
type CompletionRequest struct {
	Model       string
	Messages    []Message
	MaxTokens   int
	Temperature float64
	JSONMode    bool
}

// CompletionResponse contains the result of a completion request.
type CompletionResponse struct {
	Content      string
	InputTokens  int
	OutputTokens int
	Model        string
	FinishReason string
}

// Usage accumulates token counts across the completion calls of one
// explanation run. Safe for use from multiple goroutines, although runs
// themselves invoke providers strictly sequentially.
type Usage struct {
	mu           sync.Mutex
	InputTokens  int
	OutputTokens int
	Calls        int
}

// Add records the token usage of one completion.
func (u *Usage) Add(resp *CompletionResponse) {
	if resp == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	u.InputTokens += resp.InputTokens
	u.OutputTokens += resp.OutputTokens
	u.Calls++
}

// Totals returns the accumulated input/output token counts and call count.
func (u *Usage) Totals() (input, output, calls int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.InputTokens, u.OutputTokens, u.Calls
}
