// Package providers implements the Completer interface for each supported LLM
// provider.
//
// Supported providers: Anthropic (Claude, through the official SDK), OpenAI,
// and Ollama / LM Studio for local models. OpenAI and Ollama share one
// chat-completions client.
//
// All providers share a common retry helper with exponential back-off for
// rate limits and 5xx responses. Authentication failures are never retried
// and can be detected with [IsAuthError].
//
// The LLM-backed entity recognizer is the only consumer. Use [New] to obtain
// a Completer by provider name and model string.
package providers
