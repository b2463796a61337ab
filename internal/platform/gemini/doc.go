// Package gemini implements llm.Client on top of Google's Gemini API.
//
// It is an infrastructure adapter: callers depend on llm.Client and never
// see genai types. The adapter maps the chat history onto genai contents,
// sets the system instruction and JSON response mode, and classifies
// failures so that llm.Retrying can tell transient errors from permanent
// ones. Safety blocks and malformed responses are permanent.
package gemini
