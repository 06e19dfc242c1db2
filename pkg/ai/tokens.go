package ai

import (
	"github.com/pkoukk/tiktoken-go"
)

const tokenEncoding = "o200k_base"

// CountTokens returns the token count of text under the o200k_base encoding.
func CountTokens(text string) (int, error) {
	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// TruncateTokens cuts text down to at most maxTokens tokens. Text at or
// under the budget is returned unchanged.
func TruncateTokens(text string, maxTokens int) (string, error) {
	if maxTokens <= 0 {
		return text, nil
	}
	enc, err := tiktoken.GetEncoding(tokenEncoding)
	if err != nil {
		return text, err
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= maxTokens {
		return text, nil
	}
	return enc.Decode(tokens[:maxTokens]), nil
}
