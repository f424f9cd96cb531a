package prompt

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// TokenEncoding is the BPE encoding used to estimate prompt size.
const TokenEncoding = "cl100k_base"

func init() {
	tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
}

// TokenCounter estimates how many tokens a prompt costs.
type TokenCounter struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenCounter loads the bundled encoding.
func NewTokenCounter() (*TokenCounter, error) {
	enc, err := tiktoken.GetEncoding(TokenEncoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s encoding: %w", TokenEncoding, err)
	}
	return &TokenCounter{encoding: enc}, nil
}

// Count returns the number of tokens in text, or -1 when no encoding is loaded.
func (c *TokenCounter) Count(text string) int {
	if c == nil || c.encoding == nil {
		return -1
	}
	if text == "" {
		return 0
	}
	return len(c.encoding.Encode(text, nil, nil))
}
