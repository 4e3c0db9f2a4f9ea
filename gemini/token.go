package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/prodmeta"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var (
	_ prodmeta.TokenCounter  = (*TokenCounter)(nil)
	_ prodmeta.PromptCounter = (*TokenCounter)(nil)
)

// TokenCounter counts tokens locally with the Gemini tokenizer, so page and
// prompt sizes can be logged without an API call.
type TokenCounter struct {
	model string
	tok   *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a TokenCounter for the model named by provider,
// e.g. "gemini/gemini-2.5-flash" or a bare model name.
func NewTokenCounter(provider string) (*TokenCounter, error) {
	_, model, err := ParseProvider(provider)
	if err != nil {
		return nil, err
	}
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, fmt.Errorf("tokenizer for %s: %w", model, err)
	}
	return &TokenCounter{model: model, tok: tok}, nil
}

// Model returns the model whose tokenizer is used.
func (tc *TokenCounter) Model() string {
	return tc.model
}

// CountTokens counts the tokens in text.
func (tc *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}
	return tc.count(genai.NewContentFromText(text, genai.RoleUser))
}

// CountRequest counts the tokens of the full prompt Extractor sends for req:
// the instruction plus the wrapped page content. The response schema is not
// counted.
func (tc *TokenCounter) CountRequest(_ context.Context, req *prodmeta.ExtractRequest) (int, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(BuildUserPrompt(req), genai.RoleUser),
	}
	if req.Instruction != "" {
		contents = append(contents, genai.NewContentFromText(req.Instruction, genai.RoleUser))
	}
	return tc.count(contents...)
}

func (tc *TokenCounter) count(contents ...*genai.Content) (int, error) {
	result, err := tc.tok.CountTokens(contents, nil)
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}
