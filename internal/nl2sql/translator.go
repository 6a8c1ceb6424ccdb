package nl2sql

import "context"

type Request struct {
	Question string `json:"question"`
}

// Result carries the raw model output. The text is untrusted and may still
// contain markdown fences or a trailing semicolon; extraction and safety
// validation happen downstream in sqlguard.
type Result struct {
	Raw      string `json:"raw"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

type Translator interface {
	Translate(ctx context.Context, req Request) (Result, error)
}
