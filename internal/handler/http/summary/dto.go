// Package summary provides HTTP handlers for the summarization endpoints.
// Each input source (pasted text, article URL, PDF upload) has its own route;
// all of them answer with the same Response shape.
package summary

import (
	"smart-summarizer/internal/usecase/summarize"
)

// TextRequest is the body of POST /summaries/text.
type TextRequest struct {
	Text   string  `json:"text" example:"Go is an open source programming language..."`
	Notes  *string `json:"notes,omitempty" example:"Focus on concurrency"`
	Points *int    `json:"points,omitempty" example:"5"`
}

// URLRequest is the body of POST /summaries/url.
type URLRequest struct {
	URL    string  `json:"url" example:"https://go.dev/blog/go1.22"`
	Notes  *string `json:"notes,omitempty"`
	Points *int    `json:"points,omitempty" example:"5"`
}

// Response is returned by every summary route.
type Response struct {
	Summary   string   `json:"summary"`
	Bullets   []string `json:"bullets"`
	Points    int      `json:"points"`
	Source    string   `json:"source"`
	RequestID string   `json:"request_id"`
	Preview   string   `json:"preview,omitempty"`
}

func toResponse(res *summarize.Result) Response {
	bullets := res.Sentences
	if bullets == nil {
		bullets = []string{}
	}
	return Response{
		Summary:   res.Bullets,
		Bullets:   bullets,
		Points:    int(res.Points),
		Source:    res.Source.String(),
		RequestID: res.RequestID,
		Preview:   res.Preview,
	}
}
