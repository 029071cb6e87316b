package summary

import (
	"context"
	"net/http"

	"smart-summarizer/internal/usecase/summarize"
)

// Service is the part of summarize.Service the handlers depend on.
type Service interface {
	SummarizeText(ctx context.Context, text string, notes *string, points int) (*summarize.Result, error)
	SummarizeURL(ctx context.Context, url string, notes *string, points int) (*summarize.Result, error)
	SummarizePDF(ctx context.Context, pdf []byte, notes *string, points int) (*summarize.Result, error)
}

// Wrap decorates the handler registered under pattern, e.g. with per-route metrics.
type Wrap func(pattern string, h http.Handler) http.Handler

// Register registers the summary routes with the given mux.
// maxUpload bounds the multipart form parsed for PDF uploads. A nil wrap
// registers the handlers undecorated.
func Register(mux *http.ServeMux, svc Service, maxUpload int64, wrap Wrap) {
	if wrap == nil {
		wrap = func(_ string, h http.Handler) http.Handler { return h }
	}
	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, wrap(pattern, h))
	}

	handle("POST /summaries/text", TextHandler{Svc: svc})
	handle("POST /summaries/url", URLHandler{Svc: svc})
	handle("POST /summaries/pdf", PDFHandler{Svc: svc, MaxUpload: maxUpload})
}
