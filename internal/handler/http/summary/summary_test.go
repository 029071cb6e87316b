package summary_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-summarizer/internal/domain/entity"
	"smart-summarizer/internal/handler/http/respond"
	"smart-summarizer/internal/handler/http/summary"
	"smart-summarizer/internal/usecase/summarize"
)

/* ───────── test doubles ───────── */

type recordingEngine struct {
	mu        sync.Mutex
	output    string
	err       error
	prompts   []string
	maxOutput []int
}

func (e *recordingEngine) Summarize(_ context.Context, prompt string, _, maxOutputLength int) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prompts = append(e.prompts, prompt)
	e.maxOutput = append(e.maxOutput, maxOutputLength)
	return e.output, e.err
}

type fixedPDF struct {
	text string
	err  error
}

func (p fixedPDF) ExtractText(context.Context, []byte) (string, error) { return p.text, p.err }

type fixedURL struct {
	text string
	err  error
}

func (u fixedURL) ExtractText(context.Context, string) (string, error) { return u.text, u.err }

var pdfBytes = []byte("%PDF-1.4\n%test document\n")

func newServer(t *testing.T, engine *recordingEngine, pdf fixedPDF, article fixedURL) http.Handler {
	t.Helper()
	svc := summarize.NewService(engine, pdf, article, summarize.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	mux := http.NewServeMux()
	summary.Register(mux, svc, 1<<20, nil)
	return mux
}

func serve(h http.Handler, method, target, contentType string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postJSON(t *testing.T, h http.Handler, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	return serve(h, http.MethodPost, target, "application/json", bytes.NewReader(payload))
}

func postPDF(t *testing.T, h http.Handler, target string, file []byte, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if file != nil {
		fw, err := mw.CreateFormFile("file", "lecture.pdf")
		require.NoError(t, err)
		_, err = fw.Write(file)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())
	return serve(h, http.MethodPost, target, mw.FormDataContentType(), &buf)
}

func decodeResponse(t *testing.T, data []byte) summary.Response {
	t.Helper()
	var out summary.Response
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func decodeError(t *testing.T, data []byte) respond.ErrorBody {
	t.Helper()
	var out respond.ErrorBody
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

/* ───────── text ───────── */

func TestTextHandler(t *testing.T) {
	engine := &recordingEngine{output: "Go has goroutines. Channels connect them!"}
	h := newServer(t, engine, fixedPDF{}, fixedURL{})

	points := 3
	notes := "for a talk"
	rec := postJSON(t, h, "/summaries/text", summary.TextRequest{
		Text: "Go is a language.", Notes: &notes, Points: &points,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeResponse(t, rec.Body.Bytes())
	want := summary.Response{
		Summary:   "- Go has goroutines.\n- Channels connect them!",
		Bullets:   []string{"Go has goroutines.", "Channels connect them!"},
		Points:    3,
		Source:    "text",
		RequestID: got.RequestID,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, []string{"Go is a language.\n\nAdditional context:\nfor a talk"}, engine.prompts)
	assert.Equal(t, []int{120}, engine.maxOutput)
}

func TestTextHandler_Points(t *testing.T) {
	tests := []struct {
		name       string
		points     *int
		wantPoints int
		wantBudget int
	}{
		{"omitted uses default", nil, entity.DefaultPoints, 200},
		{"zero clamps up", intPtr(0), 1, 40},
		{"too many clamps down", intPtr(50), 20, 800},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &recordingEngine{output: "Done."}
			h := newServer(t, engine, fixedPDF{}, fixedURL{})

			rec := postJSON(t, h, "/summaries/text", summary.TextRequest{Text: "body", Points: tt.points})
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantPoints, decodeResponse(t, rec.Body.Bytes()).Points)
			assert.Equal(t, []int{tt.wantBudget}, engine.maxOutput)
		})
	}
}

func TestTextHandler_EmptyModelOutput(t *testing.T) {
	h := newServer(t, &recordingEngine{output: ""}, fixedPDF{}, fixedURL{})

	rec := postJSON(t, h, "/summaries/text", summary.TextRequest{Text: "body"})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeResponse(t, rec.Body.Bytes())
	assert.Empty(t, got.Summary)
	assert.NotNil(t, got.Bullets)
	assert.Empty(t, got.Bullets)
}

func TestTextHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		engine   *recordingEngine
		wantCode int
		wantMsg  string
	}{
		{"blank text", `{"text":"   "}`, &recordingEngine{}, http.StatusBadRequest, ""},
		{"malformed json", `{"text":`, &recordingEngine{}, http.StatusBadRequest, "invalid JSON body"},
		{"unknown field", `{"text":"x","pionts":3}`, &recordingEngine{}, http.StatusBadRequest, "invalid JSON body"},
		{
			"engine failure", `{"text":"x"}`,
			&recordingEngine{err: entity.NewInferenceError("model-server", errors.New("CUDA out of memory"))},
			http.StatusBadGateway, "summarization backend failed",
		},
		{
			"engine timeout", `{"text":"x"}`,
			&recordingEngine{err: entity.NewInferenceError("model-server", context.DeadlineExceeded)},
			http.StatusGatewayTimeout, "summarization timed out",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newServer(t, tt.engine, fixedPDF{}, fixedURL{})
			rec := serve(h, http.MethodPost, "/summaries/text", "application/json", strings.NewReader(tt.body))

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decodeError(t, rec.Body.Bytes())
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Error)
			}
			assert.NotContains(t, body.Error, "CUDA")
		})
	}
}

/* ───────── url ───────── */

func TestURLHandler(t *testing.T) {
	engine := &recordingEngine{output: "Article summary."}
	h := newServer(t, engine, fixedPDF{}, fixedURL{text: "Title\n\nArticle body."})

	rec := postJSON(t, h, "/summaries/url", summary.URLRequest{URL: "https://example.com/post"})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeResponse(t, rec.Body.Bytes())
	assert.Equal(t, "url", got.Source)
	assert.Equal(t, "- Article summary.", got.Summary)
	assert.Equal(t, []string{"Title\n\nArticle body."}, engine.prompts)
}

func TestURLHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		article  fixedURL
		wantCode int
	}{
		{"missing url", "", fixedURL{}, http.StatusBadRequest},
		{"bad scheme", "ftp://example.com/file", fixedURL{}, http.StatusBadRequest},
		{"extraction failure", "https://example.com/404", fixedURL{err: errors.New("HTTP 404")}, http.StatusUnprocessableEntity},
		{"no article text", "https://example.com/empty", fixedURL{text: "  "}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &recordingEngine{output: "x"}
			h := newServer(t, engine, fixedPDF{}, tt.article)

			rec := postJSON(t, h, "/summaries/url", summary.URLRequest{URL: tt.url})
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Empty(t, engine.prompts)
		})
	}
}

/* ───────── pdf ───────── */

func TestPDFHandler(t *testing.T) {
	engine := &recordingEngine{output: "Lecture covers sorting. Quicksort is fast."}
	h := newServer(t, engine, fixedPDF{text: "Sorting algorithms.\nQuicksort."}, fixedURL{})

	rec := postPDF(t, h, "/summaries/pdf", pdfBytes, map[string]string{
		"notes":  "exam next week",
		"points": "2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeResponse(t, rec.Body.Bytes())
	assert.Equal(t, "pdf", got.Source)
	assert.Equal(t, 2, got.Points)
	assert.Equal(t, []string{"Lecture covers sorting.", "Quicksort is fast."}, got.Bullets)
	assert.Empty(t, got.Preview, "preview is only returned on request")
	assert.Equal(t, []string{"Sorting algorithms.\nQuicksort.\n\nAdditional context:\nexam next week"}, engine.prompts)
	assert.Equal(t, []int{80}, engine.maxOutput)
}

func TestPDFHandler_Preview(t *testing.T) {
	long := strings.Repeat("a", entity.PreviewLength+100)
	h := newServer(t, &recordingEngine{output: "Summary."}, fixedPDF{text: long}, fixedURL{})

	rec := postPDF(t, h, "/summaries/pdf?preview=true", pdfBytes, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	got := decodeResponse(t, rec.Body.Bytes())
	assert.Equal(t, entity.DefaultPoints, got.Points)
	assert.Len(t, got.Preview, entity.PreviewLength)
}

func TestPDFHandler_Errors(t *testing.T) {
	tests := []struct {
		name     string
		file     []byte
		fields   map[string]string
		pdf      fixedPDF
		wantCode int
		wantMsg  string
	}{
		{"missing file", nil, nil, fixedPDF{text: "x"}, http.StatusBadRequest, "PDF file is required"},
		{"not a pdf", []byte("plain text"), nil, fixedPDF{text: "x"}, http.StatusUnprocessableEntity, "pdf extraction failed: file is not a PDF document"},
		{"non-integer points", pdfBytes, map[string]string{"points": "five"}, fixedPDF{text: "x"}, http.StatusBadRequest, "points must be an integer"},
		{"unreadable pdf", pdfBytes, nil, fixedPDF{err: errors.New("malformed xref")}, http.StatusUnprocessableEntity, ""},
		{"scanned pdf", pdfBytes, nil, fixedPDF{text: ""}, http.StatusUnprocessableEntity, ""},
		{"too large", bytes.Repeat([]byte("x"), 2<<20), nil, fixedPDF{text: "x"}, http.StatusRequestEntityTooLarge, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &recordingEngine{output: "x"}
			h := newServer(t, engine, tt.pdf, fixedURL{})

			rec := postPDF(t, h, "/summaries/pdf", tt.file, tt.fields)
			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, decodeError(t, rec.Body.Bytes()).Error)
			}
			assert.Empty(t, engine.prompts)
		})
	}
}

func TestRegister_Wrap(t *testing.T) {
	svc := summarize.NewService(&recordingEngine{}, nil, nil, summarize.Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	var patterns []string
	summary.Register(http.NewServeMux(), svc, 0, func(pattern string, h http.Handler) http.Handler {
		patterns = append(patterns, pattern)
		return h
	})

	assert.ElementsMatch(t, []string{
		"POST /summaries/text",
		"POST /summaries/url",
		"POST /summaries/pdf",
	}, patterns)
}

func intPtr(i int) *int { return &i }
