package summary

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"smart-summarizer/internal/domain/entity"
	"smart-summarizer/internal/handler/http/respond"
)

// formMemory is how much of a multipart form is held in memory; the rest spills to disk.
const formMemory = 8 << 20

// PDFHandler summarizes an uploaded PDF document.
type PDFHandler struct {
	Svc       Service
	MaxUpload int64
}

// ServeHTTP summarizes the "file" part of a multipart upload. The optional
// "notes" and "points" fields mirror the JSON routes. With ?preview=true the
// response also carries the leading text extracted from the document.
// @Summary      Summarize a PDF document
// @Tags         summaries
// @Accept       multipart/form-data
// @Produce      json
// @Param        file    formData file   true  "PDF document"
// @Param        notes   formData string false "Additional context"
// @Param        points  formData int    false "Number of bullet points (1-20)"
// @Param        preview query    bool   false "Include extracted text preview"
// @Success      200 {object} Response
// @Failure      400 {object} respond.ErrorBody "Invalid upload"
// @Failure      413 {object} respond.ErrorBody "File too large"
// @Failure      422 {object} respond.ErrorBody "Text could not be extracted"
// @Router       /summaries/pdf [post]
func (h PDFHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.MaxUpload > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.MaxUpload)
	}
	if err := r.ParseMultipartForm(formMemory); err != nil {
		respond.Failure(w, r, formError(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	data, err := readFile(r)
	if err != nil {
		respond.Failure(w, r, err)
		return
	}

	points := entity.DefaultPoints
	if raw := strings.TrimSpace(r.FormValue("points")); raw != "" {
		points, err = strconv.Atoi(raw)
		if err != nil {
			respond.Failure(w, r, &entity.ValidationError{Field: "points", Message: "points must be an integer"})
			return
		}
	}
	var notes *string
	if v, ok := r.MultipartForm.Value["notes"]; ok && len(v) > 0 {
		notes = &v[0]
	}

	res, err := h.Svc.SummarizePDF(r.Context(), data, notes, points)
	if err != nil {
		respond.Failure(w, r, err)
		return
	}

	if !wantPreview(r) {
		res.Preview = ""
	}
	respond.JSON(w, http.StatusOK, toResponse(res))
}

func readFile(r *http.Request) ([]byte, error) {
	file, _, err := r.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, &entity.ValidationError{Field: "file", Message: "PDF file is required"}
	}
	if err != nil {
		return nil, formError(err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// formError keeps size violations as *http.MaxBytesError and reports any
// other parse failure as invalid input.
func formError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return maxErr
	}
	return &entity.ValidationError{Field: "file", Message: "invalid multipart form"}
}

func wantPreview(r *http.Request) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get("preview"))
	return err == nil && v
}
