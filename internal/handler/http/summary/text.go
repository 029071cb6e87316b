package summary

import (
	"net/http"

	"smart-summarizer/internal/handler/http/respond"
)

// TextHandler summarizes pasted text.
type TextHandler struct{ Svc Service }

// ServeHTTP summarizes the text of a TextRequest.
// @Summary      Summarize text
// @Tags         summaries
// @Accept       json
// @Produce      json
// @Param        request body TextRequest true "Text to summarize"
// @Success      200 {object} Response
// @Failure      400 {object} respond.ErrorBody "Invalid input"
// @Failure      429 {object} respond.ErrorBody "Rate limit exceeded"
// @Failure      502 {object} respond.ErrorBody "Summarization backend failed"
// @Failure      504 {object} respond.ErrorBody "Summarization timed out"
// @Router       /summaries/text [post]
func (h TextHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req TextRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Failure(w, r, err)
		return
	}

	res, err := h.Svc.SummarizeText(r.Context(), req.Text, req.Notes, pointsOrDefault(req.Points))
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(res))
}
