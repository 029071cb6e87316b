package summary

import (
	"net/http"

	"smart-summarizer/internal/handler/http/respond"
)

// URLHandler downloads an article and summarizes its main text.
type URLHandler struct{ Svc Service }

// ServeHTTP summarizes the article a URLRequest points at.
// @Summary      Summarize a web article
// @Tags         summaries
// @Accept       json
// @Produce      json
// @Param        request body URLRequest true "Article to summarize"
// @Success      200 {object} Response
// @Failure      400 {object} respond.ErrorBody "Invalid URL"
// @Failure      422 {object} respond.ErrorBody "Article could not be extracted"
// @Failure      502 {object} respond.ErrorBody "Summarization backend failed"
// @Router       /summaries/url [post]
func (h URLHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req URLRequest
	if err := decodeJSON(r, &req); err != nil {
		respond.Failure(w, r, err)
		return
	}

	res, err := h.Svc.SummarizeURL(r.Context(), req.URL, req.Notes, pointsOrDefault(req.Points))
	if err != nil {
		respond.Failure(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, toResponse(res))
}
