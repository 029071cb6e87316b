package http

import (
	"mime"
	"net/http"
	"strings"

	"smart-summarizer/internal/handler/http/respond"
)

// maxPathLength bounds request paths; every route here is short.
const maxPathLength = 2048

// InputValidation returns middleware that rejects malformed requests before
// they reach a handler:
//   - paths longer than 2KB (414)
//   - POST bodies that are neither JSON nor multipart form data (415)
func InputValidation() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(r.URL.Path) > maxPathLength {
				respond.JSON(w, http.StatusRequestURITooLong, respond.ErrorBody{Error: "URI too long"})
				return
			}

			if r.Method == http.MethodPost && !acceptedContentType(r.Header.Get("Content-Type")) {
				respond.JSON(w, http.StatusUnsupportedMediaType, respond.ErrorBody{
					Error: "content type must be application/json or multipart/form-data",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func acceptedContentType(header string) bool {
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return false
	}
	mediaType = strings.ToLower(mediaType)
	return mediaType == "application/json" || mediaType == "multipart/form-data"
}
