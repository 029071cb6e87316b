package http

import "net/http"

// recorder wraps http.ResponseWriter to capture the status code and body size
// for logging and metrics.
type recorder struct {
	http.ResponseWriter
	status        int
	bytes         int
	headerWritten bool
}

func newRecorder(w http.ResponseWriter) *recorder {
	return &recorder{ResponseWriter: w, status: http.StatusOK}
}

func (w *recorder) WriteHeader(code int) {
	if w.headerWritten {
		return
	}
	w.status = code
	w.headerWritten = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *recorder) Write(b []byte) (int, error) {
	if !w.headerWritten {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *recorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
