package logging

import "net/http"

// writerWrapper records the status code and the size of the response.
type writerWrapper struct {
	http.ResponseWriter

	statusCode  int
	size        int
	wroteHeader bool
}

func newWriterWrapper(w http.ResponseWriter) *writerWrapper {
	return &writerWrapper{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *writerWrapper) WriteHeader(code int) {
	if w.wroteHeader {
		return
	}
	w.statusCode = code
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *writerWrapper) Write(data []byte) (int, error) {
	w.wroteHeader = true
	n, err := w.ResponseWriter.Write(data)
	w.size += n
	return n, err
}

// Unwrap allows http.ResponseController to reach the original writer.
func (w *writerWrapper) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
