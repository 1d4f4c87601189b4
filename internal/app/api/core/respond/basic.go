// Package respond provides helpers to write HTTP responses.
package respond

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
)

// Status writes a response with the given status code and no body.
func Status(w http.ResponseWriter, code int) {
	w.WriteHeader(code)
}

// JSON writes data as JSON response with the given status code.
// A nil value is written as null. Encoding errors are ignored.
func JSON(w http.ResponseWriter, code int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if data == nil {
		_, _ = w.Write([]byte("null"))
		return
	}

	_ = json.NewEncoder(w).Encode(data)
}

// Reader copies data to the response. The content length is only set if it is greater than 0.
func Reader(w http.ResponseWriter, code int, contentType string, contentLength int, data io.Reader) {
	w.Header().Set("Content-Type", contentType)
	if contentLength > 0 {
		w.Header().Set("Content-Length", strconv.Itoa(contentLength))
	}
	w.WriteHeader(code)

	_, _ = io.Copy(w, data)
}

// AttachmentReader works like Reader, the browser is asked to save the content as filename.
func AttachmentReader(
	w http.ResponseWriter,
	code int,
	filename, contentType string,
	contentLength int,
	data io.Reader,
) {
	w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(filename))

	Reader(w, code, contentType, contentLength, data)
}
