package handlers

import (
	"errors"
	"net/http"
)

// isTooLarge reports whether err came from http.MaxBytesReader.
func isTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// emptyFilePart reports whether a multipart form had a "file" part with an
// empty file name, which the parser keeps as a plain value.
func emptyFilePart(r *http.Request) bool {
	if r.MultipartForm == nil {
		return false
	}
	_, ok := r.MultipartForm.Value["file"]
	return ok
}
