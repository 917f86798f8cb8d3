package parser

import (
	"io"
	"mime"
	"strings"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader wraps an io.Reader with character encoding conversion to UTF-8
// when contentType declares a non UTF-8 charset (some legacy proxies in front of
// the API still answer with "application/json; charset=ISO-8859-1").
//
// JSON defaults to UTF-8, so bodies without a charset parameter are returned
// unchanged instead of being sniffed.
func NewUTF8Reader(body io.Reader, contentType string) (io.Reader, error) {
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return body, nil
	}
	cs := strings.ToLower(strings.TrimSpace(params["charset"]))
	if cs == "" || cs == "utf-8" || cs == "utf8" {
		return body, nil
	}
	return charset.NewReader(body, contentType)
}
