package parser

import (
	"io"

	"golang.org/x/net/html/charset"
)

// NewUTF8Reader wraps body so that it yields UTF-8 regardless of the page
// encoding. Court sites still serve windows-1252 and ISO-8859-1 pages; the
// encoding is detected from <meta> tags, BOMs or content sniffing.
func NewUTF8Reader(body io.Reader) (io.Reader, error) {
	return charset.NewReader(body, "")
}
