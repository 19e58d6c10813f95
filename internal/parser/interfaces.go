package parser

import "io"

// Parser extracts a list of T from an HTML document.
type Parser[T any] interface {
	ParseHtml(body io.Reader) ([]T, error)
}
