package apperrors

import "fmt"

// ErrNotFound represents an error when a requested resource is not found.
type ErrNotFound struct {
	Resource string
	ID       interface{}
}

// Error implements the error interface.
func (e *ErrNotFound) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s with ID %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is allows for error checking with errors.Is().
func (e *ErrNotFound) Is(target error) bool {
	_, ok := target.(*ErrNotFound)
	return ok
}

// NewNotFoundError creates a new ErrNotFound.
func NewNotFoundError(resource string, id interface{}) *ErrNotFound {
	return &ErrNotFound{
		Resource: resource,
		ID:       id,
	}
}

// ErrApplication is returned when the API answered with success=false.
// Message is the server-supplied error string.
type ErrApplication struct {
	Endpoint string
	Message  string
}

func (e *ErrApplication) Error() string {
	return e.Message
}

// Is allows for error checking with errors.Is().
func (e *ErrApplication) Is(target error) bool {
	_, ok := target.(*ErrApplication)
	return ok
}

// NewApplicationError creates a new ErrApplication.
func NewApplicationError(endpoint, message string) *ErrApplication {
	return &ErrApplication{Endpoint: endpoint, Message: message}
}

// ErrTransport wraps failures building the request, reaching the API or
// decoding its response.
type ErrTransport struct {
	Endpoint string
	Err      error
}

func (e *ErrTransport) Error() string {
	return e.Err.Error()
}

func (e *ErrTransport) Unwrap() error {
	return e.Err
}

// Is allows for error checking with errors.Is().
func (e *ErrTransport) Is(target error) bool {
	_, ok := target.(*ErrTransport)
	return ok
}

// NewTransportError creates a new ErrTransport.
func NewTransportError(endpoint string, err error) *ErrTransport {
	return &ErrTransport{Endpoint: endpoint, Err: err}
}

// ErrValidation is a client-side validation failure. No request is sent when
// it is returned.
type ErrValidation struct {
	Message string
}

func (e *ErrValidation) Error() string {
	return e.Message
}

// Is allows for error checking with errors.Is().
func (e *ErrValidation) Is(target error) bool {
	_, ok := target.(*ErrValidation)
	return ok
}

// NewValidationError creates a new ErrValidation.
func NewValidationError(message string) *ErrValidation {
	return &ErrValidation{Message: message}
}

// Reasons carried by ErrInvalidFilename.
const (
	ReasonPathTraversal = "path traversal"
	ReasonFileType      = "unsupported file type"
)

// ErrInvalidFilename is returned for download requests that name a file
// outside the output folder or with a disallowed extension.
type ErrInvalidFilename struct {
	Filename string
	Reason   string
}

func (e *ErrInvalidFilename) Error() string {
	return fmt.Sprintf("invalid filename %q: %s", e.Filename, e.Reason)
}

// Is allows for error checking with errors.Is().
func (e *ErrInvalidFilename) Is(target error) bool {
	_, ok := target.(*ErrInvalidFilename)
	return ok
}

// ErrAccessDenied is returned when a resolved path escapes the output folder.
type ErrAccessDenied struct {
	Path string
}

func (e *ErrAccessDenied) Error() string {
	return fmt.Sprintf("access denied: %s", e.Path)
}

// Is allows for error checking with errors.Is().
func (e *ErrAccessDenied) Is(target error) bool {
	_, ok := target.(*ErrAccessDenied)
	return ok
}
