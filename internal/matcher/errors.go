package matcher

import "errors"

var (
	// ErrExtractionFailed marks a source file that could not be read or
	// converted to text. The indexing pipeline skips the file and continues.
	ErrExtractionFailed = errors.New("matcher: text extraction failed")

	// ErrEmptyContent marks a file whose extraction succeeded but yielded no
	// embeddable text. No record is built for it.
	ErrEmptyContent = errors.New("matcher: document has no embeddable content")

	// ErrStoreUnavailable marks a vector store that cannot be reached or
	// initialized. Fatal at startup.
	ErrStoreUnavailable = errors.New("matcher: vector store unavailable")

	// ErrRecordNotFound marks a lookup for a document id that is not in the
	// store.
	ErrRecordNotFound = errors.New("matcher: record not found")

	// ErrDirectoryNotFound marks an indexing request for a directory that
	// does not exist.
	ErrDirectoryNotFound = errors.New("matcher: directory not found")
)
