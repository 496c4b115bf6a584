package extractor

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupported reports a file whose type no registered extractor handles.
var ErrUnsupported = errors.New("unsupported file type")

// Extractor converts one class of document files into plain text.
type Extractor interface {
	// Extract returns the plain text content of the file at path.
	Extract(ctx context.Context, path string) (string, error)

	// Extensions lists the lowercase file extensions this extractor handles,
	// dot included.
	Extensions() []string
}

// Router dispatches files to the registered extractors by extension. Files
// with an unknown extension are sniffed by content and routed to the HTML or
// plain text extractor when the content is text-like.
type Router struct {
	byExt map[string]Extractor
	html  Extractor
	text  Extractor
}

// NewRouter creates a Router with the built-in extractors registered.
func NewRouter() *Router {
	r := &Router{byExt: make(map[string]Extractor)}

	html := NewHTMLExtractor()
	text := NewTextExtractor()

	r.Register(NewPDFExtractor())
	r.Register(NewWordExtractor())
	r.Register(html)
	r.Register(text)

	r.html = html
	r.text = text

	return r
}

// Register adds an extractor for all extensions it reports.
func (r *Router) Register(e Extractor) {
	for _, ext := range e.Extensions() {
		r.byExt[strings.ToLower(ext)] = e
	}
}

// Supports reports whether a registered extractor handles the file's
// extension.
func (r *Router) Supports(path string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions returns the registered extensions in sorted order.
func (r *Router) SupportedExtensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extract converts the file at path to plain text. A failing primary
// extractor falls back to the plain text extractor when the content still
// sniffs as text.
func (r *Router) Extract(ctx context.Context, path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if e, ok := r.byExt[ext]; ok {
		text, err := e.Extract(ctx, path)
		if err == nil {
			return text, nil
		}
		if e != r.text && sniffsTextLike(path) {
			return r.text.Extract(ctx, path)
		}
		return "", err
	}

	return r.extractBySniff(ctx, path)
}

// extractBySniff routes a file with an unknown extension by its content.
func (r *Router) extractBySniff(ctx context.Context, path string) (string, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to detect MIME type: %w", err)
	}

	if mtype.Is("text/html") {
		return r.html.Extract(ctx, path)
	}
	if isTextLike(mtype) {
		return r.text.Extract(ctx, path)
	}

	return "", fmt.Errorf("%w: %s", ErrUnsupported, mtype.String())
}

func sniffsTextLike(path string) bool {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false
	}
	return isTextLike(mtype)
}

// isTextLike walks the MIME hierarchy up to text/plain.
func isTextLike(mtype *mimetype.MIME) bool {
	for m := mtype; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// DetectContentType returns the MIME type of the file, preferring content
// sniffing over the extension.
func DetectContentType(path string) string {
	if mtype, err := mimetype.DetectFile(path); err == nil {
		return mtype.String()
	}
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		return byExt
	}
	return "application/octet-stream"
}
