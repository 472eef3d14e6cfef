package convert

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Registry holds all available converters keyed by (source, target) extension.
type Registry struct {
	converters map[string]Converter
}

// Global registry instance
var globalRegistry = NewRegistry()

func NewRegistry() *Registry {
	r := &Registry{converters: make(map[string]Converter)}
	r.Register(NewCSVToJSONConverter())
	r.Register(NewJSONToCSVConverter())
	r.Register(NewTextToPDFConverter())
	r.Register(NewCSVToPDFConverter())
	return r
}

// GetGlobalRegistry returns the singleton registry.
func GetGlobalRegistry() *Registry {
	return globalRegistry
}

// Register adds a converter to the registry. A later registration for the same
// format pair replaces the earlier one.
func (r *Registry) Register(c Converter) {
	r.converters[pairKey(c.Source(), c.Target())] = c
}

// Find returns the converter for a format pair. When no registered converter
// matches, the passthrough relabel converter is returned: the panel's contract
// is that any target format yields a download, real conversion or not.
func (r *Registry) Find(source, target string) Converter {
	if c, ok := r.converters[pairKey(source, target)]; ok {
		return c
	}
	return NewPassthroughConverter(source, target)
}

// Convert runs the matching converter for the file name and target format and
// prepares the download metadata.
func (r *Registry) Convert(fileName, targetFormat string, input []byte) (*Result, error) {
	source := normalizeExt(filepath.Ext(fileName))
	target := normalizeExt(targetFormat)
	if target == "" {
		return nil, fmt.Errorf("empty target format")
	}

	c := r.Find(source, target)
	out, err := c.Convert(input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Name(), err)
	}

	return &Result{
		Data:        out,
		FileName:    replaceExt(fileName, target),
		ContentType: "application/octet-stream",
		Converter:   c.Name(),
	}, nil
}

// Targets returns the target formats with a real converter registered for the
// given source extension, for the panel's format picker.
func (r *Registry) Targets(source string) []string {
	source = normalizeExt(source)
	var targets []string
	for _, c := range r.converters {
		if c.Source() == source {
			targets = append(targets, c.Target())
		}
	}
	return targets
}

func pairKey(source, target string) string {
	return normalizeExt(source) + "->" + normalizeExt(target)
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func replaceExt(name, target string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)] + "." + target
}

// TypeByExtension maps a bare extension to a MIME type, falling back to
// octet-stream for unknown formats.
func TypeByExtension(ext string) string {
	if t := mime.TypeByExtension("." + normalizeExt(ext)); t != "" {
		return t
	}
	return "application/octet-stream"
}
