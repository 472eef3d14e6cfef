package convert

// Converter transforms a document payload from one format to another.
type Converter interface {
	// Name returns the unique name of the converter.
	Name() string
	// Source returns the file extension this converter reads, without a dot.
	Source() string
	// Target returns the file extension this converter produces, without a dot.
	Target() string
	// Convert transforms the payload. The result must be a complete document in
	// the target format.
	Convert(input []byte) ([]byte, error)
}

// Result bundles converted bytes with the metadata the download response needs.
type Result struct {
	Data        []byte
	FileName    string
	ContentType string
	Converter   string
}
