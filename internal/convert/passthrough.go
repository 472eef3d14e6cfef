package convert

// passthroughConverter relabels a payload under the target extension without
// touching the bytes. It is the fallback for format pairs with no registered
// converter so that every conversion request produces a download.
type passthroughConverter struct {
	source string
	target string
}

// NewPassthroughConverter creates a relabel-only converter for a format pair.
func NewPassthroughConverter(source, target string) Converter {
	return &passthroughConverter{source: normalizeExt(source), target: normalizeExt(target)}
}

func (c *passthroughConverter) Name() string   { return "passthrough" }
func (c *passthroughConverter) Source() string { return c.source }
func (c *passthroughConverter) Target() string { return c.target }

// Convert returns the input unchanged.
func (c *passthroughConverter) Convert(input []byte) ([]byte, error) {
	return input, nil
}
