package core

// Default tags applied when no option overrides them.
const (
	DefaultButtonVariant = "primary"
	DefaultInputType     = "text"
	DefaultChartType     = "bar"
)

// TextOption configures a Text at construction.
type TextOption func(*Text)

// WithSize sets the font size, e.g. "24px" or "$headline_size".
func WithSize(size string) TextOption {
	return func(t *Text) { t.Size = size }
}

// WithWeight sets the font weight, e.g. "bold".
func WithWeight(weight string) TextOption {
	return func(t *Text) { t.Weight = weight }
}

// WithColor sets the text colour, e.g. "#666" or "$status_color".
func WithColor(color string) TextOption {
	return func(t *Text) { t.Color = color }
}

// ButtonOption configures a Button at construction.
type ButtonOption func(*Button)

// WithVariant sets the visual variant tag, e.g. "secondary".
func WithVariant(variant string) ButtonOption {
	return func(b *Button) { b.Variant = variant }
}

// InputOption configures an Input at construction.
type InputOption func(*Input)

// WithLabel sets the label shown next to the input.
func WithLabel(label string) InputOption {
	return func(in *Input) { in.Label = label }
}

// WithInputType sets the input kind tag, e.g. "number" or "password".
func WithInputType(kind string) InputOption {
	return func(in *Input) { in.Type = kind }
}

// ChartOption configures a Chart at construction.
type ChartOption func(*Chart)

// WithChartType sets the chart kind tag, e.g. "line".
func WithChartType(kind string) ChartOption {
	return func(c *Chart) { c.Type = kind }
}

// WithTitle sets the chart title.
func WithTitle(title string) ChartOption {
	return func(c *Chart) { c.Title = title }
}

// WithLabels sets static axis labels for the data points.
func WithLabels(labels ...string) ChartOption {
	return func(c *Chart) { c.Labels = labels }
}
