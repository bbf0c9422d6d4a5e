package block

// WidgetOutput is the render result handed to the host template layer.
// It is either empty or fully composed.
type WidgetOutput struct {
	Mode   string   `json:"mode,omitempty"`
	Title  string   `json:"title"`
	Help   string   `json:"help,omitempty"`
	Header string   `json:"header"`
	Body   string   `json:"body"`
	Script string   `json:"script,omitempty"`
	Text   string   `json:"text"`
	Items  []string `json:"items"`
	Icons  []string `json:"icons"`
	Footer string   `json:"footer"`

	Toggle *ToggleBinding `json:"toggle,omitempty"`
}

// EmptyOutput returns the output used when nothing may be shown.
func EmptyOutput() *WidgetOutput {
	return &WidgetOutput{
		Items: []string{},
		Icons: []string{},
	}
}

// IsEmpty reports whether the output carries no renderable content.
func (o *WidgetOutput) IsEmpty() bool {
	return o == nil || o.Text == ""
}
