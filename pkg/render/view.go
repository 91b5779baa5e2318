package render

import (
	"encoding/json"
	"math"

	"github.com/loom-ui/loom/pkg/core"
)

// Markup classifies the content of a Text record.
type Markup string

const (
	MarkupPlain      Markup = "plain"
	MarkupHeading    Markup = "heading"
	MarkupSubheading Markup = "subheading"
	MarkupSeparator  Markup = "separator"
)

// Props holds the style or data fields of a leaf record. Unset fields are
// present with a nil value so that clients see a stable set of keys.
type Props map[string]any

// View is the serialised, client-facing description of one node.
//
// Type is the node variant name and ID its identifier. Text records carry
// Content and Markup, Button records carry Label. Leaf records carry Props;
// container records carry Children instead, always encoded as a list.
type View struct {
	Type     string  `json:"type"`
	ID       core.ID `json:"id"`
	Content  *string `json:"content,omitempty"`
	Markup   Markup  `json:"markup,omitempty"`
	Label    *string `json:"label,omitempty"`
	Props    Props   `json:"props,omitempty"`
	Children []View  `json:"children,omitempty"`
}

// IsContainer reports whether v describes a Row, Column or Card.
func (v View) IsContainer() bool {
	switch v.Type {
	case "Row", "Column", "Card":
		return true
	}
	return false
}

// MarshalJSON encodes v, keeping an empty "children" list on containers.
func (v View) MarshalJSON() ([]byte, error) {
	type plain View
	if !v.IsContainer() {
		return json.Marshal(plain(v))
	}
	children := v.Children
	if children == nil {
		children = []View{}
	}
	return json.Marshal(struct {
		Type     string  `json:"type"`
		ID       core.ID `json:"id"`
		Children []View  `json:"children"`
	}{v.Type, v.ID, children})
}

// Encode returns the JSON form of v.
func Encode(v View) ([]byte, error) {
	return json.Marshal(v)
}

// SafeFloat wraps a float64 so that Inf and NaN encode as strings instead of
// failing the whole frame.
type SafeFloat float64

func (f SafeFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 1) {
		return []byte(`"Infinity"`), nil
	}
	if math.IsInf(v, -1) {
		return []byte(`"-Infinity"`), nil
	}
	if math.IsNaN(v) {
		return []byte(`"NaN"`), nil
	}
	return json.Marshal(v)
}
