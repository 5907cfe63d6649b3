package render

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/codegraph/pkg/errors"
)

// Edge styles.
const (
	EdgeStraight = "straight"
	EdgeCurved   = "curved"
	EdgeStep     = "step"
)

// Settings are the cosmetic knobs of the graph view. They restyle already
// built nodes and edges and never touch topology or positions.
type Settings struct {
	NodeSize    int    `json:"node_size" toml:"node_size" validate:"min=20,max=400"`
	NodePadding int    `json:"node_padding" toml:"node_padding" validate:"min=0,max=100"`
	EdgeStyle   string `json:"edge_style" toml:"edge_style" validate:"oneof=straight curved step"`
	ColorScheme string `json:"color_scheme" toml:"color_scheme" validate:"oneof=default ocean forest sunset mono"`
}

// DefaultSettings returns the settings used until the user changes them.
func DefaultSettings() Settings {
	return Settings{
		NodeSize:    120,
		NodePadding: 10,
		EdgeStyle:   EdgeCurved,
		ColorScheme: SchemeDefault,
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate checks every field against its allowed range or values.
// The returned error has code INVALID_SETTINGS and lists every violation.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "%s", formatValidationError(err))
	}
	return nil
}

// WithDefaults fills the fields whose zero value is not a valid setting.
// A zero Settings becomes DefaultSettings; a zero NodePadding is otherwise
// kept, since no padding is a valid choice.
func (s Settings) WithDefaults() Settings {
	d := DefaultSettings()
	if s == (Settings{}) {
		return d
	}
	if s.NodeSize == 0 {
		s.NodeSize = d.NodeSize
	}
	if s.EdgeStyle == "" {
		s.EdgeStyle = d.EdgeStyle
	}
	if s.ColorScheme == "" {
		s.ColorScheme = d.ColorScheme
	}
	return s
}

// Patch is a partial settings update. Nil fields keep their current value,
// so every valid value, zero included, can be applied.
type Patch struct {
	NodeSize    *int    `json:"node_size,omitempty"`
	NodePadding *int    `json:"node_padding,omitempty"`
	EdgeStyle   *string `json:"edge_style,omitempty"`
	ColorScheme *string `json:"color_scheme,omitempty"`
}

// With returns s with every non-nil field of p applied.
func (s Settings) With(p Patch) Settings {
	if p.NodeSize != nil {
		s.NodeSize = *p.NodeSize
	}
	if p.NodePadding != nil {
		s.NodePadding = *p.NodePadding
	}
	if p.EdgeStyle != nil {
		s.EdgeStyle = *p.EdgeStyle
	}
	if p.ColorScheme != nil {
		s.ColorScheme = *p.ColorScheme
	}
	return s
}

// ParseSettings decodes JSON settings on top of the defaults and validates
// the result.
func ParseSettings(data []byte) (Settings, error) {
	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, errors.Wrap(errors.ErrCodeInvalidSettings, err, "decode settings")
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func formatValidationError(err error) string {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return strings.Join(msgs, "; ")
}

func formatFieldError(e validator.FieldError) string {
	switch e.Tag() {
	case "min":
		return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", e.Field(), e.Param())
	default:
		return fmt.Sprintf("%s is invalid", e.Field())
	}
}
