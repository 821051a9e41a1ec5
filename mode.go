package querylist

import (
	"sort"
	"strings"
)

// RepeatMarker is the suffix that forces per-element results for a scalar
// rule mode regardless of how many elements matched. It is stripped before
// the mode is parsed, so "href/r" reads the href attribute; an attribute
// whose name really ends in "/r" cannot be selected.
const RepeatMarker = "/r"

// ModeKind identifies how a value is read from matched elements.
type ModeKind int

// Extraction mode kinds.
const (
	ModeInvalid ModeKind = iota
	ModeText
	ModeTexts
	ModeHTML
	ModeExists
	ModeAttr
)

// String returns the mode keyword, or "attr" for attribute modes.
func (k ModeKind) String() string {
	switch k {
	case ModeText:
		return "text"
	case ModeTexts:
		return "texts"
	case ModeHTML:
		return "html"
	case ModeExists:
		return "exists"
	case ModeAttr:
		return "attr"
	}
	return "invalid"
}

// ExtractionMode is a resolved extraction mode. Attr is only set when Kind
// is ModeAttr.
type ExtractionMode struct {
	Kind ModeKind
	Attr string
}

// ParseExtractionMode resolves a raw mode string. Any string that is not
// one of the keywords names an attribute.
func ParseExtractionMode(s string) (ExtractionMode, error) {
	switch s {
	case "":
		return ExtractionMode{}, Errorf(EINVALID, "extraction mode required")
	case "text":
		return ExtractionMode{Kind: ModeText}, nil
	case "texts":
		return ExtractionMode{Kind: ModeTexts}, nil
	case "html":
		return ExtractionMode{Kind: ModeHTML}, nil
	case "exists":
		return ExtractionMode{Kind: ModeExists}, nil
	}
	return ExtractionMode{Kind: ModeAttr, Attr: s}, nil
}

// String returns the raw form of the mode.
func (m ExtractionMode) String() string {
	if m.Kind == ModeAttr {
		return m.Attr
	}
	return m.Kind.String()
}

// FieldSpec is an unresolved sub-field of a mapping rule mode.
type FieldSpec struct {
	Name string
	Mode string
}

// FieldMode is a resolved sub-field of a mapping rule mode.
type FieldMode struct {
	Name string
	Mode ExtractionMode
}

// RuleMode is either a single extraction mode or an ordered mapping of
// sub-field names to extraction modes. Use ParseRuleMode to build one.
type RuleMode struct {
	scalar ExtractionMode
	fields []FieldMode
	repeat bool
}

// ParseRuleMode resolves a raw rule mode. Accepted forms are a mode string
// (optionally ending in RepeatMarker), an ordered []FieldSpec, or a
// map[string]string / map[string]any whose keys are sorted to fix the
// sub-field order. A mapping nested inside a mapping returns EUNSUPPORTED.
func ParseRuleMode(raw any) (RuleMode, error) {
	switch v := raw.(type) {
	case RuleMode:
		return v, v.validate()
	case string:
		return parseScalarMode(v)
	case []FieldSpec:
		return parseFieldsMode(v)
	case map[string]string:
		specs := make([]FieldSpec, 0, len(v))
		for _, name := range sortedKeys(v) {
			specs = append(specs, FieldSpec{Name: name, Mode: v[name]})
		}
		return parseFieldsMode(specs)
	case map[string]any:
		specs := make([]FieldSpec, 0, len(v))
		for _, name := range sortedKeys(v) {
			switch sub := v[name].(type) {
			case string:
				specs = append(specs, FieldSpec{Name: name, Mode: sub})
			case map[string]any, map[string]string, []FieldSpec:
				return RuleMode{}, Errorf(EUNSUPPORTED, "field %q: nested mapping modes are not supported", name)
			default:
				return RuleMode{}, Errorf(EINVALID, "field %q: mode must be a string, got %T", name, sub)
			}
		}
		return parseFieldsMode(specs)
	}
	return RuleMode{}, Errorf(EINVALID, "rule mode must be a string or a mapping, got %T", raw)
}

// MustParseRuleMode is like ParseRuleMode but panics on error.
func MustParseRuleMode(raw any) RuleMode {
	m, err := ParseRuleMode(raw)
	if err != nil {
		panic(err)
	}
	return m
}

func parseScalarMode(s string) (RuleMode, error) {
	var mode RuleMode
	if strings.HasSuffix(s, RepeatMarker) {
		mode.repeat = true
		s = strings.TrimSuffix(s, RepeatMarker)
	}
	m, err := ParseExtractionMode(s)
	if err != nil {
		return RuleMode{}, err
	}
	mode.scalar = m
	return mode, nil
}

func parseFieldsMode(specs []FieldSpec) (RuleMode, error) {
	if len(specs) == 0 {
		return RuleMode{}, Errorf(EINVALID, "mapping mode requires at least one field")
	}
	fields := make([]FieldMode, 0, len(specs))
	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if spec.Name == "" {
			return RuleMode{}, Errorf(EINVALID, "mapping mode field name required")
		}
		if seen[spec.Name] {
			return RuleMode{}, Errorf(EINVALID, "duplicate mapping mode field %q", spec.Name)
		}
		seen[spec.Name] = true
		m, err := ParseExtractionMode(spec.Mode)
		if err != nil {
			return RuleMode{}, Errorf(EINVALID, "field %q: %s", spec.Name, ErrorMessage(err))
		}
		fields = append(fields, FieldMode{Name: spec.Name, Mode: m})
	}
	return RuleMode{fields: fields}, nil
}

// IsFields reports whether the mode is a mapping of sub-fields.
func (m RuleMode) IsFields() bool {
	return len(m.fields) > 0
}

// Scalar returns the single extraction mode. It is the zero value for
// mapping modes.
func (m RuleMode) Scalar() ExtractionMode {
	return m.scalar
}

// Fields returns the ordered sub-fields of a mapping mode.
func (m RuleMode) Fields() []FieldMode {
	return m.fields
}

// Repeat reports whether the raw mode carried RepeatMarker.
func (m RuleMode) Repeat() bool {
	return m.repeat
}

// String returns the raw form of the mode.
func (m RuleMode) String() string {
	if m.IsFields() {
		parts := make([]string, len(m.fields))
		for i, f := range m.fields {
			parts[i] = f.Name + ":" + f.Mode.String()
		}
		return "{" + strings.Join(parts, " ") + "}"
	}
	s := m.scalar.String()
	if m.repeat {
		s += RepeatMarker
	}
	return s
}

func (m RuleMode) validate() error {
	if m.IsFields() {
		for _, f := range m.fields {
			if f.Mode.Kind == ModeInvalid {
				return Errorf(EINVALID, "field %q: extraction mode required", f.Name)
			}
		}
		return nil
	}
	if m.scalar.Kind == ModeInvalid {
		return Errorf(EINVALID, "extraction mode required")
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
