package querylist

import "strings"

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms an HTML fragment into Markdown.
	Convert(html string) (string, error)
}

// ConvertFields returns a FieldFunc that runs every non-blank string value
// through c. Strings inside []any and *Record values are converted too;
// other values pass through unchanged.
func ConvertFields(c Converter) FieldFunc {
	var convert func(v any) (any, error)
	convert = func(v any) (any, error) {
		switch v := v.(type) {
		case string:
			if strings.TrimSpace(v) == "" {
				return v, nil
			}
			return c.Convert(v)
		case []any:
			out := make([]any, len(v))
			for i, item := range v {
				converted, err := convert(item)
				if err != nil {
					return nil, err
				}
				out[i] = converted
			}
			return out, nil
		case *Record:
			if v == nil {
				return v, nil
			}
			out := &Record{}
			for _, f := range v.fields {
				converted, err := convert(f.Value)
				if err != nil {
					return nil, err
				}
				out.Set(f.Name, converted)
			}
			return out, nil
		}
		return v, nil
	}

	return func(value any, _ string) (any, error) {
		return convert(value)
	}
}
