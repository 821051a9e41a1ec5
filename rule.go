package querylist

// FieldFunc transforms one extracted field value. It receives the value and
// the name of the field it was extracted for.
type FieldFunc func(value any, field string) (any, error)

// Rule describes how a single output field is extracted.
type Rule struct {
	// Name is the output field name.
	Name string

	// Selector is matched against the document, or against each item when
	// a range is configured. An empty selector means the context itself.
	Selector string

	// Mode controls how values are read from the matched elements.
	Mode RuleMode

	// Tags is a whitespace-separated tag spec used to sanitize HTML values.
	// Tags prefixed with "-" are removed together with their content.
	Tags string

	// Callback optionally post-processes the extracted value.
	Callback FieldFunc
}

// Apply runs the rule's callback on value. Without a callback the value is
// returned unchanged. Callback errors are returned as-is.
func (r *Rule) Apply(value any) (any, error) {
	if r.Callback == nil {
		return value, nil
	}
	return r.Callback(value, r.Name)
}

// Validate returns an error if the rule contains invalid fields.
func (r *Rule) Validate() error {
	if r.Name == "" {
		return Errorf(EINVALID, "rule name required")
	}
	if err := r.Mode.validate(); err != nil {
		return Errorf(ErrorCode(err), "rule %q: %s", r.Name, ErrorMessage(err))
	}
	return nil
}

// RuleSet is an ordered list of rules. Order defines output field order.
type RuleSet []Rule

// Validate returns an error if any rule is invalid or a field name repeats.
func (rs RuleSet) Validate() error {
	if len(rs) == 0 {
		return Errorf(EINVALID, "at least one rule required")
	}
	seen := make(map[string]bool, len(rs))
	for i := range rs {
		if err := rs[i].Validate(); err != nil {
			return err
		}
		if seen[rs[i].Name] {
			return Errorf(EINVALID, "duplicate rule %q", rs[i].Name)
		}
		seen[rs[i].Name] = true
	}
	return nil
}

// Names returns the rule names in order.
func (rs RuleSet) Names() []string {
	names := make([]string, len(rs))
	for i := range rs {
		names[i] = rs[i].Name
	}
	return names
}

// RuleFile is a rule set together with its optional range selector, as
// loaded from a configuration file.
type RuleFile struct {
	Range string
	Rules RuleSet
}

// Extractor applies a configured rule set to HTML markup.
type Extractor interface {
	// Extract parses html and returns one record per item context.
	Extract(html string) (Collection, error)
}
