// Package yaml loads rule files written in YAML (or JSON, which YAML
// accepts) into querylist rule sets.
//
// A rule file looks like:
//
//	range: "ul.news > li"
//	rules:
//	  title: [a, text]
//	  link: [a, href]
//	  summary: [".summary", text, "b -script"]
//	  meta:
//	    selector: ".meta"
//	    mode: {author: text, date: data-date}
//
// Rule order in the file is the field order of the extracted records.
package yaml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sd2595101/querylist"
	"gopkg.in/yaml.v3"
)

type ruleFile struct {
	Range string    `yaml:"range"`
	Rules yaml.Node `yaml:"rules"`
}

// LoadRuleFile reads and parses the rule file at path. A missing file
// returns ENOTFOUND.
func LoadRuleFile(path string) (*querylist.RuleFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, querylist.Errorf(querylist.ENOTFOUND, "rules file %q not found", path)
	} else if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	return ParseRuleFile(data)
}

// ParseRuleFile parses a rule file. Returns EINVALID for malformed rules and
// EUNSUPPORTED for mapping modes nested inside mapping modes.
func ParseRuleFile(data []byte) (*querylist.RuleFile, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, querylist.Errorf(querylist.EINVALID, "parse rules file: %v", err)
	}

	root := deref(&f.Rules)
	if root.Kind != yaml.MappingNode || len(root.Content) == 0 {
		return nil, querylist.Errorf(querylist.EINVALID, "rules file has no rules")
	}

	rules := make(querylist.RuleSet, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, value := root.Content[i], deref(root.Content[i+1])
		rule, err := parseRule(key.Value, value)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	if err := rules.Validate(); err != nil {
		return nil, err
	}
	return &querylist.RuleFile{Range: f.Range, Rules: rules}, nil
}

// parseRule accepts the short form [selector, mode, tags] and the long form
// {selector, mode, tags}.
func parseRule(name string, n *yaml.Node) (querylist.Rule, error) {
	rule := querylist.Rule{Name: name}

	var selector, mode, tags *yaml.Node
	switch n.Kind {
	case yaml.SequenceNode:
		if len(n.Content) < 2 || len(n.Content) > 3 {
			return rule, querylist.Errorf(querylist.EINVALID, "rule %q (line %d): expected [selector, mode] or [selector, mode, tags]", name, n.Line)
		}
		selector, mode = deref(n.Content[0]), deref(n.Content[1])
		if len(n.Content) == 3 {
			tags = deref(n.Content[2])
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			v := deref(n.Content[i+1])
			switch k := n.Content[i].Value; k {
			case "selector":
				selector = v
			case "mode":
				mode = v
			case "tags":
				tags = v
			default:
				return rule, querylist.Errorf(querylist.EINVALID, "rule %q (line %d): unknown key %q", name, n.Content[i].Line, k)
			}
		}
	default:
		return rule, querylist.Errorf(querylist.EINVALID, "rule %q (line %d): expected a sequence or a mapping", name, n.Line)
	}

	var err error
	if rule.Selector, err = scalar(name, "selector", selector); err != nil {
		return rule, err
	}
	if rule.Tags, err = scalar(name, "tags", tags); err != nil {
		return rule, err
	}
	if mode == nil {
		return rule, querylist.Errorf(querylist.EINVALID, "rule %q (line %d): mode required", name, n.Line)
	}
	if rule.Mode, err = parseMode(name, mode); err != nil {
		return rule, err
	}
	return rule, nil
}

func parseMode(name string, n *yaml.Node) (querylist.RuleMode, error) {
	var raw any
	switch n.Kind {
	case yaml.ScalarNode:
		raw = n.Value
	case yaml.MappingNode:
		specs := make([]querylist.FieldSpec, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, value := n.Content[i], deref(n.Content[i+1])
			if value.Kind == yaml.MappingNode {
				return querylist.RuleMode{}, querylist.Errorf(querylist.EUNSUPPORTED, "rule %q (line %d): field %q: nested mapping modes are not supported", name, value.Line, key.Value)
			}
			if value.Kind != yaml.ScalarNode {
				return querylist.RuleMode{}, querylist.Errorf(querylist.EINVALID, "rule %q (line %d): field %q: mode must be a string", name, value.Line, key.Value)
			}
			specs = append(specs, querylist.FieldSpec{Name: key.Value, Mode: value.Value})
		}
		raw = specs
	default:
		return querylist.RuleMode{}, querylist.Errorf(querylist.EINVALID, "rule %q (line %d): mode must be a string or a mapping", name, n.Line)
	}

	m, err := querylist.ParseRuleMode(raw)
	if err != nil {
		return querylist.RuleMode{}, querylist.Errorf(querylist.ErrorCode(err), "rule %q (line %d): %s", name, n.Line, querylist.ErrorMessage(err))
	}
	return m, nil
}

// scalar returns the string value of an optional scalar node.
func scalar(name, key string, n *yaml.Node) (string, error) {
	if n == nil || n.ShortTag() == "!!null" {
		return "", nil
	}
	if n.Kind != yaml.ScalarNode {
		return "", querylist.Errorf(querylist.EINVALID, "rule %q (line %d): %s must be a string", name, n.Line, key)
	}
	return n.Value, nil
}

func deref(n *yaml.Node) *yaml.Node {
	for n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}
