package rules

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/chargeplan/core/schedule"
)

// Format selects the rule file syntax.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension; anything other
// than .yaml or .yml is read as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// LoadRuleSet reads a rule file. A missing file wraps schedule.ErrNotFound,
// unreadable content wraps schedule.ErrParse. Individual rules that cannot be
// decoded are dropped and reported as warnings.
func LoadRuleSet(path string) (RuleSet, []Warning, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return RuleSet{}, nil, fmt.Errorf("%w: rules file %s", schedule.ErrNotFound, path)
		}
		return RuleSet{}, nil, fmt.Errorf("open rules file: %w", err)
	}
	defer f.Close()
	return DecodeRuleSet(f, FormatFromPath(path))
}

// DecodeRuleSet decodes a rule set. The set and its rules default to enabled.
func DecodeRuleSet(r io.Reader, format Format) (RuleSet, []Warning, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return RuleSet{}, nil, fmt.Errorf("read rules: %w", err)
	}
	if format == FormatYAML {
		if data, err = yamlToJSON(data); err != nil {
			return RuleSet{}, nil, fmt.Errorf("%w: rules: %v", schedule.ErrParse, err)
		}
	}
	var doc struct {
		Enabled *bool              `json:"enabled"`
		Rules   *[]json.RawMessage `json:"rules"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return RuleSet{}, nil, fmt.Errorf("%w: rules: %v", schedule.ErrParse, err)
	}
	if doc.Rules == nil {
		return RuleSet{}, nil, fmt.Errorf("%w: rules file has no \"rules\" list", schedule.ErrParse)
	}
	rs := RuleSet{Enabled: true, Rules: make([]Rule, 0, len(*doc.Rules))}
	if doc.Enabled != nil {
		rs.Enabled = *doc.Enabled
	}
	var warnings []Warning
	for i, raw := range *doc.Rules {
		var rule Rule
		if err := json.Unmarshal(raw, &rule); err != nil {
			id := ruleID(raw, i)
			werr := fmt.Errorf("%w: %v", ErrMalformedRule, err)
			warnings = append(warnings, Warning{RuleID: id, Err: werr, Message: werr.Error()})
			continue
		}
		rs.Rules = append(rs.Rules, rule)
	}
	return rs, warnings, nil
}

// ruleID recovers an identifier for a rule that failed to decode.
func ruleID(raw json.RawMessage, index int) string {
	var head struct {
		ID json.RawMessage `json:"id"`
	}
	if json.Unmarshal(raw, &head) == nil {
		if id := idString(head.ID); id != "" {
			return id
		}
	}
	return fmt.Sprintf("#%d", index)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	var v any
	if len(root.Content) > 0 {
		decimalPlain(&root)
		if err := root.Decode(&v); err != nil {
			return nil, err
		}
	}
	if v == nil {
		v = map[string]any{}
	}
	return json.Marshal(v)
}

// decimalPlain reads unquoted digit strings with a leading zero (start: 0700)
// as decimal numbers. yaml.v3 would otherwise resolve them as octal.
func decimalPlain(n *yaml.Node) {
	if n.Kind == yaml.ScalarNode {
		if n.Style == 0 && len(n.Value) > 1 && n.Value[0] == '0' && allDigits(n.Value) {
			n.Tag = "!!int"
			n.Value = strings.TrimLeft(n.Value, "0")
			if n.Value == "" {
				n.Value = "0"
			}
		}
		return
	}
	for i, c := range n.Content {
		if n.Kind == yaml.MappingNode && i%2 == 0 {
			continue
		}
		decimalPlain(c)
	}
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
