package pattern

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/budgetflow/internal/classification"
	"github.com/Veraticus/budgetflow/internal/model"
	"github.com/Veraticus/budgetflow/internal/service"
)

// mappingsKey is the only property read from a rules document.
const mappingsKey = "mappings"

// Rule document errors.
var (
	ErrNoMappings      = errors.New("rules document has no mappings property")
	ErrInvalidMappings = errors.New("mappings must be an object of pattern to category name")
)

var _ service.RuleSource = (*FileRuleSource)(nil)

// FileRuleSource loads mapping rules from a JSON or YAML file and falls back
// to the built-in rules when the file cannot be used.
type FileRuleSource struct {
	logger *slog.Logger
	path   string
}

// NewFileRuleSource creates a rule source for path. An empty path always
// yields the built-in rules.
func NewFileRuleSource(path string, logger *slog.Logger) *FileRuleSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileRuleSource{path: path, logger: logger}
}

// LoadRules reads the rules file. It never fails.
func (s *FileRuleSource) LoadRules(_ context.Context) *model.RuleSet {
	if s.path == "" {
		s.logger.Debug("No rules file configured, using built-in rules")
		return classification.DefaultRuleSet()
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		s.logger.Warn("Could not read rules file, using built-in rules",
			"path", s.path,
			"error", err)
		return classification.DefaultRuleSet()
	}

	rules, err := ParseRules(s.path, data)
	if err != nil {
		s.logger.Warn("Invalid rules file, using built-in rules",
			"path", s.path,
			"error", err)
		return classification.DefaultRuleSet()
	}

	s.logger.Debug("Loaded mapping rules", "path", s.path, "rules", rules.Len())
	return rules
}

// ParseRules decodes a rules document. YAML is used for .yaml and .yml
// names, JSON otherwise. Rules keep the order of the document's keys.
func ParseRules(name string, data []byte) (*model.RuleSet, error) {
	var (
		rules []model.MappingRule
		err   error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		rules, err = parseYAMLRules(data)
	default:
		rules, err = parseJSONRules(data)
	}
	if err != nil {
		return nil, err
	}
	return model.NewRuleSet(name, rules), nil
}

// parseJSONRules walks the token stream so that key order survives; a plain
// map would lose first-match precedence.
func parseJSONRules(data []byte) ([]model.MappingRule, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	var (
		rules []model.MappingRule
		found bool
	)
	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read rules document: %w", err)
		}
		if key != mappingsKey {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, fmt.Errorf("failed to read rules document: %w", err)
			}
			continue
		}

		found = true
		if err := expectDelim(dec, '{'); err != nil {
			return nil, err
		}
		for dec.More() {
			tok, err := dec.Token()
			if err != nil {
				return nil, fmt.Errorf("failed to read mappings: %w", err)
			}
			pattern, _ := tok.(string)
			var category string
			if err := dec.Decode(&category); err != nil {
				return nil, fmt.Errorf("%w: pattern %q: %w", ErrInvalidMappings, pattern, err)
			}
			rules = append(rules, model.MappingRule{Pattern: pattern, Category: category})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
	}

	if !found {
		return nil, ErrNoMappings
	}
	return rules, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("failed to read rules document: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		if want == '{' {
			return ErrInvalidMappings
		}
		return fmt.Errorf("failed to read rules document: unexpected %v", tok)
	}
	return nil
}

func parseYAMLRules(data []byte) ([]model.MappingRule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to read rules document: %w", err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return nil, ErrNoMappings
	}

	root := doc.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != mappingsKey {
			continue
		}
		mappings := root.Content[i+1]
		if mappings.Kind != yaml.MappingNode {
			return nil, ErrInvalidMappings
		}

		rules := make([]model.MappingRule, 0, len(mappings.Content)/2)
		for j := 0; j+1 < len(mappings.Content); j += 2 {
			k, v := mappings.Content[j], mappings.Content[j+1]
			if v.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: pattern %q", ErrInvalidMappings, k.Value)
			}
			rules = append(rules, model.MappingRule{Pattern: k.Value, Category: v.Value})
		}
		return rules, nil
	}

	return nil, ErrNoMappings
}
