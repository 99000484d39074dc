// Package rulespec loads admin-authored progression rule documents.
//
// Rule documents are YAML files validated in two layers: the CUE schema
// checks the document shape (required fields, entity types, priority
// range, defaults), then the condition trees are walked so that a typo'd
// condition key is rejected at import time instead of silently evaluating
// false forever.
package rulespec

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/denizcargo/opswatch/internal/condition"
	"github.com/denizcargo/opswatch/internal/domain"
)

// Validation error codes (E200-E299).
const (
	ErrDocumentInvalid    = "E200" // document fails the CUE schema
	ErrDuplicateRuleID    = "E201" // two rules share an id
	ErrConditionsInvalid  = "E202" // conditions are not a valid JSON document
	ErrUnknownCondition   = "E203" // condition node carries no recognized key
	ErrEmptyConditionList = "E204" // any_of/all_of with no children
)

// ValidationError is one problem found in a rule document.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// document mirrors the YAML file layout.
type document struct {
	Rules []ruleDoc `yaml:"rules"`
}

type ruleDoc struct {
	ID               string         `yaml:"id"`
	NotificationType string         `yaml:"notification_type"`
	EntityType       string         `yaml:"entity_type"`
	Priority         *int           `yaml:"priority"`
	IsActive         *bool          `yaml:"is_active"`
	Description      string         `yaml:"description"`
	Conditions       map[string]any `yaml:"conditions"`
}

// Load reads and parses one rule document file.
func Load(path string) ([]domain.ProgressionRule, []ValidationError, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("rulespec: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML rule document. The returned rules
// carry zero timestamps; the caller stamps them on upsert. A non-empty
// ValidationError slice means the document was rejected; the error return
// is reserved for YAML/schema machinery failures.
func Parse(data []byte) ([]domain.ProgressionRule, []ValidationError, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("rulespec: parse yaml: %w", err)
	}

	if errs := validateSchema(raw); len(errs) > 0 {
		return nil, errs, nil
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("rulespec: decode document: %w", err)
	}

	var errs []ValidationError
	seen := make(map[string]bool, len(doc.Rules))
	rules := make([]domain.ProgressionRule, 0, len(doc.Rules))

	for i, rd := range doc.Rules {
		field := fmt.Sprintf("rules[%d]", i)

		if seen[rd.ID] {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("duplicate rule id %q", rd.ID),
				Code:    ErrDuplicateRuleID,
			})
		}
		seen[rd.ID] = true

		condJSON, condErrs := compileConditions(rd.Conditions, field+".conditions")
		errs = append(errs, condErrs...)
		if len(condErrs) > 0 {
			continue
		}

		priority := 100
		if rd.Priority != nil {
			priority = *rd.Priority
		}
		active := true
		if rd.IsActive != nil {
			active = *rd.IsActive
		}

		rules = append(rules, domain.ProgressionRule{
			ID:               rd.ID,
			NotificationType: rd.NotificationType,
			EntityType:       domain.EntityType(rd.EntityType),
			Conditions:       condJSON,
			Priority:         priority,
			IsActive:         active,
			Description:      rd.Description,
		})
	}

	if len(errs) > 0 {
		return nil, errs, nil
	}
	return rules, nil, nil
}

// validateSchema unifies the decoded document with the CUE schema and
// reports every constraint violation.
func validateSchema(raw any) []ValidationError {
	cctx := cuecontext.New()

	schema := cctx.CompileString(Schema)
	if err := schema.Err(); err != nil {
		return []ValidationError{{
			Field:   "schema",
			Message: err.Error(),
			Code:    ErrDocumentInvalid,
		}}
	}

	docSchema := schema.LookupPath(cue.ParsePath("#Document"))
	unified := docSchema.Unify(cctx.Encode(raw))
	err := unified.Validate(cue.Final(), cue.Concrete(true))
	if err == nil {
		return nil
	}

	var errs []ValidationError
	for _, e := range cueerrors.Errors(err) {
		field := strings.Join(e.Path(), ".")
		if field == "" {
			field = "document"
		}
		errs = append(errs, ValidationError{
			Field:   field,
			Message: e.Error(),
			Code:    ErrDocumentInvalid,
		})
	}
	return errs
}

// compileConditions re-encodes a YAML condition tree as the JSON document
// the store keeps, then walks it rejecting unrecognized nodes.
func compileConditions(tree map[string]any, field string) ([]byte, []ValidationError) {
	condJSON, err := json.Marshal(tree)
	if err != nil {
		return nil, []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("conditions cannot be encoded: %v", err),
			Code:    ErrConditionsInvalid,
		}}
	}

	c, err := condition.Parse(condJSON)
	if err != nil {
		return nil, []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("conditions are not a valid condition document: %v", err),
			Code:    ErrConditionsInvalid,
		}}
	}

	if errs := walkCondition(c, field); len(errs) > 0 {
		return nil, errs
	}
	return condJSON, nil
}

// walkCondition recursively checks that every node carries a recognized
// key and that composite nodes are non-empty.
func walkCondition(c condition.Condition, field string) []ValidationError {
	switch c.Kind() {
	case condition.KindAnyOf:
		return walkChildren(c.AnyOf, field+".any_of")
	case condition.KindAllOf:
		return walkChildren(c.AllOf, field+".all_of")
	case condition.KindUnknown:
		return []ValidationError{{
			Field:   field,
			Message: "condition node carries no recognized key",
			Code:    ErrUnknownCondition,
		}}
	default:
		return nil
	}
}

func walkChildren(children []condition.Condition, field string) []ValidationError {
	if len(children) == 0 {
		return []ValidationError{{
			Field:   field,
			Message: "composite condition must have at least one child",
			Code:    ErrEmptyConditionList,
		}}
	}
	var errs []ValidationError
	for i, sub := range children {
		errs = append(errs, walkCondition(sub, fmt.Sprintf("%s[%d]", field, i))...)
	}
	return errs
}
