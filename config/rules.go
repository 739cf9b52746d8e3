package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"trace-flow/classify"
)

// RuleOverrides extends the built-in classification tables. Everything here is
// appended after the built-in entries, so built-in rules keep precedence.
//
// Example rules file:
//
//	endpointRules:
//	  - pattern: /v1/files
//	    tag: MESSAGE
//	    description: File upload
//	modelFamilies:
//	  main: [opus]
//	purposeRules:
//	  fast:
//	    - keyword: summarize this session
//	      label: "🧾 Session summary"
//	      location: user
type RuleOverrides struct {
	EndpointRules []EndpointRuleYAML `yaml:"endpointRules" validate:"dive"`
	ModelFamilies ModelFamiliesYAML  `yaml:"modelFamilies"`
	PurposeRules  PurposeRulesYAML   `yaml:"purposeRules"`
}

// EndpointRuleYAML is one extra endpoint rule.
type EndpointRuleYAML struct {
	Pattern     string `yaml:"pattern" validate:"required"`
	Tag         string `yaml:"tag" validate:"required,oneof=AUTH VALIDATE HEALTH MESSAGE UNKNOWN"`
	Description string `yaml:"description" validate:"required"`
}

// ModelFamiliesYAML lists extra model-name substrings per family.
type ModelFamiliesYAML struct {
	Fast []string `yaml:"fast" validate:"dive,required"`
	Main []string `yaml:"main" validate:"dive,required"`
}

// PurposeRulesYAML lists extra purpose rules per family.
type PurposeRulesYAML struct {
	Fast []PurposeRuleYAML `yaml:"fast" validate:"dive"`
	Main []PurposeRuleYAML `yaml:"main" validate:"dive"`
}

// PurposeRuleYAML is one extra purpose rule. Location defaults to user.
type PurposeRuleYAML struct {
	Keyword  string `yaml:"keyword" validate:"required"`
	Label    string `yaml:"label" validate:"required"`
	Location string `yaml:"location" validate:"omitempty,oneof=user system"`
}

// LoadRuleOverrides reads and validates a rules file.
func LoadRuleOverrides(path string) (RuleOverrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleOverrides{}, fmt.Errorf("failed to read rules file %s: %w", path, err)
	}
	return ParseRuleOverrides(data)
}

// ParseRuleOverrides decodes and validates rules file content. An empty
// document yields no overrides.
func ParseRuleOverrides(data []byte) (RuleOverrides, error) {
	var rules RuleOverrides
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return RuleOverrides{}, fmt.Errorf("failed to parse rules file: %w", err)
	}
	if err := validator.New().Struct(rules); err != nil {
		return RuleOverrides{}, fmt.Errorf("invalid rules file: %w", err)
	}
	return rules, nil
}

// ClassifierRules converts the extra endpoint rules.
func (r RuleOverrides) ClassifierRules() []classify.EndpointRule {
	rules := make([]classify.EndpointRule, 0, len(r.EndpointRules))
	for _, rule := range r.EndpointRules {
		tag, _ := classify.ParseEndpointTag(rule.Tag)
		rules = append(rules, classify.EndpointRule{
			Pattern:     rule.Pattern,
			Tag:         tag,
			Description: rule.Description,
		})
	}
	return rules
}

// Families returns the built-in families with the extra match substrings and
// rules appended.
func (r RuleOverrides) Families() []classify.Family {
	families := classify.DefaultFamilies()
	for i := range families {
		switch families[i].Kind {
		case classify.FamilyFast:
			families[i].Matches = append(families[i].Matches, r.ModelFamilies.Fast...)
			families[i].Rules = append(families[i].Rules, purposeRules(r.PurposeRules.Fast)...)
		case classify.FamilyMain:
			families[i].Matches = append(families[i].Matches, r.ModelFamilies.Main...)
			families[i].Rules = append(families[i].Rules, purposeRules(r.PurposeRules.Main)...)
		}
	}
	return families
}

func purposeRules(in []PurposeRuleYAML) []classify.PurposeRule {
	rules := make([]classify.PurposeRule, 0, len(in))
	for _, rule := range in {
		location, _ := classify.ParseLocation(rule.Location)
		rules = append(rules, classify.PurposeRule{
			Keyword:  rule.Keyword,
			Label:    rule.Label,
			Location: location,
		})
	}
	return rules
}

// EndpointClassifier builds the endpoint classifier for this configuration.
func (c *Config) EndpointClassifier() *classify.EndpointClassifier {
	return classify.NewEndpointClassifier(c.Rules.ClassifierRules()...)
}

// PurposeClassifier builds the purpose classifier for this configuration.
func (c *Config) PurposeClassifier() *classify.PurposeClassifier {
	return classify.NewPurposeClassifier(c.Rules.Families()...)
}
