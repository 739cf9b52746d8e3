package classify

import (
	"fmt"
	"strings"

	"trace-flow/extract"
	"trace-flow/types"
)

// Location says which text a PurposeRule keyword is searched in.
type Location int

const (
	LocationUser Location = iota
	LocationSystem
)

// String returns the configuration name of the location.
func (l Location) String() string {
	switch l {
	case LocationUser:
		return "user"
	case LocationSystem:
		return "system"
	default:
		return "unknown"
	}
}

// ParseLocation maps "user" or "system" to a Location.
func ParseLocation(name string) (Location, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "user":
		return LocationUser, true
	case "system":
		return LocationSystem, true
	default:
		return LocationUser, false
	}
}

// PurposeRule labels a request when Keyword occurs in the text at Location.
// Keywords are matched case-insensitively.
type PurposeRule struct {
	Keyword  string
	Label    string
	Location Location
}

// FamilyKind selects how a model family resolves requests no rule matched.
type FamilyKind int

const (
	// FamilyFast is the small, cheap tier the client uses for housekeeping calls.
	FamilyFast FamilyKind = iota
	// FamilyMain is the tier that carries the actual conversation.
	FamilyMain
)

// String returns the configuration name of the family kind.
func (k FamilyKind) String() string {
	if k == FamilyFast {
		return "fast"
	}
	return "main"
}

// Family is one model tier: the substrings that identify it and its ordered rule
// table.
type Family struct {
	Kind    FamilyKind
	Name    string
	Matches []string
	Rules   []PurposeRule
}

// Labels produced by the built-in rule tables.
const (
	LabelQuotaCheck      = "💰 Check quota limits"
	LabelWarmup          = "🔥 Model warmup"
	LabelTitle           = "📝 Generate conversation title"
	LabelTopicDetection  = "🔍 Detect if new topic"
	LabelTopicJSON       = "🔍 Topic detection (JSON)"
	LabelSummarizeOutput = "📋 Summarize tool output"
	LabelMainWarmup      = "🔥 Model warmup (Sonnet)"
)

// TopicDetectionMarker identifies the label of the call the client issues once
// per user-initiated turn.
const TopicDetectionMarker = "Detect if new topic"

// DefaultFamilies returns fresh copies of the built-in fast and main families.
// Rule order matters: earlier rules are more specific than later ones.
func DefaultFamilies() []Family {
	return []Family{
		{
			Kind:    FamilyFast,
			Name:    "Haiku",
			Matches: []string{"haiku"},
			Rules: []PurposeRule{
				{Keyword: "quota", Label: LabelQuotaCheck, Location: LocationUser},
				{Keyword: "warmup", Label: LabelWarmup, Location: LocationUser},
				{Keyword: "title for the following conversation", Label: LabelTitle, Location: LocationUser},
				{Keyword: "new conversation topic", Label: LabelTopicDetection, Location: LocationSystem},
				{Keyword: "isnewtopic", Label: LabelTopicJSON, Location: LocationSystem},
				{Keyword: "command:", Label: LabelSummarizeOutput, Location: LocationUser},
			},
		},
		{
			Kind:    FamilyMain,
			Name:    "Sonnet",
			Matches: []string{"sonnet"},
			Rules: []PurposeRule{
				{Keyword: "warmup", Label: LabelMainWarmup, Location: LocationUser},
			},
		},
	}
}

// Outcome records which branch of the classifier produced a label.
type Outcome int

const (
	OutcomeRule Outcome = iota
	OutcomeToolCalls
	OutcomeGeneric
	OutcomeUnrecognized
	OutcomeUnknownModel
)

// String returns a stable name, used as a metric label.
func (o Outcome) String() string {
	switch o {
	case OutcomeRule:
		return "rule"
	case OutcomeToolCalls:
		return "tool_calls"
	case OutcomeGeneric:
		return "generic"
	case OutcomeUnrecognized:
		return "unrecognized"
	case OutcomeUnknownModel:
		return "unknown_model"
	default:
		return "unknown"
	}
}

// Purpose is the result of classifying one model-invocation request.
type Purpose struct {
	Label   string
	Family  string
	Outcome Outcome
}

// PurposeClassifier assigns purpose labels from ordered, table-driven rules.
// It holds no mutable state and is safe for concurrent use.
type PurposeClassifier struct {
	families []Family
}

// NewPurposeClassifier builds a classifier over families, or over
// DefaultFamilies when none are given. Keywords and match substrings are
// lower-cased once here.
func NewPurposeClassifier(families ...Family) *PurposeClassifier {
	if len(families) == 0 {
		families = DefaultFamilies()
	}

	normalized := make([]Family, 0, len(families))
	for _, family := range families {
		f := Family{Kind: family.Kind, Name: family.Name}
		for _, match := range family.Matches {
			f.Matches = append(f.Matches, strings.ToLower(match))
		}
		for _, rule := range family.Rules {
			rule.Keyword = strings.ToLower(rule.Keyword)
			f.Rules = append(f.Rules, rule)
		}
		normalized = append(normalized, f)
	}
	return &PurposeClassifier{families: normalized}
}

// Families returns the normalized families in evaluation order.
func (c *PurposeClassifier) Families() []Family {
	return append([]Family(nil), c.families...)
}

// Classify labels a request from its body, its primary user text and its decoded
// response. The label is never empty.
func (c *PurposeClassifier) Classify(body *types.RequestBody, userText string, resp extract.Response) Purpose {
	model := body.ModelName()
	lowerModel := strings.ToLower(model)

	family, ok := c.familyFor(lowerModel)
	if !ok {
		return Purpose{
			Label:   fmt.Sprintf("❓ Unknown model: %s", model),
			Outcome: OutcomeUnknownModel,
		}
	}

	lowerUser := strings.ToLower(userText)
	var lowerSystem string
	if body != nil {
		lowerSystem = strings.ToLower(body.System.Flatten())
	}

	for _, rule := range family.Rules {
		haystack := lowerUser
		if rule.Location == LocationSystem {
			haystack = lowerSystem
		}
		if rule.Keyword != "" && strings.Contains(haystack, rule.Keyword) {
			return Purpose{Label: rule.Label, Family: family.Kind.String(), Outcome: OutcomeRule}
		}
	}

	if family.Kind == FamilyFast {
		return Purpose{
			Label:   fmt.Sprintf("⚡ %s processing (unknown pattern)", family.Name),
			Family:  family.Kind.String(),
			Outcome: OutcomeUnrecognized,
		}
	}

	if resp.HasToolCalls() {
		return Purpose{
			Label:   fmt.Sprintf("🛠️  %s calling: %s", family.Name, strings.Join(resp.ToolCalls, ", ")),
			Family:  family.Kind.String(),
			Outcome: OutcomeToolCalls,
		}
	}

	return Purpose{
		Label:   fmt.Sprintf("💬 %s turn (msgs:%d, sys:%t)", family.Name, body.MessageCount(), body.HasSystem()),
		Family:  family.Kind.String(),
		Outcome: OutcomeGeneric,
	}
}

// FamilyOf returns the first family whose match substrings occur in model.
func (c *PurposeClassifier) FamilyOf(model string) (Family, bool) {
	return c.familyFor(strings.ToLower(model))
}

func (c *PurposeClassifier) familyFor(lowerModel string) (Family, bool) {
	for _, family := range c.families {
		for _, match := range family.Matches {
			if match != "" && strings.Contains(lowerModel, match) {
				return family, true
			}
		}
	}
	return Family{}, false
}

// IsTopicDetection reports whether label marks the start of a user turn.
func IsTopicDetection(label string) bool {
	return strings.Contains(label, TopicDetectionMarker)
}

// IsUnrecognized reports whether label is one of the "unknown" fallbacks that
// should be surfaced in the closing summary.
func IsUnrecognized(label string) bool {
	lower := strings.ToLower(label)
	return strings.Contains(lower, "unknown pattern") || strings.Contains(lower, "unknown model")
}
