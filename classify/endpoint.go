// Package classify tags captured requests with an endpoint kind and, for
// model invocations, a purpose label. Both classifiers walk ordered rule tables
// and stop at the first match; neither can fail.
package classify

import (
	"fmt"
	"strings"
)

// EndpointTag is the fixed taxonomy every captured request falls into.
type EndpointTag string

const (
	TagAuth     EndpointTag = "AUTH"
	TagValidate EndpointTag = "VALIDATE"
	TagHealth   EndpointTag = "HEALTH"
	TagMessage  EndpointTag = "MESSAGE"
	TagUnknown  EndpointTag = "UNKNOWN"
)

// EndpointTags lists the whole taxonomy in display order.
var EndpointTags = []EndpointTag{TagAuth, TagValidate, TagHealth, TagMessage, TagUnknown}

// ParseEndpointTag maps a tag name to its EndpointTag.
func ParseEndpointTag(name string) (EndpointTag, bool) {
	for _, tag := range EndpointTags {
		if string(tag) == strings.ToUpper(strings.TrimSpace(name)) {
			return tag, true
		}
	}
	return "", false
}

// EndpointRule maps a URL substring to a tag and a human-readable description.
type EndpointRule struct {
	Pattern     string
	Tag         EndpointTag
	Description string
}

// DefaultEndpointRules returns the built-in rule table. Order matters: the first
// matching rule wins.
func DefaultEndpointRules() []EndpointRule {
	return []EndpointRule{
		{Pattern: "oauth", Tag: TagAuth, Description: "OAuth authentication"},
		{Pattern: "organization", Tag: TagAuth, Description: "Organization access check"},
		{Pattern: "count_tokens", Tag: TagValidate, Description: "Token count validation"},
		{Pattern: "/api/hello", Tag: TagHealth, Description: "Health check"},
		{Pattern: "/v1/messages", Tag: TagMessage, Description: "API message request"},
	}
}

// Endpoint is the outcome of classifying one request destination.
type Endpoint struct {
	Tag     EndpointTag
	Purpose string
}

// Known reports whether a rule matched.
func (e Endpoint) Known() bool {
	return e.Tag != TagUnknown
}

// EndpointClassifier evaluates an ordered rule table against request URLs.
// It holds no mutable state and is safe for concurrent use.
type EndpointClassifier struct {
	rules []EndpointRule
}

// NewEndpointClassifier builds a classifier from the default table followed by
// any extra rules.
func NewEndpointClassifier(extra ...EndpointRule) *EndpointClassifier {
	rules := DefaultEndpointRules()
	rules = append(rules, extra...)
	return &EndpointClassifier{rules: rules}
}

// Rules returns a copy of the rule table in evaluation order.
func (c *EndpointClassifier) Rules() []EndpointRule {
	return append([]EndpointRule(nil), c.rules...)
}

// Classify returns the first matching rule's tag and description. When nothing
// matches the result is TagUnknown with a description built from the method and
// the last one or two URL path segments.
func (c *EndpointClassifier) Classify(url, method string) Endpoint {
	for _, rule := range c.rules {
		if rule.Pattern != "" && strings.Contains(url, rule.Pattern) {
			return Endpoint{Tag: rule.Tag, Purpose: rule.Description}
		}
	}
	return Endpoint{
		Tag:     TagUnknown,
		Purpose: fmt.Sprintf("⚠️  Unknown endpoint: %s %s", method, endpointName(url)),
	}
}

// endpointName keeps the last two "/"-separated segments of url.
func endpointName(url string) string {
	parts := strings.Split(url, "/")
	if len(parts) < 2 {
		return url
	}
	return strings.Join(parts[len(parts)-2:], "/")
}
