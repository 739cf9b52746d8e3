package flow

import "strings"

// EndpointKey identifies an unrecognized request destination.
type EndpointKey struct {
	Method string
	URL    string
}

// PatternKey identifies an unrecognized purpose pattern: the model and a short
// preview of the primary user text.
type PatternKey struct {
	Model   string
	Preview string
}

// PatternCount is a PatternKey with the number of times it was seen.
type PatternCount struct {
	PatternKey
	Count int
}

// Session accumulates the order-dependent state of one analysis run. It only
// grows while the run is in progress and is handed back once the run completes.
type Session struct {
	TurnCount  int
	PhaseCount int

	unknownEndpoints []EndpointKey
	endpointSeen     map[EndpointKey]bool

	unknownPatterns []PatternCount
	patternIndex    map[PatternKey]int
}

func newSession() *Session {
	return &Session{
		endpointSeen: make(map[EndpointKey]bool),
		patternIndex: make(map[PatternKey]int),
	}
}

// UnknownEndpoints returns each unrecognized (method, url) pair once, in the
// order it was first seen.
func (s *Session) UnknownEndpoints() []EndpointKey {
	return append([]EndpointKey(nil), s.unknownEndpoints...)
}

// UnknownPatterns returns each unrecognized (model, preview) pair once, in the
// order it was first seen, with its occurrence count.
func (s *Session) UnknownPatterns() []PatternCount {
	return append([]PatternCount(nil), s.unknownPatterns...)
}

// AllRecognized reports whether the run saw nothing unrecognized.
func (s *Session) AllRecognized() bool {
	return len(s.unknownEndpoints) == 0 && len(s.unknownPatterns) == 0
}

func (s *Session) recordUnknownEndpoint(method, url string) {
	key := EndpointKey{Method: method, URL: url}
	if s.endpointSeen[key] {
		return
	}
	s.endpointSeen[key] = true
	s.unknownEndpoints = append(s.unknownEndpoints, key)
}

func (s *Session) recordUnknownPattern(model, preview string) {
	key := PatternKey{Model: model, Preview: preview}
	if i, ok := s.patternIndex[key]; ok {
		s.unknownPatterns[i].Count++
		return
	}
	s.patternIndex[key] = len(s.unknownPatterns)
	s.unknownPatterns = append(s.unknownPatterns, PatternCount{PatternKey: key, Count: 1})
}

// Boundary marks the start of a turn or phase in the entry stream.
type Boundary struct {
	Number int
	Prompt string
}

// TurnSegmenter counts user turns. A turn starts at every request whose purpose
// label is the topic-detection label.
type TurnSegmenter struct {
	count int
}

// Count returns the number of turns seen so far.
func (t *TurnSegmenter) Count() int {
	return t.count
}

// Observe advances the counter by exactly one when isTopicDetection is set and
// returns the boundary for the new turn, its prompt built from userText.
func (t *TurnSegmenter) Observe(isTopicDetection bool, userText string) (Boundary, bool) {
	if !isTopicDetection {
		return Boundary{}, false
	}
	t.count++
	return Boundary{Number: t.count, Prompt: promptLine(userText)}, true
}

// PhaseSegmenter counts health-check phases.
type PhaseSegmenter struct {
	count int
}

// Count returns the number of phases seen so far.
func (p *PhaseSegmenter) Count() int {
	return p.count
}

// Observe advances the counter for every health check.
func (p *PhaseSegmenter) Observe(isHealthCheck bool) (Boundary, bool) {
	if !isHealthCheck {
		return Boundary{}, false
	}
	p.count++
	return Boundary{Number: p.count}, true
}

const promptWidth = 80

// promptLine flattens text onto one line and caps it at promptWidth characters.
func promptLine(text string) string {
	flat := strings.NewReplacer("\r", " ", "\n", " ").Replace(text)
	runes := []rune(flat)
	if len(runes) <= promptWidth {
		return flat
	}
	return string(runes[:promptWidth-3]) + "..."
}

const previewWidth = 50

// preview keeps the first previewWidth characters of text.
func preview(text string) string {
	runes := []rune(text)
	if len(runes) <= previewWidth {
		return text
	}
	return string(runes[:previewWidth])
}
