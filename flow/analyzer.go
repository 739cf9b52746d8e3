// Package flow runs the classification pipeline over a captured trace: it
// visits entries strictly in order, classifies each one, reconstructs the
// conversations of model requests and tracks turns, phases and unknowns in an
// explicit Session.
package flow

import (
	"context"

	"trace-flow/classify"
	"trace-flow/conversation"
	"trace-flow/extract"
	"trace-flow/logger"
	"trace-flow/types"
)

// ClassifiedRequest is the analysis of one entry.
type ClassifiedRequest struct {
	Index   int
	Method  string
	URL     string
	Tag     classify.EndpointTag
	Purpose string

	// Outcome is only meaningful when Detail is set.
	Outcome classify.Outcome

	// Detail is set for model-invocation requests that carried a body.
	Detail *MessageDetail

	// Turn is set when this request starts a new user turn.
	Turn *Boundary

	// Phase is set when this request is a health check closing a phase.
	Phase *Boundary
}

// MessageDetail is what a model-invocation request said and got back.
type MessageDetail struct {
	Model        string
	MessageCount int
	HasSystem    bool
	HasTools     bool
	UserText     string
	UserTexts    []string
	Conversation []conversation.Turn
	ToolCalls    []string
	ResponseText string
}

// Result is the classified stream plus the final session state.
type Result struct {
	Requests []ClassifiedRequest
	Session  *Session
}

// Observer receives every classified request, in order. Observers must not keep
// references to the request's slices.
type Observer interface {
	ObserveRequest(req ClassifiedRequest)
}

// Analyzer holds the rule tables and collaborators of the pipeline. It keeps no
// per-run state, so one Analyzer can serve concurrent runs over different traces
// as long as its observers are safe for concurrent use.
type Analyzer struct {
	endpoints *classify.EndpointClassifier
	purposes  *classify.PurposeClassifier
	log       *logger.ObservabilityLogger
	observers []Observer
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithEndpointClassifier replaces the default endpoint classifier.
func WithEndpointClassifier(c *classify.EndpointClassifier) Option {
	return func(a *Analyzer) { a.endpoints = c }
}

// WithPurposeClassifier replaces the default purpose classifier.
func WithPurposeClassifier(c *classify.PurposeClassifier) Option {
	return func(a *Analyzer) { a.purposes = c }
}

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *logger.ObservabilityLogger) Option {
	return func(a *Analyzer) { a.log = l }
}

// WithObserver registers an observer.
func WithObserver(o Observer) Option {
	return func(a *Analyzer) { a.observers = append(a.observers, o) }
}

// NewAnalyzer builds an Analyzer with the built-in rule tables unless options
// say otherwise.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		endpoints: classify.NewEndpointClassifier(),
		purposes:  classify.NewPurposeClassifier(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze classifies entries in order. It never fails: anything it cannot make
// sense of becomes an UNKNOWN or generic classification.
func (a *Analyzer) Analyze(ctx context.Context, entries []types.LogEntry) *Result {
	session := newSession()
	turns := &TurnSegmenter{}
	phases := &PhaseSegmenter{}

	requests := make([]ClassifiedRequest, 0, len(entries))
	for i, entry := range entries {
		req := a.classifyEntry(ctx, i, entry, session, turns, phases)
		requests = append(requests, req)

		logger.LogEntryClassified(ctx, a.log, i, string(req.Tag), req.Purpose)
		for _, o := range a.observers {
			o.ObserveRequest(req)
		}
	}

	session.TurnCount = turns.Count()
	session.PhaseCount = phases.Count()

	logger.LogRunSummary(ctx, a.log, len(entries), session.TurnCount, session.PhaseCount,
		len(session.unknownEndpoints), len(session.unknownPatterns))

	return &Result{Requests: requests, Session: session}
}

func (a *Analyzer) classifyEntry(ctx context.Context, index int, entry types.LogEntry, session *Session, turns *TurnSegmenter, phases *PhaseSegmenter) ClassifiedRequest {
	url := entry.Request.URL
	method := entry.Request.MethodOrUnknown()

	endpoint := a.endpoints.Classify(url, method)
	req := ClassifiedRequest{
		Index:   index,
		Method:  method,
		URL:     url,
		Tag:     endpoint.Tag,
		Purpose: endpoint.Purpose,
	}

	switch endpoint.Tag {
	case classify.TagUnknown:
		session.recordUnknownEndpoint(method, url)
		logger.LogUnknownEndpoint(ctx, a.log, index, method, url)
	case classify.TagHealth:
		if boundary, ok := phases.Observe(true); ok {
			req.Phase = &boundary
			logger.LogPhaseBoundary(ctx, a.log, index, boundary.Number)
		}
	case classify.TagMessage:
		body, ok := entry.Request.MessageBody()
		if !ok {
			break
		}
		a.classifyMessage(ctx, &req, body, entry.Response.BodyRaw.String(), session, turns)
	}

	return req
}

func (a *Analyzer) classifyMessage(ctx context.Context, req *ClassifiedRequest, body *types.RequestBody, bodyRaw string, session *Session, turns *TurnSegmenter) {
	userText := extract.PrimaryUserText(body.Messages)
	resp := extract.ParseResponse(bodyRaw)

	purpose := a.purposes.Classify(body, userText, resp)
	req.Purpose = purpose.Label
	req.Outcome = purpose.Outcome

	if boundary, ok := turns.Observe(classify.IsTopicDetection(purpose.Label), userText); ok {
		req.Turn = &boundary
		logger.LogTurnBoundary(ctx, a.log, req.Index, boundary.Number, boundary.Prompt)
	}

	model := body.ModelName()
	if classify.IsUnrecognized(purpose.Label) {
		p := preview(userText)
		session.recordUnknownPattern(model, p)
		logger.LogUnknownPattern(ctx, a.log, req.Index, model, p)
	}

	req.Detail = &MessageDetail{
		Model:        model,
		MessageCount: body.MessageCount(),
		HasSystem:    body.HasSystem(),
		HasTools:     body.HasTools(),
		UserText:     userText,
		UserTexts:    extract.AllUserTexts(body.Messages),
		Conversation: conversation.Reconstruct(body.Messages),
		ToolCalls:    resp.ToolCalls,
		ResponseText: resp.Text,
	}
}
