package service

import (
	"context"
	"fmt"

	"github.com/cloo-solutions/coach/internal/domain"
	"github.com/cloo-solutions/coach/internal/repair"
	"github.com/cloo-solutions/coach/internal/telemetry"
	"github.com/sirupsen/logrus"
)

// Completer sends a prompt to a text-completion model and returns its raw output.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// PromptComposer builds the prompt for one turn.
type PromptComposer interface {
	Compose(knowBase, input string) string
}

// Repairer normalizes raw model text before it is parsed.
type Repairer interface {
	Repair(text string) string
}

// Parser decodes repaired model text into a knowledge base.
type Parser interface {
	Parse(text string) (*domain.KnowledgeBase, error)
}

// TokenCounter estimates prompt size. Negative counts mean unknown.
type TokenCounter interface {
	Count(text string) int
}

// Outcome records which path produced an ExtractResult.
type Outcome string

const (
	OutcomeExtracted     Outcome = "extracted"
	OutcomeSoftFallback  Outcome = "soft_fallback"
	OutcomeErrorFallback Outcome = "error_fallback"
)

// ExtractResult is the answer for the user plus the knowledge base for the next turn.
type ExtractResult struct {
	Answer        string
	KnowledgeBase domain.KnowledgeBase
	Outcome       Outcome
}

// FallbackAnswer is the reply used whenever the model did not produce one.
func FallbackAnswer(question string) string {
	return fmt.Sprintf("Hello! You said '%s'. I'm your fitness coach - how can I help you reach your fitness goals today?", question)
}

// PipelineConfig wires the pipeline's collaborators. Repairer and Parser default to the
// lenient implementations; Tokens is optional.
type PipelineConfig struct {
	Completer Completer
	Composer  PromptComposer
	Repairer  Repairer
	Parser    Parser
	Tokens    TokenCounter
	Model     string
	Logger    logrus.FieldLogger
}

// Pipeline turns a user message and the previous knowledge base into an answer and a new
// knowledge base. It holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	completer Completer
	composer  PromptComposer
	repairer  Repairer
	parser    Parser
	tokens    TokenCounter
	model     string
	logger    logrus.FieldLogger
}

// NewPipeline creates a Pipeline from cfg.
func NewPipeline(cfg PipelineConfig) *Pipeline {
	p := &Pipeline{
		completer: cfg.Completer,
		composer:  cfg.Composer,
		repairer:  cfg.Repairer,
		parser:    cfg.Parser,
		tokens:    cfg.Tokens,
		model:     cfg.Model,
		logger:    cfg.Logger,
	}
	if p.repairer == nil {
		p.repairer = repair.NewLenient()
	}
	if p.parser == nil {
		p.parser = NewLenientParser()
	}
	if p.logger == nil {
		p.logger = logrus.StandardLogger()
	}
	return p
}

// Extract runs one coaching turn. A nil previous means the conversation starts now.
// It never fails: model errors, unparsable output and panics all produce a fallback result.
func (p *Pipeline) Extract(ctx context.Context, question string, previous *domain.KnowledgeBase) (result ExtractResult) {
	ctx, span := telemetry.StartSpan(ctx, "Pipeline.Extract", telemetry.SpanAttributes{
		Model:     p.model,
		Operation: "extract",
	})
	defer span.End()

	log := p.logger.WithField("question", question)

	prev := domain.DefaultKnowledgeBase()
	if previous != nil {
		prev = *previous
	}

	defer func() {
		if r := recover(); r != nil {
			err := domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, domain.ErrInternalFailure.Message,
				fmt.Errorf("panic: %v", r))
			result = p.errorFallback(span, log, question, err)
		}
	}()

	kb, err := p.extract(ctx, span, log, question, prev)
	if err != nil {
		return p.errorFallback(span, log, question, err)
	}

	if kb != nil && kb.HasResponse() {
		log.WithField("outcome", OutcomeExtracted).Info("knowledge base extracted")
		return ExtractResult{
			Answer:        kb.Response,
			KnowledgeBase: *kb,
			Outcome:       OutcomeExtracted,
		}
	}

	record := prev
	if kb != nil {
		record = *kb
	}
	log.WithField("outcome", OutcomeSoftFallback).Warn("model produced no response, using greeting")
	telemetry.AddBreadcrumb(ctx, "pipeline", "empty response from model")
	return ExtractResult{
		Answer:        FallbackAnswer(question),
		KnowledgeBase: record,
		Outcome:       OutcomeSoftFallback,
	}
}

func (p *Pipeline) extract(ctx context.Context, span *telemetry.Span, log logrus.FieldLogger, question string, prev domain.KnowledgeBase) (*domain.KnowledgeBase, error) {
	knowBase, err := prev.MarshalCompact()
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, domain.ErrInternalFailure.Message, err)
	}

	prompt := p.composer.Compose(knowBase, question)

	promptTokens := -1
	if p.tokens != nil {
		promptTokens = p.tokens.Count(prompt)
	}
	span.SetData("prompt_tokens", promptTokens)
	log.WithFields(logrus.Fields{
		"old_knowledge_base": knowBase,
		"prompt_tokens":      promptTokens,
	}).Debug("prompt composed")

	// Caller cancellation must not abort a turn that already started.
	raw, err := p.completer.Complete(context.WithoutCancel(ctx), prompt)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeUpstream, domain.ErrModelUnavailable.Message, err)
	}

	repaired := p.repairer.Repair(raw)
	log.WithFields(logrus.Fields{
		"raw_output":      raw,
		"repaired_output": repaired,
	}).Debug("model output repaired")

	kb, err := p.parser.Parse(repaired)
	if err != nil {
		return nil, err
	}
	return kb, nil
}

func (p *Pipeline) errorFallback(span *telemetry.Span, log logrus.FieldLogger, question string, err error) ExtractResult {
	log.WithError(err).WithField("outcome", OutcomeErrorFallback).Error("extraction failed, using fallback")
	span.SetError(err)

	return ExtractResult{
		Answer:        FallbackAnswer(question),
		KnowledgeBase: domain.ErrorKnowledgeBase(question),
		Outcome:       OutcomeErrorFallback,
	}
}
