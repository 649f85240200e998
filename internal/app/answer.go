package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/ai"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/metrics"
)

const (
	systemPrompt = "You are a helpful assistant specialized in document analysis and Q&A."

	// FallbackAnswer replaces the model output when the call fails.
	FallbackAnswer = "An error occurred while generating the answer."
)

// Answer is the outcome of one model call. Degraded answers carry
// FallbackAnswer as Text and the failure in Reason.
type Answer struct {
	Text     string
	Degraded bool
	Reason   string
}

type AnswerEngine struct {
	llm     ai.Completer
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewAnswerEngine(llm ai.Completer, log *zap.Logger, m *metrics.Metrics) *AnswerEngine {
	if log == nil {
		log = zap.NewNop()
	}
	return &AnswerEngine{llm: llm, log: log.Named("answer"), metrics: m}
}

// Answer never fails; model errors come back as a degraded Answer.
func (e *AnswerEngine) Answer(ctx context.Context, contextText, question string) (answer Answer) {
	defer func() {
		if r := recover(); r != nil {
			answer = e.degrade(fmt.Errorf("llm call panicked: %v", r))
		}
	}()

	text, err := e.llm.Complete(ctx, buildMessages(contextText, question))
	if err != nil {
		return e.degrade(err)
	}
	e.log.Info("generated answer", zap.String("answer", text))
	return Answer{Text: text}
}

func (e *AnswerEngine) degrade(err error) Answer {
	e.log.Error("rag question answering failed", zap.Error(err))
	e.metrics.ObserveModelFailure()
	return Answer{
		Text:     FallbackAnswer,
		Degraded: true,
		Reason:   err.Error(),
	}
}

func buildMessages(contextText, question string) []ai.ChatMessage {
	return []ai.ChatMessage{
		{Role: ai.RoleSystem, Content: systemPrompt},
		{
			Role: ai.RoleUser,
			Content: "The following is the context based on previous questions and answers, along with document content:\n\n" +
				contextText + "\n\nNow answer the question: " + question,
		},
	}
}
