package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/metrics"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/session"
)

const publishTimeout = 5 * time.Second

// ExchangePublisher receives every completed round for the audit log.
type ExchangePublisher interface {
	Publish(ctx context.Context, exchange model.Exchange) error
}

type QAService struct {
	sessions  session.Store
	assembler *ContextAssembler
	engine    *AnswerEngine
	publisher ExchangePublisher
	locks     *session.KeyedMutex
	log       *zap.Logger
	metrics   *metrics.Metrics
}

// NewQAService wires the question answering round. publisher may be nil.
func NewQAService(
	sessions session.Store,
	assembler *ContextAssembler,
	engine *AnswerEngine,
	publisher ExchangePublisher,
	log *zap.Logger,
	m *metrics.Metrics,
) *QAService {
	if log == nil {
		log = zap.NewNop()
	}
	return &QAService{
		sessions:  sessions,
		assembler: assembler,
		engine:    engine,
		publisher: publisher,
		locks:     session.NewKeyedMutex(),
		log:       log.Named("qa"),
		metrics:   m,
	}
}

type AskInput struct {
	SessionID string
	Question  string
	Filenames []string
}

type AskResult struct {
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Degraded  bool     `json:"degraded"`
	Reason    string   `json:"reason,omitempty"`
	Documents []string `json:"documents"`
}

func (s *QAService) StartSession(ctx context.Context) (string, error) {
	id, err := s.sessions.Create(ctx)
	if err != nil {
		return "", err
	}
	s.log.Info("session started", zap.String("session_id", id))
	return id, nil
}

func (s *QAService) History(ctx context.Context, sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) == "" {
		return "", ErrInvalidInput
	}
	return s.sessions.Transcript(ctx, sessionID)
}

func (s *QAService) ClearSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidInput
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	s.log.Info("session cleared", zap.String("session_id", sessionID))
	return nil
}

// Ask runs one round: read the session, assemble context, call the model and
// record both the question and the answer. Rounds on the same session run one
// at a time.
func (s *QAService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	question := strings.TrimSpace(input.Question)
	if input.SessionID == "" || question == "" {
		s.metrics.ObserveQuestion("invalid")
		return nil, ErrInvalidInput
	}

	unlock := s.locks.Lock(input.SessionID)
	defer unlock()

	transcript, err := s.sessions.Transcript(ctx, input.SessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			s.metrics.ObserveQuestion("session_not_found")
		}
		return nil, err
	}

	// A started round always records both its question and its answer.
	ctx = context.WithoutCancel(ctx)

	docs, err := s.assembler.Resolve(input.Filenames)
	if err != nil {
		if errors.Is(err, ErrNoValidDocuments) {
			s.metrics.ObserveQuestion("no_documents")
		}
		return nil, err
	}

	entry := questionEntry(question)
	if err := s.sessions.Append(ctx, input.SessionID, entry); err != nil {
		return nil, err
	}
	prompt := s.assembler.Assemble(transcript+entry, docs)

	answer := s.engine.Answer(ctx, prompt, question)

	if err := s.sessions.Append(ctx, input.SessionID, answerEntry(answer.Text)); err != nil {
		return nil, err
	}

	names := make([]string, len(docs))
	for i := range docs {
		names[i] = docs[i].Filename
	}
	if answer.Degraded {
		s.metrics.ObserveQuestion("degraded")
	} else {
		s.metrics.ObserveQuestion("answered")
	}
	s.publish(ctx, model.Exchange{
		SessionID: input.SessionID,
		Question:  question,
		Answer:    answer.Text,
		Filenames: strings.Join(names, ","),
		Degraded:  answer.Degraded,
		CreatedAt: time.Now(),
	})

	return &AskResult{
		Question:  question,
		Answer:    answer.Text,
		Degraded:  answer.Degraded,
		Reason:    answer.Reason,
		Documents: names,
	}, nil
}

// publish is best effort; the round has already been recorded in the session.
func (s *QAService) publish(ctx context.Context, exchange model.Exchange) {
	if s.publisher == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, exchange); err != nil {
		s.log.Warn("publish exchange failed", zap.String("session_id", exchange.SessionID), zap.Error(err))
	}
}
