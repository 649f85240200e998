package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/session"
)

type qaFixture struct {
	svc       *QAService
	llm       *fakeCompleter
	publisher *fakePublisher
}

func newQAFixture(docs ...model.Document) *qaFixture {
	llm := &fakeCompleter{answer: "Revenue grew 12%."}
	publisher := &fakePublisher{}
	svc := NewQAService(
		session.NewMemoryStore(),
		NewContextAssembler(newFakeDocs(docs...), nil),
		NewAnswerEngine(llm, nil, nil),
		publisher,
		nil,
		nil,
	)
	return &qaFixture{svc: svc, llm: llm, publisher: publisher}
}

func TestStartSessionHasEmptyHistory(t *testing.T) {
	f := newQAFixture()
	ctx := context.Background()

	id, err := f.svc.StartSession(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	history, err := f.svc.History(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestAskRecordsRoundAndBuildsPrompt(t *testing.T) {
	f := newQAFixture(model.Document{Filename: "report.pdf", Content: "Revenue grew 12% in Q3.\n"})
	ctx := context.Background()
	id, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	res, err := f.svc.Ask(ctx, AskInput{SessionID: id, Question: "What grew?", Filenames: []string{"report.pdf"}})
	require.NoError(t, err)
	assert.Equal(t, "Revenue grew 12%.", res.Answer)
	assert.False(t, res.Degraded)
	assert.Equal(t, []string{"report.pdf"}, res.Documents)

	history, err := f.svc.History(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "User question: What grew?\nAssistant answer: Revenue grew 12%.\n", history)

	assert.Equal(t,
		"The following is the context based on previous questions and answers, along with document content:\n\n"+
			"User question: What grew?\n Document content: \nDocument: report.pdf\nRevenue grew 12% in Q3.\n"+
			"\n\nNow answer the question: What grew?",
		f.llm.lastPrompt())

	require.Len(t, f.publisher.exchanges, 1)
	assert.Equal(t, id, f.publisher.exchanges[0].SessionID)
	assert.Equal(t, "report.pdf", f.publisher.exchanges[0].Filenames)
}

func TestAskCarriesEarlierRoundsIntoPrompt(t *testing.T) {
	f := newQAFixture(model.Document{Filename: "report.pdf", Content: "text"})
	ctx := context.Background()
	id, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.Ask(ctx, AskInput{SessionID: id, Question: "first", Filenames: []string{"report.pdf"}})
	require.NoError(t, err)
	_, err = f.svc.Ask(ctx, AskInput{SessionID: id, Question: "second", Filenames: []string{"report.pdf"}})
	require.NoError(t, err)

	prompt := f.llm.lastPrompt()
	assert.Contains(t, prompt, "User question: first\nAssistant answer: Revenue grew 12%.\nUser question: second\n Document content: ")
}

func TestAskNoValidDocumentsLeavesTranscript(t *testing.T) {
	f := newQAFixture()
	ctx := context.Background()
	id, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.Ask(ctx, AskInput{SessionID: id, Question: "q", Filenames: []string{"ghost.pdf"}})
	assert.ErrorIs(t, err, ErrNoValidDocuments)

	history, err := f.svc.History(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, history)
	assert.Empty(t, f.llm.calls)
	assert.Empty(t, f.publisher.exchanges)
}

func TestAskDegradedAnswerIsRecorded(t *testing.T) {
	f := newQAFixture(model.Document{Filename: "a.pdf", Content: "x"})
	f.llm.err = errors.New("upstream 500")
	ctx := context.Background()
	id, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	res, err := f.svc.Ask(ctx, AskInput{SessionID: id, Question: "q", Filenames: []string{"a.pdf"}})
	require.NoError(t, err)
	assert.True(t, res.Degraded)
	assert.Equal(t, FallbackAnswer, res.Answer)
	assert.Equal(t, "upstream 500", res.Reason)

	history, err := f.svc.History(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "User question: q\nAssistant answer: "+FallbackAnswer+"\n", history)
	require.Len(t, f.publisher.exchanges, 1)
	assert.True(t, f.publisher.exchanges[0].Degraded)
}

func TestAskPublishFailureDoesNotFailRound(t *testing.T) {
	f := newQAFixture(model.Document{Filename: "a.pdf", Content: "x"})
	f.publisher.err = errors.New("channel closed")
	ctx := context.Background()
	id, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	_, err = f.svc.Ask(ctx, AskInput{SessionID: id, Question: "q", Filenames: []string{"a.pdf"}})
	assert.NoError(t, err)
}

func TestAskInvalidInput(t *testing.T) {
	f := newQAFixture(model.Document{Filename: "a.pdf", Content: "x"})
	ctx := context.Background()

	_, err := f.svc.Ask(ctx, AskInput{SessionID: "", Question: "q", Filenames: []string{"a.pdf"}})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.Ask(ctx, AskInput{SessionID: "s", Question: "   ", Filenames: []string{"a.pdf"}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestClearedSessionIsGone(t *testing.T) {
	f := newQAFixture(model.Document{Filename: "a.pdf", Content: "x"})
	ctx := context.Background()
	id, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	require.NoError(t, f.svc.ClearSession(ctx, id))

	_, err = f.svc.History(ctx, id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = f.svc.Ask(ctx, AskInput{SessionID: id, Question: "q", Filenames: []string{"a.pdf"}})
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.ClearSession(ctx, id), ErrSessionNotFound)
}

func TestConcurrentAsksKeepRoundsPaired(t *testing.T) {
	f := newQAFixture(model.Document{Filename: "a.pdf", Content: "x"})
	ctx := context.Background()
	id, err := f.svc.StartSession(ctx)
	require.NoError(t, err)

	const rounds = 20
	var wg sync.WaitGroup
	for i := 0; i < rounds; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.Ask(ctx, AskInput{SessionID: id, Question: fmt.Sprintf("q%d", i), Filenames: []string{"a.pdf"}})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := f.svc.History(ctx, id)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(history, "\n"), "\n")
	require.Len(t, lines, 2*rounds)
	for i := 0; i < len(lines); i += 2 {
		assert.True(t, strings.HasPrefix(lines[i], "User question: q"), lines[i])
		assert.Equal(t, "Assistant answer: Revenue grew 12%.", lines[i+1])
	}
}

func TestAskSurvivesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := ctxStore{Store: session.NewMemoryStore()}
	svc := NewQAService(
		store,
		NewContextAssembler(newFakeDocs(model.Document{Filename: "report.pdf", Content: "Revenue grew 12% in Q3.\n"}), nil),
		NewAnswerEngine(cancellingCompleter{cancel: cancel, answer: "Revenue grew 12%."}, nil, nil),
		nil,
		nil,
		nil,
	)
	id, err := svc.StartSession(context.Background())
	require.NoError(t, err)

	res, err := svc.Ask(ctx, AskInput{SessionID: id, Question: "What grew?", Filenames: []string{"report.pdf"}})
	require.NoError(t, err)
	assert.False(t, res.Degraded)
	assert.Equal(t, "Revenue grew 12%.", res.Answer)
	require.Error(t, ctx.Err())

	history, err := svc.History(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "User question: What grew?\nAssistant answer: Revenue grew 12%.\n", history)
}
