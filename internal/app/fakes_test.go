package app

import (
	"context"
	"errors"
	"sync"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/ai"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/session"
)

type fakeDocs struct {
	mu      sync.Mutex
	order   []string
	byName  map[string]model.Document
	failGet error
}

func newFakeDocs(docs ...model.Document) *fakeDocs {
	f := &fakeDocs{byName: map[string]model.Document{}}
	for _, d := range docs {
		f.order = append(f.order, d.Filename)
		f.byName[d.Filename] = d
	}
	return f
}

func (f *fakeDocs) GetByFilename(filename string) (*model.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	doc, ok := f.byName[filename]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func (f *fakeDocs) Exists(filename string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.byName[filename]
	return ok, nil
}

func (f *fakeDocs) ListFilenames() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.order...), nil
}

func (f *fakeDocs) CreateWithHook(doc *model.Document, hook func(*model.Document) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byName[doc.Filename]; ok {
		return errors.New("duplicate primary key")
	}
	if hook != nil {
		if err := hook(doc); err != nil {
			return err
		}
	}
	f.order = append(f.order, doc.Filename)
	f.byName[doc.Filename] = *doc
	return nil
}

type fakeBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	deleted []string
}

func newFakeBlobs() *fakeBlobs {
	return &fakeBlobs{objects: map[string][]byte{}}
}

func (f *fakeBlobs) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[key] = data
	return "mem://" + key, nil
}

func (f *fakeBlobs) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

// fakeExtractor treats the upload bytes as the document text.
type fakeExtractor struct {
	err error
}

func (f fakeExtractor) Extract(_ context.Context, data []byte) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return string(data), nil
}

type fakeCompleter struct {
	mu       sync.Mutex
	answer   string
	err      error
	panicMsg string
	calls    [][]ai.ChatMessage
}

func (f *fakeCompleter) Complete(_ context.Context, messages []ai.ChatMessage) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, messages)
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeCompleter) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	msgs := f.calls[len(f.calls)-1]
	return msgs[len(msgs)-1].Content
}

type fakePublisher struct {
	mu        sync.Mutex
	exchanges []model.Exchange
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, exchange model.Exchange) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exchanges = append(f.exchanges, exchange)
	return f.err
}

// ctxStore fails writes once ctx is done, as network-backed stores do.
type ctxStore struct {
	session.Store
}

func (s ctxStore) Append(ctx context.Context, id, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.Store.Append(ctx, id, text)
}

// cancellingCompleter cancels the caller's context mid-call and answers only
// if its own context survived.
type cancellingCompleter struct {
	cancel context.CancelFunc
	answer string
}

func (c cancellingCompleter) Complete(ctx context.Context, _ []ai.ChatMessage) (string, error) {
	c.cancel()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return c.answer, nil
}
