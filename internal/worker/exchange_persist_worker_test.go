package worker

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
)

type recordingWriter struct {
	created []model.Exchange
	err     error
}

func (r *recordingWriter) Create(exchange *model.Exchange) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, *exchange)
	return nil
}

func TestHandlePersistsExchange(t *testing.T) {
	repo := &recordingWriter{}
	w := NewExchangePersistWorker(nil, repo, "qa.exchange.persist", nil)

	body, err := json.Marshal(model.Exchange{
		ID:        42,
		SessionID: "s-1",
		Question:  "What grew?",
		Answer:    "Revenue.",
		Filenames: "report.pdf",
		CreatedAt: time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, w.handle(body))
	require.Len(t, repo.created, 1)
	assert.Zero(t, repo.created[0].ID)
	assert.Equal(t, "s-1", repo.created[0].SessionID)
	assert.Equal(t, "report.pdf", repo.created[0].Filenames)
}

func TestHandleRejectsGarbage(t *testing.T) {
	w := NewExchangePersistWorker(nil, &recordingWriter{}, "q", nil)
	assert.Error(t, w.handle([]byte("{not json")))
}

func TestHandlePropagatesWriteError(t *testing.T) {
	w := NewExchangePersistWorker(nil, &recordingWriter{err: errors.New("deadlock")}, "q", nil)
	assert.EqualError(t, w.handle([]byte(`{"session_id":"s"}`)), "deadlock")
}
