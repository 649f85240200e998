package app

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
)

func TestResolveKeepsRequestOrderAndSkipsUnknown(t *testing.T) {
	docs := newFakeDocs(
		model.Document{Filename: "a.pdf", Content: "alpha"},
		model.Document{Filename: "b.pdf", Content: "beta"},
	)
	a := NewContextAssembler(docs, nil)

	got, err := a.Resolve([]string{"b.pdf", "missing.pdf", "a.pdf"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b.pdf", got[0].Filename)
	assert.Equal(t, "a.pdf", got[1].Filename)
}

func TestResolveNothingValid(t *testing.T) {
	a := NewContextAssembler(newFakeDocs(), nil)

	_, err := a.Resolve([]string{"missing.pdf"})
	assert.ErrorIs(t, err, ErrNoValidDocuments)

	_, err = a.Resolve(nil)
	assert.ErrorIs(t, err, ErrNoValidDocuments)
}

func TestResolvePropagatesLookupError(t *testing.T) {
	docs := newFakeDocs()
	docs.failGet = errors.New("connection refused")
	a := NewContextAssembler(docs, nil)

	_, err := a.Resolve([]string{"a.pdf"})
	assert.EqualError(t, err, "connection refused")
}

func TestAssembleFormat(t *testing.T) {
	a := NewContextAssembler(newFakeDocs(), nil)
	transcript := questionEntry("What grew?")

	got := a.Assemble(transcript, []model.Document{
		{Filename: "a.pdf", Content: "alpha\n"},
		{Filename: "b.pdf", Content: "beta\n"},
	})

	assert.Equal(t,
		"User question: What grew?\n Document content: \nDocument: a.pdf\nalpha\n\nDocument: b.pdf\nbeta\n",
		got)
}
