package app

import (
	"strings"

	"go.uber.org/zap"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
)

const (
	questionPrefix = "User question: "
	answerPrefix   = "Assistant answer: "
)

// DocumentReader resolves a filename to its stored record, or nil.
type DocumentReader interface {
	GetByFilename(filename string) (*model.Document, error)
}

// ContextAssembler turns the requested documents and a session transcript into
// the text handed to the answering engine. It keeps no state of its own.
type ContextAssembler struct {
	docs DocumentReader
	log  *zap.Logger
}

func NewContextAssembler(docs DocumentReader, log *zap.Logger) *ContextAssembler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ContextAssembler{docs: docs, log: log.Named("assembler")}
}

// Resolve looks up filenames in request order. Unknown names are skipped; if
// none resolve the result is ErrNoValidDocuments.
func (a *ContextAssembler) Resolve(filenames []string) ([]model.Document, error) {
	docs := make([]model.Document, 0, len(filenames))
	for _, name := range filenames {
		doc, err := a.docs.GetByFilename(name)
		if err != nil {
			return nil, err
		}
		if doc == nil {
			a.log.Warn("file not found in the database", zap.String("filename", name))
			continue
		}
		docs = append(docs, *doc)
	}
	if len(docs) == 0 {
		return nil, ErrNoValidDocuments
	}
	return docs, nil
}

// Assemble renders the prompt body. transcript must already end with the
// current question entry.
func (a *ContextAssembler) Assemble(transcript string, docs []model.Document) string {
	return transcript + " Document content: " + renderDocuments(docs)
}

func renderDocuments(docs []model.Document) string {
	var b strings.Builder
	for _, doc := range docs {
		b.WriteString("\nDocument: ")
		b.WriteString(doc.Filename)
		b.WriteString("\n")
		b.WriteString(doc.Content)
	}
	return b.String()
}

func questionEntry(question string) string {
	return questionPrefix + question + "\n"
}

func answerEntry(answer string) string {
	return answerPrefix + answer + "\n"
}
