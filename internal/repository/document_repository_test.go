package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/model"
	mysqlClient "github.com/SriHarshaD-technophile/PDFs-QA-Bot/internal/platform/mysql"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		t.Skip("MYSQL_DSN not set")
	}
	db, err := mysqlClient.New(context.Background(), mysqlClient.Options{DSN: dsn})
	require.NoError(t, err)
	require.NoError(t, db.Migrator().DropTable(&model.Document{}, &model.Exchange{}))
	require.NoError(t, db.AutoMigrate(&model.Document{}, &model.Exchange{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestDocumentRepository(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))

	doc, err := repo.GetByFilename("report.pdf")
	require.NoError(t, err)
	assert.Nil(t, doc)

	older := time.Now().Add(-time.Hour).UTC().Truncate(time.Second)
	require.NoError(t, repo.CreateWithHook(&model.Document{Filename: "b.pdf", Content: "b", UploadDate: older}, nil))
	require.NoError(t, repo.CreateWithHook(
		&model.Document{Filename: "a.pdf", Content: "a", UploadDate: time.Now().UTC()},
		func(d *model.Document) error {
			d.FileURL = "file:///tmp/a.pdf"
			return nil
		},
	))

	names, err := repo.ListFilenames()
	require.NoError(t, err)
	assert.Equal(t, []string{"b.pdf", "a.pdf"}, names)

	doc, err = repo.GetByFilename("a.pdf")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "file:///tmp/a.pdf", doc.FileURL)

	exists, err := repo.Exists("b.pdf")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateWithHookRollsBack(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))

	hookErr := errors.New("upload failed")
	err := repo.CreateWithHook(&model.Document{Filename: "c.pdf", Content: "c", UploadDate: time.Now()}, func(*model.Document) error {
		return hookErr
	})
	assert.ErrorIs(t, err, hookErr)

	exists, err := repo.Exists("c.pdf")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestExchangeRepositoryCreate(t *testing.T) {
	repo := NewExchangeRepository(newTestDB(t))

	exchange := &model.Exchange{SessionID: "s-1", Question: "q", Answer: "a", CreatedAt: time.Now()}
	require.NoError(t, repo.Create(exchange))
	assert.NotZero(t, exchange.ID)
}

func TestFilenamesAreCaseAndAccentSensitive(t *testing.T) {
	repo := NewDocumentRepository(newTestDB(t))

	for _, name := range []string{"Report.pdf", "report.pdf", "résumé.pdf", "resume.pdf"} {
		require.NoError(t, repo.CreateWithHook(&model.Document{Filename: name, Content: name, UploadDate: time.Now()}, nil), name)
	}

	doc, err := repo.GetByFilename("report.pdf")
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Equal(t, "report.pdf", doc.Filename)
	assert.Equal(t, "report.pdf", doc.Content)

	exists, err := repo.Exists("REPORT.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	names, err := repo.ListFilenames()
	require.NoError(t, err)
	assert.Len(t, names, 4)
}
