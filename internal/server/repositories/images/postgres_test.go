package images

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/railohail/timeline-rail/internal/common"
	"github.com/railohail/timeline-rail/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

var cols = []string{"id", "filename", "data", "mime_type", "size", "storage_key", "created_at"}

func TestSave_Upsert(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+images.*ON\s+CONFLICT\s+\(filename\)\s+DO\s+UPDATE`).
		WithArgs("a.png", "data:image/png;base64,AAAA", "image/png", int64(3), nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("i1", now))

	got, err := repo.Save(context.Background(), &models.Image{
		Filename: "a.png",
		Data:     "data:image/png;base64,AAAA",
		MimeType: "image/png",
		Size:     3,
	})
	require.NoError(t, err)
	assert.Equal(t, "i1", got.ID)
	assert.Equal(t, now, got.CreatedAt)
	assert.Equal(t, "a.png", got.Filename)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^INSERT`).WillReturnError(errors.New("boom"))

	_, err := repo.Save(context.Background(), &models.Image{Filename: "a.png"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestGet(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`^SELECT .* FROM images WHERE filename = \$1`).
		WithArgs("a.png").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("i1", "a.png", "", "image/png", int64(3), "images/a.png", now))

	got, err := repo.Get(context.Background(), "a.png")
	require.NoError(t, err)
	require.NotNil(t, got.StorageKey)
	assert.Equal(t, "images/a.png", *got.StorageKey)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^SELECT`).WithArgs("x.png").WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "x.png")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(`^DELETE FROM images WHERE filename = \$1 RETURNING`).
		WithArgs("a.png").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("i1", "a.png", "data:x", "image/png", int64(3), nil, now))

	got, err := repo.Delete(context.Background(), "a.png")
	require.NoError(t, err)
	assert.Nil(t, got.StorageKey)
	assert.Equal(t, "data:x", got.Data)
}
