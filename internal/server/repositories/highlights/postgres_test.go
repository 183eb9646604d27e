package highlights

import (
	"context"
	"database/sql"
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

var cols = []string{"id", "timeline_id", "start_date", "end_date", "start_label", "end_label", "color", "created_at", "updated_at"}

var (
	jan = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	feb = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
)

func TestCreate_DefaultColor(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^INSERT\s+INTO\s+highlights\s*\(timeline_id,\s*start_date,\s*end_date,\s*start_label,\s*end_label,\s*color\)`).
		WithArgs("t1", jan, feb, "Winter", nil, models.DefaultHighlightColor).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("h1", "t1", jan, feb, "Winter", nil, models.DefaultHighlightColor, jan, jan))

	label := "Winter"
	got, err := repo.Create(context.Background(), &models.Highlight{TimelineID: "t1", StartDate: jan, EndDate: feb, StartLabel: &label})
	require.NoError(t, err)
	assert.Equal(t, "h1", got.ID)
	assert.Equal(t, models.DefaultHighlightColor, got.Color)
	assert.Nil(t, got.EndLabel)
}

func TestListByTimeline(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)FROM\s+highlights\s+WHERE\s+timeline_id\s*=\s*\$1\s+ORDER\s+BY\s+start_date`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("h1", "t1", jan, feb, nil, nil, "red", jan, jan).
			AddRow("h2", "t1", feb, feb, nil, nil, "blue", jan, jan))

	got, err := repo.ListByTimeline(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "blue", got[1].Color)
}

func TestUpdate(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	_, err := repo.Update(context.Background(), "h1", "t1", models.HighlightPatch{})
	assert.ErrorIs(t, err, common.ErrNothingChanged)

	mock.ExpectQuery(`^UPDATE highlights SET end_label = \$1, color = \$2, updated_at = NOW\(\) WHERE id = \$3 AND timeline_id = \$4 RETURNING`).
		WithArgs(nil, models.DefaultHighlightColor, "h1", "t1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("h1", "t1", jan, feb, nil, nil, models.DefaultHighlightColor, jan, feb))

	got, err := repo.Update(context.Background(), "h1", "t1", models.HighlightPatch{
		EndLabel: models.Null[string](),
		Color:    models.Null[string](),
	})
	require.NoError(t, err)
	assert.Equal(t, feb, got.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`^DELETE\s+FROM\s+highlights`).
		WithArgs("h9", "t1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Delete(context.Background(), "h9", "t1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
