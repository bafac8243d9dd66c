package repository

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"presodeck/internal/deck/model"
	"presodeck/pkg/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	m.Run()
}

func newRepo(t *testing.T) (*DeckRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDeckRepository(db), mock
}

func TestGetPresentationBySlug(t *testing.T) {
	repo, mock := newRepo(t)
	created := time.Date(2025, 9, 16, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT id, title, slug, created_at FROM presentations WHERE slug = \\$1").
		WithArgs("demo").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "slug", "created_at"}).
			AddRow("p1", "Demo", "demo", created))

	p, err := repo.GetPresentationBySlug("demo")
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "demo", p.Slug)

	mock.ExpectQuery("SELECT id, title, slug, created_at FROM presentations WHERE slug = \\$1").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err = repo.GetPresentationBySlug("ghost")
	assert.Equal(t, sql.ErrNoRows, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaxSlidePosition(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(position\\), -1\\) FROM slides WHERE presentation_id = \\$1").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(4))

	max, err := repo.MaxSlidePosition("p1")
	require.NoError(t, err)
	assert.Equal(t, 4, max)

	// Empty deck yields -1, so the first slide lands at position 0.
	mock.ExpectQuery("SELECT COALESCE\\(MAX\\(position\\), -1\\) FROM slides WHERE presentation_id = \\$1").
		WithArgs("p2").
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(-1))

	max, err = repo.MaxSlidePosition("p2")
	require.NoError(t, err)
	assert.Equal(t, -1, max)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateElementReportsMissingRow(t *testing.T) {
	repo, mock := newRepo(t)
	elem := model.Element{
		ID:        "e1",
		SlideID:   "s1",
		Kind:      "rect",
		X:         1, Y: 2, W: 3, H: 4, Z: 5,
		Props:     json.RawMessage(`{"fill":"red"}`),
		UpdatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("UPDATE elements SET").
		WithArgs(elem.X, elem.Y, elem.W, elem.H, elem.Z, elem.Kind, `{"fill":"red"}`, sqlmock.AnyArg(), "e1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	rows, err := repo.UpdateElement(elem)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	mock.ExpectExec("UPDATE elements SET").
		WithArgs(elem.X, elem.Y, elem.W, elem.H, elem.Z, elem.Kind, `{"fill":"red"}`, sqlmock.AnyArg(), "e1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err = repo.UpdateElement(elem)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteSlideRowsAffected(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec("DELETE FROM slides WHERE id = \\$1").
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.DeleteSlide("s1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMembership(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec("INSERT INTO memberships").
		WithArgs("p1", "u1", "alice", "creator").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.CreateMembership(model.Membership{
		PresentationID: "p1",
		UserID:         "u1",
		Nickname:       "alice",
		Role:           "creator",
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMembershipRole(t *testing.T) {
	repo, mock := newRepo(t)

	mock.ExpectExec("UPDATE memberships SET role = \\$1 WHERE presentation_id = \\$2 AND user_id = \\$3").
		WithArgs("editor", "p1", "u2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	rows, err := repo.UpdateMembershipRole("p1", "u2", "editor")
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows, "unknown member affects no rows")
	assert.NoError(t, mock.ExpectationsWereMet())
}
