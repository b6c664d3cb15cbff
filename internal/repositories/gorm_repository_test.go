package repositories

import (
	"context"
	"testing"

	"jobboard_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestMessageRepositoryImpl_MarkRead(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectExec(`UPDATE "messages" SET "is_read"=\$1 WHERE id = \$2 AND is_read = \$3`).
		WithArgs(true, "m1", false).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "messages" SET "is_read"=\$1 WHERE id = \$2 AND is_read = \$3`).
		WithArgs(true, "m1", false).
		WillReturnResult(sqlmock.NewResult(0, 0))

	flipped, err := repo.MarkRead(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, flipped)

	flipped, err = repo.MarkRead(context.Background(), "m1")
	require.NoError(t, err)
	assert.False(t, flipped, "повторная отметка ничего не меняет")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMessageRepositoryImpl_FindLastEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMessageRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "messages" WHERE channel_key = \$1 ORDER BY sent_at DESC, seq DESC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "channel_key", "text"}))

	last, err := repo.FindLast(context.Background(), models.ChannelKey{JobID: "j", CreatorID: "c", ApplicantID: "a"})
	require.NoError(t, err)
	assert.Nil(t, last)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryImpl_UpdateStatusConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec(`UPDATE "applications" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "applications" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow("app1", "accepted"))

	err := repo.UpdateStatus(context.Background(), "app1", models.ApplicationStatusPending, models.ApplicationStatusRejected)
	assert.ErrorIs(t, err, ErrStatusConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryImpl_UpdateStatusMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec(`UPDATE "applications" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "applications" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := repo.UpdateStatus(context.Background(), "missing", models.ApplicationStatusPending, models.ApplicationStatusRejected)
	assert.ErrorIs(t, err, ErrApplicationNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryImpl_UpdateStatusApplied(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	mock.ExpectExec(`UPDATE "applications" SET .* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatus(context.Background(), "app1", models.ApplicationStatusPending, models.ApplicationStatusAccepted)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryImpl_EmptyJobListSkipsQuery(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewApplicationRepository(db)

	count, err := repo.CountByJobsAndStatus(context.Background(), nil, models.ApplicationStatusPending)
	require.NoError(t, err)
	assert.Zero(t, count)

	apps, err := repo.FindByJobs(context.Background(), []string{})
	require.NoError(t, err)
	assert.Empty(t, apps)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryImpl_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "jobs" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectExec(`DELETE FROM "jobs" WHERE id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	err = repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryImpl_Search(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	minSalary, maxSalary := int64(1000), int64(5000)
	mock.ExpectQuery(`SELECT \* FROM "jobs" WHERE \(title ILIKE \$1 OR location ILIKE \$2\) AND salary >= \$3 AND salary <= \$4 ORDER BY created_at DESC`).
		WithArgs(`%50\%\_off%`, `%50\%\_off%`, minSalary, maxSalary).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "salary"}).AddRow("job1", "50%_off sale", 2000))

	jobs, err := repo.Search(context.Background(), models.JobFilter{Query: " 50%_off ", MinSalary: &minSalary, MaxSalary: &maxSalary})
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "job1", jobs[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobRepositoryImpl_SearchWithoutFilter(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewJobRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "jobs" ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("job1").AddRow("job2"))

	jobs, err := repo.Search(context.Background(), models.JobFilter{Query: "   "})
	require.NoError(t, err)
	assert.Len(t, jobs, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
