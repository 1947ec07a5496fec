package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "name", "appt_date", "appt_time", "contact", "email", "phone", "service", "notes", "source", "scheduled_for", "created_at"}

func TestPostgresRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := newPostgresRepositoryWithQuerier(mock)

	appt := seedAppointment("4b6f", "2025-12-24", 14)
	mock.ExpectExec("INSERT INTO appointments").
		WithArgs(appt.ID, appt.Name, appt.Date, appt.Time, appt.Contact, appt.Email, appt.Phone,
			appt.Service, appt.Notes, appt.Source, appt.ScheduledFor, appt.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), appt))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_CreateError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := newPostgresRepositoryWithQuerier(mock)

	mock.ExpectExec("INSERT INTO appointments").WillReturnError(errors.New("connection reset"))

	err = repo.Create(context.Background(), seedAppointment("x", "2025-12-24", 14))
	assert.ErrorContains(t, err, "appointments: insert failed")
}

func TestPostgresRepository_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := newPostgresRepositoryWithQuerier(mock)

	scheduled := time.Date(2025, 12, 24, 13, 0, 0, 0, time.UTC)
	created := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT (.+) FROM appointments WHERE id").WithArgs("a1").
		WillReturnRows(pgxmock.NewRows(columns).AddRow(
			"a1", "Anna", "2025-12-24", "14:00", "anna@x.de", "", "", "Haarschnitt", "", SourceAgent, scheduled, created))

	appt, err := repo.GetByID(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "Anna", appt.Name)
	assert.Equal(t, "Haarschnitt", appt.Service)
	assert.True(t, appt.ScheduledFor.Equal(scheduled))

	mock.ExpectQuery("SELECT (.+) FROM appointments WHERE id").WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_List(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := newPostgresRepositoryWithQuerier(mock)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM appointments").
		WithArgs("2025-12-01", "", 50, 0).
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow("a1", "Anna", "2025-12-24", "14:00", "anna@x.de", "", "", "", "", SourceAgent, now, now).
			AddRow("a2", "Berta", "2025-12-27", "10:00", "01701234567", "", "", "", "kurz", SourceForm, now, now))

	items, err := repo.List(context.Background(), ListFilter{From: "2025-12-01"})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Berta", items[1].Name)
	assert.Equal(t, "kurz", items[1].Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresRepository_ListError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	repo := newPostgresRepositoryWithQuerier(mock)

	mock.ExpectQuery("SELECT (.+) FROM appointments").WillReturnError(errors.New("boom"))

	_, err = repo.List(context.Background(), ListFilter{})
	assert.ErrorContains(t, err, "appointments: list failed")
}
