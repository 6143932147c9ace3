package repository

import (
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/crm-api/internal/authz"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

var mockOrganizer = authz.Viewer{UserID: 1, Role: authz.RoleOrganizer, OrganizationID: 7}

func TestCountUncategorized_Postgres(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "leads" WHERE leads\.category_id IS NULL AND leads\.organization_id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := NewLeadRepository(db).CountUncategorized(mockOrganizer)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAgentDelete_Postgres_SingleTransaction(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "agents" WHERE "agents"\."id" = \$1 AND agents\.organization_id = \$2 ORDER BY "agents"\."id" LIMIT \$3`).
		WithArgs(5, 7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "organization_id"}).AddRow(5, 11, 7))
	mock.ExpectExec(`UPDATE "leads" SET "agent_id"=\$1`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "agents" WHERE "agents"\."id" = \$1`).
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, NewAgentRepository(db).Delete(mockOrganizer, 5))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAgentDelete_Postgres_RollsBackOnUnassignFailure(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "agents"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "organization_id"}).AddRow(5, 11, 7))
	mock.ExpectExec(`UPDATE "leads" SET "agent_id"=\$1`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := NewAgentRepository(db).Delete(mockOrganizer, 5)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
