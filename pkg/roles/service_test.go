package roles

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsdesk/opsdesk/pkg/auth"
	"github.com/opsdesk/opsdesk/pkg/guard"
)

const (
	lockFlagsQuery      = `SELECT is_staff, is_superuser FROM accounts WHERE id = \$1 FOR UPDATE`
	lockSuperusersQuery = `SELECT id FROM accounts WHERE is_superuser = TRUE AND id <> \$1 ORDER BY id FOR UPDATE`
	updateStaffQuery    = `UPDATE accounts SET is_staff = \$1 WHERE id = \$2`
	demoteQuery         = `UPDATE accounts SET is_superuser = FALSE WHERE id = \$1`
	promoteQuery        = `UPDATE accounts SET is_superuser = TRUE, is_staff = TRUE WHERE id = \$1`
)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db), mock
}

func superuser(id int64) *auth.Account {
	return &auth.Account{ID: id, Username: "admin", IsStaff: true, IsSuperuser: true}
}

func flagRows(isStaff, isSuperuser bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"is_staff", "is_superuser"}).AddRow(isStaff, isSuperuser)
}

func TestToggleStaff(t *testing.T) {
	t.Run("grants staff to a member", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockFlagsQuery).WithArgs(int64(2)).WillReturnRows(flagRows(false, false))
		mock.ExpectExec(updateStaffQuery).WithArgs(true, int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		isStaff, err := service.ToggleStaff(context.Background(), superuser(1), 2)
		require.NoError(t, err)
		assert.True(t, isStaff)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("revokes staff from a staff member", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockFlagsQuery).WithArgs(int64(2)).WillReturnRows(flagRows(true, false))
		mock.ExpectExec(updateStaffQuery).WithArgs(false, int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		isStaff, err := service.ToggleStaff(context.Background(), superuser(1), 2)
		require.NoError(t, err)
		assert.False(t, isStaff)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requires a superuser caller", func(t *testing.T) {
		service, mock := newMockService(t)

		staffOnly := &auth.Account{ID: 1, IsStaff: true}
		_, err := service.ToggleStaff(context.Background(), staffOnly, 2)
		assert.ErrorIs(t, err, guard.ErrUnauthorized)

		_, err = service.ToggleStaff(context.Background(), nil, 2)
		assert.ErrorIs(t, err, guard.ErrUnauthorized)

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects self-modification", func(t *testing.T) {
		service, mock := newMockService(t)

		_, err := service.ToggleStaff(context.Background(), superuser(1), 1)
		assert.ErrorIs(t, err, ErrSelfModificationDenied)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects superuser targets", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockFlagsQuery).WithArgs(int64(2)).WillReturnRows(flagRows(true, true))
		mock.ExpectRollback()

		_, err := service.ToggleStaff(context.Background(), superuser(1), 2)
		assert.ErrorIs(t, err, ErrSuperuserStaffRequired)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown target", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockFlagsQuery).WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := service.ToggleStaff(context.Background(), superuser(1), 99)
		assert.ErrorIs(t, err, auth.ErrAccountNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestToggleSuperuser(t *testing.T) {
	t.Run("promotion forces staff on", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockFlagsQuery).WithArgs(int64(2)).WillReturnRows(flagRows(false, false))
		mock.ExpectExec(promoteQuery).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		isSuperuser, err := service.ToggleSuperuser(context.Background(), superuser(1), 2)
		require.NoError(t, err)
		assert.True(t, isSuperuser)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("demotion with another superuser remaining", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockFlagsQuery).WithArgs(int64(2)).WillReturnRows(flagRows(true, true))
		mock.ExpectQuery(lockSuperusersQuery).WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectExec(demoteQuery).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		isSuperuser, err := service.ToggleSuperuser(context.Background(), superuser(1), 2)
		require.NoError(t, err)
		assert.False(t, isSuperuser)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("demotion leaves staff flag untouched", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockFlagsQuery).WithArgs(int64(2)).WillReturnRows(flagRows(true, true))
		mock.ExpectQuery(lockSuperusersQuery).WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		// The demote statement touches only is_superuser
		mock.ExpectExec(demoteQuery).WithArgs(int64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		_, err := service.ToggleSuperuser(context.Background(), superuser(1), 2)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("requires a superuser caller", func(t *testing.T) {
		service, mock := newMockService(t)

		_, err := service.ToggleSuperuser(context.Background(), &auth.Account{ID: 1, IsStaff: true}, 2)
		assert.ErrorIs(t, err, guard.ErrUnauthorized)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects self-demotion", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockFlagsQuery).WithArgs(int64(1)).WillReturnRows(flagRows(true, true))
		mock.ExpectRollback()

		_, err := service.ToggleSuperuser(context.Background(), superuser(1), 1)
		assert.ErrorIs(t, err, ErrSelfDemotionDenied)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("protects the last superuser", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockFlagsQuery).WithArgs(int64(2)).WillReturnRows(flagRows(true, true))
		mock.ExpectQuery(lockSuperusersQuery).WithArgs(int64(2)).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := service.ToggleSuperuser(context.Background(), superuser(1), 2)
		assert.ErrorIs(t, err, ErrLastSuperuserProtected)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("promoting oneself again is caught by the demotion self-check", func(t *testing.T) {
		service, mock := newMockService(t)

		// A superuser toggling itself is always a demotion attempt
		mock.ExpectBegin()
		mock.ExpectQuery(lockFlagsQuery).WithArgs(int64(5)).WillReturnRows(flagRows(true, true))
		mock.ExpectRollback()

		_, err := service.ToggleSuperuser(context.Background(), superuser(5), 5)
		assert.ErrorIs(t, err, ErrSelfDemotionDenied)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown target", func(t *testing.T) {
		service, mock := newMockService(t)

		mock.ExpectBegin()
		mock.ExpectQuery(lockFlagsQuery).WithArgs(int64(99)).WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := service.ToggleSuperuser(context.Background(), superuser(1), 99)
		assert.ErrorIs(t, err, auth.ErrAccountNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
