package roles

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/opsdesk/opsdesk/pkg/auth"
	"github.com/opsdesk/opsdesk/pkg/guard"
)

// Service mutates account permission levels
type Service struct {
	db *sql.DB
}

// NewService creates a new role management service
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// ToggleStaff flips the target account's staff flag and returns the new
// state. The acting account must be a superuser and may not target itself.
// Superuser targets are rejected: clearing their staff flag would leave a
// superuser without staff access.
func (s *Service) ToggleStaff(ctx context.Context, acting *auth.Account, targetID int64) (bool, error) {
	if err := guard.RequireSuperuser(acting); err != nil {
		return false, err
	}
	if targetID == acting.ID {
		return false, ErrSelfModificationDenied
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	isStaff, isSuperuser, err := lockAccountFlags(ctx, tx, targetID)
	if err != nil {
		return false, err
	}

	if isSuperuser {
		return false, ErrSuperuserStaffRequired
	}

	newStaff := !isStaff
	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET is_staff = $1 WHERE id = $2`, newStaff, targetID); err != nil {
		return false, fmt.Errorf("failed to update staff flag: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}

	return newStaff, nil
}

// ToggleSuperuser flips the target account's superuser flag and returns the
// new state. Promotion forces the staff flag on; demotion leaves staff
// untouched. A superuser may not demote itself, and the last remaining
// superuser can never be demoted.
func (s *Service) ToggleSuperuser(ctx context.Context, acting *auth.Account, targetID int64) (bool, error) {
	if err := guard.RequireSuperuser(acting); err != nil {
		return false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, isSuperuser, err := lockAccountFlags(ctx, tx, targetID)
	if err != nil {
		return false, err
	}

	if isSuperuser {
		// Demotion path
		if targetID == acting.ID {
			return false, ErrSelfDemotionDenied
		}

		others, err := lockOtherSuperusers(ctx, tx, targetID)
		if err != nil {
			return false, err
		}
		if others == 0 {
			return false, ErrLastSuperuserProtected
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE accounts SET is_superuser = FALSE WHERE id = $1`, targetID); err != nil {
			return false, fmt.Errorf("failed to demote: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return false, fmt.Errorf("failed to commit: %w", err)
		}
		return false, nil
	}

	// Promotion path: superuser implies staff
	if _, err := tx.ExecContext(ctx,
		`UPDATE accounts SET is_superuser = TRUE, is_staff = TRUE WHERE id = $1`, targetID); err != nil {
		return false, fmt.Errorf("failed to promote: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit: %w", err)
	}
	return true, nil
}

// lockAccountFlags reads the target's role flags under a row lock, so the
// read-modify-write in the caller cannot interleave with another toggle on
// the same account.
func lockAccountFlags(ctx context.Context, tx *sql.Tx, targetID int64) (isStaff, isSuperuser bool, err error) {
	err = tx.QueryRowContext(ctx,
		`SELECT is_staff, is_superuser FROM accounts WHERE id = $1 FOR UPDATE`,
		targetID,
	).Scan(&isStaff, &isSuperuser)
	if err == sql.ErrNoRows {
		return false, false, auth.ErrAccountNotFound
	}
	if err != nil {
		return false, false, fmt.Errorf("failed to read account flags: %w", err)
	}
	return isStaff, isSuperuser, nil
}

// lockOtherSuperusers locks every superuser row other than the target and
// returns how many there are. Concurrent demotions serialize on these locks
// instead of both reading a stale count.
func lockOtherSuperusers(ctx context.Context, tx *sql.Tx, targetID int64) (int, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id FROM accounts WHERE is_superuser = TRUE AND id <> $1 ORDER BY id FOR UPDATE`,
		targetID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to lock superuser rows: %w", err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("failed to scan superuser row: %w", err)
		}
		count++
	}

	return count, rows.Err()
}
