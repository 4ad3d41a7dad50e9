package registration

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "clubgate/pkg/domain"
	"clubgate/pkg/platform/sentinel"
)

const pqUniqueViolation = "23505"

// PostgresStore persists registrations in the pending_registrations table.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const registrationColumns = `
	id, email, username, credential_hash, confirmation_token,
	expires_at, confirmed, role, created_at, updated_at
`

func (s *PostgresStore) Create(ctx context.Context, reg *PendingRegistration) error {
	query := `
		INSERT INTO pending_registrations (` + registrationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	var role *string
	if reg.Role != nil {
		r := reg.Role.String()
		role = &r
	}
	_, err := s.db.ExecContext(ctx, query,
		uuid.UUID(reg.ID),
		reg.Email,
		reg.Username,
		reg.CredentialHash,
		reg.ConfirmationToken,
		reg.ExpiresAt,
		reg.Confirmed,
		role,
		reg.CreatedAt,
		reg.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return fmt.Errorf("%w: %v", sentinel.ErrConflict, err)
		}
		return fmt.Errorf("insert pending registration: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*PendingRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM pending_registrations WHERE email = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, email))
}

func (s *PostgresStore) FindByToken(ctx context.Context, token string) (*PendingRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM pending_registrations WHERE confirmation_token = $1`
	return s.scanOne(s.db.QueryRowContext(ctx, query, token))
}

// Redeem flips confirmed false→true with a conditional update so only one of
// N concurrent redeemers sees the fresh transition; the rest lose the
// affected-rows race and report AlreadyConfirmed.
func (s *PostgresStore) Redeem(ctx context.Context, token string, now time.Time) (RedeemOutcome, error) {
	current, err := s.FindByToken(ctx, token)
	if err != nil {
		return AlreadyConfirmed, err
	}
	if current.Confirmed {
		return AlreadyConfirmed, nil
	}
	if current.IsExpired(now) {
		return AlreadyConfirmed, sentinel.ErrExpired
	}

	query := `
		UPDATE pending_registrations
		SET confirmed = TRUE, updated_at = $2
		WHERE confirmation_token = $1 AND confirmed = FALSE
	`
	result, err := s.db.ExecContext(ctx, query, token, now)
	if err != nil {
		return AlreadyConfirmed, fmt.Errorf("redeem confirmation token: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return AlreadyConfirmed, fmt.Errorf("redeem confirmation token: %w", err)
	}
	if affected == 0 {
		return AlreadyConfirmed, nil
	}
	return RedeemedFresh, nil
}

func (s *PostgresStore) ExtendExpiry(ctx context.Context, email string, now time.Time) error {
	query := `
		UPDATE pending_registrations
		SET expires_at = $2, updated_at = $3
		WHERE email = $1 AND confirmed = FALSE
	`
	result, err := s.db.ExecContext(ctx, query, email, now.Add(ConfirmationTTL), now)
	if err != nil {
		return fmt.Errorf("extend registration expiry: %w", err)
	}
	return requireOneRow(result, "extend registration expiry")
}

func (s *PostgresStore) Approve(ctx context.Context, email string, role id.Role, now time.Time) error {
	current, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !current.Confirmed {
		return sentinel.ErrInvalidState
	}

	query := `
		UPDATE pending_registrations
		SET role = $2, credential_hash = '', updated_at = $3
		WHERE email = $1 AND confirmed = TRUE
	`
	result, err := s.db.ExecContext(ctx, query, email, role.String(), now)
	if err != nil {
		return fmt.Errorf("approve registration: %w", err)
	}
	return requireOneRow(result, "approve registration")
}

func (s *PostgresStore) Delete(ctx context.Context, email string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM pending_registrations WHERE email = $1`, email)
	if err != nil {
		return fmt.Errorf("delete pending registration: %w", err)
	}
	return requireOneRow(result, "delete pending registration")
}

func (s *PostgresStore) ListPending(ctx context.Context) ([]*PendingRegistration, error) {
	query := `
		SELECT ` + registrationColumns + `
		FROM pending_registrations
		WHERE role IS NULL
		ORDER BY created_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending registrations: %w", err)
	}
	defer rows.Close()

	var out []*PendingRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending registrations: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*PendingRegistration, error) {
	reg, err := scanRegistration(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return reg, nil
}

func scanRegistration(scan func(...any) error) (*PendingRegistration, error) {
	var (
		reg   PendingRegistration
		regID uuid.UUID
		role  sql.NullString
	)
	err := scan(
		&regID,
		&reg.Email,
		&reg.Username,
		&reg.CredentialHash,
		&reg.ConfirmationToken,
		&reg.ExpiresAt,
		&reg.Confirmed,
		&role,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan pending registration: %w", err)
	}
	reg.ID = id.RegistrationID(regID)
	if role.Valid {
		parsed, err := id.ParseRole(role.String)
		if err != nil {
			return nil, fmt.Errorf("scan pending registration role: %w", err)
		}
		reg.Role = &parsed
	}
	return &reg, nil
}

func requireOneRow(result sql.Result, op string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}
