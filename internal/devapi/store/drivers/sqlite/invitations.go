package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/tripnest/tripnest/internal/devapi/domain"
	"github.com/tripnest/tripnest/internal/identity"
)

type invitationsRepo struct {
	db dbtx
}

const invitationColumns = `id, token_hash, email, role, agency_id, status, invited_by, invited_at,
	expires_at, completed_at, revoked_at, user_id, resend_count`

func (r *invitationsRepo) CreateInvitation(ctx context.Context, inv domain.Invite) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations (id, token_hash, email, role, agency_id, status, invited_by, invited_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID, inv.TokenHash, inv.Email, inv.Role.String(), inv.AgencyID,
		string(identity.InvitationPending), inv.InvitedBy,
		toMillis(inv.InvitedAt), toMillis(inv.ExpiresAt),
	)
	return mapConstraint(err)
}

func (r *invitationsRepo) GetInvitationByID(ctx context.Context, id string) (domain.Invite, error) {
	return scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE id = ?`, id))
}

func (r *invitationsRepo) GetInvitationByTokenHash(ctx context.Context, hash string) (domain.Invite, error) {
	return scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE token_hash = ?`, hash))
}

func (r *invitationsRepo) GetPendingInvitationByEmail(ctx context.Context, email string) (domain.Invite, error) {
	return scanInvitation(r.db.QueryRowContext(ctx,
		`SELECT `+invitationColumns+` FROM invitations WHERE email = ? AND status = 'PENDING'`, email))
}

func (r *invitationsRepo) ListInvitations(ctx context.Context, f domain.InviteFilter) ([]domain.Invite, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.AgencyID != "" {
		where = append(where, "agency_id = ?")
		args = append(args, f.AgencyID)
	}

	query := `SELECT ` + invitationColumns + ` FROM invitations`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY invited_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invite
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func (r *invitationsRepo) MarkCompleted(ctx context.Context, id, userID string, at time.Time) error {
	return mapAffected(r.db.ExecContext(ctx,
		`UPDATE invitations SET status = 'COMPLETED', completed_at = ?, user_id = ?
		 WHERE id = ? AND status = 'PENDING'`,
		toMillis(at), userID, id,
	))
}

func (r *invitationsRepo) MarkRevoked(ctx context.Context, id string, at time.Time) error {
	return mapAffected(r.db.ExecContext(ctx,
		`UPDATE invitations SET status = 'REVOKED', revoked_at = ?
		 WHERE id = ? AND status = 'PENDING'`,
		toMillis(at), id,
	))
}

func (r *invitationsRepo) Reissue(ctx context.Context, id, tokenHash string, expiresAt time.Time) error {
	return mapAffected(r.db.ExecContext(ctx,
		`UPDATE invitations SET token_hash = ?, expires_at = ?, resend_count = resend_count + 1
		 WHERE id = ? AND status = 'PENDING'`,
		tokenHash, toMillis(expiresAt), id,
	))
}

func (r *invitationsRepo) DeleteStalePending(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM invitations WHERE status = 'PENDING' AND expires_at < ?`, toMillis(cutoff))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanInvitation(row scanner) (domain.Invite, error) {
	var (
		inv                    domain.Invite
		role, status           string
		invitedAt, expiresAt   int64
		completedAt, revokedAt sql.NullInt64
		userID                 sql.NullString
	)
	err := row.Scan(&inv.ID, &inv.TokenHash, &inv.Email, &role, &inv.AgencyID, &status,
		&inv.InvitedBy, &invitedAt, &expiresAt, &completedAt, &revokedAt, &userID, &inv.ResendCount)
	if err != nil {
		return domain.Invite{}, mapNotFound(err)
	}

	if inv.Role, err = identity.ParseRole(role); err != nil {
		return domain.Invite{}, err
	}
	if inv.Status, err = identity.ParseInvitationStatus(status); err != nil {
		return domain.Invite{}, err
	}
	inv.InvitedAt = fromMillis(invitedAt)
	inv.ExpiresAt = fromMillis(expiresAt)
	inv.CompletedAt = mapNullMillis(completedAt)
	inv.RevokedAt = mapNullMillis(revokedAt)
	inv.UserID = mapNullString(userID)
	return inv, nil
}
