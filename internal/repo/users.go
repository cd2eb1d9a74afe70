package repo

import (
	"context"
	"database/sql"

	"newsdesk/internal/domain"
)

const userColumns = `id,email,username,password_hash,role,is_active,created_at,updated_at`

func (r Repo) InsertUser(ctx context.Context, tx *sql.Tx, u domain.User) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO users(`+userColumns+`) VALUES (?,?,?,?,?,?,?,?)`,
		u.ID, u.Email, nullable(u.Username), u.PasswordHash, string(u.Role), boolInt(u.IsActive), u.CreatedAt, u.UpdatedAt)
	return err
}

func (r Repo) GetUser(ctx context.Context, id string) (domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id=?`, id))
}

func (r Repo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email=?`, email))
}

func (r Repo) ListUsers(ctx context.Context) ([]domain.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.User
	for rows.Next() {
		u, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, u)
	}
	return res, rows.Err()
}

func (r Repo) UpdateUser(ctx context.Context, tx *sql.Tx, u domain.User) error {
	res, err := tx.ExecContext(ctx, `UPDATE users SET email=?, username=?, password_hash=?, role=?, is_active=?, updated_at=? WHERE id=?`,
		u.Email, nullable(u.Username), u.PasswordHash, string(u.Role), boolInt(u.IsActive), u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteUser(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) UpdateUserRole(ctx context.Context, tx *sql.Tx, id string, role domain.Role, updatedAt string) error {
	res, err := tx.ExecContext(ctx, `UPDATE users SET role=?, updated_at=? WHERE id=?`, string(role), updatedAt, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) CountUsers(ctx context.Context) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	return total, err
}

func (r Repo) CountUsersByRole(ctx context.Context, role domain.Role) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE role=?`, string(role)).Scan(&total)
	return total, err
}

func scanUser(row *sql.Row) (domain.User, error) {
	u, err := scanUserRow(row)
	if err == sql.ErrNoRows {
		return u, ErrNotFound
	}
	return u, err
}

func scanUserRow(row rowScanner) (domain.User, error) {
	var u domain.User
	var username sql.NullString
	var role string
	var active int
	err := row.Scan(&u.ID, &u.Email, &username, &u.PasswordHash, &role, &active, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return u, err
	}
	u.Role = domain.Role(role)
	u.IsActive = active != 0
	if username.Valid {
		u.Username = username.String
	}
	return u, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
