package repo

import (
	"context"
	"database/sql"

	"newsdesk/internal/domain"
)

func (r Repo) InsertCategory(ctx context.Context, tx *sql.Tx, c domain.Category) (int64, error) {
	res, err := tx.ExecContext(ctx, `INSERT INTO categories(name,slug,description) VALUES (?,?,?)`,
		c.Name, c.Slug, nullable(c.Description))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r Repo) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return scanCategory(r.DB.QueryRowContext(ctx, `SELECT id,name,slug,COALESCE(description,'') FROM categories WHERE id=?`, id))
}

func (r Repo) GetCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	return scanCategory(r.DB.QueryRowContext(ctx, `SELECT id,name,slug,COALESCE(description,'') FROM categories WHERE slug=?`, slug))
}

func (r Repo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,name,slug,COALESCE(description,'') FROM categories ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Description); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r Repo) UpdateCategory(ctx context.Context, tx *sql.Tx, c domain.Category) error {
	res, err := tx.ExecContext(ctx, `UPDATE categories SET name=?, slug=?, description=? WHERE id=?`,
		c.Name, c.Slug, nullable(c.Description), c.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteCategory(ctx context.Context, tx *sql.Tx, id int64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) CountCategories(ctx context.Context) (int, error) {
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&total)
	return total, err
}

func scanCategory(row *sql.Row) (domain.Category, error) {
	var c domain.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}
