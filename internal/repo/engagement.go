package repo

import (
	"context"
	"database/sql"

	"newsdesk/internal/domain"
)

// Comments

func (r Repo) InsertComment(ctx context.Context, tx *sql.Tx, c domain.Comment) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO comments(id,article_id,user_id,content,created_at,updated_at) VALUES (?,?,?,?,?,?)`,
		c.ID, c.ArticleID, c.UserID, c.Content, c.CreatedAt, c.UpdatedAt)
	return err
}

func (r Repo) GetComment(ctx context.Context, id string) (domain.Comment, error) {
	var c domain.Comment
	err := r.DB.QueryRowContext(ctx, `SELECT id,article_id,user_id,content,created_at,updated_at FROM comments WHERE id=?`, id).
		Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return c, ErrNotFound
	}
	return c, err
}

func (r Repo) ListComments(ctx context.Context, articleID string) ([]domain.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,article_id,user_id,content,created_at,updated_at FROM comments WHERE article_id=? ORDER BY created_at ASC, rowid ASC`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r Repo) ListCommentsByUser(ctx context.Context, userID string) ([]domain.Comment, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,article_id,user_id,content,created_at,updated_at FROM comments WHERE user_id=? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Comment
	for rows.Next() {
		var c domain.Comment
		if err := rows.Scan(&c.ID, &c.ArticleID, &c.UserID, &c.Content, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		res = append(res, c)
	}
	return res, rows.Err()
}

func (r Repo) DeleteComment(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Likes

func (r Repo) InsertLike(ctx context.Context, tx *sql.Tx, l domain.Like) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO likes(id,article_id,user_id,created_at) VALUES (?,?,?,?)`,
		l.ID, l.ArticleID, l.UserID, l.CreatedAt)
	return err
}

func (r Repo) GetLikeByUserAndArticle(ctx context.Context, userID, articleID string) (domain.Like, error) {
	var l domain.Like
	err := r.DB.QueryRowContext(ctx, `SELECT id,article_id,user_id,created_at FROM likes WHERE user_id=? AND article_id=?`, userID, articleID).
		Scan(&l.ID, &l.ArticleID, &l.UserID, &l.CreatedAt)
	if err == sql.ErrNoRows {
		return l, ErrNotFound
	}
	return l, err
}

func (r Repo) DeleteLike(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM likes WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// AdjustLikeCount shifts an article's denormalized like counter, clamped at
// zero.
func (r Repo) AdjustLikeCount(ctx context.Context, tx *sql.Tx, articleID string, delta int) error {
	_, err := tx.ExecContext(ctx, `UPDATE articles SET likes_count=MAX(0, likes_count+?) WHERE id=?`, delta, articleID)
	return err
}

// Bookmarks

func (r Repo) InsertBookmark(ctx context.Context, tx *sql.Tx, b domain.Bookmark) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO bookmarks(id,article_id,user_id,created_at) VALUES (?,?,?,?)`,
		b.ID, b.ArticleID, b.UserID, b.CreatedAt)
	return err
}

func (r Repo) GetBookmarkByUserAndArticle(ctx context.Context, userID, articleID string) (domain.Bookmark, error) {
	var b domain.Bookmark
	err := r.DB.QueryRowContext(ctx, `SELECT id,article_id,user_id,created_at FROM bookmarks WHERE user_id=? AND article_id=?`, userID, articleID).
		Scan(&b.ID, &b.ArticleID, &b.UserID, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return b, ErrNotFound
	}
	return b, err
}

func (r Repo) ListBookmarksByUser(ctx context.Context, userID string) ([]domain.Bookmark, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,article_id,user_id,created_at FROM bookmarks WHERE user_id=? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Bookmark
	for rows.Next() {
		var b domain.Bookmark
		if err := rows.Scan(&b.ID, &b.ArticleID, &b.UserID, &b.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, b)
	}
	return res, rows.Err()
}

func (r Repo) DeleteBookmark(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM bookmarks WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Media metadata

func (r Repo) InsertMedia(ctx context.Context, tx *sql.Tx, m domain.Media) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO media(id,article_id,url,mime_type,size,uploaded_at) VALUES (?,?,?,?,?,?)`,
		m.ID, m.ArticleID, m.URL, nullable(m.MimeType), m.Size, m.UploadedAt)
	return err
}

func (r Repo) GetMedia(ctx context.Context, id string) (domain.Media, error) {
	var m domain.Media
	var mime sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT id,article_id,url,mime_type,size,uploaded_at FROM media WHERE id=?`, id).
		Scan(&m.ID, &m.ArticleID, &m.URL, &mime, &m.Size, &m.UploadedAt)
	if err == sql.ErrNoRows {
		return m, ErrNotFound
	}
	if mime.Valid {
		m.MimeType = mime.String
	}
	return m, err
}

func (r Repo) ListMedia(ctx context.Context, articleID string) ([]domain.Media, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,article_id,url,mime_type,size,uploaded_at FROM media WHERE article_id=? ORDER BY uploaded_at ASC, rowid ASC`, articleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []domain.Media
	for rows.Next() {
		var m domain.Media
		var mime sql.NullString
		if err := rows.Scan(&m.ID, &m.ArticleID, &m.URL, &mime, &m.Size, &m.UploadedAt); err != nil {
			return nil, err
		}
		if mime.Valid {
			m.MimeType = mime.String
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

func (r Repo) DeleteMedia(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM media WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
