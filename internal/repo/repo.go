package repo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"newsdesk/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

const articleColumns = `id,title,slug,summary,body,status,rejection_reason,publish_at,source_url,views,likes_count,author_id,category_id,created_at,updated_at`

func (r Repo) InsertArticle(ctx context.Context, tx *sql.Tx, a domain.Article) error {
	_, err := tx.ExecContext(ctx, `INSERT INTO articles(`+articleColumns+`) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.Title, a.Slug, nullable(a.Summary), nullable(a.Body), string(a.Status),
		nullableStringPtr(a.RejectionReason), nullableStringPtr(a.PublishAt), nullableStringPtr(a.SourceURL),
		a.Views, a.LikesCount, a.AuthorID, nullableIntPtr(a.CategoryID), a.CreatedAt, a.UpdatedAt)
	return err
}

func (r Repo) UpdateArticle(ctx context.Context, tx *sql.Tx, a domain.Article) error {
	_, err := tx.ExecContext(ctx, `UPDATE articles SET title=?, slug=?, summary=?, body=?, status=?, rejection_reason=?, publish_at=?, source_url=?, views=?, likes_count=?, category_id=?, updated_at=? WHERE id=?`,
		a.Title, a.Slug, nullable(a.Summary), nullable(a.Body), string(a.Status),
		nullableStringPtr(a.RejectionReason), nullableStringPtr(a.PublishAt), nullableStringPtr(a.SourceURL),
		a.Views, a.LikesCount, nullableIntPtr(a.CategoryID), a.UpdatedAt, a.ID)
	return err
}

func (r Repo) DeleteArticle(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) GetArticle(ctx context.Context, id string) (domain.Article, error) {
	return scanArticle(r.DB.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id=?`, id))
}

func (r Repo) GetArticleBySlug(ctx context.Context, slug string) (domain.Article, error) {
	return scanArticle(r.DB.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug=?`, slug))
}

// SortOrder selects listing order. Ties are always broken by insertion order.
type SortOrder string

const (
	SortLatest SortOrder = "latest"
	SortOldest SortOrder = "oldest"
	SortLikes  SortOrder = "likes"
	SortViews  SortOrder = "views"
)

func (s SortOrder) clause() string {
	switch s {
	case SortOldest:
		return "ORDER BY created_at ASC, rowid ASC"
	case SortLikes:
		return "ORDER BY likes_count DESC, rowid ASC"
	case SortViews:
		return "ORDER BY views DESC, rowid ASC"
	default:
		return "ORDER BY created_at DESC, rowid ASC"
	}
}

// ArticleFilters are conjunctive restrictions on the article query. The
// visibility fields render as one disjunction: status IN VisibleStatuses OR
// author_id = VisibleOwner. When VisibilityApplied is false the query is
// unrestricted by visibility (caller already scoped it).
type ArticleFilters struct {
	Status     domain.Status
	AuthorID   string
	CategoryID *int64
	Search     string

	VisibilityApplied bool
	VisibleStatuses   []domain.Status
	VisibleOwner      string

	Sort   SortOrder
	Limit  int
	Offset int
}

func (f ArticleFilters) where() (string, []any) {
	var clauses []string
	var args []any
	if f.Status != "" {
		clauses = append(clauses, "status=?")
		args = append(args, string(f.Status))
	}
	if f.AuthorID != "" {
		clauses = append(clauses, "author_id=?")
		args = append(args, f.AuthorID)
	}
	if f.CategoryID != nil {
		clauses = append(clauses, "category_id=?")
		args = append(args, *f.CategoryID)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		clauses = append(clauses, "(title LIKE ? OR summary LIKE ? OR body LIKE ?)")
		args = append(args, pattern, pattern, pattern)
	}
	if f.VisibilityApplied {
		var parts []string
		if len(f.VisibleStatuses) > 0 {
			placeholders := strings.TrimSuffix(strings.Repeat("?,", len(f.VisibleStatuses)), ",")
			parts = append(parts, "status IN ("+placeholders+")")
			for _, s := range f.VisibleStatuses {
				args = append(args, string(s))
			}
		}
		if f.VisibleOwner != "" {
			parts = append(parts, "author_id=?")
			args = append(args, f.VisibleOwner)
		}
		if len(parts) == 0 {
			// a viewer nothing is visible to
			parts = append(parts, "1=0")
		}
		clauses = append(clauses, "("+strings.Join(parts, " OR ")+")")
	}
	if len(clauses) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// QueryArticles returns one page of matching articles plus the total count
// before pagination.
func (r Repo) QueryArticles(ctx context.Context, f ArticleFilters) ([]domain.Article, int, error) {
	where, args := f.where()

	var total int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + articleColumns + ` FROM articles ` + where + ` ` + f.Sort.clause()
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var res []domain.Article
	for rows.Next() {
		a, err := scanArticleRow(rows)
		if err != nil {
			return nil, 0, err
		}
		res = append(res, a)
	}
	return res, total, rows.Err()
}

// CountArticlesByStatus counts articles in any of the given statuses.
func (r Repo) CountArticlesByStatus(ctx context.Context, statuses ...domain.Status) (int, error) {
	if len(statuses) == 0 {
		var total int
		err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles`).Scan(&total)
		return total, err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	args := make([]any, 0, len(statuses))
	for _, s := range statuses {
		args = append(args, string(s))
	}
	var total int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM articles WHERE status IN (`+placeholders+`)`, args...).Scan(&total)
	return total, err
}

// CountArticlesByAuthor counts an author's articles, optionally narrowed to a
// status.
func (r Repo) CountArticlesByAuthor(ctx context.Context, authorID string, status domain.Status) (int, error) {
	query := `SELECT COUNT(*) FROM articles WHERE author_id=?`
	args := []any{authorID}
	if status != "" {
		query += ` AND status=?`
		args = append(args, string(status))
	}
	var total int
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&total)
	return total, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row *sql.Row) (domain.Article, error) {
	a, err := scanArticleRow(row)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	return a, err
}

func scanArticleRow(row rowScanner) (domain.Article, error) {
	var a domain.Article
	var summary, body, rejection, publishAt, sourceURL sql.NullString
	var categoryID sql.NullInt64
	var status string
	err := row.Scan(&a.ID, &a.Title, &a.Slug, &summary, &body, &status, &rejection, &publishAt, &sourceURL,
		&a.Views, &a.LikesCount, &a.AuthorID, &categoryID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return a, err
	}
	a.Status = domain.Status(status)
	if summary.Valid {
		a.Summary = summary.String
	}
	if body.Valid {
		a.Body = body.String
	}
	if rejection.Valid {
		a.RejectionReason = &rejection.String
	}
	if publishAt.Valid {
		a.PublishAt = &publishAt.String
	}
	if sourceURL.Valid {
		a.SourceURL = &sourceURL.String
	}
	if categoryID.Valid {
		a.CategoryID = &categoryID.Int64
	}
	return a, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullableStringPtr(v *string) any {
	if v == nil || *v == "" {
		return nil
	}
	return *v
}

func nullableIntPtr(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
