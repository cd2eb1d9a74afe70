package workflow

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"newsdesk/internal/domain"
	"newsdesk/internal/events"
	"newsdesk/internal/index"
	"newsdesk/internal/repo"
)

// Service orchestrates the article workflow: every mutation of article state
// goes through here, gated by the permission, visibility and transition rules.
type Service struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Index  index.Indexer
	Logger *log.Logger
	Now    func() time.Time
}

func New(db *sql.DB, idx index.Indexer) Service {
	if idx == nil {
		idx = index.Noop{}
	}
	return Service{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Index:  idx,
		Now:    time.Now,
	}
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) logger() *log.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return log.Default()
}

// reindex pushes an article to the search index best-effort. Index failures
// are logged and never surfaced to the caller.
func (s Service) reindex(ctx context.Context, a domain.Article) {
	if err := s.Index.Reindex(ctx, a); err != nil {
		s.logger().Printf("reindex article %s: %v", a.ID, err)
	}
}

func (s Service) removeFromIndex(ctx context.Context, articleID string) {
	if err := s.Index.Remove(ctx, articleID); err != nil {
		s.logger().Printf("remove article %s from index: %v", articleID, err)
	}
}

// ArticleCreateOptions are parameters for creating an article.
type ArticleCreateOptions struct {
	Title      string
	Slug       string
	Summary    string
	Body       string
	PublishAt  string
	SourceURL  string
	CategoryID *int64
}

// CreateArticle creates a draft owned by the acting author. Only author-role
// actors create articles; the referenced category must exist and the slug must
// be free.
func (s Service) CreateArticle(ctx context.Context, actor domain.Actor, opts ArticleCreateOptions) (domain.Article, error) {
	if actor.Role != domain.RoleAuthor {
		return domain.Article{}, PermissionDeniedError{Action: "create articles"}
	}
	if strings.TrimSpace(opts.Title) == "" {
		return domain.Article{}, validationf("title is required")
	}
	if strings.TrimSpace(opts.Slug) == "" {
		return domain.Article{}, validationf("slug is required")
	}
	if opts.CategoryID != nil {
		if _, err := s.Repo.GetCategory(ctx, *opts.CategoryID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return domain.Article{}, fmt.Errorf("category %d: %w", *opts.CategoryID, err)
			}
			return domain.Article{}, fmt.Errorf("category lookup: %w", err)
		}
	}
	if _, err := s.Repo.GetArticleBySlug(ctx, opts.Slug); err == nil {
		return domain.Article{}, validationf("slug %s already exists", opts.Slug)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return domain.Article{}, err
	}

	now := s.now().UTC().Format(time.RFC3339)
	a := domain.Article{
		ID:         uuid.New().String(),
		Title:      opts.Title,
		Slug:       opts.Slug,
		Summary:    opts.Summary,
		Body:       opts.Body,
		Status:     domain.StatusDraft,
		PublishAt:  optionalString(opts.PublishAt),
		SourceURL:  optionalString(opts.SourceURL),
		AuthorID:   actor.ID,
		CategoryID: opts.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Article{}, err
	}
	defer tx.Rollback()

	if err := s.Repo.InsertArticle(ctx, tx, a); err != nil {
		return domain.Article{}, err
	}
	if err := s.Events.Append(ctx, tx, "article.created", "article", a.ID, actor.ID, events.EventPayload{
		"slug":   a.Slug,
		"status": a.Status,
	}); err != nil {
		return domain.Article{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Article{}, err
	}
	s.reindex(ctx, a)
	return a, nil
}

// GetArticle fetches one article if the viewer may see it. A hidden article
// reads as not-found so its existence never leaks.
func (s Service) GetArticle(ctx context.Context, viewer *domain.Actor, id string) (domain.Article, error) {
	a, err := s.Repo.GetArticle(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}
	if !CanView(a.Status, a.AuthorID, viewer) {
		return domain.Article{}, repo.ErrNotFound
	}
	return a, nil
}

// GetArticleBySlug is GetArticle keyed by the unique slug.
func (s Service) GetArticleBySlug(ctx context.Context, viewer *domain.Actor, slug string) (domain.Article, error) {
	a, err := s.Repo.GetArticleBySlug(ctx, slug)
	if err != nil {
		return domain.Article{}, err
	}
	if !CanView(a.Status, a.AuthorID, viewer) {
		return domain.Article{}, repo.ErrNotFound
	}
	return a, nil
}

// ListOptions narrow a paginated listing.
type ListOptions struct {
	Status   domain.Status
	AuthorID string
	Page     int
	Limit    int
}

// ListArticles returns one page plus the pre-pagination total. The visibility
// predicate is composed with the caller's filters, except when the caller
// already narrowed the query to their own articles, where it would be
// redundant.
func (s Service) ListArticles(ctx context.Context, viewer *domain.Actor, opts ListOptions) ([]domain.Article, int, error) {
	page, limit := normalizePage(opts.Page, opts.Limit)
	f := repo.ArticleFilters{
		Status:   opts.Status,
		AuthorID: opts.AuthorID,
		Sort:     repo.SortLatest,
		Limit:    limit,
		Offset:   (page - 1) * limit,
	}
	ownScope := opts.AuthorID != "" && viewer != nil && opts.AuthorID == viewer.ID
	if !ownScope {
		applyVisibility(&f, viewer)
	}
	return s.Repo.QueryArticles(ctx, f)
}

// SearchOptions narrow a text search.
type SearchOptions struct {
	Query      string
	CategoryID *int64
	AuthorID   string
	Status     domain.Status
	Sort       repo.SortOrder
	Page       int
	Limit      int
}

// SearchArticles matches the query against title, summary and body, always
// under the viewer's visibility predicate.
func (s Service) SearchArticles(ctx context.Context, viewer *domain.Actor, opts SearchOptions) ([]domain.Article, int, error) {
	if strings.TrimSpace(opts.Query) == "" {
		return nil, 0, validationf("search query is required")
	}
	page, limit := normalizePage(opts.Page, opts.Limit)
	f := repo.ArticleFilters{
		Status:     opts.Status,
		AuthorID:   opts.AuthorID,
		CategoryID: opts.CategoryID,
		Search:     opts.Query,
		Sort:       opts.Sort,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
	applyVisibility(&f, viewer)
	return s.Repo.QueryArticles(ctx, f)
}

// ListArticlesByCategory serves public browsing surfaces: only published
// articles, newest first, regardless of who asks.
func (s Service) ListArticlesByCategory(ctx context.Context, categoryID int64, page, limit int) ([]domain.Article, int, error) {
	page, limit = normalizePage(page, limit)
	f := repo.ArticleFilters{
		Status:     domain.StatusPublished,
		CategoryID: &categoryID,
		Sort:       repo.SortLatest,
		Limit:      limit,
		Offset:     (page - 1) * limit,
	}
	return s.Repo.QueryArticles(ctx, f)
}

// ArticleUpdateOptions carries partial updates; nil means leave unchanged.
type ArticleUpdateOptions struct {
	Title           *string
	Slug            *string
	Summary         *string
	Body            *string
	Status          *domain.Status
	PublishAt       *string
	SourceURL       *string
	CategoryID      *int64
	RejectionReason *string
}

// UpdateArticle applies field changes atomically. Edit permission is checked
// first, then the status transition if one is requested. A request that
// changes nothing, including a status equal to the current one, writes
// nothing and leaves updated_at untouched.
func (s Service) UpdateArticle(ctx context.Context, actor domain.Actor, id string, opts ArticleUpdateOptions) (domain.Article, error) {
	a, err := s.Repo.GetArticle(ctx, id)
	if err != nil {
		return domain.Article{}, err
	}
	if !CanEdit(actor, a.AuthorID) {
		return domain.Article{}, PermissionDeniedError{Action: "edit this article"}
	}
	if opts.Status != nil {
		if !opts.Status.Valid() {
			return domain.Article{}, validationf("invalid status %q", *opts.Status)
		}
		if err := ValidateTransition(a.Status, *opts.Status, actor.Role); err != nil {
			return domain.Article{}, err
		}
	}
	if opts.Slug != nil && *opts.Slug != a.Slug {
		if strings.TrimSpace(*opts.Slug) == "" {
			return domain.Article{}, validationf("slug is required")
		}
		if _, err := s.Repo.GetArticleBySlug(ctx, *opts.Slug); err == nil {
			return domain.Article{}, validationf("slug %s already exists", *opts.Slug)
		} else if !errors.Is(err, repo.ErrNotFound) {
			return domain.Article{}, err
		}
	}
	if opts.CategoryID != nil {
		if _, err := s.Repo.GetCategory(ctx, *opts.CategoryID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return domain.Article{}, fmt.Errorf("category %d: %w", *opts.CategoryID, err)
			}
			return domain.Article{}, fmt.Errorf("category lookup: %w", err)
		}
	}

	original := a
	changed := false
	setString := func(dst *string, v *string) {
		if v != nil && *v != *dst {
			*dst = *v
			changed = true
		}
	}
	setString(&a.Title, opts.Title)
	setString(&a.Slug, opts.Slug)
	setString(&a.Summary, opts.Summary)
	setString(&a.Body, opts.Body)
	if opts.Status != nil && *opts.Status != a.Status {
		a.Status = *opts.Status
		changed = true
	}
	if opts.PublishAt != nil && !equalPtr(a.PublishAt, opts.PublishAt) {
		a.PublishAt = optionalString(*opts.PublishAt)
		changed = true
	}
	if opts.SourceURL != nil && !equalPtr(a.SourceURL, opts.SourceURL) {
		a.SourceURL = optionalString(*opts.SourceURL)
		changed = true
	}
	if opts.CategoryID != nil && (a.CategoryID == nil || *a.CategoryID != *opts.CategoryID) {
		a.CategoryID = opts.CategoryID
		changed = true
	}
	// rejection_reason is stored as given and never cleared automatically on
	// transitions away from rejected
	if opts.RejectionReason != nil && !equalPtr(a.RejectionReason, opts.RejectionReason) {
		a.RejectionReason = optionalString(*opts.RejectionReason)
		changed = true
	}
	if !changed {
		return a, nil
	}
	a.UpdatedAt = s.now().UTC().Format(time.RFC3339)

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Article{}, err
	}
	defer tx.Rollback()

	if err := s.Repo.UpdateArticle(ctx, tx, a); err != nil {
		return domain.Article{}, err
	}
	if err := s.Events.Append(ctx, tx, "article.updated", "article", a.ID, actor.ID, events.EventPayload{
		"from_status": original.Status,
		"to_status":   a.Status,
	}); err != nil {
		return domain.Article{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Article{}, err
	}
	s.reindex(ctx, a)
	return a, nil
}

// DeleteArticle permanently removes an article and everything hanging off it
// (comments, likes, bookmarks, media cascade at the schema level).
func (s Service) DeleteArticle(ctx context.Context, actor domain.Actor, id string) error {
	a, err := s.Repo.GetArticle(ctx, id)
	if err != nil {
		return err
	}
	if !CanDelete(actor, a.AuthorID, a.Status) {
		if actor.ID == a.AuthorID {
			return PermissionDeniedError{Action: "delete an article that is no longer a draft"}
		}
		return PermissionDeniedError{Action: "delete this article"}
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.Repo.DeleteArticle(ctx, tx, id); err != nil {
		return err
	}
	if err := s.Events.Append(ctx, tx, "article.deleted", "article", id, actor.ID, events.EventPayload{
		"slug": a.Slug,
	}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	s.removeFromIndex(ctx, id)
	return nil
}

// --- helpers ---

func applyVisibility(f *repo.ArticleFilters, viewer *domain.Actor) {
	pred := BuildPredicate(viewer)
	f.VisibilityApplied = true
	f.VisibleStatuses = pred.Statuses
	f.VisibleOwner = pred.OwnerID
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func equalPtr(a *string, b *string) bool {
	if a == nil {
		return b == nil || *b == ""
	}
	if b == nil {
		return false
	}
	return *a == *b
}
