package workflow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"newsdesk/internal/domain"
	"newsdesk/internal/events"
	"newsdesk/internal/repo"
)

// Engagement records (comments, likes, bookmarks, media metadata) have a plain
// create/read/delete lifecycle. They still go through the service so that
// article visibility applies and counters stay consistent.

// visibleArticle fetches an article the actor may see, reporting not-found
// otherwise.
func (s Service) visibleArticle(ctx context.Context, viewer *domain.Actor, articleID string) (domain.Article, error) {
	a, err := s.Repo.GetArticle(ctx, articleID)
	if err != nil {
		return domain.Article{}, err
	}
	if !CanView(a.Status, a.AuthorID, viewer) {
		return domain.Article{}, repo.ErrNotFound
	}
	return a, nil
}

func (s Service) AddComment(ctx context.Context, actor domain.Actor, articleID, content string) (domain.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return domain.Comment{}, validationf("content is required")
	}
	if _, err := s.visibleArticle(ctx, &actor, articleID); err != nil {
		return domain.Comment{}, err
	}
	now := s.now().UTC().Format(time.RFC3339)
	c := domain.Comment{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		UserID:    actor.ID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Comment{}, err
	}
	defer tx.Rollback()
	if err := s.Repo.InsertComment(ctx, tx, c); err != nil {
		return domain.Comment{}, err
	}
	if err := s.Events.Append(ctx, tx, "comment.created", "comment", c.ID, actor.ID, events.EventPayload{"article_id": articleID}); err != nil {
		return domain.Comment{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

func (s Service) ListComments(ctx context.Context, viewer *domain.Actor, articleID string) ([]domain.Comment, error) {
	if _, err := s.visibleArticle(ctx, viewer, articleID); err != nil {
		return nil, err
	}
	return s.Repo.ListComments(ctx, articleID)
}

// ListMyComments returns the actor's own comments, newest first.
func (s Service) ListMyComments(ctx context.Context, actor domain.Actor) ([]domain.Comment, error) {
	return s.Repo.ListCommentsByUser(ctx, actor.ID)
}

// DeleteComment allows the comment author or a privileged role to remove a
// comment.
func (s Service) DeleteComment(ctx context.Context, actor domain.Actor, commentID string) error {
	c, err := s.Repo.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if !actor.Role.Privileged() && actor.ID != c.UserID {
		return PermissionDeniedError{Action: "delete this comment"}
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.Repo.DeleteComment(ctx, tx, commentID); err != nil {
		return err
	}
	if err := s.Events.Append(ctx, tx, "comment.deleted", "comment", commentID, actor.ID, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// LikeArticle records a like, at most one per user and article, and bumps the
// article's like counter in the same transaction.
func (s Service) LikeArticle(ctx context.Context, actor domain.Actor, articleID string) (domain.Like, error) {
	if _, err := s.visibleArticle(ctx, &actor, articleID); err != nil {
		return domain.Like{}, err
	}
	if _, err := s.Repo.GetLikeByUserAndArticle(ctx, actor.ID, articleID); err == nil {
		return domain.Like{}, validationf("article already liked")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return domain.Like{}, err
	}
	l := domain.Like{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		UserID:    actor.ID,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Like{}, err
	}
	defer tx.Rollback()
	if err := s.Repo.InsertLike(ctx, tx, l); err != nil {
		return domain.Like{}, err
	}
	if err := s.Repo.AdjustLikeCount(ctx, tx, articleID, 1); err != nil {
		return domain.Like{}, err
	}
	if err := s.Events.Append(ctx, tx, "like.created", "like", l.ID, actor.ID, events.EventPayload{"article_id": articleID}); err != nil {
		return domain.Like{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Like{}, err
	}
	return l, nil
}

func (s Service) UnlikeArticle(ctx context.Context, actor domain.Actor, articleID string) error {
	l, err := s.Repo.GetLikeByUserAndArticle(ctx, actor.ID, articleID)
	if err != nil {
		return err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.Repo.DeleteLike(ctx, tx, l.ID); err != nil {
		return err
	}
	if err := s.Repo.AdjustLikeCount(ctx, tx, articleID, -1); err != nil {
		return err
	}
	if err := s.Events.Append(ctx, tx, "like.deleted", "like", l.ID, actor.ID, events.EventPayload{"article_id": articleID}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s Service) BookmarkArticle(ctx context.Context, actor domain.Actor, articleID string) (domain.Bookmark, error) {
	if _, err := s.visibleArticle(ctx, &actor, articleID); err != nil {
		return domain.Bookmark{}, err
	}
	if _, err := s.Repo.GetBookmarkByUserAndArticle(ctx, actor.ID, articleID); err == nil {
		return domain.Bookmark{}, validationf("article already bookmarked")
	} else if !errors.Is(err, repo.ErrNotFound) {
		return domain.Bookmark{}, err
	}
	b := domain.Bookmark{
		ID:        uuid.New().String(),
		ArticleID: articleID,
		UserID:    actor.ID,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Bookmark{}, err
	}
	defer tx.Rollback()
	if err := s.Repo.InsertBookmark(ctx, tx, b); err != nil {
		return domain.Bookmark{}, err
	}
	if err := s.Events.Append(ctx, tx, "bookmark.created", "bookmark", b.ID, actor.ID, events.EventPayload{"article_id": articleID}); err != nil {
		return domain.Bookmark{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Bookmark{}, err
	}
	return b, nil
}

func (s Service) RemoveBookmark(ctx context.Context, actor domain.Actor, articleID string) error {
	b, err := s.Repo.GetBookmarkByUserAndArticle(ctx, actor.ID, articleID)
	if err != nil {
		return err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.Repo.DeleteBookmark(ctx, tx, b.ID); err != nil {
		return err
	}
	if err := s.Events.Append(ctx, tx, "bookmark.deleted", "bookmark", b.ID, actor.ID, events.EventPayload{"article_id": articleID}); err != nil {
		return err
	}
	return tx.Commit()
}

func (s Service) ListBookmarks(ctx context.Context, actor domain.Actor) ([]domain.Bookmark, error) {
	return s.Repo.ListBookmarksByUser(ctx, actor.ID)
}

// MediaCreateOptions describe a media record; byte storage lives elsewhere,
// only the metadata is tracked here.
type MediaCreateOptions struct {
	URL      string
	MimeType string
	Size     int64
}

func (s Service) AddMedia(ctx context.Context, actor domain.Actor, articleID string, opts MediaCreateOptions) (domain.Media, error) {
	if strings.TrimSpace(opts.URL) == "" {
		return domain.Media{}, validationf("url is required")
	}
	a, err := s.Repo.GetArticle(ctx, articleID)
	if err != nil {
		return domain.Media{}, err
	}
	if !CanEdit(actor, a.AuthorID) {
		return domain.Media{}, PermissionDeniedError{Action: "manage media for this article"}
	}
	m := domain.Media{
		ID:         uuid.New().String(),
		ArticleID:  articleID,
		URL:        opts.URL,
		MimeType:   opts.MimeType,
		Size:       opts.Size,
		UploadedAt: s.now().UTC().Format(time.RFC3339),
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Media{}, err
	}
	defer tx.Rollback()
	if err := s.Repo.InsertMedia(ctx, tx, m); err != nil {
		return domain.Media{}, err
	}
	if err := s.Events.Append(ctx, tx, "media.created", "media", m.ID, actor.ID, events.EventPayload{"article_id": articleID}); err != nil {
		return domain.Media{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Media{}, err
	}
	return m, nil
}

func (s Service) ListMedia(ctx context.Context, viewer *domain.Actor, articleID string) ([]domain.Media, error) {
	if _, err := s.visibleArticle(ctx, viewer, articleID); err != nil {
		return nil, err
	}
	return s.Repo.ListMedia(ctx, articleID)
}

func (s Service) DeleteMedia(ctx context.Context, actor domain.Actor, mediaID string) error {
	m, err := s.Repo.GetMedia(ctx, mediaID)
	if err != nil {
		return err
	}
	a, err := s.Repo.GetArticle(ctx, m.ArticleID)
	if err != nil {
		return err
	}
	if !CanEdit(actor, a.AuthorID) {
		return PermissionDeniedError{Action: "manage media for this article"}
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.Repo.DeleteMedia(ctx, tx, mediaID); err != nil {
		return err
	}
	if err := s.Events.Append(ctx, tx, "media.deleted", "media", mediaID, actor.ID, nil); err != nil {
		return err
	}
	return tx.Commit()
}
