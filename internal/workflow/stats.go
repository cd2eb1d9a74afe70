package workflow

import (
	"context"

	"newsdesk/internal/domain"
)

// DashboardStats returns role-specific counters. Readers have no dashboard.
func (s Service) DashboardStats(ctx context.Context, actor domain.Actor) (map[string]any, error) {
	totalCategories, err := s.Repo.CountCategories(ctx)
	if err != nil {
		return nil, err
	}
	switch actor.Role {
	case domain.RoleAdmin:
		totalUsers, err := s.Repo.CountUsers(ctx)
		if err != nil {
			return nil, err
		}
		totalAuthors, err := s.Repo.CountUsersByRole(ctx, domain.RoleAuthor)
		if err != nil {
			return nil, err
		}
		// the admin article count matches the admin listing predicate
		totalArticles, err := s.Repo.CountArticlesByStatus(ctx,
			domain.StatusPublished, domain.StatusPendingReview, domain.StatusArchived)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"total_users":      totalUsers,
			"total_authors":    totalAuthors,
			"total_articles":   totalArticles,
			"total_categories": totalCategories,
		}, nil
	case domain.RoleEditor:
		pending, err := s.Repo.CountArticlesByStatus(ctx, domain.StatusPendingReview)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"pending_reviews":  pending,
			"total_categories": totalCategories,
		}, nil
	case domain.RoleAuthor:
		mine, err := s.Repo.CountArticlesByAuthor(ctx, actor.ID, "")
		if err != nil {
			return nil, err
		}
		pending, err := s.Repo.CountArticlesByAuthor(ctx, actor.ID, domain.StatusPendingReview)
		if err != nil {
			return nil, err
		}
		published, err := s.Repo.CountArticlesByAuthor(ctx, actor.ID, domain.StatusPublished)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"my_articles":      mine,
			"pending_reviews":  pending,
			"published":        published,
			"total_categories": totalCategories,
		}, nil
	}
	return nil, PermissionDeniedError{Action: "view the dashboard"}
}
