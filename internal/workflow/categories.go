package workflow

import (
	"context"
	"errors"
	"strings"

	"newsdesk/internal/domain"
	"newsdesk/internal/events"
	"newsdesk/internal/repo"
)

// Category management is restricted to editors and admins. Reading categories
// is public.

func (s Service) CreateCategory(ctx context.Context, actor domain.Actor, c domain.Category) (domain.Category, error) {
	if !actor.Role.Privileged() {
		return domain.Category{}, PermissionDeniedError{Action: "manage categories"}
	}
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.Slug) == "" {
		return domain.Category{}, validationf("name and slug are required")
	}
	if _, err := s.Repo.GetCategoryBySlug(ctx, c.Slug); err == nil {
		return domain.Category{}, validationf("category slug %s already exists", c.Slug)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return domain.Category{}, err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Category{}, err
	}
	defer tx.Rollback()
	id, err := s.Repo.InsertCategory(ctx, tx, c)
	if err != nil {
		return domain.Category{}, err
	}
	c.ID = id
	if err := s.Events.Append(ctx, tx, "category.created", "category", c.Slug, actor.ID, events.EventPayload{"name": c.Name}); err != nil {
		return domain.Category{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (s Service) UpdateCategory(ctx context.Context, actor domain.Actor, c domain.Category) (domain.Category, error) {
	if !actor.Role.Privileged() {
		return domain.Category{}, PermissionDeniedError{Action: "manage categories"}
	}
	existing, err := s.Repo.GetCategory(ctx, c.ID)
	if err != nil {
		return domain.Category{}, err
	}
	if c.Name == "" {
		c.Name = existing.Name
	}
	if c.Slug == "" {
		c.Slug = existing.Slug
	}
	if c.Description == "" {
		c.Description = existing.Description
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Category{}, err
	}
	defer tx.Rollback()
	if err := s.Repo.UpdateCategory(ctx, tx, c); err != nil {
		return domain.Category{}, err
	}
	if err := s.Events.Append(ctx, tx, "category.updated", "category", c.Slug, actor.ID, nil); err != nil {
		return domain.Category{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Category{}, err
	}
	return c, nil
}

func (s Service) DeleteCategory(ctx context.Context, actor domain.Actor, id int64) error {
	if !actor.Role.Privileged() {
		return PermissionDeniedError{Action: "manage categories"}
	}
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return err
	}
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := s.Repo.DeleteCategory(ctx, tx, id); err != nil {
		return err
	}
	if err := s.Events.Append(ctx, tx, "category.deleted", "category", c.Slug, actor.ID, nil); err != nil {
		return err
	}
	return tx.Commit()
}

func (s Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.Repo.ListCategories(ctx)
}

func (s Service) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return s.Repo.GetCategory(ctx, id)
}

func (s Service) GetCategoryBySlug(ctx context.Context, slug string) (domain.Category, error) {
	return s.Repo.GetCategoryBySlug(ctx, slug)
}
