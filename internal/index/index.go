// Package index is the boundary to the external search index. The workflow
// service calls it best-effort after writes; any failure is logged by the
// caller and never surfaced.
package index

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"newsdesk/internal/domain"
)

// Indexer accepts reindex and remove calls for articles.
type Indexer interface {
	Reindex(ctx context.Context, a domain.Article) error
	Remove(ctx context.Context, articleID string) error
}

// document is the indexed projection of an article.
type document struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	Summary    string `json:"summary,omitempty"`
	Body       string `json:"body,omitempty"`
	Status     string `json:"status"`
	AuthorID   string `json:"author_id"`
	CategoryID *int64 `json:"category_id,omitempty"`
	UpdatedAt  string `json:"updated_at"`
}

// Redis stores article documents as JSON values plus a member set, so a
// downstream search worker can scan the collection without KEYS.
type Redis struct {
	client *redis.Client
	prefix string
}

func NewRedis(addr, password string, db int, prefix string) *Redis {
	if prefix == "" {
		prefix = "newsdesk:articles"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Redis{client: client, prefix: prefix}
}

// NewRedisWithClient wraps an existing client, mainly for tests.
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = "newsdesk:articles"
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(id string) string {
	return fmt.Sprintf("%s:%s", r.prefix, id)
}

func (r *Redis) Reindex(ctx context.Context, a domain.Article) error {
	doc := document{
		ID:         a.ID,
		Title:      a.Title,
		Slug:       a.Slug,
		Summary:    a.Summary,
		Body:       a.Body,
		Status:     string(a.Status),
		AuthorID:   a.AuthorID,
		CategoryID: a.CategoryID,
		UpdatedAt:  a.UpdatedAt,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	pipe := r.client.Pipeline()
	pipe.Set(ctx, r.key(a.ID), data, 0)
	pipe.SAdd(ctx, r.prefix, a.ID)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *Redis) Remove(ctx context.Context, articleID string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, r.key(articleID))
	pipe.SRem(ctx, r.prefix, articleID)
	_, err := pipe.Exec(ctx)
	return err
}

// Close releases the underlying client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Noop discards all index calls. Used when the index is disabled.
type Noop struct{}

func (Noop) Reindex(ctx context.Context, a domain.Article) error { return nil }
func (Noop) Remove(ctx context.Context, articleID string) error  { return nil }
