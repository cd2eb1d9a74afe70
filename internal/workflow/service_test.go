package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"newsdesk/internal/db"
	"newsdesk/internal/domain"
	"newsdesk/internal/migrate"
	"newsdesk/internal/repo"
	"newsdesk/internal/workflow"
)

type testEnv struct {
	Svc     workflow.Service
	Ctx     context.Context
	Author  domain.Actor
	Author2 domain.Actor
	Editor  domain.Actor
	Admin   domain.Actor
	Reader  domain.Actor

	now time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := migrate.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	env := &testEnv{
		Ctx: context.Background(),
		now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	svc := workflow.New(conn, nil)
	svc.Now = func() time.Time { return env.now }
	svc.Logger = log.New(io.Discard, "", 0)
	env.Svc = svc

	env.Author = seedUser(t, env, "author@example.com", domain.RoleAuthor)
	env.Author2 = seedUser(t, env, "author2@example.com", domain.RoleAuthor)
	env.Editor = seedUser(t, env, "editor@example.com", domain.RoleEditor)
	env.Admin = seedUser(t, env, "admin@example.com", domain.RoleAdmin)
	env.Reader = seedUser(t, env, "reader@example.com", domain.RoleReader)
	return env
}

func seedUser(t *testing.T, env *testEnv, email string, role domain.Role) domain.Actor {
	t.Helper()
	u, err := env.Svc.CreateUser(env.Ctx, email, email, "password-1", role)
	if err != nil {
		t.Fatalf("seed user %s: %v", email, err)
	}
	return u.Actor()
}

func (e *testEnv) advance(d time.Duration) { e.now = e.now.Add(d) }

var slugSeq int

func draft(t *testing.T, env *testEnv, author domain.Actor) domain.Article {
	t.Helper()
	slugSeq++
	a, err := env.Svc.CreateArticle(env.Ctx, author, workflow.ArticleCreateOptions{
		Title: fmt.Sprintf("Story %d", slugSeq),
		Slug:  fmt.Sprintf("story-%d", slugSeq),
		Body:  "body text",
	})
	if err != nil {
		t.Fatalf("create draft: %v", err)
	}
	return a
}

func setStatus(t *testing.T, env *testEnv, actor domain.Actor, id string, status domain.Status) domain.Article {
	t.Helper()
	a, err := env.Svc.UpdateArticle(env.Ctx, actor, id, workflow.ArticleUpdateOptions{Status: &status})
	if err != nil {
		t.Fatalf("set %s: %v", status, err)
	}
	return a
}

func TestCreateArticleOnlyAuthors(t *testing.T) {
	env := newTestEnv(t)
	for _, actor := range []domain.Actor{env.Editor, env.Admin, env.Reader} {
		_, err := env.Svc.CreateArticle(env.Ctx, actor, workflow.ArticleCreateOptions{
			Title: "nope", Slug: "nope-" + string(actor.Role),
		})
		var pde workflow.PermissionDeniedError
		if !errors.As(err, &pde) {
			t.Errorf("%s created an article: %v", actor.Role, err)
		}
	}
}

func TestCreateArticleValidation(t *testing.T) {
	env := newTestEnv(t)
	var ve workflow.ValidationError

	_, err := env.Svc.CreateArticle(env.Ctx, env.Author, workflow.ArticleCreateOptions{Slug: "no-title"})
	if !errors.As(err, &ve) {
		t.Fatalf("missing title: %v", err)
	}
	_, err = env.Svc.CreateArticle(env.Ctx, env.Author, workflow.ArticleCreateOptions{Title: "No slug"})
	if !errors.As(err, &ve) {
		t.Fatalf("missing slug: %v", err)
	}

	a := draft(t, env, env.Author)
	_, err = env.Svc.CreateArticle(env.Ctx, env.Author, workflow.ArticleCreateOptions{Title: "Dup", Slug: a.Slug})
	if !errors.As(err, &ve) {
		t.Fatalf("duplicate slug: %v", err)
	}

	missing := int64(9999)
	_, err = env.Svc.CreateArticle(env.Ctx, env.Author, workflow.ArticleCreateOptions{
		Title: "Bad category", Slug: "bad-category", CategoryID: &missing,
	})
	if !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("missing category should read not-found, got %v", err)
	}
}

func TestSubmitReviewPublishFlow(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author)
	if a.Status != domain.StatusDraft {
		t.Fatalf("new article status %s", a.Status)
	}

	// invisible to the public while drafted
	if _, err := env.Svc.GetArticle(env.Ctx, nil, a.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("anonymous read of draft: %v", err)
	}

	a = setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)

	// still invisible to readers while under review
	if _, err := env.Svc.GetArticle(env.Ctx, &env.Reader, a.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("reader read of pending article: %v", err)
	}
	// but the editor sees it
	if _, err := env.Svc.GetArticle(env.Ctx, &env.Editor, a.ID); err != nil {
		t.Fatalf("editor read of pending article: %v", err)
	}

	a = setStatus(t, env, env.Editor, a.ID, domain.StatusPublished)

	got, err := env.Svc.GetArticle(env.Ctx, nil, a.ID)
	if err != nil {
		t.Fatalf("anonymous read of published article: %v", err)
	}
	if got.Status != domain.StatusPublished {
		t.Fatalf("status %s", got.Status)
	}
	if _, err := env.Svc.GetArticleBySlug(env.Ctx, nil, a.Slug); err != nil {
		t.Fatalf("read by slug: %v", err)
	}
}

func TestRejectAndResubmit(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author)
	setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)

	reason := "needs sources"
	rejected := domain.StatusRejected
	a2, err := env.Svc.UpdateArticle(env.Ctx, env.Editor, a.ID, workflow.ArticleUpdateOptions{
		Status:          &rejected,
		RejectionReason: &reason,
	})
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if a2.RejectionReason == nil || *a2.RejectionReason != reason {
		t.Fatalf("rejection reason not stored: %+v", a2.RejectionReason)
	}

	// the author sees their rejected article with the reason
	got, err := env.Svc.GetArticle(env.Ctx, &env.Author, a.ID)
	if err != nil {
		t.Fatalf("author read of rejected article: %v", err)
	}
	if got.RejectionReason == nil || *got.RejectionReason != reason {
		t.Fatalf("author cannot see the reason")
	}
	// a second author cannot
	if _, err := env.Svc.GetArticle(env.Ctx, &env.Author2, a.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("other author read of rejected article: %v", err)
	}

	// resubmission keeps the stale reason; nothing clears it automatically
	resubmitted := setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)
	if resubmitted.RejectionReason == nil || *resubmitted.RejectionReason != reason {
		t.Fatalf("rejection reason cleared on resubmit")
	}
}

func TestAuthorCannotPublishOwnArticle(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author)
	setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)

	published := domain.StatusPublished
	_, err := env.Svc.UpdateArticle(env.Ctx, env.Author, a.ID, workflow.ArticleUpdateOptions{Status: &published})
	var ite workflow.InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestNonOwnerAuthorCannotEdit(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author)
	title := "hijacked"
	_, err := env.Svc.UpdateArticle(env.Ctx, env.Author2, a.ID, workflow.ArticleUpdateOptions{Title: &title})
	var pde workflow.PermissionDeniedError
	if !errors.As(err, &pde) {
		t.Fatalf("expected permission denied, got %v", err)
	}
}

func TestNoopUpdateWritesNothing(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author)
	env.advance(time.Hour)

	// same status, no field changes
	same := a.Status
	got, err := env.Svc.UpdateArticle(env.Ctx, env.Author, a.ID, workflow.ArticleUpdateOptions{Status: &same})
	if err != nil {
		t.Fatalf("noop update: %v", err)
	}
	if got.UpdatedAt != a.UpdatedAt {
		t.Fatalf("noop update touched updated_at: %s -> %s", a.UpdatedAt, got.UpdatedAt)
	}

	// a real change moves the timestamp
	title := "New title"
	got, err = env.Svc.UpdateArticle(env.Ctx, env.Author, a.ID, workflow.ArticleUpdateOptions{Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.UpdatedAt == a.UpdatedAt {
		t.Fatalf("update did not touch updated_at")
	}
}

func TestDeleteRules(t *testing.T) {
	env := newTestEnv(t)

	// owners delete drafts
	a := draft(t, env, env.Author)
	if err := env.Svc.DeleteArticle(env.Ctx, env.Author, a.ID); err != nil {
		t.Fatalf("owner delete draft: %v", err)
	}

	// once published the owner is locked out, a privileged role is not
	b := draft(t, env, env.Author)
	setStatus(t, env, env.Author, b.ID, domain.StatusPendingReview)
	setStatus(t, env, env.Editor, b.ID, domain.StatusPublished)
	err := env.Svc.DeleteArticle(env.Ctx, env.Author, b.ID)
	var pde workflow.PermissionDeniedError
	if !errors.As(err, &pde) {
		t.Fatalf("owner deleted published article: %v", err)
	}
	if err := env.Svc.DeleteArticle(env.Ctx, env.Editor, b.ID); err != nil {
		t.Fatalf("editor delete published: %v", err)
	}
	if _, err := env.Svc.GetArticle(env.Ctx, &env.Admin, b.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("article survived deletion: %v", err)
	}
}

func TestDeleteCascadesEngagement(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author)
	setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)
	setStatus(t, env, env.Editor, a.ID, domain.StatusPublished)

	if _, err := env.Svc.AddComment(env.Ctx, env.Reader, a.ID, "nice"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := env.Svc.LikeArticle(env.Ctx, env.Reader, a.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := env.Svc.DeleteArticle(env.Ctx, env.Admin, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if comments, err := env.Svc.Repo.ListComments(env.Ctx, a.ID); err != nil || len(comments) != 0 {
		t.Fatalf("comments survived cascade: %v %v", comments, err)
	}
}

func TestListVisibilityPerRole(t *testing.T) {
	env := newTestEnv(t)

	published := draft(t, env, env.Author)
	setStatus(t, env, env.Author, published.ID, domain.StatusPendingReview)
	setStatus(t, env, env.Editor, published.ID, domain.StatusPublished)

	pending := draft(t, env, env.Author)
	setStatus(t, env, env.Author, pending.ID, domain.StatusPendingReview)

	hidden := draft(t, env, env.Author) // stays a draft

	archived := draft(t, env, env.Author2)
	setStatus(t, env, env.Author2, archived.ID, domain.StatusPendingReview)
	setStatus(t, env, env.Admin, archived.ID, domain.StatusPublished)
	setStatus(t, env, env.Admin, archived.ID, domain.StatusArchived)

	list := func(viewer *domain.Actor) map[string]bool {
		items, _, err := env.Svc.ListArticles(env.Ctx, viewer, workflow.ListOptions{})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		got := map[string]bool{}
		for _, a := range items {
			got[a.ID] = true
		}
		return got
	}

	anon := list(nil)
	if !anon[published.ID] || anon[pending.ID] || anon[hidden.ID] || anon[archived.ID] {
		t.Fatalf("anonymous listing wrong: %v", anon)
	}

	reader := list(&env.Reader)
	if !reader[published.ID] || reader[pending.ID] || reader[archived.ID] {
		t.Fatalf("reader listing wrong: %v", reader)
	}

	// authors see published plus everything of their own, any status
	author := list(&env.Author)
	if !author[published.ID] || !author[pending.ID] || !author[hidden.ID] {
		t.Fatalf("author listing wrong: %v", author)
	}
	if author[archived.ID] {
		t.Fatalf("author sees another author's archived article")
	}

	editor := list(&env.Editor)
	if !editor[published.ID] || !editor[pending.ID] {
		t.Fatalf("editor listing wrong: %v", editor)
	}
	if editor[hidden.ID] || editor[archived.ID] {
		t.Fatalf("editor listing leaked drafts or archived: %v", editor)
	}

	admin := list(&env.Admin)
	if !admin[published.ID] || !admin[pending.ID] || !admin[archived.ID] {
		t.Fatalf("admin listing wrong: %v", admin)
	}
	if admin[hidden.ID] {
		t.Fatalf("admin listing leaked another author's draft")
	}
}

func TestListOwnArticlesSkipsVisibility(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author)

	items, total, err := env.Svc.ListArticles(env.Ctx, &env.Author, workflow.ListOptions{AuthorID: env.Author.ID})
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != a.ID {
		t.Fatalf("own scope listing missed draft: total=%d items=%v", total, items)
	}

	// scoping to someone else's articles keeps the predicate in force
	items, _, err = env.Svc.ListArticles(env.Ctx, &env.Author2, workflow.ListOptions{AuthorID: env.Author.ID})
	if err != nil {
		t.Fatalf("list other: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("another author's drafts leaked: %v", items)
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author)
	setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)
	setStatus(t, env, env.Admin, a.ID, domain.StatusPublished)
	setStatus(t, env, env.Admin, a.ID, domain.StatusArchived)

	// archived articles are hidden from the public again
	if _, err := env.Svc.GetArticle(env.Ctx, nil, a.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("anonymous read of archived article: %v", err)
	}

	restored := setStatus(t, env, env.Admin, a.ID, domain.StatusPublished)
	if restored.Status != domain.StatusPublished {
		t.Fatalf("restore failed: %s", restored.Status)
	}
}

func TestSearchRequiresQueryAndAppliesVisibility(t *testing.T) {
	env := newTestEnv(t)
	_, _, err := env.Svc.SearchArticles(env.Ctx, nil, workflow.SearchOptions{})
	var ve workflow.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("empty query: %v", err)
	}

	a := draft(t, env, env.Author)
	items, _, err := env.Svc.SearchArticles(env.Ctx, nil, workflow.SearchOptions{Query: a.Title})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("draft surfaced in anonymous search")
	}

	setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)
	setStatus(t, env, env.Editor, a.ID, domain.StatusPublished)
	items, _, err = env.Svc.SearchArticles(env.Ctx, nil, workflow.SearchOptions{Query: a.Title})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("published article missing from search: %v", items)
	}
}

func TestCategoryListingPublishedOnly(t *testing.T) {
	env := newTestEnv(t)
	cat, err := env.Svc.CreateCategory(env.Ctx, env.Admin, domain.Category{Name: "World", Slug: "world"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}

	a, err := env.Svc.CreateArticle(env.Ctx, env.Author, workflow.ArticleCreateOptions{
		Title: "In category", Slug: "in-category", CategoryID: &cat.ID,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	items, total, err := env.Svc.ListArticlesByCategory(env.Ctx, cat.ID, 1, 20)
	if err != nil {
		t.Fatalf("list category: %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Fatalf("draft listed on category page")
	}

	setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)
	setStatus(t, env, env.Editor, a.ID, domain.StatusPublished)
	items, total, err = env.Svc.ListArticlesByCategory(env.Ctx, cat.ID, 1, 20)
	if err != nil {
		t.Fatalf("list category: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("published article missing from category page")
	}
}

func TestPaginationTotals(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		a := draft(t, env, env.Author)
		setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)
		setStatus(t, env, env.Editor, a.ID, domain.StatusPublished)
		env.advance(time.Minute)
	}
	items, total, err := env.Svc.ListArticles(env.Ctx, nil, workflow.ListOptions{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 5 {
		t.Fatalf("total %d, want 5", total)
	}
	if len(items) != 2 {
		t.Fatalf("page size %d, want 2", len(items))
	}
}

func TestSearchSortOrders(t *testing.T) {
	env := newTestEnv(t)
	var ids []string
	for i := 0; i < 3; i++ {
		a := draft(t, env, env.Author)
		setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)
		setStatus(t, env, env.Editor, a.ID, domain.StatusPublished)
		ids = append(ids, a.ID)
		env.advance(time.Minute)
	}
	// like the middle article once so it sorts first by likes
	if _, err := env.Svc.LikeArticle(env.Ctx, env.Reader, ids[1]); err != nil {
		t.Fatalf("like: %v", err)
	}

	search := func(sort repo.SortOrder) []domain.Article {
		items, _, err := env.Svc.SearchArticles(env.Ctx, nil, workflow.SearchOptions{Query: "Story", Sort: sort})
		if err != nil {
			t.Fatalf("search %s: %v", sort, err)
		}
		return items
	}

	latest := search(repo.SortLatest)
	if len(latest) != 3 || latest[0].ID != ids[2] {
		t.Fatalf("latest order wrong")
	}
	oldest := search(repo.SortOldest)
	if oldest[0].ID != ids[0] {
		t.Fatalf("oldest order wrong")
	}
	likes := search(repo.SortLikes)
	if likes[0].ID != ids[1] {
		t.Fatalf("likes order wrong")
	}
	// equal like counts fall back to insertion order
	if likes[1].ID != ids[0] || likes[2].ID != ids[2] {
		t.Fatalf("likes tie-break wrong: %s %s", likes[1].ID, likes[2].ID)
	}
}

type failingIndex struct{}

func (failingIndex) Reindex(context.Context, domain.Article) error {
	return errors.New("index down")
}
func (failingIndex) Remove(context.Context, string) error {
	return errors.New("index down")
}

func TestIndexFailuresNeverFailWrites(t *testing.T) {
	env := newTestEnv(t)
	svc := env.Svc
	svc.Index = failingIndex{}

	a, err := svc.CreateArticle(env.Ctx, env.Author, workflow.ArticleCreateOptions{
		Title: "Indexed anyway", Slug: "indexed-anyway",
	})
	if err != nil {
		t.Fatalf("create with failing index: %v", err)
	}
	if err := svc.DeleteArticle(env.Ctx, env.Author, a.ID); err != nil {
		t.Fatalf("delete with failing index: %v", err)
	}
}

func TestLikesUniquePerUser(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author)
	setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)
	setStatus(t, env, env.Editor, a.ID, domain.StatusPublished)

	if _, err := env.Svc.LikeArticle(env.Ctx, env.Reader, a.ID); err != nil {
		t.Fatalf("like: %v", err)
	}
	_, err := env.Svc.LikeArticle(env.Ctx, env.Reader, a.ID)
	var ve workflow.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("double like: %v", err)
	}

	got, err := env.Svc.GetArticle(env.Ctx, nil, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.LikesCount != 1 {
		t.Fatalf("likes_count %d, want 1", got.LikesCount)
	}

	if err := env.Svc.UnlikeArticle(env.Ctx, env.Reader, a.ID); err != nil {
		t.Fatalf("unlike: %v", err)
	}
	got, _ = env.Svc.GetArticle(env.Ctx, nil, a.ID)
	if got.LikesCount != 0 {
		t.Fatalf("likes_count %d after unlike, want 0", got.LikesCount)
	}
}

func TestEngagementRequiresVisibleArticle(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author) // hidden from readers

	if _, err := env.Svc.AddComment(env.Ctx, env.Reader, a.ID, "sneaky"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("comment on hidden article: %v", err)
	}
	if _, err := env.Svc.LikeArticle(env.Ctx, env.Reader, a.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("like on hidden article: %v", err)
	}
	if _, err := env.Svc.BookmarkArticle(env.Ctx, env.Reader, a.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("bookmark on hidden article: %v", err)
	}
}

func TestAuthenticateAndRoles(t *testing.T) {
	env := newTestEnv(t)
	u, err := env.Svc.Authenticate(env.Ctx, "Author@Example.com", "password-1")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if u.Role != domain.RoleAuthor {
		t.Fatalf("role %s", u.Role)
	}
	if _, err := env.Svc.Authenticate(env.Ctx, "author@example.com", "wrong"); !errors.Is(err, workflow.ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := env.Svc.Authenticate(env.Ctx, "ghost@example.com", "password-1"); !errors.Is(err, workflow.ErrInvalidCredentials) {
		t.Fatalf("unknown email: %v", err)
	}

	// self-registration is always reader
	reg, err := env.Svc.RegisterUser(env.Ctx, "new@example.com", "new", "password-2")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.Role != domain.RoleReader {
		t.Fatalf("registered role %s", reg.Role)
	}

	// only admins promote
	if _, err := env.Svc.UpdateUserRole(env.Ctx, env.Editor, reg.ID, domain.RoleAuthor); err == nil {
		t.Fatal("editor changed a role")
	}
	promoted, err := env.Svc.UpdateUserRole(env.Ctx, env.Admin, reg.ID, domain.RoleAuthor)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if promoted.Role != domain.RoleAuthor {
		t.Fatalf("promoted role %s", promoted.Role)
	}
}

func TestDashboardStatsPerRole(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author)
	setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)

	admin, err := env.Svc.DashboardStats(env.Ctx, env.Admin)
	if err != nil {
		t.Fatalf("admin stats: %v", err)
	}
	if admin["total_users"].(int) != 5 {
		t.Fatalf("total_users %v", admin["total_users"])
	}

	editor, err := env.Svc.DashboardStats(env.Ctx, env.Editor)
	if err != nil {
		t.Fatalf("editor stats: %v", err)
	}
	if editor["pending_reviews"].(int) != 1 {
		t.Fatalf("pending_reviews %v", editor["pending_reviews"])
	}

	author, err := env.Svc.DashboardStats(env.Ctx, env.Author)
	if err != nil {
		t.Fatalf("author stats: %v", err)
	}
	if author["my_articles"].(int) != 1 || author["pending_reviews"].(int) != 1 {
		t.Fatalf("author stats %v", author)
	}

	if _, err := env.Svc.DashboardStats(env.Ctx, env.Reader); err == nil {
		t.Fatal("reader has no dashboard")
	}
}

func TestAuditTrail(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author)
	setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)

	events, err := env.Svc.ListEvents(env.Ctx, env.Admin, 10, "", "article", "")
	if err != nil {
		t.Fatalf("list events: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected create + update events, got %d", len(events))
	}
	if events[0].Type != "article.updated" || events[1].Type != "article.created" {
		t.Fatalf("event order wrong: %s, %s", events[0].Type, events[1].Type)
	}

	if _, err := env.Svc.ListEvents(env.Ctx, env.Editor, 10, "", "", ""); err == nil {
		t.Fatal("non-admin read the audit log")
	}
}

func TestAdminUserLifecycle(t *testing.T) {
	env := newTestEnv(t)

	u, err := env.Svc.ProvisionUser(env.Ctx, env.Admin, "temp@example.com", "temp", "password-9", domain.RoleAuthor)
	if err != nil {
		t.Fatalf("provision: %v", err)
	}
	if _, err := env.Svc.ProvisionUser(env.Ctx, env.Editor, "x@example.com", "x", "password-9", domain.RoleReader); err == nil {
		t.Fatal("editor provisioned a user")
	}

	got, err := env.Svc.GetUser(env.Ctx, env.Admin, u.ID)
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if got.Email != "temp@example.com" || !got.IsActive {
		t.Fatalf("unexpected user %+v", got)
	}
	if _, err := env.Svc.GetUser(env.Ctx, env.Editor, u.ID); err == nil {
		t.Fatal("non-admin read a user")
	}

	// update: new email normalized, new password re-hashed
	email := "Temp2@Example.com"
	password := "password-10"
	updated, err := env.Svc.UpdateUser(env.Ctx, env.Admin, u.ID, workflow.UserUpdateOptions{
		Email:    &email,
		Password: &password,
	})
	if err != nil {
		t.Fatalf("update user: %v", err)
	}
	if updated.Email != "temp2@example.com" {
		t.Fatalf("email not normalized: %s", updated.Email)
	}
	if _, err := env.Svc.Authenticate(env.Ctx, "temp2@example.com", "password-10"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
	if _, err := env.Svc.Authenticate(env.Ctx, "temp2@example.com", "password-9"); !errors.Is(err, workflow.ErrInvalidCredentials) {
		t.Fatalf("old password still works: %v", err)
	}

	// an email collision with another account is rejected
	taken := "reader@example.com"
	if _, err := env.Svc.UpdateUser(env.Ctx, env.Admin, u.ID, workflow.UserUpdateOptions{Email: &taken}); err == nil {
		t.Fatal("reused another account's email")
	}

	off, err := env.Svc.ToggleUserActivation(env.Ctx, env.Admin, u.ID)
	if err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if off.IsActive {
		t.Fatal("toggle left the account active")
	}
	on, err := env.Svc.ToggleUserActivation(env.Ctx, env.Admin, u.ID)
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if !on.IsActive {
		t.Fatal("second toggle left the account inactive")
	}
	if _, err := env.Svc.ToggleUserActivation(env.Ctx, env.Editor, u.ID); err == nil {
		t.Fatal("non-admin toggled activation")
	}

	if err := env.Svc.DeleteUser(env.Ctx, env.Editor, u.ID); err == nil {
		t.Fatal("non-admin deleted a user")
	}
	if err := env.Svc.DeleteUser(env.Ctx, env.Admin, u.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if _, err := env.Svc.GetUser(env.Ctx, env.Admin, u.ID); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("deleted user still readable: %v", err)
	}
}

func TestListMyComments(t *testing.T) {
	env := newTestEnv(t)
	a := draft(t, env, env.Author)
	setStatus(t, env, env.Author, a.ID, domain.StatusPendingReview)
	setStatus(t, env, env.Editor, a.ID, domain.StatusPublished)

	if _, err := env.Svc.AddComment(env.Ctx, env.Reader, a.ID, "first"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	env.advance(time.Minute)
	if _, err := env.Svc.AddComment(env.Ctx, env.Reader, a.ID, "second"); err != nil {
		t.Fatalf("comment: %v", err)
	}
	if _, err := env.Svc.AddComment(env.Ctx, env.Author2, a.ID, "someone else"); err != nil {
		t.Fatalf("comment: %v", err)
	}

	mine, err := env.Svc.ListMyComments(env.Ctx, env.Reader)
	if err != nil {
		t.Fatalf("list my comments: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(mine))
	}
	// newest first
	if mine[0].Content != "second" || mine[1].Content != "first" {
		t.Fatalf("order wrong: %s, %s", mine[0].Content, mine[1].Content)
	}
}

func TestCategoryBySlug(t *testing.T) {
	env := newTestEnv(t)
	c, err := env.Svc.CreateCategory(env.Ctx, env.Admin, domain.Category{Name: "World", Slug: "world"})
	if err != nil {
		t.Fatalf("create category: %v", err)
	}
	got, err := env.Svc.GetCategoryBySlug(env.Ctx, "world")
	if err != nil {
		t.Fatalf("by slug: %v", err)
	}
	if got.ID != c.ID {
		t.Fatalf("wrong category %d", got.ID)
	}
	if _, err := env.Svc.GetCategoryBySlug(env.Ctx, "ghost"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("missing slug: %v", err)
	}
}
