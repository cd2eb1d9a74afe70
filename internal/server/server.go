package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"newsdesk/internal/domain"
	"newsdesk/internal/repo"
	"newsdesk/internal/workflow"
)

// Config for the HTTP API handler.
type Config struct {
	Service  workflow.Service
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"invalid_transition"`
	Message string         `json:"message" example:"author cannot change status from draft to published"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the Newsdesk API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v1"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(cfg.Auth))
	hcfg := huma.DefaultConfig("Newsdesk API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerAuth(group, cfg.Service, cfg.Auth)
	registerArticles(group, cfg.Service)
	registerCategories(group, cfg.Service)
	registerComments(group, cfg.Service)
	registerEngagement(group, cfg.Service)
	registerMedia(group, cfg.Service)
	registerUsers(group, cfg.Service)
	registerStats(group, cfg.Service)
	registerEvents(group, cfg.Service)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// handleError maps workflow and repo errors onto the wire envelope. Invalid
// transitions are client mistakes, not permission failures, so they map to
// 400 rather than 403.
func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	var it workflow.InvalidTransitionError
	if errors.As(err, &it) {
		return newAPIError(http.StatusBadRequest, "invalid_transition", err.Error(), map[string]any{
			"role": string(it.Role),
			"from": string(it.From),
			"to":   string(it.To),
		})
	}
	var pd workflow.PermissionDeniedError
	if errors.As(err, &pd) {
		return newAPIError(http.StatusForbidden, "forbidden", err.Error(), nil)
	}
	var ve workflow.ValidationError
	if errors.As(err, &ve) {
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
	}
	if errors.Is(err, workflow.ErrInvalidCredentials) {
		return newAPIError(http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
	}
	if errors.Is(err, repo.ErrNotFound) {
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	}
	return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

// optionalParam wraps a query parameter so its presence can be detected,
// following huma's documented ParamWrapper/ParamReactor pattern (pointer
// fields are not supported for path/query/header parameters).
type optionalParam[T any] struct {
	Value T
	IsSet bool
}

func (o *optionalParam[T]) Receiver() reflect.Value {
	return reflect.ValueOf(o).Elem().Field(0)
}

func (o *optionalParam[T]) OnParamSet(isSet bool, parsed any) {
	o.IsSet = isSet
}

func parseSort(s string) (repo.SortOrder, huma.StatusError) {
	switch s {
	case "":
		return repo.SortLatest, nil
	case string(repo.SortLatest), string(repo.SortOldest), string(repo.SortLikes), string(repo.SortViews):
		return repo.SortOrder(s), nil
	}
	return "", newAPIError(http.StatusBadRequest, "bad_request", fmt.Sprintf("unknown sort %q", s), nil)
}

func clock(svc workflow.Service) time.Time {
	if svc.Now != nil {
		return svc.Now()
	}
	return time.Now()
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var once sync.Once
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		once.Do(func() {
			spec, _ = json.Marshal(api.OpenAPI())
		})
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Newsdesk API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerAuth(api huma.API, svc workflow.Service, auth AuthConfig) {
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Register a reader account",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body RegisterRequest `json:"body"`
	}) (*struct {
		Body TokenResponse `json:"body"`
	}, error) {
		u, err := svc.RegisterUser(ctx, input.Body.Email, input.Body.Username, input.Body.Password)
		if err != nil {
			return nil, handleError(err)
		}
		token, err := IssueToken(auth, u.ID, u.Role, clock(svc))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TokenResponse `json:"body"`
		}{Body: TokenResponse{Token: token, User: toUserResponse(u)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Exchange credentials for a token",
	}, func(ctx context.Context, input *struct {
		Body LoginRequest `json:"body"`
	}) (*struct {
		Body TokenResponse `json:"body"`
	}, error) {
		u, err := svc.Authenticate(ctx, input.Body.Email, input.Body.Password)
		if err != nil {
			return nil, handleError(err)
		}
		token, err := IssueToken(auth, u.ID, u.Role, clock(svc))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body TokenResponse `json:"body"`
		}{Body: TokenResponse{Token: token, User: toUserResponse(u)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Current actor",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body domain.Actor `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		return &struct {
			Body domain.Actor `json:"body"`
		}{Body: actor}, nil
	})
}

func registerArticles(api huma.API, svc workflow.Service) {
	type articlePath struct {
		ArticleID string `path:"article_id"`
	}

	huma.Register(api, huma.Operation{
		OperationID:   "create-article",
		Method:        http.MethodPost,
		Path:          "/articles",
		Summary:       "Create a draft article",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body CreateArticleRequest `json:"body"`
	}) (*struct {
		Body domain.Article `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		opts := workflow.ArticleCreateOptions{
			Title:      input.Body.Title,
			Slug:       input.Body.Slug,
			Summary:    optional(input.Body.Summary),
			Body:       optional(input.Body.Body),
			PublishAt:  optional(input.Body.PublishAt),
			SourceURL:  optional(input.Body.SourceURL),
			CategoryID: input.Body.CategoryID,
		}
		a, err := svc.CreateArticle(ctx, actor, opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Article `json:"body"`
		}{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-articles",
		Method:      http.MethodGet,
		Path:        "/articles",
		Summary:     "List articles visible to the caller",
	}, func(ctx context.Context, input *struct {
		Status   string `query:"status" enum:"draft,pending_review,rejected,published,archived"`
		AuthorID string `query:"author_id"`
		Page     int    `query:"page"`
		Limit    int    `query:"limit"`
	}) (*struct {
		Body ArticleListResponse `json:"body"`
	}, error) {
		viewer := viewerFromContext(ctx)
		items, total, err := svc.ListArticles(ctx, viewer, workflow.ListOptions{
			Status:   domain.Status(input.Status),
			AuthorID: input.AuthorID,
			Page:     input.Page,
			Limit:    input.Limit,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return listResponse(items, total, input.Page, input.Limit), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "search-articles",
		Method:      http.MethodGet,
		Path:        "/articles/search",
		Summary:     "Search articles",
	}, func(ctx context.Context, input *struct {
		Query      string               `query:"q"`
		CategoryID optionalParam[int64] `query:"category_id"`
		AuthorID   string               `query:"author_id"`
		Status     string               `query:"status" enum:"draft,pending_review,rejected,published,archived"`
		Sort       string               `query:"sort" enum:"latest,oldest,likes,views"`
		Page       int                  `query:"page"`
		Limit      int                  `query:"limit"`
	}) (*struct {
		Body ArticleListResponse `json:"body"`
	}, error) {
		sort, sortErr := parseSort(input.Sort)
		if sortErr != nil {
			return nil, sortErr
		}
		viewer := viewerFromContext(ctx)
		var categoryID *int64
		if input.CategoryID.IsSet {
			categoryID = &input.CategoryID.Value
		}
		items, total, err := svc.SearchArticles(ctx, viewer, workflow.SearchOptions{
			Query:      input.Query,
			CategoryID: categoryID,
			AuthorID:   input.AuthorID,
			Status:     domain.Status(input.Status),
			Sort:       sort,
			Page:       input.Page,
			Limit:      input.Limit,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return listResponse(items, total, input.Page, input.Limit), nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-article",
		Method:      http.MethodGet,
		Path:        "/articles/{article_id}",
		Summary:     "Fetch a single article",
	}, func(ctx context.Context, input *articlePath) (*struct {
		Body domain.Article `json:"body"`
	}, error) {
		a, err := svc.GetArticle(ctx, viewerFromContext(ctx), input.ArticleID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Article `json:"body"`
		}{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-article-by-slug",
		Method:      http.MethodGet,
		Path:        "/articles/slug/{slug}",
		Summary:     "Fetch a single article by slug",
	}, func(ctx context.Context, input *struct {
		Slug string `path:"slug"`
	}) (*struct {
		Body domain.Article `json:"body"`
	}, error) {
		a, err := svc.GetArticleBySlug(ctx, viewerFromContext(ctx), input.Slug)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Article `json:"body"`
		}{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-article",
		Method:      http.MethodPatch,
		Path:        "/articles/{article_id}",
		Summary:     "Update article fields or status",
	}, func(ctx context.Context, input *struct {
		ArticleID string               `path:"article_id"`
		Body      UpdateArticleRequest `json:"body"`
	}) (*struct {
		Body domain.Article `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		opts := workflow.ArticleUpdateOptions{
			Title:           input.Body.Title,
			Slug:            input.Body.Slug,
			Summary:         input.Body.Summary,
			Body:            input.Body.Body,
			PublishAt:       input.Body.PublishAt,
			SourceURL:       input.Body.SourceURL,
			CategoryID:      input.Body.CategoryID,
			RejectionReason: input.Body.RejectionReason,
		}
		if input.Body.Status != nil {
			status := domain.Status(*input.Body.Status)
			opts.Status = &status
		}
		a, err := svc.UpdateArticle(ctx, actor, input.ArticleID, opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Article `json:"body"`
		}{Body: a}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-article",
		Method:        http.MethodDelete,
		Path:          "/articles/{article_id}",
		Summary:       "Delete an article",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *articlePath) (*struct{}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := svc.DeleteArticle(ctx, actor, input.ArticleID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerCategories(api huma.API, svc workflow.Service) {
	type categoryPath struct {
		CategoryID int64 `path:"category_id"`
	}

	huma.Register(api, huma.Operation{
		OperationID: "list-categories",
		Method:      http.MethodGet,
		Path:        "/categories",
		Summary:     "List categories",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Category `json:"body"`
	}, error) {
		items, err := svc.ListCategories(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Category `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-category",
		Method:        http.MethodPost,
		Path:          "/categories",
		Summary:       "Create a category",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body CreateCategoryRequest `json:"body"`
	}) (*struct {
		Body domain.Category `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		c, err := svc.CreateCategory(ctx, actor, domain.Category{
			Name:        input.Body.Name,
			Slug:        input.Body.Slug,
			Description: input.Body.Description,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Category `json:"body"`
		}{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-category",
		Method:      http.MethodGet,
		Path:        "/categories/{category_id}",
		Summary:     "Fetch a category",
	}, func(ctx context.Context, input *categoryPath) (*struct {
		Body domain.Category `json:"body"`
	}, error) {
		c, err := svc.GetCategory(ctx, input.CategoryID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Category `json:"body"`
		}{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-category-by-slug",
		Method:      http.MethodGet,
		Path:        "/categories/slug/{slug}",
		Summary:     "Fetch a category by slug",
	}, func(ctx context.Context, input *struct {
		Slug string `path:"slug"`
	}) (*struct {
		Body domain.Category `json:"body"`
	}, error) {
		c, err := svc.GetCategoryBySlug(ctx, input.Slug)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Category `json:"body"`
		}{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-category",
		Method:      http.MethodPatch,
		Path:        "/categories/{category_id}",
		Summary:     "Update a category",
	}, func(ctx context.Context, input *struct {
		CategoryID int64                 `path:"category_id"`
		Body       UpdateCategoryRequest `json:"body"`
	}) (*struct {
		Body domain.Category `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		c, err := svc.UpdateCategory(ctx, actor, domain.Category{
			ID:          input.CategoryID,
			Name:        optional(input.Body.Name),
			Slug:        optional(input.Body.Slug),
			Description: optional(input.Body.Description),
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Category `json:"body"`
		}{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-category",
		Method:        http.MethodDelete,
		Path:          "/categories/{category_id}",
		Summary:       "Delete a category",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *categoryPath) (*struct{}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := svc.DeleteCategory(ctx, actor, input.CategoryID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-category-articles",
		Method:      http.MethodGet,
		Path:        "/categories/{category_id}/articles",
		Summary:     "Published articles in a category",
	}, func(ctx context.Context, input *struct {
		CategoryID int64 `path:"category_id"`
		Page       int   `query:"page"`
		Limit      int   `query:"limit"`
	}) (*struct {
		Body ArticleListResponse `json:"body"`
	}, error) {
		items, total, err := svc.ListArticlesByCategory(ctx, input.CategoryID, input.Page, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		return listResponse(items, total, input.Page, input.Limit), nil
	})
}

func registerComments(api huma.API, svc workflow.Service) {
	huma.Register(api, huma.Operation{
		OperationID:   "add-comment",
		Method:        http.MethodPost,
		Path:          "/articles/{article_id}/comments",
		Summary:       "Comment on an article",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		ArticleID string               `path:"article_id"`
		Body      CreateCommentRequest `json:"body"`
	}) (*struct {
		Body domain.Comment `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		c, err := svc.AddComment(ctx, actor, input.ArticleID, input.Body.Content)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Comment `json:"body"`
		}{Body: c}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-comments",
		Method:      http.MethodGet,
		Path:        "/articles/{article_id}/comments",
		Summary:     "List comments on an article",
	}, func(ctx context.Context, input *struct {
		ArticleID string `path:"article_id"`
	}) (*struct {
		Body []domain.Comment `json:"body"`
	}, error) {
		items, err := svc.ListComments(ctx, viewerFromContext(ctx), input.ArticleID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Comment `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-my-comments",
		Method:      http.MethodGet,
		Path:        "/comments/me",
		Summary:     "List the caller's own comments",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Comment `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		items, err := svc.ListMyComments(ctx, actor)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Comment `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-comment",
		Method:        http.MethodDelete,
		Path:          "/comments/{comment_id}",
		Summary:       "Delete a comment",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		CommentID string `path:"comment_id"`
	}) (*struct{}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := svc.DeleteComment(ctx, actor, input.CommentID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerEngagement(api huma.API, svc workflow.Service) {
	type articlePath struct {
		ArticleID string `path:"article_id"`
	}

	huma.Register(api, huma.Operation{
		OperationID:   "like-article",
		Method:        http.MethodPost,
		Path:          "/articles/{article_id}/like",
		Summary:       "Like an article",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *articlePath) (*struct {
		Body domain.Like `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		l, err := svc.LikeArticle(ctx, actor, input.ArticleID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Like `json:"body"`
		}{Body: l}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "unlike-article",
		Method:        http.MethodDelete,
		Path:          "/articles/{article_id}/like",
		Summary:       "Remove a like",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *articlePath) (*struct{}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := svc.UnlikeArticle(ctx, actor, input.ArticleID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "bookmark-article",
		Method:        http.MethodPost,
		Path:          "/articles/{article_id}/bookmark",
		Summary:       "Bookmark an article",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *articlePath) (*struct {
		Body domain.Bookmark `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		b, err := svc.BookmarkArticle(ctx, actor, input.ArticleID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Bookmark `json:"body"`
		}{Body: b}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "remove-bookmark",
		Method:        http.MethodDelete,
		Path:          "/articles/{article_id}/bookmark",
		Summary:       "Remove a bookmark",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *articlePath) (*struct{}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := svc.RemoveBookmark(ctx, actor, input.ArticleID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-bookmarks",
		Method:      http.MethodGet,
		Path:        "/me/bookmarks",
		Summary:     "List the caller's bookmarks",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Bookmark `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		items, err := svc.ListBookmarks(ctx, actor)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Bookmark `json:"body"`
		}{Body: items}, nil
	})
}

func registerMedia(api huma.API, svc workflow.Service) {
	huma.Register(api, huma.Operation{
		OperationID:   "add-media",
		Method:        http.MethodPost,
		Path:          "/articles/{article_id}/media",
		Summary:       "Attach media metadata to an article",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		ArticleID string             `path:"article_id"`
		Body      CreateMediaRequest `json:"body"`
	}) (*struct {
		Body domain.Media `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		m, err := svc.AddMedia(ctx, actor, input.ArticleID, workflow.MediaCreateOptions{
			URL:      input.Body.URL,
			MimeType: input.Body.MimeType,
			Size:     input.Body.Size,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body domain.Media `json:"body"`
		}{Body: m}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-media",
		Method:      http.MethodGet,
		Path:        "/articles/{article_id}/media",
		Summary:     "List media attached to an article",
	}, func(ctx context.Context, input *struct {
		ArticleID string `path:"article_id"`
	}) (*struct {
		Body []domain.Media `json:"body"`
	}, error) {
		items, err := svc.ListMedia(ctx, viewerFromContext(ctx), input.ArticleID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Media `json:"body"`
		}{Body: items}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-media",
		Method:        http.MethodDelete,
		Path:          "/media/{media_id}",
		Summary:       "Delete a media record",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		MediaID string `path:"media_id"`
	}) (*struct{}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := svc.DeleteMedia(ctx, actor, input.MediaID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerUsers(api huma.API, svc workflow.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-users",
		Method:      http.MethodGet,
		Path:        "/users",
		Summary:     "List users",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []UserResponse `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		items, err := svc.ListUsers(ctx, actor)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []UserResponse `json:"body"`
		}{Body: toUserResponses(items)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-user",
		Method:        http.MethodPost,
		Path:          "/users",
		Summary:       "Provision a user with an explicit role",
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *struct {
		Body CreateUserRequest `json:"body"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		u, err := svc.ProvisionUser(ctx, actor, input.Body.Email, input.Body.Username, input.Body.Password, domain.Role(input.Body.Role))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: toUserResponse(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/users/{user_id}",
		Summary:     "Fetch a user",
	}, func(ctx context.Context, input *struct {
		UserID string `path:"user_id"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		u, err := svc.GetUser(ctx, actor, input.UserID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: toUserResponse(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-user",
		Method:      http.MethodPatch,
		Path:        "/users/{user_id}",
		Summary:     "Update a user account",
	}, func(ctx context.Context, input *struct {
		UserID string            `path:"user_id"`
		Body   UpdateUserRequest `json:"body"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		opts := workflow.UserUpdateOptions{
			Email:    input.Body.Email,
			Username: input.Body.Username,
			Password: input.Body.Password,
			IsActive: input.Body.IsActive,
		}
		if input.Body.Role != nil {
			role := domain.Role(*input.Body.Role)
			opts.Role = &role
		}
		u, err := svc.UpdateUser(ctx, actor, input.UserID, opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: toUserResponse(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "toggle-user-activation",
		Method:      http.MethodPut,
		Path:        "/users/{user_id}/activate",
		Summary:     "Toggle a user's active flag",
	}, func(ctx context.Context, input *struct {
		UserID string `path:"user_id"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		u, err := svc.ToggleUserActivation(ctx, actor, input.UserID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: toUserResponse(u)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-user",
		Method:        http.MethodDelete,
		Path:          "/users/{user_id}",
		Summary:       "Delete a user account",
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *struct {
		UserID string `path:"user_id"`
	}) (*struct{}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := svc.DeleteUser(ctx, actor, input.UserID); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "update-user-role",
		Method:      http.MethodPatch,
		Path:        "/users/{user_id}/role",
		Summary:     "Change a user's role",
	}, func(ctx context.Context, input *struct {
		UserID string                `path:"user_id"`
		Body   UpdateUserRoleRequest `json:"body"`
	}) (*struct {
		Body UserResponse `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		u, err := svc.UpdateUserRole(ctx, actor, input.UserID, domain.Role(input.Body.Role))
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body UserResponse `json:"body"`
		}{Body: toUserResponse(u)}, nil
	})
}

func registerStats(api huma.API, svc workflow.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "dashboard-stats",
		Method:      http.MethodGet,
		Path:        "/dashboard/stats",
		Summary:     "Role-scoped dashboard counters",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]any `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		stats, err := svc.DashboardStats(ctx, actor)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body map[string]any `json:"body"`
		}{Body: stats}, nil
	})
}

func registerEvents(api huma.API, svc workflow.Service) {
	huma.Register(api, huma.Operation{
		OperationID: "list-events",
		Method:      http.MethodGet,
		Path:        "/events",
		Summary:     "Tail the audit log",
	}, func(ctx context.Context, input *struct {
		Limit      int    `query:"limit"`
		Type       string `query:"type"`
		EntityKind string `query:"entity_kind"`
		EntityID   string `query:"entity_id"`
	}) (*struct {
		Body []domain.Event `json:"body"`
	}, error) {
		actor, authErr := requireActor(ctx)
		if authErr != nil {
			return nil, authErr
		}
		items, err := svc.ListEvents(ctx, actor, input.Limit, input.Type, input.EntityKind, input.EntityID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []domain.Event `json:"body"`
		}{Body: items}, nil
	})
}

func listResponse(items []domain.Article, total, page, limit int) *struct {
	Body ArticleListResponse `json:"body"`
} {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if items == nil {
		items = []domain.Article{}
	}
	return &struct {
		Body ArticleListResponse `json:"body"`
	}{Body: ArticleListResponse{Items: items, Total: total, Page: page, Limit: limit}}
}

func optional(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
