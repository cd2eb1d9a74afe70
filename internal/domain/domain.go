package domain

// Role is the single capability set attached to an actor. Roles are not a
// hierarchy: each one carries its own partially-overlapping permissions.
type Role string

const (
	RoleReader Role = "reader"
	RoleAuthor Role = "author"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleReader, RoleAuthor, RoleEditor, RoleAdmin}

func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleAuthor, RoleEditor, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// Privileged reports whether the role carries editorial privileges.
func (r Role) Privileged() bool {
	return r == RoleEditor || r == RoleAdmin
}

// Status is the lifecycle stage of an article.
type Status string

const (
	StatusDraft         Status = "draft"
	StatusPendingReview Status = "pending_review"
	StatusRejected      Status = "rejected"
	StatusPublished     Status = "published"
	StatusArchived      Status = "archived"
)

// Statuses lists every valid article status.
var Statuses = []Status{StatusDraft, StatusPendingReview, StatusRejected, StatusPublished, StatusArchived}

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusPendingReview, StatusRejected, StatusPublished, StatusArchived:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Actor is an authenticated identity with exactly one role.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

type Article struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	Summary         string  `json:"summary,omitempty"`
	Body            string  `json:"body,omitempty"`
	Status          Status  `json:"status" enum:"draft,pending_review,rejected,published,archived"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	PublishAt       *string `json:"publish_at,omitempty" format:"date-time"`
	SourceURL       *string `json:"source_url,omitempty"`
	Views           int     `json:"views"`
	LikesCount      int     `json:"likes_count"`
	AuthorID        string  `json:"author_id"`
	CategoryID      *int64  `json:"category_id,omitempty"`
	CreatedAt       string  `json:"created_at" format:"date-time"`
	UpdatedAt       string  `json:"updated_at" format:"date-time"`
}

type User struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username,omitempty"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role" enum:"reader,author,editor,admin"`
	IsActive     bool   `json:"is_active"`
	CreatedAt    string `json:"created_at" format:"date-time"`
	UpdatedAt    string `json:"updated_at" format:"date-time"`
}

// Actor returns the user's workflow identity.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

type Category struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
}

type Comment struct {
	ID        string `json:"id"`
	ArticleID string `json:"article_id"`
	UserID    string `json:"user_id"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at" format:"date-time"`
	UpdatedAt string `json:"updated_at" format:"date-time"`
}

type Like struct {
	ID        string `json:"id"`
	ArticleID string `json:"article_id"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type Bookmark struct {
	ID        string `json:"id"`
	ArticleID string `json:"article_id"`
	UserID    string `json:"user_id"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type Media struct {
	ID         string `json:"id"`
	ArticleID  string `json:"article_id"`
	URL        string `json:"url"`
	MimeType   string `json:"mime_type,omitempty"`
	Size       int64  `json:"size,omitempty"`
	UploadedAt string `json:"uploaded_at" format:"date-time"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}
