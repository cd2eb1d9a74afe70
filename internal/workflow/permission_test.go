package workflow_test

import (
	"testing"

	"newsdesk/internal/domain"
	"newsdesk/internal/workflow"
)

func TestCanEdit(t *testing.T) {
	cases := []struct {
		name   string
		viewer domain.Actor
		want   bool
	}{
		{"owner", domain.Actor{ID: ownerID, Role: domain.RoleAuthor}, true},
		{"other author", domain.Actor{ID: "a2", Role: domain.RoleAuthor}, false},
		{"editor", domain.Actor{ID: "e1", Role: domain.RoleEditor}, true},
		{"admin", domain.Actor{ID: "adm", Role: domain.RoleAdmin}, true},
		{"reader", domain.Actor{ID: "r1", Role: domain.RoleReader}, false},
		{"reader owner", domain.Actor{ID: ownerID, Role: domain.RoleReader}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := workflow.CanEdit(tc.viewer, ownerID); got != tc.want {
				t.Fatalf("CanEdit = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCanDelete(t *testing.T) {
	owner := domain.Actor{ID: ownerID, Role: domain.RoleAuthor}
	editor := domain.Actor{ID: "e1", Role: domain.RoleEditor}
	admin := domain.Actor{ID: "adm", Role: domain.RoleAdmin}
	stranger := domain.Actor{ID: "a2", Role: domain.RoleAuthor}

	for _, status := range domain.Statuses {
		if !workflow.CanDelete(editor, ownerID, status) {
			t.Errorf("editor blocked from deleting %s", status)
		}
		if !workflow.CanDelete(admin, ownerID, status) {
			t.Errorf("admin blocked from deleting %s", status)
		}
		if workflow.CanDelete(stranger, ownerID, status) {
			t.Errorf("stranger deleted %s", status)
		}
		// owners may delete drafts only; once submitted the article is out
		// of their hands
		want := status == domain.StatusDraft
		if got := workflow.CanDelete(owner, ownerID, status); got != want {
			t.Errorf("owner delete %s = %v, want %v", status, got, want)
		}
	}
}
