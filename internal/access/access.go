// Package access computes whether a user may touch a resource by walking the
// containment chain (comment → task → project → workspace) up to the owning
// workspace and checking ownership or membership there.
//
// The answer is a coarse read/write gate: membership role is not consulted.
// A broken chain (the resource or any ancestor missing) yields false, which
// is deliberately indistinguishable from "exists but not authorized" at this
// layer. Callers that need 404-vs-403 precedence must check existence of the
// addressed entity first, then consult the resolver.
package access

import (
	"context"
	"errors"

	"github.com/hugh/team-hub/internal/database/models"
	"gorm.io/gorm"
)

type Resolver struct {
	db *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{db: db}
}

// CanAccessWorkspace reports whether the user owns the workspace or holds a
// membership row in it, regardless of role.
func (r *Resolver) CanAccessWorkspace(ctx context.Context, userID, workspaceID uint) (bool, error) {
	var workspace models.Workspace
	if err := r.db.WithContext(ctx).First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if workspace.OwnerID == userID {
		return true, nil
	}

	return r.isMember(ctx, userID, workspaceID)
}

// CanAccessProject resolves project → workspace.
func (r *Resolver) CanAccessProject(ctx context.Context, userID, projectID uint) (bool, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return r.CanAccessWorkspace(ctx, userID, project.WorkspaceID)
}

// CanAccessTask resolves task → project → workspace. Comments ride on this:
// a comment is accessible iff its task is.
func (r *Resolver) CanAccessTask(ctx context.Context, userID, taskID uint) (bool, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, taskID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	return r.CanAccessProject(ctx, userID, task.ProjectID)
}

// IsWorkspaceAdmin reports whether the user is the workspace owner or holds
// an admin membership row. This is the standing required to manage members.
func (r *Resolver) IsWorkspaceAdmin(ctx context.Context, userID, workspaceID uint) (bool, error) {
	var workspace models.Workspace
	if err := r.db.WithContext(ctx).First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if workspace.OwnerID == userID {
		return true, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ? AND role = ?", workspaceID, userID, models.MemberRoleAdmin).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AccessibleWorkspaceIDs returns the ids of workspaces the user owns plus
// those they are a member of, deduplicated.
func (r *Resolver) AccessibleWorkspaceIDs(ctx context.Context, userID uint) ([]uint, error) {
	var owned []uint
	if err := r.db.WithContext(ctx).Model(&models.Workspace{}).
		Where("owner_id = ?", userID).
		Pluck("id", &owned).Error; err != nil {
		return nil, err
	}

	var member []uint
	if err := r.db.WithContext(ctx).Model(&models.WorkspaceMember{}).
		Where("user_id = ?", userID).
		Pluck("workspace_id", &member).Error; err != nil {
		return nil, err
	}

	seen := make(map[uint]bool, len(owned)+len(member))
	ids := make([]uint, 0, len(owned)+len(member))
	for _, id := range append(owned, member...) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *Resolver) isMember(ctx context.Context, userID, workspaceID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
