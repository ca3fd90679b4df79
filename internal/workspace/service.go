// Package workspace owns the workspace lifecycle and the member roster:
// creation with the paired owner membership, owner-only update/delete with
// recursive cleanup of everything underneath, and add/remove member with the
// admin-or-owner and owner-protection rules.
package workspace

import (
	"context"
	"errors"

	"github.com/hugh/team-hub/internal/access"
	"github.com/hugh/team-hub/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrWorkspaceNotFound = errors.New("workspace not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrMemberNotFound    = errors.New("member not found")
	ErrForbidden         = errors.New("not authorized")
	ErrAlreadyMember     = errors.New("user is already a member")
	ErrOwnerRemoval      = errors.New("cannot remove workspace owner")
)

type Service struct {
	db     *gorm.DB
	access *access.Resolver
}

func NewService(db *gorm.DB, resolver *access.Resolver) *Service {
	return &Service{db: db, access: resolver}
}

type CreateInput struct {
	Name        string
	Description string
}

// UpdateInput carries optional fields; nil means "not supplied", which is
// distinct from an explicit empty value.
type UpdateInput struct {
	Name        *string
	Description *string
}

type MemberDetail struct {
	ID              uint              `json:"id"`
	UserID          uint              `json:"user_id"`
	Role            models.MemberRole `json:"role"`
	JoinedAt        string            `json:"joined_at"`
	UserEmail       string            `json:"user_email,omitempty"`
	UserDisplayName string            `json:"user_display_name,omitempty"`
}

// Create inserts the workspace and the owner's admin membership in one
// transaction. No workspace is ever observable without its paired membership.
func (s *Service) Create(ctx context.Context, ownerID uint, input CreateInput) (*models.Workspace, error) {
	workspace := models.Workspace{
		Name:        input.Name,
		Description: input.Description,
		OwnerID:     ownerID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&workspace).Error; err != nil {
			return err
		}

		member := models.WorkspaceMember{
			WorkspaceID: workspace.ID,
			UserID:      ownerID,
			Role:        models.MemberRoleAdmin,
		}
		return tx.Create(&member).Error
	})
	if err != nil {
		return nil, err
	}

	return &workspace, nil
}

// List returns workspaces the user owns plus those they joined, deduplicated
// by id with owned workspaces first.
func (s *Service) List(ctx context.Context, userID uint) ([]models.Workspace, error) {
	var owned []models.Workspace
	if err := s.db.WithContext(ctx).Where("owner_id = ?", userID).Find(&owned).Error; err != nil {
		return nil, err
	}

	var memberIDs []uint
	if err := s.db.WithContext(ctx).Model(&models.WorkspaceMember{}).
		Where("user_id = ?", userID).
		Pluck("workspace_id", &memberIDs).Error; err != nil {
		return nil, err
	}

	var joined []models.Workspace
	if len(memberIDs) > 0 {
		if err := s.db.WithContext(ctx).Where("id IN ?", memberIDs).Find(&joined).Error; err != nil {
			return nil, err
		}
	}

	seen := make(map[uint]bool, len(owned)+len(joined))
	result := make([]models.Workspace, 0, len(owned)+len(joined))
	for _, w := range append(owned, joined...) {
		if !seen[w.ID] {
			seen[w.ID] = true
			result = append(result, w)
		}
	}
	return result, nil
}

// Get returns the workspace and its member roster with user details.
// Missing workspace is ErrWorkspaceNotFound; existing but inaccessible is
// ErrForbidden, in that order.
func (s *Service) Get(ctx context.Context, userID, workspaceID uint) (*models.Workspace, []MemberDetail, error) {
	var workspace models.Workspace
	if err := s.db.WithContext(ctx).First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrWorkspaceNotFound
		}
		return nil, nil, err
	}

	ok, err := s.access.CanAccessWorkspace(ctx, userID, workspaceID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrForbidden
	}

	var members []models.WorkspaceMember
	if err := s.db.WithContext(ctx).
		Preload("User").
		Where("workspace_id = ?", workspaceID).
		Find(&members).Error; err != nil {
		return nil, nil, err
	}

	details := make([]MemberDetail, len(members))
	for i, m := range members {
		details[i] = MemberDetail{
			ID:       m.ID,
			UserID:   m.UserID,
			Role:     m.Role,
			JoinedAt: m.JoinedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
		if m.User != nil {
			details[i].UserEmail = m.User.Email
			details[i].UserDisplayName = m.User.DisplayName
		}
	}

	return &workspace, details, nil
}

// Update applies only the supplied fields. Owner-only.
func (s *Service) Update(ctx context.Context, userID, workspaceID uint, input UpdateInput) (*models.Workspace, error) {
	var workspace models.Workspace
	if err := s.db.WithContext(ctx).First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}

	if workspace.OwnerID != userID {
		return nil, ErrForbidden
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(&workspace).Updates(updates).Error; err != nil {
			return nil, err
		}
	}

	return &workspace, nil
}

// Delete removes the workspace and everything beneath it: comments, tasks,
// documents, projects, and memberships, all in one transaction. Owner-only.
func (s *Service) Delete(ctx context.Context, userID, workspaceID uint) error {
	var workspace models.Workspace
	if err := s.db.WithContext(ctx).First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return err
	}

	if workspace.OwnerID != userID {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var projectIDs []uint
		if err := tx.Model(&models.Project{}).
			Where("workspace_id = ?", workspaceID).
			Pluck("id", &projectIDs).Error; err != nil {
			return err
		}

		if len(projectIDs) > 0 {
			var taskIDs []uint
			if err := tx.Model(&models.Task{}).
				Where("project_id IN ?", projectIDs).
				Pluck("id", &taskIDs).Error; err != nil {
				return err
			}

			if len(taskIDs) > 0 {
				if err := tx.Where("task_id IN ?", taskIDs).Delete(&models.Comment{}).Error; err != nil {
					return err
				}
				if err := tx.Where("id IN ?", taskIDs).Delete(&models.Task{}).Error; err != nil {
					return err
				}
			}

			if err := tx.Where("project_id IN ?", projectIDs).Delete(&models.Document{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", projectIDs).Delete(&models.Project{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("workspace_id = ?", workspaceID).Delete(&models.WorkspaceMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Workspace{}, workspaceID).Error
	})
}

// AddMember inserts a membership row. Requires admin-or-owner standing;
// missing target user is ErrUserNotFound; an existing row is ErrAlreadyMember.
func (s *Service) AddMember(ctx context.Context, actorID, workspaceID, targetUserID uint, role models.MemberRole) (*MemberDetail, error) {
	var workspace models.Workspace
	if err := s.db.WithContext(ctx).First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, err
	}

	admin, err := s.access.IsWorkspaceAdmin(ctx, actorID, workspaceID)
	if err != nil {
		return nil, err
	}
	if !admin {
		return nil, ErrForbidden
	}

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, targetUserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.WorkspaceMember{}).
		Where("workspace_id = ? AND user_id = ?", workspaceID, targetUserID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyMember
	}

	member := models.WorkspaceMember{
		WorkspaceID: workspaceID,
		UserID:      targetUserID,
		Role:        role,
	}
	if err := s.db.WithContext(ctx).Create(&member).Error; err != nil {
		return nil, err
	}

	return &MemberDetail{
		ID:              member.ID,
		UserID:          member.UserID,
		Role:            member.Role,
		JoinedAt:        member.JoinedAt.Format("2006-01-02T15:04:05Z07:00"),
		UserEmail:       user.Email,
		UserDisplayName: user.DisplayName,
	}, nil
}

// RemoveMember deletes a membership row. Admin-or-owner standing is required
// unless the actor is removing themselves. The owner can never be removed.
func (s *Service) RemoveMember(ctx context.Context, actorID, workspaceID, targetUserID uint) error {
	var workspace models.Workspace
	if err := s.db.WithContext(ctx).First(&workspace, workspaceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return err
	}

	if actorID != targetUserID {
		admin, err := s.access.IsWorkspaceAdmin(ctx, actorID, workspaceID)
		if err != nil {
			return err
		}
		if !admin {
			return ErrForbidden
		}
	}

	if targetUserID == workspace.OwnerID {
		return ErrOwnerRemoval
	}

	result := s.db.WithContext(ctx).
		Where("workspace_id = ? AND user_id = ?", workspaceID, targetUserID).
		Delete(&models.WorkspaceMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}
