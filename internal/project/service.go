// Package project manages projects and the documents that live inside them.
// Every operation resolves access through the owning workspace before
// touching the store; any workspace member may create, update, or delete.
package project

import (
	"context"
	"errors"

	"github.com/hugh/team-hub/internal/access"
	"github.com/hugh/team-hub/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound  = errors.New("project not found")
	ErrDocumentNotFound = errors.New("document not found")
	ErrForbidden        = errors.New("not authorized")
)

type Service struct {
	db     *gorm.DB
	access *access.Resolver
}

func NewService(db *gorm.DB, resolver *access.Resolver) *Service {
	return &Service{db: db, access: resolver}
}

type CreateInput struct {
	WorkspaceID uint
	Name        string
	Description string
}

type UpdateInput struct {
	Name        *string
	Description *string
}

func (s *Service) Create(ctx context.Context, userID uint, input CreateInput) (*models.Project, error) {
	ok, err := s.access.CanAccessWorkspace(ctx, userID, input.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	project := models.Project{
		WorkspaceID: input.WorkspaceID,
		Name:        input.Name,
		Description: input.Description,
	}
	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns projects in one workspace, or across every accessible
// workspace when workspaceID is zero.
func (s *Service) List(ctx context.Context, userID uint, workspaceID uint) ([]models.Project, error) {
	query := s.db.WithContext(ctx).Model(&models.Project{})

	if workspaceID != 0 {
		ok, err := s.access.CanAccessWorkspace(ctx, userID, workspaceID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
		query = query.Where("workspace_id = ?", workspaceID)
	} else {
		workspaceIDs, err := s.access.AccessibleWorkspaceIDs(ctx, userID)
		if err != nil {
			return nil, err
		}
		if len(workspaceIDs) == 0 {
			return []models.Project{}, nil
		}
		query = query.Where("workspace_id IN ?", workspaceIDs)
	}

	var projects []models.Project
	if err := query.Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Service) Get(ctx context.Context, userID, projectID uint) (*models.Project, error) {
	var project models.Project
	if err := s.db.WithContext(ctx).First(&project, projectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}

	ok, err := s.access.CanAccessWorkspace(ctx, userID, project.WorkspaceID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return &project, nil
}

func (s *Service) Update(ctx context.Context, userID, projectID uint, input UpdateInput) (*models.Project, error) {
	project, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(project).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return project, nil
}

// Delete removes the project with its tasks, their comments, and its
// documents in one transaction.
func (s *Service) Delete(ctx context.Context, userID, projectID uint) error {
	project, err := s.Get(ctx, userID, projectID)
	if err != nil {
		return err
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var taskIDs []uint
		if err := tx.Model(&models.Task{}).
			Where("project_id = ?", project.ID).
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

		if err := tx.Where("project_id = ?", project.ID).Delete(&models.Document{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, project.ID).Error
	})
}

type DocumentCreateInput struct {
	ProjectID uint
	Title     string
	Content   string
}

type DocumentUpdateInput struct {
	Title   *string
	Content *string
}

func (s *Service) CreateDocument(ctx context.Context, userID uint, input DocumentCreateInput) (*models.Document, error) {
	ok, err := s.access.CanAccessProject(ctx, userID, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	doc := models.Document{
		ProjectID: input.ProjectID,
		Title:     input.Title,
		Content:   input.Content,
		CreatedBy: userID,
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *Service) ListDocuments(ctx context.Context, userID, projectID uint) ([]models.Document, error) {
	ok, err := s.access.CanAccessProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	var docs []models.Document
	if err := s.db.WithContext(ctx).
		Preload("Creator").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *Service) GetDocument(ctx context.Context, userID, documentID uint) (*models.Document, error) {
	var doc models.Document
	if err := s.db.WithContext(ctx).Preload("Creator").First(&doc, documentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDocumentNotFound
		}
		return nil, err
	}

	ok, err := s.access.CanAccessProject(ctx, userID, doc.ProjectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}
	return &doc, nil
}

func (s *Service) UpdateDocument(ctx context.Context, userID, documentID uint, input DocumentUpdateInput) (*models.Document, error) {
	doc, err := s.GetDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Content != nil {
		updates["content"] = *input.Content
	}
	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(doc).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func (s *Service) DeleteDocument(ctx context.Context, userID, documentID uint) error {
	doc, err := s.GetDocument(ctx, userID, documentID)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&models.Document{}, doc.ID).Error
}
