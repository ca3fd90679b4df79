package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hugh/team-hub/internal/access"
	"github.com/hugh/team-hub/internal/api/handlers"
	"github.com/hugh/team-hub/internal/api/middleware"
	"github.com/hugh/team-hub/internal/database/models"
	"github.com/hugh/team-hub/internal/testutil"
	"github.com/hugh/team-hub/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupWorkspaceTestRouter(t *testing.T) (*chi.Mux, *testutil.TestSetup) {
	tc := testutil.NewTestContext(t)

	r := chi.NewRouter()
	r.Use(middleware.Auth(tc.JWTService))

	svc := workspace.NewService(tc.DB, access.NewResolver(tc.DB))
	handler := handlers.NewWorkspaceHandler(svc)
	r.Route("/api/workspaces", func(r chi.Router) {
		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Get("/{id}", handler.Get)
		r.Patch("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
		r.Post("/{id}/members", handler.AddMember)
		r.Delete("/{id}/members/{userID}", handler.RemoveMember)
	})

	return r, tc
}

func TestWorkspaceHandler_Create(t *testing.T) {
	router, tc := setupWorkspaceTestRouter(t)
	defer tc.Cleanup()

	tests := []struct {
		name       string
		body       map[string]interface{}
		wantStatus int
	}{
		{
			name:       "valid workspace",
			body:       map[string]interface{}{"name": "Engineering", "description": "Core team"},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "missing name",
			body:       map[string]interface{}{"description": "No name"},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.AuthenticatedRequest(t, "POST", "/api/workspaces", tt.body, tc.Token)
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)

			if tt.wantStatus == http.StatusCreated {
				var resp handlers.WorkspaceResponse
				testutil.ParseJSONResponse(t, rr, &resp)
				assert.NotZero(t, resp.ID)
				assert.Equal(t, tc.User.ID, resp.OwnerID)
			}
		})
	}

	t.Run("requires auth", func(t *testing.T) {
		req := testutil.UnauthenticatedRequest(t, "POST", "/api/workspaces", map[string]interface{}{"name": "X"})
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

func TestWorkspaceHandler_Get(t *testing.T) {
	router, tc := setupWorkspaceTestRouter(t)
	defer tc.Cleanup()

	ws := testutil.CreateTestWorkspace(t, tc.DB, tc.User)

	stranger := testutil.CreateTestUser(t, tc.DB)
	strangerToken := testutil.GenerateTestToken(t, tc.JWTService, stranger)

	t.Run("owner sees workspace with members", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", fmt.Sprintf("/api/workspaces/%d", ws.ID), nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp handlers.WorkspaceDetailResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, ws.ID, resp.ID)
		require.Len(t, resp.Members, 1)
		assert.Equal(t, models.MemberRoleAdmin, resp.Members[0].Role)
	})

	t.Run("non-member gets 403", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", fmt.Sprintf("/api/workspaces/%d", ws.ID), nil, strangerToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("missing workspace gets 404, even for non-member", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "GET", "/api/workspaces/99999", nil, strangerToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestWorkspaceHandler_Members(t *testing.T) {
	router, tc := setupWorkspaceTestRouter(t)
	defer tc.Cleanup()

	ws := testutil.CreateTestWorkspace(t, tc.DB, tc.User)

	viewer := testutil.CreateTestUser(t, tc.DB)
	viewerToken := testutil.GenerateTestToken(t, tc.JWTService, viewer)
	testutil.AddTestMember(t, tc.DB, ws, viewer, models.MemberRoleViewer)

	candidate := testutil.CreateTestUser(t, tc.DB)

	memberPath := fmt.Sprintf("/api/workspaces/%d/members", ws.ID)

	t.Run("viewer cannot add members", func(t *testing.T) {
		body := map[string]interface{}{"user_id": candidate.ID}
		req := testutil.AuthenticatedRequest(t, "POST", memberPath, body, viewerToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("owner adds member", func(t *testing.T) {
		body := map[string]interface{}{"user_id": candidate.ID, "role": "member"}
		req := testutil.AuthenticatedRequest(t, "POST", memberPath, body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		var resp workspace.MemberDetail
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, candidate.ID, resp.UserID)
	})

	t.Run("duplicate add is 400", func(t *testing.T) {
		body := map[string]interface{}{"user_id": candidate.ID}
		req := testutil.AuthenticatedRequest(t, "POST", memberPath, body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		body := map[string]interface{}{"user_id": 99999}
		req := testutil.AuthenticatedRequest(t, "POST", memberPath, body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid role is 400", func(t *testing.T) {
		extra := testutil.CreateTestUser(t, tc.DB)
		body := map[string]interface{}{"user_id": extra.ID, "role": "superuser"}
		req := testutil.AuthenticatedRequest(t, "POST", memberPath, body, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("viewer removes themselves", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", fmt.Sprintf("%s/%d", memberPath, viewer.ID), nil, viewerToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("owner removal is always 400", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", fmt.Sprintf("%s/%d", memberPath, tc.User.ID), nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("removing a non-member is 404", func(t *testing.T) {
		outsider := testutil.CreateTestUser(t, tc.DB)
		req := testutil.AuthenticatedRequest(t, "DELETE", fmt.Sprintf("%s/%d", memberPath, outsider.ID), nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestWorkspaceHandler_UpdateDelete(t *testing.T) {
	router, tc := setupWorkspaceTestRouter(t)
	defer tc.Cleanup()

	ws := testutil.CreateTestWorkspace(t, tc.DB, tc.User)
	admin := testutil.CreateTestUser(t, tc.DB)
	adminToken := testutil.GenerateTestToken(t, tc.JWTService, admin)
	testutil.AddTestMember(t, tc.DB, ws, admin, models.MemberRoleAdmin)

	path := fmt.Sprintf("/api/workspaces/%d", ws.ID)

	t.Run("admin member cannot update", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PATCH", path, map[string]interface{}{"name": "Taken over"}, adminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("owner updates name only", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "PATCH", path, map[string]interface{}{"name": "Renamed"}, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		var resp handlers.WorkspaceResponse
		testutil.ParseJSONResponse(t, rr, &resp)
		assert.Equal(t, "Renamed", resp.Name)
		assert.Equal(t, ws.Description, resp.Description)
	})

	t.Run("admin member cannot delete", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", path, nil, adminToken)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("owner deletes", func(t *testing.T) {
		req := testutil.AuthenticatedRequest(t, "DELETE", path, nil, tc.Token)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}
