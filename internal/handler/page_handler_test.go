package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/tilespeak/internal/model"
)

// mockPageService はPageServiceInterfaceのモック実装。
type mockPageService struct {
	createFn func(ctx context.Context, user *model.User, projectID, name string) (*model.TilePage, error)
	updateFn func(ctx context.Context, user *model.User, pageID, name string) (*model.TilePage, error)
	deleteFn func(ctx context.Context, user *model.User, pageID string) (*model.TilePage, error)
}

func (m *mockPageService) Create(ctx context.Context, user *model.User, projectID, name string) (*model.TilePage, error) {
	if m.createFn != nil {
		return m.createFn(ctx, user, projectID, name)
	}
	return nil, nil
}

func (m *mockPageService) Update(ctx context.Context, user *model.User, pageID, name string) (*model.TilePage, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, user, pageID, name)
	}
	return nil, nil
}

func (m *mockPageService) Delete(ctx context.Context, user *model.User, pageID string) (*model.TilePage, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, user, pageID)
	}
	return nil, nil
}

func TestPageHandler_Create(t *testing.T) {
	svc := &mockPageService{
		createFn: func(ctx context.Context, user *model.User, projectID, name string) (*model.TilePage, error) {
			if projectID != "proj-1" || name != "Food" {
				t.Errorf("unexpected params: projectID=%q name=%q", projectID, name)
			}
			return &model.TilePage{ID: "page-1", ProjectID: projectID, Name: name}, nil
		},
	}
	h := NewPageHandler(svc)

	req := withUser(postJSON(t, "/api/v1/page/create", map[string]string{
		"projectId": "proj-1",
		"name":      "Food",
	}), testRequestUser)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["id"] != "page-1" {
		t.Errorf("id = %v, want page-1", body["id"])
	}
	if body["error"] != nil {
		t.Errorf("error = %v, want null", body["error"])
	}
}

func TestPageHandler_Create_MissingProjectID(t *testing.T) {
	h := NewPageHandler(&mockPageService{})

	req := withUser(postJSON(t, "/api/v1/page/create", map[string]string{
		"name": "Food",
	}), testRequestUser)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	body := decodeBody(t, w)
	if body["error"] != "Missing projectId" {
		t.Errorf("error = %v, want Missing projectId", body["error"])
	}
}

func TestPageHandler_Create_ProjectNotFound(t *testing.T) {
	svc := &mockPageService{
		createFn: func(ctx context.Context, user *model.User, projectID, name string) (*model.TilePage, error) {
			return nil, model.NewProjectNotFoundError()
		},
	}
	h := NewPageHandler(svc)

	req := withUser(postJSON(t, "/api/v1/page/create", map[string]string{
		"projectId": "nope",
		"name":      "Food",
	}), testRequestUser)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestPageHandler_Create_NotOwner(t *testing.T) {
	svc := &mockPageService{
		createFn: func(ctx context.Context, user *model.User, projectID, name string) (*model.TilePage, error) {
			return nil, model.NewPermissionDeniedError()
		},
	}
	h := NewPageHandler(svc)

	req := withUser(postJSON(t, "/api/v1/page/create", map[string]string{
		"projectId": "proj-2",
		"name":      "Food",
	}), testRequestUser)
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusBadRequest)
	}
	body := decodeBody(t, w)
	if body["error"] != "You don't have permission to do that" {
		t.Errorf("error = %v, want permission denied message", body["error"])
	}
}

func TestPageHandler_Update(t *testing.T) {
	svc := &mockPageService{
		updateFn: func(ctx context.Context, user *model.User, pageID, name string) (*model.TilePage, error) {
			return &model.TilePage{ID: pageID, Name: name}, nil
		},
	}
	h := NewPageHandler(svc)

	req := withUser(postJSON(t, "/api/v1/page/update", map[string]string{
		"pageId": "page-1",
		"name":   "Drinks",
	}), testRequestUser)
	w := httptest.NewRecorder()
	h.Update(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["id"] != "page-1" {
		t.Errorf("id = %v, want page-1", body["id"])
	}
}

func TestPageHandler_Delete_PageNotFound(t *testing.T) {
	svc := &mockPageService{
		deleteFn: func(ctx context.Context, user *model.User, pageID string) (*model.TilePage, error) {
			return nil, model.NewPageNotFoundError()
		},
	}
	h := NewPageHandler(svc)

	req := withUser(postJSON(t, "/api/v1/page/delete", map[string]string{
		"pageId": "nope",
	}), testRequestUser)
	w := httptest.NewRecorder()
	h.Delete(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
	body := decodeBody(t, w)
	if body["error"] != "Page not found" {
		t.Errorf("error = %v, want Page not found", body["error"])
	}
}
