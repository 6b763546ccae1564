package project

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/hitoshi/tilespeak/internal/model"
	"github.com/hitoshi/tilespeak/internal/repository"
)

// --- モック定義 ---

type mockProjectRepo struct {
	findByIDFn           func(ctx context.Context, id string) (*model.Project, error)
	findWholeByIDFn      func(ctx context.Context, id string) (*model.ProjectWhole, error)
	findWholeBySlugFn    func(ctx context.Context, slug string) (*model.ProjectWhole, error)
	listPagesWithTilesFn func(ctx context.Context, projectID string) ([]*model.PageWithTiles, error)
	createFn             func(ctx context.Context, project *model.Project) error
	createWithHomeFn     func(ctx context.Context, project *model.Project, page *model.TilePage, tile *model.Tile) error
	updateFn             func(ctx context.Context, project *model.Project) error
	deleteFn             func(ctx context.Context, id string) error
	listByUserIDFn       func(ctx context.Context, userID string) ([]*model.Project, error)
	searchPublicFn       func(ctx context.Context, query string) ([]*model.ProjectWithAuthor, error)
	listPublicFn         func(ctx context.Context, limit, offset int) ([]*model.ProjectWithAuthor, error)
}

func (m *mockProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProjectRepo) FindWholeByID(ctx context.Context, id string) (*model.ProjectWhole, error) {
	if m.findWholeByIDFn != nil {
		return m.findWholeByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProjectRepo) FindWholeBySlug(ctx context.Context, slug string) (*model.ProjectWhole, error) {
	if m.findWholeBySlugFn != nil {
		return m.findWholeBySlugFn(ctx, slug)
	}
	return nil, nil
}

func (m *mockProjectRepo) ListPagesWithTiles(ctx context.Context, projectID string) ([]*model.PageWithTiles, error) {
	if m.listPagesWithTilesFn != nil {
		return m.listPagesWithTilesFn(ctx, projectID)
	}
	return nil, nil
}

func (m *mockProjectRepo) Create(ctx context.Context, project *model.Project) error {
	if m.createFn != nil {
		return m.createFn(ctx, project)
	}
	return nil
}

func (m *mockProjectRepo) CreateWithHomePage(ctx context.Context, project *model.Project, page *model.TilePage, tile *model.Tile) error {
	if m.createWithHomeFn != nil {
		return m.createWithHomeFn(ctx, project, page, tile)
	}
	return nil
}

func (m *mockProjectRepo) Update(ctx context.Context, project *model.Project) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, project)
	}
	return nil
}

func (m *mockProjectRepo) DeleteByID(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockProjectRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Project, error) {
	if m.listByUserIDFn != nil {
		return m.listByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockProjectRepo) SearchPublic(ctx context.Context, query string) ([]*model.ProjectWithAuthor, error) {
	if m.searchPublicFn != nil {
		return m.searchPublicFn(ctx, query)
	}
	return nil, nil
}

func (m *mockProjectRepo) ListPublic(ctx context.Context, limit, offset int) ([]*model.ProjectWithAuthor, error) {
	if m.listPublicFn != nil {
		return m.listPublicFn(ctx, limit, offset)
	}
	return nil, nil
}

var _ repository.ProjectRepository = (*mockProjectRepo)(nil)

// passthroughSanitizer は入力をそのまま返すテスト用サニタイザ。
type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(raw string) string { return raw }

func newTestService(repo *mockProjectRepo) *Service {
	return NewService(repo, passthroughSanitizer{})
}

var owner = &model.User{ID: "user-owner"}
var stranger = &model.User{ID: "user-stranger"}

// --- Create ---

func TestCreate_SeedsHomePageAndFirstTile(t *testing.T) {
	var gotProject *model.Project
	var gotPage *model.TilePage
	var gotTile *model.Tile
	repo := &mockProjectRepo{
		createWithHomeFn: func(ctx context.Context, project *model.Project, page *model.TilePage, tile *model.Tile) error {
			gotProject, gotPage, gotTile = project, page, tile
			return nil
		},
	}
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), owner, "My Board", "a board")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.UserID != owner.ID {
		t.Errorf("UserID = %q, want %q", created.UserID, owner.ID)
	}
	if gotProject == nil || gotPage == nil || gotTile == nil {
		t.Fatal("expected project, page, and tile to be created together")
	}
	if gotPage.Name != "Home" {
		t.Errorf("page name = %q, want %q", gotPage.Name, "Home")
	}
	if gotPage.ProjectID != gotProject.ID {
		t.Error("page must belong to the created project")
	}
	if gotTile.DisplayText != "First tile!" {
		t.Errorf("tile display text = %q, want %q", gotTile.DisplayText, "First tile!")
	}
	if gotTile.TilePageID != gotPage.ID {
		t.Error("tile must belong to the home page")
	}
}

func TestCreate_SlugFormat(t *testing.T) {
	repo := &mockProjectRepo{}
	svc := newTestService(repo)

	created, err := svc.Create(context.Background(), owner, "My AAC Board!", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := regexp.MustCompile(`^my-aac-board-\d+$`)
	if !want.MatchString(created.Slug) {
		t.Errorf("slug = %q, want match %q", created.Slug, want)
	}
}

func TestCreate_RetriesOnSlugCollision(t *testing.T) {
	attempts := 0
	slugs := map[string]bool{}
	repo := &mockProjectRepo{
		createWithHomeFn: func(ctx context.Context, project *model.Project, page *model.TilePage, tile *model.Tile) error {
			attempts++
			slugs[project.Slug] = true
			if attempts < 3 {
				return repository.ErrDuplicateSlug
			}
			return nil
		},
	}
	svc := newTestService(repo)

	if _, err := svc.Create(context.Background(), owner, "Board", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestCreate_GivesUpAfterRetryLimit(t *testing.T) {
	repo := &mockProjectRepo{
		createWithHomeFn: func(ctx context.Context, project *model.Project, page *model.TilePage, tile *model.Tile) error {
			return repository.ErrDuplicateSlug
		},
	}
	svc := newTestService(repo)

	if _, err := svc.Create(context.Background(), owner, "Board", ""); err == nil {
		t.Fatal("expected error after exhausting slug retries")
	}
}

// --- Get ---

func wholeProject(ownerID string, public bool) *model.ProjectWhole {
	return &model.ProjectWhole{
		Project: model.Project{ID: "proj-1", UserID: ownerID, Slug: "proj-1-slug", Public: public},
		Author:  &model.User{ID: ownerID},
		Pages:   []*model.PageWithTiles{},
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(&mockProjectRepo{})

	_, err := svc.Get(context.Background(), owner, "missing", "")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProjectNotFound {
		t.Errorf("error = %v, want PROJECT_NOT_FOUND", err)
	}
}

func TestGet_PrivateProject_NonOwnerDenied(t *testing.T) {
	repo := &mockProjectRepo{
		findWholeByIDFn: func(ctx context.Context, id string) (*model.ProjectWhole, error) {
			return wholeProject(owner.ID, false), nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Get(context.Background(), stranger, "proj-1", "")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProjectPrivate {
		t.Fatalf("error = %v, want PROJECT_PRIVATE", err)
	}
	if apiErr.Message != "Project is private" {
		t.Errorf("message = %q, want %q", apiErr.Message, "Project is private")
	}
}

func TestGet_PrivateProject_OwnerAllowed(t *testing.T) {
	repo := &mockProjectRepo{
		findWholeByIDFn: func(ctx context.Context, id string) (*model.ProjectWhole, error) {
			return wholeProject(owner.ID, false), nil
		},
	}
	svc := newTestService(repo)

	got, err := svc.Get(context.Background(), owner, "proj-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "proj-1" {
		t.Errorf("ID = %q, want %q", got.ID, "proj-1")
	}
}

func TestGet_PublicProject_AnyUserAllowed(t *testing.T) {
	repo := &mockProjectRepo{
		findWholeBySlugFn: func(ctx context.Context, slug string) (*model.ProjectWhole, error) {
			return wholeProject(owner.ID, true), nil
		},
	}
	svc := newTestService(repo)

	got, err := svc.Get(context.Background(), stranger, "", "proj-1-slug")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "proj-1" {
		t.Errorf("ID = %q, want %q", got.ID, "proj-1")
	}
}

// --- クローンマージ ---

func tileOn(pageID, text string) *model.Tile {
	return &model.Tile{ID: "tile-" + text, TilePageID: pageID, DisplayText: text}
}

func TestGet_CloneMerge_ConcatenatesTilesPerMatchingPage(t *testing.T) {
	clone := wholeProject(owner.ID, false)
	clone.ClonedFrom = "proj-original"
	clone.Pages = []*model.PageWithTiles{
		{
			TilePage: model.TilePage{ID: "page-shared", Name: "Edited name"},
			Tiles:    []*model.Tile{tileOn("page-shared", "added")},
		},
		{
			TilePage: model.TilePage{ID: "page-clone-only"},
			Tiles:    []*model.Tile{tileOn("page-clone-only", "orphan")},
		},
	}

	repo := &mockProjectRepo{
		findWholeByIDFn: func(ctx context.Context, id string) (*model.ProjectWhole, error) {
			return clone, nil
		},
		findByIDFn: func(ctx context.Context, id string) (*model.Project, error) {
			if id != "proj-original" {
				t.Errorf("looked up original id %q, want %q", id, "proj-original")
			}
			return &model.Project{ID: "proj-original", UserID: "someone-else", Public: true}, nil
		},
		listPagesWithTilesFn: func(ctx context.Context, projectID string) ([]*model.PageWithTiles, error) {
			return []*model.PageWithTiles{
				{
					TilePage: model.TilePage{ID: "page-shared", Name: "Original name"},
					Tiles:    []*model.Tile{tileOn("page-shared", "base1"), tileOn("page-shared", "base2")},
				},
				{
					TilePage: model.TilePage{ID: "page-original-only"},
					Tiles:    []*model.Tile{tileOn("page-original-only", "solo")},
				},
			}, nil
		},
	}
	svc := newTestService(repo)

	got, err := svc.Get(context.Background(), owner, "proj-1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Pages) != 2 {
		t.Fatalf("pages = %d, want 2 (clone-only pages are dropped)", len(got.Pages))
	}

	shared := got.Pages[0]
	if shared.ID != "page-shared" {
		t.Fatalf("first page = %q, want %q", shared.ID, "page-shared")
	}
	// 元ページのフィールドが基礎となる
	if shared.Name != "Original name" {
		t.Errorf("page name = %q, want base page name %q", shared.Name, "Original name")
	}
	// タイルは元→クローンの順で連結される
	if len(shared.Tiles) != 3 {
		t.Fatalf("merged tiles = %d, want 3", len(shared.Tiles))
	}
	wantOrder := []string{"base1", "base2", "added"}
	for i, want := range wantOrder {
		if shared.Tiles[i].DisplayText != want {
			t.Errorf("tile[%d] = %q, want %q", i, shared.Tiles[i].DisplayText, want)
		}
	}

	if got.Pages[1].ID != "page-original-only" {
		t.Errorf("second page = %q, want unmatched original page", got.Pages[1].ID)
	}
}

func TestGet_CloneMerge_OriginalMissing(t *testing.T) {
	clone := wholeProject(owner.ID, false)
	clone.ClonedFrom = "proj-gone"
	repo := &mockProjectRepo{
		findWholeByIDFn: func(ctx context.Context, id string) (*model.ProjectWhole, error) {
			return clone, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Get(context.Background(), owner, "proj-1", "")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProjectNotFound {
		t.Fatalf("error = %v, want PROJECT_NOT_FOUND", err)
	}
	if apiErr.Message != "Original project not found" {
		t.Errorf("message = %q, want %q", apiErr.Message, "Original project not found")
	}
}

func TestGet_CloneMerge_OriginalPrivate(t *testing.T) {
	clone := wholeProject(owner.ID, true)
	clone.ClonedFrom = "proj-original"
	repo := &mockProjectRepo{
		findWholeByIDFn: func(ctx context.Context, id string) (*model.ProjectWhole, error) {
			return clone, nil
		},
		findByIDFn: func(ctx context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, UserID: "someone-else", Public: false}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Get(context.Background(), owner, "proj-1", "")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProjectPrivate {
		t.Fatalf("error = %v, want PROJECT_PRIVATE", err)
	}
	if apiErr.Message != "Original project is private" {
		t.Errorf("message = %q, want %q", apiErr.Message, "Original project is private")
	}
}

// --- Update ---

func TestUpdate_NonAuthor_Denied(t *testing.T) {
	repo := &mockProjectRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, UserID: owner.ID}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), stranger, "proj-1", UpdateParams{Name: "x"})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNotAuthor {
		t.Errorf("error = %v, want NOT_AUTHOR", err)
	}
}

func TestUpdate_EmptyFields_KeepPreviousValues(t *testing.T) {
	var saved *model.Project
	repo := &mockProjectRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Project, error) {
			return &model.Project{
				ID: id, UserID: owner.ID,
				Name: "Old name", Description: "Old desc",
				Image: "old.png", Public: true, Columns: 6,
			}, nil
		},
		updateFn: func(ctx context.Context, project *model.Project) error {
			saved = project
			return nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Update(context.Background(), owner, "proj-1", UpdateParams{Name: "", Description: ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Name != "Old name" || saved.Description != "Old desc" {
		t.Errorf("empty fields must keep previous values, got name=%q desc=%q", saved.Name, saved.Description)
	}
	if !saved.Public || saved.Columns != 6 || saved.Image != "old.png" {
		t.Errorf("untouched fields changed: %+v", saved)
	}
}

func TestUpdate_CanSetPrivateAgain(t *testing.T) {
	var saved *model.Project
	repo := &mockProjectRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, UserID: owner.ID, Public: true}, nil
		},
		updateFn: func(ctx context.Context, project *model.Project) error {
			saved = project
			return nil
		},
	}
	svc := newTestService(repo)

	isPublic := false
	if _, err := svc.Update(context.Background(), owner, "proj-1", UpdateParams{IsPublic: &isPublic}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Public {
		t.Error("expected project to become private")
	}
}

// --- Delete ---

func TestDelete_NotFound(t *testing.T) {
	svc := newTestService(&mockProjectRepo{})

	err := svc.Delete(context.Background(), owner, "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProjectNotFound {
		t.Errorf("error = %v, want PROJECT_NOT_FOUND", err)
	}
}

func TestDelete_NonAuthor_Denied(t *testing.T) {
	repo := &mockProjectRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, UserID: owner.ID}, nil
		},
	}
	svc := newTestService(repo)

	err := svc.Delete(context.Background(), stranger, "proj-1")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeNotAuthor {
		t.Errorf("error = %v, want NOT_AUTHOR", err)
	}
}

func TestDelete_Owner_Succeeds(t *testing.T) {
	deleted := false
	repo := &mockProjectRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, UserID: owner.ID}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	svc := newTestService(repo)

	if err := svc.Delete(context.Background(), owner, "proj-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deleted {
		t.Error("expected DeleteByID to be called")
	}
}

// --- Clone ---

func TestClone_PublicProject_CreatesPrivateCopy(t *testing.T) {
	var created *model.Project
	repo := &mockProjectRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Project, error) {
			return &model.Project{
				ID: id, UserID: owner.ID, Name: "Shared board",
				Description: "desc", Public: true, Columns: 8,
			}, nil
		},
		createFn: func(ctx context.Context, project *model.Project) error {
			created = project
			return nil
		},
	}
	svc := newTestService(repo)

	clone, err := svc.Clone(context.Background(), stranger, "proj-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected clone to be persisted")
	}
	if clone.ClonedFrom != "proj-1" {
		t.Errorf("ClonedFrom = %q, want %q", clone.ClonedFrom, "proj-1")
	}
	if clone.Public {
		t.Error("clone must start private")
	}
	if clone.UserID != stranger.ID {
		t.Errorf("clone owner = %q, want cloning user %q", clone.UserID, stranger.ID)
	}
	if clone.Columns != 8 || clone.Name != "Shared board" {
		t.Errorf("clone must copy source fields, got %+v", clone)
	}
	if clone.Slug == "" || clone.Slug == "proj-1-slug" {
		t.Errorf("clone must get a fresh slug, got %q", clone.Slug)
	}
}

func TestClone_PrivateProject_NonOwnerDenied(t *testing.T) {
	repo := &mockProjectRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Project, error) {
			return &model.Project{ID: id, UserID: owner.ID, Public: false}, nil
		},
	}
	svc := newTestService(repo)

	_, err := svc.Clone(context.Background(), stranger, "proj-1")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProjectPrivate {
		t.Errorf("error = %v, want PROJECT_PRIVATE", err)
	}
}

// --- Explore ---

func TestExplore_PassesPagingOffsets(t *testing.T) {
	var gotLimit, gotOffset int
	repo := &mockProjectRepo{
		listPublicFn: func(ctx context.Context, limit, offset int) ([]*model.ProjectWithAuthor, error) {
			gotLimit, gotOffset = limit, offset
			return []*model.ProjectWithAuthor{}, nil
		},
	}
	svc := newTestService(repo)

	if _, err := svc.Explore(context.Background(), 3); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 10 || gotOffset != 20 {
		t.Errorf("limit/offset = %d/%d, want 10/20", gotLimit, gotOffset)
	}
}
