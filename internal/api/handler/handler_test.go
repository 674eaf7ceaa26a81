package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"codeprep_backend/internal/app/service"
	"codeprep_backend/internal/common"
	"codeprep_backend/internal/common/security"
	"codeprep_backend/internal/domain/model"
	"codeprep_backend/internal/domain/repository"
	"codeprep_backend/internal/platform/cache"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Boundary tests: every handler response carries the success/message
// envelope, on top of stub collaborators.

type stubAssignmentRepo struct {
	assignments []*model.Assignment
	lastFilter  repository.AssignmentFilter
}

func (r *stubAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	r.assignments = append(r.assignments, a)
	return nil
}

func (r *stubAssignmentRepo) FindByID(_ context.Context, id string) (*model.Assignment, error) {
	for _, a := range r.assignments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *stubAssignmentRepo) FindBySlug(_ context.Context, slug string) (*model.Assignment, error) {
	for _, a := range r.assignments {
		if a.Slug == slug {
			return a, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *stubAssignmentRepo) List(_ context.Context, filter repository.AssignmentFilter) ([]*model.Assignment, int64, error) {
	r.lastFilter = filter
	return r.assignments, int64(len(r.assignments)), nil
}

func (r *stubAssignmentRepo) Update(_ context.Context, _ *model.Assignment) error { return nil }

type stubTopicRepo struct{}

func (stubTopicRepo) Create(_ context.Context, _ *model.Topic) error { return nil }
func (stubTopicRepo) FindByID(_ context.Context, _ string) (*model.Topic, error) {
	return nil, common.ErrNotFound
}
func (stubTopicRepo) FindBySlug(_ context.Context, _ string) (*model.Topic, error) {
	return nil, common.ErrNotFound
}
func (stubTopicRepo) List(_ context.Context, _ bool) ([]*model.Topic, error)         { return nil, nil }
func (stubTopicRepo) ListChildren(_ context.Context, _ string) ([]*model.Topic, error) { return nil, nil }
func (stubTopicRepo) Update(_ context.Context, _ *model.Topic) error                 { return nil }

type nopCache struct{}

func (nopCache) Get(_ context.Context, _ string) (string, bool, error)          { return "", false, nil }
func (nopCache) Set(_ context.Context, _, _ string, _ time.Duration) error      { return nil }
func (nopCache) Delete(_ context.Context, _ ...string) error                    { return nil }

var _ cache.Cache = nopCache{}

type stubUserRepo struct {
	users map[string]*model.User
}

func (r *stubUserRepo) Create(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *stubUserRepo) FindByVerificationTokenHash(_ context.Context, _ string) (*model.User, error) {
	return nil, common.ErrNotFound
}

func (r *stubUserRepo) FindByResetTokenHash(_ context.Context, _ string) (*model.User, error) {
	return nil, common.ErrNotFound
}

func (r *stubUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

type nopMailer struct{}

func (nopMailer) Send(_, _, _ string) error { return nil }

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) common.APIResponse {
	t.Helper()
	var resp common.APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return resp
}

func newAssignmentRouter(repo *stubAssignmentRepo) http.Handler {
	svc := service.NewAssignmentService(repo, stubTopicRepo{}, nopCache{}, time.Minute, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/assignments", NewAssignmentHandler(svc).RegisterRoutes)
	return r
}

func TestListAssignmentsPaginatesAndWrapsEnvelope(t *testing.T) {
	repo := &stubAssignmentRepo{}
	a := &model.Assignment{
		ID:               uuid.NewString(),
		Title:            "Two Sum",
		ProblemStatement: "Find two numbers that add up to the target.",
		ProblemType:      model.ProblemTypeCoding,
		Difficulty:       model.DifficultyEasy,
		CategoryID:       uuid.NewString(),
		Score:            10,
		TestCases:        []model.TestCase{{Input: "1 2", Output: "3"}},
	}
	a.Normalize()
	repo.Create(context.Background(), a)

	router := newAssignmentRouter(repo)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assignments/?page=2&pageSize=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if repo.lastFilter.Page != 2 || repo.lastFilter.PageSize != 5 {
		t.Errorf("filter page/pageSize = %d/%d, want 2/5", repo.lastFilter.Page, repo.lastFilter.PageSize)
	}

	resp := decodeEnvelope(t, rec)
	if !resp.Success {
		t.Error("success flag not set")
	}
	if resp.Message == "" {
		t.Error("message missing from envelope")
	}
	if resp.Data == nil {
		t.Error("data missing from envelope")
	}
}

func TestListAssignmentsDefaultsBadPagination(t *testing.T) {
	repo := &stubAssignmentRepo{}
	router := newAssignmentRouter(repo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/assignments/?page=-3&pageSize=9999", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if repo.lastFilter.Page != 1 || repo.lastFilter.PageSize != 20 {
		t.Errorf("filter page/pageSize = %d/%d, want defaults 1/20", repo.lastFilter.Page, repo.lastFilter.PageSize)
	}
}

func newAuthRouter() http.Handler {
	users := &stubUserRepo{users: make(map[string]*model.User)}
	tokens := security.NewTokenIssuer([]byte("test-signing-key"), time.Hour)
	svc := service.NewAuthService(users, tokens, nopMailer{}, service.AuthPolicy{
		RequireVerification: false,
		MaxLoginAttempts:    5,
		LockDuration:        15 * time.Minute,
		VerifyTokenTTL:      10 * time.Minute,
		ResetTokenTTL:       10 * time.Minute,
	}, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/auth", NewAuthHandler(svc).RegisterRoutes)
	return r
}

func TestSignupAndLoginWrapEnvelope(t *testing.T) {
	router := newAuthRouter()

	body := `{"name":"Asha Rao","email":"asha@example.com","password":"Abcd1234!"}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/signup", bytes.NewBufferString(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	resp := decodeEnvelope(t, rec)
	if !resp.Success || resp.Message == "" || resp.Data == nil {
		t.Errorf("signup envelope incomplete: %+v", resp)
	}

	login := `{"email":"asha@example.com","password":"Abcd1234!"}`
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(login)))
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	resp = decodeEnvelope(t, rec)
	if !resp.Success || resp.Message == "" || resp.Data == nil {
		t.Errorf("login envelope incomplete: %+v", resp)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(`{"email":"asha@example.com","password":"Wrong1234!"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d, want 401", rec.Code)
	}
	resp = decodeEnvelope(t, rec)
	if resp.Success {
		t.Error("failed login must carry success=false")
	}
	if resp.Message == "" {
		t.Error("failed login must carry a message")
	}
}
