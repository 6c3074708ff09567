package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/codetyper/codetyper-api/internal/api/middleware"
	"github.com/codetyper/codetyper-api/internal/auth/token"
	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
	"github.com/codetyper/codetyper-api/internal/infrastructure/http/handlers"
)

// --- stubs ---

type stubCredentials struct {
	loginErr   error
	getErr     error
	promoteErr error
	promoted   ports.PromoteInput
}

func (s *stubCredentials) Register(_ context.Context, in ports.RegisterInput) (*domain.Identity, error) {
	return &domain.Identity{ID: "u-new", Username: in.Username, Role: domain.RoleUser}, nil
}

func (s *stubCredentials) Login(_ context.Context, username, _ string) (*ports.LoginResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &ports.LoginResult{Token: "signed.token.value", Role: domain.RoleUser, UserID: "u-1", Message: "Login successful."}, nil
}

func (s *stubCredentials) Promote(_ context.Context, in ports.PromoteInput) (*domain.Identity, error) {
	if s.promoteErr != nil {
		return nil, s.promoteErr
	}
	s.promoted = in
	return &domain.Identity{ID: in.TargetUserID, Username: "bob", Role: in.Role}, nil
}

func (s *stubCredentials) GetUser(_ context.Context, userID string) (*domain.Identity, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &domain.Identity{ID: userID, Username: "bob", Role: domain.RoleUser}, nil
}

type stubTasks struct {
	added  ports.AddTaskInput
	denied ports.DenyInput
	listed [2]int
}

func (s *stubTasks) ListShown(_ context.Context, page, pageSize int) (*ports.TaskPage, error) {
	s.listed = [2]int{page, pageSize}
	return &ports.TaskPage{Tasks: []domain.Task{{ID: "t-1", Shown: true}}, Page: 1, PageSize: 15, TotalPages: 1}, nil
}

func (s *stubTasks) Add(_ context.Context, in ports.AddTaskInput) (*domain.Task, string, error) {
	s.added = in
	return &domain.Task{ID: "t-1", Name: in.Name, Shown: in.Submitter.IsStaff, CreatorID: in.Submitter.UserID}, "ok", nil
}

func (s *stubTasks) RandomRequest(context.Context) (*ports.TaskRequest, error) {
	return &ports.TaskRequest{Task: &domain.Task{ID: "t-1"}, Pending: 1}, nil
}

func (s *stubTasks) Accept(context.Context, string) error { return nil }

func (s *stubTasks) Deny(_ context.Context, in ports.DenyInput) (string, error) {
	s.denied = in
	return "denied", nil
}

type stubSnippets struct{}

func (stubSnippets) Add(_ context.Context, in ports.AddSnippetInput) (*domain.Snippet, string, error) {
	return &domain.Snippet{ID: "s-1", Shown: in.Submitter.IsStaff}, "ok", nil
}

func (stubSnippets) Random(context.Context) (*domain.Snippet, error) {
	return &domain.Snippet{ID: "s-1", Shown: true}, nil
}

func (stubSnippets) RandomRequest(context.Context) (*ports.SnippetRequest, error) {
	return &ports.SnippetRequest{Snippet: &domain.Snippet{ID: "s-2"}}, nil
}

func (stubSnippets) ListShown(_ context.Context, in ports.ListSnippetsInput) (*ports.SnippetPage, error) {
	return &ports.SnippetPage{
		Snippets:   []domain.Snippet{{ID: "s-1", TaskID: in.Filter.TaskID, LanguageName: in.Filter.LanguageName, Shown: true}},
		Page:       1,
		PageSize:   10,
		TotalPages: 1,
	}, nil
}

func (stubSnippets) Accept(context.Context, string) error { return nil }

func (stubSnippets) Deny(context.Context, ports.DenyInput) (string, error) { return "denied", nil }

type stubLanguages struct {
	allErr error
}

func (stubLanguages) Add(_ context.Context, name string) (string, error) {
	return fmt.Sprintf("Language '%s' added.", name), nil
}

func (s stubLanguages) All(context.Context) ([]domain.Language, error) {
	if s.allErr != nil {
		return nil, s.allErr
	}
	return []domain.Language{{Name: "Go"}}, nil
}

func (stubLanguages) ByName(_ context.Context, name string) (*domain.Language, error) {
	return &domain.Language{Name: name}, nil
}

// --- helpers ---

var testTokenCfg = token.Config{
	Secret:    []byte("router-test-secret"),
	Issuer:    "codetyper-api",
	Audience:  "codetyper-web",
	ClockSkew: time.Minute,
}

type fixture struct {
	creds     *stubCredentials
	tasks     *stubTasks
	languages stubLanguages
	codec     *token.Codec
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	codec, err := token.New(testTokenCfg)
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	return &fixture{creds: &stubCredentials{}, tasks: &stubTasks{}, codec: codec}
}

func (f *fixture) router() http.Handler {
	return NewRouter(Deps{
		Log:         zerolog.Nop(),
		CORSOrigins: []string{"*"},
		Gate:        middleware.NewGate(f.codec, zerolog.Nop()),
		Credentials: f.creds,
		Tasks:       f.tasks,
		Snippets:    stubSnippets{},
		Languages:   f.languages,
		Checks:      map[string]handlers.Check{},
		Registry:    prometheus.NewRegistry(),
	})
}

func (f *fixture) tokenFor(t *testing.T, role domain.Role) string {
	t.Helper()
	tok, err := f.codec.Issue("alice", role, "actor-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func do(h http.Handler, method, path, body, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body.Error
}

// --- tests ---

func TestRouter_RoleMatrix(t *testing.T) {
	type route struct {
		method, path, body string
		ok                 int
	}
	promoteMod := route{http.MethodPost, "/api/users/promote/moderator/u-2", "", http.StatusOK}
	promoteAdmin := route{http.MethodPost, "/api/users/promote/admin/u-2", "", http.StatusOK}
	addLanguage := route{http.MethodPost, "/api/languages/add", `{"name":"Go"}`, http.StatusCreated}
	taskRequest := route{http.MethodGet, "/api/tasks/randomRequest", "", http.StatusOK}
	snippetAccept := route{http.MethodPut, "/api/snippets/acceptRequest/s-2", "", http.StatusOK}
	taskDeny := route{http.MethodDelete, "/api/tasks/denyRequest/t-1", `{"reason":"duplicate"}`, http.StatusOK}

	tests := []struct {
		name  string
		route route
		role  domain.Role
		want  int
	}{
		{"user cannot promote to moderator", promoteMod, domain.RoleUser, http.StatusForbidden},
		{"moderator cannot promote to moderator", promoteMod, domain.RoleModerator, http.StatusForbidden},
		{"admin promotes to moderator", promoteMod, domain.RoleAdmin, http.StatusOK},
		{"superadmin promotes to moderator", promoteMod, domain.RoleSuperAdmin, http.StatusOK},
		{"admin cannot promote to admin", promoteAdmin, domain.RoleAdmin, http.StatusForbidden},
		{"superadmin promotes to admin", promoteAdmin, domain.RoleSuperAdmin, http.StatusOK},
		{"moderator cannot add language", addLanguage, domain.RoleModerator, http.StatusForbidden},
		{"admin adds language", addLanguage, domain.RoleAdmin, http.StatusCreated},
		{"superadmin adds language", addLanguage, domain.RoleSuperAdmin, http.StatusCreated},
		{"user cannot moderate tasks", taskRequest, domain.RoleUser, http.StatusForbidden},
		{"moderator moderates tasks", taskRequest, domain.RoleModerator, http.StatusOK},
		{"admin moderates tasks", taskRequest, domain.RoleAdmin, http.StatusOK},
		{"user cannot accept snippets", snippetAccept, domain.RoleUser, http.StatusForbidden},
		{"superadmin accepts snippets", snippetAccept, domain.RoleSuperAdmin, http.StatusOK},
		{"moderator denies tasks", taskDeny, domain.RoleModerator, http.StatusOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			rec := do(f.router(), tc.route.method, tc.route.path, tc.route.body, f.tokenFor(t, tc.role))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d: %s", tc.want, rec.Code, rec.Body.String())
			}
			if tc.want == http.StatusForbidden {
				if msg := errorMessage(t, rec); msg != middleware.ForbiddenMessage {
					t.Fatalf("unexpected forbidden message %q", msg)
				}
			}
		})
	}
}

func TestRouter_UnauthenticatedRequests(t *testing.T) {
	f := newFixture(t)

	expired, err := token.New(testTokenCfg, token.WithClock(func() time.Time {
		return time.Now().Add(-3 * time.Hour)
	}))
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	expiredTok, err := expired.Issue("alice", domain.RoleSuperAdmin, "actor-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	foreign, err := token.New(token.Config{Secret: []byte("other-secret"), Issuer: testTokenCfg.Issuer, Audience: testTokenCfg.Audience})
	if err != nil {
		t.Fatalf("token.New: %v", err)
	}
	foreignTok, err := foreign.Issue("alice", domain.RoleSuperAdmin, "actor-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"garbage token", "Bearer not-a-jwt"},
		{"wrong scheme", "Basic " + f.tokenFor(t, domain.RoleSuperAdmin)},
		{"expired token", "Bearer " + expiredTok},
		{"wrong secret", "Bearer " + foreignTok},
	}

	h := f.router()
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/users/promote/admin/u-2", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
			if f.creds.promoted.TargetUserID != "" {
				t.Fatalf("handler must not run for rejected requests")
			}
		})
	}
}

func TestRouter_PromoteUsesSessionAsActor(t *testing.T) {
	f := newFixture(t)
	rec := do(f.router(), http.MethodPost, "/api/users/promote/moderator/u-2", "", f.tokenFor(t, domain.RoleAdmin))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.creds.promoted.ActorID != "actor-1" || f.creds.promoted.TargetUserID != "u-2" {
		t.Fatalf("unexpected promote input: %+v", f.creds.promoted)
	}
	if f.creds.promoted.Role != domain.RoleModerator {
		t.Fatalf("expected Moderator, got %s", f.creds.promoted.Role)
	}
}

func TestRouter_PromoteConflicts(t *testing.T) {
	for _, err := range []error{domain.ErrRoleAlreadyHeld, domain.ErrNotAPromotion, domain.ErrRoleChanged} {
		f := newFixture(t)
		f.creds.promoteErr = err
		rec := do(f.router(), http.MethodPost, "/api/users/promote/moderator/u-2", "", f.tokenFor(t, domain.RoleAdmin))
		if rec.Code != http.StatusConflict {
			t.Fatalf("%v: expected 409, got %d", err, rec.Code)
		}
	}
}

func TestRouter_LoginExposesAuthorizationHeader(t *testing.T) {
	f := newFixture(t)
	rec := do(f.router(), http.MethodPost, "/api/login", `{"username":"alice","password":"password123"}`, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Authorization"); got != "Bearer signed.token.value" {
		t.Fatalf("unexpected Authorization header %q", got)
	}
	if got := rec.Header().Get("Access-Control-Expose-Headers"); !strings.Contains(got, "Authorization") {
		t.Fatalf("Authorization must be exposed, got %q", got)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["userId"] != "u-1" || body["role"] != "User" {
		t.Fatalf("unexpected body %v", body)
	}
	if _, ok := body["token"]; ok {
		t.Fatalf("token must not be in the body")
	}
}

func TestRouter_LoginInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.creds.loginErr = domain.ErrInvalidCredentials
	rec := do(f.router(), http.MethodPost, "/api/login", `{"username":"alice","password":"wrong-password"}`, "")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if rec.Header().Get("Authorization") != "" {
		t.Fatalf("no token may be returned on failure")
	}
}

func TestRouter_StoreUnavailableIsGatewayTimeout(t *testing.T) {
	f := newFixture(t)
	f.creds.loginErr = fmt.Errorf("find user: %w: %w", domain.ErrStoreUnavailable, context.DeadlineExceeded)
	rec := do(f.router(), http.MethodPost, "/api/login", `{"username":"alice","password":"password123"}`, "")

	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("expected 504, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); msg != "Cannot access the database." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestRouter_TaskAddOptionalSession(t *testing.T) {
	t.Run("anonymous uses body creator", func(t *testing.T) {
		f := newFixture(t)
		rec := do(f.router(), http.MethodPost, "/api/tasks/add", `{"name":"FizzBuzz","description":"classic","creatorId":"u-9"}`, "")
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if f.tasks.added.Submitter.UserID != "u-9" || f.tasks.added.Submitter.IsStaff {
			t.Fatalf("unexpected submitter %+v", f.tasks.added.Submitter)
		}
	})

	t.Run("staff session overrides body creator", func(t *testing.T) {
		f := newFixture(t)
		rec := do(f.router(), http.MethodPost, "/api/tasks/add", `{"name":"FizzBuzz","description":"classic","creatorId":"u-9"}`, f.tokenFor(t, domain.RoleModerator))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if f.tasks.added.Submitter.UserID != "actor-1" || !f.tasks.added.Submitter.IsStaff {
			t.Fatalf("unexpected submitter %+v", f.tasks.added.Submitter)
		}
	})

	t.Run("invalid token is treated as anonymous", func(t *testing.T) {
		f := newFixture(t)
		rec := do(f.router(), http.MethodPost, "/api/tasks/add", `{"name":"FizzBuzz","description":"classic"}`, "garbage")
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if f.tasks.added.Submitter.IsStaff {
			t.Fatalf("invalid token must not grant staff")
		}
	})
}

func TestRouter_DenyTakesStaffFromSession(t *testing.T) {
	f := newFixture(t)
	rec := do(f.router(), http.MethodDelete, "/api/tasks/denyRequest/t-1", `{"reason":"duplicate"}`, f.tokenFor(t, domain.RoleModerator))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if f.tasks.denied.ID != "t-1" || f.tasks.denied.StaffID != "actor-1" || f.tasks.denied.Reason != "duplicate" {
		t.Fatalf("unexpected deny input %+v", f.tasks.denied)
	}
}

func TestRouter_DenyRequiresReason(t *testing.T) {
	f := newFixture(t)
	rec := do(f.router(), http.MethodDelete, "/api/tasks/denyRequest/t-1", `{}`, f.tokenFor(t, domain.RoleModerator))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRouter_AnonymousReads(t *testing.T) {
	f := newFixture(t)
	h := f.router()

	for _, path := range []string{
		"/api/users/u-2",
		"/api/snippets/random",
		"/api/tasks/shown",
		"/api/snippets/shown",
		"/api/languages/getAll",
		"/api/languages/get/go",
		"/health",
		"/health/ready",
	} {
		rec := do(h, http.MethodGet, path, "", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_ShownListings(t *testing.T) {
	f := newFixture(t)
	h := f.router()

	rec := do(h, http.MethodGet, "/api/tasks/shown?page=3&pageSize=20", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("tasks: expected 200, got %d", rec.Code)
	}
	if f.tasks.listed != [2]int{3, 20} {
		t.Fatalf("paging not passed through: %v", f.tasks.listed)
	}
	var tasks map[string]json.RawMessage
	if err := json.NewDecoder(rec.Body).Decode(&tasks); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"tasks", "currentPage", "pageSize", "totalPages"} {
		if _, ok := tasks[key]; !ok {
			t.Fatalf("tasks body is missing %q", key)
		}
	}

	rec = do(h, http.MethodGet, "/api/snippets/shown?taskId=t-9&languageName=Go", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("snippets: expected 200, got %d", rec.Code)
	}
	var snippets struct {
		Snippets []struct {
			TaskID       string `json:"taskId"`
			LanguageName string `json:"languageName"`
		} `json:"snippets"`
		PageSize int `json:"pageSize"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&snippets); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(snippets.Snippets) != 1 || snippets.Snippets[0].TaskID != "t-9" || snippets.Snippets[0].LanguageName != "Go" {
		t.Fatalf("filters not passed through: %+v", snippets)
	}
	if snippets.PageSize != 10 {
		t.Fatalf("expected page size 10, got %d", snippets.PageSize)
	}
}

func TestRouter_UserNotFound(t *testing.T) {
	f := newFixture(t)
	f.creds.getErr = domain.ErrUserNotFound
	rec := do(f.router(), http.MethodGet, "/api/users/missing", "", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_UnexpectedErrorIsHidden(t *testing.T) {
	f := newFixture(t)
	f.languages.allErr = fmt.Errorf("boom: secret detail")
	rec := do(f.router(), http.MethodGet, "/api/languages/getAll", "", "")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	if msg := errorMessage(t, rec); strings.Contains(msg, "secret") {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	h := f.router()
	do(h, http.MethodGet, "/health", "", "")

	rec := do(h, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Fatalf("expected http request metrics in output")
	}
}
