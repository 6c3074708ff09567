package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/codetyper/codetyper-api/internal/core/domain"
	"github.com/codetyper/codetyper-api/internal/core/ports"
)

type stubTaskService struct {
	addFn  func(ctx context.Context, in ports.AddTaskInput) (*domain.Task, string, error)
	denyFn func(ctx context.Context, in ports.DenyInput) (string, error)
	reqFn  func(ctx context.Context) (*ports.TaskRequest, error)
	listFn func(ctx context.Context, page, pageSize int) (*ports.TaskPage, error)
}

func (s *stubTaskService) ListShown(ctx context.Context, page, pageSize int) (*ports.TaskPage, error) {
	return s.listFn(ctx, page, pageSize)
}

func (s *stubTaskService) Add(ctx context.Context, in ports.AddTaskInput) (*domain.Task, string, error) {
	return s.addFn(ctx, in)
}

func (s *stubTaskService) RandomRequest(ctx context.Context) (*ports.TaskRequest, error) {
	return s.reqFn(ctx)
}

func (s *stubTaskService) Accept(context.Context, string) error { return nil }

func (s *stubTaskService) Deny(ctx context.Context, in ports.DenyInput) (string, error) {
	return s.denyFn(ctx, in)
}

type stubSnippetService struct {
	addFn  func(ctx context.Context, in ports.AddSnippetInput) (*domain.Snippet, string, error)
	reqFn  func(ctx context.Context) (*ports.SnippetRequest, error)
	listFn func(ctx context.Context, in ports.ListSnippetsInput) (*ports.SnippetPage, error)
}

func (s *stubSnippetService) ListShown(ctx context.Context, in ports.ListSnippetsInput) (*ports.SnippetPage, error) {
	return s.listFn(ctx, in)
}

func (s *stubSnippetService) Add(ctx context.Context, in ports.AddSnippetInput) (*domain.Snippet, string, error) {
	return s.addFn(ctx, in)
}

func (s *stubSnippetService) Random(context.Context) (*domain.Snippet, error) {
	return nil, domain.ErrSnippetNotFound
}

func (s *stubSnippetService) RandomRequest(ctx context.Context) (*ports.SnippetRequest, error) {
	return s.reqFn(ctx)
}

func (s *stubSnippetService) Accept(context.Context, string) error { return nil }

func (s *stubSnippetService) Deny(context.Context, ports.DenyInput) (string, error) { return "", nil }

type stubLanguageService struct {
	langs []domain.Language
	added string
}

func (s *stubLanguageService) Add(_ context.Context, name string) (string, error) {
	s.added = name
	return "Language '" + name + "' added.", nil
}

func (s *stubLanguageService) All(context.Context) ([]domain.Language, error) {
	return s.langs, nil
}

func (s *stubLanguageService) ByName(_ context.Context, name string) (*domain.Language, error) {
	for _, l := range s.langs {
		if strings.EqualFold(l.Name, name) {
			return &l, nil
		}
	}
	return nil, domain.ErrLanguageNotFound
}

func TestTaskHandler_Add_StaffPublishesImmediately(t *testing.T) {
	var got ports.AddTaskInput
	h := NewTaskHandler(&stubTaskService{
		addFn: func(_ context.Context, in ports.AddTaskInput) (*domain.Task, string, error) {
			got = in
			return &domain.Task{ID: "t-1", Name: in.Name, Shown: in.Submitter.IsStaff, CreatorID: in.Submitter.UserID}, "Task 'FizzBuzz' added.", nil
		},
	})

	c, rec := newJSONContext(http.MethodPost, "/api/tasks/add", `{"name":"FizzBuzz","description":"print numbers","creatorId":"someone-else"}`)
	withSession(c, domain.RoleAdmin, "admin-1")

	if err := h.Add(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.Submitter.UserID != "admin-1" || !got.Submitter.IsStaff {
		t.Fatalf("unexpected submitter: %+v", got.Submitter)
	}

	var resp addTaskResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Message != "Task 'FizzBuzz' added." || !resp.Task.Shown {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestTaskHandler_Add_RegularUserIsNotStaff(t *testing.T) {
	var got ports.AddTaskInput
	h := NewTaskHandler(&stubTaskService{
		addFn: func(_ context.Context, in ports.AddTaskInput) (*domain.Task, string, error) {
			got = in
			return &domain.Task{ID: "t-1", Name: in.Name}, "Request to add task 'FizzBuzz' sent.", nil
		},
	})

	c, _ := newJSONContext(http.MethodPost, "/api/tasks/add", `{"name":"FizzBuzz","description":"print numbers"}`)
	withSession(c, domain.RoleUser, "u-1")

	if err := h.Add(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got.Submitter.UserID != "u-1" || got.Submitter.IsStaff {
		t.Fatalf("unexpected submitter: %+v", got.Submitter)
	}
}

func TestTaskHandler_Add_ValidationFails(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{})

	c, _ := newJSONContext(http.MethodPost, "/api/tasks/add", `{"description":"no name"}`)

	err := h.Add(c)
	assertHTTPError(t, err, http.StatusBadRequest)
	if !strings.Contains(err.Error(), "name is required") {
		t.Fatalf("expected the json field name in the message, got %v", err)
	}
}

func TestTaskHandler_Deny(t *testing.T) {
	var got ports.DenyInput
	h := NewTaskHandler(&stubTaskService{
		denyFn: func(_ context.Context, in ports.DenyInput) (string, error) {
			got = in
			return "Task request denied.", nil
		},
	})

	c, rec := newJSONContext(http.MethodDelete, "/api/tasks/denyRequest/t-7", `{"reason":"off topic"}`)
	c.SetParamNames("id")
	c.SetParamValues("t-7")
	withSession(c, domain.RoleModerator, "mod-1")

	if err := h.Deny(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got != (ports.DenyInput{ID: "t-7", Reason: "off topic", StaffID: "mod-1"}) {
		t.Fatalf("unexpected deny input: %+v", got)
	}
}

func TestTaskHandler_RandomRequest_NoPending(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{
		reqFn: func(context.Context) (*ports.TaskRequest, error) {
			return nil, domain.ErrNoPendingRequests
		},
	})

	c, _ := newJSONContext(http.MethodGet, "/api/tasks/randomRequest", "")

	if err := h.RandomRequest(c); !errors.Is(err, domain.ErrNoPendingRequests) {
		t.Fatalf("expected ErrNoPendingRequests, got %v", err)
	}
}

func TestTaskHandler_RandomRequest_IncludesCreator(t *testing.T) {
	h := NewTaskHandler(&stubTaskService{
		reqFn: func(context.Context) (*ports.TaskRequest, error) {
			return &ports.TaskRequest{
				Task:    &domain.Task{ID: "t-1", Name: "FizzBuzz"},
				Creator: &domain.Identity{ID: "u-1", Username: "alice", PasswordHash: "secret", Role: domain.RoleUser},
				Pending: 3,
			}, nil
		},
	})

	c, rec := newJSONContext(http.MethodGet, "/api/tasks/randomRequest", "")

	if err := h.RandomRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp taskRequestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Pending != 3 || resp.Creator == nil || resp.Creator.Username != "alice" {
		t.Fatalf("unexpected body: %+v", resp)
	}
	if strings.Contains(rec.Body.String(), "secret") {
		t.Fatalf("password hash leaked")
	}
}

func TestSnippetHandler_Add_AnonymousUsesBodyCreator(t *testing.T) {
	var got ports.AddSnippetInput
	h := NewSnippetHandler(&stubSnippetService{
		addFn: func(_ context.Context, in ports.AddSnippetInput) (*domain.Snippet, string, error) {
			got = in
			return &domain.Snippet{ID: "s-1", LanguageName: in.LanguageName, TaskID: in.TaskID}, "Request to add snippet sent.", nil
		},
	})

	c, rec := newJSONContext(http.MethodPost, "/api/snippets/add",
		`{"content":"fmt.Println(1)","languageName":"Go","taskId":"t-1","creatorId":"u-5"}`)

	if err := h.Add(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if got.Submitter.UserID != "u-5" || got.Submitter.IsStaff {
		t.Fatalf("unexpected submitter: %+v", got.Submitter)
	}
}

func TestSnippetHandler_Random_NotFound(t *testing.T) {
	h := NewSnippetHandler(&stubSnippetService{})

	c, _ := newJSONContext(http.MethodGet, "/api/snippets/random", "")

	if err := h.Random(c); !errors.Is(err, domain.ErrSnippetNotFound) {
		t.Fatalf("expected ErrSnippetNotFound, got %v", err)
	}
}

func TestSnippetHandler_RandomRequest_WithTask(t *testing.T) {
	h := NewSnippetHandler(&stubSnippetService{
		reqFn: func(context.Context) (*ports.SnippetRequest, error) {
			return &ports.SnippetRequest{
				Snippet: &domain.Snippet{ID: "s-2", TaskID: "t-1"},
				Task:    &domain.Task{ID: "t-1", Name: "FizzBuzz"},
			}, nil
		},
	})

	c, rec := newJSONContext(http.MethodGet, "/api/snippets/randomRequest", "")

	if err := h.RandomRequest(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp snippetRequestResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Task == nil || resp.Task.Name != "FizzBuzz" || resp.Creator != nil {
		t.Fatalf("unexpected body: %+v", resp)
	}
}

func TestLanguageHandler_AllReturnsEmptyArray(t *testing.T) {
	h := NewLanguageHandler(&stubLanguageService{})

	c, rec := newJSONContext(http.MethodGet, "/api/languages/getAll", "")

	if err := h.All(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Fatalf("expected empty array, got %s", got)
	}
}

func TestLanguageHandler_Add(t *testing.T) {
	svc := &stubLanguageService{}
	h := NewLanguageHandler(svc)

	c, rec := newJSONContext(http.MethodPost, "/api/languages/add", `{"name":"Rust"}`)

	if err := h.Add(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated || svc.added != "Rust" {
		t.Fatalf("unexpected result: %d %q", rec.Code, svc.added)
	}
}

func TestLanguageHandler_Get(t *testing.T) {
	h := NewLanguageHandler(&stubLanguageService{langs: []domain.Language{{Name: "Go"}}})

	c, rec := newJSONContext(http.MethodGet, "/api/languages/get/go", "")
	c.SetParamNames("name")
	c.SetParamValues("go")

	if err := h.Get(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var lang domain.Language
	if err := json.Unmarshal(rec.Body.Bytes(), &lang); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if lang.Name != "Go" {
		t.Fatalf("unexpected language: %+v", lang)
	}
}

func TestTaskHandler_Shown_PassesPagingThrough(t *testing.T) {
	var gotPage, gotSize int
	h := NewTaskHandler(&stubTaskService{
		listFn: func(_ context.Context, page, pageSize int) (*ports.TaskPage, error) {
			gotPage, gotSize = page, pageSize
			return &ports.TaskPage{
				Tasks:      []domain.Task{{ID: "t-1", Name: "FizzBuzz", Shown: true}},
				Page:       2,
				PageSize:   5,
				TotalPages: 4,
			}, nil
		},
	})

	c, rec := newJSONContext(http.MethodGet, "/api/tasks/shown?page=2&pageSize=5", "")

	if err := h.Shown(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotPage != 2 || gotSize != 5 {
		t.Fatalf("unexpected paging: page=%d size=%d", gotPage, gotSize)
	}
	var resp shownTasksResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Tasks) != 1 || resp.Tasks[0].Name != "FizzBuzz" {
		t.Fatalf("unexpected tasks: %+v", resp.Tasks)
	}
	if resp.CurrentPage != 2 || resp.PageSize != 5 || resp.TotalPages != 4 {
		t.Fatalf("unexpected paging in body: %+v", resp)
	}
}

func TestTaskHandler_Shown_MalformedPagingFallsBack(t *testing.T) {
	gotPage, gotSize := -1, -1
	h := NewTaskHandler(&stubTaskService{
		listFn: func(_ context.Context, page, pageSize int) (*ports.TaskPage, error) {
			gotPage, gotSize = page, pageSize
			return &ports.TaskPage{Page: 1, PageSize: 15}, nil
		},
	})

	c, rec := newJSONContext(http.MethodGet, "/api/tasks/shown?page=abc", "")

	if err := h.Shown(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotPage != 0 || gotSize != 0 {
		t.Fatalf("malformed values should read as zero, got page=%d size=%d", gotPage, gotSize)
	}
	if !strings.Contains(rec.Body.String(), `"tasks":[]`) {
		t.Fatalf("expected an empty tasks array, got %s", rec.Body.String())
	}
}

func TestSnippetHandler_Shown_Filters(t *testing.T) {
	var got ports.ListSnippetsInput
	h := NewSnippetHandler(&stubSnippetService{
		listFn: func(_ context.Context, in ports.ListSnippetsInput) (*ports.SnippetPage, error) {
			got = in
			return &ports.SnippetPage{
				Snippets:   []domain.Snippet{{ID: "s-1", LanguageName: "Go", TaskID: "t-1", Shown: true}},
				Page:       1,
				PageSize:   10,
				TotalPages: 1,
			}, nil
		},
	})

	c, rec := newJSONContext(http.MethodGet, "/api/snippets/shown?taskId=t-1&languageName=go", "")

	if err := h.Shown(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	want := ports.ListSnippetsInput{Filter: ports.SnippetFilter{TaskID: "t-1", LanguageName: "go"}}
	if got != want {
		t.Fatalf("unexpected input: %+v", got)
	}
	var resp shownSnippetsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp.Snippets) != 1 || resp.Snippets[0].ID != "s-1" || resp.TotalPages != 1 {
		t.Fatalf("unexpected body: %+v", resp)
	}
}
