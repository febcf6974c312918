package github

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(server *httptest.Server) *Client {
	return &Client{
		token:   "test-token",
		apiURL:  server.URL,
		httpCli: server.Client(),
	}
}

func TestNewClient_NoToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	if _, err := NewClient(); !errors.Is(err, ErrNoToken) {
		t.Errorf("err = %v, want ErrNoToken", err)
	}
}

func TestNewClient_APIURL(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "tok")
	t.Setenv("GITHUB_API_URL", "https://ghe.example.com/api/v3/")
	c, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	if c.apiURL != "https://ghe.example.com/api/v3" {
		t.Errorf("apiURL = %q", c.apiURL)
	}
}

func TestPostComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Method = %q, want POST", r.Method)
		}
		if r.URL.Path != "/repos/owner/repo/issues/42/comments" {
			t.Errorf("Path = %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-token" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if payload["body"] != "## report" {
			t.Errorf("body = %q", payload["body"])
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":7,"html_url":"https://github.com/owner/repo/pull/42#issuecomment-7"}`))
	}))
	defer server.Close()

	cm, err := testClient(server).PostComment(context.Background(), "owner", "repo", 42, "## report")
	if err != nil {
		t.Fatalf("PostComment error: %v", err)
	}
	if cm.ID != 7 {
		t.Errorf("ID = %d, want 7", cm.ID)
	}
}

func TestPostComment_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"unauthorized", http.StatusUnauthorized, `authentication failed: {"message":"x"}`},
		{"unprocessable", http.StatusUnprocessableEntity, `GitHub rejected comment (422): {"message":"x"}`},
		{"server error", http.StatusInternalServerError, `GitHub API error (status 500): {"message":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(`{"message":"x"}`))
			}))
			defer server.Close()

			_, err := testClient(server).PostComment(context.Background(), "owner", "repo", 1, "b")
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.want {
				t.Errorf("error = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestListComments_404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := testClient(server).ListComments(context.Background(), "owner", "repo", 99)
	if err == nil || err.Error() != "PR #99 not found in owner/repo" {
		t.Errorf("error = %v", err)
	}
}

func TestUpsertComment(t *testing.T) {
	tests := []struct {
		name       string
		existing   []Comment
		wantMethod string
		wantPath   string
	}{
		{
			name:       "updates marked comment",
			existing:   []Comment{{ID: 1, Body: "unrelated"}, {ID: 5, Body: "<!-- mark -->\nold"}},
			wantMethod: http.MethodPatch,
			wantPath:   "/repos/owner/repo/issues/comments/5",
		},
		{
			name:       "posts when absent",
			existing:   []Comment{{ID: 1, Body: "unrelated"}},
			wantMethod: http.MethodPost,
			wantPath:   "/repos/owner/repo/issues/42/comments",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotMethod, gotPath string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method == http.MethodGet {
					json.NewEncoder(w).Encode(tt.existing)
					return
				}
				gotMethod, gotPath = r.Method, r.URL.Path
				w.Write([]byte(`{"id":5}`))
			}))
			defer server.Close()

			_, err := testClient(server).UpsertComment(context.Background(), "owner", "repo", 42, "<!-- mark -->", "<!-- mark -->\nnew")
			if err != nil {
				t.Fatalf("UpsertComment error: %v", err)
			}
			if gotMethod != tt.wantMethod || gotPath != tt.wantPath {
				t.Errorf("request = %s %s, want %s %s", gotMethod, gotPath, tt.wantMethod, tt.wantPath)
			}
		})
	}
}

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{
			name:      "HTTPS",
			url:       "https://github.com/dshills/panelgap.git",
			wantOwner: "dshills",
			wantRepo:  "panelgap",
		},
		{
			name:      "HTTPS no .git",
			url:       "https://github.com/dshills/panelgap",
			wantOwner: "dshills",
			wantRepo:  "panelgap",
		},
		{
			name:      "SSH",
			url:       "git@github.com:dshills/panelgap.git",
			wantOwner: "dshills",
			wantRepo:  "panelgap",
		},
		{
			name:    "invalid",
			url:     "not-a-url",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner, repo, err := ParseRemoteURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if owner != tt.wantOwner {
				t.Errorf("owner = %q, want %q", owner, tt.wantOwner)
			}
			if repo != tt.wantRepo {
				t.Errorf("repo = %q, want %q", repo, tt.wantRepo)
			}
		})
	}
}
