package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRootHelpListsCommands(t *testing.T) {
	out, err := execute(t, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	for _, name := range []string{"login", "logout", "whoami", "list", "get", "delete", "stats", "notifications", "reports"} {
		if !strings.Contains(out, name) {
			t.Errorf("help output missing %q:\n%s", name, out)
		}
	}
}

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{"empty", nil, map[string]string{}, false},
		{"pairs", []string{"status=1", " planId = 7 "}, map[string]string{"status": "1", "planId": "7"}, false},
		{"empty value drops key", []string{"status=1", "status="}, map[string]string{}, false},
		{"missing equals", []string{"status"}, nil, true},
		{"missing key", []string{"=1"}, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFilters(tt.pairs)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFilters(%v) error = %v, wantErr %v", tt.pairs, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("parseFilters(%v) = %v, want %v", tt.pairs, got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("filter[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestParseIDArg(t *testing.T) {
	if id, err := parseIDArg(" 12 "); err != nil || id != "12" {
		t.Fatalf("parseIDArg = %q, %v", id, err)
	}
	for _, bad := range []string{"", "abc", "0", "-3"} {
		if _, err := parseIDArg(bad); err == nil {
			t.Errorf("parseIDArg(%q) expected error", bad)
		}
	}
}

func TestGetRejectsInvalidID(t *testing.T) {
	if _, err := execute(t, "get", "clients", "abc"); err == nil {
		t.Fatal("expected invalid id to fail before loading state")
	}
}

func TestListRejectsMalformedFilter(t *testing.T) {
	if _, err := execute(t, "list", "clients", "--filter", "status"); err == nil {
		t.Fatal("expected malformed filter to fail")
	}
}

// fakeRemote serves the login and client list endpoints of the coaching API.
func fakeRemote(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /Auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"token": "cli-token"})
	})
	mux.HandleFunc("GET /Client", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer cli-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("status") != "1" {
			t.Errorf("filter not forwarded: %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{
			"clients": [{"id": 1, "name": "Ana Souza", "email": "ana@example.com", "status": 1}],
			"pageNumber": 1, "pageSize": 20, "totalCount": 1, "totalPages": 1
		}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSessionPersistsAcrossCommands(t *testing.T) {
	srv := fakeRemote(t)
	t.Setenv("APP__API__BASE_URL", srv.URL)
	t.Setenv("APP__DATABASE__SQLITE__PATH", filepath.Join(t.TempDir(), "session.db"))
	t.Setenv(passwordEnv, "")

	if _, err := execute(t, "list", "clients"); err == nil {
		t.Fatal("expected list before login to fail")
	}

	if _, err := execute(t, "login", "--email", "coach@example.com"); err == nil {
		t.Fatal("expected login without password to fail")
	}

	out, err := execute(t, "login", "--email", "coach@example.com", "--password", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Logged in as coach@example.com") {
		t.Errorf("login output = %q", out)
	}

	out, err = execute(t, "list", "clients", "--filter", "status=1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var result struct {
		Items []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
		Pagination struct {
			TotalCount int `json:"totalCount"`
		} `json:"pagination"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("list output is not JSON: %v\n%s", err, out)
	}
	if len(result.Items) != 1 || result.Items[0].Name != "Ana Souza" || result.Pagination.TotalCount != 1 {
		t.Errorf("list result = %+v", result)
	}

	if _, err := execute(t, "list", "planets"); err == nil || !strings.Contains(err.Error(), "unknown domain") {
		t.Errorf("unknown domain error = %v", err)
	}

	if _, err := execute(t, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := execute(t, "list", "clients"); err == nil {
		t.Fatal("expected list after logout to fail")
	}
}
