package sonarqube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issuePage(total, page, size int) searchResponse {
	start := (page - 1) * size
	count := total - start
	if count > size {
		count = size
	}
	resp := searchResponse{Total: total, Page: page, Size: size}
	for i := 0; i < count; i++ {
		n := start + i
		resp.Issues = append(resp.Issues, Issue{
			Key:          fmt.Sprintf("AX%d", n),
			Rule:         "java:S2095",
			Severity:     "MAJOR",
			Type:         "BUG",
			Component:    fmt.Sprintf("myproj:src/File%d.java", n),
			Line:         n + 1,
			Message:      "Close this resource",
			Tags:         []string{"leak"},
			CreationDate: "2025-06-01T12:00:00+0000",
		})
	}
	return resp
}

func TestFetchIssuesSinglePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/issues/search", r.URL.Path)
		assert.Equal(t, "myproj", r.URL.Query().Get("componentKeys"))
		_ = json.NewEncoder(w).Encode(issuePage(3, 1, pageSize))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	findings, err := client.FetchIssues(context.Background(), "myproj")
	require.NoError(t, err)
	require.Len(t, findings, 3)

	// Component prefix stripped, timestamp parsed.
	assert.Equal(t, "src/File0.java", findings[0].Path)
	assert.Equal(t, "java:S2095", findings[0].Rule)
	assert.False(t, findings[0].CreatedAt.IsZero())
}

func TestFetchIssuesPaginates(t *testing.T) {
	const total = pageSize + 120

	var pagesSeen atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("p"))
		require.NoError(t, err)
		pagesSeen.Add(1)
		_ = json.NewEncoder(w).Encode(issuePage(total, page, pageSize))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	findings, err := client.FetchIssues(context.Background(), "myproj")
	require.NoError(t, err)
	assert.Len(t, findings, total)
	assert.Equal(t, int64(2), pagesSeen.Load())

	// Pages reassembled in order.
	assert.Equal(t, "src/File0.java", findings[0].Path)
	assert.Equal(t, fmt.Sprintf("src/File%d.java", total-1), findings[total-1].Path)
}

func TestFetchIssuesSendsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "squ_token", user)
		assert.Empty(t, pass)
		_ = json.NewEncoder(w).Encode(issuePage(1, 1, pageSize))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "squ_token")
	_, err := client.FetchIssues(context.Background(), "myproj")
	require.NoError(t, err)
}

func TestFetchIssuesRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(issuePage(1, 1, pageSize))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "")
	findings, err := client.FetchIssues(context.Background(), "myproj")
	require.NoError(t, err)
	assert.Len(t, findings, 1)
	assert.GreaterOrEqual(t, calls.Load(), int64(2))
}

func TestFetchIssuesClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"msg":"Insufficient privileges"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad")
	_, err := client.FetchIssues(context.Background(), "myproj")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int64(1), calls.Load(), "4xx must not be retried")
}
