package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tetsadou/pixup/internal/apperrors"
	"github.com/tetsadou/pixup/internal/httpclient"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	restore := httpclient.SetClientForTesting(server.Client())
	t.Cleanup(restore)
	return NewClient(server.URL, "tok-123")
}

func TestCheckVerification_Valid(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/check_verification", r.URL.Path)
		w.Write([]byte(`{"status":0,"message":"ok"}`))
	})
	require.NoError(t, c.CheckVerification(context.Background(), "tok-123"))
}

func TestCheckVerification_Invalid(t *testing.T) {
	fired := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"status":1,"message":"expired"}`))
	})
	c.OnAuthExpired = func() { fired++ }

	err := c.CheckVerification(context.Background(), "tok-123")
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthExpired(err))
	assert.Equal(t, 1, fired)
}

func TestHistory_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "tok-123", r.Header.Get("X-Verification-Token"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Write([]byte(`{"status":0,"result":[
			{"id":"a","file_name":"x.png","file_url":"https://h/x.png","upload_time":"2026-08-30 10:00:00","channel":"jd","file_size":1536},
			{"id":"b","file_name":"y.gif","file_url":"https://h/y.gif","upload_time":"2026-08-29 09:00:00","channel":"chatglm"}
		]}`))
	})

	items, err := c.History(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].ID)
	assert.Equal(t, int64(1536), items[0].FileSize)
	assert.Equal(t, "chatglm", items[1].Channel)
}

func TestHistory_EmptyListIsNotAnError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0,"result":[]}`))
	})
	items, err := c.History(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestHistory_ServerStatusMessagePassthrough(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":1,"message":"database unavailable"}`))
	})
	_, err := c.History(context.Background())
	require.Error(t, err)
	kind, ok := apperrors.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindServer, kind)
	assert.Equal(t, "database unavailable", apperrors.PublicMessage(err))
}

func TestHistory_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>gateway error</html>`))
	})
	_, err := c.History(context.Background())
	require.Error(t, err)
	kind, _ := apperrors.KindOf(err)
	assert.Equal(t, apperrors.KindPayload, kind)
}

func TestUpload_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "jd", r.FormValue("channel"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "cat.png", header.Filename)
		w.Write([]byte(`{"status":0,"result":{"file_url":"https://x/y.png","width":100,"height":50}}`))
	})

	result, err := c.Upload(context.Background(), UploadRequest{
		FileName: "cat.png",
		Channel:  "jd",
		Content:  strings.NewReader("fake image bytes"),
		Size:     16,
	})
	require.NoError(t, err)
	assert.Equal(t, "https://x/y.png", result.FileURL)
	assert.Equal(t, 100, result.Width)
	assert.Equal(t, 50, result.Height)
}

func TestUpload_ProgressReachesTotal(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0,"result":{"file_url":"https://x/y.png"}}`))
	})

	var lastSent, total int64
	_, err := c.Upload(context.Background(), UploadRequest{
		FileName: "cat.png",
		Channel:  "jd",
		Content:  strings.NewReader(strings.Repeat("x", 64*1024)),
		OnProgress: func(sent, tot int64) {
			require.LessOrEqual(t, sent, tot)
			lastSent, total = sent, tot
		},
	})
	require.NoError(t, err)
	assert.Equal(t, total, lastSent, "final progress report must cover the full body")
	assert.Greater(t, total, int64(64*1024), "total includes multipart framing")
}

func TestUpload_413IsDistinct(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	})
	_, err := c.Upload(context.Background(), UploadRequest{
		FileName: "cat.png", Channel: "jd", Content: strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.Contains(t, apperrors.PublicMessage(err), "413")
	assert.Contains(t, apperrors.PublicMessage(err), "too large")
}

func TestUpload_401ClearsAndRedirects(t *testing.T) {
	fired := 0
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c.OnAuthExpired = func() { fired++ }

	_, err := c.Upload(context.Background(), UploadRequest{
		FileName: "cat.png", Channel: "jd", Content: strings.NewReader("x"),
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsAuthExpired(err))
	assert.Equal(t, 1, fired)
}

func TestStatusTableFallback(t *testing.T) {
	tests := []struct {
		name string
		code int
		body string
		want string
	}{
		{"JSON message preferred", http.StatusBadGateway, `{"status":1,"message":"custom"}`, "custom"},
		{"Table fallback", http.StatusServiceUnavailable, "", "temporarily unavailable"},
		{"Status text fallback", http.StatusTeapot, "", "teapot"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.code)
				w.Write([]byte(tt.body))
			})
			_, err := c.History(context.Background())
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(apperrors.PublicMessage(err)), tt.want)
		})
	}
}

func TestUploadFromURL_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/upload_from_url", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"status":0,"result":{"file_url":"https://x/remote.webp"}}`))
	})
	result, err := c.UploadFromURL(context.Background(), "https://elsewhere/remote.webp", "miyoushe")
	require.NoError(t, err)
	assert.Equal(t, "https://x/remote.webp", result.FileURL)
}

func TestDeleteAndClear(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		paths = append(paths, r.URL.Path)
		w.Write([]byte(`{"status":0}`))
	})

	require.NoError(t, c.DeleteHistory(context.Background(), "item-1"))
	require.NoError(t, c.ClearHistory(context.Background()))
	assert.Equal(t, []string{"/delete_history/item-1", "/clear_history"}, paths)
}

func TestTimeoutIsRetryableNotAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"status":0}`))
	}))
	t.Cleanup(server.Close)
	slow := server.Client()
	slow.Timeout = 20 * time.Millisecond
	restore := httpclient.SetClientForTesting(slow)
	t.Cleanup(restore)

	c := NewClient(server.URL, "tok-123")
	err := c.CheckVerification(context.Background(), "tok-123")
	require.Error(t, err)
	kind, _ := apperrors.KindOf(err)
	assert.Equal(t, apperrors.KindTimeout, kind)
	assert.False(t, apperrors.IsAuthExpired(err))
	assert.True(t, apperrors.IsRetryable(err))
}

func TestCanceledRequest(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		w.Write([]byte(`{"status":0}`))
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := c.CheckVerification(ctx, "tok-123")
	require.Error(t, err)
	assert.Equal(t, "Request canceled.", apperrors.PublicMessage(err))
}
