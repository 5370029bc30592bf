package uploads

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mannals/takkatuli-backend/internal/utils"
)

func TestDeleteFileSuccess(t *testing.T) {
	var gotPath, gotAuth, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotMethod = r.Method
		w.Write([]byte(`{"message": "File deleted"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	err := client.DeleteFile(context.Background(), "cat.jpg", "test-token")
	require.NoError(t, err)

	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/delete/cat.jpg", gotPath)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestDeleteFileUnexpectedMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message": "File not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	err := client.DeleteFile(context.Background(), "gone.jpg", "test-token")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrRemoteService))
}

func TestDeleteFileServerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, time.Second)
	err := client.DeleteFile(context.Background(), "cat.jpg", "test-token")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrRemoteService))
}
