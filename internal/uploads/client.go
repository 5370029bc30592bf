package uploads

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mannals/takkatuli-backend/internal/utils"
)

// deletedMessage is the exact body the upload service answers with on a
// successful delete. Anything else is treated as failure.
const deletedMessage = "File deleted"

// FileRemover deletes a stored media file by its bare name.
type FileRemover interface {
	DeleteFile(ctx context.Context, filename string, token string) error
}

// Client talks to the external upload service.
type Client struct {
	serverURL string
	http      *http.Client
}

func NewClient(serverURL string, timeout time.Duration) *Client {
	return &Client{
		serverURL: strings.TrimSuffix(serverURL, "/"),
		http:      &http.Client{Timeout: timeout},
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

// DeleteFile issues DELETE /delete/{filename} with a bearer token. Success is
// signaled by the response message "File deleted".
func (c *Client) DeleteFile(ctx context.Context, filename string, token string) error {
	endpoint := c.serverURL + "/delete/" + url.PathEscape(filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return utils.NewRemoteServiceError("upload service", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return utils.NewRemoteServiceError("upload service", err)
	}
	defer resp.Body.Close()

	var body messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return utils.NewRemoteServiceError("upload service", err)
	}

	if body.Message != deletedMessage {
		return utils.NewAppError(utils.ErrRemoteService,
			fmt.Sprintf("upload service did not delete %s: %q", filename, body.Message), nil)
	}
	return nil
}
