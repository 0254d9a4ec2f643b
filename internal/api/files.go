package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	apperrors "github.com/grievease/petition-client-go/internal/errors"
)

// DownloadFile streams a proof/evidence file referenced by name from the
// static uploads path into w.
func (c *Client) DownloadFile(ctx context.Context, filename string, w io.Writer) error {
	rawURL := c.url("/uploads/" + url.PathEscape(filename))
	req, err := c.newRequest(ctx, http.MethodGet, rawURL, nil, "")
	if err != nil {
		return apperrors.Network(err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.Network(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.NotFound("File " + filename)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apperrors.Server(resp.StatusCode, "")
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return apperrors.Network(err)
	}
	return nil
}
