package api

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"

	apperrors "github.com/grievease/petition-client-go/internal/errors"
)

// ProofFile is an evidence attachment uploaded alongside a petition or
// an admin status update.
type ProofFile struct {
	Name    string
	Content []byte
}

// buildMultipart assembles a multipart body of plain fields, repeated
// fields, and proof_files parts.
func buildMultipart(fields map[string]string, repeated map[string][]string, fileField string, files []ProofFile) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}
	for name, values := range repeated {
		for _, value := range values {
			if err := w.WriteField(name, value); err != nil {
				return nil, "", err
			}
		}
	}
	for _, f := range files {
		part, err := w.CreateFormFile(fileField, f.Name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(f.Content); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) doMultipart(ctx context.Context, method, rawURL string, fields map[string]string, repeated map[string][]string, files []ProofFile, out any) error {
	body, contentType, err := buildMultipart(fields, repeated, "proof_files", files)
	if err != nil {
		return apperrors.Internal("build multipart request: " + err.Error())
	}
	req, err := c.newRequest(ctx, method, rawURL, body, contentType)
	if err != nil {
		return apperrors.Network(err)
	}
	respBody, err := c.do(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeServer, "Malformed server response", err)
	}
	return nil
}
