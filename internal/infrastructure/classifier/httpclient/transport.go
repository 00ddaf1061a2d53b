package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
)

const (
	emailField      = "email"
	attachmentField = "attachments"

	maxResponseBytes = 8 << 20
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client) postMultipart(ctx context.Context, email domain.File, attachments []domain.File) (*domain.ClassificationResult, error) {
	body, contentType, err := buildMultipartBody(email, attachments)
	if err != nil {
		return nil, fmt.Errorf("build classify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("create classify request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read classify response: %w", err)
	}

	// The body is decoded whatever the status; error payloads carry the
	// message shown to the user.
	var result domain.ClassificationResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &ResponseError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(raw),
			Err:        err,
		}
	}
	return &result, nil
}

// buildMultipartBody writes the email part first, then one part per
// attachment under a shared field name, in order.
func buildMultipartBody(email domain.File, attachments []domain.File) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	if err := writeFilePart(writer, emailField, email); err != nil {
		return nil, "", err
	}
	for _, attachment := range attachments {
		if err := writeFilePart(writer, attachmentField, attachment); err != nil {
			return nil, "", err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}

func writeFilePart(writer *multipart.Writer, field string, file domain.File) error {
	mediaType := strings.TrimSpace(file.MediaType)
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(file.Name)))
	header.Set("Content-Type", mediaType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create %s part: %w", field, err)
	}
	if _, err := part.Write(file.Content); err != nil {
		return fmt.Errorf("write %s part: %w", field, err)
	}
	return nil
}

// ResponseError reports a response body that is not a JSON object.
type ResponseError struct {
	StatusCode int
	Status     string
	Body       string
	Err        error
}

func (e *ResponseError) Error() string {
	if e == nil {
		return "classify response error"
	}
	body := strings.TrimSpace(e.Body)
	if len(body) > 512 {
		body = body[:512]
	}
	if body == "" {
		return fmt.Sprintf("classify response status %s: %v", e.Status, e.Err)
	}
	return fmt.Sprintf("classify response status %s: %v: %s", e.Status, e.Err, body)
}

func (e *ResponseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
