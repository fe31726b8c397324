package transport

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"classbook/internal/media/sniffer"
)

// FileRef is the mobile-style file reference the photo endpoints accept:
// a local path plus the name and MIME type to present to the server.
type FileRef struct {
	URI  string
	Name string
	Type string
}

// DoMultipart uploads the referenced file under the given form field
// (the API uses "document" for profile photos) and decodes the response
// into out. The MIME type is sniffed from the file content when the
// reference does not declare one. Failure modes match Do.
func (c *Client) DoMultipart(ctx context.Context, method, path, token, field string, file FileRef, out any) error {
	src, err := os.Open(file.URI)
	if err != nil {
		return &UnexpectedError{Message: "open upload file", Err: err}
	}
	defer src.Close()

	name := file.Name
	if name == "" {
		name = filepath.Base(file.URI)
	}

	mimeType := file.Type
	var head []byte
	if mimeType == "" {
		result, consumed, detectErr := sniffer.Detect(src)
		if detectErr != nil {
			return &UnexpectedError{Message: "unsupported photo format", Err: detectErr}
		}
		mimeType = result.MIME
		head = consumed
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="` + field + `"; filename="` + strings.ReplaceAll(name, `"`, "") + `"`},
		"Content-Type":        {mimeType},
	})
	if err != nil {
		return &UnexpectedError{Message: "create form file", Err: err}
	}
	if _, err := io.Copy(part, io.MultiReader(bytes.NewReader(head), src)); err != nil {
		return &UnexpectedError{Message: "copy upload file", Err: err}
	}
	if err := writer.Close(); err != nil {
		return &UnexpectedError{Message: "finalize multipart body", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return &UnexpectedError{Message: "build request", Err: err}
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	httpReq.Header.Set(requestIDHeader, uuid.NewString())
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return c.send(httpReq, out)
}
