package wordpress

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/ediblesites/wp-poster/internal/images"
)

// ErrDownloadFailed reports a remote image that could not be fetched before
// re-upload.
var ErrDownloadFailed = errors.New("wordpress: image download failed")

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".webp": "image/webp",
	".svg":  "image/svg+xml",
	".bmp":  "image/bmp",
	".ico":  "image/x-icon",
}

type mediaResult struct {
	ID        int    `json:"id"`
	SourceURL string `json:"source_url"`
}

// UploadFile sends raw image bytes to the media endpoint. nameHint supplies
// the attachment filename; when it carries no usable extension a generated
// name is used instead.
func (c *Client) UploadFile(ctx context.Context, data []byte, nameHint string) (images.Upload, error) {
	filename := attachmentName(nameHint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/media", bytes.NewReader(data))
	if err != nil {
		return images.Upload{}, fmt.Errorf("wordpress: build media request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	req.Header.Set("Content-Type", contentTypeFor(filename))

	resp, err := c.upload.Do(req)
	if err != nil {
		return images.Upload{}, fmt.Errorf("wordpress: upload media: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return images.Upload{}, fmt.Errorf("wordpress: read media response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return images.Upload{}, statusError(resp.StatusCode, body)
	}
	var result mediaResult
	if err := json.Unmarshal(body, &result); err != nil {
		return images.Upload{}, fmt.Errorf("wordpress: decode media response: %w", err)
	}
	c.logger.Debug("media uploaded", "filename", filename, "id", result.ID)
	return images.Upload{URL: result.SourceURL, MediaID: result.ID}, nil
}

// UploadURL downloads a remote image and re-uploads it to the media library.
func (c *Client) UploadURL(ctx context.Context, rawURL string) (images.Upload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return images.Upload{}, fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, err)
	}
	resp, err := c.upload.Do(req)
	if err != nil {
		return images.Upload{}, fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return images.Upload{}, fmt.Errorf("%w: %s: status %d", ErrDownloadFailed, rawURL, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return images.Upload{}, fmt.Errorf("%w: %s: %v", ErrDownloadFailed, rawURL, err)
	}
	return c.UploadFile(ctx, data, urlFilename(rawURL))
}

// attachmentName keeps a hint that already looks like a filename and
// otherwise generates one. Extensionless hints get .jpg so the server
// accepts the attachment.
func attachmentName(hint string) string {
	hint = strings.TrimSpace(path.Base(hint))
	if hint == "" || hint == "." || hint == "/" {
		return uuid.NewString() + ".jpg"
	}
	if path.Ext(hint) == "" {
		return hint + ".jpg"
	}
	return hint
}

func urlFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return path.Base(u.Path)
}

func contentTypeFor(filename string) string {
	if ct, ok := contentTypes[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return "image/jpeg"
}
