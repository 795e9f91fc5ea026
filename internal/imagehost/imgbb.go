package imagehost

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultUploadURL is the imgbb upload endpoint.
const DefaultUploadURL = "https://api.imgbb.com/1/upload"

// Uploader stores a base64 image payload on an external host and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, apiKey, name, payload string) (string, error)
}

type uploadResponse struct {
	Data struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ImgBBClient uploads images through the imgbb form API.
type ImgBBClient struct {
	http      *resty.Client
	uploadURL string
}

var _ Uploader = (*ImgBBClient)(nil)

// NewImgBBClient creates a client posting to uploadURL with the given timeout.
func NewImgBBClient(uploadURL string, timeout time.Duration) *ImgBBClient {
	uploadURL = strings.TrimSpace(uploadURL)
	if uploadURL == "" {
		uploadURL = DefaultUploadURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &ImgBBClient{
		http: resty.New().
			SetHeader("User-Agent", "wedding-gallery-migrator/1.0").
			SetTimeout(timeout),
		uploadURL: uploadURL,
	}
}

// Upload posts payload as the image field and returns the hosted URL.
func (c *ImgBBClient) Upload(ctx context.Context, apiKey, name, payload string) (string, error) {
	if strings.TrimSpace(apiKey) == "" {
		return "", errors.New("image host api key is empty")
	}

	var result uploadResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", apiKey).
		SetFormData(map[string]string{
			"image": payload,
			"name":  name,
		}).
		SetResult(&result).
		SetError(&result).
		Post(c.uploadURL)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	if resp.IsError() {
		msg := strings.TrimSpace(result.Error.Message)
		if msg == "" {
			msg = resp.Status()
		}
		return "", fmt.Errorf("upload %s: image host error (status %d): %s", name, resp.StatusCode(), msg)
	}

	url := strings.TrimSpace(result.Data.URL)
	if url == "" {
		return "", fmt.Errorf("upload %s: image host returned no url", name)
	}
	return url, nil
}
