// Package upload holds the outbound file services: the imgbb image
// forwarder (server-held API key) and Google Drive receipt storage.
package upload

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const imgbbUploadURL = "https://api.imgbb.com/1/upload"

// ErrNoAPIKey means the server was started without an imgbb key; the
// upload endpoint reports this as a server configuration error.
var ErrNoAPIKey = errors.New("imgbb api key not set")

type ImgbbClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewImgbb(apiKey string) *ImgbbClient {
	return &ImgbbClient{
		apiKey:     apiKey,
		baseURL:    imgbbUploadURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewImgbbWithEndpoint exists for tests that stub the imgbb API.
func NewImgbbWithEndpoint(apiKey, baseURL string, client *http.Client) *ImgbbClient {
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &ImgbbClient{apiKey: apiKey, baseURL: baseURL, httpClient: client}
}

func (c *ImgbbClient) Configured() bool { return c != nil && c.apiKey != "" }

type ImgbbResult struct {
	FileURL      string
	ThumbnailURL string
	DeleteURL    string
}

type imgbbResponse struct {
	Success bool `json:"success"`
	Data    struct {
		URL   string `json:"url"`
		Thumb struct {
			URL string `json:"url"`
		} `json:"thumb"`
		DeleteURL string `json:"delete_url"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Upload forwards a base64 image to imgbb and returns the hosted URLs.
func (c *ImgbbClient) Upload(imageData string) (*ImgbbResult, error) {
	if !c.Configured() {
		return nil, ErrNoAPIKey
	}
	form := url.Values{}
	form.Set("key", c.apiKey)
	form.Set("image", imageData)
	form.Set("expiration", "0")

	resp, err := c.httpClient.Post(c.baseURL, "application/x-www-form-urlencoded",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var parsed imgbbResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("imgbb response: %w", err)
	}
	if !parsed.Success || parsed.Data.URL == "" {
		msg := parsed.Error.Message
		if msg == "" {
			msg = "Upload failed - unknown error"
		}
		return nil, errors.New(msg)
	}
	out := &ImgbbResult{
		FileURL:      parsed.Data.URL,
		ThumbnailURL: parsed.Data.Thumb.URL,
		DeleteURL:    parsed.Data.DeleteURL,
	}
	if out.ThumbnailURL == "" {
		out.ThumbnailURL = out.FileURL
	}
	return out, nil
}
