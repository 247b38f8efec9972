// Package contentapi is a typed client for the remote content API that owns
// blog posts, tags and photos. Every operation the site performs against the
// API goes through Client.
package contentapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout = 15 * time.Second
	maxErrorBody   = 512
	maxResponse    = 8 << 20
)

// Client talks to the content API rooted at BaseURL.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("contentapi: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("contentapi: base url %q must be http or https", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// --- Photos ---

// ListPhotos returns every photo, visible or not.
func (c *Client) ListPhotos(ctx context.Context) ([]Photo, error) {
	var photos []Photo
	if err := c.do(ctx, http.MethodGet, "/photos", nil, nil, &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// GetPhoto returns the photo with id.
func (c *Client) GetPhoto(ctx context.Context, id ID) (Photo, error) {
	var p Photo
	err := c.do(ctx, http.MethodGet, "/photos/"+url.PathEscape(id.String()), nil, nil, &p)
	return p, err
}

// UploadPhoto creates a photo from a multipart upload.
func (c *Client) UploadPhoto(ctx context.Context, up PhotoUpload) (Photo, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fields := []struct{ k, v string }{
		{"title", up.Title},
		{"description", up.Description},
		{"visible", strconv.FormatBool(up.Visible)},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.k, f.v); err != nil {
			return Photo{}, fmt.Errorf("contentapi: write field %s: %w", f.k, err)
		}
	}
	if len(up.Image) > 0 {
		ct := up.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, up.Filename))
		h.Set("Content-Type", ct)
		part, err := mw.CreatePart(h)
		if err != nil {
			return Photo{}, fmt.Errorf("contentapi: create image part: %w", err)
		}
		if _, err := part.Write(up.Image); err != nil {
			return Photo{}, fmt.Errorf("contentapi: write image part: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return Photo{}, fmt.Errorf("contentapi: close multipart: %w", err)
	}

	var p Photo
	err := c.do(ctx, http.MethodPost, "/photos/upload", nil, &rawBody{
		contentType: mw.FormDataContentType(),
		data:        buf.Bytes(),
	}, &p)
	return p, err
}

// UpdatePhoto updates photo metadata.
func (c *Client) UpdatePhoto(ctx context.Context, id ID, patch PhotoPatch) (Photo, error) {
	var p Photo
	err := c.do(ctx, http.MethodPatch, "/photos/"+url.PathEscape(id.String()), nil, patch, &p)
	return p, err
}

// DeletePhoto removes a photo.
func (c *Client) DeletePhoto(ctx context.Context, id ID) error {
	return c.do(ctx, http.MethodDelete, "/photos/"+url.PathEscape(id.String()), nil, nil, nil)
}

// --- Blog entries ---

// ListPosts returns every post regardless of status.
func (c *Client) ListPosts(ctx context.Context) ([]BlogPost, error) {
	var posts []BlogPost
	if err := c.do(ctx, http.MethodGet, "/blog-entries", nil, nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetPost returns the post with id regardless of status.
func (c *Client) GetPost(ctx context.Context, id ID) (BlogPost, error) {
	var p BlogPost
	err := c.do(ctx, http.MethodGet, "/blog-entries/"+url.PathEscape(id.String()), nil, nil, &p)
	return p, err
}

// CreatePost creates a post and returns it with its assigned id.
func (c *Client) CreatePost(ctx context.Context, in PostInput) (BlogPost, error) {
	var p BlogPost
	if err := c.do(ctx, http.MethodPost, "/blog-entries", nil, in, &p); err != nil {
		return BlogPost{}, err
	}
	if p.ID == "" {
		return BlogPost{}, fmt.Errorf("contentapi: create post: response has no id")
	}
	return p, nil
}

// UpdatePost applies a partial update to a post.
func (c *Client) UpdatePost(ctx context.Context, id ID, patch PostPatch) (BlogPost, error) {
	var p BlogPost
	err := c.do(ctx, http.MethodPatch, "/blog-entries/"+url.PathEscape(id.String()), nil, patch, &p)
	return p, err
}

// DeletePost removes a post.
func (c *Client) DeletePost(ctx context.Context, id ID) error {
	return c.do(ctx, http.MethodDelete, "/blog-entries/"+url.PathEscape(id.String()), nil, nil, nil)
}

// AttachPhoto sets the post's photo.
func (c *Client) AttachPhoto(ctx context.Context, postID, photoID ID) error {
	body := struct {
		PhotoID ID `json:"photoId"`
	}{photoID}
	return c.do(ctx, http.MethodPost, "/blog-entries/"+url.PathEscape(postID.String())+"/photo", nil, body, nil)
}

// --- Tags ---

// SearchTag looks up a tag by exact name, ignoring case. The second return
// value is false when no such tag exists.
func (c *Client) SearchTag(ctx context.Context, name string) (Tag, bool, error) {
	q := url.Values{"name": {name}}
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/tags/search", q, nil, &raw); err != nil {
		if IsNotFound(err) {
			return Tag{}, false, nil
		}
		return Tag{}, false, err
	}
	candidates, err := decodeTags(raw)
	if err != nil {
		return Tag{}, false, fmt.Errorf("contentapi: decode tag search: %w", err)
	}
	for _, t := range candidates {
		if strings.EqualFold(strings.TrimSpace(t.Name), strings.TrimSpace(name)) {
			return t, true, nil
		}
	}
	return Tag{}, false, nil
}

// CreateTag creates a tag named name.
func (c *Client) CreateTag(ctx context.Context, name string) (Tag, error) {
	body := struct {
		Name string `json:"name"`
	}{name}
	var t Tag
	err := c.do(ctx, http.MethodPost, "/tags", nil, body, &t)
	return t, err
}

// decodeTags accepts a single tag object, an array of tags, or null.
func decodeTags(raw json.RawMessage) ([]Tag, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '[' {
		var tags []Tag
		err := json.Unmarshal(raw, &tags)
		return tags, err
	}
	var t Tag
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	if t.ID == "" && t.Name == "" {
		return nil, nil
	}
	return []Tag{t}, nil
}

// --- transport ---

// rawBody is a pre-encoded request body such as a multipart form.
type rawBody struct {
	contentType string
	data        []byte
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// do sends one request. A non-nil body is JSON-encoded unless it is a
// *rawBody; a non-nil out receives the decoded JSON response.
func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any) error {
	var (
		r           io.Reader
		contentType string
	)
	switch b := body.(type) {
	case nil:
	case *rawBody:
		r = bytes.NewReader(b.data)
		contentType = b.contentType
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return fmt.Errorf("contentapi: encode %s %s: %w", method, path, err)
		}
		r = bytes.NewReader(data)
		contentType = "application/json"
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, q), r)
	if err != nil {
		return fmt.Errorf("contentapi: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("contentapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Method: method,
			Path:   path,
			Status: resp.StatusCode,
			Body:   strings.TrimSpace(string(excerpt)),
		}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponse))
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponse)).Decode(out); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("contentapi: decode %s %s: %w", method, path, err)
	}
	return nil
}
