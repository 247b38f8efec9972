package contentapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ID is an API identifier. The API is not consistent about sending ids as
// strings or numbers, so both decode into the same string form.
type ID string

// UnmarshalJSON accepts "12", 12 and null.
func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("contentapi: invalid id %s", b)
	}
	*id = ID(n.String())
	return nil
}

// MarshalJSON emits ids in canonical integer form ("12", "-3") as JSON
// numbers and every other id ("007", "+5", "a1") as a JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil && strconv.FormatInt(n, 10) == string(id) {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id ID) String() string { return string(id) }

// Status is the publication state of a blog post.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)

// Statuses lists every valid status in form order.
var Statuses = []Status{StatusDraft, StatusPublished, StatusArchived}

// ParseStatus returns the Status named by s (case-insensitive).
func ParseStatus(s string) (Status, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, st := range Statuses {
		if string(st) == s {
			return st, true
		}
	}
	return "", false
}

// Tag is a post label, unique by name in the API.
type Tag struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Photo is a gallery image.
type Photo struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Visible     bool   `json:"visible"`
}

// BlogPost is a blog entry as returned by the API.
type BlogPost struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Tags      []Tag     `json:"tags"`
	Photo     *Photo    `json:"photo,omitempty"`
}

// Published reports whether the post may appear on public pages.
func (p BlogPost) Published() bool {
	return p.Status == StatusPublished
}

// TagNames returns the names of the post's tags in order.
func (p BlogPost) TagNames() []string {
	names := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		names = append(names, t.Name)
	}
	return names
}

// TagIDs returns the ids of the post's tags in order.
func (p BlogPost) TagIDs() []ID {
	ids := make([]ID, 0, len(p.Tags))
	for _, t := range p.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// PhotoID returns the id of the attached photo, or "".
func (p BlogPost) PhotoID() ID {
	if p.Photo == nil {
		return ""
	}
	return p.Photo.ID
}

// PostInput is the body for creating a post.
type PostInput struct {
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// PostPatch is a partial post update; nil fields are left untouched.
type PostPatch struct {
	Title     *string    `json:"title,omitempty"`
	Content   *string    `json:"content,omitempty"`
	Status    *Status    `json:"status,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	TagIDs    *[]ID      `json:"tagIds,omitempty"`
}

// PatchFromInput builds a full-body patch from in. A zero CreatedAt is left
// out so the API keeps the date it has.
func PatchFromInput(in PostInput) PostPatch {
	p := PostPatch{
		Title:   &in.Title,
		Content: &in.Content,
		Status:  &in.Status,
	}
	if !in.CreatedAt.IsZero() {
		p.CreatedAt = &in.CreatedAt
	}
	return p
}

// TagsPatch replaces the post's tag set with ids.
func TagsPatch(ids []ID) PostPatch {
	if ids == nil {
		ids = []ID{}
	}
	return PostPatch{TagIDs: &ids}
}

// PhotoPatch is the body for updating photo metadata.
type PhotoPatch struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url,omitempty"`
	Visible     bool   `json:"visible"`
}

// PhotoUpload is a new photo with its encoded image.
type PhotoUpload struct {
	Title       string
	Description string
	Visible     bool
	Filename    string
	ContentType string
	Image       []byte
}
