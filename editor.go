package folio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/contentapi"
	"github.com/eringen/folio/views"
)

const (
	dateLayout          = "2006-01-02"
	compensationTimeout = 10 * time.Second
)

// ValidationError reports a post or photo form that cannot be saved as
// submitted. Message is shown to the admin.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("folio: invalid %s: %s", e.Field, e.Message)
}

// StepError is returned when a step of the post save workflow fails. The
// steps completed before it have already been compensated.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("folio: save post: %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// PostDraft is a validated post form, ready to be sent to the API.
type PostDraft struct {
	Title     string
	Content   string
	Status    contentapi.Status
	CreatedAt time.Time
	TagNames  []string
	PhotoID   contentapi.ID
}

func (d PostDraft) input() contentapi.PostInput {
	return contentapi.PostInput{
		Title:     d.Title,
		Content:   d.Content,
		Status:    d.Status,
		CreatedAt: d.CreatedAt,
	}
}

// NormalizePostForm validates a submitted post form. An empty status means
// draft and an empty date means today (in UTC).
func NormalizePostForm(form views.PostForm, now time.Time) (PostDraft, error) {
	d := PostDraft{
		Title:    strings.TrimSpace(form.Title),
		Content:  strings.TrimSpace(form.Content),
		TagNames: SplitTags(form.Tags),
		PhotoID:  contentapi.ID(strings.TrimSpace(form.PhotoID)),
	}
	if d.Title == "" {
		return PostDraft{}, &ValidationError{Field: "title", Message: "El título es obligatorio."}
	}
	if d.Content == "" {
		return PostDraft{}, &ValidationError{Field: "content", Message: "El contenido es obligatorio."}
	}

	d.Status = contentapi.StatusDraft
	if strings.TrimSpace(form.Status) != "" {
		st, ok := contentapi.ParseStatus(form.Status)
		if !ok {
			return PostDraft{}, &ValidationError{Field: "status", Message: "Estado no válido."}
		}
		d.Status = st
	}

	created, err := normalizeDate(form.Date, now)
	if err != nil {
		return PostDraft{}, &ValidationError{Field: "date", Message: "Fecha no válida. Usa AAAA-MM-DD."}
	}
	d.CreatedAt = created
	return d, nil
}

// normalizeDate accepts YYYY-MM-DD or RFC 3339 and returns a UTC time.
func normalizeDate(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	if t, err := time.Parse(dateLayout, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// SplitTags parses a comma-separated tag field. Names are trimmed, empty
// entries dropped and case-insensitive duplicates removed, keeping the first
// spelling.
func SplitTags(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		name := strings.Join(strings.Fields(part), " ")
		if name == "" {
			continue
		}
		key := normalizeTag(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

// PostEditor runs the admin save workflow for blog posts: save the body,
// attach the photo, resolve tags by search-or-create, then attach tags.
// The first failing step stops the workflow and every completed step is
// compensated in reverse order.
type PostEditor struct {
	api    ContentAPI
	logger echo.Logger
}

// NewPostEditor creates a PostEditor that logs through logger.
func NewPostEditor(api ContentAPI, logger echo.Logger) *PostEditor {
	return &PostEditor{api: api, logger: logger}
}

type saveStep struct {
	name string
	run  func(ctx context.Context) error
	undo func(ctx context.Context) error
}

// Create saves draft as a new post.
func (e *PostEditor) Create(ctx context.Context, draft PostDraft) (contentapi.BlogPost, error) {
	return e.save(ctx, nil, draft)
}

// Update saves draft over existing.
func (e *PostEditor) Update(ctx context.Context, existing contentapi.BlogPost, draft PostDraft) (contentapi.BlogPost, error) {
	return e.save(ctx, &existing, draft)
}

func (e *PostEditor) save(ctx context.Context, existing *contentapi.BlogPost, draft PostDraft) (contentapi.BlogPost, error) {
	var (
		post     contentapi.BlogPost
		resolved []contentapi.Tag
		steps    []saveStep
	)
	isNew := existing == nil
	if !isNew {
		post = *existing
	}

	if isNew {
		steps = append(steps, saveStep{
			name: "create post",
			run: func(ctx context.Context) error {
				p, err := e.api.CreatePost(ctx, draft.input())
				if err != nil {
					return err
				}
				post = p
				return nil
			},
			undo: func(ctx context.Context) error {
				return e.api.DeletePost(ctx, post.ID)
			},
		})
	} else {
		prev := *existing
		steps = append(steps, saveStep{
			name: "update post",
			run: func(ctx context.Context) error {
				p, err := e.api.UpdatePost(ctx, prev.ID, contentapi.PatchFromInput(draft.input()))
				if err != nil {
					return err
				}
				post = mergePost(post, p)
				return nil
			},
			undo: func(ctx context.Context) error {
				_, err := e.api.UpdatePost(ctx, prev.ID, contentapi.PatchFromInput(contentapi.PostInput{
					Title:     prev.Title,
					Content:   prev.Content,
					Status:    prev.Status,
					CreatedAt: prev.CreatedAt,
				}))
				return err
			},
		})
	}

	if draft.PhotoID != "" && (isNew || draft.PhotoID != existing.PhotoID()) {
		prevPhoto := contentapi.ID("")
		if !isNew {
			prevPhoto = existing.PhotoID()
		}
		steps = append(steps, saveStep{
			name: "attach photo",
			run: func(ctx context.Context) error {
				if err := e.api.AttachPhoto(ctx, post.ID, draft.PhotoID); err != nil {
					return err
				}
				post.Photo = &contentapi.Photo{ID: draft.PhotoID}
				return nil
			},
			undo: func(ctx context.Context) error {
				if prevPhoto == "" {
					return nil
				}
				return e.api.AttachPhoto(ctx, post.ID, prevPhoto)
			},
		})
	}

	steps = append(steps,
		saveStep{
			name: "resolve tags",
			run: func(ctx context.Context) error {
				tags, err := e.resolveTags(ctx, post.Tags, draft.TagNames)
				if err != nil {
					return err
				}
				resolved = tags
				return nil
			},
		},
		saveStep{
			name: "attach tags",
			run: func(ctx context.Context) error {
				if sameTagSet(post.Tags, resolved) {
					return nil
				}
				ids := make([]contentapi.ID, 0, len(resolved))
				for _, t := range resolved {
					ids = append(ids, t.ID)
				}
				if _, err := e.api.UpdatePost(ctx, post.ID, contentapi.TagsPatch(ids)); err != nil {
					return err
				}
				post.Tags = resolved
				return nil
			},
		},
	)

	if err := e.run(ctx, steps); err != nil {
		return contentapi.BlogPost{}, err
	}
	return post, nil
}

func (e *PostEditor) run(ctx context.Context, steps []saveStep) error {
	for i, s := range steps {
		if err := s.run(ctx); err != nil {
			e.logger.Errorf("save post: %s failed: %v", s.name, err)
			e.compensate(ctx, steps[:i])
			return &StepError{Step: s.name, Err: err}
		}
	}
	return nil
}

// compensate undoes done in reverse order. It detaches from ctx's
// cancellation so a dropped client connection does not strand a half-saved
// post.
func (e *PostEditor) compensate(ctx context.Context, done []saveStep) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()
	for i := len(done) - 1; i >= 0; i-- {
		s := done[i]
		if s.undo == nil {
			continue
		}
		if err := s.undo(ctx); err != nil {
			e.logger.Errorf("save post: undo %s failed: %v", s.name, err)
		}
	}
}

// resolveTags maps names to tags. Names already on the post reuse its tag;
// every other name is searched by name and created when absent.
func (e *PostEditor) resolveTags(ctx context.Context, current []contentapi.Tag, names []string) ([]contentapi.Tag, error) {
	have := make(map[string]contentapi.Tag, len(current))
	for _, t := range current {
		have[normalizeTag(t.Name)] = t
	}
	out := make([]contentapi.Tag, 0, len(names))
	for _, name := range names {
		if t, ok := have[normalizeTag(name)]; ok {
			out = append(out, t)
			continue
		}
		t, found, err := e.api.SearchTag(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("search tag %q: %w", name, err)
		}
		if !found {
			t, err = e.api.CreateTag(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("create tag %q: %w", name, err)
			}
		}
		if t.ID == "" {
			return nil, fmt.Errorf("tag %q has no id", name)
		}
		have[normalizeTag(name)] = t
		out = append(out, t)
	}
	return out, nil
}

func sameTagSet(a, b []contentapi.Tag) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[contentapi.ID]struct{}, len(a))
	for _, t := range a {
		set[t.ID] = struct{}{}
	}
	for _, t := range b {
		if _, ok := set[t.ID]; !ok {
			return false
		}
	}
	return true
}

// mergePost overlays the API's update response on the post we already
// hold. Some APIs answer a PATCH with a partial body or nothing at all.
func mergePost(held, resp contentapi.BlogPost) contentapi.BlogPost {
	if resp.ID == "" {
		return held
	}
	if resp.Tags == nil {
		resp.Tags = held.Tags
	}
	if resp.Photo == nil {
		resp.Photo = held.Photo
	}
	return resp
}

// IsValidationError reports whether err is a *ValidationError and returns it.
func IsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
