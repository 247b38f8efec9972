package folio

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/eringen/folio/contentapi"
)

// fakeAPI is an in-memory ContentAPI that records every call and can be
// told to fail a named operation.
type fakeAPI struct {
	mu     sync.Mutex
	posts  map[contentapi.ID]contentapi.BlogPost
	photos map[contentapi.ID]contentapi.Photo
	tags   map[contentapi.ID]contentapi.Tag
	nextID int
	calls  []string
	fail   map[string]error

	// postPatches holds every UpdatePost body in call order.
	postPatches []contentapi.PostPatch
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		posts:  make(map[contentapi.ID]contentapi.BlogPost),
		photos: make(map[contentapi.ID]contentapi.Photo),
		tags:   make(map[contentapi.ID]contentapi.Tag),
		nextID: 100,
		fail:   make(map[string]error),
	}
}

func (f *fakeAPI) record(op string) error {
	f.calls = append(f.calls, op)
	return f.fail[op]
}

func (f *fakeAPI) newID() contentapi.ID {
	f.nextID++
	return contentapi.ID(strconv.Itoa(f.nextID))
}

func (f *fakeAPI) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeAPI) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) resetCalls() {
	f.mu.Lock()
	f.calls = nil
	f.mu.Unlock()
}

func (f *fakeAPI) addPost(p contentapi.BlogPost) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[p.ID] = p
}

func (f *fakeAPI) addPhoto(p contentapi.Photo) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos[p.ID] = p
}

func (f *fakeAPI) addTag(t contentapi.Tag) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tags[t.ID] = t
}

func (f *fakeAPI) post(id contentapi.ID) (contentapi.BlogPost, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.posts[id]
	return p, ok
}

func notFound(method, path string) error {
	return &contentapi.Error{Method: method, Path: path, Status: 404}
}

func (f *fakeAPI) ListPhotos(ctx context.Context) ([]contentapi.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListPhotos"); err != nil {
		return nil, err
	}
	var out []contentapi.Photo
	for _, p := range f.photos {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeAPI) GetPhoto(ctx context.Context, id contentapi.ID) (contentapi.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetPhoto"); err != nil {
		return contentapi.Photo{}, err
	}
	p, ok := f.photos[id]
	if !ok {
		return contentapi.Photo{}, notFound("GET", "/photos/"+string(id))
	}
	return p, nil
}

func (f *fakeAPI) UploadPhoto(ctx context.Context, up contentapi.PhotoUpload) (contentapi.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UploadPhoto"); err != nil {
		return contentapi.Photo{}, err
	}
	id := f.newID()
	p := contentapi.Photo{ID: id, Title: up.Title, Description: up.Description, Visible: up.Visible, URL: "/uploads/" + up.Filename}
	f.photos[id] = p
	return p, nil
}

func (f *fakeAPI) UpdatePhoto(ctx context.Context, id contentapi.ID, patch contentapi.PhotoPatch) (contentapi.Photo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("UpdatePhoto"); err != nil {
		return contentapi.Photo{}, err
	}
	p, ok := f.photos[id]
	if !ok {
		return contentapi.Photo{}, notFound("PATCH", "/photos/"+string(id))
	}
	p.Title, p.Description, p.Visible = patch.Title, patch.Description, patch.Visible
	if patch.URL != "" {
		p.URL = patch.URL
	}
	f.photos[id] = p
	return p, nil
}

func (f *fakeAPI) DeletePhoto(ctx context.Context, id contentapi.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeletePhoto"); err != nil {
		return err
	}
	delete(f.photos, id)
	return nil
}

func (f *fakeAPI) ListPosts(ctx context.Context) ([]contentapi.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListPosts"); err != nil {
		return nil, err
	}
	var out []contentapi.BlogPost
	for _, p := range f.posts {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakeAPI) GetPost(ctx context.Context, id contentapi.ID) (contentapi.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetPost"); err != nil {
		return contentapi.BlogPost{}, err
	}
	p, ok := f.posts[id]
	if !ok {
		return contentapi.BlogPost{}, notFound("GET", "/blog-entries/"+string(id))
	}
	return p, nil
}

func (f *fakeAPI) CreatePost(ctx context.Context, in contentapi.PostInput) (contentapi.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreatePost"); err != nil {
		return contentapi.BlogPost{}, err
	}
	p := contentapi.BlogPost{
		ID:        f.newID(),
		Title:     in.Title,
		Content:   in.Content,
		Status:    in.Status,
		CreatedAt: in.CreatedAt,
		UpdatedAt: time.Now().UTC(),
		Tags:      []contentapi.Tag{},
	}
	f.posts[p.ID] = p
	return p, nil
}

func (f *fakeAPI) UpdatePost(ctx context.Context, id contentapi.ID, patch contentapi.PostPatch) (contentapi.BlogPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	op := "UpdatePost"
	if patch.TagIDs != nil && patch.Title == nil {
		op = "AttachTags"
	}
	f.postPatches = append(f.postPatches, patch)
	if err := f.record(op); err != nil {
		return contentapi.BlogPost{}, err
	}
	p, ok := f.posts[id]
	if !ok {
		return contentapi.BlogPost{}, notFound("PATCH", "/blog-entries/"+string(id))
	}
	if patch.Title != nil {
		p.Title = *patch.Title
	}
	if patch.Content != nil {
		p.Content = *patch.Content
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.CreatedAt != nil {
		p.CreatedAt = *patch.CreatedAt
	}
	if patch.TagIDs != nil {
		p.Tags = nil
		for _, tid := range *patch.TagIDs {
			t, ok := f.tags[tid]
			if !ok {
				return contentapi.BlogPost{}, fmt.Errorf("unknown tag %s", tid)
			}
			p.Tags = append(p.Tags, t)
		}
	}
	f.posts[id] = p
	return p, nil
}

func (f *fakeAPI) DeletePost(ctx context.Context, id contentapi.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeletePost"); err != nil {
		return err
	}
	delete(f.posts, id)
	return nil
}

func (f *fakeAPI) AttachPhoto(ctx context.Context, postID, photoID contentapi.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AttachPhoto"); err != nil {
		return err
	}
	p, ok := f.posts[postID]
	if !ok {
		return notFound("POST", "/blog-entries/"+string(postID)+"/photo")
	}
	ph, ok := f.photos[photoID]
	if !ok {
		ph = contentapi.Photo{ID: photoID}
	}
	p.Photo = &ph
	f.posts[postID] = p
	return nil
}

func (f *fakeAPI) SearchTag(ctx context.Context, name string) (contentapi.Tag, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SearchTag"); err != nil {
		return contentapi.Tag{}, false, err
	}
	for _, t := range f.tags {
		if strings.EqualFold(t.Name, name) {
			return t, true, nil
		}
	}
	return contentapi.Tag{}, false, nil
}

func (f *fakeAPI) CreateTag(ctx context.Context, name string) (contentapi.Tag, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateTag"); err != nil {
		return contentapi.Tag{}, err
	}
	t := contentapi.Tag{ID: f.newID(), Name: name}
	f.tags[t.ID] = t
	return t, nil
}
