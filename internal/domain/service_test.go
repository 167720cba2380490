package domain

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

// callLog records the order of store calls across fakes.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(call string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, call)
}

func (l *callLog) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return strings.Join(l.calls, ",")
}

type fakeRepo struct {
	log       *callLog
	createErr error
	posts     []Post
	images    map[string]bool
}

func (r *fakeRepo) CreatePost(_ context.Context, body string, imageFilename *string) (Post, error) {
	r.log.add("create")
	if r.createErr != nil {
		return Post{}, r.createErr
	}
	p := Post{ID: int64(len(r.posts) + 1), Body: body, ImageFilename: imageFilename, CreatedAt: time.Now()}
	r.posts = append([]Post{p}, r.posts...)
	return p, nil
}

func (r *fakeRepo) ListPosts(context.Context) ([]Post, error) {
	r.log.add("list")
	return r.posts, nil
}

func (r *fakeRepo) HasImage(_ context.Context, filename string) (bool, error) {
	return r.images[filename], nil
}

type fakeBlobs struct {
	log     *callLog
	putErr  error
	stored  map[string][]byte
	listed  []BlobInfo
	deleted []string
}

func (b *fakeBlobs) Put(_ context.Context, name string, r io.Reader) error {
	b.log.add("put")
	if b.putErr != nil {
		return b.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if b.stored == nil {
		b.stored = make(map[string][]byte)
	}
	b.stored[name] = data
	return nil
}

func (b *fakeBlobs) List(context.Context) ([]BlobInfo, error) {
	return b.listed, nil
}

func (b *fakeBlobs) Delete(_ context.Context, name string) error {
	b.deleted = append(b.deleted, name)
	return nil
}

func newTestService(t *testing.T, repo *fakeRepo, blobs *fakeBlobs) *BoardService {
	t.Helper()
	svc, err := NewBoardService(repo, blobs, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("new board service: %v", err)
	}
	return svc
}

func pngUpload(extra int) *Upload {
	data := append(append([]byte{}, pngHeader...), make([]byte, extra)...)
	return &Upload{
		Filename:    "photo.png",
		Size:        int64(len(data)),
		ClaimedType: "image/png",
		Content:     bytes.NewReader(data),
	}
}

func TestNewBoardServiceRequiresStores(t *testing.T) {
	t.Parallel()

	if _, err := NewBoardService(nil, &fakeBlobs{}, nil); err == nil {
		t.Fatal("expected error for nil repository")
	}
	if _, err := NewBoardService(&fakeRepo{}, nil, nil); err == nil {
		t.Fatal("expected error for nil blob store")
	}
}

func TestSubmitWithoutImage(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	repo := &fakeRepo{log: log}
	blobs := &fakeBlobs{log: log}
	svc := newTestService(t, repo, blobs)

	post, err := svc.Submit(context.Background(), "  hello  ", nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if post.Body != "hello" {
		t.Fatalf("body = %q, want hello", post.Body)
	}
	if post.HasImage() {
		t.Fatal("post has an image")
	}
	if got := log.String(); got != "create" {
		t.Fatalf("calls = %q, want create", got)
	}
}

func TestSubmitStoresImageBeforeInsert(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	repo := &fakeRepo{log: log}
	blobs := &fakeBlobs{log: log}
	svc := newTestService(t, repo, blobs)

	upload := pngUpload(100)
	post, err := svc.Submit(context.Background(), "with image", upload)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := log.String(); got != "put,create" {
		t.Fatalf("calls = %q, want put,create", got)
	}
	if !post.HasImage() || !strings.HasSuffix(*post.ImageFilename, ".png") {
		t.Fatalf("image filename = %v, want a .png name", post.ImageFilename)
	}
	stored, ok := blobs.stored[*post.ImageFilename]
	if !ok {
		t.Fatal("blob not stored under the post's filename")
	}
	if int64(len(stored)) != upload.Size {
		t.Fatalf("stored %d bytes, want %d", len(stored), upload.Size)
	}
}

func TestSubmitRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		body   string
		upload *Upload
		putErr error
		want   error
		calls  string
	}{
		{
			name: "body too long",
			body: strings.Repeat("A", MaxBodyChars+1),
			want: ErrBody,
		},
		{
			name:   "body checked before image",
			body:   "   ",
			upload: pngUpload(0),
			want:   ErrBody,
		},
		{
			name: "declared size over limit",
			body: "hi",
			upload: &Upload{
				Filename: "big.png",
				Size:     MaxImageBytes + 1,
				Content:  bytes.NewReader(pngHeader),
			},
			want: ErrSize,
		},
		{
			name: "size checked regardless of content",
			body: "hi",
			upload: &Upload{
				Filename: "big.txt",
				Size:     6 * 1024 * 1024,
				Content:  strings.NewReader("plain text"),
			},
			want: ErrSize,
		},
		{
			name: "claimed type is ignored",
			body: "hi",
			upload: &Upload{
				Filename:    "evil.png",
				Size:        10,
				ClaimedType: "image/png",
				Content:     strings.NewReader("<?php ?>"),
			},
			want: ErrMime,
		},
		{
			name:   "move failure",
			body:   "hi",
			upload: pngUpload(0),
			putErr: errors.New("disk full"),
			want:   ErrMove,
			calls:  "put",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			log := &callLog{}
			repo := &fakeRepo{log: log}
			svc := newTestService(t, repo, &fakeBlobs{log: log, putErr: tt.putErr})

			_, err := svc.Submit(context.Background(), tt.body, tt.upload)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if got := log.String(); got != tt.calls {
				t.Fatalf("calls = %q, want %q", got, tt.calls)
			}
			if len(repo.posts) != 0 {
				t.Fatalf("posts = %d, want 0", len(repo.posts))
			}
		})
	}
}

func TestSubmitStoreFailureIsInternal(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	svc := newTestService(t, &fakeRepo{log: log, createErr: errors.New("database is locked")}, &fakeBlobs{log: log})

	_, err := svc.Submit(context.Background(), "hello", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := ErrorCode(err); got != CodeInternal {
		t.Fatalf("ErrorCode = %q, want %q", got, CodeInternal)
	}
}

func TestListPostsNewestFirst(t *testing.T) {
	t.Parallel()

	log := &callLog{}
	svc := newTestService(t, &fakeRepo{log: log}, &fakeBlobs{log: log})
	ctx := context.Background()
	for _, body := range []string{"one", "two", "hello"} {
		if _, err := svc.Submit(ctx, body, nil); err != nil {
			t.Fatalf("submit %q: %v", body, err)
		}
	}

	posts, err := svc.ListPosts(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 3 || posts[0].Body != "hello" {
		t.Fatalf("posts = %+v, want hello first", posts)
	}
}

func TestSweepOrphanImages(t *testing.T) {
	t.Parallel()

	old := time.Now().Add(-2 * time.Hour)
	fresh := time.Now()
	newBlobs := func() *fakeBlobs {
		return &fakeBlobs{
			log: &callLog{},
			listed: []BlobInfo{
				{Name: "aa.png", ModTime: old},
				{Name: "bb.png", ModTime: old},
				{Name: "cc.png", ModTime: fresh},
			},
		}
	}
	repo := &fakeRepo{log: &callLog{}, images: map[string]bool{"aa.png": true}}

	t.Run("deletes old unreferenced blobs", func(t *testing.T) {
		t.Parallel()
		blobs := newBlobs()
		svc := newTestService(t, repo, blobs)
		res, err := svc.SweepOrphanImages(context.Background(), time.Hour, false)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if res.Scanned != 3 || res.Deleted != 1 {
			t.Fatalf("result = %+v, want 3 scanned, 1 deleted", res)
		}
		if len(blobs.deleted) != 1 || blobs.deleted[0] != "bb.png" {
			t.Fatalf("deleted = %v, want [bb.png]", blobs.deleted)
		}
	})

	t.Run("dry run deletes nothing", func(t *testing.T) {
		t.Parallel()
		blobs := newBlobs()
		svc := newTestService(t, repo, blobs)
		res, err := svc.SweepOrphanImages(context.Background(), time.Hour, true)
		if err != nil {
			t.Fatalf("sweep: %v", err)
		}
		if len(res.Orphans) != 1 || res.Orphans[0] != "bb.png" || res.Deleted != 0 {
			t.Fatalf("result = %+v, want orphan bb.png and nothing deleted", res)
		}
		if len(blobs.deleted) != 0 {
			t.Fatalf("deleted = %v, want none", blobs.deleted)
		}
	})
}
