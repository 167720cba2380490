package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/blackmichael/bulletin/internal/domain"

// BoardService is the core domain service. It owns the submission pipeline
// (validate, store image, insert post) and the listing read path.
type BoardService struct {
	repo   PostRepository
	blobs  BlobStore
	logger *slog.Logger
	tracer trace.Tracer
}

// NewBoardService creates a BoardService over the given stores.
func NewBoardService(repo PostRepository, blobs BlobStore, logger *slog.Logger) (*BoardService, error) {
	if repo == nil {
		return nil, fmt.Errorf("post repository is required")
	}
	if blobs == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BoardService{
		repo:   repo,
		blobs:  blobs,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}, nil
}

// Submit validates a submission, writes the image (if any) to the blob store
// and inserts the post. The image is always committed before the post is
// inserted, so a post never references a missing blob. Validation failures
// wrap ErrBody, ErrSize, ErrMime or ErrMove; store failures are returned
// wrapped as-is.
func (s *BoardService) Submit(ctx context.Context, rawBody string, upload *Upload) (Post, error) {
	ctx, span := s.tracer.Start(ctx, "board.submit")
	defer span.End()

	post, err := s.submit(ctx, rawBody, upload)
	if err != nil {
		span.SetAttributes(attribute.String("board.error_code", ErrorCode(err)))
		span.SetStatus(codes.Error, err.Error())
		return Post{}, err
	}
	span.SetAttributes(
		attribute.Int64("board.post_id", post.ID),
		attribute.Bool("board.has_image", post.HasImage()),
	)
	return post, nil
}

func (s *BoardService) submit(ctx context.Context, rawBody string, upload *Upload) (Post, error) {
	body, err := ValidateBody(rawBody)
	if err != nil {
		return Post{}, err
	}

	var imageFilename *string
	if !upload.Empty() {
		name, err := s.storeImage(ctx, upload)
		if err != nil {
			return Post{}, err
		}
		imageFilename = &name
	}

	post, err := s.repo.CreatePost(ctx, body, imageFilename)
	if err != nil {
		return Post{}, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// storeImage runs the size, type and move checks for an upload and returns
// the generated filename.
func (s *BoardService) storeImage(ctx context.Context, upload *Upload) (string, error) {
	if upload.Size > MaxImageBytes {
		return "", fmt.Errorf("declared size %d bytes: %w", upload.Size, ErrSize)
	}

	ext, err := DetectImageExt(upload.Content)
	if err != nil {
		return "", err
	}

	name, err := NewImageFilename(ext)
	if err != nil {
		return "", fmt.Errorf("generate filename: %v: %w", err, ErrMove)
	}

	if err := s.blobs.Put(ctx, name, upload.Content); err != nil {
		return "", fmt.Errorf("store image %s: %v: %w", name, err, ErrMove)
	}

	s.logger.Debug("image stored",
		"filename", name,
		"size", upload.Size,
		"claimed_type", upload.ClaimedType,
	)
	return name, nil
}

// ListPosts returns all posts, newest first.
func (s *BoardService) ListPosts(ctx context.Context) ([]Post, error) {
	ctx, span := s.tracer.Start(ctx, "board.list")
	defer span.End()

	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("list posts: %w", err)
	}
	span.SetAttributes(attribute.Int("board.posts", len(posts)))
	return posts, nil
}

// SweepOrphanImages removes blobs that no post references. Blobs modified
// within olderThan are skipped so that a submission between its blob write
// and its insert is never swept. With dryRun set, orphans are reported but
// not deleted.
func (s *BoardService) SweepOrphanImages(ctx context.Context, olderThan time.Duration, dryRun bool) (SweepResult, error) {
	blobs, err := s.blobs.List(ctx)
	if err != nil {
		return SweepResult{}, fmt.Errorf("list blobs: %w", err)
	}

	cutoff := time.Now().Add(-olderThan)
	result := SweepResult{Scanned: len(blobs)}
	for _, b := range blobs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if b.ModTime.After(cutoff) {
			continue
		}

		referenced, err := s.repo.HasImage(ctx, b.Name)
		if err != nil {
			return result, fmt.Errorf("check references for %s: %w", b.Name, err)
		}
		if referenced {
			continue
		}

		result.Orphans = append(result.Orphans, b.Name)
		if dryRun {
			continue
		}
		if err := s.blobs.Delete(ctx, b.Name); err != nil {
			return result, fmt.Errorf("delete orphan %s: %w", b.Name, err)
		}
		result.Deleted++
		s.logger.Info("orphan image deleted", "filename", b.Name, "size", b.Size, "mod_time", b.ModTime)
	}
	return result, nil
}
