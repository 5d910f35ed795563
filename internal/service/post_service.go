package service

import (
	"context"
	"log/slog"
	"mime/multipart"
	"strconv"

	"github.com/ureca-react-blog/Backend/internal/models"
	"github.com/ureca-react-blog/Backend/internal/observability"
	"github.com/ureca-react-blog/Backend/internal/repository"
)

// LatestPostsLimit is how many posts ListLatest returns.
const LatestPostsLimit = 3

type PostService struct {
	repo    repository.PostRepository
	uploads *UploadStore
}

// CreatePostInput is a post as submitted. Author comes from the session, never the form.
type CreatePostInput struct {
	Title   string
	Summary string
	Content string
	Author  string
	Cover   *multipart.FileHeader
}

func NewPostService(repo repository.PostRepository, uploads *UploadStore) *PostService {
	return &PostService{repo: repo, uploads: uploads}
}

// Create stores the optional cover file, then the post. If the insert fails the
// file is removed again.
func (s *PostService) Create(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "Create")
	defer func() { observability.EndSpan(span, err) }()

	post = &models.Post{
		Title:   in.Title,
		Summary: in.Summary,
		Content: in.Content,
		Author:  in.Author,
	}

	var stored string
	if in.Cover != nil {
		name, size, err := s.uploads.Save(in.Cover)
		if err != nil {
			return nil, models.NewInternalError(err)
		}
		observability.UploadBytes.Observe(float64(size))
		stored = name
		cover := CoverPath(name)
		post.Cover = &cover
	}

	if err := s.repo.Create(ctx, post); err != nil {
		if stored != "" {
			s.removeOrphan(ctx, stored)
		}
		return nil, err
	}

	observability.PostsCreated.WithLabelValues(strconv.FormatBool(stored != "")).Inc()
	return post, nil
}

func (s *PostService) removeOrphan(ctx context.Context, name string) {
	if err := s.uploads.Remove(name); err != nil {
		observability.OrphanCleanups.WithLabelValues("failed").Inc()
		slog.ErrorContext(ctx, "failed to remove orphaned upload",
			slog.String("file", name),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.OrphanCleanups.WithLabelValues("removed").Inc()
}

// ListLatest returns the newest posts, newest first.
func (s *PostService) ListLatest(ctx context.Context) ([]models.Post, error) {
	ctx, span := observability.StartSpan(ctx, "PostService", "ListLatest")
	posts, err := s.repo.ListLatest(ctx, LatestPostsLimit)
	observability.EndSpan(span, err)
	return posts, err
}
