package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"time"

	"voxablog/internal/apperror"
	"voxablog/internal/cache"
	"voxablog/internal/config"
	"voxablog/internal/events"
	"voxablog/internal/metrics"
	"voxablog/internal/models"
	"voxablog/internal/repository"
	"voxablog/internal/session"
	"voxablog/internal/storage"
)

const eventPublishTimeout = 2 * time.Second

// MediaFile is an optional attachment uploaded before the post is stored.
type MediaFile struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

type CreatePostRequest struct {
	Title       string
	Description string
	Content     models.Content
	Media       *MediaFile
}

type AddCommentRequest struct {
	PostID   string
	UserName string
	Text     string
}

type PostService interface {
	List(ctx context.Context, authorEmail string) ([]models.Post, error)
	Get(ctx context.Context, postID string) (*models.Post, error)
	Create(ctx context.Context, caller *session.Session, req CreatePostRequest) (*models.Post, error)
	Update(ctx context.Context, caller *session.Session, req repository.UpdatePostRequest) (*models.Post, error)
	Delete(ctx context.Context, caller *session.Session, postID string) error
	Like(ctx context.Context, caller *session.Session, postID string) (int, error)
	AddComment(ctx context.Context, caller *session.Session, req AddCommentRequest) (*models.Comment, error)
	DeleteComment(ctx context.Context, caller *session.Session, postID, commentID string) error
}

type postService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	storage     storage.Storage
	listCache   *cache.PostListCache
	publisher   events.Publisher
	metrics     *metrics.Metrics
	cfg         *config.Config
}

func NewPostService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	storage storage.Storage,
	listCache *cache.PostListCache,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
) PostService {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	return &postService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		storage:     storage,
		listCache:   listCache,
		publisher:   publisher,
		metrics:     m,
		cfg:         cfg,
	}
}

var errAuthRequired = apperror.New(apperror.KindUnauthorized, "Authentication required")

func (p *postService) List(ctx context.Context, authorEmail string) ([]models.Post, error) {
	authorEmail = strings.TrimSpace(authorEmail)

	posts, gen, ok := p.listCache.Get(ctx, authorEmail)
	if ok {
		return posts, nil
	}

	posts, err := p.postRepo.List(ctx, authorEmail)
	if err != nil {
		return nil, err
	}

	if err := p.attachComments(ctx, posts); err != nil {
		return nil, err
	}

	p.listCache.Set(ctx, gen, authorEmail, posts)
	return posts, nil
}

func (p *postService) Get(ctx context.Context, postID string) (*models.Post, error) {
	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	posts := []models.Post{*post}
	if err := p.attachComments(ctx, posts); err != nil {
		return nil, err
	}

	return &posts[0], nil
}

func (p *postService) attachComments(ctx context.Context, posts []models.Post) error {
	ids := make([]string, 0, len(posts))
	for _, post := range posts {
		ids = append(ids, post.PostID)
	}

	comments, err := p.commentRepo.ListByPostIDs(ctx, ids)
	if err != nil {
		return err
	}

	byPost := make(map[string][]models.Comment, len(posts))
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}

	for i := range posts {
		posts[i].Comments = byPost[posts[i].PostID]
		if posts[i].Comments == nil {
			posts[i].Comments = []models.Comment{}
		}
	}
	return nil
}

func (p *postService) Create(ctx context.Context, caller *session.Session, req CreatePostRequest) (*models.Post, error) {
	if caller == nil {
		return nil, errAuthRequired
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.Validation("Title is required")
	}

	content := req.Content.Unquoted()
	if content.IsEmpty() {
		return nil, apperror.Validation("Content is required")
	}
	if !content.Valid() {
		return nil, apperror.Validation("Content must be valid JSON")
	}

	post := &models.Post{
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Content:     content,
		Email:       caller.Email,
	}

	if req.Media != nil {
		objectName, url, err := p.uploadMedia(ctx, req.Media)
		if err != nil {
			return nil, err
		}
		post.MediaURL = &url
		post.MediaKey = &objectName
	}

	if err := p.postRepo.Create(ctx, post); err != nil {
		if post.MediaKey != nil {
			p.removeMedia(ctx, *post.MediaKey)
		}
		return nil, err
	}

	p.listCache.Invalidate(ctx)
	p.publish(ctx, events.Event{Type: events.PostCreated, PostID: post.PostID, Actor: caller.Email})

	return post, nil
}

// uploadMedia stores the attachment under a bounded deadline. Nothing is
// persisted when it fails.
func (p *postService) uploadMedia(ctx context.Context, media *MediaFile) (string, string, error) {
	if p.storage == nil {
		return "", "", apperror.New(apperror.KindUpstream, "Media storage is not configured")
	}

	contentType := media.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = storage.ContentTypeFor(media.FileName)
	}
	if !storage.AllowedMediaTypes[contentType] {
		return "", "", apperror.Validation("Unsupported media type: " + contentType)
	}
	if p.cfg.MaxUploadSize > 0 && media.Size > p.cfg.MaxUploadSize {
		return "", "", apperror.Validation("Media file is too large")
	}

	timeout := p.cfg.MinIO.UploadTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	uploadCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	objectName, url, err := p.storage.UploadMedia(uploadCtx, media.FileName, contentType, media.Reader, media.Size)
	p.metrics.MediaUploaded(err)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(uploadCtx.Err(), context.DeadlineExceeded) {
			return "", "", apperror.Wrap(apperror.KindUpstream, "Media upload timed out", err)
		}
		return "", "", apperror.Wrap(apperror.KindUpstream, "Media upload failed", err)
	}

	return objectName, url, nil
}

func (p *postService) removeMedia(ctx context.Context, objectName string) {
	if p.storage == nil {
		return
	}
	if err := p.storage.DeleteMedia(context.WithoutCancel(ctx), objectName); err != nil {
		slog.Warn("failed to remove media object", "object", objectName, "error", err)
	}
}

func (p *postService) authorize(ctx context.Context, caller *session.Session, postID string) (*models.Post, error) {
	if caller == nil {
		return nil, errAuthRequired
	}

	post, err := p.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	if post.Email != caller.Email && !caller.IsAdmin() {
		return nil, apperror.Forbidden("You can only modify your own blog")
	}

	return post, nil
}

func (p *postService) Update(ctx context.Context, caller *session.Session, req repository.UpdatePostRequest) (*models.Post, error) {
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperror.Validation("Title cannot be empty")
		}
		req.Title = &title
	}

	if req.Content != nil {
		req.Content = req.Content.Unquoted()
		if !req.Content.Valid() {
			return nil, apperror.Validation("Content must be valid JSON")
		}
	}

	if _, err := p.authorize(ctx, caller, req.PostID); err != nil {
		return nil, err
	}

	post, err := p.postRepo.Update(ctx, req)
	if err != nil {
		return nil, err
	}

	p.listCache.Invalidate(ctx)
	p.publish(ctx, events.Event{Type: events.PostUpdated, PostID: post.PostID, Actor: caller.Email})

	posts := []models.Post{*post}
	if err := p.attachComments(ctx, posts); err != nil {
		return nil, err
	}
	return &posts[0], nil
}

func (p *postService) Delete(ctx context.Context, caller *session.Session, postID string) error {
	post, err := p.authorize(ctx, caller, postID)
	if err != nil {
		return err
	}

	if err := p.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	if post.MediaKey != nil {
		p.removeMedia(ctx, *post.MediaKey)
	}

	p.listCache.Invalidate(ctx)
	p.publish(ctx, events.Event{Type: events.PostDeleted, PostID: postID, Actor: caller.Email})

	return nil
}

func (p *postService) Like(ctx context.Context, caller *session.Session, postID string) (int, error) {
	if caller == nil {
		return 0, errAuthRequired
	}

	likes, err := p.postRepo.Like(ctx, postID, caller.Email)
	if err != nil {
		return 0, err
	}

	p.metrics.PostLiked()
	p.listCache.Invalidate(ctx)
	p.publish(ctx, events.Event{Type: events.PostLiked, PostID: postID, Actor: caller.Email, Likes: &likes})

	return likes, nil
}

func (p *postService) AddComment(ctx context.Context, caller *session.Session, req AddCommentRequest) (*models.Comment, error) {
	if caller == nil {
		return nil, errAuthRequired
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, apperror.Validation("Comment text is required")
	}

	userName := strings.TrimSpace(req.UserName)
	if userName == "" {
		userName = caller.Email
	}

	comment := &models.Comment{
		PostID:   req.PostID,
		UserID:   caller.Email,
		UserName: userName,
		Text:     text,
	}

	if err := p.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	p.metrics.CommentAdded()
	p.listCache.Invalidate(ctx)
	p.publish(ctx, events.Event{
		Type:      events.CommentAdded,
		PostID:    req.PostID,
		Actor:     caller.Email,
		CommentID: comment.CommentID,
	})

	return comment, nil
}

func (p *postService) DeleteComment(ctx context.Context, caller *session.Session, postID, commentID string) error {
	if caller == nil {
		return errAuthRequired
	}

	deleted, err := p.commentRepo.DeleteOwned(ctx, postID, commentID, caller.Email)
	if err != nil {
		return err
	}

	if !deleted {
		// nothing removed: work out which failure to report
		if _, err := p.postRepo.GetByID(ctx, postID); err != nil {
			return err
		}
		if _, err := p.commentRepo.GetByID(ctx, postID, commentID); err != nil {
			return err
		}
		return apperror.Forbidden("You can only delete your own comment")
	}

	p.metrics.CommentDeleted()
	p.listCache.Invalidate(ctx)
	p.publish(ctx, events.Event{
		Type:      events.CommentDeleted,
		PostID:    postID,
		Actor:     caller.Email,
		CommentID: commentID,
	})

	return nil
}

// publish is best effort: a broker outage never fails the request.
func (p *postService) publish(ctx context.Context, event events.Event) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := p.publisher.Publish(pubCtx, event); err != nil {
		slog.Warn("failed to publish event", "type", event.Type, "post_id", event.PostID, "error", err)
	}
}
