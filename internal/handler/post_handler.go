package handlers

import (
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"voxablog/internal/apperror"
	"voxablog/internal/models"
	"voxablog/internal/repository"
	"voxablog/internal/service"
	"voxablog/internal/session"
)

const multipartMemory = 8 << 20

// CreatePostRequest is the JSON form of a new post. Email is accepted from
// older clients but the author always comes from the session.
type CreatePostRequest struct {
	Title       string         `json:"title" validate:"required"`
	Description string         `json:"description"`
	Content     models.Content `json:"content"`
	Email       string         `json:"email,omitempty"`
}

type UpdatePostRequest struct {
	Title       *string        `json:"title"`
	Description *string        `json:"description"`
	Content     models.Content `json:"content"`
}

type CommentRequest struct {
	UserID   string `json:"userId,omitempty"`
	UserName string `json:"userName"`
	Text     string `json:"text" validate:"required"`
}

type LikeResponse struct {
	Likes int `json:"likes"`
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.List(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, posts, http.StatusOK)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	post, err := h.PostService.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, post, http.StatusOK)
}

// CreatePost accepts multipart/form-data (with an optional "media" file) or
// a JSON body.
func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, errNoSession)
		return
	}

	var (
		req service.CreatePostRequest
		err error
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		var cleanup func()
		req, cleanup, err = h.parseMultipartPost(w, r)
		if cleanup != nil {
			defer cleanup()
		}
	} else {
		req, err = h.parseJSONPost(r)
	}
	if err != nil {
		WriteError(w, err)
		return
	}

	post, err := h.PostService.Create(r.Context(), sess, req)
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, post, http.StatusCreated)
}

func (h *Handlers) parseJSONPost(r *http.Request) (service.CreatePostRequest, error) {
	var body CreatePostRequest
	if err := decodeJSON(r, &body); err != nil {
		return service.CreatePostRequest{}, err
	}

	if err := h.validate(body); err != nil {
		return service.CreatePostRequest{}, err
	}

	return service.CreatePostRequest{
		Title:       body.Title,
		Description: body.Description,
		Content:     body.Content,
	}, nil
}

func (h *Handlers) parseMultipartPost(w http.ResponseWriter, r *http.Request) (service.CreatePostRequest, func(), error) {
	// leave room for the text fields on top of the largest allowed file
	r.Body = http.MaxBytesReader(w, r.Body, h.Cfg.MaxUploadSize+multipartMemory)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return service.CreatePostRequest{}, nil, apperror.Wrap(apperror.KindValidation, "Media file is too large", err)
		}
		return service.CreatePostRequest{}, nil, apperror.Wrap(apperror.KindValidation, "Invalid multipart form", err)
	}

	cleanup := func() {
		_ = r.MultipartForm.RemoveAll()
	}

	req := service.CreatePostRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if content := strings.TrimSpace(r.FormValue("content")); content != "" {
		req.Content = models.Content(content)
	}

	file, header, err := r.FormFile("media")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		return service.CreatePostRequest{}, cleanup, apperror.Wrap(apperror.KindValidation, "Invalid media file", err)
	default:
		req.Media = &service.MediaFile{
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Size:        header.Size,
			Reader:      file,
		}
		cleanup = func() {
			_ = file.Close()
			_ = r.MultipartForm.RemoveAll()
		}
	}

	return req, cleanup, nil
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, errNoSession)
		return
	}

	var body UpdatePostRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	post, err := h.PostService.Update(r.Context(), sess, repository.UpdatePostRequest{
		PostID:      mux.Vars(r)["id"],
		Title:       body.Title,
		Description: body.Description,
		Content:     body.Content,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, post, http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, errNoSession)
		return
	}

	if err := h.PostService.Delete(r.Context(), sess, mux.Vars(r)["id"]); err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, MessageResponse{Message: "Blog deleted successfully"}, http.StatusOK)
}

// LikePost ignores any userId in the body; the liker is the session owner.
func (h *Handlers) LikePost(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, errNoSession)
		return
	}

	likes, err := h.PostService.Like(r.Context(), sess, mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, LikeResponse{Likes: likes}, http.StatusOK)
}

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, errNoSession)
		return
	}

	var body CommentRequest
	if err := decodeJSON(r, &body); err != nil {
		WriteError(w, err)
		return
	}

	if err := h.validate(body); err != nil {
		WriteError(w, err)
		return
	}

	comment, err := h.PostService.AddComment(r.Context(), sess, service.AddCommentRequest{
		PostID:   mux.Vars(r)["id"],
		UserName: body.UserName,
		Text:     body.Text,
	})
	if err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, comment, http.StatusCreated)
}

func (h *Handlers) DeleteComment(w http.ResponseWriter, r *http.Request) {
	sess, ok := session.FromContext(r.Context())
	if !ok {
		WriteError(w, errNoSession)
		return
	}

	vars := mux.Vars(r)
	if err := h.PostService.DeleteComment(r.Context(), sess, vars["id"], vars["commentId"]); err != nil {
		WriteError(w, err)
		return
	}

	writeJSON(w, MessageResponse{Message: "Comment deleted"}, http.StatusOK)
}
