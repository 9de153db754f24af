package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ykhr-dev/clipstream/internal/api/middleware"
	"github.com/ykhr-dev/clipstream/internal/domain/model"
	"github.com/ykhr-dev/clipstream/internal/domain/repository"
	"github.com/ykhr-dev/clipstream/internal/media"
	"github.com/ykhr-dev/clipstream/internal/usecase"
)

// Request/Response types

type CreateVideoRequest struct {
	Title string `json:"title"`
}

type VideoResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	Title        string `json:"title"`
	VideoURL     string `json:"video_url,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// VideoHandler handles video-related HTTP requests.
type VideoHandler struct {
	videos usecase.VideoService
	ingest usecase.IngestService

	maxVideoSize     int64
	maxThumbnailSize int64
}

// NewVideoHandler creates a new VideoHandler.
func NewVideoHandler(videos usecase.VideoService, ingest usecase.IngestService, maxVideoSize, maxThumbnailSize int64) *VideoHandler {
	return &VideoHandler{
		videos:           videos,
		ingest:           ingest,
		maxVideoSize:     maxVideoSize,
		maxThumbnailSize: maxThumbnailSize,
	}
}

// Create handles POST /v1/videos
func (h *VideoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	var req CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	video, err := h.videos.CreateVideo(r.Context(), usecase.CreateVideoInput{
		UserID: userID,
		Title:  req.Title,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusCreated, toVideoResponse(video, "", ""))
}

// Get handles GET /v1/videos/{id}
func (h *VideoHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	output, err := h.videos.GetVideo(r.Context(), userID, videoID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, toVideoResponse(output.Video, output.VideoURL, output.ThumbnailURL))
}

// List handles GET /v1/videos
func (h *VideoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	outputs, err := h.videos.ListVideos(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	responses := make([]VideoResponse, 0, len(outputs))
	for _, output := range outputs {
		responses = append(responses, toVideoResponse(output.Video, output.VideoURL, output.ThumbnailURL))
	}

	JSON(w, http.StatusOK, responses)
}

// multipartOverhead leaves room for boundaries and headers on top of
// the payload limit before the connection-level cap kicks in.
const multipartOverhead = 1 << 20

// Upload handles POST /v1/videos/{id}/upload
//
// The video arrives as the multipart form file "video". The
// connection-level cap sits slightly above the payload limit so
// oversize uploads surface as a 413 from the pipeline rather than an
// opaque broken pipe.
func (h *VideoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxVideoSize+multipartOverhead)

	file, header, err := r.FormFile("video")
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", `Expected a multipart form with a "video" file`)
		return
	}
	defer file.Close()

	output, err := h.ingest.IngestVideo(r.Context(), usecase.IngestVideoInput{
		UserID:      userID,
		VideoID:     videoID,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, toVideoResponse(output.Video, output.VideoURL, output.ThumbnailURL))
}

// UploadThumbnail handles POST /v1/videos/{id}/thumbnail
func (h *VideoHandler) UploadThumbnail(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		Error(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
		return
	}

	videoID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_video_id", "Video ID must be a valid UUID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxThumbnailSize+multipartOverhead)

	file, header, err := r.FormFile("thumbnail")
	if err != nil {
		Error(w, http.StatusBadRequest, "invalid_request", `Expected a multipart form with a "thumbnail" file`)
		return
	}
	defer file.Close()

	output, err := h.ingest.UploadThumbnail(r.Context(), usecase.UploadThumbnailInput{
		UserID:      userID,
		VideoID:     videoID,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	JSON(w, http.StatusOK, toVideoResponse(output.Video, output.VideoURL, output.ThumbnailURL))
}

func (h *VideoHandler) handleServiceError(w http.ResponseWriter, err error) {
	var probeErr *media.ProbeError
	var fastStartErr *media.FastStartError

	switch {
	case errors.Is(err, repository.ErrVideoNotFound):
		Error(w, http.StatusNotFound, "video_not_found", "Video not found")
	case errors.Is(err, usecase.ErrForbidden):
		Error(w, http.StatusForbidden, "forbidden", "You do not own this video")
	case errors.Is(err, usecase.ErrUnsupportedMediaType):
		Error(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "Upload media type is not accepted")
	case errors.Is(err, usecase.ErrVideoTooLarge):
		Error(w, http.StatusRequestEntityTooLarge, "video_too_large", "Video exceeds the maximum upload size")
	case errors.Is(err, usecase.ErrThumbnailTooLarge):
		Error(w, http.StatusRequestEntityTooLarge, "thumbnail_too_large", "Thumbnail exceeds the maximum upload size")
	case errors.Is(err, media.ErrNoVideoStream):
		Error(w, http.StatusUnprocessableEntity, "no_video_stream", "Uploaded file contains no video stream")
	case errors.As(err, &probeErr):
		Error(w, http.StatusUnprocessableEntity, "unreadable_video", "Uploaded file could not be analyzed")
	case errors.As(err, &fastStartErr):
		Error(w, http.StatusUnprocessableEntity, "unprocessable_video", "Uploaded file could not be processed")
	case errors.Is(err, model.ErrInvalidUserID):
		Error(w, http.StatusBadRequest, "invalid_user_id", "User ID cannot be empty")
	case errors.Is(err, model.ErrEmptyTitle):
		Error(w, http.StatusBadRequest, "invalid_title", "Title cannot be empty")
	case errors.Is(err, model.ErrTitleTooLong):
		Error(w, http.StatusBadRequest, "invalid_title", "Title exceeds maximum length")
	default:
		Error(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}

func toVideoResponse(v *model.Video, videoURL, thumbnailURL string) VideoResponse {
	return VideoResponse{
		ID:           v.ID.String(),
		UserID:       v.UserID.String(),
		Title:        v.Title,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		CreatedAt:    v.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    v.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}
