package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/daniellescalera/user-management/internal/application"
	"github.com/daniellescalera/user-management/internal/interface/middleware"
	"github.com/daniellescalera/user-management/pkg/pagination"
	"github.com/daniellescalera/user-management/pkg/response"
)

// MaxAvatarBytes caps uploaded profile pictures.
const MaxAvatarBytes = 5 << 20

// UserHandler serves the role-gated /users endpoints.
type UserHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewUserHandler(svc *application.Service, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

func actor(c *gin.Context) application.Principal {
	p, _ := middleware.PrincipalFrom(c)
	return p
}

// List GET /users/?skip=&limit=
func (h *UserHandler) List(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		writeBindError(c, err)
		return
	}
	page, err := h.Svc.ListUsers(c.Request.Context(), q.Skip, q.Limit)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	items := make([]userResponse, 0, len(page.Items))
	for _, u := range page.Items {
		items = append(items, toUserResponse(u))
	}
	response.Success(c, http.StatusOK, userListResponse{
		Items: items,
		Total: page.Total,
		Links: pagination.BuildLinks(baseURL(c), page.Offset, page.Limit, page.Total),
	}, "users", pagination.NewMeta(page.Offset, page.Limit, page.Total))
}

// Create POST /users/
func (h *UserHandler) Create(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	u, err := h.Svc.CreateUser(c.Request.Context(), actor(c), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toUserResponse(u), "user created", nil)
}

// Search GET /users/search?q=&size=
func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.Query("size"))
	docs, err := h.Svc.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, docs, "search results", map[string]any{"count": len(docs)})
}

// Get GET /users/:user_id
func (h *UserHandler) Get(c *gin.Context) {
	u, err := h.Svc.GetUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "user", nil)
}

// Update PUT /users/:user_id
func (h *UserHandler) Update(c *gin.Context) {
	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	u, err := h.Svc.UpdateUser(c.Request.Context(), actor(c), c.Param("user_id"), req.input())
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "user updated", nil)
}

// Delete DELETE /users/:user_id
func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.Svc.DeleteUser(c.Request.Context(), actor(c), c.Param("user_id")); err != nil {
		writeError(c, h.Logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadAvatar POST /users/:user_id/avatar (multipart field "file")
func (h *UserHandler) UploadAvatar(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxAvatarBytes+1<<20)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, h.Logger, &application.ValidationError{Field: "file", Message: "must be at most 5MB"})
			return
		}
		writeError(c, h.Logger, &application.MissingFieldError{Field: "file"})
		return
	}
	if fh.Size > MaxAvatarBytes {
		writeError(c, h.Logger, &application.ValidationError{Field: "file", Message: "must be at most 5MB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	defer f.Close()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		head := make([]byte, 512)
		n, _ := io.ReadFull(f, head)
		contentType = http.DetectContentType(head[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			writeError(c, h.Logger, err)
			return
		}
	}

	u, err := h.Svc.UploadAvatar(c.Request.Context(), c.Param("user_id"), f, fh.Filename, contentType)
	if err != nil {
		writeError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toUserResponse(u), "avatar uploaded", map[string]any{"url": u.ProfilePictureURL})
}
