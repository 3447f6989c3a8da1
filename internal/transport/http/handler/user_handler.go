package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"go-gin-contacts/internal/domain"
	"go-gin-contacts/internal/service"
	httpez "go-gin-contacts/internal/transport/http/ez"
)

const maxAvatarBytes = 5 << 20

type UserHandler struct {
	users *service.UserService
}

func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// Mount 已鉴权分组；meGuard 为 /users/me 的限速中间件（可为空）
func (h *UserHandler) Mount(g *gin.RouterGroup, meGuard ...gin.HandlerFunc) {
	httpez.RegisterAction(httpez.New(g.Group("", meGuard...)), httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/me",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			u, ok := httpez.CurrentUser(c)
			if !ok {
				return nil, httpez.Unauthorized("unauthorized")
			}
			return u, nil
		},
	})

	// multipart 字段 file
	httpez.RegisterAction(httpez.New(g), httpez.Action[struct{}, *domain.User]{
		Method: http.MethodPatch,
		Path:   "/users/avatar",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			u, ok := httpez.CurrentUser(c)
			if !ok {
				return nil, httpez.Unauthorized("unauthorized")
			}
			fh, err := c.FormFile("file")
			if err != nil {
				return nil, httpez.BadRequest("missing file")
			}
			if fh.Size > maxAvatarBytes {
				return nil, httpez.BadRequest("file too large")
			}
			ct := fh.Header.Get("Content-Type")
			if !strings.HasPrefix(ct, "image/") {
				return nil, httpez.BadRequest("file must be an image")
			}
			f, err := fh.Open()
			if err != nil {
				return nil, httpez.BadRequest("invalid file")
			}
			defer f.Close()
			return h.users.UpdateAvatar(c.Request.Context(), u, fh.Filename, ct, f)
		},
	})
}
