package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go-gin-contacts/internal/domain"
	httpez "go-gin-contacts/internal/transport/http/ez"
)

type AdminHandler struct {
	users    domain.UserRepository
	contacts domain.ContactRepository
}

func NewAdminHandler(users domain.UserRepository, contacts domain.ContactRepository) *AdminHandler {
	return &AdminHandler{users: users, contacts: contacts}
}

type adminListQ struct {
	Offset int    `form:"offset,default=0" binding:"min=0"`
	Limit  int    `form:"limit,default=20" binding:"min=0"`
	Q      string `form:"q"` // 按 email 模糊搜
}

type userRow struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Confirmed bool      `json:"confirmed"`
	CreatedAt time.Time `json:"createdAt"`
}

type userListOut struct {
	Total int64     `json:"total"`
	Items []userRow `json:"items"`
}

type userDetail struct {
	userRow
	Avatar   *string `json:"avatar"`
	Contacts int64   `json:"contacts"`
}

func rowOf(u domain.User) userRow {
	return userRow{ID: u.ID, Email: u.Email, Role: u.Role, Confirmed: u.Confirmed, CreatedAt: u.CreatedAt}
}

// Mount 管理端分组（已要求 admin 角色）
func (h *AdminHandler) Mount(g *gin.RouterGroup) {
	ez := httpez.New(g)

	httpez.RegisterAction(ez, httpez.Action[adminListQ, userListOut]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: httpez.BindQuery,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, in *adminListQ) (userListOut, error) {
			if in.Limit <= 0 || in.Limit > maxPageSize {
				in.Limit = 20
			}
			us, total, err := h.users.List(c.Request.Context(), in.Offset, in.Limit, strings.TrimSpace(in.Q))
			if err != nil {
				return userListOut{}, httpez.Internal("list users failed", err)
			}
			out := userListOut{Total: total, Items: make([]userRow, 0, len(us))}
			for _, u := range us {
				out.Items = append(out.Items, rowOf(u))
			}
			return out, nil
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, userDetail]{
		Method: http.MethodGet,
		Path:   "/users/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Roles:  []string{domain.RoleAdmin},
		Handler: func(c *gin.Context, _ *struct{}) (userDetail, error) {
			id, err := httpez.ParamID(c, "id")
			if err != nil {
				return userDetail{}, err
			}
			u, err := h.users.FindByID(c.Request.Context(), id)
			if err != nil {
				return userDetail{}, httpez.Internal("load user failed", err)
			}
			if u == nil {
				return userDetail{}, httpez.NotFound("user not found")
			}
			n, err := h.contacts.CountByOwner(c.Request.Context(), u.ID)
			if err != nil {
				return userDetail{}, httpez.Internal("count contacts failed", err)
			}
			return userDetail{userRow: rowOf(*u), Avatar: u.Avatar, Contacts: n}, nil
		},
	})
}
