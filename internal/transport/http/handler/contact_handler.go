package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-contacts/internal/domain"
	httpez "go-gin-contacts/internal/transport/http/ez"
)

const maxPageSize = 100

type ContactHandler struct {
	repo domain.ContactRepository
}

func NewContactHandler(repo domain.ContactRepository) *ContactHandler {
	return &ContactHandler{repo: repo}
}

type listQ struct {
	Skip  int `form:"skip,default=0"   binding:"min=0"`
	Limit int `form:"limit,default=100" binding:"min=0"`
}

type searchQ struct {
	Query string `form:"query"`
}

func nonNil(cs []domain.Contact) []domain.Contact {
	if cs == nil {
		return []domain.Contact{}
	}
	return cs
}

// Mount 挂在已鉴权分组；createGuard 为创建接口的限速中间件（可为空）
func (h *ContactHandler) Mount(g *gin.RouterGroup, createGuard ...gin.HandlerFunc) {
	ez := httpez.New(g)

	httpez.RegisterAction(ez, httpez.Action[listQ, []domain.Contact]{
		Method: http.MethodGet,
		Path:   "/contacts",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *listQ) ([]domain.Contact, error) {
			uid, _ := httpez.UserID(c)
			limit := min(in.Limit, maxPageSize)
			cs, err := h.repo.List(c.Request.Context(), uid, in.Skip, limit)
			return nonNil(cs), err
		},
	})

	httpez.RegisterAction(ez, httpez.Action[searchQ, []domain.Contact]{
		Method: http.MethodGet,
		Path:   "/contacts/search",
		Binder: httpez.BindQuery,
		Auth:   true,
		Handler: func(c *gin.Context, in *searchQ) ([]domain.Contact, error) {
			uid, _ := httpez.UserID(c)
			cs, err := h.repo.Search(c.Request.Context(), uid, in.Query)
			return nonNil(cs), err
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, []domain.Contact]{
		Method: http.MethodGet,
		Path:   "/contacts/birthdays",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Contact, error) {
			uid, _ := httpez.UserID(c)
			cs, err := h.repo.UpcomingBirthdays(c.Request.Context(), uid)
			return nonNil(cs), err
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Contact]{
		Method: http.MethodGet,
		Path:   "/contacts/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Contact, error) {
			uid, _ := httpez.UserID(c)
			id, err := httpez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return found(h.repo.Get(c.Request.Context(), uid, id))
		},
	})

	httpez.RegisterAction(httpez.New(g.Group("", createGuard...)), httpez.Action[domain.ContactInput, *domain.Contact]{
		Method: http.MethodPost,
		Path:   "/contacts",
		Binder: httpez.BindJSON,
		Auth:   true,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.ContactInput) (*domain.Contact, error) {
			uid, _ := httpez.UserID(c)
			return h.repo.Create(c.Request.Context(), uid, *in)
		},
	})

	// PUT 整体替换，PATCH 只改提供的字段
	httpez.RegisterAction(ez, httpez.Action[domain.ContactInput, *domain.Contact]{
		Method: http.MethodPut,
		Path:   "/contacts/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.ContactInput) (*domain.Contact, error) {
			return h.update(c, in.Patch())
		},
	})

	httpez.RegisterAction(ez, httpez.Action[domain.ContactPatch, *domain.Contact]{
		Method: http.MethodPatch,
		Path:   "/contacts/:id",
		Binder: httpez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *domain.ContactPatch) (*domain.Contact, error) {
			return h.update(c, *in)
		},
	})

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.Contact]{
		Method: http.MethodDelete,
		Path:   "/contacts/:id",
		Binder: httpez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Contact, error) {
			uid, _ := httpez.UserID(c)
			id, err := httpez.ParamID(c, "id")
			if err != nil {
				return nil, err
			}
			return found(h.repo.Delete(c.Request.Context(), uid, id))
		},
	})
}

func (h *ContactHandler) update(c *gin.Context, patch domain.ContactPatch) (*domain.Contact, error) {
	uid, _ := httpez.UserID(c)
	id, err := httpez.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	return found(h.repo.Update(c.Request.Context(), uid, id, patch))
}

// found 仓储返回 (nil, nil) 即 404；别人的联系人同样按不存在处理
func found(ct *domain.Contact, err error) (*domain.Contact, error) {
	if err != nil {
		return nil, err
	}
	if ct == nil {
		return nil, httpez.NotFound("contact not found")
	}
	return ct, nil
}
