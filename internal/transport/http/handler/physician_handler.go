package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"physician-service/internal/domain"
	"physician-service/internal/service"
	httpez "physician-service/internal/transport/http/ez"
	mdw "physician-service/internal/transport/http/middleware"
)

// PhysicianHandler REST 接口：/api 下的读写 + 管理端全量列表
type PhysicianHandler struct {
	read  *service.ReadService
	write *service.WriteService
	log   *zap.Logger
}

func NewPhysicianHandler(read *service.ReadService, write *service.WriteService, log *zap.Logger) *PhysicianHandler {
	return &PhysicianHandler{read: read, write: write, log: log}
}

type idURI struct {
	ID string `uri:"id" binding:"required"`
}

type prefixURI struct {
	Prefix string `uri:"prefix" binding:"required"`
}

func (h *PhysicianHandler) Priority() int { return 10 }

func (h *PhysicianHandler) MountAPI(api *gin.RouterGroup) {
	e := httpez.New(api)
	base := api.BasePath()

	// GET /api/:id
	httpez.RegisterAction(e, httpez.Action[idURI, PhysicianView]{
		Method: http.MethodGet,
		Path:   "/:id",
		Binder: httpez.BindURI,
		Handler: func(c *gin.Context, in *idURI) (PhysicianView, error) {
			id, err := uuid.Parse(in.ID)
			if err != nil {
				return PhysicianView{}, httpez.NotFound()
			}
			res, err := h.read.FindByID(c.Request.Context(), id)
			if err != nil {
				return PhysicianView{}, h.fail(c, err)
			}
			switch r := res.(type) {
			case service.Found:
				etag := ETag(r.Physician.Version)
				if c.GetHeader("If-None-Match") == etag {
					return PhysicianView{}, httpez.NotModified()
				}
				c.Header("ETag", etag)
				return ToView(r.Physician), nil
			case service.NotFound:
				return PhysicianView{}, httpez.NotFound()
			}
			return PhysicianView{}, httpez.Internal("", fmt.Errorf("unexpected result %T", res))
		},
	})

	// GET /api?lastname=..&plz=..
	httpez.RegisterAction(e, httpez.Action[struct{}, []PhysicianView]{
		Method: http.MethodGet,
		Path:   "",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]PhysicianView, error) {
			list, err := h.read.Find(c.Request.Context(), c.Request.URL.Query())
			if err != nil {
				return nil, h.fail(c, err)
			}
			if len(list) == 0 {
				return nil, httpez.NotFound()
			}
			return toViews(list), nil
		},
	})

	// GET /api/lastnames/:prefix
	httpez.RegisterAction(e, httpez.Action[prefixURI, []string]{
		Method: http.MethodGet,
		Path:   "/lastnames/:prefix",
		Binder: httpez.BindURI,
		Handler: func(c *gin.Context, in *prefixURI) ([]string, error) {
			names, err := h.read.LastNamesByPrefix(c.Request.Context(), in.Prefix)
			if err != nil {
				return nil, h.fail(c, err)
			}
			if len(names) == 0 {
				return nil, httpez.NotFound()
			}
			return names, nil
		},
	})

	// POST /api -> 201 + Location
	httpez.RegisterAction(e, httpez.Action[PhysicianDTO, httpez.StatusOnly]{
		Method: http.MethodPost,
		Path:   "",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *PhysicianDTO) (httpez.StatusOnly, error) {
			candidate, err := in.ToDomain()
			if err != nil {
				return httpez.StatusOnly{}, httpez.BadRequest(err.Error(), nil)
			}
			res, err := h.write.Create(c.Request.Context(), candidate)
			if err != nil {
				return httpez.StatusOnly{}, h.fail(c, err)
			}
			switch r := res.(type) {
			case service.Created:
				c.Header("Location", location(c, base, r.Physician.ID))
				return httpez.StatusOnly{Code: http.StatusCreated}, nil
			case service.ConstraintViolations:
				return httpez.StatusOnly{}, httpez.BadRequest("constraint violations", r.Violations)
			case service.EmailExists:
				return httpez.StatusOnly{}, httpez.BadRequest("email already exists", gin.H{"email": r.Email})
			}
			return httpez.StatusOnly{}, httpez.Internal("", fmt.Errorf("unexpected result %T", res))
		},
	})

	// PUT /api/:id -> 204 + ETag；If-Match 可选
	httpez.RegisterAction(e, httpez.Action[PhysicianDTO, httpez.StatusOnly]{
		Method: http.MethodPut,
		Path:   "/:id",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *PhysicianDTO) (httpez.StatusOnly, error) {
			id, err := uuid.Parse(c.Param("id"))
			if err != nil {
				return httpez.StatusOnly{}, httpez.NotFound()
			}
			version, ok := ParseIfMatch(c.GetHeader("If-Match"))
			if !ok {
				return httpez.StatusOnly{}, httpez.PreconditionFailed("invalid If-Match header")
			}
			candidate, err := in.ToDomain()
			if err != nil {
				return httpez.StatusOnly{}, httpez.BadRequest(err.Error(), nil)
			}
			candidate.Version = version

			res, err := h.write.Update(c.Request.Context(), candidate, id)
			if err != nil {
				return httpez.StatusOnly{}, h.fail(c, err)
			}
			switch r := res.(type) {
			case service.Updated:
				c.Header("ETag", ETag(r.Physician.Version))
				return httpez.StatusOnly{}, nil
			case service.NotFound:
				return httpez.StatusOnly{}, httpez.NotFound()
			case service.ConstraintViolations:
				return httpez.StatusOnly{}, httpez.BadRequest("constraint violations", r.Violations)
			case service.EmailExists:
				return httpez.StatusOnly{}, httpez.BadRequest("email already exists", gin.H{"email": r.Email})
			}
			return httpez.StatusOnly{}, httpez.Internal("", fmt.Errorf("unexpected result %T", res))
		},
	})
}

// MountAdmin GET /admin/v1/physicians 全量列表
func (h *PhysicianHandler) MountAdmin(admin *gin.RouterGroup) {
	httpez.RegisterAction(httpez.New(admin), httpez.Action[struct{}, []PhysicianView]{
		Method: http.MethodGet,
		Path:   "/physicians",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]PhysicianView, error) {
			list, err := h.read.FindAll(c.Request.Context())
			if err != nil {
				return nil, h.fail(c, err)
			}
			return toViews(list), nil
		},
	})
}

// fail 服务层错误 -> HTTP：超时 500，版本冲突 412，其余 500
func (h *PhysicianHandler) fail(c *gin.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrTimeout):
		h.log.Warn("store timeout", zap.String("rid", mdw.RequestIDFrom(c)), zap.Error(err))
		return httpez.Internal(mdw.TimeoutMsg, err)
	case errors.Is(err, domain.ErrVersionConflict):
		return httpez.PreconditionFailed("version is outdated")
	}
	h.log.Error("request failed", zap.String("rid", mdw.RequestIDFrom(c)), zap.Error(err))
	return httpez.Internal("", err)
}

// ETag 版本号作为强校验 ETag："3"
func ETag(version int) string { return `"` + strconv.Itoa(version) + `"` }

// ParseIfMatch 空串和 * 表示不校验版本；接受 "3"、3 与 W/"3"
func ParseIfMatch(v string) (int, bool) {
	v = strings.TrimSpace(v)
	if v == "" || v == "*" {
		return domain.AnyVersion, true
	}
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, `"`)
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func location(c *gin.Context, base string, id uuid.UUID) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if p := c.GetHeader("X-Forwarded-Proto"); p != "" {
		scheme = p
	}
	return fmt.Sprintf("%s://%s%s/%s", scheme, c.Request.Host, strings.TrimSuffix(base, "/"), id)
}
