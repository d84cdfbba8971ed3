package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/talent-tracker/internal/auth"
	"github.com/justsurfingit/talent-tracker/internal/tablequery"
)

// RecordService is the CRUD surface shared by clients, job postings and
// candidates.
type RecordService[T any] interface {
	Create(ctx context.Context, owner string, values map[string]any) (*T, error)
	Update(ctx context.Context, owner string, id uint, values map[string]any) (*T, error)
	Get(ctx context.Context, owner string, id uint) (*T, error)
	Delete(ctx context.Context, owner string, id uint) error
	List(ctx context.Context, owner string, p tablequery.Params) (*tablequery.Page[T], error)
}

type RecordHandler[T any] struct {
	Service RecordService[T]
}

func NewRecordHandler[T any](svc RecordService[T]) *RecordHandler[T] {
	return &RecordHandler[T]{Service: svc}
}

// Register mounts the CRUD routes on g.
func (h *RecordHandler[T]) Register(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PATCH("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

func (h *RecordHandler[T]) List(c *gin.Context) {
	p, valid := listParams(c)
	if !valid {
		return
	}
	page, err := h.Service.List(c.Request.Context(), auth.UserID(c), p)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *RecordHandler[T]) Create(c *gin.Context) {
	values, valid := bindValues(c)
	if !valid {
		return
	}
	rec, err := h.Service.Create(c.Request.Context(), auth.UserID(c), values)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, rec)
}

func (h *RecordHandler[T]) Get(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	rec, err := h.Service.Get(c.Request.Context(), auth.UserID(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, rec)
}

func (h *RecordHandler[T]) Update(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	values, valid := bindValues(c)
	if !valid {
		return
	}
	rec, err := h.Service.Update(c.Request.Context(), auth.UserID(c), id, values)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, rec)
}

func (h *RecordHandler[T]) Delete(c *gin.Context) {
	id, valid := parseID(c)
	if !valid {
		return
	}
	if err := h.Service.Delete(c.Request.Context(), auth.UserID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
