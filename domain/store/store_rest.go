package store

import (
	"defectboard/bizerror"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathStore = "/v1/store"
)

func RegisterStoreRestAPI(r *gin.Engine, s *Store, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathStore, middleWares...)
	registerCollection(g.Group("/projects"), s.Projects, plainUpdate(s.Projects))
	registerCollection(g.Group("/employees"), s.Employees, plainUpdate(s.Employees))
	registerCollection(g.Group("/defects"), s.Defects, s.UpdateDefect)
	registerCollection(g.Group("/testcases"), s.TestCases, plainUpdate(s.TestCases))
	registerCollection(g.Group("/releases"), s.Releases, plainUpdate(s.Releases))
}

func plainUpdate[T any](c *Collection[T]) func(T) (bool, error) {
	return func(record T) (bool, error) {
		return c.Update(record), nil
	}
}

func registerCollection[T any](g *gin.RouterGroup, c *Collection[T], update func(T) (bool, error)) {
	g.GET("", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, c.List())
	})
	g.GET("/:id", func(ctx *gin.Context) {
		record, found := c.Get(pathID(ctx))
		if !found {
			panic(bizerror.ErrNotFound)
		}
		ctx.JSON(http.StatusOK, record)
	})
	g.POST("", func(ctx *gin.Context) {
		var record T
		if err := ctx.ShouldBindBodyWith(&record, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		ctx.JSON(http.StatusCreated, c.Add(record))
	})
	g.PUT("/:id", func(ctx *gin.Context) {
		id := pathID(ctx)
		var record T
		if err := ctx.ShouldBindBodyWith(&record, binding.JSON); err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		*c.idOf(&record) = id
		updated, err := update(record)
		if err != nil {
			panic(err)
		}
		if !updated {
			panic(bizerror.ErrNotFound)
		}
		ctx.JSON(http.StatusOK, record)
	})
	g.DELETE("/:id", func(ctx *gin.Context) {
		if !c.Delete(pathID(ctx)) {
			panic(bizerror.ErrNotFound)
		}
		ctx.Status(http.StatusNoContent)
	})
}

func pathID(ctx *gin.Context) int64 {
	id, err := types.ParseID(ctx.Param("id"))
	if err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	return int64(id)
}
