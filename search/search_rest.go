package search

import (
	"defectboard/bizerror"
	"net/http"

	"github.com/fundwit/go-commons/types"
	"github.com/gin-gonic/gin"
)

var (
	PathSearch        = "/v1/search"
	PathIndexRequests = "/v1/index-requests"
)

func RegisterSearchRestAPI(r *gin.Engine, indexer *Indexer, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathSearch, middleWares...)
	g.GET("/:type", func(c *gin.Context) {
		docs, err := indexer.Search(c.Request.Context(), c.Param("type"), c.Query("q"))
		if err != nil {
			panic(err)
		}
		c.JSON(http.StatusOK, docs)
	})
	g.GET("/:type/:id", func(c *gin.Context) {
		id, err := types.ParseID(c.Param("id"))
		if err != nil {
			panic(&bizerror.ErrBadParam{Cause: err})
		}
		doc, err := indexer.Get(c.Request.Context(), c.Param("type"), int64(id))
		if err != nil {
			panic(err)
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", doc)
	})
}

// RegisterIndicesRestAPI lets operators rebuild the indices after the search cluster was reset.
func RegisterIndicesRestAPI(r *gin.Engine, synchronizer *Synchronizer, middleWares ...gin.HandlerFunc) {
	g := r.Group(PathIndexRequests, middleWares...)
	g.POST("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"result": synchronizer.ScheduleRun()})
	})
}
