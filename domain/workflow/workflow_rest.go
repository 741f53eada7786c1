package workflow

import (
	"defectboard/bizerror"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

var (
	PathWorkflow = "/v1/workflow"
)

type NodeCreation struct {
	Label    string   `json:"label" binding:"required,lte=64"`
	Color    string   `json:"color" binding:"lte=32"`
	Position Position `json:"position"`
}

type NodeUpdating struct {
	Label string `json:"label" binding:"required,lte=64"`
}

type EdgeCreation struct {
	Source string `json:"source" binding:"required"`
	Target string `json:"target" binding:"required"`
}

func RegisterWorkflowRestAPI(r *gin.Engine, editor *Editor, middleWares ...gin.HandlerFunc) {
	h := &workflowHandler{editor: editor}

	g := r.Group(PathWorkflow, middleWares...)
	g.GET("", h.handleDetail)
	g.GET("/palette", h.handlePalette)
	g.GET("/state-machine", h.handleStateMachine)
	g.POST("/nodes", h.handleAddNode)
	g.PUT("/nodes/:id", h.handleEditNode)
	g.PUT("/nodes/:id/position", h.handleMoveNode)
	g.DELETE("/nodes/:id", h.handleDeleteNode)
	g.POST("/edges", h.handleConnect)
	g.DELETE("/edges/:id", h.handleDeleteEdge)
	g.POST("/layout", h.handleRelayout)
}

type workflowHandler struct {
	editor *Editor
}

func (h *workflowHandler) handleDetail(c *gin.Context) {
	c.JSON(http.StatusOK, h.editor.Snapshot())
}

func (h *workflowHandler) handlePalette(c *gin.Context) {
	c.JSON(http.StatusOK, DefaultPalette)
}

func (h *workflowHandler) handleStateMachine(c *gin.Context) {
	c.JSON(http.StatusOK, h.editor.StateMachine())
}

func (h *workflowHandler) handleAddNode(c *gin.Context) {
	creation := NodeCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	node, err := h.editor.AddNode(c.Request.Context(), PaletteEntry{Label: creation.Label, Color: creation.Color}, creation.Position)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, node)
}

func (h *workflowHandler) handleEditNode(c *gin.Context) {
	updating := NodeUpdating{}
	if err := c.ShouldBindBodyWith(&updating, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	node, err := h.editor.EditNode(c.Request.Context(), c.Param("id"), updating.Label)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, node)
}

func (h *workflowHandler) handleMoveNode(c *gin.Context) {
	position := Position{}
	if err := c.ShouldBindBodyWith(&position, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	node, err := h.editor.MoveNode(c.Request.Context(), c.Param("id"), position)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusOK, node)
}

func (h *workflowHandler) handleDeleteNode(c *gin.Context) {
	if err := h.editor.DeleteNode(c.Request.Context(), c.Param("id")); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func (h *workflowHandler) handleConnect(c *gin.Context) {
	creation := EdgeCreation{}
	if err := c.ShouldBindBodyWith(&creation, binding.JSON); err != nil {
		panic(&bizerror.ErrBadParam{Cause: err})
	}
	edge, err := h.editor.Connect(c.Request.Context(), creation.Source, creation.Target)
	if err != nil {
		panic(err)
	}
	c.JSON(http.StatusCreated, edge)
}

func (h *workflowHandler) handleDeleteEdge(c *gin.Context) {
	if err := h.editor.DeleteEdge(c.Request.Context(), c.Param("id")); err != nil {
		panic(err)
	}
	c.Status(http.StatusNoContent)
}

func (h *workflowHandler) handleRelayout(c *gin.Context) {
	c.JSON(http.StatusOK, h.editor.Relayout(c.Request.Context()))
}
