package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ServeFile returns a stored result. HEAD answers with headers only.
func (h *HandlerSet) ServeFile(c *gin.Context) {
	res, err := h.store.GetResult(c.Param("id"))
	if err != nil {
		fail(c, http.StatusNotFound, "File not found")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Name))
	c.Header("Content-Length", strconv.Itoa(len(res.Data)))
	if c.Request.Method == http.MethodHead {
		c.Header("Content-Type", "application/pdf")
		c.Status(http.StatusOK)
		return
	}
	c.Data(http.StatusOK, "application/pdf", res.Data)
}
