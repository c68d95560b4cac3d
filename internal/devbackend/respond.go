package devbackend

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
	"github.com/omerbag-9/CarMate-AdminPanel/internal/store"
)

// ok writes the success envelope.
func ok(c *gin.Context, code int, status string, data any) {
	body := gin.H{"status": status}
	if data != nil {
		body["data"] = data
	}
	c.JSON(code, body)
}

func okList[T any](c *gin.Context, items []T, count int) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, gin.H{"status": api.StatusSuccess, "count": count, "data": items})
}

// fail aborts with the error envelope the dashboard shows verbatim.
func fail(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, gin.H{"message": message})
}

func (s *Server) serverError(c *gin.Context, err error) {
	s.logger.Error("Request failed", "request_id", c.GetString(ctxRequestID), "path", c.Request.URL.Path, "error", err)
	fail(c, http.StatusInternalServerError, "something went wrong")
}

// storeError maps store sentinels to statuses; what names the record.
func (s *Server) storeError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		fail(c, http.StatusNotFound, what+" not found")
	case errors.Is(err, store.ErrDuplicate):
		fail(c, http.StatusConflict, what+" already exists")
	case errors.Is(err, store.ErrBadReference):
		fail(c, http.StatusBadRequest, "referenced record does not exist")
	default:
		s.serverError(c, err)
	}
}

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		fail(c, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

// bulkSize reads the size query parameter, capped at the server limit.
func (s *Server) bulkSize(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("size"))
	if err != nil || n < 1 || n > s.bulkLimit {
		return s.bulkLimit
	}
	return n
}
