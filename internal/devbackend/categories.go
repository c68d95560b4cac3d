package devbackend

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/omerbag-9/CarMate-AdminPanel/internal/api"
)

func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.store.ListCategories(c.Request.Context(), s.bulkSize(c))
	if err != nil {
		s.serverError(c, err)
		return
	}
	okList(c, categories, len(categories))
}

type categoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}

func (s *Server) addCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, bindMessage(err))
		return
	}
	category, err := s.store.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		s.storeError(c, err, "category")
		return
	}
	ok(c, http.StatusCreated, api.StatusCategoryCreated, category)
}

func (s *Server) listSubcategories(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	subs, err := s.store.ListSubcategories(c.Request.Context(), id)
	if err != nil {
		s.storeError(c, err, "category")
		return
	}
	ok(c, http.StatusOK, api.StatusSuccess, gin.H{"subCategories": subs})
}
