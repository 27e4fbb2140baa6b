package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/openchain-academy/academy-backend/internal/http/response"
	"github.com/openchain-academy/academy-backend/internal/services"
)

type CourseHandler struct {
	svc services.ContentService
}

func NewCourseHandler(svc services.ContentService) *CourseHandler {
	return &CourseHandler{svc: svc}
}

// GET /api/courses
func (h *CourseHandler) ListCourses(c *gin.Context) {
	courses, err := h.svc.ListCourses(c.Request.Context())
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"courses": courses})
}

// GET /api/courses/:id
func (h *CourseHandler) GetCourse(c *gin.Context) {
	course, err := h.svc.GetCourse(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.RespondFromError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"course": course})
}
