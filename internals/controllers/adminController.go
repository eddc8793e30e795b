package controllers

import (
	"net/http"

	"github.com/jangir-rishbh/clothing-shop-sub000/internals/middleware"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/models"
	"github.com/jangir-rishbh/clothing-shop-sub000/internals/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AdminController struct {
	Auth   *services.AuthService
	Logger *zap.Logger
}

func NewAdminController(auth *services.AuthService, logger *zap.Logger) *AdminController {
	return &AdminController{Auth: auth, Logger: logger}
}

func (a *AdminController) ListUsers(c *gin.Context) {
	users, err := a.Auth.ListUsers(c.Request.Context())
	if err != nil {
		respondError(c, a.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type UpdateUserBody struct {
	Role   *models.Role `json:"role"`
	Banned *bool        `json:"banned"`
}

func (a *AdminController) UpdateUser(c *gin.Context) {
	var body UpdateUserBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c)
		return
	}
	id := c.Param("id")
	if self := middleware.IdentityFrom(c); self != nil && self.ID == id {
		if (body.Role != nil && *body.Role != models.RoleAdmin) || (body.Banned != nil && *body.Banned) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":  "You cannot demote or ban your own account",
				"reason": "self_update",
			})
			return
		}
	}

	user, err := a.Auth.UpdateUser(c.Request.Context(), id, body.Role, body.Banned)
	if err != nil {
		respondError(c, a.Logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
