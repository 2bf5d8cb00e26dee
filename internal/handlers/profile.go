package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/blinder/internal/app"
	"github.com/oggyb/blinder/internal/middleware"
	"github.com/oggyb/blinder/internal/service"
	"github.com/oggyb/blinder/internal/service/profile"
)

const (
	msgProfileLoaded  = "Profil bilgileri alındı"
	msgProfileUpdated = "Profil güncellendi"
	msgRegistered     = "Kayıt başarılı"
)

// ProfileHandler serves the /auth profile routes.
type ProfileHandler struct {
	log      *slog.Logger
	profiles *profile.Service
}

func NewProfileHandler(appCtx *app.AppContext, profiles *profile.Service) *ProfileHandler {
	return &ProfileHandler{
		log:      appCtx.Logger.With("handler", "profile"),
		profiles: profiles,
	}
}

// Get handles GET /auth/profile.
func (h *ProfileHandler) Get(c *gin.Context) {
	user := middleware.CurrentUser(c)
	p, err := h.profiles.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"message": msgProfileLoaded, "user": p})
}

// Update handles POST /auth/update-profile.
func (h *ProfileHandler) Update(c *gin.Context) {
	var req profile.ProfileUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	user := middleware.CurrentUser(c)
	out, err := h.profiles.UpdateProfile(c.Request.Context(), user.ID, req)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"message": msgProfileUpdated, "data": out})
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Picture  string `json:"picture"`
	Locale   string `json:"locale"`
}

// Register handles POST /auth/register. Token issuance happens elsewhere.
func (h *ProfileHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	u, err := h.profiles.CreateUser(c.Request.Context(), profile.NewUser{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
		Picture:  req.Picture,
		Locale:   req.Locale,
	})
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": msgRegistered, "user_id": service.FormatID(u.ID)})
}

// Universities handles GET /auth/universities.
func (h *ProfileHandler) Universities(c *gin.Context) {
	groups, err := h.profiles.ListUniversities(c.Request.Context())
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondOK(c, groups)
}
