package handlers

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/oggyb/blinder/internal/app"
	"github.com/oggyb/blinder/internal/middleware"
	"github.com/oggyb/blinder/internal/service"
	"github.com/oggyb/blinder/internal/service/explore"
	"github.com/oggyb/blinder/internal/service/match"
)

const (
	msgSwipeRecorded   = "Swipe kaydedildi"
	msgMatched         = "Match oluştu!"
	msgUnmatched       = "Eşleşme başarıyla kaldırıldı."
	msgUnmatchedPartly = "Eşleşme kaldırıldı, ancak tekrar görünmelerini engellemede bir sorun oluştu."
)

// MatchHandler serves the /match routes: feed, decisions and the match list.
type MatchHandler struct {
	log     *slog.Logger
	explore *explore.Service
	engine  *match.Engine
}

func NewMatchHandler(appCtx *app.AppContext, explorer *explore.Service, engine *match.Engine) *MatchHandler {
	return &MatchHandler{
		log:     appCtx.Logger.With("handler", "match"),
		explore: explorer,
		engine:  engine,
	}
}

// Potential handles GET /match/potential.
func (h *MatchHandler) Potential(c *gin.Context) {
	user := middleware.CurrentUser(c)
	profiles, err := h.explore.GetCandidates(c.Request.Context(), user.ID)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"potential_matches": profiles})
}

type swipeRequest struct {
	TargetUserID flexibleID `json:"target_user_id"`
	Action       string     `json:"action"`
}

// Swipe handles POST /match/swipe.
func (h *MatchHandler) Swipe(c *gin.Context) {
	var req swipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}
	target, err := service.ParseUserID("target_user_id", string(req.TargetUserID))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	user := middleware.CurrentUser(c)
	res, err := h.engine.RecordDecision(c.Request.Context(), user.ID, target, req.Action)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}

	msg := msgSwipeRecorded
	if res.Matched {
		msg = msgMatched
	}
	RespondOK(c, gin.H{"message": msg, "match": res.Matched})
}

type unmatchRequest struct {
	MatchID string `json:"match_id"`
}

// Unmatch handles POST /match/unmatch.
func (h *MatchHandler) Unmatch(c *gin.Context) {
	var req unmatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "invalid request body")
		return
	}

	user := middleware.CurrentUser(c)
	res, err := h.engine.Unmatch(c.Request.Context(), user.ID, req.MatchID)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	if res.Partial {
		RespondOK(c, gin.H{"message": msgUnmatchedPartly})
		return
	}
	RespondOK(c, gin.H{"message": msgUnmatched})
}

// MyMatches handles GET /match/my-matches.
func (h *MatchHandler) MyMatches(c *gin.Context) {
	user := middleware.CurrentUser(c)
	matches, err := h.engine.ListMatches(c.Request.Context(), user.ID)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"matches": matches})
}

// LikedYou handles GET /match/liked-you.
func (h *MatchHandler) LikedYou(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, err := h.explore.ListLikedYou(c.Request.Context(), user.ID, paginationToken(c))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondOK(c, page)
}

// NewLikedYou handles GET /match/liked-you/new.
func (h *MatchHandler) NewLikedYou(c *gin.Context) {
	user := middleware.CurrentUser(c)
	page, err := h.explore.ListNewLikedYou(c.Request.Context(), user.ID, paginationToken(c))
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondOK(c, page)
}

// LikedYouCount handles GET /match/liked-you/count.
func (h *MatchHandler) LikedYouCount(c *gin.Context) {
	user := middleware.CurrentUser(c)
	n, err := h.explore.CountLikedYou(c.Request.Context(), user.ID)
	if err != nil {
		RespondError(c, h.log, err)
		return
	}
	RespondOK(c, gin.H{"count": n})
}

func paginationToken(c *gin.Context) *string {
	if tok, ok := c.GetQuery("pagination_token"); ok && tok != "" {
		return &tok
	}
	return nil
}
