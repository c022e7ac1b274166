package controller

import (
	"net/http"
	"strconv"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/smart-email-finder/internal/finder/dto"
	"github.com/Laisky/smart-email-finder/internal/finder/model"
	"github.com/Laisky/smart-email-finder/internal/finder/service"
	"github.com/Laisky/smart-email-finder/library/search"
)

const sessionNotFound = "session not found"

// CreateSession handles POST /sessions.
func (c *Controller) CreateSession(ctx *gin.Context) {
	id, _ := c.sessions.Create()
	gmw.GetLogger(ctx).Debug("session created", zap.String("session", id))
	ctx.JSON(http.StatusCreated, dto.CreateSessionResponse{ID: id})
}

// GetSession handles GET /sessions/:id.
func (c *Controller) GetSession(ctx *gin.Context) {
	id, state, ok := c.loadSession(ctx)
	if !ok {
		return
	}
	c.writeSession(ctx, http.StatusOK, id, state)
}

// DeleteSession handles DELETE /sessions/:id.
func (c *Controller) DeleteSession(ctx *gin.Context) {
	if !c.sessions.Delete(ctx.Param("id")) {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: sessionNotFound})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// Lookup handles POST /sessions/:id/lookup.
func (c *Controller) Lookup(ctx *gin.Context) {
	logger := gmw.GetLogger(ctx).Named("lookup")
	id, state, ok := c.loadSession(ctx)
	if !ok {
		return
	}

	var req dto.LookupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		abortWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	mode := c.defaultMode
	if req.Source != "" {
		parsed, err := search.ParseMode(req.Source)
		if err != nil {
			abortWithError(ctx, http.StatusBadRequest, "Unknown search source", err)
			return
		}
		mode = parsed
	}

	if _, err := c.svc.Lookup(ctx, state, mode, req.Query, req.TargetUser); err != nil {
		var validationErr *search.ValidationError
		if errors.As(err, &validationErr) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: validationErr.Message})
			return
		}

		logger.Warn("lookup failed", zap.String("session", id), zap.Error(err))
		abortWithError(ctx, http.StatusInternalServerError, service.UserMessage(err), err)
		return
	}

	c.writeSession(ctx, http.StatusOK, id, state)
}

// Personalize handles POST /sessions/:id/personalize.
func (c *Controller) Personalize(ctx *gin.Context) {
	logger := gmw.GetLogger(ctx).Named("personalize")
	id, state, ok := c.loadSession(ctx)
	if !ok {
		return
	}

	var req dto.PersonalizeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		abortWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	_, err := c.svc.GeneratePersonalized(ctx, state, *req.DomainEmailIndex, req.TargetUser)
	switch {
	case err == nil:
	case errors.As(err, new(*search.ValidationError)):
		abortWithError(ctx, http.StatusBadRequest, service.UserMessage(err), nil)
		return
	case service.IsStage(err, service.StageParseFailure):
		// raw output is in the snapshot for the caller to show
		logger.Warn("personalized generation unparsable", zap.String("session", id))
	default:
		logger.Warn("personalized generation failed", zap.String("session", id), zap.Error(err))
		abortWithError(ctx, http.StatusInternalServerError, "Failed to generate personalized email", err)
		return
	}

	c.writeSession(ctx, http.StatusOK, id, state)
}

// RemoveResult handles DELETE /sessions/:id/results/:index.
func (c *Controller) RemoveResult(ctx *gin.Context) {
	id, state, ok := c.loadSession(ctx)
	if !ok {
		return
	}

	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		abortWithError(ctx, http.StatusBadRequest, "Invalid result index", err)
		return
	}
	if !state.RemoveResult(index) {
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "result not found"})
		return
	}

	c.writeSession(ctx, http.StatusOK, id, state)
}

// Reset handles POST /sessions/:id/reset.
func (c *Controller) Reset(ctx *gin.Context) {
	id, state, ok := c.loadSession(ctx)
	if !ok {
		return
	}
	state.Reset()
	c.writeSession(ctx, http.StatusOK, id, state)
}

func (c *Controller) loadSession(ctx *gin.Context) (string, *model.State, bool) {
	id := ctx.Param("id")
	state, ok := c.sessions.Get(id)
	if !ok {
		ctx.AbortWithStatusJSON(http.StatusNotFound, dto.ErrorResponse{Error: sessionNotFound})
		return id, nil, false
	}
	return id, state, true
}

func (c *Controller) writeSession(ctx *gin.Context, status int, id string, state *model.State) {
	ctx.JSON(status, dto.SessionResponse{ID: id, Snapshot: state.Snapshot()})
}
