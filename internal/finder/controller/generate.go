package controller

import (
	"net/http"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/smart-email-finder/internal/finder/dto"
	"github.com/Laisky/smart-email-finder/internal/finder/model"
	"github.com/Laisky/smart-email-finder/internal/finder/service"
	"github.com/Laisky/smart-email-finder/library/llm"
)

const noContextProvided = "No context provided"

// GenerateEmails handles POST /generate-emails.
func (c *Controller) GenerateEmails(ctx *gin.Context) {
	logger := gmw.GetLogger(ctx).Named("generate_emails")

	var req dto.GenerateEmailsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		abortWithError(ctx, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	contextUsed := req.ContextData
	if contextUsed == "" {
		contextUsed = noContextProvided
	}

	emails, err := c.svc.Generator().Generate(ctx, req.ContextData, req.TargetUser, req.Prompt)
	if err == nil {
		if emails == nil {
			emails = []model.GeneratedEmail{}
		}
		ctx.JSON(http.StatusOK, dto.GenerateEmailsResponse{
			Success:     true,
			Emails:      emails,
			ContextUsed: contextUsed,
		})
		return
	}

	var genErr *service.GenerationError
	if !errors.As(err, &genErr) {
		logger.Error("generation failed", zap.Error(err))
		abortWithError(ctx, http.StatusInternalServerError, "Error generating emails", err)
		return
	}

	switch genErr.Stage {
	case service.StagePreconditionFailed:
		if errors.Is(err, service.ErrEmptyContext) {
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: genErr.Message})
			return
		}
		if errors.Is(err, service.ErrNoGenerator) || errors.Is(err, llm.ErrNotConfigured) {
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: genErr.Message})
			return
		}
		abortWithError(ctx, http.StatusInternalServerError, genErr.Message, genErr.Err)
	case service.StageParseFailure:
		ctx.JSON(http.StatusOK, dto.GenerateEmailsResponse{
			Success:     false,
			Emails:      []model.GeneratedEmail{},
			Error:       genErr.Message,
			RawResponse: genErr.RawResponse,
			ContextUsed: contextUsed,
		})
	default:
		logger.Error("generation upstream failed", zap.Error(err))
		abortWithError(ctx, http.StatusInternalServerError, genErr.Message, genErr.Err)
	}
}
