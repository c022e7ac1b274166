// Package service runs the lookup and synthesis pipeline over a session State.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/smart-email-finder/internal/finder/model"
	"github.com/Laisky/smart-email-finder/library/log"
	"github.com/Laisky/smart-email-finder/library/search"
)

const personalizedSourcePrefix = "Generated from Hunter.io pattern: "

// Searcher picks and runs the providers for one lookup.
type Searcher interface {
	Search(ctx context.Context, mode search.Mode, query string) (*search.SearchResult, error)
}

// Option customises a Service.
type Option func(*Service)

// WithLogger overrides the service logger.
func WithLogger(logger logSDK.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Service wires the source-selection policy, the extractor and the generator.
type Service struct {
	searcher  Searcher
	generator *Generator
	logger    logSDK.Logger
}

// New builds a Service.
func New(searcher Searcher, generator *Generator, opts ...Option) (*Service, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if generator == nil {
		generator = NewGenerator(nil)
	}

	s := &Service{
		searcher:  searcher,
		generator: generator,
		logger:    log.Logger.Named("finder"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Generator returns the generation orchestrator.
func (s *Service) Generator() *Generator {
	return s.generator
}

// Lookup runs one query through mode, derives context from the result,
// auto-generates candidates for it and records everything in state.
// Only a search failure is returned; generation failures are logged and
// leave the lookup successful.
func (s *Service) Lookup(ctx context.Context, state *model.State, mode search.Mode, query, targetUser string) (*search.SearchResult, error) {
	query = strings.TrimSpace(query)
	targetUser = strings.TrimSpace(targetUser)
	logger := s.ctxLogger(ctx).With(zap.String("mode", string(mode)), zap.String("query", query))

	state.SetError("")
	result, err := s.searcher.Search(ctx, mode, query)
	if err != nil {
		state.SetError(UserMessage(err))
		return nil, err
	}

	var contextText, instruction string
	if result.Source == search.SourceEmailDomainSearch {
		state.SetDomainEmails(result.DomainEmails)
		contextText = DomainContext(result.DomainEmails)
		state.SetContext(contextText)
		// domain lookups only generate for a named person
		if targetUser != "" {
			instruction = fmt.Sprintf("Generate personalized email addresses for %q based on the Hunter.io email patterns found for %s", targetUser, query)
		}
	} else {
		var found []model.FoundEmail
		contextText, found = ExtractContext(result)
		state.SetContext(contextText)
		state.SetFoundEmails(found)
		logger.Debug("extracted context", zap.Int("found_emails", len(found)))

		if targetUser != "" {
			instruction = fmt.Sprintf("Generate 5 high-probability email addresses for the user %q based on the email patterns found in the following company data about %s", targetUser, result.Query)
		} else {
			instruction = "Generate email addresses for employees based on the following search results about " + result.Query
		}
	}

	if instruction != "" && strings.TrimSpace(contextText) != "" {
		emails, err := s.generator.Generate(ctx, contextText, targetUser, instruction)
		switch {
		case err == nil:
			state.SetGeneratedEmails(emails)
			state.SetRawGeneration("")
		case IsStage(err, StageParseFailure):
			var genErr *GenerationError
			errors.As(err, &genErr)
			state.SetRawGeneration(genErr.RawResponse)
			logger.Warn("auto generation returned unstructured output", zap.Error(err))
		default:
			logger.Warn("auto generation failed", zap.Error(err))
		}
	}

	state.AddResult(result)
	return result, nil
}

// GeneratePersonalized generates candidates for targetName from the provider
// address at domainEmailIndex and prepends them to the state.
func (s *Service) GeneratePersonalized(ctx context.Context, state *model.State, domainEmailIndex int, targetName string) ([]model.GeneratedEmail, error) {
	targetName = strings.TrimSpace(targetName)
	if targetName == "" {
		state.SetError("Please enter a user name to generate personalized emails")
		return nil, search.NewValidationError("targetUser", "a target user name is required")
	}

	sample, ok := state.DomainEmail(domainEmailIndex)
	if !ok {
		return nil, search.NewValidationError("domainEmailIndex",
			fmt.Sprintf("no domain email at index %d", domainEmailIndex))
	}

	contextText := PersonalizedContext(sample, state.DomainEmails())
	instruction := fmt.Sprintf("Generate 5 high-probability email addresses for %q based on the email patterns found in this company's Hunter.io data", targetName)

	emails, err := s.generator.generate(ctx, contextText, targetName, instruction, model.ConfidenceHigh)
	if err != nil {
		var genErr *GenerationError
		if errors.As(err, &genErr) && genErr.Stage == StageParseFailure {
			state.SetRawGeneration(genErr.RawResponse)
		}
		state.SetError("Failed to generate personalized email: " + err.Error())
		return nil, err
	}

	for i := range emails {
		emails[i].SourceDescription = personalizedSourcePrefix + sample.Address
	}
	state.AddGeneratedEmails(emails)
	s.ctxLogger(ctx).Info("generated personalized emails",
		zap.String("target", targetName),
		zap.String("sample", sample.Address),
		zap.Int("count", len(emails)))
	return emails, nil
}

func (s *Service) ctxLogger(ctx context.Context) logSDK.Logger {
	if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
		return ctxLogger.Named("finder")
	}
	return s.logger
}

// UserMessage renders err as the message shown to the user.
func UserMessage(err error) string {
	var selErr *search.SelectionError
	if errors.As(err, &selErr) && selErr.Hint != "" {
		return selErr.Hint
	}
	var validationErr *search.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
