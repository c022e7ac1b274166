package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"

	"github.com/Laisky/smart-email-finder/internal/finder/model"
	"github.com/Laisky/smart-email-finder/library/email"
	"github.com/Laisky/smart-email-finder/library/llm"
	"github.com/Laisky/smart-email-finder/library/log"
)

const (
	// TargetedCount is the number of candidates requested when a person is named.
	TargetedCount = 5
	// BroadCount is the number of candidates requested otherwise.
	BroadCount = 10

	defaultInstruction = "Generate email addresses based on the provided context data"

	// ResponseInstructions is sent to the backend as system guidance on every call.
	ResponseInstructions = "You produce email address candidates. " +
		"Reply with a single JSON array of objects with the keys name, email, role, source and confidence. " +
		"Do not write anything outside the array."
)

// TargetCount returns how many candidates to ask for.
func TargetCount(targetName string) int {
	if strings.TrimSpace(targetName) != "" {
		return TargetedCount
	}
	return BroadCount
}

// BuildPrompt assembles the generation prompt.
func BuildPrompt(contextText, targetName, instruction string) string {
	targetName = strings.TrimSpace(targetName)
	if strings.TrimSpace(instruction) == "" {
		instruction = defaultInstruction
	}
	count := TargetCount(targetName)

	var targetLine, audience string
	if targetName != "" {
		targetLine = "Target User: " + targetName
		audience = fmt.Sprintf("specifically for the user %q", targetName)
	} else {
		audience = "for employees or contacts mentioned"
	}

	return fmt.Sprintf(`
Context Data: %s

User Request: %s

%s

Based on the above context data(You can search form web also), analyze the information and generate exactly %d potential email addresses %s. Look for:
- Names of people mentioned in the context
- Company domain information
- Common email patterns used by the organization
- Job titles or roles mentioned

Format the response as a JSON array with this structure:

[
  {
    "name": "Full Name",
    "email": "email@company.com",
    "role": "Job Title/Role",
    "source": "Where this information was found",
    "confidence": "high/medium/low"
  }
]

Guidelines:
- Extract actual names mentioned in the context data
- Use the company domain found in the context
- Follow common email patterns: firstname.lastname@domain, firstname@domain, f.lastname@domain
- If no specific names are found, generate realistic names based on the context and search on web also.
- Include job roles/titles when available
- Mark confidence level based on how much information was available
- Ensure all email addresses follow proper format
- Generate exactly %d email entries

Return only the JSON array, no additional text.
`, contextText, instruction, targetLine, count, audience, count)
}

// StripFence removes one leading and one trailing code fence marker.
func StripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```")
	// drop the language tag, e.g. ```json
	if nl := strings.IndexByte(text, '\n'); nl >= 0 {
		if tag := strings.TrimSpace(text[:nl]); !strings.ContainsAny(tag, "[{") {
			text = text[nl+1:]
		}
	} else {
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// GeneratorOption customises a Generator.
type GeneratorOption func(*Generator)

// WithGeneratorTimeout bounds each generation call; zero disables the bound.
func WithGeneratorTimeout(timeout time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.timeout = timeout
	}
}

// WithGeneratorLogger overrides the generator logger.
func WithGeneratorLogger(logger logSDK.Logger) GeneratorOption {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Generator turns a context blob into validated email candidates.
type Generator struct {
	backend llm.TextGenerator
	timeout time.Duration
	logger  logSDK.Logger
}

// NewGenerator wraps backend. A nil backend makes every call fail as PreconditionFailed.
func NewGenerator(backend llm.TextGenerator, opts ...GeneratorOption) *Generator {
	g := &Generator{
		backend: backend,
		logger:  log.Logger.Named("generator"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	return g
}

// Generate asks the backend for candidates. The result may be shorter than
// requested or empty; invalid entries are dropped without failing the batch.
// Failures are *GenerationError.
func (g *Generator) Generate(ctx context.Context, contextText, targetName, instruction string) ([]model.GeneratedEmail, error) {
	return g.generate(ctx, contextText, targetName, instruction, model.ConfidenceLow)
}

func (g *Generator) generate(ctx context.Context,
	contextText, targetName, instruction string,
	fallback model.Confidence,
) ([]model.GeneratedEmail, error) {
	if strings.TrimSpace(contextText) == "" {
		return nil, &GenerationError{Stage: StagePreconditionFailed, Message: "Context data is required", Err: ErrEmptyContext}
	}
	if g == nil || g.backend == nil {
		return nil, &GenerationError{Stage: StagePreconditionFailed, Message: "Generation API key is not configured", Err: ErrNoGenerator}
	}

	logger := g.logger
	if ctxLogger := gmw.GetLogger(ctx); ctxLogger != nil {
		logger = ctxLogger.Named("generator")
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	prompt := BuildPrompt(contextText, targetName, instruction)
	logger.Debug("generating emails",
		zap.String("backend", g.backend.Name()),
		zap.Int("count", TargetCount(targetName)),
		zap.String("target", targetName))

	text, err := g.backend.Generate(ctx, ResponseInstructions, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			return nil, &GenerationError{Stage: StagePreconditionFailed, Message: "Generation API key is not configured", Err: err}
		}
		return nil, &GenerationError{Stage: StageUpstreamFailure, Message: "Error generating emails with " + g.backend.Name(), Err: err}
	}

	emails, err := parseCandidates(text, fallback, logger)
	if err != nil {
		logger.Warn("failed to parse generation response", zap.Error(err))
		return nil, &GenerationError{
			Stage:       StageParseFailure,
			Message:     "Failed to parse structured response",
			RawResponse: text,
			Err:         err,
		}
	}
	return emails, nil
}

func parseCandidates(text string, fallback model.Confidence, logger logSDK.Logger) ([]model.GeneratedEmail, error) {
	body := StripFence(text)
	if !strings.HasPrefix(body, "[") {
		return nil, errors.New("response is not a json array")
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return nil, errors.Wrap(err, "response is not a json array")
	}

	emails := make([]model.GeneratedEmail, 0, len(items))
	for _, item := range items {
		var fields map[string]any
		if err := json.Unmarshal(item, &fields); err != nil {
			logger.Debug("drop non-object generation entry", zap.ByteString("entry", item))
			continue
		}

		addr := strings.TrimSpace(field(fields, "email"))
		if !email.IsValid(addr) {
			logger.Warn("invalid email filtered out from generation response", zap.String("email", addr))
			continue
		}
		emails = append(emails, model.GeneratedEmail{
			Name:              field(fields, "name"),
			Address:           addr,
			Role:              field(fields, "role"),
			SourceDescription: field(fields, "source"),
			ConfidenceLabel:   model.ParseConfidence(field(fields, "confidence"), fallback),
		})
	}

	logger.Debug("validated generated emails",
		zap.Int("valid", len(emails)),
		zap.Int("total", len(items)))
	return emails, nil
}

func field(fields map[string]any, key string) string {
	switch v := fields[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}
