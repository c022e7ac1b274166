package service

import (
	"context"
	"strings"
	"testing"

	"github.com/Laisky/errors/v2"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/smart-email-finder/internal/finder/model"
	"github.com/Laisky/smart-email-finder/library/llm"
)

func TestGenerateEmptyContextMakesNoCall(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{text: "[]"}
	_, err := NewGenerator(backend).Generate(context.Background(), "  \n ", "", "")

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	require.Equal(t, StagePreconditionFailed, genErr.Stage)
	require.True(t, errors.Is(err, ErrEmptyContext))
	require.Zero(t, backend.calls())
}

func TestGenerateWithoutBackend(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(nil).Generate(context.Background(), "ctx", "", "")
	require.True(t, IsStage(err, StagePreconditionFailed))
	require.True(t, errors.Is(err, ErrNoGenerator))
}

func TestGenerateUnconfiguredBackendIsPrecondition(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{err: llm.ErrNotConfigured}
	_, err := NewGenerator(backend).Generate(context.Background(), "ctx", "", "")
	require.True(t, IsStage(err, StagePreconditionFailed))
}

func TestGenerateFencedInvalidEntryLeavesEmptyList(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{text: "```json\n[{\"name\":\"A\",\"email\":\"bad\"}]\n```"}
	emails, err := NewGenerator(backend).Generate(context.Background(), "ctx", "", "")

	require.NoError(t, err)
	require.NotNil(t, emails)
	require.Empty(t, emails)
	require.Equal(t, 1, backend.calls())
}

func TestGenerateTargetCount(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{text: "[]"}
	gen := NewGenerator(backend)

	_, err := gen.Generate(context.Background(), "ctx", "Jane Doe", "")
	require.NoError(t, err)
	_, err = gen.Generate(context.Background(), "ctx", "", "")
	require.NoError(t, err)

	require.Len(t, backend.prompts, 2)
	require.Contains(t, backend.prompts[0], "generate exactly 5 potential email addresses")
	require.Contains(t, backend.prompts[0], "Target User: Jane Doe")
	require.Contains(t, backend.prompts[0], "Generate exactly 5 email entries")
	require.Contains(t, backend.prompts[1], "generate exactly 10 potential email addresses")
	require.NotContains(t, backend.prompts[1], "Target User:")
	require.Contains(t, backend.prompts[1], "User Request: "+defaultInstruction)
}

func TestGenerateFiltersAndKeepsOrder(t *testing.T) {
	t.Parallel()

	backend := &fakeBackend{text: `[
		{"name":"Jane Doe","email":"jane.doe@acme.com","role":"CTO","source":"team page","confidence":"High"},
		{"name":"No Mail"},
		"not an object",
		{"name":"Bob","email":"bob@acme.com","confidence":7},
		{"name":"Bad","email":"bad@@acme"}
	]`}
	emails, err := NewGenerator(backend).Generate(context.Background(), "ctx", "", "custom instruction")
	require.NoError(t, err)

	require.Equal(t, []model.GeneratedEmail{
		{Name: "Jane Doe", Address: "jane.doe@acme.com", Role: "CTO", SourceDescription: "team page", ConfidenceLabel: model.ConfidenceHigh},
		{Name: "Bob", Address: "bob@acme.com", ConfidenceLabel: model.ConfidenceLow},
	}, emails)
	require.Contains(t, backend.prompts[0], "User Request: custom instruction")
	require.Equal(t, []string{ResponseInstructions}, backend.instructions)
}

func TestGenerateParseFailureKeepsRaw(t *testing.T) {
	t.Parallel()

	raw := "Here are some emails: jane@acme.com"
	_, err := NewGenerator(&fakeBackend{text: raw}).Generate(context.Background(), "ctx", "", "")

	var genErr *GenerationError
	require.True(t, errors.As(err, &genErr))
	require.Equal(t, StageParseFailure, genErr.Stage)
	require.Equal(t, raw, genErr.RawResponse)
	require.Equal(t, "Failed to parse structured response", genErr.Message)
}

func TestGenerateObjectIsParseFailure(t *testing.T) {
	t.Parallel()

	for _, text := range []string{
		`{"emails":[]}`,
		"null",
		"```json\nnull\n```",
		`"[]"`,
	} {
		_, err := NewGenerator(&fakeBackend{text: text}).Generate(context.Background(), "ctx", "", "")
		var genErr *GenerationError
		require.True(t, errors.As(err, &genErr), text)
		require.Equal(t, StageParseFailure, genErr.Stage, text)
		require.Equal(t, text, genErr.RawResponse)
	}
}

func TestGenerateEmptyArrayIsNotAnError(t *testing.T) {
	t.Parallel()

	emails, err := NewGenerator(&fakeBackend{text: "```json\n[]\n```"}).Generate(context.Background(), "ctx", "", "")
	require.NoError(t, err)
	require.NotNil(t, emails)
	require.Empty(t, emails)
}

func TestGenerateUpstreamFailure(t *testing.T) {
	t.Parallel()

	_, err := NewGenerator(&fakeBackend{err: errors.New("quota exceeded")}).Generate(context.Background(), "ctx", "", "")
	require.True(t, IsStage(err, StageUpstreamFailure))
	require.ErrorContains(t, err, "quota exceeded")
}

func TestStripFence(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"[1]":                      "[1]",
		"```json\n[1]\n```":        "[1]",
		"  ```\n[{\"a\":1}]\n``` ": `[{"a":1}]`,
		"```[1]```":                "[1]",
		"```json[1]```":            "[1]",
	}
	for in, want := range cases {
		require.Equal(t, want, StripFence(in), "input %q", in)
	}
}

func TestTargetCount(t *testing.T) {
	t.Parallel()

	require.Equal(t, 5, TargetCount("Jane Doe"))
	require.Equal(t, 10, TargetCount("   "))
	require.True(t, strings.Contains(BuildPrompt("c", "", ""), "for employees or contacts mentioned"))
}
