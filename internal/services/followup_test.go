package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestFollowUpGenerator(llm *MockCompleter, retriever *MockRetriever) *FollowUpGenerator {
	return NewFollowUpGenerator(llm, retriever, testLogger())
}

func TestGenerateFollowUps_SplitsAndReturnsLines(t *testing.T) {
	llm := new(MockCompleter)
	retriever := new(MockRetriever)

	retriever.On("Retrieve", mock.Anything, "What is the deductible?").Return(benefitChunks(), nil)
	llm.On("Complete", mock.Anything, mock.Anything).Return("What about co-pays?\nWhat about premiums?\nWhat about dental?", nil)

	generator := newTestFollowUpGenerator(llm, retriever)
	questions, err := generator.GenerateFollowUps(context.Background(), "What is the deductible?")

	require.NoError(t, err)
	assert.Equal(t, []string{"What about co-pays?", "What about premiums?", "What about dental?"}, questions)
}

func TestGenerateFollowUps_StripsDigitsThenDashPrefixes(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{name: "numbered with trailing dash-space", line: "1. What is the co-pay- ", want: ". What is the co-pay"},
		{name: "plain numbered item", line: "2. What about premiums?", want: ". What about premiums?"},
		{name: "dash bullet", line: "- What about dental?", want: "What about dental?"},
		{name: "digits inside the question survive removal only", line: "What does plan 500 cover?", want: "What does plan  cover?"},
		{name: "clean line untouched", line: "What about vision?", want: "What about vision?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeFollowUp(tt.line))
		})
	}
}

func TestGenerateFollowUps_SanitizedOutputsNeverCarryListMarkup(t *testing.T) {
	llm := new(MockCompleter)
	retriever := new(MockRetriever)

	retriever.On("Retrieve", mock.Anything, mock.Anything).Return(benefitChunks(), nil)
	llm.On("Complete", mock.Anything, mock.Anything).Return("1. What about co-pays?\n2. - What about premiums?\n3. What about dental?", nil)

	generator := newTestFollowUpGenerator(llm, retriever)
	questions, err := generator.GenerateFollowUps(context.Background(), "What is the deductible?")

	require.NoError(t, err)
	require.Len(t, questions, 3)
	for _, q := range questions {
		assert.NotContains(t, q, "- ")
		assert.False(t, strings.ContainsAny(q, "0123456789"), "question %q still carries digits", q)
	}
}

func TestGenerateFollowUps_BlankLinesAreDropped(t *testing.T) {
	llm := new(MockCompleter)
	retriever := new(MockRetriever)

	retriever.On("Retrieve", mock.Anything, mock.Anything).Return(nil, nil)
	llm.On("Complete", mock.Anything, mock.Anything).Return("What about co-pays?\n\n   \n123\nWhat about dental?", nil)

	generator := newTestFollowUpGenerator(llm, retriever)
	questions, err := generator.GenerateFollowUps(context.Background(), "What is the deductible?")

	require.NoError(t, err)
	// The digits-only line sanitizes to empty and is dropped with the blanks.
	assert.Equal(t, []string{"What about co-pays?", "What about dental?"}, questions)
}

func TestGenerateFollowUps_ShortOutputPassesThrough(t *testing.T) {
	llm := new(MockCompleter)
	retriever := new(MockRetriever)

	retriever.On("Retrieve", mock.Anything, mock.Anything).Return(nil, nil)
	llm.On("Complete", mock.Anything, mock.Anything).Return("What about co-pays?", nil)

	generator := newTestFollowUpGenerator(llm, retriever)
	questions, err := generator.GenerateFollowUps(context.Background(), "What is the deductible?")

	require.NoError(t, err)
	assert.Equal(t, []string{"What about co-pays?"}, questions)
}

func TestGenerateFollowUps_RetrievalErrorFails(t *testing.T) {
	llm := new(MockCompleter)
	retriever := new(MockRetriever)

	storeErr := errors.New("vector store unavailable")
	retriever.On("Retrieve", mock.Anything, mock.Anything).Return(nil, storeErr)

	generator := newTestFollowUpGenerator(llm, retriever)
	questions, err := generator.GenerateFollowUps(context.Background(), "What is the deductible?")

	require.ErrorIs(t, err, storeErr)
	assert.Nil(t, questions)
	llm.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestGenerateFollowUps_CompletionErrorFails(t *testing.T) {
	llm := new(MockCompleter)
	retriever := new(MockRetriever)

	retriever.On("Retrieve", mock.Anything, mock.Anything).Return(benefitChunks(), nil)
	modelErr := errors.New("rate limited")
	llm.On("Complete", mock.Anything, mock.Anything).Return("", modelErr)

	generator := newTestFollowUpGenerator(llm, retriever)
	questions, err := generator.GenerateFollowUps(context.Background(), "What is the deductible?")

	require.ErrorIs(t, err, modelErr)
	assert.Nil(t, questions)
}

func TestGenerateFollowUps_PromptCarriesQuestionAndContext(t *testing.T) {
	llm := new(MockCompleter)
	retriever := new(MockRetriever)

	retriever.On("Retrieve", mock.Anything, mock.Anything).Return(benefitChunks(), nil)
	var captured []Message
	llm.On("Complete", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		captured = args.Get(1).([]Message)
	}).Return("What about co-pays?", nil)

	generator := newTestFollowUpGenerator(llm, retriever)
	_, err := generator.GenerateFollowUps(context.Background(), "What is the deductible?")

	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, RoleUser, captured[0].Role)
	assert.Contains(t, captured[0].Content, "What is the deductible?")
	assert.Contains(t, captured[0].Content, "The annual deductible is $500.")
}
