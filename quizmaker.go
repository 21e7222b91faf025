package vidquiz

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultQuestionCount is used when the caller doesn't say how many
// questions it wants.
const DefaultQuestionCount = 5

// QuizMaker generates delimited quiz text from a transcript using
// GPT-4o. The response is returned raw; ParseQuizText deals with
// whatever actually came back.
type QuizMaker struct {
	client *openai.Client
}

// NewQuizMaker creates a new quiz maker with OpenAI client
func NewQuizMaker(apiKey string) *QuizMaker {
	return &QuizMaker{
		client: openai.NewClient(apiKey),
	}
}

// GenerateQuizText asks the model for count questions in the delimited
// format and returns its raw text response.
func (qm *QuizMaker) GenerateQuizText(ctx context.Context, transcript string, count int, genLog *GenerationLog) (string, error) {
	if count <= 0 {
		count = DefaultQuestionCount
	}

	prompt := qm.buildPrompt(transcript, count)
	VerboseLog("Generating %d questions from %d transcript characters", count, len(transcript))

	if genLog != nil {
		genLog.LogLLMRequest("QuizMaker", prompt)
	}

	resp, err := qm.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an expert quiz question generator. You produce multiple choice questions with exactly 4 options each and follow the requested output format exactly.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)

	if err != nil {
		return "", fmt.Errorf("failed to generate quiz: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from GPT-4o")
	}

	raw := resp.Choices[0].Message.Content

	if genLog != nil {
		genLog.LogLLMResponse("QuizMaker", raw)
	}

	return raw, nil
}

func (qm *QuizMaker) buildPrompt(transcript string, count int) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Based on the following transcript, create %d multiple-choice quiz questions.\n\n", count))

	sb.WriteString("Requirements:\n")
	sb.WriteString("- Each question must have exactly 4 options labeled a) b) c) d)\n")
	sb.WriteString("- Mark the correct option with a lowercase letter on its own line\n")
	sb.WriteString(fmt.Sprintf("- Wrap every question between %s and %s with nothing outside the markers\n", BlockStart, BlockEnd))
	sb.WriteString("- Questions must be answerable from the transcript alone\n\n")

	sb.WriteString("Format each question exactly like this:\n")
	sb.WriteString(BlockStart + "1. Question text?\n")
	sb.WriteString("a) First option\n")
	sb.WriteString("b) Second option\n")
	sb.WriteString("c) Third option\n")
	sb.WriteString("d) Fourth option\n")
	sb.WriteString(answerMarker + "b" + BlockEnd + "\n\n")

	sb.WriteString("Transcript:\n")
	sb.WriteString(transcript)

	return sb.String()
}

func generateQuestionID() string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, 8)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
