package vidquiz

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// GenerationLog handles logging of one quiz generation run: strategy
// attempts and LLM traffic, written to a per-quiz file.
type GenerationLog struct {
	file   *os.File
	mu     sync.Mutex
	quizID string
}

// NewGenerationLog creates a generation log for a specific quiz.
func NewGenerationLog(quizID, reference string) (*GenerationLog, error) {
	if err := os.MkdirAll("log", 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	filename := filepath.Join("log", fmt.Sprintf("%s.log", quizID))
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}

	genLog := &GenerationLog{
		file:   file,
		quizID: quizID,
	}

	genLog.Logf("=== Quiz Generation Log ===\n")
	genLog.Logf("Quiz ID: %s\n", quizID)
	genLog.Logf("Reference: %s\n", reference)
	genLog.Logf("Started: %s\n", time.Now().Format(time.RFC3339))
	genLog.Logf("========================\n\n")

	return genLog, nil
}

// Logf writes a formatted log entry with timestamp
func (gl *GenerationLog) Logf(format string, args ...interface{}) {
	gl.mu.Lock()
	defer gl.mu.Unlock()
	gl.logf(format, args...)
}

// logf writes without taking the lock; callers hold it.
func (gl *GenerationLog) logf(format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)

	fmt.Fprintf(gl.file, "[%s] %s", timestamp, message)
	gl.file.Sync()
}

// LogStrategyAttempt logs a failed transcript strategy attempt.
func (gl *GenerationLog) LogStrategyAttempt(strategy string, err error) {
	gl.Logf("Strategy %s: FAILED - %v\n", strategy, err)
}

// LogTranscript logs the strategy that produced the usable transcript.
func (gl *GenerationLog) LogTranscript(strategy string, chars int) {
	gl.Logf("Strategy %s: OK - %d transcript characters\n", strategy, chars)
}

// LogLLMRequest logs an LLM request
func (gl *GenerationLog) LogLLMRequest(module, prompt string) {
	gl.Logf("=== LLM REQUEST (%s) ===\n", module)
	gl.Logf("Prompt:\n%s\n", prompt)
	gl.Logf("=====================\n\n")
}

// LogLLMResponse logs an LLM response
func (gl *GenerationLog) LogLLMResponse(module, response string) {
	gl.Logf("=== LLM RESPONSE (%s) ===\n", module)
	gl.Logf("Response:\n%s\n", response)
	gl.Logf("======================\n\n")
}

// LogParseResult logs how many questions survived parsing.
func (gl *GenerationLog) LogParseResult(parsed int, rawLen int) {
	if parsed == 0 {
		gl.Logf("Parsed 0 questions from %d characters, falling back to raw text\n", rawLen)
		return
	}
	gl.Logf("Parsed %d questions from %d characters\n", parsed, rawLen)
}

// Close closes the log file
func (gl *GenerationLog) Close() error {
	gl.mu.Lock()
	defer gl.mu.Unlock()

	if gl.file != nil {
		gl.logf("=== Quiz Generation Complete ===\n")
		gl.logf("Completed: %s\n", time.Now().Format(time.RFC3339))
		gl.logf("=============================\n")
		return gl.file.Close()
	}
	return nil
}
