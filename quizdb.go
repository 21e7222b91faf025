package vidquiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// DB represents a quiz database connection
type DB struct {
	db *sql.DB
}

// DBQuiz represents a quiz in the database
type DBQuiz struct {
	ID           string    `json:"id"`
	VideoID      string    `json:"video_id"`
	Reference    string    `json:"reference"`
	NumQuestions int       `json:"num_questions"`
	RawText      string    `json:"raw_text"`
	CreatedAt    time.Time `json:"created_at"`
	Status       string    `json:"status"` // "generating", "ready", "completed", "failed"
}

// DBQuestion represents a question in the database
type DBQuestion struct {
	ID           string `json:"id"`
	QuizID       string `json:"quiz_id"`
	QuestionNum  int    `json:"question_num"`
	Prompt       string `json:"prompt"`
	Options      string `json:"options"` // JSON array of full option lines
	CorrectLabel string `json:"correct_label"`
}

// OpenDB opens a new database connection
func OpenDB(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// CloseDB closes the database connection
func (db *DB) CloseDB() error {
	return db.db.Close()
}

// CreateTables creates the necessary tables if they don't exist
func (db *DB) CreateTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			video_id TEXT NOT NULL,
			reference TEXT NOT NULL,
			num_questions INTEGER NOT NULL,
			raw_text TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'generating'
		)`,
		`CREATE TABLE IF NOT EXISTS questions (
			id TEXT PRIMARY KEY,
			quiz_id TEXT NOT NULL,
			question_num INTEGER NOT NULL,
			prompt TEXT NOT NULL,
			options TEXT NOT NULL,
			correct_label TEXT NOT NULL DEFAULT '',
			FOREIGN KEY (quiz_id) REFERENCES quizzes(id)
		)`,
	}

	for _, query := range queries {
		if _, err := db.db.Exec(query); err != nil {
			return fmt.Errorf("failed to execute %s: %w", query, err)
		}
	}
	return nil
}

// NewQuizID returns a fresh quiz row id.
func NewQuizID() string {
	return uuid.New().String()
}

// CreateQuiz creates a new quiz in the database
func (db *DB) CreateQuiz(quiz *DBQuiz) error {
	_, err := db.db.Exec(
		"INSERT INTO quizzes (id, video_id, reference, num_questions, raw_text, created_at, status) VALUES (?, ?, ?, ?, ?, ?, ?)",
		quiz.ID, quiz.VideoID, quiz.Reference, quiz.NumQuestions, quiz.RawText, quiz.CreatedAt, quiz.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz: %w", err)
	}
	return nil
}

// GetQuiz retrieves a quiz by ID
func (db *DB) GetQuiz(id string) (*DBQuiz, error) {
	var quiz DBQuiz
	err := db.db.QueryRow(
		"SELECT id, video_id, reference, num_questions, raw_text, created_at, status FROM quizzes WHERE id = ?",
		id,
	).Scan(&quiz.ID, &quiz.VideoID, &quiz.Reference, &quiz.NumQuestions, &quiz.RawText, &quiz.CreatedAt, &quiz.Status)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("quiz not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get quiz: %w", err)
	}
	return &quiz, nil
}

// GetQuizzes retrieves all quizzes, optionally limited by count
func (db *DB) GetQuizzes(limit int) ([]DBQuiz, error) {
	query := "SELECT id, video_id, reference, num_questions, raw_text, created_at, status FROM quizzes ORDER BY created_at DESC"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []DBQuiz
	for rows.Next() {
		var quiz DBQuiz
		err := rows.Scan(&quiz.ID, &quiz.VideoID, &quiz.Reference, &quiz.NumQuestions, &quiz.RawText, &quiz.CreatedAt, &quiz.Status)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quiz: %w", err)
		}
		quizzes = append(quizzes, quiz)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating quizzes: %w", err)
	}

	return quizzes, nil
}

// UpdateQuizStatus updates the status of a quiz
func (db *DB) UpdateQuizStatus(id, status string) error {
	_, err := db.db.Exec("UPDATE quizzes SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update quiz status: %w", err)
	}
	return nil
}

// SetQuizRawText stores the generator's raw response for verbatim
// display when parsing yielded nothing.
func (db *DB) SetQuizRawText(id, rawText string) error {
	_, err := db.db.Exec("UPDATE quizzes SET raw_text = ? WHERE id = ?", rawText, id)
	if err != nil {
		return fmt.Errorf("failed to set quiz raw text: %w", err)
	}
	return nil
}

// CreateQuestion creates a new question in the database
func (db *DB) CreateQuestion(question *DBQuestion) error {
	_, err := db.db.Exec(
		"INSERT INTO questions (id, quiz_id, question_num, prompt, options, correct_label) VALUES (?, ?, ?, ?, ?, ?)",
		question.ID, question.QuizID, question.QuestionNum, question.Prompt, question.Options, question.CorrectLabel,
	)
	if err != nil {
		return fmt.Errorf("failed to create question: %w", err)
	}
	return nil
}

// GetQuestion retrieves a question by quiz ID and question number
func (db *DB) GetQuestion(quizID string, questionNum int) (*DBQuestion, error) {
	var question DBQuestion
	err := db.db.QueryRow(
		"SELECT id, quiz_id, question_num, prompt, options, correct_label FROM questions WHERE quiz_id = ? AND question_num = ?",
		quizID, questionNum,
	).Scan(&question.ID, &question.QuizID, &question.QuestionNum, &question.Prompt, &question.Options, &question.CorrectLabel)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("question not found: quiz_id=%s, question_num=%d", quizID, questionNum)
		}
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &question, nil
}

// GetQuestions retrieves all questions for a quiz
func (db *DB) GetQuestions(quizID string) ([]DBQuestion, error) {
	rows, err := db.db.Query(
		"SELECT id, quiz_id, question_num, prompt, options, correct_label FROM questions WHERE quiz_id = ? ORDER BY question_num",
		quizID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	defer rows.Close()

	var questions []DBQuestion
	for rows.Next() {
		var question DBQuestion
		err := rows.Scan(&question.ID, &question.QuizID, &question.QuestionNum, &question.Prompt, &question.Options, &question.CorrectLabel)
		if err != nil {
			return nil, fmt.Errorf("failed to scan question: %w", err)
		}
		questions = append(questions, question)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating questions: %w", err)
	}

	return questions, nil
}

// QuestionExists checks if a question exists for a given quiz and question number
func (db *DB) QuestionExists(quizID string, questionNum int) (bool, error) {
	var exists bool
	err := db.db.QueryRow("SELECT EXISTS(SELECT 1 FROM questions WHERE quiz_id = ? AND question_num = ?)", quizID, questionNum).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check if question exists: %w", err)
	}
	return exists, nil
}

// GetQuizQuestionCount counts the questions actually stored for a quiz.
func (db *DB) GetQuizQuestionCount(quizID string) (int, error) {
	var count int
	err := db.db.QueryRow("SELECT COUNT(*) FROM questions WHERE quiz_id = ?", quizID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return count, nil
}

// OptionsToJSON converts an options slice to its stored JSON form.
func OptionsToJSON(options []string) (string, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return "", fmt.Errorf("failed to marshal options: %w", err)
	}
	return string(data), nil
}

// JSONToOptions converts the stored JSON form back to an options slice.
func JSONToOptions(optionsJSON string) ([]string, error) {
	var options []string
	err := json.Unmarshal([]byte(optionsJSON), &options)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal options: %w", err)
	}
	return options, nil
}

// ToQuestion rebuilds the parsed entity from its stored form.
func (q *DBQuestion) ToQuestion() (Question, error) {
	options, err := JSONToOptions(q.Options)
	if err != nil {
		return Question{}, err
	}
	return Question{
		Prompt:       q.Prompt,
		Options:      options,
		CorrectLabel: q.CorrectLabel,
	}, nil
}

// GenerateQuiz runs the full pipeline for a stored quiz row: acquire a
// transcript for the reference, generate delimited quiz text, parse it
// and store the questions. Meant to run in a background goroutine; all
// failures are logged and end in a terminal quiz status.
func (db *DB) GenerateQuiz(quizID, reference string, numQuestions int) {
	genLog, err := NewGenerationLog(quizID, reference)
	if err != nil {
		log.Printf("Failed to create logger for quiz %s: %v", quizID, err)
		// Continue without logging rather than failing
		genLog = nil
	} else {
		defer genLog.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client := &http.Client{Timeout: 30 * time.Second}
	pipeline := NewPipeline([]TranscriptStrategy{
		NewTranscriptAPI(os.Getenv("TRANSCRIPT_API_KEY"), client),
		NewPageScrape(client),
		NewTimedtext(client),
	}, DefaultMinTranscriptLength)
	if genLog != nil {
		pipeline.SetLog(genLog)
	}

	transcript, err := pipeline.Acquire(ctx, reference)
	if err != nil {
		log.Printf("Failed to acquire transcript for quiz %s: %v", quizID, err)
		if err := db.UpdateQuizStatus(quizID, StatusFailed); err != nil {
			log.Printf("Failed to update quiz status %s: %v", quizID, err)
		}
		return
	}

	maker := NewQuizMaker(os.Getenv("OPENAI_API_KEY"))
	rawText, err := maker.GenerateQuizText(ctx, transcript, numQuestions, genLog)
	if err != nil {
		log.Printf("Failed to generate quiz %s: %v", quizID, err)
		if err := db.UpdateQuizStatus(quizID, StatusFailed); err != nil {
			log.Printf("Failed to update quiz status %s: %v", quizID, err)
		}
		return
	}

	questions := ParseQuizText(rawText)
	if genLog != nil {
		genLog.LogParseResult(len(questions), len(rawText))
	}

	if len(questions) == 0 {
		// Nothing parsed: keep the raw response for verbatim display.
		if err := db.SetQuizRawText(quizID, rawText); err != nil {
			log.Printf("Failed to store raw text for quiz %s: %v", quizID, err)
		}
		if err := db.UpdateQuizStatus(quizID, StatusCompleted); err != nil {
			log.Printf("Failed to update quiz status %s: %v", quizID, err)
		}
		return
	}

	firstQuestionStored := false
	for i, question := range questions {
		optionsJSON, err := OptionsToJSON(question.Options)
		if err != nil {
			log.Printf("Failed to marshal options for quiz %s: %v", quizID, err)
			continue
		}

		dbQuestion := &DBQuestion{
			ID:           generateQuestionID(),
			QuizID:       quizID,
			QuestionNum:  i + 1,
			Prompt:       question.Prompt,
			Options:      optionsJSON,
			CorrectLabel: question.CorrectLabel,
		}

		if err := db.CreateQuestion(dbQuestion); err != nil {
			log.Printf("Failed to store question for quiz %s: %v", quizID, err)
			continue
		}

		// Mark quiz as ready as soon as the first question is stored
		if !firstQuestionStored {
			if err := db.UpdateQuizStatus(quizID, StatusReady); err != nil {
				log.Printf("Failed to update quiz status %s: %v", quizID, err)
			}
			firstQuestionStored = true
		}
	}

	if err := db.UpdateQuizStatus(quizID, StatusCompleted); err != nil {
		log.Printf("Failed to update quiz status to completed %s: %v", quizID, err)
	}
}
