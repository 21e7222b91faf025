package main

import (
	"encoding/gob"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"vidquiz"

	"github.com/gorilla/sessions"
)

type Server struct {
	db        *vidquiz.DB
	store     *sessions.CookieStore
	templates map[string]*template.Template
}

// QuizSession tracks one browser's locked-in answers for a quiz.
type QuizSession struct {
	QuizID  string                 `json:"quiz_id"`
	Answers map[int]vidquiz.Answer `json:"answers"` // question number -> answer
}

func init() {
	gob.Register(QuizSession{})
	gob.Register(vidquiz.Answer{})
}

func main() {
	vidquiz.SetVerbose(true)

	if os.Getenv("OPENAI_API_KEY") == "" {
		log.Fatal("OPENAI_API_KEY environment variable is required")
	}

	db, err := vidquiz.OpenDB("./vidquiz.db")
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.CloseDB()

	if err := db.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	sessionSecret := os.Getenv("SESSION_SECRET")
	if sessionSecret == "" {
		sessionSecret = "vidquiz-dev-secret"
	}
	store := sessions.NewCookieStore([]byte(sessionSecret))

	funcMap := template.FuncMap{
		"add": func(a, b int) int {
			return a + b
		},
		"printf": fmt.Sprintf,
	}

	templates := make(map[string]*template.Template)

	templateFiles := []struct {
		name string
		file string
	}{
		{"home", "templates/home.html"},
		{"status", "templates/status.html"},
		{"question", "templates/question.html"},
		{"raw", "templates/raw.html"},
		{"results", "templates/results.html"},
	}

	for _, tmpl := range templateFiles {
		templates[tmpl.name] = template.Must(template.New(tmpl.name).Funcs(funcMap).ParseFiles("templates/base.html", tmpl.file))
	}

	server := &Server{
		db:        db,
		store:     store,
		templates: templates,
	}

	http.HandleFunc("/", server.handleHome)
	http.HandleFunc("/quiz/new", server.handleNewQuiz)
	http.HandleFunc("/quiz/", server.handleQuiz)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8180"
	}

	log.Printf("Starting server on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	quizzes, err := s.db.GetQuizzes(20)
	if err != nil {
		log.Printf("Failed to get quizzes: %v", err)
		http.Error(w, "Failed to get quizzes", http.StatusInternalServerError)
		return
	}

	err = s.templates["home"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"Quizzes": quizzes,
	})
	if err != nil {
		log.Printf("Template error in home: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
}

func (s *Server) handleNewQuiz(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	videoURL := strings.TrimSpace(r.FormValue("video_url"))
	if videoURL == "" {
		http.Error(w, "Video link is required", http.StatusBadRequest)
		return
	}

	videoID, err := vidquiz.ResolveVideoID(videoURL)
	if err != nil {
		http.Error(w, "Could not find a video id in that link", http.StatusBadRequest)
		return
	}

	numQuestions, err := strconv.Atoi(r.FormValue("num_questions"))
	if err != nil || numQuestions <= 0 {
		numQuestions = vidquiz.DefaultQuestionCount
	}

	quizID := vidquiz.NewQuizID()
	quiz := &vidquiz.DBQuiz{
		ID:           quizID,
		VideoID:      videoID,
		Reference:    videoURL,
		NumQuestions: numQuestions,
		CreatedAt:    time.Now(),
		Status:       vidquiz.StatusGenerating,
	}

	if err := s.db.CreateQuiz(quiz); err != nil {
		log.Printf("Failed to create quiz: %v", err)
		http.Error(w, "Failed to create quiz", http.StatusInternalServerError)
		return
	}

	// Transcript acquisition and generation run in the background; the
	// quiz page polls until the row leaves "generating".
	go s.db.GenerateQuiz(quizID, videoURL, numQuestions)

	http.Redirect(w, r, "/quiz/"+quizID, http.StatusSeeOther)
}

func (s *Server) handleQuiz(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/quiz/")
	parts := strings.Split(path, "/")

	if len(parts) == 0 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}

	quizID := parts[0]

	if len(parts) == 1 {
		s.handleQuizEntry(w, r, quizID)
		return
	}

	if len(parts) == 2 {
		if parts[1] == "results" {
			s.handleResults(w, r, quizID)
			return
		}

		questionNum, err := strconv.Atoi(parts[1])
		if err != nil {
			http.NotFound(w, r)
			return
		}
		s.handleQuestion(w, r, quizID, questionNum)
		return
	}

	http.NotFound(w, r)
}

// handleQuizEntry routes the quiz landing page by generation state:
// still generating shows a polling page, a failure shows the error,
// a parse fallback shows the raw generator text, and a ready quiz
// starts at question 1.
func (s *Server) handleQuizEntry(w http.ResponseWriter, r *http.Request, quizID string) {
	quiz, err := s.db.GetQuiz(quizID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch quiz.Status {
	case vidquiz.StatusGenerating:
		s.renderStatus(w, quiz, "Generating your quiz...", true)
		return
	case vidquiz.StatusFailed:
		s.renderStatus(w, quiz, "No transcript could be obtained for this video.", false)
		return
	}

	count, err := s.db.GetQuizQuestionCount(quizID)
	if err != nil {
		log.Printf("Failed to count questions: %v", err)
		http.Error(w, "Failed to load quiz", http.StatusInternalServerError)
		return
	}

	if count == 0 {
		// Zero parsed questions: show the raw generator output rather
		// than an empty screen.
		err := s.templates["raw"].ExecuteTemplate(w, "base.html", quiz)
		if err != nil {
			log.Printf("Template error in raw: %v", err)
			http.Error(w, "Template error", http.StatusInternalServerError)
		}
		return
	}

	// Fresh visit resets the session for this quiz.
	session, _ := s.store.Get(r, "vidquiz-session")
	session.Values["quiz"] = QuizSession{
		QuizID:  quizID,
		Answers: make(map[int]vidquiz.Answer),
	}
	if err := session.Save(r, w); err != nil {
		log.Printf("Session save error: %v", err)
	}

	http.Redirect(w, r, fmt.Sprintf("/quiz/%s/1", quizID), http.StatusSeeOther)
}

func (s *Server) renderStatus(w http.ResponseWriter, quiz *vidquiz.DBQuiz, message string, refresh bool) {
	err := s.templates["status"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"Quiz":    quiz,
		"Message": message,
		"Refresh": refresh,
	})
	if err != nil {
		log.Printf("Template error in status: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (s *Server) quizSession(r *http.Request, quizID string) (*sessions.Session, QuizSession, bool) {
	session, _ := s.store.Get(r, "vidquiz-session")
	stateInterface := session.Values["quiz"]
	if stateInterface == nil {
		return session, QuizSession{}, false
	}
	state, ok := stateInterface.(QuizSession)
	if !ok || state.QuizID != quizID {
		return session, QuizSession{}, false
	}
	if state.Answers == nil {
		state.Answers = make(map[int]vidquiz.Answer)
	}
	return session, state, true
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request, quizID string, questionNum int) {
	session, state, ok := s.quizSession(r, quizID)
	if !ok {
		http.Redirect(w, r, "/quiz/"+quizID, http.StatusSeeOther)
		return
	}

	dbQuestion, err := s.db.GetQuestion(quizID, questionNum)
	if err != nil {
		http.Redirect(w, r, "/quiz/"+quizID, http.StatusSeeOther)
		return
	}

	question, err := dbQuestion.ToQuestion()
	if err != nil {
		log.Printf("Failed to rebuild question %s: %v", dbQuestion.ID, err)
		http.Error(w, "Failed to load question", http.StatusInternalServerError)
		return
	}

	// Replay the locked-in answer, if any. Select is a no-op once a
	// question is answered, so replay and fresh answers share a path.
	if answer, answered := state.Answers[questionNum]; answered {
		question.Select(answer.Label)
	}

	if r.Method == "POST" {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Failed to parse form", http.StatusBadRequest)
			return
		}

		label := r.FormValue("label")
		if label == "" {
			http.Error(w, "An answer is required", http.StatusBadRequest)
			return
		}

		question.Select(label)
		state.Answers[questionNum] = *question.Answer
		session.Values["quiz"] = state
		if err := session.Save(r, w); err != nil {
			log.Printf("Session save error: %v", err)
		}

		http.Redirect(w, r, fmt.Sprintf("/quiz/%s/%d", quizID, questionNum), http.StatusSeeOther)
		return
	}

	total, err := s.db.GetQuizQuestionCount(quizID)
	if err != nil {
		log.Printf("Failed to count questions: %v", err)
		http.Error(w, "Failed to load quiz", http.StatusInternalServerError)
		return
	}

	err = s.templates["question"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"QuizID":      quizID,
		"QuestionNum": questionNum,
		"Total":       total,
		"Question":    question,
		"IsLast":      questionNum >= total,
	})
	if err != nil {
		log.Printf("Template error in question: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

func (s *Server) handleResults(w http.ResponseWriter, r *http.Request, quizID string) {
	_, state, ok := s.quizSession(r, quizID)
	if !ok {
		http.Redirect(w, r, "/quiz/"+quizID, http.StatusSeeOther)
		return
	}

	quiz, err := s.db.GetQuiz(quizID)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	dbQuestions, err := s.db.GetQuestions(quizID)
	if err != nil {
		log.Printf("Failed to get questions: %v", err)
		http.Error(w, "Failed to get questions", http.StatusInternalServerError)
		return
	}

	questions := make([]vidquiz.Question, 0, len(dbQuestions))
	for _, dbQuestion := range dbQuestions {
		question, err := dbQuestion.ToQuestion()
		if err != nil {
			log.Printf("Failed to rebuild question %s: %v", dbQuestion.ID, err)
			continue
		}
		if answer, answered := state.Answers[dbQuestion.QuestionNum]; answered {
			question.Select(answer.Label)
		}
		questions = append(questions, question)
	}

	err = s.templates["results"].ExecuteTemplate(w, "base.html", map[string]interface{}{
		"Quiz":      quiz,
		"Questions": questions,
		"Score":     vidquiz.Score(questions),
		"Total":     len(questions),
	})
	if err != nil {
		log.Printf("Template error in results: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}
