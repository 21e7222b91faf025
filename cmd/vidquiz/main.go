package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"vidquiz"
)

func main() {
	var (
		videoURL         = flag.String("url", "", "Video link or id (required)")
		numQuestions     = flag.Int("questions", vidquiz.DefaultQuestionCount, "Number of questions to generate")
		outputFile       = flag.String("output", "", "Output file for quiz JSON (default: stdout)")
		apiKey           = flag.String("api-key", "", "OpenAI API key (or set OPENAI_API_KEY env var)")
		transcriptAPIKey = flag.String("transcript-api-key", "", "Transcript API key (or set TRANSCRIPT_API_KEY env var)")
		transcriptOnly   = flag.Bool("transcript-only", false, "Print the acquired transcript and exit")
		playMode         = flag.Bool("play", false, "Play the quiz interactively")
		verbose          = flag.Bool("verbose", false, "Enable verbose debugging output")
	)

	flag.Parse()

	vidquiz.SetVerbose(*verbose)

	if *videoURL == "" {
		log.Fatal("Video link is required. Use -url flag.")
	}

	if *transcriptAPIKey == "" {
		*transcriptAPIKey = os.Getenv("TRANSCRIPT_API_KEY")
	}

	videoID, err := vidquiz.ResolveVideoID(*videoURL)
	if err != nil {
		log.Fatalf("Could not resolve video id: %v", err)
	}
	if *verbose {
		log.Printf("Resolved video id: %s", videoID)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	client := &http.Client{Timeout: 30 * time.Second}
	pipeline := vidquiz.NewPipeline([]vidquiz.TranscriptStrategy{
		vidquiz.NewTranscriptAPI(*transcriptAPIKey, client),
		vidquiz.NewPageScrape(client),
		vidquiz.NewTimedtext(client),
	}, vidquiz.DefaultMinTranscriptLength)

	transcript, err := pipeline.Acquire(ctx, *videoURL)
	if err != nil {
		log.Fatalf("No transcript could be obtained: %v", err)
	}

	if *transcriptOnly {
		fmt.Println(transcript)
		return
	}

	if *apiKey == "" {
		*apiKey = os.Getenv("OPENAI_API_KEY")
		if *apiKey == "" {
			log.Fatal("OpenAI API key is required. Use -api-key flag or set OPENAI_API_KEY environment variable.")
		}
	}

	maker := vidquiz.NewQuizMaker(*apiKey)
	rawText, err := maker.GenerateQuizText(ctx, transcript, *numQuestions, nil)
	if err != nil {
		log.Fatalf("Failed to generate quiz: %v", err)
	}

	questions := vidquiz.ParseQuizText(rawText)
	if len(questions) == 0 {
		// The model ignored the format. Show what came back verbatim.
		log.Printf("No well-formed questions found, printing raw response")
		fmt.Println(rawText)
		return
	}

	if *playMode {
		playQuiz(questions)
		return
	}

	quiz := vidquiz.Quiz{
		ID:        vidquiz.NewQuizID(),
		VideoID:   videoID,
		Reference: *videoURL,
		Questions: questions,
		CreatedAt: time.Now(),
		Status:    vidquiz.StatusCompleted,
	}

	output, err := json.MarshalIndent(quiz, "", "  ")
	if err != nil {
		log.Fatalf("Failed to marshal quiz: %v", err)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, output, 0644); err != nil {
			log.Fatalf("Failed to write output file: %v", err)
		}
		log.Printf("Quiz saved to: %s", *outputFile)
	} else {
		fmt.Println(string(output))
	}
}

func playQuiz(questions []vidquiz.Question) {
	fmt.Printf("🎯 Quiz ready with %d questions\n\n", len(questions))

	scanner := bufio.NewScanner(os.Stdin)

	for i := range questions {
		question := &questions[i]
		fmt.Printf("Question %d/%d:\n", i+1, len(questions))
		fmt.Printf("%s\n\n", question.Prompt)

		for _, option := range question.Options {
			fmt.Println(option)
		}
		fmt.Println()

		var answer string
		for {
			fmt.Print("Your answer (a/b/c/d): ")
			scanner.Scan()
			answer = strings.ToLower(strings.TrimSpace(scanner.Text()))
			if answer == "a" || answer == "b" || answer == "c" || answer == "d" {
				break
			}
			fmt.Println("Please enter a, b, c or d")
		}

		question.Select(answer)

		if question.Answer.Correct {
			fmt.Println("✅ Correct!")
		} else if question.CorrectLabel != "" {
			fmt.Printf("❌ Incorrect. The correct answer is %s\n", question.CorrectLabel)
		} else {
			fmt.Println("🤷 This question came without an answer key")
		}

		fmt.Println()
		fmt.Println(strings.Repeat("─", 50))
		fmt.Println()
	}

	score := vidquiz.Score(questions)
	percentage := float64(score) / float64(len(questions)) * 100

	fmt.Println("🎉 Quiz completed!")
	fmt.Printf("🏆 Final score: %d/%d (%.1f%%)\n", score, len(questions), percentage)

	if percentage >= 80 {
		fmt.Println("🌟 Excellent work!")
	} else if percentage >= 60 {
		fmt.Println("👍 Good job!")
	} else {
		fmt.Println("📚 Keep studying!")
	}
}
