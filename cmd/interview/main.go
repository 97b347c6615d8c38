package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zhouzirui/z-interview/internal/app"
	"github.com/zhouzirui/z-interview/internal/config"
	model "github.com/zhouzirui/z-interview/internal/model/interview"
	"github.com/zhouzirui/z-interview/internal/service/interview"
	"github.com/zhouzirui/z-interview/internal/service/transcript"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	os.Exit(run())
}

// run executes the CLI and returns the process exit code, so deferred
// cleanup always runs before exit.
func run() int {
	if err := godotenv.Load(); err != nil {
		log.Printf("[cli] .env not loaded, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Printf("[cli] failed to load configuration: %v", err)
		return 1
	}

	questionsPath := flag.String("questions", "", "question file (JSON or YAML list, or a mapping with a \"questions\" key)")
	participant := flag.String("agent", interview.AllParticipants, "persona name, or \"all\" for the whole roster")
	output := flag.String("output", "", "output path without extension (default interview_results_YYYYMMDD_HHMMSS)")
	format := flag.String("format", string(transcript.FormatJSON), "output format: json or md")
	mode := flag.String("mode", cfg.Interview.Mode, "session mode: independent or conversational")
	check := flag.Bool("check", false, "validate credential and model configuration, then exit")
	flag.Parse()

	personas, err := app.Personas(cfg.Interview)
	if err != nil {
		log.Printf("[cli] failed to load personas: %v", err)
		return 1
	}

	if *check {
		return runCheck(cfg, len(personas.List()))
	}

	if *questionsPath == "" {
		flag.Usage()
		log.Print("[cli] -questions is required")
		return 2
	}
	outputFormat, err := transcript.ParseFormat(*format)
	if err != nil {
		log.Printf("[cli] %v", err)
		return 2
	}
	sessionMode, err := model.ParseMode(*mode)
	if err != nil {
		log.Printf("[cli] %v", err)
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cfg.AI.Validate(); err != nil {
		log.Printf("[cli] %v", &interview.Error{Code: interview.ErrorInvalidCredential, Reason: "credential_rejected", Err: err})
		return 1
	}
	manager, err := app.NewManager(ctx, cfg, personas)
	if err != nil {
		log.Printf("[cli] failed to initialize interview service: %v", err)
		return 1
	}

	result, err := manager.RunFile(ctx, interview.FileRun{
		Participant:   *participant,
		QuestionsPath: *questionsPath,
		OutputStem:    *output,
		Format:        outputFormat,
		Mode:          sessionMode,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Print("[cli] interview interrupted, nothing written")
			return 130
		}
		log.Printf("[cli] interview failed: %v", err)
		return 1
	}

	if cfg.Storage.ArchivePath != "" {
		archiveResult(ctx, cfg.Storage, sessionMode, result)
	}

	s := result.Summary
	log.Printf("[cli] results saved to %s", result.Path)
	fmt.Printf("Participants: %d\nQuestions: %d\nResponses: %d (degraded: %d)\nOutput: %s\n",
		s.Participants, s.Questions, s.Responses, s.Degraded, result.Path)
	return 0
}

func archiveResult(ctx context.Context, storage config.StorageConfig, mode model.Mode, result *interview.FileResult) {
	store, closeArchive, err := app.OpenArchive(storage)
	if err != nil {
		log.Printf("[archive] %v", err)
		return
	}
	defer func() {
		if err := closeArchive(); err != nil {
			log.Printf("[archive] close failed: %v", err)
		}
	}()

	record, err := store.Save(ctx, mode, result.Session)
	if err != nil {
		log.Printf("[archive] save failed: %v", err)
		return
	}
	log.Printf("[archive] session archived id=%s", record.ID)
}

// runCheck reports the configuration without calling the model.
func runCheck(cfg *config.Config, personaCount int) int {
	fmt.Printf("Provider:     %s\n", cfg.AI.Provider)
	fmt.Printf("Model:        %s\n", cfg.AI.Model)
	fmt.Printf("Temperature:  %.2f\n", cfg.AI.Temperature)
	fmt.Printf("Max tokens:   %d\n", cfg.AI.MaxTokens)
	fmt.Printf("Mode:         %s\n", cfg.Interview.Mode)
	fmt.Printf("Personas:     %d\n", personaCount)

	if err := cfg.AI.Validate(); err != nil {
		fmt.Printf("Credential:   FAILED (%v)\n", err)
		return 1
	}
	fmt.Println("Credential:   OK")
	return 0
}
