// Package main provides the recall chat CLI. It runs a terminal
// conversation loop against an OpenAI-compatible endpoint and maintains the
// long-term memory store across exchanges.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/entrhq/recall/pkg/agent/memory"
	appconfig "github.com/entrhq/recall/pkg/config"
	"github.com/entrhq/recall/pkg/llm"
	"github.com/entrhq/recall/pkg/logging"
	"github.com/entrhq/recall/pkg/types"
)

const (
	version      = "0.1.0"
	defaultModel = "gpt-4o"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MemoryDir   string
	MaxFacts    int
	NoMemory    bool
	ShowVersion bool
}

func main() {
	config := parseFlags()

	if config.ShowVersion {
		fmt.Printf("recall v%s\n", version)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")
		cancel()
	}()

	if err := run(ctx, config); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "recall: %v\n", err)
		os.Exit(1)
	}
	cancel()
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	config := &CLIConfig{}

	flag.StringVar(&config.APIKey, "api-key", "", "OpenAI API key (defaults to OPENAI_API_KEY)")
	flag.StringVar(&config.BaseURL, "base-url", "", "OpenAI API base URL (defaults to OPENAI_BASE_URL)")
	flag.StringVar(&config.Model, "model", defaultModel, "LLM model to use")
	flag.StringVar(&config.MemoryDir, "memory-dir", "", "Memory store directory (defaults to ~/.recall/memory)")
	flag.IntVar(&config.MaxFacts, "max-facts", 0, "Maximum facts extracted per exchange (0 uses the configured default)")
	flag.BoolVar(&config.NoMemory, "no-memory", false, "Disable the memory pipeline for this session")
	flag.BoolVar(&config.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "recall - Chat with long-term memory\n\n")
		fmt.Fprintf(os.Stderr, "Usage: recall [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nCommands inside the session:\n")
		fmt.Fprintf(os.Stderr, "  /memories   List remembered facts\n")
		fmt.Fprintf(os.Stderr, "  /summary    Show the running summary\n")
		fmt.Fprintf(os.Stderr, "  /history    Show recent memory checkpoints\n")
		fmt.Fprintf(os.Stderr, "  /quit       Exit\n")
	}

	flag.Parse()
	return config
}

func run(ctx context.Context, cliConfig *CLIConfig) error {
	if err := appconfig.Initialize(""); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	logger, err := logging.NewLogger("cli")
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	provider, err := appconfig.BuildProvider(cliConfig.Model, cliConfig.BaseURL, cliConfig.APIKey, defaultModel)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	pipeline, store, err := buildMemory(cliConfig, provider, logger)
	if err != nil {
		return err
	}

	fmt.Printf("recall v%s (model %s)\n", version, provider.GetModel())
	if store == nil {
		fmt.Println("Memory is disabled for this session.")
	} else if !store.Durable() {
		fmt.Println("Memory is in-memory only for this session (git not available).")
	}
	fmt.Println("Type /quit to exit.")

	return chatLoop(ctx, provider, pipeline, store)
}

// buildMemory opens the store and constructs the per-exchange pipeline.
// It returns nil components when memory is disabled.
func buildMemory(cliConfig *CLIConfig, provider llm.Provider, logger *logging.Logger) (*memory.Pipeline, *memory.Store, error) {
	memConfig := appconfig.GetMemory()

	disabled := cliConfig.NoMemory
	if memConfig != nil && memConfig.IsDisabled() {
		disabled = true
	}
	if disabled {
		return nil, nil, nil
	}

	dir := cliConfig.MemoryDir
	if dir == "" && memConfig != nil {
		dir = memConfig.GetDir()
	}
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		dir = filepath.Join(home, ".recall", "memory")
	}

	store, err := memory.Open(dir, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open memory store: %w", err)
	}

	opts := []memory.PipelineOption{}
	maxFacts := cliConfig.MaxFacts
	if maxFacts == 0 && memConfig != nil {
		maxFacts = memConfig.GetMaxFacts()
	}
	if maxFacts > 0 {
		opts = append(opts, memory.WithMaxFacts(maxFacts))
	}
	if llmConfig := appconfig.GetLLM(); llmConfig != nil {
		if m := llmConfig.GetExtractionModel(); m != "" {
			opts = append(opts, memory.WithExtractionModel(m))
		}
		if m := llmConfig.GetSummarizationModel(); m != "" {
			opts = append(opts, memory.WithSummarizationModel(m))
		}
	}

	pipeline, err := memory.NewPipeline(provider, store, logger, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create memory pipeline: %w", err)
	}
	return pipeline, store, nil
}

// chatLoop reads user input line by line, streams assistant replies, and runs
// the memory pipeline after each exchange.
func chatLoop(ctx context.Context, provider llm.Provider, pipeline *memory.Pipeline, store *memory.Store) error {
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var conversation []*types.Message

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if quit := runCommand(input, store); quit {
				return nil
			}
			continue
		}

		conversation = append(conversation, types.NewUserMessage(input))
		messages := append([]*types.Message{types.NewSystemMessage(systemPrompt(store))}, conversation...)

		reply, err := streamReply(ctx, provider, messages)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(os.Stderr, "recall: completion failed: %v\n", err)
			conversation = conversation[:len(conversation)-1]
			continue
		}
		conversation = append(conversation, types.NewAssistantMessage(reply))

		if pipeline != nil {
			if _, err := pipeline.ProcessExchange(ctx, input); err != nil && ctx.Err() == nil {
				fmt.Fprintf(os.Stderr, "recall: memory update failed: %v\n", err)
			}
		}
	}
}

// streamReply prints assistant chunks as they arrive and returns the full text.
func streamReply(ctx context.Context, provider llm.Provider, messages []*types.Message) (string, error) {
	stream, err := provider.StreamCompletion(ctx, messages)
	if err != nil {
		return "", err
	}

	var reply strings.Builder
	for chunk := range stream {
		if chunk.IsError() {
			fmt.Println()
			return "", chunk.Error
		}
		if chunk.Content != "" {
			fmt.Print(chunk.Content)
			reply.WriteString(chunk.Content)
		}
	}
	fmt.Println()
	return reply.String(), nil
}

// systemPrompt composes the assistant instructions with the current memory
// state so replies stay grounded in what is already known about the user.
func systemPrompt(store *memory.Store) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant. Answer concisely.")

	if store == nil {
		return b.String()
	}
	if summary := store.Summary(); summary != "" {
		b.WriteString("\n\nSummary of what you know about the user:\n")
		b.WriteString(summary)
	}
	if records := store.ListRecords(); len(records) > 0 {
		b.WriteString("\n\nFacts you remember about the user:\n")
		for _, rec := range records {
			fmt.Fprintf(&b, "- %s\n", rec.Text)
		}
	}
	return b.String()
}

// runCommand handles slash commands. It returns true when the session should end.
func runCommand(input string, store *memory.Store) bool {
	switch input {
	case "/quit", "/exit":
		return true
	case "/memories":
		if store == nil {
			fmt.Println("Memory is disabled.")
			return false
		}
		records := store.ListRecords()
		if len(records) == 0 {
			fmt.Println("No memories yet.")
			return false
		}
		for _, rec := range records {
			fmt.Printf("[%s] %s\n", rec.ID, rec.Text)
		}
	case "/summary":
		if store == nil {
			fmt.Println("Memory is disabled.")
			return false
		}
		if summary := store.Summary(); summary != "" {
			fmt.Println(summary)
		} else {
			fmt.Println("No summary yet.")
		}
	case "/history":
		if store == nil {
			fmt.Println("Memory is disabled.")
			return false
		}
		entries, err := store.History(20)
		if err != nil {
			fmt.Printf("History unavailable: %v\n", err)
			return false
		}
		if len(entries) == 0 {
			fmt.Println("No checkpoints yet.")
			return false
		}
		for _, entry := range entries {
			fmt.Println(entry)
		}
	default:
		fmt.Printf("Unknown command %q. Available: /memories /summary /history /quit\n", input)
	}
	return false
}
