// Command aibridge performs a single AI completion from the terminal. It is
// a thin driver over the bridge: one request, one response (or one streamed
// sequence of tokens), then exit. Ctrl-C cancels the in-flight call through
// the shared broadcaster instead of killing the process mid-write.
//
// API keys are read from the environment (a .env file is honored):
// OPENAI_API_KEY, ANTHROPIC_API_KEY, DEEPSEEK_API_KEY, OPENROUTER_API_KEY.
// Local servers need LOCAL_LLM_URL or the -endpoint flag.
package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/aioverlay/aibridge/core/client"
	"github.com/aioverlay/aibridge/internal/cancel"
	"github.com/aioverlay/aibridge/providers/ai"
)

// contextFileList collects repeatable -context flags.
type contextFileList []string

func (l *contextFileList) String() string { return strings.Join(*l, ",") }

func (l *contextFileList) Set(value string) error {
	*l = append(*l, value)
	return nil
}

func main() {
	// Best-effort: a missing .env simply means keys come from the shell.
	_ = godotenv.Load()

	var contextFiles contextFileList
	provider := flag.String("provider", "openai", "provider: openai | claude | deepseek | openrouter | local")
	prompt := flag.String("prompt", "", "prompt text (required)")
	system := flag.String("system", "", "optional system prompt")
	model := flag.String("model", "", "override the provider's default model")
	maxTokens := flag.Int("max-tokens", 0, "max output tokens (0 = provider default)")
	imagePath := flag.String("image", "", "path to a PNG image to attach")
	endpoint := flag.String("endpoint", os.Getenv("LOCAL_LLM_URL"), "local server base URL (provider=local)")
	stream := flag.Bool("stream", false, "stream tokens to stdout as they arrive")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Var(&contextFiles, "context", "file to attach as read-only context (repeatable)")
	flag.Parse()

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if *prompt == "" {
		fmt.Fprintln(os.Stderr, "aibridge: -prompt is required")
		flag.Usage()
		os.Exit(2)
	}

	request := ai.Request{
		APIKey:        keyFor(ai.ProviderID(*provider)),
		Prompt:        *prompt,
		SystemPrompt:  *system,
		Model:         *model,
		MaxTokens:     *maxTokens,
		Provider:      ai.ProviderID(*provider),
		LocalEndpoint: *endpoint,
	}

	if *imagePath != "" {
		raw, err := os.ReadFile(*imagePath)
		if err != nil {
			fatal(fmt.Errorf("reading image: %w", err))
		}
		request.ImageBase64 = base64.StdEncoding.EncodeToString(raw)
	}

	for _, path := range contextFiles {
		content, err := os.ReadFile(path)
		if err != nil {
			fatal(fmt.Errorf("reading context file: %w", err))
		}
		request.ContextChunks = append(request.ContextChunks, formatContextChunk(path, content))
	}

	broadcaster := cancel.NewBroadcaster()
	bridge := client.New(broadcaster, client.WithLogger(logger))

	// Ctrl-C advances the broadcaster; the in-flight call observes it and
	// returns ErrCancelled (or emits a Cancelled event) instead of dying.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	go func() {
		for range interrupts {
			logger.Debug("interrupt received, cancelling")
			broadcaster.Advance()
		}
	}()

	ctx := context.Background()
	if *stream {
		runStream(ctx, bridge, request)
		return
	}
	runOnce(ctx, bridge, request)
}

func runOnce(ctx context.Context, bridge *client.Client, request ai.Request) {
	response, err := bridge.Complete(ctx, request)
	if errors.Is(err, ai.ErrCancelled) {
		// Cancelled is "no result, no failure": exit quietly.
		return
	}
	if err != nil {
		fatal(err)
	}

	fmt.Println(response.Text)
	if response.TokensUsed != nil {
		fmt.Fprintf(os.Stderr, "[%s, %d tokens]\n", response.Model, *response.TokensUsed)
	}
}

func runStream(ctx context.Context, bridge *client.Client, request ai.Request) {
	err := bridge.CompleteStream(ctx, request, func(event ai.StreamEvent) {
		switch event.Type {
		case ai.StreamEventToken:
			fmt.Print(event.Delta)
		case ai.StreamEventDone:
			fmt.Println()
			fmt.Fprintf(os.Stderr, "[%s]\n", event.Model)
		case ai.StreamEventCancelled:
			fmt.Println()
		}
	})
	if err != nil {
		fatal(err)
	}
}

// formatContextChunk wraps file content in the fenced block layout the
// overlay's indexer produces; the bridge itself only concatenates chunks.
func formatContextChunk(path string, content []byte) string {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return fmt.Sprintf("### %s\n```%s\n%s\n```", filepath.Base(path), ext, content)
}

func keyFor(provider ai.ProviderID) string {
	switch provider {
	case ai.ProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY")
	case ai.ProviderClaude:
		return os.Getenv("ANTHROPIC_API_KEY")
	case ai.ProviderDeepSeek:
		return os.Getenv("DEEPSEEK_API_KEY")
	case ai.ProviderOpenRouter:
		return os.Getenv("OPENROUTER_API_KEY")
	default:
		return ""
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "aibridge: %v\n", err)
	os.Exit(1)
}
