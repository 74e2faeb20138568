package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/zen-systems/docpilot/pkg/adapter"
	"github.com/zen-systems/docpilot/pkg/config"
	"github.com/zen-systems/docpilot/pkg/pipeline"
	"github.com/zen-systems/docpilot/pkg/server"
	"github.com/zen-systems/docpilot/pkg/trace"
)

var (
	adapterFlag string
	modelFlag   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "docpilot",
		Short: "Staged document question-answering pipeline",
		Long: `Docpilot answers questions about extracted PDF text through a fixed
	multi-stage LLM pipeline: input checks, prompt enhancement, content
	extraction and drafting, score-gated validation, bounded review loops,
	and final formatting.`,
	}

	rootCmd.PersistentFlags().StringVar(&adapterFlag, "adapter", "", "adapter to use (anthropic, openai, google, mock)")
	rootCmd.PersistentFlags().StringVar(&modelFlag, "model", "", "model to use")

	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(stagesCmd())
	rootCmd.AddCommand(modelsCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func askCmd() *cobra.Command {
	var pdfFile string
	var promptFlag string
	var maxCycles int
	var threshold int
	var traceDir string
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "ask --pdf document.txt --prompt \"question\"",
		Short: "Run the pipeline over one document",
		Long: `Runs one pipeline over the given document and question.

	The document file may be raw extracted text, or the JSON wrapper form
	{"pdf_text": "..."} produced by upstream extraction tooling.

	The review budget has no built-in default: set --max-review-cycles, the
	DOCPILOT_MAX_REVIEW_CYCLES environment variable, or pipeline.max_review_cycles
	in ~/.docpilot/config.yaml.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			sourceText, err := loadDocument(pdfFile)
			if err != nil {
				return err
			}
			if promptFlag == "" {
				return fmt.Errorf("--prompt is required")
			}

			cycles := maxCycles
			if cycles == 0 {
				cycles = cfg.MaxReviewCycles
			}
			if cycles <= 0 {
				return fmt.Errorf("review budget not configured: set --max-review-cycles")
			}

			passThreshold := threshold
			if passThreshold == 0 {
				passThreshold = cfg.PassThreshold
			}

			ctrl, err := buildController(cfg, cycles, passThreshold, traceDir)
			if err != nil {
				return err
			}

			resp, err := ctrl.Run(context.Background(), pipeline.Request{
				SourceText: sourceText,
				Prompt:     promptFlag,
			})
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			fmt.Println(resp.FinalAnswer)
			fmt.Fprintf(os.Stderr, "\nscore: %d  review cycles: %d  run: %s\n",
				resp.Score, resp.Metadata.ReviewCycles, resp.Metadata.RunID)
			fmt.Fprintf(os.Stderr, "stages:")
			for _, stage := range resp.History {
				fmt.Fprintf(os.Stderr, " %s", stage)
			}
			fmt.Fprintln(os.Stderr)
			return nil
		},
	}

	cmd.Flags().StringVar(&pdfFile, "pdf", "", "path to extracted document text (raw or JSON wrapper)")
	cmd.Flags().StringVarP(&promptFlag, "prompt", "p", "", "question to answer from the document")
	cmd.Flags().IntVar(&maxCycles, "max-review-cycles", 0, "maximum review/validation cycles (required unless configured)")
	cmd.Flags().IntVar(&threshold, "threshold", 0, "validation pass threshold (default 70)")
	cmd.Flags().StringVar(&traceDir, "trace-dir", "", "directory for run trace bundles (default ~/.docpilot/runs)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the full response as JSON")
	_ = cmd.MarkFlagRequired("pdf")

	return cmd
}

func serveCmd() *cobra.Command {
	var addr string
	var maxCycles int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the pipeline over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			cycles := maxCycles
			if cycles == 0 {
				cycles = cfg.MaxReviewCycles
			}
			if cycles <= 0 {
				return fmt.Errorf("review budget not configured: set --max-review-cycles")
			}

			ctrl, err := buildController(cfg, cycles, cfg.PassThreshold, "")
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			srv := server.New(ctrl, logger)

			logger.Info("listening", "addr", addr)
			return http.ListenAndServe(addr, srv.Handler())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().IntVar(&maxCycles, "max-review-cycles", 0, "maximum review/validation cycles (required unless configured)")

	return cmd
}

func stagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stages",
		Short: "Show the stage transition graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STAGE\tNEXT\tNOTES")
			fmt.Fprintln(w, "manager\tenhancement\tinput checks, no generation")
			fmt.Fprintln(w, "enhancement\tprocessing\trewrites the question")
			fmt.Fprintln(w, "processing\tvalidation\textracts content, drafts answer")
			fmt.Fprintln(w, "validation\tcompletion | review\tscore gate at threshold")
			fmt.Fprintln(w, "review\tvalidation\trevises draft, bounded cycles")
			fmt.Fprintln(w, "completion\t-\tformats the final answer")
			return w.Flush()
		},
	}
}

func modelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List adapters, models, and key status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			adapters := map[string][]string{
				"anthropic": (&adapter.AnthropicAdapter{}).Models(),
				"openai":    (&adapter.OpenAIAdapter{}).Models(),
				"google":    (&adapter.GoogleAdapter{}).Models(),
				"mock":      (&adapter.MockAdapter{}).Models(),
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tMODELS\tSTATUS")
			for _, name := range []string{"anthropic", "google", "mock", "openai"} {
				status := "no key"
				if cfg.HasAdapter(name) {
					status = "ready"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", name, formatList(adapters[name]), status)
			}
			return w.Flush()
		},
	}
}

// buildController assembles adapters, prompts, trace recorder, and the stage
// handler set from configuration and flags.
func buildController(cfg *config.Config, maxCycles, threshold int, traceDir string) (*pipeline.Controller, error) {
	a, err := createAdapter(cfg)
	if err != nil {
		return nil, err
	}

	model := modelFlag
	if model == "" {
		model = cfg.DefaultModel
	}
	if model == "" {
		models := a.Models()
		if len(models) > 0 {
			model = models[0]
		}
	}
	if model == "" {
		return nil, fmt.Errorf("model not specified for adapter %s", a.Name())
	}

	prompts := pipeline.DefaultPrompts()
	if cfg.PromptsFile != "" {
		prompts, err = pipeline.LoadPrompts(cfg.PromptsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load prompts: %w", err)
		}
	}

	runsDir := traceDir
	if runsDir == "" {
		runsDir = cfg.RunsDir
	}
	recorder, err := trace.NewWriter(runsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare trace writer: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	return pipeline.New(pipeline.NewHandlers(a, model, prompts), pipeline.Options{
		MaxReviewCycles: maxCycles,
		PassThreshold:   threshold,
		Logger:          logger,
		Recorder:        recorder,
	})
}

// createAdapter picks an adapter by flag, config, or first configured key.
func createAdapter(cfg *config.Config) (adapter.Adapter, error) {
	name := adapterFlag
	if name == "" {
		name = cfg.DefaultAdapter
	}
	if name == "" {
		for _, candidate := range []string{"anthropic", "openai", "google"} {
			if cfg.HasAdapter(candidate) {
				name = candidate
				break
			}
		}
	}

	switch name {
	case "anthropic":
		return adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
	case "openai":
		return adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
	case "google":
		return adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
	case "mock":
		return adapter.NewMockAdapter(), nil
	case "":
		return nil, fmt.Errorf("no adapter available: configure an API key or pass --adapter")
	default:
		return nil, fmt.Errorf("unknown adapter %q", name)
	}
}

// loadDocument reads a document file, unwrapping the {"pdf_text": ...} JSON
// form when present.
func loadDocument(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("--pdf is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}

	var wrapper struct {
		PDFText string `json:"pdf_text"`
	}
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.PDFText != "" {
		return wrapper.PDFText, nil
	}
	return string(data), nil
}

func formatList(items []string) string {
	if len(items) == 0 {
		return ""
	}
	result := items[0]
	for i := 1; i < len(items); i++ {
		result += ", " + items[i]
	}
	return result
}
