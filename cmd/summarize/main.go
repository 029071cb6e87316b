// Package main provides a CLI command for summarizing text, PDF documents and web articles.
// Usage: summarize (-text T | -file F | -pdf P | -url U) [-notes N] [-points 5] [-output text|json] [-preview]
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"smart-summarizer/internal/config"
	"smart-summarizer/internal/domain/entity"
	"smart-summarizer/internal/infra/extractor"
	"smart-summarizer/internal/infra/summarizer"
	"smart-summarizer/internal/observability/logging"
	"smart-summarizer/internal/usecase/summarize"
)

const usage = `Usage: summarize (-text T | -file F | -pdf P | -url U) [-notes N] [-points 5] [-output text|json] [-preview]

Examples:
  summarize -text "Go is an open source programming language..."
  summarize -file notes.txt -points 3
  cat lecture.txt | summarize -file -
  summarize -pdf slides.pdf -notes "exam next week" -output json
  summarize -pdf slides.pdf -preview
  summarize -url https://go.dev/blog/go1.22
`

// options are the parsed command-line arguments.
type options struct {
	text    string
	file    string
	pdf     string
	url     string
	notes   *string
	points  int
	output  string
	preview bool
}

// SummaryOutput represents the JSON output format for summary results.
type SummaryOutput struct {
	Summary   string   `json:"summary,omitempty"`
	Bullets   []string `json:"bullets,omitempty"`
	Points    int      `json:"points,omitempty"`
	Source    string   `json:"source"`
	RequestID string   `json:"request_id,omitempty"`
	Preview   string   `json:"preview,omitempty"`
}

// pipeline is the part of summarize.Service the command drives.
type pipeline interface {
	SummarizeText(ctx context.Context, text string, notes *string, points int) (*summarize.Result, error)
	SummarizeURL(ctx context.Context, url string, notes *string, points int) (*summarize.Result, error)
	SummarizePDF(ctx context.Context, pdf []byte, notes *string, points int) (*summarize.Result, error)
	PreviewPDF(ctx context.Context, pdf []byte) (string, error)
}

func main() {
	opts, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n\n%s", err, usage)
		os.Exit(1)
	}

	// Logs go to stderr so stdout carries only the summary.
	logger := logging.NewTextLogger(logLevel())
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var engine summarize.Engine = summarizer.NewNoOp()
	if !opts.preview {
		engine, err = summarizer.New(cfg.ToSummarizer(), logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to initialize summarization engine: %v\n", err)
			os.Exit(1)
		}
	}

	svc := summarize.NewService(engine,
		extractor.NewPDFExtractor(logger),
		extractor.NewArticleExtractor(cfg.ArticleConfig()),
		summarize.Options{MaxInputLength: cfg.MaxInputLength(), Logger: logger})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, svc, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", userMessage(err))
		stop()
		os.Exit(1)
	}
}

func logLevel() slog.Level {
	level, err := logging.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil || os.Getenv("LOG_LEVEL") == "" {
		return slog.LevelWarn
	}
	return level
}

// parseFlags parses args and checks that exactly one source was given.
func parseFlags(args []string, stderr io.Writer) (options, error) {
	var (
		opts  options
		notes string
	)
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }

	fs.StringVar(&opts.text, "text", "", "Text to summarize")
	fs.StringVar(&opts.file, "file", "", "Text file to summarize (- reads standard input)")
	fs.StringVar(&opts.pdf, "pdf", "", "PDF document to summarize")
	fs.StringVar(&opts.url, "url", "", "Web article to summarize")
	fs.StringVar(&notes, "notes", "", "Additional context appended to the input")
	fs.IntVar(&opts.points, "points", entity.DefaultPoints, "Number of bullet points (1-20)")
	fs.StringVar(&opts.output, "output", "text", "Output format: text or json")
	fs.BoolVar(&opts.preview, "preview", false, "Print the extracted PDF text instead of summarizing")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "notes" {
			opts.notes = &notes
		}
	})

	sources := 0
	for _, s := range []string{opts.text, opts.file, opts.pdf, opts.url} {
		if s != "" {
			sources++
		}
	}
	if sources != 1 {
		return options{}, errors.New("exactly one of -text, -file, -pdf or -url is required")
	}
	if opts.output != "text" && opts.output != "json" {
		return options{}, fmt.Errorf("invalid output format %q (must be 'text' or 'json')", opts.output)
	}
	if opts.preview && opts.pdf == "" {
		return options{}, errors.New("-preview requires -pdf")
	}
	return opts, nil
}

// run executes one summarization and writes the result to stdout.
func run(ctx context.Context, opts options, svc pipeline, stdin io.Reader, stdout io.Writer) error {
	var (
		res *summarize.Result
		err error
	)
	switch {
	case opts.text != "":
		res, err = svc.SummarizeText(ctx, opts.text, opts.notes, opts.points)

	case opts.file != "":
		var data []byte
		data, err = readInput(opts.file, stdin)
		if err != nil {
			return err
		}
		res, err = svc.SummarizeText(ctx, string(data), opts.notes, opts.points)

	case opts.pdf != "":
		var data []byte
		data, err = readInput(opts.pdf, stdin)
		if err != nil {
			return err
		}
		if opts.preview {
			preview, err := svc.PreviewPDF(ctx, data)
			if err != nil {
				return err
			}
			return write(stdout, opts.output, SummaryOutput{Source: entity.SourcePDF.String(), Preview: preview})
		}
		res, err = svc.SummarizePDF(ctx, data, opts.notes, opts.points)

	case opts.url != "":
		res, err = svc.SummarizeURL(ctx, opts.url, opts.notes, opts.points)
	}
	if err != nil {
		return err
	}

	return write(stdout, opts.output, SummaryOutput{
		Summary:   res.Bullets,
		Bullets:   res.Sentences,
		Points:    int(res.Points),
		Source:    res.Source.String(),
		RequestID: res.RequestID,
	})
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read standard input: %w", err)
		}
		return data, nil
	}
	// #nosec G304 -- the path is a command-line argument of the invoking user
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// write prints out as plain text or as indented JSON.
func write(w io.Writer, format string, out SummaryOutput) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if out.Preview != "" {
		_, err := fmt.Fprintf(w, "Extracted text preview:\n%s\n", out.Preview)
		return err
	}
	if out.Summary == "" {
		_, err := fmt.Fprintln(w, "(the model returned an empty summary)")
		return err
	}
	_, err := fmt.Fprintln(w, out.Summary)
	return err
}

// userMessage renders err for the terminal.
func userMessage(err error) string {
	var validationErr *entity.ValidationError
	var extractionErr *entity.ExtractionError
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.As(err, &extractionErr):
		return fmt.Sprintf("could not extract text from %s: %v", extractionErr.Source, extractionErr.Err)
	case errors.Is(err, context.DeadlineExceeded):
		return "summarization timed out"
	case errors.Is(err, context.Canceled):
		return "interrupted"
	default:
		return err.Error()
	}
}
