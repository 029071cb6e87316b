package summarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"smart-summarizer/internal/domain/entity"
	"smart-summarizer/internal/observability/requestid"
	"smart-summarizer/internal/observability/metrics"
	"smart-summarizer/internal/observability/tracing"
	"smart-summarizer/internal/utils/text"
)

// Options configures a Service.
type Options struct {
	// MaxInputLength is the tokenizer-level truncation length handed to the engine.
	// Zero means entity.DefaultMaxInputTokens.
	MaxInputLength int

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Result is a summary together with the metadata of the run that produced it.
type Result struct {
	entity.Summary

	// RequestID correlates the result with log entries and traces.
	RequestID string

	// Preview holds the leading characters of extracted PDF text when requested.
	Preview string
}

// Service orchestrates extraction, generation and formatting.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	engine         Engine
	pdf            PDFExtractor
	url            URLExtractor
	maxInputLength int
	logger         *slog.Logger
}

// NewService creates a pipeline service.
//
// Parameters:
//   - engine: summarization engine (required)
//   - pdf: PDF extractor, may be nil when PDF input is not served
//   - url: article extractor, may be nil when URL input is not served
//   - opts: optional settings
func NewService(engine Engine, pdf PDFExtractor, url URLExtractor, opts Options) *Service {
	if opts.MaxInputLength <= 0 {
		opts.MaxInputLength = entity.DefaultMaxInputTokens
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{
		engine:         engine,
		pdf:            pdf,
		url:            url,
		maxInputLength: opts.MaxInputLength,
		logger:         opts.Logger,
	}
}

// RunPipeline summarizes primaryText (plus optional notes) into pointCount bullets and
// returns the bulleted string.
//
// Out-of-range point counts are clamped into [1, 20]. Blank primary text is rejected
// with entity.ErrInvalidArgument. Engine failures are returned unchanged and are
// never retried here.
func (s *Service) RunPipeline(ctx context.Context, primaryText string, notes *string, pointCount int) (string, error) {
	res, err := s.run(s.withRequestID(ctx), entity.SourceText, primaryText, notes, pointCount)
	if err != nil {
		return "", err
	}
	return res.Bullets, nil
}

// SummarizeText runs the pipeline on pasted text.
func (s *Service) SummarizeText(ctx context.Context, primaryText string, notes *string, pointCount int) (*Result, error) {
	return s.run(s.withRequestID(ctx), entity.SourceText, primaryText, notes, pointCount)
}

// SummarizePDF extracts the text of a PDF document and summarizes it.
// The result carries a preview of the extracted text.
func (s *Service) SummarizePDF(ctx context.Context, pdf []byte, notes *string, pointCount int) (*Result, error) {
	ctx = s.withRequestID(ctx)
	extracted, err := s.extractPDF(ctx, pdf)
	if err != nil {
		pipelineRunsTotal.WithLabelValues(entity.SourcePDF.String(), statusFor(err)).Inc()
		return nil, err
	}
	res, err := s.run(ctx, entity.SourcePDF, extracted, notes, pointCount)
	if err != nil {
		return nil, err
	}
	res.Preview = text.TruncateRunes(extracted, entity.PreviewLength)
	return res, nil
}

// SummarizeURL downloads the article at rawURL and summarizes its main text.
func (s *Service) SummarizeURL(ctx context.Context, rawURL string, notes *string, pointCount int) (*Result, error) {
	ctx = s.withRequestID(ctx)
	extracted, err := s.extractURL(ctx, rawURL)
	if err != nil {
		pipelineRunsTotal.WithLabelValues(entity.SourceURL.String(), statusFor(err)).Inc()
		return nil, err
	}
	return s.run(ctx, entity.SourceURL, extracted, notes, pointCount)
}

// PreviewPDF returns the leading entity.PreviewLength characters of the extracted text.
func (s *Service) PreviewPDF(ctx context.Context, pdf []byte) (string, error) {
	extracted, err := s.extractPDF(s.withRequestID(ctx), pdf)
	if err != nil {
		return "", err
	}
	return text.TruncateRunes(extracted, entity.PreviewLength), nil
}

func (s *Service) extractPDF(ctx context.Context, pdf []byte) (string, error) {
	if err := entity.ValidatePDF(pdf); err != nil {
		return "", err
	}
	if s.pdf == nil {
		return "", entity.NewExtractionError(entity.SourcePDF, errors.New("pdf extraction is not configured"))
	}
	return s.extract(ctx, entity.SourcePDF, func(ctx context.Context) (string, error) {
		return s.pdf.ExtractText(ctx, pdf)
	})
}

func (s *Service) extractURL(ctx context.Context, rawURL string) (string, error) {
	if err := entity.ValidateURL(rawURL); err != nil {
		return "", err
	}
	if s.url == nil {
		return "", entity.NewExtractionError(entity.SourceURL, errors.New("url extraction is not configured"))
	}
	return s.extract(ctx, entity.SourceURL, func(ctx context.Context) (string, error) {
		return s.url.ExtractText(ctx, strings.TrimSpace(rawURL))
	})
}

// extract runs fn inside a span and normalises its failures to *entity.ExtractionError.
func (s *Service) extract(ctx context.Context, source entity.SourceKind, fn func(context.Context) (string, error)) (string, error) {
	requestID := requestid.FromContext(ctx)
	ctx, span := tracing.GetTracer().Start(ctx, "pipeline.extract",
		trace.WithAttributes(attribute.String("source", source.String())))
	defer span.End()

	start := time.Now()
	extracted, err := fn(ctx)
	if err == nil && strings.TrimSpace(extracted) == "" {
		err = errors.New("no text found")
	}
	if err != nil {
		var extErr *entity.ExtractionError
		if !errors.As(err, &extErr) {
			err = entity.NewExtractionError(source, err)
		}
		metrics.RecordExtraction(source.String(), time.Since(start), 0, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "extraction failed")
		s.logger.Warn("Text extraction failed",
			slog.String("request_id", requestID),
			slog.String("source", source.String()),
			slog.Any("error", err))
		return "", err
	}

	metrics.RecordExtraction(source.String(), time.Since(start), text.CountRunes(extracted), nil)
	s.logger.Info("Text extracted",
		slog.String("request_id", requestID),
		slog.String("source", source.String()),
		slog.Int("chars", text.CountRunes(extracted)),
		slog.Duration("duration", time.Since(start)))
	span.SetAttributes(attribute.Int("chars", text.CountRunes(extracted)))
	return extracted, nil
}

func (s *Service) run(ctx context.Context, source entity.SourceKind, primaryText string, notes *string, pointCount int) (*Result, error) {
	requestID := requestid.FromContext(ctx)
	start := time.Now()
	defer func() {
		pipelineDuration.WithLabelValues(source.String()).Observe(time.Since(start).Seconds())
	}()

	if err := entity.ValidateText(primaryText); err != nil {
		s.logger.Warn("Empty primary text provided",
			slog.String("request_id", requestID),
			slog.String("source", source.String()))
		pipelineRunsTotal.WithLabelValues(source.String(), "invalid").Inc()
		return nil, err
	}

	points := entity.PointCount(pointCount)
	if !points.InRange() {
		clamped := points.Clamp()
		s.logger.Warn("Point count out of range, clamping",
			slog.String("request_id", requestID),
			slog.Int("requested", pointCount),
			slog.Int("clamped", int(clamped)))
		pointsClampedTotal.Inc()
		points = clamped
	}

	prompt := BuildPrompt(primaryText, notes)
	maxOutput := points.MaxOutputLength()

	s.logger.Info("Starting summarization",
		slog.String("request_id", requestID),
		slog.String("source", source.String()),
		slog.Int("prompt_chars", text.CountRunes(prompt)),
		slog.Int("points", int(points)),
		slog.Int("max_output_length", maxOutput))

	raw, err := s.generate(ctx, prompt, maxOutput)
	if err != nil {
		s.logger.Error("Summarization failed",
			slog.String("request_id", requestID),
			slog.String("source", source.String()),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err))
		pipelineRunsTotal.WithLabelValues(source.String(), statusFor(err)).Inc()
		return nil, err
	}

	_, span := tracing.GetTracer().Start(ctx, "pipeline.format")
	sentences := text.SplitSentences(raw)
	bullets := text.FormatBullets(sentences)
	span.SetAttributes(attribute.Int("bullets", len(sentences)))
	span.End()

	bulletsPerSummary.Observe(float64(len(sentences)))
	pipelineRunsTotal.WithLabelValues(source.String(), "success").Inc()

	s.logger.Info("Summarization completed",
		slog.String("request_id", requestID),
		slog.String("source", source.String()),
		slog.Int("bullets", len(sentences)),
		slog.Duration("duration", time.Since(start)))

	return &Result{
		Summary: entity.Summary{
			Bullets:         bullets,
			Sentences:       sentences,
			Source:          source,
			InputLength:     text.CountRunes(prompt),
			Points:          points,
			MaxOutputLength: maxOutput,
		},
		RequestID: requestID,
	}, nil
}

func (s *Service) generate(ctx context.Context, prompt string, maxOutput int) (string, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "pipeline.generate",
		trace.WithAttributes(
			attribute.Int("max_input_length", s.maxInputLength),
			attribute.Int("max_output_length", maxOutput),
		))
	defer span.End()

	raw, err := s.engine.Summarize(ctx, prompt, s.maxInputLength, maxOutput)
	if err != nil {
		var infErr *entity.InferenceError
		if !errors.As(err, &infErr) {
			err = entity.NewInferenceError("engine", err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "generation failed")
		return "", fmt.Errorf("summarize: %w", err)
	}
	return raw, nil
}

// BuildPrompt combines primary text with optional notes.
// Notes that are nil or blank leave primaryText unchanged.
func BuildPrompt(primaryText string, notes *string) string {
	if notes == nil || strings.TrimSpace(*notes) == "" {
		return primaryText
	}
	return primaryText + "\n\n" + entity.NotesHeading + "\n" + *notes
}

// withRequestID returns ctx carrying a request ID, generating one when absent.
func (s *Service) withRequestID(ctx context.Context) context.Context {
	ctx, _ = requestid.Ensure(ctx)
	return ctx
}

// statusFor maps an error to the status label of pipelineRunsTotal.
func statusFor(err error) string {
	switch {
	case errors.Is(err, entity.ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, entity.ErrExtraction):
		return "extraction_error"
	default:
		return "inference_error"
	}
}
