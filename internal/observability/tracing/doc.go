// Package tracing provides OpenTelemetry tracing for the summarizer.
//
// The pipeline opens one span per stage (pipeline.extract, pipeline.generate,
// pipeline.format) on the tracer returned by GetTracer. Middleware adds a
// server span per HTTP request and reports the trace id in X-Trace-Id.
//
// Tracing is off until main calls InitProvider; before that the global no-op
// provider makes every span free.
//
//	shutdown, err := tracing.InitProvider(tracing.ProviderConfig{SampleRatio: 1})
//	if err != nil {
//	    return err
//	}
//	defer shutdown(context.Background())
package tracing
