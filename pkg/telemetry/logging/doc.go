// Package logging provides structured logging with credential redaction.
//
// # Overview
//
// The logging package wraps Go's standard log/slog package to provide:
//   - JSON or text output, on stderr by default
//   - Redaction of API keys, bearer tokens and secret env assignments
//   - Context fields (run_id, target, container, session) added to every record
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "text",
//	    Redact: true,
//	})
//	if err != nil {
//	    return err
//	}
//	slog.SetDefault(logger.Slog())
//
//	ctx = logging.WithRunID(ctx, runID)
//	slog.InfoContext(ctx, "loaded env file",
//	    "path", ".env",
//	    "ALIBABA_API_KEY", "sk-abc123xyz", // logged as sk-a***
//	)
//
// # Redaction
//
// Values under sensitive field names (api_key, token, secret, password,
// authorization) are masked entirely. Free-form strings are scanned for:
//
//   - sk- prefixed keys: sk-abc123xyz → sk-***
//   - env assignments: DASHSCOPE_API_KEY=abc → DASHSCOPE_API_KEY=***
//   - bearer tokens: Bearer eyJ... → Bearer ***
package logging
