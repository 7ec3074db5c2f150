package logscan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"ragops/ragdoctor/pkg/telemetry/logging"
)

// DefaultTail is the number of trailing lines scanned when a query does not
// set one.
const DefaultTail = 200

// ErrNoContainer is returned when the named container does not exist.
var ErrNoContainer = errors.New("no such container")

// Source returns the most recent lines of a container's log, oldest first.
type Source interface {
	Tail(ctx context.Context, container string, lines int) ([]string, error)
}

// Query selects which log lines to return.
type Query struct {
	Container string   `json:"container"`
	Tail      int      `json:"tail"`
	Keywords  []string `json:"keywords,omitempty"`
}

// Result holds the lines that matched a Query, most recent last.
type Result struct {
	Container string   `json:"container"`
	Tail      int      `json:"tail"`
	Keywords  []string `json:"keywords,omitempty"`
	Scanned   int      `json:"scanned"`
	Matches   []string `json:"matches"`
}

// Inspector greps recent container logs.
type Inspector struct {
	src Source
}

// NewInspector creates an inspector reading from src.
func NewInspector(src Source) *Inspector {
	return &Inspector{src: src}
}

// Inspect tails the container and filters the lines by keyword.
func (i *Inspector) Inspect(ctx context.Context, q Query) (Result, error) {
	if strings.TrimSpace(q.Container) == "" {
		return Result{}, fmt.Errorf("%w: container name is empty", ErrNoContainer)
	}

	tail := q.Tail
	if tail <= 0 {
		tail = DefaultTail
	}

	lines, err := i.src.Tail(ctx, q.Container, tail)
	if err != nil {
		return Result{}, err
	}

	// A source may ignore the limit; keep only the newest lines.
	if len(lines) > tail {
		lines = lines[len(lines)-tail:]
	}

	result := Result{
		Container: q.Container,
		Tail:      tail,
		Keywords:  q.Keywords,
		Scanned:   len(lines),
		Matches:   Grep(lines, q.Keywords...),
	}

	slog.DebugContext(logging.WithContainer(ctx, q.Container), "log scan finished",
		"scanned", result.Scanned,
		"matches", len(result.Matches),
	)

	return result, nil
}

// Grep returns the lines that contain any of the keywords, ignoring case, in
// their original order. With no non-empty keywords every line matches.
func Grep(lines []string, keywords ...string) []string {
	needles := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			needles = append(needles, strings.ToLower(k))
		}
	}

	matches := make([]string, 0)
	for _, line := range lines {
		if len(needles) == 0 || containsAny(strings.ToLower(line), needles) {
			matches = append(matches, line)
		}
	}
	return matches
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}

// SplitLines splits raw log output into lines, dropping the trailing empty
// line and carriage returns.
func SplitLines(raw string) []string {
	raw = strings.TrimRight(raw, "\n")
	if raw == "" {
		return []string{}
	}

	lines := strings.Split(raw, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
