package content

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/klingtnet/mdv/frontmatter"
	"github.com/klingtnet/mdv/internal/distribute"
	"github.com/klingtnet/mdv/internal/metrics"
	"github.com/klingtnet/mdv/slug"
	"github.com/klingtnet/mdv/viewer/renderer"
)

// maxSnippetLength is the maximum number of runes of a SearchResult snippet.
const maxSnippetLength = 160

// Search implements Provider.
// The query is matched case-insensitive against every line of every document of the current snapshot.
// A blank query matches nothing.
func (l *Library) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if len(query) > MaxQueryLength {
		metrics.RecordSearch(false)
		return nil, &QueryError{Query: query, Reason: fmt.Sprintf("query is longer than %d bytes", MaxQueryLength)}
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return []SearchResult{}, nil
	}

	snap := l.current.Load()
	var mu sync.Mutex
	results := []SearchResult{}
	err := distribute.OneToN(
		ctx,
		func(ctx context.Context, dataCh chan<- string) error {
			for _, doc := range snap.documents {
				err := distribute.Send(ctx, dataCh, doc)
				if err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, doc string) error {
			matches, err := snap.search(doc, needle, l.slugifier)
			if err != nil {
				// The document vanished or became unreadable after the last refresh.
				if !errors.Is(err, fs.ErrNotExist) {
					l.logger.Warn().Err(err).Str("path", doc).Msg("skipping document in search")
				}
				return nil
			}

			mu.Lock()
			results = append(results, matches...)
			mu.Unlock()

			return nil
		},
		l.options.Concurrency,
	)
	metrics.RecordSearch(err == nil)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Path != results[j].Path {
			return results[i].Path < results[j].Path
		}
		return results[i].Line < results[j].Line
	})
	if len(results) > l.options.MaxSearchResults {
		results = results[:l.options.MaxSearchResults]
	}

	return results, nil
}

// search returns all lines of document doc containing the lower-cased needle.
func (s *snapshot) search(doc, needle string, slugifier *slug.Slugifier) ([]SearchResult, error) {
	data, err := fs.ReadFile(s.contentFS, doc)
	if err != nil {
		return nil, err
	}

	// Headings are only looked for in the body, so anchors match the IDs of the rendered document.
	body, _ := frontmatter.Split(context.Background(), data, &Meta{})
	bodyStart := 0
	if bytes.HasSuffix(data, body) {
		bodyStart = bytes.Count(data[:len(data)-len(body)], []byte("\n"))
	}

	title := s.Title(doc)
	if title == "" {
		title = renderer.DocumentTitle(doc)
	}

	var results []SearchResult
	var fence string
	anchor := ""
	ids := slug.NewRegistry(slugifier)
	// paragraph holds the lines of the current paragraph, it becomes a heading if a setext underline follows.
	var paragraph []string
	paragraphStart := 0
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()

		if lineNo > bodyStart {
			switch {
			case fence != "":
				if closesFence(line, fence) {
					fence = ""
				}
			case isSetextUnderline(line) && len(paragraph) > 0:
				anchor = ids.Next(strings.Join(paragraph, " "))
				// Matches inside the heading text belong to the heading.
				for i := range results {
					if results[i].Line >= paragraphStart {
						results[i].Anchor = anchor
					}
				}
				paragraph = nil
			case strings.TrimSpace(line) == "":
				paragraph = nil
			default:
				if heading, ok := atxHeading(line); ok {
					anchor = ids.Next(heading)
					paragraph = nil
				} else if fence = openingFence(line); fence != "" {
					paragraph = nil
				} else if isThematicBreak(line) || startsContainer(line) {
					paragraph = nil
				} else if len(paragraph) > 0 || !isIndentedCode(line) {
					if len(paragraph) == 0 {
						paragraphStart = lineNo
					}
					paragraph = append(paragraph, strings.TrimSpace(line))
				}
			}
		}

		if strings.Contains(strings.ToLower(line), needle) {
			results = append(results, SearchResult{
				Path:    doc,
				Name:    path.Base(doc),
				Title:   title,
				Line:    lineNo,
				Snippet: snippet(line),
				Anchor:  anchor,
			})
		}
	}

	return results, scanner.Err()
}

// atxHeading returns the text of a "# Heading" line.
func atxHeading(line string) (string, bool) {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return "", false
	}

	level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
	if level < 1 || level > 6 {
		return "", false
	}
	text := trimmed[level:]
	if text != "" && text[0] != ' ' && text[0] != '\t' {
		return "", false
	}

	text = strings.TrimSpace(text)
	// Optional closing sequence.
	if stripped := strings.TrimRight(text, "#"); stripped == "" || strings.HasSuffix(stripped, " ") {
		text = strings.TrimSpace(stripped)
	}

	return text, true
}

// isSetextUnderline returns true for a line of only "=" or only "-" characters.
func isSetextUnderline(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	trimmed = strings.TrimRight(trimmed, " \t")
	if trimmed == "" {
		return false
	}

	return strings.Trim(trimmed, "=") == "" || strings.Trim(trimmed, "-") == ""
}

// isThematicBreak returns true for lines like "***", "- - -" or "___".
func isThematicBreak(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return false
	}
	compact := strings.NewReplacer(" ", "", "\t", "").Replace(trimmed)
	if len(compact) < 3 {
		return false
	}

	return strings.Trim(compact, compact[:1]) == "" && strings.ContainsAny(compact[:1], "*-_")
}

// startsContainer returns true for list items and block quotes, their text never forms a setext heading.
func startsContainer(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	for _, marker := range []string{"- ", "* ", "+ ", ">"} {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	digits := len(trimmed) - len(strings.TrimLeft(trimmed, "0123456789"))
	rest := trimmed[digits:]

	return digits > 0 && (strings.HasPrefix(rest, ". ") || strings.HasPrefix(rest, ") "))
}

func isIndentedCode(line string) bool {
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}

func openingFence(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	if len(line)-len(trimmed) > 3 {
		return ""
	}
	for _, marker := range []string{"```", "~~~"} {
		if strings.HasPrefix(trimmed, marker) {
			return trimmed[:len(trimmed)-len(strings.TrimLeft(trimmed, marker[:1]))]
		}
	}

	return ""
}

func closesFence(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, fence[:1]) == ""
}

func snippet(line string) string {
	line = strings.TrimSpace(line)
	if utf8.RuneCountInString(line) <= maxSnippetLength {
		return line
	}

	runes := []rune(line)
	return string(runes[:maxSnippetLength]) + "…"
}
