package sources

import (
	"bufio"
	"fmt"
	"github.com/maxaizer/hh-ingest/internal/entities"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"io"
	"os"
	"strings"
)

const (
	commentPrefix = "#"
	areaSeparator = "|"
)

var ErrNoQueries = errors.New("no queries")

// LoadQueries reads one search term per line, optionally followed by "| area".
// Lines without an area get defaultArea.
func LoadQueries(path string, defaultArea string) ([]entities.Query, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open queries file")
	}
	defer file.Close()

	queries, err := ReadQueries(file, defaultArea)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return queries, nil
}

func ReadQueries(r io.Reader, defaultArea string) ([]entities.Query, error) {

	var queries []entities.Query
	scanner := bufio.NewScanner(r)
	lineNumber := 0

	for scanner.Scan() {
		lineNumber++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, commentPrefix) {
			continue
		}

		text, area, _ := strings.Cut(line, areaSeparator)
		text = strings.TrimSpace(text)
		area = strings.TrimSpace(area)

		if text == "" {
			return nil, fmt.Errorf("line %d: empty search term", lineNumber)
		}
		queries = append(queries, entities.Query{Text: text, Area: lo.Ternary(area == "", defaultArea, area)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(queries) == 0 {
		return nil, ErrNoQueries
	}
	return queries, nil
}
