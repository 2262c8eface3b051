package links

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"dorkwright/pkg/errors"
)

// ReadFile reads a line-delimited URL list. Blank lines are skipped.
// A missing file or a file with no URLs is an input error, fatal to
// the invocation.
func ReadFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.KindInput, fmt.Sprintf("cannot open URL list %q", path), err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			urls = append(urls, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(errors.KindInput, fmt.Sprintf("failed reading URL list %q", path), err)
	}

	if len(urls) == 0 {
		return nil, errors.New(errors.KindInput, fmt.Sprintf("no URLs found in %q", path))
	}

	return urls, nil
}

// WriteFile writes the URLs to a line-delimited text file, one per
// line.
func WriteFile(path string, urls []string) error {
	var b strings.Builder
	for _, u := range urls {
		b.WriteString(u)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0644); err != nil {
		return fmt.Errorf("failed to write link list: %w", err)
	}
	return nil
}
