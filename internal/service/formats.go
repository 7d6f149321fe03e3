package service

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Format is one row of yt-dlp's format table.
type Format struct {
	ID   string
	Line string
}

// ListFormats asks yt-dlp which formats url offers, best video first.
func ListFormats(ctx context.Context, binary, url string) ([]Format, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrBlankURL
	}
	if binary == "" {
		binary = DefaultBinary
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, binary, "-S", "hasvid,vext,bitrate", "-F", url) // #nosec G204
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("listing formats of %s: %w: %s", url, err, strings.TrimSpace(stderr.String()))
	}
	return ParseFormats(bytes.NewReader(out))
}

// ParseFormats reads the table printed by yt-dlp -F: every non-empty row after
// the separator is a format whose ID is the first column.
func ParseFormats(r io.Reader) ([]Format, error) {
	var (
		formats []Format
		inTable bool
	)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if !inTable {
			inTable = isSeparator(line)
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		formats = append(formats, Format{ID: fields[0], Line: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading format table: %w", err)
	}
	if len(formats) == 0 {
		return nil, ErrNoFormats
	}
	return formats, nil
}

// yt-dlp draws the header rule with box-drawing characters on UTF-8 outputs
// and with dashes otherwise.
func isSeparator(line string) bool {
	return strings.Contains(line, "---") || strings.Contains(line, "───")
}
