// Package har pulls captured API responses out of browser HAR archives.
// The game's inventory endpoints page with limit=48, so responses matching
// that page size are the inventory captures worth keeping. Matches are
// written as the numbered page files the inventory loader reads back.
package har

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"
)

// defaultPageLimit is the page size the game's inventory endpoints use.
const defaultPageLimit = 48

// Archive mirrors the slice of a HAR file the extractor reads.
type Archive struct {
	Log struct {
		Entries []ArchiveEntry `json:"entries"`
	} `json:"log"`
}

// ArchiveEntry is one captured request/response pair.
type ArchiveEntry struct {
	Request struct {
		URL  string `json:"url"`
		Path string `json:"path"`
	} `json:"request"`
	Response struct {
		Content Content `json:"content"`
	} `json:"response"`
}

// Content is a HAR response body. Text is a pointer because a missing body
// and an empty one mean different things.
type Content struct {
	Text     *string `json:"text"`
	Encoding string  `json:"encoding"`
}

// Body returns the decoded response bytes, or false when the entry carries
// no body or the base64 payload is corrupt.
func (c *Content) Body() ([]byte, bool) {
	if c.Text == nil {
		return nil, false
	}
	if c.Encoding == "base64" {
		data, err := base64.StdEncoding.DecodeString(*c.Text)
		if err != nil {
			return nil, false
		}
		return data, true
	}
	return []byte(*c.Text), true
}

// Options steers extraction.
type Options struct {
	// OutDir receives the extracted page files.
	OutDir string

	// PageLimit filters captures by their limit query parameter. Zero
	// means the game's page size of 48.
	PageLimit int
}

// Report summarizes one extraction run.
type Report struct {
	Path     string    `yaml:"path" json:"path"`
	Modified time.Time `yaml:"modified" json:"modified"`
	Age      string    `yaml:"age" json:"age"`
	Entries  int       `yaml:"entries" json:"entries"`
	Miners   int       `yaml:"miners" json:"miners"`
	Racks    int       `yaml:"racks" json:"racks"`
	Others   int       `yaml:"others" json:"others"`
	Files    []string  `yaml:"files" json:"files"`
}

// Extractor writes inventory page files from HAR captures.
type Extractor struct {
	logger *zap.Logger
	opts   Options
}

// NewExtractor creates an extractor writing into opts.OutDir.
func NewExtractor(logger *zap.Logger, opts Options) *Extractor {
	if opts.PageLimit == 0 {
		opts.PageLimit = defaultPageLimit
	}
	return &Extractor{
		logger: logger.Named("har"),
		opts:   opts,
	}
}

// Extract reads one HAR archive, plain or gzipped, and writes every
// matching capture. Existing page files are overwritten so reruns of the
// same archive stay idempotent.
func (e *Extractor) Extract(harPath string) (*Report, error) {
	rep := &Report{Path: harPath}
	if info, err := os.Stat(harPath); err == nil {
		rep.Modified = info.ModTime()
		rep.Age = humanize.Time(info.ModTime())
	}

	f, err := os.Open(harPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open HAR archive: %w", err)
	}
	defer f.Close()

	br := bufio.NewReader(f)
	var reader io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzipped HAR archive: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	var archive Archive
	if err := json.NewDecoder(reader).Decode(&archive); err != nil {
		return nil, fmt.Errorf("invalid HAR JSON: %w", err)
	}
	rep.Entries = len(archive.Log.Entries)

	if err := os.MkdirAll(e.opts.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	for i := range archive.Log.Entries {
		entry := &archive.Log.Entries[i]

		reqURL := entry.Request.URL
		if reqURL == "" {
			reqURL = entry.Request.Path
		}
		if reqURL == "" || !e.matchesPageLimit(reqURL) {
			continue
		}

		body, ok := entry.Response.Content.Body()
		if !ok {
			continue
		}

		var name string
		switch classify(reqURL) {
		case "miners":
			rep.Miners++
			name = fmt.Sprintf("inventory_miners_%d.json", rep.Miners)
		case "rack":
			rep.Racks++
			name = fmt.Sprintf("inventory_rack_%d.json", rep.Racks)
		default:
			rep.Others++
			name = fmt.Sprintf("other_response_%d.json", rep.Others)
		}

		if err := e.writePage(name, body); err != nil {
			return nil, err
		}
		rep.Files = append(rep.Files, name)
	}

	e.logger.Info("Extracted HAR captures",
		zap.String("path", harPath),
		zap.Int("entries", rep.Entries),
		zap.Int("miners", rep.Miners),
		zap.Int("racks", rep.Racks),
		zap.Int("others", rep.Others),
		zap.String("outdir", e.opts.OutDir),
	)
	return rep, nil
}

// writePage stores one capture, re-indented when it parses as JSON and
// verbatim when it does not.
func (e *Extractor) writePage(name string, body []byte) error {
	out := body
	if json.Valid(body) {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			out = buf.Bytes()
		}
	}

	path := filepath.Join(e.opts.OutDir, name)
	if err := os.WriteFile(path, out, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// matchesPageLimit checks the limit query parameter, with a substring
// fallback for URLs that do not parse.
func (e *Extractor) matchesPageLimit(rawURL string) bool {
	want := strconv.Itoa(e.opts.PageLimit)
	needle := "limit=" + want

	u, err := url.Parse(rawURL)
	if err != nil {
		return strings.Contains(rawURL, needle)
	}
	qs := u.Query()
	if vals, ok := qs["limit"]; ok {
		for _, v := range vals {
			if strings.TrimSpace(v) == want {
				return true
			}
		}
		return false
	}
	return strings.Contains(rawURL, needle)
}

var minersWordRe = regexp.MustCompile(`\bminers\b`)

// classify buckets a capture by its URL: the miners inventory, the rack
// inventory, or some other endpoint that happened to page the same way.
func classify(rawURL string) string {
	lower := strings.ToLower(rawURL)
	if minersWordRe.MatchString(lower) || strings.Contains(lower, "inventory/miners") {
		return "miners"
	}
	if strings.Contains(lower, "rack") {
		return "rack"
	}
	return "other"
}
