// Package loader validates a CSV path and reads it into a table.
//
// Load runs a fixed sequence: existence, extension and size checks, then
// delimiter sniffing on the first bytes, then one decode-and-parse attempt per
// encoding in order until one succeeds. Every step is logged.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/cortexai-cli/internal/logging"
	"github.com/KaramelBytes/cortexai-cli/internal/table"
)

// Options controls validation limits and parsing behavior.
type Options struct {
	// MaxFileSize is the ceiling in bytes; 0 disables the check.
	MaxFileSize int64
	// SniffBytes is how much of the file head is scanned for delimiters.
	SniffBytes int
	// Delimiters are the sniffing candidates in tie-break order.
	Delimiters []rune
	// Encodings are tried in order; the first that parses wins.
	Encodings []Encoding
	// MissingMarkers are cell values (after trimming) read as missing.
	MissingMarkers []string
}

// DefaultOptions returns the 200 MB / 2 KB defaults.
func DefaultOptions() Options {
	return Options{
		MaxFileSize:    200 << 20,
		SniffBytes:     2048,
		Delimiters:     append([]rune(nil), DefaultDelimiters...),
		Encodings:      DefaultEncodings(),
		MissingMarkers: DefaultMissingMarkers(),
	}
}

// DefaultMissingMarkers mirrors the NA tokens common CSV readers recognise.
func DefaultMissingMarkers() []string {
	return []string{"", "NA", "N/A", "n/a", "NaN", "nan", "-NaN", "-nan", "NULL", "null", "None", "<NA>", "#N/A"}
}

// Metadata describes a successful load. It is not modified after Load returns.
type Metadata struct {
	Path      string `json:"file_path" yaml:"file_path"`
	SizeBytes int64  `json:"file_size_bytes" yaml:"file_size_bytes"`
	Rows      int    `json:"rows" yaml:"rows"`
	Columns   int    `json:"columns" yaml:"columns"`
	Encoding  string `json:"encoding_used" yaml:"encoding_used"`
	Delimiter string `json:"separator_used" yaml:"separator_used"`
}

// SizeMB returns the file size in mebibytes.
func (m Metadata) SizeMB() float64 { return float64(m.SizeBytes) / (1 << 20) }

// Loader reads CSV files.
type Loader struct {
	opt     Options
	log     *slog.Logger
	missing map[string]bool
}

// New returns a Loader. Zero-valued option fields fall back to defaults.
func New(opt Options, logger *slog.Logger) *Loader {
	def := DefaultOptions()
	if opt.SniffBytes <= 0 {
		opt.SniffBytes = def.SniffBytes
	}
	if len(opt.Delimiters) == 0 {
		opt.Delimiters = def.Delimiters
	}
	if len(opt.Encodings) == 0 {
		opt.Encodings = def.Encodings
	}
	if opt.MissingMarkers == nil {
		opt.MissingMarkers = def.MissingMarkers
	}
	missing := make(map[string]bool, len(opt.MissingMarkers))
	for _, m := range opt.MissingMarkers {
		missing[strings.TrimSpace(m)] = true
	}
	return &Loader{opt: opt, log: logging.Component(logger, "loader"), missing: missing}
}

// Load validates path and returns the parsed table with its metadata.
// Failures are *Error values whose Kind is one of the Err* sentinels.
func (l *Loader) Load(path string) (*table.Table, *Metadata, error) {
	log := l.log.With("path", path)
	log.Info("starting csv load")

	info, err := l.checkExists(log, path)
	if err != nil {
		return nil, nil, err
	}
	if err := l.checkExtension(log, path); err != nil {
		return nil, nil, err
	}
	if err := l.checkSize(log, path, info.Size()); err != nil {
		return nil, nil, err
	}

	raw, err := l.readFile(path)
	if err != nil {
		log.Error("read failed", "error", err)
		return nil, nil, newError(ErrUnreadableFile, path, err)
	}

	sample := raw
	if len(sample) > l.opt.SniffBytes {
		sample = sample[:l.opt.SniffBytes]
	}
	delim := SniffDelimiter(sample, l.opt.Delimiters)
	log.Info("detected separator", "separator", DelimiterName(delim))

	t, enc, attempts := l.parse(log, raw, delim)
	if t == nil {
		causes := make([]error, len(attempts))
		for i, a := range attempts {
			causes[i] = fmt.Errorf("%s: %w", a.Encoding, a.Err)
		}
		e := newError(ErrUnreadableFile, path, errors.Join(causes...))
		e.Attempts = attempts
		log.Error("unable to read csv with any encoding", "attempts", len(attempts))
		return nil, nil, e
	}

	meta := &Metadata{
		Path:      path,
		SizeBytes: info.Size(),
		Rows:      t.NumRows(),
		Columns:   t.NumCols(),
		Encoding:  enc,
		Delimiter: string(delim),
	}
	log.Info("csv loaded", "rows", meta.Rows, "columns", meta.Columns, "encoding", enc)
	return t, meta, nil
}

func (l *Loader) checkExists(log *slog.Logger, path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if err != nil {
		log.Error("file existence check failed", "error", err)
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(ErrFileNotFound, path, err)
		}
		return nil, newError(ErrUnreadableFile, path, err)
	}
	if info.IsDir() {
		log.Error("file existence check failed", "error", "path is a directory")
		return nil, newError(ErrFileNotFound, path, errors.New("path is a directory"))
	}
	log.Debug("file exists")
	return info, nil
}

func (l *Loader) checkExtension(log *slog.Logger, path string) error {
	ext := filepath.Ext(path)
	if !strings.EqualFold(ext, ".csv") {
		log.Error("file extension check failed", "extension", ext)
		return newError(ErrInvalidFileType, path, fmt.Errorf("extension %q, want .csv", ext))
	}
	log.Debug("file extension ok")
	return nil
}

func (l *Loader) checkSize(log *slog.Logger, path string, size int64) error {
	limit := l.opt.MaxFileSize
	if limit > 0 && size > limit {
		log.Error("file size check failed", "size_bytes", size, "limit_bytes", limit)
		return newError(ErrFileTooLarge, path, fmt.Errorf("%.2f MB exceeds maximum of %.2f MB",
			float64(size)/(1<<20), float64(limit)/(1<<20)))
	}
	log.Debug("file size ok", "size_bytes", size)
	return nil
}

// readFile reads at most MaxFileSize bytes; the handle is closed on every path.
func (l *Loader) readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	var r io.Reader = f
	if l.opt.MaxFileSize > 0 {
		r = io.LimitReader(f, l.opt.MaxFileSize+1)
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if l.opt.MaxFileSize > 0 && int64(len(b)) > l.opt.MaxFileSize {
		return nil, fmt.Errorf("file grew past %d bytes while reading", l.opt.MaxFileSize)
	}
	return b, nil
}

// parse tries each encoding in order and stops at the first success.
func (l *Loader) parse(log *slog.Logger, raw []byte, delim rune) (*table.Table, string, []Attempt) {
	var attempts []Attempt
	for _, enc := range l.opt.Encodings {
		log.Info("trying encoding", "encoding", enc.Name)
		text, err := enc.Decode(raw)
		if err == nil {
			var t *table.Table
			if t, err = parseTable(text, delim, l.missing); err == nil {
				return t, enc.Name, attempts
			}
		}
		log.Warn("encoding failed", "encoding", enc.Name, "error", err)
		attempts = append(attempts, Attempt{Encoding: enc.Name, Err: err})
	}
	return nil, "", attempts
}
