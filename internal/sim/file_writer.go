package sim

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"

	"reliefops-sim/internal/telemetry"
)

// jsonlStream is one JSONL output file, optionally zstd-compressed.
type jsonlStream struct {
	file *os.File
	zenc *zstd.Encoder
	enc  *json.Encoder
}

func openStream(path string) (*jsonlStream, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	s := &jsonlStream{file: f}
	var w io.Writer = f
	if strings.HasSuffix(path, ".zst") {
		zenc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
		if err != nil {
			f.Close()
			return nil, err
		}
		s.zenc = zenc
		w = zenc
	}
	s.enc = json.NewEncoder(w)
	return s, nil
}

func (s *jsonlStream) close() error {
	if s == nil {
		return nil
	}
	var err error
	if s.zenc != nil {
		err = s.zenc.Close()
	}
	return errors.Join(err, s.file.Close())
}

// FileWriter writes moves, zone events and stats to JSONL files. Paths ending in
// .zst are zstd-compressed.
type FileWriter struct {
	mu    sync.Mutex
	moves *jsonlStream
	zones *jsonlStream
	stats *jsonlStream
}

// NewFileWriter creates a FileWriter. zonePath or statsPath may be empty to skip those logs.
func NewFileWriter(movePath, zonePath, statsPath string) (*FileWriter, error) {
	ms, err := openStream(movePath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{moves: ms}
	if zonePath != "" {
		if fw.zones, err = openStream(zonePath); err != nil {
			fw.Close()
			return nil, err
		}
	}
	if statsPath != "" {
		if fw.stats, err = openStream(statsPath); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return fw, nil
}

// Write logs a single move row.
func (f *FileWriter) Write(row telemetry.MoveRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.moves.enc.Encode(row)
}

// WriteBatch logs multiple move rows.
func (f *FileWriter) WriteBatch(rows []telemetry.MoveRow) error {
	for _, r := range rows {
		if err := f.Write(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteZoneEvent logs a zone event, if enabled.
func (f *FileWriter) WriteZoneEvent(e telemetry.ZoneEventRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.zones == nil {
		return nil
	}
	return f.zones.enc.Encode(e)
}

// WriteStats logs a stats row, if enabled.
func (f *FileWriter) WriteStats(row telemetry.StatsRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.stats == nil {
		return nil
	}
	return f.stats.enc.Encode(row)
}

// Close flushes compressed streams and closes the underlying files.
func (f *FileWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return errors.Join(f.moves.close(), f.zones.close(), f.stats.close())
}
