package bake

import (
	"bytes"
	"compress/gzip"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// ErrFrameNotFound reports a frame index with no stored data.
var ErrFrameNotFound = errors.New("frame not found")

// Reader reads frames from a bake database.
type Reader struct {
	db   *sql.DB
	path string
}

// OpenReader opens a bake database for reading.
func OpenReader(path string) (*Reader, error) {
	// Open in read-only mode with immutable flag
	db, err := sql.Open("sqlite", path+"?mode=ro&immutable=1")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify schema exists
	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='frames'").Scan(&count)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify schema: %w", err)
	}
	if count == 0 {
		db.Close()
		return nil, fmt.Errorf("database does not contain frames table")
	}

	return &Reader{
		db:   db,
		path: path,
	}, nil
}

// ReadFrame reads a frame from the database and returns ungzipped PNG data.
func (r *Reader) ReadFrame(index int) ([]byte, error) {
	var compressedData []byte
	err := r.db.QueryRow(
		"SELECT frame_data FROM frames WHERE frame_index=?",
		index,
	).Scan(&compressedData)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %d", ErrFrameNotFound, index)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query frame: %w", err)
	}

	uncompressed, err := gzipDecompress(compressedData)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress frame: %w", err)
	}

	return uncompressed, nil
}

// FrameCount returns the number of stored frames.
func (r *Reader) FrameCount() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM frames").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count frames: %w", err)
	}
	return count, nil
}

// Metadata reads metadata from the database.
func (r *Reader) Metadata() (Metadata, error) {
	rows, err := r.db.Query("SELECT name, value FROM metadata")
	if err != nil {
		return Metadata{}, fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	metaMap := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return Metadata{}, fmt.Errorf("failed to scan metadata row: %w", err)
		}
		metaMap[name] = value
	}
	if err := rows.Err(); err != nil {
		return Metadata{}, fmt.Errorf("error iterating metadata: %w", err)
	}

	meta := Metadata{
		Texture:     metaMap["texture"],
		Params:      metaMap["params"],
		Description: metaMap["description"],
		Version:     metaMap["version"],
		Mapping:     metaMap["mapping"],
	}

	if v, ok := metaMap["frames"]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			meta.Frames = i
		}
	}
	if v, ok := metaMap["fps"]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			meta.FPS = i
		}
	}
	if v, ok := metaMap["size"]; ok {
		if i, err := strconv.Atoi(v); err == nil {
			meta.Size = i
		}
	}
	if v, ok := metaMap["span"]; ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			meta.Span = f
		}
	}

	return meta, nil
}

// Close closes the database connection.
func (r *Reader) Close() error {
	if err := r.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}

func gzipDecompress(data []byte) ([]byte, error) {
	gr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	uncompressed, err := io.ReadAll(gr)
	if err != nil {
		return nil, err
	}

	return uncompressed, nil
}
