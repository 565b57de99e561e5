package bake

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
)

func TestWriter_New(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.bake")

	metadata := Metadata{
		Texture:     "fire",
		Params:      `{"scale":2}`,
		Description: "Test bake",
		Version:     "1.0",
		Mapping:     "plane",
		Frames:      60,
		FPS:         30,
		Size:        256,
		Span:        1.5,
	}

	w, err := NewWriter(dbPath, metadata)
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	// Verify database file exists
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("Database file was not created")
	}

	// Verify schema exists
	var count int
	err = w.db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='frames'").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query schema: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected frames table to exist, got count=%d", count)
	}

	// Verify metadata was inserted
	err = w.db.QueryRow("SELECT COUNT(*) FROM metadata").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query metadata: %v", err)
	}
	if count == 0 {
		t.Error("Expected metadata to be inserted")
	}
}

func TestWriter_WriteFrame(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.bake")

	w, err := NewWriter(dbPath, Metadata{Texture: "fire"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	pngData := []byte("fake png data")

	if err := w.WriteFrame(7, pngData); err != nil {
		t.Fatalf("Failed to write frame: %v", err)
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}

	var count int
	err = w.db.QueryRow("SELECT COUNT(*) FROM frames").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query frames: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 frame, got %d", count)
	}

	var frameData []byte
	err = w.db.QueryRow("SELECT frame_data FROM frames WHERE frame_index=?", 7).Scan(&frameData)
	if err != nil {
		t.Fatalf("Failed to read frame: %v", err)
	}
	if len(frameData) == 0 {
		t.Error("Expected frame data to be stored")
	}
}

func TestWriter_BatchFlush(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.bake")

	w, err := NewWriter(dbPath, Metadata{Texture: "water"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	// Write past one batch so at least one auto-flush happens
	pngData := []byte("fake png data")
	for i := 0; i < DefaultBatchSize+10; i++ {
		if err := w.WriteFrame(i, pngData); err != nil {
			t.Fatalf("Failed to write frame %d: %v", i, err)
		}
	}

	// Close should flush remaining frames
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	// Re-open and verify all frames were written
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM frames").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query frames: %v", err)
	}
	if count != DefaultBatchSize+10 {
		t.Errorf("Expected %d frames, got %d", DefaultBatchSize+10, count)
	}
}

func TestWriter_ReplaceExisting(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.bake")

	w, err := NewWriter(dbPath, Metadata{Texture: "fire"})
	if err != nil {
		t.Fatalf("Failed to create writer: %v", err)
	}
	defer w.Close()

	if err := w.WriteFrame(0, []byte("first version")); err != nil {
		t.Fatalf("Failed to write first frame: %v", err)
	}
	w.Flush()

	if err := w.WriteFrame(0, []byte("second version")); err != nil {
		t.Fatalf("Failed to write second frame: %v", err)
	}
	w.Flush()

	var count int
	err = w.db.QueryRow("SELECT COUNT(*) FROM frames").Scan(&count)
	if err != nil {
		t.Fatalf("Failed to query frames: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 frame (replaced), got %d", count)
	}
}
