package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/backoffice-extract/internal/types"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
}

func TestDiscoverPDFs(t *testing.T) {
	in := t.TempDir()
	touch(t, filepath.Join(in, "b.PDF"))
	touch(t, filepath.Join(in, "a.pdf"))
	touch(t, filepath.Join(in, "notes.txt"))
	require.NoError(t, os.Mkdir(filepath.Join(in, "nested.pdf"), 0o755))

	fm := NewFileManager(in, t.TempDir(), t.TempDir())
	files, err := fm.DiscoverPDFs()
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(in, "a.pdf"), filepath.Join(in, "b.PDF")}, files)

	fm.InputDir = filepath.Join(in, "missing")
	_, err = fm.DiscoverPDFs()
	assert.Error(t, err)
}

func TestEnsureDirectoriesAndOutputPath(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(filepath.Join(root, "in"), filepath.Join(root, "out"), filepath.Join(root, "archive"))

	require.NoError(t, fm.EnsureDirectories(types.Suppliers...))
	for _, s := range types.Suppliers {
		assert.DirExists(t, fm.SupplierDir(s))
	}

	assert.Equal(t, filepath.Join(root, "out", "coke", "INV 001.xlsx"), fm.OutputPathFor(types.SupplierCOKE, "/tmp/INV 001.PDF"))
}

func TestArchiveInputFile(t *testing.T) {
	root := t.TempDir()
	fm := NewFileManager(root, root, filepath.Join(root, "archive"))
	src := filepath.Join(root, "alm.pdf")
	touch(t, src)

	got, err := fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, src, got, "archival off")
	assert.FileExists(t, src)

	fm.ArchiveOnSuccess = true
	got, err = fm.ArchiveInputFile(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "archive", "alm.pdf"), got)
	assert.NoFileExists(t, src)
	assert.True(t, FileExists(got))
}

func TestGetArchivePathWithTimestamp(t *testing.T) {
	fm := &FileManager{ArchiveDir: "/archive", UseTimestampSubdirs: true}
	now := time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, filepath.Join("/archive", "2024", "01", "05", "x.pdf"), fm.getArchivePath("/in/x.pdf", now))
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("issues_{kind}_{short}", map[string]string{"kind": "invoices"}, ".log")
	assert.Regexp(t, regexp.MustCompile(`^issues_invoices_[0-9a-f]{8}\.log$`), name)

	assert.Equal(t, "summary.TXT", GenerateOutputFileName("summary.TXT", nil, ".txt"))
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()
	start := time.Date(2024, time.January, 5, 10, 0, 0, 0, time.UTC)
	summary := ProcessingSummary{
		StartTime:       start,
		EndTime:         start.Add(2 * time.Second),
		TotalFiles:      2,
		SuccessfulFiles: 1,
		FailedFiles:     1,
		TotalItems:      3,
		ProcessedFiles: []ProcessedFileInfo{
			{InputFile: "coke.pdf", OutputFile: "out/coke/coke.xlsx", Supplier: types.SupplierCOKE, Format: "D", Items: 3},
		},
		FailedFilesList: []FailedFileInfo{{InputFile: "mystery.pdf", ErrorMessage: "document could not be classified"}},
	}

	path, err := WriteSummaryLog(summary, dir)
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	text := string(data)
	assert.Contains(t, text, "Total Files:        2")
	assert.Contains(t, text, "Supplier:     COKE (format D)")
	assert.Contains(t, text, "Duration:       2s")
	assert.Contains(t, text, "File:  mystery.pdf")
}
