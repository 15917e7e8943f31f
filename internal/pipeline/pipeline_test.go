package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ssoetl/internal/acquire"
	"ssoetl/pkg/models"
)

// fakeAcquirer serves canned text per file name and records concurrency.
type fakeAcquirer struct {
	texts map[string]*acquire.ExtractedText

	mu       sync.Mutex
	inFlight int
	peak     int
}

func (f *fakeAcquirer) Acquire(ctx context.Context, path string) (*acquire.ExtractedText, error) {
	f.mu.Lock()
	f.inFlight++
	if f.inFlight > f.peak {
		f.peak = f.inFlight
	}
	f.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()

	text, ok := f.texts[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", acquire.ErrDocumentUnreadable, path)
	}
	return text, nil
}

func filing(id, footer string) *acquire.ExtractedText {
	text := "Assigned SSO ID " + id + "\n" +
		"Permittee\nCity of Daphne\n" +
		"Estimated Volume Discharged\n500\n" +
		footer + "\n"
	return &acquire.ExtractedText{
		Pages:           []string{text},
		Source:          models.TextSourceNative,
		FooterTimestamp: acquire.ParseFooterTimestamp(text),
	}
}

func TestRunEndToEnd(t *testing.T) {
	fake := &fakeAcquirer{texts: map[string]*acquire.ExtractedText{
		"a.pdf": filing("SSO-1", "1/10/2025 9:00:00 AM Page 1 of 1"),
		"b.pdf": filing("SSO-1", "1/12/2025 9:00:00 AM Page 1 of 1"),
		"c.pdf": filing("SSO-2", "1/11/2025 9:00:00 AM Page 1 of 1"),
	}}

	result, err := New(fake, 2).Run(context.Background(),
		[]string{"/in/c.pdf", "/in/a.pdf", "/in/b.pdf", "/in/broken.pdf"})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Counts.DocumentsSeen)
	assert.Equal(t, 1, result.Counts.DocumentsUnreadable)
	assert.Equal(t, 1, result.Counts.DuplicatesSuperseded)
	require.Len(t, result.Records, 2)

	byKey := make(map[string]models.FinalRecord)
	for _, r := range result.Records {
		byKey[r.Key] = r
	}
	// The newer copy of SSO-1 wins.
	assert.Equal(t, "b.pdf", byKey["SSO-1"].FileName)
	assert.Equal(t, int64(500), byKey["SSO-1"].Volume.Gallons)
	assert.True(t, byKey["SSO-1"].Volume.Reported)

	assert.Equal(t, 2, result.Summary.RecordsEmitted)
	assert.Equal(t, 1, result.Summary.DocumentsUnreadable)
}

func TestRunBoundsConcurrency(t *testing.T) {
	texts := make(map[string]*acquire.ExtractedText)
	var paths []string
	for i := 0; i < 12; i++ {
		name := fmt.Sprintf("doc_%02d.pdf", i)
		texts[name] = filing(fmt.Sprintf("SSO-%d", i), "1/10/2025 9:00:00 AM")
		paths = append(paths, name)
	}
	fake := &fakeAcquirer{texts: texts}

	result, err := New(fake, 3).Run(context.Background(), paths)
	require.NoError(t, err)
	assert.Len(t, result.Records, 12)
	assert.LessOrEqual(t, fake.peak, 3)
}

func TestRunNoDocuments(t *testing.T) {
	fake := &fakeAcquirer{}
	_, err := New(fake, 2).Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestRunAllDocumentsUnreadable(t *testing.T) {
	fake := &fakeAcquirer{}
	_, err := New(fake, 2).Run(context.Background(), []string{"x.pdf", "y.pdf"})
	assert.ErrorIs(t, err, ErrAllDocumentsUnreadable)
}

func TestRunRecognitionFailureCounted(t *testing.T) {
	fake := &fakeAcquirer{texts: map[string]*acquire.ExtractedText{
		"scan.pdf": {Source: models.TextSourceNone, RecognitionFailed: true},
		"ok.pdf":   filing("SSO-5", "1/10/2025 9:00:00 AM"),
	}}

	result, err := New(fake, 2).Run(context.Background(), []string{"scan.pdf", "ok.pdf"})
	require.NoError(t, err)

	assert.Equal(t, 1, result.Counts.RecognitionFailures)
	// The failed scan still yields a record with null fields, keyed by file name.
	require.Len(t, result.Records, 2)

	byKey := make(map[string]models.FinalRecord)
	for _, r := range result.Records {
		byKey[r.Key] = r
	}
	scan := byKey["scan.pdf"]
	assert.Nil(t, scan.IncidentID)
	assert.False(t, scan.Volume.Reported)
}

func TestRunOCRFallbackCounted(t *testing.T) {
	recognized := filing("SSO-7", "1/10/2025 9:00:00 AM")
	recognized.Source = models.TextSourceRecognized

	fake := &fakeAcquirer{texts: map[string]*acquire.ExtractedText{
		"scan.pdf": recognized,
	}}

	result, err := New(fake, 1).Run(context.Background(), []string{"scan.pdf"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counts.OCRFallbacks)
}

func TestDiscoverPDFs(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	for _, name := range []string{"b.pdf", "a.PDF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(sub, "c.pdf"), []byte("x"), 0o644))

	paths, err := DiscoverPDFs(dir)
	require.NoError(t, err)

	names := make([]string, len(paths))
	for i, p := range paths {
		names[i] = filepath.Base(p)
	}
	assert.Equal(t, []string{"a.PDF", "b.pdf", "c.pdf"}, names)
}
