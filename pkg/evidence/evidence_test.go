package evidence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFileEvidenceNewFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "created.txt")
	content := []byte("hello world")
	require.NoError(t, os.WriteFile(path, content, 0600))

	ev, err := BuildFileEvidence(path, nil, content)
	require.NoError(t, err)
	assert.False(t, ev.ExistedBefore)
	assert.True(t, ev.ExistedAfter)
	assert.Equal(t, int64(len(content)), ev.SizeBytes)
	assert.Equal(t, HashPrefix(content), ev.ContentHashPrefix)
}

func TestBuildFileEvidenceDeletedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")

	ev, err := BuildFileEvidence(path, &fakeFileInfo{}, nil)
	require.NoError(t, err)
	assert.True(t, ev.ExistedBefore)
	assert.False(t, ev.ExistedAfter)
}

func TestHashPrefixTruncatesToFirst4096Bytes(t *testing.T) {
	small := []byte("short content")
	large := make([]byte, 10000)
	for i := range large {
		large[i] = byte(i % 256)
	}

	assert.Equal(t, HashPrefix(small), HashPrefix(small))
	assert.Equal(t, HashPrefix(large[:4096]), HashPrefix(large))
	assert.NotEqual(t, HashPrefix(large), HashPrefix(small))
}

func TestBuildMessageEvidenceDoesNotPersistTarget(t *testing.T) {
	ev := BuildMessageEvidence("slack", "user@example.com", []byte("hi there"), false)
	assert.NotContains(t, ev.TargetHash, "user@example.com")
	assert.NotEmpty(t, ev.TargetHash)
	assert.Equal(t, 8, ev.ContentLength)
}

func TestBuildProcessEvidenceHashesNonEmptyStdout(t *testing.T) {
	ev := BuildProcessEvidence("ls -la", 0, 1234, []byte("file1\nfile2\n"), false)
	assert.Equal(t, 12, ev.StdoutLen)
	assert.NotEmpty(t, ev.StdoutHash)

	empty := BuildProcessEvidence("true", 0, 1, nil, false)
	assert.Empty(t, empty.StdoutHash)
}

type fakeFileInfo struct{ os.FileInfo }
