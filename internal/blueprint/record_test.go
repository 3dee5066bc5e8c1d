package blueprint

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationRecord(t *testing.T) {
	project := t.TempDir()
	data := GenerationData{
		Blueprint: "backend-service",
		Answers:   Answers{"project_slug": "my_service", "use_auth0": true},
		Versions:  CurrentVersions("1.2.3"),
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	event, err := NewGenerationEvent(data)
	require.NoError(t, err)
	assert.Equal(t, GeneratedEventType, event.Type())
	assert.Equal(t, RecordSource, event.Source())
	assert.Equal(t, "my_service", event.Subject())
	assert.NotEmpty(t, event.ID())

	path, err := WriteRecord(project, event)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(project, RecordDir, RecordFile), path)

	second, err := NewGenerationEvent(data)
	require.NoError(t, err)
	_, err = WriteRecord(project, second)
	require.NoError(t, err)

	records, err := ReadRecords(project)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, event.ID(), records[0].ID())
	assert.NotEqual(t, records[0].ID(), records[1].ID())

	var decoded GenerationData
	require.NoError(t, records[0].DataAs(&decoded))
	assert.Equal(t, "backend-service", decoded.Blueprint)
	assert.Equal(t, "my_service", decoded.Answers["project_slug"])
	assert.Equal(t, runtime.Version(), decoded.Versions.GoVersion)
	assert.Equal(t, "1.2.3", decoded.Versions.Tool)
}

func TestReadRecordsMissing(t *testing.T) {
	_, err := ReadRecords(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
