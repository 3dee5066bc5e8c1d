package blueprint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

const (
	// RecordDir holds generation records inside a generated project.
	RecordDir = ".blueprint"
	// RecordFile is the JSON-lines file records are appended to.
	RecordFile = "context.jsonl"
	// GeneratedEventType is the CloudEvent type of a generation record.
	GeneratedEventType = "io.gocodealone.blueprint.generated"
	// RecordSource is the CloudEvent source of generation records.
	RecordSource = "blueprint/generate"
)

// Versions identifies the tool and runtime that produced a project.
type Versions struct {
	Tool      string `json:"tool"`
	GoVersion string `json:"go"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// CurrentVersions reports the running tool version and Go runtime.
func CurrentVersions(tool string) Versions {
	return Versions{
		Tool:      tool,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// GenerationData is the payload of a generation record.
type GenerationData struct {
	Blueprint string    `json:"blueprint"`
	Answers   Answers   `json:"answers"`
	Versions  Versions  `json:"versions"`
	CreatedAt time.Time `json:"created_at"`
}

// NewGenerationEvent wraps data in a CloudEvent whose subject is the
// project slug.
func NewGenerationEvent(data GenerationData) (cloudevents.Event, error) {
	event := cloudevents.NewEvent()
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	event.SetID(id.String())
	event.SetSource(RecordSource)
	event.SetType(GeneratedEventType)
	event.SetSubject(data.Answers.String(ProjectSlugKey))
	event.SetTime(data.CreatedAt)
	event.SetSpecVersion(cloudevents.VersionV1)

	if err := event.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return event, fmt.Errorf("failed to set record data: %w", err)
	}
	if err := event.Validate(); err != nil {
		return event, fmt.Errorf("invalid generation record: %w", err)
	}
	return event, nil
}

// WriteRecord appends event as one JSON line to the project's record file
// and returns its path.
func WriteRecord(projectDir string, event cloudevents.Event) (string, error) {
	dir := filepath.Join(projectDir, RecordDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create record directory: %w", err)
	}

	line, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("failed to encode generation record: %w", err)
	}

	path := filepath.Join(dir, RecordFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to open record file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return "", fmt.Errorf("failed to write generation record: %w", err)
	}
	return path, nil
}

// ReadRecords decodes every record in the project's record file.
func ReadRecords(projectDir string) ([]cloudevents.Event, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, RecordDir, RecordFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var events []cloudevents.Event
	dec := json.NewDecoder(bytes.NewReader(data))
	for dec.More() {
		var e cloudevents.Event
		if err := dec.Decode(&e); err != nil {
			return nil, fmt.Errorf("failed to decode generation record: %w", err)
		}
		events = append(events, e)
	}
	return events, nil
}
