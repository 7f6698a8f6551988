package submission

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadManifest reads a YAML submission manifest. Relative attachment paths
// are resolved against the manifest's directory.
func LoadManifest(path string) (*Submission, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	sub, err := ParseManifest(data)
	if err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	base := filepath.Dir(path)
	for i := range sub.Attachments {
		if p := sub.Attachments[i].Path; p != "" && !filepath.IsAbs(p) {
			sub.Attachments[i].Path = filepath.Join(base, p)
		}
	}
	return sub, nil
}

// ParseManifest decodes a YAML submission manifest. Unknown keys are rejected.
func ParseManifest(data []byte) (*Submission, error) {
	var sub Submission
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&sub); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("manifest is empty")
		}
		return nil, err
	}
	for i, a := range sub.Attachments {
		if a.Path == "" {
			return nil, fmt.Errorf("attachment %d: path is required", i+1)
		}
	}
	return &sub, nil
}
