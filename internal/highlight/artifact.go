package highlight

import (
	"encoding/json"
	"errors"
	"os"

	"clipper/internal/fileutil"
	"clipper/internal/services"
)

// WriteArtifact persists highlights as an indented JSON array.
func WriteArtifact(path string, highlights []int) error {
	if highlights == nil {
		highlights = []int{}
	}
	data, err := json.MarshalIndent(highlights, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrIO, "highlight", "write artifact", "encode highlights", err)
	}
	if err := fileutil.AtomicWriteFile(path, append(data, '\n'), 0o644); err != nil {
		return services.Wrap(services.ErrIO, "highlight", "write artifact", path, err)
	}
	return nil
}

// ReadArtifact loads the highlight artifact. A missing file reports
// services.ErrNotFound with the path in the message.
func ReadArtifact(path string) ([]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "highlight", "read artifact", "highlight artifact missing: "+path, nil)
		}
		return nil, services.Wrap(services.ErrIO, "highlight", "read artifact", path, err)
	}
	var highlights []int
	if err := json.Unmarshal(data, &highlights); err != nil {
		return nil, services.Wrap(services.ErrValidation, "highlight", "read artifact", "malformed highlight artifact: "+path, err)
	}
	if highlights == nil {
		highlights = []int{}
	}
	return highlights, nil
}
