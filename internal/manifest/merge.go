package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

// FileName is the manifest file name inside a project.
const FileName = "package.json"

//go:embed starter.json
var starterJSON []byte

// Starter returns a copy of the configuration merged into every project.
func Starter() []byte {
	out := make([]byte, len(starterJSON))
	copy(out, starterJSON)
	return out
}

// Merge applies patch to doc as an RFC 7386 merge patch: objects merge
// recursively, every other value in patch replaces the one in doc. Keys
// already in doc keep their position; keys added by patch follow in the
// order patch lists them. The result is indented with two spaces and ends
// with a newline.
func Merge(doc, patch []byte) ([]byte, error) {
	if len(bytes.TrimSpace(doc)) == 0 {
		doc = []byte("{}")
	}
	if !json.Valid(doc) {
		return nil, fmt.Errorf("manifest is not valid JSON")
	}
	if !json.Valid(patch) {
		return nil, fmt.Errorf("patch is not valid JSON")
	}

	steps, err := splitPatch(patch)
	if err != nil {
		return nil, fmt.Errorf("reading patch: %w", err)
	}
	merged := doc
	for _, step := range steps {
		merged, err = jsonpatch.MergePatch(merged, step)
		if err != nil {
			return nil, fmt.Errorf("merging manifest: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, merged, "", "  "); err != nil {
		return nil, fmt.Errorf("formatting manifest: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// MergeFile merges the starter configuration into the manifest at path and
// writes it back. A missing manifest is created from the starter alone.
func MergeFile(path string) ([]byte, error) {
	doc, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	merged, err := Merge(doc, Starter())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if err := os.WriteFile(path, merged, 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}
	return merged, nil
}

// splitPatch breaks an object patch into single-leaf patches in document
// order. A merge patch applies its object keys in map order, so applying
// one leaf at a time is what keeps the added keys in a stable order.
// Non-object patches are returned whole.
func splitPatch(patch []byte) ([][]byte, error) {
	trimmed := bytes.TrimSpace(patch)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return [][]byte{patch}, nil
	}

	var steps [][]byte
	err := walkObject(trimmed, nil, func(path []string, leaf json.RawMessage) error {
		step, err := nestLeaf(path, leaf)
		if err != nil {
			return err
		}
		steps = append(steps, step)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(steps) == 0 {
		steps = append(steps, trimmed)
	}
	return steps, nil
}

// walkObject calls emit for every non-object value in obj and for every
// empty object, depth first, in the order keys appear.
func walkObject(obj []byte, path []string, emit func([]string, json.RawMessage) error) error {
	dec := json.NewDecoder(bytes.NewReader(obj))
	if _, err := dec.Token(); err != nil {
		return err
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}

		keyPath := append(path[:len(path):len(path)], key)
		value := bytes.TrimSpace(raw)
		if len(value) > 0 && value[0] == '{' && !isEmptyObject(value) {
			if err := walkObject(value, keyPath, emit); err != nil {
				return err
			}
			continue
		}
		if err := emit(keyPath, raw); err != nil {
			return err
		}
	}
	_, err := dec.Token()
	return err
}

func isEmptyObject(value []byte) bool {
	var m map[string]json.RawMessage
	return json.Unmarshal(value, &m) == nil && len(m) == 0
}

// nestLeaf wraps leaf in one object per path element.
func nestLeaf(path []string, leaf json.RawMessage) ([]byte, error) {
	out := []byte(leaf)
	for i := len(path) - 1; i >= 0; i-- {
		key, err := json.Marshal(path[i])
		if err != nil {
			return nil, err
		}
		wrapped := make([]byte, 0, len(out)+len(key)+3)
		wrapped = append(wrapped, '{')
		wrapped = append(wrapped, key...)
		wrapped = append(wrapped, ':')
		wrapped = append(wrapped, out...)
		wrapped = append(wrapped, '}')
		out = wrapped
	}
	return out, nil
}
