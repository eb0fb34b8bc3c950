// client/filesystem/draft.go
package filesystem

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Draft is the editable form of a note: YAML front matter for the title and
// tags, the note content below it.
type Draft struct {
	Title   string   `yaml:"title"`
	Tags    []string `yaml:"tags"`
	Content string   `yaml:"-"`
}

func EncodeDraft(d Draft) ([]byte, error) {
	if d.Tags == nil {
		d.Tags = []string{}
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	encoder.Close()

	buf.WriteString("---\n\n")
	buf.WriteString(d.Content)
	return buf.Bytes(), nil
}

func DecodeDraft(data []byte) (Draft, error) {
	var d Draft

	data = bytes.TrimLeft(data, " \t\r\n")
	if !bytes.HasPrefix(data, []byte("---")) {
		return d, fmt.Errorf("invalid frontmatter format")
	}

	// The front matter ends at the first line that starts with ---.
	body := data[len("---"):]
	end := bytes.Index(body, []byte("\n---"))
	if end < 0 {
		return d, fmt.Errorf("invalid frontmatter format")
	}
	front, rest := body[:end], body[end+len("\n---"):]

	if err := yaml.Unmarshal(front, &d); err != nil {
		return d, fmt.Errorf("failed to parse frontmatter: %w", err)
	}
	d.Content = string(bytes.TrimSpace(rest))
	return d, nil
}
