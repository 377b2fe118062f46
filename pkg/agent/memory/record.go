package memory

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

// RecordMeta holds all YAML front-matter fields of a stored record.
type RecordMeta struct {
	ID        string    `yaml:"id"`
	CreatedAt time.Time `yaml:"created_at"`
	UpdatedAt time.Time `yaml:"updated_at"`
	Revision  int       `yaml:"revision"`
}

// Record is the fully parsed in-memory representation of one memory record.
// The body text is a single factual sentence about the user.
type Record struct {
	Meta RecordMeta
	Text string
}

// Validate ensures all required record fields are populated.
func (m *RecordMeta) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("memory: missing ID")
	}
	if m.Revision <= 0 {
		return fmt.Errorf("memory: invalid Revision")
	}
	return nil
}

// Snapshot is the id+text view of a record handed to the reconciliation
// engine. It is also the wire shape serialized into reconciliation prompts.
type Snapshot struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ParseRecord deserializes a raw record file byte slice into a Record.
func ParseRecord(raw []byte) (*Record, error) {
	s := string(raw)
	if !strings.HasPrefix(s, frontMatterDelimiter) {
		return nil, fmt.Errorf("memory: missing front-matter delimiter")
	}
	rest := s[len(frontMatterDelimiter):]
	idx := strings.Index(rest, "\n"+frontMatterDelimiter)
	if idx == -1 {
		return nil, fmt.Errorf("memory: unclosed front-matter block")
	}
	yamlBlock := rest[:idx]
	// Remove the closing delimiter and up to two newlines (if separated by a blank line)
	bodyRaw := rest[idx+len("\n"+frontMatterDelimiter):]
	body := bodyRaw
	if strings.HasPrefix(bodyRaw, "\n\n") {
		body = bodyRaw[2:]
	} else if strings.HasPrefix(bodyRaw, "\n") {
		body = bodyRaw[1:]
	}

	var meta RecordMeta
	if err := yaml.Unmarshal([]byte(yamlBlock), &meta); err != nil {
		return nil, fmt.Errorf("memory: front-matter parse error: %w", err)
	}
	return &Record{Meta: meta, Text: strings.TrimRight(body, "\n")}, nil
}

// SerializeRecord renders a Record back to its on-disk byte representation.
func SerializeRecord(m *Record) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(&m.Meta)
	if err != nil {
		return nil, fmt.Errorf("memory: serialize error: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(frontMatterDelimiter + "\n")
	sb.Write(yamlBytes)
	sb.WriteString(frontMatterDelimiter + "\n\n")
	sb.WriteString(m.Text)
	sb.WriteString("\n")
	return []byte(sb.String()), nil
}
