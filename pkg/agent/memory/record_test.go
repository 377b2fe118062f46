package memory

import (
	"testing"
	"time"
)

func TestRecordRoundTrip(t *testing.T) {
	now := time.Date(2025, 3, 2, 9, 15, 0, 0, time.UTC)
	m := &Record{
		Meta: RecordMeta{
			ID:        "4",
			CreatedAt: now,
			UpdatedAt: now,
			Revision:  2,
		},
		Text: "User likes cricket",
	}

	b, err := SerializeRecord(m)
	if err != nil {
		t.Fatalf("SerializeRecord failed: %v", err)
	}

	parsed, err := ParseRecord(b)
	if err != nil {
		t.Fatalf("ParseRecord failed: %v", err)
	}

	if parsed.Meta.ID != m.Meta.ID {
		t.Errorf("Expected ID %s, got %s", m.Meta.ID, parsed.Meta.ID)
	}
	if parsed.Meta.Revision != 2 {
		t.Errorf("Expected Revision 2, got %d", parsed.Meta.Revision)
	}
	if !parsed.Meta.CreatedAt.Equal(now) {
		t.Errorf("Expected CreatedAt %v, got %v", now, parsed.Meta.CreatedAt)
	}
	if parsed.Text != m.Text {
		t.Errorf("Expected Text %q, got %q", m.Text, parsed.Text)
	}
}

func TestParseRecordErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		err  string
	}{
		{
			name: "missing delimiter",
			raw:  "just some text",
			err:  "missing front-matter delimiter",
		},
		{
			name: "unclosed block",
			raw:  "---\nid: \"1\"\nno closing delimiter",
			err:  "unclosed front-matter block",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRecord([]byte(tt.raw))
			if err == nil {
				t.Fatalf("Expected error %q, got none", tt.err)
			}
			if err.Error() != "memory: "+tt.err {
				t.Errorf("Expected error %q, got %q", tt.err, err.Error())
			}
		})
	}
}

func TestRecordMetaValidate(t *testing.T) {
	meta := RecordMeta{ID: "0", Revision: 1}
	if err := meta.Validate(); err != nil {
		t.Errorf("Expected valid meta, got %v", err)
	}

	if err := (&RecordMeta{Revision: 1}).Validate(); err == nil {
		t.Error("Expected error for missing ID")
	}
	if err := (&RecordMeta{ID: "0"}).Validate(); err == nil {
		t.Error("Expected error for zero Revision")
	}
}
