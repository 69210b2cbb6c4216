package samples

import (
	"strings"
	"testing"
)

func TestList_Sorted(t *testing.T) {
	list := List()
	if len(list) != 7 {
		t.Fatalf("len(List()) = %d, want 7", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i-1].Name >= list[i].Name {
			t.Errorf("List not sorted at %d: %q >= %q", i, list[i-1].Name, list[i].Name)
		}
	}
	for _, s := range list {
		if strings.TrimSpace(s.Text) == "" || s.Description == "" {
			t.Errorf("sample %q is incomplete", s.Name)
		}
	}
}

func TestGet(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"identity-leak", "identity-leak"},
		{"Identity Leak", "identity-leak"},
		{" gov_ids ", "gov-ids"},
	}
	for _, tt := range tests {
		s, err := Get(tt.in)
		if err != nil {
			t.Errorf("Get(%q) error: %v", tt.in, err)
			continue
		}
		if s.Name != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.in, s.Name, tt.want)
		}
	}
}

func TestGet_Unknown(t *testing.T) {
	_, err := Get("pastebin")
	if err == nil {
		t.Fatal("expected error for unknown sample")
	}
	if !strings.Contains(err.Error(), "credential-dump") {
		t.Errorf("error should list available samples: %v", err)
	}
}

func TestSource(t *testing.T) {
	s, _ := Get("mixed")
	if s.Source() != "sample:mixed" {
		t.Errorf("Source() = %q", s.Source())
	}
}
