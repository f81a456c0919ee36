package resolver

import "testing"

func TestParsePath(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{name: "simple member access", expr: "repo.private"},
		{name: "single segment", expr: "id"},
		{name: "fixed index", expr: "items[0].field"},
		{name: "star wildcard", expr: "items[*].field"},
		{name: "empty bracket wildcard", expr: "items[].field"},
		{name: "len wrapper", expr: "len(items)"},
		{name: "len over nested path", expr: "len(repo.collaborators)"},
		{name: "len over wildcard", expr: "len(items[*].field)"},
		{name: "empty path", expr: "", wantErr: true},
		{name: "empty len", expr: "len()", wantErr: true},
		{name: "unclosed len", expr: "len(items", wantErr: true},
		{name: "unclosed bracket", expr: "items[0.field", wantErr: true},
		{name: "negative index", expr: "items[-1]", wantErr: true},
		{name: "non-numeric index", expr: "items[abc]", wantErr: true},
		{name: "bracket without name", expr: "[0].field", wantErr: true},
		{name: "empty segment", expr: "a..b", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePath(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParsePath(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestParsePath_HasWildcard(t *testing.T) {
	p, err := ParsePath("items[*].field")
	if err != nil {
		t.Fatalf("ParsePath() error = %v", err)
	}
	if !p.HasWildcard() {
		t.Error("HasWildcard() = false, want true")
	}

	p, err = ParsePath("items[0].field")
	if err != nil {
		t.Fatalf("ParsePath() error = %v", err)
	}
	if p.HasWildcard() {
		t.Error("HasWildcard() = true, want false")
	}
}
