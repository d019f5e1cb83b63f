package notation

import "testing"

func TestParseFamily(t *testing.T) {
	tests := []struct {
		token   string
		want    Family
		wantErr bool
	}{
		{"architecture", FamilyArchitecture, false},
		{"flowchart", FamilyFlow, false},
		{"  Sequence ", FamilySequence, false}, // trimmed and lowercased
		{"", "", false},                        // undeclared is valid
		{"uml", "", true},
		{"flow chart", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFamily(tt.token)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFamily(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFamily(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}

func TestFamilyKeyword(t *testing.T) {
	if kw := FamilyArchitecture.Keyword(); kw != "architecture-beta" {
		t.Errorf("architecture keyword = %q, want architecture-beta", kw)
	}
	if kw := FamilyFlow.Keyword(); kw != "flowchart" {
		t.Errorf("flow keyword = %q, want flowchart", kw)
	}
	if kw := Family("").Keyword(); kw != "" {
		t.Errorf("undeclared family keyword = %q, want empty", kw)
	}
}

func TestMentionsFamilyKeyword(t *testing.T) {
	tests := []struct {
		text   string
		family Family
		want   bool
	}{
		{"graph LR\nA-->B", FamilyFlow, true},      // legacy alias
		{"flowchart TD\nA-->B", FamilyFlow, true},  // canonical keyword
		{"graph LR\nA-->B", FamilySequence, false}, // foreign keyword
		{"sequenceDiagram\nA->>B: hi", FamilySequence, true},
		{"stateDiagram\n[*] --> a", FamilyState, true}, // legacy alias
		{"architecture-beta\nservice a", FamilyArchitecture, true},
		{"just some text", FamilyFlow, false},
		{"", FamilyFlow, false},
		{"flowchart TD", "", false}, // undeclared family has no keywords
	}

	for _, tt := range tests {
		if got := MentionsFamilyKeyword(tt.text, tt.family); got != tt.want {
			t.Errorf("MentionsFamilyKeyword(%q, %q) = %v, want %v", tt.text, tt.family, got, tt.want)
		}
	}
}

func TestSideOpposite(t *testing.T) {
	pairs := map[Side]Side{
		SideTop:    SideBottom,
		SideBottom: SideTop,
		SideLeft:   SideRight,
		SideRight:  SideLeft,
	}
	for s, want := range pairs {
		if got := s.Opposite(); got != want {
			t.Errorf("%s.Opposite() = %s, want %s", s, got, want)
		}
	}
}

func TestParseSide(t *testing.T) {
	if _, ok := ParseSide("T"); !ok {
		t.Error("T should parse")
	}
	if _, ok := ParseSide("X"); ok {
		t.Error("X should not parse")
	}
}

func TestParseConnector(t *testing.T) {
	for _, tok := range []string{"--", "-->", "-.->"} {
		if _, ok := ParseConnector(tok); !ok {
			t.Errorf("%q should parse", tok)
		}
	}
	if _, ok := ParseConnector("=="); ok {
		t.Error("== should not parse")
	}
}
