package archgraph

import (
	"testing"

	"github.com/inkfold/diagramprep/pkg/notation"
)

const sampleDiagram = `architecture-beta
group api(cloud)[API]
service db(database)[Database] in api
service disk(disk)[Storage] in api
service web(internet)[Web]
db:T -- T:disk
web:B -.-> T:db
this line is not notation
`

func TestParseServices(t *testing.T) {
	d := Parse(sampleDiagram)

	if len(d.Services) != 3 {
		t.Fatalf("services = %d, want 3", len(d.Services))
	}

	db := d.ServiceByID("db")
	if db == nil {
		t.Fatal("service db not found")
	}
	if db.Icon != "database" || db.Label != "Database" || db.Group != "api" {
		t.Errorf("db = %+v", *db)
	}

	web := d.ServiceByID("web")
	if web == nil || web.Group != "" {
		t.Errorf("web should be ungrouped: %+v", web)
	}
}

func TestParseGroups(t *testing.T) {
	d := Parse(sampleDiagram)

	if len(d.Groups) != 1 {
		t.Fatalf("groups = %d, want 1", len(d.Groups))
	}
	if d.Groups[0].ID != "api" || d.Groups[0].Icon != "cloud" {
		t.Errorf("group = %+v", d.Groups[0])
	}
}

func TestParseConnections(t *testing.T) {
	d := Parse(sampleDiagram)

	if len(d.Connections) != 2 {
		t.Fatalf("connections = %d, want 2", len(d.Connections))
	}

	c := d.Connections[0]
	if c.From != "db" || c.FromSide != notation.SideTop || c.To != "disk" || c.ToSide != notation.SideTop {
		t.Errorf("connection 0 = %+v", c)
	}
	if c.Connector != notation.ConnectorPlain {
		t.Errorf("connector = %q, want plain", c.Connector)
	}

	if d.Connections[1].Connector != notation.ConnectorDashedArrow {
		t.Errorf("connection 1 connector = %q, want dashed arrow", d.Connections[1].Connector)
	}
}

// TestParsePassthrough checks the no-drop guarantee: every input line
// appears in the scanned line list, recognized or not.
func TestParsePassthrough(t *testing.T) {
	d := Parse(sampleDiagram)

	// sampleDiagram has 8 lines plus the trailing newline's empty line.
	if len(d.Lines) != 9 {
		t.Fatalf("lines = %d, want 9", len(d.Lines))
	}

	var others int
	for _, l := range d.Lines {
		if l.Kind == LineOther {
			others++
		}
	}
	// Opening keyword, free-text line, trailing empty line.
	if others != 3 {
		t.Errorf("passthrough lines = %d, want 3", others)
	}
}

func TestParseMalformedConnectionIsPassthrough(t *testing.T) {
	d := Parse("db:X -- T:disk\ndb:T ~~ T:disk")

	if len(d.Connections) != 0 {
		t.Errorf("malformed connections must not parse: %+v", d.Connections)
	}
	for _, l := range d.Lines {
		if l.Kind != LineOther {
			t.Errorf("malformed line classified as %v", l.Kind)
		}
	}
}

func TestParseEmptyAndGarbage(t *testing.T) {
	if d := Parse(""); len(d.Lines) != 0 {
		t.Errorf("empty input should have no lines: %d", len(d.Lines))
	}

	d := Parse("\x00\x01 binary ** garbage")
	if len(d.Lines) != 1 || d.Lines[0].Kind != LineOther {
		t.Errorf("garbage should be one passthrough line: %+v", d.Lines)
	}
}

func TestDegrees(t *testing.T) {
	d := Parse(sampleDiagram)
	deg := d.Degrees()

	if deg["db"] != 2 {
		t.Errorf("degree(db) = %d, want 2", deg["db"])
	}
	if deg["disk"] != 1 || deg["web"] != 1 {
		t.Errorf("degrees = %v", deg)
	}
}

func TestFirstOwningGroup(t *testing.T) {
	if g := Parse(sampleDiagram).FirstOwningGroup(); g != "api" {
		t.Errorf("FirstOwningGroup = %q, want api", g)
	}

	if g := Parse("service a(x)[A]\nservice b(y)[B]").FirstOwningGroup(); g != "" {
		t.Errorf("ungrouped diagram should have no owning group, got %q", g)
	}
}

func TestJunctionLinesRecognized(t *testing.T) {
	d := Parse("junction junction_1 in api\njunction j2")

	for _, l := range d.Lines {
		if l.Kind != LineJunction {
			t.Errorf("junction line classified as %v: %q", l.Kind, l.Text)
		}
	}
}
