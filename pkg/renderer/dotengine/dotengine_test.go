package dotengine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/inkfold/diagramprep/pkg/archgraph"
	"github.com/inkfold/diagramprep/pkg/renderer"
)

const archText = `architecture-beta
group api(cloud)[API]
service db(database)[Database] in api
service web(internet)[Web]
junction junction_1 in api
web:L --> R:db
`

func TestToDOT(t *testing.T) {
	dot := ToDOT("render-1", archgraph.Parse(archText))

	for _, want := range []string{
		`digraph "render-1"`,
		`subgraph "cluster_api"`,
		`"db" [label="Database"]`,
		`"web" [label="Web"]`,
		`"junction_1" [shape=point`,
		`"web" -> "db"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOTConnectorStyles(t *testing.T) {
	dot := ToDOT("x", archgraph.Parse("service a(i)[A]\nservice b(i)[B]\na:L -- R:b\na:L -.-> R:b"))

	if !strings.Contains(dot, "[dir=none]") {
		t.Errorf("plain connector should be undirected:\n%s", dot)
	}
	if !strings.Contains(dot, "[style=dashed]") {
		t.Errorf("dashed connector lost:\n%s", dot)
	}
}

func TestRenderRejectsOtherFamilies(t *testing.T) {
	_, err := New().Render(context.Background(), "id", "graph TD\nA-->B")
	if !errors.Is(err, renderer.ErrUnsupportedFamily) {
		t.Errorf("err = %v, want ErrUnsupportedFamily", err)
	}
}

func TestRenderRejectsEmptyDiagram(t *testing.T) {
	_, err := New().Render(context.Background(), "id", "architecture-beta\n")
	if err == nil {
		t.Error("service-less diagram should not render")
	}
}
