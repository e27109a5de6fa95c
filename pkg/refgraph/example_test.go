package refgraph_test

import (
	"fmt"

	"github.com/matzehuels/contentaudit/pkg/content"
	"github.com/matzehuels/contentaudit/pkg/refgraph"
)

func ExampleBuild() {
	entries := []content.Entry{
		content.NewEntry("A", "article"),
		content.NewEntry("B", "article", content.Localized("link", map[string]any{
			"en-US": content.LinkValue(content.LinkTypeEntry, "A"),
		})),
	}

	g := refgraph.Build(entries, content.DefaultLocale)
	fmt.Println("Referenced A:", g.Referenced()["A"])
	fmt.Println("Referenced B:", g.Referenced()["B"])
	fmt.Println("Links into A:", g.InDegree("A"))
	// Output:
	// Referenced A: true
	// Referenced B: false
	// Links into A: 1
}

func ExampleGraph_Reachable() {
	g := refgraph.New()
	_ = g.AddNode(refgraph.Node{ID: "home"})
	_ = g.AddNode(refgraph.Node{ID: "teaser"})
	_ = g.AddNode(refgraph.Node{ID: "orphan"})
	_ = g.AddNode(refgraph.Node{ID: "child"})
	_ = g.AddEdge(refgraph.Edge{From: "home", To: "teaser", LinkType: content.LinkTypeEntry})
	_ = g.AddEdge(refgraph.Edge{From: "orphan", To: "child", LinkType: content.LinkTypeEntry})

	live := g.Reachable([]string{"home"})
	fmt.Println(live["teaser"], live["child"])
	// Output:
	// true false
}
