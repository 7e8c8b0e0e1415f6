package render_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/matzehuels/hyperscene/pkg/classify"
	"github.com/matzehuels/hyperscene/pkg/render"
	"github.com/matzehuels/hyperscene/pkg/scene"
)

func ExampleToDOT() {
	reg := scene.NewRegistry()
	car := scene.NewNode("car", "Car", scene.KindClass, scene.Vec{X: 0, Y: 0})
	sedan := scene.NewNode("sedan", "Sedan", scene.KindClass, scene.Vec{X: 144, Y: 0})
	_ = reg.Add(car)
	_ = reg.Add(sedan)
	style, _ := classify.StyleOf(classify.IsA)
	reg.Connect(sedan, car, scene.To, classify.IsA, style)

	dot := render.ToDOT(reg, render.Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "->") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "sedan" -> "car" [arrowhead=empty];
}

func ExampleRenderSVG() {
	reg := scene.NewRegistry()
	_ = reg.Add(scene.NewNode("web", "web", scene.KindConcept, scene.Vec{}))
	_ = reg.Add(scene.NewNode("db", "db", scene.KindConcept, scene.Vec{X: 100}))

	svg, err := render.RenderSVG(context.Background(), render.ToDOT(reg, render.Options{}), render.EngineFDP)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	fmt.Printf("Generated SVG (%d bytes)\n", len(svg))
	// Output varies based on Graphviz installation
}
