package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/hyperscene/pkg/errors"
)

// Engine names a Graphviz layout engine.
type Engine string

const (
	// EngineFDP honours pinned positions and draws clusters.
	EngineFDP Engine = "fdp"
	// EngineNeato honours pinned positions but flattens clusters.
	EngineNeato Engine = "neato"
)

// Format is an output format of [Render].
type Format string

const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatDOT, FormatSVG, FormatPDF, FormatPNG:
		return f, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want dot, svg, pdf or png)", s)
}

// ParseEngine validates an engine name.
func ParseEngine(s string) (Engine, error) {
	switch e := Engine(s); e {
	case EngineFDP, EngineNeato:
		return e, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown engine %q (want fdp or neato)", s)
}

func (e Engine) layout() graphviz.Layout {
	if e == EngineNeato {
		return graphviz.NEATO
	}
	return graphviz.FDP
}

// RenderSVG lays out dot with engine and renders it to SVG.
func RenderSVG(ctx context.Context, dot string, engine Engine) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(engine.layout())

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// Render produces dot in the given format. DOT is returned unchanged;
// PDF and PNG go through SVG and need rsvg-convert. scale applies to PNG.
func Render(ctx context.Context, dot string, format Format, engine Engine, scale float64) ([]byte, error) {
	if format == FormatDOT {
		return []byte(dot), nil
	}
	svg, err := RenderSVG(ctx, dot, engine)
	if err != nil {
		return nil, err
	}
	switch format {
	case FormatPDF:
		return ToPDF(ctx, svg)
	case FormatPNG:
		return ToPNG(ctx, svg, scale)
	default:
		return svg, nil
	}
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element to a zero-origin viewBox with
// matching width and height, dropping Graphviz's pt units.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
