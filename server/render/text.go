package render

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"frps-dashboard/server/chart"
)

// Text 在终端输出图表摘要，扇区前的色块使用扇区颜色
func Text(w io.Writer, spec chart.Spec, colorize bool) error {
	title := color.New(color.Bold)
	if !colorize {
		title.DisableColor()
	}
	if _, err := fmt.Fprintln(w, title.Sprint(spec.Title)); err != nil {
		return err
	}
	if len(spec.Slices) == 0 {
		_, err := fmt.Fprintf(w, "  (%s)\n", spec.NoData)
		return err
	}
	for i, s := range spec.Slices {
		swatch := swatchColor(s.Color)
		if !colorize {
			swatch.DisableColor()
		}
		if _, err := fmt.Fprintf(w, "  %s %s\n", swatch.Sprint("■"), spec.TooltipText(i)); err != nil {
			return err
		}
	}
	return nil
}

func swatchColor(s string) *color.Color {
	c := parseColor(s, drawing.ColorWhite)
	return color.RGB(int(c.R), int(c.G), int(c.B))
}
