package utils

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"strings"

	svg "github.com/ajstarks/svgo"
)

const (
	captchaCellWidth = 30
	captchaHeight    = 60
	captchaPadding   = 10
	glyphScale       = 2
)

// glyphs draws each digit on a 10x16 grid as one or more open strokes.
var glyphs = map[rune][][][2]int{
	'0': {{{2, 0}, {8, 0}, {10, 3}, {10, 13}, {8, 16}, {2, 16}, {0, 13}, {0, 3}, {2, 0}}},
	'1': {{{2, 3}, {6, 0}, {6, 16}}, {{2, 16}, {10, 16}}},
	'2': {{{0, 3}, {2, 0}, {8, 0}, {10, 3}, {10, 6}, {0, 16}, {10, 16}}},
	'3': {{{0, 1}, {10, 0}, {5, 7}, {10, 10}, {10, 14}, {7, 16}, {0, 15}}},
	'4': {{{8, 16}, {8, 0}, {0, 11}, {10, 11}}},
	'5': {{{10, 0}, {1, 0}, {0, 7}, {7, 6}, {10, 9}, {10, 13}, {7, 16}, {0, 15}}},
	'6': {{{9, 0}, {3, 2}, {0, 8}, {0, 14}, {2, 16}, {8, 16}, {10, 13}, {10, 10}, {7, 8}, {2, 8}, {0, 10}}},
	'7': {{{0, 0}, {10, 0}, {4, 16}}, {{3, 8}, {9, 8}}},
	'8': {{{5, 8}, {1, 6}, {1, 2}, {3, 0}, {7, 0}, {9, 2}, {9, 6}, {5, 8}, {0, 11}, {0, 14}, {2, 16}, {8, 16}, {10, 14}, {10, 11}, {5, 8}}},
	'9': {{{10, 6}, {8, 8}, {2, 8}, {0, 6}, {0, 2}, {2, 0}, {8, 0}, {10, 2}, {10, 8}, {8, 14}, {2, 16}}},
}

var inkColors = []string{"#2b2d42", "#1d3557", "#3d405b", "#5a189a", "#6a040f"}
var noiseColors = []string{"#8d99ae", "#a8dadc", "#bc6c25", "#adb5bd", "#e5989b"}

// RenderCaptcha draws code as stroked vector glyphs with per-digit offset and
// rotation plus background noise. The digits never appear as text in the markup.
func RenderCaptcha(code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("empty captcha code")
	}
	width := 2*captchaPadding + len(code)*captchaCellWidth

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(width, captchaHeight)
	canvas.Rect(0, 0, width, captchaHeight, "fill:#f4f1ea")

	for i := 0; i < 4; i++ {
		canvas.Line(rand.IntN(width), rand.IntN(captchaHeight), rand.IntN(width), rand.IntN(captchaHeight),
			noiseStyle(1+rand.IntN(2)))
	}
	for i := 0; i < 3; i++ {
		canvas.Qbez(0, rand.IntN(captchaHeight),
			rand.IntN(width), rand.IntN(captchaHeight),
			width, rand.IntN(captchaHeight),
			"fill:none;"+noiseStyle(2))
	}

	for i, r := range code {
		strokes, ok := glyphs[r]
		if !ok {
			return "", fmt.Errorf("captcha code contains non-digit %q", r)
		}
		x := captchaPadding + i*captchaCellWidth + 3 + jitter(3)
		y := (captchaHeight-16*glyphScale)/2 + jitter(6)
		// whole degrees keep long digit runs out of the transform attribute
		canvas.TranslateRotate(x, y, float64(jitter(22)))
		style := fmt.Sprintf("fill:none;stroke:%s;stroke-width:2.6;stroke-linecap:round;stroke-linejoin:round",
			inkColors[rand.IntN(len(inkColors))])
		for _, stroke := range strokes {
			xs := make([]int, len(stroke))
			ys := make([]int, len(stroke))
			for j, p := range stroke {
				xs[j] = p[0]*glyphScale + jitter(1)
				ys[j] = p[1]*glyphScale + jitter(1)
			}
			canvas.Polyline(xs, ys, style)
		}
		canvas.Gend()
	}

	for i := 0; i < 30; i++ {
		canvas.Circle(rand.IntN(width), rand.IntN(captchaHeight), 1, "fill:"+noiseColors[rand.IntN(len(noiseColors))])
	}
	canvas.Qbez(0, rand.IntN(captchaHeight), rand.IntN(width), rand.IntN(captchaHeight), width, rand.IntN(captchaHeight),
		"fill:none;"+noiseStyle(1))
	canvas.End()

	out := buf.String()
	// drop the XML declaration so the markup can be inlined into a page
	if idx := strings.Index(out, "<svg"); idx > 0 {
		out = out[idx:]
	}
	return out, nil
}

func jitter(n int) int {
	return rand.IntN(2*n+1) - n
}

func noiseStyle(width int) string {
	return fmt.Sprintf("stroke:%s;stroke-width:%d;opacity:0.7", noiseColors[rand.IntN(len(noiseColors))], width)
}
