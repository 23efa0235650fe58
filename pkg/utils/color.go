package utils

import (
	"crypto/md5"
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
	"unicode"
)

var cssColors = map[string]color.RGBA{
	"white":    {255, 255, 255, 255},
	"black":    {0, 0, 0, 255},
	"red":      {255, 0, 0, 255},
	"green":    {0, 128, 0, 255},
	"blue":     {0, 0, 255, 255},
	"orange":   {255, 165, 0, 255},
	"purple":   {128, 0, 128, 255},
	"pink":     {255, 192, 203, 255},
	"gray":     {128, 128, 128, 255},
	"grey":     {128, 128, 128, 255},
	"silver":   {192, 192, 192, 255},
	"gold":     {255, 215, 0, 255},
	"teal":     {0, 128, 128, 255},
	"navy":     {0, 0, 128, 255},
	"maroon":   {128, 0, 0, 255},
	"olive":    {128, 128, 0, 255},
	"beige":    {245, 245, 220, 255},
	"ivory":    {255, 255, 240, 255},
	"lavender": {230, 230, 250, 255},
}

// ParseColor accepts a CSS colour name, #rgb or #rrggbb.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return color.RGBA{}, errors.New("empty color string")
	}

	if c, ok := cssColors[strings.ToLower(s)]; ok {
		return c, nil
	}

	c := color.RGBA{A: 255}
	hexStr := strings.TrimPrefix(s, "#")

	switch len(hexStr) {
	case 6:
		r, err1 := strconv.ParseUint(hexStr[0:2], 16, 8)
		g, err2 := strconv.ParseUint(hexStr[2:4], 16, 8)
		b, err3 := strconv.ParseUint(hexStr[4:6], 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return color.RGBA{}, errors.New("invalid hex")
		}
		c.R, c.G, c.B = uint8(r), uint8(g), uint8(b)
	case 3:
		r, err1 := strconv.ParseUint(string(hexStr[0])+string(hexStr[0]), 16, 8)
		g, err2 := strconv.ParseUint(string(hexStr[1])+string(hexStr[1]), 16, 8)
		b, err3 := strconv.ParseUint(string(hexStr[2])+string(hexStr[2]), 16, 8)
		if err1 != nil || err2 != nil || err3 != nil {
			return color.RGBA{}, errors.New("invalid hex")
		}
		c.R, c.G, c.B = uint8(r), uint8(g), uint8(b)
	default:
		return color.RGBA{}, errors.New("invalid color format")
	}

	return c, nil
}

// GradientFor derives a stable two-stop gradient from a name using HSL math,
// so the same submitter always gets the same badge colours.
func GradientFor(name string) (color.RGBA, color.RGBA) {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(name))))

	h1 := float64(int(hash[0])) * (360.0 / 255.0)
	s1 := 0.55 + (float64(hash[1]%30) / 100.0)
	l1 := 0.45 + (float64(hash[2]%15) / 100.0)

	hueShift := 30.0 + float64(hash[3]%60)
	h2 := h1 + hueShift
	if h2 > 360 {
		h2 -= 360
	}

	s2 := 0.55 + (float64(hash[4]%30) / 100.0)
	l2 := 0.45 + (float64(hash[5]%15) / 100.0)

	r1, g1, b1 := hslToRgb(h1, s1, l1)
	r2, g2, b2 := hslToRgb(h2, s2, l2)

	return color.RGBA{r1, g1, b1, 255}, color.RGBA{r2, g2, b2, 255}
}

// CSSColor formats c as rgb(r,g,b).
func CSSColor(c color.RGBA) string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

// Initials returns up to two upper-case initials, e.g. "Jane Doe, Berlin" -> "JD".
func Initials(name string) string {
	var initials []rune

	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				initials = append(initials, unicode.ToUpper(r))
				break
			}
		}
		if len(initials) >= 2 {
			break
		}
	}

	if len(initials) == 0 {
		return "?"
	}
	return string(initials)
}

func hslToRgb(h, s, l float64) (r, g, b uint8) {
	var rf, gf, bf float64
	if s == 0 {
		rf, gf, bf = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q
		rf = hueToRgb(p, q, h/360.0+1.0/3.0)
		gf = hueToRgb(p, q, h/360.0)
		bf = hueToRgb(p, q, h/360.0-1.0/3.0)
	}
	return uint8(rf * 255), uint8(gf * 255), uint8(bf * 255)
}

func hueToRgb(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}
