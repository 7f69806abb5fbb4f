package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/redroom/common"
	"gopkg.in/yaml.v3"
)

// YAMLColor accepts "#RRGGBB", "#RRGGBBAA", "srgb(r, g, b)", "srgb8(r, g, b)"
// and "linear(r, g, b)".
type YAMLColor struct {
	color.NRGBA
	Set bool
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}
	parsed, err := ParseColor(value.Value)
	if err != nil {
		return err
	}
	c.NRGBA = parsed
	c.Set = true
	return nil
}

func (c YAMLColor) MarshalYAML() (any, error) {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B), nil
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A), nil
}

// ParseColor parses one of the colour forms accepted by YAMLColor.
func ParseColor(raw string) (color.NRGBA, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "#") {
		return parseHex(s)
	}
	fn, args, ok := splitCall(s)
	if !ok {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s", raw)
	}
	if len(args) != 3 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s: want 3 channels", raw)
	}
	var ch [3]float64
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid color format: %s: %w", raw, err)
		}
		ch[i] = v
	}
	switch fn {
	case "srgb":
		return common.SRGB(ch[0], ch[1], ch[2]), nil
	case "srgb8":
		for _, v := range ch {
			if v < 0 || v > 255 {
				return color.NRGBA{}, fmt.Errorf("invalid color format: %s: channel out of range", raw)
			}
		}
		return common.SRGB8(uint8(ch[0]), uint8(ch[1]), uint8(ch[2])), nil
	case "linear":
		return common.LinearRGB(ch[0], ch[1], ch[2]), nil
	default:
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s: unknown space %q", raw, fn)
	}
}

func parseHex(raw string) (color.NRGBA, error) {
	s := strings.TrimPrefix(raw, "#")

	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, fmt.Errorf("invalid color format: %s", raw)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	r, err := parse(0)
	if err != nil {
		return color.NRGBA{}, err
	}
	g, err := parse(2)
	if err != nil {
		return color.NRGBA{}, err
	}
	b, err := parse(4)
	if err != nil {
		return color.NRGBA{}, err
	}

	a := uint8(255)
	if len(s) == 8 {
		a, err = parse(6)
		if err != nil {
			return color.NRGBA{}, err
		}
	}

	return color.NRGBA{R: r, G: g, B: b, A: a}, nil
}

func splitCall(s string) (string, []string, bool) {
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return "", nil, false
	}
	fn := strings.ToLower(strings.TrimSpace(s[:open]))
	parts := strings.Split(s[open+1:len(s)-1], ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return fn, parts, true
}
