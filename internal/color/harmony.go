package color

type Harmony struct {
	Name        string   `json:"name"`
	Colors      []string `json:"colors"`
	Description string   `json:"description"`
}

// Harmonies derives the four classic schemes from a base hex color. The base
// appears in the sets as lower-case #rrggbb, like every derived color.
func Harmonies(primary string) ([]Harmony, error) {
	rgb, err := HexToRGB(primary)
	if err != nil {
		return nil, err
	}
	base := rgb.Hex()
	hsl := RGBToHSL(rgb)
	at := func(deg float64) string { return HSLToHex(hsl.Rotate(deg)) }

	return []Harmony{
		{
			Name:        "Complementary",
			Colors:      []string{base, at(180)},
			Description: "Opposite on color wheel, high contrast",
		},
		{
			Name:        "Analogous",
			Colors:      []string{at(-30), base, at(30)},
			Description: "Adjacent colors, harmonious blend",
		},
		{
			Name:        "Triadic",
			Colors:      []string{base, at(120), at(240)},
			Description: "Evenly spaced, vibrant balance",
		},
		{
			Name:        "Split Complementary",
			Colors:      []string{base, at(150), at(210)},
			Description: "Base + two adjacent to complement",
		},
	}, nil
}
