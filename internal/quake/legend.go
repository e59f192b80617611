package quake

import "strconv"

// LegendBuckets are the lower bounds of the legend rows.
var LegendBuckets = []int{0, 1, 2, 3, 4, 5}

// LegendRow is one swatch + label line of the magnitude legend.
type LegendRow struct {
	Bucket int    `json:"bucket" doc:"Lower magnitude bound" example:"2"`
	Color  string `json:"color" doc:"Swatch colour (CSS)" example:"goldenrod"`
	Label  string `json:"label" doc:"Row label" example:"2-3"`
}

// Legend builds one row per bucket. A bucket's swatch is the colour of the
// magnitudes just above its lower bound, so "2-3" shows ColorFor(3).
func Legend() []LegendRow {
	rows := make([]LegendRow, len(LegendBuckets))
	for i, b := range LegendBuckets {
		label := strconv.Itoa(b)
		if i+1 < len(LegendBuckets) {
			label += "-" + strconv.Itoa(LegendBuckets[i+1])
		} else {
			label += "+"
		}
		rows[i] = LegendRow{
			Bucket: b,
			Color:  ColorFor(float64(b + 1)),
			Label:  label,
		}
	}
	return rows
}
