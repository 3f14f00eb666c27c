package render

import "fmt"

type HeatmapCell struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	Value     float64 `json:"value"`
	Intensity int     `json:"intensity"` // 0..100
	Color     string  `json:"color"`
	Title     string  `json:"title"`
	AriaLabel string  `json:"aria_label"`
}

type Heatmap struct {
	Rows  int           `json:"rows"`
	Cols  int           `json:"cols"`
	Cells []HeatmapCell `json:"cells"` // row-major
}

// RiskColor maps a risk value in [0,1] onto a green → amber → red gradient.
func RiskColor(v float64) string {
	switch {
	case v < 0.33:
		g := 150 + roundHalfUp(105*(0.33-v)/0.33)
		return fmt.Sprintf("rgb(5, %d, 105)", g)
	case v < 0.66:
		ratio := (v - 0.33) / 0.33
		r := roundHalfUp(217 * ratio)
		g := roundHalfUp(151 * (1 - ratio))
		return fmt.Sprintf("rgb(%d, %d, 6)", r, 151+g)
	default:
		r := 217 + roundHalfUp(3*(v-0.66)/0.34)
		return fmt.Sprintf("rgb(%d, 38, 38)", r)
	}
}

func RiskHeatmap(grid [][]float64) Heatmap {
	h := Heatmap{Rows: len(grid)}
	for i, row := range grid {
		if len(row) > h.Cols {
			h.Cols = len(row)
		}
		for j, v := range row {
			intensity := roundHalfUp(v * 100)
			h.Cells = append(h.Cells, HeatmapCell{
				Row:       i,
				Col:       j,
				Value:     v,
				Intensity: intensity,
				Color:     RiskColor(v),
				Title:     fmt.Sprintf("Risk Level: %d%% (Row %d, Col %d)", intensity, i+1, j+1),
				AriaLabel: fmt.Sprintf("Risk level %d percent", intensity),
			})
		}
	}
	return h
}
