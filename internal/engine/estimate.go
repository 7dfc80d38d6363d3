package engine

import (
	"math"

	"github.com/piwi3910/panelnest/internal/model"
)

// estimateGroup computes the closed-form sheet-count estimate for one
// material group. No placement is performed; the cost is linear in the
// number of unit parts. The estimate systematically under-counts
// relative to production by the gap between the assumed target yield
// and the yield the placer actually achieves.
func estimateGroup(units []unitPart, stock model.SheetStock, cfg model.OptimizationConfig) model.MaterialEstimate {
	var totalArea float64
	for _, u := range units {
		totalArea += u.Area()
	}

	sheetArea := stock.Area()
	est := model.MaterialEstimate{
		MaterialKey:   stock.MaterialKey,
		Units:         len(units),
		TotalPartArea: totalArea,
		SheetArea:     sheetArea,
	}
	if totalArea <= 0 || sheetArea <= 0 {
		return est
	}

	usable := sheetArea * cfg.TargetYieldPercent / 100.0
	sheets := int(math.Ceil(totalArea / usable))
	if sheets < 1 {
		sheets = 1
	}

	est.SheetsRequired = sheets
	est.WasteEstimatePercent = 100.0 - (totalArea/(float64(sheets)*sheetArea))*100.0
	est.MaterialCost = float64(sheets) * stock.UnitCost
	return est
}
