package report

import (
	"sort"

	"github.com/Jeda-Ngoding/pos-mvp/internal/domain"
)

// TopProductsLimit caps the dashboard's best-seller list.
const TopProductsLimit = 3

// TopProducts groups sold lines by product id, sums quantities and returns
// the best sellers in descending quantity order, truncated to
// TopProductsLimit. The ranking sums units sold, not revenue.
//
// The display name kept for a group is the one on the first line seen for
// that product id; if a rename lands mid-window the first-seen name wins.
// Ties keep first-appearance order (stable sort); no secondary key is
// defined. Empty input yields an empty result, never an error.
func TopProducts(lines []domain.SoldLine) []domain.TopProduct {
	if len(lines) == 0 {
		return []domain.TopProduct{}
	}

	index := make(map[int64]int, len(lines))
	groups := make([]domain.TopProduct, 0, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			groups[i].TotalQuantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(groups)
		groups = append(groups, domain.TopProduct{
			ProductID:     l.ProductID,
			Name:          l.ProductName,
			TotalQuantity: l.Quantity,
		})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].TotalQuantity > groups[j].TotalQuantity
	})

	if len(groups) > TopProductsLimit {
		groups = groups[:TopProductsLimit]
	}
	return groups
}
