package accounting

// lot is an open, not yet fully sold purchase of an asset.
type lot struct {
	Quantity float64
	UnitCost float64
}

// lots is a FIFO queue, oldest purchase first.
type lots []lot

// consume removes quantity from the oldest lots and returns the cost basis of
// what was removed together with the remaining queue. Quantity beyond the open
// lots carries no basis.
func (l lots) consume(quantity float64) (basis float64, remaining lots) {
	i := 0
	for ; i < len(l) && quantity > 0; i++ {
		cur := l[i]
		if cur.Quantity > quantity {
			basis += quantity * cur.UnitCost
			l[i].Quantity = cur.Quantity - quantity
			return basis, l[i:]
		}
		basis += cur.Quantity * cur.UnitCost
		quantity -= cur.Quantity
	}
	return basis, l[i:]
}
