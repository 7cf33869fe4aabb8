package indicator

import "github.com/amirphl/book-algo/internal/market"

// VWAP is the volume-weighted average price over every visible bid and ask
// level combined. It returns 0 when the book carries no quantity.
func VWAP(s market.State) float64 {
	var priceVolume, volume int64
	for i := 0; i < s.BidLevels(); i++ {
		l := s.BidAt(i)
		priceVolume += l.Price * l.Quantity
		volume += l.Quantity
	}
	for i := 0; i < s.AskLevels(); i++ {
		l := s.AskAt(i)
		priceVolume += l.Price * l.Quantity
		volume += l.Quantity
	}
	if volume == 0 {
		return 0
	}
	return float64(priceVolume) / float64(volume)
}
