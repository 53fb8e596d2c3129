package router

// Item is one step of an itinerary. The set of steps is closed: every Item is
// either a WaitItem or a RideItem.
type Item interface {
	// Minutes is the time the step takes.
	Minutes() float64

	isItem()
}

// WaitItem is waiting at a stop for the next bus.
type WaitItem struct {
	StopName string
	Time     float64
}

// RideItem is riding one bus across SpanCount consecutive hops of its route.
type RideItem struct {
	Bus       string
	SpanCount int
	Time      float64
}

func (w WaitItem) Minutes() float64 { return w.Time }
func (r RideItem) Minutes() float64 { return r.Time }

func (WaitItem) isItem() {}
func (RideItem) isItem() {}

// Itinerary is the fastest way from one stop to another.
type Itinerary struct {
	TotalTime float64
	Items     []Item
}
