package feed

// DefaultThreshold is the trigger distance in lines.
const DefaultThreshold = 3

// Position describes a vertical viewport over content, all in lines.
type Position struct {
	Offset   int // first visible line
	Viewport int // visible lines
	Content  int // total lines
}

// ScrollTrigger fires when the bottom of the viewport is within Threshold
// lines of the end of the content.
type ScrollTrigger struct {
	Threshold int
}

func (t ScrollTrigger) Near(pos Position) bool {
	return pos.Offset+pos.Viewport >= pos.Content-t.Threshold
}
