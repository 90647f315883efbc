package scoring

// Bucket is the colour band a value falls into.
type Bucket string

// Buckets from worst to best, plus Missing for the no-data sentinel.
const (
	Missing   Bucket = "missing"
	Poor      Bucket = "poor"
	Below     Bucket = "below"
	Average   Bucket = "average"
	Good      Bucket = "good"
	Excellent Bucket = "excellent"
)

var bucketColors = map[Bucket]string{
	Excellent: "#22c55e",
	Good:      "#84cc16",
	Average:   "#eab308",
	Below:     "#f97316",
	Poor:      "#dc2626",
	Missing:   "#6b7280",
}

// Buckets returns the scored buckets from best to worst, for legends.
func Buckets() []Bucket {
	return []Bucket{Excellent, Good, Average, Below, Poor}
}

// Color returns the hex display colour of b.
func (b Bucket) Color() string {
	if c, ok := bucketColors[b]; ok {
		return c
	}
	return bucketColors[Missing]
}

func (b Bucket) String() string { return string(b) }

// Classify places value into a bucket. Lower bounds are inclusive and are
// checked top-down, so a value sitting on a breakpoint lands in the higher
// bucket.
func Classify(value float64, breakpoints [6]float64) Bucket {
	switch {
	case value <= 0:
		return Missing
	case value >= breakpoints[4]:
		return Excellent
	case value >= breakpoints[3]:
		return Good
	case value >= breakpoints[2]:
		return Average
	case value >= breakpoints[1]:
		return Below
	default:
		return Poor
	}
}

// ClassifyScore classifies a category score or overall.
func (r ScoreRanges) ClassifyScore(value float64) Bucket {
	return Classify(value, r.Score.Breakpoints)
}

// ClassifyVelocity classifies a pitching velocity.
func (r ScoreRanges) ClassifyVelocity(value float64) Bucket {
	return Classify(value, r.Velocity.Breakpoints)
}
