package model

var criteria = map[EvaluationType][]string{
	Pitching: {"Mechanics", "Control"},
	Infield:  {"Range/Feet", "Glove", "Mechanics", "Arm Strength"},
	Outfield: {"Range/Speed", "Mechanics", "Arm Strength"},
	Batting:  {"Mechanics", "Contact", "Power"},
	Catching: {"Receiving", "Blocking", "Pop Time"},
	Speed:    {"60 Time"},
}

var labels = map[EvaluationType]string{
	Pitching: "Pitching",
	Infield:  "Infield",
	Outfield: "Outfield",
	Batting:  "Batting",
	Catching: "Catching",
	Speed:    "Speed & Agility",
}

// Criteria returns the rated criteria for t, in form order.
func Criteria(t EvaluationType) []string {
	c := criteria[t]
	out := make([]string, len(c))
	copy(out, c)
	return out
}

// Label returns the display label for t.
func Label(t EvaluationType) string {
	if l, ok := labels[t]; ok {
		return l
	}
	return string(t)
}
