package entry

// Labels for the three text fields, in display order.
const (
	LabelIntention  = "Intention"
	LabelGoal       = "Goal"
	LabelReflection = "Reflection"
	LabelMood       = "Mood"
)

const none = "-"

// Rows returns label/value pairs for the entry's fields. Missing values are
// rendered as a dash.
func (e *Entry) Rows() [][2]string {
	rows := [][2]string{
		{LabelIntention, orNone(e.Intention)},
		{LabelGoal, orNone(e.Goal)},
		{LabelReflection, orNone(e.Reflection)},
	}
	if Text(e.Mood) != "" {
		rows = append(rows, [2]string{LabelMood, Text(e.Mood)})
	}
	return rows
}

func orNone(v *string) string {
	if s := Text(v); s != "" {
		return s
	}
	return none
}
