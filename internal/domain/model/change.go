package model

import "time"

// ChangeKind describes what happened to the evaluation set.
type ChangeKind string

// ChangeInserted is the only mutation the system performs.
const ChangeInserted ChangeKind = "inserted"

// Change is a notification that the evaluation set was modified.
// Subscribers treat it as a signal to refetch, not as a delta.
type Change struct {
	Kind         ChangeKind `json:"kind"`
	EvaluationID int64      `json:"evaluation_id"`
	PlayerName   string     `json:"player_name"`
	At           time.Time  `json:"at"`
}
