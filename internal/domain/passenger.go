package domain

// Passenger is immutable once created. Ids come from a counter owned by the
// booking service and are never reused.
type Passenger struct {
	ID   int64  `json:"passenger_id"`
	Name string `json:"name"`
	Age  int    `json:"age"`
}
