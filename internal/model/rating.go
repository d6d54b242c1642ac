package model

import "time"

// Rating is feedback left by one participant about the other, after the
// reservation completed and its payment settled. One rating per
// (reservation, rater).
type Rating struct {
	ID            int64     `json:"id"`
	ReservationID int64     `json:"reservation_id"`
	RaterID       int64     `json:"rater_id"`
	RateeID       int64     `json:"ratee_id"`
	Score         int       `json:"score"` // 1..5
	Comment       string    `json:"comment"`
	CreatedAt     time.Time `json:"created_at"`
}
