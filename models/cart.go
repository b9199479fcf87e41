package models

import "time"

// CartItem references a course in the user's cart. Prices shown in the
// cart are display-only; checkout re-reads the catalog for the
// authoritative snapshot.
type CartItem struct {
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
}

type Cart struct {
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updated_at"`
}
