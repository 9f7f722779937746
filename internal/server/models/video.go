package models

import "time"

// WatchedVideo is one entry of a user's watch history.
type WatchedVideo struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	VideoFile   string    `json:"videoFile"`
	Thumbnail   string    `json:"thumbnail"`
	Duration    float64   `json:"duration"`
	Views       int64     `json:"views"`
	Owner       Owner     `json:"owner"`
	WatchedAt   time.Time `json:"watchedAt"`
}
