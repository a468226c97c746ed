package models

import "time"

// Attachment is an evidence file stored alongside a case.
type Attachment struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
