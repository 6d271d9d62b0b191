package models

import (
	"time"

	"github.com/google/uuid"
)

// Participant is a per-event identity. UserID is nil for guests.
//
// The two unique indexes are the storage-level enforcement for the
// double-join and duplicate-name races: concurrent inserts for the same
// (event, user) or (event, name) pair cannot both commit.
type Participant struct {
	ID        string     `gorm:"primaryKey;size:64" json:"id"`
	EventID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_participants_event_name,priority:1;uniqueIndex:idx_participants_event_user,priority:1" json:"event_id"`
	UserID    *uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_participants_event_user,priority:2" json:"user_id"`
	Name      string     `gorm:"not null;uniqueIndex:idx_participants_event_name,priority:2" json:"name"`
	CreatedAt time.Time  `json:"created_at"`
}

func (p *Participant) IsGuest() bool {
	return p.UserID == nil
}
