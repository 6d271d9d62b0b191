package models

import (
	"time"

	"github.com/google/uuid"
)

// UserConnection and ParticipantConnection record a pairwise relationship
// between two entities within one event. They share a shape but live in
// separate tables keyed on different entity types.
//
// Deduplication is on the ordered triple (event_id, primary_id,
// secondary_id) as stored: (A,B) and (B,A) are distinct records. Queries
// over connections treat the pair symmetrically regardless.

type UserConnection struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_user_conn_pair,priority:1" json:"event_id"`
	PrimaryID   string    `gorm:"size:64;not null;uniqueIndex:idx_user_conn_pair,priority:2" json:"primary_id"`
	SecondaryID string    `gorm:"size:64;not null;uniqueIndex:idx_user_conn_pair,priority:3" json:"secondary_id"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type ParticipantConnection struct {
	ID          string    `gorm:"primaryKey;size:64" json:"id"`
	EventID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_participant_conn_pair,priority:1" json:"event_id"`
	PrimaryID   string    `gorm:"size:64;not null;uniqueIndex:idx_participant_conn_pair,priority:2" json:"primary_id"`
	SecondaryID string    `gorm:"size:64;not null;uniqueIndex:idx_participant_conn_pair,priority:3" json:"secondary_id"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
