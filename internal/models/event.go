package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventState string

const (
	EventStateUpcoming   EventState = "UPCOMING"
	EventStateInProgress EventState = "IN_PROGRESS"
	EventStateCompleted  EventState = "COMPLETED"
)

type Event struct {
	gorm.Model
	ID              uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	Title           string     `gorm:"not null" json:"title"`
	Description     string     `json:"description"`
	JoinCode        string     `gorm:"size:8;uniqueIndex;not null" json:"join_code"`
	StartTime       time.Time  `gorm:"not null" json:"start_time"`
	EndTime         time.Time  `gorm:"not null" json:"end_time"`
	MaxParticipants int        `gorm:"not null" json:"max_participants"`
	CurrentState    EventState `gorm:"type:varchar(16);not null;default:'UPCOMING'" json:"current_state"`
	BannerPath      string     `json:"banner_path,omitempty"`
	UserID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Participants []Participant `gorm:"foreignKey:EventID" json:"participants,omitempty"`
}

func (event *Event) BeforeCreate(tx *gorm.DB) (err error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return
}
