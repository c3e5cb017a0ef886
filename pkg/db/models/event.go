package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angelmondragon/splitwallet-backend/pkg/enums"
)

// Event is a shared-cost occasion (trip, household, party) owned by one user.
type Event struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID     uuid.UUID      `gorm:"column:owner_id;type:uuid;not null;uniqueIndex:idx_events_owner_title,priority:1"`
	Title       string         `gorm:"column:title;not null;uniqueIndex:idx_events_owner_title,priority:2"`
	Description string         `gorm:"column:description"`
	Location    string         `gorm:"column:location;not null;default:''"`
	StartDate   time.Time      `gorm:"column:start_date;type:date;not null"`
	EndDate     time.Time      `gorm:"column:end_date;type:date;not null"`
	Currency    enums.Currency `gorm:"column:currency;not null;default:'INR'"`
	CreatedAt   time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Event) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// Member participates in exactly one event.
type Member struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	EventID   uuid.UUID `gorm:"column:event_id;type:uuid;not null;uniqueIndex:idx_members_event_name,priority:1"`
	Name      string    `gorm:"column:name;not null;uniqueIndex:idx_members_event_name,priority:2"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (m *Member) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
