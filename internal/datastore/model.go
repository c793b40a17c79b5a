// model.go this code defines the data model for the application
package datastore

import "time"

// Image source values for LandmarkImage.Source
const (
	ImageSourceUpload  = "upload"
	ImageSourceScraped = "scraped"
)

// Training run status values
const (
	RunStatusProcessing = "processing"
	RunStatusSuccess    = "success"
	RunStatusFailed     = "failed"
)

// Landmark represents a catalogued point of interest. The name is a
// normalized lower-snake-case key and is unique and immutable once created;
// coordinates are set exactly once at creation.
type Landmark struct {
	ID         uint    `gorm:"primaryKey"`
	Name       string  `gorm:"uniqueIndex;not null"`
	Latitude   float64 `gorm:"not null"`
	Longitude  float64 `gorm:"not null"`
	Summary    *string `gorm:"type:text"`
	WikidataID *string
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Images []LandmarkImage `gorm:"foreignKey:LandmarkID;constraint:OnDelete:CASCADE"`
}

// LandmarkImage represents one acquired or uploaded training image,
// exclusively owned by its Landmark.
type LandmarkImage struct {
	ID           uint   `gorm:"primaryKey"`
	LandmarkID   uint   `gorm:"index;not null;constraint:OnDelete:CASCADE,OnUpdate:CASCADE;foreignKey:LandmarkID;references:ID"`
	RelativePath string `gorm:"not null"`
	Source       string `gorm:"type:varchar(20);not null"` // "upload" or "scraped"
	CreatedAt    time.Time
}

// TrainingRun represents one invocation of the external trainer. Runs are
// append-only: a run transitions from processing into exactly one terminal
// state and is never reopened.
type TrainingRun struct {
	ID         uint   `gorm:"primaryKey"`
	ModelName  string `gorm:"not null"`
	Epochs     int    `gorm:"not null"`
	ImageCount *int
	Accuracy   *float64
	Loss       *float64
	Status     string `gorm:"type:varchar(20);index;not null"` // processing, success or failed
	Message    string `gorm:"type:text"`
	StartedAt  time.Time
	FinishedAt *time.Time
}

// IsTerminal reports whether the run has reached a terminal state.
func (r *TrainingRun) IsTerminal() bool {
	return r.Status == RunStatusSuccess || r.Status == RunStatusFailed
}
