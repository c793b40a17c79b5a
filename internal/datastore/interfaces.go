// interfaces.go: this code defines the interface for the database operations
package datastore

import (
	"log"
	"os"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/divyasajjan/landmark-finder/internal/conf"
	"github.com/divyasajjan/landmark-finder/internal/errors"
)

// ErrLandmarkNotFound is returned when a landmark lookup finds no row.
var ErrLandmarkNotFound = errors.NewStd("landmark not found")

// ErrDuplicateLandmark is returned when a create violates the unique name
// constraint, typically in a concurrent get-or-create race.
var ErrDuplicateLandmark = errors.NewStd("landmark already exists")

// Interface abstracts the underlying database implementation and defines
// the operations the pipeline needs.
type Interface interface {
	Open() error
	Close() error

	GetLandmark(name string) (*Landmark, error)
	CreateLandmark(landmark *Landmark) error
	SaveLandmark(landmark *Landmark) error
	GetAllLandmarks() ([]Landmark, error)

	SaveLandmarkImage(image *LandmarkImage) error
	BulkCreateLandmarkImages(images []LandmarkImage) error
	DeleteLandmarkImage(landmarkID uint, relativePath string) error
	GetLandmarkImages(landmarkID uint) ([]LandmarkImage, error)

	CreateTrainingRun(run *TrainingRun) error
	SaveTrainingRun(run *TrainingRun) error
	GetTrainingRuns(limit int) ([]TrainingRun, error)
}

// DataStore implements Interface using a GORM database.
type DataStore struct {
	DB *gorm.DB
}

// New creates a new datastore instance based on the provided settings.
func New(settings *conf.Settings) Interface {
	return &SQLiteStore{Settings: settings}
}

// GetLandmark retrieves a landmark by its normalized name.
func (ds *DataStore) GetLandmark(name string) (*Landmark, error) {
	var landmark Landmark
	if err := ds.DB.Where("name = ?", name).First(&landmark).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLandmarkNotFound
		}
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("landmark", name).
			Build()
	}
	return &landmark, nil
}

// CreateLandmark inserts a new landmark. A unique-constraint violation is
// reported as ErrDuplicateLandmark so callers can resolve the race by
// re-reading instead of failing.
func (ds *DataStore) CreateLandmark(landmark *Landmark) error {
	if err := ds.DB.Create(landmark).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateLandmark
		}
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("landmark", landmark.Name).
			Build()
	}
	return nil
}

// SaveLandmark persists changes to an existing landmark.
func (ds *DataStore) SaveLandmark(landmark *Landmark) error {
	if err := ds.DB.Save(landmark).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("landmark", landmark.Name).
			Build()
	}
	return nil
}

// GetAllLandmarks retrieves all landmarks ordered by name.
func (ds *DataStore) GetAllLandmarks() ([]Landmark, error) {
	var landmarks []Landmark
	if err := ds.DB.Order("name ASC").Find(&landmarks).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return landmarks, nil
}

// SaveLandmarkImage records a single acquired image.
func (ds *DataStore) SaveLandmarkImage(image *LandmarkImage) error {
	if err := ds.DB.Create(image).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("relative_path", image.RelativePath).
			Build()
	}
	return nil
}

// BulkCreateLandmarkImages records a batch of images in one transaction.
func (ds *DataStore) BulkCreateLandmarkImages(images []LandmarkImage) error {
	if len(images) == 0 {
		return nil
	}
	if err := ds.DB.Create(&images).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("count", len(images)).
			Build()
	}
	return nil
}

// DeleteLandmarkImage removes the record for a corpus file, used by the
// deduplicator after a hard delete on disk.
func (ds *DataStore) DeleteLandmarkImage(landmarkID uint, relativePath string) error {
	err := ds.DB.
		Where("landmark_id = ? AND relative_path = ?", landmarkID, relativePath).
		Delete(&LandmarkImage{}).Error
	if err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("relative_path", relativePath).
			Build()
	}
	return nil
}

// GetLandmarkImages retrieves all image records for a landmark.
func (ds *DataStore) GetLandmarkImages(landmarkID uint) ([]LandmarkImage, error) {
	var images []LandmarkImage
	if err := ds.DB.Where("landmark_id = ?", landmarkID).Find(&images).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("landmark_id", landmarkID).
			Build()
	}
	return images, nil
}

// CreateTrainingRun inserts a new training run record.
func (ds *DataStore) CreateTrainingRun(run *TrainingRun) error {
	if err := ds.DB.Create(run).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("model_name", run.ModelName).
			Build()
	}
	return nil
}

// SaveTrainingRun persists status and metric changes on a run.
func (ds *DataStore) SaveTrainingRun(run *TrainingRun) error {
	if err := ds.DB.Save(run).Error; err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("run_id", run.ID).
			Build()
	}
	return nil
}

// GetTrainingRuns retrieves the most recent training runs, newest first.
func (ds *DataStore) GetTrainingRuns(limit int) ([]TrainingRun, error) {
	var runs []TrainingRun
	query := ds.DB.Order("started_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&runs).Error; err != nil {
		return nil, errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Build()
	}
	return runs, nil
}

// performAutoMigration automates database migrations with error handling.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	if err := db.AutoMigrate(&Landmark{}, &LandmarkImage{}, &TrainingRun{}); err != nil {
		return errors.New(err).
			Component("datastore").
			Category(errors.CategoryDatabase).
			Context("db_type", dbType).
			Build()
	}

	if debug {
		log.Printf("%s database connection initialized: %s", dbType, connectionInfo)
	}

	return nil
}

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() gormlogger.Interface {
	return gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold: 200 * time.Millisecond,
			LogLevel:      gormlogger.Warn,
			Colorful:      true,
		},
	)
}
