// ABOUTME: Repository interface for the four diet-experiment tables.
// ABOUTME: Defines the contract CLI, MCP, importer and watcher program against.
package storage

import (
	"io"
	"time"

	"github.com/harperreed/plantfit/internal/models"
	"github.com/harperreed/plantfit/internal/schema"
)

// Repository defines the storage interface for experiment data.
// This interface allows swapping implementations (e.g., for testing).
type Repository interface {
	// Record operations
	Upsert(kind models.TableKind, key schema.Key, fields schema.Fields) (Result, error)
	Update(kind models.TableKind, key schema.Key, fields schema.Fields) (Result, bool, error)
	Delete(kind models.TableKind, key schema.Key) (bool, error)
	Exists(kind models.TableKind, key schema.Key) (bool, error)

	// Reads
	LoadDaily() ([]models.DailyRecord, error)
	LoadNutrition() ([]models.NutritionRecord, error)
	LoadSport() ([]models.SportTestRecord, error)
	LoadBlood() ([]models.BloodTestRecord, error)
	DailyWithMetrics() ([]models.DailyRecord, error)
	Rows(kind models.TableKind) ([]map[string]any, error)

	// Bulk operations
	Clear() error
	DeleteBefore(day time.Time) (int, error)
	LoadDemo(seed uint64, start time.Time) error

	// Documents
	LoadSettings() (models.Settings, error)
	SaveSettings(models.Settings) error
	LoadGoals() (models.Goals, error)
	SaveGoals(models.Goals) error
	LoadMapping() (models.ColumnMapping, error)
	SaveMapping(models.ColumnMapping) error

	// Attachments and backups
	SaveAttachment(kind models.TableKind, key schema.Key, fieldKey, ext string, r io.Reader) (string, error)
	Backups(kind models.TableKind) ([]Backup, error)
	ReadBackup(b Backup) (*Frame, error)

	// Export
	GetAllData() (*ExportData, error)

	// Lifecycle
	Close() error
}
