package database

import (
	"fmt"
	"time"

	"construction-backoffice/internal/models"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// GormDB is the primary store. It backs the full feature set including payment
// history, extra work, documents and the audit logs.
type GormDB struct {
	db *gorm.DB
}

func NewGormMySQL(host, port, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}
	return wrapGorm(db)
}

func NewGormPostgres(host, port, user, password, dbname, sslmode string) (*GormDB, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	return wrapGorm(db)
}

func wrapGorm(db *gorm.DB) (*GormDB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}
	return &GormDB{db: db}, nil
}

// NewGormFromDB creates a GormDB wrapper from an existing gorm.DB instance
func NewGormFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates tables using GORM AutoMigrate
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(
		&models.Flat{},
		&models.Payment{},
		&models.ExtraWork{},
		&models.Document{},
		&models.DeleteLog{},
		&models.ChangeLog{},
	)
}

// ListFlats retrieves all flats for a project with their ledger entries
// preloaded in insertion order.
func (gdb *GormDB) ListFlats(projectID string) ([]models.Flat, error) {
	var flats []models.Flat
	err := gdb.db.
		Where("project_id = ?", projectID).
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("ExtraWorks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Order("created_at ASC").
		Find(&flats).Error
	return flats, err
}

// GetFlat retrieves a flat by ID with ledger entries preloaded.
func (gdb *GormDB) GetFlat(id string) (*models.Flat, error) {
	var flat models.Flat
	err := gdb.db.
		Preload("Payments", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("ExtraWorks", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Documents", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Where("id = ?", id).First(&flat).Error
	if err != nil {
		return nil, err
	}
	return &flat, nil
}

// CreateFlat persists a new flat, assigning its identifier if unset.
func (gdb *GormDB) CreateFlat(f *models.Flat) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Status == "" {
		f.Status = models.FlatStatusAvailable
	}
	return gdb.db.Omit(clause.Associations).Create(f).Error
}

// UpdateFlat saves the flat's scalar fields and inserts ledger entries that
// have not been persisted yet. Entries already on disk are left untouched:
// the payment history and extra-work lists are append-only.
func (gdb *GormDB) UpdateFlat(f *models.Flat) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(f).Error; err != nil {
			return err
		}

		for i := range f.Payments {
			// autoCreateTime is only set once a row has been inserted
			if f.Payments[i].CreatedAt.IsZero() {
				f.Payments[i].FlatID = f.ID
				if err := tx.Create(&f.Payments[i]).Error; err != nil {
					return err
				}
			}
		}
		for i := range f.ExtraWorks {
			if f.ExtraWorks[i].ID == 0 {
				f.ExtraWorks[i].FlatID = f.ID
				if err := tx.Create(&f.ExtraWorks[i]).Error; err != nil {
					return err
				}
			}
		}
		for i := range f.Documents {
			if f.Documents[i].ID == 0 {
				f.Documents[i].FlatID = f.ID
				if err := tx.Create(&f.Documents[i]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

// DeleteFlat removes a single flat, logging the deletion.
func (gdb *GormDB) DeleteFlat(id string) error {
	return gdb.db.Transaction(func(tx *gorm.DB) error {
		var flat models.Flat
		if err := tx.Where("id = ?", id).First(&flat).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.DeleteLog{
			FlatID:     flat.ID,
			Block:      flat.Block,
			Floor:      flat.Floor,
			FlatNumber: flat.FlatNumber,
			Scope:      models.DeleteScopeFlat,
			Reason:     models.DeleteReasonManual,
		}).Error; err != nil {
			return err
		}
		return deleteFlatRows(tx, []string{id})
	})
}

// DeleteFlats removes the given flats in one transaction with a DeleteLog row
// per flat. Nothing is removed if any step fails.
func (gdb *GormDB) DeleteFlats(ids []string, scope, reason string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	var deleted int
	err := gdb.db.Transaction(func(tx *gorm.DB) error {
		var flats []models.Flat
		if err := tx.Where("id IN ?", ids).Find(&flats).Error; err != nil {
			return err
		}

		logs := make([]models.DeleteLog, 0, len(flats))
		for _, f := range flats {
			logs = append(logs, models.DeleteLog{
				FlatID:     f.ID,
				Block:      f.Block,
				Floor:      f.Floor,
				FlatNumber: f.FlatNumber,
				Scope:      scope,
				Reason:     reason,
			})
		}
		if len(logs) > 0 {
			if err := tx.Create(&logs).Error; err != nil {
				return err
			}
		}

		if err := deleteFlatRows(tx, ids); err != nil {
			return err
		}
		deleted = len(flats)
		return nil
	})
	return deleted, err
}

// deleteFlatRows removes flats and their child rows. Child deletes are issued
// explicitly so backends migrated without FK constraints stay consistent.
func deleteFlatRows(tx *gorm.DB, ids []string) error {
	if err := tx.Where("flat_id IN ?", ids).Delete(&models.Payment{}).Error; err != nil {
		return err
	}
	if err := tx.Where("flat_id IN ?", ids).Delete(&models.ExtraWork{}).Error; err != nil {
		return err
	}
	if err := tx.Where("flat_id IN ?", ids).Delete(&models.Document{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", ids).Delete(&models.Flat{}).Error
}

// AppendChangeLog records one audit entry.
func (gdb *GormDB) AppendChangeLog(c *models.ChangeLog) error {
	return gdb.db.Create(c).Error
}

// RecentChangeLogs returns the latest audit entries.
func (gdb *GormDB) RecentChangeLogs(limit int) ([]models.ChangeLog, error) {
	var logs []models.ChangeLog
	err := gdb.db.Order("detected_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}

// RecentDeleteLogs returns the latest deletion audit entries.
func (gdb *GormDB) RecentDeleteLogs(limit int) ([]models.DeleteLog, error) {
	var logs []models.DeleteLog
	err := gdb.db.Order("deleted_at DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
