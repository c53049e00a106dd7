package model

import (
	"fmt"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/Laisky/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/agentsim/simcheck/common"
	"github.com/agentsim/simcheck/common/config"
	"github.com/agentsim/simcheck/common/logger"
	"github.com/agentsim/simcheck/common/random"
)

var DB *gorm.DB

var (
	// ErrNotFound covers both missing rows and rows owned by another user.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique field is already taken.
	ErrDuplicate = errors.New("record already exists")
)

const sqliteBusyTimeoutMs = 5000

func openSQLite(path string) (*gorm.DB, error) {
	var dsn string
	if path == "" {
		// each in-memory database gets its own name so parallel servers never share state
		dsn = fmt.Sprintf("file:refbackend-%s?mode=memory&cache=shared&_busy_timeout=%d", random.GetUUID(), sqliteBusyTimeoutMs)
		logger.Logger.Info("REFSERVER_SQLITE_PATH not set, using in-memory SQLite")
	} else {
		dsn = fmt.Sprintf("%s?_busy_timeout=%d", path, sqliteBusyTimeoutMs)
		logger.Logger.Info("using SQLite file", zap.String("path", path))
	}

	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt: true,
		Logger:      gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// InitDB opens the database at path (in memory when empty), migrates it and seeds the admin account.
func InitDB(path string) error {
	db, err := openSQLite(path)
	if err != nil {
		return errors.Wrap(err, "open sqlite")
	}
	if config.DebugEnabled {
		db = db.Debug()
	}

	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql.DB")
	}
	// a single connection keeps the shared in-memory database alive and serialises writers
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	DB = db
	if err = migrateDB(); err != nil {
		return errors.Wrap(err, "migrate database")
	}
	logger.Logger.Info("database schema migrated")
	return nil
}

// CloseDB releases the database handle.
func CloseDB() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return errors.WithStack(err)
	}
	DB = nil
	return errors.WithStack(sqlDB.Close())
}

func migrateDB() error {
	var err error
	if err = DB.AutoMigrate(&User{}); err != nil {
		return errors.Wrapf(err, "failed to migrate User")
	}
	if err = DB.AutoMigrate(&Agent{}); err != nil {
		return errors.Wrapf(err, "failed to migrate Agent")
	}
	if err = DB.AutoMigrate(&SavedAgent{}); err != nil {
		return errors.Wrapf(err, "failed to migrate SavedAgent")
	}
	if err = DB.AutoMigrate(&SimulationState{}); err != nil {
		return errors.Wrapf(err, "failed to migrate SimulationState")
	}
	if err = DB.AutoMigrate(&Conversation{}); err != nil {
		return errors.Wrapf(err, "failed to migrate Conversation")
	}
	if err = DB.AutoMigrate(&ObserverMessage{}); err != nil {
		return errors.Wrapf(err, "failed to migrate ObserverMessage")
	}
	return nil
}

// CreateAdminIfNeed seeds the administrative account used by the primary login.
func CreateAdminIfNeed(email, password string) error {
	var count int64
	if err := DB.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return errors.Wrap(err, "count admin users")
	}
	if count > 0 {
		return nil
	}

	logger.Logger.Info("no admin user exists, creating one", zap.String("email", email))
	hashed, err := common.Password2Hash(password)
	if err != nil {
		return errors.WithStack(err)
	}
	admin := User{
		ID:           random.NewID(),
		Email:        email,
		Name:         "Administrator",
		PasswordHash: hashed,
		CreatedAt:    time.Now().UTC(),
	}
	return errors.Wrap(DB.Create(&admin).Error, "create admin user")
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
