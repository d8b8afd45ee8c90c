package common

import (
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ConnectDb abre o arquivo SQLite da aplicação.
func ConnectDb(dbFile string) (*gorm.DB, error) {
	Logger.Infof("opening sqlite db at: %s", dbFile)
	return OpenSqlite(dbFile)
}

// OpenSqlite abre um banco SQLite com uma única conexão. O SQLite já serializa
// as escritas, e ":memory:" só é compartilhado dentro da mesma conexão.
func OpenSqlite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger: logger.New(Logger, logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		}),
	})
	if err != nil {
		Logger.WithError(err).Error("Error opening sqlite db")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
