package storage

import (
	. "mediverse/pkg/mediverse"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Connect(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Post{},
		&Comment{},
		&Thread{},
		&Reply{},
		&Profile{},
		&Roadmap{},
	)

	if err != nil {
		return nil, err
	}

	return db, nil
}
