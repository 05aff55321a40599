package store

import (
	"gorm.io/gorm"

	"github.com/vivekpraj/website-to-chatbot/internal/model"
)

// datastore implements the Factory interface.
type datastore struct {
	db *gorm.DB
}

// NewFactory creates a storage factory on top of a GORM connection.
func NewFactory(db *gorm.DB) (Factory, error) {
	ds := &datastore{db}
	if err := ds.autoMigrate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// Bots returns the bot store.
func (ds *datastore) Bots() BotStore {
	return newBots(ds.db)
}

// autoMigrate migrates the database schema. The unique index on
// website_url is what makes bot creation idempotent under races.
func (ds *datastore) autoMigrate() error {
	return ds.db.AutoMigrate(
		&model.Bot{},
	)
}

// Close closes the factory and underlying connections.
func (ds *datastore) Close() error {
	return nil
}
