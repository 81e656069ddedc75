package seeds

import (
	"gorm.io/gorm"
)

func RunAllSeeds(db *gorm.DB) {
	SeedDemoFromJSON(db, "internals/seeds/data_demo.json")
}
