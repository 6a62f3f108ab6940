package internal

import (
	"taskmaster/task-api/config"
	"taskmaster/task-api/internal/service"
	"taskmaster/task-api/internal/store"

	"gorm.io/gorm"
)

// Deps is everything a handler may reach for
type Deps struct {
	DB       *gorm.DB
	Settings config.Settings
	Users    *store.Users
	Auth     *service.Auth
	Sessions *service.Sessions
	Tasks    *service.Tasks
}
