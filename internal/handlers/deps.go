package handlers

import (
	"gorm.io/gorm"

	"studio-space-backend/internal/auth"
	"studio-space-backend/internal/cache"
	"studio-space-backend/internal/config"
	"studio-space-backend/internal/repo"
	"studio-space-backend/internal/storage"
)

// Deps is everything the handlers need from the process.
type Deps struct {
	DB       *gorm.DB
	Env      config.Env
	Cache    cache.Cache
	Store    storage.Store
	Tokens   *auth.TokenManager
	Events   EventPublisher
	Notifier Notifications
	Google   GoogleAuth
	Agent    Suggester
	Checks   map[string]Pinger
}

type Handlers struct {
	Middleware *auth.Middleware

	Auth      *AuthHandler
	Boards    *BoardHandler
	Tags      *TagHandler
	Images    *ImageHandler
	Share     *ShareHandler
	Users     *UserHandler
	Colors    *ColorHandler
	Assistant *AssistantHandler
	Health    *HealthHandler
}

// New builds the repositories over d.DB and every handler on top of them.
func New(d Deps) *Handlers {
	users := repo.NewUserRepository(d.DB)
	boards := repo.NewBoardRepository(d.DB)
	images := repo.NewImageRepository(d.DB)
	tags := repo.NewTagRepository(d.DB)
	links := repo.NewShareLinkRepository(d.DB)

	janitor := NewBlobJanitor(images, d.Store)
	explore := NewExploreCache(d.Cache, d.Env.ExploreCacheTTL)

	return &Handlers{
		Middleware: auth.NewMiddleware(d.Tokens, users),

		Auth:      NewAuthHandler(users, d.Tokens, d.Google, d.Notifier),
		Boards:    NewBoardHandler(boards, images, d.Tokens, janitor, explore, d.Events, d.Notifier),
		Tags:      NewTagHandler(boards, tags, explore, d.Events),
		Images:    NewImageHandler(boards, images, d.Store, janitor, d.Events, int64(d.Env.MaxUploadBytes)),
		Share:     NewShareHandler(boards, images, links, d.Env.FrontendURL),
		Users:     NewUserHandler(users, boards, images, janitor, explore, d.Notifier),
		Colors:    NewColorHandler(),
		Assistant: NewAssistantHandler(boards, images, d.Agent),
		Health:    NewHealthHandler(d.Checks),
	}
}
