package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/shelfplayapp/shelfplay-server/internal/config"
	"github.com/shelfplayapp/shelfplay-server/internal/domain"
	"github.com/shelfplayapp/shelfplay-server/internal/logger"
	"github.com/shelfplayapp/shelfplay-server/internal/shelf"
	"github.com/shelfplayapp/shelfplay-server/internal/store"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the database store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Metadata.BasePath, "db")
	db, err := store.New(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	return &StoreHandle{Store: db}, nil
}

// ProvideShelf provides the book cache repository.
func ProvideShelf(i do.Injector) (*shelf.Repository, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	compare := domain.Compare
	if cfg.Shelf.SortBy == "recent" {
		compare = domain.CompareByLastPlayed
	}

	repo := shelf.New(storeHandle.Store,
		shelf.WithLogger(log.Logger),
		shelf.WithSortOrder(compare),
	)
	return repo, nil
}
