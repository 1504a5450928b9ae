package handlers

import (
	"net/http"

	"gamehub/cache"
	"gamehub/models"
	"gamehub/services"
	"gamehub/utils"

	"github.com/gin-gonic/gin"
)

// catalogHandlers serves one reference entity kind (genres, platforms,
// developers, publishers) over the same five routes.
type catalogHandlers[T any, PT services.CatalogEntry[T]] struct {
	svc   *services.CatalogService[T, PT]
	store *cache.Cache
}

// registerCatalog mounts list/show on public and create/update/delete on admin.
func registerCatalog[T any, PT services.CatalogEntry[T]](public, admin gin.IRouter, path string, svc *services.CatalogService[T, PT], store *cache.Cache) {
	h := catalogHandlers[T, PT]{svc: svc, store: store}
	public.GET(path, h.list)
	public.GET(path+"/:id", h.get)
	admin.POST(path, h.create)
	admin.PUT(path+"/:id", h.update)
	admin.DELETE(path+"/:id", h.remove)
}

func (h catalogHandlers[T, PT]) list(c *gin.Context) {
	ctx := c.Request.Context()
	entries, err := cache.Remember(ctx, h.store, cache.CatalogKey(h.svc.Kind()), cache.CatalogTTL, func() ([]T, error) {
		return h.svc.List(ctx)
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h catalogHandlers[T, PT]) get(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	entry, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (h catalogHandlers[T, PT]) create(c *gin.Context) {
	var input models.CatalogInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	entry, err := h.svc.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	h.store.InvalidateCatalog(c.Request.Context(), h.svc.Kind())
	c.JSON(http.StatusCreated, entry)
}

func (h catalogHandlers[T, PT]) update(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.CatalogInput
	if !utils.BindAndValidate(c, &input) {
		return
	}
	ctx := c.Request.Context()
	entry, err := h.svc.Update(ctx, id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	// cached games embed the entry
	h.store.InvalidateCatalog(ctx, h.svc.Kind())
	h.store.InvalidateGames(ctx)
	c.JSON(http.StatusOK, entry)
}

func (h catalogHandlers[T, PT]) remove(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if err := h.svc.Delete(ctx, id); err != nil {
		respondError(c, err)
		return
	}
	h.store.InvalidateCatalog(ctx, h.svc.Kind())
	h.store.InvalidateGames(ctx)
	c.Status(http.StatusNoContent)
}
