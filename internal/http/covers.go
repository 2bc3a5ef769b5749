package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mrlokans/wordbook/internal/covers"
	"github.com/mrlokans/wordbook/internal/notebooks"
)

// CoversController serves notebook covers from the local cache, or sends the
// browser to the backend when there is no cache.
type CoversController struct {
	cache     CoverSource
	resolver  CoverResolver
	notebooks *notebooks.Store
	logger    *zap.Logger
}

// NewCoversController creates a covers controller. cache may be nil.
func NewCoversController(cache CoverSource, resolver CoverResolver, store *notebooks.Store, logger *zap.Logger) *CoversController {
	return &CoversController{cache: cache, resolver: resolver, notebooks: store, logger: logger}
}

// GetCover serves a cached notebook cover image.
// GET /covers/:id
func (cc *CoversController) GetCover(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		respondBadRequest(c, "Invalid notebook ID")
		return
	}

	nb, ok := cc.notebooks.Get(id)
	if !ok || !nb.HasCover() {
		respondNotFound(c, "Cover")
		return
	}

	if cc.cache == nil {
		cc.redirectToBackend(c, nb.Cover)
		return
	}

	cachePath, err := cc.cache.GetCover(c.Request.Context(), id, nb.Cover)
	if err != nil {
		if errors.Is(err, covers.ErrNoCover) {
			respondNotFound(c, "Cover")
			return
		}
		cc.logger.Warn("cover fetch failed", zap.Int64("notebook_id", id), zap.Error(err))
		cc.redirectToBackend(c, nb.Cover)
		return
	}

	c.Header("Cache-Control", "private, max-age=3600")
	c.File(cachePath)
}

func (cc *CoversController) redirectToBackend(c *gin.Context, cover string) {
	if cc.resolver == nil {
		respondNotFound(c, "Cover")
		return
	}
	remote, err := cc.resolver.Resolve(cover)
	if err != nil {
		c.Status(http.StatusBadGateway)
		return
	}
	c.Redirect(http.StatusTemporaryRedirect, remote)
}
