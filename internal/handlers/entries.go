package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/filecache/internal/cache"
	appErrors "github.com/charlesng35/filecache/pkg/errors"
	"github.com/charlesng35/filecache/pkg/response"
)

// EntryReader is the read-only view of the cache engine served over HTTP.
type EntryReader interface {
	Entry(ctx context.Context, key string) (*cache.Entry, error)
	Entries(ctx context.Context) ([]cache.Entry, error)
	Count(ctx context.Context) (int64, error)
}

// EntriesHandler exposes cache entries to operators.
type EntriesHandler struct {
	cache EntryReader
}

// NewEntriesHandler constructs an EntriesHandler.
func NewEntriesHandler(reader EntryReader) *EntriesHandler {
	return &EntriesHandler{cache: reader}
}

type entryPayload struct {
	Key       string    `json:"key"`
	FileName  string    `json:"file_name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
}

func toPayload(entry cache.Entry) entryPayload {
	return entryPayload{
		Key:       entry.Key,
		FileName:  entry.FileName,
		Path:      entry.Path,
		CreatedAt: entry.CreatedAt,
	}
}

// GET /api/entries
func (h *EntriesHandler) List(c *gin.Context) {
	entries, err := h.cache.Entries(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	data := make([]entryPayload, 0, len(entries))
	for _, entry := range entries {
		data = append(data, toPayload(entry))
	}
	response.SuccessWithMeta(c, http.StatusOK, data, &response.Meta{Total: int64(len(data))})
}

// GET /api/entries/:key
func (h *EntriesHandler) Get(c *gin.Context) {
	key := c.Param("key")
	entry, err := h.cache.Entry(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	if entry == nil {
		response.Error(c, appErrors.ErrNotFound.WithMessage("no entry for key "+key))
		return
	}
	response.Success(c, http.StatusOK, toPayload(*entry))
}
