package preview

import (
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/kirillkom/request-classifier-console/internal/core/domain"
	"github.com/kirillkom/request-classifier-console/internal/core/ports"
)

// Registry is the process-wide table of viewable resources. A handle stays
// resolvable until it is revoked; tokens are random and never reused.
type Registry struct {
	basePath string

	mu        sync.RWMutex
	resources map[string]domain.File
}

func NewRegistry(basePath string) *Registry {
	if basePath == "" {
		basePath = "/preview/content/"
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	return &Registry{
		basePath:  basePath,
		resources: make(map[string]domain.File),
	}
}

func (r *Registry) Acquire(file domain.File) ports.PreviewHandle {
	id := uuid.NewString()

	r.mu.Lock()
	r.resources[id] = file
	r.mu.Unlock()

	return ports.PreviewHandle{ID: id, URL: r.basePath + id}
}

func (r *Registry) Revoke(id string) {
	r.mu.Lock()
	delete(r.resources, id)
	r.mu.Unlock()
}

func (r *Registry) Open(id string) (domain.File, error) {
	r.mu.RLock()
	file, ok := r.resources[id]
	r.mu.RUnlock()
	if !ok {
		return domain.File{}, domain.WrapError(domain.ErrPreviewNotFound, "open preview", errUnknownHandle(id))
	}
	return file, nil
}

func (r *Registry) Live() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.resources)
}

type errUnknownHandle string

func (e errUnknownHandle) Error() string {
	return "unknown handle " + string(e)
}
