package port

import "context"

// DownloadEngine owns content transfers. The facade only forwards
// requests; progress and completion report back through the engine's own
// surface, never through this core's locks.
type DownloadEngine interface {
	Start(ctx context.Context, url, fileName string) (id string, err error)
	Cancel(ctx context.Context, id string) error
}
