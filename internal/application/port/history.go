package port

import "context"

// HistoryNotifier receives visit notifications from the browser facade.
// Calls are fire-and-forget: failures are logged by the caller and never
// fail the primary operation.
type HistoryNotifier interface {
	RecordVisit(ctx context.Context, url, title string) error
	UpdateTitle(ctx context.Context, url, title string) error
}
