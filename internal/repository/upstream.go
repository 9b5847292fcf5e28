package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/preston-bernstein/football-data-service/internal/providers"
	"github.com/preston-bernstein/football-data-service/internal/synclog"
)

// attempt identifies one upstream call in the sync log.
type attempt struct {
	endpoint string
	resource string
	id       string
}

func idString(id int) string {
	if id == 0 {
		return ""
	}
	return strconv.Itoa(id)
}

// upstream runs source calls and writes exactly one sync log row per call.
type upstream struct {
	source  providers.Source
	syncLog *synclog.Recorder
	now     func() time.Time
}

// call fetches a payload and hands it to apply, which maps and persists it
// and returns how many records it synced. The outcome of fetch plus apply is
// logged once.
func (u *upstream) call(
	ctx context.Context,
	a attempt,
	fetch func(context.Context) (providers.Payload, error),
	apply func(providers.Payload) (int, error),
) error {
	if u.source == nil {
		return providers.ErrProviderUnavailable
	}
	start := u.now()
	payload, err := fetch(ctx)
	synced := 0
	if err == nil {
		synced, err = apply(payload)
	}

	entry := synclog.Entry{
		Endpoint:      a.endpoint,
		ResourceType:  a.resource,
		ResourceID:    a.id,
		Status:        synclog.StatusFor(err),
		RecordsSynced: synced,
		Duration:      u.now().Sub(start),
	}
	if err != nil {
		entry.ErrorMessage = err.Error()
	}
	u.syncLog.Record(ctx, entry)
	return err
}
