package reindex

import (
	"context"
	"encoding/json"

	"cern-sync/core/httpclient"

	"go.uber.org/zap"
)

// Submitter receives the account ids touched by a sync run so downstream
// search indexes can refresh them.
type Submitter interface {
	Submit(ctx context.Context, ids []uint)
}

// New returns an HTTP submitter posting to the given URL, or a no-op
// submitter when the URL is empty.
func New(url string, client *httpclient.Client, logger *zap.Logger) Submitter {
	if url == "" {
		return noop{}
	}
	return &httpSubmitter{url: url, client: client, logger: logger}
}

type httpSubmitter struct {
	url    string
	client *httpclient.Client
	logger *zap.Logger
}

// Submit posts the id batch. Failures are logged and swallowed: reindexing
// is best-effort and must never fail a completed sync run.
func (s *httpSubmitter) Submit(ctx context.Context, ids []uint) {
	if len(ids) == 0 {
		return
	}
	body, err := json.Marshal(map[string][]uint{"ids": ids})
	if err != nil {
		s.logger.Error("Failed to encode reindex request", zap.Error(err))
		return
	}
	if _, err := s.client.PostJSON(ctx, s.url, body, nil); err != nil {
		s.logger.Error("Failed to submit reindex request",
			zap.String("url", s.url),
			zap.Int("ids", len(ids)),
			zap.Error(err))
		return
	}
	s.logger.Info("Submitted accounts for reindexing", zap.Int("ids", len(ids)))
}

type noop struct{}

func (noop) Submit(context.Context, []uint) {}
