package authz

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"runtime"
	"time"

	"cern-sync/core/httpclient"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// IdentityFields is the field set requested for every identity record.
var IdentityFields = []string{
	"upn",         // username <johndoe>
	"displayName", // John Doe
	"firstName",
	"lastName",
	"personId", // unique, never changes except to correct mistakes
	"uid",      // computing account user id
	"gid",      // computing account group id
	"cernDepartment",
	"cernGroup",
	"cernSection",
	"instituteName",
	"preferredCernLanguage",
	"orcid",
	"postOfficeBox",
	"primaryAccountEmail",
}

// GroupFields is the field set requested for every group record.
var GroupFields = []string{
	"groupIdentifier",
	"displayName",
	"description",
}

// Service queries the CERN AuthZ service.
type Service struct {
	cfg    Config
	client *httpclient.Client
	tokens *TokenProvider
	logger *zap.Logger
}

// NewService creates an AuthZ client.
func NewService(cfg Config, client *httpclient.Client, tokens *TokenProvider, logger *zap.Logger) *Service {
	if cfg.Limit <= 0 {
		cfg.Limit = 1000
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 3
	}
	return &Service{cfg: cfg, client: client, tokens: tokens, logger: logger}
}

// FetchIdentities retrieves all user identities: persons (type:Person) with
// a primary account (source:cern) actively at CERN (activeUser:true).
// A non-empty since (YYYY-MM-DD) restricts to identities modified since that
// date. Records are returned in no particular cross-page order.
func (s *Service) FetchIdentities(ctx context.Context, since string) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprint(s.cfg.Limit))
	params["filter"] = []string{"type:Person", "source:cern", "activeUser:true"}
	params["field"] = IdentityFields
	if since != "" {
		if _, err := time.Parse("2006-01-02", since); err != nil {
			return nil, fmt.Errorf("invalid since date %q: %w", since, err)
		}
		params.Add("filter", "modificationTime:gt:"+since+"T00:00:00Z")
	}
	return s.fetchAll(ctx, s.cfg.BaseURL+"/api/v1.0/Identity?"+params.Encode())
}

// FetchGroups retrieves all groups, optionally modified since the given date.
func (s *Service) FetchGroups(ctx context.Context, since string) ([]map[string]any, error) {
	params := url.Values{}
	params.Set("limit", fmt.Sprint(s.cfg.Limit))
	params["field"] = GroupFields
	if since != "" {
		if _, err := time.Parse("2006-01-02", since); err != nil {
			return nil, fmt.Errorf("invalid since date %q: %w", since, err)
		}
		params.Add("filter", "modificationTime:gt:"+since+"T00:00:00Z")
	}
	return s.fetchAll(ctx, s.cfg.BaseURL+"/api/v1.0/Group?"+params.Encode())
}

// envelope is the paged collection response shape.
type envelope struct {
	Pagination struct {
		Total int `json:"total"`
	} `json:"pagination"`
	Data []map[string]any `json:"data"`
}

// fetchAll retrieves every page of a collection resource.
//
// The first page is fetched synchronously to learn the total size; the
// remaining offsets fan out across a worker pool bounded by
// min(host parallelism, MaxWorkers). Page batches are merged in completion
// order, so callers must not rely on cross-page ordering. Any page failure
// aborts the whole fetch with the underlying request error.
func (s *Service) fetchAll(ctx context.Context, baseURL string) ([]map[string]any, error) {
	token, err := s.tokens.FetchToken(ctx)
	if err != nil {
		return nil, err
	}
	headers := map[string]string{
		"Authorization": "Bearer " + token,
		"accept":        "application/json",
	}

	first, err := s.fetchPage(ctx, baseURL, 0, headers)
	if err != nil {
		return nil, err
	}
	total := first.Pagination.Total
	records := make([]map[string]any, 0, total)
	records = append(records, first.Data...)

	var offsets []int
	for offset := s.cfg.Limit; offset < total; offset += s.cfg.Limit {
		offsets = append(offsets, offset)
	}
	if len(offsets) == 0 {
		return records, nil
	}

	workers := runtime.NumCPU()
	if workers > s.cfg.MaxWorkers {
		workers = s.cfg.MaxWorkers
	}
	if workers < 1 {
		workers = 1
	}

	s.logger.Debug("Fetching remaining pages",
		zap.Int("total", total),
		zap.Int("pages", len(offsets)),
		zap.Int("workers", workers))

	pages := make(chan []map[string]any, len(offsets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, offset := range offsets {
		offset := offset
		g.Go(func() error {
			page, err := s.fetchPage(gctx, baseURL, offset, headers)
			if err != nil {
				return err
			}
			pages <- page.Data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	close(pages)

	for page := range pages {
		records = append(records, page...)
	}
	return records, nil
}

func (s *Service) fetchPage(ctx context.Context, baseURL string, offset int, headers map[string]string) (*envelope, error) {
	pageURL := fmt.Sprintf("%s&offset=%d", baseURL, offset)
	data, err := s.client.Get(ctx, pageURL, headers)
	if err != nil {
		return nil, err
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid page response from %s: %w", pageURL, err)
	}
	return &env, nil
}
