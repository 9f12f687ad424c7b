package directory

import (
	"context"
	"fmt"
	"net"
	"time"

	"cern-sync/feature/identity/models"

	"github.com/go-ldap/ldap/v3"
	"go.uber.org/zap"
)

// Service fetches primary user accounts from the LDAP directory.
type Service struct {
	cfg    Config
	logger *zap.Logger
}

// NewService creates an LDAP directory client.
func NewService(cfg Config, logger *zap.Logger) *Service {
	if cfg.BaseDN == "" {
		cfg.BaseDN = DefaultBaseDN
	}
	if cfg.Filter == "" {
		cfg.Filter = DefaultFilter
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 1000
	}
	if cfg.TimeoutSeconds <= 0 {
		cfg.TimeoutSeconds = 30
	}
	return &Service{cfg: cfg, logger: logger}
}

// FetchIdentities runs a paged search over the primary-accounts subtree and
// returns one record per entry. Attribute values are kept as raw byte
// values; the serializer decides which to read.
func (s *Service) FetchIdentities(ctx context.Context) ([]models.DirectoryRecord, error) {
	timeout := time.Duration(s.cfg.TimeoutSeconds) * time.Second

	conn, err := ldap.DialURL(s.cfg.URL, ldap.DialWithDialer(&net.Dialer{Timeout: timeout}))
	if err != nil {
		return nil, fmt.Errorf("directory dial %s: %w", s.cfg.URL, err)
	}
	defer conn.Close()
	conn.SetTimeout(timeout)

	if s.cfg.BindDN != "" {
		if err := conn.Bind(s.cfg.BindDN, s.cfg.BindPassword); err != nil {
			return nil, fmt.Errorf("directory bind as %s: %w", s.cfg.BindDN, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	req := ldap.NewSearchRequest(
		s.cfg.BaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, s.cfg.TimeoutSeconds, false,
		s.cfg.Filter,
		DefaultAttributes,
		nil,
	)

	res, err := conn.SearchWithPaging(req, uint32(s.cfg.PageSize))
	if err != nil {
		return nil, fmt.Errorf("directory search under %s: %w", s.cfg.BaseDN, err)
	}

	s.logger.Debug("Directory search completed", zap.Int("entries", len(res.Entries)))

	records := make([]models.DirectoryRecord, 0, len(res.Entries))
	for _, entry := range res.Entries {
		record := make(models.DirectoryRecord, len(entry.Attributes))
		for _, attr := range entry.Attributes {
			record[attr.Name] = attr.ByteValues
		}
		records = append(records, record)
	}
	return records, nil
}
