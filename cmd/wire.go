package cmd

import (
	"cern-sync/core/config"
	"cern-sync/core/httpclient"
	"cern-sync/core/storage"
	"cern-sync/feature/groups"
	"cern-sync/feature/identity/authz"
	"cern-sync/feature/identity/directory"
	"cern-sync/feature/identity/reconcile"
	"cern-sync/feature/identity/reindex"
	"cern-sync/feature/identity/store"
	usersync "cern-sync/feature/identity/sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// buildSyncServices wires the users and groups sync services from the
// configuration. Sources that fail validation are left unconfigured rather
// than fatal: the run fails only when the selected source is missing.
func buildSyncServices(cfg *config.Config, db *gorm.DB, logg *zap.Logger) (*usersync.Service, *groups.Service) {
	httpClient := httpclient.New(cfg.Http)

	var authzSource usersync.AuthzSource
	var groupsSource groups.Source
	if err := cfg.Authz.Validate(); err == nil {
		tokens := authz.NewTokenProvider(cfg.Authz, httpClient)
		svc := authz.NewService(cfg.Authz, httpClient, tokens, logg)
		authzSource = svc
		groupsSource = svc
	} else {
		logg.Warn("AuthZ source not configured", zap.Error(err))
	}

	var ldapSource usersync.DirectorySource
	if err := cfg.Directory.Validate(); err == nil {
		ldapSource = directory.NewService(cfg.Directory, logg)
	} else {
		logg.Warn("LDAP source not configured", zap.Error(err))
	}

	var archive storage.Client
	if cfg.Storage.Enabled() {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			logg.Warn("Report archive unavailable", zap.Error(err))
		} else {
			archive = client
		}
	}

	engine := reconcile.NewEngine(store.NewAccountStore(db), logg)
	reindexer := reindex.New(cfg.Sync.ReindexURL, httpClient, logg)

	usersService := usersync.NewService(cfg.Sync, authzSource, ldapSource, engine, reindexer, archive, cfg.Storage, logg)
	groupsService := groups.NewService(groupsSource, db, logg)
	return usersService, groupsService
}
