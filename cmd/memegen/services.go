package main

import (
	"context"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dimonomid/memegen/catalog"
	"github.com/dimonomid/memegen/export"
	"github.com/dimonomid/memegen/kvstore"
	"github.com/dimonomid/memegen/log"
	"github.com/dimonomid/memegen/render"
	"github.com/juju/errors"
)

// offlineCacheTTL is used as the catalog cache TTL in offline mode, so that
// whatever is cached is used regardless of its age.
const offlineCacheTTL = 100 * 365 * 24 * time.Hour

var errOffline = errors.New("offline mode, not fetching templates")

type offlineFetcher struct{}

func (offlineFetcher) Fetch(ctx context.Context) ([]catalog.Template, error) {
	return nil, errors.Trace(errOffline)
}

// services is everything memegen needs besides the UI; both the TUI and the
// headless mode use the same set.
type services struct {
	store      *kvstore.FileStore
	catalog    *catalog.Manager
	loader     *render.CachingLoader
	compositor *render.Compositor
	exporter   *export.Exporter
}

type servicesParams struct {
	cfg     *Config
	homeDir string

	// offline means the catalog is never fetched, only the cached one is used.
	offline bool

	clipboard export.Clipboard

	// catalogUpdatesCh is passed to the catalog manager as is, may be nil.
	catalogUpdatesCh chan<- catalog.Update

	logger *log.Logger
}

func newServices(params servicesParams) (*services, error) {
	cfg := params.cfg

	store, err := kvstore.NewFileStore(kvstore.FileStoreParams{
		Filename: expandHomeDir(cfg.StorePath, params.homeDir),
	})
	if err != nil {
		return nil, errors.Annotatef(err, "opening store")
	}

	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	var fetcher catalog.Fetcher = catalog.NewImgflipFetcher(catalog.ImgflipFetcherParams{
		URL:    cfg.APIURL,
		Client: httpClient,
	})
	cacheTTL := cfg.CacheTTL
	if params.offline {
		fetcher = offlineFetcher{}
		cacheTTL = offlineCacheTTL
	}

	catalogMgr := catalog.NewManager(catalog.ManagerParams{
		Fetcher:   fetcher,
		Store:     store,
		CacheTTL:  cacheTTL,
		UpdatesCh: params.catalogUpdatesCh,
		Logger:    params.logger,
	})

	loader := render.NewCachingLoader(render.CachingLoaderParams{
		Loader: render.NewHTTPLoader(render.HTTPLoaderParams{
			Client: httpClient,
			Logger: params.logger,
		}),
	})

	compositor := render.NewCompositor(render.CompositorParams{
		Loader: loader,
		Logger: params.logger,
	})

	exporter := export.NewExporter(export.ExporterParams{
		Renderer:     compositor,
		Clipboard:    params.clipboard,
		Dir:          expandHomeDir(cfg.ExportDir, params.homeDir),
		ShareBaseURL: cfg.ShareBaseURL,
		Logger:       params.logger,
	})

	return &services{
		store:      store,
		catalog:    catalogMgr,
		loader:     loader,
		compositor: compositor,
		exporter:   exporter,
	}, nil
}

// expandHomeDir replaces the leading ~ with the home dir.
func expandHomeDir(path, homeDir string) string {
	if path == "~" {
		return homeDir
	}

	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir, path[2:])
	}

	return path
}
