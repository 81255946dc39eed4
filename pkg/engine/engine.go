package engine

import (
	"os"
	"path/filepath"

	"github.com/cuemby/quill/pkg/catalog"
	"github.com/cuemby/quill/pkg/config"
	"github.com/cuemby/quill/pkg/dberrors"
	"github.com/cuemby/quill/pkg/dm"
	"github.com/cuemby/quill/pkg/executor"
	"github.com/cuemby/quill/pkg/locktable"
	"github.com/cuemby/quill/pkg/log"
	"github.com/cuemby/quill/pkg/metrics"
	"github.com/cuemby/quill/pkg/page"
	"github.com/cuemby/quill/pkg/pagecache"
	"github.com/cuemby/quill/pkg/recovery"
	"github.com/cuemby/quill/pkg/tm"
	"github.com/cuemby/quill/pkg/vm"
	"github.com/cuemby/quill/pkg/wal"
	"github.com/rs/zerolog"
)

const (
	dataFile = "quill.data"
	logFile  = "quill.log"
	xidFile  = "quill.xid"
	bootFile = "quill.bt"
)

// Engine is the top-level handle for one open database directory.
type Engine struct {
	pc *pagecache.PageCache
	lg *wal.Logger
	tm *tm.TM
	dm *dm.DM
	lt *locktable.LockTable
	vm *vm.VM
	ca *catalog.Catalog
	mc *metrics.Collector

	log zerolog.Logger

	// Recovered reports whether Open ran crash recovery.
	Recovered bool
}

// Open opens (or creates) the database directory at cfg.DataDir,
// running crash recovery first if the previous shutdown was unclean.
func Open(cfg config.Config) (*Engine, error) {
	log.Init(log.Config{Level: cfg.LogLevel, JSONOutput: cfg.LogJSON})
	lgr := log.WithComponent("engine")

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, dberrors.Storage(dberrors.ErrFileCannotRW, "creating data directory")
	}

	tMgr, err := tm.Open(filepath.Join(cfg.DataDir, xidFile))
	if err != nil {
		metrics.RegisterComponent("tm", false, err.Error())
		return nil, err
	}
	metrics.RegisterComponent("tm", true, "open")

	lg, err := wal.Open(filepath.Join(cfg.DataDir, logFile))
	if err != nil {
		metrics.RegisterComponent("wal", false, err.Error())
		tMgr.Close()
		return nil, err
	}
	metrics.RegisterComponent("wal", true, "open")

	pc, err := pagecache.Open(filepath.Join(cfg.DataDir, dataFile), cfg.PageCacheCapacity)
	if err != nil {
		metrics.RegisterComponent("pagecache", false, err.Error())
		lg.Close()
		tMgr.Close()
		return nil, err
	}
	metrics.RegisterComponent("pagecache", true, "open")

	unclean, err := openPageOne(pc)
	if err != nil {
		pc.Close()
		lg.Close()
		tMgr.Close()
		return nil, err
	}

	if unclean {
		lgr.Warn().Msg("unclean shutdown detected, running recovery")
		if err := recovery.Run(pc, lg, tMgr); err != nil {
			pc.Close()
			lg.Close()
			tMgr.Close()
			return nil, err
		}
	}

	d := dm.Open(pc, lg, cfg.ItemCacheCapacity)
	if err := warmPageIndex(pc, d); err != nil {
		pc.Close()
		lg.Close()
		tMgr.Close()
		return nil, err
	}

	lt := locktable.New()
	v := vm.Open(d, tMgr, lt)

	cat, err := catalog.Open(d, v, filepath.Join(cfg.DataDir, bootFile))
	if err != nil {
		pc.Close()
		lg.Close()
		tMgr.Close()
		return nil, err
	}

	e := &Engine{pc: pc, lg: lg, tm: tMgr, dm: d, lt: lt, vm: v, ca: cat, log: lgr, Recovered: unclean}

	if cfg.MetricsOn {
		e.mc = metrics.NewCollector(func() metrics.Stats {
			return metrics.Stats{TableCount: len(e.ca.TableNames())}
		})
		e.mc.Start()
	}

	lgr.Info().Str("dir", cfg.DataDir).Bool("recovered", unclean).Msg("engine opened")
	return e, nil
}

// openPageOne creates page one for a brand-new database, or, for an
// existing one, checks its validity marker and stamps a fresh open
// marker. It returns true if the previous shutdown was unclean.
func openPageOne(pc *pagecache.PageCache) (bool, error) {
	if pc.PageCount() == 0 {
		_, err := pc.NewPage(page.InitPageOneRaw())
		return false, err
	}

	p1, err := pc.GetPage(page.PageOneNo)
	if err != nil {
		return false, err
	}
	p1.Lock()
	unclean := !page.CheckVc(p1.Data)
	page.SetVcOpen(p1.Data)
	p1.SetDirty(true)
	p1.Unlock()
	pc.Release(p1)
	return unclean, nil
}

// warmPageIndex scans every data page (page one excluded) and seeds
// pkg/pageindex's free-space histogram, since d's own index starts
// empty and only learns about pages it allocates itself.
func warmPageIndex(pc *pagecache.PageCache, d *dm.DM) error {
	for pgno := page.PageOneNo + 1; pgno <= pc.PageCount(); pgno++ {
		p, err := pc.GetPage(pgno)
		if err != nil {
			return err
		}
		p.Lock()
		free := page.FreeSpace(p.Data)
		p.Unlock()
		d.IndexPage(pgno, free)
		pc.Release(p)
	}
	return nil
}

// NewExecutor returns a fresh Executor sharing this engine's catalog and
// version manager — one per client connection.
func (e *Engine) NewExecutor() *executor.Executor {
	return executor.New(e.ca, e.vm)
}

// Catalog returns the engine's table/field metadata store, for callers
// (like cmd/quill) that need to inspect a table's schema directly.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.ca
}

// Close flushes every layer and stamps a clean-shutdown marker on page
// one so the next Open does not run recovery.
func (e *Engine) Close() error {
	if e.mc != nil {
		e.mc.Stop()
	}
	metrics.RegisterComponent("tm", false, "closed")
	metrics.RegisterComponent("wal", false, "closed")
	metrics.RegisterComponent("pagecache", false, "closed")
	e.dm.Close()

	p1, err := e.pc.GetPage(page.PageOneNo)
	if err != nil {
		return err
	}
	p1.Lock()
	page.SetVcClose(p1.Data)
	p1.SetDirty(true)
	p1.Unlock()
	e.pc.Release(p1)

	if err := e.pc.Close(); err != nil {
		return err
	}
	if err := e.lg.Close(); err != nil {
		return err
	}
	if err := e.tm.Close(); err != nil {
		return err
	}
	e.log.Info().Msg("engine closed")
	return nil
}
