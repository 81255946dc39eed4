/*
Package engine wires every storage layer together into one open/close
lifecycle: pkg/tm, pkg/pagecache, pkg/wal, pkg/recovery (run only after
an unclean shutdown), pkg/dm, pkg/locktable, pkg/vm, and pkg/catalog.
It owns the four files a database directory holds:

	quill.data  page file           (pkg/pagecache)
	quill.log   write-ahead log     (pkg/wal)
	quill.xid   transaction status  (pkg/tm)
	quill.bt    catalog boot file   (pkg/catalog)

and the page-one validity marker (pkg/page's SetVcOpen/SetVcClose/CheckVc) that
decides whether Open must run recovery before the engine is usable.
*/
package engine
