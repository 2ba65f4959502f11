// Command ufsadmin is a small interactive-ish demo that opens an in-memory
// filesystem, performs a handful of canned operations so the catalog and
// metrics have something to show, then serves the admin debug endpoints
// until interrupted.
package main

import (
	"flag"

	"github.com/nechda/cooptools/admin"
	"github.com/nechda/cooptools/cmn/nlog"
	"github.com/nechda/cooptools/ufs"
)

func main() {
	var addr string
	flag.StringVar(&addr, "admin", ":0", "address to serve /metrics and /debug/state on")
	flag.Parse()

	fs, err := ufs.NewFS()
	if err != nil {
		nlog.Fatalf("open fs: %v", err)
	}
	defer fs.Catalog().Close()

	seed(fs)

	srv := admin.New(func() (any, error) {
		return debugState(fs), nil
	}, fs.Metrics().Registry())

	if err := srv.Serve(addr); err != nil {
		nlog.Fatalf("admin server: %v", err)
	}
}

func seed(fs *ufs.FS) {
	fd := fs.Open("demo.txt", ufs.Create|ufs.Write)
	fs.Write(fd, []byte("hello, userspace filesystem"))
	fs.Close(fd)
}

func debugState(fs *ufs.FS) map[string]any {
	ghosts, err := fs.Catalog().Ghosts()
	if err != nil {
		nlog.Warningf("list ghosts: %v", err)
	}
	return map[string]any{
		"errno":  fs.Errno().String(),
		"ghosts": ghosts,
	}
}
