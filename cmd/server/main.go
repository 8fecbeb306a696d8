// Command server runs one member of a mumgo cluster:
//
//	server --id N --addrs A1 --addrs A2 ... --wal_dir P --snap_dir P
//
// addrs[id-1] is this member's own bind address.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kingpin/v2"

	"github.com/dyxushuai/mumgo"
	"github.com/dyxushuai/mumgo/raftlog"
)

func main() {
	a := kingpin.New(filepath.Base(os.Args[0]), "One member of a mumgo replicated key-value store cluster.")
	a.HelpFlag.Short('h')

	var (
		id      = a.Flag("id", "This member's node id (1-indexed).").Required().Uint64()
		addrs   = a.Flag("addrs", "Peer address, repeated in node-id order.").Required().Strings()
		walDir  = a.Flag("wal_dir", "Write-ahead log directory.").Required().String()
		snapDir = a.Flag("snap_dir", "Snapshot directory.").Required().String()
	)
	kingpin.MustParse(a.Parse(os.Args[1:]))

	node, err := mumgo.NewNode(mumgo.Config{
		ID:      *id,
		Addrs:   *addrs,
		WALDir:  *walDir,
		SnapDir: *snapDir,
	}, mumgo.WithLogger(raftlog.NewGlog()))
	if err != nil {
		a.Fatalf("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := node.Run(ctx); err != nil {
		a.Fatalf("%v", err)
	}
}
