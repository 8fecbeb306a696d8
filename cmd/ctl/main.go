// Command ctl is the client CLI for a running mumgo cluster:
//
//	ctl kv --op {set|get|delete|scan} --key K --value V [--limit N] --kv_addr host:port
//	ctl conf --op {add|remove} --node_id N --url host:port --kv_addr host:port
//
// Unexpected op strings abort with a diagnostic.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.etcd.io/raft/v3/raftpb"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/dyxushuai/mumgo/internal/mumpb"
)

var (
	app = kingpin.New("ctl", "Client CLI for a running mumgo cluster.")

	kvCmd   = app.Command("kv", "Key-value operations.")
	kvOp    = kvCmd.Flag("op", "One of set, get, delete, scan.").Required().Enum("set", "get", "delete", "scan")
	kvKey   = kvCmd.Flag("key", "Key.").String()
	kvValue = kvCmd.Flag("value", "Value, for set.").String()
	kvLimit = kvCmd.Flag("limit", "Maximum pairs returned by scan.").Default("10").Uint32()
	kvAddr  = kvCmd.Flag("kv_addr", "host:port of any cluster member.").Required().String()

	confCmd    = app.Command("conf", "Cluster membership changes.")
	confOp     = confCmd.Flag("op", "One of add, remove.").Required().Enum("add", "remove")
	confNodeID = confCmd.Flag("node_id", "Node id to add or remove.").Required().Uint64()
	confURL    = confCmd.Flag("url", "New member's host:port, for add.").String()
	confAddr   = confCmd.Flag("kv_addr", "host:port of any cluster member.").Required().String()
)

func main() {
	app.HelpFlag.Short('h')
	switch kingpin.MustParse(app.Parse(os.Args[1:])) {
	case kvCmd.FullCommand():
		runKV()
	case confCmd.FullCommand():
		runConf()
	}
}

func dial(addr string) mumpb.MumClient {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		app.Fatalf("dial %s: %v", addr, err)
	}
	return mumpb.NewMumClient(conn)
}

func runKV() {
	var opType mumpb.OpType
	switch *kvOp {
	case "set":
		opType = mumpb.OpSet
	case "get":
		opType = mumpb.OpGet
	case "delete":
		opType = mumpb.OpDel
	case "scan":
		opType = mumpb.OpScan
	}

	client := dial(*kvAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Op(ctx, &mumpb.OpRequest{
		Type:  opType,
		Key:   []byte(*kvKey),
		Value: []byte(*kvValue),
		Limit: *kvLimit,
	})
	if err != nil {
		app.Fatalf("op: %v", err)
	}
	for _, kv := range resp.Kvs {
		fmt.Printf("%s=%s\n", kv.Key, kv.Value)
	}
}

func runConf() {
	var ccType raftpb.ConfChangeType
	switch *confOp {
	case "add":
		ccType = raftpb.ConfChangeAddNode
	case "remove":
		ccType = raftpb.ConfChangeRemoveNode
	}

	client := dial(*confAddr)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := client.Conf(ctx, &mumpb.ConfRequest{
		Change: raftpb.ConfChange{
			Type:    ccType,
			NodeID:  *confNodeID,
			Context: []byte(*confURL),
		},
	})
	if err != nil {
		app.Fatalf("conf: %v", err)
	}
}
