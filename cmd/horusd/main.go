package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/horus.go/pkg/bridge"
	"github.com/robotalks/horus.go/pkg/env"
	fx "github.com/robotalks/horus.go/pkg/framework"
)

func init() {
	env.SetupFlags()
}

func main() {
	flag.Parse()
	defer glog.Flush()

	conf := env.NewConfig()
	id := conf.MustBoardID()
	b := conf.NewBoard()
	// the board may be plugged in later and connected with board/connect.
	if err := b.Connect(); err != nil {
		glog.Warningf("board not connected: %v", err)
	}

	var br *bridge.Bridge
	if conf.MQTTBrokerURL != "" {
		q, err := bridge.NewMQTTQueue(conf.MQTTBrokerURL, id)
		if err != nil {
			glog.Exitf("invalid MQTT URL %q: %v", conf.MQTTBrokerURL, err)
		}
		br = bridge.New(id, b, q)
	} else {
		br = bridge.New(id, b, nil)
	}

	runner := fx.NewRunner().HandleSignals().Go(br)
	if conf.WebsocketAddr != "" {
		runner.Go(br.WebsocketServer(conf.WebsocketAddr))
	}
	err := runner.Wait()
	if derr := b.Disconnect(); derr != nil {
		glog.Errorf("disconnect: %v", derr)
	}
	if err != nil {
		glog.Exit(err)
	}
}
