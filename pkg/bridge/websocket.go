package bridge

import (
	"context"
	"net/http"

	"github.com/golang/glog"
	"golang.org/x/net/websocket"

	fx "github.com/robotalks/horus.go/pkg/framework"
)

// WebsocketHandler streams encoded BoardEvents as binary frames.
func (b *Bridge) WebsocketHandler() http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		sub := b.Hub.Subscribe(16)
		defer sub.Close()
		glog.V(2).Infof("websocket client %s", conn.Request().RemoteAddr)
		for ev := range sub.C() {
			data, err := ev.Encode()
			if err != nil {
				glog.Errorf("encode %s event: %v", ev.Kind, err)
				continue
			}
			if err = websocket.Message.Send(conn, data); err != nil {
				glog.V(2).Infof("websocket client %s: %v", conn.Request().RemoteAddr, err)
				return
			}
		}
	})
}

// WebsocketServer serves WebsocketHandler on addr at /events.
func (b *Bridge) WebsocketServer(addr string) fx.Runnable {
	return fx.NamedRun("websocket", fx.RunFunc(func(ctx context.Context) error {
		mux := http.NewServeMux()
		mux.Handle("/events", b.WebsocketHandler())
		srv := &http.Server{Addr: addr, Handler: mux}
		glog.Infof("serving events on ws://%s/events", addr)
		return fx.RunWithContextCloser(ctx, srv, srv.ListenAndServe)
	}))
}
