package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/horus.go/pkg/events"
	"github.com/robotalks/horus.go/pkg/mqtt"
)

var (
	mqttURL = "mqtt://localhost:1883/horus/"
)

func init() {
	if val := os.Getenv("HORUS_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	opts, prefix, err := mqtt.ClientOptionsFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	q := mqtt.NewQueue(opts, prefix)
	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		if !strings.HasSuffix(topic, "/event") {
			log.Printf("%s: %s", topic, string(payload))
			return
		}
		ev, err := events.Decode(payload)
		if err != nil {
			log.Printf("%s: bad event: %v", topic, err)
			return
		}
		log.Printf("%s: [%s] %s", topic, ev.Kind, ev.String())
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
