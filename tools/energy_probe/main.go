// Command energy_probe dials an entity's live energy channel and prints
// every pushed sample. Useful for checking a running server without the
// full explorer client.
//
// Usage:
//
//	energy_probe -server http://localhost:8080 -token <jwt> -id 25
package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
)

func main() {
	server := flag.String("server", "http://localhost:8080", "server base URL")
	token := flag.String("token", "", "session token")
	id := flag.String("id", "", "entity id to watch")
	raw := flag.Bool("raw", false, "print raw frames instead of parsed samples")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)
	if *token == "" || *id == "" {
		logger.Fatal("-token and -id are required")
	}

	endpoint := strings.TrimRight(*server, "/") + "/ws/pokemon/" + url.PathEscape(*id) + "/energy/"
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		endpoint = "wss://" + strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		endpoint = "ws://" + strings.TrimPrefix(endpoint, "http://")
	}
	endpoint += "?token=" + url.QueryEscape(*token)

	conn, resp, err := websocket.DefaultDialer.Dial(endpoint, nil)
	if err != nil {
		if resp != nil {
			logger.Fatalf("dial: %v (status %s)", err, resp.Status)
		}
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	logger.Printf("watching %s", *id)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			logger.Printf("channel closed: %v", err)
			return
		}
		if *raw {
			os.Stdout.Write(append(payload, '\n'))
			continue
		}
		var sample struct {
			EnergyLevel *float64 `json:"energy_level"`
			Timestamp   string   `json:"timestamp"`
		}
		if err := json.Unmarshal(payload, &sample); err != nil || sample.EnergyLevel == nil {
			logger.Printf("skipping frame: %s", payload)
			continue
		}
		logger.Printf("energy %.1f%% at %s", *sample.EnergyLevel, sample.Timestamp)
	}
}
