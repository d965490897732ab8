// Command camera.bridge receives tracking data from a mobile camera-tracking
// client and forwards it to a real-time graphics engine as UDP telemetry,
// optionally recording the session for CSV export.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/banshee-data/camera.bridge/internal/api"
	"github.com/banshee-data/camera.bridge/internal/bridge"
	"github.com/banshee-data/camera.bridge/internal/export"
	"github.com/banshee-data/camera.bridge/internal/fsutil"
	"github.com/banshee-data/camera.bridge/internal/recording"
	"github.com/banshee-data/camera.bridge/internal/telemetry"
	"github.com/banshee-data/camera.bridge/internal/timeutil"
	"github.com/banshee-data/camera.bridge/internal/tracksrc"
)

var (
	trackPort  = flag.Int("track-port", tracksrc.DefaultPort, "Port the tracking client connects to")
	udpTarget  = flag.String("udp-target", "127.0.0.1:7000", "Telemetry destination host:port")
	listen     = flag.String("listen", ":8080", "HTTP API listen address")
	dbFile     = flag.String("db", "recording.db", "Recording database path (empty for in-memory recording)")
	projectDir = flag.String("project-dir", "", "Export directory (falls back to ~/Documents)")
	mqttBroker = flag.String("mqtt", "", "Optional MQTT broker URL for telemetry fan-out (e.g. tcp://localhost:1883)")
	quiet      = flag.Bool("quiet", false, "Suppress the terminal pose readout")
)

func main() {
	flag.Parse()

	clock := timeutil.RealClock{}
	fs := fsutil.OSFileSystem{}

	sender, err := telemetry.NewSender(*udpTarget, clock)
	if err != nil {
		log.Fatalf("failed to open telemetry socket: %v", err)
	}
	defer sender.Close()

	var table recording.Table
	if *dbFile == "" {
		table = recording.NewMemoryTable()
	} else {
		sqliteTable, err := recording.OpenSQLiteTable(*dbFile)
		if err != nil {
			log.Fatalf("failed to open recording database: %v", err)
		}
		defer sqliteTable.Close()
		table = sqliteTable
	}

	b := bridge.New(bridge.Config{
		Sink:    sender,
		Session: recording.NewSession(table),
		Clock:   clock,
		Quiet:   *quiet,
	})

	// The tracking port is the process's reason to exist: a bind failure is
	// fatal and exits non-zero before any other state is set up.
	srv, err := tracksrc.Listen(*trackPort, b)
	if err != nil {
		log.Fatalf("failed to start tracking server: %v", err)
	}

	apiServer := api.NewServer(b, fs, export.DefaultDir(fs, *projectDir))
	b.Tap(apiServer.Broadcast)

	if *mqttBroker != "" {
		publisher, err := telemetry.NewMQTTPublisher(*mqttBroker, "camera-bridge", telemetry.DefaultMQTTTopic)
		if err != nil {
			log.Fatalf("failed to connect MQTT publisher: %v", err)
		}
		defer publisher.Close()
		b.Tap(func(m telemetry.Message) {
			if err := publisher.Publish(m); err != nil {
				log.Printf("mqtt publish failed: %v", err)
			}
		})
	}

	log.Printf("tracking server listening on %s", srv.Addr())
	log.Printf("telemetry target %s", *udpTarget)

	var wg sync.WaitGroup
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Accept tracking clients and queue their events.
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Serve(ctx); err != nil && err != context.Canceled {
			log.Printf("tracking server terminated: %v", err)
		}
		log.Print("tracking server stopped")
	}()

	// Bridge event loop: drains the queue and drives all state transitions.
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := b.Run(ctx, srv); err != nil && err != context.Canceled {
			log.Printf("bridge loop terminated: %v", err)
		}
		log.Print("bridge loop stopped")
	}()

	// HTTP control API.
	wg.Add(1)
	go func() {
		defer wg.Done()

		mux := http.NewServeMux()
		mux.Handle("/api/", http.StripPrefix("/api", apiServer.ServeMux()))
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprintln(w, "camera.bridge: see /api/status")
		})

		server := &http.Server{
			Addr:    *listen,
			Handler: mux,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("HTTP server failed: %v", err)
				stop()
			}
		}()

		<-ctx.Done()
		log.Println("shutting down HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server shutdown error: %v", err)
		}
	}()

	wg.Wait()
	if !*quiet {
		fmt.Fprintln(os.Stdout)
	}
	log.Printf("graceful shutdown complete")
}
