// Command libratonectl discovers networked speakers and prints their state
// as it changes. With --fixture (-f), it runs entirely in memory against a YAML
// description of simulated devices, for trying the tool without hardware.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abustany/libratone-go/internal/devicebus"
	"github.com/abustany/libratone-go/internal/discovery"
	"github.com/abustany/libratone-go/internal/fixture"
	"github.com/abustany/libratone-go/internal/logger"
	"github.com/abustany/libratone-go/internal/manager"
	"github.com/abustany/libratone-go/internal/transport"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}
	if cfg.showVersion {
		fmt.Println(version)
		return
	}

	logger.Init()
	if err := logger.SetLevel(cfg.logLevel); err != nil {
		fmt.Printf("Warning: invalid log level %q, using default\n", cfg.logLevel)
	}
	log := logger.Logger().With("component", "cli")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	transportBackend, discoveryBackend, err := buildBackends(ctx, cfg)
	if err != nil {
		log.Error("failed to set up backends", "error", err)
		os.Exit(1)
	}

	m, err := manager.New(transportBackend, discoveryBackend)
	if err != nil {
		log.Error("failed to start device manager", "error", err)
		os.Exit(1)
	}

	_, events := m.Subscribe()
	go watchEvents(m, events, log)

	log.Info("libratonectl started", "version", version, "fixture", cfg.fixturePath != "")

	<-ctx.Done()
	log.Info("shutdown signal received")
	m.Stop()
}

// buildBackends wires the real UDP/multicast backends, unless --fixture was
// given, in which case it wires an in-memory network seeded from the
// fixture file and starts one simulated responder per device.
func buildBackends(ctx context.Context, cfg *cliConfig) (transport.Backend, discovery.Backend, error) {
	if cfg.fixturePath == "" {
		discoveryBackend, err := discovery.NewMulticastBackend(ctx)
		if err != nil {
			return nil, nil, err
		}
		return transport.NewRealBackend(ctx), discoveryBackend, nil
	}

	devices, err := fixture.Load(cfg.fixturePath)
	if err != nil {
		return nil, nil, err
	}

	network := transport.NewNetwork()
	discoveryBackend := discovery.NewFakeBackend(50 * time.Millisecond)
	for _, d := range devices {
		d.Serve(network)
		discoveryBackend.AddReply(d.DiscoveryReply())
	}

	controllerAddr := &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 0}
	return transport.NewFakeBackend(network, controllerAddr), discoveryBackend, nil
}

// watchEvents prints discovered/updated devices and fetches full state as
// soon as a device is first seen.
func watchEvents(m *manager.Manager, events <-chan devicebus.Event, log *slog.Logger) {
	for evt := range events {
		switch evt.Kind {
		case devicebus.DeviceDiscovered:
			log.Info("device discovered", "device_id", evt.Device.ID, "address", evt.Device.Addr.String())
			if err := m.FetchInfo(evt.Device.ID); err != nil {
				log.Info("fetch_info failed", "device_id", evt.Device.ID, "error", err.Error())
			}
		case devicebus.DeviceUpdated:
			log.Info("device updated", "device_id", evt.Device.ID, "name", stringOrNil(evt.Device.Name), "volume", intOrNil(evt.Device.Volume))
		}
	}
}

func stringOrNil(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func intOrNil(i *int) int {
	if i == nil {
		return -1
	}
	return *i
}
