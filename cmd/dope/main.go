// Command dope drives the ballistic firing-solution engine from the
// command line: replay a captured frame log, serve live telemetry, or
// pull frames from onboard hardware.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/koenig-jacob/DOPE/internal/config"
	"github.com/koenig-jacob/DOPE/internal/engine"
	"github.com/koenig-jacob/DOPE/internal/i2c"
	"github.com/koenig-jacob/DOPE/internal/telemetry/i2cframe"
	"github.com/koenig-jacob/DOPE/internal/telemetry/replayframe"
	"github.com/koenig-jacob/DOPE/internal/telemetry/udpbroadcast"
	"github.com/koenig-jacob/DOPE/internal/web"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: dope <replay|serve|live> [flags]")
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "replay":
		err = runReplay(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "live":
		err = runLive(os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q; want replay, serve, or live\n", os.Args[1])
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("dope %s: %v", os.Args[1], err)
	}
}

func loadEngine(configPath string) (*engine.Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	eng := engine.New()
	cfg.Apply(eng)
	return eng, nil
}

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	configPath := fs.String("config", "./dev.yaml", "path to YAML config")
	logPath := fs.String("log", "", "path to a recorded frame log")
	speed := fs.Float64("speed", 1.0, "playback speed multiplier")
	loop := fs.Bool("loop", false, "loop the log indefinitely")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *logPath == "" {
		return fmt.Errorf("-log is required")
	}

	eng, err := loadEngine(*configPath)
	if err != nil {
		return err
	}

	f, err := os.Open(*logPath)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	records, err := replayframe.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("read log: %w", err)
	}
	log.Printf("replaying %d frames from %s at %.2fx", len(records), *logPath, *speed)

	frameCount := 0
	err = replayframe.Play(records, *speed, *loop, nil, func(frame engine.SensorFrame) error {
		eng.Update(frame)
		frameCount++
		if frameCount%50 == 0 {
			sol := eng.GetSolution()
			log.Printf("frame %d: mode=%s elev=%.2fMOA wind=%.2fMOA", frameCount, eng.GetMode(), sol.ElevationMOA, sol.WindageMOA)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("play: %w", err)
	}
	log.Printf("replay complete: %d frames", frameCount)
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "./dev.yaml", "path to YAML config")
	statusListen := fs.String("status-listen", "", "override network.status_listen from config")
	broadcastDest := fs.String("broadcast-dest", "", "override network.broadcast_dest from config")
	live := fs.Bool("live", false, "pull frames from onboard sensors via I2C")
	i2cDevice := fs.String("i2c-device", "/dev/i2c-1", "I2C bus device path (used with -live)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}
	eng := engine.New()
	cfg.Apply(eng)

	if *statusListen != "" {
		cfg.Network.StatusListen = *statusListen
	}
	if *broadcastDest != "" {
		cfg.Network.BroadcastDest = *broadcastDest
		if cfg.Network.BroadcastInterval <= 0 {
			cfg.Network.BroadcastInterval = 100 * time.Millisecond
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if cfg.Network.BroadcastDest != "" {
		bc, err := udpbroadcast.NewBroadcaster(cfg.Network.BroadcastDest)
		if err != nil {
			return fmt.Errorf("udp broadcaster init: %w", err)
		}
		defer bc.Close()
		pub := udpbroadcast.NewPublisher(bc, cfg.Network.BroadcastInterval, eng.GetSolution)
		pub.Start(ctx)
		defer pub.Close()
		log.Printf("publishing firing solutions to %s every %s", cfg.Network.BroadcastDest, cfg.Network.BroadcastInterval)
	}

	if cfg.Network.StatusListen != "" {
		handler := web.NewHandler(eng)
		srv := &http.Server{Addr: cfg.Network.StatusListen, Handler: handler}
		go func() {
			log.Printf("status endpoint listening on %s", cfg.Network.StatusListen)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("status server stopped: %v", err)
			}
		}()
		go func() {
			<-ctx.Done()
			_ = srv.Close()
		}()
	}

	if *live {
		bus, err := i2c.Open(*i2cDevice)
		if err != nil {
			return fmt.Errorf("open i2c bus: %w", err)
		}
		defer bus.Close()
		src, err := i2cframe.Open(bus)
		if err != nil {
			return fmt.Errorf("open sensors: %w", err)
		}
		stop := make(chan struct{})
		go func() {
			<-ctx.Done()
			close(stop)
		}()
		go i2cframe.Pump(src, eng, 20*time.Millisecond, stop)
		log.Printf("pumping live sensor frames from %s", *i2cDevice)
	}

	log.Printf("dope serve running")
	<-ctx.Done()
	log.Printf("dope serve stopping")
	return nil
}

func runLive(args []string) error {
	fs := flag.NewFlagSet("live", flag.ExitOnError)
	configPath := fs.String("config", "./dev.yaml", "path to YAML config")
	i2cDevice := fs.String("i2c-device", "/dev/i2c-1", "I2C bus device path")
	period := fs.Duration("period", 20*time.Millisecond, "sensor poll period")
	if err := fs.Parse(args); err != nil {
		return err
	}

	eng, err := loadEngine(*configPath)
	if err != nil {
		return err
	}

	bus, err := i2c.Open(*i2cDevice)
	if err != nil {
		return fmt.Errorf("open i2c bus: %w", err)
	}
	defer bus.Close()

	src, err := i2cframe.Open(bus)
	if err != nil {
		return fmt.Errorf("open sensors: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()
	stop := make(chan struct{})
	go i2cframe.Pump(src, eng, *period, stop)

	log.Printf("dope live running against %s", *i2cDevice)
	for {
		select {
		case <-ctx.Done():
			close(stop)
			log.Printf("dope live stopping")
			return nil
		case <-ticker.C:
			sol := eng.GetSolution()
			log.Printf("mode=%s fault=%#x diag=%#x elev=%.2fMOA wind=%.2fMOA",
				eng.GetMode(), eng.GetFaultFlags(), eng.GetDiagFlags(), sol.ElevationMOA, sol.WindageMOA)
		}
	}
}
