// Command gameserver is the single-process composition root: load config,
// connect the durability tier, wire the session/eventbus/reconnect layers,
// start the transport server, shut down gracefully on SIGINT/SIGTERM.
// Grounded on gate/main.go and player/main.go's load-config -> init-log ->
// run shape, collapsed to one process since this repo has no
// connector/gate/hall/march/game node split to preserve.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mahjong3p/internal/auth"
	"mahjong3p/internal/config"
	"mahjong3p/internal/durability"
	"mahjong3p/internal/engine"
	"mahjong3p/internal/eventbus"
	"mahjong3p/internal/logging"
	"mahjong3p/internal/reconnect"
	"mahjong3p/internal/session"
	"mahjong3p/internal/transport"
)

var configFile = flag.String("config", "resource/application.yml", "config file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		panic(err)
	}
	logging.Init(cfg.NodeID, cfg.Log.Level)
	logging.Info("gameserver: loaded config from %s", *configFile)

	redisClient, err := durability.NewRedisClient(cfg.Redis)
	if err != nil {
		logging.Fatal("gameserver: redis: %v", err)
	}
	mongoDB, mongoClient, err := durability.NewMongoClient(cfg.Mongo)
	if err != nil {
		logging.Fatal("gameserver: mongo: %v", err)
	}

	hot, err := durability.NewHotStore(redisClient)
	if err != nil {
		logging.Fatal("gameserver: hot store: %v", err)
	}
	cold := durability.NewColdStore(mongoDB)

	bus, err := eventbus.Connect(cfg.Nats.URL)
	if err != nil {
		logging.Fatal("gameserver: eventbus: %v", err)
	}

	rooms := transport.NewRoomManager(engine.SystemClock, nil, hot, cold)
	registry := session.NewRegistry(rooms, engine.SystemClock, bus)
	rooms.SetSink(registry)

	stopJanitor := rooms.StartJanitor(time.Minute, cfg.Rules.Dismiss.AutoDissolveTimeout)
	defer stopJanitor()

	recon := reconnect.New(registry, rooms, cold, engine.SystemClock)
	verifier := auth.NewJWTVerifier(cfg.Jwt.Secret)

	server := transport.NewServer(cfg.HTTP.Addr, verifier, registry, rooms, recon, engine.SystemClock, hot, hot)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Run()
	}()
	logging.Info("gameserver: listening on %s", cfg.HTTP.Addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			logging.Error("gameserver: server exited: %v", err)
		}
	case sig := <-sigCh:
		logging.Info("gameserver: received %v, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logging.Warn("gameserver: http shutdown: %v", err)
	}

	rooms.CloseAll()
	hot.Close()
	bus.Close()
	if mongoClient != nil {
		_ = mongoClient.Disconnect(context.Background())
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	logging.Info("gameserver: shut down cleanly")
}
