/*
Fgrammard starts an fgrammar build-as-a-service daemon and begins listening
for new connections.

Usage:

	fgrammard [flags]

Once started, the server listens for HTTP requests and builds grammars
submitted to POST /v1/grammars, returning emitted Go source. By default it
listens on localhost:8080; this can be changed with -l/--listen.

If a JWT token secret is not given, a random one is generated (derived from
the current time only if crypto/rand fails), so all issued tokens become invalid as soon as the server
shuts down; suitable for local testing only.

The flags are:

	-v, --version
		Give the current version of fgrammard and then exit.

	-l, --listen LISTEN_ADDRESS
		Listen on the given address. Defaults to the value of environment
		variable FGRAMMAR_LISTEN_ADDRESS, then "localhost:8080".

	-s, --secret TOKEN_SECRET
		Use the provided secret for signing JWTs. Defaults to the value of
		environment variable FGRAMMAR_TOKEN_SECRET, then a random secret.

	-c, --config FILE
		Load settings from the given TOML file.

Logging verbosity is controlled by the FGRAMMAR_LOG_LEVEL environment
variable ("debug", "info", "warn", or "error"; defaults to "info").
*/
package main

import (
	"crypto/rand"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/dekarrin/fgrammar/builtin"
	"github.com/dekarrin/fgrammar/internal/cache"
	"github.com/dekarrin/fgrammar/internal/config"
	"github.com/dekarrin/fgrammar/internal/logging"
	"github.com/dekarrin/fgrammar/internal/server"
	"github.com/dekarrin/fgrammar/internal/version"
	"github.com/spf13/pflag"
)

const (
	EnvListen = "FGRAMMAR_LISTEN_ADDRESS"
	EnvSecret = "FGRAMMAR_TOKEN_SECRET"
)

var (
	flagVersion = pflag.BoolP("version", "v", false, "Give the current version of fgrammard and then exit.")
	flagListen  = pflag.StringP("listen", "l", "", "Listen on the given address.")
	flagSecret  = pflag.StringP("secret", "s", "", "Use the given secret for signing JWTs.")
	flagConfig  = pflag.StringP("config", "c", "", "Load settings from the given TOML file.")
)

func main() {
	logging.Init()
	pflag.Parse()

	if *flagVersion {
		fmt.Printf("%s\n", version.DaemonCurrent)
		return
	}

	cfg, err := config.Load(*flagConfig)
	if err != nil {
		log.Fatalf("FATAL could not load config: %s", err)
	}
	if len(cfg.WarmupModules) > 0 {
		if err := builtin.Warmup(cfg.WarmupModules); err != nil {
			logging.Warnf("builtin warmup: %s", err)
		}
	}

	listen := *flagListen
	if listen == "" {
		listen = os.Getenv(EnvListen)
	}
	if listen == "" {
		listen = cfg.Server.ListenAddress
	}

	secret := *flagSecret
	if secret == "" {
		secret = os.Getenv(EnvSecret)
	}
	if secret == "" {
		secret = cfg.Server.TokenSecret
	}
	secretBytes := []byte(secret)
	if len(secretBytes) == 0 {
		secretBytes = randomSecret()
		logging.Warnf("no token secret configured; using a random secret valid only for this process's lifetime")
	}

	var cacheDB *cache.DB
	if cfg.Cache.Enabled {
		if err := os.MkdirAll(cfg.Cache.DataDir, 0770); err != nil {
			log.Fatalf("FATAL create cache data dir: %s", err)
		}
		cacheDB, err = cache.Open(cfg.Cache.DataDir + "/fgrammar-cache.db")
		if err != nil {
			log.Fatalf("FATAL open build cache: %s", err)
		}
		defer cacheDB.Close()
	}

	srv := server.New(server.Config{
		TokenSecret:  secretBytes,
		Cache:        cacheDB,
		DefaultDepth: cfg.MaxDepth,
	})

	logging.Infof("fgrammard %s listening on %s", version.DaemonCurrent, listen)
	if err := http.ListenAndServe(listen, srv.Router()); err != nil {
		log.Fatalf("FATAL %s", err)
	}
}

func randomSecret() []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is unrecoverable; fall back to a
		// time-derived value so the daemon still starts for local testing.
		ts := time.Now().UnixNano()
		for i := range b {
			b[i] = byte(ts >> uint((i%8)*8))
		}
	}
	return b
}
