/*
 * Copyright 2025 The BTEB Results Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rafsaan123/probable-meme/config"
)

const name = "resultproxyd"

var (
	version     = "unknown"
	listenAddr  string
	configFile  string
	showVersion bool
)

func init() {
	flag.StringVar(&listenAddr, "listen", "", "API listen addr (will override settings in config file)")
	flag.StringVar(&configFile, "config", "config.yaml", "Configuration file for result proxy")
	flag.BoolVar(&showVersion, "version", false, "Show version information and exit")
}

func main() {
	flag.Parse()
	if showVersion {
		fmt.Printf("%v %v %v %v %v\n",
			name, version, runtime.GOOS, runtime.GOARCH, runtime.Version())
		os.Exit(0)
	}

	flag.Visit(func(f *flag.Flag) {
		log.Infof("args %#v : %s", f.Name, f.Value)
	})

	cfg, err := config.LoadConfig(listenAddr, configFile)
	if err != nil {
		log.WithError(err).Error("read config failed")
		os.Exit(-1)
		return
	}

	var (
		server        *http.Server
		afterShutdown func()
	)
	if server, afterShutdown, err = initServer(cfg); err != nil {
		log.WithError(err).Error("init server failed")
		os.Exit(-1)
		return
	}

	go func() {
		_ = server.ListenAndServe()
	}()

	log.WithField("listen", cfg.ListenAddr).Info("started result proxy")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_ = server.Shutdown(ctx)
	afterShutdown()
	log.Info("stopped result proxy")
}
