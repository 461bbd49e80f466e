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
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	uuid "github.com/satori/go.uuid"
	gorp "gopkg.in/gorp.v2"

	log "github.com/sirupsen/logrus"

	"github.com/rafsaan123/probable-meme/api"
	"github.com/rafsaan123/probable-meme/config"
	"github.com/rafsaan123/probable-meme/model"
	"github.com/rafsaan123/probable-meme/source"
	"github.com/rafsaan123/probable-meme/storage"
)

func initServer(cfg *config.Config) (server *http.Server, afterShutdown func(), err error) {
	e := gin.New()
	e.Use(gin.Logger())
	e.Use(gin.Recovery())

	initCors(e)
	initRequestID(e)
	initConfig(e, cfg)

	var db *gorp.DbMap
	if db, err = initDB(e, cfg); err != nil {
		return
	}

	var chain *source.Chain
	if chain, err = initChain(e, cfg, db); err != nil {
		return
	}

	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	api.AddRoutes(e)

	server = &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: e,
	}

	afterShutdown = func() {
		chain.Close()
		if db != nil {
			_ = db.Db.Close()
		}
	}

	return
}

func initCors(e *gin.Engine) {
	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	e.Use(cors.New(corsCfg))
}

func initRequestID(e *gin.Engine) {
	e.Use(func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.Must(uuid.NewV4()).String()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	})
}

func initConfig(e *gin.Engine, cfg *config.Config) {
	e.Use(func(c *gin.Context) {
		c.Set("config", cfg)
		c.Next()
	})
}

func initDB(e *gin.Engine, cfg *config.Config) (db *gorp.DbMap, err error) {
	if cfg.Storage == nil {
		// run without persistence, source switches do not survive restarts
		return
	}

	if db, err = storage.NewDatabase(cfg.Storage); err != nil {
		return
	}

	e.Use(func(c *gin.Context) {
		c.Set("db", db)
		c.Next()
	})

	return
}

func initChain(e *gin.Engine, cfg *config.Config, db *gorp.DbMap) (chain *source.Chain, err error) {
	if chain, err = source.BuildChain(cfg); err != nil {
		return
	}

	// restore the persisted source selection over the config default
	if db != nil {
		var current string
		if current, err = model.GetSetting(db, model.SettingCurrentSource); err != nil {
			return
		}
		if current != "" {
			if serr := chain.SwitchTo(current); serr != nil {
				log.WithError(serr).WithField("source", current).
					Warning("persisted source selection no longer exists")
			}
		}
	}

	e.Use(func(c *gin.Context) {
		c.Set("chain", chain)
		c.Next()
	})

	return
}
