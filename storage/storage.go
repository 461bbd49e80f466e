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

// Package storage opens the proxy's local persistence database used for
// settings and the lookup audit log.
package storage

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	gorp "gopkg.in/gorp.v2"

	"github.com/rafsaan123/probable-meme/config"
	"github.com/rafsaan123/probable-meme/model"
)

// NewDatabase opens the local sqlite3 database described by the storage
// config and ensures all registered tables exist. A nil config yields an
// in-memory database.
func NewDatabase(cfg *config.StorageConfig) (dbMap *gorp.DbMap, err error) {
	dsn := ":memory:"
	if cfg != nil && cfg.Database != "" {
		dsn = cfg.Database
	}

	var db *sql.DB
	if db, err = sql.Open("sqlite3", dsn); err != nil {
		err = errors.Wrapf(err, "open proxy database failed")
		return
	}

	dbMap = &gorp.DbMap{
		Db:      db,
		Dialect: gorp.SqliteDialect{},
	}

	model.AddTables(dbMap)

	if err = dbMap.CreateTablesIfNotExists(); err != nil {
		err = errors.Wrapf(err, "create proxy tables failed")
		dbMap = nil
	}

	return
}
