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

package model

import (
	"database/sql"
	"time"

	"github.com/pkg/errors"
	gorp "gopkg.in/gorp.v2"
)

func init() {
	RegisterModel("setting", Setting{}, "Name", false)
}

// SettingCurrentSource is the setting key persisting the active
// database project selection across restarts.
const SettingCurrentSource = "current_source"

// Setting defines a single persisted key/value setting.
type Setting struct {
	Name    string `db:"name"`
	Value   string `db:"value"`
	Updated int64  `db:"updated"`
}

// GetSetting fetches a setting value, returning empty when unset.
func GetSetting(db *gorp.DbMap, name string) (value string, err error) {
	err = db.SelectOne(&value, `SELECT "value" FROM "setting" WHERE "name" = ? LIMIT 1`, name)
	if err == sql.ErrNoRows {
		err = nil
		return
	}
	if err != nil {
		err = errors.Wrapf(err, "get setting %s failed", name)
	}
	return
}

// SetSetting inserts or updates a setting value.
func SetSetting(db *gorp.DbMap, name string, value string) (err error) {
	s := &Setting{
		Name:    name,
		Value:   value,
		Updated: time.Now().Unix(),
	}

	var existing string
	err = db.SelectOne(&existing, `SELECT "name" FROM "setting" WHERE "name" = ? LIMIT 1`, name)
	if err == sql.ErrNoRows {
		err = db.Insert(s)
	} else if err == nil {
		_, err = db.Update(s)
	}
	if err != nil {
		err = errors.Wrapf(err, "set setting %s failed", name)
	}
	return
}
