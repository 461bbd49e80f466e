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

package storage

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/rafsaan123/probable-meme/model"
)

func TestStorage(t *testing.T) {
	Convey("proxy persistence", t, func() {
		db, err := NewDatabase(nil)
		So(err, ShouldBeNil)
		defer db.Db.Close()

		Convey("settings survive round trips", func() {
			v, err := model.GetSetting(db, model.SettingCurrentSource)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "")

			So(model.SetSetting(db, model.SettingCurrentSource, "secondary"), ShouldBeNil)

			v, err = model.GetSetting(db, model.SettingCurrentSource)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "secondary")

			// update path
			So(model.SetSetting(db, model.SettingCurrentSource, "backup1"), ShouldBeNil)

			v, err = model.GetSetting(db, model.SettingCurrentSource)
			So(err, ShouldBeNil)
			So(v, ShouldEqual, "backup1")
		})

		Convey("lookup audit rows aggregate into stats", func() {
			key := model.Key{Program: "Diploma in Engineering", Regulation: "2022", RollNo: "721942"}

			_, err := model.AddLookupLog(db, "req-1", key,
				model.LookupOutcomeHit, "primary", []string{"primary"}, 120*time.Millisecond)
			So(err, ShouldBeNil)

			_, err = model.AddLookupLog(db, "req-2", key,
				model.LookupOutcomeNotFound, "", []string{"primary", "secondary"}, 300*time.Millisecond)
			So(err, ShouldBeNil)

			_, err = model.AddLookupLog(db, "req-3", key,
				model.LookupOutcomeError, "", []string{"primary"}, 10*time.Millisecond)
			So(err, ShouldBeNil)

			stats, err := model.GetLookupStats(db)
			So(err, ShouldBeNil)
			So(stats.Total, ShouldEqual, 3)
			So(stats.Hits, ShouldEqual, 1)
			So(stats.NotFound, ShouldEqual, 1)
			So(stats.Errors, ShouldEqual, 1)
		})
	})
}
