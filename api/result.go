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

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	log "github.com/sirupsen/logrus"

	"github.com/rafsaan123/probable-meme/model"
	"github.com/rafsaan123/probable-meme/source"
)

func searchResult(c *gin.Context) {
	r := struct {
		RollNo     string `json:"rollNo" form:"rollNo" binding:"required"`
		Regulation string `json:"regulation" form:"regulation" binding:"required"`
		Program    string `json:"program" form:"program" binding:"required"`
	}{}

	if err := c.ShouldBind(&r); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	key := model.Key{
		Program:    strings.TrimSpace(r.Program),
		Regulation: strings.TrimSpace(r.Regulation),
		RollNo:     strings.TrimSpace(r.RollNo),
	}

	chain := getChain(c)
	start := time.Now()

	res, attempted, err := chain.Lookup(c.Request.Context(), key)
	if err != nil {
		if nfe, ok := err.(*source.NotFoundError); ok {
			auditLookup(c, key, model.LookupOutcomeNotFound, "", nfe.Attempted, start)
			abortWithErrorData(c, http.StatusNotFound, err, gin.H{
				"sources_searched": nfe.Attempted,
			})
			return
		}

		auditLookup(c, key, model.LookupOutcomeError, "", attempted, start)
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	// cumulative GPA rows live in the database projects regardless of
	// which source produced the student hit, but only database hits
	// carry an institute code worth chasing
	if len(res.CGPAs) == 0 {
		if _, derr := chain.Get(res.Source); derr == nil {
			records, foundIn := chain.LookupCGPA(
				c.Request.Context(), key, res.Student.InstituteCode)
			if foundIn != "" {
				res.CGPAs = records
				log.WithFields(log.Fields{
					"source": foundIn,
					"roll":   key.RollNo,
					"count":  len(records),
				}).Info("cgpa records found")
			}
		}
	}

	auditLookup(c, key, model.LookupOutcomeHit, res.Source, attempted, start)
	responseWithData(c, http.StatusOK, model.NewSearchResponse(key, res, attempted))
}

// auditLookup records the finished search in the local audit log,
// best-effort.
func auditLookup(c *gin.Context, key model.Key, outcome string, hitSource string, tried []string, start time.Time) {
	db := getDB(c)
	if db == nil {
		return
	}

	if _, err := model.AddLookupLog(db, getRequestID(c), key,
		outcome, hitSource, tried, time.Since(start)); err != nil {
		log.WithError(err).Warning("audit lookup failed")
	}
}
