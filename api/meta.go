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
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"github.com/rafsaan123/probable-meme/model"
	"github.com/rafsaan123/probable-meme/source"
)

func healthCheck(c *gin.Context) {
	chain := getChain(c)

	names := make([]string, 0, len(chain.Projects()))
	for _, s := range chain.Projects() {
		names = append(names, s.Name())
	}

	current, err := chain.Current()
	if err == nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), chain.Timeout())
		defer cancel()
		err = current.Ping(ctx)
	}

	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":    "unhealthy",
			"connected": false,
			"error":     err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"connected":         true,
		"current_source":    chain.CurrentName(),
		"available_sources": names,
	})
}

func getRegulations(c *gin.Context) {
	r := struct {
		Program string `uri:"program" binding:"required"`
	}{}

	if err := c.ShouldBindUri(&r); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	chain := getChain(c)

	current, err := chain.Current()
	if err != nil {
		abortWithError(c, http.StatusServiceUnavailable, err)
		return
	}

	reporter, ok := current.(source.Reporter)
	if !ok {
		abortWithError(c, http.StatusServiceUnavailable,
			errors.Errorf("source %s does not answer metadata queries", current.Name()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chain.Timeout())
	defer cancel()

	years, err := reporter.Regulations(ctx, r.Program)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}
	if years == nil {
		years = []string{}
	}

	responseWithData(c, http.StatusOK, gin.H{
		"regulations": years,
	})
}

func getStats(c *gin.Context) {
	chain := getChain(c)

	current, err := chain.Current()
	if err != nil {
		abortWithError(c, http.StatusServiceUnavailable, err)
		return
	}

	reporter, ok := current.(source.Reporter)
	if !ok {
		abortWithError(c, http.StatusServiceUnavailable,
			errors.Errorf("source %s does not answer metadata queries", current.Name()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chain.Timeout())
	defer cancel()

	stats, err := reporter.Stats(ctx)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	data := gin.H{
		"current_source":     chain.CurrentName(),
		"source_description": current.Description(),
		"stats":              stats,
	}

	if db := getDB(c); db != nil {
		lookupStats, lerr := model.GetLookupStats(db)
		if lerr != nil {
			log.WithError(lerr).Warning("lookup stats failed")
		} else {
			data["lookups"] = lookupStats
		}
	}

	responseWithData(c, http.StatusOK, data)
}

func listWebAPIs(c *gin.Context) {
	chain := getChain(c)

	type detailed interface {
		BaseURL() string
		Priority() int
	}

	apis := make([]gin.H, 0, len(chain.WebAPIs()))
	for _, s := range chain.WebAPIs() {
		entry := gin.H{
			"name":        s.Name(),
			"description": s.Description(),
		}
		if d, ok := s.(detailed); ok {
			entry["base_url"] = d.BaseURL()
			entry["priority"] = d.Priority()
		}
		apis = append(apis, entry)
	}

	responseWithData(c, http.StatusOK, gin.H{
		"web_apis":    apis,
		"total_count": len(apis),
	})
}

func testWebAPIs(c *gin.Context) {
	chain := getChain(c)

	results := make([]gin.H, 0, len(chain.WebAPIs()))
	connected := 0

	for _, s := range chain.WebAPIs() {
		ctx, cancel := context.WithTimeout(c.Request.Context(), chain.Timeout())
		err := s.Ping(ctx)
		cancel()

		status := "connected"
		if err != nil {
			status = "failed"
		} else {
			connected++
		}
		results = append(results, gin.H{
			"name":   s.Name(),
			"status": status,
		})
	}

	responseWithData(c, http.StatusOK, gin.H{
		"test_results": results,
		"summary": gin.H{
			"total":     len(results),
			"connected": connected,
			"failed":    len(results) - connected,
		},
	})
}
