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

	"github.com/rafsaan123/probable-meme/model"
)

func listSources(c *gin.Context) {
	chain := getChain(c)
	current := chain.CurrentName()

	sources := make([]gin.H, 0, len(chain.Projects()))
	for _, s := range chain.Projects() {
		sources = append(sources, gin.H{
			"name":        s.Name(),
			"description": s.Description(),
			"is_current":  s.Name() == current,
		})
	}

	responseWithData(c, http.StatusOK, gin.H{
		"current_source": current,
		"sources":        sources,
	})
}

func switchSource(c *gin.Context) {
	r := struct {
		Name string `uri:"name" binding:"required"`
	}{}

	if err := c.ShouldBindUri(&r); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	chain := getChain(c)

	s, err := chain.Get(r.Name)
	if err != nil {
		abortWithError(c, http.StatusNotFound, err)
		return
	}

	// probe before switching, a dead project must not become current
	ctx, cancel := context.WithTimeout(c.Request.Context(), chain.Timeout())
	defer cancel()

	if err = s.Ping(ctx); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	if err = chain.SwitchTo(r.Name); err != nil {
		abortWithError(c, http.StatusInternalServerError, err)
		return
	}

	if db := getDB(c); db != nil {
		if err = model.SetSetting(db, model.SettingCurrentSource, r.Name); err != nil {
			abortWithError(c, http.StatusInternalServerError, err)
			return
		}
	}

	responseWithData(c, http.StatusOK, gin.H{
		"current_source": r.Name,
	})
}

func testSource(c *gin.Context) {
	r := struct {
		Name string `uri:"name" binding:"required"`
	}{}

	if err := c.ShouldBindUri(&r); err != nil {
		abortWithError(c, http.StatusBadRequest, err)
		return
	}

	chain := getChain(c)

	s, err := chain.Get(r.Name)
	if err != nil {
		abortWithError(c, http.StatusNotFound, err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), chain.Timeout())
	defer cancel()

	pingErr := s.Ping(ctx)
	data := gin.H{
		"source":    r.Name,
		"connected": pingErr == nil,
	}
	if pingErr != nil {
		data["msg"] = pingErr.Error()
	}

	responseWithData(c, http.StatusOK, data)
}
