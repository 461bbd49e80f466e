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
	"github.com/gin-gonic/gin"
	gorp "gopkg.in/gorp.v2"

	"github.com/rafsaan123/probable-meme/config"
	"github.com/rafsaan123/probable-meme/source"
)

func abortWithError(c *gin.Context, code int, err error) {
	if err != nil {
		c.AbortWithStatusJSON(code, map[string]interface{}{
			"success": false,
			"msg":     err.Error(),
		})
		_ = c.Error(err)
	}
}

func abortWithErrorData(c *gin.Context, code int, err error, data interface{}) {
	if err != nil {
		c.AbortWithStatusJSON(code, map[string]interface{}{
			"success": false,
			"msg":     err.Error(),
			"data":    data,
		})
		_ = c.Error(err)
	}
}

func responseWithData(c *gin.Context, code int, data interface{}) {
	c.JSON(code, map[string]interface{}{
		"success": true,
		"msg":     "",
		"data":    data,
	})
}

func getConfig(c *gin.Context) *config.Config {
	return c.MustGet("config").(*config.Config)
}

func getChain(c *gin.Context) *source.Chain {
	return c.MustGet("chain").(*source.Chain)
}

func getDB(c *gin.Context) *gorp.DbMap {
	db, ok := c.Get("db")
	if !ok {
		return nil
	}
	return db.(*gorp.DbMap)
}

func getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}
