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
)

// AddRoutes registers the proxy HTTP surface.
func AddRoutes(e *gin.Engine) {
	e.GET("/health", healthCheck)

	v1 := e.Group("/api")
	{
		v1.POST("/search-result", searchResult)
		v1.GET("/regulations/:program", getRegulations)
		v1.GET("/stats", getStats)

		v1.GET("/sources", listSources)
		v1.POST("/sources/:name/switch", switchSource)
		v1.GET("/sources/:name/test", testSource)

		v1.GET("/web-apis", listWebAPIs)
		v1.GET("/web-apis/test", testWebAPIs)
	}
}
