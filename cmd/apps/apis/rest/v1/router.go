/*
 Copyright 2023 NanaFS Authors.

 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package v1

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(api *gin.RouterGroup, s *ServicesV1) {
	v1 := api.Group("/v1")
	{
		folders := v1.Group("/folders")
		{
			folders.POST("", s.CreateFolder)
			folders.GET("/search", s.SearchFolders)
			folders.POST("/conflicts", s.CheckConflicts)
			folders.PUT("/owner", s.ReassignFolders)
			folders.GET("/:id", s.GetFolder)
			folders.PUT("/:id", s.RenameFolder)
			folders.DELETE("/:id", s.DeleteFolder)
			folders.GET("/:id/children", s.ListChildren)
			folders.GET("/:id/parents", s.ListParents)
			folders.GET("/:id/root", s.GetRoot)
			folders.GET("/:id/count", s.CountItems)
			folders.POST("/:id/recount", s.Recount)
			folders.POST("/:id/move", s.MoveFolder)
			folders.POST("/:id/copy", s.CopyFolder)
			folders.GET("/:id/upload-limit", s.UploadLimit)
			folders.GET("/:id/bunch", s.GetBunchObject)
		}

		bunch := v1.Group("/bunch")
		{
			bunch.GET("/:module/:bunch", s.GetBunchFolder)
			bunch.GET("/:module/:bunch/:data", s.GetBunchFolder)
		}

		providers := v1.Group("/providers")
		{
			providers.GET("", s.ListProviders)
			providers.POST("/:provider/root", s.EnsureProviderRoot)
		}
	}
}
