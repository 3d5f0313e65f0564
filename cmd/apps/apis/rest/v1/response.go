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
	"time"

	"github.com/basenana/nanadocs/pkg/types"
)

type FolderInfo struct {
	ID             int64     `json:"id"`
	ParentID       int64     `json:"parent_id"`
	Title          string    `json:"title"`
	FolderType     string    `json:"folder_type"`
	CreateBy       string    `json:"create_by"`
	CreateOn       time.Time `json:"create_on"`
	ModifiedBy     string    `json:"modified_by"`
	ModifiedOn     time.Time `json:"modified_on"`
	FoldersCount   int       `json:"folders_count"`
	FilesCount     int       `json:"files_count"`
	RootFolderID   int64     `json:"root_folder_id"`
	RootFolderType string    `json:"root_folder_type"`
	RootCreateBy   string    `json:"root_create_by"`
	Shared         bool      `json:"shared"`
}

type FolderResponse struct {
	Folder *FolderInfo `json:"folder"`
}

type ListFoldersResponse struct {
	Folders []*FolderInfo `json:"folders"`
}

type CountResponse struct {
	Empty bool `json:"empty"`
	Count int  `json:"count"`
}

type RefResponse struct {
	Ref   string `json:"ref"`
	Local bool   `json:"local"`
}

type ConflictsResponse struct {
	Conflicts map[int64]string `json:"conflicts"`
}

type UploadLimitResponse struct {
	FolderID      int64 `json:"folder_id"`
	Chunked       bool  `json:"chunked"`
	MaxUploadSize int64 `json:"max_upload_size"`
}

type BunchResponse struct {
	Key      string `json:"key"`
	FolderID int64  `json:"folder_id"`
}

type BunchObjectResponse struct {
	FolderID int64  `json:"folder_id"`
	ObjectID string `json:"object_id"`
}

type ProvidersResponse struct {
	Providers []string `json:"providers"`
}

func toFolderInfo(f *types.Folder) *FolderInfo {
	return &FolderInfo{
		ID:             f.ID,
		ParentID:       f.ParentID,
		Title:          f.Title,
		FolderType:     f.FolderType.String(),
		CreateBy:       f.CreateBy.String(),
		CreateOn:       f.CreateOn,
		ModifiedBy:     f.ModifiedBy.String(),
		ModifiedOn:     f.ModifiedOn,
		FoldersCount:   f.FoldersCount,
		FilesCount:     f.FilesCount,
		RootFolderID:   f.RootFolderID,
		RootFolderType: f.RootFolderType.String(),
		RootCreateBy:   f.RootCreateBy.String(),
		Shared:         f.Shared,
	}
}

func toFolderInfos(folders []*types.Folder) []*FolderInfo {
	result := make([]*FolderInfo, 0, len(folders))
	for _, f := range folders {
		result = append(result, toFolderInfo(f))
	}
	return result
}

func toRefResponse(ref types.FolderRef) *RefResponse {
	_, local := ref.(types.LocalID)
	return &RefResponse{Ref: ref.String(), Local: local}
}
