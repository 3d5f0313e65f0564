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
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/basenana/nanadocs/cmd/apps/apis/apitool"
	"github.com/basenana/nanadocs/pkg/folders"
	"github.com/basenana/nanadocs/pkg/types"
)

func (s *ServicesV1) GetFolder(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	id, ok := s.requireFolderID(ctx)
	if !ok {
		return
	}

	folder, err := s.folders.GetFolder(ctx.Request.Context(), scope, id)
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &FolderResponse{Folder: toFolderInfo(folder)})
}

func (s *ServicesV1) CreateFolder(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	var req CreateFolderRequest
	if !bindJSON(ctx, &req) {
		return
	}

	id, err := s.folders.SaveFolder(ctx.Request.Context(), scope, &types.Folder{
		ParentID: req.ParentID,
		Title:    req.Title,
	})
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	folder, err := s.folders.GetFolder(ctx.Request.Context(), scope, id)
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusCreated, &FolderResponse{Folder: toFolderInfo(folder)})
}

func (s *ServicesV1) RenameFolder(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	id, ok := s.requireFolderID(ctx)
	if !ok {
		return
	}
	var req RenameFolderRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if _, err := s.folders.RenameFolder(ctx.Request.Context(), scope, id, req.Title); err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	folder, err := s.folders.GetFolder(ctx.Request.Context(), scope, id)
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &FolderResponse{Folder: toFolderInfo(folder)})
}

func (s *ServicesV1) DeleteFolder(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	id, ok := s.requireFolderID(ctx)
	if !ok {
		return
	}

	if err := s.folders.DeleteFolder(ctx.Request.Context(), scope, id); err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &RefResponse{Ref: strconv.FormatInt(id, 10), Local: true})
}

func (s *ServicesV1) ListChildren(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	id, ok := s.requireFolderID(ctx)
	if !ok {
		return
	}
	var req ListChildrenRequest
	if !bindQuery(ctx, &req) {
		return
	}

	opt := folders.ListOption{
		OrderBy:        types.OrderBy{SortedBy: types.SortedBy(req.SortedBy), IsAsc: req.IsAsc},
		FilterType:     types.FilterType(req.Filter),
		SubjectGroup:   req.SubjectGroup,
		SearchText:     req.Search,
		WithSubfolders: req.WithSubfolders,
		Offset:         req.Offset,
		Count:          req.Count,
	}
	if req.Subject != "" {
		opt.SubjectID = uuid.MustParse(req.Subject)
	}

	children, err := s.folders.ListFolders(ctx.Request.Context(), scope, id, opt)
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &ListFoldersResponse{Folders: toFolderInfos(children)})
}

func (s *ServicesV1) ListParents(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	id, ok := s.requireFolderID(ctx)
	if !ok {
		return
	}

	parents, err := s.folders.ListParentFolders(ctx.Request.Context(), scope, id)
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &ListFoldersResponse{Folders: toFolderInfos(parents)})
}

func (s *ServicesV1) GetRoot(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	id, ok := s.requireFolderID(ctx)
	if !ok {
		return
	}

	root, err := s.folders.GetRootFolder(ctx.Request.Context(), scope, id)
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &FolderResponse{Folder: toFolderInfo(root)})
}

func (s *ServicesV1) CountItems(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	id, ok := s.requireFolderID(ctx)
	if !ok {
		return
	}

	cnt, err := s.folders.GetItemsCount(ctx.Request.Context(), scope, id)
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &CountResponse{Empty: cnt == 0, Count: cnt})
}

func (s *ServicesV1) Recount(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	id, ok := s.requireFolderID(ctx)
	if !ok {
		return
	}

	if err := s.folders.RecalculateCounts(ctx.Request.Context(), scope, id); err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	folder, err := s.folders.GetFolder(ctx.Request.Context(), scope, id)
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &FolderResponse{Folder: toFolderInfo(folder)})
}

func (s *ServicesV1) MoveFolder(ctx *gin.Context) {
	s.relocate(ctx, s.folders.MoveFolder)
}

func (s *ServicesV1) CopyFolder(ctx *gin.Context) {
	s.relocate(ctx, s.folders.CopyFolder)
}

type relocateFn func(ctx context.Context, scope types.Scope, id int64, to types.FolderRef) (types.FolderRef, error)

func (s *ServicesV1) relocate(ctx *gin.Context, fn relocateFn) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	id, ok := s.requireFolderID(ctx)
	if !ok {
		return
	}
	var req RelocateRequest
	if !bindJSON(ctx, &req) {
		return
	}

	ref, err := fn(ctx.Request.Context(), scope, id, types.ParseFolderRef(req.To))
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, toRefResponse(ref))
}

func (s *ServicesV1) CheckConflicts(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	var req ConflictsRequest
	if !bindJSON(ctx, &req) {
		return
	}

	conflicts, err := s.folders.CanMoveOrCopy(ctx.Request.Context(), scope, req.IDs, types.ParseFolderRef(req.To))
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &ConflictsResponse{Conflicts: conflicts})
}

func (s *ServicesV1) ReassignFolders(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	var req ReassignRequest
	if !bindJSON(ctx, &req) {
		return
	}

	if err := s.folders.ReassignFolders(ctx.Request.Context(), scope, req.IDs, uuid.MustParse(req.Owner)); err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	updated, err := s.folders.ListFoldersByIDs(ctx.Request.Context(), scope, req.IDs, folders.ListOption{})
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &ListFoldersResponse{Folders: toFolderInfos(updated)})
}

func (s *ServicesV1) SearchFolders(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	var req SearchRequest
	if !bindQuery(ctx, &req) {
		return
	}

	found, err := s.folders.SearchFolders(ctx.Request.Context(), scope, req.Text, req.Bunch)
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &ListFoldersResponse{Folders: toFolderInfos(found)})
}

func (s *ServicesV1) UploadLimit(ctx *gin.Context) {
	scope, ok := s.requireScope(ctx)
	if !ok {
		return
	}
	id, ok := s.requireFolderID(ctx)
	if !ok {
		return
	}
	chunked := ctx.Query("chunked") == "true"

	limit, err := s.folders.MaxUploadSize(ctx.Request.Context(), scope, id, chunked)
	if err != nil {
		apitool.ErrorResponse(ctx, err)
		return
	}
	apitool.JsonResponse(ctx, http.StatusOK, &UploadLimitResponse{FolderID: id, Chunked: chunked, MaxUploadSize: limit})
}
