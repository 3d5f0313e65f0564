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

package apps

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/basenana/nanadocs/cmd/apps/apis/rest/common"
	"github.com/basenana/nanadocs/pkg/folders"
	"github.com/basenana/nanadocs/pkg/types"
)

var (
	cliTenant int64
	cliActor  string
)

func init() {
	FolderCmd.PersistentFlags().Int64Var(&cliTenant, "tenant", 1, "tenant id")
	FolderCmd.PersistentFlags().StringVar(&cliActor, "actor", "", "acting user id")

	lsCmd.Flags().String("sort", string(types.SortedByAZ), "sorted by: DateAndTime, DateAndTimeCreation, AZ, Author")
	lsCmd.Flags().Bool("desc", false, "descending order")
	bunchCmd.Flags().Bool("create", false, "create the folder when missing")

	FolderCmd.AddCommand(mkdirCmd, lsCmd, mvCmd, cpCmd, rmCmd, bunchCmd)
}

var FolderCmd = &cobra.Command{
	Use:   "folder",
	Short: "Manage folders in the local store",
}

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <parent-id> <title>",
	Short: "Create a folder",
	Args:  cobra.ExactArgs(2),
	RunE: withFolders(func(ctx context.Context, mgr folders.Manager, scope types.Scope, cmd *cobra.Command, args []string) error {
		parentID, err := parseLocalID(args[0])
		if err != nil {
			return err
		}
		id, err := mgr.SaveFolder(ctx, scope, &types.Folder{ParentID: parentID, Title: args[1]})
		if err != nil {
			return err
		}
		folder, err := mgr.GetFolder(ctx, scope, id)
		if err != nil {
			return err
		}
		return printJson(folder)
	}),
}

var lsCmd = &cobra.Command{
	Use:   "ls <folder-id>",
	Short: "List child folders",
	Args:  cobra.ExactArgs(1),
	RunE: withFolders(func(ctx context.Context, mgr folders.Manager, scope types.Scope, cmd *cobra.Command, args []string) error {
		id, err := parseLocalID(args[0])
		if err != nil {
			return err
		}
		sortedBy, _ := cmd.Flags().GetString("sort")
		desc, _ := cmd.Flags().GetBool("desc")
		children, err := mgr.ListFolders(ctx, scope, id, folders.ListOption{
			OrderBy: types.OrderBy{SortedBy: types.SortedBy(sortedBy), IsAsc: !desc},
		})
		if err != nil {
			return err
		}
		for _, f := range children {
			fmt.Printf("%d\t%s\t%s\tfolders=%d files=%d\n", f.ID, f.FolderType, f.Title, f.FoldersCount, f.FilesCount)
		}
		return nil
	}),
}

var mvCmd = &cobra.Command{
	Use:   "mv <folder-id> <dest>",
	Short: "Move a folder under dest, a local id or a <provider>-<id> key",
	Args:  cobra.ExactArgs(2),
	RunE: withFolders(func(ctx context.Context, mgr folders.Manager, scope types.Scope, cmd *cobra.Command, args []string) error {
		id, err := parseLocalID(args[0])
		if err != nil {
			return err
		}
		ref, err := mgr.MoveFolder(ctx, scope, id, types.ParseFolderRef(args[1]))
		if err != nil {
			return err
		}
		fmt.Println(ref.String())
		return nil
	}),
}

var cpCmd = &cobra.Command{
	Use:   "cp <folder-id> <dest>",
	Short: "Copy a folder subtree under dest",
	Args:  cobra.ExactArgs(2),
	RunE: withFolders(func(ctx context.Context, mgr folders.Manager, scope types.Scope, cmd *cobra.Command, args []string) error {
		id, err := parseLocalID(args[0])
		if err != nil {
			return err
		}
		ref, err := mgr.CopyFolder(ctx, scope, id, types.ParseFolderRef(args[1]))
		if err != nil {
			return err
		}
		fmt.Println(ref.String())
		return nil
	}),
}

var rmCmd = &cobra.Command{
	Use:   "rm <folder-id>",
	Short: "Delete a folder subtree",
	Args:  cobra.ExactArgs(1),
	RunE: withFolders(func(ctx context.Context, mgr folders.Manager, scope types.Scope, cmd *cobra.Command, args []string) error {
		id, err := parseLocalID(args[0])
		if err != nil {
			return err
		}
		return mgr.DeleteFolder(ctx, scope, id)
	}),
}

var bunchCmd = &cobra.Command{
	Use:   "bunch <module> <bunch> [data]",
	Short: "Resolve the folder bound to module/bunch/data",
	Args:  cobra.RangeArgs(2, 3),
	RunE: withFolders(func(ctx context.Context, mgr folders.Manager, scope types.Scope, cmd *cobra.Command, args []string) error {
		var data string
		if len(args) == 3 {
			data = args[2]
		}
		create, _ := cmd.Flags().GetBool("create")
		id, err := mgr.GetFolderID(ctx, scope, args[0], args[1], data, create)
		if err != nil {
			return err
		}
		if id == 0 {
			return fmt.Errorf("%w: %s/%s/%s", types.ErrNotFound, args[0], args[1], data)
		}
		fmt.Println(id)
		return nil
	}),
}

type folderCmdFn func(ctx context.Context, mgr folders.Manager, scope types.Scope, cmd *cobra.Command, args []string) error

func withFolders(fn folderCmdFn) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		scope, err := cliScope()
		if err != nil {
			return err
		}
		cfg, meta, err := loadMeta()
		if err != nil {
			return err
		}
		depends, err := common.InitDepends(cfg, meta)
		if err != nil {
			return err
		}
		err = fn(cmd.Context(), depends.Folders, scope, cmd, args)
		// Close settles queued recount and index tasks of this run.
		if closeErr := depends.Close(); err == nil {
			err = closeErr
		}
		return err
	}
}

func cliScope() (types.Scope, error) {
	actor := uuid.Nil
	if cliActor != "" {
		var err error
		if actor, err = uuid.Parse(cliActor); err != nil {
			return types.Scope{}, fmt.Errorf("%w: actor %s", types.ErrInvalidArgument, cliActor)
		}
	}
	scope := types.NewScope(cliTenant, actor)
	return scope, scope.Validate()
}

func parseLocalID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: folder id %s", types.ErrInvalidArgument, raw)
	}
	return id, nil
}

func printJson(v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
