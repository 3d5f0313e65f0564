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

package provider

import (
	"context"
	"errors"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/basenana/nanadocs/config"
	"github.com/basenana/nanadocs/pkg/folders"
	"github.com/basenana/nanadocs/pkg/metastore"
	"github.com/basenana/nanadocs/pkg/types"
)

var scope = types.NewScope(3001, uuid.New())

func newMemoryMeta() metastore.Meta {
	meta, err := metastore.NewMetaStorage(metastore.MemoryMeta, config.Meta{Type: metastore.MemoryMeta})
	Expect(err).Should(BeNil())
	return meta
}

var _ = Describe("TestMirror", func() {
	var (
		mirror *Mirror
		remote metastore.Meta
	)
	BeforeEach(func() {
		var err error
		mirror, err = NewMirror(nil)
		Expect(err).Should(BeNil())
		remote = newMemoryMeta()
		Expect(mirror.Register("backup", remote)).Should(BeNil())
	})

	It("should refuse invalid or duplicated providers", func() {
		Expect(errors.Is(mirror.Register("back-up", newMemoryMeta()), types.ErrInvalidArgument)).Should(BeTrue())
		Expect(errors.Is(mirror.Register("backup", newMemoryMeta()), types.ErrIsExist)).Should(BeTrue())
		Expect(mirror.Providers()).Should(ConsistOf("backup"))
	})

	It("should open configured providers", func() {
		m, err := NewMirror([]config.Provider{{ID: "cold", Meta: config.Meta{Type: metastore.MemoryMeta}}})
		Expect(err).Should(BeNil())
		Expect(m.Providers()).Should(ConsistOf("cold"))
		Expect(m.Close()).Should(BeNil())
		Expect(m.Providers()).Should(BeEmpty())
	})

	It("should create the root once", func() {
		first, err := mirror.EnsureRoot(context.TODO(), scope, "backup")
		Expect(err).Should(BeNil())
		second, err := mirror.EnsureRoot(context.TODO(), scope, "backup")
		Expect(err).Should(BeNil())
		Expect(second).Should(Equal(first))

		_, err = mirror.EnsureRoot(context.TODO(), scope, "missing")
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
	})

	It("should resolve foreign ids", func() {
		rootID, err := mirror.EnsureRoot(context.TODO(), scope, "backup")
		Expect(err).Should(BeNil())
		store, err := mirror.Select(context.TODO(), scope, rootID)
		Expect(err).Should(BeNil())

		native, err := store.Converter.Native(rootID)
		Expect(err).Should(BeNil())
		Expect(store.Converter.Foreign(native)).Should(Equal(rootID))

		root, err := store.Folders.GetFolder(context.TODO(), native)
		Expect(err).Should(BeNil())
		Expect(root.Title).Should(Equal("backup"))

		_, err = store.Converter.Native("other-1")
		Expect(errors.Is(err, types.ErrInvalidArgument)).Should(BeTrue())
		_, err = mirror.Select(context.TODO(), scope, "nowhere-1")
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
		_, err = mirror.Select(context.TODO(), scope, "backup")
		Expect(errors.Is(err, types.ErrInvalidArgument)).Should(BeTrue())
	})

	It("should serve folder transfers of the manager", func() {
		local := newMemoryMeta()
		mgr, err := folders.New(local, folders.WithSelector(mirror))
		Expect(err).Should(BeNil())
		defer mgr.Close()

		src, err := mgr.SaveFolder(context.TODO(), scope, &types.Folder{Title: "projects"})
		Expect(err).Should(BeNil())
		child, err := mgr.SaveFolder(context.TODO(), scope, &types.Folder{ParentID: src, Title: "alpha"})
		Expect(err).Should(BeNil())
		Expect(local.SaveFile(context.TODO(), &types.File{TenantID: scope.TenantID, FolderID: child, Title: "plan.md", ContentLength: 5})).Should(BeNil())

		rootID, err := mirror.EnsureRoot(context.TODO(), scope, "backup")
		Expect(err).Should(BeNil())
		mapping, err := mgr.TransferFolder(context.TODO(), scope, src, rootID, true)
		Expect(err).Should(BeNil())
		Expect(mapping).Should(HaveLen(2))

		store, err := mirror.Select(context.TODO(), scope, mapping[child])
		Expect(err).Should(BeNil())
		native, err := store.Converter.Native(mapping[child])
		Expect(err).Should(BeNil())
		files, err := store.Files.ListFiles(context.TODO(), native)
		Expect(err).Should(BeNil())
		Expect(files).Should(HaveLen(1))
		Expect(files[0].Title).Should(Equal("plan.md"))

		path, err := remote.AncestorPath(context.TODO(), mustParse(native))
		Expect(err).Should(BeNil())
		Expect(path).Should(HaveLen(2))

		_, err = mgr.GetFolder(context.TODO(), scope, src)
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
	})

	It("should keep provider writes out of the local transaction", func() {
		local := newMemoryMeta()
		mgr, err := folders.New(local, folders.WithSelector(mirror))
		Expect(err).Should(BeNil())
		defer mgr.Close()

		src, err := mgr.SaveFolder(context.TODO(), scope, &types.Folder{Title: "inbox"})
		Expect(err).Should(BeNil())
		rootID, err := mirror.EnsureRoot(context.TODO(), scope, "backup")
		Expect(err).Should(BeNil())

		var mapping map[int64]types.ForeignID
		err = mgr.Transaction(context.TODO(), func(ctx context.Context) error {
			var err error
			mapping, err = mgr.TransferFolder(ctx, scope, src, rootID, false)
			return err
		})
		Expect(err).Should(BeNil())
		Expect(mapping).Should(HaveKey(src))

		store, err := mirror.Select(context.TODO(), scope, mapping[src])
		Expect(err).Should(BeNil())
		native, err := store.Converter.Native(mapping[src])
		Expect(err).Should(BeNil())
		copied, err := remote.GetFolder(context.TODO(), scope.TenantID, mustParse(native))
		Expect(err).Should(BeNil())
		Expect(copied.Title).Should(Equal("inbox"))

		_, err = local.GetFolder(context.TODO(), scope.TenantID, mustParse(native))
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
		_, err = mgr.GetFolder(context.TODO(), scope, src)
		Expect(err).Should(BeNil())
	})
})

func mustParse(id string) int64 {
	fid, err := parseNative(id)
	Expect(err).Should(BeNil())
	return fid
}
