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

package metastore

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/basenana/nanadocs/pkg/types"
)

var _ = Describe("TestFolderTree", func() {
	var sqlite = buildNewSqliteMetaStore("test_tree.db")

	var root, reports, year, archive *types.Folder
	BeforeEach(func() {
		root = createTestFolder(sqlite, 0, "root")
		reports = createTestFolder(sqlite, root.ID, "reports")
		year = createTestFolder(sqlite, reports.ID, "2024")
		archive = createTestFolder(sqlite, year.ID, "archive")
	})

	Context("insert a subtree", func() {
		It("should keep exactly one self link per folder", func() {
			for _, f := range []*types.Folder{root, reports, year, archive} {
				expectSelfLink(sqlite, f.ID)
			}
		})
		It("should copy the ancestor edges of the parent", func() {
			edges, err := sqlite.ListEdges(context.TODO(), archive.ID)
			Expect(err).Should(BeNil())
			Expect(edges).Should(ConsistOf(
				types.ClosureEdge{FolderID: archive.ID, ParentID: archive.ID, Level: 0},
				types.ClosureEdge{FolderID: archive.ID, ParentID: year.ID, Level: 1},
				types.ClosureEdge{FolderID: archive.ID, ParentID: reports.ID, Level: 2},
				types.ClosureEdge{FolderID: archive.ID, ParentID: root.ID, Level: 3},
			))
		})
		It("should fail when the parent has no edges", func() {
			err := sqlite.Transaction(context.TODO(), func(ctx context.Context) error {
				return sqlite.InsertSubtree(ctx, 42, 4242)
			})
			Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())

			edges, err := sqlite.ListEdges(context.TODO(), 42)
			Expect(err).Should(BeNil())
			Expect(edges).Should(BeEmpty())
		})
	})

	Context("query ancestors", func() {
		It("should return the path from root to the parent", func() {
			p, err := sqlite.AncestorPath(context.TODO(), archive.ID)
			Expect(err).Should(BeNil())
			Expect(p).Should(Equal([]int64{root.ID, reports.ID, year.ID}))
		})
		It("should return an empty path for a root", func() {
			p, err := sqlite.AncestorPath(context.TODO(), root.ID)
			Expect(err).Should(BeNil())
			Expect(p).Should(BeEmpty())
		})
		It("should resolve the root idempotently", func() {
			r1, err := sqlite.RootOf(context.TODO(), archive.ID)
			Expect(err).Should(BeNil())
			r2, err := sqlite.RootOf(context.TODO(), archive.ID)
			Expect(err).Should(BeNil())
			Expect(r1).Should(Equal(root.ID))
			Expect(r2).Should(Equal(r1))

			self, err := sqlite.RootOf(context.TODO(), root.ID)
			Expect(err).Should(BeNil())
			Expect(self).Should(Equal(root.ID))
		})
		It("should fail for a folder without edges", func() {
			_, err := sqlite.RootOf(context.TODO(), 987654321)
			Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
		})
		It("should test ancestry including the self link", func() {
			ok, err := sqlite.IsAncestor(context.TODO(), root.ID, archive.ID)
			Expect(err).Should(BeNil())
			Expect(ok).Should(BeTrue())

			ok, err = sqlite.IsAncestor(context.TODO(), year.ID, year.ID)
			Expect(err).Should(BeNil())
			Expect(ok).Should(BeTrue())

			ok, err = sqlite.IsAncestor(context.TODO(), archive.ID, root.ID)
			Expect(err).Should(BeNil())
			Expect(ok).Should(BeFalse())
		})
	})

	Context("query descendants", func() {
		It("should honour the minimum level", func() {
			all, err := sqlite.Descendants(context.TODO(), reports.ID, 0)
			Expect(err).Should(BeNil())
			Expect(all).Should(ConsistOf(reports.ID, year.ID, archive.ID))

			below, err := sqlite.Descendants(context.TODO(), reports.ID, 1)
			Expect(err).Should(BeNil())
			Expect(below).Should(ConsistOf(year.ID, archive.ID))
		})
		It("should list direct or recursive subfolders", func() {
			direct, err := sqlite.SubfolderIDs(context.TODO(), root.ID, false)
			Expect(err).Should(BeNil())
			Expect(direct).Should(ConsistOf(reports.ID))

			recursive, err := sqlite.SubfolderIDs(context.TODO(), root.ID, true)
			Expect(err).Should(BeNil())
			Expect(recursive).Should(ConsistOf(reports.ID, year.ID, archive.ID))

			cnt, err := sqlite.CountChildren(context.TODO(), root.ID)
			Expect(err).Should(BeNil())
			Expect(cnt).Should(Equal(1))
		})
	})

	Context("relocate a subtree", func() {
		It("should rebuild ancestry under the new parent", func() {
			err := sqlite.Transaction(context.TODO(), func(ctx context.Context) error {
				return sqlite.RelocateSubtree(ctx, year.ID, root.ID)
			})
			Expect(err).Should(BeNil())

			p, err := sqlite.AncestorPath(context.TODO(), year.ID)
			Expect(err).Should(BeNil())
			Expect(p).Should(Equal([]int64{root.ID}))

			p, err = sqlite.AncestorPath(context.TODO(), archive.ID)
			Expect(err).Should(BeNil())
			Expect(p).Should(Equal([]int64{root.ID, year.ID}))

			ok, err := sqlite.IsAncestor(context.TODO(), reports.ID, archive.ID)
			Expect(err).Should(BeNil())
			Expect(ok).Should(BeFalse())

			cnt, err := sqlite.CountChildren(context.TODO(), reports.ID)
			Expect(err).Should(BeNil())
			Expect(cnt).Should(Equal(0))
			cnt, err = sqlite.CountChildren(context.TODO(), root.ID)
			Expect(err).Should(BeNil())
			Expect(cnt).Should(Equal(2))

			expectSelfLink(sqlite, year.ID)
			expectSelfLink(sqlite, archive.ID)
		})
		It("should move into another tree", func() {
			other := createTestFolder(sqlite, 0, "other")
			otherChild := createTestFolder(sqlite, other.ID, "child")

			Expect(sqlite.RelocateSubtree(context.TODO(), reports.ID, otherChild.ID)).Should(BeNil())
			p, err := sqlite.AncestorPath(context.TODO(), archive.ID)
			Expect(err).Should(BeNil())
			Expect(p).Should(Equal([]int64{other.ID, otherChild.ID, reports.ID, year.ID}))

			r, err := sqlite.RootOf(context.TODO(), archive.ID)
			Expect(err).Should(BeNil())
			Expect(r).Should(Equal(other.ID))
		})
		It("should detach to a root", func() {
			Expect(sqlite.RelocateSubtree(context.TODO(), year.ID, 0)).Should(BeNil())
			r, err := sqlite.RootOf(context.TODO(), archive.ID)
			Expect(err).Should(BeNil())
			Expect(r).Should(Equal(year.ID))
		})
		It("should refuse a destination inside the subtree", func() {
			err := sqlite.RelocateSubtree(context.TODO(), reports.ID, archive.ID)
			Expect(errors.Is(err, types.ErrInvalidOperation)).Should(BeTrue())
			err = sqlite.RelocateSubtree(context.TODO(), reports.ID, reports.ID)
			Expect(errors.Is(err, types.ErrInvalidOperation)).Should(BeTrue())

			p, err := sqlite.AncestorPath(context.TODO(), archive.ID)
			Expect(err).Should(BeNil())
			Expect(p).Should(Equal([]int64{root.ID, reports.ID, year.ID}))
		})
	})

	Context("delete a subtree", func() {
		It("should remove every edge of the descendants", func() {
			ids, err := sqlite.DeleteSubtree(context.TODO(), reports.ID)
			Expect(err).Should(BeNil())
			Expect(ids).Should(ConsistOf(reports.ID, year.ID, archive.ID))

			for _, id := range ids {
				edges, err := sqlite.ListEdges(context.TODO(), id)
				Expect(err).Should(BeNil())
				Expect(edges).Should(BeEmpty())
			}
			sub, err := sqlite.SubfolderIDs(context.TODO(), root.ID, true)
			Expect(err).Should(BeNil())
			Expect(sub).Should(BeEmpty())
			expectSelfLink(sqlite, root.ID)
		})
	})

	Context("roll back a transaction", func() {
		It("should leave no edges behind", func() {
			boom := errors.New("boom")
			var created *types.Folder
			err := sqlite.Transaction(context.TODO(), func(ctx context.Context) error {
				created = &types.Folder{ID: 777001, TenantID: testTenant, ParentID: root.ID, Title: "tmp"}
				if err := sqlite.CreateFolder(ctx, created); err != nil {
					return err
				}
				if err := sqlite.InsertSubtree(ctx, created.ID, root.ID); err != nil {
					return err
				}
				return boom
			})
			Expect(errors.Is(err, boom)).Should(BeTrue())

			edges, err := sqlite.ListEdges(context.TODO(), created.ID)
			Expect(err).Should(BeNil())
			Expect(edges).Should(BeEmpty())
			_, err = sqlite.GetFolder(context.TODO(), testTenant, created.ID)
			Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
		})
	})
})

var _ = Describe("TestStoreTransactions", func() {
	var (
		local  = buildNewSqliteMetaStore("test_tx_local.db")
		remote = buildNewSqliteMetaStore("test_tx_remote.db")
	)

	It("should not share a transaction between stores", func() {
		var dropped, kept *types.Folder
		rollback := errors.New("rollback")
		err := local.Transaction(context.TODO(), func(ctx context.Context) error {
			dropped = createTestFolderIn(ctx, local, "local-dropped")
			kept = createTestFolderIn(ctx, remote, "remote-kept")
			_, err := local.GetFolder(ctx, testTenant, kept.ID)
			Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
			return rollback
		})
		Expect(err).Should(Equal(rollback))

		got, err := remote.GetFolder(context.TODO(), testTenant, kept.ID)
		Expect(err).Should(BeNil())
		Expect(got.Title).Should(Equal("remote-kept"))
		_, err = local.GetFolder(context.TODO(), testTenant, dropped.ID)
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
	})
})
