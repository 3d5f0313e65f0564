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

package folders

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/basenana/nanadocs/pkg/types"
)

var _ = Describe("TestSaveFolder", func() {
	var mgr, _ = newTestManager("test_save.db")

	var rootID int64
	BeforeEach(func() {
		rootID = mkdir(mgr, 0, "save-root")
	})

	It("should sanitize titles before saving", func() {
		id := mkdir(mgr, rootID, "  q1:report/draft?  ")
		f, err := mgr.GetFolder(context.TODO(), testScope, id)
		Expect(err).Should(BeNil())
		Expect(f.Title).Should(Equal("q1_report_draft_"))
		Expect(f.ParentID).Should(Equal(rootID))
		Expect(f.CreateBy).Should(Equal(testActor))
		Expect(f.ModifiedBy).Should(Equal(testActor))
	})

	It("should refuse invalid folders", func() {
		_, err := mgr.SaveFolder(context.TODO(), testScope, &types.Folder{ParentID: rootID, Title: "   "})
		Expect(errors.Is(err, types.ErrInvalidArgument)).Should(BeTrue())

		_, err = mgr.SaveFolder(context.TODO(), types.Scope{}, &types.Folder{ParentID: rootID, Title: "x"})
		Expect(errors.Is(err, types.ErrInvalidArgument)).Should(BeTrue())

		_, err = mgr.SaveFolder(context.TODO(), testScope, &types.Folder{ParentID: 4242, Title: "orphan"})
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
	})

	It("should update a folder in place when its id exists", func() {
		id := mkdir(mgr, rootID, "before")
		owner := uuid.New()
		got, err := mgr.SaveFolder(context.TODO(), testScope, &types.Folder{ID: id, Title: "after", CreateBy: owner})
		Expect(err).Should(BeNil())
		Expect(got).Should(Equal(id))

		f, err := mgr.GetFolder(context.TODO(), testScope, id)
		Expect(err).Should(BeNil())
		Expect(f.Title).Should(Equal("after"))
		Expect(f.CreateBy).Should(Equal(owner))
		Expect(f.ParentID).Should(Equal(rootID))
	})

	It("should insert when the given id is unknown", func() {
		got, err := mgr.SaveFolder(context.TODO(), testScope, &types.Folder{ID: 777, ParentID: rootID, Title: "fresh"})
		Expect(err).Should(BeNil())
		Expect(got).ShouldNot(Equal(int64(777)))
	})

	It("should hide folders of other tenants", func() {
		id := mkdir(mgr, rootID, "private")
		_, err := mgr.GetFolder(context.TODO(), types.NewScope(testTenant+1, testActor), id)
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
	})

	It("should roll back every save of a failed transaction", func() {
		var created int64
		err := mgr.Transaction(context.TODO(), func(ctx context.Context) error {
			var err error
			created, err = mgr.SaveFolder(ctx, testScope, &types.Folder{ParentID: rootID, Title: "doomed"})
			if err != nil {
				return err
			}
			_, err = mgr.SaveFolder(ctx, testScope, &types.Folder{ParentID: 4242, Title: "orphan"})
			return err
		})
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
		Expect(created).ShouldNot(BeZero())

		_, err = mgr.GetFolder(context.TODO(), testScope, created)
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
		Consistently(foldersCount(mgr, rootID), time.Millisecond*300).Should(Equal(0))
	})
})

var _ = Describe("TestRenameFolder", func() {
	var mgr, _ = newTestManager("test_rename.db")

	It("should rename and find by the new title", func() {
		rootID := mkdir(mgr, 0, "rename-root")
		id := mkdir(mgr, rootID, "old name")

		got, err := mgr.RenameFolder(context.TODO(), testScope, id, "New Name")
		Expect(err).Should(BeNil())
		Expect(got).Should(Equal(id))

		f, err := mgr.FindFolder(context.TODO(), testScope, "new name", rootID)
		Expect(err).Should(BeNil())
		Expect(f.ID).Should(Equal(id))
		Expect(f.Title).Should(Equal("New Name"))
	})

	It("should keep the folder untouched on the same title", func() {
		rootID := mkdir(mgr, 0, "rename-root-2")
		id := mkdir(mgr, rootID, "same")
		before, err := mgr.GetFolder(context.TODO(), testScope, id)
		Expect(err).Should(BeNil())

		_, err = mgr.RenameFolder(context.TODO(), types.NewScope(testTenant, uuid.New()), id, "same")
		Expect(err).Should(BeNil())

		after, err := mgr.GetFolder(context.TODO(), testScope, id)
		Expect(err).Should(BeNil())
		Expect(after.ModifiedBy).Should(Equal(before.ModifiedBy))
		Expect(after.ModifiedOn.Equal(before.ModifiedOn)).Should(BeTrue())
	})

	It("should refuse empty titles and missing folders", func() {
		_, err := mgr.RenameFolder(context.TODO(), testScope, 4242, "x")
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
		_, err = mgr.RenameFolder(context.TODO(), testScope, 4242, "")
		Expect(errors.Is(err, types.ErrInvalidArgument)).Should(BeTrue())
	})
})

var _ = Describe("TestDeleteFolder", func() {
	var mgr, meta = newTestManager("test_delete.db")

	It("should refuse the zero id and system roots", func() {
		Expect(errors.Is(mgr.DeleteFolder(context.TODO(), testScope, 0), types.ErrInvalidArgument)).Should(BeTrue())
		Expect(errors.Is(mgr.DeleteFolder(context.TODO(), testScope, 4242), types.ErrNotFound)).Should(BeTrue())

		commonID, err := mgr.FolderIDCommon(context.TODO(), testScope, true)
		Expect(err).Should(BeNil())
		Expect(errors.Is(mgr.DeleteFolder(context.TODO(), testScope, commonID), types.ErrForbidden)).Should(BeTrue())

		myID, err := mgr.FolderIDUser(context.TODO(), testScope, true, testActor)
		Expect(err).Should(BeNil())
		Expect(errors.Is(mgr.DeleteFolder(context.TODO(), testScope, myID), types.ErrForbidden)).Should(BeTrue())
	})

	It("should delete generic bunch folders and forget their binding", func() {
		id, err := mgr.GetFolderID(context.TODO(), testScope, "crm", "deal", "42", true)
		Expect(err).Should(BeNil())
		Expect(mgr.DeleteFolder(context.TODO(), testScope, id)).Should(BeNil())

		again, err := mgr.GetFolderID(context.TODO(), testScope, "crm", "deal", "42", false)
		Expect(err).Should(BeNil())
		Expect(again).Should(BeZero())

		recreated, err := mgr.GetFolderID(context.TODO(), testScope, "crm", "deal", "42", true)
		Expect(err).Should(BeNil())
		Expect(recreated).ShouldNot(Equal(id))
	})

	It("should cascade to descendants and their links", func() {
		rootID := mkdir(mgr, 0, "delete-root")
		target := mkdir(mgr, rootID, "target")
		child := mkdir(mgr, target, "child")
		grandchild := mkdir(mgr, child, "grandchild")
		addFile(meta, grandchild, "notes.txt", 10)

		tag := &types.Tag{TenantID: testTenant, Name: "cascade", Owner: testActor}
		Expect(meta.SaveTag(context.TODO(), tag)).Should(BeNil())
		Expect(meta.LinkTag(context.TODO(), types.TagLink{
			TenantID: testTenant, TagID: tag.ID, EntryID: strconv.FormatInt(child, 10),
			EntryType: types.EntryTypeFolder, CreateBy: testActor, CreateOn: time.Now(),
		})).Should(BeNil())
		Expect(meta.SaveSecurity(context.TODO(), &types.SecurityRecord{
			TenantID: testTenant, EntryID: strconv.FormatInt(grandchild, 10),
			EntryType: types.EntryTypeFolder, Subject: uuid.New(), Owner: testActor, Share: 1,
		})).Should(BeNil())

		Expect(mgr.DeleteFolder(context.TODO(), testScope, target)).Should(BeNil())

		for _, id := range []int64{target, child, grandchild} {
			_, err := mgr.GetFolder(context.TODO(), testScope, id)
			Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())

			edges, err := meta.ListEdges(context.TODO(), id)
			Expect(err).Should(BeNil())
			Expect(edges).Should(BeEmpty())
		}

		ids := []string{strconv.FormatInt(child, 10), strconv.FormatInt(grandchild, 10)}
		links, err := meta.ListTagLinks(context.TODO(), testTenant, ids, types.EntryTypeFolder)
		Expect(err).Should(BeNil())
		Expect(links).Should(BeEmpty())
		records, err := meta.ListSecurity(context.TODO(), testTenant, ids, types.EntryTypeFolder)
		Expect(err).Should(BeNil())
		Expect(records).Should(BeEmpty())
		tags, err := meta.ListTags(context.TODO(), testTenant)
		Expect(err).Should(BeNil())
		Expect(tags).Should(BeEmpty())
		files, err := meta.ListFiles(context.TODO(), testTenant, grandchild)
		Expect(err).Should(BeNil())
		Expect(files).Should(BeEmpty())

		root, err := mgr.GetFolder(context.TODO(), testScope, rootID)
		Expect(err).Should(BeNil())
		Expect(root.ID).Should(Equal(rootID))
	})

	It("should converge the parent counts after deletion", func() {
		parent := mkdir(mgr, 0, "count-parent")
		first := mkdir(mgr, parent, "c1")
		mkdir(mgr, parent, "c2")
		mkdir(mgr, parent, "c3")
		Eventually(foldersCount(mgr, parent), time.Second*5).Should(Equal(3))

		Expect(mgr.DeleteFolder(context.TODO(), testScope, first)).Should(BeNil())
		Eventually(foldersCount(mgr, parent), time.Second*5).Should(Equal(2))
	})
})

var _ = Describe("TestReassignFolders", func() {
	var mgr, _ = newTestManager("test_reassign.db")

	It("should change the owner of every folder", func() {
		rootID := mkdir(mgr, 0, "reassign-root")
		a := mkdir(mgr, rootID, "a")
		b := mkdir(mgr, rootID, "b")
		owner := uuid.New()

		Expect(mgr.ReassignFolders(context.TODO(), testScope, []int64{a, b}, owner)).Should(BeNil())
		for _, id := range []int64{a, b} {
			f, err := mgr.GetFolder(context.TODO(), testScope, id)
			Expect(err).Should(BeNil())
			Expect(f.CreateBy).Should(Equal(owner))
		}
		Expect(errors.Is(mgr.ReassignFolders(context.TODO(), testScope, []int64{a}, uuid.Nil), types.ErrInvalidArgument)).Should(BeTrue())
	})
})
