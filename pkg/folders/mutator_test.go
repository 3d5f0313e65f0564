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
	"time"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/basenana/nanadocs/pkg/types"
)

type unknownRef struct{ types.FolderRef }

var _ = Describe("TestMoveFolder", func() {
	var mgr, meta = newTestManager("test_move.db")

	var myID, reports, year int64
	BeforeEach(func() {
		var err error
		myID, err = mgr.FolderIDUser(context.TODO(), testScope, true, uuid.New())
		Expect(err).Should(BeNil())
		reports = mkdir(mgr, myID, "Reports")
		year = mkdir(mgr, reports, "2024")
	})

	It("should move a subtree up and settle the counts", func() {
		q1 := mkdir(mgr, year, "q1")

		ref, err := mgr.MoveFolder(context.TODO(), testScope, year, types.LocalID(myID))
		Expect(err).Should(BeNil())
		Expect(ref).Should(Equal(types.LocalID(year)))

		path, err := meta.AncestorPath(context.TODO(), year)
		Expect(err).Should(BeNil())
		Expect(path).Should(Equal([]int64{myID}))
		path, err = meta.AncestorPath(context.TODO(), q1)
		Expect(err).Should(BeNil())
		Expect(path).Should(Equal([]int64{myID, year}))

		for _, id := range []int64{year, q1} {
			edges, err := meta.ListEdges(context.TODO(), id)
			Expect(err).Should(BeNil())
			for _, e := range edges {
				Expect(e.ParentID).ShouldNot(Equal(reports))
			}
		}

		f, err := mgr.GetFolder(context.TODO(), testScope, year)
		Expect(err).Should(BeNil())
		Expect(f.ParentID).Should(Equal(myID))

		Eventually(foldersCount(mgr, reports), time.Second*5).Should(Equal(0))
		Eventually(foldersCount(mgr, myID), time.Second*5).Should(Equal(2))
	})

	It("should keep the current ancestry for the cycle check", func() {
		_, err := mgr.MoveFolder(context.TODO(), testScope, year, types.LocalID(myID))
		Expect(err).Should(BeNil())

		conflicts, err := mgr.CanMoveOrCopy(context.TODO(), testScope, []int64{reports}, types.LocalID(year))
		Expect(err).Should(BeNil())
		Expect(conflicts).Should(BeEmpty())
	})

	It("should refuse moving into its own subtree", func() {
		_, err := mgr.MoveFolder(context.TODO(), testScope, reports, types.LocalID(year))
		Expect(errors.Is(err, types.ErrInvalidOperation)).Should(BeTrue())
		_, err = mgr.MoveFolder(context.TODO(), testScope, reports, types.LocalID(reports))
		Expect(errors.Is(err, types.ErrInvalidOperation)).Should(BeTrue())

		path, err := meta.AncestorPath(context.TODO(), year)
		Expect(err).Should(BeNil())
		Expect(path).Should(Equal([]int64{myID, reports}))
	})

	It("should refuse system folders and bad destinations", func() {
		otherRoot := mkdir(mgr, 0, "elsewhere")
		_, err := mgr.MoveFolder(context.TODO(), testScope, myID, types.LocalID(otherRoot))
		Expect(errors.Is(err, types.ErrForbidden)).Should(BeTrue())

		_, err = mgr.MoveFolder(context.TODO(), testScope, year, types.LocalID(4242))
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
		_, err = mgr.MoveFolder(context.TODO(), testScope, year, types.LocalID(0))
		Expect(errors.Is(err, types.ErrInvalidArgument)).Should(BeTrue())
		_, err = mgr.MoveFolder(context.TODO(), testScope, year, nil)
		Expect(errors.Is(err, types.ErrInvalidArgument)).Should(BeTrue())
		_, err = mgr.MoveFolder(context.TODO(), testScope, year, unknownRef{})
		Expect(errors.Is(err, types.ErrNotImplemented)).Should(BeTrue())
		_, err = mgr.MoveFolder(context.TODO(), testScope, year, types.ForeignID("mem-root"))
		Expect(errors.Is(err, types.ErrNotImplemented)).Should(BeTrue())
	})

	It("should treat moving under the same parent as a no-op", func() {
		before, err := mgr.GetFolder(context.TODO(), testScope, year)
		Expect(err).Should(BeNil())
		_, err = mgr.MoveFolder(context.TODO(), testScope, year, types.LocalID(reports))
		Expect(err).Should(BeNil())
		after, err := mgr.GetFolder(context.TODO(), testScope, year)
		Expect(err).Should(BeNil())
		Expect(after.ModifiedOn.Equal(before.ModifiedOn)).Should(BeTrue())
	})

	It("should move across roots", func() {
		common, err := mgr.FolderIDCommon(context.TODO(), testScope, true)
		Expect(err).Should(BeNil())
		_, err = mgr.MoveFolder(context.TODO(), testScope, reports, types.LocalID(common))
		Expect(err).Should(BeNil())

		f, err := mgr.GetFolder(context.TODO(), testScope, year)
		Expect(err).Should(BeNil())
		Expect(f.RootFolderID).Should(Equal(common))
		Expect(f.RootFolderType).Should(Equal(types.FolderTypeCommon))
	})
})

var _ = Describe("TestCopyFolder", func() {
	var mgr, meta = newTestManager("test_copy.db")

	It("should save a fresh folder under the destination", func() {
		common, err := mgr.FolderIDCommon(context.TODO(), testScope, true)
		Expect(err).Should(BeNil())
		src := mkdir(mgr, 0, "copy-src")
		mkdir(mgr, src, "child")
		dest := mkdir(mgr, common, "target")

		ref, err := mgr.CopyFolder(context.TODO(), testScope, src, types.LocalID(dest))
		Expect(err).Should(BeNil())
		copied, ok := ref.(types.LocalID)
		Expect(ok).Should(BeTrue())
		Expect(int64(copied)).ShouldNot(Equal(src))

		f, err := mgr.GetFolder(context.TODO(), testScope, int64(copied))
		Expect(err).Should(BeNil())
		Expect(f.Title).Should(Equal("copy-src"))
		Expect(f.ParentID).Should(Equal(dest))
		Expect(f.FolderType).Should(Equal(types.FolderTypeDefault))
		Expect(f.RootFolderID).Should(Equal(common))
		Expect(f.RootFolderType).Should(Equal(types.FolderTypeCommon))

		path, err := meta.AncestorPath(context.TODO(), int64(copied))
		Expect(err).Should(BeNil())
		Expect(path).Should(Equal([]int64{common, dest}))

		source, err := mgr.GetFolder(context.TODO(), testScope, src)
		Expect(err).Should(BeNil())
		Expect(source.ParentID).Should(BeZero())
	})

	It("should copy bunch roots as default folders", func() {
		bunchID, err := mgr.GetFolderID(context.TODO(), testScope, "crm", "lead", "9", true)
		Expect(err).Should(BeNil())
		dest := mkdir(mgr, 0, "copy-dest")

		ref, err := mgr.CopyFolder(context.TODO(), testScope, bunchID, types.LocalID(dest))
		Expect(err).Should(BeNil())
		f, err := mgr.GetFolder(context.TODO(), testScope, int64(ref.(types.LocalID)))
		Expect(err).Should(BeNil())
		Expect(f.FolderType).Should(Equal(types.FolderTypeDefault))
	})

	It("should keep the type of other folders", func() {
		src, err := mgr.SaveFolder(context.TODO(), testScope, &types.Folder{Title: "tpl", FolderType: types.FolderTypeTemplates})
		Expect(err).Should(BeNil())
		dest := mkdir(mgr, 0, "copy-dest-typed")

		ref, err := mgr.CopyFolder(context.TODO(), testScope, src, types.LocalID(dest))
		Expect(err).Should(BeNil())
		f, err := mgr.GetFolder(context.TODO(), testScope, int64(ref.(types.LocalID)))
		Expect(err).Should(BeNil())
		Expect(f.FolderType).Should(Equal(types.FolderTypeTemplates))
		Expect(f.ParentID).Should(Equal(dest))
	})

	It("should refuse missing folders", func() {
		dest := mkdir(mgr, 0, "copy-dest-2")
		_, err := mgr.CopyFolder(context.TODO(), testScope, 4242, types.LocalID(dest))
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
		_, err = mgr.CopyFolder(context.TODO(), testScope, dest, types.LocalID(4242))
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
	})
})

var _ = Describe("TestTransferFolder", func() {
	var foreign = newMemForeignStore()
	var mgr, meta = newTestManager("test_transfer.db", WithSelector(foreign))

	var src, child int64
	BeforeEach(func() {
		rootID := mkdir(mgr, 0, "transfer-root")
		src = mkdir(mgr, rootID, "outbox")
		child = mkdir(mgr, src, "drafts")
		addFile(meta, src, "a.txt", 1)
		addFile(meta, child, "b.txt", 2)
		foreign.failOn = ""
	})

	It("should copy the subtree and keep the source", func() {
		ref, err := mgr.CopyFolder(context.TODO(), testScope, src, types.ForeignID("mem-root"))
		Expect(err).Should(BeNil())
		copied, ok := ref.(types.ForeignID)
		Expect(ok).Should(BeTrue())

		native, err := foreign.Native(copied)
		Expect(err).Should(BeNil())
		f, err := foreign.GetFolder(context.TODO(), native)
		Expect(err).Should(BeNil())
		Expect(f.Title).Should(Equal("outbox"))
		Expect(f.ParentID).Should(Equal("root"))

		drafts, err := foreign.FindFolder(context.TODO(), native, "drafts")
		Expect(err).Should(BeNil())
		files, err := foreign.ListFiles(context.TODO(), drafts.ID)
		Expect(err).Should(BeNil())
		Expect(files).Should(HaveLen(1))
		Expect(files[0].Title).Should(Equal("b.txt"))

		_, err = mgr.GetFolder(context.TODO(), testScope, src)
		Expect(err).Should(BeNil())
	})

	It("should delete the source only after a complete copy", func() {
		mapping, err := mgr.TransferFolder(context.TODO(), testScope, src, types.ForeignID("mem-root"), true)
		Expect(err).Should(BeNil())
		Expect(mapping).Should(HaveKey(src))
		Expect(mapping).Should(HaveKey(child))

		_, err = mgr.GetFolder(context.TODO(), testScope, src)
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
		_, err = mgr.GetFolder(context.TODO(), testScope, child)
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
	})

	It("should keep the source when the destination fails", func() {
		foreign.failOn = "drafts"
		_, err := mgr.MoveFolder(context.TODO(), testScope, src, types.ForeignID("mem-root"))
		Expect(err).ShouldNot(BeNil())

		_, err = mgr.GetFolder(context.TODO(), testScope, src)
		Expect(err).Should(BeNil())
		_, err = mgr.GetFolder(context.TODO(), testScope, child)
		Expect(err).Should(BeNil())
	})

	It("should refuse unknown foreign folders", func() {
		_, err := mgr.CopyFolder(context.TODO(), testScope, src, types.ForeignID("mem-nowhere"))
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
		_, err = mgr.CopyFolder(context.TODO(), testScope, src, types.ForeignID("other-1"))
		Expect(errors.Is(err, types.ErrNotFound)).Should(BeTrue())
	})
})

var _ = Describe("TestCloseManager", func() {
	It("should settle scheduled recounts before closing", func() {
		mgr, meta := newTestManager("test_close.db")
		parent := mkdir(mgr, 0, "close-parent")
		mkdir(mgr, parent, "only")
		Expect(mgr.Close()).Should(BeNil())

		f, err := meta.GetFolder(context.TODO(), testTenant, parent)
		Expect(err).Should(BeNil())
		Expect(f.FoldersCount).Should(Equal(1))
	})
})
