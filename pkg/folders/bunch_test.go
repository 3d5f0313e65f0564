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
	"sync"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/basenana/nanadocs/pkg/types"
)

var _ = Describe("TestBunchRegistry", func() {
	var mgr, meta = newTestManager("test_bunch.db")

	It("should resolve the same folder idempotently", func() {
		user := uuid.New()
		first, err := mgr.GetFolderID(context.TODO(), testScope, ModuleFiles, BunchMy, user.String(), true)
		Expect(err).Should(BeNil())
		Expect(first).ShouldNot(BeZero())

		second, err := mgr.GetFolderID(context.TODO(), testScope, ModuleFiles, BunchMy, user.String(), true)
		Expect(err).Should(BeNil())
		Expect(second).Should(Equal(first))

		third, err := mgr.GetFolderID(context.TODO(), testScope, ModuleFiles, BunchMy, user.String(), false)
		Expect(err).Should(BeNil())
		Expect(third).Should(Equal(first))

		viaHelper, err := mgr.FolderIDUser(context.TODO(), testScope, false, user)
		Expect(err).Should(BeNil())
		Expect(viaHelper).Should(Equal(first))
	})

	It("should return zero for a missing binding without create", func() {
		id, err := mgr.GetFolderID(context.TODO(), testScope, ModuleFiles, BunchMy, uuid.New().String(), false)
		Expect(err).Should(BeNil())
		Expect(id).Should(BeZero())
	})

	It("should build well-known folders from the bunch name", func() {
		user := uuid.New()
		cases := []struct {
			resolve    func() (int64, error)
			folderType types.FolderType
			title      string
			owner      uuid.UUID
		}{
			{func() (int64, error) { return mgr.FolderIDUser(context.TODO(), testScope, true, user) }, types.FolderTypeUser, "My Documents", user},
			{func() (int64, error) { return mgr.FolderIDTrash(context.TODO(), testScope, true, user) }, types.FolderTypeTrash, "Trash", user},
			{func() (int64, error) { return mgr.FolderIDPrivacy(context.TODO(), testScope, true, user) }, types.FolderTypePrivacy, "Private Room", user},
			{func() (int64, error) { return mgr.FolderIDCommon(context.TODO(), testScope, true) }, types.FolderTypeCommon, "Common Documents", testActor},
			{func() (int64, error) { return mgr.FolderIDShare(context.TODO(), testScope, true) }, types.FolderTypeShare, "Shared with Me", testActor},
			{func() (int64, error) { return mgr.FolderIDRecent(context.TODO(), testScope, true) }, types.FolderTypeRecent, "Recent", testActor},
			{func() (int64, error) { return mgr.FolderIDFavorites(context.TODO(), testScope, true) }, types.FolderTypeFavorites, "Favorites", testActor},
			{func() (int64, error) { return mgr.FolderIDTemplates(context.TODO(), testScope, true) }, types.FolderTypeTemplates, "Templates", testActor},
			{func() (int64, error) { return mgr.FolderIDProjects(context.TODO(), testScope, true) }, types.FolderTypeProjects, "Project Documents", testActor},
		}
		for _, c := range cases {
			id, err := c.resolve()
			Expect(err).Should(BeNil())
			f, err := mgr.GetFolder(context.TODO(), testScope, id)
			Expect(err).Should(BeNil())
			Expect(f.FolderType).Should(Equal(c.folderType))
			Expect(f.Title).Should(Equal(c.title))
			Expect(f.CreateBy).Should(Equal(c.owner))
			Expect(f.IsRoot()).Should(BeTrue())
		}
	})

	It("should title generic bunches with their key", func() {
		id, err := mgr.GetFolderID(context.TODO(), testScope, "crm", "opportunity", "1001", true)
		Expect(err).Should(BeNil())
		f, err := mgr.GetFolder(context.TODO(), testScope, id)
		Expect(err).Should(BeNil())
		Expect(f.FolderType).Should(Equal(types.FolderTypeBunch))
		Expect(f.Title).Should(Equal("crm/opportunity/1001"))

		key, err := mgr.GetBunchObjectID(context.TODO(), testScope, id)
		Expect(err).Should(BeNil())
		Expect(key).Should(Equal("crm/opportunity/1001"))
	})

	It("should refuse invalid keys", func() {
		_, err := mgr.GetFolderID(context.TODO(), testScope, "", BunchMy, "x", true)
		Expect(errors.Is(err, types.ErrInvalidArgument)).Should(BeTrue())
		_, err = mgr.GetFolderID(context.TODO(), testScope, ModuleFiles, "", "x", true)
		Expect(errors.Is(err, types.ErrInvalidArgument)).Should(BeTrue())
		_, err = mgr.GetFolderID(context.TODO(), testScope, ModuleFiles, BunchMy, "not-a-user", true)
		Expect(errors.Is(err, types.ErrInvalidArgument)).Should(BeTrue())
		_, err = mgr.FolderIDUser(context.TODO(), testScope, true, uuid.Nil)
		Expect(errors.Is(err, types.ErrInvalidArgument)).Should(BeTrue())
	})

	It("should resolve batches in order", func() {
		existed, err := mgr.GetFolderID(context.TODO(), testScope, "crm", "contact", "b", true)
		Expect(err).Should(BeNil())

		ids, err := mgr.GetFolderIDs(context.TODO(), testScope, "crm", "contact", []string{"a", "b", "c"}, false)
		Expect(err).Should(BeNil())
		Expect(ids).Should(Equal([]int64{0, existed, 0}))

		ids, err = mgr.GetFolderIDs(context.TODO(), testScope, "crm", "contact", []string{"a", "b", "c", "a"}, true)
		Expect(err).Should(BeNil())
		Expect(ids).Should(HaveLen(4))
		Expect(ids[1]).Should(Equal(existed))
		Expect(ids[0]).ShouldNot(BeZero())
		Expect(ids[2]).ShouldNot(BeZero())
		Expect(ids[3]).Should(Equal(ids[0]))

		keys, err := mgr.GetBunchObjectIDs(context.TODO(), testScope, []int64{ids[0], ids[1], 4242})
		Expect(err).Should(BeNil())
		Expect(keys).Should(Equal(map[int64]string{ids[0]: "crm/contact/a", ids[1]: "crm/contact/b"}))
	})

	It("should keep one folder when first accesses race", func() {
		user := uuid.New()
		const workers = 8
		var (
			wg      sync.WaitGroup
			results = make([]int64, workers)
			errs    = make([]error, workers)
		)
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				results[i], errs[i] = mgr.FolderIDUser(context.TODO(), testScope, true, user)
			}(i)
		}
		wg.Wait()

		for i := 0; i < workers; i++ {
			Expect(errs[i]).Should(BeNil())
			Expect(results[i]).Should(Equal(results[0]))
		}

		roots, err := meta.ListFolders(context.TODO(), testTenant, types.FolderFilter{CreateBy: []uuid.UUID{user}})
		Expect(err).Should(BeNil())
		Expect(roots).Should(HaveLen(1))
		Expect(roots[0].ID).Should(Equal(results[0]))
	})

	It("should scope bindings by tenant", func() {
		other := types.NewScope(testTenant+1, testActor)
		mine, err := mgr.FolderIDCommon(context.TODO(), testScope, true)
		Expect(err).Should(BeNil())
		theirs, err := mgr.FolderIDCommon(context.TODO(), other, true)
		Expect(err).Should(BeNil())
		Expect(theirs).ShouldNot(Equal(mine))
	})
})
