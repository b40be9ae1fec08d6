package plan_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/versio-release/versio/internal/changelog"
	"github.com/versio-release/versio/internal/errs"
	"github.com/versio-release/versio/internal/plan"
	"github.com/versio-release/versio/internal/size"
)

var _ = Describe("Build", func() {
	It("attributes a commit to the project owning its touched path", func() {
		prs := []changelog.FullPr{
			pr("1", 100, commit("c1", "feat: add endpoint")),
		}
		deltas := map[string][]string{"c1": {"api/handler.go"}}

		p, err := plan.Build(newSlicer(), mustParse(), prs, deltasFrom(deltas))
		Expect(err).NotTo(HaveOccurred())

		apiIncr := p.Incrs[1]
		Expect(apiIncr).NotTo(BeNil())
		Expect(apiIncr.Size).To(Equal(size.Minor))
		Expect(apiIncr.Log).To(HaveLen(1))
		Expect(apiIncr.Log[0].Number).To(Equal("1"))

		webIncr := p.Incrs[2]
		Expect(webIncr).NotTo(BeNil(), "every project appears once handle_deps runs")
		Expect(webIncr.Size).To(Equal(size.Minor), "web depends on api, so handle_deps lifts it even though the commit touched only api/")
		Expect(webIncr.Log).To(BeEmpty(), "a commit touching only api/ adds nothing to web's own change log")

		Expect(p.Ineffective).To(BeEmpty())
	})

	It("lifts a dependent project to its dependency's size", func() {
		prs := []changelog.FullPr{
			pr("1", 100, commit("c1", "feat: add endpoint")),
		}
		deltas := map[string][]string{"c1": {"api/handler.go"}}

		p, err := plan.Build(newSlicer(), mustParse(), prs, deltasFrom(deltas))
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Incrs[1].Size).To(Equal(size.Minor))
		Expect(p.Incrs[2].Size).To(Equal(size.Minor), "web depends on api, so its size is lifted")
	})

	It("marks a repeated oid as duplicate in the later-closed PR", func() {
		// The same commit oid is attributed through two separate PRs (as can
		// happen with a squash-and-backport): the later-closed PR's sighting
		// should be marked duplicate and not double count toward size.
		prs := []changelog.FullPr{
			pr("2", 200, commit("cX", "fix: patch up")),
			pr("1", 100, commit("cX", "fix: patch up")),
		}
		deltas := map[string][]string{"cX": {"api/handler.go"}}

		p, err := plan.Build(newSlicer(), mustParse(), prs, deltasFrom(deltas))
		Expect(err).NotTo(HaveOccurred())

		apiIncr := p.Incrs[1]
		Expect(apiIncr.Size).To(Equal(size.Patch), "a duplicate sighting must not double count")
		Expect(apiIncr.Log).To(HaveLen(2), "both PR entries stay in the log")

		// Log is sorted by ClosedAt ascending: PR 1 (closed at 100) first.
		Expect(apiIncr.Log[0].Number).To(Equal("1"))
		Expect(apiIncr.Log[0].Commits[0].Included()).To(BeTrue())
		Expect(apiIncr.Log[1].Number).To(Equal("2"))
		Expect(apiIncr.Log[1].Commits[0].Included()).To(BeFalse())
		Expect(apiIncr.Log[1].Size).To(Equal(size.None), "the recomputed size drops to none once its only commit is a duplicate")
	})

	It("records a PR touching no covered path as ineffective", func() {
		prs := []changelog.FullPr{
			pr("3", 300, commit("c9", "chore: tidy root readme")),
		}
		deltas := map[string][]string{"c9": {"README.md"}}

		p, err := plan.Build(newSlicer(), mustParse(), prs, deltasFrom(deltas))
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Ineffective).To(HaveLen(1))
		Expect(p.Ineffective[0].Number).To(Equal("3"))
		Expect(p.Incrs[1].Size).To(Equal(size.None))
		Expect(p.Incrs[2].Size).To(Equal(size.None))
	})
})

var _ = Describe("Builder protocol", func() {
	It("rejects start_commit outside a pr scope", func() {
		b := plan.New(newSlicer(), mustParse())

		err := b.StartCommit(commit("c1", "feat: x"))
		Expect(errors.Is(err, errs.ErrPlanProtocol)).To(BeTrue())
	})

	It("rejects start_file outside a commit scope", func() {
		b := plan.New(newSlicer(), mustParse())

		Expect(b.StartPr(pr("1", 100))).To(Succeed())
		err := b.StartFile("api/handler.go")
		Expect(errors.Is(err, errs.ErrPlanProtocol)).To(BeTrue())
	})
})
