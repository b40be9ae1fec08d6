package changelog_test

import (
	"strings"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/versio-release/versio/internal/changelog"
	"github.com/versio-release/versio/internal/vcs"
)

func gatewayReturning(revListOut string) *vcs.Gateway {
	mock := vcs.CLIMock{
		RevListF: func(vcs.RevListOptions) (string, error) { return revListOut, nil },
	}
	return vcs.NewGateway(mock, "/repo")
}

var _ = Describe("Kind", func() {
	It("extracts the token before the first colon or paren, trimmed", func() {
		Expect(changelog.Kind("fix: typo")).To(Equal("fix"))
		Expect(changelog.Kind("feat(api): add field")).To(Equal("feat"))
		Expect(changelog.Kind("  chore:  tidy  ")).To(Equal("chore"))
	})

	It("falls back to \"-\" when no kind token is present", func() {
		Expect(changelog.Kind("bump version")).To(Equal("-"))
		Expect(changelog.Kind(":sparkles: no prefix")).To(Equal("-"))
		Expect(changelog.Kind("")).To(Equal("-"))
	})
})

var _ = Describe("LineCommits", func() {
	It("yields first-parent commits newest first with their kinds", func() {
		out := lineRecordFmt("c2", 200, "feat: add thing") +
			lineRecordFmt("c1", 100, "fix: bug")

		commits, err := changelog.LineCommits(gatewayReturning(out), vcs.Commit("c0"), vcs.Head)
		Expect(err).NotTo(HaveOccurred())
		Expect(commits).To(HaveLen(2))
		Expect(commits[0].Oid).To(Equal("c2"))
		Expect(commits[0].Kind).To(Equal("feat"))
		Expect(commits[1].Oid).To(Equal("c1"))
		Expect(commits[1].Kind).To(Equal("fix"))
	})
})

var _ = Describe("Group", func() {
	It("reconstructs a PR from a merge commit's topology", func() {
		// history: base (c0) <- feature commit (c1) <- merge (m1, parents c0 c1).
		var b strings.Builder
		b.WriteString(recordFmt("m1", "c0 c1", 300, "Merge pull request #7 from someone/feature"))
		b.WriteString(recordFmt("c1", "c0", 200, "feat: add thing"))

		prs, err := changelog.Group(gatewayReturning(b.String()), vcs.Commit("c0"), vcs.Head)
		Expect(err).NotTo(HaveOccurred())
		Expect(prs).To(HaveLen(1))

		pr := prs[0]
		Expect(pr.Number).To(Equal("7"))
		Expect(pr.BestGuess).To(BeFalse(), "a well-formed merge message should not be best_guess")
		Expect(pr.Commits).To(HaveLen(1))
		Expect(pr.Commits[0].Oid).To(Equal("c1"))
	})

	It("gathers commits no merge claimed into a synthetic PR zero", func() {
		var b strings.Builder
		b.WriteString(recordFmt("c2", "c1", 200, "chore: tidy"))
		b.WriteString(recordFmt("c1", "c0", 100, "fix: bug"))

		prs, err := changelog.Group(gatewayReturning(b.String()), vcs.Commit("c0"), vcs.Head)
		Expect(err).NotTo(HaveOccurred())
		Expect(prs).To(HaveLen(1))
		Expect(prs[0].Number).To(Equal("0"))
		Expect(prs[0].Commits).To(HaveLen(2))
	})

	It("synthesizes a number but stays confident for a resolved head without #N", func() {
		var b strings.Builder
		b.WriteString(recordFmt("m1", "c0 c1", 300, "Merge branch 'feature' into main"))
		b.WriteString(recordFmt("c1", "c0", 200, "feat: add thing"))

		prs, err := changelog.Group(gatewayReturning(b.String()), vcs.Commit("c0"), vcs.Head)
		Expect(err).NotTo(HaveOccurred())
		Expect(prs).To(HaveLen(1))
		Expect(prs[0].BestGuess).To(BeFalse(), "the head resolved, it just lacked a #N in its message")
		Expect(prs[0].Number).To(HavePrefix("guess-"))
	})

	It("flags best_guess when a merge's head parent was never walked", func() {
		var b strings.Builder
		b.WriteString(recordFmt("m1", "c0 cmissing", 300, "Merge pull request #9 from someone/feature"))

		prs, err := changelog.Group(gatewayReturning(b.String()), vcs.Commit("c0"), vcs.Head)
		Expect(err).NotTo(HaveOccurred())
		Expect(prs).To(HaveLen(1))
		Expect(prs[0].BestGuess).To(BeTrue())
	})
})
