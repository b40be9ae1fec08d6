package config_test

import (
	"errors"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	. "github.com/versio-release/versio/internal/config"
	"github.com/versio-release/versio/internal/errs"
	"github.com/versio-release/versio/internal/size"
)

var _ = Describe("Parse", func() {
	It("parses projects, dependency edges, and the global size table", func() {
		cfg, err := Parse([]byte(`
prev_tag: release-marker
sizes:
  feat: minor
  fix: patch
projects:
  - id: 1
    name: lib
    covers: ["lib/**"]
    tag_prefix: lib
  - id: 2
    name: app
    covers: ["app/**"]
    excludes: ["app/**/*_test.go"]
    depends: [1]
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.PrevTag).To(Equal("release-marker"))
		Expect(cfg.Sizes["feat"]).To(Equal(size.Minor))
		Expect(cfg.Projects).To(HaveLen(2))

		app, err := cfg.FindUnique("app")
		Expect(err).NotTo(HaveOccurred())
		Expect(app.Depends).To(Equal([]int{1}))
	})

	It("defaults prev_tag when absent", func() {
		cfg, err := Parse([]byte(`
projects:
  - id: 1
    name: only
    covers: ["**"]
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.PrevTag).To(Equal(DefaultPrevTag))
	})

	It("rejects duplicate project ids", func() {
		_, err := Parse([]byte(`
projects:
  - id: 1
    name: a
    covers: ["a/**"]
  - id: 1
    name: b
    covers: ["b/**"]
`))
		Expect(errors.Is(err, errs.ErrDuplicateProject)).To(BeTrue())
	})

	It("rejects duplicate project names", func() {
		_, err := Parse([]byte(`
projects:
  - id: 1
    name: dup
    covers: ["a/**"]
  - id: 2
    name: dup
    covers: ["b/**"]
`))
		Expect(errors.Is(err, errs.ErrDuplicateProject)).To(BeTrue())
	})

	It("rejects cyclic dependencies", func() {
		_, err := Parse([]byte(`
projects:
  - id: 1
    name: a
    covers: ["a/**"]
    depends: [2]
  - id: 2
    name: b
    covers: ["b/**"]
    depends: [1]
`))
		Expect(errors.Is(err, errs.ErrCyclicDependency)).To(BeTrue())
	})

	It("rejects malformed yaml", func() {
		_, err := Parse([]byte("not: [valid"))
		Expect(errors.Is(err, errs.ErrConfigParse)).To(BeTrue())
	})
})

var _ = Describe("Project.DoesCover", func() {
	It("matches a covers glob and rejects an excludes glob, forward-slash only", func() {
		p := Project{
			Covers:   []string{"src/**/*.go"},
			Excludes: []string{"src/**/*_test.go"},
		}
		Expect(p.DoesCover("src/pkg/foo.go")).To(BeTrue())
		Expect(p.DoesCover("src/pkg/foo_test.go")).To(BeFalse())
		Expect(p.DoesCover("docs/readme.md")).To(BeFalse())
	})
})

var _ = Describe("Project.SizeFor", func() {
	It("prefers a project-level size override over the global table", func() {
		p := Project{Sizes: map[string]size.Size{"fix": size.Minor}}
		global := map[string]size.Size{"fix": size.Patch, "feat": size.Minor}

		Expect(p.SizeFor("fix", global)).To(Equal(size.Minor))
		Expect(p.SizeFor("feat", global)).To(Equal(size.Minor))
		Expect(p.SizeFor("chore", global)).To(Equal(size.None))
	})
})
