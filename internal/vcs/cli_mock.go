package vcs

// Ensure CLIMock implements CLI at compile time.
var _ CLI = CLIMock{}

// CLIMock implements CLI using user-supplied functions instead of shelling
// out, for unit tests of packages built on top of CLI.
type CLIMock struct {
	DescribeF     func(DescribeOptions) (string, error)
	ForEachRefF   func(ForEachRefOptions) (string, error)
	RemoteGetUrlF func(RemoteGetUrlOptions) (string, error)
	RevListF      func(RevListOptions) (string, error)
	RevParseF     func(RevParseOptions) (string, error)
	ShowF         func(ShowOptions) (string, error)
	DiffTreeF     func(DiffTreeOptions) (string, error)
}

func (m CLIMock) Describe(opts DescribeOptions) (string, error) {
	if m.DescribeF == nil {
		panic("Describe not expected")
	}
	return m.DescribeF(opts)
}

func (m CLIMock) ForEachRef(opts ForEachRefOptions) (string, error) {
	if m.ForEachRefF == nil {
		panic("ForEachRef not expected")
	}
	return m.ForEachRefF(opts)
}

func (m CLIMock) RemoteGetUrl(opts RemoteGetUrlOptions) (string, error) {
	if m.RemoteGetUrlF == nil {
		panic("RemoteGetUrl not expected")
	}
	return m.RemoteGetUrlF(opts)
}

func (m CLIMock) RevList(opts RevListOptions) (string, error) {
	if m.RevListF == nil {
		panic("RevList not expected")
	}
	return m.RevListF(opts)
}

func (m CLIMock) RevParse(opts RevParseOptions) (string, error) {
	if m.RevParseF == nil {
		panic("RevParse not expected")
	}
	return m.RevParseF(opts)
}

func (m CLIMock) Show(opts ShowOptions) (string, error) {
	if m.ShowF == nil {
		panic("Show not expected")
	}
	return m.ShowF(opts)
}

func (m CLIMock) DiffTree(opts DiffTreeOptions) (string, error) {
	if m.DiffTreeF == nil {
		panic("DiffTree not expected")
	}
	return m.DiffTreeF(opts)
}
