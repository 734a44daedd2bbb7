package clip

// headlessBackend is a no-op clipboard backend for environments without a
// display server (headless Linux servers, containers, etc.).
// Its change count never moves and it refuses writes.
type headlessBackend struct{}

func (b *headlessBackend) Name() string                { return "headless (no-op)" }
func (b *headlessBackend) ChangeCount() (int64, error) { return 0, nil }
func (b *headlessBackend) Read() ([]Item, error)       { return nil, nil }
func (b *headlessBackend) Close()                      {}

func (b *headlessBackend) Write(items []Item) error {
	if types := Types(items); len(types) > 0 {
		return &RejectedError{Type: types[0], Err: ErrUnavailable}
	}
	return nil
}
