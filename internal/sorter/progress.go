package sorter

// Progress receives run events so the caller can render them.
// Implementations must not affect the run; they only observe it.
type Progress interface {
	// FolderCreated is called for every bucket folder that exists after
	// folder creation, including ones that already existed.
	FolderCreated(path string)

	// FileDone is called after each file, successful or not.
	FileDone(index, total int, result CopyResult)
}

// NopProgress discards all events.
type NopProgress struct{}

func (NopProgress) FolderCreated(string)          {}
func (NopProgress) FileDone(int, int, CopyResult) {}
