package domain

// ChangeType classifies a file change seen by a directory watcher.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
	ChangeDeleted ChangeType = "deleted"
)

// FileChange is a single change to a file under a watched directory.
type FileChange struct {
	// Path is the absolute or dir-joined path of the changed file.
	Path string

	Type ChangeType
}
