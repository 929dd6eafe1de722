package drive

import "context"

// FindOrCreateFolder returns the ID of the folder named name directly under
// parentID, creating it when absent. The lookup-then-create is not atomic:
// two concurrent callers resolving the same new name can each create a
// folder. That race exists upstream in the storage API and is accepted here
// rather than papered over with a lock; with unchanged backend state the
// call is idempotent.
func FindOrCreateFolder(ctx context.Context, s Storage, name, parentID string) (string, error) {
	id, err := s.FindFolder(ctx, name, parentID)
	if err != nil {
		return "", err
	}
	if id != "" {
		return id, nil
	}
	return s.CreateFolder(ctx, name, parentID)
}
