/*
Package storage keeps local manager state in a BoltDB file.

The only state kept today is the parameter set of the last successful
settings resolution for each manager. It lets an operator inspect what a
manager ran with (`anmgr settings show --cached`) after the control service
has changed or become unreachable. Cleanup state and sentinel flags are not
stored here; flags live as plain files in the manager directory.

# Layout

	<managerDir>/anmgr.db
	  settings/
	    <lowercased manager name> → JSON Snapshot

Snapshots are replaced, not appended. Keys are lowercased so that manager
names compare the same way parameter names do.

# Usage

	store, err := storage.NewBoltStore(storage.DefaultPath(managerDir))
	if err != nil {
		return err
	}
	defer store.Close()

	err = store.SaveSnapshot(&storage.Snapshot{
		Manager:    cfg.GetString(params.ManagerName, ""),
		RunID:      runID,
		Mode:       "online",
		ResolvedAt: time.Now(),
		Params:     cfg.Snapshot(),
	})

BoltDB takes an exclusive file lock, so only one process may hold the store
open at a time.
*/
package storage
