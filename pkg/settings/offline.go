package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gridworks/anmgr/pkg/params"
)

func (r *Resolver) resolveOffline(store *params.Store) *Failure {
	path := r.localSettingsPath(store)
	r.logger.Debug().Str("path", path).Msg("loading offline settings")

	values, err := LoadLocalParams(path)
	if err != nil {
		return newFailure(MalformedLocalSettingsFile, StageOffline, err, "cannot load local settings file %s", path)
	}
	store.Merge(values, true)

	if !store.GetBool(params.ManagerActiveLocal, true) {
		return newFailure(DeactivatedLocally, StageActivity, nil,
			"manager deactivated locally (%s=false in %s)", params.ManagerActiveLocal, path)
	}

	queueDir, failure := requireDir(store, params.LocalTaskQueuePath)
	if failure != nil {
		return failure
	}
	localWorkDir, failure := requireDir(store, params.LocalWorkDirPath)
	if failure != nil {
		return failure
	}

	workDir := strings.TrimSpace(store.GetString(params.WorkDir, ""))
	if workDir == "" {
		workDir = filepath.Join(localWorkDir, store.GetString(params.ManagerName, ""))
	} else if !filepath.IsAbs(workDir) {
		workDir = filepath.Join(localWorkDir, workDir)
	}

	info, err := os.Stat(workDir)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(workDir, 0755); err != nil {
			return newFailure(DirectoryValidationFailure, StageOffline, err, "cannot create work directory %s", workDir)
		}
		r.logger.Info().Str("path", workDir).Msg("created work directory")
	case err != nil:
		return newFailure(DirectoryValidationFailure, StageOffline, err, "cannot access work directory %s", workDir)
	case !info.IsDir():
		return newFailure(DirectoryValidationFailure, StageOffline, nil, "work directory %s is not a directory", workDir)
	}
	store.Set(params.WorkDir, workDir)

	r.logger.Debug().
		Str("task_queue", queueDir).
		Str("work_dir", workDir).
		Msg("offline directories validated")
	return nil
}

func (r *Resolver) localSettingsPath(store *params.Store) string {
	path := strings.TrimSpace(store.GetString(params.LocalSettingsFile, DefaultLocalSettingsFile))
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.opts.ManagerDir, path)
	}
	return path
}

func requireDir(store *params.Store, name string) (string, *Failure) {
	dir := strings.TrimSpace(store.GetString(name, ""))
	if dir == "" {
		return "", newFailure(MissingRequiredParameter, StageOffline, nil, "parameter %s is not defined in the local settings", name)
	}

	info, err := os.Stat(dir)
	if err != nil {
		return "", newFailure(DirectoryValidationFailure, StageOffline, err, "directory %s (%s) not found", dir, name)
	}
	if !info.IsDir() {
		return "", newFailure(DirectoryValidationFailure, StageOffline, fmt.Errorf("not a directory"), "%s (%s) is not a directory", dir, name)
	}
	return dir, nil
}
