// Package watch reports changes to env files.
//
//	fw, err := watch.NewFileWatcher(watch.Config{Files: []string{".env", ".env.production"}}, nil)
//	if err != nil {
//	    return err
//	}
//	defer fw.Stop()
//
//	err = fw.Watch(ctx, func(path string) {
//	    // re-run the configuration resolver
//	})
//
// Chmod events are ignored and bursts of writes are collapsed into a single
// callback.
package watch
