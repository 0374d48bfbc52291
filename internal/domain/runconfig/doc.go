// Package runconfig provides the run configuration model and its
// persistence in workspace settings.
//
// Components:
//   - RunConfiguration / DTO and the defaulting factory New
//   - Store: CRUD over the list stored under ConfigurationsKey
//   - Editor: load/save/cancel boundary of the configuration form
//   - TreeItem: sidebar rendering (label, description, tooltip)
//
// The store never validates records; an empty name or command is only
// rejected by the form. Reads of a missing key yield an empty list, while
// storage errors are returned to the caller without retry.
//
// Example Usage:
//
//	store := runconfig.NewStore(settings.NewMemory(), logger)
//	cfg := runconfig.New(runconfig.DTO{Name: "Build", Command: "npm", Args: "run build"})
//	err := store.Save(ctx, cfg)
//	got, ok, err := store.GetByID(ctx, cfg.ID)
package runconfig
